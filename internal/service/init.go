package service

import (
	"context"
	"math/rand"
	"time"

	"factreel/config"
	"factreel/internal/align"
	"factreel/internal/background"
	"factreel/internal/compose"
	"factreel/internal/fact"
	"factreel/internal/timeline"
	"factreel/internal/types"
	"factreel/log"
	"factreel/pkg/openai"
	"factreel/pkg/tts"
	"factreel/pkg/util"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// TimelineBuilder is satisfied by *timeline.Builder.
type TimelineBuilder interface {
	Build(ctx context.Context, text string, audio timeline.Audio) ([]types.TimingSegment, error)
}

// BackgroundResolver is satisfied by *background.Resolver.
type BackgroundResolver interface {
	ResolveAll(ctx context.Context, segments []types.TimingSegment, ws *background.Workspace) ([]types.BackgroundAsset, error)
}

// Renderer is satisfied by *compose.Compositor.
type Renderer interface {
	Render(ctx context.Context, in compose.Input) error
}

// Expander is satisfied by *fact.Chain.
type Expander interface {
	Expand(ctx context.Context, text string) string
}

// RunStore records run history. A nil store disables history.
type RunStore interface {
	SaveRun(ctx context.Context, run *types.Run) error
}

type Service struct {
	Facts       types.FactSource
	Expander    Expander
	TtsClient   types.Ttser
	Timeline    TimelineBuilder
	Backgrounds BackgroundResolver
	Renderer    Renderer
	Store       RunStore

	conf     *config.Config
	duration func(path string) (float64, error)
	logger   *zap.Logger
}

// HistoryStore is a RunStore that can also list recent facts for the
// novelty filter.
type HistoryStore interface {
	RunStore
	fact.History
}

// NewService wires every collaborator from conf. store may be nil.
func NewService(conf *config.Config, store HistoryStore, logger *zap.Logger) *Service {
	logger = log.OrNop(logger)
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	httpClient := resty.New().SetTimeout(time.Duration(conf.FactTimeoutSeconds) * time.Second)

	var facts types.FactSource = fact.NewFetcher(conf.ApiUrl, time.Duration(conf.FactTimeoutSeconds)*time.Second, rng, logger)
	var runStore RunStore
	if store != nil {
		facts = fact.NewNoveltyFilter(facts, store, conf.NoveltyThreshold, logger)
		runStore = store
	}

	var expander Expander
	if conf.AiExpansionEnabled {
		expander = newExpansionChain(conf, httpClient, rng, logger)
	}

	aligner := align.New(
		align.WithThresholdDB(conf.SilenceThresholdDb),
		align.WithMinSilenceMs(conf.MinSilenceLenMs),
		align.WithLogger(logger),
	)
	builder := timeline.NewBuilder(timeline.Options{
		PerSegment:      conf.MultiBackground,
		AlignAudio:      conf.AlignAudio,
		MaxWords:        conf.MaxWordsPerSegment,
		WordsPerSecond:  conf.WordsPerSecond,
		MinDuration:     conf.MinSegmentDuration,
		SegmentKeywords: conf.SegmentKeywords,
		MaxKeywords:     conf.MaxKeywords,
	}, aligner, logger)

	resolver := background.NewResolver(conf.BackgroundsDir, resty.New().SetTimeout(2*time.Minute),
		background.WithSources(assetSources(conf, httpClient, rng)...),
		background.WithDelay(time.Duration(conf.RequestDelayMs)*time.Millisecond),
		background.WithDefaultQuery(conf.DefaultQuery),
		background.WithRand(rng),
		background.WithLogger(logger),
	)

	compositor := compose.New(compose.Options{
		Width:            conf.Width(),
		Height:           conf.Height(),
		Fps:              conf.Fps,
		Crop:             conf.CropBackground,
		MusicVolume:      conf.MusicVolume,
		PlaceholderColor: conf.PlaceholderColor,
		Header:           conf.Header,
		Style: compose.CaptionStyle{
			Font:           conf.Font,
			FontSize:       conf.FontSize,
			TextColor:      conf.TextColor,
			OutlineColor:   conf.TextOutlineColor,
			OutlineWidth:   conf.TextOutlineWidth,
			Highlight:      conf.HighlightEnabled,
			HighlightColor: conf.TextHighlightColor,
		},
	}, compose.WithRand(rng), compose.WithLogger(logger))

	return &Service{
		Facts:       facts,
		Expander:    expander,
		TtsClient:   tts.NewCompositeTtsClient(conf, logger),
		Timeline:    builder,
		Backgrounds: resolver,
		Renderer:    compositor,
		Store:       runStore,
		conf:        conf,
		duration:    util.GetAudioDuration,
		logger:      logger,
	}
}

func newExpansionChain(conf *config.Config, client *resty.Client, rng *rand.Rand, logger *zap.Logger) *fact.Chain {
	var expanders []types.Expander
	if conf.HuggingfaceApiKey != "" {
		expanders = append(expanders, fact.NewHuggingFace(client, conf.HuggingfaceApiKey))
	}
	if conf.GeminiApiKey != "" {
		expanders = append(expanders, fact.NewGemini(client, conf.GeminiApiKey))
	}
	if conf.OpenaiApiKey != "" {
		chat := openai.NewClient(conf.Llm.BaseUrl, conf.OpenaiApiKey, conf.Llm.Model, conf.Tts.OpenaiModel)
		expanders = append(expanders, fact.NewChat(chat))
	}
	expanders = append(expanders, fact.NewRuleBased(rng))
	chain := fact.NewChain(logger, expanders...)
	logger.Info("fact expansion enabled", zap.Strings("providers", chain.Names()))
	return chain
}

// assetSources builds the remote sources in the configured order.
func assetSources(conf *config.Config, client *resty.Client, rng *rand.Rand) []types.AssetSource {
	var sources []types.AssetSource
	for _, name := range conf.VideoSources {
		switch name {
		case config.SourcePixabay:
			sources = append(sources, background.NewPixabay(client, conf.PixabayApiKey, rng))
		case config.SourcePexels:
			sources = append(sources, background.NewPexels(client, conf.PexelsApiKey, rng))
		case config.SourceDirect:
			if conf.DirectVideoUrl != "" {
				sources = append(sources, background.Direct{URL: conf.DirectVideoUrl})
			}
		}
	}
	return sources
}

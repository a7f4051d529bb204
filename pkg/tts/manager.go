// Package tts routes narration requests to the configured provider.
package tts

import (
	"context"
	"fmt"
	"strings"

	"factreel/config"
	"factreel/internal/types"
	"factreel/log"
	"factreel/pkg/edgetts"
	"factreel/pkg/minimax"
	"factreel/pkg/openai"

	"go.uber.org/zap"
)

// CompositeTtsClient holds every provider that has credentials and routes
// each request to one of them.
type CompositeTtsClient struct {
	EdgeTTS  types.Ttser
	OpenAI   types.Ttser
	MiniMax  types.Ttser
	Default  types.Ttser
	Provider string

	logger *zap.Logger
}

func NewCompositeTtsClient(conf *config.Config, logger *zap.Logger) *CompositeTtsClient {
	logger = log.OrNop(logger)
	c := &CompositeTtsClient{
		EdgeTTS:  edgetts.NewClient(conf.Tts.EdgeTtsPath, logger),
		Provider: conf.TtsProvider,
		logger:   logger,
	}

	if conf.OpenaiApiKey != "" {
		c.OpenAI = openai.NewClient(conf.Tts.OpenaiBaseUrl, conf.OpenaiApiKey, conf.Llm.Model, conf.Tts.OpenaiModel)
	}
	if conf.MinimaxApiKey != "" {
		c.MiniMax = minimax.NewClient(conf.MinimaxApiKey, conf.Tts.MinimaxGroupId, conf.Tts.MinimaxModel, logger)
	}

	switch conf.TtsProvider {
	case config.ProviderOpenai:
		c.Default = c.OpenAI
	case config.ProviderMinimax:
		c.Default = c.MiniMax
	default:
		c.Default = c.EdgeTTS
	}
	if c.Default == nil {
		logger.Warn("narration provider has no api key, using edge-tts", zap.String("provider", conf.TtsProvider))
		c.Default = c.EdgeTTS
	}
	return c
}

// IsEdgeVoice reports whether voice looks like an edge-tts neural voice,
// e.g. en-US-AriaNeural.
func IsEdgeVoice(voice string) bool {
	return strings.Count(voice, "-") >= 2 && strings.HasSuffix(voice, "Neural")
}

func (c *CompositeTtsClient) GetAudio(ctx context.Context, req types.SpeechRequest, outputPath string) error {
	if strings.TrimSpace(req.Text) == "" {
		return fmt.Errorf("narration text is empty")
	}
	logger := log.OrNop(c.logger)
	if IsEdgeVoice(req.Voice) && c.EdgeTTS != nil {
		logger.Info("routing to edge-tts", zap.String("voice", req.Voice))
		return c.EdgeTTS.GetAudio(ctx, req, outputPath)
	}
	if c.Default == nil {
		return fmt.Errorf("no narration provider configured")
	}
	logger.Info("routing to default narration provider", zap.String("voice", req.Voice), zap.String("provider", c.Provider))
	return c.Default.GetAudio(ctx, req, outputPath)
}

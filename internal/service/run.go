package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"factreel/internal/align"
	"factreel/internal/background"
	"factreel/internal/compose"
	"factreel/internal/timeline"
	"factreel/internal/types"
	apperrors "factreel/pkg/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	narrationFile = "narration.mp3"
	captionFile   = "captions.ass"
)

// RunRequest starts one pipeline run. Fact, when set, is narrated as given
// instead of fetched.
type RunRequest struct {
	RunId string
	Fact  string
}

type RunResult struct {
	RunId      string
	Fact       string
	Narration  string
	OutputPath string
	Segments   []types.TimingSegment
	Duration   float64
}

// NewRunId returns a fresh run identifier.
func NewRunId() string {
	return uuid.New().String()
}

// Run goes from a fact to a rendered video. Every returned error is an
// *apperrors.AppError naming the stage that failed.
func (s *Service) Run(ctx context.Context, req RunRequest) (*RunResult, error) {
	runId := req.RunId
	if runId == "" {
		runId = NewRunId()
	}
	logger := s.logger.With(zap.String("run_id", runId))
	record := &types.Run{RunId: runId, Status: types.RunRunning}
	s.save(ctx, record)

	res, err := s.run(ctx, runId, req, logger)
	if err != nil {
		record.Status = types.RunFailed
		record.FailStage = string(apperrors.GetStage(err))
		record.FailReason = err.Error()
		if res != nil {
			record.Fact, record.Narration = res.Fact, res.Narration
		}
		logger.Error("run failed", zap.String("stage", record.FailStage), zap.Error(err))
		s.save(context.WithoutCancel(ctx), record)
		return nil, err
	}

	record.Status = types.RunSucceeded
	record.Fact = res.Fact
	record.Narration = res.Narration
	record.OutputPath = res.OutputPath
	record.SegmentCount = len(res.Segments)
	record.Duration = res.Duration
	s.save(ctx, record)
	logger.Info("run finished",
		zap.String("output", res.OutputPath),
		zap.Int("segments", len(res.Segments)),
		zap.Float64("duration", res.Duration))
	return res, nil
}

// run returns a partial result alongside an error once the fact is known.
func (s *Service) run(ctx context.Context, runId string, req RunRequest, logger *zap.Logger) (*RunResult, error) {
	res := &RunResult{RunId: runId}

	res.Fact = strings.TrimSpace(req.Fact)
	if res.Fact == "" {
		res.Fact = strings.TrimSpace(s.Facts.Fetch(ctx))
	}
	if res.Fact == "" {
		return nil, apperrors.WrapStage(apperrors.StageFact, apperrors.CodeFactEmpty, "fact source returned empty text", nil)
	}
	res.Narration = res.Fact
	if s.Expander != nil {
		res.Narration = s.Expander.Expand(ctx, res.Fact)
	}
	logger.Info("narration ready", zap.String("fact", res.Fact), zap.Int("chars", len(res.Narration)))

	workRoot, err := resolveWorkRoot()
	if err == nil {
		err = os.MkdirAll(workRoot, 0o755)
	}
	if err != nil {
		return res, apperrors.WrapStage(apperrors.StageStorage, apperrors.CodeFileWriteError, "prepare work directory", err)
	}
	ws, err := background.NewWorkspace(workRoot)
	if err != nil {
		return res, apperrors.WrapStage(apperrors.StageStorage, apperrors.CodeFileWriteError, "create run workspace", err)
	}
	defer func() {
		if cerr := ws.Close(); cerr != nil {
			logger.Warn("remove run workspace", zap.String("dir", ws.Dir()), zap.Error(cerr))
		}
	}()

	voice := filepath.Join(ws.Dir(), narrationFile)
	speech := types.SpeechRequest{
		Text:     res.Narration,
		Voice:    s.conf.TtsVoice,
		Language: s.conf.AudioLanguage,
		Speed:    s.conf.SpeechSpeed,
	}
	if err = s.TtsClient.GetAudio(ctx, speech, voice); err != nil {
		return res, apperrors.WrapStage(apperrors.StageNarration, apperrors.CodeTTSFailed, "synthesize narration", err)
	}
	measured, err := s.duration(voice)
	if err != nil {
		return res, apperrors.WrapStage(apperrors.StageNarration, apperrors.CodeAudioDuration, "measure narration", err)
	}

	res.Segments, err = s.Timeline.Build(ctx, res.Narration, timeline.Audio{Path: voice, Duration: measured})
	if err != nil {
		code := apperrors.CodeTimelineBuild
		if errors.Is(err, align.ErrDecode) {
			code = apperrors.CodeAudioDecode
		}
		return res, apperrors.WrapStage(apperrors.StageTimeline, code, "build timeline", err)
	}

	assets, err := s.Backgrounds.ResolveAll(ctx, res.Segments, ws)
	if err != nil {
		return res, apperrors.WrapStage(apperrors.StageBackground, apperrors.CodeBackgroundNotFound, "resolve backgrounds", err)
	}

	outDir, err := ResolveOutputDir(s.conf.OutputDir)
	if err == nil {
		err = os.MkdirAll(outDir, 0o755)
	}
	if err != nil {
		return res, apperrors.WrapStage(apperrors.StageStorage, apperrors.CodeFileWriteError, "prepare output directory", err)
	}
	res.OutputPath = outputPathFor(outDir, res.Fact)

	single := !s.conf.MultiBackground
	in := compose.Input{
		Segments:    res.Segments,
		Assets:      assets,
		Single:      single,
		Voiceover:   voice,
		Music:       s.conf.BackgroundMusic,
		CaptionPath: filepath.Join(ws.Dir(), captionFile),
		Output:      res.OutputPath,
	}
	if single {
		in.Duration = s.conf.VideoDuration
	}
	if err = s.Renderer.Render(ctx, in); err != nil {
		code := apperrors.CodeRenderFailed
		var inputErr *compose.InputError
		if errors.As(err, &inputErr) {
			code = apperrors.CodeRenderInput
		}
		return res, apperrors.WrapStage(apperrors.StageRender, code, "render video", err)
	}

	res.Duration = res.Segments[len(res.Segments)-1].End
	if in.Duration > res.Duration {
		res.Duration = in.Duration
	}
	return res, nil
}

func (s *Service) save(ctx context.Context, run *types.Run) {
	if s.Store == nil {
		return
	}
	if err := s.Store.SaveRun(ctx, run); err != nil {
		s.logger.Warn("save run history", zap.String("run_id", run.RunId), zap.Error(err))
	}
}

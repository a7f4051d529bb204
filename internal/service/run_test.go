package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"factreel/config"
	"factreel/internal/align"
	"factreel/internal/background"
	"factreel/internal/compose"
	"factreel/internal/mocks"
	"factreel/internal/timeline"
	"factreel/internal/types"
	apperrors "factreel/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type timelineFunc func(ctx context.Context, text string, audio timeline.Audio) ([]types.TimingSegment, error)

func (f timelineFunc) Build(ctx context.Context, text string, audio timeline.Audio) ([]types.TimingSegment, error) {
	return f(ctx, text, audio)
}

type resolverFunc func(ctx context.Context, segs []types.TimingSegment, ws *background.Workspace) ([]types.BackgroundAsset, error)

func (f resolverFunc) ResolveAll(ctx context.Context, segs []types.TimingSegment, ws *background.Workspace) ([]types.BackgroundAsset, error) {
	return f(ctx, segs, ws)
}

type renderFunc func(ctx context.Context, in compose.Input) error

func (f renderFunc) Render(ctx context.Context, in compose.Input) error { return f(ctx, in) }

type expandFunc func(ctx context.Context, text string) string

func (f expandFunc) Expand(ctx context.Context, text string) string { return f(ctx, text) }

type memoryStore struct {
	mu   sync.Mutex
	runs map[string]types.Run
}

func (m *memoryStore) SaveRun(_ context.Context, run *types.Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.runs == nil {
		m.runs = map[string]types.Run{}
	}
	m.runs[run.RunId] = *run
	return nil
}

func (m *memoryStore) get(id string) types.Run {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.runs[id]
}

var twoSegments = []types.TimingSegment{
	{Text: "Honey never spoils.", Start: 0, End: 2, Keywords: []string{"honey"}},
	{Text: "Archaeologists found some.", Start: 2, End: 4.5, Keywords: []string{"archaeologists"}},
}

type fixture struct {
	svc    *Service
	facts  *mocks.MockFactSource
	tts    *mocks.MockTtser
	store  *memoryStore
	render *compose.Input
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	stubAppDirs(t)
	conf := config.Default()
	conf.OutputDir = filepath.Join(t.TempDir(), "videos")

	f := &fixture{
		facts: new(mocks.MockFactSource),
		tts:   new(mocks.MockTtser),
		store: &memoryStore{},
	}
	f.svc = &Service{
		Facts:     f.facts,
		TtsClient: f.tts,
		Timeline: timelineFunc(func(_ context.Context, text string, audio timeline.Audio) ([]types.TimingSegment, error) {
			return twoSegments, nil
		}),
		Backgrounds: resolverFunc(func(_ context.Context, segs []types.TimingSegment, ws *background.Workspace) ([]types.BackgroundAsset, error) {
			return []types.BackgroundAsset{{Kind: types.AssetPlaceholder}, {Kind: types.AssetPlaceholder}}, nil
		}),
		Renderer: renderFunc(func(_ context.Context, in compose.Input) error {
			f.render = &in
			return nil
		}),
		Store:    f.store,
		conf:     &conf,
		duration: func(string) (float64, error) { return 4.5, nil },
		logger:   zap.NewNop(),
	}
	return f
}

func TestRunSucceeds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.facts.On("Fetch", ctx).Return("Honey never spoils.")
	f.tts.On("GetAudio", ctx, mock.MatchedBy(func(r types.SpeechRequest) bool {
		return r.Text == "Honey never spoils." && r.Language == "en" && r.Speed == 1.0
	}), mock.Anything).Return(nil)

	var workDir string
	f.svc.Renderer = renderFunc(func(_ context.Context, in compose.Input) error {
		f.render = &in
		workDir = filepath.Dir(in.Voiceover)
		assert.DirExists(t, workDir)
		return nil
	})

	res, err := f.svc.Run(ctx, RunRequest{RunId: "run-1"})
	require.NoError(t, err)

	assert.Equal(t, "run-1", res.RunId)
	assert.Equal(t, filepath.Join(f.svc.conf.OutputDir, "Honey_never_spoils.mp4"), res.OutputPath)
	assert.Equal(t, 4.5, res.Duration)
	assert.False(t, f.render.Single)
	assert.Zero(t, f.render.Duration)
	assert.Equal(t, narrationFile, filepath.Base(f.render.Voiceover))
	assert.Equal(t, captionFile, filepath.Base(f.render.CaptionPath))
	assert.Len(t, f.render.Assets, 2)
	assert.NoDirExists(t, workDir)

	rec := f.store.get("run-1")
	assert.Equal(t, types.RunSucceeded, rec.Status)
	assert.Equal(t, 2, rec.SegmentCount)
	assert.Equal(t, "Honey never spoils.", rec.Fact)
}

func TestRunSingleBlockUsesVideoDuration(t *testing.T) {
	f := newFixture(t)
	f.svc.conf.MultiBackground = false
	f.svc.Expander = expandFunc(func(_ context.Context, text string) string { return "Did you know? " + text })
	f.tts.On("GetAudio", mock.Anything, mock.MatchedBy(func(r types.SpeechRequest) bool {
		return r.Text == "Did you know? Sharks predate trees."
	}), mock.Anything).Return(nil)

	res, err := f.svc.Run(context.Background(), RunRequest{Fact: " Sharks predate trees. "})
	require.NoError(t, err)

	f.facts.AssertNotCalled(t, "Fetch", mock.Anything)
	assert.NotEmpty(t, res.RunId)
	assert.Equal(t, "Sharks predate trees.", res.Fact)
	assert.Equal(t, "Did you know? Sharks predate trees.", res.Narration)
	assert.True(t, f.render.Single)
	assert.Equal(t, 60.0, f.render.Duration)
	assert.Equal(t, 60.0, res.Duration)
}

func TestRunStageAttribution(t *testing.T) {
	tests := []struct {
		name  string
		setup func(f *fixture)
		stage apperrors.Stage
		code  int
	}{
		{
			name: "narration failure",
			setup: func(f *fixture) {
				f.tts.ExpectedCalls = nil
				f.tts.On("GetAudio", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("edge-tts exited 1"))
			},
			stage: apperrors.StageNarration,
			code:  apperrors.CodeTTSFailed,
		},
		{
			name: "unmeasurable audio",
			setup: func(f *fixture) {
				f.svc.duration = func(string) (float64, error) { return 0, errors.New("invalid data") }
			},
			stage: apperrors.StageNarration,
			code:  apperrors.CodeAudioDuration,
		},
		{
			name: "undecodable audio",
			setup: func(f *fixture) {
				f.svc.Timeline = timelineFunc(func(context.Context, string, timeline.Audio) ([]types.TimingSegment, error) {
					return nil, fmt.Errorf("%w: no samples", align.ErrDecode)
				})
			},
			stage: apperrors.StageTimeline,
			code:  apperrors.CodeAudioDecode,
		},
		{
			name: "cancelled background resolution",
			setup: func(f *fixture) {
				f.svc.Backgrounds = resolverFunc(func(context.Context, []types.TimingSegment, *background.Workspace) ([]types.BackgroundAsset, error) {
					return nil, context.Canceled
				})
			},
			stage: apperrors.StageBackground,
			code:  apperrors.CodeBackgroundNotFound,
		},
		{
			name: "missing render input",
			setup: func(f *fixture) {
				f.svc.Renderer = renderFunc(func(context.Context, compose.Input) error {
					return &compose.InputError{Input: "background music", Path: "x.mp3", Err: os.ErrNotExist}
				})
			},
			stage: apperrors.StageRender,
			code:  apperrors.CodeRenderInput,
		},
		{
			name: "ffmpeg failure",
			setup: func(f *fixture) {
				f.svc.Renderer = renderFunc(func(context.Context, compose.Input) error {
					return errors.New("exit status 1")
				})
			},
			stage: apperrors.StageRender,
			code:  apperrors.CodeRenderFailed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.facts.On("Fetch", mock.Anything).Return("Honey never spoils.")
			f.tts.On("GetAudio", mock.Anything, mock.Anything, mock.Anything).Return(nil)
			tt.setup(f)

			res, err := f.svc.Run(context.Background(), RunRequest{RunId: "r"})

			require.Error(t, err)
			assert.Nil(t, res)
			assert.Equal(t, tt.stage, apperrors.GetStage(err))
			assert.True(t, apperrors.Is(err, tt.code), "got code %d", apperrors.GetCode(err))

			rec := f.store.get("r")
			assert.Equal(t, types.RunFailed, rec.Status)
			assert.Equal(t, string(tt.stage), rec.FailStage)
			assert.Equal(t, "Honey never spoils.", rec.Fact)
		})
	}
}

func TestRunEmptyFact(t *testing.T) {
	f := newFixture(t)
	f.facts.On("Fetch", mock.Anything).Return("   ")

	_, err := f.svc.Run(context.Background(), RunRequest{RunId: "e"})

	require.Error(t, err)
	assert.Equal(t, apperrors.StageFact, apperrors.GetStage(err))
	f.tts.AssertNotCalled(t, "GetAudio", mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, types.RunFailed, f.store.get("e").Status)
}

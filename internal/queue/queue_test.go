package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"factreel/config"
	"factreel/internal/service"
	apperrors "factreel/pkg/errors"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pipelineFunc func(ctx context.Context, req service.RunRequest) (*service.RunResult, error)

func (f pipelineFunc) Run(ctx context.Context, req service.RunRequest) (*service.RunResult, error) {
	return f(ctx, req)
}

func TestNewRunTask(t *testing.T) {
	task, err := NewRunTask(RunPayload{RunId: "r1", Fact: "Honey never spoils."})
	require.NoError(t, err)
	assert.Equal(t, TypeRun, task.Type())

	var got RunPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &got))
	assert.Equal(t, "r1", got.RunId)

	_, err = NewRunTask(RunPayload{})
	assert.Error(t, err)
}

func TestConfigFrom(t *testing.T) {
	cfg := ConfigFrom(config.Queue{RedisAddr: "redis:6379", RedisDB: 2})
	assert.Equal(t, "redis:6379", cfg.RedisAddr)
	assert.Equal(t, 2, cfg.RedisDB)
	assert.Equal(t, 1, cfg.Concurrency)
}

func TestRetryDelay(t *testing.T) {
	assert.Equal(t, 10*time.Second, retryDelay(0, nil, nil))
	assert.Equal(t, 40*time.Second, retryDelay(2, nil, nil))
}

func TestHandleRun(t *testing.T) {
	var got service.RunRequest
	h := NewTaskHandlers(pipelineFunc(func(_ context.Context, req service.RunRequest) (*service.RunResult, error) {
		got = req
		return &service.RunResult{RunId: req.RunId}, nil
	}), nil)
	task, err := NewRunTask(RunPayload{RunId: "r1", Fact: "x"})
	require.NoError(t, err)

	require.NoError(t, h.HandleRun(context.Background(), task))
	assert.Equal(t, service.RunRequest{RunId: "r1", Fact: "x"}, got)
}

func TestHandleRunRetryPolicy(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		skipRetry bool
	}{
		{"transient narration failure", apperrors.WrapStage(apperrors.StageNarration, apperrors.CodeTTSFailed, "synthesize", errors.New("timeout")), false},
		{"undecodable audio", apperrors.WrapStage(apperrors.StageTimeline, apperrors.CodeAudioDecode, "build", errors.New("bad")), true},
		{"missing music", apperrors.WrapStage(apperrors.StageRender, apperrors.CodeRenderInput, "render", errors.New("nope")), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewTaskHandlers(pipelineFunc(func(context.Context, service.RunRequest) (*service.RunResult, error) {
				return nil, tt.err
			}), nil)
			task, err := NewRunTask(RunPayload{RunId: "r"})
			require.NoError(t, err)

			err = h.HandleRun(context.Background(), task)
			require.Error(t, err)
			assert.Equal(t, tt.skipRetry, errors.Is(err, asynq.SkipRetry))
		})
	}
}

func TestHandleRunBadPayload(t *testing.T) {
	h := NewTaskHandlers(pipelineFunc(func(context.Context, service.RunRequest) (*service.RunResult, error) {
		t.Fatal("pipeline must not run")
		return nil, nil
	}), nil)

	err := h.HandleRun(context.Background(), asynq.NewTask(TypeRun, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

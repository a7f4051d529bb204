package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"factreel/internal/service"
	apperrors "factreel/pkg/errors"
)

// Pipeline is satisfied by *service.Service.
type Pipeline interface {
	Run(ctx context.Context, req service.RunRequest) (*service.RunResult, error)
}

// TaskHandlers provides handlers for different task types
type TaskHandlers struct {
	pipeline Pipeline
	logger   *zap.Logger
}

func NewTaskHandlers(p Pipeline, logger *zap.Logger) *TaskHandlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaskHandlers{pipeline: p, logger: logger}
}

// HandleRun executes one run. Failures in stages whose cause is permanent
// skip the remaining retries.
func (h *TaskHandlers) HandleRun(ctx context.Context, t *asynq.Task) error {
	var payload RunPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w: %w", err, asynq.SkipRetry)
	}

	h.logger.Info("[Queue] processing run", zap.String("run_id", payload.RunId))
	if _, err := h.pipeline.Run(ctx, service.RunRequest{RunId: payload.RunId, Fact: payload.Fact}); err != nil {
		if permanent(err) {
			return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
		}
		return err
	}
	h.logger.Info("[Queue] run completed", zap.String("run_id", payload.RunId))
	return nil
}

// permanent reports failures a retry cannot fix.
func permanent(err error) bool {
	switch apperrors.GetCode(err) {
	case apperrors.CodeFactEmpty, apperrors.CodeAudioDecode, apperrors.CodeRenderInput, apperrors.CodeTimelineBuild:
		return true
	}
	return false
}

// RegisterHandlers registers all task handlers with the Asynq server mux
func (h *TaskHandlers) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeRun, h.HandleRun)
}

// StartWorker blocks serving run tasks until the process is signalled.
func StartWorker(q *Queue, p Pipeline) error {
	handlers := NewTaskHandlers(p, q.logger)

	mux := asynq.NewServeMux()
	handlers.RegisterHandlers(mux)

	q.logger.Info("[Queue] starting worker",
		zap.String("redis_addr", q.config.RedisAddr),
		zap.Int("concurrency", q.config.Concurrency))
	return q.server.Run(mux)
}

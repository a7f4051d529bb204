// Package handler serves the run submission and history API.
package handler

import (
	"context"

	"factreel/internal/service"
	"factreel/internal/types"
	"factreel/log"

	"go.uber.org/zap"
)

// Submitter is satisfied by *taskrunner.Runner.
type Submitter interface {
	Submit(req service.RunRequest) (string, error)
}

// RunStore is satisfied by *storage.Store.
type RunStore interface {
	SaveRun(ctx context.Context, run *types.Run) error
	GetRun(ctx context.Context, runId string) (*types.Run, error)
	ListRuns(ctx context.Context, limit int) ([]types.Run, error)
}

type Handler struct {
	Runner Submitter
	Store  RunStore
	// VideoRoot is the directory rendered videos are written to and served from.
	VideoRoot string

	logger *zap.Logger
}

func NewHandler(runner Submitter, store RunStore, videoRoot string, logger *zap.Logger) *Handler {
	return &Handler{Runner: runner, Store: store, VideoRoot: videoRoot, logger: log.OrNop(logger)}
}

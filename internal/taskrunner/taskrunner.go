// Package taskrunner executes queued pipeline runs in process, one at a time.
package taskrunner

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"factreel/internal/service"
	"factreel/log"
)

const defaultQueueSize = 128

var (
	ErrRunnerStopped = errors.New("task runner stopped")
	ErrQueueFull     = errors.New("task queue is full")
)

// Pipeline is satisfied by *service.Service.
type Pipeline interface {
	Run(ctx context.Context, req service.RunRequest) (*service.RunResult, error)
}

// Config controls in-process task runner behavior.
type Config struct {
	QueueSize int
	// OnDone, when set, is called from the worker after every run.
	OnDone func(req service.RunRequest, res *service.RunResult, err error)
}

func DefaultConfig() Config {
	return Config{QueueSize: defaultQueueSize}
}

// Runner drains its queue with a single worker; runs never overlap.
type Runner struct {
	pipeline Pipeline
	config   Config
	logger   *zap.Logger

	mu     sync.Mutex
	closed bool
	queue  chan service.RunRequest
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates and starts a task runner.
func New(p Pipeline, cfg Config, logger *zap.Logger) *Runner {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}
	ctx, cancel := context.WithCancel(context.Background())
	r := &Runner{
		pipeline: p,
		config:   cfg,
		logger:   log.OrNop(logger),
		queue:    make(chan service.RunRequest, cfg.QueueSize),
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	go r.worker()
	return r
}

// Submit queues a run without blocking. The request gets a run id if it has
// none; the id actually queued is returned.
func (r *Runner) Submit(req service.RunRequest) (string, error) {
	if req.RunId == "" {
		req.RunId = service.NewRunId()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return "", ErrRunnerStopped
	}
	select {
	case r.queue <- req:
		r.logger.Info("[TaskRunner] run submitted", zap.String("run_id", req.RunId))
		return req.RunId, nil
	default:
		return "", ErrQueueFull
	}
}

func (r *Runner) worker() {
	defer close(r.done)
	for req := range r.queue {
		if r.ctx.Err() != nil {
			r.logger.Warn("[TaskRunner] run dropped", zap.String("run_id", req.RunId))
			continue
		}
		res, err := r.pipeline.Run(r.ctx, req)
		if err != nil {
			r.logger.Error("[TaskRunner] run failed", zap.String("run_id", req.RunId), zap.Error(err))
		} else {
			r.logger.Info("[TaskRunner] run completed", zap.String("run_id", req.RunId), zap.String("output", res.OutputPath))
		}
		if r.config.OnDone != nil {
			r.config.OnDone(req, res, err)
		}
	}
}

func (r *Runner) stop() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return false
	}
	r.closed = true
	close(r.queue)
	return true
}

// Drain rejects new runs and waits for every queued run to finish.
func (r *Runner) Drain() {
	r.stop()
	<-r.done
}

// Close cancels the current run, drops the queued ones and waits for the
// worker to exit.
func (r *Runner) Close() {
	r.cancel()
	r.stop()
	<-r.done
}

// Pending returns the number of queued runs waiting for the worker.
func (r *Runner) Pending() int {
	return len(r.queue)
}

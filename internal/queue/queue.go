// Package queue submits pipeline runs through Redis with Asynq so that a
// separate worker process can render them.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"factreel/config"
	"factreel/log"
)

// TypeRun is the task type of one pipeline run.
const TypeRun = "factreel:run"

// RunPayload contains the data for one run task.
type RunPayload struct {
	RunId string `json:"run_id"`
	Fact  string `json:"fact,omitempty"`
}

// QueueConfig holds Redis configuration for Asynq
type QueueConfig struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	// Concurrency stays at 1: renders are CPU bound and share the workspace root.
	Concurrency int
}

func ConfigFrom(conf config.Queue) QueueConfig {
	return QueueConfig{
		RedisAddr:     conf.RedisAddr,
		RedisPassword: conf.RedisPassword,
		RedisDB:       conf.RedisDB,
		Concurrency:   1,
	}
}

type Queue struct {
	client *asynq.Client
	server *asynq.Server
	config QueueConfig
	logger *zap.Logger
}

func (c QueueConfig) redisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     c.RedisAddr,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
	}
}

// retryDelay backs off exponentially: 10s, 20s, 40s, ...
func retryDelay(n int, _ error, _ *asynq.Task) time.Duration {
	return time.Duration(10<<uint(n)) * time.Second
}

func NewQueue(cfg QueueConfig, logger *zap.Logger) *Queue {
	logger = log.OrNop(logger)
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	server := asynq.NewServer(
		cfg.redisOpt(),
		asynq.Config{
			Concurrency:    cfg.Concurrency,
			RetryDelayFunc: retryDelay,
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logger.Error("task failed",
					zap.String("type", task.Type()),
					zap.ByteString("payload", task.Payload()),
					zap.Error(err))
			}),
		},
	)
	return &Queue{
		client: asynq.NewClient(cfg.redisOpt()),
		server: server,
		config: cfg,
		logger: logger,
	}
}

// NewRunTask builds the task for payload.
func NewRunTask(payload RunPayload) (*asynq.Task, error) {
	if payload.RunId == "" {
		return nil, fmt.Errorf("run id is required")
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return asynq.NewTask(TypeRun, data,
		asynq.MaxRetry(2),
		asynq.Timeout(30*time.Minute),
		asynq.TaskID(payload.RunId),
	), nil
}

// EnqueueRun adds a run to the default queue.
func (q *Queue) EnqueueRun(ctx context.Context, payload RunPayload) error {
	task, err := NewRunTask(payload)
	if err != nil {
		return err
	}
	info, err := q.client.EnqueueContext(ctx, task)
	if err != nil {
		return fmt.Errorf("failed to enqueue task: %w", err)
	}
	q.logger.Info("run enqueued",
		zap.String("run_id", payload.RunId),
		zap.String("queue_id", info.ID),
		zap.String("queue", info.Queue))
	return nil
}

// Close gracefully shuts down the queue
func (q *Queue) Close() error {
	if err := q.client.Close(); err != nil {
		return err
	}
	q.server.Shutdown()
	return nil
}

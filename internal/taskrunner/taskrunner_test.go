package taskrunner

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"factreel/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPipeline struct {
	mu      sync.Mutex
	running int
	maxSeen int
	order   []string
	block   chan struct{}
}

func (p *recordingPipeline) Run(ctx context.Context, req service.RunRequest) (*service.RunResult, error) {
	p.mu.Lock()
	p.running++
	if p.running > p.maxSeen {
		p.maxSeen = p.running
	}
	p.order = append(p.order, req.RunId)
	p.mu.Unlock()

	if p.block != nil {
		select {
		case <-p.block:
		case <-ctx.Done():
		}
	}

	p.mu.Lock()
	p.running--
	p.mu.Unlock()
	if req.Fact == "fail" {
		return nil, errors.New("boom")
	}
	return &service.RunResult{RunId: req.RunId}, nil
}

func TestRunnerRunsSequentially(t *testing.T) {
	p := &recordingPipeline{}
	var mu sync.Mutex
	var failed []string
	r := New(p, Config{OnDone: func(req service.RunRequest, _ *service.RunResult, err error) {
		if err != nil {
			mu.Lock()
			failed = append(failed, req.RunId)
			mu.Unlock()
		}
	}}, nil)

	for _, id := range []string{"a", "b", "c"} {
		fact := ""
		if id == "b" {
			fact = "fail"
		}
		got, err := r.Submit(service.RunRequest{RunId: id, Fact: fact})
		require.NoError(t, err)
		assert.Equal(t, id, got)
	}
	r.Drain()

	assert.Equal(t, []string{"a", "b", "c"}, p.order)
	assert.Equal(t, 1, p.maxSeen)
	assert.Equal(t, []string{"b"}, failed)

	_, err := r.Submit(service.RunRequest{})
	assert.ErrorIs(t, err, ErrRunnerStopped)
}

func TestRunnerAssignsRunId(t *testing.T) {
	r := New(&recordingPipeline{}, DefaultConfig(), nil)
	defer r.Close()

	id, err := r.Submit(service.RunRequest{})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}

func TestRunnerQueueFull(t *testing.T) {
	p := &recordingPipeline{block: make(chan struct{})}
	r := New(p, Config{QueueSize: 1}, nil)
	defer r.Close()

	_, err := r.Submit(service.RunRequest{RunId: "first"})
	require.NoError(t, err)
	require.Eventually(t, func() bool { return r.Pending() == 0 }, time.Second, 5*time.Millisecond)

	_, err = r.Submit(service.RunRequest{RunId: "second"})
	require.NoError(t, err)
	_, err = r.Submit(service.RunRequest{RunId: "third"})
	assert.ErrorIs(t, err, ErrQueueFull)

	close(p.block)
}

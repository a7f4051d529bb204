package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"factreel/internal/service"
	"factreel/internal/taskrunner"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type runOptions struct {
	fact      string
	duration  float64
	outputDir string
	single    bool
}

func (o *runOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.fact, "fact", "f", "", "narrate this fact instead of fetching one")
	cmd.Flags().Float64VarP(&o.duration, "duration", "d", 0, "single-block video length in seconds (overrides video_duration)")
	cmd.Flags().StringVarP(&o.outputDir, "output", "o", "", "output directory (overrides output_dir)")
	cmd.Flags().BoolVar(&o.single, "single", false, "render one background for the whole video")
}

// apply copies the flags that were set onto the loaded config.
func (o *runOptions) apply(a *app) {
	if o.duration > 0 {
		a.conf.VideoDuration = o.duration
	}
	if strings.TrimSpace(o.outputDir) != "" {
		a.conf.OutputDir = o.outputDir
	}
	if o.single {
		a.conf.MultiBackground = false
	}
}

func newRunCmd(root *rootOptions) *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Render one video",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(root)
			if err != nil {
				return err
			}
			defer a.close()
			opts.apply(a)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			res, err := a.service().Run(ctx, service.RunRequest{Fact: opts.fact})
			if err != nil {
				return err
			}
			printResult(cmd.OutOrStdout(), res)
			return nil
		},
	}
	opts.bind(cmd)
	return cmd
}

func printResult(w io.Writer, res *service.RunResult) {
	fmt.Fprintf(w, "run:      %s\n", res.RunId)
	fmt.Fprintf(w, "fact:     %s\n", res.Fact)
	fmt.Fprintf(w, "segments: %d\n", len(res.Segments))
	fmt.Fprintf(w, "duration: %.2fs\n", res.Duration)
	fmt.Fprintf(w, "output:   %s\n", res.OutputPath)
}

// batchSummary collects run outcomes reported by the task runner worker.
type batchSummary struct {
	mu        sync.Mutex
	succeeded []*service.RunResult
	failed    map[string]error
}

func newBatchSummary() *batchSummary {
	return &batchSummary{failed: make(map[string]error)}
}

func (b *batchSummary) record(req service.RunRequest, res *service.RunResult, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.failed[req.RunId] = err
		return
	}
	b.succeeded = append(b.succeeded, res)
}

func (b *batchSummary) report(w io.Writer, submitted int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, res := range b.succeeded {
		fmt.Fprintf(w, "ok     %s  %s\n", res.RunId, res.OutputPath)
	}
	for runId, err := range b.failed {
		fmt.Fprintf(w, "failed %s  %v\n", runId, err)
	}
	fmt.Fprintf(w, "%d of %d runs succeeded\n", len(b.succeeded), submitted)
	if len(b.failed) > 0 {
		return fmt.Errorf("%d of %d runs failed", len(b.failed), submitted)
	}
	return nil
}

func newBatchCmd(root *rootOptions) *cobra.Command {
	opts := &runOptions{}
	var count int
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Render several videos one after another",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if count <= 0 {
				return fmt.Errorf("--count must be positive, got %d", count)
			}
			a, err := newApp(root)
			if err != nil {
				return err
			}
			defer a.close()
			opts.apply(a)

			summary := newBatchSummary()
			runner := taskrunner.New(a.service(), taskrunner.Config{QueueSize: count, OnDone: summary.record}, a.logger)

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			go func() {
				<-ctx.Done()
				runner.Close()
			}()

			submitted := 0
			for i := 0; i < count; i++ {
				if _, err = runner.Submit(service.RunRequest{Fact: opts.fact}); err != nil {
					a.logger.Warn("batch submit stopped", zap.Int("submitted", submitted), zap.Error(err))
					break
				}
				submitted++
			}
			runner.Drain()
			return summary.report(cmd.OutOrStdout(), submitted)
		},
	}
	opts.bind(cmd)
	cmd.Flags().IntVarP(&count, "count", "n", 1, "number of videos to render")
	return cmd
}

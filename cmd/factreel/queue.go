package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"factreel/internal/queue"
	"factreel/internal/service"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newWorkerCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Process runs enqueued in Redis",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(root)
			if err != nil {
				return err
			}
			defer a.close()

			q := queue.NewQueue(queue.ConfigFrom(a.conf.Queue), a.logger)
			defer func() {
				if err := q.Close(); err != nil {
					a.logger.Warn("close queue", zap.Error(err))
				}
			}()
			return queue.StartWorker(q, a.service())
		},
	}
}

func newEnqueueCmd(root *rootOptions) *cobra.Command {
	var (
		count int
		fact  string
	)
	cmd := &cobra.Command{
		Use:   "enqueue",
		Short: "Submit runs to the Redis queue for a worker to render",
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

			q := queue.NewQueue(queue.ConfigFrom(a.conf.Queue), a.logger)
			defer func() {
				if err := q.Close(); err != nil {
					a.logger.Warn("close queue", zap.Error(err))
				}
			}()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			for i := 0; i < count; i++ {
				runId := service.NewRunId()
				if err = q.EnqueueRun(ctx, queue.RunPayload{RunId: runId, Fact: fact}); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), runId)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 1, "number of runs to enqueue")
	cmd.Flags().StringVarP(&fact, "fact", "f", "", "narrate this fact instead of fetching one")
	return cmd
}

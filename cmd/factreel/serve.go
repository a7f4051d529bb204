package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"factreel/internal/handler"
	"factreel/internal/router"
	"factreel/internal/service"
	"factreel/internal/taskrunner"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(root *rootOptions) *cobra.Command {
	var (
		host string
		port int
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the run submission and history API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(root)
			if err != nil {
				return err
			}
			defer a.close()
			if a.store == nil {
				return errors.New("serve needs the run history database")
			}
			if host != "" {
				a.conf.Server.Host = host
			}
			if port > 0 {
				a.conf.Server.Port = port
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if count, err := a.store.MarkStaleRuns(ctx); err != nil {
				a.logger.Warn("mark stale runs", zap.Error(err))
			} else if count > 0 {
				a.logger.Info("marked stale runs as failed", zap.Int64("count", count))
			}

			videoRoot, err := service.ResolveOutputDir(a.conf.OutputDir)
			if err != nil {
				return fmt.Errorf("resolve output dir: %w", err)
			}

			runner := taskrunner.New(a.service(), taskrunner.DefaultConfig(), a.logger)
			defer runner.Close()

			gin.SetMode(gin.ReleaseMode)
			engine := gin.New()
			engine.Use(gin.Recovery())
			router.SetupRouter(engine, handler.NewHandler(runner, a.store, videoRoot, a.logger))

			addr := fmt.Sprintf("%s:%d", a.conf.Server.Host, a.conf.Server.Port)
			srv := &http.Server{Addr: addr, Handler: engine}

			errCh := make(chan error, 1)
			go func() {
				a.logger.Info("api listening", zap.String("addr", addr), zap.String("video_root", videoRoot))
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err = <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("serve %s: %w", addr, err)
				}
				return nil
			case <-ctx.Done():
			}

			a.logger.Info("shutting down api")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&host, "host", "", "listen host (overrides server.host)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides server.port)")
	return cmd
}

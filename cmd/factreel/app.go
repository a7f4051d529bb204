package main

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"factreel/config"
	"factreel/internal/deps"
	"factreel/internal/service"
	"factreel/internal/storage"
	"factreel/log"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// app holds what every pipeline command needs: the validated config, the
// process logger and, when it can be opened, the run history store.
type app struct {
	conf   *config.Config
	logger *zap.Logger
	store  *storage.Store
}

func loadEnv(path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

func loadConfig(opts *rootOptions, logger *zap.Logger) (*config.Config, error) {
	if err := loadEnv(opts.envFile); err != nil {
		return nil, err
	}
	if strings.TrimSpace(opts.configPath) != "" {
		return config.Load(opts.configPath)
	}
	conf, created, err := config.LoadOrCreateConfig()
	if err != nil {
		return nil, err
	}
	if created {
		path, _ := config.ResolveConfigPath()
		log.OrNop(logger).Info("wrote default config", zap.String("path", path))
	}
	return conf, nil
}

// newApp builds the logger and config and checks the required binaries.
// A history store that fails to open only costs the novelty check.
func newApp(opts *rootOptions) (*app, error) {
	logger, err := log.NewDefault()
	if err != nil {
		return nil, err
	}
	conf, err := loadConfig(opts, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}

	states := deps.ResolveDependencyInventory(conf)
	if err = deps.CheckRequired(states); err != nil {
		logger.Error("dependency check failed", zap.Error(err))
		fmt.Println(deps.FormatDependencyReport(states))
		_ = logger.Sync()
		return nil, err
	}

	a := &app{conf: conf, logger: logger}
	if a.store, err = storage.Open(opts.dbPath, logger); err != nil {
		logger.Warn("run history unavailable", zap.Error(err))
		a.store = nil
	}
	return a, nil
}

func (a *app) history() service.HistoryStore {
	if a.store == nil {
		return nil
	}
	return a.store
}

func (a *app) service() *service.Service {
	return service.NewService(a.conf, a.history(), a.logger)
}

func (a *app) close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("close run history", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}

// Package storage keeps the run history in sqlite.
package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"factreel/internal/appdirs"
	"factreel/internal/types"
	"factreel/log"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var appDirsResolver = appdirs.Resolve

type Store struct {
	db     *gorm.DB
	logger *zap.Logger
}

// Open opens (or creates) the history database at dsn and migrates it.
// An empty dsn uses the default location under the cache directory.
func Open(dsn string, zl *zap.Logger) (*Store, error) {
	zl = log.OrNop(zl)
	if dsn == "" {
		path, err := resolveDBPath()
		if err != nil {
			return nil, fmt.Errorf("resolve database path: %w", err)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
		dsn = path
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err = db.AutoMigrate(&types.Run{}); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	zl.Debug("run history opened", zap.String("dsn", dsn))
	return &Store{db: db, logger: zl}, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func resolveDBPath() (string, error) {
	dirs, err := appDirsResolver()
	if err != nil {
		return "", err
	}
	return dirs.HistoryDB(), nil
}

package storage

import (
	"context"
	"errors"
	"fmt"

	"factreel/internal/types"

	"gorm.io/gorm"
)

var ErrRunNotFound = errors.New("run not found")

const interruptedReason = "interrupted by restart"

// SaveRun creates the run or updates the row with the same RunId.
func (s *Store) SaveRun(ctx context.Context, run *types.Run) error {
	var existing types.Run
	err := s.db.WithContext(ctx).Where("run_id = ?", run.RunId).First(&existing).Error
	switch {
	case err == nil:
		run.Id = existing.Id
		run.CreateTime = existing.CreateTime
		return s.db.WithContext(ctx).Save(run).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		return s.db.WithContext(ctx).Create(run).Error
	default:
		return err
	}
}

func (s *Store) GetRun(ctx context.Context, runId string) (*types.Run, error) {
	var run types.Run
	err := s.db.WithContext(ctx).Where("run_id = ?", runId).First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runId)
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// ListRuns returns up to limit runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]types.Run, error) {
	if limit <= 0 {
		limit = 20
	}
	var runs []types.Run
	err := s.db.WithContext(ctx).Order("create_time desc").Order("id desc").Limit(limit).Find(&runs).Error
	return runs, err
}

// RecentFacts lists the raw facts of the newest runs, skipping empty ones.
func (s *Store) RecentFacts(ctx context.Context, limit int) ([]string, error) {
	var facts []string
	err := s.db.WithContext(ctx).Model(&types.Run{}).
		Where("fact <> ''").
		Order("create_time desc").Order("id desc").
		Limit(limit).
		Pluck("fact", &facts).Error
	return facts, err
}

// MarkStaleRuns fails runs left queued or running by a previous process.
func (s *Store) MarkStaleRuns(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).Model(&types.Run{}).
		Where("status IN ?", []types.RunStatus{types.RunQueued, types.RunRunning}).
		Updates(map[string]interface{}{
			"status":      types.RunFailed,
			"fail_reason": interruptedReason,
		})
	return result.RowsAffected, result.Error
}

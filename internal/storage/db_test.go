package storage

import (
	"context"
	"path/filepath"
	"testing"

	"factreel/internal/appdirs"
	"factreel/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveDBPathUsesOutputDir(t *testing.T) {
	originalResolver := appDirsResolver
	t.Cleanup(func() {
		appDirsResolver = originalResolver
	})

	tempDir := t.TempDir()
	outputDir := filepath.Join(tempDir, "output-root")
	appDirsResolver = func() (appdirs.Paths, error) {
		return appdirs.Paths{
			OutputDir: outputDir,
			CacheDir:  filepath.Join(tempDir, "cache-root"),
		}, nil
	}

	got, err := resolveDBPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(outputDir, "history.db"), got)
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "runs.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSaveRunUpserts(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	run := &types.Run{RunId: "r1", Status: types.RunQueued}
	require.NoError(t, s.SaveRun(ctx, run))

	require.NotZero(t, run.CreateTime)
	require.NoError(t, s.SaveRun(ctx, &types.Run{
		RunId: "r1", Status: types.RunSucceeded, Fact: "Honey never spoils.", SegmentCount: 4,
	}))

	got, err := s.GetRun(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, types.RunSucceeded, got.Status)
	assert.Equal(t, 4, got.SegmentCount)
	assert.Equal(t, run.CreateTime, got.CreateTime)

	runs, err := s.ListRuns(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestGetRunNotFound(t *testing.T) {
	_, err := openTestStore(t).GetRun(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestListRunsAndRecentFactsNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	for i, fact := range []string{"first", "", "third"} {
		require.NoError(t, s.SaveRun(ctx, &types.Run{
			RunId:      string(rune('a' + i)),
			Fact:       fact,
			Status:     types.RunSucceeded,
			CreateTime: int64(1000 + i),
		}))
	}

	runs, err := s.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "c", runs[0].RunId)
	assert.Equal(t, "b", runs[1].RunId)

	facts, err := s.RecentFacts(ctx, 20)
	require.NoError(t, err)
	assert.Equal(t, []string{"third", "first"}, facts)
}

func TestMarkStaleRuns(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	require.NoError(t, s.SaveRun(ctx, &types.Run{RunId: "q", Status: types.RunQueued}))
	require.NoError(t, s.SaveRun(ctx, &types.Run{RunId: "r", Status: types.RunRunning}))
	require.NoError(t, s.SaveRun(ctx, &types.Run{RunId: "d", Status: types.RunSucceeded}))

	n, err := s.MarkStaleRuns(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	got, err := s.GetRun(ctx, "r")
	require.NoError(t, err)
	assert.Equal(t, types.RunFailed, got.Status)
	assert.Equal(t, interruptedReason, got.FailReason)
}

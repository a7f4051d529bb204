package appdirs

import (
	"path/filepath"
	"strings"
)

const (
	VideoRootName     = "videos"
	DownloadsRootName = "downloads"
	historyDBName     = "history.db"
)

// VideoRoot is where rendered videos land unless output_dir overrides it.
func (p Paths) VideoRoot() string {
	return filepath.Join(orDefault(p.OutputDir, "output"), VideoRootName)
}

// HistoryDB is the sqlite file holding run history.
func (p Paths) HistoryDB() string {
	return filepath.Join(orDefault(p.OutputDir, "output"), historyDBName)
}

// DownloadsRoot holds the per-run workspaces for narration and fetched clips.
func (p Paths) DownloadsRoot() string {
	return filepath.Join(orDefault(p.CacheDir, "cache"), DownloadsRootName)
}

func orDefault(dir, fallback string) string {
	if cleaned := strings.TrimSpace(dir); cleaned != "" {
		return filepath.Clean(cleaned)
	}
	return fallback
}

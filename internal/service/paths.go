package service

import (
	"path/filepath"
	"strings"

	"factreel/internal/appdirs"
	"factreel/pkg/util"
)

var appDirsResolver = appdirs.Resolve

// resolveWorkRoot is where per-run workspaces are created.
func resolveWorkRoot() (string, error) {
	dirs, err := appDirsResolver()
	if err != nil {
		return "", err
	}
	return dirs.DownloadsRoot(), nil
}

// ResolveOutputDir prefers the configured output_dir and falls back to the
// videos directory under the application output root.
func ResolveOutputDir(configured string) (string, error) {
	if strings.TrimSpace(configured) != "" {
		return filepath.Clean(strings.TrimSpace(configured)), nil
	}
	dirs, err := appDirsResolver()
	if err != nil {
		return "", err
	}
	return dirs.VideoRoot(), nil
}

var separatorReplacer = strings.NewReplacer("/", "_", "\\", "_")

// outputPathFor names the video after the fact. Path separators in the fact
// become underscores so the file always lands directly in dir.
func outputPathFor(dir, fact string) string {
	return filepath.Join(dir, separatorReplacer.Replace(util.SanitizeVideoName(fact)))
}

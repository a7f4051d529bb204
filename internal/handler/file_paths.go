package handler

import (
	"os"
	"path/filepath"
	"strings"

	"factreel/internal/appdirs"
)

// downloadPathFor is the /api/file path of a rendered video, or "" when the
// file lies outside videoRoot.
func downloadPathFor(videoRoot, outputPath string) string {
	if videoRoot == "" || outputPath == "" {
		return ""
	}
	root, err := filepath.Abs(videoRoot)
	if err != nil {
		return ""
	}
	out, err := filepath.Abs(outputPath)
	if err != nil {
		return ""
	}
	rel, err := filepath.Rel(root, out)
	if err != nil || rel == "." || !isPathWithinRoot(root, out) {
		return ""
	}
	return appdirs.VideoRootName + "/" + filepath.ToSlash(rel)
}

// resolveDownloadPath maps a requested "videos/<name>" path to a file under
// videoRoot. ok is false for traversal attempts and foreign prefixes.
func resolveDownloadPath(videoRoot, requested string) (path string, ok bool) {
	requested = strings.TrimSpace(requested)
	requested = strings.TrimPrefix(requested, "/")
	if hasParentTraversal(requested) {
		return "", false
	}
	requested = filepath.ToSlash(filepath.Clean(requested))

	prefix := appdirs.VideoRootName + "/"
	if !strings.HasPrefix(requested, prefix) {
		return "", false
	}
	candidate := filepath.Clean(filepath.Join(videoRoot, filepath.FromSlash(strings.TrimPrefix(requested, prefix))))
	if !isPathWithinRoot(videoRoot, candidate) {
		return "", false
	}
	return candidate, true
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func isPathWithinRoot(root, candidate string) bool {
	root = filepath.Clean(root)
	candidate = filepath.Clean(candidate)

	rel, err := filepath.Rel(root, candidate)
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func hasParentTraversal(path string) bool {
	normalized := strings.ReplaceAll(path, "\\", "/")
	parts := strings.Split(normalized, "/")
	for _, part := range parts {
		if part == ".." {
			return true
		}
	}
	return false
}

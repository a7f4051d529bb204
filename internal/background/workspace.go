package background

import (
	"fmt"
	"os"
	"path/filepath"
)

// Workspace holds the clips downloaded during one run. Close removes it.
type Workspace struct {
	dir string
}

func NewWorkspace(root string) (*Workspace, error) {
	if root != "" {
		if err := os.MkdirAll(root, 0o755); err != nil {
			return nil, fmt.Errorf("create downloads root: %w", err)
		}
	}
	dir, err := os.MkdirTemp(root, "multi_background_")
	if err != nil {
		return nil, fmt.Errorf("create run workspace: %w", err)
	}
	return &Workspace{dir: dir}, nil
}

func (w *Workspace) Dir() string { return w.dir }

func (w *Workspace) ClipPath(index int) string {
	return filepath.Join(w.dir, fmt.Sprintf("background_%d.mp4", index))
}

func (w *Workspace) Close() error {
	return os.RemoveAll(w.dir)
}

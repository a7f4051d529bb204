package background

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
)

// LocalLibrary picks clips from a directory by file name.
type LocalLibrary struct {
	Dir string
}

// Files lists the regular, non-hidden files of the library in name order. A
// missing directory is an empty library.
func (l LocalLibrary) Files() ([]string, error) {
	if l.Dir == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(l.Dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read backgrounds dir %s: %w", l.Dir, err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		files = append(files, e.Name())
	}
	return files, nil
}

// Matches returns the paths of files whose lowercased name contains any of
// the keywords.
func (l LocalLibrary) Matches(keywords []string) ([]string, error) {
	files, err := l.Files()
	if err != nil {
		return nil, err
	}
	kws := lo.Filter(lo.Map(keywords, func(k string, _ int) string {
		return strings.ToLower(strings.TrimSpace(k))
	}), func(k string, _ int) bool { return k != "" })

	var matches []string
	for _, f := range files {
		name := strings.ToLower(f)
		if lo.ContainsBy(kws, func(k string) bool { return strings.Contains(name, k) }) {
			matches = append(matches, filepath.Join(l.Dir, f))
		}
	}
	return matches, nil
}

// Pick returns a uniformly random match, or false when nothing matches.
func (l LocalLibrary) Pick(keywords []string, rng *rand.Rand) (string, bool, error) {
	matches, err := l.Matches(keywords)
	if err != nil || len(matches) == 0 {
		return "", false, err
	}
	return matches[rng.Intn(len(matches))], true, nil
}

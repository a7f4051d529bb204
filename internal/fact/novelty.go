package fact

import (
	"context"
	"strings"

	"factreel/internal/types"
	"factreel/log"

	"github.com/texttheater/golang-levenshtein/levenshtein"
	"go.uber.org/zap"
)

const (
	DefaultNoveltyThreshold = 0.9
	DefaultNoveltyWindow    = 20
)

// History lists the facts narrated by recent runs, newest first.
type History interface {
	RecentFacts(ctx context.Context, limit int) ([]string, error)
}

// NoveltyFilter re-fetches once when a fact is too close to a recent one.
type NoveltyFilter struct {
	Source    types.FactSource
	History   History
	Threshold float64
	Window    int
	logger    *zap.Logger
}

func NewNoveltyFilter(source types.FactSource, history History, threshold float64, logger *zap.Logger) *NoveltyFilter {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultNoveltyThreshold
	}
	return &NoveltyFilter{
		Source:    source,
		History:   history,
		Threshold: threshold,
		Window:    DefaultNoveltyWindow,
		logger:    log.OrNop(logger),
	}
}

func (n *NoveltyFilter) Fetch(ctx context.Context) string {
	fact := n.Source.Fetch(ctx)
	recent, err := n.History.RecentFacts(ctx, n.Window)
	if err != nil {
		n.logger.Warn("novelty check skipped", zap.Error(err))
		return fact
	}
	score, ok := n.seen(fact, recent)
	if !ok {
		return fact
	}
	n.logger.Info("fact repeats a recent run, fetching again", zap.Float64("similarity", score))
	return n.Source.Fetch(ctx)
}

func (n *NoveltyFilter) seen(fact string, recent []string) (float64, bool) {
	for _, r := range recent {
		if s := Similarity(fact, r); s > n.Threshold {
			return s, true
		}
	}
	return 0, false
}

// Similarity is the normalized Levenshtein ratio of two facts after case and
// whitespace folding, in [0, 1].
func Similarity(a, b string) float64 {
	na, nb := normalize(a), normalize(b)
	if na == nb {
		return 1
	}
	return levenshtein.RatioForStrings([]rune(na), []rune(nb), levenshtein.DefaultOptions)
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Package background chooses a clip for every timeline segment, preferring
// local files and falling back to stock footage search.
package background

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"factreel/internal/types"
	"factreel/log"

	"github.com/go-resty/resty/v2"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// ErrNoSource is returned when no local file or remote source produced a clip.
var ErrNoSource = errors.New("no background source succeeded")

const maxQueryKeywords = 3

type Resolver struct {
	local        LocalLibrary
	sources      []types.AssetSource
	client       *resty.Client
	defaultQuery string
	delay        time.Duration
	sleep        func(time.Duration)
	rng          *rand.Rand
	logger       *zap.Logger
}

type Option func(*Resolver)

func WithSources(sources ...types.AssetSource) Option {
	return func(r *Resolver) { r.sources = sources }
}

// WithDelay sets the pause between consecutive segments.
func WithDelay(d time.Duration) Option {
	return func(r *Resolver) { r.delay = d }
}

func WithSleep(sleep func(time.Duration)) Option {
	return func(r *Resolver) { r.sleep = sleep }
}

func WithRand(rng *rand.Rand) Option {
	return func(r *Resolver) { r.rng = rng }
}

func WithDefaultQuery(q string) Option {
	return func(r *Resolver) {
		if strings.TrimSpace(q) != "" {
			r.defaultQuery = q
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(r *Resolver) { r.logger = log.OrNop(l) }
}

func NewResolver(dir string, client *resty.Client, opts ...Option) *Resolver {
	if client == nil {
		client = resty.New()
	}
	r := &Resolver{
		local:        LocalLibrary{Dir: dir},
		client:       client,
		defaultQuery: "nature",
		delay:        800 * time.Millisecond,
		sleep:        time.Sleep,
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Query joins up to three keywords with '+', or returns the default query.
func (r *Resolver) Query(keywords []string) string {
	var parts []string
	for _, k := range keywords {
		if k = strings.TrimSpace(k); k != "" {
			parts = append(parts, k)
		}
		if len(parts) == maxQueryKeywords {
			break
		}
	}
	if len(parts) == 0 {
		return r.defaultQuery
	}
	return strings.Join(parts, "+")
}

// localTerms is what file names are matched against: the non-blank keywords,
// or the default query when there are none.
func (r *Resolver) localTerms(keywords []string) []string {
	terms := lo.FilterMap(keywords, func(k string, _ int) (string, bool) {
		k = strings.TrimSpace(k)
		return k, k != ""
	})
	if len(terms) == 0 {
		return []string{r.defaultQuery}
	}
	return terms
}

// Resolve finds one clip for keywords. Remote clips are downloaded into
// ws as background_<index>.mp4.
func (r *Resolver) Resolve(ctx context.Context, keywords []string, ws *Workspace, index int) (types.BackgroundAsset, error) {
	path, ok, err := r.local.Pick(r.localTerms(keywords), r.rng)
	if err != nil {
		r.logger.Warn("local backgrounds unavailable", zap.Error(err))
	}
	if ok {
		r.logger.Debug("picked local background", zap.String("path", path), zap.Strings("keywords", keywords))
		return types.BackgroundAsset{Kind: types.AssetLocal, Path: path, Source: "local", Keywords: keywords}, nil
	}

	query := r.Query(keywords)
	var errs []error
	for _, src := range r.sources {
		if err := ctx.Err(); err != nil {
			return types.BackgroundAsset{}, err
		}
		url, err := src.Search(ctx, query)
		if err != nil {
			r.logger.Warn("background source failed", zap.String("source", src.Name()), zap.String("query", query), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", src.Name(), err))
			continue
		}
		dest := ws.ClipPath(index)
		if err := r.download(ctx, url, dest); err != nil {
			r.logger.Warn("background download failed", zap.String("source", src.Name()), zap.String("url", url), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", src.Name(), err))
			continue
		}
		r.logger.Info("downloaded background", zap.String("source", src.Name()), zap.String("path", dest))
		return types.BackgroundAsset{Kind: types.AssetRemote, Path: dest, URL: url, Source: src.Name(), Keywords: keywords}, nil
	}
	return types.BackgroundAsset{}, fmt.Errorf("%w for %q: %w", ErrNoSource, query, errors.Join(errs...))
}

// ResolveAll resolves every segment in order, pausing between segments.
// A segment that no source can serve gets a placeholder asset.
func (r *Resolver) ResolveAll(ctx context.Context, segments []types.TimingSegment, ws *Workspace) ([]types.BackgroundAsset, error) {
	assets := make([]types.BackgroundAsset, 0, len(segments))
	for i, seg := range segments {
		if i > 0 && r.delay > 0 {
			r.sleep(r.delay)
		}
		asset, err := r.Resolve(ctx, seg.Keywords, ws, i)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if err != nil {
			r.logger.Warn("using placeholder background", zap.Int("segment", i), zap.Error(err))
			asset = types.BackgroundAsset{Kind: types.AssetPlaceholder, Keywords: seg.Keywords}
		}
		assets = append(assets, asset)
	}
	return assets, nil
}

func (r *Resolver) download(ctx context.Context, url, dest string) error {
	resp, err := r.client.R().
		SetContext(ctx).
		SetOutput(dest).
		Get(url)
	if err != nil {
		_ = os.Remove(dest)
		return err
	}
	if resp.IsError() {
		_ = os.Remove(dest)
		return fmt.Errorf("status %d", resp.StatusCode())
	}
	if info, statErr := os.Stat(dest); statErr != nil || info.Size() == 0 {
		_ = os.Remove(dest)
		return fmt.Errorf("empty download")
	}
	return nil
}

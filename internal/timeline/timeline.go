// Package timeline turns narration text into contiguous caption segments.
package timeline

import (
	"context"
	"fmt"

	"factreel/internal/align"
	"factreel/internal/keywords"
	"factreel/internal/segment"
	"factreel/internal/types"
	"factreel/log"

	"go.uber.org/zap"
)

type Options struct {
	// PerSegment splits the narration into sentence chunks; otherwise the
	// whole text is one segment.
	PerSegment bool
	// AlignAudio measures chunk positions in the narration audio instead of
	// estimating them.
	AlignAudio      bool
	MaxWords        int
	WordsPerSecond  float64
	MinDuration     float64
	SegmentKeywords int
	MaxKeywords     int
}

func DefaultOptions() Options {
	return Options{
		PerSegment:      true,
		MaxWords:        segment.DefaultMaxWords,
		WordsPerSecond:  segment.DefaultWordsPerSecond,
		MinDuration:     segment.MinDuration,
		SegmentKeywords: 3,
		MaxKeywords:     5,
	}
}

// Audio describes the narration track. A zero Duration means it has not been
// measured.
type Audio struct {
	Path     string
	Duration float64
}

// SpanAligner is satisfied by *align.Aligner.
type SpanAligner interface {
	AlignFile(ctx context.Context, audioPath, text string) (align.Result, error)
}

type Builder struct {
	opts      Options
	estimator segment.Estimator
	aligner   SpanAligner
	logger    *zap.Logger
}

func NewBuilder(opts Options, aligner SpanAligner, logger *zap.Logger) *Builder {
	if opts.MaxWords <= 0 {
		opts.MaxWords = segment.DefaultMaxWords
	}
	if opts.SegmentKeywords <= 0 {
		opts.SegmentKeywords = 3
	}
	if opts.MaxKeywords <= 0 {
		opts.MaxKeywords = 5
	}
	return &Builder{
		opts:      opts,
		estimator: segment.NewEstimator(opts.WordsPerSecond, opts.MinDuration),
		aligner:   aligner,
		logger:    log.OrNop(logger),
	}
}

// Build returns segments that start at 0, touch end to start, and end at the
// measured audio duration when known, else at the summed estimate.
func (b *Builder) Build(ctx context.Context, text string, audio Audio) ([]types.TimingSegment, error) {
	if segment.CountWords(text) == 0 {
		return nil, fmt.Errorf("narration has no words")
	}
	if !b.opts.PerSegment {
		return b.single(text, audio), nil
	}
	if b.opts.AlignAudio {
		if b.aligner == nil || audio.Path == "" {
			return nil, fmt.Errorf("audio alignment requested without narration audio")
		}
		return b.aligned(ctx, text, audio)
	}
	return b.estimated(text, audio.Duration), nil
}

func (b *Builder) single(text string, audio Audio) []types.TimingSegment {
	total := audio.Duration
	if total <= 0 {
		for _, s := range segment.SplitSentences(text) {
			total += b.estimator.Estimate(s)
		}
	}
	return []types.TimingSegment{{
		Text:     text,
		Start:    0,
		End:      total,
		Keywords: keywords.Extract(text, b.opts.MaxKeywords),
	}}
}

// estimated gives every sentence its estimated duration, split evenly over
// its chunks. A measured duration rescales the whole timeline to fit it.
func (b *Builder) estimated(text string, measured float64) []types.TimingSegment {
	var segs []types.TimingSegment
	cursor := 0.0
	for _, sentence := range segment.SplitSentences(text) {
		kws := keywords.Rank(sentence, b.opts.SegmentKeywords)
		chunks := segment.ChunkSentence(sentence, b.opts.MaxWords)
		each := b.estimator.Estimate(sentence) / float64(len(chunks))
		for _, c := range chunks {
			segs = append(segs, types.TimingSegment{
				Text:     c,
				Start:    cursor,
				End:      cursor + each,
				Keywords: kws,
			})
			cursor += each
		}
	}
	if measured > 0 && cursor > 0 {
		scale := measured / cursor
		for i := range segs {
			segs[i].Start *= scale
			segs[i].End *= scale
		}
		b.logger.Debug("rescaled estimate to measured audio",
			zap.Float64("estimate", cursor),
			zap.Float64("measured", measured))
		cursor = measured
	}
	stitch(segs, cursor)
	return segs
}

func (b *Builder) aligned(ctx context.Context, text string, audio Audio) ([]types.TimingSegment, error) {
	res, err := b.aligner.AlignFile(ctx, audio.Path, text)
	if err != nil {
		return nil, err
	}
	total := audio.Duration
	if total <= 0 {
		total = res.Duration
	}

	type chunk struct {
		text string
		kws  []string
	}
	var chunks []chunk
	for _, sentence := range segment.SplitSentences(text) {
		kws := keywords.Rank(sentence, b.opts.SegmentKeywords)
		for _, c := range segment.ChunkSentence(sentence, align.ChunkWords) {
			chunks = append(chunks, chunk{c, kws})
		}
	}
	if len(chunks) != len(res.Spans) {
		b.logger.Warn("aligner chunking disagrees with sentence chunking, using estimates",
			zap.Int("chunks", len(chunks)),
			zap.Int("spans", len(res.Spans)))
		return b.estimated(text, total), nil
	}

	bounds := Reconcile(res.Spans, total)
	segs := make([]types.TimingSegment, len(chunks))
	for i, c := range chunks {
		segs[i] = types.TimingSegment{
			Text:     c.text,
			Start:    bounds[i],
			End:      bounds[i+1],
			Keywords: c.kws,
		}
	}
	return segs, nil
}

// stitch removes floating point drift so that each segment starts exactly
// where the previous one ended and the last ends at total.
func stitch(segs []types.TimingSegment, total float64) {
	if len(segs) == 0 {
		return
	}
	segs[0].Start = 0
	for i := 1; i < len(segs); i++ {
		segs[i].Start = segs[i-1].End
	}
	segs[len(segs)-1].End = total
}

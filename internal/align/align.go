// Package align measures where narration chunks fall in the rendered audio.
package align

import (
	"context"
	"errors"
	"fmt"

	"factreel/internal/types"
	"factreel/log"
	"factreel/pkg/util"

	"go.uber.org/zap"
)

// ErrDecode is returned when the narration audio cannot be read.
var ErrDecode = errors.New("audio decode failed")

// Decoder loads mono s16 samples from an audio file.
type Decoder func(path string, sampleRate int) ([]int16, error)

type Aligner struct {
	thresholdDB  float64
	minSilenceMs int
	sampleRate   int
	decode       Decoder
	logger       *zap.Logger
}

type Option func(*Aligner)

func WithThresholdDB(db float64) Option {
	return func(a *Aligner) { a.thresholdDB = db }
}

func WithMinSilenceMs(ms int) Option {
	return func(a *Aligner) {
		if ms > 0 {
			a.minSilenceMs = ms
		}
	}
}

// WithDecoder replaces the ffmpeg decoder, mainly for tests.
func WithDecoder(d Decoder) Option {
	return func(a *Aligner) { a.decode = d }
}

func WithLogger(l *zap.Logger) Option {
	return func(a *Aligner) { a.logger = log.OrNop(l) }
}

func New(opts ...Option) *Aligner {
	a := &Aligner{
		thresholdDB:  DefaultThresholdDB,
		minSilenceMs: DefaultMinSilenceMs,
		sampleRate:   util.PCMSampleRate,
		decode:       util.DecodePCM,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Result is the aligner's view of one narration.
type Result struct {
	Spans     []types.SpeechInterval
	Intervals []types.SpeechInterval
	Strategy  Strategy
	Duration  float64
}

// Align maps the chunks of text onto already decoded samples.
func (a *Aligner) Align(samples []int16, text string) Result {
	intervals := Detect(samples, a.sampleRate, a.thresholdDB, a.minSilenceMs)
	total := float64(len(samples)) / float64(a.sampleRate)
	spans, strategy := Plan(intervals, text, total)
	if strategy == StrategySparse {
		a.logger.Warn("sparse speech evidence, dividing audio evenly",
			zap.Int("intervals", len(intervals)),
			zap.Int("chunks", len(spans)))
	}
	return Result{
		Spans:     spans,
		Intervals: intervals,
		Strategy:  strategy,
		Duration:  total,
	}
}

// AlignFile decodes audioPath and aligns text against it. A file that cannot
// be decoded, or decodes to nothing, fails with ErrDecode.
func (a *Aligner) AlignFile(ctx context.Context, audioPath, text string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	samples, err := a.decode(audioPath, a.sampleRate)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if len(samples) < a.sampleRate/1000 {
		return Result{}, fmt.Errorf("%w: %s has no audio", ErrDecode, audioPath)
	}
	res := a.Align(samples, text)
	a.logger.Debug("aligned narration",
		zap.String("audio", audioPath),
		zap.String("strategy", string(res.Strategy)),
		zap.Int("intervals", len(res.Intervals)),
		zap.Float64("duration", res.Duration))
	return res, nil
}

package align

import (
	"factreel/internal/segment"
	"factreel/internal/types"
)

// ChunkWords is the fixed chunk size the aligner maps onto audio.
const ChunkWords = 5

type Strategy string

const (
	StrategySparse Strategy = "sparse"
	StrategyMapped Strategy = "mapped"
)

// Sparse reports whether there is too little audio evidence to map chunks
// onto speech intervals: fewer intervals than half the word count.
func Sparse(intervals, words int) bool {
	return float64(intervals) < float64(words)/2
}

// Plan assigns a (start, end) span to every chunk of text. With sparse
// evidence the total duration is divided evenly across chunks. Otherwise each
// chunk takes the bounds of one speech interval: the first len(chunks)
// intervals in order, or when chunks outnumber intervals, interval
// floor(i*chunks/intervals) clamped to the last one.
func Plan(intervals []types.SpeechInterval, text string, total float64) ([]types.SpeechInterval, Strategy) {
	chunks := segment.ChunkText(text, ChunkWords)
	n := len(chunks)
	if n == 0 {
		return nil, StrategyMapped
	}

	if Sparse(len(intervals), segment.CountWords(text)) {
		slice := total / float64(n)
		spans := make([]types.SpeechInterval, n)
		for i := range spans {
			spans[i] = types.SpeechInterval{Start: float64(i) * slice, End: float64(i+1) * slice}
		}
		spans[n-1].End = total
		return spans, StrategySparse
	}

	spans := make([]types.SpeechInterval, n)
	if n <= len(intervals) {
		copy(spans, intervals[:n])
		return spans, StrategyMapped
	}
	last := len(intervals) - 1
	for i := range spans {
		idx := i * n / len(intervals)
		if idx > last {
			idx = last
		}
		spans[i] = intervals[idx]
	}
	return spans, StrategyMapped
}

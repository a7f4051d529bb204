package align

import (
	"context"
	"errors"
	"strings"
	"testing"

	"factreel/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rate = 16000

// tone builds ms milliseconds of constant amplitude samples.
func tone(ms int, amp int16) []int16 {
	out := make([]int16, ms*rate/1000)
	for i := range out {
		if i%2 == 0 {
			out[i] = amp
		} else {
			out[i] = -amp
		}
	}
	return out
}

func concat(parts ...[]int16) []int16 {
	var out []int16
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func words(n int) string {
	w := make([]string, n)
	for i := range w {
		w[i] = "word"
	}
	return strings.Join(w, " ")
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name    string
		samples []int16
		want    []types.SpeechInterval
	}{
		{
			name:    "short gaps are not silence",
			samples: concat(tone(300, 10000), tone(200, 0), tone(300, 10000), tone(50, 0), tone(200, 10000)),
			want:    []types.SpeechInterval{{Start: 0, End: 0.3}, {Start: 0.5, End: 1.05}},
		},
		{
			name:    "leading and trailing silence",
			samples: concat(tone(150, 0), tone(400, 8000), tone(120, 0)),
			want:    []types.SpeechInterval{{Start: 0.15, End: 0.55}},
		},
		{
			name:    "low level counts as silence",
			samples: concat(tone(200, 5000), tone(200, 100), tone(200, 5000)),
			want:    []types.SpeechInterval{{Start: 0, End: 0.2}, {Start: 0.4, End: 0.6}},
		},
		{
			name:    "all silent",
			samples: tone(500, 0),
			want:    nil,
		},
		{
			name:    "no silence",
			samples: tone(500, 9000),
			want:    []types.SpeechInterval{{Start: 0, End: 0.5}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Detect(tt.samples, rate, DefaultThresholdDB, DefaultMinSilenceMs)
			require.Len(t, got, len(tt.want))
			for i := range tt.want {
				assert.InDelta(t, tt.want[i].Start, got[i].Start, 1e-9)
				assert.InDelta(t, tt.want[i].End, got[i].End, 1e-9)
			}
		})
	}
}

func TestSparseThreshold(t *testing.T) {
	assert.True(t, Sparse(3, 20))
	assert.True(t, Sparse(9, 20))
	assert.False(t, Sparse(10, 20))
	assert.True(t, Sparse(2, 5))
	assert.False(t, Sparse(3, 5))
	assert.False(t, Sparse(0, 0))
}

func TestPlanSparseFallback(t *testing.T) {
	intervals := []types.SpeechInterval{{Start: 0, End: 1}, {Start: 2, End: 3}, {Start: 4, End: 5}}

	spans, strategy := Plan(intervals, words(20), 8.0)

	assert.Equal(t, StrategySparse, strategy)
	require.Len(t, spans, 4)
	sum := 0.0
	for i, s := range spans {
		assert.InDelta(t, 2.0, s.End-s.Start, 1e-9)
		assert.InDelta(t, float64(i)*2.0, s.Start, 1e-9)
		sum += s.End - s.Start
	}
	assert.InDelta(t, 8.0, sum, 1e-9)
}

func TestPlanMappedOneToOne(t *testing.T) {
	intervals := []types.SpeechInterval{{Start: 0, End: 1.1}, {Start: 1.3, End: 2.4}, {Start: 2.9, End: 3.5}, {Start: 3.8, End: 4.6}, {Start: 4.8, End: 5.0}}
	text := "One two three four five. Six seven eight nine ten."

	spans, strategy := Plan(intervals, text, 5.0)

	assert.Equal(t, StrategyMapped, strategy)
	assert.Equal(t, intervals[:2], spans)
}

func TestPlanMappedEqualCountsAreDistinct(t *testing.T) {
	intervals := []types.SpeechInterval{{Start: 0, End: 1}, {Start: 1.5, End: 2}, {Start: 2.5, End: 3}}
	spans, strategy := Plan(intervals, "Alpha beta. Gamma delta. Epsilon zeta.", 3.0)

	assert.Equal(t, StrategyMapped, strategy)
	assert.Equal(t, intervals, spans)
}

func TestPlanMappedRatio(t *testing.T) {
	intervals := []types.SpeechInterval{{Start: 0, End: 1}, {Start: 1.5, End: 2.5}}

	spans, strategy := Plan(intervals, "A. B. C. D.", 3.0)

	assert.Equal(t, StrategyMapped, strategy)
	assert.Equal(t, []types.SpeechInterval{intervals[0], intervals[1], intervals[1], intervals[1]}, spans)
}

func TestPlanEmptyText(t *testing.T) {
	spans, _ := Plan([]types.SpeechInterval{{Start: 0, End: 1}}, "  ", 1.0)
	assert.Empty(t, spans)
}

func TestAlignFileDecodeError(t *testing.T) {
	a := New(WithDecoder(func(string, int) ([]int16, error) {
		return nil, errors.New("invalid data found when processing input")
	}))

	_, err := a.AlignFile(context.Background(), "voice.mp3", "Honey never spoils.")

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDecode))
}

func TestAlignFileEmptyAudio(t *testing.T) {
	a := New(WithDecoder(func(string, int) ([]int16, error) { return []int16{}, nil }))

	_, err := a.AlignFile(context.Background(), "voice.mp3", "Honey never spoils.")

	assert.True(t, errors.Is(err, ErrDecode))
}

func TestAlignFile(t *testing.T) {
	samples := concat(tone(900, 9000), tone(300, 0), tone(800, 9000))
	a := New(WithDecoder(func(path string, sr int) ([]int16, error) {
		assert.Equal(t, "voice.mp3", path)
		assert.Equal(t, rate, sr)
		return samples, nil
	}), WithMinSilenceMs(200))

	res, err := a.AlignFile(context.Background(), "voice.mp3", "Honey never spoils. Pots.")

	require.NoError(t, err)
	assert.Equal(t, StrategyMapped, res.Strategy)
	assert.InDelta(t, 2.0, res.Duration, 1e-9)
	require.Len(t, res.Spans, 2)
	assert.InDelta(t, 0.9, res.Spans[0].End, 1e-9)
	assert.InDelta(t, 1.2, res.Spans[1].Start, 1e-9)
	assert.InDelta(t, 2.0, res.Spans[1].End, 1e-9)
}

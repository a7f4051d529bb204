package timeline

import (
	"testing"

	"factreel/internal/types"

	"github.com/stretchr/testify/assert"
)

func TestReconcile(t *testing.T) {
	tests := []struct {
		name  string
		spans []types.SpeechInterval
		total float64
		want  []float64
	}{
		{
			name:  "distinct intervals",
			spans: []types.SpeechInterval{{Start: 0.2, End: 1}, {Start: 1.5, End: 2}, {Start: 2.5, End: 3}},
			total: 3.2,
			want:  []float64{0, 1.5, 2.5, 3.2},
		},
		{
			name:  "shared trailing interval is spread",
			spans: []types.SpeechInterval{{Start: 0, End: 1}, {Start: 2, End: 4}, {Start: 2, End: 4}, {Start: 2, End: 4}},
			total: 5,
			want:  []float64{0, 2, 3, 4, 5},
		},
		{
			name:  "shared first interval",
			spans: []types.SpeechInterval{{Start: 0, End: 1}, {Start: 0, End: 1}, {Start: 2, End: 3}},
			total: 3,
			want:  []float64{0, 1, 2, 3},
		},
		{
			name:  "degenerate spans fall back to even division",
			spans: []types.SpeechInterval{{Start: 0, End: 1}, {Start: 4, End: 5}, {Start: 4, End: 5}},
			total: 3,
			want:  []float64{0, 1, 2, 3},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Reconcile(tt.spans, tt.total)
			assert.InDeltaSlice(t, tt.want, got, 1e-9)
		})
	}
}

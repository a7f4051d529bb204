package timeline

import "factreel/internal/types"

// Reconcile converts aligned chunk spans into n+1 boundaries covering
// [0, total]. Chunk i runs from its span start to the next chunk's start, the
// first chunk starts at 0 and the last ends at total. Chunks that share an
// interval are spread evenly up to the next distinct boundary. If the spans
// cannot yield increasing boundaries, total is divided evenly.
func Reconcile(spans []types.SpeechInterval, total float64) []float64 {
	n := len(spans)
	bounds := make([]float64, n+1)
	if n == 0 {
		return bounds
	}
	bounds[n] = total
	for i := 1; i < n; i++ {
		s := spans[i].Start
		if s < bounds[i-1] {
			s = bounds[i-1]
		}
		if s > total {
			s = total
		}
		bounds[i] = s
	}

	for i := 0; i < n; {
		j := i + 1
		for j < n && bounds[j] == bounds[i] {
			j++
		}
		if j-i > 1 {
			step := (bounds[j] - bounds[i]) / float64(j-i)
			for k := i + 1; k < j; k++ {
				bounds[k] = bounds[i] + float64(k-i)*step
			}
		}
		i = j
	}

	for i := 0; i < n; i++ {
		if bounds[i+1] <= bounds[i] {
			return even(n, total)
		}
	}
	return bounds
}

func even(n int, total float64) []float64 {
	bounds := make([]float64, n+1)
	for i := range bounds {
		bounds[i] = total * float64(i) / float64(n)
	}
	bounds[n] = total
	return bounds
}

package align

import (
	"math"

	"factreel/internal/types"
)

const (
	DefaultThresholdDB  = -40.0
	DefaultMinSilenceMs = 100
)

// LevelsDB returns the RMS level of every whole millisecond of samples in
// dBFS. Digital silence is -Inf.
func LevelsDB(samples []int16, sampleRate int) []float64 {
	perMs := sampleRate / 1000
	if perMs <= 0 {
		return nil
	}
	levels := make([]float64, len(samples)/perMs)
	for ms := range levels {
		var sum float64
		for _, s := range samples[ms*perMs : (ms+1)*perMs] {
			v := float64(s) / 32768
			sum += v * v
		}
		rms := math.Sqrt(sum / float64(perMs))
		levels[ms] = 20 * math.Log10(rms)
	}
	return levels
}

// Detect finds the speech intervals of samples: the complement of every run
// of at least minSilenceMs whose level stays below thresholdDB. Intervals are
// in ascending order and never overlap.
func Detect(samples []int16, sampleRate int, thresholdDB float64, minSilenceMs int) []types.SpeechInterval {
	return detectLevels(LevelsDB(samples, sampleRate), thresholdDB, minSilenceMs)
}

func detectLevels(levels []float64, thresholdDB float64, minSilenceMs int) []types.SpeechInterval {
	if minSilenceMs <= 0 {
		minSilenceMs = DefaultMinSilenceMs
	}
	total := len(levels)

	// Collect silent runs as [start, end) millisecond ranges.
	type span struct{ start, end int }
	var silences []span
	runStart := -1
	for ms := 0; ms <= total; ms++ {
		quiet := ms < total && levels[ms] < thresholdDB
		switch {
		case quiet && runStart < 0:
			runStart = ms
		case !quiet && runStart >= 0:
			if ms-runStart >= minSilenceMs {
				silences = append(silences, span{runStart, ms})
			}
			runStart = -1
		}
	}

	var speech []types.SpeechInterval
	cursor := 0
	for _, s := range silences {
		if s.start > cursor {
			speech = append(speech, msInterval(cursor, s.start))
		}
		cursor = s.end
	}
	if cursor < total {
		speech = append(speech, msInterval(cursor, total))
	}
	return speech
}

func msInterval(startMs, endMs int) types.SpeechInterval {
	return types.SpeechInterval{
		Start: float64(startMs) / 1000,
		End:   float64(endMs) / 1000,
	}
}

package segment

import (
	"strings"
	"unicode"
)

const (
	MinDuration           = 2.0
	DefaultWordsPerSecond = 2.5
)

// Words tokenizes text on whitespace and strips punctuation from each token.
// Apostrophes and hyphens inside a word are kept, so "don't" is one word;
// tokens that are pure punctuation are dropped.
func Words(text string) []string {
	var words []string
	for _, tok := range strings.Fields(text) {
		w := strings.TrimFunc(tok, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsNumber(r)
		})
		if w != "" {
			words = append(words, w)
		}
	}
	return words
}

func CountWords(text string) int {
	return len(Words(text))
}

// Estimator turns a word count into a speaking duration.
type Estimator struct {
	WordsPerSecond float64
	MinDuration    float64
}

func NewEstimator(wordsPerSecond, minDuration float64) Estimator {
	if wordsPerSecond <= 0 {
		wordsPerSecond = DefaultWordsPerSecond
	}
	if minDuration <= 0 {
		minDuration = MinDuration
	}
	return Estimator{WordsPerSecond: wordsPerSecond, MinDuration: minDuration}
}

// Estimate returns max(words/rate, floor) in seconds.
func (e Estimator) Estimate(text string) float64 {
	return e.EstimateWords(CountWords(text))
}

func (e Estimator) EstimateWords(n int) float64 {
	d := float64(n) / e.WordsPerSecond
	if d < e.MinDuration {
		return e.MinDuration
	}
	return d
}

// Estimate uses the default floor of MinDuration seconds.
func Estimate(text string, wordsPerSecond float64) float64 {
	return NewEstimator(wordsPerSecond, MinDuration).Estimate(text)
}

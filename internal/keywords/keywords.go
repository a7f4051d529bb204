// Package keywords picks the thematic words used to search for background
// footage.
package keywords

import (
	"sort"
	"strings"
	"unicode"

	"github.com/samber/lo"
)

var stopwords = map[string]struct{}{}

func init() {
	for _, w := range strings.Fields(`a an the and or but if because as what with by for to from
		in out on off over under again then once here there when where why how all any
		both each few more most some such no nor not only own same so than too very can
		will just don should now`) {
		stopwords[w] = struct{}{}
	}
}

// Defaults pad a whole-text extraction that found too few words.
var Defaults = []string{"nature", "science", "history", "world", "discovery"}

// tokens lowercases text, drops every character that is not a letter, digit,
// underscore or space, and removes stopwords and words of two letters or
// fewer.
func tokens(text string) []string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, strings.ToLower(text))

	return lo.Filter(strings.Fields(cleaned), func(w string, _ int) bool {
		_, stop := stopwords[w]
		return !stop && len([]rune(w)) > 2
	})
}

// Rank returns up to max distinct keywords ordered by frequency, ties
// broken by first occurrence.
func Rank(text string, max int) []string {
	words := tokens(text)
	counts := make(map[string]int, len(words))
	for _, w := range words {
		counts[w]++
	}
	order := lo.Uniq(words)
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if max >= 0 && len(order) > max {
		order = order[:max]
	}
	return order
}

// Extract ranks keywords for a whole narration and pads the result with
// Defaults so that exactly max terms come back.
func Extract(text string, max int) []string {
	kws := Rank(text, max)
	for _, d := range Defaults {
		if len(kws) >= max {
			break
		}
		if !lo.Contains(kws, d) {
			kws = append(kws, d)
		}
	}
	return kws
}

// Package segment splits narration into sentences and caption-sized word
// chunks, and estimates how long a piece of text takes to speak.
package segment

import (
	"strings"

	"factreel/internal/types"
)

// DefaultMaxWords is the chunk size used when the caller passes none.
const DefaultMaxWords = 5

// Abbreviations that end in a period without ending the sentence. Anything
// not listed here is treated as a boundary.
var abbreviations = map[string]bool{
	"mr": true, "mrs": true, "ms": true, "dr": true, "prof": true,
	"sr": true, "jr": true, "st": true, "mt": true, "vs": true,
	"e.g": true, "i.e": true, "u.s": true, "u.k": true, "a.m": true,
	"p.m": true, "inc": true, "ltd": true, "co": true, "approx": true,
	"jan": true, "feb": true, "aug": true, "sept": true, "oct": true,
	"nov": true, "dec": true,
}

const closers = "\"')]}”’"

// IsTerminal reports whether word closes a sentence: it ends in '.', '!' or
// '?' (ignoring trailing quotes and brackets) and is not a known
// abbreviation. Initials and other ambiguous cases count as boundaries.
func IsTerminal(word string) bool {
	w := strings.TrimRight(word, closers)
	if w == "" {
		return false
	}
	switch w[len(w)-1] {
	case '!', '?':
		return true
	case '.':
	default:
		return false
	}
	stem := strings.ToLower(strings.TrimLeft(strings.TrimRight(w, "."), "\"'([{“‘"))
	return !abbreviations[stem]
}

// SplitSentences breaks text into sentences. Words are whitespace
// separated and kept verbatim, so joining the result with single spaces
// reproduces the word sequence of text.
func SplitSentences(text string) []string {
	var (
		sentences []string
		current   []string
	)
	for _, word := range strings.Fields(text) {
		current = append(current, word)
		if IsTerminal(word) {
			sentences = append(sentences, strings.Join(current, " "))
			current = current[:0]
		}
	}
	if len(current) > 0 {
		sentences = append(sentences, strings.Join(current, " "))
	}
	return sentences
}

// ChunkSentence groups the words of one sentence into chunks of at most
// maxWords, closing a chunk early after terminal punctuation. A single word is
// never split. Tokens that are pure punctuation, such as a free-standing dash,
// stay in the chunk text but do not count toward maxWords, matching
// CountWords.
func ChunkSentence(sentence string, maxWords int) []string {
	if maxWords <= 0 {
		maxWords = DefaultMaxWords
	}
	var (
		chunks  []string
		current []string
		counted int
	)
	for _, word := range strings.Fields(sentence) {
		current = append(current, word)
		if CountWords(word) > 0 {
			counted++
		}
		if counted >= maxWords || IsTerminal(word) {
			chunks = append(chunks, strings.Join(current, " "))
			current = current[:0]
			counted = 0
		}
	}
	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, " "))
	}
	return chunks
}

// Segment splits text into sentences and then into ordered chunks.
func Segment(text string, maxWords int) []types.TextChunk {
	var chunks []types.TextChunk
	for si, sentence := range SplitSentences(text) {
		for _, c := range ChunkSentence(sentence, maxWords) {
			chunks = append(chunks, types.TextChunk{
				Text:     c,
				Sentence: si,
				Index:    len(chunks),
			})
		}
	}
	return chunks
}

// ChunkText applies the chunk rule across the whole text without regard to
// sentence boundaries. The aligner counts chunks this way.
func ChunkText(text string, maxWords int) []string {
	return ChunkSentence(text, maxWords)
}

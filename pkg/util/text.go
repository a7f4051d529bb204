package util

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	fencePattern = regexp.MustCompile("(?s)```(?:[a-z]*)?(.*?)```")
	nameStripper = strings.NewReplacer("?", "", "!", "", ".", "", ",", "", ":", "", ";", "", "(", "", ")", "")
)

// CleanModelText removes a markdown code fence and wrapping quotes that chat
// models like to add around plain-text answers.
func CleanModelText(text string) string {
	if m := fencePattern.FindStringSubmatch(text); len(m) > 1 {
		text = m[1]
	}
	text = strings.TrimSpace(text)
	if len(text) >= 2 && (text[0] == '"' && text[len(text)-1] == '"') {
		text = strings.TrimSpace(text[1 : len(text)-1])
	}
	return text
}

// FirstSentences keeps at most n period-terminated sentences of text. Text
// with no period is returned trimmed.
func FirstSentences(text string, n int) string {
	text = strings.TrimSpace(text)
	end, found := 0, 0
	for found < n {
		i := strings.IndexByte(text[end:], '.')
		if i < 0 {
			break
		}
		end += i + 1
		found++
	}
	if found == 0 {
		return text
	}
	return strings.TrimSpace(text[:end])
}

// SanitizeVideoName builds an output file name from the first 20 characters
// of a fact: spaces become underscores and ?!.,:;() are dropped.
func SanitizeVideoName(fact string) string {
	name := fact
	if utf8.RuneCountInString(name) > 20 {
		name = string([]rune(name)[:20])
	}
	name = strings.ReplaceAll(name, " ", "_")
	name = nameStripper.Replace(name)
	if name == "" {
		name = "fact_video"
	}
	return name + ".mp4"
}

// Package fact supplies the narration text for a run: a tolerant fetcher over
// a remote fact API, an optional expansion decorator and a novelty filter.
package fact

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"factreel/log"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// knownKeys are checked in order on JSON object responses.
var knownKeys = []string{"text", "fact", "content", "value", "message"}

var fallbackFacts = []string{
	"The shortest war in history was between Britain and Zanzibar in 1896, lasting only 38 minutes.",
	"Honey never spoils. Archaeologists have found pots of honey in ancient Egyptian tombs that are over 3,000 years old and still perfectly good to eat.",
	"The world's oldest known living tree is a Great Basin bristlecone pine named Methuselah, estimated to be over 4,800 years old.",
	"A day on Venus is longer than a year on Venus. It takes 243 Earth days for Venus to rotate once on its axis, but only 225 Earth days to orbit the Sun.",
	"The average person will spend six months of their life waiting for red lights to turn green.",
}

// FallbackFacts returns a copy of the built-in facts.
func FallbackFacts() []string {
	return append([]string(nil), fallbackFacts...)
}

// Fetcher implements types.FactSource over an HTTP endpoint.
type Fetcher struct {
	client *resty.Client
	url    string
	rng    *rand.Rand
	logger *zap.Logger
}

func NewFetcher(url string, timeout time.Duration, rng *rand.Rand, logger *zap.Logger) *Fetcher {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Fetcher{
		client: resty.New().SetTimeout(timeout),
		url:    url,
		rng:    rng,
		logger: log.OrNop(logger),
	}
}

// Fetch never fails: transport errors, bad statuses and empty bodies all
// yield one of the built-in facts.
func (f *Fetcher) Fetch(ctx context.Context) string {
	resp, err := f.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json, text/plain").
		Get(f.url)
	if err != nil {
		f.logger.Warn("fact fetch failed, using built-in fact", zap.String("url", f.url), zap.Error(err))
		return f.fallback()
	}
	if resp.IsError() {
		f.logger.Warn("fact fetch failed, using built-in fact", zap.String("url", f.url), zap.Int("status", resp.StatusCode()))
		return f.fallback()
	}
	text := ParseFact(resp.Body())
	if text == "" {
		f.logger.Warn("fact response had no text, using built-in fact", zap.String("url", f.url))
		return f.fallback()
	}
	return text
}

func (f *Fetcher) fallback() string {
	return fallbackFacts[f.rng.Intn(len(fallbackFacts))]
}

// ParseFact extracts the fact from a response body. A JSON string is used as
// is; an object yields its first known key, else its first value in document
// order; a list yields the same from its first element. Anything that is not
// JSON is returned trimmed.
func ParseFact(body []byte) string {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return ""
	}
	if !json.Valid(body) {
		return string(body)
	}
	return strings.TrimSpace(fromJSON(body))
}

func fromJSON(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
		return s
	case '{':
		return fromObject(raw)
	case '[':
		var list []json.RawMessage
		if err := json.Unmarshal(raw, &list); err != nil || len(list) == 0 {
			return ""
		}
		return fromJSON(list[0])
	case 'n':
		return ""
	default:
		return string(raw)
	}
}

func fromObject(raw json.RawMessage) string {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return ""
	}
	for _, key := range knownKeys {
		if v, ok := fields[key]; ok {
			return fromJSON(v)
		}
	}
	first, err := firstValue(raw)
	if err != nil {
		return ""
	}
	return fromJSON(first)
}

// firstValue returns the value of the first member of a JSON object.
func firstValue(raw json.RawMessage) (json.RawMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	if !dec.More() {
		return nil, fmt.Errorf("empty object")
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	var v json.RawMessage
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

package config

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

const (
	ProviderEdgeTts = "edge-tts"
	ProviderOpenai  = "openai"
	ProviderMinimax = "minimax"

	SourcePixabay = "pixabay"
	SourcePexels  = "pexels"
	SourceDirect  = "direct"
)

var (
	knownProviders = []string{ProviderEdgeTts, ProviderOpenai, ProviderMinimax}
	knownSources   = []string{SourcePixabay, SourcePexels, SourceDirect}
)

// Validate normalizes out-of-range values back to their defaults and rejects
// only settings no component can act on.
func (c *Config) Validate() error {
	def := Default()

	if c.FactTimeoutSeconds <= 0 {
		c.FactTimeoutSeconds = def.FactTimeoutSeconds
	}
	if c.NoveltyThreshold <= 0 || c.NoveltyThreshold > 1 {
		c.NoveltyThreshold = def.NoveltyThreshold
	}
	if c.MaxKeywords <= 0 {
		c.MaxKeywords = def.MaxKeywords
	}
	if c.SegmentKeywords <= 0 {
		c.SegmentKeywords = def.SegmentKeywords
	}
	if strings.TrimSpace(c.AudioLanguage) == "" {
		c.AudioLanguage = def.AudioLanguage
	}
	if c.SpeechSpeed <= 0 {
		c.SpeechSpeed = def.SpeechSpeed
	}
	if c.MusicVolume < 0 {
		c.MusicVolume = def.MusicVolume
	}
	if c.VideoDuration <= 0 {
		c.VideoDuration = def.VideoDuration
	}
	if len(c.Resolution) != 2 || c.Resolution[0] <= 0 || c.Resolution[1] <= 0 {
		c.Resolution = def.Resolution
	}
	if c.Fps <= 0 {
		c.Fps = def.Fps
	}
	if c.FontSize <= 0 {
		c.FontSize = def.FontSize
	}
	if c.TextOutlineWidth < 0 {
		c.TextOutlineWidth = def.TextOutlineWidth
	}
	if strings.TrimSpace(c.DefaultQuery) == "" {
		c.DefaultQuery = def.DefaultQuery
	}
	if c.RequestDelayMs < 0 {
		c.RequestDelayMs = def.RequestDelayMs
	}
	if c.WordsPerSecond <= 0 {
		c.WordsPerSecond = def.WordsPerSecond
	}
	if c.MaxWordsPerSegment <= 0 {
		c.MaxWordsPerSegment = def.MaxWordsPerSegment
	}
	if c.MinSegmentDuration <= 0 {
		c.MinSegmentDuration = def.MinSegmentDuration
	}
	if c.SilenceThresholdDb >= 0 {
		c.SilenceThresholdDb = def.SilenceThresholdDb
	}
	if c.MinSilenceLenMs <= 0 {
		c.MinSilenceLenMs = def.MinSilenceLenMs
	}
	if c.Server.Port <= 0 {
		c.Server.Port = def.Server.Port
	}

	c.TtsProvider = strings.ToLower(strings.TrimSpace(c.TtsProvider))
	if c.TtsProvider == "" {
		c.TtsProvider = def.TtsProvider
	}
	if !lo.Contains(knownProviders, c.TtsProvider) {
		return fmt.Errorf("unknown tts_provider %q, want one of %s", c.TtsProvider, strings.Join(knownProviders, ", "))
	}

	c.VideoSources = lo.FilterMap(c.VideoSources, c.sourceName)
	if unknown := lo.Without(c.VideoSources, knownSources...); len(unknown) > 0 {
		return fmt.Errorf("unknown video source %q, want any of %s", unknown[0], strings.Join(knownSources, ", "))
	}
	c.VideoSources = lo.Uniq(c.VideoSources)

	return nil
}

// sourceName maps one video_sources entry onto a source name. Besides the
// names themselves it accepts the URL form older configs used: Pixabay and
// Pexels API URLs, and a direct .mp4 link, which also becomes
// direct_video_url. Other URLs are dropped.
func (c *Config) sourceName(entry string, _ int) (string, bool) {
	entry = strings.TrimSpace(entry)
	lower := strings.ToLower(entry)
	if !strings.Contains(lower, "://") {
		return lower, lower != ""
	}
	switch {
	case strings.Contains(lower, "pixabay.com"):
		return SourcePixabay, true
	case strings.Contains(lower, "pexels.com"):
		return SourcePexels, true
	case strings.HasSuffix(strings.SplitN(lower, "?", 2)[0], ".mp4"):
		c.DirectVideoUrl = entry
		return SourceDirect, true
	}
	return "", false
}

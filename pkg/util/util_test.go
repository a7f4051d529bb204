package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProbeDuration(t *testing.T) {
	d, err := ParseProbeDuration(`{"format":{"duration":"4.250000"},"streams":[]}`)
	require.NoError(t, err)
	assert.InDelta(t, 4.25, d, 1e-9)

	d, err = ParseProbeDuration(`{"format":{},"streams":[{"codec_type":"video","duration":"9"},{"codec_type":"audio","duration":"3.5"}]}`)
	require.NoError(t, err)
	assert.InDelta(t, 3.5, d, 1e-9)

	_, err = ParseProbeDuration(`{"format":{"duration":"N/A"}}`)
	assert.Error(t, err)

	_, err = ParseProbeDuration(`not json`)
	assert.Error(t, err)
}

func TestParsePCM(t *testing.T) {
	got := ParsePCM([]byte{0x01, 0x00, 0xff, 0x7f, 0x00, 0x80, 0x09})
	assert.Equal(t, []int16{1, 32767, -32768}, got)
}

func TestSanitizeVideoName(t *testing.T) {
	tests := []struct {
		fact string
		want string
	}{
		{"Honey never spoils. Ancient pots were found intact.", "Honey_never_spoils_.mp4"},
		{"Why? (Really!)", "Why_Really.mp4"},
		{"", "fact_video.mp4"},
		{"?!.", "fact_video.mp4"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeVideoName(tt.fact))
	}
}

func TestCleanModelText(t *testing.T) {
	assert.Equal(t, "Bees dance.", CleanModelText("```text\nBees dance.\n```"))
	assert.Equal(t, "Bees dance.", CleanModelText(`  "Bees dance."  `))
	assert.Equal(t, "plain", CleanModelText("plain"))
}

func TestFirstSentences(t *testing.T) {
	assert.Equal(t, "One. Two. Three.", FirstSentences("One. Two. Three. Four.", 3))
	assert.Equal(t, "One.", FirstSentences(" One. Two", 1))
	assert.Equal(t, "no period", FirstSentences("no period ", 3))
}

func TestParseProbeClip(t *testing.T) {
	info, err := ParseProbeClip(`{"format":{"duration":"12.5"},"streams":[
		{"codec_type":"audio"},
		{"codec_type":"video","width":1920,"height":1080,"duration":"12.4"}]}`)
	require.NoError(t, err)
	assert.Equal(t, ClipInfo{Width: 1920, Height: 1080, Duration: 12.5}, info)

	_, err = ParseProbeClip(`{"format":{"duration":"3"},"streams":[{"codec_type":"audio"}]}`)
	assert.Error(t, err)
}

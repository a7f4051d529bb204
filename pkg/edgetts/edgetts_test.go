package edgetts

import (
	"context"
	"os/exec"
	"path/filepath"
	"testing"

	"factreel/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVoiceFor(t *testing.T) {
	assert.Equal(t, "en-GB-RyanNeural", VoiceFor("en-GB-RyanNeural", "fr"))
	assert.Equal(t, "fr-FR-DeniseNeural", VoiceFor("", "fr"))
	assert.Equal(t, "pt-BR-FranciscaNeural", VoiceFor("", "pt-BR"))
	assert.Equal(t, "en-US-AriaNeural", VoiceFor("", "xx"))
}

func TestRate(t *testing.T) {
	assert.Equal(t, "+0%", Rate(1))
	assert.Equal(t, "+25%", Rate(1.25))
	assert.Equal(t, "-20%", Rate(0.8))
	assert.Equal(t, "+0%", Rate(0))
}

func TestArgs(t *testing.T) {
	c := NewClient("", nil)
	args := c.Args(types.SpeechRequest{Text: "Honey never spoils.", Language: "en", Speed: 1.1}, "/tmp/v.mp3")
	assert.Equal(t, []string{
		"--voice", "en-US-AriaNeural",
		"--rate=+10%",
		"--text", "Honey never spoils.",
		"--write-media", "/tmp/v.mp3",
	}, args)
}

func requireBinary(t *testing.T, name string) {
	t.Helper()
	if _, err := exec.LookPath(name); err != nil {
		t.Skipf("%s not available", name)
	}
}

func TestGetAudioCommandFailure(t *testing.T) {
	requireBinary(t, "false")
	c := NewClient("edge-tts", nil)
	c.command = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		return exec.CommandContext(ctx, "false")
	}
	err := c.GetAudio(context.Background(), types.SpeechRequest{Text: "x"}, filepath.Join(t.TempDir(), "v.mp3"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "edge-tts")
}

func TestGetAudioNoOutput(t *testing.T) {
	requireBinary(t, "true")
	c := NewClient("edge-tts", nil)
	c.command = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		return exec.CommandContext(ctx, "true")
	}
	err := c.GetAudio(context.Background(), types.SpeechRequest{Text: "x"}, filepath.Join(t.TempDir(), "v.mp3"))
	assert.Error(t, err)
}

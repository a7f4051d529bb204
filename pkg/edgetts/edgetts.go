// Package edgetts narrates text with the edge-tts command line tool.
package edgetts

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"factreel/internal/types"
	"factreel/log"

	"go.uber.org/zap"
)

// defaultVoices maps a language code to a neural voice.
var defaultVoices = map[string]string{
	"en": "en-US-AriaNeural",
	"es": "es-ES-ElviraNeural",
	"fr": "fr-FR-DeniseNeural",
	"de": "de-DE-KatjaNeural",
	"it": "it-IT-ElsaNeural",
	"pt": "pt-BR-FranciscaNeural",
	"ja": "ja-JP-NanamiNeural",
	"zh": "zh-CN-XiaoxiaoNeural",
}

type Client struct {
	Binary string
	logger *zap.Logger
	// command builds the process, replaceable in tests.
	command func(ctx context.Context, name string, args ...string) *exec.Cmd
}

func NewClient(binary string, logger *zap.Logger) *Client {
	if binary == "" {
		binary = "edge-tts"
	}
	return &Client{Binary: binary, logger: log.OrNop(logger), command: exec.CommandContext}
}

// VoiceFor picks the configured voice or the default for language.
func VoiceFor(voice, language string) string {
	if voice != "" {
		return voice
	}
	lang := strings.ToLower(language)
	if i := strings.IndexAny(lang, "-_"); i > 0 {
		lang = lang[:i]
	}
	if v, ok := defaultVoices[lang]; ok {
		return v
	}
	return defaultVoices["en"]
}

// Rate converts a speed multiplier to edge-tts's signed percentage.
func Rate(speed float64) string {
	if speed <= 0 {
		speed = 1
	}
	pct := int(math.Round((speed - 1) * 100))
	if pct >= 0 {
		return fmt.Sprintf("+%d%%", pct)
	}
	return fmt.Sprintf("%d%%", pct)
}

func (c *Client) Args(req types.SpeechRequest, outputPath string) []string {
	return []string{
		"--voice", VoiceFor(req.Voice, req.Language),
		"--rate=" + Rate(req.Speed),
		"--text", req.Text,
		"--write-media", outputPath,
	}
}

func (c *Client) GetAudio(ctx context.Context, req types.SpeechRequest, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("create output dir failed: %w", err)
	}
	var stderr bytes.Buffer
	cmd := c.command(ctx, c.Binary, c.Args(req, outputPath)...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		c.logger.Error("edge-tts failed", zap.Error(err), zap.String("stderr", stderr.String()))
		return fmt.Errorf("edge-tts: %w", err)
	}
	if info, err := os.Stat(outputPath); err != nil || info.Size() == 0 {
		return fmt.Errorf("edge-tts wrote no audio to %s", outputPath)
	}
	c.logger.Info("edge-tts success", zap.String("output", outputPath))
	return nil
}

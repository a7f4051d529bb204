package openai

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"factreel/internal/types"

	"github.com/sashabaranov/go-openai"
)

const defaultVoice = openai.VoiceAlloy

// GetAudio renders speech through the audio/speech endpoint. The API takes
// speeds between 0.25 and 4.
func (c *Client) GetAudio(ctx context.Context, req types.SpeechRequest, outputPath string) error {
	voice := openai.SpeechVoice(req.Voice)
	if voice == "" {
		voice = defaultVoice
	}
	speed := req.Speed
	switch {
	case speed <= 0:
		speed = 1
	case speed < 0.25:
		speed = 0.25
	case speed > 4:
		speed = 4
	}

	resp, err := c.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(c.ttsModel),
		Input:          req.Text,
		Voice:          voice,
		ResponseFormat: openai.SpeechResponseFormatMp3,
		Speed:          speed,
	})
	if err != nil {
		return fmt.Errorf("openai speech: %w", err)
	}
	defer resp.Close()

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("create output dir failed: %w", err)
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	n, err := io.Copy(f, resp)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("write speech: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("openai speech returned no audio")
	}
	return nil
}

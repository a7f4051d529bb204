package minimax

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"factreel/internal/types"
	"factreel/log"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const (
	defaultBaseURL = "https://api.minimax.chat/v1/t2a_v2"
	defaultVoice   = "male-qn-qingse"
	defaultModel   = "speech-01-turbo"
)

// Client implements types.Ttser against the MiniMax t2a_v2 endpoint.
type Client struct {
	ApiKey  string
	GroupId string
	Model   string
	BaseURL string

	http   *resty.Client
	logger *zap.Logger
}

func NewClient(apiKey, groupId, model string, logger *zap.Logger) *Client {
	if model == "" {
		model = defaultModel
	}
	return &Client{
		ApiKey:  apiKey,
		GroupId: groupId,
		Model:   model,
		BaseURL: defaultBaseURL,
		http:    resty.New().SetTimeout(60 * time.Second),
		logger:  log.OrNop(logger),
	}
}

type T2ARequest struct {
	Model        string       `json:"model"`
	Text         string       `json:"text"`
	VoiceSetting VoiceSetting `json:"voice_setting"`
	AudioSetting AudioSetting `json:"audio_setting"`
	Stream       bool         `json:"stream"`
}

type VoiceSetting struct {
	VoiceId string  `json:"voice_id"`
	Speed   float64 `json:"speed,omitempty"`
}

type AudioSetting struct {
	SampleRate int    `json:"sample_rate"`
	Format     string `json:"format"`
	Channel    int    `json:"channel"`
}

type T2AResponse struct {
	BaseResp BaseResp `json:"base_resp"`
	Data     struct {
		Audio  string `json:"audio"`
		Status int    `json:"status"` // 2 means finished
	} `json:"data"`
}

type BaseResp struct {
	StatusCode int    `json:"status_code"`
	StatusMsg  string `json:"status_msg"`
}

func (c *Client) GetAudio(ctx context.Context, req types.SpeechRequest, outputPath string) error {
	if c.ApiKey == "" {
		return fmt.Errorf("minimax api key not configured")
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("create output dir failed: %w", err)
	}

	voice := req.Voice
	if voice == "" {
		voice = defaultVoice
	}
	body := T2ARequest{
		Model: c.Model,
		Text:  req.Text,
		VoiceSetting: VoiceSetting{
			VoiceId: voice,
			Speed:   req.Speed,
		},
		AudioSetting: AudioSetting{SampleRate: 32000, Format: "mp3", Channel: 1},
	}

	var apiResp T2AResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("GroupId", c.GroupId).
		SetAuthToken(c.ApiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetResult(&apiResp).
		Post(c.BaseURL)
	if err != nil {
		return fmt.Errorf("minimax request failed: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("minimax request failed with status: %d, body: %s", resp.StatusCode(), resp.String())
	}
	if apiResp.BaseResp.StatusCode != 0 {
		return fmt.Errorf("minimax api error: %d - %s", apiResp.BaseResp.StatusCode, apiResp.BaseResp.StatusMsg)
	}
	if apiResp.Data.Audio == "" {
		return fmt.Errorf("minimax returned empty audio")
	}

	audio, err := hex.DecodeString(apiResp.Data.Audio)
	if err != nil {
		return fmt.Errorf("decode hex audio failed: %w", err)
	}
	if err := os.WriteFile(outputPath, audio, 0o644); err != nil {
		return fmt.Errorf("write output file failed: %w", err)
	}

	c.logger.Info("minimax narration written", zap.String("output", outputPath), zap.Int("bytes", len(audio)))
	return nil
}

package openai

import (
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
)

type Client struct {
	client    *openai.Client
	chatModel string
	ttsModel  string
}

func NewClient(baseUrl, apiKey, chatModel, ttsModel string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseUrl != "" {
		cfg.BaseURL = baseUrl
	}
	cfg.HTTPClient = &http.Client{Timeout: 2 * time.Minute}

	if chatModel == "" {
		chatModel = openai.GPT4oMini
	}
	if ttsModel == "" {
		ttsModel = string(openai.TTSModel1)
	}
	return &Client{
		client:    openai.NewClientWithConfig(cfg),
		chatModel: chatModel,
		ttsModel:  ttsModel,
	}
}

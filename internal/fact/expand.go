package fact

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"unicode/utf8"

	"factreel/internal/types"
	"factreel/log"
	"factreel/pkg/util"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const (
	huggingFaceEndpoint = "https://api-inference.huggingface.co/models/mistralai/Mistral-7B-Instruct-v0.2"
	geminiEndpoint      = "https://generativelanguage.googleapis.com/v1beta/models/gemini-pro:generateContent"

	expansionInstruction = "Expand this fact into a 3-sentence engaging narrative. Keep it concise and include one surprising detail: "
	suffixUnder          = 100
)

var errEmptyExpansion = errors.New("empty expansion")

var (
	rulePrefixes = []string{
		"Did you know? ",
		"Here's something fascinating: ",
		"Prepare to be amazed! ",
		"This is incredible: ",
		"A mind-blowing fact: ",
	}
	ruleSuffixes = []string{
		" This has fascinated scientists for years.",
		" It's one of nature's most remarkable phenomena.",
		" Most people don't realize this amazing truth.",
		" This surprising fact changes how we see the world.",
		" Researchers continue to study this phenomenon.",
	}
)

// HuggingFace expands with the hosted Mistral instruct model.
type HuggingFace struct {
	client   *resty.Client
	apiKey   string
	endpoint string
}

func NewHuggingFace(client *resty.Client, apiKey string) *HuggingFace {
	return &HuggingFace{client: client, apiKey: apiKey, endpoint: huggingFaceEndpoint}
}

func (h *HuggingFace) Name() string { return "huggingface" }

type hfRequest struct {
	Inputs     string       `json:"inputs"`
	Parameters hfParameters `json:"parameters"`
}

type hfParameters struct {
	MaxLength   int     `json:"max_length"`
	Temperature float64 `json:"temperature"`
}

type hfResult struct {
	GeneratedText string `json:"generated_text"`
}

func (h *HuggingFace) Expand(ctx context.Context, fact string) (string, error) {
	prompt := fmt.Sprintf("%s%q", expansionInstruction, fact)
	var result []hfResult
	resp, err := h.client.R().
		SetContext(ctx).
		SetAuthToken(h.apiKey).
		SetBody(hfRequest{Inputs: prompt, Parameters: hfParameters{MaxLength: 512, Temperature: 0.7}}).
		SetResult(&result).
		Post(h.endpoint)
	if err != nil {
		return "", fmt.Errorf("huggingface request: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("huggingface request: status %d", resp.StatusCode())
	}
	if len(result) == 0 {
		return "", errEmptyExpansion
	}
	// The model echoes the prompt before its continuation.
	text := strings.TrimPrefix(result[0].GeneratedText, prompt)
	return util.FirstSentences(util.CleanModelText(text), 3), nil
}

// Gemini expands with the generateContent API.
type Gemini struct {
	client   *resty.Client
	apiKey   string
	endpoint string
}

func NewGemini(client *resty.Client, apiKey string) *Gemini {
	return &Gemini{client: client, apiKey: apiKey, endpoint: geminiEndpoint}
}

func (g *Gemini) Name() string { return "gemini" }

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func (g *Gemini) Expand(ctx context.Context, fact string) (string, error) {
	body := geminiRequest{Contents: []geminiContent{{Parts: []geminiPart{{Text: expansionInstruction + fact}}}}}
	var result geminiResponse
	resp, err := g.client.R().
		SetContext(ctx).
		SetQueryParam("key", g.apiKey).
		SetBody(body).
		SetResult(&result).
		Post(g.endpoint)
	if err != nil {
		return "", fmt.Errorf("gemini request: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("gemini request: status %d", resp.StatusCode())
	}
	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", errEmptyExpansion
	}
	return util.CleanModelText(result.Candidates[0].Content.Parts[0].Text), nil
}

// Chat expands through any OpenAI-compatible chat endpoint.
type Chat struct {
	completer types.ChatCompleter
}

func NewChat(completer types.ChatCompleter) *Chat {
	return &Chat{completer: completer}
}

func (c *Chat) Name() string { return "openai" }

func (c *Chat) Expand(ctx context.Context, fact string) (string, error) {
	out, err := c.completer.ChatCompletion(ctx,
		"You write narration for short trivia videos. Reply with the narration only.",
		expansionInstruction+fact)
	if err != nil {
		return "", err
	}
	return util.CleanModelText(out), nil
}

// RuleBased adds a random hook before the fact and, for short results, a
// closing line. It never fails.
type RuleBased struct {
	rng *rand.Rand
}

func NewRuleBased(rng *rand.Rand) *RuleBased {
	return &RuleBased{rng: rng}
}

func (r *RuleBased) Name() string { return "rule-based" }

func (r *RuleBased) Expand(_ context.Context, fact string) (string, error) {
	out := rulePrefixes[r.rng.Intn(len(rulePrefixes))] + fact
	if utf8.RuneCountInString(out) < suffixUnder {
		out += ruleSuffixes[r.rng.Intn(len(ruleSuffixes))]
	}
	return out, nil
}

// Chain tries each expander in order and returns the first non-empty result.
type Chain struct {
	expanders []types.Expander
	logger    *zap.Logger
}

func NewChain(logger *zap.Logger, expanders ...types.Expander) *Chain {
	return &Chain{expanders: expanders, logger: log.OrNop(logger)}
}

// Expand returns fact unchanged when every expander fails.
func (c *Chain) Expand(ctx context.Context, fact string) string {
	for _, e := range c.expanders {
		out, err := e.Expand(ctx, fact)
		if err == nil && strings.TrimSpace(out) == "" {
			err = errEmptyExpansion
		}
		if err != nil {
			c.logger.Warn("fact expansion failed", zap.String("provider", e.Name()), zap.Error(err))
			continue
		}
		c.logger.Info("fact expanded", zap.String("provider", e.Name()))
		return strings.TrimSpace(out)
	}
	return fact
}

// Names lists the expanders in the order they are tried.
func (c *Chain) Names() []string {
	names := make([]string, 0, len(c.expanders))
	for _, e := range c.expanders {
		names = append(names, e.Name())
	}
	return names
}

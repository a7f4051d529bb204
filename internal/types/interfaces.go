package types

import "context"

type SpeechRequest struct {
	Text     string
	Voice    string
	Language string
	Speed    float64
}

// Ttser renders narration to an audio file at outputPath.
type Ttser interface {
	GetAudio(ctx context.Context, req SpeechRequest, outputPath string) error
}

type ChatCompleter interface {
	ChatCompletion(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// FactSource yields the narration text for one run. Implementations degrade
// to built-in content instead of failing.
type FactSource interface {
	Fetch(ctx context.Context) string
}

// AssetSource finds a downloadable clip URL for a search query.
type AssetSource interface {
	Name() string
	Search(ctx context.Context, query string) (string, error)
}

// Expander rewrites a fact into a longer narration.
type Expander interface {
	Name() string
	Expand(ctx context.Context, fact string) (string, error)
}

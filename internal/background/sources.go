package background

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"github.com/go-resty/resty/v2"
)

var (
	ErrNoAPIKey  = errors.New("no api key configured")
	ErrNoResults = errors.New("no results")
)

const (
	pixabayEndpoint = "https://pixabay.com/api/videos/"
	pexelsEndpoint  = "https://api.pexels.com/videos/search"
	resultsPerPage  = 3
)

// Pixabay searches the Pixabay video API.
type Pixabay struct {
	client   *resty.Client
	apiKey   string
	endpoint string
	rng      *rand.Rand
}

func NewPixabay(client *resty.Client, apiKey string, rng *rand.Rand) *Pixabay {
	return &Pixabay{client: client, apiKey: apiKey, endpoint: pixabayEndpoint, rng: rng}
}

func (p *Pixabay) Name() string { return "pixabay" }

type pixabayResponse struct {
	Hits []struct {
		Videos struct {
			Medium struct {
				URL string `json:"url"`
			} `json:"medium"`
		} `json:"videos"`
	} `json:"hits"`
}

func (p *Pixabay) Search(ctx context.Context, query string) (string, error) {
	if p.apiKey == "" {
		return "", ErrNoAPIKey
	}
	var result pixabayResponse
	resp, err := p.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"key":      p.apiKey,
			"q":        searchTerms(query),
			"per_page": fmt.Sprint(resultsPerPage),
		}).
		SetResult(&result).
		Get(p.endpoint)
	if err != nil {
		return "", fmt.Errorf("pixabay search: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("pixabay search: status %d", resp.StatusCode())
	}
	if len(result.Hits) == 0 {
		return "", ErrNoResults
	}
	hit := result.Hits[pickIndex(p.rng, len(result.Hits))]
	if hit.Videos.Medium.URL == "" {
		return "", ErrNoResults
	}
	return hit.Videos.Medium.URL, nil
}

// Pexels searches the Pexels video API.
type Pexels struct {
	client   *resty.Client
	apiKey   string
	endpoint string
	rng      *rand.Rand
}

func NewPexels(client *resty.Client, apiKey string, rng *rand.Rand) *Pexels {
	return &Pexels{client: client, apiKey: apiKey, endpoint: pexelsEndpoint, rng: rng}
}

func (p *Pexels) Name() string { return "pexels" }

type pexelsResponse struct {
	Videos []struct {
		VideoFiles []struct {
			Quality  string `json:"quality"`
			FileType string `json:"file_type"`
			Link     string `json:"link"`
		} `json:"video_files"`
	} `json:"videos"`
}

// Search prefers an HD mp4 rendition of the chosen video and otherwise takes
// its first file.
func (p *Pexels) Search(ctx context.Context, query string) (string, error) {
	if p.apiKey == "" {
		return "", ErrNoAPIKey
	}
	var result pexelsResponse
	resp, err := p.client.R().
		SetContext(ctx).
		SetHeader("Authorization", p.apiKey).
		SetQueryParams(map[string]string{
			"query":    searchTerms(query),
			"per_page": fmt.Sprint(resultsPerPage),
		}).
		SetResult(&result).
		Get(p.endpoint)
	if err != nil {
		return "", fmt.Errorf("pexels search: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("pexels search: status %d", resp.StatusCode())
	}
	if len(result.Videos) == 0 {
		return "", ErrNoResults
	}
	files := result.Videos[pickIndex(p.rng, len(result.Videos))].VideoFiles
	if len(files) == 0 {
		return "", ErrNoResults
	}
	for _, f := range files {
		if f.Quality == "hd" && f.FileType == "video/mp4" {
			return f.Link, nil
		}
	}
	return files[0].Link, nil
}

// Direct always offers the same clip URL.
type Direct struct {
	URL string
}

func (d Direct) Name() string { return "direct" }

func (d Direct) Search(context.Context, string) (string, error) {
	if strings.TrimSpace(d.URL) == "" {
		return "", ErrNoResults
	}
	return d.URL, nil
}

// searchTerms turns a '+' joined query back into words; the query encoder
// writes the spaces as '+' on the wire.
func searchTerms(query string) string {
	return strings.ReplaceAll(query, "+", " ")
}

// pickIndex chooses among the first resultsPerPage results.
func pickIndex(rng *rand.Rand, n int) int {
	if n > resultsPerPage {
		n = resultsPerPage
	}
	return rng.Intn(n)
}

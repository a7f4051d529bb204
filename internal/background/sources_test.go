package background

import (
	"context"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPixabaySearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.URL.Query().Get("key"))
		assert.Equal(t, "ocean wave", r.URL.Query().Get("q"))
		assert.Contains(t, r.URL.RawQuery, "q=ocean+wave")
		assert.Equal(t, "3", r.URL.Query().Get("per_page"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"hits":[{"videos":{"medium":{"url":"https://cdn.example/ocean.mp4"}}}]}`))
	}))
	defer srv.Close()

	p := NewPixabay(resty.New(), "secret", rand.New(rand.NewSource(1)))
	p.endpoint = srv.URL

	url, err := p.Search(context.Background(), "ocean+wave")

	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/ocean.mp4", url)
}

func TestPixabayNoHits(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"hits":[]}`))
	}))
	defer srv.Close()

	p := NewPixabay(resty.New(), "secret", rand.New(rand.NewSource(1)))
	p.endpoint = srv.URL

	_, err := p.Search(context.Background(), "zzz")
	assert.ErrorIs(t, err, ErrNoResults)
}

func TestPixabayRequiresKey(t *testing.T) {
	p := NewPixabay(resty.New(), "", rand.New(rand.NewSource(1)))
	_, err := p.Search(context.Background(), "ocean")
	assert.ErrorIs(t, err, ErrNoAPIKey)
}

func TestPexelsSearchPrefersHDMP4(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "pexels-key", r.Header.Get("Authorization"))
		assert.Equal(t, "ocean", r.URL.Query().Get("query"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"videos":[{"video_files":[
			{"quality":"sd","file_type":"video/mp4","link":"https://cdn.example/sd.mp4"},
			{"quality":"hd","file_type":"video/webm","link":"https://cdn.example/hd.webm"},
			{"quality":"hd","file_type":"video/mp4","link":"https://cdn.example/hd.mp4"}
		]}]}`))
	}))
	defer srv.Close()

	p := NewPexels(resty.New(), "pexels-key", rand.New(rand.NewSource(1)))
	p.endpoint = srv.URL

	url, err := p.Search(context.Background(), "ocean")

	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/hd.mp4", url)
}

func TestPexelsFallsBackToFirstFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"videos":[{"video_files":[{"quality":"sd","file_type":"video/mp4","link":"https://cdn.example/sd.mp4"}]}]}`))
	}))
	defer srv.Close()

	p := NewPexels(resty.New(), "k", rand.New(rand.NewSource(1)))
	p.endpoint = srv.URL

	url, err := p.Search(context.Background(), "ocean")

	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/sd.mp4", url)
}

func TestPexelsHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	p := NewPexels(resty.New(), "k", rand.New(rand.NewSource(1)))
	p.endpoint = srv.URL

	_, err := p.Search(context.Background(), "ocean")
	assert.Error(t, err)
}

func TestDirect(t *testing.T) {
	url, err := Direct{URL: "https://example.com/a.mp4"}.Search(context.Background(), "anything")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/a.mp4", url)

	_, err = Direct{}.Search(context.Background(), "anything")
	assert.ErrorIs(t, err, ErrNoResults)
}

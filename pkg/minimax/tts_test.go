package minimax

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"factreel/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetAudio(t *testing.T) {
	audio := []byte("fake-mp3")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "g1", r.URL.Query().Get("GroupId"))
		assert.Equal(t, "Bearer k1", r.Header.Get("Authorization"))

		var body T2ARequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "speech-01-turbo", body.Model)
		assert.Equal(t, defaultVoice, body.VoiceSetting.VoiceId)
		assert.InDelta(t, 1.2, body.VoiceSetting.Speed, 1e-9)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"base_resp":{"status_code":0},"data":{"audio":"` + hex.EncodeToString(audio) + `","status":2}}`))
	}))
	defer srv.Close()

	c := NewClient("k1", "g1", "", nil)
	c.BaseURL = srv.URL
	out := filepath.Join(t.TempDir(), "n", "voice.mp3")

	require.NoError(t, c.GetAudio(context.Background(), types.SpeechRequest{Text: "hello", Speed: 1.2}, out))
	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, audio, got)
}

func TestGetAudioErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"http error", http.StatusBadGateway, `{}`},
		{"api error", http.StatusOK, `{"base_resp":{"status_code":1004,"status_msg":"auth"}}`},
		{"empty audio", http.StatusOK, `{"base_resp":{"status_code":0},"data":{"audio":""}}`},
		{"bad hex", http.StatusOK, `{"base_resp":{"status_code":0},"data":{"audio":"zz"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewClient("k", "g", "", nil)
			c.BaseURL = srv.URL
			err := c.GetAudio(context.Background(), types.SpeechRequest{Text: "x"}, filepath.Join(t.TempDir(), "v.mp3"))
			assert.Error(t, err)
		})
	}
}

func TestGetAudioNoKey(t *testing.T) {
	err := NewClient("", "", "", nil).GetAudio(context.Background(), types.SpeechRequest{Text: "x"}, filepath.Join(t.TempDir(), "v.mp3"))
	assert.Error(t, err)
}

package tts

import (
	"context"
	"errors"
	"testing"

	"factreel/config"
	"factreel/internal/mocks"
	"factreel/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestNewCompositeTtsClientFallsBackToEdge(t *testing.T) {
	conf := config.Default()
	conf.TtsProvider = config.ProviderOpenai

	c := NewCompositeTtsClient(&conf, nil)

	assert.Nil(t, c.OpenAI)
	assert.Same(t, c.EdgeTTS, c.Default)
}

func TestNewCompositeTtsClientSelectsProvider(t *testing.T) {
	conf := config.Default()
	conf.TtsProvider = config.ProviderMinimax
	conf.MinimaxApiKey = "k"

	c := NewCompositeTtsClient(&conf, nil)

	assert.NotNil(t, c.MiniMax)
	assert.Same(t, c.MiniMax, c.Default)
}

func TestIsEdgeVoice(t *testing.T) {
	assert.True(t, IsEdgeVoice("en-US-AriaNeural"))
	assert.True(t, IsEdgeVoice("pt-BR-FranciscaNeural"))
	assert.False(t, IsEdgeVoice("alloy"))
	assert.False(t, IsEdgeVoice("male-qn-qingse"))
}

func TestGetAudioRouting(t *testing.T) {
	ctx := context.Background()
	edge := new(mocks.MockTtser)
	def := new(mocks.MockTtser)
	c := &CompositeTtsClient{EdgeTTS: edge, Default: def}

	neural := types.SpeechRequest{Text: "hi", Voice: "en-US-AriaNeural"}
	other := types.SpeechRequest{Text: "hi", Voice: "alloy"}
	edge.On("GetAudio", ctx, neural, "a.mp3").Return(nil).Once()
	def.On("GetAudio", ctx, other, "b.mp3").Return(errors.New("quota")).Once()

	assert.NoError(t, c.GetAudio(ctx, neural, "a.mp3"))
	assert.EqualError(t, c.GetAudio(ctx, other, "b.mp3"), "quota")

	edge.AssertExpectations(t)
	def.AssertExpectations(t)
}

func TestGetAudioRejectsEmptyText(t *testing.T) {
	def := new(mocks.MockTtser)
	c := &CompositeTtsClient{Default: def}

	assert.Error(t, c.GetAudio(context.Background(), types.SpeechRequest{Text: "  "}, "x.mp3"))
	def.AssertNotCalled(t, "GetAudio", mock.Anything, mock.Anything, mock.Anything)
}

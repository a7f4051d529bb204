// Package mocks provides mock implementations of core interfaces for testing.
package mocks

import (
	"context"

	"factreel/internal/types"

	"github.com/stretchr/testify/mock"
)

// MockTtser is a mock implementation of types.Ttser
type MockTtser struct {
	mock.Mock
}

func (m *MockTtser) GetAudio(ctx context.Context, req types.SpeechRequest, outputPath string) error {
	args := m.Called(ctx, req, outputPath)
	return args.Error(0)
}

// MockChatCompleter is a mock implementation of types.ChatCompleter
type MockChatCompleter struct {
	mock.Mock
}

func (m *MockChatCompleter) ChatCompletion(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	args := m.Called(ctx, systemPrompt, userPrompt)
	return args.String(0), args.Error(1)
}

// MockFactSource is a mock implementation of types.FactSource
type MockFactSource struct {
	mock.Mock
}

func (m *MockFactSource) Fetch(ctx context.Context) string {
	args := m.Called(ctx)
	return args.String(0)
}

// MockAssetSource is a mock implementation of types.AssetSource
type MockAssetSource struct {
	mock.Mock
}

func (m *MockAssetSource) Name() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockAssetSource) Search(ctx context.Context, query string) (string, error) {
	args := m.Called(ctx, query)
	return args.String(0), args.Error(1)
}

// MockExpander is a mock implementation of types.Expander
type MockExpander struct {
	mock.Mock
}

func (m *MockExpander) Name() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockExpander) Expand(ctx context.Context, fact string) (string, error) {
	args := m.Called(ctx, fact)
	return args.String(0), args.Error(1)
}

package testutil

import (
	"context"

	"deskmate/model"
)

// MockCompleter implements model.Completer for testing
type MockCompleter struct {
	// Configurable response
	CompleteFunc func(ctx context.Context, messages []model.Message, maxTokens int64) (string, error)

	// Recorded calls
	Calls [][]model.Message
}

// NewMockCompleter creates a mock completer with a default echo response
func NewMockCompleter() *MockCompleter {
	mock := &MockCompleter{}
	mock.CompleteFunc = mock.defaultComplete
	return mock
}

func (m *MockCompleter) defaultComplete(ctx context.Context, messages []model.Message, maxTokens int64) (string, error) {
	return "Mock response", nil
}

func (m *MockCompleter) Complete(ctx context.Context, messages []model.Message, maxTokens int64) (string, error) {
	m.Calls = append(m.Calls, messages)
	return m.CompleteFunc(ctx, messages, maxTokens)
}

package ai

import (
	"context"
	"sync"

	"email-classifier/internal/model"
)

// MockAIClient is a mock implementation of AIClient for testing
type MockAIClient struct {
	Disabled             bool
	ClassifyAndReplyFunc func(ctx context.Context, emailBody string) (*model.ClassificationResult, error)

	mu    sync.Mutex
	calls int
}

func NewMockAIClient() *MockAIClient {
	return &MockAIClient{}
}

func (m *MockAIClient) Enabled() bool {
	return !m.Disabled
}

func (m *MockAIClient) ClassifyAndReply(ctx context.Context, emailBody string) (*model.ClassificationResult, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.Disabled {
		return nil, ErrNotConfigured
	}
	if m.ClassifyAndReplyFunc != nil {
		return m.ClassifyAndReplyFunc(ctx, emailBody)
	}

	// Default mock behavior: everything needs an answer
	return &model.ClassificationResult{
		Category:       model.CategoryProductive,
		SuggestedReply: "Resposta gerada pelo modelo.",
	}, nil
}

// Calls returns how many times ClassifyAndReply was invoked.
func (m *MockAIClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

package mock

import (
	"context"
	"sync"

	"github.com/poiesic/askit/ai"
)

// DefaultAnswer is the canned completion returned when no behavior is injected.
const DefaultAnswer = "This is a mock answer."

// MockChatModel is a test double for ai.ChatModel.
// It allows custom behavior injection via function fields.
type MockChatModel struct {
	// CompleteFunc is called by Complete if set.
	// If nil, returns a canned answer with deterministic usage.
	CompleteFunc func(ctx context.Context, req ai.ChatRequest) (*ai.ChatResponse, error)

	mu        sync.Mutex
	callCount int
	lastReq   ai.ChatRequest
}

// NewMockChatModel creates a mock chat model with default canned behavior.
// Note: Returns concrete type to allow test assertions via GetMockChatModel().
func NewMockChatModel() *MockChatModel {
	return &MockChatModel{}
}

// Complete returns the injected response, or a canned answer whose token
// usage is derived from the request so cost assertions stay deterministic.
func (m *MockChatModel) Complete(ctx context.Context, req ai.ChatRequest) (*ai.ChatResponse, error) {
	m.mu.Lock()
	m.callCount++
	m.lastReq = req
	m.mu.Unlock()

	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, req)
	}

	prompt := 0
	for _, msg := range req.Messages {
		prompt += estimateTokens(msg.Content)
	}
	completion := estimateTokens(DefaultAnswer)

	return &ai.ChatResponse{
		Content: DefaultAnswer,
		Model:   req.Model,
		Usage: ai.TokenUsage{
			PromptTokens:     prompt,
			CompletionTokens: completion,
			TotalTokens:      prompt + completion,
		},
	}, nil
}

// CallCount returns the number of times Complete was called.
func (m *MockChatModel) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// LastRequest returns the most recent request passed to Complete.
func (m *MockChatModel) LastRequest() ai.ChatRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastReq
}

// Reset clears the call count and injected behavior.
func (m *MockChatModel) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.lastReq = ai.ChatRequest{}
	m.CompleteFunc = nil
}

package mock

// MockTokenCounter is a test double for ai.TokenCounter.
// It uses a length heuristic instead of a real tokenizer so tests do not
// need tokenizer data files.
type MockTokenCounter struct {
	// CountTokensFunc is called by CountTokens if set.
	CountTokensFunc func(text string) int
}

// NewMockTokenCounter creates a mock token counter with heuristic behavior.
func NewMockTokenCounter() *MockTokenCounter {
	return &MockTokenCounter{}
}

// CountTokens approximates token count as one token per four characters.
func (m *MockTokenCounter) CountTokens(text string) int {
	if m.CountTokensFunc != nil {
		return m.CountTokensFunc(text)
	}
	return estimateTokens(text)
}

func estimateTokens(text string) int {
	if text == "" {
		return 0
	}
	return len(text)/4 + 1
}

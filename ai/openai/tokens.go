package openai

import (
	"log/slog"

	"github.com/pkoukk/tiktoken-go"
	"github.com/poiesic/askit/ai"
)

const fallbackEncoding = "cl100k_base"

// TokenCounter implements ai.TokenCounter on the model's own tokenizer.
// Embedding providers accessed through langchaingo do not surface usage
// counts, so the engine counts tokens locally for cost accounting.
type TokenCounter struct {
	encoding *tiktoken.Tiktoken
	logger   *slog.Logger
}

// newTokenCounter resolves the tokenizer for the configured embedding model,
// falling back to cl100k_base for models tiktoken does not know.
func newTokenCounter(config *ai.Config) (*TokenCounter, error) {
	logger := slog.Default().With("component", "token-counter")

	encoding, err := tiktoken.EncodingForModel(config.EmbeddingModel)
	if err != nil {
		logger.Debug("no tokenizer registered for model, using fallback",
			"model", config.EmbeddingModel, "encoding", fallbackEncoding)
		encoding, err = tiktoken.GetEncoding(fallbackEncoding)
		if err != nil {
			return nil, err
		}
	}

	return &TokenCounter{encoding: encoding, logger: logger}, nil
}

// NewTokenCounter creates a token counter for the configured embedding model.
//
// Returns ai.TokenCounter interface to enforce abstraction.
func NewTokenCounter(config *ai.Config) (ai.TokenCounter, error) {
	return newTokenCounter(config)
}

// CountTokens returns the number of tokens in text.
func (t *TokenCounter) CountTokens(text string) int {
	return len(t.encoding.Encode(text, nil, nil))
}

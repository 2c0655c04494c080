package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector represents the semantic meaning of the text.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// Batch processing is more efficient than calling EmbedText multiple times.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// TokenCounter counts tokens the way the embedding model's tokenizer does.
// Providers that report only aggregate usage per request (or none at all)
// make per-item cost accounting impossible without local counting.
type TokenCounter interface {
	// CountTokens returns the number of tokens in text.
	CountTokens(text string) int
}

// ChatMessage is one turn handed to the language model.
type ChatMessage struct {
	Role    string // "system", "user" or "assistant"
	Content string
}

// Chat message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatRequest describes a single completion call.
type ChatRequest struct {
	Model       string
	Messages    []ChatMessage
	Temperature float64
	MaxTokens   int
}

// TokenUsage is the model-reported token breakdown for one completion.
type TokenUsage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// ChatResponse is the generated answer plus its reported usage.
type ChatResponse struct {
	Content string
	Model   string
	Usage   TokenUsage
}

// ChatModel generates conversational completions.
// Implementations must be thread-safe for concurrent use.
type ChatModel interface {
	// Complete sends messages to the language model and returns the generated
	// answer together with the model-reported token usage.
	Complete(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

// Provider aggregates AI services for convenient initialization and lifecycle
// management. A provider creates and manages Embedder, ChatModel and
// TokenCounter instances, ensuring they share configuration appropriately.
type Provider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// ChatModel returns the completion service.
	// The returned ChatModel is safe for concurrent use.
	ChatModel() ChatModel

	// TokenCounter returns the tokenizer-backed token counter.
	TokenCounter() TokenCounter

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}

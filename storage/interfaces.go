package storage

import (
	"context"

	"github.com/poiesic/askit/core"
)

// StatusCounts aggregates the embedding status of one document's chunk set.
type StatusCounts struct {
	Total    int
	Embedded int
	Pending  int
	Failed   int
}

// ChunkFilter restricts similarity search to a slice of the index.
// TenantID, when set, is mandatory scoping: no chunk from another tenant may
// ever be returned. CategoryID and DocumentIDs are optional allow-lists; an
// empty DocumentIDs list means no document restriction.
type ChunkFilter struct {
	TenantID    string
	CategoryID  string
	DocumentIDs []string
}

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// ChunkRepository provides operations for managing document chunks and
// their embeddings.
type ChunkRepository interface {
	Repository

	// AddChunks adds one or more chunks to storage.
	// Sets InsertedAt/UpdatedAt timestamps.
	// Returns the chunks with timestamps populated.
	AddChunks(ctx context.Context, chunks ...*core.Chunk) ([]*core.Chunk, error)

	// UpdateChunks updates existing chunks, typically to record embedding
	// results. Updates the UpdatedAt timestamp automatically.
	// Returns ErrNotFound if any chunk doesn't exist.
	UpdateChunks(ctx context.Context, chunks ...*core.Chunk) ([]*core.Chunk, error)

	// GetChunk retrieves a single chunk by ID.
	// Returns ErrNotFound if the chunk doesn't exist.
	GetChunk(ctx context.Context, id core.ID) (*core.Chunk, error)

	// GetDocumentChunks retrieves all chunks of a document in ordinal order.
	GetDocumentChunks(ctx context.Context, documentID string) ([]*core.Chunk, error)

	// DeleteDocumentChunks removes all chunks of a document along with
	// their embeddings. Returns the number of chunks removed.
	DeleteDocumentChunks(ctx context.Context, documentID string) (int, error)

	// CountDocumentChunks returns per-status chunk counts for a document.
	// A document with no chunks yields all-zero counts, not an error.
	CountDocumentChunks(ctx context.Context, documentID string) (*StatusCounts, error)

	// FindSimilar finds embedded chunks similar to the given vector within
	// the filter's scope. Returns chunks with similarity >= minSimilarity,
	// up to limit results, ordered by similarity descending with ties
	// broken by ascending ordinal. Never returns a chunk that is not in
	// embedded status or that belongs to a different tenant than the
	// filter requests.
	FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int, filter ChunkFilter) ([]*core.ScoredChunk, error)
}

// ConversationRepository provides operations for managing conversations and
// their messages.
type ConversationRepository interface {
	Repository

	// AddConversation adds a conversation, generating its ID from sequence
	// and setting timestamps. Returns the conversation with ID populated.
	AddConversation(ctx context.Context, conversation *core.Conversation) (*core.Conversation, error)

	// GetConversation retrieves a conversation by ID.
	// Returns ErrNotFound if it doesn't exist.
	GetConversation(ctx context.Context, id core.ID) (*core.Conversation, error)

	// UpdateConversation updates an existing conversation.
	// Updates the UpdatedAt timestamp automatically.
	// Returns ErrNotFound if it doesn't exist.
	UpdateConversation(ctx context.Context, conversation *core.Conversation) (*core.Conversation, error)

	// DeleteConversation removes a conversation and cascades the delete to
	// all of its messages. Returns ErrNotFound if it doesn't exist.
	DeleteConversation(ctx context.Context, id core.ID) error

	// ListConversations returns a tenant's conversations ordered by most
	// recent activity first, up to limit results.
	ListConversations(ctx context.Context, tenantID string, limit int) ([]*core.Conversation, error)

	// AppendMessage adds a message to its conversation and updates the
	// conversation's aggregate counters (message count, and token/cost
	// totals for assistant messages) in the same transaction.
	// Returns ErrNotFound if the conversation doesn't exist.
	AppendMessage(ctx context.Context, message *core.Message) (*core.Message, error)

	// GetMessages retrieves a conversation's messages in creation order.
	// A limit > 0 returns only the last limit messages.
	GetMessages(ctx context.Context, conversationID core.ID, limit int) ([]*core.Message, error)

	// GetMessage retrieves a single message.
	// Returns ErrNotFound if it doesn't exist.
	GetMessage(ctx context.Context, conversationID, messageID core.ID) (*core.Message, error)

	// UpdateMessage updates an existing message, typically to record a
	// rating. Returns ErrNotFound if it doesn't exist.
	UpdateMessage(ctx context.Context, message *core.Message) (*core.Message, error)
}

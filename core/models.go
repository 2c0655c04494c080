package core

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing or database sequences.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// ChunkIDFor derives the deterministic ID of a chunk from its document,
// ordinal and span. Identical chunking input always yields identical IDs,
// which makes reindexing idempotent at the key level.
func ChunkIDFor(documentID string, ordinal, start, end int) ID {
	return IDFromContent(fmt.Sprintf("%s:%d:%d:%d", documentID, ordinal, start, end))
}

// ChunkStatus tracks a chunk through the embedding lifecycle.
type ChunkStatus int

const (
	// ChunkStatusPending means the chunk row exists but has no embedding yet.
	ChunkStatusPending ChunkStatus = iota + 1
	// ChunkStatusEmbedded means the chunk has a stored embedding vector.
	ChunkStatusEmbedded
	// ChunkStatusFailed means embedding generation failed for this chunk.
	ChunkStatusFailed
)

// String returns the wire name of the status.
func (s ChunkStatus) String() string {
	switch s {
	case ChunkStatusPending:
		return "pending"
	case ChunkStatusEmbedded:
		return "embedded"
	case ChunkStatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Chunk is a contiguous slice of a document's text, indexed independently
// for retrieval. The embedding is stored inline on the chunk record: a chunk
// has a non-empty Vector iff its Status is ChunkStatusEmbedded.
type Chunk struct {
	Id         ID
	DocumentID string
	TenantID   string // denormalized for isolation checks at the search layer
	CategoryID string
	Ordinal    int // 0-based, gapless per document
	StartChar  int
	EndChar    int
	Size       int
	Overlap    int // overlap with the previous chunk, in characters
	Method     string
	Content    string
	Status     ChunkStatus
	Error      string // populated when Status is ChunkStatusFailed

	// Embedding fields, populated when Status becomes ChunkStatusEmbedded.
	Vector         []float32
	EmbeddingModel string
	Tokens         int
	Cost           float64

	InsertedAt time.Time
	UpdatedAt  time.Time
}

// ConversationStatus marks a conversation as active or archived.
type ConversationStatus int

const (
	// ConversationStatusActive is the initial status of every conversation.
	ConversationStatusActive ConversationStatus = iota + 1
	// ConversationStatusArchived hides a conversation from active listings.
	ConversationStatusArchived
)

// Conversation holds the retrieval and generation parameters of a multi-turn
// exchange, plus running aggregates over its assistant messages.
type Conversation struct {
	Id       ID
	TenantID string
	UserID   string
	Title    string // derived from the first user message, empty until then

	// Generation parameters.
	Model       string
	Temperature float64
	MaxTokens   int

	// Retrieval parameters and filters. Threshold and the ranking weights
	// are float32 to match the similarity scores they are compared against.
	TopK          int
	Threshold     float32
	CategoryID    string
	DocumentIDs   []string // explicit allow-list; empty means no restriction
	VectorWeight  float32  // both weights zero means pure vector ranking
	KeywordWeight float32

	Status ConversationStatus

	// Aggregates over assistant messages, maintained atomically with each
	// message append.
	MessageCount int
	TotalTokens  int
	TotalCost    float64

	InsertedAt time.Time
	UpdatedAt  time.Time
}

// MessageRole identifies the author of a conversation message.
type MessageRole int

const (
	// MessageRoleUser is a question from the end user.
	MessageRoleUser MessageRole = iota + 1
	// MessageRoleAssistant is a generated answer.
	MessageRoleAssistant
)

// String returns the wire name of the role.
func (r MessageRole) String() string {
	switch r {
	case MessageRoleUser:
		return "user"
	case MessageRoleAssistant:
		return "assistant"
	default:
		return "unknown"
	}
}

// RetrievedChunk records one element of an assistant message's retrieval
// provenance: which chunk grounded the answer and how similar it was.
type RetrievedChunk struct {
	ChunkID    ID
	DocumentID string
	Ordinal    int
	Score      float32
}

// Message is a single turn in a conversation. Messages are append-only and
// ordered by creation. Provenance, usage and cost fields are populated for
// assistant messages only.
type Message struct {
	Id             ID
	ConversationID ID
	Role           MessageRole
	Content        string

	Retrieved        []RetrievedChunk
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	Cost             float64

	Rating   int // 1-5, 0 means unrated
	Feedback string

	InsertedAt time.Time
}

// ScoredChunk is a chunk paired with its similarity (or combined) score.
type ScoredChunk struct {
	Chunk *Chunk
	Score float32
}

package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validChunk() *Chunk {
	return &Chunk{
		Id:         ChunkIDFor("doc-1", 0, 0, 100),
		DocumentID: "doc-1",
		TenantID:   "tenant-1",
		Ordinal:    0,
		StartChar:  0,
		EndChar:    100,
		Size:       100,
		Method:     "fixed_size",
		Content:    "some chunk text",
		Status:     ChunkStatusPending,
	}
}

func TestValidateChunk(t *testing.T) {
	t.Run("valid pending chunk", func(t *testing.T) {
		assert.NoError(t, ValidateChunk(validChunk()))
	})

	t.Run("valid embedded chunk", func(t *testing.T) {
		chunk := validChunk()
		chunk.Status = ChunkStatusEmbedded
		chunk.Vector = []float32{0.1, 0.2, 0.3}
		assert.NoError(t, ValidateChunk(chunk))
	})

	t.Run("nil chunk", func(t *testing.T) {
		err := ValidateChunk(nil)
		assert.ErrorIs(t, err, ErrInvalidChunk)
	})

	t.Run("empty document id", func(t *testing.T) {
		chunk := validChunk()
		chunk.DocumentID = ""
		err := ValidateChunk(chunk)
		assert.ErrorIs(t, err, ErrEmptyDocumentID)
	})

	t.Run("inverted span", func(t *testing.T) {
		chunk := validChunk()
		chunk.StartChar = 100
		chunk.EndChar = 100
		err := ValidateChunk(chunk)
		assert.ErrorIs(t, err, ErrInvalidSpan)
	})

	t.Run("unknown status", func(t *testing.T) {
		chunk := validChunk()
		chunk.Status = ChunkStatus(42)
		err := ValidateChunk(chunk)
		assert.ErrorIs(t, err, ErrInvalidChunkStatus)
	})

	t.Run("embedded without vector", func(t *testing.T) {
		chunk := validChunk()
		chunk.Status = ChunkStatusEmbedded
		err := ValidateChunk(chunk)
		assert.ErrorIs(t, err, ErrEmbeddingStatusMismatch)
	})

	t.Run("pending with vector", func(t *testing.T) {
		chunk := validChunk()
		chunk.Vector = []float32{0.5}
		err := ValidateChunk(chunk)
		assert.ErrorIs(t, err, ErrEmbeddingStatusMismatch)
	})
}

func TestValidateMessage(t *testing.T) {
	t.Run("valid user message", func(t *testing.T) {
		msg := &Message{ConversationID: 1, Role: MessageRoleUser, Content: "what is our data retention policy?"}
		assert.NoError(t, ValidateMessage(msg))
	})

	t.Run("nil message", func(t *testing.T) {
		assert.ErrorIs(t, ValidateMessage(nil), ErrInvalidMessage)
	})

	t.Run("empty content", func(t *testing.T) {
		msg := &Message{Role: MessageRoleUser}
		assert.ErrorIs(t, ValidateMessage(msg), ErrEmptyContent)
	})

	t.Run("invalid role", func(t *testing.T) {
		msg := &Message{Role: MessageRole(7), Content: "hi"}
		assert.ErrorIs(t, ValidateMessage(msg), ErrInvalidMessageRole)
	})

	t.Run("rating out of range", func(t *testing.T) {
		msg := &Message{Role: MessageRoleAssistant, Content: "answer", Rating: 6}
		assert.ErrorIs(t, ValidateMessage(msg), ErrInvalidRating)
	})

	t.Run("unrated is fine", func(t *testing.T) {
		msg := &Message{Role: MessageRoleAssistant, Content: "answer"}
		assert.NoError(t, ValidateMessage(msg))
	})
}

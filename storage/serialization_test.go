package storage

import (
	"testing"
	"time"

	"github.com/poiesic/askit/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerialization(t *testing.T) {
	t.Run("ID round trip", func(t *testing.T) {
		id := core.IDFromContent("doc-1:0")
		got, err := UnmarshalID(MarshalID(id))
		require.NoError(t, err)
		assert.Equal(t, id, got)
	})

	t.Run("chunk round trip preserves embedding fields", func(t *testing.T) {
		now := time.Now().UTC().Truncate(time.Microsecond)
		chunk := &core.Chunk{
			Id:             core.ChunkIDFor("doc-1", 2, 800, 1800),
			DocumentID:     "doc-1",
			TenantID:       "tenant-a",
			CategoryID:     "contracts",
			Ordinal:        2,
			StartChar:      800,
			EndChar:        1800,
			Size:           1000,
			Overlap:        200,
			Method:         "fixed_size",
			Content:        "chunk body",
			Status:         core.ChunkStatusEmbedded,
			Vector:         []float32{0.25, -0.5, 0.125},
			EmbeddingModel: "text-embedding-3-small",
			Tokens:         241,
			Cost:           0.00000482,
			InsertedAt:     now,
			UpdatedAt:      now,
		}

		got, err := UnmarshalChunk(MarshalChunk(chunk))
		require.NoError(t, err)
		assert.Equal(t, chunk, got)
	})

	t.Run("failed chunk round trip keeps error message", func(t *testing.T) {
		chunk := &core.Chunk{
			Id:         core.ChunkIDFor("doc-2", 0, 0, 100),
			DocumentID: "doc-2",
			Ordinal:    0,
			StartChar:  0,
			EndChar:    100,
			Content:    "body",
			Status:     core.ChunkStatusFailed,
			Error:      "embedding request failed",
		}

		got, err := UnmarshalChunk(MarshalChunk(chunk))
		require.NoError(t, err)
		assert.Equal(t, chunk, got)
		assert.True(t, got.InsertedAt.IsZero())
	})

	t.Run("conversation round trip", func(t *testing.T) {
		now := time.Now().UTC().Truncate(time.Microsecond)
		conversation := &core.Conversation{
			Id:            42,
			TenantID:      "tenant-a",
			UserID:        "user-7",
			Title:         "Quarterly report questions",
			Model:         "gpt-4o-mini",
			Temperature:   0.2,
			MaxTokens:     1024,
			TopK:          5,
			Threshold:     0.7,
			CategoryID:    "reports",
			DocumentIDs:   []string{"doc-1", "doc-2"},
			VectorWeight:  0.7,
			KeywordWeight: 0.3,
			Status:        core.ConversationStatusActive,
			MessageCount:  4,
			TotalTokens:   1830,
			TotalCost:     0.0021,
			InsertedAt:    now,
			UpdatedAt:     now,
		}

		got, err := UnmarshalConversation(MarshalConversation(conversation))
		require.NoError(t, err)
		assert.Equal(t, conversation, got)
	})

	t.Run("message round trip preserves provenance", func(t *testing.T) {
		now := time.Now().UTC().Truncate(time.Microsecond)
		message := &core.Message{
			Id:             7,
			ConversationID: 42,
			Role:           core.MessageRoleAssistant,
			Content:        "The report shows revenue grew 12%.",
			Retrieved: []core.RetrievedChunk{
				{ChunkID: core.ChunkIDFor("doc-1", 0, 0, 1000), DocumentID: "doc-1", Ordinal: 0, Score: 0.91},
				{ChunkID: core.ChunkIDFor("doc-1", 1, 800, 1800), DocumentID: "doc-1", Ordinal: 1, Score: 0.84},
			},
			PromptTokens:     512,
			CompletionTokens: 64,
			TotalTokens:      576,
			Cost:             0.000115,
			Rating:           5,
			Feedback:         "accurate",
			InsertedAt:       now,
		}

		got, err := UnmarshalMessage(MarshalMessage(message))
		require.NoError(t, err)
		assert.Equal(t, message, got)
	})
}

package askit

import (
	"context"
	"strings"
	"testing"

	"github.com/poiesic/askit/ai/mock"
	"github.com/poiesic/askit/chunker"
	"github.com/poiesic/askit/core"
	"github.com/poiesic/askit/index"
	"github.com/poiesic/askit/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()

	provider := mock.NewMockProvider()
	embedder := provider.(*mock.MockProvider).GetMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 0}, nil
	}
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		vectors := make([][]float32, len(texts))
		for i := range texts {
			vectors[i] = []float32{1, 0}
		}
		return vectors, nil
	}

	engine, err := NewEngine("", WithInMemory(), WithProvider(provider))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, engine.Close())
	})
	return engine
}

func TestEngine(t *testing.T) {
	ctx := context.Background()

	t.Run("index then search then chat", func(t *testing.T) {
		engine := newTestEngine(t)

		report, err := engine.Index().IndexDocument(ctx, index.Request{
			DocumentID: "handbook",
			TenantID:   "tenant-a",
			Text:       strings.Repeat("the office closes at six. ", 60),
			Chunking:   chunker.Options{ChunkSize: 500, Overlap: 50, Method: chunker.MethodSentence},
		})
		require.NoError(t, err)
		assert.Positive(t, report.TotalChunks)
		assert.Equal(t, report.TotalChunks, report.Embedded)
		assert.Zero(t, report.Failed)

		status, err := engine.Index().GetIndexStatus(ctx, "handbook")
		require.NoError(t, err)
		assert.True(t, status.Indexed)

		results, err := engine.Searcher().Search(ctx, "when does the office close?", search.Options{
			TopK:     3,
			TenantID: "tenant-a",
		})
		require.NoError(t, err)
		require.NotEmpty(t, results)
		assert.Equal(t, "handbook", results[0].Chunk.DocumentID)

		conversation, err := engine.Chat().CreateConversation(ctx, &core.Conversation{
			TenantID: "tenant-a",
		})
		require.NoError(t, err)

		result, err := engine.Chat().Chat(ctx, conversation.Id, "when does the office close?")
		require.NoError(t, err)
		assert.Equal(t, mock.DefaultAnswer, result.Message.Content)
		assert.NotEmpty(t, result.Message.Retrieved)
	})

	t.Run("remove document empties the index", func(t *testing.T) {
		engine := newTestEngine(t)

		_, err := engine.Index().IndexDocument(ctx, index.Request{
			DocumentID: "notes",
			TenantID:   "tenant-a",
			Text:       "a short note about parking rules",
		})
		require.NoError(t, err)

		removed, err := engine.Index().RemoveDocumentIndex(ctx, "notes")
		require.NoError(t, err)
		assert.Equal(t, 1, removed)

		status, err := engine.Index().GetIndexStatus(ctx, "notes")
		require.NoError(t, err)
		assert.False(t, status.Indexed)
	})
}

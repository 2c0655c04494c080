package index

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/poiesic/askit/ai/mock"
	"github.com/poiesic/askit/chunker"
	"github.com/poiesic/askit/core"
	"github.com/poiesic/askit/embedding"
	"github.com/poiesic/askit/storage"
	badgerstore "github.com/poiesic/askit/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T, embedder *mock.MockEmbedder, clientOpts ...embedding.Option) (*Manager, storage.ChunkRepository) {
	t.Helper()

	chunkRepo, conversationRepo, backend, err := badgerstore.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		chunkRepo.Close()
		conversationRepo.Close()
		backend.Close()
	})

	client, err := embedding.NewClient(embedder, mock.NewMockTokenCounter(), "text-embedding-3-small", clientOpts...)
	require.NoError(t, err)
	t.Cleanup(client.Release)

	manager, err := NewManager(chunkRepo, client)
	require.NoError(t, err)
	return manager, chunkRepo
}

func TestNewManager(t *testing.T) {
	t.Run("requires chunk repository", func(t *testing.T) {
		_, err := NewManager(nil, nil)
		assert.ErrorIs(t, err, ErrChunkRepositoryRequired)
	})
}

func TestIndexDocument(t *testing.T) {
	ctx := context.Background()

	t.Run("indexes and embeds all chunks", func(t *testing.T) {
		manager, _ := newTestManager(t, mock.NewMockEmbedder())

		report, err := manager.IndexDocument(ctx, Request{
			DocumentID: "doc-1",
			TenantID:   "tenant-a",
			Text:       strings.Repeat("a", 2500),
		})
		require.NoError(t, err)

		assert.Equal(t, 3, report.TotalChunks)
		assert.Equal(t, 3, report.Embedded)
		assert.Zero(t, report.Failed)
		assert.Positive(t, report.TotalTokens)
		assert.Positive(t, report.TotalCost)

		status, err := manager.GetIndexStatus(ctx, "doc-1")
		require.NoError(t, err)
		assert.True(t, status.Indexed)
		assert.Equal(t, 3, status.TotalChunks)
		assert.Equal(t, 3, status.Embedded)
		assert.Zero(t, status.Pending)
	})

	t.Run("requires document id", func(t *testing.T) {
		manager, _ := newTestManager(t, mock.NewMockEmbedder())

		_, err := manager.IndexDocument(ctx, Request{Text: "some text"})
		assert.ErrorIs(t, err, ErrDocumentIDRequired)
	})

	t.Run("refuses double index without reindex", func(t *testing.T) {
		manager, _ := newTestManager(t, mock.NewMockEmbedder())

		_, err := manager.IndexDocument(ctx, Request{DocumentID: "doc-1", Text: "hello world"})
		require.NoError(t, err)

		_, err = manager.IndexDocument(ctx, Request{DocumentID: "doc-1", Text: "hello again"})
		assert.ErrorIs(t, err, ErrAlreadyIndexed)
	})

	t.Run("reindex replaces the chunk set completely", func(t *testing.T) {
		manager, repo := newTestManager(t, mock.NewMockEmbedder())

		_, err := manager.IndexDocument(ctx, Request{
			DocumentID: "doc-1",
			Text:       strings.Repeat("a", 2500),
		})
		require.NoError(t, err)

		report, err := manager.IndexDocument(ctx, Request{
			DocumentID: "doc-1",
			Text:       "a much shorter document",
			Reindex:    true,
		})
		require.NoError(t, err)
		assert.Equal(t, 1, report.TotalChunks)

		status, err := manager.GetIndexStatus(ctx, "doc-1")
		require.NoError(t, err)
		assert.Equal(t, 1, status.TotalChunks)

		chunks, err := repo.GetDocumentChunks(ctx, "doc-1")
		require.NoError(t, err)
		require.Len(t, chunks, 1)
		assert.Equal(t, "a much shorter document", chunks[0].Content)
	})

	t.Run("failed batch items are recorded per chunk", func(t *testing.T) {
		embedder := mock.NewMockEmbedder()
		embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
			for _, text := range texts {
				if strings.Contains(text, "z") {
					return nil, errors.New("provider rejected batch")
				}
			}
			vectors := make([][]float32, len(texts))
			for i, text := range texts {
				vectors[i] = mock.DeterministicVector(text, 384)
			}
			return vectors, nil
		}

		manager, repo := newTestManager(t, embedder, embedding.WithBatchSize(1))

		text := strings.Repeat("a", 10) + strings.Repeat("b", 10) + strings.Repeat("z", 10)
		report, err := manager.IndexDocument(ctx, Request{
			DocumentID: "doc-1",
			TenantID:   "tenant-a",
			Text:       text,
			Chunking:   chunker.Options{ChunkSize: 10, Overlap: 0, Method: chunker.MethodFixedSize},
		})
		require.NoError(t, err)

		assert.Equal(t, 3, report.TotalChunks)
		assert.Equal(t, 2, report.Embedded)
		assert.Equal(t, 1, report.Failed)

		chunks, err := repo.GetDocumentChunks(ctx, "doc-1")
		require.NoError(t, err)
		require.Len(t, chunks, 3)

		assert.Equal(t, core.ChunkStatusEmbedded, chunks[0].Status)
		assert.Equal(t, core.ChunkStatusEmbedded, chunks[1].Status)
		assert.Equal(t, core.ChunkStatusFailed, chunks[2].Status)
		assert.NotEmpty(t, chunks[2].Error)
		assert.Empty(t, chunks[2].Vector)

		// Failed chunks never surface in similarity search
		results, err := repo.FindSimilar(ctx, mock.DeterministicVector(strings.Repeat("z", 10), 384),
			0, 10, storage.ChunkFilter{TenantID: "tenant-a"})
		require.NoError(t, err)
		for _, result := range results {
			assert.Equal(t, core.ChunkStatusEmbedded, result.Chunk.Status)
		}
	})

	t.Run("empty text yields empty report", func(t *testing.T) {
		manager, _ := newTestManager(t, mock.NewMockEmbedder())

		report, err := manager.IndexDocument(ctx, Request{DocumentID: "doc-1", Text: ""})
		require.NoError(t, err)
		assert.Zero(t, report.TotalChunks)

		status, err := manager.GetIndexStatus(ctx, "doc-1")
		require.NoError(t, err)
		assert.False(t, status.Indexed)
	})
}

func TestRemoveDocumentIndex(t *testing.T) {
	ctx := context.Background()

	t.Run("removes chunks and reports count", func(t *testing.T) {
		manager, _ := newTestManager(t, mock.NewMockEmbedder())

		_, err := manager.IndexDocument(ctx, Request{
			DocumentID: "doc-1",
			Text:       strings.Repeat("a", 2500),
		})
		require.NoError(t, err)

		removed, err := manager.RemoveDocumentIndex(ctx, "doc-1")
		require.NoError(t, err)
		assert.Equal(t, 3, removed)

		status, err := manager.GetIndexStatus(ctx, "doc-1")
		require.NoError(t, err)
		assert.False(t, status.Indexed)
	})

	t.Run("unknown document removes nothing", func(t *testing.T) {
		manager, _ := newTestManager(t, mock.NewMockEmbedder())

		removed, err := manager.RemoveDocumentIndex(ctx, "missing")
		require.NoError(t, err)
		assert.Zero(t, removed)
	})
}

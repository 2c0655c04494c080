package embedding

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/poiesic/askit/ai"
	"github.com/poiesic/askit/ai/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, embedder *mock.MockEmbedder, opts ...Option) *Client {
	t.Helper()

	client, err := NewClient(embedder, mock.NewMockTokenCounter(), "text-embedding-3-small", opts...)
	require.NoError(t, err)
	t.Cleanup(client.Release)
	return client
}

func TestNewClient(t *testing.T) {
	t.Run("requires embedder", func(t *testing.T) {
		_, err := NewClient(nil, mock.NewMockTokenCounter(), "text-embedding-3-small")
		assert.ErrorIs(t, err, ErrEmbedderRequired)
	})

	t.Run("requires token counter", func(t *testing.T) {
		_, err := NewClient(mock.NewMockEmbedder(), nil, "text-embedding-3-small")
		assert.ErrorIs(t, err, ErrTokenCounterRequired)
	})

	t.Run("requires model name", func(t *testing.T) {
		_, err := NewClient(mock.NewMockEmbedder(), mock.NewMockTokenCounter(), "")
		assert.ErrorIs(t, err, ErrModelRequired)
	})
}

func TestGenerate(t *testing.T) {
	t.Run("returns vector with token count and cost", func(t *testing.T) {
		client := newTestClient(t, mock.NewMockEmbedder())

		result, err := client.Generate(context.Background(), "hello world")
		require.NoError(t, err)
		require.NotNil(t, result)

		assert.Len(t, result.Vector, 384)
		expectedTokens := mock.NewMockTokenCounter().CountTokens("hello world")
		assert.Equal(t, expectedTokens, result.Tokens)
		assert.InDelta(t, float64(expectedTokens)/1_000_000*0.02, result.Cost, 1e-12)
	})

	t.Run("surfaces embedder failure", func(t *testing.T) {
		embedder := mock.NewMockEmbedder()
		embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
			return nil, errors.New("provider down")
		}
		client := newTestClient(t, embedder)

		_, err := client.Generate(context.Background(), "hello")
		assert.Error(t, err)
	})
}

func TestGenerateBatch(t *testing.T) {
	t.Run("empty input yields empty results", func(t *testing.T) {
		client := newTestClient(t, mock.NewMockEmbedder())

		results := client.GenerateBatch(context.Background(), nil)
		assert.Empty(t, results)
	})

	t.Run("preserves input order across pages", func(t *testing.T) {
		embedder := mock.NewMockEmbedder()
		client := newTestClient(t, embedder, WithBatchSize(3))

		texts := make([]string, 10)
		for i := range texts {
			texts[i] = strings.Repeat("x", i+1)
		}

		results := client.GenerateBatch(context.Background(), texts)
		require.Len(t, results, 10)

		for i, result := range results {
			require.NotNil(t, result, "result %d", i)
			assert.Equal(t, mock.DeterministicVector(texts[i], 384), result.Vector)
		}
	})

	t.Run("failed page yields nil slots without aborting others", func(t *testing.T) {
		embedder := mock.NewMockEmbedder()
		embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
			for _, text := range texts {
				if strings.Contains(text, "poison") {
					return nil, errors.New("provider rejected batch")
				}
			}
			vectors := make([][]float32, len(texts))
			for i, text := range texts {
				vectors[i] = mock.DeterministicVector(text, 384)
			}
			return vectors, nil
		}
		client := newTestClient(t, embedder, WithBatchSize(2))

		texts := []string{"ok-1", "ok-2", "poison", "ok-3", "ok-4", "ok-5"}
		results := client.GenerateBatch(context.Background(), texts)
		require.Len(t, results, 6)

		assert.NotNil(t, results[0])
		assert.NotNil(t, results[1])
		assert.Nil(t, results[2], "item in failed page")
		assert.Nil(t, results[3], "item sharing page with failure")
		assert.NotNil(t, results[4])
		assert.NotNil(t, results[5])
	})

	t.Run("computes per item cost from token counts", func(t *testing.T) {
		counter := mock.NewMockTokenCounter()
		counter.CountTokensFunc = func(text string) int { return len(text) }

		client, err := NewClient(mock.NewMockEmbedder(), counter, "text-embedding-3-small")
		require.NoError(t, err)
		t.Cleanup(client.Release)

		results := client.GenerateBatch(context.Background(), []string{"ab", "abcd"})
		require.Len(t, results, 2)
		require.NotNil(t, results[0])
		require.NotNil(t, results[1])

		assert.Equal(t, 2, results[0].Tokens)
		assert.Equal(t, 4, results[1].Tokens)
		assert.InDelta(t, 2.0/1_000_000*0.02, results[0].Cost, 1e-15)
		assert.InDelta(t, 4.0/1_000_000*0.02, results[1].Cost, 1e-15)
	})

	t.Run("cancelled context leaves remaining slots nil", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		client := newTestClient(t, mock.NewMockEmbedder())
		results := client.GenerateBatch(ctx, []string{"a", "b"})
		require.Len(t, results, 2)
		assert.Nil(t, results[0])
		assert.Nil(t, results[1])
	})

	t.Run("unknown model prices at zero", func(t *testing.T) {
		client, err := NewClient(mock.NewMockEmbedder(), mock.NewMockTokenCounter(), "custom-local-model",
			WithPricing(ai.DefaultPriceTable()))
		require.NoError(t, err)
		t.Cleanup(client.Release)

		result, genErr := client.Generate(context.Background(), "some text")
		require.NoError(t, genErr)
		assert.Zero(t, result.Cost)
	})
}

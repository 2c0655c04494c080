package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionsValidate(t *testing.T) {
	t.Run("default options are valid", func(t *testing.T) {
		assert.NoError(t, DefaultOptions().Validate())
	})

	t.Run("rejects non-positive chunk size", func(t *testing.T) {
		err := Options{ChunkSize: 0, Method: MethodFixedSize}.Validate()
		assert.ErrorIs(t, err, ErrInvalidChunkSize)

		err = Options{ChunkSize: -5, Method: MethodFixedSize}.Validate()
		assert.ErrorIs(t, err, ErrInvalidChunkSize)
	})

	t.Run("rejects negative overlap", func(t *testing.T) {
		err := Options{ChunkSize: 100, Overlap: -1}.Validate()
		assert.ErrorIs(t, err, ErrInvalidOverlap)
	})

	t.Run("rejects unknown method", func(t *testing.T) {
		err := Options{ChunkSize: 100, Method: "semantic"}.Validate()
		assert.ErrorIs(t, err, ErrUnknownMethod)
	})
}

func TestCreateChunksFixedSize(t *testing.T) {
	t.Run("empty text yields no chunks", func(t *testing.T) {
		chunks, err := CreateChunks("", DefaultOptions())
		require.NoError(t, err)
		assert.Empty(t, chunks)
	})

	t.Run("text shorter than chunk size yields one chunk", func(t *testing.T) {
		chunks, err := CreateChunks("short text", DefaultOptions())
		require.NoError(t, err)
		require.Len(t, chunks, 1)
		assert.Equal(t, 0, chunks[0].Start)
		assert.Equal(t, 10, chunks[0].End)
		assert.Equal(t, "short text", chunks[0].Content)
		assert.Equal(t, 0, chunks[0].Overlap)
	})

	t.Run("windows slide by size minus overlap", func(t *testing.T) {
		text := strings.Repeat("a", 2500)
		chunks, err := CreateChunks(text, Options{ChunkSize: 1000, Overlap: 200, Method: MethodFixedSize})
		require.NoError(t, err)
		require.Len(t, chunks, 3)

		assert.Equal(t, 0, chunks[0].Start)
		assert.Equal(t, 1000, chunks[0].End)
		assert.Equal(t, 800, chunks[1].Start)
		assert.Equal(t, 1800, chunks[1].End)
		assert.Equal(t, 1600, chunks[2].Start)
		assert.Equal(t, 2500, chunks[2].End)

		assert.Equal(t, 0, chunks[0].Overlap)
		assert.Equal(t, 200, chunks[1].Overlap)
		assert.Equal(t, 200, chunks[2].Overlap)

		for i, c := range chunks {
			assert.Equal(t, i, c.Ordinal)
		}
	})

	t.Run("snaps to sentence end in trailing window", func(t *testing.T) {
		text := strings.Repeat("a", 890) + ". " + strings.Repeat("b", 2000)
		chunks, err := CreateChunks(text, Options{ChunkSize: 1000, Overlap: 200, Method: MethodFixedSize})
		require.NoError(t, err)
		require.NotEmpty(t, chunks)

		assert.Equal(t, 891, chunks[0].End)
		assert.True(t, strings.HasSuffix(chunks[0].Content, "."))
	})

	t.Run("prefers paragraph break over sentence end", func(t *testing.T) {
		text := strings.Repeat("a", 850) + "\n\n" + strings.Repeat("b", 2000)
		chunks, err := CreateChunks(text, Options{ChunkSize: 1000, Overlap: 0, Method: MethodFixedSize})
		require.NoError(t, err)
		require.NotEmpty(t, chunks)

		assert.Equal(t, 852, chunks[0].End)
	})

	t.Run("snaps to word boundary when no sentence end exists", func(t *testing.T) {
		text := strings.Repeat("a", 950) + " " + strings.Repeat("b", 1000)
		chunks, err := CreateChunks(text, Options{ChunkSize: 1000, Overlap: 0, Method: MethodFixedSize})
		require.NoError(t, err)
		require.NotEmpty(t, chunks)

		assert.Equal(t, 951, chunks[0].End)
	})

	t.Run("terminates when overlap exceeds chunk size", func(t *testing.T) {
		text := strings.Repeat("x", 10000)
		chunks, err := CreateChunks(text, Options{ChunkSize: 100, Overlap: 500, Method: MethodFixedSize})
		require.NoError(t, err)
		require.NotEmpty(t, chunks)

		prevStart := -1
		for _, c := range chunks {
			assert.Less(t, c.Start, c.End)
			assert.Greater(t, c.Start, prevStart)
			prevStart = c.Start
		}
		assert.Equal(t, len(text), chunks[len(chunks)-1].End)
	})
}

func TestCreateChunksSentence(t *testing.T) {
	t.Run("groups whole sentences with sentence tail overlap", func(t *testing.T) {
		text := "aaaa. bbbb. cccc. dddd."
		chunks, err := CreateChunks(text, Options{ChunkSize: 12, Overlap: 6, Method: MethodSentence})
		require.NoError(t, err)
		require.Len(t, chunks, 3)

		assert.Equal(t, "aaaa. bbbb.", chunks[0].Content)
		assert.Equal(t, " bbbb. cccc.", chunks[1].Content)
		assert.Equal(t, " cccc. dddd.", chunks[2].Content)
		assert.Equal(t, 6, chunks[1].Overlap)
		assert.Equal(t, 6, chunks[2].Overlap)
	})

	t.Run("single oversized sentence emitted on its own", func(t *testing.T) {
		text := strings.Repeat("a", 50) + ". Short."
		chunks, err := CreateChunks(text, Options{ChunkSize: 20, Overlap: 5, Method: MethodSentence})
		require.NoError(t, err)
		require.Len(t, chunks, 2)
		assert.Equal(t, 51, chunks[0].End)
	})

	t.Run("unterminated trailing text forms final sentence", func(t *testing.T) {
		chunks, err := CreateChunks("First. trailing words", Options{ChunkSize: 100, Overlap: 0, Method: MethodSentence})
		require.NoError(t, err)
		require.Len(t, chunks, 1)
		assert.Equal(t, "First. trailing words", chunks[0].Content)
	})
}

func TestCreateChunksParagraph(t *testing.T) {
	t.Run("small paragraphs accumulate into one chunk", func(t *testing.T) {
		text := "aaa\n\nbbb\n\nccc"
		chunks, err := CreateChunks(text, Options{ChunkSize: 1000, Overlap: 100, Method: MethodParagraph})
		require.NoError(t, err)
		require.Len(t, chunks, 1)
		assert.Equal(t, 0, chunks[0].Start)
		assert.Equal(t, len(text), chunks[0].End)
	})

	t.Run("emits group when next paragraph would overflow", func(t *testing.T) {
		text := strings.Repeat("a", 600) + "\n\n" + strings.Repeat("b", 600)
		chunks, err := CreateChunks(text, Options{ChunkSize: 1000, Overlap: 0, Method: MethodParagraph})
		require.NoError(t, err)
		require.Len(t, chunks, 2)
		assert.Equal(t, 0, chunks[0].Start)
		assert.Equal(t, 600, chunks[0].End)
		assert.Equal(t, 602, chunks[1].Start)
		assert.Equal(t, 1202, chunks[1].End)
	})

	t.Run("oversized paragraph splits with fixed size rule", func(t *testing.T) {
		text := strings.Repeat("a", 400) + "\n\n" +
			strings.Repeat("b", 1200) + "\n\n" +
			strings.Repeat("c", 300)
		chunks, err := CreateChunks(text, Options{ChunkSize: 1000, Overlap: 100, Method: MethodParagraph})
		require.NoError(t, err)
		require.Len(t, chunks, 2)

		assert.Equal(t, 0, chunks[0].Start)
		assert.Equal(t, 1002, chunks[0].End)
		assert.Equal(t, 902, chunks[1].Start)
		assert.Equal(t, 1904, chunks[1].End)
		assert.Equal(t, 100, chunks[1].Overlap)
	})

	t.Run("blank paragraphs are skipped", func(t *testing.T) {
		text := "first\n\n\n\nsecond"
		chunks, err := CreateChunks(text, Options{ChunkSize: 1000, Overlap: 0, Method: MethodParagraph})
		require.NoError(t, err)
		require.Len(t, chunks, 1)
	})
}

func TestCreateChunksDeterminism(t *testing.T) {
	text := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 200)

	for _, method := range []string{MethodFixedSize, MethodSentence, MethodParagraph} {
		t.Run(method, func(t *testing.T) {
			opts := Options{ChunkSize: 500, Overlap: 100, Method: method}

			first, err := CreateChunks(text, opts)
			require.NoError(t, err)
			second, err := CreateChunks(text, opts)
			require.NoError(t, err)

			require.Equal(t, first, second)

			prevStart := -1
			for _, c := range first {
				assert.Less(t, c.Start, c.End)
				assert.GreaterOrEqual(t, c.Start, prevStart)
				prevStart = c.Start
			}
		})
	}
}

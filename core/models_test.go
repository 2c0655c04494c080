package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIDFromContent(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		id1 := IDFromContent("compliance policy text")
		id2 := IDFromContent("compliance policy text")
		assert.Equal(t, id1, id2)
	})

	t.Run("different content different id", func(t *testing.T) {
		id1 := IDFromContent("first")
		id2 := IDFromContent("second")
		assert.NotEqual(t, id1, id2)
	})

	t.Run("empty content", func(t *testing.T) {
		id := IDFromContent("")
		assert.NotZero(t, id)
	})
}

func TestChunkIDFor(t *testing.T) {
	t.Run("deterministic per span", func(t *testing.T) {
		a := ChunkIDFor("doc-1", 0, 0, 100)
		b := ChunkIDFor("doc-1", 0, 0, 100)
		assert.Equal(t, a, b)
	})

	t.Run("distinct across ordinals", func(t *testing.T) {
		a := ChunkIDFor("doc-1", 0, 0, 100)
		b := ChunkIDFor("doc-1", 1, 0, 100)
		assert.NotEqual(t, a, b)
	})

	t.Run("distinct across documents", func(t *testing.T) {
		a := ChunkIDFor("doc-1", 0, 0, 100)
		b := ChunkIDFor("doc-2", 0, 0, 100)
		assert.NotEqual(t, a, b)
	})
}

func TestChunkStatusString(t *testing.T) {
	tests := []struct {
		status ChunkStatus
		want   string
	}{
		{ChunkStatusPending, "pending"},
		{ChunkStatusEmbedded, "embedded"},
		{ChunkStatusFailed, "failed"},
		{ChunkStatus(0), "unknown"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.status.String())
	}
}

func TestMessageRoleString(t *testing.T) {
	assert.Equal(t, "user", MessageRoleUser.String())
	assert.Equal(t, "assistant", MessageRoleAssistant.String())
	assert.Equal(t, "unknown", MessageRole(9).String())
}

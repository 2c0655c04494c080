package badger

import (
	"context"
	"testing"
	"time"

	"github.com/poiesic/askit/core"
	"github.com/poiesic/askit/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeTestConversation(tenantID string) *core.Conversation {
	return &core.Conversation{
		TenantID:    tenantID,
		UserID:      "user-1",
		Title:       "Test conversation",
		Model:       "gpt-4o-mini",
		Temperature: 0.2,
		TopK:        5,
		Threshold:   0.7,
		Status:      core.ConversationStatusActive,
	}
}

func TestConversationRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("add generates id and timestamps", func(t *testing.T) {
		_, repo := newTestRepos(t)

		conversation, err := repo.AddConversation(ctx, makeTestConversation("tenant-a"))
		require.NoError(t, err)
		assert.NotZero(t, conversation.Id)
		assert.False(t, conversation.InsertedAt.IsZero())

		got, err := repo.GetConversation(ctx, conversation.Id)
		require.NoError(t, err)
		assert.Equal(t, "tenant-a", got.TenantID)
		assert.Equal(t, "Test conversation", got.Title)
	})

	t.Run("get missing conversation returns not found", func(t *testing.T) {
		_, repo := newTestRepos(t)

		_, err := repo.GetConversation(ctx, core.ID(999))
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("update persists changes", func(t *testing.T) {
		_, repo := newTestRepos(t)

		conversation, err := repo.AddConversation(ctx, makeTestConversation("tenant-a"))
		require.NoError(t, err)

		conversation.Title = "Renamed"
		conversation.Status = core.ConversationStatusArchived
		_, err = repo.UpdateConversation(ctx, conversation)
		require.NoError(t, err)

		got, err := repo.GetConversation(ctx, conversation.Id)
		require.NoError(t, err)
		assert.Equal(t, "Renamed", got.Title)
		assert.Equal(t, core.ConversationStatusArchived, got.Status)
	})

	t.Run("lists tenant conversations most recent first", func(t *testing.T) {
		_, repo := newTestRepos(t)

		first, err := repo.AddConversation(ctx, makeTestConversation("tenant-a"))
		require.NoError(t, err)
		second, err := repo.AddConversation(ctx, makeTestConversation("tenant-a"))
		require.NoError(t, err)
		_, err = repo.AddConversation(ctx, makeTestConversation("tenant-b"))
		require.NoError(t, err)

		time.Sleep(2 * time.Millisecond)
		_, err = repo.AppendMessage(ctx, &core.Message{
			ConversationID: first.Id,
			Role:           core.MessageRoleUser,
			Content:        "hello",
		})
		require.NoError(t, err)

		conversations, err := repo.ListConversations(ctx, "tenant-a", 0)
		require.NoError(t, err)
		require.Len(t, conversations, 2)
		assert.Equal(t, first.Id, conversations[0].Id)
		assert.Equal(t, second.Id, conversations[1].Id)

		limited, err := repo.ListConversations(ctx, "tenant-a", 1)
		require.NoError(t, err)
		require.Len(t, limited, 1)
		assert.Equal(t, first.Id, limited[0].Id)
	})
}

func TestAppendMessage(t *testing.T) {
	ctx := context.Background()

	t.Run("missing conversation returns not found", func(t *testing.T) {
		_, repo := newTestRepos(t)

		_, err := repo.AppendMessage(ctx, &core.Message{
			ConversationID: core.ID(404),
			Role:           core.MessageRoleUser,
			Content:        "hello",
		})
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("messages come back in creation order", func(t *testing.T) {
		_, repo := newTestRepos(t)

		conversation, err := repo.AddConversation(ctx, makeTestConversation("tenant-a"))
		require.NoError(t, err)

		contents := []string{"first", "second", "third"}
		for _, content := range contents {
			_, err := repo.AppendMessage(ctx, &core.Message{
				ConversationID: conversation.Id,
				Role:           core.MessageRoleUser,
				Content:        content,
			})
			require.NoError(t, err)
		}

		messages, err := repo.GetMessages(ctx, conversation.Id, 0)
		require.NoError(t, err)
		require.Len(t, messages, 3)
		for i, message := range messages {
			assert.Equal(t, contents[i], message.Content)
		}

		last, err := repo.GetMessages(ctx, conversation.Id, 2)
		require.NoError(t, err)
		require.Len(t, last, 2)
		assert.Equal(t, "second", last[0].Content)
		assert.Equal(t, "third", last[1].Content)
	})

	t.Run("assistant messages update aggregates", func(t *testing.T) {
		_, repo := newTestRepos(t)

		conversation, err := repo.AddConversation(ctx, makeTestConversation("tenant-a"))
		require.NoError(t, err)

		_, err = repo.AppendMessage(ctx, &core.Message{
			ConversationID: conversation.Id,
			Role:           core.MessageRoleUser,
			Content:        "what does the report say?",
		})
		require.NoError(t, err)

		_, err = repo.AppendMessage(ctx, &core.Message{
			ConversationID:   conversation.Id,
			Role:             core.MessageRoleAssistant,
			Content:          "revenue grew 12%",
			PromptTokens:     500,
			CompletionTokens: 50,
			TotalTokens:      550,
			Cost:             0.00011,
		})
		require.NoError(t, err)

		got, err := repo.GetConversation(ctx, conversation.Id)
		require.NoError(t, err)
		assert.Equal(t, 2, got.MessageCount)
		assert.Equal(t, 550, got.TotalTokens)
		assert.InDelta(t, 0.00011, got.TotalCost, 1e-9)
	})

	t.Run("rating survives message update", func(t *testing.T) {
		_, repo := newTestRepos(t)

		conversation, err := repo.AddConversation(ctx, makeTestConversation("tenant-a"))
		require.NoError(t, err)

		message, err := repo.AppendMessage(ctx, &core.Message{
			ConversationID: conversation.Id,
			Role:           core.MessageRoleAssistant,
			Content:        "answer",
		})
		require.NoError(t, err)

		message.Rating = 4
		message.Feedback = "mostly right"
		_, err = repo.UpdateMessage(ctx, message)
		require.NoError(t, err)

		got, err := repo.GetMessage(ctx, conversation.Id, message.Id)
		require.NoError(t, err)
		assert.Equal(t, 4, got.Rating)
		assert.Equal(t, "mostly right", got.Feedback)
	})

	t.Run("delete conversation cascades to messages", func(t *testing.T) {
		_, repo := newTestRepos(t)

		conversation, err := repo.AddConversation(ctx, makeTestConversation("tenant-a"))
		require.NoError(t, err)

		message, err := repo.AppendMessage(ctx, &core.Message{
			ConversationID: conversation.Id,
			Role:           core.MessageRoleUser,
			Content:        "hello",
		})
		require.NoError(t, err)

		require.NoError(t, repo.DeleteConversation(ctx, conversation.Id))

		_, err = repo.GetConversation(ctx, conversation.Id)
		assert.ErrorIs(t, err, storage.ErrNotFound)

		_, err = repo.GetMessage(ctx, conversation.Id, message.Id)
		assert.ErrorIs(t, err, storage.ErrNotFound)

		messages, err := repo.GetMessages(ctx, conversation.Id, 0)
		require.NoError(t, err)
		assert.Empty(t, messages)
	})

	t.Run("delete missing conversation returns not found", func(t *testing.T) {
		_, repo := newTestRepos(t)

		err := repo.DeleteConversation(ctx, core.ID(777))
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

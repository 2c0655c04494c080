package chat

import (
	"fmt"
	"strings"

	"github.com/poiesic/askit/ai"
	"github.com/poiesic/askit/core"
)

const systemPrompt = "You are a helpful assistant. Answer the user's question using only the " +
	"provided sources. If the sources do not contain the answer, say so. " +
	"Cite sources by their document id when possible."

// maxTitleLength bounds titles derived from the first user message.
const maxTitleLength = 50

// buildSourceBlock formats retrieved chunks in similarity order, each under
// a source label the model can cite.
func buildSourceBlock(retrieved []*core.ScoredChunk) string {
	var b strings.Builder
	for i, scored := range retrieved {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "[Source: document %s, chunk %d]\n%s",
			scored.Chunk.DocumentID, scored.Chunk.Ordinal, scored.Chunk.Content)
	}
	return b.String()
}

// buildMessages assembles the completion request: system prompt with the
// source block, recent history in order, then the current user message.
func buildMessages(retrieved []*core.ScoredChunk, history []*core.Message, userText string) []ai.ChatMessage {
	messages := make([]ai.ChatMessage, 0, len(history)+2)

	system := systemPrompt
	if block := buildSourceBlock(retrieved); block != "" {
		system += "\n\nSources:\n\n" + block
	}
	messages = append(messages, ai.ChatMessage{Role: ai.RoleSystem, Content: system})

	for _, message := range history {
		role := ai.RoleUser
		if message.Role == core.MessageRoleAssistant {
			role = ai.RoleAssistant
		}
		messages = append(messages, ai.ChatMessage{Role: role, Content: message.Content})
	}

	messages = append(messages, ai.ChatMessage{Role: ai.RoleUser, Content: userText})
	return messages
}

// deriveTitle produces a conversation title from its first user message.
func deriveTitle(text string) string {
	title := strings.TrimSpace(text)
	if len(title) <= maxTitleLength {
		return title
	}
	return title[:maxTitleLength] + "..."
}

// retrievedRefs converts scored chunks into the provenance records stored
// on an assistant message.
func retrievedRefs(retrieved []*core.ScoredChunk) []core.RetrievedChunk {
	if len(retrieved) == 0 {
		return nil
	}
	refs := make([]core.RetrievedChunk, len(retrieved))
	for i, scored := range retrieved {
		refs[i] = core.RetrievedChunk{
			ChunkID:    scored.Chunk.Id,
			DocumentID: scored.Chunk.DocumentID,
			Ordinal:    scored.Chunk.Ordinal,
			Score:      scored.Score,
		}
	}
	return refs
}

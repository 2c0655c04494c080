package chat

import (
	"errors"
	"fmt"

	"github.com/poiesic/askit/core"
)

var (
	// ErrConversationRepositoryRequired is returned when a conversation repository is not provided.
	ErrConversationRepositoryRequired = errors.New("conversation repository required")

	// ErrSearcherRequired is returned when a searcher is not provided.
	ErrSearcherRequired = errors.New("searcher required")

	// ErrChatModelRequired is returned when a chat model is not provided.
	ErrChatModelRequired = errors.New("chat model required")

	// ErrNotAssistantMessage is returned when rating a message that is not
	// an assistant answer.
	ErrNotAssistantMessage = errors.New("only assistant messages can be rated")
)

// GenerationError reports a language-model failure that happened after
// retrieval succeeded. The retrieved chunks are carried along so callers
// can still observe what was found even though no assistant message was
// persisted for the turn.
type GenerationError struct {
	Retrieved []*core.ScoredChunk
	Err       error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("answer generation failed: %v", e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

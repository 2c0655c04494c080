// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import "fmt"

// ValidateChunk validates a Chunk according to domain rules.
//
// Validation rules:
//   - DocumentID must not be empty
//   - StartChar must precede EndChar
//   - Status must be a known ChunkStatus
//   - Status embedded requires a vector; any other status forbids one
//
// NOT validated:
//   - ID (0 is valid before a content ID is assigned)
//   - Tokens/Cost (populated during embedding)
func ValidateChunk(chunk *Chunk) error {
	if chunk == nil {
		return fmt.Errorf("%w: chunk is nil", ErrInvalidChunk)
	}

	if chunk.DocumentID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyDocumentID)
	}

	if chunk.StartChar >= chunk.EndChar {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrInvalidSpan)
	}

	if err := ValidateChunkStatus(chunk.Status); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, err)
	}

	embedded := chunk.Status == ChunkStatusEmbedded
	hasVector := len(chunk.Vector) > 0
	if embedded != hasVector {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmbeddingStatusMismatch)
	}

	return nil
}

// ValidateChunkStatus validates that a ChunkStatus has a valid value.
func ValidateChunkStatus(status ChunkStatus) error {
	switch status {
	case ChunkStatusPending, ChunkStatusEmbedded, ChunkStatusFailed:
		return nil
	default:
		return fmt.Errorf("%w: value %d", ErrInvalidChunkStatus, status)
	}
}

// ValidateMessage validates a Message according to domain rules.
//
// Validation rules:
//   - Content must not be empty
//   - Role must be valid (user or assistant)
//   - Rating, when set, must be in 1-5
//
// Provenance and usage fields are not validated; they are empty on user
// messages and populated by the orchestrator on assistant messages.
func ValidateMessage(message *Message) error {
	if message == nil {
		return fmt.Errorf("%w: message is nil", ErrInvalidMessage)
	}

	if message.Content == "" {
		return fmt.Errorf("%w: %w", ErrInvalidMessage, ErrEmptyContent)
	}

	if err := ValidateMessageRole(message.Role); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidMessage, err)
	}

	if message.Rating != 0 && (message.Rating < 1 || message.Rating > 5) {
		return fmt.Errorf("%w: %w", ErrInvalidMessage, ErrInvalidRating)
	}

	return nil
}

// ValidateMessageRole validates that a MessageRole has a valid value.
func ValidateMessageRole(role MessageRole) error {
	if role != MessageRoleUser && role != MessageRoleAssistant {
		return fmt.Errorf("%w: value %d", ErrInvalidMessageRole, role)
	}
	return nil
}

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

import "errors"

// Domain validation errors
var (
	// ErrInvalidChunk indicates a Chunk failed validation.
	ErrInvalidChunk = errors.New("invalid chunk")

	// ErrInvalidConversation indicates a Conversation failed validation.
	ErrInvalidConversation = errors.New("invalid conversation")

	// ErrInvalidMessage indicates a Message failed validation.
	ErrInvalidMessage = errors.New("invalid message")

	// ErrInvalidSpan indicates a chunk span with start_char >= end_char.
	ErrInvalidSpan = errors.New("chunk span start must precede end")

	// ErrEmptyDocumentID indicates a chunk without an owning document.
	ErrEmptyDocumentID = errors.New("document id cannot be empty")

	// ErrEmptyContent indicates the Content field is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrInvalidChunkStatus indicates an invalid ChunkStatus value.
	ErrInvalidChunkStatus = errors.New("invalid chunk status")

	// ErrEmbeddingStatusMismatch indicates a chunk whose vector presence
	// disagrees with its status: an embedded chunk must carry a vector and a
	// non-embedded chunk must not.
	ErrEmbeddingStatusMismatch = errors.New("embedding does not match chunk status")

	// ErrInvalidMessageRole indicates an invalid MessageRole value.
	ErrInvalidMessageRole = errors.New("invalid message role")

	// ErrInvalidRating indicates a rating outside the 1-5 range.
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
)

package search

import "errors"

var (
	// ErrChunkRepositoryRequired is returned when a chunk repository is not provided.
	ErrChunkRepositoryRequired = errors.New("chunk repository required")

	// ErrEmbeddingClientRequired is returned when an embedding client is not provided.
	ErrEmbeddingClientRequired = errors.New("embedding client required")

	// ErrInvalidTopK is returned for a non-positive topK.
	ErrInvalidTopK = errors.New("topK must be positive")

	// ErrEmptyQuery is returned for an empty query string.
	ErrEmptyQuery = errors.New("query must not be empty")
)

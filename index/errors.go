package index

import "errors"

var (
	// ErrChunkRepositoryRequired is returned when a chunk repository is not provided.
	ErrChunkRepositoryRequired = errors.New("chunk repository required")

	// ErrEmbeddingClientRequired is returned when an embedding client is not provided.
	ErrEmbeddingClientRequired = errors.New("embedding client required")

	// ErrAlreadyIndexed is returned when a document already has chunks and
	// reindex was not requested.
	ErrAlreadyIndexed = errors.New("document already indexed")

	// ErrDocumentIDRequired is returned when a request has no document ID.
	ErrDocumentIDRequired = errors.New("document id required")
)

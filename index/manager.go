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


package index

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/askit/chunker"
	"github.com/poiesic/askit/core"
	"github.com/poiesic/askit/embedding"
	"github.com/poiesic/askit/storage"
)

// embedFailureMessage is recorded on chunks whose embedding page failed.
const embedFailureMessage = "embedding generation failed"

// Manager persists chunks and embeddings for documents and tracks
// per-chunk status.
type Manager struct {
	chunks     storage.ChunkRepository
	embeddings *embedding.Client
	logger     *slog.Logger
}

// Option configures a Manager.
type Option func(*Manager) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) error {
		if logger == nil {
			logger = slog.Default()
		}
		m.logger = logger
		return nil
	}
}

// NewManager creates an index manager.
func NewManager(chunks storage.ChunkRepository, embeddings *embedding.Client, opts ...Option) (*Manager, error) {
	if chunks == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if embeddings == nil {
		return nil, ErrEmbeddingClientRequired
	}

	m := &Manager{
		chunks:     chunks,
		embeddings: embeddings,
		logger:     slog.Default().With("component", "index-manager"),
	}

	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// Request describes one document to index.
type Request struct {
	DocumentID string
	TenantID   string
	CategoryID string
	Text       string

	// Chunking controls how the text is split. A zero value uses the
	// default chunking configuration.
	Chunking chunker.Options

	// Reindex allows replacing an existing chunk set. Without it,
	// indexing an already-indexed document fails with ErrAlreadyIndexed.
	Reindex bool
}

// Report summarizes the outcome of one indexing run.
type Report struct {
	TotalChunks int
	Embedded    int
	Failed      int
	TotalTokens int
	TotalCost   float64
}

// Status describes the index state of one document.
type Status struct {
	Indexed     bool
	TotalChunks int
	Embedded    int
	Pending     int
	Failed      int
}

// IndexDocument chunks the text, stores the chunks as pending, embeds them
// in batches and flips each chunk to embedded or failed. Items whose
// embedding page failed are recorded as failed with an error message; this
// partial failure shows up in the report counts rather than as an error.
func (m *Manager) IndexDocument(ctx context.Context, req Request) (*Report, error) {
	if req.DocumentID == "" {
		return nil, ErrDocumentIDRequired
	}

	counts, err := m.chunks.CountDocumentChunks(ctx, req.DocumentID)
	if err != nil {
		return nil, err
	}
	if counts.Total > 0 {
		if !req.Reindex {
			return nil, fmt.Errorf("%w: %s", ErrAlreadyIndexed, req.DocumentID)
		}
		// Staged delete-then-insert: readers may briefly see an empty
		// index, never both generations.
		removed, err := m.chunks.DeleteDocumentChunks(ctx, req.DocumentID)
		if err != nil {
			return nil, err
		}
		m.logger.Info("removed previous chunk generation",
			"document", req.DocumentID, "chunks", removed)
	}

	opts := req.Chunking
	if opts.ChunkSize == 0 && opts.Overlap == 0 && opts.Method == "" {
		opts = chunker.DefaultOptions()
	}
	if opts.Method == "" {
		opts.Method = chunker.MethodFixedSize
	}

	pieces, err := chunker.CreateChunks(req.Text, opts)
	if err != nil {
		return nil, err
	}
	if len(pieces) == 0 {
		return &Report{}, nil
	}

	chunks := make([]*core.Chunk, len(pieces))
	texts := make([]string, len(pieces))
	for i, piece := range pieces {
		chunks[i] = &core.Chunk{
			Id:         core.ChunkIDFor(req.DocumentID, piece.Ordinal, piece.Start, piece.End),
			DocumentID: req.DocumentID,
			TenantID:   req.TenantID,
			CategoryID: req.CategoryID,
			Ordinal:    piece.Ordinal,
			StartChar:  piece.Start,
			EndChar:    piece.End,
			Size:       piece.End - piece.Start,
			Overlap:    piece.Overlap,
			Method:     opts.Method,
			Content:    piece.Content,
			Status:     core.ChunkStatusPending,
		}
		texts[i] = piece.Content
	}

	if _, err := m.chunks.AddChunks(ctx, chunks...); err != nil {
		return nil, err
	}

	results := m.embeddings.GenerateBatch(ctx, texts)

	report := &Report{TotalChunks: len(chunks)}
	for i, result := range results {
		if result == nil {
			chunks[i].Status = core.ChunkStatusFailed
			chunks[i].Error = embedFailureMessage
			report.Failed++
			continue
		}
		chunks[i].Status = core.ChunkStatusEmbedded
		chunks[i].Vector = result.Vector
		chunks[i].EmbeddingModel = m.embeddings.Model()
		chunks[i].Tokens = result.Tokens
		chunks[i].Cost = result.Cost
		report.Embedded++
		report.TotalTokens += result.Tokens
		report.TotalCost += result.Cost
	}

	if _, err := m.chunks.UpdateChunks(ctx, chunks...); err != nil {
		return nil, err
	}

	m.logger.Info("indexed document",
		"document", req.DocumentID,
		"chunks", report.TotalChunks,
		"embedded", report.Embedded,
		"failed", report.Failed,
		"tokens", report.TotalTokens)

	return report, nil
}

// RemoveDocumentIndex deletes a document's chunks and embeddings.
// Returns the number of chunks removed.
func (m *Manager) RemoveDocumentIndex(ctx context.Context, documentID string) (int, error) {
	if documentID == "" {
		return 0, ErrDocumentIDRequired
	}
	return m.chunks.DeleteDocumentChunks(ctx, documentID)
}

// GetIndexStatus reports whether a document is indexed and its per-status
// chunk counts. A document with no chunks is simply not indexed.
func (m *Manager) GetIndexStatus(ctx context.Context, documentID string) (*Status, error) {
	if documentID == "" {
		return nil, ErrDocumentIDRequired
	}

	counts, err := m.chunks.CountDocumentChunks(ctx, documentID)
	if err != nil {
		return nil, err
	}

	return &Status{
		Indexed:     counts.Total > 0,
		TotalChunks: counts.Total,
		Embedded:    counts.Embedded,
		Pending:     counts.Pending,
		Failed:      counts.Failed,
	}, nil
}

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


package search

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/poiesic/askit/core"
	"github.com/poiesic/askit/embedding"
	"github.com/poiesic/askit/storage"
)

// Options scopes and bounds one search.
type Options struct {
	// TopK is the maximum number of chunks to return. Must be positive.
	TopK int

	// Threshold is the minimum score a chunk must reach to be returned.
	Threshold float32

	// TenantID scopes the search to one tenant. When set, no chunk from
	// another tenant is ever returned.
	TenantID string

	// CategoryID optionally restricts results to one category.
	CategoryID string

	// DocumentIDs optionally restricts results to an allow-list of
	// documents. Empty means no restriction.
	DocumentIDs []string
}

// Validate checks the options for usable values.
func (o Options) Validate() error {
	if o.TopK <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidTopK, o.TopK)
	}
	return nil
}

// HybridOptions extends Options with score blending weights. The weights
// are normalized to sum to 1 before use; when both are zero the search is
// vector-only.
type HybridOptions struct {
	Options

	VectorWeight  float32
	KeywordWeight float32
}

// Searcher performs vector and hybrid similarity search over embedded
// chunks.
type Searcher struct {
	chunks     storage.ChunkRepository
	embeddings *embedding.Client
	logger     *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(chunks storage.ChunkRepository, embeddings *embedding.Client, opts ...Option) (*Searcher, error) {
	if chunks == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if embeddings == nil {
		return nil, ErrEmbeddingClientRequired
	}

	s := &Searcher{
		chunks:     chunks,
		embeddings: embeddings,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Search embeds the query and returns up to TopK embedded chunks with
// similarity >= Threshold inside the options' scope, ordered by descending
// similarity with ties broken by ascending chunk ordinal. A failed query
// embedding fails the whole search.
func (s *Searcher) Search(ctx context.Context, query string, opts Options) ([]*core.ScoredChunk, error) {
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	result, err := s.embeddings.Generate(ctx, query)
	if err != nil {
		s.logger.Error("error generating embedding for query", "err", err)
		return nil, err
	}

	return s.chunks.FindSimilar(ctx, result.Vector, opts.Threshold, opts.TopK, storage.ChunkFilter{
		TenantID:    opts.TenantID,
		CategoryID:  opts.CategoryID,
		DocumentIDs: opts.DocumentIDs,
	})
}

// HybridSearch blends vector similarity with lexical keyword coverage.
// Each candidate's score becomes vectorWeight*similarity +
// keywordWeight*coverage, and the options' Threshold applies to the
// blended score. With a zero keyword weight this reduces to Search.
func (s *Searcher) HybridSearch(ctx context.Context, query string, opts HybridOptions) ([]*core.ScoredChunk, error) {
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	vectorWeight, keywordWeight := normalizeWeights(opts.VectorWeight, opts.KeywordWeight)

	result, err := s.embeddings.Generate(ctx, query)
	if err != nil {
		s.logger.Error("error generating embedding for query", "err", err)
		return nil, err
	}

	// Gather the full candidate pool; the threshold applies to the
	// blended score, not the raw similarity.
	candidates, err := s.chunks.FindSimilar(ctx, result.Vector, -1, 0, storage.ChunkFilter{
		TenantID:    opts.TenantID,
		CategoryID:  opts.CategoryID,
		DocumentIDs: opts.DocumentIDs,
	})
	if err != nil {
		return nil, err
	}

	queryWords := tokenizeAndFilter(query)

	results := make([]*core.ScoredChunk, 0, len(candidates))
	for _, candidate := range candidates {
		score := vectorWeight * candidate.Score
		if keywordWeight > 0 {
			score += keywordWeight * keywordScore(candidate.Chunk.Content, queryWords)
		}
		if score < opts.Threshold {
			continue
		}
		results = append(results, &core.ScoredChunk{
			Chunk: candidate.Chunk,
			Score: score,
		})
	}

	slices.SortFunc(results, func(a, b *core.ScoredChunk) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		if a.Chunk.Ordinal != b.Chunk.Ordinal {
			return a.Chunk.Ordinal - b.Chunk.Ordinal
		}
		return strings.Compare(a.Chunk.DocumentID, b.Chunk.DocumentID)
	})

	if len(results) > opts.TopK {
		results = results[:opts.TopK]
	}

	return results, nil
}

// normalizeWeights scales the weights to sum to 1. Both zero (or negative)
// degrades to vector-only search.
func normalizeWeights(vector, keyword float32) (float32, float32) {
	if vector < 0 {
		vector = 0
	}
	if keyword < 0 {
		keyword = 0
	}
	total := vector + keyword
	if total == 0 {
		return 1, 0
	}
	return vector / total, keyword / total
}

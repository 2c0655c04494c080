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


package askit

import (
	"log/slog"

	"github.com/poiesic/askit/ai"
	"github.com/poiesic/askit/ai/openai"
	"github.com/poiesic/askit/chat"
	"github.com/poiesic/askit/embedding"
	"github.com/poiesic/askit/index"
	"github.com/poiesic/askit/search"
	"github.com/poiesic/askit/storage"
	"github.com/poiesic/askit/storage/badger"
)

// Engine wires storage, embedding, indexing, search and chat into one
// handle. It owns the lifecycle of everything it creates; Close releases
// all of it.
type Engine struct {
	backend          *badger.Backend
	chunkRepo        storage.ChunkRepository
	conversationRepo storage.ConversationRepository
	provider         ai.Provider
	embeddings       *embedding.Client
	indexer          *index.Manager
	searcher         *search.Searcher
	orchestrator     *chat.Orchestrator
	logger           *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	aiConfig *ai.Config
	provider ai.Provider
	inMemory bool
}

// WithAIConfig sets the AI service configuration used when the Engine
// creates its own provider.
func WithAIConfig(config *ai.Config) EngineOption {
	return func(o *engineOptions) {
		o.aiConfig = config
	}
}

// WithProvider injects a pre-built AI provider instead of creating an
// OpenAI-compatible one from the config. The Engine takes ownership and
// closes it.
func WithProvider(provider ai.Provider) EngineOption {
	return func(o *engineOptions) {
		o.provider = provider
	}
}

// WithInMemory opens the storage backend in memory, discarding everything
// on Close. Intended for tests and experiments.
func WithInMemory() EngineOption {
	return func(o *engineOptions) {
		o.inMemory = true
	}
}

// NewEngine opens the storage backend at filePath and wires all services.
func NewEngine(filePath string, opts ...EngineOption) (*Engine, error) {
	options := &engineOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	chunkRepo, err := badger.NewChunkRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	conversationRepo, err := badger.NewConversationRepository(backend)
	if err != nil {
		chunkRepo.Close()
		backend.Close()
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			conversationRepo.Close()
			chunkRepo.Close()
			backend.Close()
			return nil, err
		}
	}

	closeAll := func() {
		provider.Close()
		conversationRepo.Close()
		chunkRepo.Close()
		backend.Close()
	}

	embeddings, err := embedding.NewClient(
		provider.Embedder(),
		provider.TokenCounter(),
		options.aiConfig.EmbeddingModel,
		embedding.WithPricing(options.aiConfig.Pricing),
	)
	if err != nil {
		closeAll()
		return nil, err
	}

	indexer, err := index.NewManager(chunkRepo, embeddings)
	if err != nil {
		embeddings.Release()
		closeAll()
		return nil, err
	}

	searcher, err := search.NewSearcher(chunkRepo, embeddings)
	if err != nil {
		embeddings.Release()
		closeAll()
		return nil, err
	}

	orchestrator, err := chat.NewOrchestrator(conversationRepo, searcher, provider.ChatModel(),
		chat.WithPricing(options.aiConfig.Pricing))
	if err != nil {
		embeddings.Release()
		closeAll()
		return nil, err
	}

	return &Engine{
		backend:          backend,
		chunkRepo:        chunkRepo,
		conversationRepo: conversationRepo,
		provider:         provider,
		embeddings:       embeddings,
		indexer:          indexer,
		searcher:         searcher,
		orchestrator:     orchestrator,
		logger:           slog.Default(),
	}, nil
}

// Close releases the AI provider, the embedding worker pool, both
// repositories and the storage backend, in that order.
func (e *Engine) Close() error {
	if err := e.provider.Close(); err != nil {
		e.logger.Error("error closing AI provider", "err", err)
	}

	e.embeddings.Release()

	if err := e.conversationRepo.Close(); err != nil {
		e.logger.Error("error closing conversation repository", "err", err)
		return err
	}
	if err := e.chunkRepo.Close(); err != nil {
		e.logger.Error("error closing chunk repository", "err", err)
		return err
	}

	if err := e.backend.Close(); err != nil {
		e.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// ChunkRepository exposes chunk storage.
func (e *Engine) ChunkRepository() storage.ChunkRepository {
	return e.chunkRepo
}

// ConversationRepository exposes conversation storage.
func (e *Engine) ConversationRepository() storage.ConversationRepository {
	return e.conversationRepo
}

// Index returns the document index manager.
func (e *Engine) Index() *index.Manager {
	return e.indexer
}

// Searcher returns the retrieval service.
func (e *Engine) Searcher() *search.Searcher {
	return e.searcher
}

// Chat returns the conversation orchestrator.
func (e *Engine) Chat() *chat.Orchestrator {
	return e.orchestrator
}

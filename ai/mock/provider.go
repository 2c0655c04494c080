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


package mock

import (
	"github.com/poiesic/askit/ai"
)

// MockProvider implements ai.Provider with mock services for testing.
type MockProvider struct {
	embedder  *MockEmbedder
	chatModel *MockChatModel
	tokens    *MockTokenCounter
}

// NewMockProvider creates a provider with default mock services.
//
// Returns ai.Provider interface to match production usage patterns.
func NewMockProvider() ai.Provider {
	return &MockProvider{
		embedder:  NewMockEmbedder(),
		chatModel: NewMockChatModel(),
		tokens:    NewMockTokenCounter(),
	}
}

// NewMockProviderWithServices creates a provider with the given mock services.
// Useful when tests need to configure behavior before wiring.
func NewMockProviderWithServices(embedder *MockEmbedder, chatModel *MockChatModel, tokens *MockTokenCounter) ai.Provider {
	if embedder == nil {
		embedder = NewMockEmbedder()
	}
	if chatModel == nil {
		chatModel = NewMockChatModel()
	}
	if tokens == nil {
		tokens = NewMockTokenCounter()
	}
	return &MockProvider{
		embedder:  embedder,
		chatModel: chatModel,
		tokens:    tokens,
	}
}

// Embedder returns the mock embedding service.
func (p *MockProvider) Embedder() ai.Embedder {
	return p.embedder
}

// ChatModel returns the mock completion service.
func (p *MockProvider) ChatModel() ai.ChatModel {
	return p.chatModel
}

// TokenCounter returns the mock token counter.
func (p *MockProvider) TokenCounter() ai.TokenCounter {
	return p.tokens
}

// Close is a no-op for mock services.
func (p *MockProvider) Close() error {
	return nil
}

// GetMockEmbedder returns the underlying mock for test assertions.
func (p *MockProvider) GetMockEmbedder() *MockEmbedder {
	return p.embedder
}

// GetMockChatModel returns the underlying mock for test assertions.
func (p *MockProvider) GetMockChatModel() *MockChatModel {
	return p.chatModel
}

// GetMockTokenCounter returns the underlying mock for test assertions.
func (p *MockProvider) GetMockTokenCounter() *MockTokenCounter {
	return p.tokens
}

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


// Package ai provides abstractions for the AI services the query engine
// orchestrates: text embeddings, chat completions and token counting.
//
// The engine never computes embeddings or answers itself; every provider
// call goes through the narrow interfaces defined here, which is what makes
// the indexing, retrieval and conversation layers unit-testable without
// network access.
//
// # Interfaces
//
//   - Embedder: generates vector embeddings from text
//   - ChatModel: generates conversational completions with reported usage
//   - TokenCounter: counts tokens for cost accounting
//   - Provider: aggregates the three for convenient initialization
//
// # Implementation Packages
//
//   - ai/openai: production implementation using OpenAI-compatible APIs
//   - ai/mock: deterministic test doubles for unit testing without network
//
// # Pricing
//
// PriceTable maps model names to per-million-token prices and is injected
// through Config rather than held as global state, so tests can substitute
// alternate pricing without cross-test interference.
//
// # Usage Example
//
//	cfg := ai.NewConfig(ai.WithToken(os.Getenv("OPENAI_API_KEY")))
//	provider, err := openai.NewProvider(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	vector, err := provider.Embedder().EmbedText(ctx, "data retention policy")
package ai

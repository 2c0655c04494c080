// Package openai provides the production ai.Provider implementation for
// OpenAI-compatible APIs (OpenAI itself, Ollama, LocalAI, vLLM).
//
// Embeddings and completions go through langchaingo clients; token counts
// for embedding cost accounting are computed locally with tiktoken because
// the embedding path does not surface provider usage numbers.
package openai

// Package chat orchestrates retrieval-grounded conversations.
//
// Each turn persists the user message first, retrieves relevant chunks
// within the conversation's tenant scope, builds a bounded prompt from the
// retrieved sources and recent history, and persists the assistant answer
// with its retrieval provenance and token cost. When retrieval finds
// nothing above the similarity threshold, a fixed "no relevant documents"
// answer is returned at zero cost without calling the language model.
package chat

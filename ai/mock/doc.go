// Package mock provides deterministic test doubles for the ai interfaces.
//
// Embeddings are FNV-seeded so the same text always maps to the same vector,
// completions return a canned answer with usage derived from the request, and
// token counts use a length heuristic. All mocks support behavior injection
// through function fields and track call counts for assertions.
package mock

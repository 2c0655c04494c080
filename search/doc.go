// Package search provides tenant-scoped retrieval over embedded chunks.
//
// Search embeds the query and ranks chunks by vector similarity.
// HybridSearch blends that similarity with a lexical score measuring how
// many of the query's content words appear in each chunk. Tenant scoping is
// enforced at the storage layer on every path, so no search can cross a
// tenant boundary regardless of how it is invoked.
package search

// Package embedding wraps an ai.Embedder with batching, bounded parallelism
// and per-item cost accounting.
//
// GenerateBatch pages its input into provider-sized batches and runs them on
// a worker pool. A failed page never aborts the call: its items come back as
// nil results so the caller can mark exactly those chunks failed while the
// rest proceed. Output order always matches input order. Token counts are
// computed locally per item with the model's tokenizer, so reported cost is
// length-proportional rather than an even split of aggregate usage.
package embedding

// Package index turns raw document text into stored, embedded chunks.
//
// IndexDocument chunks the text, inserts the chunks as pending, requests
// batched embeddings and records per-chunk success or failure. A partially
// failed batch is a normal outcome reflected in the returned report, never
// an error. Reindexing is a staged delete-then-insert: the old chunk set is
// removed before the new one is written, so readers may briefly observe an
// empty index but never two chunk generations at once.
package index

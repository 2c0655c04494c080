// Package chunker splits document text into overlapping retrieval chunks.
//
// Chunking is pure and deterministic: the same text and options always
// produce the same boundaries, which keeps chunk counts and downstream
// embedding costs reproducible. Three methods are supported. fixed_size
// cuts greedy windows and snaps the cut to a natural boundary in the
// trailing fifth of each window. sentence accumulates whole sentences up
// to the chunk size and carries a short sentence tail forward as overlap.
// paragraph accumulates whole paragraphs and falls back to fixed-size
// splitting when a paragraph alone exceeds the chunk size.
package chunker

package chunker

import (
	"fmt"
	"strings"
)

// Chunking methods.
const (
	MethodFixedSize = "fixed_size"
	MethodSentence  = "sentence"
	MethodParagraph = "paragraph"
)

// Default chunking parameters.
const (
	DefaultChunkSize = 1000
	DefaultOverlap   = 200
)

// Options controls how text is split into chunks.
type Options struct {
	// ChunkSize is the target chunk length in characters.
	ChunkSize int

	// Overlap is the number of characters shared between consecutive
	// chunks. Values >= ChunkSize are clamped so the cursor always
	// advances.
	Overlap int

	// Method selects the splitting strategy. Empty selects fixed_size.
	Method string
}

// DefaultOptions returns the standard chunking configuration.
func DefaultOptions() Options {
	return Options{
		ChunkSize: DefaultChunkSize,
		Overlap:   DefaultOverlap,
		Method:    MethodFixedSize,
	}
}

// Validate checks the options for usable values.
func (o Options) Validate() error {
	if o.ChunkSize <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidChunkSize, o.ChunkSize)
	}
	if o.Overlap < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidOverlap, o.Overlap)
	}
	switch o.Method {
	case "", MethodFixedSize, MethodSentence, MethodParagraph:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownMethod, o.Method)
	}
}

// effectiveOverlap clamps the overlap below the chunk size so that every
// step moves the cursor forward, even when callers ask for overlap >= size.
func (o Options) effectiveOverlap() int {
	if o.Overlap >= o.ChunkSize {
		return o.ChunkSize - 1
	}
	return o.Overlap
}

// Chunk describes one produced chunk as a span into the source text.
type Chunk struct {
	// Ordinal is the 0-based position of the chunk within the document.
	Ordinal int

	// Start and End delimit the chunk's half-open span in the source text.
	Start int
	End   int

	// Overlap is the number of characters shared with the previous chunk.
	Overlap int

	// Content is the text slice covered by the span.
	Content string
}

// CreateChunks splits text into ordered chunk descriptors. Empty text
// yields an empty list. The result is deterministic for identical input
// and options.
func CreateChunks(text string, opts Options) ([]Chunk, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if text == "" {
		return nil, nil
	}
	if opts.Method == "" {
		opts.Method = MethodFixedSize
	}

	var spans []span
	switch opts.Method {
	case MethodFixedSize:
		spans = fixedSpans(text, opts.ChunkSize, opts.effectiveOverlap())
	case MethodSentence:
		spans = sentenceSpans(text, opts.ChunkSize, opts.effectiveOverlap())
	case MethodParagraph:
		spans = paragraphSpans(text, opts.ChunkSize, opts.effectiveOverlap())
	}

	chunks := make([]Chunk, 0, len(spans))
	prevEnd := 0
	for i, s := range spans {
		overlap := 0
		if i > 0 && s.start < prevEnd {
			overlap = prevEnd - s.start
		}
		chunks = append(chunks, Chunk{
			Ordinal: i,
			Start:   s.start,
			End:     s.end,
			Overlap: overlap,
			Content: text[s.start:s.end],
		})
		prevEnd = s.end
	}
	return chunks, nil
}

// span is a half-open [start, end) range into the source text.
type span struct {
	start, end int
}

// fixedSpans cuts greedy windows of size characters, snapping each cut to
// a natural boundary, then slides forward by size minus overlap.
func fixedSpans(text string, size, overlap int) []span {
	var spans []span
	start := 0
	for start < len(text) {
		end := start + size
		if end >= len(text) {
			end = len(text)
		} else {
			end = snapEnd(text, start, end)
		}
		spans = append(spans, span{start, end})
		if end >= len(text) {
			break
		}
		next := end - overlap
		if next <= start {
			next = start + 1
		}
		start = next
	}
	return spans
}

// snapEnd searches the trailing fifth of the window for a paragraph break,
// then a sentence end, then a word boundary, and cuts there instead of
// mid-word. Returns end unchanged when no boundary is found.
func snapEnd(text string, start, end int) int {
	lo := end - (end-start)/5
	if lo <= start {
		lo = start + 1
	}

	if i := strings.LastIndex(text[lo:end], "\n\n"); i >= 0 {
		return lo + i + 2
	}

	for i := end - 1; i >= lo; i-- {
		c := text[i]
		if (c == '.' || c == '!' || c == '?') && (i+1 >= len(text) || isSpace(text[i+1])) {
			return i + 1
		}
	}

	for i := end - 1; i >= lo; i-- {
		if isSpace(text[i]) {
			return i + 1
		}
	}

	return end
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

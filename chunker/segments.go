package chunker

import "strings"

// sentenceSpans accumulates whole sentences until the running span length
// would exceed size, emits the group, and retains a tail of trailing
// sentences totaling at most overlap characters as the start of the next
// group. A single sentence longer than size is emitted on its own.
func sentenceSpans(text string, size, overlap int) []span {
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	var spans []span
	var group []span
	for _, s := range sentences {
		if len(group) > 0 && group[len(group)-1].end-group[0].start+(s.end-s.start) > size {
			spans = append(spans, span{group[0].start, group[len(group)-1].end})
			group = retainTail(group, overlap)
		}
		group = append(group, s)
	}
	if len(group) > 0 {
		spans = append(spans, span{group[0].start, group[len(group)-1].end})
	}
	return spans
}

// splitSentences slices text into contiguous sentence spans. A sentence
// ends at terminal punctuation followed by whitespace or end of text; any
// trailing unterminated text forms a final sentence.
func splitSentences(text string) []span {
	var out []span
	start := 0
	for i := 0; i < len(text); i++ {
		c := text[i]
		if (c == '.' || c == '!' || c == '?') && (i+1 == len(text) || isSpace(text[i+1])) {
			out = append(out, span{start, i + 1})
			start = i + 1
		}
	}
	if start < len(text) {
		out = append(out, span{start, len(text)})
	}
	return out
}

// retainTail returns the trailing spans of group whose combined length
// stays within overlap, never retaining the entire group.
func retainTail(group []span, overlap int) []span {
	total, keep := 0, 0
	for keep < len(group)-1 {
		s := group[len(group)-1-keep]
		if total+(s.end-s.start) > overlap {
			break
		}
		total += s.end - s.start
		keep++
	}
	if keep == 0 {
		return nil
	}
	tail := make([]span, keep)
	copy(tail, group[len(group)-keep:])
	return tail
}

// paragraphSpans accumulates whole paragraphs by content length (blank-line
// separators excluded from the count). When a paragraph alone exceeds size,
// the pending group and that paragraph are joined into a virtual text and
// split with the fixed-size rule; every full window is emitted and the last
// partial window carries over as the start of the next group.
func paragraphSpans(text string, size, overlap int) []span {
	paragraphs := splitParagraphs(text)
	if len(paragraphs) == 0 {
		return nil
	}

	var spans []span
	var group []span
	groupSize := 0
	for _, p := range paragraphs {
		plen := p.end - p.start
		switch {
		case groupSize+plen <= size:
			group = append(group, p)
			groupSize += plen

		case plen > size:
			segs := append(append([]span(nil), group...), p)
			var seed []span
			spans, seed = splitOversized(text, segs, size, overlap, spans)
			group = seed
			groupSize = segmentsLength(group)

		default:
			spans = append(spans, span{group[0].start, group[len(group)-1].end})
			group = retainTail(group, overlap)
			groupSize = segmentsLength(group)
			if groupSize+plen > size {
				group = nil
				groupSize = 0
			}
			group = append(group, p)
			groupSize += plen
		}
	}
	if len(group) > 0 {
		spans = append(spans, span{group[0].start, group[len(group)-1].end})
	}
	return spans
}

// splitParagraphs slices text into non-empty paragraph spans separated by
// blank lines.
func splitParagraphs(text string) []span {
	var out []span
	start := 0
	for start < len(text) {
		sep := strings.Index(text[start:], "\n\n")
		end := len(text)
		if sep >= 0 {
			end = start + sep
		}
		if p := trimSpan(text, start, end); p.start < p.end {
			out = append(out, p)
		}
		if sep < 0 {
			break
		}
		start = start + sep + 2
	}
	return out
}

// trimSpan shrinks [start, end) past leading and trailing whitespace.
func trimSpan(text string, start, end int) span {
	for start < end && isSpace(text[start]) {
		start++
	}
	for end > start && isSpace(text[end-1]) {
		end--
	}
	return span{start, end}
}

// splitOversized joins the segment contents into one virtual string, runs
// the fixed-size rule over it, emits every window that reaches the full
// chunk size and maps its boundaries back to source offsets. The trailing
// partial window is returned as the seed segments for the next group.
func splitOversized(text string, segs []span, size, overlap int, spans []span) ([]span, []span) {
	var b strings.Builder
	for _, s := range segs {
		b.WriteString(text[s.start:s.end])
	}
	virtual := b.String()

	windows := fixedSpans(virtual, size, overlap)
	for i, w := range windows {
		if i == len(windows)-1 && w.end-w.start < size {
			return spans, sliceSegments(segs, w.start, w.end)
		}
		spans = append(spans, span{
			mapVirtualStart(segs, w.start),
			mapVirtualEnd(segs, w.end),
		})
	}
	return spans, nil
}

func segmentsLength(segs []span) int {
	total := 0
	for _, s := range segs {
		total += s.end - s.start
	}
	return total
}

// mapVirtualStart converts a virtual content offset to a source offset,
// resolving segment-boundary positions to the start of the later segment.
func mapVirtualStart(segs []span, v int) int {
	cum := 0
	for _, s := range segs {
		l := s.end - s.start
		if v < cum+l {
			return s.start + (v - cum)
		}
		cum += l
	}
	return segs[len(segs)-1].end
}

// mapVirtualEnd converts a virtual content offset to a source offset,
// resolving segment-boundary positions to the end of the earlier segment.
func mapVirtualEnd(segs []span, v int) int {
	cum := 0
	for _, s := range segs {
		l := s.end - s.start
		if v <= cum+l {
			return s.start + (v - cum)
		}
		cum += l
	}
	return segs[len(segs)-1].end
}

// sliceSegments returns the sub-segments of segs covering the virtual
// content range [vs, ve).
func sliceSegments(segs []span, vs, ve int) []span {
	var out []span
	cum := 0
	for _, s := range segs {
		l := s.end - s.start
		lo, hi := cum, cum+l
		if hi > vs && lo < ve {
			start := s.start
			if vs > lo {
				start = s.start + (vs - lo)
			}
			end := s.end
			if ve < hi {
				end = s.start + (ve - lo)
			}
			out = append(out, span{start, end})
		}
		cum = hi
	}
	return out
}

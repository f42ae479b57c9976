package javasrc

import (
	"bytes"
	"fmt"
	"slices"
)

// Edits is a queue of byte-range replacements against one source text.
// Replacements are applied together by Bytes; text outside every range is
// copied unchanged.
type Edits struct {
	src   []byte
	edits []edit
}

type edit struct {
	text  string
	start int
	end   int
}

// NewEdits returns an empty edit queue over src.
func NewEdits(src []byte) *Edits {
	return &Edits{src: src}
}

// Replace queues replacing src[start:end] with text.
func (e *Edits) Replace(start, end int, text string) {
	e.edits = append(e.edits, edit{start: start, end: end, text: text})
}

// Insert queues inserting text at pos.
func (e *Edits) Insert(pos int, text string) {
	e.Replace(pos, pos, text)
}

// Delete queues deleting src[start:end].
func (e *Edits) Delete(start, end int) {
	e.Replace(start, end, "")
}

// Len returns the number of queued edits.
func (e *Edits) Len() int {
	return len(e.edits)
}

// Bytes applies the queued edits and returns the new text. Inserts at the
// same position are kept in queue order.
func (e *Edits) Bytes() ([]byte, error) {
	if len(e.edits) == 0 {
		return e.src, nil
	}

	sorted := slices.Clone(e.edits)
	slices.SortStableFunc(sorted, func(a, b edit) int {
		if a.start != b.start {
			return a.start - b.start
		}

		return a.end - b.end
	})

	var buf bytes.Buffer

	buf.Grow(len(e.src))

	pos := 0

	for _, ed := range sorted {
		if ed.start < pos || ed.end < ed.start || ed.end > len(e.src) {
			return nil, fmt.Errorf("%w: [%d,%d) after offset %d", ErrOverlappingEdit, ed.start, ed.end, pos)
		}

		buf.Write(e.src[pos:ed.start])
		buf.WriteString(ed.text)
		pos = ed.end
	}

	buf.Write(e.src[pos:])

	return buf.Bytes(), nil
}

// DeleteLine queues deleting span together with the rest of its line when
// only whitespace follows it, so removed declarations leave no blank line.
func (e *Edits) DeleteLine(span Span) {
	end := span.End

	for end < len(e.src) && (e.src[end] == ' ' || e.src[end] == '\t' || e.src[end] == '\r') {
		end++
	}

	if end < len(e.src) && e.src[end] == '\n' {
		e.Delete(span.Start, end+1)

		return
	}

	e.Delete(span.Start, span.End)
}

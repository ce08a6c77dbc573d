// Package position tracks byte ranges into a source buffer and renders
// line/column context for diagnostics.
package position

import "strings"

// Position is a half-open byte range [Start, End) into a Buffer, plus the
// 1-based line and column of Start.
type Position struct {
	Start, End  int
	Line, Column int
}

// Len reports the width in bytes of the range.
func (p Position) Len() int {
	return p.End - p.Start
}

// Join returns the smallest Position spanning both p and other. Line/Column
// are taken from whichever side starts first.
func (p Position) Join(other Position) Position {
	if other.Start < p.Start {
		p, other = other, p
	}
	end := p.End
	if other.End > end {
		end = other.End
	}
	return Position{Start: p.Start, End: end, Line: p.Line, Column: p.Column}
}

// Buffer is an immutable source buffer shared by reference from the lexer
// through to diagnostic rendering.
type Buffer struct {
	Name string
	Text string

	lineStarts []int
}

// NewBuffer indexes the line start offsets of text once, up front, so later
// Line/LineCol calls are O(log n) instead of re-scanning the whole source.
func NewBuffer(name, text string) *Buffer {
	b := &Buffer{Name: name, Text: text, lineStarts: []int{0}}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			b.lineStarts = append(b.lineStarts, i+1)
		}
	}
	return b
}

// Slice returns the bytes in [p.Start, p.End), clamped to the buffer bounds.
func (b *Buffer) Slice(p Position) string {
	start, end := p.Start, p.End
	if start < 0 {
		start = 0
	}
	if end > len(b.Text) {
		end = len(b.Text)
	}
	if start > end {
		return ""
	}
	return b.Text[start:end]
}

// Line returns the 1-based source line n, without its trailing newline.
func (b *Buffer) Line(n int) string {
	if n < 1 || n > len(b.lineStarts) {
		return ""
	}
	start := b.lineStarts[n-1]
	var end int
	if n < len(b.lineStarts) {
		end = b.lineStarts[n] - 1 // exclude the newline
	} else {
		end = len(b.Text)
	}
	if end < start {
		end = start
	}
	line := b.Text[start:end]
	return strings.TrimSuffix(line, "\r")
}

// LineCol recovers the 1-based line and column of a byte offset.
func (b *Buffer) LineCol(offset int) (line, column int) {
	lo, hi := 0, len(b.lineStarts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if b.lineStarts[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo + 1, offset - b.lineStarts[lo] + 1
}

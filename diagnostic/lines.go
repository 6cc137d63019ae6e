// Copyright © 2024 The ELPS authors

package diagnostic

import (
	"sort"
	"unicode/utf8"
)

// Lines maps byte offsets of a source text to line and column numbers.
type Lines struct {
	src []byte
	// starts holds the byte offset of the first byte of every line.
	starts []uint32
}

// NewLines indexes the line starts of src. Lines end at "\n"; a preceding
// "\r" is part of the line text.
func NewLines(src []byte) *Lines {
	starts := []uint32{0}
	for i, c := range src {
		if c == '\n' {
			starts = append(starts, uint32(i+1))
		}
	}
	return &Lines{src: src, starts: starts}
}

// Count returns the number of lines.
func (l *Lines) Count() int { return len(l.starts) }

// line returns the 0-based line containing off.
func (l *Lines) line(off uint32) int {
	return sort.Search(len(l.starts), func(i int) bool { return l.starts[i] > off }) - 1
}

// Position returns the 1-based line and 1-based byte column of off.
// Offsets past the end of the text are clamped to it.
func (l *Lines) Position(off uint32) (line, col int) {
	if int(off) > len(l.src) {
		off = uint32(len(l.src))
	}
	i := l.line(off)
	return i + 1, int(off-l.starts[i]) + 1
}

// Text returns the text of the 1-based line without its terminator.
func (l *Lines) Text(line int) string {
	if line < 1 || line > len(l.starts) {
		return ""
	}
	start := l.starts[line-1]
	end := uint32(len(l.src))
	if line < len(l.starts) {
		end = l.starts[line] - 1
	}
	if end > start && l.src[end-1] == '\r' {
		end--
	}
	return string(l.src[start:end])
}

// UTF16 returns the 0-based line and 0-based UTF-16 code unit column of
// off, the position encoding of the language server protocol.
func (l *Lines) UTF16(off uint32) (line, char int) {
	if int(off) > len(l.src) {
		off = uint32(len(l.src))
	}
	i := l.line(off)
	for _, r := range string(l.src[l.starts[i]:off]) {
		char += utf16Len(r)
	}
	return i, char
}

// OffsetUTF16 converts a 0-based line and UTF-16 column back to a byte
// offset. Columns past the end of the line yield the line end.
func (l *Lines) OffsetUTF16(line, char int) uint32 {
	if line < 0 {
		return 0
	}
	if line >= len(l.starts) {
		return uint32(len(l.src))
	}
	off := l.starts[line]
	for char > 0 && int(off) < len(l.src) {
		r, size := utf8.DecodeRune(l.src[off:])
		if r == '\n' {
			break
		}
		char -= utf16Len(r)
		off += uint32(size)
	}
	return off
}

func utf16Len(r rune) int {
	if r >= 0x10000 {
		return 2
	}
	return 1
}

// SpanAt returns a Span covering the bytes [start, end) of the indexed
// source. Spans crossing a line end are cut at the end of their first
// line.
func (l *Lines) SpanAt(file string, start, end uint32, label string) Span {
	line, col := l.Position(start)
	s := Span{File: file, Line: line, Col: col, Label: label}
	if end > start {
		endLine, endCol := l.Position(end - 1)
		if endLine == line {
			s.EndCol = endCol
		} else {
			s.EndCol = max(len(l.Text(line)), col)
		}
	}
	return s
}

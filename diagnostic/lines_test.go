// Copyright © 2024 The ELPS authors

package diagnostic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLines_Position(t *testing.T) {
	l := NewLines([]byte("ab\ncd\r\n\nef"))
	assert.Equal(t, 4, l.Count())
	tests := []struct {
		off       uint32
		line, col int
	}{
		{0, 1, 1},
		{2, 1, 3},
		{3, 2, 1},
		{4, 2, 2},
		{7, 3, 1},
		{8, 4, 1},
		{9, 4, 2},
		{100, 4, 3},
	}
	for _, test := range tests {
		line, col := l.Position(test.off)
		assert.Equal(t, test.line, line, "line of %d", test.off)
		assert.Equal(t, test.col, col, "col of %d", test.off)
	}
}

func TestLines_Text(t *testing.T) {
	l := NewLines([]byte("ab\ncd\r\n\nef"))
	assert.Equal(t, "ab", l.Text(1))
	assert.Equal(t, "cd", l.Text(2))
	assert.Equal(t, "", l.Text(3))
	assert.Equal(t, "ef", l.Text(4))
	assert.Equal(t, "", l.Text(0))
	assert.Equal(t, "", l.Text(5))
}

func TestLines_UTF16(t *testing.T) {
	src := "let s = \"é😀\"; x\nnext"
	l := NewLines([]byte(src))
	off := uint32(len("let s = \"é😀\"; "))
	line, char := l.UTF16(off)
	assert.Equal(t, 0, line)
	assert.Equal(t, 15, char)
	assert.Equal(t, off, l.OffsetUTF16(line, char))

	assert.Equal(t, uint32(len(src)-4), l.OffsetUTF16(1, 0))
	assert.Equal(t, uint32(len(src)-5), l.OffsetUTF16(0, 99))
	assert.Equal(t, uint32(len(src)), l.OffsetUTF16(9, 0))
	assert.Equal(t, uint32(0), l.OffsetUTF16(-1, 3))
}

func TestLines_SpanAt(t *testing.T) {
	l := NewLines([]byte("foo(bar);\nbaz({\n  q\n});\n"))
	assert.Equal(t, Span{File: "f.js", Line: 1, Col: 5, EndCol: 7, Label: "here"}, l.SpanAt("f.js", 4, 7, "here"))
	assert.Equal(t, Span{File: "f.js", Line: 2, Col: 1, EndCol: 5}, l.SpanAt("f.js", 10, 23, ""))
	assert.Equal(t, Span{File: "f.js", Line: 1, Col: 1}, l.SpanAt("f.js", 0, 0, ""))
}

// Copyright © 2024 The ELPS authors

package lsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/luthersystems/jsem/ast"
	"github.com/luthersystems/jsem/diagnostic"
)

func foldingRanges(t *testing.T, s *Server, uri, src string) []protocol.FoldingRange {
	t.Helper()
	doc := openDoc(s, uri, src)
	result, err := s.textDocumentFoldingRange(mockContext(), &protocol.FoldingRangeParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: doc.URI},
	})
	require.NoError(t, err)
	return result
}

func TestFoldingRange(t *testing.T) {
	s := testServer()

	t.Run("single-line block is not folded", func(t *testing.T) {
		result := foldingRanges(t, s, "file:///test/single.js", "function foo() { return 42; }")
		assert.Empty(t, filterFoldKind(result, protocol.FoldingRangeKindRegion))
	})

	t.Run("multi-line function body is folded", func(t *testing.T) {
		result := foldingRanges(t, s, "file:///test/multi.js", "function foo(x) {\n  a();\n  return x;\n}\n")
		regions := filterFoldKind(result, protocol.FoldingRangeKindRegion)
		require.Len(t, regions, 1)
		// The closing brace stays visible.
		assert.Equal(t, protocol.UInteger(0), regions[0].StartLine)
		assert.Equal(t, protocol.UInteger(2), regions[0].EndLine)
	})

	t.Run("nested constructs produce separate ranges", func(t *testing.T) {
		src := "const o = {\n  list: [\n    1,\n    2,\n  ],\n};\n"
		regions := filterFoldKind(foldingRanges(t, s, "file:///test/nested.js", src), protocol.FoldingRangeKindRegion)
		require.Len(t, regions, 2)
		assert.Equal(t, protocol.UInteger(0), regions[0].StartLine)
		assert.Equal(t, protocol.UInteger(4), regions[0].EndLine)
		assert.Equal(t, protocol.UInteger(1), regions[1].StartLine)
		assert.Equal(t, protocol.UInteger(3), regions[1].EndLine)
	})

	t.Run("enum and interface bodies", func(t *testing.T) {
		src := "enum E {\n  A,\n  B,\n}\ninterface I {\n  a: number;\n  b: string;\n}\n"
		regions := filterFoldKind(foldingRanges(t, s, "file:///test/types.ts", src), protocol.FoldingRangeKindRegion)
		assert.Len(t, regions, 2)
	})

	t.Run("import runs", func(t *testing.T) {
		src := "import a from 'a';\nimport { b } from 'b';\nimport c from 'c';\n\nexport default [a, b, c];\n"
		imports := filterFoldKind(foldingRanges(t, s, "file:///test/imports.js", src), protocol.FoldingRangeKindImports)
		require.Len(t, imports, 1)
		assert.Equal(t, protocol.UInteger(0), imports[0].StartLine)
		assert.Equal(t, protocol.UInteger(2), imports[0].EndLine)
	})

	t.Run("consecutive comments produce a comment fold", func(t *testing.T) {
		src := "// line 1\n// line 2\n// line 3\nfoo();\n"
		comments := filterFoldKind(foldingRanges(t, s, "file:///test/comments.js", src), protocol.FoldingRangeKindComment)
		require.Len(t, comments, 1)
		assert.Equal(t, protocol.UInteger(0), comments[0].StartLine)
		assert.Equal(t, protocol.UInteger(2), comments[0].EndLine)
	})

	t.Run("single comment line is not folded", func(t *testing.T) {
		src := "// just one comment\nfoo();\n"
		comments := filterFoldKind(foldingRanges(t, s, "file:///test/onecomment.js", src), protocol.FoldingRangeKindComment)
		assert.Empty(t, comments)
	})

	t.Run("nil doc returns nil", func(t *testing.T) {
		result, err := s.textDocumentFoldingRange(mockContext(), &protocol.FoldingRangeParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: "file:///missing.js"},
		})
		require.NoError(t, err)
		assert.Nil(t, result)
	})
}

func TestCommentFoldingRanges(t *testing.T) {
	// line 0: "// a"   line 1: "// b"   line 2: ""   line 3: "/* c"   line 4: " d */"
	src := "// a\n// b\n\n/* c\n d */\n// e\n"
	lines := diagnostic.NewLines([]byte(src))
	comments := []ast.Comment{
		{Span: ast.Span{Start: 0, End: 4}, Text: "// a"},
		{Span: ast.Span{Start: 5, End: 9}, Text: "// b"},
		{Span: ast.Span{Start: 11, End: 21}, Text: "/* c\n d */", Block: true},
		{Span: ast.Span{Start: 22, End: 26}, Text: "// e"},
	}

	t.Run("line and block comments", func(t *testing.T) {
		ranges := commentFoldingRanges(lines, comments)
		require.Len(t, ranges, 2)
		assert.Equal(t, protocol.UInteger(0), ranges[0].StartLine)
		assert.Equal(t, protocol.UInteger(1), ranges[0].EndLine)
		// The block comment folds alone and the trailing line comment does not fold.
		assert.Equal(t, protocol.UInteger(3), ranges[1].StartLine)
		assert.Equal(t, protocol.UInteger(4), ranges[1].EndLine)
	})

	t.Run("no comments", func(t *testing.T) {
		assert.Empty(t, commentFoldingRanges(lines, nil))
	})

	t.Run("comments at end of file", func(t *testing.T) {
		ranges := commentFoldingRanges(lines, comments[:2])
		require.Len(t, ranges, 1)
		assert.Equal(t, protocol.UInteger(1), ranges[0].EndLine)
	})
}

// filterFoldKind returns only folding ranges with the given kind.
func filterFoldKind(ranges []protocol.FoldingRange, kind protocol.FoldingRangeKind) []protocol.FoldingRange {
	var result []protocol.FoldingRange
	for _, r := range ranges {
		if r.Kind != nil && *r.Kind == string(kind) {
			result = append(result, r)
		}
	}
	return result
}

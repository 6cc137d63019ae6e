// Copyright © 2024 The ELPS authors

package lsp

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/luthersystems/jsem/ast"
	"github.com/luthersystems/jsem/astutil"
	"github.com/luthersystems/jsem/diagnostic"
)

// textDocumentFoldingRange handles the textDocument/foldingRange request.
// It returns folding ranges for multi-line bracketed constructs, runs of
// import declarations and comment blocks.
func (s *Server) textDocumentFoldingRange(_ *glsp.Context, params *protocol.FoldingRangeParams) ([]protocol.FoldingRange, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	s.ensureAnalysis(doc)

	f, lines := doc.snapshot()
	if f == nil {
		return nil, nil
	}

	var ranges []protocol.FoldingRange
	ranges = append(ranges, importFoldingRanges(lines, f.Program)...)
	ranges = append(ranges, nodeFoldingRanges(lines, f.Program)...)
	ranges = append(ranges, commentFoldingRanges(lines, f.Program.Comments)...)
	return ranges, nil
}

// lineOf returns the 0-based line of a byte offset.
func lineOf(lines *diagnostic.Lines, off uint32) int {
	line, _ := lines.Position(off)
	return line - 1
}

func foldingRange(start, end int, kind protocol.FoldingRangeKind) protocol.FoldingRange {
	k := string(kind)
	return protocol.FoldingRange{
		StartLine: safeUint(start),
		EndLine:   safeUint(end),
		Kind:      &k,
	}
}

// nodeFoldingRanges emits a range for each bracketed construct spanning
// more than one line. The line holding the closing bracket stays visible.
func nodeFoldingRanges(lines *diagnostic.Lines, prog *ast.Program) []protocol.FoldingRange {
	var ranges []protocol.FoldingRange
	astutil.Inspect(prog, func(n ast.Node) bool {
		switch n.(type) {
		case *ast.BlockStatement, *ast.Class, *ast.ObjectExpression, *ast.ArrayExpression,
			*ast.SwitchStatement, *ast.EnumDeclaration, *ast.InterfaceDeclaration,
			*ast.ModuleDeclaration, *ast.ObjectPattern, *ast.ArrayPattern, *ast.StaticBlock:
		default:
			return true
		}
		span := n.Loc()
		if span.Len() == 0 {
			return true
		}
		start := lineOf(lines, span.Start)
		end := lineOf(lines, span.End-1) - 1
		if end > start {
			ranges = append(ranges, foldingRange(start, end, protocol.FoldingRangeKindRegion))
		}
		return true
	})
	return ranges
}

// importFoldingRanges folds each run of two or more consecutive import
// declarations.
func importFoldingRanges(lines *diagnostic.Lines, prog *ast.Program) []protocol.FoldingRange {
	var ranges []protocol.FoldingRange
	first, last := -1, -1
	flush := func() {
		if first >= 0 && last > first {
			ranges = append(ranges, foldingRange(first, last, protocol.FoldingRangeKindImports))
		}
		first, last = -1, -1
	}
	for _, stmt := range prog.Body {
		imp, ok := stmt.(*ast.ImportDeclaration)
		if !ok {
			flush()
			continue
		}
		if first < 0 {
			first = lineOf(lines, imp.Span.Start)
		}
		last = lineOf(lines, imp.Span.End-1)
	}
	flush()
	return ranges
}

// commentFoldingRanges folds multi-line block comments and runs of line
// comments on consecutive lines.
func commentFoldingRanges(lines *diagnostic.Lines, comments []ast.Comment) []protocol.FoldingRange {
	var ranges []protocol.FoldingRange
	first, last := -1, -1
	flush := func() {
		if first >= 0 && last > first {
			ranges = append(ranges, foldingRange(first, last, protocol.FoldingRangeKindComment))
		}
		first, last = -1, -1
	}
	for _, c := range comments {
		if c.Span.Len() == 0 {
			continue
		}
		start := lineOf(lines, c.Span.Start)
		end := lineOf(lines, c.Span.End-1)
		if c.Block {
			flush()
			if end > start {
				ranges = append(ranges, foldingRange(start, end, protocol.FoldingRangeKindComment))
			}
			continue
		}
		if first >= 0 && start == last+1 {
			last = start
			continue
		}
		flush()
		first, last = start, start
	}
	flush()
	return ranges
}

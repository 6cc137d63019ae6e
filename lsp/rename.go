// Copyright © 2024 The ELPS authors

package lsp

import (
	"fmt"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/luthersystems/jsem/semantic"
)

// renameable reports whether a target may be renamed. Unresolved names
// and ambient declarations belong to code outside the document.
func renameable(doc *Document, t target) bool {
	if t.Symbol == semantic.NoSymbol {
		return false
	}
	f, _ := doc.snapshot()
	return !f.Semantic.Symbols.Flags(t.Symbol).Has(semantic.SymbolAmbient)
}

// textDocumentPrepareRename validates that the symbol under the cursor
// is renameable and returns its range.
func (s *Server) textDocumentPrepareRename(_ *glsp.Context, params *protocol.PrepareRenameParams) (any, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil // no document, so nothing to rename
	}
	s.ensureAnalysis(doc)

	t, ok := symbolAtPosition(doc, params.Position)
	// prepareRename answers null, not an error, for non-renameable symbols.
	if !ok || !renameable(doc, t) {
		return nil, nil
	}
	_, lines := doc.snapshot()
	return &protocol.RangeWithPlaceholder{
		Range:       toRange(lines, t.Span),
		Placeholder: t.Name,
	}, nil
}

// textDocumentRename handles the textDocument/rename request.
func (s *Server) textDocumentRename(_ *glsp.Context, params *protocol.RenameParams) (*protocol.WorkspaceEdit, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, fmt.Errorf("document not found")
	}
	s.ensureAnalysis(doc)

	t, ok := symbolAtPosition(doc, params.Position)
	if !ok {
		return nil, fmt.Errorf("no symbol at position")
	}
	if t.Symbol == semantic.NoSymbol {
		return nil, fmt.Errorf("cannot rename undeclared name: %s", t.Name)
	}
	if !renameable(doc, t) {
		return nil, fmt.Errorf("cannot rename ambient declaration: %s", t.Name)
	}
	if !isIdentifier(params.NewName) {
		return nil, fmt.Errorf("invalid identifier: %q", params.NewName)
	}

	_, lines := doc.snapshot()
	var edits []protocol.TextEdit
	for _, span := range symbolSpans(doc, t.Symbol, true) {
		edits = append(edits, protocol.TextEdit{
			Range:   toRange(lines, span),
			NewText: params.NewName,
		})
	}
	return &protocol.WorkspaceEdit{
		Changes: map[protocol.DocumentUri][]protocol.TextEdit{params.TextDocument.URI: edits},
	}, nil
}

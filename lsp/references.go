// Copyright © 2024 The ELPS authors

package lsp

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/luthersystems/jsem/ast"
	"github.com/luthersystems/jsem/semantic"
)

// textDocumentReferences handles the textDocument/references request.
func (s *Server) textDocumentReferences(_ *glsp.Context, params *protocol.ReferenceParams) ([]protocol.Location, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	s.ensureAnalysis(doc)

	t, ok := symbolAtPosition(doc, params.Position)
	if !ok {
		return nil, nil
	}
	_, lines := doc.snapshot()

	var locs []protocol.Location
	for _, span := range s.occurrences(doc, t, params.Context.IncludeDeclaration) {
		locs = append(locs, protocol.Location{
			URI:   params.TextDocument.URI,
			Range: toRange(lines, span),
		})
	}
	return locs, nil
}

// occurrences returns the spans of every use of the target. Unresolved
// names are matched by text against the other unresolved references, so a
// global such as console still finds its uses.
func (s *Server) occurrences(doc *Document, t target, includeDecl bool) []ast.Span {
	if t.Symbol != semantic.NoSymbol {
		return symbolSpans(doc, t.Symbol, includeDecl)
	}
	f, _ := doc.snapshot()
	var spans []ast.Span
	for _, id := range f.Semantic.Unresolved[t.Name] {
		if n := doc.node(f.Semantic.Symbols.Reference(id).Node); n != nil {
			spans = append(spans, n.Loc())
		}
	}
	return spans
}

// textDocumentDocumentHighlight handles the textDocument/documentHighlight
// request. Declarations and assignments are marked as writes.
func (s *Server) textDocumentDocumentHighlight(_ *glsp.Context, params *protocol.DocumentHighlightParams) ([]protocol.DocumentHighlight, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	s.ensureAnalysis(doc)

	t, ok := symbolAtPosition(doc, params.Position)
	if !ok {
		return nil, nil
	}
	f, lines := doc.snapshot()
	st := f.Semantic.Symbols

	var out []protocol.DocumentHighlight
	add := func(span ast.Span, kind protocol.DocumentHighlightKind) {
		out = append(out, protocol.DocumentHighlight{Range: toRange(lines, span), Kind: &kind})
	}
	refKind := func(ref semantic.Reference) protocol.DocumentHighlightKind {
		if ref.IsWrite() {
			return protocol.DocumentHighlightKindWrite
		}
		return protocol.DocumentHighlightKindRead
	}

	if t.Symbol == semantic.NoSymbol {
		for _, id := range f.Semantic.Unresolved[t.Name] {
			ref := st.Reference(id)
			if n := doc.node(ref.Node); n != nil {
				add(n.Loc(), refKind(ref))
			}
		}
		return out, nil
	}

	add(st.Span(t.Symbol), protocol.DocumentHighlightKindWrite)
	for _, span := range st.Redeclarations(t.Symbol) {
		add(span, protocol.DocumentHighlightKindWrite)
	}
	for _, ref := range st.ResolvedReferences(t.Symbol) {
		if n := doc.node(ref.Node); n != nil {
			add(n.Loc(), refKind(ref))
		}
	}
	return out, nil
}

// Copyright © 2024 The ELPS authors

package lsp

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/luthersystems/jsem/diagnostic"
	"github.com/luthersystems/jsem/driver"
	"github.com/luthersystems/jsem/semantic"
)

// textDocumentDocumentSymbol handles the textDocument/documentSymbol request.
func (s *Server) textDocumentDocumentSymbol(_ *glsp.Context, params *protocol.DocumentSymbolParams) (any, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	s.ensureAnalysis(doc)

	f, lines := doc.snapshot()
	if f == nil {
		return nil, nil
	}
	sem := f.Semantic

	// Enum members hang off their enum; merged declarations share one
	// symbol and contribute members from every body.
	members := make(map[semantic.SymbolID][]protocol.DocumentSymbol)
	for _, e := range sem.Enums() {
		for _, sym := range sem.Scopes.Bindings(e.Scope).All() {
			members[e.Symbol] = append(members[e.Symbol], documentSymbol(doc, f, lines, sym))
		}
	}

	// Only report declarations in the module scope.
	symbols := []protocol.DocumentSymbol{}
	for _, sym := range sem.Scopes.Bindings(sem.Scopes.Root()).All() {
		ds := documentSymbol(doc, f, lines, sym)
		ds.Children = members[sym]
		symbols = append(symbols, ds)
	}
	return symbols, nil
}

// documentSymbol describes sym. The range covers the whole declaring node
// and the selection range covers the name.
func documentSymbol(doc *Document, f *driver.File, lines *diagnostic.Lines, sym semantic.SymbolID) protocol.DocumentSymbol {
	st := f.Semantic.Symbols
	flags := st.Flags(sym)
	sel := toRange(lines, st.Span(sym))
	full := sel
	if n := doc.node(st.Declaration(sym)); n != nil {
		full = toRange(lines, n.Loc())
	}
	return protocol.DocumentSymbol{
		Name:           st.Name(sym),
		Detail:         symbolDetail(f, sym, flags),
		Kind:           mapSymbolKind(flags),
		Range:          full,
		SelectionRange: sel,
	}
}

// symbolDetail returns the folded value of an enum member, or the kind
// label for anything else.
func symbolDetail(f *driver.File, sym semantic.SymbolID, flags semantic.SymbolFlags) *string {
	if flags.Has(semantic.SymbolEnumMember) && f.Enums != nil {
		if v, ok := f.Enums.Member(sym); ok {
			s := v.Text()
			return &s
		}
	}
	s := symbolKindLabel(flags)
	return &s
}

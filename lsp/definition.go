// Copyright © 2024 The ELPS authors

package lsp

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/luthersystems/jsem/semantic"
)

// textDocumentDefinition handles the textDocument/definition request.
func (s *Server) textDocumentDefinition(_ *glsp.Context, params *protocol.DefinitionParams) (any, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	s.ensureAnalysis(doc)

	t, ok := symbolAtPosition(doc, params.Position)
	// Globals and other unresolved names have no navigable source.
	if !ok || t.Symbol == semantic.NoSymbol {
		return nil, nil
	}
	f, lines := doc.snapshot()
	return protocol.Location{
		URI:   params.TextDocument.URI,
		Range: toRange(lines, f.Semantic.Symbols.Span(t.Symbol)),
	}, nil
}

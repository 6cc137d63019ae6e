// Copyright © 2024 The ELPS authors

package lsp

import (
	"fmt"
	"strings"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/luthersystems/jsem/diagnostic"
	"github.com/luthersystems/jsem/driver"
	"github.com/luthersystems/jsem/lint"
	"github.com/luthersystems/jsem/semantic"
)

// textDocumentHover handles the textDocument/hover request.
func (s *Server) textDocumentHover(_ *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
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

	var content string
	if t.Symbol == semantic.NoSymbol {
		if !lint.IsKnownGlobal(t.Name) {
			return nil, nil
		}
		content = fmt.Sprintf("**global** `%s`", t.Name)
	} else {
		content = buildHoverContent(f, lines, t.Symbol)
	}

	r := toRange(lines, t.Span)
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: content,
		},
		Range: &r,
	}, nil
}

// buildHoverContent builds Markdown hover text for a symbol.
func buildHoverContent(f *driver.File, lines *diagnostic.Lines, sym semantic.SymbolID) string {
	st := f.Semantic.Symbols
	flags := st.Flags(sym)
	name := st.Name(sym)

	var sb strings.Builder
	fmt.Fprintf(&sb, "**%s** `%s`", symbolKindLabel(flags), name)

	if flags.Has(semantic.SymbolEnumMember) && f.Enums != nil {
		if v, ok := f.Enums.Member(sym); ok {
			fmt.Fprintf(&sb, " = `%s`", v.Text())
		}
	}

	line, _ := lines.Position(st.Span(sym).Start)
	if text := strings.TrimSpace(lines.Text(line)); text != "" {
		lang := "js"
		if f.Language.IsTypeScript() {
			lang = "ts"
		}
		fmt.Fprintf(&sb, "\n\n```%s\n%s\n```", lang, text)
	}

	var notes []string
	if flags.Has(semantic.SymbolExport) {
		notes = append(notes, "exported")
	}
	if flags.Has(semantic.SymbolAmbient) {
		notes = append(notes, "ambient")
	}
	if st.SymbolIsMutated(sym) {
		notes = append(notes, "reassigned")
	}
	switch n := len(st.ResolvedReferenceIDs(sym)); n {
	case 1:
		notes = append(notes, "1 reference")
	default:
		notes = append(notes, fmt.Sprintf("%d references", n))
	}
	fmt.Fprintf(&sb, "\n\n*Declared on line %d; %s*", line, strings.Join(notes, ", "))
	return sb.String()
}

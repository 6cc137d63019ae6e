// Copyright © 2024 The ELPS authors

package lsp

import (
	"strings"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/luthersystems/jsem/lint"
	"github.com/luthersystems/jsem/semantic"
)

// textDocumentCompletion handles the textDocument/completion request.
func (s *Server) textDocumentCompletion(_ *glsp.Context, params *protocol.CompletionParams) (any, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	s.ensureAnalysis(doc)

	f, lines := doc.snapshot()
	if f == nil {
		return nil, nil
	}
	off := toOffset(lines, params.Position)
	content := string(f.Source)
	prefix := wordAtPosition(content, int(off))
	scope := s.scopeAt(doc, off)

	// After a dot only enum members are known statically.
	start := int(off) - len(prefix)
	if start > 0 && content[start-1] == '.' {
		object := wordAtPosition(content, start-1)
		return enumMemberCompletions(doc, scope, object, prefix), nil
	}
	return scopeCompletions(doc, scope, prefix), nil
}

// scopeAt returns the innermost scope whose node contains off.
func (s *Server) scopeAt(doc *Document, off uint32) semantic.ScopeID {
	f, _ := doc.snapshot()
	scopes := f.Semantic.Scopes
	best := scopes.Root()
	bestDepth := 0
	for i := range scopes.Len() {
		id := semantic.ScopeID(i) // #nosec G115 -- bounded by Len
		n := doc.node(scopes.Node(id))
		if n == nil {
			continue
		}
		if !n.Loc().Contains(off) {
			continue
		}
		if d := scopes.Depth(id); d > bestDepth {
			best, bestDepth = id, d
		}
	}
	return best
}

// scopeCompletions returns the bindings visible from scope, innermost
// first, followed by host globals. A name shadowed by an inner scope is
// offered once.
func scopeCompletions(doc *Document, scope semantic.ScopeID, prefix string) []protocol.CompletionItem {
	f, _ := doc.snapshot()
	st := f.Semantic.Symbols
	seen := make(map[string]bool)
	items := []protocol.CompletionItem{}
	for id := range f.Semantic.Scopes.Ancestors(scope) {
		for name, sym := range f.Semantic.Scopes.Bindings(id).All() {
			if seen[name] || !strings.HasPrefix(name, prefix) {
				continue
			}
			seen[name] = true
			flags := st.Flags(sym)
			kind := mapCompletionItemKind(flags)
			detail := symbolKindLabel(flags)
			items = append(items, protocol.CompletionItem{
				Label:  name,
				Kind:   &kind,
				Detail: &detail,
			})
		}
	}
	for _, name := range lint.KnownGlobals() {
		if seen[name] || !strings.HasPrefix(name, prefix) {
			continue
		}
		kind := protocol.CompletionItemKindVariable
		detail := "global"
		items = append(items, protocol.CompletionItem{
			Label:  name,
			Kind:   &kind,
			Detail: &detail,
		})
	}
	return items
}

// enumMemberCompletions lists the members of the enum named object, with
// their folded values as detail.
func enumMemberCompletions(doc *Document, scope semantic.ScopeID, object, prefix string) []protocol.CompletionItem {
	f, _ := doc.snapshot()
	_, sym, ok := f.Semantic.Scopes.Find(scope, object)
	if !ok || !f.Semantic.Symbols.Flags(sym).IsEnum() || f.Enums == nil {
		return nil
	}
	members, ok := f.Enums.Enum(sym)
	if !ok {
		return nil
	}
	items := []protocol.CompletionItem{}
	for name, v := range members.All() {
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		kind := protocol.CompletionItemKindEnumMember
		detail := v.Text()
		items = append(items, protocol.CompletionItem{
			Label:  name,
			Kind:   &kind,
			Detail: &detail,
		})
	}
	return items
}

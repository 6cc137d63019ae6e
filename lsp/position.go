// Copyright © 2024 The ELPS authors

package lsp

import (
	"strings"
	"unicode"
	"unicode/utf8"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/luthersystems/jsem/ast"
	"github.com/luthersystems/jsem/astutil"
	"github.com/luthersystems/jsem/diagnostic"
	"github.com/luthersystems/jsem/semantic"
)

// safeUint converts a non-negative int to protocol.UInteger, clamping
// negative values to zero.
func safeUint(n int) protocol.UInteger {
	if n < 0 {
		return 0
	}
	return protocol.UInteger(n) // #nosec G115 -- line/col are always small positive ints
}

// toPosition converts a byte offset to an LSP position, which counts
// UTF-16 code units.
func toPosition(lines *diagnostic.Lines, off uint32) protocol.Position {
	line, char := lines.UTF16(off)
	return protocol.Position{Line: safeUint(line), Character: safeUint(char)}
}

// toRange converts a byte span to an LSP range.
func toRange(lines *diagnostic.Lines, span ast.Span) protocol.Range {
	return protocol.Range{Start: toPosition(lines, span.Start), End: toPosition(lines, span.End)}
}

// toOffset converts an LSP position to a byte offset.
func toOffset(lines *diagnostic.Lines, pos protocol.Position) uint32 {
	return lines.OffsetUTF16(int(pos.Line), int(pos.Character))
}

// target is the symbol under the cursor together with the identifier that
// was hit.
type target struct {
	Symbol semantic.SymbolID
	// Span of the identifier under the cursor.
	Span ast.Span
	// Ref is the reference under the cursor, or NoReference when the
	// cursor is on a declaration.
	Ref semantic.ReferenceID
	// Name is the identifier text. It is set even when the reference is
	// unresolved.
	Name string
}

// identifierAt returns the identifier at a byte offset. A cursor placed
// just past the end of an identifier also selects it.
func identifierAt(prog *ast.Program, off uint32) ast.Node {
	match := func(n ast.Node) bool {
		switch n.(type) {
		case *ast.Identifier, *ast.BindingIdentifier:
			return true
		}
		return false
	}
	if n := astutil.NodeAt(prog, off); n != nil && match(n) {
		return n
	}
	if off > 0 {
		if n := astutil.NodeAt(prog, off-1); n != nil && match(n) {
			return n
		}
	}
	return nil
}

// symbolAtPosition finds the symbol at the given LSP position. ok is
// false when the cursor is not on an identifier. Symbol is NoSymbol for
// an unresolved reference.
func symbolAtPosition(doc *Document, pos protocol.Position) (target, bool) {
	f, lines := doc.snapshot()
	if f == nil {
		return target{}, false
	}
	sem := f.Semantic
	switch n := identifierAt(f.Program, toOffset(lines, pos)).(type) {
	case *ast.BindingIdentifier:
		sym, ok := sem.SymbolOf(n.ID)
		if !ok {
			return target{}, false
		}
		return target{Symbol: sym, Span: n.Span, Ref: semantic.NoReference, Name: n.Name}, true
	case *ast.Identifier:
		ref, ok := sem.ReferenceOf(n.ID)
		if !ok {
			return target{}, false
		}
		return target{Symbol: sem.Symbols.Reference(ref).Symbol, Span: n.Span, Ref: ref, Name: n.Name}, true
	}
	return target{}, false
}

// symbolSpans returns the spans of every occurrence of sym: declarations
// first, then references.
func symbolSpans(doc *Document, sym semantic.SymbolID, includeDecl bool) []ast.Span {
	f, _ := doc.snapshot()
	st := f.Semantic.Symbols
	var spans []ast.Span
	if includeDecl {
		spans = append(spans, st.Span(sym))
		spans = append(spans, st.Redeclarations(sym)...)
	}
	for _, ref := range st.ResolvedReferences(sym) {
		if n := doc.node(ref.Node); n != nil {
			spans = append(spans, n.Loc())
		}
	}
	return spans
}

// wordAtPosition extracts the identifier-like word ending at the given
// byte offset.
func wordAtPosition(content string, off int) string {
	if off < 0 || off > len(content) {
		return ""
	}
	start := off
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(content[:start])
		if !isIdentPart(r) {
			break
		}
		start -= size
	}
	return content[start:off]
}

func isIdentPart(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// isIdentifier reports whether s is a valid JavaScript identifier name.
// Reserved words are not rejected.
func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if !isIdentPart(r) || (i == 0 && unicode.IsDigit(r)) {
			return false
		}
	}
	return true
}

// mapSymbolKind converts symbol flags to an LSP SymbolKind.
func mapSymbolKind(flags semantic.SymbolFlags) protocol.SymbolKind {
	switch {
	case flags.Has(semantic.SymbolEnumMember):
		return protocol.SymbolKindEnumMember
	case flags.IsEnum():
		return protocol.SymbolKindEnum
	case flags.Has(semantic.SymbolClass):
		return protocol.SymbolKindClass
	case flags.Has(semantic.SymbolInterface):
		return protocol.SymbolKindInterface
	case flags.Has(semantic.SymbolTypeAlias):
		return protocol.SymbolKindTypeParameter
	case flags.Has(semantic.SymbolNameSpaceModule):
		return protocol.SymbolKindNamespace
	case flags.Has(semantic.SymbolFunction):
		return protocol.SymbolKindFunction
	case flags.Intersects(semantic.SymbolImport | semantic.SymbolTypeImport):
		return protocol.SymbolKindModule
	case flags.Has(semantic.SymbolConstVariable):
		return protocol.SymbolKindConstant
	default:
		return protocol.SymbolKindVariable
	}
}

// mapCompletionItemKind converts symbol flags to an LSP CompletionItemKind.
func mapCompletionItemKind(flags semantic.SymbolFlags) protocol.CompletionItemKind {
	switch {
	case flags.Has(semantic.SymbolEnumMember):
		return protocol.CompletionItemKindEnumMember
	case flags.IsEnum():
		return protocol.CompletionItemKindEnum
	case flags.Has(semantic.SymbolClass):
		return protocol.CompletionItemKindClass
	case flags.Has(semantic.SymbolInterface):
		return protocol.CompletionItemKindInterface
	case flags.Has(semantic.SymbolTypeAlias):
		return protocol.CompletionItemKindTypeParameter
	case flags.Has(semantic.SymbolNameSpaceModule):
		return protocol.CompletionItemKindModule
	case flags.Has(semantic.SymbolFunction):
		return protocol.CompletionItemKindFunction
	case flags.Intersects(semantic.SymbolImport | semantic.SymbolTypeImport):
		return protocol.CompletionItemKindModule
	case flags.Has(semantic.SymbolConstVariable):
		return protocol.CompletionItemKindConstant
	default:
		return protocol.CompletionItemKindVariable
	}
}

// symbolKindLabel names a symbol's kind for hover text.
func symbolKindLabel(flags semantic.SymbolFlags) string {
	switch {
	case flags.Has(semantic.SymbolEnumMember):
		return "enum member"
	case flags.Has(semantic.SymbolConstEnum):
		return "const enum"
	case flags.IsEnum():
		return "enum"
	case flags.Has(semantic.SymbolClass):
		return "class"
	case flags.Has(semantic.SymbolInterface):
		return "interface"
	case flags.Has(semantic.SymbolTypeAlias):
		return "type"
	case flags.Has(semantic.SymbolNameSpaceModule):
		return "namespace"
	case flags.Has(semantic.SymbolFunction):
		return "function"
	case flags.Has(semantic.SymbolParameter):
		return "parameter"
	case flags.Has(semantic.SymbolCatchVariable):
		return "catch parameter"
	case flags.Intersects(semantic.SymbolImport | semantic.SymbolTypeImport):
		return "import"
	case flags.Has(semantic.SymbolConstVariable):
		return "const"
	case flags.Has(semantic.SymbolBlockScopedVariable):
		return "let"
	case flags.Has(semantic.SymbolFunctionScopedVariable):
		return "var"
	default:
		return "symbol"
	}
}

// uriToPath converts a file:// URI to a filesystem path.
func uriToPath(uri string) string {
	if path, ok := strings.CutPrefix(uri, "file://"); ok {
		return path
	}
	return uri
}

// pathToURI converts a filesystem path to a file:// URI.
func pathToURI(path string) string {
	if strings.HasPrefix(path, "/") {
		return "file://" + path
	}
	return path
}

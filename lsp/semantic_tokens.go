// Copyright © 2024 The ELPS authors

package lsp

import (
	"sort"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/luthersystems/jsem/ast"
	"github.com/luthersystems/jsem/astutil"
	"github.com/luthersystems/jsem/diagnostic"
	"github.com/luthersystems/jsem/driver"
	"github.com/luthersystems/jsem/lint"
	"github.com/luthersystems/jsem/semantic"
)

// Semantic token type indices. They must match the order in semanticTokenLegend().
const (
	semTokenNamespace = iota
	semTokenType
	semTokenClass
	semTokenEnum
	semTokenInterface
	semTokenParameter
	semTokenVariable
	semTokenEnumMember
	semTokenFunction
)

// Semantic token modifier bit flags. They must match the order in semanticTokenLegend().
const (
	semModDeclaration = 1 << iota
	semModReadonly
	semModDefaultLibrary
)

// semanticTokenLegend returns the legend that the client uses to decode tokens.
func semanticTokenLegend() protocol.SemanticTokensLegend {
	return protocol.SemanticTokensLegend{
		TokenTypes: []string{
			"namespace",  // 0
			"type",       // 1
			"class",      // 2
			"enum",       // 3
			"interface",  // 4
			"parameter",  // 5
			"variable",   // 6
			"enumMember", // 7
			"function",   // 8
		},
		TokenModifiers: []string{
			"declaration",    // bit 0
			"readonly",       // bit 1
			"defaultLibrary", // bit 2
		},
	}
}

// rawToken is an intermediate representation before delta encoding.
type rawToken struct {
	line      int // 0-based
	startChar int // 0-based, UTF-16
	length    int
	tokenType int
	modifiers int
}

// textDocumentSemanticTokensFull handles the textDocument/semanticTokens/full request.
func (s *Server) textDocumentSemanticTokensFull(_ *glsp.Context, params *protocol.SemanticTokensParams) (*protocol.SemanticTokens, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	s.ensureAnalysis(doc)

	f, lines := doc.snapshot()
	if f == nil {
		return nil, nil
	}

	tokens := collectSemanticTokens(f, lines)

	// Sort by position (line, then character).
	sort.Slice(tokens, func(i, j int) bool {
		if tokens[i].line != tokens[j].line {
			return tokens[i].line < tokens[j].line
		}
		return tokens[i].startChar < tokens[j].startChar
	})

	return &protocol.SemanticTokens{Data: deltaEncode(tokens)}, nil
}

// collectSemanticTokens classifies every binding and resolvable
// identifier in the program.
func collectSemanticTokens(f *driver.File, lines *diagnostic.Lines) []rawToken {
	sem := f.Semantic
	var tokens []rawToken
	add := func(span ast.Span, tokType, mods int) {
		line, start := lines.UTF16(span.Start)
		endLine, end := lines.UTF16(span.End)
		if endLine != line || end <= start {
			return
		}
		tokens = append(tokens, rawToken{
			line:      line,
			startChar: start,
			length:    end - start,
			tokenType: tokType,
			modifiers: mods,
		})
	}
	astutil.Inspect(f.Program, func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.BindingIdentifier:
			if sym, ok := sem.SymbolOf(n.ID); ok {
				flags := sem.Symbols.Flags(sym)
				add(n.Span, symbolTokenType(flags), symbolModifiers(flags)|semModDeclaration)
			}
		case *ast.Identifier:
			ref, ok := sem.ReferenceOf(n.ID)
			if !ok {
				return true
			}
			r := sem.Symbols.Reference(ref)
			if r.IsResolved() {
				flags := sem.Symbols.Flags(r.Symbol)
				add(n.Span, symbolTokenType(flags), symbolModifiers(flags))
			} else if lint.IsKnownGlobal(r.Name) {
				add(n.Span, semTokenVariable, semModDefaultLibrary)
			}
		}
		return true
	})
	return tokens
}

// symbolTokenType maps symbol flags to a token type index.
func symbolTokenType(flags semantic.SymbolFlags) int {
	switch {
	case flags.Has(semantic.SymbolEnumMember):
		return semTokenEnumMember
	case flags.IsEnum():
		return semTokenEnum
	case flags.Has(semantic.SymbolClass):
		return semTokenClass
	case flags.Has(semantic.SymbolInterface):
		return semTokenInterface
	case flags.Has(semantic.SymbolTypeAlias):
		return semTokenType
	case flags.Has(semantic.SymbolNameSpaceModule):
		return semTokenNamespace
	case flags.Has(semantic.SymbolFunction):
		return semTokenFunction
	case flags.Has(semantic.SymbolParameter):
		return semTokenParameter
	default:
		return semTokenVariable
	}
}

func symbolModifiers(flags semantic.SymbolFlags) int {
	if flags.IsConstLike() || flags.Has(semantic.SymbolEnumMember) {
		return semModReadonly
	}
	return 0
}

func deltaEncode(tokens []rawToken) []protocol.UInteger {
	data := make([]protocol.UInteger, 0, len(tokens)*5)
	prevLine := 0
	prevChar := 0
	for _, tok := range tokens {
		deltaLine := tok.line - prevLine
		deltaChar := tok.startChar
		if deltaLine == 0 {
			deltaChar = tok.startChar - prevChar
		}
		data = append(data,
			safeUint(deltaLine),
			safeUint(deltaChar),
			safeUint(tok.length),
			safeUint(tok.tokenType),
			safeUint(tok.modifiers),
		)
		prevLine = tok.line
		prevChar = tok.startChar
	}
	return data
}

// Copyright © 2024 The ELPS authors

// Package parser turns JavaScript and TypeScript source into the syntax
// tree consumed by the semantic analyzer. Parsing is delegated to
// tree-sitter; the concrete syntax tree is then lowered into package ast
// with byte spans and dense node ids.
package parser

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/luthersystems/jsem/ast"
)

// Language selects a grammar.
type Language uint8

const (
	Unknown Language = iota
	JavaScript
	TypeScript
	TSX
)

func (l Language) String() string {
	switch l {
	case JavaScript:
		return "javascript"
	case TypeScript:
		return "typescript"
	case TSX:
		return "tsx"
	default:
		return "unknown"
	}
}

// IsTypeScript reports whether the language carries type syntax.
func (l Language) IsTypeScript() bool { return l == TypeScript || l == TSX }

// Extensions lists the file extensions LanguageOf recognizes.
var Extensions = []string{".js", ".mjs", ".cjs", ".jsx", ".ts", ".mts", ".cts", ".tsx"}

// LanguageOf returns the language of a file name from its extension.
func LanguageOf(filename string) Language {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".js", ".mjs", ".cjs", ".jsx":
		return JavaScript
	case ".ts", ".mts", ".cts":
		return TypeScript
	case ".tsx":
		return TSX
	}
	return Unknown
}

var (
	poolsOnce sync.Once
	pools     map[Language]*Pool
)

// PoolFor returns the shared parser pool of a language.
func PoolFor(lang Language) *Pool {
	poolsOnce.Do(func() {
		pools = map[Language]*Pool{
			JavaScript: NewPool(javascript.GetLanguage()),
			TypeScript: NewPool(typescript.GetLanguage()),
			TSX:        NewPool(tsx.GetLanguage()),
		}
	})
	return pools[lang]
}

// Parse parses src using the grammar implied by filename. When the source
// has syntax errors Parse returns both the program lowered from the parts
// that did parse and a *SyntaxError.
func Parse(ctx context.Context, src []byte, filename string) (*ast.Program, error) {
	lang := LanguageOf(filename)
	if lang == Unknown {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, filename)
	}
	return ParseLanguage(ctx, src, filename, lang)
}

// ParseLanguage parses src with an explicit grammar.
func ParseLanguage(ctx context.Context, src []byte, filename string, lang Language) (*ast.Program, error) {
	pool := PoolFor(lang)
	if pool == nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupported, lang)
	}
	sp := pool.Get()
	defer pool.Put(sp)

	tree, err := sp.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	l := &lowerer{src: src}
	prog := l.program(root)
	prog.TypeScript = lang.IsTypeScript()
	ext := strings.ToLower(filepath.Ext(filename))
	prog.Module = prog.Module || ext == ".mjs" || ext == ".mts"
	l.scan(root, prog)
	prog.NodeCount = uint32(l.next)
	if len(l.errs) > 0 {
		return prog, &SyntaxError{Filename: filename, Spans: l.errs}
	}
	return prog, nil
}

// scan collects comments and error regions of the whole tree.
func (l *lowerer) scan(n *sitter.Node, prog *ast.Program) {
	switch {
	case n.Type() == "comment":
		text := n.Content(l.src)
		prog.Comments = append(prog.Comments, ast.Comment{
			Span:  span(n),
			Text:  text,
			Block: strings.HasPrefix(text, "/*"),
		})
		return
	case n.IsError(), n.IsMissing():
		l.errs = append(l.errs, span(n))
		return
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		l.scan(n.Child(i), prog)
	}
}

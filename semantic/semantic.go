// Copyright © 2024 The ELPS authors

// Package semantic builds the scope tree, symbol table and reference graph
// of a JavaScript or TypeScript program.
//
// Analyze performs a single forward traversal of an ast.Program. Each
// statement list is prescanned so hoisted declarations are bound before any
// use is visited, which lets most references resolve on the spot. The
// remaining references are retried when their scope is left. When enabled,
// a control-flow graph is emitted during the same traversal.
//
// The returned Semantic is a read-only snapshot; it may be shared between
// goroutines as long as nothing calls SymbolTable.SetName concurrently.
package semantic

import (
	"fmt"
	"slices"

	"github.com/luthersystems/jsem/arena"
	"github.com/luthersystems/jsem/ast"
	"github.com/luthersystems/jsem/cfg"
)

// Config controls the behavior of the analyzer.
type Config struct {
	// CFG enables control-flow graph output.
	CFG bool

	// Filename is the source file being analyzed. It is only used to label
	// errors.
	Filename string
}

// Semantic is the result of analyzing one program.
type Semantic struct {
	Program *ast.Program
	Scopes  *ScopeTree
	Symbols *SymbolTable
	// CFG is nil unless Config.CFG was set.
	CFG *cfg.Graph
	// Names backs every symbol and reference name.
	Names *arena.Arena
	// Unresolved maps each name no declaration binds to the references
	// using it.
	Unresolved map[string][]ReferenceID
	// Errors lists early errors found during traversal, such as a break
	// outside of any loop. The affected statement is otherwise ignored.
	Errors []*Error

	nodeScope     []ScopeID
	nodeSymbol    []SymbolID
	nodeReference []ReferenceID
	nodeBlock     []cfg.BlockID
	enums         []Enum
}

// Enum is one enum declaration together with its (possibly merged) symbol
// and the scope holding its members.
type Enum struct {
	Decl   *ast.EnumDeclaration
	Symbol SymbolID
	Scope  ScopeID
}

// Error is an early error detected during analysis.
type Error struct {
	Filename string
	Span     ast.Span
	Msg      string
}

func (e *Error) Error() string {
	if e.Filename == "" {
		return fmt.Sprintf("%d: %s", e.Span.Start, e.Msg)
	}
	return fmt.Sprintf("%s:%d: %s", e.Filename, e.Span.Start, e.Msg)
}

// Analyze builds the semantic model of prog.
func Analyze(prog *ast.Program, config *Config) *Semantic {
	if config == nil {
		config = &Config{}
	}
	a := newAnalyzer(prog, config)
	a.program(prog)
	return a.finish()
}

func newSemantic(prog *ast.Program) *Semantic {
	names := arena.New()
	n := int(prog.NodeCount)
	s := &Semantic{
		Program:       prog,
		Scopes:        NewScopeTree(),
		Symbols:       NewSymbolTable(names),
		Names:         names,
		Unresolved:    make(map[string][]ReferenceID),
		nodeScope:     filled(n, NoScope),
		nodeSymbol:    filled(n, NoSymbol),
		nodeReference: filled(n, NoReference),
		nodeBlock:     filled(n, cfg.NoBlock),
	}
	return s
}

func filled[T any](n int, v T) []T {
	s := make([]T, n)
	for i := range s {
		s[i] = v
	}
	return s
}

// setNode stores v at index id, growing s with none when the producer
// under-reported the node count.
func setNode[T any](s *[]T, id ast.NodeID, v, none T) {
	for int(id) >= len(*s) {
		*s = append(*s, none)
	}
	(*s)[id] = v
}

func getNode[T comparable](s []T, id ast.NodeID, none T) (T, bool) {
	if int(id) >= len(s) || s[id] == none {
		return none, false
	}
	return s[id], true
}

// ScopeOf returns the scope introduced by node.
func (s *Semantic) ScopeOf(node ast.NodeID) (ScopeID, bool) {
	return getNode(s.nodeScope, node, NoScope)
}

// SymbolOf returns the symbol declared by a binding identifier.
func (s *Semantic) SymbolOf(binding ast.NodeID) (SymbolID, bool) {
	return getNode(s.nodeSymbol, binding, NoSymbol)
}

// ReferenceOf returns the reference recorded for an identifier.
func (s *Semantic) ReferenceOf(ident ast.NodeID) (ReferenceID, bool) {
	return getNode(s.nodeReference, ident, NoReference)
}

// BlockOf returns the control-flow block a statement starts in. It always
// reports false when the graph was not requested.
func (s *Semantic) BlockOf(stmt ast.NodeID) (cfg.BlockID, bool) {
	if s.CFG == nil {
		return cfg.NoBlock, false
	}
	return getNode(s.nodeBlock, stmt, cfg.NoBlock)
}

// SymbolName returns the name of a symbol.
func (s *Semantic) SymbolName(id SymbolID) string { return s.Symbols.Name(id) }

// ReferenceName returns the name a reference uses.
func (s *Semantic) ReferenceName(id ReferenceID) string { return s.Symbols.Reference(id).Name }

// IsUnresolved reports whether a reference is bound to no declaration.
func (s *Semantic) IsUnresolved(id ReferenceID) bool { return !s.Symbols.Reference(id).IsResolved() }

// UnresolvedNames returns the unresolved names in sorted order.
func (s *Semantic) UnresolvedNames() []string {
	names := make([]string, 0, len(s.Unresolved))
	for name := range s.Unresolved {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Enums returns every enum declaration in source order.
func (s *Semantic) Enums() []Enum { return s.enums }

// IsStrict reports whether code in the scope runs in strict mode.
func (s *Semantic) IsStrict(scope ScopeID) bool { return s.Scopes.Flags(scope).IsStrict() }

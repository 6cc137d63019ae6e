// Copyright © 2024 The ELPS authors

package semantic

import (
	"fmt"
	"iter"

	"github.com/luthersystems/jsem/ast"
	"github.com/luthersystems/jsem/packed"
)

// ScopeID identifies a scope in a ScopeTree.
type ScopeID uint32

// NoScope is the parent of the root scope.
const NoScope ScopeID = ^ScopeID(0)

// ScopeTree holds every lexical scope of one program. Scope rows live in a
// packed table; binding maps are kept per scope in insertion order.
type ScopeTree struct {
	table    packed.Table
	parent   packed.Column[ScopeID]
	flags    packed.Column[ScopeFlags]
	node     packed.Column[ast.NodeID]
	bindings []*Bindings
	children [][]ScopeID
}

// NewScopeTree returns an empty tree.
func NewScopeTree() *ScopeTree {
	s := &ScopeTree{}
	s.parent = packed.AddColumn[ScopeID](&s.table)
	s.flags = packed.AddColumn[ScopeFlags](&s.table)
	s.node = packed.AddColumn[ast.NodeID](&s.table)
	return s
}

// PushScope creates a scope under parent. Only the first scope may be
// created with NoScope as its parent; it becomes the root.
func (s *ScopeTree) PushScope(parent ScopeID, flags ScopeFlags, node ast.NodeID) ScopeID {
	if parent == NoScope && !s.table.IsEmpty() {
		panic("semantic: second root scope")
	}
	if parent != NoScope {
		s.check(parent)
		flags |= s.Flags(parent) & ScopeModifiers
	}
	id := ScopeID(s.table.Push())
	s.parent.Set(&s.table, int(id), parent)
	s.flags.Set(&s.table, int(id), flags)
	s.node.Set(&s.table, int(id), node)
	s.bindings = append(s.bindings, nil)
	s.children = append(s.children, nil)
	if parent != NoScope {
		s.children[parent] = append(s.children[parent], id)
	}
	return id
}

func (s *ScopeTree) check(id ScopeID) {
	if int(id) >= s.table.Len() {
		panic(fmt.Sprintf("semantic: scope %d out of range [0:%d]", id, s.table.Len()))
	}
}

// Len returns the number of scopes.
func (s *ScopeTree) Len() int { return s.table.Len() }

// Root returns the root scope id.
func (s *ScopeTree) Root() ScopeID {
	if s.table.IsEmpty() {
		panic("semantic: empty scope tree has no root")
	}
	return 0
}

// Parent returns the parent of a scope, or NoScope for the root.
func (s *ScopeTree) Parent(id ScopeID) ScopeID { return s.parent.Get(&s.table, int(id)) }

// Flags returns a scope's flags.
func (s *ScopeTree) Flags(id ScopeID) ScopeFlags { return s.flags.Get(&s.table, int(id)) }

// Node returns the syntax node that introduced the scope.
func (s *ScopeTree) Node(id ScopeID) ast.NodeID { return s.node.Get(&s.table, int(id)) }

// Children returns the scopes directly nested in id, in creation order.
func (s *ScopeTree) Children(id ScopeID) []ScopeID {
	s.check(id)
	return s.children[id]
}

// Ancestors yields id and then each enclosing scope, ending at the root.
func (s *ScopeTree) Ancestors(id ScopeID) iter.Seq[ScopeID] {
	return func(yield func(ScopeID) bool) {
		for cur := id; cur != NoScope; cur = s.Parent(cur) {
			if !yield(cur) {
				return
			}
		}
	}
}

// Depth returns the number of ancestors of id, not counting id itself.
func (s *ScopeTree) Depth(id ScopeID) int {
	n := -1
	for range s.Ancestors(id) {
		n++
	}
	return n
}

// Binding looks up name in scope id only.
func (s *ScopeTree) Binding(id ScopeID, name string) (SymbolID, bool) {
	s.check(id)
	b := s.bindings[id]
	if b == nil {
		return NoSymbol, false
	}
	return b.Get(name)
}

// AddBinding binds name to sym in scope id. When name is already bound the
// existing symbol is returned with inserted == false and the map is left
// unchanged so the caller can merge the declarations.
func (s *ScopeTree) AddBinding(id ScopeID, name string, sym SymbolID) (existing SymbolID, inserted bool) {
	s.check(id)
	b := s.bindings[id]
	if b == nil {
		b = &Bindings{index: make(map[string]int)}
		s.bindings[id] = b
	}
	if prev, ok := b.Get(name); ok {
		return prev, false
	}
	b.index[name] = len(b.names)
	b.names = append(b.names, name)
	b.symbols = append(b.symbols, sym)
	return sym, true
}

// Find resolves name by walking from id outward. It returns the scope that
// binds the name and the bound symbol.
func (s *ScopeTree) Find(id ScopeID, name string) (ScopeID, SymbolID, bool) {
	for cur := range s.Ancestors(id) {
		if sym, ok := s.Binding(cur, name); ok {
			return cur, sym, true
		}
	}
	return NoScope, NoSymbol, false
}

// Bindings returns a scope's binding map, which may be empty.
func (s *ScopeTree) Bindings(id ScopeID) *Bindings {
	s.check(id)
	if b := s.bindings[id]; b != nil {
		return b
	}
	return &Bindings{}
}

// NearestVar returns the closest scope, starting at id, that receives
// hoisted var declarations.
func (s *ScopeTree) NearestVar(id ScopeID) ScopeID {
	for cur := range s.Ancestors(id) {
		if s.Flags(cur).IsVar() {
			return cur
		}
	}
	return s.Root()
}

// Bindings is an insertion-ordered map from name to symbol.
type Bindings struct {
	names   []string
	symbols []SymbolID
	index   map[string]int
}

// Len returns the number of bindings.
func (b *Bindings) Len() int { return len(b.names) }

// Get looks up a name.
func (b *Bindings) Get(name string) (SymbolID, bool) {
	i, ok := b.index[name]
	if !ok {
		return NoSymbol, false
	}
	return b.symbols[i], true
}

// All yields bindings in insertion order.
func (b *Bindings) All() iter.Seq2[string, SymbolID] {
	return func(yield func(string, SymbolID) bool) {
		for i, name := range b.names {
			if !yield(name, b.symbols[i]) {
				return
			}
		}
	}
}

// Names returns the bound names in insertion order.
func (b *Bindings) Names() []string { return append([]string(nil), b.names...) }

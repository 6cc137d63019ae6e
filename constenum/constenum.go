// Copyright © 2024 The ELPS authors

// Package constenum folds the member initializers of TypeScript enums into
// constant values.
//
// Members are evaluated in declaration order with a cursor holding the
// previous member's value. A member without an initializer takes the
// previous numeric value plus one, or zero when it is the first member of
// its declaration. Initializers fold literals, the arithmetic, bitwise and
// string concatenation operators, and references to members evaluated
// earlier in the same enum. Anything else, including references into other
// enums, leaves the member out of the result. Only number and string values
// are reported.
package constenum

import (
	"iter"

	"github.com/luthersystems/jsem/ast"
	"github.com/luthersystems/jsem/semantic"
)

// Members is the ordered set of constant members of one enum.
type Members struct {
	names  []string
	values map[string]Value
}

func newMembers() *Members {
	return &Members{values: make(map[string]Value)}
}

func (m *Members) set(name string, v Value) {
	if _, ok := m.values[name]; !ok {
		m.names = append(m.names, name)
	}
	m.values[name] = v
}

// Len returns the number of constant members.
func (m *Members) Len() int { return len(m.names) }

// Names returns member names in declaration order.
func (m *Members) Names() []string { return m.names }

// Get returns the value of the named member.
func (m *Members) Get(name string) (Value, bool) {
	v, ok := m.values[name]
	return v, ok
}

// All iterates over members in declaration order.
func (m *Members) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		for _, name := range m.names {
			if !yield(name, m.values[name]) {
				return
			}
		}
	}
}

// Result holds the folded members of every enum in a program. Declarations
// that merge into one enum symbol share one member set.
type Result struct {
	order    []semantic.SymbolID
	byEnum   map[semantic.SymbolID]*Members
	byMember map[semantic.SymbolID]Value
}

// Enums returns the enum symbols in order of their first declaration.
func (r *Result) Enums() []semantic.SymbolID { return r.order }

// Enum returns the constant members of the enum symbol.
func (r *Result) Enum(sym semantic.SymbolID) (*Members, bool) {
	m, ok := r.byEnum[sym]
	return m, ok
}

// Member returns the value of an enum member symbol.
func (r *Result) Member(sym semantic.SymbolID) (Value, bool) {
	v, ok := r.byMember[sym]
	return v, ok
}

// Lookup returns the value of the named member of an enum symbol.
func (r *Result) Lookup(enum semantic.SymbolID, name string) (Value, bool) {
	m, ok := r.byEnum[enum]
	if !ok {
		return Value{}, false
	}
	return m.Get(name)
}

// Evaluate folds every enum declaration recorded in sem.
func Evaluate(sem *semantic.Semantic) *Result {
	r := &Result{
		byEnum:   make(map[semantic.SymbolID]*Members),
		byMember: make(map[semantic.SymbolID]Value),
	}
	enums := sem.Enums()
	memberOf := make(map[semantic.SymbolID]semantic.SymbolID)
	for _, e := range enums {
		for _, m := range e.Decl.Members {
			if sym, ok := sem.SymbolOf(m.Name.ID); ok {
				memberOf[sym] = e.Symbol
			}
		}
	}
	folders := make(map[semantic.SymbolID]*folder)
	for _, e := range enums {
		f, ok := folders[e.Symbol]
		if !ok {
			f = &folder{sem: sem, self: e.Symbol, values: make(map[string]Value), memberOf: memberOf}
			folders[e.Symbol] = f
			r.order = append(r.order, e.Symbol)
			r.byEnum[e.Symbol] = newMembers()
		}
		members := r.byEnum[e.Symbol]
		f.declaration(e.Decl, func(m *ast.EnumMember, v Value) {
			members.set(m.Name.Name, v)
			if sym, ok := sem.SymbolOf(m.Name.ID); ok {
				r.byMember[sym] = v
			}
		})
	}
	return r
}

// EvaluateDeclaration folds a single declaration of the enum symbol self,
// ignoring any other declaration that merges with it.
func EvaluateDeclaration(sem *semantic.Semantic, decl *ast.EnumDeclaration, self semantic.SymbolID) *Members {
	memberOf := make(map[semantic.SymbolID]semantic.SymbolID)
	for _, m := range decl.Members {
		if sym, ok := sem.SymbolOf(m.Name.ID); ok {
			memberOf[sym] = self
		}
	}
	f := &folder{sem: sem, self: self, values: make(map[string]Value), memberOf: memberOf}
	members := newMembers()
	f.declaration(decl, func(m *ast.EnumMember, v Value) { members.set(m.Name.Name, v) })
	return members
}

// declaration walks the members of decl in order and reports each retained
// value to emit.
func (f *folder) declaration(decl *ast.EnumDeclaration, emit func(*ast.EnumMember, Value)) {
	prev, constant := NumberValue(-1), true
	for _, m := range decl.Members {
		var v Value
		if m.Initializer != nil {
			v, constant = f.fold(m.Initializer)
		} else if constant && prev.Kind == Number {
			v = NumberValue(prev.Number + 1)
		} else {
			constant = false
		}
		if !constant {
			delete(f.values, m.Name.Name)
			continue
		}
		prev = v
		f.values[m.Name.Name] = v
		if v.Retained() {
			emit(m, v)
		}
	}
}

// Copyright © 2024 The ELPS authors

package semantic

import (
	"fmt"
	"iter"

	"github.com/luthersystems/jsem/arena"
	"github.com/luthersystems/jsem/ast"
	"github.com/luthersystems/jsem/packed"
)

// SymbolID identifies a symbol in a SymbolTable.
type SymbolID uint32

// NoSymbol marks an unresolved reference.
const NoSymbol SymbolID = ^SymbolID(0)

// redeclID indexes the side list of redeclaration spans. Zero means the
// symbol has never been redeclared.
type redeclID uint32

// SymbolTable stores every declared binding and every identifier reference
// of one program.
//
// Symbol rows are packed: span, flags, owning scope, declaring node, name
// and an optional redeclaration index share a single allocation. Spans of
// later declarations are kept out of line so the common case of a symbol
// declared once costs a single zero column entry.
type SymbolTable struct {
	names *arena.Arena

	table  packed.Table
	span   packed.Column[ast.Span]
	flags  packed.Column[SymbolFlags]
	scope  packed.Column[ScopeID]
	decl   packed.Column[ast.NodeID]
	name   packed.Column[arena.Atom]
	redecl packed.Column[redeclID]

	redeclarations [][]ast.Span
	resolved       [][]ReferenceID

	refs      packed.Table
	refNode   packed.Column[ast.NodeID]
	refSymbol packed.Column[SymbolID]
	refFlags  packed.Column[ReferenceFlags]
	refName   packed.Column[arena.Atom]
}

// NewSymbolTable returns an empty table whose names are stored in names.
func NewSymbolTable(names *arena.Arena) *SymbolTable {
	t := &SymbolTable{names: names}
	t.span = packed.AddColumn[ast.Span](&t.table)
	t.flags = packed.AddColumn[SymbolFlags](&t.table)
	t.scope = packed.AddColumn[ScopeID](&t.table)
	t.decl = packed.AddColumn[ast.NodeID](&t.table)
	t.name = packed.AddColumn[arena.Atom](&t.table)
	t.redecl = packed.AddColumn[redeclID](&t.table)

	t.refNode = packed.AddColumn[ast.NodeID](&t.refs)
	t.refSymbol = packed.AddColumn[SymbolID](&t.refs)
	t.refFlags = packed.AddColumn[ReferenceFlags](&t.refs)
	t.refName = packed.AddColumn[arena.Atom](&t.refs)
	return t
}

// Len returns the number of symbols.
func (t *SymbolTable) Len() int { return t.table.Len() }

// CreateSymbol allocates a new symbol. It does not bind the name in any
// scope; see ScopeTree.AddBinding.
func (t *SymbolTable) CreateSymbol(span ast.Span, name string, flags SymbolFlags, scope ScopeID, node ast.NodeID) SymbolID {
	i := t.table.Push()
	t.span.Set(&t.table, i, span)
	t.flags.Set(&t.table, i, flags)
	t.scope.Set(&t.table, i, scope)
	t.decl.Set(&t.table, i, node)
	t.name.Set(&t.table, i, t.names.Alloc(name))
	t.resolved = append(t.resolved, nil)
	return SymbolID(i)
}

// AddRedeclaration records a later declaration of the symbol.
func (t *SymbolTable) AddRedeclaration(id SymbolID, span ast.Span) {
	p := t.redecl.Ptr(&t.table, int(id))
	if *p == 0 {
		t.redeclarations = append(t.redeclarations, nil)
		*p = redeclID(len(t.redeclarations))
	}
	t.redeclarations[*p-1] = append(t.redeclarations[*p-1], span)
}

// Redeclarations returns the spans of every declaration after the first.
func (t *SymbolTable) Redeclarations(id SymbolID) []ast.Span {
	r := t.redecl.Get(&t.table, int(id))
	if r == 0 {
		return nil
	}
	return t.redeclarations[r-1]
}

// Span returns the span of the symbol's first declaring identifier.
func (t *SymbolTable) Span(id SymbolID) ast.Span { return t.span.Get(&t.table, int(id)) }

// Flags returns the union of the flags of every declaration of the symbol.
func (t *SymbolTable) Flags(id SymbolID) SymbolFlags { return t.flags.Get(&t.table, int(id)) }

// Scope returns the scope the symbol is bound in.
func (t *SymbolTable) Scope(id SymbolID) ScopeID { return t.scope.Get(&t.table, int(id)) }

// Declaration returns the node of the symbol's first declaration, such as
// the variable declarator, function or class.
func (t *SymbolTable) Declaration(id SymbolID) ast.NodeID { return t.decl.Get(&t.table, int(id)) }

// UnionFlag adds flags to a symbol.
func (t *SymbolTable) UnionFlag(id SymbolID, flags SymbolFlags) {
	*t.flags.Ptr(&t.table, int(id)) |= flags
}

// Name returns the symbol's current name.
func (t *SymbolTable) Name(id SymbolID) string {
	return t.names.String(t.name.Get(&t.table, int(id)))
}

// SetName renames a symbol in place. Scope binding maps are not updated;
// callers that rename are responsible for avoiding collisions.
func (t *SymbolTable) SetName(id SymbolID, name string) {
	t.name.Set(&t.table, int(id), t.names.Alloc(name))
}

// CreateReference records an identifier use. Resolution is applied with
// AddResolvedReference.
func (t *SymbolTable) CreateReference(ref Reference) ReferenceID {
	i := t.refs.Push()
	t.refNode.Set(&t.refs, i, ref.Node)
	t.refSymbol.Set(&t.refs, i, ref.Symbol)
	t.refFlags.Set(&t.refs, i, ref.Flags)
	t.refName.Set(&t.refs, i, t.names.Alloc(ref.Name))
	id := ReferenceID(i)
	if ref.Symbol != NoSymbol {
		t.resolved[ref.Symbol] = append(t.resolved[ref.Symbol], id)
	}
	return id
}

// NumReferences returns the number of references.
func (t *SymbolTable) NumReferences() int { return t.refs.Len() }

// Reference returns a copy of a reference record.
func (t *SymbolTable) Reference(id ReferenceID) Reference {
	i := int(id)
	return Reference{
		Node:   t.refNode.Get(&t.refs, i),
		Symbol: t.refSymbol.Get(&t.refs, i),
		Flags:  t.refFlags.Get(&t.refs, i),
		Name:   t.names.String(t.refName.Get(&t.refs, i)),
	}
}

// AddResolvedReference resolves ref to sym and records it in the symbol's
// reverse index. A reference resolves at most once; resolving it again to a
// different symbol panics.
func (t *SymbolTable) AddResolvedReference(sym SymbolID, ref ReferenceID) {
	t.checkSymbol(sym)
	p := t.refSymbol.Ptr(&t.refs, int(ref))
	switch *p {
	case sym:
		return
	case NoSymbol:
		*p = sym
	default:
		panic(fmt.Sprintf("semantic: reference %d already resolved to symbol %d", ref, *p))
	}
	t.resolved[sym] = append(t.resolved[sym], ref)
}

// DeleteResolvedReference removes ref from sym's reverse index. The last
// entry is swapped into its place, so the order of the remaining references
// is not preserved. The reference record itself keeps its resolution.
func (t *SymbolTable) DeleteResolvedReference(sym SymbolID, ref ReferenceID) {
	t.checkSymbol(sym)
	list := t.resolved[sym]
	for i, r := range list {
		if r == ref {
			last := len(list) - 1
			list[i] = list[last]
			t.resolved[sym] = list[:last]
			return
		}
	}
}

// ResolvedReferences yields the references resolved to sym.
func (t *SymbolTable) ResolvedReferences(sym SymbolID) iter.Seq2[ReferenceID, Reference] {
	return func(yield func(ReferenceID, Reference) bool) {
		for _, id := range t.ResolvedReferenceIDs(sym) {
			if !yield(id, t.Reference(id)) {
				return
			}
		}
	}
}

// ResolvedReferenceIDs returns the ids of references resolved to sym. The
// slice is owned by the table.
func (t *SymbolTable) ResolvedReferenceIDs(sym SymbolID) []ReferenceID {
	t.checkSymbol(sym)
	return t.resolved[sym]
}

// SymbolIsMutated reports whether any resolved reference writes to the
// symbol. Const-like symbols are never considered mutated.
func (t *SymbolTable) SymbolIsMutated(sym SymbolID) bool {
	if t.Flags(sym).IsConstLike() {
		return false
	}
	for _, id := range t.ResolvedReferenceIDs(sym) {
		if t.refFlags.Get(&t.refs, int(id)).IsWrite() {
			return true
		}
	}
	return false
}

// All yields every symbol id in creation order.
func (t *SymbolTable) All() iter.Seq[SymbolID] {
	return func(yield func(SymbolID) bool) {
		for i := 0; i < t.table.Len(); i++ {
			if !yield(SymbolID(i)) {
				return
			}
		}
	}
}

func (t *SymbolTable) checkSymbol(sym SymbolID) {
	if int(sym) >= t.table.Len() {
		panic(fmt.Sprintf("semantic: symbol %d out of range [0:%d]", sym, t.table.Len()))
	}
}

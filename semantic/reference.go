// Copyright © 2024 The ELPS authors

package semantic

import "github.com/luthersystems/jsem/ast"

// ReferenceID identifies a reference in a SymbolTable.
type ReferenceID uint32

// Reference records one identifier use.
type Reference struct {
	Node   ast.NodeID // the *ast.Identifier
	Symbol SymbolID   // NoSymbol when unresolved
	Flags  ReferenceFlags
	Name   string
}

// IsResolved reports whether the reference is bound to a symbol.
func (r Reference) IsResolved() bool { return r.Symbol != NoSymbol }

// IsRead reports whether the use reads the binding.
func (r Reference) IsRead() bool { return r.Flags.IsRead() }

// IsWrite reports whether the use assigns the binding.
func (r Reference) IsWrite() bool { return r.Flags.IsWrite() }

// NoReference marks a node that is not an identifier reference.
const NoReference ReferenceID = ^ReferenceID(0)

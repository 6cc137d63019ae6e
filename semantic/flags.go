// Copyright © 2024 The ELPS authors

package semantic

import "strings"

// ScopeFlags describe the construct that introduced a scope.
type ScopeFlags uint16

const (
	ScopeTop ScopeFlags = 1 << iota
	ScopeFunction
	ScopeArrow
	ScopeClassStaticBlock
	ScopeTsModuleBlock
	ScopeConstructor
	ScopeGetAccessor
	ScopeSetAccessor
	ScopeBlock
	ScopeLoop
	ScopeSwitch
	ScopeCatchClause
	ScopeClass
	ScopeEnum
	ScopeStrictMode

	// ScopeVar marks scopes that receive hoisted var declarations.
	ScopeVar = ScopeTop | ScopeFunction | ScopeClassStaticBlock | ScopeTsModuleBlock
	// ScopeModifiers are flags inherited by child scopes.
	ScopeModifiers = ScopeStrictMode
)

var scopeFlagNames = []string{
	"top", "function", "arrow", "class-static-block", "ts-module-block",
	"constructor", "get-accessor", "set-accessor", "block", "loop", "switch",
	"catch-clause", "class", "enum", "strict",
}

// Has reports whether every bit of o is set in f.
func (f ScopeFlags) Has(o ScopeFlags) bool { return f&o == o }

// Intersects reports whether f and o share any bit.
func (f ScopeFlags) Intersects(o ScopeFlags) bool { return f&o != 0 }

// IsVar reports whether the scope receives hoisted var declarations.
func (f ScopeFlags) IsVar() bool { return f.Intersects(ScopeVar) }

// IsStrict reports whether code in the scope runs in strict mode.
func (f ScopeFlags) IsStrict() bool { return f.Has(ScopeStrictMode) }

func (f ScopeFlags) String() string { return flagString(uint32(f), scopeFlagNames) }

// SymbolFlags describe the kind and modifiers of a declared binding.
type SymbolFlags uint32

const (
	SymbolFunctionScopedVariable SymbolFlags = 1 << iota
	SymbolBlockScopedVariable
	SymbolConstVariable
	SymbolFunction
	SymbolClass
	SymbolCatchVariable
	SymbolParameter
	SymbolImport
	SymbolTypeImport
	SymbolTypeAlias
	SymbolInterface
	SymbolRegularEnum
	SymbolConstEnum
	SymbolEnumMember
	SymbolNameSpaceModule
	SymbolValueModule
	SymbolExport
	SymbolAmbient

	SymbolVariable = SymbolFunctionScopedVariable | SymbolBlockScopedVariable
	SymbolEnum     = SymbolRegularEnum | SymbolConstEnum
	SymbolValue    = SymbolVariable | SymbolFunction | SymbolClass | SymbolEnum |
		SymbolEnumMember | SymbolValueModule | SymbolImport
	SymbolType = SymbolClass | SymbolInterface | SymbolEnum | SymbolEnumMember |
		SymbolTypeAlias | SymbolTypeImport
)

var symbolFlagNames = []string{
	"var", "let", "const", "function", "class", "catch", "param", "import",
	"type-import", "type-alias", "interface", "enum", "const-enum",
	"enum-member", "namespace", "value-module", "export", "ambient",
}

// Has reports whether every bit of o is set in f.
func (f SymbolFlags) Has(o SymbolFlags) bool { return f&o == o }

// Intersects reports whether f and o share any bit.
func (f SymbolFlags) Intersects(o SymbolFlags) bool { return f&o != 0 }

// IsConstLike reports whether the binding can never be reassigned through a
// resolved reference: const declarations and import bindings.
func (f SymbolFlags) IsConstLike() bool {
	return f.Intersects(SymbolConstVariable | SymbolImport | SymbolTypeImport)
}

// IsVariable reports a var, let or const binding.
func (f SymbolFlags) IsVariable() bool { return f.Intersects(SymbolVariable) }

// IsValue reports whether the binding exists in the value space.
func (f SymbolFlags) IsValue() bool { return f.Intersects(SymbolValue) }

// IsType reports whether the binding exists in the type space. Classes and
// enums are both values and types.
func (f SymbolFlags) IsType() bool { return f.Intersects(SymbolType) }

// IsEnum reports a regular or const enum.
func (f SymbolFlags) IsEnum() bool { return f.Intersects(SymbolEnum) }

// IsTypeOnly reports whether the binding exists only in the type space.
func (f SymbolFlags) IsTypeOnly() bool { return f.IsType() && !f.IsValue() }

func (f SymbolFlags) String() string { return flagString(uint32(f), symbolFlagNames) }

// ReferenceFlags classify an identifier use.
type ReferenceFlags uint8

const (
	ReferenceRead ReferenceFlags = 1 << iota
	ReferenceWrite

	ReferenceReadWrite = ReferenceRead | ReferenceWrite
)

func (f ReferenceFlags) IsRead() bool { return f&ReferenceRead != 0 }
func (f ReferenceFlags) IsWrite() bool { return f&ReferenceWrite != 0 }

func (f ReferenceFlags) String() string {
	switch f {
	case ReferenceRead:
		return "read"
	case ReferenceWrite:
		return "write"
	case ReferenceReadWrite:
		return "read|write"
	default:
		return "none"
	}
}

func flagString(bits uint32, names []string) string {
	if bits == 0 {
		return ""
	}
	var parts []string
	for i, name := range names {
		if bits&(1<<i) != 0 {
			parts = append(parts, name)
		}
	}
	return strings.Join(parts, "|")
}

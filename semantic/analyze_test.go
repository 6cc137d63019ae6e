// Copyright © 2024 The ELPS authors

package semantic

import (
	"testing"

	"github.com/luthersystems/jsem/ast"
	"github.com/luthersystems/jsem/cfg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func analyze(t *testing.T, prog *ast.Program) *Semantic {
	t.Helper()
	sem := Analyze(prog, &Config{CFG: true, Filename: "test.ts"})
	require.NotNil(t, sem)
	checkScopeNesting(t, sem)
	checkResolution(t, sem)
	return sem
}

// checkScopeNesting verifies every scope except the root has an earlier
// parent and that the ancestor chain ends at the root.
func checkScopeNesting(t *testing.T, sem *Semantic) {
	t.Helper()
	root := sem.Scopes.Root()
	for i := 1; i < sem.Scopes.Len(); i++ {
		id := ScopeID(i)
		parent := sem.Scopes.Parent(id)
		require.NotEqual(t, NoScope, parent)
		assert.Less(t, uint32(parent), uint32(id))
		var last ScopeID
		for s := range sem.Scopes.Ancestors(id) {
			last = s
		}
		assert.Equal(t, root, last)
	}
}

// checkResolution verifies that every resolved reference names a symbol
// with the same name bound in an enclosing scope of the reference.
func checkResolution(t *testing.T, sem *Semantic) {
	t.Helper()
	for id := range sem.Symbols.All() {
		for _, ref := range sem.Symbols.ResolvedReferences(id) {
			assert.Equal(t, sem.SymbolName(id), ref.Name)
			got, ok := sem.Scopes.Binding(sem.Symbols.Scope(id), ref.Name)
			assert.True(t, ok)
			assert.Equal(t, id, got)
		}
	}
}

func symbolNamed(t *testing.T, sem *Semantic, name string) SymbolID {
	t.Helper()
	for id := range sem.Symbols.All() {
		if sem.SymbolName(id) == name {
			return id
		}
	}
	require.Failf(t, "missing symbol", "no symbol named %q", name)
	return NoSymbol
}

func resolvedTo(t *testing.T, sem *Semantic, id *ast.Identifier) SymbolID {
	t.Helper()
	ref, ok := sem.ReferenceOf(id.ID)
	require.True(t, ok, "no reference for %s", id.Name)
	return sem.Symbols.Reference(ref).Symbol
}

func TestAnalyze_EndToEnd(t *testing.T) {
	// const x = 1; function f(y) { return x + y; }
	b := ast.NewBuilder()
	x, y := b.Ident("x"), b.Ident("y")
	fn := b.Func("f", b.Params("y"), b.Return(b.Binary(ast.Add, x, y)))
	prog := b.Program(b.Const("x", b.Num(1)), fn)
	sem := analyze(t, prog)

	require.Equal(t, 3, sem.Symbols.Len())
	symX := symbolNamed(t, sem, "x")
	symF := symbolNamed(t, sem, "f")
	symY := symbolNamed(t, sem, "y")

	root := sem.Scopes.Root()
	fnScope, ok := sem.ScopeOf(fn.ID)
	require.True(t, ok)
	assert.Equal(t, root, sem.Symbols.Scope(symX))
	assert.Equal(t, root, sem.Symbols.Scope(symF))
	assert.Equal(t, fnScope, sem.Symbols.Scope(symY))
	assert.True(t, sem.Symbols.Flags(symX).IsConstLike())
	assert.True(t, sem.Symbols.Flags(symY).Has(SymbolParameter))
	assert.Equal(t, []string{"x", "f"}, sem.Scopes.Bindings(root).Names())

	assert.Equal(t, symX, resolvedTo(t, sem, x))
	assert.Equal(t, symY, resolvedTo(t, sem, y))
	assert.Empty(t, sem.Unresolved)
	assert.Empty(t, sem.Errors)

	blocks := sem.CFG.FunctionBlocks(fn.ID)
	assert.LessOrEqual(t, len(blocks), 2)
	for _, id := range blocks {
		assert.False(t, sem.CFG.Block(id).IsUnreachable())
	}
}

func TestAnalyze_Shadowing(t *testing.T) {
	// let a = 1; { let a = 2; a; } a;
	b := ast.NewBuilder()
	inner, outer := b.Ident("a"), b.Ident("a")
	block := b.Block(b.Let("a", b.Num(2)), b.Expr(inner))
	prog := b.Program(b.Let("a", b.Num(1)), block, b.Expr(outer))
	sem := analyze(t, prog)

	blockScope, ok := sem.ScopeOf(block.ID)
	require.True(t, ok)
	innerSym := resolvedTo(t, sem, inner)
	outerSym := resolvedTo(t, sem, outer)
	assert.NotEqual(t, innerSym, outerSym)
	assert.Equal(t, blockScope, sem.Symbols.Scope(innerSym))
	assert.Equal(t, sem.Scopes.Root(), sem.Symbols.Scope(outerSym))
}

func TestAnalyze_Hoisting(t *testing.T) {
	// f(); function f() { { var v = 1; } return v; }
	b := ast.NewBuilder()
	call := b.Ident("f")
	v := b.Ident("v")
	inner := b.Block(b.Var("v", b.Num(1)))
	fn := b.Func("f", nil, inner, b.Return(v))
	prog := b.Program(b.Expr(b.Call(call)), fn)
	sem := analyze(t, prog)

	assert.Equal(t, symbolNamed(t, sem, "f"), resolvedTo(t, sem, call))
	symV := resolvedTo(t, sem, v)
	require.NotEqual(t, NoSymbol, symV)
	fnScope, _ := sem.ScopeOf(fn.ID)
	assert.Equal(t, fnScope, sem.Symbols.Scope(symV))
	assert.True(t, sem.Symbols.Flags(symV).Has(SymbolFunctionScopedVariable))
}

func TestAnalyze_PendingResolution(t *testing.T) {
	// function f(a = b, b) {}
	b := ast.NewBuilder()
	ref := b.Ident("b")
	fn := b.Func("f", []ast.Pattern{b.Default(b.Bind("a"), ref), b.Bind("b")})
	sem := analyze(t, b.Program(fn))

	sym := resolvedTo(t, sem, ref)
	assert.Equal(t, "b", sem.SymbolName(sym))
	assert.Empty(t, sem.Unresolved)
}

func TestAnalyze_Redeclaration(t *testing.T) {
	// var a = 1; var a = 2; a;
	b := ast.NewBuilder()
	use := b.Ident("a")
	prog := b.Program(b.Var("a", b.Num(1)), b.Var("a", b.Num(2)), b.Expr(use))
	sem := analyze(t, prog)

	require.Equal(t, 1, sem.Symbols.Len())
	sym := symbolNamed(t, sem, "a")
	assert.Len(t, sem.Symbols.Redeclarations(sym), 1)
	assert.Equal(t, sym, resolvedTo(t, sem, use))

	// Analyzing the same tree again yields the same model.
	again := Analyze(prog, nil)
	assert.Equal(t, sem.Symbols.Len(), again.Symbols.Len())
	assert.Len(t, again.Symbols.Redeclarations(0), 1)
}

func TestAnalyze_Mutation(t *testing.T) {
	// let m = 0; m++; let n = 0; n += 1; const c = 1; c = 2; let r = 0; r;
	b := ast.NewBuilder()
	mUse, nUse, cUse, rUse := b.Ident("m"), b.Ident("n"), b.Ident("c"), b.Ident("r")
	prog := b.Program(
		b.Let("m", b.Num(0)), b.Expr(b.Update(ast.Increment, false, mUse)),
		b.Let("n", b.Num(0)), b.Expr(b.Assign(ast.AssignAdd, nUse, b.Num(1))),
		b.Const("c", b.Num(1)), b.Expr(b.Assign(ast.Assign, cUse, b.Num(2))),
		b.Let("r", b.Num(0)), b.Expr(rUse),
	)
	sem := analyze(t, prog)

	tests := []struct {
		name    string
		use     *ast.Identifier
		flags   ReferenceFlags
		mutated bool
	}{
		{"m", mUse, ReferenceReadWrite, true},
		{"n", nUse, ReferenceReadWrite, true},
		{"c", cUse, ReferenceWrite, false},
		{"r", rUse, ReferenceRead, false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			ref, ok := sem.ReferenceOf(test.use.ID)
			require.True(t, ok)
			assert.Equal(t, test.flags, sem.Symbols.Reference(ref).Flags)
			sym := symbolNamed(t, sem, test.name)
			assert.Equal(t, test.mutated, sem.Symbols.SymbolIsMutated(sym))
		})
	}
}

func TestAnalyze_DestructuringWrites(t *testing.T) {
	// let p, q; [p, q] = arr; for (p of arr) {}
	b := ast.NewBuilder()
	p1, q1, p2 := b.Ident("p"), b.Ident("q"), b.Ident("p")
	decl := b.Decl(ast.Let, b.Declarator(b.Bind("p"), nil), b.Declarator(b.Bind("q"), nil))
	prog := b.Program(
		decl,
		b.Expr(b.Assign(ast.Assign, b.ArrPat(p1, q1), b.Ident("arr"))),
		b.ForOf(p2, b.Ident("arr"), b.Block()),
	)
	sem := analyze(t, prog)

	for _, id := range []*ast.Identifier{p1, q1, p2} {
		ref, ok := sem.ReferenceOf(id.ID)
		require.True(t, ok)
		assert.Equal(t, ReferenceWrite, sem.Symbols.Reference(ref).Flags)
	}
	assert.True(t, sem.Symbols.SymbolIsMutated(symbolNamed(t, sem, "q")))
	assert.Len(t, sem.Unresolved["arr"], 2)
}

func TestAnalyze_Unresolved(t *testing.T) {
	// console.log(z); interface I {} I;
	b := ast.NewBuilder()
	prog := b.Program(
		b.Expr(b.Call(b.Member(b.Ident("console"), "log"), b.Ident("z"))),
		b.Interface("I"),
		b.Expr(b.Ident("I")),
	)
	sem := analyze(t, prog)

	assert.Equal(t, []string{"I", "console", "z"}, sem.UnresolvedNames())
	for _, refs := range sem.Unresolved {
		for _, ref := range refs {
			assert.True(t, sem.IsUnresolved(ref))
		}
	}
}

func TestAnalyze_ScopeKinds(t *testing.T) {
	b := ast.NewBuilder()
	method := b.Method("get", ast.MethodGet, false, b.FuncExpr("", nil))
	ctor := b.Method("constructor", ast.MethodConstructor, false, b.FuncExpr("", nil))
	static := b.StaticBlock(b.Var("s", nil))
	class := b.Class("C", nil, ctor, method, static)
	arrow := b.ArrowExpr(nil, b.Num(1))
	loop := b.For(b.Let("i", b.Num(0)), nil, nil, b.Block(b.Break("")))
	sw := b.Switch(b.Ident("k"), b.Case(nil, b.Let("inCase", nil)))
	try := b.Try(b.Block(), b.Bind("e"), b.Block(), nil)
	enum := b.Enum("E", b.EnumMember("A", nil))
	ns := b.Namespace("N", b.Var("inner", nil))
	prog := b.Program(class, b.Expr(arrow), loop, sw, try, enum, ns)
	sem := analyze(t, prog)

	tests := []struct {
		name  string
		node  ast.NodeID
		flags ScopeFlags
	}{
		{"program", prog.ID, ScopeTop},
		{"class", class.ID, ScopeClass | ScopeStrictMode},
		{"getter", method.Value.ID, ScopeFunction | ScopeGetAccessor | ScopeStrictMode},
		{"constructor", ctor.Value.ID, ScopeFunction | ScopeConstructor | ScopeStrictMode},
		{"static block", static.ID, ScopeClassStaticBlock | ScopeStrictMode},
		{"arrow", arrow.ID, ScopeFunction | ScopeArrow},
		{"for", loop.ID, ScopeLoop},
		{"switch", sw.ID, ScopeSwitch},
		{"catch", try.Handler.ID, ScopeCatchClause},
		{"enum", enum.ID, ScopeEnum},
		{"namespace", ns.ID, ScopeTsModuleBlock},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			id, ok := sem.ScopeOf(test.node)
			require.True(t, ok)
			assert.Equal(t, test.flags, sem.Scopes.Flags(id))
		})
	}

	scopeOfSymbol := func(name string) ScopeID { return sem.Symbols.Scope(symbolNamed(t, sem, name)) }
	staticScope, _ := sem.ScopeOf(static.ID)
	loopScope, _ := sem.ScopeOf(loop.ID)
	switchScope, _ := sem.ScopeOf(sw.ID)
	catchScope, _ := sem.ScopeOf(try.Handler.ID)
	enumScope, _ := sem.ScopeOf(enum.ID)
	nsScope, _ := sem.ScopeOf(ns.ID)
	assert.Equal(t, staticScope, scopeOfSymbol("s"))
	assert.Equal(t, loopScope, scopeOfSymbol("i"))
	assert.Equal(t, switchScope, scopeOfSymbol("inCase"))
	assert.Equal(t, catchScope, scopeOfSymbol("e"))
	assert.Equal(t, enumScope, scopeOfSymbol("A"))
	assert.Equal(t, nsScope, scopeOfSymbol("inner"))
	assert.True(t, sem.Symbols.Flags(symbolNamed(t, sem, "e")).Has(SymbolCatchVariable))
	assert.True(t, sem.Symbols.Flags(symbolNamed(t, sem, "A")).Has(SymbolEnumMember))
	assert.True(t, sem.Symbols.Flags(symbolNamed(t, sem, "N")).Has(SymbolNameSpaceModule))
}

func TestAnalyze_StrictMode(t *testing.T) {
	b := ast.NewBuilder()
	fn := b.Func("f", nil, b.Expr(b.Str("use strict")))
	other := b.Func("g", nil)
	sem := analyze(t, b.Program(fn, other))

	fnScope, _ := sem.ScopeOf(fn.ID)
	otherScope, _ := sem.ScopeOf(other.ID)
	assert.False(t, sem.IsStrict(sem.Scopes.Root()))
	assert.True(t, sem.IsStrict(fnScope))
	assert.False(t, sem.IsStrict(otherScope))

	b = ast.NewBuilder()
	fn = b.Func("f", nil)
	sem = analyze(t, b.Module(fn))
	fnScope, _ = sem.ScopeOf(fn.ID)
	assert.True(t, sem.IsStrict(sem.Scopes.Root()))
	assert.True(t, sem.IsStrict(fnScope))
}

func TestAnalyze_With(t *testing.T) {
	// var a = 0; with (o) { a = 1; undeclared(); var b; } a;
	b := ast.NewBuilder()
	aWrite, aRead := b.Ident("a"), b.Ident("a")
	first := b.Expr(b.Assign(ast.Assign, aWrite, b.Num(1)))
	after := b.Expr(aRead)
	with := b.With(b.Ident("o"), b.Block(
		first,
		b.Expr(b.Call(b.Ident("undeclared"))),
		b.Var("b", nil),
	))
	sem := analyze(t, b.Program(b.Var("a", b.Num(0)), with, after))

	assert.Empty(t, sem.Errors)
	root := sem.Scopes.Root()
	assert.Equal(t, root, sem.Symbols.Scope(symbolNamed(t, sem, "b")))
	assert.ElementsMatch(t, []string{"a", "b"}, sem.Scopes.Bindings(root).Names())

	ref, ok := sem.ReferenceOf(aWrite.ID)
	require.True(t, ok)
	assert.Equal(t, ReferenceWrite, sem.Symbols.Reference(ref).Flags)
	assert.Equal(t, symbolNamed(t, sem, "a"), resolvedTo(t, sem, aWrite))
	assert.Equal(t, symbolNamed(t, sem, "a"), resolvedTo(t, sem, aRead))
	assert.Equal(t, []string{"o", "undeclared"}, sem.UnresolvedNames())

	t.Run("control flow", func(t *testing.T) {
		before, ok := sem.BlockOf(with.ID)
		require.True(t, ok)
		body, ok := sem.BlockOf(first.ID)
		require.True(t, ok)
		tail, ok := sem.BlockOf(after.ID)
		require.True(t, ok)
		assert.NotEqual(t, before, body)
		assert.False(t, sem.CFG.Block(body).IsUnreachable())
		assert.False(t, sem.CFG.Block(tail).IsUnreachable())
		require.Equal(t, 1, sem.CFG.InDegree(body))
		var object cfg.BlockID
		for e := range sem.CFG.Incoming(body) {
			object = e.From
		}
		assert.True(t, sem.CFG.HasEdge(before, object, cfg.EdgeNormal))
		assert.True(t, sem.CFG.HasEdge(object, body, cfg.EdgeNormal))
		assert.True(t, sem.CFG.HasEdge(object, tail, cfg.EdgeNormal))
	})

	t.Run("strict mode", func(t *testing.T) {
		b := ast.NewBuilder()
		sem := analyze(t, b.Module(b.With(b.Ident("o"), b.Block())))
		require.Len(t, sem.Errors, 1)
		assert.Equal(t, "'with' statement is not allowed in strict mode", sem.Errors[0].Msg)
	})
}

func TestAnalyze_Enums(t *testing.T) {
	// enum E { A, B = A } enum E { C }
	b := ast.NewBuilder()
	ref := b.Ident("A")
	first := b.Enum("E", b.EnumMember("A", nil), b.EnumMember("B", ref))
	second := b.Enum("E", b.EnumMember("C", nil))
	sem := analyze(t, b.Program(first, second))

	enums := sem.Enums()
	require.Len(t, enums, 2)
	assert.Same(t, first, enums[0].Decl)
	assert.Equal(t, enums[0].Symbol, enums[1].Symbol)
	assert.NotEqual(t, enums[0].Scope, enums[1].Scope)
	assert.Len(t, sem.Symbols.Redeclarations(enums[0].Symbol), 1)
	assert.True(t, sem.Symbols.Flags(enums[0].Symbol).Has(SymbolRegularEnum))

	a, ok := sem.SymbolOf(first.Members[0].Name.ID)
	require.True(t, ok)
	assert.Equal(t, a, resolvedTo(t, sem, ref))

	t.Run("merged members", func(t *testing.T) {
		// enum F { A = 1 } enum F { B = A, C = D } enum F { D = B }
		b := ast.NewBuilder()
		toA, toD, toB := b.Ident("A"), b.Ident("D"), b.Ident("B")
		first := b.Enum("F", b.EnumMember("A", b.Num(1)))
		second := b.Enum("F", b.EnumMember("B", toA), b.EnumMember("C", toD))
		third := b.Enum("F", b.EnumMember("D", toB))
		sem := analyze(t, b.Program(first, second, third))

		a, _ := sem.SymbolOf(first.Members[0].Name.ID)
		bSym, _ := sem.SymbolOf(second.Members[0].Name.ID)
		assert.Equal(t, a, resolvedTo(t, sem, toA))
		assert.Equal(t, bSym, resolvedTo(t, sem, toB))
		assert.Equal(t, []string{"D"}, sem.UnresolvedNames())
	})
	t.Run("distinct enums", func(t *testing.T) {
		// enum G { A } enum H { B = A }
		b := ast.NewBuilder()
		toA := b.Ident("A")
		sem := analyze(t, b.Program(
			b.Enum("G", b.EnumMember("A", nil)),
			b.Enum("H", b.EnumMember("B", toA)),
		))
		assert.Equal(t, []string{"A"}, sem.UnresolvedNames())
	})
}

func TestAnalyze_Exports(t *testing.T) {
	// let e = 1; export { e }; export const k = 1; import { d } from "m";
	b := ast.NewBuilder()
	prog := b.Module(
		b.Let("e", b.Num(1)),
		b.ExportNames("e"),
		b.Export(b.Const("k", b.Num(1))),
		b.Import("m", b.ImportSpec(ast.ImportNamed, "d", "d")),
	)
	sem := analyze(t, prog)

	assert.True(t, sem.Symbols.Flags(symbolNamed(t, sem, "e")).Has(SymbolExport))
	assert.True(t, sem.Symbols.Flags(symbolNamed(t, sem, "k")).Has(SymbolExport))
	d := sem.Symbols.Flags(symbolNamed(t, sem, "d"))
	assert.True(t, d.Has(SymbolImport))
	assert.True(t, d.IsConstLike())
}

func TestAnalyze_JumpErrors(t *testing.T) {
	b := ast.NewBuilder()
	prog := b.Program(
		b.Break(""),
		b.Labeled("a", b.Block(b.Break("b"))),
		b.Switch(b.Ident("k"), b.Case(nil, b.Continue(""))),
	)
	sem := analyze(t, prog)

	require.Len(t, sem.Errors, 3)
	assert.Equal(t, "illegal break statement", sem.Errors[0].Msg)
	assert.Equal(t, "undefined label 'b'", sem.Errors[1].Msg)
	assert.Equal(t, "illegal continue statement", sem.Errors[2].Msg)
	assert.Contains(t, sem.Errors[0].Error(), "test.ts:")
}

func TestAnalyze_UnreachableCode(t *testing.T) {
	unreachable := func(t *testing.T, sem *Semantic, s ast.Statement) bool {
		t.Helper()
		id, ok := sem.BlockOf(s.NodeID())
		require.True(t, ok)
		return sem.CFG.Block(id).IsUnreachable()
	}

	t.Run("after return", func(t *testing.T) {
		b := ast.NewBuilder()
		dead := b.Expr(b.Call(b.Ident("foo")))
		sem := analyze(t, b.Program(b.Func("h", nil, b.Return(nil), dead)))
		assert.True(t, unreachable(t, sem, dead))
	})
	t.Run("after infinite loop", func(t *testing.T) {
		b := ast.NewBuilder()
		dead := b.Expr(b.Call(b.Ident("after")))
		sem := analyze(t, b.Program(b.While(b.Bool(true), b.Block()), dead))
		assert.True(t, unreachable(t, sem, dead))
	})
	t.Run("loop with break", func(t *testing.T) {
		b := ast.NewBuilder()
		live := b.Expr(b.Call(b.Ident("after")))
		sem := analyze(t, b.Program(b.While(b.Bool(true), b.Block(b.Break(""))), live))
		assert.False(t, unreachable(t, sem, live))
	})
	t.Run("both branches return", func(t *testing.T) {
		b := ast.NewBuilder()
		dead := b.Expr(b.Call(b.Ident("tail")))
		ifs := b.If(b.Ident("a"), b.Block(b.Return(b.Num(1))), b.Block(b.Return(b.Num(2))))
		sem := analyze(t, b.Program(b.Func("k", b.Params("a"), ifs, dead)))
		assert.True(t, unreachable(t, sem, dead))
	})
	t.Run("one branch returns", func(t *testing.T) {
		b := ast.NewBuilder()
		live := b.Expr(b.Call(b.Ident("tail")))
		ifs := b.If(b.Ident("a"), b.Block(b.Return(b.Num(1))), nil)
		sem := analyze(t, b.Program(b.Func("k", b.Params("a"), ifs, live)))
		assert.False(t, unreachable(t, sem, live))
	})
	t.Run("labeled block", func(t *testing.T) {
		b := ast.NewBuilder()
		dead := b.Expr(b.Call(b.Ident("x")))
		live := b.Expr(b.Call(b.Ident("y")))
		sem := analyze(t, b.Program(b.Labeled("a", b.Block(b.Break("a"), dead)), live))
		assert.True(t, unreachable(t, sem, dead))
		assert.False(t, unreachable(t, sem, live))
	})
	t.Run("try finally after return", func(t *testing.T) {
		b := ast.NewBuilder()
		dead := b.Expr(b.Call(b.Ident("z")))
		try := b.Try(b.Block(b.Return(nil)), nil, nil, b.Block(b.Expr(b.Call(b.Ident("cleanup")))))
		sem := analyze(t, b.Program(b.Func("t", nil, try, dead)))
		assert.False(t, unreachable(t, sem, try.Finalizer.Body[0]))
		assert.True(t, unreachable(t, sem, dead))
	})
}

func TestAnalyze_ControlFlowEdges(t *testing.T) {
	t.Run("throw reaches catch", func(t *testing.T) {
		b := ast.NewBuilder()
		throw := b.Throw(b.Ident("err"))
		handled := b.Expr(b.Call(b.Ident("handle")))
		try := b.Try(b.Block(throw), b.Bind("e"), b.Block(handled), nil)
		sem := analyze(t, b.Program(try))

		from, ok := sem.BlockOf(throw.ID)
		require.True(t, ok)
		to, ok := sem.BlockOf(handled.ID)
		require.True(t, ok)
		assert.True(t, sem.CFG.HasEdge(from, to, cfg.EdgeNormal))
		assert.False(t, sem.CFG.Block(to).IsUnreachable())
	})
	t.Run("loop backedge", func(t *testing.T) {
		b := ast.NewBuilder()
		body := b.Expr(b.Call(b.Ident("step")))
		loop := b.While(b.Ident("cond"), body)
		sem := analyze(t, b.Program(loop))

		from, _ := sem.BlockOf(body.ID)
		backedges := 0
		for e := range sem.CFG.Outgoing(from) {
			if e.Kind == cfg.EdgeBackedge {
				backedges++
			}
		}
		assert.Equal(t, 1, backedges)
	})
	t.Run("closure defined after throw", func(t *testing.T) {
		b := ast.NewBuilder()
		throw := b.Throw(b.Ident("err"))
		fn := b.Func("late", nil)
		sem := analyze(t, b.Program(throw, fn))

		thrower, _ := sem.BlockOf(throw.ID)
		entry := sem.CFG.Functions[fn.ID]
		assert.True(t, sem.CFG.HasEdge(thrower, entry, cfg.EdgeNewFunction))
		assert.True(t, sem.CFG.IsReachable(entry))
	})
	t.Run("declarators", func(t *testing.T) {
		b := ast.NewBuilder()
		decl := b.Decl(ast.Let, b.Declarator(b.Bind("u"), nil), b.Declarator(b.Bind("w"), b.Num(1)))
		prog := b.Program(decl)
		sem := analyze(t, prog)

		ins := sem.CFG.Block(0).Instructions
		require.Len(t, ins, 2)
		assert.Equal(t, cfg.ImplicitUndefined, ins[0].Value)
		assert.Equal(t, cfg.NotImplicitUndefined, ins[1].Value)
		assert.Equal(t, uint32(2), sem.CFG.Registers[prog.ID])
	})
}

func TestAnalyze_WithoutCFG(t *testing.T) {
	b := ast.NewBuilder()
	stmt := b.Expr(b.Num(1))
	sem := Analyze(b.Program(stmt), &Config{})
	assert.Nil(t, sem.CFG)
	_, ok := sem.BlockOf(stmt.ID)
	assert.False(t, ok)
}

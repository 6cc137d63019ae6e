// Copyright © 2024 The ELPS authors

package constenum

import (
	"math"
	"testing"

	"github.com/luthersystems/jsem/ast"
	"github.com/luthersystems/jsem/semantic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func evaluate(t *testing.T, prog *ast.Program) (*semantic.Semantic, *Result) {
	t.Helper()
	sem := semantic.Analyze(prog, &semantic.Config{Filename: "enum.ts"})
	require.NotNil(t, sem)
	return sem, Evaluate(sem)
}

// members returns the folded members of the first enum in the program.
func members(t *testing.T, sem *semantic.Semantic, r *Result) *Members {
	t.Helper()
	enums := sem.Enums()
	require.NotEmpty(t, enums)
	m, ok := r.Enum(enums[0].Symbol)
	require.True(t, ok)
	return m
}

func TestEvaluate_ImplicitValues(t *testing.T) {
	// enum E { A, B = 5, C, D = "x", F }
	b := ast.NewBuilder()
	prog := b.Program(b.Enum("E",
		b.EnumMember("A", nil),
		b.EnumMember("B", b.Num(5)),
		b.EnumMember("C", nil),
		b.EnumMember("D", b.Str("x")),
		b.EnumMember("F", nil),
	))
	sem, r := evaluate(t, prog)
	m := members(t, sem, r)

	assert.Equal(t, []string{"A", "B", "C", "D"}, m.Names())
	assert.Equal(t, NumberValue(0), mustGet(t, m, "A"))
	assert.Equal(t, NumberValue(5), mustGet(t, m, "B"))
	assert.Equal(t, NumberValue(6), mustGet(t, m, "C"))
	assert.Equal(t, StringValue("x"), mustGet(t, m, "D"))
	_, ok := m.Get("F")
	assert.False(t, ok)
}

func mustGet(t *testing.T, m *Members, name string) Value {
	t.Helper()
	v, ok := m.Get(name)
	require.True(t, ok, "member %s", name)
	return v
}

func TestEvaluate_MemberReferences(t *testing.T) {
	// enum E { A = 1 << 2, B = A | 1, C = E.B * 2, D = E["C"] + 1, S = "a" + A, T = `${D}!` }
	b := ast.NewBuilder()
	prog := b.Program(b.Enum("E",
		b.EnumMember("A", b.Binary(ast.ShiftLeft, b.Num(1), b.Num(2))),
		b.EnumMember("B", b.Binary(ast.BitOr, b.Ident("A"), b.Num(1))),
		b.EnumMember("C", b.Binary(ast.Mul, b.Member(b.Ident("E"), "B"), b.Num(2))),
		b.EnumMember("D", b.Binary(ast.Add, b.Index(b.Ident("E"), b.Str("C")), b.Num(1))),
		b.EnumMember("S", b.Binary(ast.Add, b.Str("a"), b.Paren(b.Ident("A")))),
		b.EnumMember("T", b.Template([]string{"", "!"}, b.Ident("D"))),
	))
	sem, r := evaluate(t, prog)
	m := members(t, sem, r)

	want := map[string]Value{
		"A": NumberValue(4),
		"B": NumberValue(5),
		"C": NumberValue(10),
		"D": NumberValue(11),
		"S": StringValue("a4"),
		"T": StringValue("11!"),
	}
	for name, v := range m.All() {
		assert.True(t, want[name].Equal(v), "%s = %s", name, v.Text())
	}
	assert.Equal(t, len(want), m.Len())
}

func TestEvaluate_NotConstant(t *testing.T) {
	// const X = 1;
	// enum Other { K = 1 }
	// enum E { A = f(), B, C = Other.K, D = X, L = Later, Later = 2, M }
	b := ast.NewBuilder()
	prog := b.Program(
		b.Enum("E",
			b.EnumMember("A", b.Call(b.Ident("f"))),
			b.EnumMember("B", nil),
			b.EnumMember("C", b.Member(b.Ident("Other"), "K")),
			b.EnumMember("D", b.Ident("X")),
			b.EnumMember("L", b.Ident("Later")),
			b.EnumMember("Later", b.Num(2)),
			b.EnumMember("M", nil),
		),
		b.Const("X", b.Num(1)),
		b.Enum("Other", b.EnumMember("K", b.Num(1))),
	)
	sem, r := evaluate(t, prog)
	m := members(t, sem, r)

	assert.Equal(t, []string{"Later", "M"}, m.Names())
	assert.Equal(t, NumberValue(3), mustGet(t, m, "M"))

	other, ok := r.Lookup(sem.Enums()[1].Symbol, "K")
	require.True(t, ok)
	assert.Equal(t, NumberValue(1), other)
}

func TestEvaluate_FoldOnlyKinds(t *testing.T) {
	// enum E { T = !0, N = T + 1, Big = 10n, Twice = Big * 2n, After, Mixed = Big + 1 }
	b := ast.NewBuilder()
	prog := b.Program(b.Enum("E",
		b.EnumMember("T", b.Unary(ast.UnaryNot, b.Num(0))),
		b.EnumMember("N", b.Binary(ast.Add, b.Ident("T"), b.Num(1))),
		b.EnumMember("Big", b.BigInt("10")),
		b.EnumMember("Twice", b.Binary(ast.Mul, b.Ident("Big"), b.BigInt("2"))),
		b.EnumMember("After", nil),
		b.EnumMember("Mixed", b.Binary(ast.Add, b.Ident("Big"), b.Num(1))),
	))
	sem, r := evaluate(t, prog)
	m := members(t, sem, r)

	assert.Equal(t, []string{"N"}, m.Names())
	assert.Equal(t, NumberValue(2), mustGet(t, m, "N"))
}

func TestEvaluate_GlobalNumbers(t *testing.T) {
	// enum E { I = Infinity, N = -NaN, D = 1 / 0, R = -7 % 3 }
	b := ast.NewBuilder()
	prog := b.Program(b.Enum("E",
		b.EnumMember("I", b.Ident("Infinity")),
		b.EnumMember("N", b.Unary(ast.UnaryMinus, b.Ident("NaN"))),
		b.EnumMember("D", b.Binary(ast.Div, b.Num(1), b.Num(0))),
		b.EnumMember("R", b.Binary(ast.Rem, b.Unary(ast.UnaryMinus, b.Num(7)), b.Num(3))),
	))
	sem, r := evaluate(t, prog)
	m := members(t, sem, r)

	assert.True(t, math.IsInf(mustGet(t, m, "I").Number, 1))
	assert.True(t, math.IsNaN(mustGet(t, m, "N").Number))
	assert.True(t, math.IsInf(mustGet(t, m, "D").Number, 1))
	assert.Equal(t, NumberValue(-1), mustGet(t, m, "R"))
}

func TestEvaluate_MergedDeclarations(t *testing.T) {
	// enum E { A = 1 } enum E { B = A + 1, C } enum E { D }
	b := ast.NewBuilder()
	first := b.Enum("E", b.EnumMember("A", b.Num(1)))
	second := b.Enum("E",
		b.EnumMember("B", b.Binary(ast.Add, b.Ident("A"), b.Num(1))),
		b.EnumMember("C", nil),
	)
	third := b.Enum("E", b.EnumMember("D", nil))
	sem, r := evaluate(t, b.Program(first, second, third))

	assert.Empty(t, sem.Unresolved)
	require.Len(t, r.Enums(), 1)
	m := members(t, sem, r)
	assert.Equal(t, []string{"A", "B", "C", "D"}, m.Names())
	assert.Equal(t, NumberValue(2), mustGet(t, m, "B"))
	assert.Equal(t, NumberValue(3), mustGet(t, m, "C"))
	assert.Equal(t, NumberValue(0), mustGet(t, m, "D"))

	sym, ok := sem.SymbolOf(second.Members[1].Name.ID)
	require.True(t, ok)
	v, ok := r.Member(sym)
	require.True(t, ok)
	assert.Equal(t, NumberValue(3), v)

	alone := EvaluateDeclaration(sem, second, sem.Enums()[1].Symbol)
	assert.Equal(t, 0, alone.Len())
}

func TestEvaluate_NoEnums(t *testing.T) {
	b := ast.NewBuilder()
	_, r := evaluate(t, b.Program(b.Let("x", b.Num(1))))
	assert.Empty(t, r.Enums())
	_, ok := r.Enum(0)
	assert.False(t, ok)
	_, ok = r.Lookup(0, "A")
	assert.False(t, ok)
}

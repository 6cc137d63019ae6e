// Copyright © 2024 The ELPS authors

package constenum

import (
	"encoding/json"
	"math"
	"math/big"
	"testing"

	"github.com/luthersystems/jsem/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{math.Copysign(0, -1), "0"},
		{1, "1"},
		{-42, "-42"},
		{1.5, "1.5"},
		{0.1 + 0.2, "0.30000000000000004"},
		{1e21, "1e+21"},
		{123e20, "1.23e+22"},
		{1e-7, "1e-7"},
		{1.5e-9, "1.5e-9"},
		{0.000001, "0.000001"},
		{math.NaN(), "NaN"},
		{math.Inf(1), "Infinity"},
		{math.Inf(-1), "-Infinity"},
	}
	for _, test := range tests {
		t.Run(test.want, func(t *testing.T) {
			assert.Equal(t, test.want, formatNumber(test.in))
		})
	}
}

func TestToInt32(t *testing.T) {
	tests := []struct {
		in   float64
		want int32
	}{
		{0, 0},
		{1.9, 1},
		{-1.9, -1},
		{4294967295, -1},
		{4294967296, 0},
		{2147483648, -2147483648},
		{-2147483649, 2147483647},
		{math.NaN(), 0},
		{math.Inf(1), 0},
	}
	for _, test := range tests {
		assert.Equal(t, test.want, toInt32(test.in), "ToInt32(%v)", test.in)
	}
}

func TestStringToNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"", 0},
		{"  12 ", 12},
		{"0x1f", 31},
		{"0b101", 5},
		{"0o17", 15},
		{"1e3", 1000},
		{"-Infinity", math.Inf(-1)},
		{"1e400", math.Inf(1)},
	}
	for _, test := range tests {
		assert.Equal(t, test.want, stringToNumber(test.in), "ToNumber(%q)", test.in)
	}
	for _, s := range []string{"abc", "inf", "NaN", "1_000", "0x", "0xzz", "12px"} {
		assert.True(t, math.IsNaN(stringToNumber(s)), "ToNumber(%q)", s)
	}
}

func TestBinary(t *testing.T) {
	huge := BigIntValue(new(big.Int).Lsh(big.NewInt(1), 40000))
	tests := []struct {
		name string
		op   ast.BinaryOp
		x, y Value
		want Value
		ok   bool
	}{
		{"add", ast.Add, NumberValue(1), NumberValue(2), NumberValue(3), true},
		{"concat number", ast.Add, StringValue("n"), NumberValue(1.5), StringValue("n1.5"), true},
		{"concat bool", ast.Add, BoolValue(true), StringValue("!"), StringValue("true!"), true},
		{"string arithmetic", ast.Mul, StringValue("3"), NumberValue(2), NumberValue(6), true},
		{"bool arithmetic", ast.Sub, BoolValue(true), BoolValue(true), NumberValue(0), true},
		{"exp", ast.Exp, NumberValue(2), NumberValue(10), NumberValue(1024), true},
		{"exp nan", ast.Exp, NumberValue(1), NumberValue(math.Inf(1)), NumberValue(math.NaN()), true},
		{"shift left wraps", ast.ShiftLeft, NumberValue(1), NumberValue(31), NumberValue(-2147483648), true},
		{"shift count masked", ast.ShiftLeft, NumberValue(1), NumberValue(33), NumberValue(2), true},
		{"shift right signed", ast.ShiftRight, NumberValue(-8), NumberValue(1), NumberValue(-4), true},
		{"shift right unsigned", ast.ShiftRightU, NumberValue(-1), NumberValue(0), NumberValue(4294967295), true},
		{"or", ast.BitOr, NumberValue(4), NumberValue(1), NumberValue(5), true},
		{"and", ast.BitAnd, NumberValue(6), NumberValue(3), NumberValue(2), true},
		{"xor", ast.BitXor, NumberValue(6), NumberValue(3), NumberValue(5), true},
		{"comparison", ast.Less, NumberValue(1), NumberValue(2), Value{}, false},
		{"bigint", ast.Mul, BigIntValue(big.NewInt(6)), BigIntValue(big.NewInt(7)), BigIntValue(big.NewInt(42)), true},
		{"bigint div truncates", ast.Div, BigIntValue(big.NewInt(-7)), BigIntValue(big.NewInt(2)), BigIntValue(big.NewInt(-3)), true},
		{"bigint shift right floors", ast.ShiftRight, BigIntValue(big.NewInt(-7)), BigIntValue(big.NewInt(1)), BigIntValue(big.NewInt(-4)), true},
		{"bigint div zero", ast.Div, BigIntValue(big.NewInt(1)), BigIntValue(big.NewInt(0)), Value{}, false},
		{"bigint unsigned shift", ast.ShiftRightU, BigIntValue(big.NewInt(1)), BigIntValue(big.NewInt(1)), Value{}, false},
		{"bigint mixed", ast.Add, BigIntValue(big.NewInt(1)), NumberValue(1), Value{}, false},
		{"bigint concat", ast.Add, BigIntValue(big.NewInt(1)), StringValue("x"), StringValue("1x"), true},
		{"bigint exp at limit", ast.Exp, BigIntValue(big.NewInt(2)), BigIntValue(big.NewInt(65535)), BigIntValue(new(big.Int).Lsh(big.NewInt(1), 65535)), true},
		{"bigint exp too large", ast.Exp, BigIntValue(big.NewInt(2)), BigIntValue(big.NewInt(65536)), Value{}, false},
		{"bigint exp wide base", ast.Exp, huge, BigIntValue(big.NewInt(2)), Value{}, false},
		{"bigint exp unit base", ast.Exp, BigIntValue(big.NewInt(-1)), BigIntValue(big.NewInt(65536)), BigIntValue(big.NewInt(1)), true},
		{"bigint mul too large", ast.Mul, huge, huge, Value{}, false},
		{"bigint shift too large", ast.ShiftLeft, huge, BigIntValue(big.NewInt(30000)), Value{}, false},
		{"bigint mul chain", ast.Mul, huge, BigIntValue(big.NewInt(4)), BigIntValue(new(big.Int).Lsh(big.NewInt(1), 40002)), true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, ok := binary(test.op, test.x, test.y)
			require.Equal(t, test.ok, ok)
			if ok {
				assert.True(t, test.want.Equal(got), "got %s want %s", got.Text(), test.want.Text())
			}
		})
	}
}

func TestUnary(t *testing.T) {
	tests := []struct {
		name string
		op   ast.UnaryOp
		x    Value
		want Value
		ok   bool
	}{
		{"plus string", ast.UnaryPlus, StringValue("4"), NumberValue(4), true},
		{"minus string", ast.UnaryMinus, StringValue("x"), NumberValue(math.NaN()), true},
		{"not string", ast.UnaryNot, StringValue(""), BoolValue(true), true},
		{"bitnot", ast.UnaryBitNot, NumberValue(0), NumberValue(-1), true},
		{"bitnot string", ast.UnaryBitNot, StringValue("x"), NumberValue(-1), true},
		{"minus bigint", ast.UnaryMinus, BigIntValue(big.NewInt(3)), BigIntValue(big.NewInt(-3)), true},
		{"plus bigint", ast.UnaryPlus, BigIntValue(big.NewInt(3)), Value{}, false},
		{"not bigint", ast.UnaryNot, BigIntValue(big.NewInt(0)), BoolValue(true), true},
		{"typeof", ast.UnaryTypeof, NumberValue(1), Value{}, false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, ok := unary(test.op, test.x)
			require.Equal(t, test.ok, ok)
			if ok {
				assert.True(t, test.want.Equal(got), "got %s want %s", got.Text(), test.want.Text())
			}
		})
	}
}

func TestValue_Text(t *testing.T) {
	assert.Equal(t, "3", NumberValue(3).Text())
	assert.Equal(t, `"a\"b"`, StringValue(`a"b`).Text())
	assert.Equal(t, "false", BoolValue(false).Text())
	assert.Equal(t, "12n", BigIntValue(big.NewInt(12)).Text())
	assert.Equal(t, "bigint", BigInt.String())
	assert.True(t, StringValue("").Retained())
	assert.False(t, BoolValue(true).Retained())
}

func TestValue_MarshalJSON(t *testing.T) {
	b, err := json.Marshal(map[string]Value{
		"n":   NumberValue(1.5),
		"s":   StringValue("x"),
		"inf": NumberValue(math.Inf(1)),
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"n":1.5,"s":"x","inf":"Infinity"}`, string(b))
}

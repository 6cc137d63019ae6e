// Copyright © 2024 The ELPS authors

package constenum

import (
	"math"
	"math/big"

	"github.com/luthersystems/jsem/ast"
	"github.com/luthersystems/jsem/semantic"
)

// folder evaluates the initializers of one enum. values holds every member
// folded so far under the enum's symbol, including boolean and bigint
// results that never reach the output.
type folder struct {
	sem      *semantic.Semantic
	self     semantic.SymbolID
	values   map[string]Value
	memberOf map[semantic.SymbolID]semantic.SymbolID
}

func (f *folder) fold(e ast.Expression) (Value, bool) {
	switch e := e.(type) {
	case *ast.NumberLiteral:
		return NumberValue(e.Value), true
	case *ast.StringLiteral:
		return StringValue(e.Value), true
	case *ast.BooleanLiteral:
		return BoolValue(e.Value), true
	case *ast.BigIntLiteral:
		x, ok := new(big.Int).SetString(e.Raw, 0)
		if !ok {
			return Value{}, false
		}
		return BigIntValue(x), true
	case *ast.TemplateLiteral:
		return f.template(e)
	case *ast.ParenthesizedExpression:
		return f.fold(e.Expression)
	case *ast.Identifier:
		return f.identifier(e)
	case *ast.MemberExpression:
		return f.member(e)
	case *ast.UnaryExpression:
		x, ok := f.fold(e.Argument)
		if !ok {
			return Value{}, false
		}
		return unary(e.Operator, x)
	case *ast.BinaryExpression:
		x, ok := f.fold(e.Left)
		if !ok {
			return Value{}, false
		}
		y, ok := f.fold(e.Right)
		if !ok {
			return Value{}, false
		}
		return binary(e.Operator, x, y)
	}
	return Value{}, false
}

func (f *folder) template(t *ast.TemplateLiteral) (Value, bool) {
	s := t.Quasis[0]
	for i, e := range t.Expressions {
		v, ok := f.fold(e)
		if !ok {
			return Value{}, false
		}
		s += toString(v) + t.Quasis[i+1]
	}
	return StringValue(s), true
}

// identifier folds a bare name. A name that resolves to a member of this
// enum, in this or an earlier declaration, takes that member's value; a
// name bound to anything else is not constant. Unresolved names may only
// be one of the global number constants.
func (f *folder) identifier(id *ast.Identifier) (Value, bool) {
	if sym, ok := f.resolve(id); ok {
		if owner, ok := f.memberOf[sym]; !ok || owner != f.self {
			return Value{}, false
		}
		v, ok := f.values[id.Name]
		return v, ok
	}
	switch id.Name {
	case "Infinity":
		return NumberValue(math.Inf(1)), true
	case "NaN":
		return NumberValue(math.NaN()), true
	}
	return Value{}, false
}

// member folds E.A and E["A"] where E is the enum being evaluated.
func (f *folder) member(m *ast.MemberExpression) (Value, bool) {
	obj, ok := ast.Unparen(m.Object).(*ast.Identifier)
	if !ok {
		return Value{}, false
	}
	if sym, ok := f.resolve(obj); !ok || sym != f.self {
		return Value{}, false
	}
	var name string
	switch p := m.Property.(type) {
	case *ast.IdentifierName:
		if m.Computed {
			return Value{}, false
		}
		name = p.Name
	default:
		if !m.Computed {
			return Value{}, false
		}
		key, ok := f.fold(p)
		if !ok || key.Kind != String {
			return Value{}, false
		}
		name = key.String
	}
	v, ok := f.values[name]
	return v, ok
}

func (f *folder) resolve(id *ast.Identifier) (semantic.SymbolID, bool) {
	ref, ok := f.sem.ReferenceOf(id.ID)
	if !ok {
		return semantic.NoSymbol, false
	}
	r := f.sem.Symbols.Reference(ref)
	return r.Symbol, r.IsResolved()
}

func unary(op ast.UnaryOp, x Value) (Value, bool) {
	if op == ast.UnaryNot {
		return BoolValue(!truthy(x)), true
	}
	if x.Kind == BigInt {
		switch op {
		case ast.UnaryMinus:
			return BigIntValue(new(big.Int).Neg(x.BigInt)), true
		case ast.UnaryBitNot:
			return BigIntValue(new(big.Int).Not(x.BigInt)), true
		}
		return Value{}, false
	}
	n := toNumber(x)
	switch op {
	case ast.UnaryPlus:
		return NumberValue(n), true
	case ast.UnaryMinus:
		return NumberValue(-n), true
	case ast.UnaryBitNot:
		return NumberValue(float64(^toInt32(n))), true
	}
	return Value{}, false
}

func binary(op ast.BinaryOp, x, y Value) (Value, bool) {
	if op == ast.Add && (x.Kind == String || y.Kind == String) {
		return StringValue(toString(x) + toString(y)), true
	}
	if x.Kind == BigInt || y.Kind == BigInt {
		if x.Kind != y.Kind {
			return Value{}, false
		}
		return bigBinary(op, x.BigInt, y.BigInt)
	}
	a, b := toNumber(x), toNumber(y)
	var r float64
	switch op {
	case ast.Add:
		r = a + b
	case ast.Sub:
		r = a - b
	case ast.Mul:
		r = a * b
	case ast.Div:
		r = a / b
	case ast.Rem:
		r = math.Mod(a, b)
	case ast.Exp:
		r = pow(a, b)
	case ast.ShiftLeft:
		r = float64(toInt32(a) << (toUint32(b) & 31))
	case ast.ShiftRight:
		r = float64(toInt32(a) >> (toUint32(b) & 31))
	case ast.ShiftRightU:
		r = float64(toUint32(a) >> (toUint32(b) & 31))
	case ast.BitOr:
		r = float64(toInt32(a) | toInt32(b))
	case ast.BitAnd:
		r = float64(toInt32(a) & toInt32(b))
	case ast.BitXor:
		r = float64(toInt32(a) ^ toInt32(b))
	default:
		return Value{}, false
	}
	return NumberValue(r), true
}

// pow differs from math.Pow where the exponent is NaN, and for a base of
// magnitude one raised to an infinite power; both yield NaN.
func pow(a, b float64) float64 {
	if math.IsNaN(b) || (math.Abs(a) == 1 && math.IsInf(b, 0)) {
		return math.NaN()
	}
	return math.Pow(a, b)
}

// maxBits bounds the size of every bigint result, and with it shift counts
// and exponents. A result that would not fit is not constant.
const maxBits = 1 << 16

func bigBinary(op ast.BinaryOp, x, y *big.Int) (Value, bool) {
	r := new(big.Int)
	switch op {
	case ast.Add:
		r.Add(x, y)
	case ast.Sub:
		r.Sub(x, y)
	case ast.Mul:
		r.Mul(x, y)
	case ast.Div:
		if y.Sign() == 0 {
			return Value{}, false
		}
		r.Quo(x, y)
	case ast.Rem:
		if y.Sign() == 0 {
			return Value{}, false
		}
		r.Rem(x, y)
	case ast.Exp:
		if y.Sign() < 0 || !y.IsInt64() || y.Int64() > maxBits {
			return Value{}, false
		}
		// |x|**y has at least (bitlen(x)-1)*y+1 bits.
		if int64(x.BitLen()-1)*y.Int64() >= maxBits {
			return Value{}, false
		}
		r.Exp(x, y, nil)
	case ast.ShiftLeft, ast.ShiftRight:
		if !y.IsInt64() {
			return Value{}, false
		}
		n := y.Int64()
		if op == ast.ShiftRight {
			n = -n
		}
		switch {
		case n > maxBits:
			return Value{}, false
		case n >= 0:
			r.Lsh(x, uint(n))
		case n < -maxBits:
			r.SetInt64(int64(x.Sign() >> 1))
		default:
			r.Rsh(x, uint(-n))
		}
	case ast.BitOr:
		r.Or(x, y)
	case ast.BitAnd:
		r.And(x, y)
	case ast.BitXor:
		r.Xor(x, y)
	default:
		return Value{}, false
	}
	if r.BitLen() > maxBits {
		return Value{}, false
	}
	return BigIntValue(r), true
}

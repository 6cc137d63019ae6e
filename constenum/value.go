// Copyright © 2024 The ELPS authors

package constenum

import (
	"encoding/json"
	"errors"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// Kind is the type of a folded constant.
type Kind uint8

const (
	Number Kind = iota
	String
	Boolean
	BigInt
)

func (k Kind) String() string {
	switch k {
	case Number:
		return "number"
	case String:
		return "string"
	case Boolean:
		return "boolean"
	case BigInt:
		return "bigint"
	default:
		return "unknown"
	}
}

// Value is a folded constant. Only the field selected by Kind is meaningful.
type Value struct {
	Kind   Kind
	Number float64
	String string
	Bool   bool
	BigInt *big.Int
}

// NumberValue returns a Number value.
func NumberValue(f float64) Value { return Value{Kind: Number, Number: f} }

// StringValue returns a String value.
func StringValue(s string) Value { return Value{Kind: String, String: s} }

// BoolValue returns a Boolean value.
func BoolValue(b bool) Value { return Value{Kind: Boolean, Bool: b} }

// BigIntValue returns a BigInt value. The value takes ownership of x.
func BigIntValue(x *big.Int) Value { return Value{Kind: BigInt, BigInt: x} }

// Retained reports whether v is a valid enum member value. Boolean and
// bigint results only take part in folding.
func (v Value) Retained() bool { return v.Kind == Number || v.Kind == String }

// Equal reports whether v and o have the same kind and value. NaN equals
// NaN.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case Number:
		if math.IsNaN(v.Number) {
			return math.IsNaN(o.Number)
		}
		return v.Number == o.Number
	case String:
		return v.String == o.String
	case Boolean:
		return v.Bool == o.Bool
	default:
		return v.BigInt.Cmp(o.BigInt) == 0
	}
}

// Text returns the value the way it reads in source: strings are quoted
// and bigints carry their `n` suffix.
func (v Value) Text() string {
	switch v.Kind {
	case String:
		return strconv.Quote(v.String)
	case BigInt:
		return v.BigInt.String() + "n"
	default:
		return toString(v)
	}
}

// MarshalJSON encodes numbers as JSON numbers where JSON can represent
// them and as strings ("NaN", "Infinity") where it cannot.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case Number:
		if math.IsNaN(v.Number) || math.IsInf(v.Number, 0) {
			return json.Marshal(toString(v))
		}
		return json.Marshal(v.Number)
	case String:
		return json.Marshal(v.String)
	case Boolean:
		return json.Marshal(v.Bool)
	default:
		return json.Marshal(v.BigInt.String() + "n")
	}
}

func truthy(v Value) bool {
	switch v.Kind {
	case Number:
		return v.Number != 0 && !math.IsNaN(v.Number)
	case String:
		return v.String != ""
	case Boolean:
		return v.Bool
	default:
		return v.BigInt.Sign() != 0
	}
}

// toNumber converts a non-bigint value to a number.
func toNumber(v Value) float64 {
	switch v.Kind {
	case Number:
		return v.Number
	case Boolean:
		if v.Bool {
			return 1
		}
		return 0
	case String:
		return stringToNumber(v.String)
	default:
		panic("constenum: bigint has no number conversion")
	}
}

func stringToNumber(s string) float64 {
	s = strings.TrimSpace(s)
	switch s {
	case "":
		return 0
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	if len(s) > 2 && s[0] == '0' {
		base := 0
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			n, ok := new(big.Int).SetString(s[2:], base)
			if !ok || strings.Contains(s, "_") {
				return math.NaN()
			}
			f, _ := new(big.Float).SetInt(n).Float64()
			return f
		}
	}
	lower := strings.ToLower(s)
	if strings.Contains(lower, "inf") || strings.Contains(lower, "nan") || strings.Contains(s, "_") {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return math.NaN()
	}
	return f
}

// toString converts v to a string the way String(v) does.
func toString(v Value) string {
	switch v.Kind {
	case String:
		return v.String
	case Boolean:
		return strconv.FormatBool(v.Bool)
	case BigInt:
		return v.BigInt.String()
	default:
		return formatNumber(v.Number)
	}
}

// formatNumber renders f with the shortest round-tripping digits, in
// decimal notation for magnitudes in [1e-6, 1e21) and exponent notation
// otherwise.
func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}
	if abs := math.Abs(f); abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	s := strconv.FormatFloat(f, 'e', -1, 64)
	mant, exp, _ := strings.Cut(s, "e")
	sign := exp[:1]
	exp = strings.TrimLeft(exp[1:], "0")
	return mant + "e" + sign + exp
}

// toInt32 is the ToInt32 conversion applied by the bitwise operators.
func toInt32(f float64) int32 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int32(uint32(int64(math.Mod(math.Trunc(f), 1<<32))))
}

func toUint32(f float64) uint32 { return uint32(toInt32(f)) }

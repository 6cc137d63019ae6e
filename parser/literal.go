// Copyright © 2024 The ELPS authors

package parser

import (
	"errors"
	"math"
	"math/big"
	"strconv"
	"strings"
	"unicode/utf8"
)

// parseNumber returns the value of a numeric literal. Separators, radix
// prefixes and legacy octal literals are accepted. Malformed input, which
// the grammar does not produce, yields NaN.
func parseNumber(raw string) float64 {
	s := strings.ReplaceAll(raw, "_", "")
	if len(s) > 1 && s[0] == '0' {
		base := 0
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		default:
			if strings.IndexFunc(s[1:], notOctal) < 0 {
				return radix(s[1:], 8)
			}
		}
		if base != 0 {
			return radix(s[2:], base)
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return math.NaN()
	}
	return f
}

func notOctal(r rune) bool { return r < '0' || r > '7' }

func radix(digits string, base int) float64 {
	n, ok := new(big.Int).SetString(digits, base)
	if !ok {
		return math.NaN()
	}
	f, _ := new(big.Float).SetInt(n).Float64()
	return f
}

// cook decodes the escape sequences of string and template literal text.
// Invalid escapes keep the escaped character.
func cook(raw string) string {
	if !strings.ContainsRune(raw, '\\') {
		return raw
	}
	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); {
		c := raw[i]
		if c != '\\' || i+1 == len(raw) {
			b.WriteByte(c)
			i++
			continue
		}
		i++
		switch c = raw[i]; c {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'v':
			b.WriteByte('\v')
		case '0':
			b.WriteByte(0)
		case '\r':
			// Line continuation; \r\n counts as one terminator.
			if i+1 < len(raw) && raw[i+1] == '\n' {
				i++
			}
		case '\n':
		case 'x':
			if r, n := hexRune(raw[i+1:], 2); n > 0 {
				b.WriteRune(r)
				i += n
			} else {
				b.WriteByte(c)
			}
		case 'u':
			r, n := unicodeEscape(raw[i+1:])
			if n == 0 {
				b.WriteByte(c)
				break
			}
			i += n
			// Join surrogate pairs written as two escapes.
			if r >= 0xD800 && r < 0xDC00 && strings.HasPrefix(raw[i+1:], `\u`) {
				if lo, m := unicodeEscape(raw[i+3:]); m > 0 && lo >= 0xDC00 && lo < 0xE000 {
					r = (r-0xD800)<<10 + (lo - 0xDC00) + 0x10000
					i += m + 2
				}
			}
			if !utf8.ValidRune(r) {
				r = utf8.RuneError
			}
			b.WriteRune(r)
		default:
			// Multi-byte characters are copied whole by the outer loop.
			b.WriteByte(c)
		}
		i++
	}
	return b.String()
}

func unicodeEscape(s string) (rune, int) {
	if strings.HasPrefix(s, "{") {
		end := strings.IndexByte(s, '}')
		if end < 2 {
			return 0, 0
		}
		v, err := strconv.ParseUint(s[1:end], 16, 32)
		if err != nil || v > utf8.MaxRune {
			return 0, 0
		}
		return rune(v), end + 1
	}
	return hexRune(s, 4)
}

func hexRune(s string, n int) (rune, int) {
	if len(s) < n {
		return 0, 0
	}
	v, err := strconv.ParseUint(s[:n], 16, 32)
	if err != nil {
		return 0, 0
	}
	return rune(v), n
}

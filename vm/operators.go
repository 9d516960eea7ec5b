package vm

import (
	"math"
	"sort"
	"strings"
)

// MaxStringLen bounds the length of a string built by BINARY_OP.
const MaxStringLen = 1 << 26

// binaryFunc implements one BINARY_OP symbol.
type binaryFunc func(left, right Value) (Value, error)

// binaryOps maps operator symbols to their implementations.
var binaryOps = map[string]binaryFunc{
	"+": add,
	"-": sub,
	"*": mul,
	"/": trueDiv,
}

// Operators returns the supported BINARY_OP symbols, sorted.
func Operators() []string {
	out := make([]string, 0, len(binaryOps))
	for sym := range binaryOps {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out
}

// Apply evaluates left <symbol> right with BINARY_OP semantics.
func Apply(symbol string, left, right Value) (Value, error) {
	fn, ok := binaryOps[symbol]
	if !ok {
		return None, &ExecutionError{
			Kind:   UnsupportedOperator,
			Index:  -1,
			Name:   symbol,
			Detail: "unknown operator " + symbol,
		}
	}
	return fn(left, right)
}

func add(l, r Value) (Value, error) {
	if l.kind == KindInt && r.kind == KindInt {
		c := l.i + r.i
		if (l.i^c)&(r.i^c) < 0 {
			return None, overflowError("+", "integer overflow")
		}
		return Int(c), nil
	}
	if l.kind == KindString && r.kind == KindString {
		if len(l.s) > MaxStringLen-len(r.s) {
			return None, overflowError("+", "string too long")
		}
		return String(l.s + r.s), nil
	}
	a, b, ok := floats(l, r)
	if !ok {
		return None, operandError("+", l, r)
	}
	return Float(a + b), nil
}

func sub(l, r Value) (Value, error) {
	if l.kind == KindInt && r.kind == KindInt {
		c := l.i - r.i
		if (l.i^r.i)&(l.i^c) < 0 {
			return None, overflowError("-", "integer overflow")
		}
		return Int(c), nil
	}
	a, b, ok := floats(l, r)
	if !ok {
		return None, operandError("-", l, r)
	}
	return Float(a - b), nil
}

func mul(l, r Value) (Value, error) {
	switch {
	case l.kind == KindInt && r.kind == KindInt:
		return mulInt(l.i, r.i)
	case l.kind == KindString && r.kind == KindInt:
		return repeat(l.s, r.i)
	case l.kind == KindInt && r.kind == KindString:
		return repeat(r.s, l.i)
	}
	a, b, ok := floats(l, r)
	if !ok {
		return None, operandError("*", l, r)
	}
	return Float(a * b), nil
}

// trueDiv always yields a float, even for two ints.
func trueDiv(l, r Value) (Value, error) {
	a, b, ok := floats(l, r)
	if !ok {
		return None, operandError("/", l, r)
	}
	if b == 0 {
		return None, &ExecutionError{Kind: ZeroDivision, Index: -1, Name: "/"}
	}
	return Float(a / b), nil
}

// floats promotes two numeric operands to float64.
func floats(l, r Value) (float64, float64, bool) {
	a, ok := l.Number()
	if !ok {
		return 0, 0, false
	}
	b, ok := r.Number()
	if !ok {
		return 0, 0, false
	}
	return a, b, true
}

func mulInt(a, b int64) (Value, error) {
	if a == 0 || b == 0 {
		return Int(0), nil
	}
	c := a * b
	if c/b != a || (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return None, overflowError("*", "integer overflow")
	}
	return Int(c), nil
}

func repeat(s string, n int64) (Value, error) {
	if n <= 0 || s == "" {
		return String(""), nil
	}
	if n > int64(MaxStringLen/len(s)) {
		return None, overflowError("*", "repeated string too long")
	}
	return String(strings.Repeat(s, int(n))), nil
}

func overflowError(symbol, detail string) *ExecutionError {
	return &ExecutionError{Kind: Overflow, Index: -1, Name: symbol, Detail: detail}
}

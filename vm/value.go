package vm

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind identifies the dynamic type carried by a Value.
type Kind uint8

const (
	KindNone Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindCallable
)

var kindNames = [...]string{
	KindNone:     "none",
	KindBool:     "bool",
	KindInt:      "int",
	KindFloat:    "float",
	KindString:   "str",
	KindCallable: "callable",
}

// String returns the short type name used in error messages.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Callable is a host function that bytecode can invoke with CALL.
type Callable interface {
	Name() string
	Call(args []Value) (Value, error)
}

// Value is a tagged union over the kinds the engine understands.
//
// Values are immutable and cheap to copy. The zero Value is None.
type Value struct {
	kind Kind
	i    int64 // int payload; 0/1 for bools
	f    float64
	s    string
	fn   Callable
}

// Pre-defined singleton values
var (
	None  = Value{}
	True  = Value{kind: KindBool, i: 1}
	False = Value{kind: KindBool}
)

// ---------------------------------------------------------------------------
// Construction
// ---------------------------------------------------------------------------

// Int returns an integer value.
func Int(n int64) Value { return Value{kind: KindInt, i: n} }

// Float returns a float value.
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Bool returns True or False.
func Bool(b bool) Value {
	if b {
		return True
	}
	return False
}

// FromCallable wraps a host callable. A nil callable yields None.
func FromCallable(c Callable) Value {
	if c == nil {
		return None
	}
	return Value{kind: KindCallable, fn: c}
}

// FromGo converts a decoded Go scalar into a Value. It accepts the shapes
// produced by the CBOR, YAML and TOML decoders: nil, bool, every integer
// width, float32/64 and string. Values and Callables pass through.
func FromGo(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return None, nil
	case Value:
		return t, nil
	case Callable:
		return FromCallable(t), nil
	case bool:
		return Bool(t), nil
	case int:
		return Int(int64(t)), nil
	case int8:
		return Int(int64(t)), nil
	case int16:
		return Int(int64(t)), nil
	case int32:
		return Int(int64(t)), nil
	case int64:
		return Int(t), nil
	case uint:
		return fromUint(uint64(t))
	case uint8:
		return Int(int64(t)), nil
	case uint16:
		return Int(int64(t)), nil
	case uint32:
		return Int(int64(t)), nil
	case uint64:
		return fromUint(t)
	case float32:
		return Float(float64(t)), nil
	case float64:
		return Float(t), nil
	case string:
		return String(t), nil
	default:
		return None, fmt.Errorf("unsupported value type %T", x)
	}
}

func fromUint(u uint64) (Value, error) {
	if u > math.MaxInt64 {
		return None, fmt.Errorf("integer %d overflows int64", u)
	}
	return Int(int64(u)), nil
}

// ---------------------------------------------------------------------------
// Inspection
// ---------------------------------------------------------------------------

// Kind returns the dynamic kind of v.
func (v Value) Kind() Kind { return v.kind }

// IsNone reports whether v is None.
func (v Value) IsNone() bool { return v.kind == KindNone }

// AsInt returns the integer payload.
func (v Value) AsInt() (int64, bool) {
	if v.kind != KindInt {
		return 0, false
	}
	return v.i, true
}

// AsFloat returns the float payload.
func (v Value) AsFloat() (float64, bool) {
	if v.kind != KindFloat {
		return 0, false
	}
	return v.f, true
}

// AsString returns the string payload.
func (v Value) AsString() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.s, true
}

// AsBool returns the bool payload.
func (v Value) AsBool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.i != 0, true
}

// AsCallable returns the callable payload.
func (v Value) AsCallable() (Callable, bool) {
	if v.kind != KindCallable {
		return nil, false
	}
	return v.fn, true
}

// Number returns v as a float64 if it is an int or a float.
func (v Value) Number() (float64, bool) {
	switch v.kind {
	case KindInt:
		return float64(v.i), true
	case KindFloat:
		return v.f, true
	}
	return 0, false
}

// Go returns the Go representation of v: nil, bool, int64, float64,
// string or the Callable itself.
func (v Value) Go() any {
	switch v.kind {
	case KindBool:
		return v.i != 0
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindString:
		return v.s
	case KindCallable:
		return v.fn
	}
	return nil
}

// Equal reports whether v and o have the same kind and payload.
// Callables are equal when they are the same callable.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNone:
		return true
	case KindBool, KindInt:
		return v.i == o.i
	case KindFloat:
		return v.f == o.f
	case KindString:
		return v.s == o.s
	case KindCallable:
		return v.fn == o.fn
	}
	return false
}

// ---------------------------------------------------------------------------
// Formatting
// ---------------------------------------------------------------------------

// Str returns the plain string form of v, as produced by FORMAT_VALUE.
func (v Value) Str() string {
	switch v.kind {
	case KindNone:
		return "None"
	case KindBool:
		if v.i != 0 {
			return "True"
		}
		return "False"
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return formatFloat(v.f)
	case KindString:
		return v.s
	case KindCallable:
		return "<builtin " + v.fn.Name() + ">"
	}
	return fmt.Sprintf("<%s>", v.kind)
}

// Repr is like Str but quotes strings, so the result reads back as a
// listing constant.
func (v Value) Repr() string {
	if v.kind == KindString {
		return strconv.Quote(v.s)
	}
	return v.Str()
}

// String implements fmt.Stringer.
func (v Value) String() string { return v.Repr() }

// formatFloat renders f in shortest round-trip form. Integral values keep a
// trailing ".0"; very large or very small magnitudes switch to exponent form.
func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	}

	exp := strconv.FormatFloat(f, 'e', -1, 64)
	if n, err := strconv.Atoi(exp[strings.LastIndexByte(exp, 'e')+1:]); err == nil && (n < -4 || n >= 16) {
		return exp
	}

	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}

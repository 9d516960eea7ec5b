// Package builtins provides the host functions visible to bytecode through
// LOAD_GLOBAL and LOAD_NAME when a name is in neither scope.
package builtins

import (
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/chazu/minivm/vm"
)

// Table is a vm.Resolver over a set of named host functions.
// It is safe for concurrent use.
type Table struct {
	mu    sync.RWMutex
	funcs map[string]vm.Value
	out   io.Writer
}

// New returns a table holding the standard builtins. print writes to out;
// a nil out discards output.
func New(out io.Writer) *Table {
	if out == nil {
		out = io.Discard
	}
	t := &Table{funcs: make(map[string]vm.Value), out: out}

	t.Register("print", t.print)
	t.Register("len", builtinLen)
	t.Register("str", builtinStr)
	t.Register("repr", builtinRepr)
	t.Register("int", builtinInt)
	t.Register("float", builtinFloat)
	t.Register("abs", builtinAbs)
	t.Register("min", func(args []vm.Value) (vm.Value, error) { return extreme("min", args, -1) })
	t.Register("max", func(args []vm.Value) (vm.Value, error) { return extreme("max", args, 1) })
	t.Register("round", builtinRound)
	return t
}

// Register adds or replaces a host function.
func (t *Table) Register(name string, fn func(args []vm.Value) (vm.Value, error)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.funcs[name] = vm.FromCallable(vm.NewFunc(name, fn))
}

// Resolve implements vm.Resolver.
func (t *Table) Resolve(name string) (vm.Value, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.funcs[name]
	return v, ok
}

// Names returns the registered names in sorted order.
func (t *Table) Names() []string {
	t.mu.RLock()
	names := make([]string, 0, len(t.funcs))
	for name := range t.funcs {
		names = append(names, name)
	}
	t.mu.RUnlock()
	sort.Strings(names)
	return names
}

// ---------------------------------------------------------------------------
// Builtin implementations
// ---------------------------------------------------------------------------

func (t *Table) print(args []vm.Value) (vm.Value, error) {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.Str()
	}
	if _, err := fmt.Fprintln(t.out, strings.Join(parts, " ")); err != nil {
		return vm.None, err
	}
	return vm.None, nil
}

func builtinLen(args []vm.Value) (vm.Value, error) {
	if err := arity("len", args, 1, 1); err != nil {
		return vm.None, err
	}
	s, ok := args[0].AsString()
	if !ok {
		return vm.None, fmt.Errorf("object of type '%s' has no len()", args[0].Kind())
	}
	return vm.Int(int64(utf8.RuneCountInString(s))), nil
}

func builtinStr(args []vm.Value) (vm.Value, error) {
	if err := arity("str", args, 0, 1); err != nil {
		return vm.None, err
	}
	if len(args) == 0 {
		return vm.String(""), nil
	}
	return vm.String(args[0].Str()), nil
}

func builtinRepr(args []vm.Value) (vm.Value, error) {
	if err := arity("repr", args, 1, 1); err != nil {
		return vm.None, err
	}
	return vm.String(args[0].Repr()), nil
}

func builtinInt(args []vm.Value) (vm.Value, error) {
	if err := arity("int", args, 0, 1); err != nil {
		return vm.None, err
	}
	if len(args) == 0 {
		return vm.Int(0), nil
	}
	switch a := args[0]; a.Kind() {
	case vm.KindInt:
		return a, nil
	case vm.KindBool:
		b, _ := a.AsBool()
		if b {
			return vm.Int(1), nil
		}
		return vm.Int(0), nil
	case vm.KindFloat:
		f, _ := a.AsFloat()
		if math.IsInf(f, 0) || math.IsNaN(f) {
			return vm.None, fmt.Errorf("cannot convert float %s to integer", a.Str())
		}
		return vm.Int(int64(math.Trunc(f))), nil
	case vm.KindString:
		s, _ := a.AsString()
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return vm.None, fmt.Errorf("invalid literal for int(): %s", a.Repr())
		}
		return vm.Int(n), nil
	default:
		return vm.None, fmt.Errorf("int() argument must be a string or a number, not '%s'", a.Kind())
	}
}

func builtinFloat(args []vm.Value) (vm.Value, error) {
	if err := arity("float", args, 0, 1); err != nil {
		return vm.None, err
	}
	if len(args) == 0 {
		return vm.Float(0), nil
	}
	switch a := args[0]; a.Kind() {
	case vm.KindInt, vm.KindFloat:
		f, _ := a.Number()
		return vm.Float(f), nil
	case vm.KindBool:
		b, _ := a.AsBool()
		if b {
			return vm.Float(1), nil
		}
		return vm.Float(0), nil
	case vm.KindString:
		s, _ := a.AsString()
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return vm.None, fmt.Errorf("could not convert string to float: %s", a.Repr())
		}
		return vm.Float(f), nil
	default:
		return vm.None, fmt.Errorf("float() argument must be a string or a number, not '%s'", a.Kind())
	}
}

func builtinAbs(args []vm.Value) (vm.Value, error) {
	if err := arity("abs", args, 1, 1); err != nil {
		return vm.None, err
	}
	if n, ok := args[0].AsInt(); ok {
		if n == math.MinInt64 {
			return vm.None, fmt.Errorf("abs() result overflows int")
		}
		if n < 0 {
			n = -n
		}
		return vm.Int(n), nil
	}
	if f, ok := args[0].AsFloat(); ok {
		return vm.Float(math.Abs(f)), nil
	}
	return vm.None, fmt.Errorf("bad operand type for abs(): '%s'", args[0].Kind())
}

// extreme returns the first argument that is smallest (sign < 0) or
// largest (sign > 0). The winning argument is returned unchanged.
func extreme(name string, args []vm.Value, sign int) (vm.Value, error) {
	if len(args) == 0 {
		return vm.None, fmt.Errorf("%s expected at least 1 argument, got 0", name)
	}
	best := args[0]
	bestNum, ok := best.Number()
	if !ok {
		return vm.None, fmt.Errorf("%s() argument must be a number, not '%s'", name, best.Kind())
	}
	for _, a := range args[1:] {
		n, ok := a.Number()
		if !ok {
			return vm.None, fmt.Errorf("%s() argument must be a number, not '%s'", name, a.Kind())
		}
		if (sign < 0 && n < bestNum) || (sign > 0 && n > bestNum) {
			best, bestNum = a, n
		}
	}
	return best, nil
}

// builtinRound rounds half to even. round(x) returns an int;
// round(x, ndigits) keeps the argument's kind.
func builtinRound(args []vm.Value) (vm.Value, error) {
	if err := arity("round", args, 1, 2); err != nil {
		return vm.None, err
	}
	x := args[0]
	if _, ok := x.Number(); !ok {
		return vm.None, fmt.Errorf("type %s doesn't define __round__ method", x.Kind())
	}

	if len(args) == 1 {
		if x.Kind() == vm.KindInt {
			return x, nil
		}
		f, _ := x.AsFloat()
		if math.IsInf(f, 0) || math.IsNaN(f) {
			return vm.None, fmt.Errorf("cannot convert float %s to integer", x.Str())
		}
		r := math.RoundToEven(f)
		if r >= math.MaxInt64 || r < math.MinInt64 {
			return vm.None, fmt.Errorf("float %s too large to convert to int", x.Str())
		}
		return vm.Int(int64(r)), nil
	}

	nd, ok := args[1].AsInt()
	if !ok {
		return vm.None, fmt.Errorf("'%s' object cannot be interpreted as an integer", args[1].Kind())
	}
	if n, ok := x.AsInt(); ok {
		if nd >= 0 {
			return x, nil
		}
		return roundInt(n, -max(nd, -20))
	}
	f, _ := x.AsFloat()
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return x, nil
	}
	if nd >= 0 {
		p := math.Pow10(int(min(nd, 400)))
		y := f * p
		if math.IsInf(y, 0) {
			return x, nil
		}
		return vm.Float(math.RoundToEven(y) / p), nil
	}
	p := math.Pow10(int(-max(nd, -400)))
	if math.IsInf(p, 0) {
		return vm.Float(math.Copysign(0, f)), nil
	}
	r := math.RoundToEven(f/p) * p
	if math.IsInf(r, 0) {
		return vm.None, errors.New("rounded value too large to represent")
	}
	return vm.Float(r), nil
}

// roundInt rounds n half to even at 10**k, k > 0.
func roundInt(n, k int64) (vm.Value, error) {
	const half19 = 5_000_000_000_000_000_000
	switch {
	case k > 19:
		return vm.Int(0), nil
	case k == 19:
		if n > half19 || n < -half19 {
			return vm.None, errors.New("rounded integer too large")
		}
		return vm.Int(0), nil
	}

	p := int64(1)
	for i := int64(0); i < k; i++ {
		p *= 10
	}
	q, rem := n/p, n%p
	if rem < 0 {
		rem = -rem
	}
	if 2*rem > p || (2*rem == p && q%2 != 0) {
		if n < 0 {
			q--
		} else {
			q++
		}
	}
	if q > math.MaxInt64/p || q < math.MinInt64/p {
		return vm.None, errors.New("rounded integer too large")
	}
	return vm.Int(q * p), nil
}

func arity(name string, args []vm.Value, lo, hi int) error {
	n := len(args)
	switch {
	case n >= lo && n <= hi:
		return nil
	case lo == hi:
		return fmt.Errorf("%s() takes exactly %d argument(s) (%d given)", name, lo, n)
	case n < lo:
		return fmt.Errorf("%s() takes at least %d argument(s) (%d given)", name, lo, n)
	default:
		return fmt.Errorf("%s() takes at most %d argument(s) (%d given)", name, hi, n)
	}
}

package builtins

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/chazu/minivm/vm"
)

func call(t *testing.T, tbl *Table, name string, args ...vm.Value) (vm.Value, error) {
	t.Helper()
	v, ok := tbl.Resolve(name)
	if !ok {
		t.Fatalf("builtin %q not registered", name)
	}
	fn, ok := v.AsCallable()
	if !ok {
		t.Fatalf("builtin %q is a %s", name, v.Kind())
	}
	return fn.Call(args)
}

func TestBuiltins(t *testing.T) {
	tbl := New(nil)

	tests := []struct {
		name string
		args []vm.Value
		want vm.Value
	}{
		{"len", []vm.Value{vm.String("héllo")}, vm.Int(5)},
		{"str", []vm.Value{vm.Float(2)}, vm.String("2.0")},
		{"str", nil, vm.String("")},
		{"repr", []vm.Value{vm.String("a")}, vm.String(`"a"`)},
		{"int", []vm.Value{vm.Float(-2.9)}, vm.Int(-2)},
		{"int", []vm.Value{vm.String(" 42 ")}, vm.Int(42)},
		{"int", []vm.Value{vm.True}, vm.Int(1)},
		{"float", []vm.Value{vm.Int(3)}, vm.Float(3)},
		{"float", []vm.Value{vm.String("1.5")}, vm.Float(1.5)},
		{"abs", []vm.Value{vm.Int(-4)}, vm.Int(4)},
		{"abs", []vm.Value{vm.Float(-0.5)}, vm.Float(0.5)},
		{"min", []vm.Value{vm.Int(3), vm.Float(1.5), vm.Int(2)}, vm.Float(1.5)},
		{"max", []vm.Value{vm.Int(3), vm.Float(3), vm.Int(2)}, vm.Int(3)},
		{"round", []vm.Value{vm.Float(2.5)}, vm.Int(2)},
		{"round", []vm.Value{vm.Float(3.5)}, vm.Int(4)},
		{"round", []vm.Value{vm.Float(-0.5)}, vm.Int(0)},
		{"round", []vm.Value{vm.Float(1.25), vm.Int(1)}, vm.Float(1.2)},
		{"round", []vm.Value{vm.Int(1250), vm.Int(-2)}, vm.Int(1200)},
		{"round", []vm.Value{vm.Int(25), vm.Int(-1)}, vm.Int(20)},
		{"round", []vm.Value{vm.Int(-35), vm.Int(-1)}, vm.Int(-40)},
		{"round", []vm.Value{vm.Int(12345), vm.Int(-400)}, vm.Int(0)},
		{"round", []vm.Value{vm.Int(4_000_000_000_000_000_000), vm.Int(-19)}, vm.Int(0)},
		{"round", []vm.Value{vm.Int(123), vm.Int(math.MinInt64)}, vm.Int(0)},
		{"round", []vm.Value{vm.Float(2.5), vm.Int(400)}, vm.Float(2.5)},
		{"round", []vm.Value{vm.Float(1.5), vm.Int(-400)}, vm.Float(0)},
		{"round", []vm.Value{vm.Float(1.5), vm.Int(math.MinInt64)}, vm.Float(0)},
	}
	for _, tt := range tests {
		got, err := call(t, tbl, tt.name, tt.args...)
		if err != nil {
			t.Errorf("%s%v: %v", tt.name, tt.args, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("%s%v = %v, want %v", tt.name, tt.args, got, tt.want)
		}
	}
}

func TestBuiltinErrors(t *testing.T) {
	tbl := New(nil)

	tests := []struct {
		name string
		args []vm.Value
	}{
		{"len", nil},
		{"len", []vm.Value{vm.Int(1)}},
		{"int", []vm.Value{vm.String("4.5")}},
		{"int", []vm.Value{vm.None}},
		{"float", []vm.Value{vm.String("x")}},
		{"abs", []vm.Value{vm.String("x")}},
		{"min", nil},
		{"max", []vm.Value{vm.Int(1), vm.String("2")}},
		{"round", []vm.Value{vm.String("1")}},
		{"round", []vm.Value{vm.Float(1), vm.Float(1)}},
		{"round", []vm.Value{vm.Float(1e300)}},
		{"round", []vm.Value{vm.Int(math.MaxInt64), vm.Int(-1)}},
		{"round", []vm.Value{vm.Int(math.MaxInt64), vm.Int(-19)}},
		{"round", []vm.Value{vm.Float(1.7e308), vm.Int(-308)}},
		{"repr", []vm.Value{vm.None, vm.None}},
	}
	for _, tt := range tests {
		if _, err := call(t, tbl, tt.name, tt.args...); err == nil {
			t.Errorf("%s%v: expected error", tt.name, tt.args)
		}
	}
}

func TestPrint(t *testing.T) {
	var out bytes.Buffer
	tbl := New(&out)

	got, err := call(t, tbl, "print", vm.String("a"), vm.Int(1), vm.Float(0.5), vm.None)
	if err != nil {
		t.Fatalf("print failed: %v", err)
	}
	if !got.IsNone() {
		t.Errorf("print returned %v", got)
	}
	if out.String() != "a 1 0.5 None\n" {
		t.Errorf("output = %q", out.String())
	}
}

func TestRegisterAndNames(t *testing.T) {
	tbl := New(nil)
	tbl.Register("double", func(args []vm.Value) (vm.Value, error) {
		n, _ := args[0].AsInt()
		return vm.Int(2 * n), nil
	})

	names := tbl.Names()
	want := "abs double float int len max min print repr round str"
	if strings.Join(names, " ") != want {
		t.Errorf("Names() = %v", names)
	}
	if _, ok := tbl.Resolve("open"); ok {
		t.Error("Resolve(open) found a builtin")
	}
}

func TestBuiltinsThroughEngine(t *testing.T) {
	var out bytes.Buffer
	tbl := New(&out)

	code := []vm.Instruction{
		vm.LoadGlobal("print"),
		vm.LoadGlobal("len"),
		vm.LoadConst(vm.String("abc")),
		vm.Call(1),
		vm.Call(1),
		vm.PopTop(),
		vm.LoadName("max"),
		vm.LoadConst(vm.Int(7)),
		vm.LoadConst(vm.Int(9)),
		vm.Call(2),
		vm.ReturnValue(),
	}
	got, err := vm.Execute(code, vm.Vars{}, vm.Vars{}, tbl)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !got.Equal(vm.Int(9)) {
		t.Errorf("got %v, want 9", got)
	}
	if out.String() != "3\n" {
		t.Errorf("print wrote %q", out.String())
	}

	// A builtin error surfaces as a callee failure
	bad := []vm.Instruction{
		vm.LoadGlobal("len"),
		vm.LoadConst(vm.Int(3)),
		vm.Call(1),
		vm.ReturnValue(),
	}
	_, err = vm.Execute(bad, vm.Vars{}, vm.Vars{}, tbl)
	if !errors.Is(err, vm.CalleeFailure) {
		t.Errorf("got %v, want CalleeFailure", err)
	}
}

package bytecode

import (
	"strings"
	"testing"

	"github.com/chazu/minivm/vm"
)

func greetProgram() *Program {
	return New("greet",
		vm.Resume(),
		vm.LoadConst(vm.String("World")),
		vm.StoreFast("name"),
		vm.LoadConst(vm.String("Hello, ")),
		vm.LoadFast("name"),
		vm.FormatValue(),
		vm.LoadConst(vm.String("!")),
		vm.BuildString(3),
		vm.ReturnValue(),
	)
}

func TestDisassemble(t *testing.T) {
	out := Disassemble(greetProgram())

	for _, want := range []string{
		"; === greet ===",
		"9 instructions",
		`0001  LOAD_CONST     "World"`,
		"0002  STORE_FAST     name",
		"0007  BUILD_STRING   3",
		"0008  RETURN_VALUE\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("listing missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "warning") {
		t.Errorf("unexpected warning in listing:\n%s", out)
	}
}

func TestDisassembleWarnsWithoutReturn(t *testing.T) {
	out := Disassemble(New("", vm.LoadConst(vm.Int(1))))
	if !strings.Contains(out, "no returning instruction") {
		t.Errorf("expected warning:\n%s", out)
	}
	if strings.Contains(out, "===") {
		t.Errorf("unnamed program printed a name header:\n%s", out)
	}
}

func TestDisassembleAssembleRoundTrip(t *testing.T) {
	p := New("mixed",
		vm.LoadConst(vm.Float(5)),
		vm.LoadConst(vm.Float(0.25)),
		vm.BinaryOp("/"),
		vm.LoadConst(vm.String("tab\there; # not a comment")),
		vm.PopTop(),
		vm.LoadGlobal("print"),
		vm.LoadConst(vm.None),
		vm.Call(1),
		vm.PopTop(),
		vm.Named("PUSH_NULL"),
		vm.ReturnConst(vm.False),
	)

	got, err := Assemble("", Disassemble(p))
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	if got.Name != "mixed" {
		t.Errorf("Name = %q, want mixed", got.Name)
	}
	if len(got.Instructions) != len(p.Instructions) {
		t.Fatalf("got %d instructions, want %d", len(got.Instructions), len(p.Instructions))
	}
	for i := range p.Instructions {
		if got.Instructions[i].String() != p.Instructions[i].String() {
			t.Errorf("instruction %d = %s, want %s", i, got.Instructions[i], p.Instructions[i])
		}
	}
	if c := got.Instructions[0].Const; c.Kind() != vm.KindFloat {
		t.Errorf("5.0 came back as %s", c.Kind())
	}
}

package bytecode

import (
	"errors"
	"testing"

	"github.com/chazu/minivm/vm"
)

func TestAssemble(t *testing.T) {
	src := `
; === add ===
# a = 2; b = 3; return a + b
RESUME
LOAD_CONST 2      ; a
STORE_FAST a
0002 LOAD_CONST 3
STORE_FAST b
LOAD_FAST a
LOAD_FAST b
BINARY_OP +
RETURN_VALUE
`
	p, err := Assemble("", src)
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	if p.Name != "add" {
		t.Errorf("Name = %q, want add", p.Name)
	}
	if p.Len() != 9 {
		t.Fatalf("Len = %d, want 9", p.Len())
	}

	got, err := p.Run(nil, vm.Vars{}, vm.Vars{}, nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !got.Equal(vm.Int(5)) {
		t.Errorf("got %v, want 5", got)
	}
}

func TestAssembleExplicitNameWins(t *testing.T) {
	p, err := Assemble("given", "; === header ===\nRETURN_CONST 1\n")
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	if p.Name != "given" || p.Len() != 1 {
		t.Errorf("got name %q len %d", p.Name, p.Len())
	}
}

func TestAssembleErrors(t *testing.T) {
	tests := []struct {
		src  string
		line int
	}{
		{"LOAD_CONST", 1},
		{"RETURN_VALUE\nPOP_TOP 3", 2},
		{"LOAD_CONST 'single'", 1},
		{"LOAD_CONST \"unterminated", 1},
		{"\n\nBUILD_STRING -1", 3},
		{"BUILD_STRING many", 1},
		{"STORE_FAST two words", 1},
		{"0001", 1},
	}
	for _, tt := range tests {
		_, err := Assemble("", tt.src)
		var se *SyntaxError
		if !errors.As(err, &se) {
			t.Errorf("Assemble(%q): got %v, want SyntaxError", tt.src, err)
			continue
		}
		if se.Line != tt.line {
			t.Errorf("Assemble(%q): line %d, want %d", tt.src, se.Line, tt.line)
		}
	}
}

func TestAssembleKeepsUnknownOpcodes(t *testing.T) {
	p, err := Assemble("", "JUMP_FORWARD 4\nRETURN_CONST None")
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	if p.Instructions[0].Op != vm.OpInvalid || p.Instructions[0].Mnemonic() != "JUMP_FORWARD" {
		t.Errorf("got %+v", p.Instructions[0])
	}

	_, err = p.Run(nil, vm.Vars{}, vm.Vars{}, nil)
	if !errors.Is(err, vm.UnsupportedOpcode) {
		t.Errorf("got %v, want UnsupportedOpcode", err)
	}
}

func TestParseConst(t *testing.T) {
	tests := []struct {
		in   string
		want vm.Value
	}{
		{"None", vm.None},
		{"True", vm.True},
		{"False", vm.False},
		{"42", vm.Int(42)},
		{"-7", vm.Int(-7)},
		{"2.5", vm.Float(2.5)},
		{"5.0", vm.Float(5)},
		{"1e+16", vm.Float(1e16)},
		{`"a b"`, vm.String("a b")},
		{"`raw\\n`", vm.String(`raw\n`)},
	}
	for _, tt := range tests {
		got, err := ParseConst(tt.in)
		if err != nil {
			t.Errorf("ParseConst(%q) failed: %v", tt.in, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("ParseConst(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if _, err := ParseConst("none"); err == nil {
		t.Error("ParseConst(none) succeeded")
	}
}

package vm

import "testing"

func TestOpcodeNamesRoundTrip(t *testing.T) {
	for _, op := range AllOpcodes() {
		info := GetOpcodeInfo(op)
		if info.Name == "" {
			t.Errorf("opcode %d has no name", op)
			continue
		}
		got, ok := ParseOpcode(info.Name)
		if !ok || got != op {
			t.Errorf("ParseOpcode(%q) = %v, %v; want %v", info.Name, got, ok, op)
		}
	}
}

func TestAllOpcodesSorted(t *testing.T) {
	ops := AllOpcodes()
	for i := 1; i < len(ops); i++ {
		if ops[i-1] >= ops[i] {
			t.Fatalf("AllOpcodes not sorted at %d: %v", i, ops)
		}
	}
}

func TestOpcodeMetadata(t *testing.T) {
	tests := []struct {
		op       Opcode
		operand  OperandKind
		terminal bool
	}{
		{OpLoadConst, OperandConst, false},
		{OpLoadFast, OperandName, false},
		{OpBinaryOp, OperandSymbol, false},
		{OpBuildString, OperandCount, false},
		{OpCall, OperandCount, false},
		{OpReturnValue, OperandNone, true},
		{OpReturnConst, OperandConst, true},
		{OpNop, OperandNone, false},
	}
	for _, tt := range tests {
		if got := tt.op.Operand(); got != tt.operand {
			t.Errorf("%s operand = %s, want %s", tt.op, got, tt.operand)
		}
		if got := tt.op.IsReturn(); got != tt.terminal {
			t.Errorf("%s IsReturn = %v, want %v", tt.op, got, tt.terminal)
		}
	}
}

func TestUnknownOpcode(t *testing.T) {
	if OpInvalid.Known() {
		t.Error("OpInvalid reported as known")
	}
	if _, ok := ParseOpcode("JUMP_FORWARD"); ok {
		t.Error("JUMP_FORWARD parsed as supported")
	}
	if got := Opcode(200).String(); got != "UNKNOWN(200)" {
		t.Errorf("String = %q", got)
	}

	in := Named("PUSH_NULL")
	if in.Op != OpInvalid || in.Mnemonic() != "PUSH_NULL" {
		t.Errorf("Named(PUSH_NULL) = %+v", in)
	}
	if in := Named("CALL"); in.Op != OpCall {
		t.Errorf("Named(CALL).Op = %s", in.Op)
	}
}

func TestInstructionString(t *testing.T) {
	tests := []struct {
		in   Instruction
		want string
	}{
		{LoadConst(String("hi")), `LOAD_CONST "hi"`},
		{LoadConst(Int(2)), "LOAD_CONST 2"},
		{ReturnConst(None), "RETURN_CONST None"},
		{StoreFast("x"), "STORE_FAST x"},
		{BinaryOp("+"), "BINARY_OP +"},
		{Call(2), "CALL 2"},
		{ReturnValue(), "RETURN_VALUE"},
		{Named("PUSH_NULL"), "PUSH_NULL"},
	}
	for _, tt := range tests {
		if got := tt.in.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

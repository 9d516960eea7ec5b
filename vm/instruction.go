package vm

import "strconv"

// Instruction is one decoded bytecode instruction.
//
// Only the field named by the opcode's OperandKind is meaningful; the rest
// stay at their zero values.
type Instruction struct {
	Op Opcode

	// Opname is the decoder's original mnemonic. It is only consulted when
	// Op is OpInvalid, so that unsupported opcodes can be reported by name.
	Opname string

	Const  Value  // LOAD_CONST, RETURN_CONST
	Name   string // LOAD_FAST, STORE_FAST, LOAD_GLOBAL, LOAD_NAME
	Symbol string // BINARY_OP
	Count  int    // BUILD_STRING, CALL
}

// Mnemonic returns the instruction's opcode name.
func (in Instruction) Mnemonic() string {
	if !in.Op.Known() && in.Opname != "" {
		return in.Opname
	}
	return in.Op.String()
}

// Arg formats the instruction's argument, or "" if it takes none.
func (in Instruction) Arg() string {
	switch in.Op.Operand() {
	case OperandConst:
		return in.Const.Repr()
	case OperandName:
		return in.Name
	case OperandSymbol:
		return in.Symbol
	case OperandCount:
		return strconv.Itoa(in.Count)
	}
	return ""
}

// String returns the instruction in listing syntax.
func (in Instruction) String() string {
	if arg := in.Arg(); arg != "" {
		return in.Mnemonic() + " " + arg
	}
	return in.Mnemonic()
}

// Named returns an instruction for the given mnemonic. Mnemonics outside
// the supported set produce an OpInvalid instruction that fails at run time.
func Named(opname string) Instruction {
	if op, ok := ParseOpcode(opname); ok {
		return Instruction{Op: op}
	}
	return Instruction{Op: OpInvalid, Opname: opname}
}

// ---------------------------------------------------------------------------
// Constructors
// ---------------------------------------------------------------------------

// Nop does nothing.
func Nop() Instruction { return Instruction{Op: OpNop} }

// Resume marks the start of a code object; it is a no-op.
func Resume() Instruction { return Instruction{Op: OpResume} }

// LoadConst pushes v.
func LoadConst(v Value) Instruction { return Instruction{Op: OpLoadConst, Const: v} }

// LoadFast pushes the local name.
func LoadFast(name string) Instruction { return Instruction{Op: OpLoadFast, Name: name} }

// StoreFast pops into the local name.
func StoreFast(name string) Instruction { return Instruction{Op: OpStoreFast, Name: name} }

// LoadGlobal pushes name from globals or builtins.
func LoadGlobal(name string) Instruction { return Instruction{Op: OpLoadGlobal, Name: name} }

// LoadName pushes name from locals, globals or builtins.
func LoadName(name string) Instruction { return Instruction{Op: OpLoadName, Name: name} }

// PopTop discards the top of the stack.
func PopTop() Instruction { return Instruction{Op: OpPopTop} }

// BinaryOp applies the operator symbol to the top two values.
func BinaryOp(symbol string) Instruction { return Instruction{Op: OpBinaryOp, Symbol: symbol} }

// FormatValue replaces the top of the stack with its string form.
func FormatValue() Instruction { return Instruction{Op: OpFormatValue} }

// BuildString joins the top n values into one string.
func BuildString(n int) Instruction { return Instruction{Op: OpBuildString, Count: n} }

// Call invokes the callable below argc arguments.
func Call(argc int) Instruction { return Instruction{Op: OpCall, Count: argc} }

// ReturnValue returns the top of the stack.
func ReturnValue() Instruction { return Instruction{Op: OpReturnValue} }

// ReturnConst returns v.
func ReturnConst(v Value) Instruction { return Instruction{Op: OpReturnConst, Const: v} }

package vm

import (
	"fmt"
	"sort"
)

// Opcode identifies one instruction of the supported subset.
type Opcode uint8

const (
	// OpInvalid marks an instruction whose opcode the engine does not know.
	// Decoders keep the original name in Instruction.Opname.
	OpInvalid Opcode = iota

	// No-ops
	OpNop
	OpResume

	// Constants and variables
	OpLoadConst  // push constant
	OpLoadFast   // push locals[name]
	OpStoreFast  // pop into locals[name]
	OpLoadGlobal // push globals[name] or builtin
	OpLoadName   // push locals[name], globals[name] or builtin

	// Stack
	OpPopTop

	// Operators and strings
	OpBinaryOp    // pop right, pop left, push left <symbol> right
	OpFormatValue // pop, push string form
	OpBuildString // pop count parts, push concatenation

	// Calls
	OpCall // pop count args, pop callable, push result

	// Return
	OpReturnValue // pop, terminate with value
	OpReturnConst // terminate with constant

	opcodeCount
)

// OperandKind describes which Instruction field an opcode reads.
type OperandKind uint8

const (
	OperandNone   OperandKind = iota
	OperandConst              // Instruction.Const
	OperandName               // Instruction.Name
	OperandSymbol             // Instruction.Symbol
	OperandCount              // Instruction.Count
)

// String returns the operand kind name used in the YAML encoding.
func (k OperandKind) String() string {
	switch k {
	case OperandNone:
		return "none"
	case OperandConst:
		return "const"
	case OperandName:
		return "name"
	case OperandSymbol:
		return "symbol"
	case OperandCount:
		return "count"
	default:
		return fmt.Sprintf("OperandKind(%d)", k)
	}
}

// OpcodeInfo provides metadata about each opcode for listings and validation.
type OpcodeInfo struct {
	Name      string      // Mnemonic
	Operand   OperandKind // Which argument the opcode reads
	StackPop  int         // Values popped (-1 = depends on Count)
	StackPush int         // Values pushed
	Terminal  bool        // Ends the run
}

// opcodeInfoTable maps opcodes to their metadata.
var opcodeInfoTable = map[Opcode]OpcodeInfo{
	OpNop:    {"NOP", OperandNone, 0, 0, false},
	OpResume: {"RESUME", OperandNone, 0, 0, false},

	OpLoadConst:  {"LOAD_CONST", OperandConst, 0, 1, false},
	OpLoadFast:   {"LOAD_FAST", OperandName, 0, 1, false},
	OpStoreFast:  {"STORE_FAST", OperandName, 1, 0, false},
	OpLoadGlobal: {"LOAD_GLOBAL", OperandName, 0, 1, false},
	OpLoadName:   {"LOAD_NAME", OperandName, 0, 1, false},

	OpPopTop: {"POP_TOP", OperandNone, 1, 0, false},

	OpBinaryOp:    {"BINARY_OP", OperandSymbol, 2, 1, false},
	OpFormatValue: {"FORMAT_VALUE", OperandNone, 1, 1, false},
	OpBuildString: {"BUILD_STRING", OperandCount, -1, 1, false},

	OpCall: {"CALL", OperandCount, -1, 1, false}, // Pops callable + count args

	OpReturnValue: {"RETURN_VALUE", OperandNone, 1, 0, true},
	OpReturnConst: {"RETURN_CONST", OperandConst, 0, 0, true},
}

var opcodeByName = func() map[string]Opcode {
	m := make(map[string]Opcode, len(opcodeInfoTable))
	for op, info := range opcodeInfoTable {
		m[info.Name] = op
	}
	return m
}()

// GetOpcodeInfo returns metadata for an opcode.
// Returns an OpcodeInfo named "UNKNOWN(n)" if the opcode is not recognized.
func GetOpcodeInfo(op Opcode) OpcodeInfo {
	if info, ok := opcodeInfoTable[op]; ok {
		return info
	}
	return OpcodeInfo{Name: fmt.Sprintf("UNKNOWN(%d)", byte(op))}
}

// ParseOpcode looks up an opcode by mnemonic.
func ParseOpcode(name string) (Opcode, bool) {
	op, ok := opcodeByName[name]
	return op, ok
}

// String returns the mnemonic of an opcode.
func (op Opcode) String() string {
	return GetOpcodeInfo(op).Name
}

// Known reports whether op belongs to the supported set.
func (op Opcode) Known() bool {
	_, ok := opcodeInfoTable[op]
	return ok
}

// Operand returns which instruction argument op reads.
func (op Opcode) Operand() OperandKind {
	return GetOpcodeInfo(op).Operand
}

// IsReturn returns true if this opcode terminates execution.
func (op Opcode) IsReturn() bool {
	return GetOpcodeInfo(op).Terminal
}

// AllOpcodes returns every supported opcode in numeric order.
func AllOpcodes() []Opcode {
	opcodes := make([]Opcode, 0, len(opcodeInfoTable))
	for op := range opcodeInfoTable {
		opcodes = append(opcodes, op)
	}
	sort.Slice(opcodes, func(i, j int) bool { return opcodes[i] < opcodes[j] })
	return opcodes
}

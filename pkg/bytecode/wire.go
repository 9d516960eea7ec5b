package bytecode

import (
	"fmt"

	"github.com/chazu/minivm/vm"
	"github.com/fxamacker/cbor/v2"
)

// WireVersion is the current wire format version.
// Increment when making incompatible changes to the format.
const WireVersion uint16 = 1

// WireMagic identifies minivm wire programs: "MVBC" (MiniVM ByteCode).
const WireMagic = "MVBC"

// cborEncMode uses canonical options so equal programs encode to equal bytes.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("bytecode: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

type wireProgram struct {
	Magic   string            `cbor:"1,keyasint"`
	Version uint16            `cbor:"2,keyasint"`
	Name    string            `cbor:"3,keyasint,omitempty"`
	Code    []wireInstruction `cbor:"4,keyasint"`
}

type wireInstruction struct {
	Op     string `cbor:"1,keyasint"`
	Const  any    `cbor:"2,keyasint"`
	Name   string `cbor:"3,keyasint,omitempty"`
	Symbol string `cbor:"4,keyasint,omitempty"`
	Count  int    `cbor:"5,keyasint,omitempty"`
}

// MarshalProgram serializes a Program to CBOR bytes.
func MarshalProgram(p *Program) ([]byte, error) {
	w := wireProgram{
		Magic:   WireMagic,
		Version: WireVersion,
		Name:    p.Name,
		Code:    make([]wireInstruction, len(p.Instructions)),
	}
	for i, in := range p.Instructions {
		if in.Const.Kind() == vm.KindCallable {
			return nil, fmt.Errorf("bytecode: instruction %d: callable constants cannot be encoded", i)
		}
		w.Code[i] = wireInstruction{
			Op:     in.Mnemonic(),
			Const:  in.Const.Go(),
			Name:   in.Name,
			Symbol: in.Symbol,
			Count:  in.Count,
		}
	}
	return cborEncMode.Marshal(w)
}

// UnmarshalProgram deserializes a Program from CBOR bytes.
func UnmarshalProgram(data []byte) (*Program, error) {
	var w wireProgram
	if err := cbor.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("bytecode: unmarshal program: %w", err)
	}
	if w.Magic != WireMagic {
		return nil, fmt.Errorf("bytecode: bad magic %q", w.Magic)
	}
	if w.Version != WireVersion {
		return nil, fmt.Errorf("bytecode: unsupported wire version %d (want %d)", w.Version, WireVersion)
	}

	p := &Program{Name: w.Name, Instructions: make([]vm.Instruction, len(w.Code))}
	for i, wi := range w.Code {
		in, err := decodeInstruction(wi.Op, wi.Const, wi.Name, wi.Symbol, wi.Count)
		if err != nil {
			return nil, fmt.Errorf("bytecode: instruction %d: %w", i, err)
		}
		p.Instructions[i] = in
	}
	return p, nil
}

// decodeInstruction rebuilds an instruction from its mnemonic and the
// operand fields shared by the wire and YAML encodings.
func decodeInstruction(op string, constant any, name, symbol string, count int) (vm.Instruction, error) {
	in := vm.Named(op)
	c, err := vm.FromGo(constant)
	if err != nil {
		return in, fmt.Errorf("%s: %w", op, err)
	}
	in.Const = c
	in.Name = name
	in.Symbol = symbol
	in.Count = count
	return in, nil
}

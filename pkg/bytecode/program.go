package bytecode

import (
	"errors"
	"fmt"

	"github.com/chazu/minivm/vm"
)

// ErrEmptyProgram is returned by Validate for a program with no instructions.
var ErrEmptyProgram = errors.New("bytecode: program has no instructions")

// Program is a named instruction sequence.
type Program struct {
	Name         string
	Instructions []vm.Instruction
}

// New creates a program from instructions.
func New(name string, code ...vm.Instruction) *Program {
	return &Program{Name: name, Instructions: code}
}

// Append adds instructions to the end of the program.
func (p *Program) Append(code ...vm.Instruction) {
	p.Instructions = append(p.Instructions, code...)
}

// Len returns the number of instructions.
func (p *Program) Len() int { return len(p.Instructions) }

// Validate checks the structural constraints decoders cannot express:
// a program is non-empty and every count operand is non-negative.
// Unsupported opcodes are not rejected here; they fail when executed.
func (p *Program) Validate() error {
	if len(p.Instructions) == 0 {
		return ErrEmptyProgram
	}
	for i, in := range p.Instructions {
		switch in.Op.Operand() {
		case vm.OperandCount:
			if in.Count < 0 {
				return fmt.Errorf("bytecode: instruction %d (%s): negative count %d", i, in.Mnemonic(), in.Count)
			}
		case vm.OperandName:
			if in.Name == "" {
				return fmt.Errorf("bytecode: instruction %d (%s): missing name", i, in.Mnemonic())
			}
		case vm.OperandSymbol:
			if in.Symbol == "" {
				return fmt.Errorf("bytecode: instruction %d (%s): missing operator symbol", i, in.Mnemonic())
			}
		}
	}
	return nil
}

// HasReturn reports whether any instruction terminates the run.
func (p *Program) HasReturn() bool {
	for _, in := range p.Instructions {
		if in.Op.IsReturn() {
			return true
		}
	}
	return false
}

// Run executes the program on e against the given scopes.
func (p *Program) Run(e *vm.Engine, locals, globals vm.Scope, builtins vm.Resolver) (vm.Value, error) {
	if e == nil {
		e = vm.New()
	}
	return e.Execute(p.Instructions, locals, globals, builtins)
}

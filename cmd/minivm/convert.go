package main

import (
	"fmt"

	"github.com/chazu/minivm/pkg/bytecode"
)

// handleDisasmCommand processes the `minivm disasm` subcommand.
func (c *cli) handleDisasmCommand(args []string) int {
	if len(args) != 1 {
		return c.usageError("Usage: minivm disasm <file>")
	}
	p, err := c.loadProgram(args[0])
	if err != nil {
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Fprint(c.stdout, bytecode.Disassemble(p))
	return 0
}

// handleConvertCommand processes the `minivm convert` subcommand. The
// formats of both files are chosen by extension.
func (c *cli) handleConvertCommand(args []string) int {
	if len(args) != 2 {
		return c.usageError("Usage: minivm convert <in> <out>")
	}
	in, out := args[0], args[1]

	p, err := bytecode.LoadFile(in)
	if err != nil {
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return 1
	}
	if err := p.Validate(); err != nil {
		fmt.Fprintf(c.stderr, "Warning: %v\n", err)
	}
	if err := bytecode.SaveFile(out, p); err != nil {
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Fprintf(c.stdout, "Wrote %s (%d instructions)\n", out, p.Len())
	return 0
}

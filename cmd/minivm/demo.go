package main

import (
	"fmt"

	"github.com/chazu/minivm/pkg/bytecode"
	"github.com/chazu/minivm/vm"
)

// demoPrograms returns the instruction sequences a CPython 3.11 compiler
// emits for three small functions:
//
//	greet:     name = "World"; return f"Hello, {name}!"
//	multiply:  a = 3; b = 4; return a * b
//	calculate: x = 2; y = 3; result = x * 2 + y; return result
func demoPrograms() []*bytecode.Program {
	return []*bytecode.Program{
		bytecode.New("greet",
			vm.Resume(),
			vm.LoadConst(vm.String("World")),
			vm.StoreFast("name"),
			vm.LoadConst(vm.String("Hello, ")),
			vm.LoadFast("name"),
			vm.FormatValue(),
			vm.LoadConst(vm.String("!")),
			vm.BuildString(3),
			vm.ReturnValue(),
		),
		bytecode.New("multiply",
			vm.Resume(),
			vm.LoadConst(vm.Int(3)),
			vm.StoreFast("a"),
			vm.LoadConst(vm.Int(4)),
			vm.StoreFast("b"),
			vm.LoadFast("a"),
			vm.LoadFast("b"),
			vm.BinaryOp("*"),
			vm.ReturnValue(),
		),
		bytecode.New("calculate",
			vm.Resume(),
			vm.LoadConst(vm.Int(2)),
			vm.StoreFast("x"),
			vm.LoadConst(vm.Int(3)),
			vm.StoreFast("y"),
			vm.LoadFast("x"),
			vm.LoadConst(vm.Int(2)),
			vm.BinaryOp("*"),
			vm.LoadFast("y"),
			vm.BinaryOp("+"),
			vm.StoreFast("result"),
			vm.LoadFast("result"),
			vm.ReturnValue(),
		),
	}
}

// handleDemoCommand processes the `minivm demo` subcommand.
func (c *cli) handleDemoCommand(args []string) int {
	if len(args) != 0 {
		return c.usageError("Usage: minivm demo")
	}
	globals, err := c.globals()
	if err != nil {
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return 1
	}

	e := c.engine(false)
	status := 0
	for i, p := range demoPrograms() {
		if i > 0 {
			fmt.Fprintln(c.stdout)
		}
		fmt.Fprintf(c.stdout, "Testing %s function:\n", p.Name)
		result, err := p.Run(e, vm.Vars{}, globals, c.builtins())
		if err != nil {
			c.reportError(err)
			status = 1
			continue
		}
		fmt.Fprintf(c.stdout, "Result: %s\n", result.Str())
	}
	return status
}

package bytecode

import (
	"fmt"
	"strings"
)

// Disassemble returns a human-readable listing of the program. The output
// is accepted by Assemble.
func Disassemble(p *Program) string {
	var sb strings.Builder

	if p.Name != "" {
		sb.WriteString(fmt.Sprintf("; === %s ===\n", p.Name))
	}
	sb.WriteString(fmt.Sprintf("; minivm listing v%d, %d instructions\n", WireVersion, len(p.Instructions)))
	if !p.HasReturn() {
		sb.WriteString("; warning: no returning instruction\n")
	}

	for i, in := range p.Instructions {
		line := fmt.Sprintf("%04d  %-14s %s", i, in.Mnemonic(), in.Arg())
		sb.WriteString(strings.TrimRight(line, " "))
		sb.WriteString("\n")
	}
	return sb.String()
}

package bytecode

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/chazu/minivm/vm"
)

// SyntaxError reports a malformed listing line.
type SyntaxError struct {
	Line int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("bytecode: line %d: %s", e.Line, e.Msg)
}

// Assemble parses a listing. If name is empty, a "; === name ===" header
// in the listing names the program.
//
// Mnemonics the engine does not support are accepted and their operand is
// discarded, so that foreign listings still load.
func Assemble(name, src string) (*Program, error) {
	p := &Program{Name: name}

	scanner := bufio.NewScanner(strings.NewReader(src))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		raw := strings.TrimSpace(scanner.Text())

		if p.Name == "" {
			if n, ok := headerName(raw); ok {
				p.Name = n
				continue
			}
		}

		line := strings.TrimSpace(stripComment(raw))
		if line == "" {
			continue
		}

		in, err := ParseInstruction(line)
		if err != nil {
			return nil, &SyntaxError{Line: lineNo, Msg: err.Error()}
		}
		p.Instructions = append(p.Instructions, in)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("bytecode: reading listing: %w", err)
	}
	return p, nil
}

// ParseInstruction parses one listing line without comments, e.g.
// "0003  BINARY_OP +" or "LOAD_CONST \"hi\"".
func ParseInstruction(line string) (vm.Instruction, error) {
	mnemonic, rest := splitField(line)
	if isDigits(mnemonic) {
		mnemonic, rest = splitField(rest)
	}
	if mnemonic == "" {
		return vm.Instruction{}, fmt.Errorf("missing opcode")
	}

	in := vm.Named(mnemonic)
	if !in.Op.Known() {
		return in, nil
	}

	kind := in.Op.Operand()
	if kind == vm.OperandNone {
		if rest != "" {
			return in, fmt.Errorf("%s takes no operand, got %q", mnemonic, rest)
		}
		return in, nil
	}
	if rest == "" {
		return in, fmt.Errorf("%s needs a %s operand", mnemonic, kind)
	}

	switch kind {
	case vm.OperandConst:
		c, err := ParseConst(rest)
		if err != nil {
			return in, fmt.Errorf("%s: %w", mnemonic, err)
		}
		in.Const = c
	case vm.OperandName:
		if strings.ContainsAny(rest, " \t") {
			return in, fmt.Errorf("%s: invalid name %q", mnemonic, rest)
		}
		in.Name = rest
	case vm.OperandSymbol:
		if strings.ContainsAny(rest, " \t") {
			return in, fmt.Errorf("%s: invalid operator %q", mnemonic, rest)
		}
		in.Symbol = rest
	case vm.OperandCount:
		n, err := strconv.Atoi(rest)
		if err != nil || n < 0 {
			return in, fmt.Errorf("%s: invalid count %q", mnemonic, rest)
		}
		in.Count = n
	}
	return in, nil
}

// ParseConst parses a constant literal: None, True, False, an integer, a
// float, or a double- or back-quoted string.
func ParseConst(s string) (vm.Value, error) {
	switch s {
	case "None":
		return vm.None, nil
	case "True":
		return vm.True, nil
	case "False":
		return vm.False, nil
	}
	if strings.HasPrefix(s, `"`) || strings.HasPrefix(s, "`") {
		u, err := strconv.Unquote(s)
		if err != nil {
			return vm.None, fmt.Errorf("bad string literal %s", s)
		}
		return vm.String(u), nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return vm.Int(n), nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return vm.Float(f), nil
	}
	return vm.None, fmt.Errorf("bad constant %q", s)
}

func headerName(line string) (string, bool) {
	if !strings.HasPrefix(line, ";") {
		return "", false
	}
	body := strings.TrimSpace(strings.TrimPrefix(line, ";"))
	if !strings.HasPrefix(body, "===") || !strings.HasSuffix(body, "===") || len(body) < 6 {
		return "", false
	}
	name := strings.TrimSpace(body[3 : len(body)-3])
	return name, name != ""
}

// stripComment removes a trailing ";" or "#" comment outside string literals.
func stripComment(line string) string {
	var quote rune
	escaped := false
	for i, r := range line {
		switch {
		case escaped:
			escaped = false
		case quote != 0:
			if r == '\\' && quote == '"' {
				escaped = true
			} else if r == quote {
				quote = 0
			}
		case r == '"' || r == '`':
			quote = r
		case r == ';' || r == '#':
			return line[:i]
		}
	}
	return line
}

func splitField(s string) (string, string) {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, " \t"); i >= 0 {
		return s[:i], strings.TrimSpace(s[i:])
	}
	return s, ""
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

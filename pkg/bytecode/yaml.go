package bytecode

import (
	"bytes"
	"fmt"
	"math"
	"strconv"

	"github.com/chazu/minivm/vm"
	"gopkg.in/yaml.v3"
)

type yamlProgram struct {
	Name         string            `yaml:"name,omitempty"`
	Instructions []yamlInstruction `yaml:"instructions"`
}

type yamlInstruction struct {
	Op     string `yaml:"op"`
	Const  any    `yaml:"const,omitempty"`
	Name   string `yaml:"name,omitempty"`
	Symbol string `yaml:"symbol,omitempty"`
	Count  int    `yaml:"count,omitempty"`
}

// DecodeYAML parses a YAML program document. Unknown keys are rejected.
func DecodeYAML(data []byte) (*Program, error) {
	var doc yamlProgram
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("bytecode: decode yaml: %w", err)
	}

	p := &Program{Name: doc.Name, Instructions: make([]vm.Instruction, len(doc.Instructions))}
	for i, yi := range doc.Instructions {
		if yi.Op == "" {
			return nil, fmt.Errorf("bytecode: yaml instruction %d: missing op", i)
		}
		in, err := decodeInstruction(yi.Op, yi.Const, yi.Name, yi.Symbol, yi.Count)
		if err != nil {
			return nil, fmt.Errorf("bytecode: yaml instruction %d: %w", i, err)
		}
		p.Instructions[i] = in
	}
	return p, nil
}

// EncodeYAML renders a program as a YAML document.
func EncodeYAML(p *Program) ([]byte, error) {
	doc := yamlProgram{Name: p.Name, Instructions: make([]yamlInstruction, len(p.Instructions))}
	for i, in := range p.Instructions {
		yi := yamlInstruction{Op: in.Mnemonic()}
		switch in.Op.Operand() {
		case vm.OperandConst:
			if in.Const.Kind() == vm.KindCallable {
				return nil, fmt.Errorf("bytecode: instruction %d: callable constants cannot be encoded", i)
			}
			yi.Const = yamlConst(in.Const)
		case vm.OperandName:
			yi.Name = in.Name
		case vm.OperandSymbol:
			yi.Symbol = in.Symbol
		case vm.OperandCount:
			yi.Count = in.Count
		}
		doc.Instructions[i] = yi
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("bytecode: encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("bytecode: encode yaml: %w", err)
	}
	return buf.Bytes(), nil
}

// yamlConst renders a constant as an explicitly tagged scalar. Plain Go
// values would lose 5.0 to 5, and omitempty would drop False, 0 and "".
func yamlConst(v vm.Value) any {
	scalar := func(tag, text string) *yaml.Node {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: text}
	}
	switch v.Kind() {
	case vm.KindBool:
		b, _ := v.AsBool()
		return scalar("!!bool", strconv.FormatBool(b))
	case vm.KindInt:
		n, _ := v.AsInt()
		return scalar("!!int", strconv.FormatInt(n, 10))
	case vm.KindString:
		s, _ := v.AsString()
		return scalar("!!str", s)
	case vm.KindFloat:
		f, _ := v.AsFloat()
		text := v.Str()
		switch {
		case math.IsInf(f, 1):
			text = ".inf"
		case math.IsInf(f, -1):
			text = "-.inf"
		case math.IsNaN(f):
			text = ".nan"
		}
		return scalar("!!float", text)
	}
	return nil
}

package bytecode

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnknownFormat is returned for a file extension with no codec.
var ErrUnknownFormat = errors.New("bytecode: unknown program format")

// Format names a program encoding.
type Format int

const (
	FormatWire Format = iota
	FormatYAML
	FormatListing
)

func (f Format) String() string {
	switch f {
	case FormatWire:
		return "wire"
	case FormatYAML:
		return "yaml"
	case FormatListing:
		return "listing"
	default:
		return fmt.Sprintf("Format(%d)", f)
	}
}

// FormatFor picks the encoding from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mvb":
		return FormatWire, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".mvl", ".txt":
		return FormatListing, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
}

// Decode parses data in the given format. name is used when the encoding
// carries no program name.
func Decode(f Format, name string, data []byte) (*Program, error) {
	var (
		p   *Program
		err error
	)
	switch f {
	case FormatWire:
		p, err = UnmarshalProgram(data)
	case FormatYAML:
		p, err = DecodeYAML(data)
	case FormatListing:
		p, err = Assemble("", string(data))
	default:
		return nil, ErrUnknownFormat
	}
	if err != nil {
		return nil, err
	}
	if p.Name == "" {
		p.Name = name
	}
	return p, nil
}

// Encode renders p in the given format.
func Encode(f Format, p *Program) ([]byte, error) {
	switch f {
	case FormatWire:
		return MarshalProgram(p)
	case FormatYAML:
		return EncodeYAML(p)
	case FormatListing:
		return []byte(Disassemble(p)), nil
	}
	return nil, ErrUnknownFormat
}

// LoadFile reads a program, choosing the codec by extension. Programs
// without a name take the file's base name.
func LoadFile(path string) (*Program, error) {
	f, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	p, err := Decode(f, base, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// SaveFile writes a program, choosing the codec by extension.
func SaveFile(path string, p *Program) error {
	f, err := FormatFor(path)
	if err != nil {
		return err
	}
	data, err := Encode(f, p)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("cannot write %s: %w", path, err)
	}
	return nil
}

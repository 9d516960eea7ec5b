package bytecode

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/chazu/minivm/vm"
)

func TestSaveLoadFileEachFormat(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"greet.mvb", "greet.yaml", "greet.yml", "greet.mvl", "greet.txt"} {
		path := filepath.Join(dir, name)
		if err := SaveFile(path, greetProgram()); err != nil {
			t.Fatalf("SaveFile(%s): %v", name, err)
		}
		p, err := LoadFile(path)
		if err != nil {
			t.Fatalf("LoadFile(%s): %v", name, err)
		}
		got, err := p.Run(nil, vm.Vars{}, vm.Vars{}, nil)
		if err != nil {
			t.Fatalf("%s: Run failed: %v", name, err)
		}
		if !got.Equal(vm.String("Hello, World!")) {
			t.Errorf("%s: got %v", name, got)
		}
	}
}

func TestLoadFileNamesFromBaseName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "answer.mvl")
	if err := os.WriteFile(path, []byte("RETURN_CONST 42\n"), 0644); err != nil {
		t.Fatal(err)
	}
	p, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if p.Name != "answer" {
		t.Errorf("Name = %q, want answer", p.Name)
	}
}

func TestUnknownFormat(t *testing.T) {
	if _, err := FormatFor("prog.pyc"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("got %v, want ErrUnknownFormat", err)
	}
	if _, err := LoadFile("prog.json"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("got %v, want ErrUnknownFormat", err)
	}
	if _, err := Decode(Format(9), "", nil); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("got %v, want ErrUnknownFormat", err)
	}
}

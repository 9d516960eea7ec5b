package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/chazu/minivm/pkg/bytecode"
	"github.com/chazu/minivm/vm"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "minivm.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func answer(name string, n int64) *bytecode.Program {
	return bytecode.New(name, vm.LoadConst(vm.Int(n)), vm.ReturnValue())
}

func TestSaveLoadProgram(t *testing.T) {
	s := openTemp(t)

	if err := s.SaveProgram(answer("answer", 41)); err != nil {
		t.Fatalf("SaveProgram: %v", err)
	}
	if err := s.SaveProgram(answer("answer", 42)); err != nil {
		t.Fatalf("SaveProgram (replace): %v", err)
	}

	p, err := s.LoadProgram("answer")
	if err != nil {
		t.Fatalf("LoadProgram: %v", err)
	}
	got, err := p.Run(nil, vm.Vars{}, vm.Vars{}, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !got.Equal(vm.Int(42)) {
		t.Errorf("got %v, want 42", got)
	}

	if _, err := s.LoadProgram("missing"); !errors.Is(err, ErrProgramNotFound) {
		t.Errorf("got %v, want ErrProgramNotFound", err)
	}
	if err := s.SaveProgram(answer("", 1)); err == nil {
		t.Error("saved a program without a name")
	}
}

func TestListAndDeletePrograms(t *testing.T) {
	s := openTemp(t)
	for _, name := range []string{"b", "a", "c"} {
		if err := s.SaveProgram(answer(name, 1)); err != nil {
			t.Fatal(err)
		}
	}

	if err := s.DeleteProgram("b"); err != nil {
		t.Fatalf("DeleteProgram: %v", err)
	}
	if err := s.DeleteProgram("b"); !errors.Is(err, ErrProgramNotFound) {
		t.Errorf("second delete: got %v, want ErrProgramNotFound", err)
	}

	infos, err := s.ListPrograms()
	if err != nil {
		t.Fatalf("ListPrograms: %v", err)
	}
	if len(infos) != 2 || infos[0].Name != "a" || infos[1].Name != "c" {
		t.Fatalf("ListPrograms = %+v", infos)
	}
	if infos[0].Size == 0 || infos[0].UpdatedAt.IsZero() {
		t.Errorf("incomplete info %+v", infos[0])
	}
}

func TestRecordRunAndHistory(t *testing.T) {
	s := openTemp(t)
	base := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	ok := NewRunRecord("calc", base, vm.Int(7), nil)
	id, err := s.RecordRun(ok)
	if err != nil {
		t.Fatalf("RecordRun: %v", err)
	}
	if id == "" {
		t.Fatal("RecordRun assigned no ID")
	}

	_, runErr := vm.Execute([]vm.Instruction{vm.PopTop()}, vm.Vars{}, vm.Vars{}, nil)
	failed := NewRunRecord("calc", base.Add(time.Second), vm.None, runErr)
	if _, err := s.RecordRun(failed); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}
	if _, err := s.RecordRun(RunRecord{ID: "other", Program: "greet", StartedAt: base}); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}

	recs, err := s.History("calc", 0)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}
	if !recs[0].Failed() || recs[0].ErrorKind != "StackUnderflow" {
		t.Errorf("newest record = %+v", recs[0])
	}
	if recs[1].ID != id || recs[1].Result != "7" || !recs[1].StartedAt.Equal(base) {
		t.Errorf("oldest record = %+v", recs[1])
	}

	recs, err = s.History("calc", 1)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(recs) != 1 || !recs[0].Failed() {
		t.Errorf("limited history = %+v", recs)
	}
}

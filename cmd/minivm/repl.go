package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chazu/minivm/pkg/bytecode"
	"github.com/chazu/minivm/vm"
	"github.com/peterh/liner"
)

const historyFile = ".minivm_history"

const replHelp = `Enter one instruction per line, e.g. LOAD_CONST 2 or BINARY_OP +.
Commands:
  :run     Execute the buffered instructions, then clear the buffer
  :list    Show the buffered instructions
  :reset   Clear the buffer and all variables
  :help    Show this message
  exit     Leave the REPL
`

// replSession holds the instruction buffer and the scopes that persist
// between :run commands.
type replSession struct {
	c       *cli
	engine  *vm.Engine
	buf     *bytecode.Program
	locals  vm.Vars
	globals *vm.SyncScope
}

func newREPLSession(c *cli) (*replSession, error) {
	s := &replSession{c: c, engine: c.engine(false)}
	if err := s.reset(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *replSession) reset() error {
	globals, err := s.c.globals()
	if err != nil {
		return err
	}
	s.buf = bytecode.New("repl")
	s.locals = vm.Vars{}
	s.globals = globals
	return nil
}

// handle processes one input line. It reports false when the session ends.
func (s *replSession) handle(line string) bool {
	trimmed := strings.TrimSpace(line)
	switch trimmed {
	case "":
		return true
	case "exit", "quit", ":quit":
		return false
	case ":help", ":h", ":?":
		fmt.Fprint(s.c.stdout, replHelp)
	case ":list":
		if s.buf.Len() == 0 {
			fmt.Fprintln(s.c.stdout, "(empty)")
			return true
		}
		for i, in := range s.buf.Instructions {
			fmt.Fprintf(s.c.stdout, "%04d  %s\n", i, in)
		}
	case ":reset":
		if err := s.reset(); err != nil {
			fmt.Fprintf(s.c.stderr, "Error: %v\n", err)
		}
	case ":run":
		s.run()
	default:
		if strings.HasPrefix(trimmed, ":") {
			fmt.Fprintf(s.c.stderr, "Unknown command: %s (try :help)\n", trimmed)
			return true
		}
		p, err := bytecode.Assemble("", trimmed)
		if err != nil {
			fmt.Fprintf(s.c.stderr, "Error: %v\n", err)
			return true
		}
		s.buf.Append(p.Instructions...)
	}
	return true
}

// run executes the buffer against the session scopes. The buffer is
// cleared whether or not the run succeeds.
func (s *replSession) run() {
	if s.buf.Len() == 0 {
		fmt.Fprintln(s.c.stderr, "Nothing to run")
		return
	}
	p := s.buf
	s.buf = bytecode.New("repl")

	result, err := p.Run(s.engine, s.locals, s.globals, s.c.builtins())
	if err != nil {
		s.c.reportError(err)
		return
	}
	fmt.Fprintln(s.c.stdout, result.Repr())
}

// handleREPLCommand processes the `minivm repl` subcommand.
func (c *cli) handleREPLCommand(args []string) int {
	if len(args) != 0 {
		return c.usageError("Usage: minivm repl")
	}
	s, err := newREPLSession(c)
	if err != nil {
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return 1
	}

	fmt.Fprintln(c.stdout, "minivm REPL (type 'exit' to quit, ':help' for commands)")

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	var histPath string
	if home, err := os.UserHomeDir(); err == nil {
		histPath = filepath.Join(home, historyFile)
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
	}

	for {
		prompt := ">> "
		if s.buf.Len() > 0 {
			prompt = fmt.Sprintf("%02d ", s.buf.Len())
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(c.stdout)
			break
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if err != nil {
			fmt.Fprintf(c.stderr, "Error: %v\n", err)
			return 1
		}
		if strings.TrimSpace(line) != "" {
			ln.AppendHistory(line)
		}
		if !s.handle(line) {
			break
		}
	}

	if histPath != "" {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}
	return 0
}

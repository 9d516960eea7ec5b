package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/chazu/minivm/lib/store"
	"github.com/chazu/minivm/pkg/bytecode"
	"github.com/chazu/minivm/vm"
)

// handleRunCommand processes the `minivm run` subcommand.
// Usage:
//
//	minivm run prog.yaml          # run a file
//	minivm run -trace greet       # run a [programs] entry with tracing
//	minivm run -record prog.mvb   # also store a run record
func (c *cli) handleRunCommand(args []string) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	trace := fs.Bool("trace", false, "Log every dispatched instruction")
	record := fs.Bool("record", false, "Record the run in the store")
	verbosity := fs.Int("v", 0, "Log verbosity (1=info, 2=debug)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		return c.usageError("Usage: minivm run [-trace] [-record] [-v N] <file|name>")
	}
	if *verbosity > 0 || *trace {
		if *trace && *verbosity < 2 {
			*verbosity = 2
		}
		c.configureLogging(*verbosity)
	}

	p, err := c.loadProgram(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return 1
	}

	var st *store.Store
	if *record {
		st, err = c.openStore()
		if err != nil {
			fmt.Fprintf(c.stderr, "Error: %v\n", err)
			return 1
		}
		defer st.Close()
	}
	return c.execute(p, *trace, st)
}

// execute runs p with fresh locals, manifest globals and the builtins,
// printing the result's repr. A non-nil st receives a run record.
func (c *cli) execute(p *bytecode.Program, trace bool, st *store.Store) int {
	globals, err := c.globals()
	if err != nil {
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return 1
	}

	started := time.Now()
	result, runErr := p.Run(c.engine(trace), vm.Vars{}, globals, c.builtins())
	c.log.Infof("program %s finished in %s", p.Name, time.Since(started))

	if st != nil {
		id, err := st.RecordRun(store.NewRunRecord(p.Name, started, result, runErr))
		if err != nil {
			fmt.Fprintf(c.stderr, "Warning: %v\n", err)
		} else {
			c.log.Debugf("recorded run %s", id)
		}
	}

	if runErr != nil {
		c.reportError(runErr)
		return 1
	}
	fmt.Fprintln(c.stdout, result.Repr())
	return 0
}

// loadProgram reads a program file, falling back to a manifest [programs]
// entry when no such file exists.
func (c *cli) loadProgram(arg string) (*bytecode.Program, error) {
	if _, err := os.Stat(arg); err != nil && c.manifest != nil {
		if path, ok := c.manifest.ProgramPath(arg); ok {
			p, err := bytecode.LoadFile(path)
			if err != nil {
				return nil, err
			}
			p.Name = arg
			return p, nil
		}
	}
	return bytecode.LoadFile(arg)
}

// openStore opens the manifest's store, or the default one outside a project.
func (c *cli) openStore() (*store.Store, error) {
	if c.manifest != nil {
		return store.Open(c.manifest.StorePath())
	}
	return store.OpenDefault()
}

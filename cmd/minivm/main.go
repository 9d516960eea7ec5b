// minivm CLI - runs, inspects and stores bytecode programs
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chazu/minivm/lib/builtins"
	"github.com/chazu/minivm/manifest"
	"github.com/chazu/minivm/vm"
	"github.com/tliron/commonlog"

	_ "github.com/tliron/commonlog/simple"
)

const usage = `Usage: minivm <command> [options] [args]

Commands:
  run [-trace] [-record] [-v N] <file|name>   Run a program file or manifest entry
  disasm <file>                               Print a program listing
  convert <in> <out>                          Re-encode a program (.mvb, .yaml, .mvl)
  demo                                        Run the built-in demo programs
  store save <name> <file>                    Save a program to the store
  store run <name>                            Run a stored program
  store list                                  List stored programs
  store history <name> [-n N]                 Show recent runs of a program
  store rm <name>                             Delete a stored program
  repl                                        Assemble and run instructions interactively
  help                                        Show this message

Examples:
  minivm run examples/programs/greet.yaml
  minivm convert greet.yaml greet.mvb
  minivm store save greet greet.mvb && minivm store run greet
`

// cli carries the streams and project configuration shared by commands.
type cli struct {
	stdout   io.Writer
	stderr   io.Writer
	manifest *manifest.Manifest // nil outside a project
	log      commonlog.Logger
}

func main() {
	c := &cli{stdout: os.Stdout, stderr: os.Stderr}
	os.Exit(c.main(os.Args[1:]))
}

// main dispatches a subcommand and returns the process exit code.
func (c *cli) main(args []string) int {
	if len(args) == 0 {
		fmt.Fprint(c.stderr, usage)
		return 2
	}

	m, err := manifest.FindAndLoad(".")
	if err != nil {
		fmt.Fprintf(c.stderr, "Error loading manifest: %v\n", err)
		return 1
	}
	c.manifest = m
	c.configureLogging(0)

	switch cmd, rest := args[0], args[1:]; cmd {
	case "run":
		return c.handleRunCommand(rest)
	case "disasm":
		return c.handleDisasmCommand(rest)
	case "convert":
		return c.handleConvertCommand(rest)
	case "demo":
		return c.handleDemoCommand(rest)
	case "store":
		return c.handleStoreCommand(rest)
	case "repl":
		return c.handleREPLCommand(rest)
	case "help", "-h", "--help":
		fmt.Fprint(c.stdout, usage)
		return 0
	default:
		fmt.Fprintf(c.stderr, "Unknown command: %s\n\n%s", cmd, usage)
		return 2
	}
}

// configureLogging applies the manifest's [log] section. A positive
// verbosity from the command line wins over the manifest.
func (c *cli) configureLogging(verbosity int) {
	var path *string
	if c.manifest != nil {
		if verbosity <= 0 {
			verbosity = c.manifest.Log.Verbosity
		}
		if p := c.manifest.LogFilePath(); p != "" {
			path = &p
		}
	}
	commonlog.Configure(verbosity, path)
	c.log = commonlog.GetLogger("minivm.cli")
}

// engine builds an Engine honoring -trace and the manifest's [engine] section.
func (c *cli) engine(trace bool) *vm.Engine {
	if c.manifest != nil && c.manifest.Engine.Trace {
		trace = true
	}
	return vm.New(vm.WithTrace(trace))
}

// globals returns a fresh global scope seeded from the manifest.
func (c *cli) globals() (*vm.SyncScope, error) {
	if c.manifest == nil {
		return vm.NewSyncScope(nil), nil
	}
	vars, err := c.manifest.GlobalVars()
	if err != nil {
		return nil, err
	}
	return vm.NewSyncScope(vars), nil
}

func (c *cli) builtins() *builtins.Table {
	return builtins.New(c.stdout)
}

// reportError prints a run failure, naming the error kind when there is one.
func (c *cli) reportError(err error) {
	if kind, ok := vm.KindOf(err); ok {
		fmt.Fprintf(c.stderr, "Error [%s]: %v\n", kind, err)
		return
	}
	fmt.Fprintf(c.stderr, "Error: %v\n", err)
}

func (c *cli) usageError(format string, args ...any) int {
	msg := fmt.Sprintf(format, args...)
	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}
	fmt.Fprint(c.stderr, msg)
	return 2
}

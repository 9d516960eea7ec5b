package vm

import (
	"github.com/tliron/commonlog"
)

const loggerName = "minivm.vm"

// Engine executes instruction sequences. An Engine holds no per-run state
// and may be shared between goroutines; each run gets its own stack.
type Engine struct {
	log   commonlog.Logger
	trace bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for tracing and failure reports.
func WithLogger(log commonlog.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// WithTrace enables a debug log line per dispatched instruction.
func WithTrace(on bool) Option {
	return func(e *Engine) { e.trace = on }
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = commonlog.GetLogger(loggerName)
	}
	return e
}

// NewRun prepares a run of code against the given scopes. Nothing executes
// until Run.Execute is called.
func (e *Engine) NewRun(code []Instruction, locals, globals Scope, builtins Resolver) *Run {
	return &Run{
		engine:   e,
		code:     code,
		locals:   locals,
		globals:  globals,
		builtins: builtins,
	}
}

// Execute runs code to completion and returns its terminal value.
func (e *Engine) Execute(code []Instruction, locals, globals Scope, builtins Resolver) (Value, error) {
	return e.NewRun(code, locals, globals, builtins).Execute()
}

// Execute runs code on a default Engine.
func Execute(code []Instruction, locals, globals Scope, builtins Resolver) (Value, error) {
	return New().Execute(code, locals, globals, builtins)
}

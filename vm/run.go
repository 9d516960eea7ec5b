package vm

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tliron/commonlog"
)

// State is the lifecycle state of a Run.
type State uint8

const (
	Ready State = iota
	Running
	Returned
	Failed
)

func (s State) String() string {
	switch s {
	case Ready:
		return "ready"
	case Running:
		return "running"
	case Returned:
		return "returned"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", s)
	}
}

// Run is one execution of an instruction sequence. Returned and Failed are
// absorbing: once reached, Execute reports the same outcome again without
// evaluating anything.
type Run struct {
	engine *Engine
	code   []Instruction
	pc     int
	stack  Stack

	locals   Scope
	globals  Scope
	builtins Resolver

	state  State
	result Value
	err    error
}

// State returns the run's lifecycle state.
func (r *Run) State() State { return r.state }

// Result returns the terminal value of a returned run.
func (r *Run) Result() Value { return r.result }

// Err returns the failure of a failed run.
func (r *Run) Err() error { return r.err }

// StackDepth returns the current depth of the value stack.
func (r *Run) StackDepth() int { return r.stack.Len() }

// Execute runs the instruction sequence until a returning instruction or a
// failure.
func (r *Run) Execute() (Value, error) {
	switch r.state {
	case Returned:
		return r.result, nil
	case Failed:
		return None, r.err
	case Running:
		return None, errors.New("vm: run is already executing")
	}

	if nilScope(r.locals) || nilScope(r.globals) {
		return r.abort(ErrNilScope)
	}

	r.state = Running
	for r.pc < len(r.code) {
		in := r.code[r.pc]
		if r.engine.trace && r.engine.log.AllowLevel(commonlog.Debug) {
			r.engine.log.Debugf("%04d %-14s %-16s depth=%d", r.pc, in.Mnemonic(), in.Arg(), r.stack.Len())
		}

		done, err := r.step(in)
		if err != nil {
			return r.abort(err)
		}
		if done {
			r.state = Returned
			return r.result, nil
		}
		r.pc++
	}

	return r.abort(&ExecutionError{
		Kind:   NoReturn,
		Index:  -1,
		Detail: fmt.Sprintf("instruction sequence exhausted after %d instructions", len(r.code)),
	})
}

func (r *Run) abort(err error) (Value, error) {
	r.state = Failed
	r.err = err
	r.engine.log.Debugf("run failed: %v", err)
	return None, err
}

// handler executes one instruction. It returns true when the run has
// produced its terminal value.
type handler func(r *Run, in Instruction) (bool, error)

// handlers is indexed by opcode. Every supported opcode must have an entry.
var handlers = [opcodeCount]handler{
	OpNop:         (*Run).opNop,
	OpResume:      (*Run).opNop,
	OpLoadConst:   (*Run).opLoadConst,
	OpLoadFast:    (*Run).opLoadFast,
	OpStoreFast:   (*Run).opStoreFast,
	OpLoadGlobal:  (*Run).opLoadGlobal,
	OpLoadName:    (*Run).opLoadName,
	OpPopTop:      (*Run).opPopTop,
	OpBinaryOp:    (*Run).opBinaryOp,
	OpFormatValue: (*Run).opFormatValue,
	OpBuildString: (*Run).opBuildString,
	OpCall:        (*Run).opCall,
	OpReturnValue: (*Run).opReturnValue,
	OpReturnConst: (*Run).opReturnConst,
}

func (r *Run) step(in Instruction) (bool, error) {
	var h handler
	if int(in.Op) < len(handlers) {
		h = handlers[in.Op]
	}
	if h == nil {
		return false, r.fail(in, UnsupportedOpcode, "", "")
	}
	return h(r, in)
}

// fail builds an ExecutionError for the current instruction.
func (r *Run) fail(in Instruction, kind ErrorKind, name, detail string) *ExecutionError {
	return &ExecutionError{
		Kind:   kind,
		Index:  r.pc,
		Op:     in.Mnemonic(),
		Name:   name,
		Detail: detail,
	}
}

// locate stamps an ExecutionError raised below the dispatch loop with the
// current instruction.
func (r *Run) locate(in Instruction, err error) error {
	var ee *ExecutionError
	if errors.As(err, &ee) {
		ee.Index = r.pc
		ee.Op = in.Mnemonic()
		return ee
	}
	return err
}

func (r *Run) pop(in Instruction) (Value, error) {
	v, ok := r.stack.Pop()
	if !ok {
		return None, r.fail(in, StackUnderflow, "", "pop from empty stack")
	}
	return v, nil
}

func (r *Run) popN(in Instruction, n int) ([]Value, error) {
	vs, ok := r.stack.PopN(n)
	if !ok {
		return nil, r.fail(in, StackUnderflow, "", fmt.Sprintf("need %d values, have %d", n, r.stack.Len()))
	}
	return vs, nil
}

func (r *Run) resolveBuiltin(name string) (Value, bool) {
	if r.builtins == nil {
		return None, false
	}
	return r.builtins.Resolve(name)
}

// ---------------------------------------------------------------------------
// Handlers
// ---------------------------------------------------------------------------

func (r *Run) opNop(in Instruction) (bool, error) {
	return false, nil
}

func (r *Run) opLoadConst(in Instruction) (bool, error) {
	r.stack.Push(in.Const)
	return false, nil
}

func (r *Run) opLoadFast(in Instruction) (bool, error) {
	v, ok := r.locals.Lookup(in.Name)
	if !ok {
		return false, r.fail(in, UnboundLocal, in.Name, fmt.Sprintf("local %q referenced before assignment", in.Name))
	}
	r.stack.Push(v)
	return false, nil
}

func (r *Run) opStoreFast(in Instruction) (bool, error) {
	v, err := r.pop(in)
	if err != nil {
		return false, err
	}
	r.locals.Store(in.Name, v)
	return false, nil
}

// Globals shadow builtins.
func (r *Run) opLoadGlobal(in Instruction) (bool, error) {
	if v, ok := r.globals.Lookup(in.Name); ok {
		r.stack.Push(v)
		return false, nil
	}
	if v, ok := r.resolveBuiltin(in.Name); ok {
		r.stack.Push(v)
		return false, nil
	}
	return false, r.fail(in, NameNotFound, in.Name, fmt.Sprintf("name %q is not defined", in.Name))
}

// Locals shadow globals shadow builtins.
func (r *Run) opLoadName(in Instruction) (bool, error) {
	if v, ok := r.locals.Lookup(in.Name); ok {
		r.stack.Push(v)
		return false, nil
	}
	return r.opLoadGlobal(in)
}

func (r *Run) opPopTop(in Instruction) (bool, error) {
	_, err := r.pop(in)
	return false, err
}

func (r *Run) opBinaryOp(in Instruction) (bool, error) {
	right, err := r.pop(in)
	if err != nil {
		return false, err
	}
	left, err := r.pop(in)
	if err != nil {
		return false, err
	}
	v, err := Apply(in.Symbol, left, right)
	if err != nil {
		return false, r.locate(in, err)
	}
	r.stack.Push(v)
	return false, nil
}

func (r *Run) opFormatValue(in Instruction) (bool, error) {
	v, err := r.pop(in)
	if err != nil {
		return false, err
	}
	r.stack.Push(String(v.Str()))
	return false, nil
}

// opBuildString joins the parts in the order they were pushed, which is
// the left-to-right order of the source text.
func (r *Run) opBuildString(in Instruction) (bool, error) {
	parts, err := r.popN(in, in.Count)
	if err != nil {
		return false, err
	}
	var sb strings.Builder
	for _, p := range parts {
		sb.WriteString(p.Str())
	}
	r.stack.Push(String(sb.String()))
	return false, nil
}

func (r *Run) opCall(in Instruction) (bool, error) {
	args, err := r.popN(in, in.Count)
	if err != nil {
		return false, err
	}
	callee, err := r.pop(in)
	if err != nil {
		return false, err
	}

	fn, ok := callee.AsCallable()
	if !ok {
		e := r.fail(in, CalleeFailure, "", "")
		e.Err = fmt.Errorf("%s value is not callable", callee.Kind())
		return false, e
	}

	result, err := invoke(fn, args)
	if err != nil {
		e := r.fail(in, CalleeFailure, fn.Name(), "")
		e.Err = err
		return false, e
	}
	r.stack.Push(result)
	return false, nil
}

func (r *Run) opReturnValue(in Instruction) (bool, error) {
	v, err := r.pop(in)
	if err != nil {
		return false, err
	}
	r.result = v
	return true, nil
}

func (r *Run) opReturnConst(in Instruction) (bool, error) {
	r.result = in.Const
	return true, nil
}

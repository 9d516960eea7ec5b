package vm

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNilScope is returned when a run is started without a locals or
// globals scope.
var ErrNilScope = errors.New("vm: nil scope")

// ErrorKind classifies a run failure. ErrorKind implements error so that
// callers can write errors.Is(err, vm.NameNotFound).
type ErrorKind uint8

const (
	UnsupportedOpcode ErrorKind = iota + 1
	UnsupportedOperator
	NameNotFound
	UnboundLocal
	StackUnderflow
	CalleeFailure
	NoReturn
	ZeroDivision
	Overflow
)

var errorKindInfo = map[ErrorKind]struct{ name, text string }{
	UnsupportedOpcode:   {"UnsupportedOpcode", "unsupported opcode"},
	UnsupportedOperator: {"UnsupportedOperator", "unsupported operator"},
	NameNotFound:        {"NameNotFound", "name not found"},
	UnboundLocal:        {"UnboundLocal", "unbound local"},
	StackUnderflow:      {"StackUnderflow", "stack underflow"},
	CalleeFailure:       {"CalleeFailure", "callee failed"},
	NoReturn:            {"NoReturn", "no return"},
	ZeroDivision:        {"ZeroDivision", "division by zero"},
	Overflow:            {"Overflow", "result too large"},
}

// String returns the kind's identifier, e.g. "StackUnderflow".
func (k ErrorKind) String() string {
	if info, ok := errorKindInfo[k]; ok {
		return info.name
	}
	return fmt.Sprintf("ErrorKind(%d)", k)
}

// Error returns a short human-readable description.
func (k ErrorKind) Error() string {
	if info, ok := errorKindInfo[k]; ok {
		return info.text
	}
	return k.String()
}

// IsDefect reports whether the kind signals a malformed instruction
// sequence rather than a runtime condition of the program.
func (k ErrorKind) IsDefect() bool {
	return k == StackUnderflow
}

// ParseErrorKind looks up a kind by identifier.
func ParseErrorKind(name string) (ErrorKind, bool) {
	for k, info := range errorKindInfo {
		if info.name == name {
			return k, true
		}
	}
	return 0, false
}

// ExecutionError is the failure produced by a run.
type ExecutionError struct {
	Kind   ErrorKind
	Index  int    // Position of the failing instruction (-1 if none)
	Op     string // Mnemonic of the failing instruction
	Name   string // Variable name, operator symbol or callee name involved
	Detail string
	Err    error // Underlying cause, set for CalleeFailure
}

func (e *ExecutionError) Error() string {
	var sb strings.Builder
	sb.WriteString("vm: ")
	sb.WriteString(e.Kind.Error())
	if e.Index >= 0 && e.Op != "" {
		fmt.Fprintf(&sb, " at %d (%s)", e.Index, e.Op)
	}
	if e.Detail != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Detail)
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

// Unwrap returns the underlying cause.
func (e *ExecutionError) Unwrap() error { return e.Err }

// Is matches an ErrorKind target against the error's kind.
func (e *ExecutionError) Is(target error) bool {
	k, ok := target.(ErrorKind)
	return ok && k == e.Kind
}

// KindOf returns the ErrorKind of an ExecutionError anywhere in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var ee *ExecutionError
	if errors.As(err, &ee) {
		return ee.Kind, true
	}
	return 0, false
}

// operandError reports an operator applied to kinds it is not defined for.
func operandError(symbol string, left, right Value) error {
	return &ExecutionError{
		Kind:   UnsupportedOperator,
		Index:  -1,
		Name:   symbol,
		Detail: fmt.Sprintf("unsupported operand types for %s: %s and %s", symbol, left.Kind(), right.Kind()),
	}
}

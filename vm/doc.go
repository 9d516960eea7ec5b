// Package vm implements the minivm execution engine.
//
// The engine runs a pre-decoded instruction sequence against a value stack,
// a local scope, a global scope and a builtin resolver, and produces a single
// terminal value.
//
// This package contains:
//   - Tagged-union values (none, bool, int, float, str, callable)
//   - The closed opcode set and its metadata table
//   - Scopes and builtin resolution
//   - The dispatch loop and per-opcode handlers
//   - Typed run failures (ExecutionError, ErrorKind)
//
// # Name resolution
//
// LOAD_FAST reads locals only. LOAD_GLOBAL reads globals, then builtins.
// LOAD_NAME reads locals, then globals, then builtins. The order is fixed.
//
// # Failures
//
// Every failure aborts the run and is returned as an *ExecutionError whose
// Kind can be tested with errors.Is:
//
//	if errors.Is(err, vm.NameNotFound) { ... }
//
// StackUnderflow is the only defect kind: it means the instruction sequence
// itself is malformed.
//
// # Concurrency
//
// A Run is confined to one goroutine. Separate runs may share an Engine, and
// may share a global scope if it is a SyncScope or otherwise synchronized by
// the host.
package vm

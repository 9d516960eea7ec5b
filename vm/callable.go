package vm

import "fmt"

// Func adapts a Go function to the Callable interface.
type Func struct {
	name string
	fn   func(args []Value) (Value, error)
}

// NewFunc creates a named host function.
func NewFunc(name string, fn func(args []Value) (Value, error)) *Func {
	return &Func{name: name, fn: fn}
}

// Name returns the function name.
func (f *Func) Name() string { return f.name }

// Call invokes the function.
func (f *Func) Call(args []Value) (Value, error) { return f.fn(args) }

// invoke calls c, turning a panic in host code into an error.
func invoke(c Callable, args []Value) (result Value, err error) {
	defer func() {
		if p := recover(); p != nil {
			result = None
			err = fmt.Errorf("panic in %s: %v", c.Name(), p)
		}
	}()
	return c.Call(args)
}

package vm

// Stack is the value stack of a single run.
type Stack struct {
	items []Value
}

// Push pushes v.
func (s *Stack) Push(v Value) {
	s.items = append(s.items, v)
}

// Pop removes and returns the top value. It reports false on an empty stack.
func (s *Stack) Pop() (Value, bool) {
	n := len(s.items)
	if n == 0 {
		return None, false
	}
	v := s.items[n-1]
	s.items[n-1] = None
	s.items = s.items[:n-1]
	return v, true
}

// PopN removes the top n values and returns them in push order, so the
// deepest of the n comes first. It reports false, leaving the stack
// untouched, when fewer than n values are present or n is negative.
func (s *Stack) PopN(n int) ([]Value, bool) {
	if n < 0 || n > len(s.items) {
		return nil, false
	}
	base := len(s.items) - n
	out := make([]Value, n)
	copy(out, s.items[base:])
	for i := base; i < len(s.items); i++ {
		s.items[i] = None
	}
	s.items = s.items[:base]
	return out, true
}

// Peek returns the top value without removing it.
func (s *Stack) Peek() (Value, bool) {
	if len(s.items) == 0 {
		return None, false
	}
	return s.items[len(s.items)-1], true
}

// Len returns the stack depth.
func (s *Stack) Len() int { return len(s.items) }

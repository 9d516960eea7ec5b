package vm

import (
	"sort"
	"sync"
)

// Scope maps variable names to values. Runs read and write the caller's
// scopes in place.
type Scope interface {
	Lookup(name string) (Value, bool)
	Store(name string, v Value)
}

// Resolver supplies builtin values for names missing from every scope.
type Resolver interface {
	Resolve(name string) (Value, bool)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(name string) (Value, bool)

// Resolve calls f(name).
func (f ResolverFunc) Resolve(name string) (Value, bool) { return f(name) }

// Vars is an unsynchronized Scope backed by a map. A nil Vars is rejected
// by Run.Execute with ErrNilScope.
type Vars map[string]Value

func (s Vars) Lookup(name string) (Value, bool) {
	v, ok := s[name]
	return v, ok
}

func (s Vars) Store(name string, v Value) { s[name] = v }

// SyncScope is a Scope safe for concurrent use. Use it for globals shared by
// runs on different goroutines.
type SyncScope struct {
	mu   sync.RWMutex
	vars map[string]Value
}

// NewSyncScope creates a SyncScope seeded with a copy of initial.
func NewSyncScope(initial map[string]Value) *SyncScope {
	s := &SyncScope{vars: make(map[string]Value, len(initial))}
	for k, v := range initial {
		s.vars[k] = v
	}
	return s
}

func (s *SyncScope) Lookup(name string) (Value, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.vars[name]
	return v, ok
}

func (s *SyncScope) Store(name string, v Value) {
	s.mu.Lock()
	s.vars[name] = v
	s.mu.Unlock()
}

// Names returns the bound names, sorted.
func (s *SyncScope) Names() []string {
	s.mu.RLock()
	names := make([]string, 0, len(s.vars))
	for k := range s.vars {
		names = append(names, k)
	}
	s.mu.RUnlock()
	sort.Strings(names)
	return names
}

// Snapshot returns a copy of the current bindings.
func (s *SyncScope) Snapshot() Vars {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(Vars, len(s.vars))
	for k, v := range s.vars {
		out[k] = v
	}
	return out
}

// nilScope reports whether s is nil or wraps a nil Vars or *SyncScope.
func nilScope(s Scope) bool {
	switch s := s.(type) {
	case nil:
		return true
	case Vars:
		return s == nil
	case *SyncScope:
		return s == nil
	}
	return false
}

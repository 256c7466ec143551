package object

import (
	"log/slog"
	"sync"
	"sync/atomic"
)

var nextID atomic.Uint64

// Environment is one lexical scope: a name-to-value mapping plus a link to
// the enclosing scope. Multiple holders may share one environment (a closure
// keeps the environment of its definition site alive), so every access to
// the local map is guarded. The lock only ever covers the local map; lookups
// release it before walking the outer chain, so a closure re-entering an
// environment it already holds indirectly cannot deadlock.
type Environment struct {
	ID       uint64
	bindings map[string]Object
	outer    *Environment

	mu sync.RWMutex
}

func nextEnvID() uint64 {
	return nextID.Add(1)
}

func NewEnvironment() *Environment {
	return &Environment{
		ID:       nextEnvID(),
		bindings: make(map[string]Object),
	}
}

// NewEnclosedEnvironment creates a fresh scope layer on top of outer. Blocks,
// calls and closures each introduce exactly one layer.
func NewEnclosedEnvironment(outer *Environment) *Environment {
	env := NewEnvironment()
	env.outer = outer
	slog.Debug("new enclosed env",
		slog.Uint64("id", env.ID),
		slog.Uint64("outer", outer.ID))
	return env
}

func (e *Environment) Outer() *Environment {
	return e.outer
}

// Define inserts or overwrites a binding in this environment only.
func (e *Environment) Define(name string, val Object) {
	e.mu.Lock()
	e.bindings[name] = val
	e.mu.Unlock()
}

// Get resolves name against this environment, then the outer chain.
func (e *Environment) Get(name string) (Object, bool) {
	e.mu.RLock()
	val, ok := e.bindings[name]
	e.mu.RUnlock()

	if ok {
		return val, true
	}
	if e.outer != nil {
		return e.outer.Get(name)
	}
	return nil, false
}

// GetAt reads name from the environment exactly depth links up the chain.
// The resolver guarantees the binding exists at that distance; ok is false
// only when the static and runtime scope shapes have diverged.
func (e *Environment) GetAt(depth int, name string) (Object, bool) {
	env := e.ancestor(depth)
	if env == nil {
		return nil, false
	}
	env.mu.RLock()
	val, ok := env.bindings[name]
	env.mu.RUnlock()
	return val, ok
}

// Assign overwrites the nearest existing binding for name, starting with
// this environment. It never creates a binding; false means no environment
// in the chain defines name.
func (e *Environment) Assign(name string, val Object) bool {
	e.mu.Lock()
	if _, ok := e.bindings[name]; ok {
		e.bindings[name] = val
		e.mu.Unlock()
		return true
	}
	e.mu.Unlock()

	if e.outer != nil {
		return e.outer.Assign(name, val)
	}
	return false
}

// AssignAt overwrites name exactly depth links up the chain.
func (e *Environment) AssignAt(depth int, name string, val Object) bool {
	env := e.ancestor(depth)
	if env == nil {
		return false
	}
	env.mu.Lock()
	defer env.mu.Unlock()
	if _, ok := env.bindings[name]; !ok {
		return false
	}
	env.bindings[name] = val
	return true
}

func (e *Environment) ancestor(depth int) *Environment {
	env := e
	for i := 0; i < depth && env != nil; i++ {
		env = env.outer
	}
	return env
}

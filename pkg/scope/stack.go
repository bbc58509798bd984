// Package scope provides the per-request variable scope stack.
//
// A Stack is an ordered sequence of frames, each frame a mapping from a
// case-sensitive variable name to an arbitrary value. Lookups scan the
// frames from the innermost (most recently started) to the outermost and
// return the first match, so a variable set in an inner scope shadows a
// same-named variable of an outer scope until the inner scope ends.
//
// Frames live in an arena indexed by depth. Ending a scope clears the
// frame and keeps it for reuse by the next StartScope, so a request that
// repeatedly enters and leaves compound functions does not allocate a new
// map per scope.
//
// A Stack belongs to exactly one request and is not safe for concurrent
// use.
package scope

import (
	"errors"
	"sort"
)

// ErrUnbalanced is the panic value raised when EndScope is called
// without a matching StartScope, or when a variable is written while no
// scope is open. Both indicate a programming error in the caller.
var ErrUnbalanced = errors.New("scope: unbalanced scope stack")

// Stack is a lexically scoped, shadow-capable variable store.
type Stack struct {
	frames []map[string]any
	depth  int
}

// New returns an empty stack. Callers must StartScope before setting
// variables.
func New() *Stack {
	return &Stack{}
}

// StartScope pushes an empty frame.
func (s *Stack) StartScope() {
	if s.depth < len(s.frames) {
		// frame was cleared by EndScope
		s.depth++
		return
	}
	s.frames = append(s.frames, make(map[string]any))
	s.depth++
}

// EndScope pops the innermost frame, discarding every variable it holds.
// It panics with ErrUnbalanced when no scope is open.
func (s *Stack) EndScope() {
	if s.depth == 0 {
		panic(ErrUnbalanced)
	}
	s.depth--
	clear(s.frames[s.depth])
}

// Scoped runs fn inside a fresh scope. The scope is ended on every exit
// path of fn, including a panic.
func (s *Stack) Scoped(fn func()) {
	s.StartScope()
	defer s.EndScope()
	fn()
}

// Depth returns the number of open scopes.
func (s *Stack) Depth() int {
	return s.depth
}

// Set creates or overwrites name in the innermost frame. An empty name is
// ignored. Set panics with ErrUnbalanced when no scope is open.
func (s *Stack) Set(name string, value any) {
	if name == "" {
		return
	}
	if s.depth == 0 {
		panic(ErrUnbalanced)
	}
	s.frames[s.depth-1][name] = value
}

// Get returns the innermost value stored under name. The boolean is false
// when no open frame holds the name; an empty name never matches.
func (s *Stack) Get(name string) (any, bool) {
	if name == "" {
		return nil, false
	}
	for i := s.depth - 1; i >= 0; i-- {
		if v, ok := s.frames[i][name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Value returns the innermost value stored under name, or nil.
func (s *Stack) Value(name string) any {
	v, _ := s.Get(name)
	return v
}

// Delete removes name from the innermost frame only. Outer values with
// the same name become visible again.
func (s *Stack) Delete(name string) {
	if s.depth == 0 || name == "" {
		return
	}
	delete(s.frames[s.depth-1], name)
}

// Names returns the sorted names visible from the innermost scope.
func (s *Stack) Names() []string {
	seen := make(map[string]struct{})
	for i := 0; i < s.depth; i++ {
		for name := range s.frames[i] {
			seen[name] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Snapshot returns a flattened copy of the visible variables, inner
// values taking precedence over outer ones.
func (s *Stack) Snapshot() map[string]any {
	out := make(map[string]any)
	for i := 0; i < s.depth; i++ {
		for name, v := range s.frames[i] {
			out[name] = v
		}
	}
	return out
}

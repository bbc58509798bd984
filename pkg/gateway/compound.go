package gateway

import (
	"slices"
)

// Error variable set in the scope of a TryFunctions error branch. It
// resolves like a Result: ${error.message}, ${error.status},
// ${error.root.message}.
const ErrorVariable = "error"

// compound holds the ordered child list shared by every compound variant.
// Children must be added before the function is registered with an Api.
type compound struct {
	Base
	children []Function
}

// Add appends fn to the child list. Nil functions are ignored.
func (c *compound) Add(fn Function) {
	if fn != nil {
		c.children = append(c.children, fn)
	}
}

// Children returns a copy of the child list in execution order.
func (c *compound) Children() []Function {
	return slices.Clone(c.children)
}

// Len returns the number of children.
func (c *compound) Len() int {
	return len(c.children)
}

// AllMustSucceed runs its children in order and stops at the first child
// that does not succeed.
type AllMustSucceed struct {
	compound
}

// NewAllMustSucceed creates an AllMustSucceed with the given children.
func NewAllMustSucceed(name string, children ...Function) *AllMustSucceed {
	f := &AllMustSucceed{compound{Base: NewBase(name)}}
	for _, c := range children {
		f.Add(c)
	}
	return f
}

func (f *AllMustSucceed) Execute(ec *ExecutionContext) Result {
	vars := ec.Variables()
	vars.StartScope()
	defer vars.EndScope()

	for _, child := range f.children {
		r := ec.run(child)
		switch r.Status() {
		case StatusFailed:
			return Failedf(&r, "%s: function %s failed", f.Name(), child.Name())
		case StatusStopped:
			return r
		}
	}
	return Succeeded()
}

// AtLeastOneMustSucceed runs its children in order until one succeeds.
// A stopped child ends the execution as well.
type AtLeastOneMustSucceed struct {
	compound
}

// NewAtLeastOneMustSucceed creates an AtLeastOneMustSucceed with the given
// children.
func NewAtLeastOneMustSucceed(name string, children ...Function) *AtLeastOneMustSucceed {
	f := &AtLeastOneMustSucceed{compound{Base: NewBase(name)}}
	for _, c := range children {
		f.Add(c)
	}
	return f
}

func (f *AtLeastOneMustSucceed) Execute(ec *ExecutionContext) Result {
	vars := ec.Variables()
	vars.StartScope()
	defer vars.EndScope()

	var last *Result
	for _, child := range f.children {
		r := ec.run(child)
		if !r.IsFailed() {
			return r
		}
		last = &r
	}
	if last == nil {
		return Succeeded()
	}
	return Failed(last, "no child function succeeded")
}

// TryFunctions runs its try list and, when that fails, its error list.
// Every Api has a TryFunctions as its root.
type TryFunctions struct {
	compound
	onError []Function
}

// NewTryFunctions creates a TryFunctions with the given try list.
func NewTryFunctions(name string, try ...Function) *TryFunctions {
	f := &TryFunctions{compound: compound{Base: NewBase(name)}}
	for _, c := range try {
		f.Add(c)
	}
	return f
}

// AddTry appends fn to the try list.
func (f *TryFunctions) AddTry(fn Function) {
	f.Add(fn)
}

// AddOnError appends fn to the error list. Nil functions are ignored.
func (f *TryFunctions) AddOnError(fn Function) {
	if fn != nil {
		f.onError = append(f.onError, fn)
	}
}

// OnError returns a copy of the error list.
func (f *TryFunctions) OnError() []Function {
	return slices.Clone(f.onError)
}

func (f *TryFunctions) Execute(ec *ExecutionContext) Result {
	vars := ec.Variables()
	vars.StartScope()
	defer vars.EndScope()

	var failure *Result
	for _, child := range f.children {
		r := ec.run(child)
		if r.IsStopped() {
			return r
		}
		if r.IsFailed() {
			failure = &r
			break
		}
	}
	if failure == nil {
		return Succeeded()
	}

	ec.Logger().Debug("running error functions",
		"function", f.Name(),
		"failure", failure.String(),
		"count", len(f.onError),
	)
	vars.Set(ErrorVariable, ResolveResult("", *failure))

	for _, child := range f.onError {
		r := ec.run(child)
		switch r.Status() {
		case StatusFailed:
			return Failed(&r, "error functions failed")
		case StatusStopped:
			return r
		}
	}
	return Succeeded()
}

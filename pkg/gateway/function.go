package gateway

import (
	"github.com/google/uuid"
)

// Function is a unit of policy logic.
//
// Implementations must be safe for concurrent use once built: all
// per-request state lives in the ExecutionContext.
type Function interface {
	// ID uniquely identifies this function instance.
	ID() string

	// Name is the human readable name used in logs and failure messages.
	Name() string

	// Execute runs the function. Expected outcomes are returned as a
	// Result; faults are raised with Fatal.
	Execute(ec *ExecutionContext) Result
}

// Base carries the identity shared by every function. Embed it to
// satisfy the ID and Name methods of Function.
type Base struct {
	id   string
	name string
}

// NewBase returns a Base with a random id.
func NewBase(name string) Base {
	return Base{id: uuid.NewString(), name: name}
}

func (b Base) ID() string   { return b.id }
func (b Base) Name() string { return b.name }

// Chain returns a function that executes head and then next. next runs
// regardless of the outcome of head. When head does not succeed its
// result is returned, otherwise the result of next.
//
// A nil next returns head unchanged.
func Chain(head, next Function) Function {
	if next == nil {
		return head
	}
	if head == nil {
		return next
	}
	return &chain{head: head, next: next}
}

type chain struct {
	head Function
	next Function
}

func (c *chain) ID() string   { return c.head.ID() }
func (c *chain) Name() string { return c.head.Name() }

// Execute runs head directly, since the caller already accounts for the
// chain under the head's identity. A stopped head ends the chain.
func (c *chain) Execute(ec *ExecutionContext) Result {
	r := c.head.Execute(ec)
	if r.IsStopped() {
		return r
	}
	nr := ec.run(c.next)
	if !r.IsSucceeded() {
		return r
	}
	return nr
}

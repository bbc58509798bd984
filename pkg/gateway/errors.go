package gateway

import (
	"errors"
	"fmt"
)

var (
	// ErrNilTransport is returned when an ExecutionContext is created
	// without a transport.
	ErrNilTransport = errors.New("transport is required")

	// ErrNilMessage is returned when an ExecutionContext is created
	// without a request or response message.
	ErrNilMessage = errors.New("request and response messages are required")

	// ErrNilAPI is returned by ExecuteAPI when no api is given.
	ErrNilAPI = errors.New("api is required")
)

// FatalError reports a fault that a function cannot express as a Result,
// such as a corrupted scope or an unavailable dependency. It is raised
// with Fatal and surfaces as the error of ExecutionContext.ExecuteAPI.
type FatalError struct {
	Function string // name of the function that raised the fault
	Op       string // operation that was attempted
	Err      error  // underlying error
}

func (e *FatalError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("function %q: %v", e.Function, e.Err)
	}
	return fmt.Sprintf("function %q: %s: %v", e.Function, e.Op, e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// Fatal aborts the execution of the current api.
func Fatal(fn Function, op string, err error) {
	name := ""
	if fn != nil {
		name = fn.Name()
	}
	panic(&FatalError{Function: name, Op: op, Err: err})
}

package gateway

import (
	"fmt"
	"strings"

	"mercator-hq/gateway/pkg/resolve"
)

// Status is the outcome class of a Result.
type Status int

const (
	StatusSucceeded Status = iota
	StatusFailed
	StatusStopped
)

func (s Status) String() string {
	switch s {
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	case StatusStopped:
		return "stopped"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Result is the immutable outcome of executing a Function.
type Result struct {
	status  Status
	message string
	cause   *Result
}

// Succeeded returns the success result.
func Succeeded() Result {
	return Result{status: StatusSucceeded}
}

// Failed returns a failure with message. A non-nil cause is copied into
// the new result.
func Failed(cause *Result, message string) Result {
	r := Result{status: StatusFailed, message: message}
	if cause != nil {
		c := *cause
		r.cause = &c
	}
	return r
}

// Failedf is Failed with a formatted message.
func Failedf(cause *Result, format string, args ...any) Result {
	return Failed(cause, fmt.Sprintf(format, args...))
}

// Stopped returns a result that ends processing without recovery.
func Stopped(message string) Result {
	return Result{status: StatusStopped, message: message}
}

func (r Result) Status() Status    { return r.status }
func (r Result) Message() string   { return r.message }
func (r Result) IsSucceeded() bool { return r.status == StatusSucceeded }
func (r Result) IsFailed() bool    { return r.status == StatusFailed }
func (r Result) IsStopped() bool   { return r.status == StatusStopped }

// Cause returns the wrapped result, if any.
func (r Result) Cause() (Result, bool) {
	if r.cause == nil {
		return Result{}, false
	}
	return *r.cause, true
}

// Root returns the innermost result of the cause chain.
func (r Result) Root() Result {
	for r.cause != nil {
		r = *r.cause
	}
	return r
}

// Depth returns the length of the cause chain including r.
func (r Result) Depth() int {
	n := 1
	for c := r.cause; c != nil; c = c.cause {
		n++
	}
	return n
}

// String renders the status followed by every message of the chain, for
// example "failed: all: function deny failed: access denied".
func (r Result) String() string {
	var b strings.Builder
	b.WriteString(r.status.String())
	for c := &r; c != nil; c = c.cause {
		if c.message == "" {
			continue
		}
		b.WriteString(": ")
		b.WriteString(c.message)
	}
	return b.String()
}

// ResolveResult resolves status, message, cause.* and root.* of a
// result.
func ResolveResult(path string, r Result) any {
	switch {
	case path == "":
		return resolve.Bind(r, ResolveResult)
	case resolve.Is(path, "status"):
		return r.status.String()
	case resolve.Is(path, "message"):
		return r.message
	case resolve.Is(path, "depth"):
		return r.Depth()
	}
	if rest, ok := resolve.Match(path, "cause"); ok {
		if c, ok := r.Cause(); ok {
			return ResolveResult(rest, c)
		}
		return nil
	}
	if rest, ok := resolve.Match(path, "root"); ok {
		return ResolveResult(rest, r.Root())
	}
	return nil
}

package functions

import (
	"mercator-hq/gateway/pkg/gateway"
)

const (
	// DefaultFailMessage is the message of a Fail without one configured.
	DefaultFailMessage = "Fail function executed"

	// DefaultStopMessage is the message of a Stop without one configured.
	DefaultStopMessage = "Stop function executed"
)

// Continue always succeeds. It is a placeholder in policy trees.
type Continue struct {
	gateway.Base
}

func NewContinue(name string) *Continue {
	return &Continue{Base: gateway.NewBase(nameOr(name, "Continue"))}
}

func (f *Continue) Execute(*gateway.ExecutionContext) gateway.Result {
	return gateway.Succeeded()
}

// Fail always fails with its message, expanded as a template.
type Fail struct {
	gateway.Base
	message string
}

func NewFail(name, message string) *Fail {
	return &Fail{
		Base:    gateway.NewBase(nameOr(name, "Fail")),
		message: nameOr(message, DefaultFailMessage),
	}
}

func (f *Fail) Execute(ec *gateway.ExecutionContext) gateway.Result {
	return gateway.Failed(nil, ec.Parse(f.message))
}

// Stop ends the api without running error functions. The response is
// sent as it is.
type Stop struct {
	gateway.Base
	message string
}

func NewStop(name, message string) *Stop {
	return &Stop{
		Base:    gateway.NewBase(nameOr(name, "Stop")),
		message: nameOr(message, DefaultStopMessage),
	}
}

func (f *Stop) Execute(ec *gateway.ExecutionContext) gateway.Result {
	return gateway.Stopped(ec.Parse(f.message))
}

func nameOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

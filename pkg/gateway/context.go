package gateway

import (
	"context"
	"log/slog"
	"time"

	"mercator-hq/gateway/pkg/identity"
	"mercator-hq/gateway/pkg/message"
	"mercator-hq/gateway/pkg/scope"
	"mercator-hq/gateway/pkg/transport"
)

// Observer is notified after every function executed through an
// ExecutionContext.
type Observer interface {
	ObserveFunction(ec *ExecutionContext, fn Function, r Result, elapsed time.Duration)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(ec *ExecutionContext, fn Function, r Result, elapsed time.Duration)

func (f ObserverFunc) ObserveFunction(ec *ExecutionContext, fn Function, r Result, elapsed time.Duration) {
	f(ec, fn, r, elapsed)
}

// ExecutionContext is the per-request state passed through a policy tree.
// It is owned by one request and must not be shared.
type ExecutionContext struct {
	ctx       context.Context
	logger    *slog.Logger
	parser    *Parser
	requestID string
	observers []Observer

	transport transport.Transport
	request   message.Message
	response  message.Message
	account   *identity.Account
	api       *API
	variables *scope.Stack

	depth int
}

// Option configures an ExecutionContext.
type Option func(*ExecutionContext)

// WithLogger sets the logger used by functions. The request id is added
// to it.
func WithLogger(logger *slog.Logger) Option {
	return func(ec *ExecutionContext) {
		if logger != nil {
			ec.logger = logger
		}
	}
}

// WithParser replaces the default template parser.
func WithParser(p *Parser) Option {
	return func(ec *ExecutionContext) {
		if p != nil {
			ec.parser = p
		}
	}
}

// WithRequestID sets the request id.
func WithRequestID(id string) Option {
	return func(ec *ExecutionContext) {
		ec.requestID = id
	}
}

// WithContext carries ctx for tracing and logging. Execution never
// blocks on it.
func WithContext(ctx context.Context) Option {
	return func(ec *ExecutionContext) {
		if ctx != nil {
			ec.ctx = ctx
		}
	}
}

// WithObserver adds an observer.
func WithObserver(o Observer) Option {
	return func(ec *ExecutionContext) {
		if o != nil {
			ec.observers = append(ec.observers, o)
		}
	}
}

// NewExecutionContext creates the context for one request. The transport
// and both messages are required.
func NewExecutionContext(t transport.Transport, request, response message.Message, opts ...Option) (*ExecutionContext, error) {
	if t == nil {
		return nil, ErrNilTransport
	}
	if request == nil || response == nil {
		return nil, ErrNilMessage
	}

	ec := &ExecutionContext{
		ctx:       context.Background(),
		logger:    slog.Default(),
		parser:    defaultParser,
		transport: t,
		request:   request,
		response:  response,
		variables: scope.New(),
	}
	for _, opt := range opts {
		opt(ec)
	}

	attrs := []any{"interface", t.InterfaceAlias()}
	if ec.requestID != "" {
		attrs = append(attrs, "request_id", ec.requestID)
	}
	ec.logger = ec.logger.With(attrs...)

	// request level frame, so top level functions always have a scope
	ec.variables.StartScope()

	return ec, nil
}

func (ec *ExecutionContext) Context() context.Context       { return ec.ctx }
func (ec *ExecutionContext) Logger() *slog.Logger           { return ec.logger }
func (ec *ExecutionContext) RequestID() string              { return ec.requestID }
func (ec *ExecutionContext) Transport() transport.Transport { return ec.transport }
func (ec *ExecutionContext) Request() message.Message       { return ec.request }
func (ec *ExecutionContext) Response() message.Message      { return ec.response }
func (ec *ExecutionContext) Variables() *scope.Stack        { return ec.variables }
func (ec *ExecutionContext) Parser() *Parser                { return ec.parser }

// Account returns the authenticated identity, or nil.
func (ec *ExecutionContext) Account() *identity.Account {
	return ec.account
}

// SetAccount replaces the identity of the request.
func (ec *ExecutionContext) SetAccount(a *identity.Account) {
	ec.account = a
}

// API returns the api being executed, or nil outside ExecuteAPI.
func (ec *ExecutionContext) API() *API {
	return ec.api
}

// Depth returns the nesting depth of the function currently executing.
func (ec *ExecutionContext) Depth() int {
	return ec.depth
}

// Parse expands the ${...} placeholders of template.
func (ec *ExecutionContext) Parse(template string) string {
	return ec.parser.Parse(ec, template)
}

// Resolve resolves a single placeholder path, without the ${ } markers.
func (ec *ExecutionContext) Resolve(path string) any {
	return ec.parser.Resolve(ec, path)
}

// Execute runs fn as a child of the current function. Compound functions
// outside this package use it so observers see their children.
func (ec *ExecutionContext) Execute(fn Function) Result {
	return ec.run(fn)
}

// ExecuteAPI runs the root of api. A *FatalError raised during execution
// is returned as the error together with a failed result.
func (ec *ExecutionContext) ExecuteAPI(api *API) (result Result, err error) {
	if api == nil {
		return Failed(nil, ErrNilAPI.Error()), ErrNilAPI
	}

	logger := ec.logger
	ec.api = api
	ec.logger = logger.With("api", api.Name())
	defer func() {
		ec.api = nil
		ec.logger = logger
	}()

	defer func() {
		if rec := recover(); rec != nil {
			fe, ok := rec.(*FatalError)
			if !ok {
				panic(rec)
			}
			ec.depth = 0
			ec.logger.Error("api execution aborted", "error", fe)
			result, err = Failed(nil, fe.Error()), fe
		}
	}()

	return ec.run(api.Root()), nil
}

func (ec *ExecutionContext) run(fn Function) Result {
	ec.depth++
	start := time.Now()
	r := fn.Execute(ec)
	elapsed := time.Since(start)
	ec.depth--

	ec.logger.Debug("function executed",
		"function", fn.Name(),
		"status", r.Status().String(),
		"depth", ec.depth,
		"duration", elapsed,
	)
	for _, o := range ec.observers {
		o.ObserveFunction(ec, fn, r, elapsed)
	}
	return r
}

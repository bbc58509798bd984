// Package gateway implements the policy execution engine of the gateway.
//
// # Functions and results
//
// A Function is a unit of policy logic. Executing it against an
// ExecutionContext yields a Result, which is one of Succeeded, Failed or
// Stopped. Failed results may wrap the result that caused them, so a
// failure deep in the policy tree can be traced back through every
// compound function it passed.
//
// Expected outcomes are always Results. Faults that indicate a broken
// environment or a programming error are raised as a *FatalError panic
// and recovered once, in ExecutionContext.ExecuteAPI, which returns them
// as an error.
//
// # Composition
//
// Functions are combined with three compound variants and a chain:
//
//	AllMustSucceed         runs children until one fails or stops
//	AtLeastOneMustSucceed  runs children until one succeeds or stops
//	TryFunctions           runs children; on failure runs the error branch
//	Chain                  runs a function and then, unconditionally, the next
//
// Every compound opens a variable scope on entry and closes it on every
// exit path. Stopped always wins over recovery: a stopped branch never
// runs error functions.
//
// # Templates
//
// Strings handed to functions may contain ${path} placeholders. The
// Parser resolves the reserved roots request, response, account,
// transport and api through the resolve package, and every other name
// against the scope stack. Placeholders are expanded right to left, so a
// variable whose value is itself a template is expanded on a later pass.
//
// # Concurrency
//
// Functions and Apis are built once and are immutable afterwards; they
// may be executed by any number of requests at the same time. An
// ExecutionContext belongs to a single request and is not safe for
// concurrent use.
package gateway

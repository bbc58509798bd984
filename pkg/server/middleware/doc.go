// Package middleware provides the HTTP middleware wrapped around every
// gateway interface.
//
// The server chains them outermost first:
//
//	Recovery -> RequestID -> Interface -> tracing -> Logging -> router
//
// Request scoped values are stored with the telemetry/logging context
// helpers, so any logger derived with logging.FromContext carries the
// request id and interface alias.
package middleware

package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"mercator-hq/gateway/pkg/telemetry/logging"
)

// Recovery recovers from panics in later handlers, logs them with the
// stack and answers 500 without exposing details. http.ErrAbortHandler is
// re-raised so the server aborts the connection as usual.
//
//	handler = middleware.Recovery(logger)(handler)
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				logging.FromContext(r.Context(), logger).Error("panic in handler",
					"error", rec,
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
				)
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}()

			next.ServeHTTP(w, r)
		})
	}
}

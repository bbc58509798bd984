package server

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"mercator-hq/gateway/pkg/gateway"
	"mercator-hq/gateway/pkg/message"
	"mercator-hq/gateway/pkg/server/middleware"
	"mercator-hq/gateway/pkg/telemetry/logging"
	"mercator-hq/gateway/pkg/telemetry/tracing"
	"mercator-hq/gateway/pkg/transport"
)

// Request outcomes recorded besides the result statuses.
const (
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// dispatch runs the api matching the request path and writes the response
// message it produced.
func (s *Server) dispatch(iface *Interface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		done := s.metrics.RequestStarted(iface.alias)
		defer done()

		api, ok := s.catalog.Lookup(r.URL.Path)
		if !ok {
			http.NotFound(w, r)
			s.metrics.RecordRequest(iface.alias, "", OutcomeNotFound, http.StatusNotFound, time.Since(start))
			return
		}

		ctx := logging.WithAPI(r.Context(), api.Name())
		ctx, span := s.tracer.StartAPI(ctx, iface.alias, api.Name(), api.ContextRoot())
		defer span.End()
		r = r.WithContext(ctx)
		logger := logging.FromContext(ctx, s.logger)

		t := transport.FromRequest(iface.alias, r, transport.WithLocalCertificates(iface.localChain()))
		req := message.NewRequest(r, iface.config.MaxBodyBytes)
		resp := message.NewResponse()

		opts := []gateway.Option{
			gateway.WithContext(ctx),
			gateway.WithLogger(s.logger),
			gateway.WithRequestID(middleware.GetRequestID(r)),
			gateway.WithObserver(s.metrics),
		}
		if s.tracer.Enabled() {
			opts = append(opts, gateway.WithObserver(s.tracer.Observer()))
		}
		if s.parser != nil {
			opts = append(opts, gateway.WithParser(s.parser))
		}

		ec, err := gateway.NewExecutionContext(t, req, resp, opts...)
		if err != nil {
			s.fail(w, logger, iface.alias, api.Name(), start, err)
			return
		}

		result, err := ec.ExecuteAPI(api)
		if err != nil {
			tracing.SetError(span, err)
			s.fail(w, logger, iface.alias, api.Name(), start, err)
			return
		}
		if result.IsFailed() {
			logger.Warn("api failed", "error", result.Root().Message())
		}

		code := t.ResponseStatusCode()
		if code < 200 || code > 999 {
			logger.Error("api set an invalid status code", "status", code)
			code = http.StatusInternalServerError
		}
		// the body is rendered once more when it is sent
		body := ec.Parse(resp.Body())
		writeResponse(w, r, resp, code, body)

		s.metrics.RecordRequest(iface.alias, api.Name(), result.Status().String(), code, time.Since(start))
	}
}

func (s *Server) fail(w http.ResponseWriter, logger *slog.Logger, alias, api string, start time.Time, err error) {
	logger.Error("api execution failed", "error", err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	s.metrics.RecordRequest(alias, api, OutcomeError, http.StatusInternalServerError, time.Since(start))
}

// writeResponse copies the response headers and writes body with code.
// Content-Length always describes the rendered body.
func writeResponse(w http.ResponseWriter, r *http.Request, resp *message.HTTP, code int, body string) {
	h := w.Header()
	for name, values := range resp.Header() {
		h[name] = append([]string(nil), values...)
	}
	h.Del("Content-Length")
	if !bodyAllowed(code) {
		body = ""
	}
	if body != "" {
		h.Set("Content-Length", strconv.Itoa(len(body)))
	}

	w.WriteHeader(code)
	if r.Method == http.MethodHead || body == "" {
		return
	}
	_, _ = io.WriteString(w, body)
}

func bodyAllowed(code int) bool {
	return code != http.StatusNoContent && code != http.StatusNotModified
}

// Package logging builds the gateway's slog logger.
//
// # Usage
//
//	logger, err := logging.New(cfg.Telemetry.Logging, os.Stderr)
//	if err != nil {
//	    return err
//	}
//	slog.SetDefault(logger)
//
// # Redaction
//
// Every handler is created with a ReplaceAttr hook that hides
// credentials. Values of attributes whose key contains authorization,
// password, credentials or secret are replaced with "***", and HTTP
// credentials inside string values are masked:
//
//	"Basic dXNlcjpwYXNz"  ->  "Basic ***"
//	"Bearer eyJhbGciOi"   ->  "Bearer ***"
//
// # Request context
//
// The server stores the request id, interface alias, api name and trace
// id in the request context. FromContext returns a logger carrying them:
//
//	ctx = logging.WithRequestID(ctx, id)
//	logging.FromContext(ctx, logger).Info("request completed")
package logging

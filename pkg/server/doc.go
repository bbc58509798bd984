// Package server serves the apis of a catalog over HTTP.
//
// Every configured interface gets its own http.Server, with its own
// address, timeouts and TLS settings. The alias of the interface is the
// transport interface alias seen by api functions.
//
// # Routing
//
// Each interface routes with chi:
//
//	/health    liveness (telemetry.health.liveness_path)
//	/ready     readiness (telemetry.health.readiness_path)
//	/metrics   Prometheus metrics (telemetry.metrics.path)
//	/*         the api with the longest context root matching the path
//
// A path no api matches is answered with 404.
//
// # Request handling
//
// For a matched api the server builds the transport and both messages from
// the request, creates an ExecutionContext and runs ExecuteAPI. The
// response message is then written: the status code set by the api
// (200 when none was set), its headers and its body, which is passed
// through the template parser once more before it is sent. How a failed
// or stopped result maps to a status is up to the api itself. Only a
// fatal error aborting the execution is answered with 500.
//
// # Basic usage
//
//	c := catalog.New(logger)
//	if err := c.Reload(loader, cfg.APIs.Dir); err != nil {
//	    return err
//	}
//
//	srv, err := server.New(cfg, c,
//	    server.WithLogger(logger),
//	    server.WithMetrics(collector),
//	    server.WithTracer(tracer),
//	)
//	if err != nil {
//	    return err
//	}
//	return srv.Start(ctx)
//
// Start returns once ctx is cancelled and every interface has drained.
package server

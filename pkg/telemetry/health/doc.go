// Package health provides the liveness and readiness probes of the gateway.
//
// Both probes are served on every interface when health is enabled:
//
//   - liveness (default /health) answers 200 while the process runs
//   - readiness (default /ready) runs the registered checks and answers 503
//     when one fails or the gateway is draining
//
// # Usage
//
//	checker := health.New(cfg.Telemetry.Health.CheckTimeout, logger)
//	checker.RegisterCheck("catalog", health.CatalogCheck(apis))
//	checker.RegisterCheck("certificates", reloader.Check)
//
//	router.Get("/health", checker.LivenessHandler())
//	router.Get("/ready", checker.ReadinessHandler())
//
// Checks run concurrently, each bounded by the check timeout. During
// shutdown the server calls SetDraining(true) before closing listeners.
package health

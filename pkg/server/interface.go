package server

import (
	"context"
	cryptotls "crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"mercator-hq/gateway/pkg/config"
	"mercator-hq/gateway/pkg/security/certificate"
	"mercator-hq/gateway/pkg/security/tls"
	"mercator-hq/gateway/pkg/server/middleware"
	"mercator-hq/gateway/pkg/transport"
)

// Interface is one HTTP listener of the gateway.
type Interface struct {
	alias      string
	config     config.InterfaceConfig
	handler    http.Handler
	httpServer *http.Server
	reloader   *tls.CertificateReloader
	listener   net.Listener
	logger     *slog.Logger

	chainMu   sync.Mutex
	chainCert *cryptotls.Certificate
	chain     []*certificate.Certificate
}

func newInterface(s *Server, cfg config.InterfaceConfig) (*Interface, error) {
	logger := s.logger.With("interface", cfg.Alias)

	tlsConfig, reloader, err := tls.ServerConfig(cfg.TLS, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to configure TLS: %w", err)
	}

	iface := &Interface{
		alias:    cfg.Alias,
		config:   cfg,
		reloader: reloader,
		logger:   logger,
	}
	iface.handler = s.routes(iface)
	iface.httpServer = &http.Server{
		Addr:           cfg.ListenAddress,
		Handler:        iface.handler,
		TLSConfig:      tlsConfig,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: cfg.MaxHeaderBytes,
		ErrorLog:       slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}
	return iface, nil
}

// routes builds the router of iface. Management endpoints take precedence
// over apis; every other path is dispatched to the catalog.
func (s *Server) routes(iface *Interface) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recovery(s.logger),
		middleware.RequestID,
		middleware.Interface(iface.alias),
		s.tracer.Middleware(iface.alias),
		middleware.Logging(s.logger),
	)

	hc := s.config.Telemetry.Health
	if hc.Enabled {
		r.Handle(hc.LivenessPath, s.health.LivenessHandler())
		r.Handle(hc.ReadinessPath, s.health.ReadinessHandler())
	}
	if mc := s.config.Telemetry.Metrics; mc.Enabled && mc.Path != "" {
		r.Handle(mc.Path, s.metrics.Handler())
	}

	r.Handle("/*", s.dispatch(iface))
	return r
}

func (iface *Interface) serve(ln net.Listener) error {
	iface.logger.Info("starting interface",
		"address", ln.Addr().String(),
		"tls_enabled", iface.httpServer.TLSConfig != nil,
	)

	var err error
	if iface.httpServer.TLSConfig != nil {
		// the certificate comes from TLSConfig.GetCertificate
		err = iface.httpServer.ServeTLS(ln, "", "")
	} else {
		err = iface.httpServer.Serve(ln)
	}
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func (iface *Interface) shutdown(ctx context.Context) error {
	if timeout := iface.config.ShutdownTimeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := iface.httpServer.Shutdown(ctx); err != nil {
		iface.logger.Error("error during interface shutdown", "error", err)
		return fmt.Errorf("shutdown: %w", err)
	}
	iface.logger.Info("interface stopped")
	return nil
}

func (iface *Interface) addr() string {
	if iface.listener == nil {
		return ""
	}
	return iface.listener.Addr().String()
}

// localChain returns the certificate chain the interface currently
// serves. The parsed chain is cached until the reloader swaps the
// certificate.
func (iface *Interface) localChain() []*certificate.Certificate {
	if iface.reloader == nil {
		return nil
	}
	cert := iface.reloader.GetCertificate()

	iface.chainMu.Lock()
	defer iface.chainMu.Unlock()
	if cert != iface.chainCert {
		iface.chainCert = cert
		iface.chain = transport.LocalChain(cert)
	}
	return iface.chain
}

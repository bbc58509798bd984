package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"mercator-hq/gateway/pkg/catalog"
	"mercator-hq/gateway/pkg/config"
	"mercator-hq/gateway/pkg/gateway"
	"mercator-hq/gateway/pkg/telemetry/health"
	"mercator-hq/gateway/pkg/telemetry/metrics"
	"mercator-hq/gateway/pkg/telemetry/tracing"
)

// ErrServerRunning is returned by Start when the server is already
// running.
var ErrServerRunning = errors.New("server is already running")

// ErrServerClosed is returned by Start after Shutdown.
var ErrServerClosed = errors.New("server is shut down")

// Server serves the apis of a catalog on every configured interface.
type Server struct {
	config  *config.Config
	catalog *catalog.Catalog
	metrics *metrics.Collector
	tracer  *tracing.Tracer
	health  *health.Checker
	parser  *gateway.Parser
	logger  *slog.Logger

	interfaces []*Interface

	shutdownChan chan struct{}
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics sets the metrics collector. Without it the server creates a
// collector on its own registry.
func WithMetrics(c *metrics.Collector) Option {
	return func(s *Server) { s.metrics = c }
}

// WithTracer sets the tracer. Without it spans are not recorded.
func WithTracer(t *tracing.Tracer) Option {
	return func(s *Server) { s.tracer = t }
}

// WithHealth sets the health checker. Without it the server creates one
// checking the catalog.
func WithHealth(h *health.Checker) Option {
	return func(s *Server) { s.health = h }
}

// WithParser sets the template parser used for api executions.
func WithParser(p *gateway.Parser) Option {
	return func(s *Server) { s.parser = p }
}

// New creates a server for the interfaces of cfg. TLS material is loaded
// here, so a missing certificate fails before anything listens. The
// metrics collector of the server observes c from now on.
func New(cfg *config.Config, c *catalog.Catalog, opts ...Option) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if c == nil {
		return nil, errors.New("catalog is nil")
	}
	if len(cfg.Interfaces) == 0 {
		return nil, errors.New("no interfaces configured")
	}

	s := &Server{
		config:       cfg,
		catalog:      c,
		logger:       slog.Default(),
		shutdownChan: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.metrics == nil {
		s.metrics = metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
	}
	c.SetObserver(s.metrics)
	if s.tracer == nil {
		t, err := tracing.New(&config.TracingConfig{}, "")
		if err != nil {
			return nil, err
		}
		s.tracer = t
	}
	if s.health == nil {
		s.health = health.New(cfg.Telemetry.Health.CheckTimeout, s.logger)
		s.health.RegisterCheck("catalog", health.CatalogCheck(c))
	}

	for i := range cfg.Interfaces {
		iface, err := newInterface(s, cfg.Interfaces[i])
		if err != nil {
			return nil, fmt.Errorf("interface %s: %w", cfg.Interfaces[i].Alias, err)
		}
		if iface.reloader != nil {
			s.health.RegisterCheck("certificate_"+iface.alias, iface.reloader.Check)
		}
		s.interfaces = append(s.interfaces, iface)
	}
	return s, nil
}

// Start listens on every interface and serves until ctx is cancelled,
// Shutdown is called or a listener fails. It then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return ErrServerRunning
	}
	select {
	case <-s.shutdownChan:
		s.mu.Unlock()
		return ErrServerClosed
	default:
	}

	listeners := make([]net.Listener, 0, len(s.interfaces))
	for _, iface := range s.interfaces {
		ln, err := net.Listen("tcp", iface.config.ListenAddress)
		if err != nil {
			for _, l := range listeners {
				_ = l.Close()
			}
			s.mu.Unlock()
			return fmt.Errorf("interface %s: failed to listen on %s: %w", iface.alias, iface.config.ListenAddress, err)
		}
		listeners = append(listeners, ln)
	}
	for i, iface := range s.interfaces {
		iface.listener = listeners[i]
	}
	s.isRunning = true
	s.mu.Unlock()

	reloadCtx, stopReload := context.WithCancel(context.Background())
	defer stopReload()

	for _, iface := range s.interfaces {
		if iface.reloader == nil {
			continue
		}
		if err := iface.reloader.Start(reloadCtx); err != nil {
			for _, l := range listeners {
				_ = l.Close()
			}
			s.mu.Lock()
			s.isRunning = false
			for _, iface := range s.interfaces {
				iface.listener = nil
			}
			s.mu.Unlock()
			return fmt.Errorf("interface %s: %w", iface.alias, err)
		}
	}

	errChan := make(chan error, len(s.interfaces))
	for i, iface := range s.interfaces {
		go func(iface *Interface, ln net.Listener) {
			if err := iface.serve(ln); err != nil {
				errChan <- fmt.Errorf("interface %s: %w", iface.alias, err)
			}
		}(iface, listeners[i])
	}

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case err := <-errChan:
		s.logger.Error("interface failed, initiating shutdown", "error", err)
		if serr := s.Shutdown(context.Background()); serr != nil {
			return errors.Join(err, serr)
		}
		return err
	case <-s.shutdownChan:
		return nil
	}
}

// Shutdown stops accepting requests and waits for in-flight requests of
// every interface, each bounded by its shutdown timeout. Readiness
// reports draining while this happens.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			close(s.shutdownChan)
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()
		defer close(s.shutdownChan)

		s.health.SetDraining(true)
		s.logger.Info("initiating graceful shutdown", "interfaces", len(s.interfaces))

		var (
			wg   sync.WaitGroup
			mu   sync.Mutex
			errs []error
		)
		for _, iface := range s.interfaces {
			wg.Add(1)
			go func(iface *Interface) {
				defer wg.Done()
				if err := iface.shutdown(ctx); err != nil {
					mu.Lock()
					errs = append(errs, fmt.Errorf("interface %s: %w", iface.alias, err))
					mu.Unlock()
				}
			}(iface)
		}
		wg.Wait()
		shutdownErr = errors.Join(errs...)

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		s.logger.Info("gateway server stopped")
	})

	return shutdownErr
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler returns the handler of the interface with the given alias.
func (s *Server) Handler(alias string) (http.Handler, bool) {
	for _, iface := range s.interfaces {
		if iface.alias == alias {
			return iface.handler, true
		}
	}
	return nil, false
}

// Addr returns the address the interface with the given alias listens
// on, or "" when it is not listening.
func (s *Server) Addr(alias string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, iface := range s.interfaces {
		if iface.alias == alias {
			return iface.addr()
		}
	}
	return ""
}

// Health returns the health checker of the server.
func (s *Server) Health() *health.Checker {
	return s.health
}

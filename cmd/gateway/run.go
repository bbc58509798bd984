package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"mercator-hq/gateway/pkg/catalog"
	"mercator-hq/gateway/pkg/cli"
	"mercator-hq/gateway/pkg/config"
	"mercator-hq/gateway/pkg/gateway/functions"
	"mercator-hq/gateway/pkg/identity"
	"mercator-hq/gateway/pkg/server"
	"mercator-hq/gateway/pkg/telemetry/logging"
	"mercator-hq/gateway/pkg/telemetry/metrics"
	"mercator-hq/gateway/pkg/telemetry/tracing"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the gateway",
	Long: `Start the gateway with the specified configuration.

The gateway loads every api definition of the configured directory and
serves them on each configured interface until it receives SIGINT or
SIGTERM. In-flight requests are drained before it exits.

Examples:
  # Start with default config
  gateway run

  # Start with custom config
  gateway run --config /etc/gateway/gateway.yaml

  # Override the listen address of the first interface
  gateway run --listen 0.0.0.0:8080

  # Load config, apis and certificates without starting the server
  gateway run --dry-run`,
	RunE: runGateway,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address of the first interface")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config and apis without starting the server")
}

// gatewayDeps are the components run builds from the configuration.
type gatewayDeps struct {
	logger    *slog.Logger
	catalog   *catalog.Catalog
	loader    *catalog.Loader
	collector *metrics.Collector
	tracer    *tracing.Tracer
	server    *server.Server
}

func runGateway(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyRunFlags(cfg); err != nil {
		return err
	}

	logger, err := logging.New(cfg.Telemetry.Logging, cmd.ErrOrStderr())
	if err != nil {
		return cli.WrapConfigError("telemetry.logging", "invalid logging configuration", err)
	}
	slog.SetDefault(logger)

	d, err := build(cfg, logger)
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	defer func() {
		if err := d.tracer.Shutdown(context.Background()); err != nil {
			logger.Warn("failed to flush traces", "error", err)
		}
	}()

	out := cmd.OutOrStdout()
	if runFlags.dryRun {
		fmt.Fprintf(out, "✓ Configuration valid (%d interfaces)\n", len(cfg.Interfaces))
		fmt.Fprintf(out, "✓ APIs valid (%d apis in %s)\n", d.catalog.Len(), cfg.APIs.Dir)
		return nil
	}

	ctx, cancel := cli.SetupSignalHandler(cmd.Context(), logger)
	defer cancel()

	if cfg.APIs.Watch {
		watcher, err := catalog.NewWatcher(catalog.WatcherConfig{
			Dir:      cfg.APIs.Dir,
			Debounce: cfg.APIs.Debounce,
		}, d.catalog, d.loader, logger)
		if err != nil {
			return cli.NewCommandError("run", err)
		}
		go func() {
			if err := watcher.Watch(ctx); err != nil {
				logger.Error("api definition watcher failed", "error", err)
			}
		}()
		defer func() { _ = watcher.Stop() }()
	}

	printBanner(out, cfg, d)

	if err := d.server.Start(ctx); err != nil {
		return cli.NewCommandError("run", err)
	}
	fmt.Fprintln(out, "✓ Gateway stopped")
	return nil
}

func applyRunFlags(cfg *config.Config) error {
	if runFlags.listenAddress != "" {
		cfg.Interfaces[0].ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if runFlags.listenAddress != "" || runFlags.logLevel != "" {
		if err := config.Validate(cfg); err != nil {
			return cli.WrapConfigError("flags", "invalid override", err)
		}
	}
	return nil
}

// build wires the gateway from cfg. It loads the credential store, the api
// definitions and the TLS material, so every configuration error surfaces
// before the server starts.
func build(cfg *config.Config, logger *slog.Logger) (*gatewayDeps, error) {
	deps := functions.Deps{Logger: logger}
	if cfg.Credentials.File != "" {
		store, err := identity.LoadStore(cfg.Credentials.File, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to load credentials: %w", err)
		}
		deps.Verifier = store
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, registry)

	tracer, err := tracing.New(&cfg.Telemetry.Tracing, Version)
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}

	c := catalog.New(logger)
	c.SetObserver(collector)
	loader := catalog.NewLoader(nil, deps, logger)
	if err := c.Reload(loader, cfg.APIs.Dir); err != nil {
		_ = tracer.Shutdown(context.Background())
		return nil, fmt.Errorf("failed to load apis: %w", err)
	}

	srv, err := server.New(cfg, c,
		server.WithLogger(logger),
		server.WithMetrics(collector),
		server.WithTracer(tracer),
	)
	if err != nil {
		_ = tracer.Shutdown(context.Background())
		return nil, err
	}

	return &gatewayDeps{
		logger:    logger,
		catalog:   c,
		loader:    loader,
		collector: collector,
		tracer:    tracer,
		server:    srv,
	}, nil
}

func printBanner(w io.Writer, cfg *config.Config, d *gatewayDeps) {
	fmt.Fprintf(w, "Mercator gateway v%s\n", Version)
	fmt.Fprintf(w, "✓ %d apis loaded from %s\n", d.catalog.Len(), cfg.APIs.Dir)
	for _, iface := range cfg.Interfaces {
		scheme := "http"
		if iface.TLS.Enabled {
			scheme = "https"
		}
		fmt.Fprintf(w, "✓ Interface %s: %s://%s\n", iface.Alias, scheme, iface.ListenAddress)
	}
	if cfg.Telemetry.Metrics.Enabled {
		fmt.Fprintf(w, "✓ Metrics endpoint: %s\n", cfg.Telemetry.Metrics.Path)
	}
	if cfg.Telemetry.Tracing.Enabled {
		fmt.Fprintf(w, "✓ Tracing to %s\n", cfg.Telemetry.Tracing.Endpoint)
	}
	fmt.Fprintln(w, "\nPress Ctrl+C to stop")
}

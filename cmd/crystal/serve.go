package main

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"crystal-hq/crystal/pkg/config"
	"crystal-hq/crystal/pkg/engine"
	"crystal-hq/crystal/pkg/server"
	"crystal-hq/crystal/pkg/telemetry/health"
	"crystal-hq/crystal/pkg/telemetry/metrics"
	"crystal-hq/crystal/pkg/telemetry/tracing"
)

var serveFlags struct {
	listenAddress string
	watch         bool
	dryRun        bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the query API server",
	Long: `Start the HTTP API server with the configured schema.

Endpoints:
  POST /v1/parse    parse a query, returning its tree, description and errors
  POST /v1/filter   filter inline or configured records with a query
  GET  /v1/fields   list the schema fields
  GET  /health      liveness
  GET  /ready       readiness (schema and record source checks)
  GET  /version     build information
  GET  /metrics     Prometheus metrics

With --watch the schema is reloaded whenever the configuration file changes.
A configuration that fails to load keeps the current schema in place.

Examples:
  # Start with ./crystal.yaml
  crystal serve

  # Override the listen address and reload on change
  crystal serve --config /etc/crystal/crystal.yaml --listen 0.0.0.0:8080 --watch

  # Validate the configuration without starting the server
  crystal serve --dry-run`,
	Args: cobra.NoArgs,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveFlags.listenAddress, "listen", "l", "", "override listen address")
	serveCmd.Flags().BoolVarP(&serveFlags.watch, "watch", "w", false, "reload the schema when the config file changes")
	serveCmd.Flags().BoolVar(&serveFlags.dryRun, "dry-run", false, "validate config without starting server")
}

func runServer(cmd *cobra.Command, _ []string) error {
	cfg := state.cfg
	if serveFlags.listenAddress != "" {
		cfg.Server.ListenAddress = serveFlags.listenAddress
	}
	if serveFlags.watch {
		if state.cfgPath == "" {
			return fmt.Errorf("--watch needs a configuration file")
		}
		cfg.Server.Watch = true
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx := cmd.Context()
	logger := state.logger

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, registry)

	tracer, err := tracing.New(&cfg.Telemetry.Tracing, Version)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("tracer shutdown failed", "error", err)
		}
	}()
	if tracer.Enabled() {
		tracer.SetGlobal()
	}

	eng, err := newEngine(&cfg.Schema,
		engine.WithMetrics(collector),
		engine.WithTracer(tracer),
	)
	if err != nil {
		return err
	}

	if serveFlags.dryRun {
		logger.InfoContext(ctx, "configuration is valid",
			"path", state.cfgPath,
			"listen_address", cfg.Server.ListenAddress,
			"fields", len(eng.Fields()),
		)
		return nil
	}

	srv := server.New(&cfg.Server, eng, server.Options{
		Logger:      logger,
		Metrics:     collector,
		Tracer:      tracer,
		Version:     health.NewVersionInfo(Version, GitCommit, BuildDate),
		MetricsPath: cfg.Telemetry.Metrics.Path,
		Records:     &cfg.Records,
		ConfigPath:  state.cfgPath,
	})

	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	logger.InfoContext(ctx, "server stopped")
	return nil
}

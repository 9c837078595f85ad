package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/valyala/fastjson"

	"crystal-hq/crystal/pkg/config"
	"crystal-hq/crystal/pkg/engine"
	"crystal-hq/crystal/pkg/records"
	"crystal-hq/crystal/pkg/server/middleware"
	"crystal-hq/crystal/pkg/telemetry/health"
	"crystal-hq/crystal/pkg/telemetry/logging"
	"crystal-hq/crystal/pkg/telemetry/metrics"
	"crystal-hq/crystal/pkg/telemetry/tracing"
	"crystal-hq/crystal/pkg/watch"
)

// Options holds the optional collaborators of a Server.
type Options struct {
	Logger  *logging.Logger
	Metrics *metrics.Collector
	Tracer  *tracing.Tracer
	Version health.VersionInfo

	// MetricsPath is where Prometheus metrics are served. Default: "/metrics"
	MetricsPath string

	// Records is the record source filtered when a request carries no
	// records. Nil or an empty path disables it.
	Records *config.RecordsConfig

	// ConfigPath is reloaded on change when ServerConfig.Watch is set.
	ConfigPath string
}

// Server is the crystal HTTP API server.
type Server struct {
	config      *config.ServerConfig
	engine      *engine.Engine
	logger      *logging.Logger
	metrics     *metrics.Collector
	tracer      *tracing.Tracer
	health      *health.Checker
	version     health.VersionInfo
	metricsPath string
	records     *config.RecordsConfig
	openRecords func() (records.Source, error)
	configPath  string

	parsers fastjson.ParserPool

	httpServer   *http.Server
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
	addr         net.Addr
}

// New creates a server for eng.
func New(cfg *config.ServerConfig, eng *engine.Engine, opts Options) *Server {
	s := &Server{
		config:      cfg,
		engine:      eng,
		logger:      opts.Logger,
		metrics:     opts.Metrics,
		tracer:      opts.Tracer,
		health:      health.New(health.DefaultCheckTimeout),
		version:     opts.Version,
		metricsPath: opts.MetricsPath,
		records:     opts.Records,
		configPath:  opts.ConfigPath,
	}
	if s.logger == nil {
		s.logger = logging.Discard()
	}
	if s.metricsPath == "" {
		s.metricsPath = config.DefaultPrometheusPath
	}

	s.health.RegisterCheck("schema", eng.Check)
	if s.records != nil && s.records.Path != "" {
		rc := *s.records
		s.openRecords = func() (records.Source, error) {
			return records.Open(rc.Path, records.Options{
				Format: rc.Format,
				Driver: rc.Driver,
				Table:  rc.Table,
				Limit:  rc.Limit,
			})
		}
		s.health.RegisterCheck("records", s.checkRecords)
	}
	return s
}

// checkRecords verifies that the configured record source can be opened.
func (s *Server) checkRecords(ctx context.Context) error {
	src, err := s.openRecords()
	if err != nil {
		return err
	}
	defer src.Close()

	if sqlSrc, ok := src.(*records.SQLSource); ok {
		return sqlSrc.Ping(ctx)
	}
	return nil
}

// Handler returns the API handler with its middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/parse", s.handleParse)
	mux.HandleFunc("POST /v1/filter", s.handleFilter)
	mux.HandleFunc("GET /v1/fields", s.handleFields)
	s.health.Register(mux, s.version)
	if s.metrics.Enabled() {
		mux.Handle("GET "+s.metricsPath, s.metrics.Handler())
	}

	chain := []middleware.Middleware{
		middleware.Recovery(s.logger),
		middleware.RequestID,
	}
	if s.tracer.Enabled() {
		chain = append(chain, s.tracer.HTTPMiddleware)
	}
	chain = append(chain,
		middleware.Logging(s.logger),
		middleware.BodyLimit(s.config.MaxBodyBytes),
		middleware.Metrics(s.metrics),
	)
	return middleware.Chain(mux, chain...)
}

// Start listens on the configured address and serves until ctx is
// canceled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.ListenAddress)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.ListenAddress, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is canceled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		ln.Close()
		return errors.New("server is already running")
	}
	s.isRunning = true
	s.addr = ln.Addr()
	s.httpServer = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}
	s.mu.Unlock()

	if s.config.Watch && s.configPath != "" {
		if err := s.startWatcher(ctx); err != nil {
			s.logger.Warn("config watch disabled", "error", err)
		}
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting API server",
			"address", ln.Addr().String(),
			"watch", s.config.Watch,
			"metrics", s.metrics.Enabled(),
			"tracing", s.tracer.Enabled(),
		)
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
		close(errChan)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case err, ok := <-errChan:
		if !ok {
			return nil
		}
		return err
	}
}

// startWatcher reloads the schema when the configuration file changes.
func (s *Server) startWatcher(ctx context.Context) error {
	w, err := watch.New(watch.Config{Path: s.configPath, Debounce: s.config.WatchDebounce}, s.logger.Slog())
	if err != nil {
		return err
	}

	go func() {
		err := w.Watch(ctx, func() error {
			cfg, err := config.LoadConfigWithEnvOverrides(s.configPath)
			if err != nil {
				s.metrics.RecordReload(false)
				return fmt.Errorf("failed to reload %s: %w", s.configPath, err)
			}
			if err := s.engine.Reload(&cfg.Schema); err != nil {
				return err
			}
			config.SetConfig(cfg)
			return nil
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Error("config watcher stopped", "error", err)
		}
	}()
	s.logger.Info("watching configuration", "path", w.Path())
	return nil
}

// Shutdown gracefully shuts down the server, waiting at most
// ServerConfig.ShutdownTimeout for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		s.logger.Info("initiating graceful shutdown", "timeout", s.config.ShutdownTimeout.String())

		shutdownCtx := ctx
		if s.config.ShutdownTimeout > 0 {
			var cancel context.CancelFunc
			shutdownCtx, cancel = context.WithTimeout(ctx, s.config.ShutdownTimeout)
			defer cancel()
		}

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("error during server shutdown", "error", err)
			shutdownErr = fmt.Errorf("server shutdown error: %w", err)
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		s.logger.Info("API server stopped")
	})

	return shutdownErr
}

// IsRunning reports whether the server is serving.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Addr returns the address the server listens on, or nil before Serve.
func (s *Server) Addr() net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.addr
}

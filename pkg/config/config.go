package config

import "time"

// Config is the root configuration structure for crystal.
// It contains the query schema, the record source used by the filter
// command, the HTTP server and telemetry settings.
type Config struct {
	// Schema declares the fields queries may use and how queries are parsed.
	Schema SchemaConfig `yaml:"schema"`

	// Records selects the default record source for filtering.
	Records RecordsConfig `yaml:"records"`

	// Server contains HTTP API server configuration including listen address,
	// timeouts and request limits.
	Server ServerConfig `yaml:"server"`

	// Telemetry contains configuration for logging and metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// SchemaConfig configures the query schema.
type SchemaConfig struct {
	// Fields declares the fields queries may use, keyed by the name written
	// in queries. When empty, any field name is accepted and looked up as a
	// property of the input (generic mode).
	Fields map[string]FieldConfig `yaml:"fields"`

	// DefaultField names the field used by terms without a field name.
	// It must be a key of Fields.
	DefaultField string `yaml:"default_field"`

	// IgnoreInvalid prunes terms the schema rejects instead of failing the
	// whole query.
	// Default: false
	IgnoreInvalid bool `yaml:"ignore_invalid"`

	// MaxDepth limits nesting of parentheses and "not". A negative value
	// removes the limit.
	// Default: 256
	MaxDepth int `yaml:"max_depth"`

	// MaxOperators limits the and/or operators in a query, counting
	// juxtaposed terms. A negative value removes the limit.
	// Default: 10000
	MaxOperators int `yaml:"max_operators"`

	// DisableRepair turns off balancing of unmatched parentheses and quotes.
	// Default: false
	DisableRepair bool `yaml:"disable_repair"`

	// PropagateNegation describes a negated group by negating its contents
	// instead of prefixing "not".
	// Default: false
	PropagateNegation bool `yaml:"propagate_negation"`
}

// FieldConfig declares one query field.
type FieldConfig struct {
	// Type is the field type.
	// Options: "string", "number", "string_array"
	// Default: "string"
	Type string `yaml:"type"`

	// Description is the name used in query descriptions (e.g., "the title").
	// Default: the field key
	Description string `yaml:"description"`

	// Plural conjugates descriptions for a plural name ("tags contain").
	Plural bool `yaml:"plural"`

	// Property is the record property, as a dotted path.
	// Default: the field key
	Property string `yaml:"property"`

	// IgnoreCase makes string comparisons case-insensitive.
	IgnoreCase bool `yaml:"ignore_case"`

	// DefaultOperator is used for terms without an operator (e.g., ":").
	DefaultOperator string `yaml:"default_operator"`

	// AllowEmpty accepts terms without a value (string fields only).
	AllowEmpty bool `yaml:"allow_empty"`
}

// RecordsConfig selects a record source.
type RecordsConfig struct {
	// Path is a records file (.jsonl, .ndjson, .json, .yaml, .yml, optionally
	// compressed with .gz or .zst) or a SQLite database.
	Path string `yaml:"path"`

	// Format overrides detection by file extension.
	// Options: "auto", "jsonl", "yaml", "sqlite"
	// Default: "auto"
	Format string `yaml:"format"`

	// Driver is the database/sql driver for SQLite sources.
	// Options: "sqlite" (pure Go), "sqlite3" (cgo)
	// Default: "sqlite"
	Driver string `yaml:"driver"`

	// Table is the table to read from SQLite sources.
	Table string `yaml:"table"`

	// Limit caps the number of records read. Zero means no limit.
	Limit int `yaml:"limit"`
}

// ServerConfig contains configuration for the HTTP API server.
type ServerConfig struct {
	// ListenAddress is the address and port for the server to listen on.
	// Format: "host:port" (e.g., "127.0.0.1:8080", "0.0.0.0:8080").
	// Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request,
	// including the body.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response.
	// Default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next request
	// when keep-alives are enabled.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout bounds graceful shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxBodyBytes limits request bodies.
	// Default: 1048576 (1MB)
	MaxBodyBytes int64 `yaml:"max_body_bytes"`

	// Watch reloads the schema when the configuration file changes.
	// Default: false
	Watch bool `yaml:"watch"`

	// WatchDebounce is the quiet period before a change is reloaded.
	// Default: 100ms
	WatchDebounce time.Duration `yaml:"watch_debounce"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig contains structured logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level"`

	// Format controls the log output format.
	// Options: "json", "text", "console"
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes file and line number in log entries.
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "crystal"
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem name.
	// Default: "query"
	Subsystem string `yaml:"subsystem"`

	// DurationBuckets defines histogram buckets for parse and filter
	// durations (seconds).
	// Default: exponential from 10µs, factor 4, 10 buckets
	DurationBuckets []float64 `yaml:"duration_buckets"`
}

// TracingConfig contains OpenTelemetry tracing configuration.
type TracingConfig struct {
	// Enabled controls whether spans are recorded and exported.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Exporter selects the span exporter.
	// Options: "otlp"
	// Default: "otlp"
	Exporter string `yaml:"exporter"`

	// Endpoint is the OTLP gRPC collector address ("host:port").
	// Default: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// Insecure disables TLS towards the collector.
	// Default: false
	Insecure bool `yaml:"insecure"`

	// Timeout bounds each export call.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`

	// Sampler is the sampling strategy.
	// Options: "always", "never", "ratio"
	// Default: "ratio"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of traces sampled by the "ratio" sampler.
	// Default: 0.1
	SampleRatio float64 `yaml:"sample_ratio"`

	// ServiceName is reported as the service.name resource attribute.
	// Default: "crystal"
	ServiceName string `yaml:"service_name"`
}

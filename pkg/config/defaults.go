package config

import "time"

// Default values for configuration fields.
const (
	// Schema defaults
	DefaultMaxDepth     = 256
	DefaultMaxOperators = 10000
	DefaultFieldType    = FieldTypeString

	// Records defaults
	DefaultRecordsFormat = "auto"
	DefaultRecordsDriver = "sqlite"

	// Server defaults
	DefaultListenAddress   = "127.0.0.1:8080"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMaxBodyBytes    = 1048576 // 1MB
	DefaultWatchDebounce   = 100 * time.Millisecond

	// Telemetry defaults
	DefaultLoggingLevel     = "info"
	DefaultLoggingFormat    = "json"
	DefaultMetricsEnabled   = true
	DefaultPrometheusPath   = "/metrics"
	DefaultMetricsNamespace = "crystal"
	DefaultMetricsSubsystem = "query"
	DefaultTracingExporter  = "otlp"
	DefaultTracingEndpoint  = "localhost:4317"
	DefaultTracingTimeout   = 10 * time.Second
	DefaultTracingSampler   = "ratio"
	DefaultSampleRatio      = 0.1
	DefaultServiceName      = "crystal"
)

// Field types.
const (
	FieldTypeString      = "string"
	FieldTypeNumber      = "number"
	FieldTypeStringArray = "string_array"
)

// Default returns a configuration with every default applied. Files are
// decoded on top of it, so settings that default to true can be switched
// off.
func Default() *Config {
	cfg := &Config{}
	cfg.Telemetry.Metrics.Enabled = DefaultMetricsEnabled
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills in zero-valued fields with their defaults.
func ApplyDefaults(cfg *Config) {
	// Schema defaults
	if cfg.Schema.MaxDepth == 0 {
		cfg.Schema.MaxDepth = DefaultMaxDepth
	}
	if cfg.Schema.MaxOperators == 0 {
		cfg.Schema.MaxOperators = DefaultMaxOperators
	}
	for key, field := range cfg.Schema.Fields {
		if field.Type == "" {
			field.Type = DefaultFieldType
		}
		if field.Description == "" {
			field.Description = key
		}
		if field.Property == "" {
			field.Property = key
		}
		cfg.Schema.Fields[key] = field
	}

	// Records defaults
	if cfg.Records.Format == "" {
		cfg.Records.Format = DefaultRecordsFormat
	}
	if cfg.Records.Driver == "" {
		cfg.Records.Driver = DefaultRecordsDriver
	}

	// Server defaults
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxBodyBytes == 0 {
		cfg.Server.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.Server.WatchDebounce == 0 {
		cfg.Server.WatchDebounce = DefaultWatchDebounce
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultPrometheusPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Telemetry.Metrics.Subsystem == "" {
		cfg.Telemetry.Metrics.Subsystem = DefaultMetricsSubsystem
	}
	if cfg.Telemetry.Tracing.Exporter == "" {
		cfg.Telemetry.Tracing.Exporter = DefaultTracingExporter
	}
	if cfg.Telemetry.Tracing.Endpoint == "" {
		cfg.Telemetry.Tracing.Endpoint = DefaultTracingEndpoint
	}
	if cfg.Telemetry.Tracing.Timeout == 0 {
		cfg.Telemetry.Tracing.Timeout = DefaultTracingTimeout
	}
	if cfg.Telemetry.Tracing.Sampler == "" {
		cfg.Telemetry.Tracing.Sampler = DefaultTracingSampler
	}
	if cfg.Telemetry.Tracing.Sampler == "ratio" && cfg.Telemetry.Tracing.SampleRatio == 0 {
		cfg.Telemetry.Tracing.SampleRatio = DefaultSampleRatio
	}
	if cfg.Telemetry.Tracing.ServiceName == "" {
		cfg.Telemetry.Tracing.ServiceName = DefaultServiceName
	}
}

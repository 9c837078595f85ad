package config

import (
	"fmt"
	"net"
	"sort"
	"strings"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "server.listen_address").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is valid.
// All validation errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateSchema(&cfg.Schema)...)
	errs = append(errs, validateRecords(&cfg.Records)...)
	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

var fieldOperators = map[string]map[string]bool{
	FieldTypeString:      {":": true, "=": true},
	FieldTypeNumber:      {":": true, "=": true, ">": true, ">=": true, "<=": true, "<": true},
	FieldTypeStringArray: {":": true},
}

func validateSchema(cfg *SchemaConfig) []FieldError {
	var errs []FieldError

	keys := make([]string, 0, len(cfg.Fields))
	for key := range cfg.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		field := cfg.Fields[key]
		path := "schema.fields." + key

		if key == "" || strings.ContainsAny(key, " \t\n():<>=\"") {
			errs = append(errs, FieldError{
				Field:   path,
				Message: fmt.Sprintf("field name %q cannot be written in a query", key),
			})
		}

		ops, ok := fieldOperators[field.Type]
		if !ok {
			errs = append(errs, FieldError{
				Field:   path + ".type",
				Message: fmt.Sprintf("invalid field type %q: must be 'string', 'number', or 'string_array'", field.Type),
			})
			continue
		}
		if field.DefaultOperator != "" && !ops[field.DefaultOperator] {
			errs = append(errs, FieldError{
				Field:   path + ".default_operator",
				Message: fmt.Sprintf("operator %q is not supported by %s fields", field.DefaultOperator, field.Type),
			})
		}
		if field.AllowEmpty && field.Type != FieldTypeString {
			errs = append(errs, FieldError{
				Field:   path + ".allow_empty",
				Message: "only string fields accept terms without a value",
			})
		}
		if field.IgnoreCase && field.Type == FieldTypeNumber {
			errs = append(errs, FieldError{
				Field:   path + ".ignore_case",
				Message: "number fields have no case",
			})
		}
	}

	if cfg.DefaultField != "" {
		if _, ok := cfg.Fields[cfg.DefaultField]; !ok {
			errs = append(errs, FieldError{
				Field:   "schema.default_field",
				Message: fmt.Sprintf("default field %q is not declared in schema.fields", cfg.DefaultField),
			})
		}
	}

	return errs
}

func validateRecords(cfg *RecordsConfig) []FieldError {
	var errs []FieldError

	validFormats := map[string]bool{"auto": true, "jsonl": true, "yaml": true, "sqlite": true}
	if !validFormats[cfg.Format] {
		errs = append(errs, FieldError{
			Field:   "records.format",
			Message: fmt.Sprintf("invalid records format %q: must be 'auto', 'jsonl', 'yaml', or 'sqlite'", cfg.Format),
		})
	}

	if cfg.Driver != "sqlite" && cfg.Driver != "sqlite3" {
		errs = append(errs, FieldError{
			Field:   "records.driver",
			Message: fmt.Sprintf("invalid driver %q: must be 'sqlite' or 'sqlite3'", cfg.Driver),
		})
	}

	if cfg.Format == "sqlite" && cfg.Path != "" && cfg.Table == "" {
		errs = append(errs, FieldError{
			Field:   "records.table",
			Message: "table is required for sqlite sources",
		})
	}

	if cfg.Limit < 0 {
		errs = append(errs, FieldError{
			Field:   "records.limit",
			Message: fmt.Sprintf("limit must be non-negative, got %d", cfg.Limit),
		})
	}

	return errs
}

func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError

	if cfg.ListenAddress == "" {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: "listen address is required",
		})
	} else if _, port, err := net.SplitHostPort(cfg.ListenAddress); err != nil || port == "" {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: fmt.Sprintf("invalid listen address %q: must be in format 'host:port'", cfg.ListenAddress),
		})
	}

	if cfg.ReadTimeout < 0 {
		errs = append(errs, FieldError{Field: "server.read_timeout", Message: "timeout cannot be negative"})
	}
	if cfg.WriteTimeout < 0 {
		errs = append(errs, FieldError{Field: "server.write_timeout", Message: "timeout cannot be negative"})
	}
	if cfg.IdleTimeout < 0 {
		errs = append(errs, FieldError{Field: "server.idle_timeout", Message: "timeout cannot be negative"})
	}
	if cfg.MaxBodyBytes < 0 {
		errs = append(errs, FieldError{
			Field:   "server.max_body_bytes",
			Message: fmt.Sprintf("max body bytes must be non-negative, got %d", cfg.MaxBodyBytes),
		})
	}

	return errs
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if cfg.Logging.Level == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: "logging level is required",
		})
	} else if !validLevels[cfg.Logging.Level] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid logging level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.Logging.Level),
		})
	}

	validFormats := map[string]bool{"json": true, "text": true, "console": true}
	if cfg.Logging.Format == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: "logging format is required",
		})
	} else if !validFormats[cfg.Logging.Format] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid logging format %q: must be 'json', 'text', or 'console'", cfg.Logging.Format),
		})
	}

	if cfg.Metrics.Enabled && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		errs = append(errs, FieldError{
			Field:   "telemetry.metrics.path",
			Message: fmt.Sprintf("metrics path %q must start with '/'", cfg.Metrics.Path),
		})
	}

	for i, b := range cfg.Metrics.DurationBuckets {
		if b <= 0 || (i > 0 && b <= cfg.Metrics.DurationBuckets[i-1]) {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.duration_buckets",
				Message: "buckets must be positive and strictly increasing",
			})
			break
		}
	}

	if cfg.Tracing.Enabled {
		if cfg.Tracing.Exporter != "otlp" {
			errs = append(errs, FieldError{
				Field:   "telemetry.tracing.exporter",
				Message: fmt.Sprintf("unsupported exporter %q: must be 'otlp'", cfg.Tracing.Exporter),
			})
		}
		if _, _, err := net.SplitHostPort(cfg.Tracing.Endpoint); err != nil {
			errs = append(errs, FieldError{
				Field:   "telemetry.tracing.endpoint",
				Message: fmt.Sprintf("invalid endpoint %q: %v", cfg.Tracing.Endpoint, err),
			})
		}
	}

	switch cfg.Tracing.Sampler {
	case "always", "never", "ratio":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sampler",
			Message: fmt.Sprintf("invalid sampler %q: must be 'always', 'never', or 'ratio'", cfg.Tracing.Sampler),
		})
	}
	if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1 {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sample_ratio",
			Message: fmt.Sprintf("sample ratio must be between 0.0 and 1.0, got %g", cfg.Tracing.SampleRatio),
		})
	}

	return errs
}

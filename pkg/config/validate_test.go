package config

import (
	"errors"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		modify    func(*Config)
		wantField string
	}{
		{"valid", func(*Config) {}, ""},
		{"unknown field type", func(c *Config) {
			c.Schema.Fields = map[string]FieldConfig{"x": {Type: "date"}}
		}, "schema.fields.x.type"},
		{"unwritable field name", func(c *Config) {
			c.Schema.Fields = map[string]FieldConfig{"a b": {Type: FieldTypeString}}
		}, "schema.fields.a b"},
		{"unsupported default operator", func(c *Config) {
			c.Schema.Fields = map[string]FieldConfig{"x": {Type: FieldTypeString, DefaultOperator: ">"}}
		}, "schema.fields.x.default_operator"},
		{"allow empty on number", func(c *Config) {
			c.Schema.Fields = map[string]FieldConfig{"x": {Type: FieldTypeNumber, AllowEmpty: true}}
		}, "schema.fields.x.allow_empty"},
		{"undeclared default field", func(c *Config) {
			c.Schema.DefaultField = "title"
		}, "schema.default_field"},
		{"records format", func(c *Config) { c.Records.Format = "csv" }, "records.format"},
		{"records driver", func(c *Config) { c.Records.Driver = "postgres" }, "records.driver"},
		{"sqlite without table", func(c *Config) {
			c.Records.Format = "sqlite"
			c.Records.Path = "x.db"
		}, "records.table"},
		{"negative limit", func(c *Config) { c.Records.Limit = -1 }, "records.limit"},
		{"listen address", func(c *Config) { c.Server.ListenAddress = "localhost" }, "server.listen_address"},
		{"negative timeout", func(c *Config) { c.Server.ReadTimeout = -1 }, "server.read_timeout"},
		{"logging level", func(c *Config) { c.Telemetry.Logging.Level = "trace" }, "telemetry.logging.level"},
		{"logging format", func(c *Config) { c.Telemetry.Logging.Format = "xml" }, "telemetry.logging.format"},
		{"metrics path", func(c *Config) { c.Telemetry.Metrics.Path = "metrics" }, "telemetry.metrics.path"},
		{"buckets", func(c *Config) { c.Telemetry.Metrics.DurationBuckets = []float64{1, 0.5} }, "telemetry.metrics.duration_buckets"},
		{"tracing sampler", func(c *Config) { c.Telemetry.Tracing.Sampler = "sometimes" }, "telemetry.tracing.sampler"},
		{"tracing ratio", func(c *Config) { c.Telemetry.Tracing.SampleRatio = 2 }, "telemetry.tracing.sample_ratio"},
		{"tracing endpoint", func(c *Config) {
			c.Telemetry.Tracing.Enabled = true
			c.Telemetry.Tracing.Endpoint = "collector"
		}, "telemetry.tracing.endpoint"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			ApplyDefaults(cfg)

			err := Validate(cfg)
			if tt.wantField == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}

			var verr ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Validate() error = %v, want ValidationError", err)
			}
			found := false
			for _, fe := range verr.Errors {
				if fe.Field == tt.wantField {
					found = true
				}
			}
			if !found {
				t.Errorf("Validate() errors = %v, want one for %s", verr.Errors, tt.wantField)
			}
		})
	}
}

func TestValidationError_Error(t *testing.T) {
	single := ValidationError{Errors: []FieldError{{Field: "a", Message: "bad"}}}
	if got, want := single.Error(), "configuration validation failed: a: bad"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	multi := ValidationError{Errors: []FieldError{{Field: "a", Message: "bad"}, {Field: "b", Message: "worse"}}}
	want := "configuration validation failed with 2 errors:\n  - a: bad\n  - b: worse\n"
	if got := multi.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

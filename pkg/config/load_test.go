package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfig_YAML(t *testing.T) {
	path := writeConfig(t, "crystal.yaml", `
schema:
  default_field: title
  fields:
    title:
      description: "the title"
      default_operator: ":"
    pages:
      type: number
server:
  listen_address: "0.0.0.0:9090"
  read_timeout: "60s"
telemetry:
  logging:
    level: debug
    format: text
  metrics:
    enabled: false
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Server.ListenAddress != "0.0.0.0:9090" {
		t.Errorf("ListenAddress = %q, want %q", cfg.Server.ListenAddress, "0.0.0.0:9090")
	}
	if cfg.Server.ReadTimeout != 60*time.Second {
		t.Errorf("ReadTimeout = %v, want %v", cfg.Server.ReadTimeout, 60*time.Second)
	}
	if cfg.Server.WriteTimeout != DefaultWriteTimeout {
		t.Errorf("WriteTimeout = %v, want default %v", cfg.Server.WriteTimeout, DefaultWriteTimeout)
	}
	if cfg.Telemetry.Metrics.Enabled {
		t.Error("Metrics.Enabled = true, want false from file")
	}

	pages := cfg.Schema.Fields["pages"]
	if pages.Type != FieldTypeNumber || pages.Description != "pages" || pages.Property != "pages" {
		t.Errorf("pages = %+v, want number field with defaulted description and property", pages)
	}
	if title := cfg.Schema.Fields["title"]; title.Type != FieldTypeString || title.DefaultOperator != ":" {
		t.Errorf("title = %+v", title)
	}
}

func TestLoadConfig_JSONC(t *testing.T) {
	path := writeConfig(t, "crystal.jsonc", `{
  // fields queries may use
  "schema": {
    "fields": {
      "tags": {"type": "string_array", "plural": true,},
    },
    "ignore_invalid": true,
  },
  "server": {"idle_timeout": "5m"},
}`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if !cfg.Schema.IgnoreInvalid {
		t.Error("IgnoreInvalid = false, want true")
	}
	if tags := cfg.Schema.Fields["tags"]; tags.Type != FieldTypeStringArray || !tags.Plural {
		t.Errorf("tags = %+v", tags)
	}
	if cfg.Server.IdleTimeout != 5*time.Minute {
		t.Errorf("IdleTimeout = %v, want 5m", cfg.Server.IdleTimeout)
	}
	if !cfg.Telemetry.Metrics.Enabled {
		t.Error("Metrics.Enabled = false, want default true")
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		want    string
	}{
		{"bad yaml", "c.yaml", "schema: [", "failed to parse"},
		{"bad jsonc", "c.json", "{", "failed to parse"},
		{"invalid", "c.yaml", "schema:\n  default_field: nope\n", "schema.default_field"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.file, tt.content))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("LoadConfig() error = %v, want it to mention %q", err, tt.want)
			}
		})
	}

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("LoadConfig(missing) error = %v, want os.ErrNotExist", err)
	}
}

func TestLoadConfigWithEnvOverrides(t *testing.T) {
	path := writeConfig(t, "crystal.yaml", "server:\n  listen_address: \"127.0.0.1:1\"\n")

	t.Setenv("CRYSTAL_SERVER_LISTEN_ADDRESS", "127.0.0.1:2")
	t.Setenv("CRYSTAL_SERVER_WRITE_TIMEOUT", "7s")
	t.Setenv("CRYSTAL_SCHEMA_IGNORE_INVALID", "true")
	t.Setenv("CRYSTAL_SCHEMA_MAX_DEPTH", "not-a-number")
	t.Setenv("CRYSTAL_TELEMETRY_LOGGING_LEVEL", "warn")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides() error = %v", err)
	}
	if cfg.Server.ListenAddress != "127.0.0.1:2" {
		t.Errorf("ListenAddress = %q, want override", cfg.Server.ListenAddress)
	}
	if cfg.Server.WriteTimeout != 7*time.Second {
		t.Errorf("WriteTimeout = %v, want 7s", cfg.Server.WriteTimeout)
	}
	if !cfg.Schema.IgnoreInvalid {
		t.Error("IgnoreInvalid = false, want override")
	}
	if cfg.Schema.MaxDepth != DefaultMaxDepth {
		t.Errorf("MaxDepth = %d, want malformed override ignored", cfg.Schema.MaxDepth)
	}
	if cfg.Telemetry.Logging.Level != "warn" {
		t.Errorf("Level = %q, want warn", cfg.Telemetry.Logging.Level)
	}

	t.Setenv("CRYSTAL_TELEMETRY_LOGGING_LEVEL", "loud")
	if _, err := LoadConfigWithEnvOverrides(path); err == nil {
		t.Error("LoadConfigWithEnvOverrides() error = nil, want validation failure")
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate(Default()) error = %v", err)
	}
	if cfg.Schema.MaxDepth != DefaultMaxDepth || cfg.Records.Driver != DefaultRecordsDriver {
		t.Errorf("Default() = %+v", cfg)
	}
	if !cfg.Telemetry.Metrics.Enabled || cfg.Telemetry.Metrics.Path != DefaultPrometheusPath {
		t.Errorf("Metrics = %+v", cfg.Telemetry.Metrics)
	}
}

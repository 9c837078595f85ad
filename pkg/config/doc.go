// Package config provides configuration management for crystal.
//
// Configuration is read from YAML files, or from JSON files with comments
// and trailing commas (.json, .jsonc, .hujson), with environment variable
// overrides.
//
// # Configuration Loading
//
//	cfg, err := config.LoadConfig("crystal.yaml")
//	cfg, err := config.LoadConfigWithEnvOverrides("crystal.jsonc")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention CRYSTAL_SECTION_FIELD:
//
//   - CRYSTAL_SERVER_LISTEN_ADDRESS overrides server.listen_address
//   - CRYSTAL_SCHEMA_IGNORE_INVALID overrides schema.ignore_invalid
//   - CRYSTAL_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// # Configuration Precedence
//
//  1. Default values (defined in defaults.go)
//  2. Values from the file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Example Configuration
//
//	schema:
//	  default_field: title
//	  fields:
//	    title:
//	      description: "the title"
//	      default_operator: ":"
//	      ignore_case: true
//	    pages:
//	      type: number
//	      description: "the page count"
//	    tags:
//	      type: string_array
//	      description: "the tags"
//	      plural: true
//
//	records:
//	  path: books.jsonl.zst
//
//	server:
//	  listen_address: "127.0.0.1:8080"
//	  watch: true
//
//	telemetry:
//	  logging:
//	    level: "info"
//	    format: "json"
//
// # Thread Safety
//
// The process-wide configuration (Initialize, GetConfig, ReloadConfig) is
// guarded by a read-write lock.
package config

// Package server provides the HTTP JSON API of crystal.
//
// Endpoints:
//
//	POST /v1/parse    parse a query, optionally matching it against an input
//	POST /v1/filter   filter inline records, or the configured record source
//	GET  /v1/fields   list the fields of the current schema
//	GET  /health      liveness
//	GET  /ready       readiness (schema and record source checks)
//	GET  /version     build information
//	GET  /metrics     Prometheus metrics, when enabled
//
// When watching is enabled the server reloads the schema whenever its
// configuration file changes.
package server

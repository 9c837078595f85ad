// Package engine connects the query schema to configuration, record
// sources and telemetry.
//
// An Engine holds the schema built from config.SchemaConfig. Parse records
// parse metrics and spans; Filter streams a records.Source through a
// query's predicate. Reload swaps the schema atomically, which is how the
// server applies configuration changes picked up by package watch.
package engine

// Package logging provides structured logging for crystal.
//
// # Overview
//
// The logging package wraps Go's standard log/slog package to provide:
//   - JSON, text and console output formats
//   - Context-aware logging with request IDs, run IDs and the query text
//   - Configurable log levels (debug, info, warn, error)
//
// # Usage
//
//	logger, err := logging.New(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	})
//
//	ctx = logging.WithRequestID(ctx, "5f0c...")
//	ctx = logging.WithQuery(ctx, `title:"go" stars>10`)
//	logger.InfoContext(ctx, "query parsed", "status", "success")
//	// {"level":"INFO","msg":"query parsed","request_id":"5f0c...","query":"title:\"go\" stars>10","status":"success"}
//
// The console format is meant for terminals: one short line per record
// with colored level tags when the output is a TTY.
//
// The query packages under pkg/query never log; callers log around them.
package logging

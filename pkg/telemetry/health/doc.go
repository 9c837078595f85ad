// Package health provides liveness, readiness and version endpoints for
// the crystal HTTP server.
//
//   - /health answers 200 while the process is running.
//   - /ready runs the registered checks (the schema is loaded, the record
//     database answers a ping) and answers 503 if any fails.
//   - /version reports build information.
//
// Checks run concurrently, each bounded by the checker's timeout:
//
//	checker := health.New(2 * time.Second)
//	checker.RegisterCheck("schema", func(ctx context.Context) error {
//	    return eng.Check()
//	})
//	checker.Register(mux, health.NewVersionInfo(version, commit, date))
package health

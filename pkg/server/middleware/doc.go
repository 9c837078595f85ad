// Package middleware provides the HTTP middleware of the crystal API
// server: request IDs, request logging, panic recovery, body size limits
// and request metrics.
//
// Chain them with Chain; the first middleware is the outermost:
//
//	handler := middleware.Chain(mux,
//		middleware.Recovery(logger),
//		middleware.RequestID,
//		middleware.Logging(logger),
//		middleware.BodyLimit(1<<20),
//		middleware.Metrics(collector),
//	)
package middleware

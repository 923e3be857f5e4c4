// Package controller contains HTTP middlewares and helper handlers used by the
// preview server.
//
// Provided middlewares:
//   - WithLogger: attaches a request-scoped logger and request ID to the context and logs access info.
//   - WithMetrics: records request counts and latencies.
//   - WithCacheControl: sets cache headers for HTML documents and fingerprinted assets.
//
// Provided helpers:
//   - PprofMux: returns a ServeMux exposing net/http/pprof handlers.
package controller

// Package main is the entry point for the statscrape API server.
//
// The server rebuilds typed stat tables from flattened cell streams and runs
// scrape jobs on request.
//
// The server provides:
//   - POST /reconstruct: cells + schema + identity to a typed table
//   - POST /jobs: run an inline job across URLs or saved pages
//   - GET /schemas/:name: preset schemas
//   - GET /metrics: Prometheus exposition, /metrics/json for a digest
//   - Rate limiting, CORS and request IDs
//
// Configuration:
//   - Environment variables (12-factor)
//   - CLI flags (override env vars)
//   - Defaults for development
//
// Usage:
//
//	# Production mode
//	./server -port 8000 -pages /srv/pages
//
//	# Development mode (colored logs, debug level)
//	./server -dev
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main

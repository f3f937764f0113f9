// Package http provides the gin handlers of the statscrape API.
//
// Endpoints:
//   - GET  /health            service and fetcher breaker state
//   - GET  /schemas           preset schema names
//   - GET  /schemas/:name     a preset schema and its post-split columns
//   - POST /reconstruct       cells + schema + identity to a typed table
//   - POST /jobs              run an inline job through the pipeline
//   - GET  /metrics/json      JSON digest of the Prometheus counters
//
// Errors are returned as {"error", "kind"} with row and column set when a
// single row was at fault. Input that cannot describe a table is a 400;
// cells that do not fit their schema are a 422.
package http

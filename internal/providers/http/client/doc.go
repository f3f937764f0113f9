// Package client fetches stats pages over HTTP.
//
// Built on go-resty/resty with hashicorp/go-retryablehttp as the transport:
//   - Retries with exponential backoff on connection errors and 5xx
//   - Token bucket rate limiting per client (golang.org/x/time/rate)
//   - One circuit breaker per upstream host, so one failing site does
//     not stop fetches from the others
//   - Content sniffing with gabriel-vasile/mimetype so that only HTML
//     bodies reach the parser
//
// Breaker transitions are logged through zap and exported as the
// statscrape_breaker_state gauge, labelled page-fetch/<host>, when a
// Metrics instance is attached.
//
// Example Usage:
//
//	c := client.NewClient(cfg.Fetch, client.WithLogger(log), client.WithMetrics(m))
//	page, err := c.Fetch(ctx, "https://example.edu/sports/wbb/stats/2024")
package client

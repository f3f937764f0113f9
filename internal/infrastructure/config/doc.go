// Package config provides 12-factor configuration for the scrape server and CLI.
//
// Configuration is loaded from environment variables with sensible defaults.
// CLI flags can override environment variables for one-off runs.
//
// Configuration Sections:
//   - Server: HTTP server settings (port, host, request body cap)
//   - Logging: Log level and output format
//   - RateLimit: Per-IP rate limiting of the API
//   - Fetch: Outbound page fetching (timeout, retries, politeness rate)
//   - Pipeline: Page concurrency, row failure policy, sanitization
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	fmt.Printf("Server running on %s:%s\n", cfg.Server.Host, cfg.Server.Port)
//
// Environment Variables:
//   - PORT, HOST, MAX_BODY_BYTES
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
//   - FETCH_TIMEOUT, FETCH_RETRIES, FETCH_RPS, FETCH_USER_AGENT, FETCH_MAX_BYTES
//   - PIPELINE_CONCURRENCY, PIPELINE_ROW_POLICY, PIPELINE_SANITIZE
package config

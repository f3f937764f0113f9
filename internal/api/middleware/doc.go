// Package middleware provides the HTTP middleware for the statscrape API.
//
// Middleware stack includes:
//   - CORS: Cross-origin resource sharing for GET and POST callers
//   - RateLimit: Per-IP token bucket rate limiting with idle eviction
//   - RequestID: UUID request IDs echoed in X-Request-ID
//   - Logger: One zap line per request
//
// Rate Limiting:
//   - Per-IP tracking, limiters unused for IdleTTL are dropped
//   - Rejections carry a Retry-After header
//   - Global rate limiting option
//
// Example Usage:
//
//	router.Use(middleware.RequestID())
//	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
//	router.Use(middleware.RateLimit(middleware.RateLimitFromConfig(cfg.RateLimit)))
package middleware

// Package server assembles the gin engine of the statscrape API: recovery,
// request IDs, tracing, metrics, request logging, CORS, rate limiting and the
// body cap, in that order, in front of the api/http handlers.
package server

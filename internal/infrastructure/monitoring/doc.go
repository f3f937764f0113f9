/*
Package monitoring provides Prometheus metrics for the scrape server and CLI.

# Overview

Collectors are registered on a caller-supplied registry so tests and
embedded runners do not collide on the global one. A nil *Metrics is valid
and records nothing, which keeps library callers free of metrics setup.

# Features

- HTTP request metrics (latency, throughput, size) keyed by route template
- Page load metrics per source with circuit breaker state
- Reconstruction metrics (records, skipped rows, header warnings)
- Job run metrics and pages in flight
- Uptime gauge
- Snapshot for the JSON stats endpoint

# Usage

	metrics := monitoring.NewMetrics(prometheus.NewRegistry())
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	timer := monitoring.NewTimer(metrics)
	page, err := src.Load(ctx, ref)
	timer.StopFetch("http", err)
*/
package monitoring

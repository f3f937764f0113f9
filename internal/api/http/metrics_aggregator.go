package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/statscrape/internal/providers/http/client"
)

// MetricsAggregator serves a JSON digest of the Prometheus counters
type MetricsAggregator struct {
	metrics *HandlerMetrics
	fetcher *client.Client
}

// NewMetricsAggregator creates a metrics aggregator. fetcher may be nil.
func NewMetricsAggregator(metrics *HandlerMetrics, fetcher *client.Client) *MetricsAggregator {
	return &MetricsAggregator{
		metrics: metrics,
		fetcher: fetcher,
	}
}

// MetricsSnapshot represents a snapshot of the service metrics
type MetricsSnapshot struct {
	Timestamp time.Time      `json:"timestamp"`
	Scrape    ScrapeSummary  `json:"scrape"`
	Fetch     *FetchSummary  `json:"fetch,omitempty"`
	Summary   MetricsSummary `json:"summary"`
}

// MetricsSummary provides request-level metrics
type MetricsSummary struct {
	TotalRequests    int64   `json:"total_requests"`
	AverageLatencyMs float64 `json:"average_latency_ms"`
	ErrorRate        float64 `json:"error_rate"`
	UptimeSeconds    float64 `json:"uptime_seconds"`
}

// ScrapeSummary totals page loads and reconstruction output
type ScrapeSummary struct {
	PagesFetched int64 `json:"pages_fetched"`
	PagesFailed  int64 `json:"pages_failed"`
	Records      int64 `json:"records"`
	SkippedRows  int64 `json:"skipped_rows"`
}

// FetchSummary reports the page fetcher's circuit breaker
type FetchSummary struct {
	Breaker  string `json:"breaker"`
	Requests uint32 `json:"requests"`
	Failures uint32 `json:"failures"`
}

// GetAggregatedMetrics returns the JSON digest
func (ma *MetricsAggregator) GetAggregatedMetrics(c *gin.Context) {
	snap := ma.metrics.Snapshot()

	out := MetricsSnapshot{
		Timestamp: time.Now(),
		Scrape: ScrapeSummary{
			PagesFetched: snap.PagesFetched,
			PagesFailed:  snap.PagesFailed,
			Records:      snap.Records,
			SkippedRows:  snap.SkippedRows,
		},
		Summary: MetricsSummary{
			TotalRequests: snap.TotalRequests,
			UptimeSeconds: snap.UptimeSeconds,
		},
	}

	if snap.RequestCount > 0 {
		out.Summary.AverageLatencyMs = snap.TotalDuration / float64(snap.RequestCount) * 1000
	}
	if snap.TotalRequests > 0 {
		out.Summary.ErrorRate = float64(snap.TotalErrors) / float64(snap.TotalRequests)
	}

	if ma.fetcher != nil {
		counts := ma.fetcher.BreakerCounts()
		out.Fetch = &FetchSummary{
			Breaker:  ma.fetcher.BreakerState().String(),
			Requests: counts.Requests,
			Failures: counts.TotalFailures,
		}
	}

	c.JSON(http.StatusOK, out)
}

package monitoring

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics. A nil *Metrics records nothing.
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RequestSize     *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// Fetch metrics
	PageFetches   *prometheus.CounterVec
	FetchDuration *prometheus.HistogramVec
	BreakerState  *prometheus.GaugeVec

	// Reconstruction metrics
	Reconstructions     *prometheus.CounterVec
	ReconstructDuration *prometheus.HistogramVec
	RecordsTotal        *prometheus.CounterVec
	RowsSkipped         *prometheus.CounterVec
	HeaderWarnings      *prometheus.CounterVec

	// Job metrics
	JobsTotal     *prometheus.CounterVec
	JobDuration   prometheus.Histogram
	PagesInFlight prometheus.Gauge

	// System metrics
	Uptime    prometheus.GaugeFunc
	startTime time.Time

	gatherer prometheus.Gatherer

	// Snapshot for JSON API - track current values
	snapshot MetricsSnapshot
	mu       sync.RWMutex
}

// MetricsSnapshot holds current metric values for JSON API
type MetricsSnapshot struct {
	TotalRequests int64
	TotalErrors   int64
	PagesFetched  int64
	PagesFailed   int64
	Records       int64
	SkippedRows   int64
	TotalDuration float64 // sum of all request durations
	RequestCount  int64   // count for averaging
	UptimeSeconds float64
}

// NewMetrics registers the collectors with reg. Pass a fresh
// prometheus.NewRegistry() in tests; nil uses the default registry.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	var registerer prometheus.Registerer = prometheus.DefaultRegisterer
	var gatherer prometheus.Gatherer = prometheus.DefaultGatherer
	if reg != nil {
		registerer, gatherer = reg, reg
	}
	factory := promauto.With(registerer)

	m := &Metrics{
		startTime: time.Now(),
		gatherer:  gatherer,

		// HTTP metrics
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "statscrape_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "statscrape_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		RequestSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "statscrape_http_request_size_bytes",
				Help:    "HTTP request size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000, 10000000},
			},
			[]string{"method", "path"},
		),
		ResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "statscrape_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000, 10000000},
			},
			[]string{"method", "path"},
		),

		// Fetch metrics
		PageFetches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "statscrape_page_fetches_total",
				Help: "Total number of page loads by source and outcome",
			},
			[]string{"source", "status"},
		),
		FetchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "statscrape_page_fetch_duration_seconds",
				Help:    "Page load duration in seconds",
				Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"source"},
		),
		BreakerState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "statscrape_breaker_state",
				Help: "Circuit breaker state (0 closed, 1 half-open, 2 open)",
			},
			[]string{"breaker"},
		),

		// Reconstruction metrics
		Reconstructions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "statscrape_reconstructions_total",
				Help: "Total number of table reconstructions by outcome",
			},
			[]string{"schema", "outcome"},
		),
		ReconstructDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "statscrape_reconstruct_duration_seconds",
				Help:    "Extraction and reconstruction duration per page in seconds",
				Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"schema"},
		),
		RecordsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "statscrape_records_total",
				Help: "Total number of records produced",
			},
			[]string{"schema"},
		),
		RowsSkipped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "statscrape_rows_skipped_total",
				Help: "Total number of rows dropped under the skip policy",
			},
			[]string{"schema"},
		),
		HeaderWarnings: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "statscrape_header_warnings_total",
				Help: "Total number of header mismatch warnings",
			},
			[]string{"schema"},
		),

		// Job metrics
		JobsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "statscrape_jobs_total",
				Help: "Total number of job runs by status",
			},
			[]string{"status"},
		),
		JobDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "statscrape_job_duration_seconds",
				Help:    "Job run duration in seconds",
				Buckets: []float64{.1, .5, 1, 2.5, 5, 10, 30, 60, 120, 300},
			},
		),
		PagesInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "statscrape_pages_in_flight",
				Help: "Number of pages currently being processed",
			},
		),
	}

	m.Uptime = factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "statscrape_uptime_seconds",
			Help: "Process uptime in seconds",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)

	return m
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration, reqSize, respSize int64) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.RequestSize.WithLabelValues(method, path).Observe(float64(reqSize))
	m.ResponseSize.WithLabelValues(method, path).Observe(float64(respSize))

	m.mu.Lock()
	m.snapshot.TotalRequests++
	m.snapshot.TotalDuration += duration.Seconds()
	m.snapshot.RequestCount++
	if status != "" && (status[0] == '4' || status[0] == '5') {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// RecordFetch records one page load from a source ("http" or "dir")
func (m *Metrics) RecordFetch(source string, err error, duration time.Duration) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.PageFetches.WithLabelValues(source, status).Inc()
	m.FetchDuration.WithLabelValues(source).Observe(duration.Seconds())

	m.mu.Lock()
	if err != nil {
		m.snapshot.PagesFailed++
	} else {
		m.snapshot.PagesFetched++
	}
	m.mu.Unlock()
}

// RecordReconstruction records the outcome of one page's reconstruction
func (m *Metrics) RecordReconstruction(schema string, records, skipped, warnings int, err error, duration time.Duration) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.Reconstructions.WithLabelValues(schema, outcome).Inc()
	m.ReconstructDuration.WithLabelValues(schema).Observe(duration.Seconds())
	m.RecordsTotal.WithLabelValues(schema).Add(float64(records))
	m.RowsSkipped.WithLabelValues(schema).Add(float64(skipped))
	m.HeaderWarnings.WithLabelValues(schema).Add(float64(warnings))

	m.mu.Lock()
	m.snapshot.Records += int64(records)
	m.snapshot.SkippedRows += int64(skipped)
	m.mu.Unlock()
}

// RecordJob records a finished job run
func (m *Metrics) RecordJob(status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.JobsTotal.WithLabelValues(status).Inc()
	m.JobDuration.Observe(duration.Seconds())
}

// PageStarted marks a page as in flight
func (m *Metrics) PageStarted() {
	if m != nil {
		m.PagesInFlight.Inc()
	}
}

// PageDone marks a page as finished
func (m *Metrics) PageDone() {
	if m != nil {
		m.PagesInFlight.Dec()
	}
}

// SetBreakerState exports a breaker state as a gauge value
func (m *Metrics) SetBreakerState(name string, state int) {
	if m == nil {
		return
	}
	m.BreakerState.WithLabelValues(name).Set(float64(state))
}

// Snapshot returns the current values for the JSON API
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	s := m.snapshot
	s.UptimeSeconds = time.Since(m.startTime).Seconds()
	return s
}

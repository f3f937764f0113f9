package http

import (
	"time"

	"github.com/GriffinCanCode/statscrape/internal/domain/table"
	"github.com/GriffinCanCode/statscrape/internal/infrastructure/monitoring"
)

// HandlerMetrics wraps handlers with metrics tracking
type HandlerMetrics struct {
	metrics *monitoring.Metrics
}

// NewHandlerMetrics creates a metrics wrapper. A nil *monitoring.Metrics
// records nothing.
func NewHandlerMetrics(metrics *monitoring.Metrics) *HandlerMetrics {
	return &HandlerMetrics{metrics: metrics}
}

// TrackReconstruction starts timing one API reconstruction. The returned
// func records the outcome.
func (hm *HandlerMetrics) TrackReconstruction(schema string) func(t *table.Table, err error) {
	start := time.Now()
	return func(t *table.Table, err error) {
		duration := time.Since(start)
		if err != nil || t == nil {
			hm.metrics.RecordReconstruction(schema, 0, 0, 0, err, duration)
			return
		}
		hm.metrics.RecordReconstruction(schema, t.Len(), len(t.Skipped), len(t.Warnings), nil, duration)
	}
}

// Snapshot exposes the current counters for the JSON metrics endpoint
func (hm *HandlerMetrics) Snapshot() monitoring.MetricsSnapshot {
	return hm.metrics.Snapshot()
}

package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/statscrape/internal/api/middleware"
	"github.com/GriffinCanCode/statscrape/internal/domain/table"
	"github.com/GriffinCanCode/statscrape/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/statscrape/internal/pipeline"
	"github.com/GriffinCanCode/statscrape/internal/providers/http/client"
)

// Version is reported by the root endpoint
const Version = "1.0.0"

// DefaultJobTimeout bounds POST /jobs when no timeout is configured
const DefaultJobTimeout = 5 * time.Minute

// Handlers contains all HTTP handlers
type Handlers struct {
	runner     *pipeline.Runner
	fetcher    *client.Client
	metrics    *HandlerMetrics
	logger     *zap.Logger
	policy     table.RowPolicy
	jobTimeout time.Duration
}

// Option configures Handlers
type Option func(*Handlers)

// WithLogger sets the request-scoped logger parent
func WithLogger(l *zap.Logger) Option {
	return func(h *Handlers) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithMetrics records reconstructions made through the API
func WithMetrics(m *monitoring.Metrics) Option {
	return func(h *Handlers) {
		h.metrics = NewHandlerMetrics(m)
	}
}

// WithFetcher exposes the page fetcher's breaker in health output
func WithFetcher(c *client.Client) Option {
	return func(h *Handlers) {
		h.fetcher = c
	}
}

// WithRowPolicy sets the policy used when a request names none
func WithRowPolicy(p table.RowPolicy) Option {
	return func(h *Handlers) {
		if p != "" {
			h.policy = p
		}
	}
}

// WithJobTimeout bounds each POST /jobs run
func WithJobTimeout(d time.Duration) Option {
	return func(h *Handlers) {
		if d > 0 {
			h.jobTimeout = d
		}
	}
}

// NewHandlers creates a new handler set around runner
func NewHandlers(runner *pipeline.Runner, opts ...Option) *Handlers {
	h := &Handlers{
		runner:     runner,
		metrics:    NewHandlerMetrics(nil),
		logger:     zap.NewNop(),
		policy:     table.AbortPage,
		jobTimeout: DefaultJobTimeout,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts every route on r
func (h *Handlers) Register(r gin.IRoutes) {
	r.GET("/", h.Root)
	r.GET("/health", h.Health)

	r.GET("/schemas", h.ListSchemas)
	r.GET("/schemas/:name", h.GetSchema)

	r.POST("/reconstruct", h.Reconstruct)
	r.POST("/jobs", h.RunJob)

	r.GET("/metrics/json", NewMetricsAggregator(h.metrics, h.fetcher).GetAggregatedMetrics)
}

// Root handles the liveness check
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "statscrape",
		"version": Version,
	})
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	resp := gin.H{
		"status":     "healthy",
		"schemas":    table.PresetNames(),
		"row_policy": h.policy,
	}
	if h.fetcher != nil {
		counts := h.fetcher.BreakerCounts()
		resp["fetch"] = gin.H{
			"breaker":  h.fetcher.BreakerState().String(),
			"requests": counts.Requests,
			"failures": counts.TotalFailures,
		}
	}
	c.JSON(http.StatusOK, resp)
}

// ListSchemas lists the preset schema names
func (h *Handlers) ListSchemas(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"schemas": table.PresetNames(),
	})
}

// GetSchema returns a preset schema with its post-split column list
func (h *Handlers) GetSchema(c *gin.Context) {
	schema, err := table.Preset(c.Param("name"))
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error(), Kind: "unknown_preset"})
		return
	}

	c.JSON(http.StatusOK, SchemaResponse{
		Schema:       schema,
		FlatCount:    schema.FlatCount(),
		FinalColumns: schema.FinalNames(),
	})
}

func (h *Handlers) requestLogger(c *gin.Context) *zap.Logger {
	return h.logger.With(zap.String("request_id", middleware.GetRequestID(c)))
}

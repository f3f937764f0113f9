package app

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/statscrape/internal/domain/table"
	"github.com/GriffinCanCode/statscrape/internal/infrastructure/config"
	"github.com/GriffinCanCode/statscrape/internal/infrastructure/logging"
	"github.com/GriffinCanCode/statscrape/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/statscrape/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/statscrape/internal/pipeline"
	"github.com/GriffinCanCode/statscrape/internal/providers/http/client"
	"github.com/GriffinCanCode/statscrape/internal/providers/scraper"
	"github.com/GriffinCanCode/statscrape/internal/providers/source"
)

// ServiceName tags spans and the tracer
const ServiceName = "statscrape"

// App holds the shared components of the CLI and the API server
type App struct {
	Config  *config.Config
	Logger  *logging.Logger
	Metrics *monitoring.Metrics
	Tracer  *tracing.Tracer
	Fetcher *client.Client
	// Local is nil when no pages directory is configured
	Local  *source.Dir
	Source *source.Router
	Policy table.RowPolicy
	Runner *pipeline.Runner
}

type options struct {
	registry *prometheus.Registry
	logger   *logging.Logger
}

// Option configures New
type Option func(*options)

// WithRegistry registers metrics with reg instead of the default registry
func WithRegistry(reg *prometheus.Registry) Option {
	return func(o *options) {
		o.registry = reg
	}
}

// WithLogger uses l instead of building one from the config
func WithLogger(l *logging.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// New wires the fetcher, sources and runner from cfg
func New(cfg *config.Config, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	policy, err := table.ParseRowPolicy(cfg.Pipeline.RowPolicy)
	if err != nil {
		return nil, fmt.Errorf("pipeline config: %w", err)
	}

	logger := o.logger
	if logger == nil {
		if logger, err = logging.New(logging.FromConfig(cfg.Logging)); err != nil {
			return nil, err
		}
	}

	metrics := monitoring.NewMetrics(o.registry)
	tracer := tracing.New(ServiceName, logger.Component("tracing"))

	fetcher := client.NewClient(cfg.Fetch,
		client.WithLogger(logger.Component("fetch")),
		client.WithMetrics(metrics),
	)

	router := &source.Router{Web: source.NewHTTP(fetcher)}
	var local *source.Dir
	if cfg.Pipeline.PagesDir != "" {
		if local, err = source.NewDir(cfg.Pipeline.PagesDir, cfg.Fetch.MaxBytes); err != nil {
			tracer.Close()
			return nil, fmt.Errorf("pages dir: %w", err)
		}
		router.Local = local
	}

	var parserOpts []scraper.ParserOption
	if cfg.Pipeline.Sanitize {
		parserOpts = append(parserOpts, scraper.WithSanitizer())
	}
	if cfg.Fetch.MaxBytes > 0 {
		parserOpts = append(parserOpts, scraper.WithMaxSize(int(cfg.Fetch.MaxBytes)))
	}

	runner := pipeline.NewRunner(router,
		pipeline.WithLogger(logger.Component("pipeline")),
		pipeline.WithMetrics(metrics),
		pipeline.WithTracer(tracer),
		pipeline.WithConcurrency(cfg.Pipeline.Concurrency),
		pipeline.WithParser(scraper.NewParser(parserOpts...)),
		pipeline.WithRowPolicy(policy),
	)

	logger.Debug("Components initialized",
		zap.Int("concurrency", cfg.Pipeline.Concurrency),
		zap.String("row_policy", string(policy)),
		zap.Bool("sanitize", cfg.Pipeline.Sanitize),
		zap.String("pages_dir", cfg.Pipeline.PagesDir),
		zap.Float64("fetch_rps", cfg.Fetch.RPS),
	)

	return &App{
		Config:  cfg,
		Logger:  logger,
		Metrics: metrics,
		Tracer:  tracer,
		Fetcher: fetcher,
		Local:   local,
		Source:  router,
		Policy:  policy,
		Runner:  runner,
	}, nil
}

// Close flushes pending spans and the logger
func (a *App) Close() {
	a.Tracer.Close()
	a.Logger.Close()
}

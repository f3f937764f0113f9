package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apihttp "github.com/GriffinCanCode/statscrape/internal/api/http"
	"github.com/GriffinCanCode/statscrape/internal/api/middleware"
	"github.com/GriffinCanCode/statscrape/internal/app"
	"github.com/GriffinCanCode/statscrape/internal/infrastructure/config"
	"github.com/GriffinCanCode/statscrape/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/statscrape/internal/infrastructure/tracing"
)

// Server wraps the HTTP server and dependencies
type Server struct {
	router *gin.Engine
	http   *http.Server
	app    *app.App
	logger *zap.Logger
	config *config.Config
}

// NewServer builds the router around the components of a
func NewServer(a *app.App) *Server {
	cfg := a.Config
	logger := a.Logger.Component("server")

	logger.Info("Initializing statscrape server",
		zap.String("port", cfg.Server.Port),
		zap.Int("concurrency", cfg.Pipeline.Concurrency),
		zap.String("row_policy", string(a.Policy)),
	)

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(tracing.HTTPMiddleware(a.Tracer))
	router.Use(monitoring.Middleware(a.Metrics))
	router.Use(middleware.Logger(a.Logger.Component("http")))
	router.Use(middleware.CORS(middleware.CORSFromConfig(cfg.Server.CORSOrigins)))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitFromConfig(cfg.RateLimit)))
	}
	router.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))

	handlers := apihttp.NewHandlers(a.Runner,
		apihttp.WithLogger(a.Logger.Component("api")),
		apihttp.WithMetrics(a.Metrics),
		apihttp.WithFetcher(a.Fetcher),
		apihttp.WithRowPolicy(a.Policy),
		apihttp.WithJobTimeout(cfg.Server.JobTimeout),
	)
	handlers.Register(router)
	router.GET("/metrics", gin.WrapH(a.Metrics.Handler()))

	logger.Info("Server initialized successfully")

	return &Server{
		router: router,
		http: &http.Server{
			Addr:              net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		app:    a,
		logger: logger,
		config: cfg,
	}
}

// Handler returns the router, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is done, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.logger.Info("Starting HTTP server", zap.String("addr", ln.Addr().String()))

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.http.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server...")
	timeout := s.config.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.http.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("Graceful shutdown failed", zap.Error(err))
		return err
	}
	<-errCh
	s.logger.Info("Server stopped")
	return nil
}

// Close releases the app components. Call after Run returns.
func (s *Server) Close() {
	s.app.Close()
}

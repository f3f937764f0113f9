package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/GriffinCanCode/statscrape/internal/infrastructure/config"
	"github.com/GriffinCanCode/statscrape/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/statscrape/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/statscrape/internal/infrastructure/tracing"
	"github.com/gabriel-vasile/mimetype"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var (
	ErrNotHTML     = errors.New("response is not html")
	ErrTooLarge    = errors.New("response exceeds size limit")
	ErrUnavailable = errors.New("external service unavailable: circuit breaker open")
	ErrBadStatus   = errors.New("unexpected status")
)

// StatusError reports a non-2xx response
type StatusError struct {
	URL    string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%v %d from %s", ErrBadStatus, e.Status, e.URL)
}

func (e *StatusError) Unwrap() error {
	return ErrBadStatus
}

// Page is a fetched HTML document
type Page struct {
	URL         string
	Body        []byte
	ContentType string
	Status      int
	Elapsed     time.Duration
}

// Client wraps resty with rate limiting, per-host circuit breakers and
// retries
type Client struct {
	Resty    *resty.Client
	Limiter  *rate.Limiter
	Breakers *resilience.Group

	guard    *hostGuard
	maxBytes int64
	logger   *zap.Logger
	metrics  *monitoring.Metrics
	mu       sync.RWMutex
}

// Option configures a Client
type Option func(*Client)

// WithLogger routes retry diagnostics and breaker transitions through zap
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger == nil {
			return
		}
		c.logger = logger
		if rt, ok := c.Resty.GetClient().Transport.(*retryablehttp.RoundTripper); ok {
			rt.Client.Logger = retryLogger{logger.Sugar()}
		}
	}
}

// WithMetrics exports the breaker state
func WithMetrics(m *monitoring.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient creates an HTTP client tuned for polite page fetching
func NewClient(cfg config.FetchConfig, opts ...Option) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = cfg.Retries
	retryClient.RetryWaitMin = cfg.MinWait
	retryClient.RetryWaitMax = cfg.MaxWait
	retryClient.Logger = nil
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	retryClient.CheckRetry = checkRetry

	guard := newHostGuard(cfg.AllowedHosts, cfg.BlockPrivate)
	// the inner client follows redirects, so the allow list is enforced there
	retryClient.HTTPClient.CheckRedirect = guard.checkRedirect
	if t, ok := retryClient.HTTPClient.Transport.(*http.Transport); ok {
		t.DialContext = guard.dialer().DialContext
	}

	// retryablehttp owns retries; resty adds headers, context and timeouts
	restyClient := resty.NewWithClient(retryClient.StandardClient())
	restyClient.
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", cfg.UserAgent).
		SetHeader("Accept", "text/html,application/xhtml+xml")

	c := &Client{
		Resty:    restyClient,
		Limiter:  newLimiter(cfg.RPS),
		guard:    guard,
		maxBytes: cfg.MaxBytes,
		logger:   zap.NewNop(),
	}
	c.Breakers = resilience.NewGroup("page-fetch", resilience.Settings{
		MaxRequests: 5,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts resilience.Counts) bool {
			// Stats sites vary in reliability; trip on a sustained outage only
			return counts.ConsecutiveFailures >= 10 ||
				(counts.Requests >= 20 && float64(counts.TotalFailures)/float64(counts.Requests) > 0.7)
		},
		OnStateChange: c.onBreakerChange,
	})
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// checkRetry does not retry connections refused by the address guard
func checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if errors.Is(err, ErrPrivateAddress) || errors.Is(err, ErrHostNotAllowed) {
		return false, err
	}
	return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
}

func newLimiter(rps float64) *rate.Limiter {
	if rps <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

// SetRateLimit configures rate limiting (requests per second)
func (c *Client) SetRateLimit(rps float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Limiter = newLimiter(rps)
}

// SetHeader adds default header
func (c *Client) SetHeader(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Resty.SetHeader(key, value)
}

// breakerFor returns the breaker of rawURL's host
func (c *Client) breakerFor(rawURL string) *resilience.Breaker {
	var host string
	if u, err := url.Parse(rawURL); err == nil {
		host = u.Host
	}
	return c.Breakers.Get(host)
}

// Request creates a request for rawURL, waiting on the rate limiter. It
// fails fast when the host is not allowed or its breaker is open.
func (c *Client) Request(ctx context.Context, rawURL string) (*resty.Request, error) {
	if err := c.guard.allowURL(rawURL); err != nil {
		return nil, err
	}
	if c.breakerFor(rawURL).State() == resilience.StateOpen {
		return nil, resilience.ErrCircuitOpen
	}

	c.mu.RLock()
	limiter := c.Limiter
	c.mu.RUnlock()
	if err := limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit error: %w", err)
	}

	c.mu.RLock()
	req := c.Resty.R().SetContext(ctx)
	c.mu.RUnlock()
	if traceID := tracing.GetTraceID(ctx); traceID != "" {
		req.SetHeader(tracing.TraceHeader, string(traceID))
	}
	return req, nil
}

// ExecuteWithBreaker runs an HTTP operation through the breaker of rawURL's host
func (c *Client) ExecuteWithBreaker(rawURL string, fn func() (*resty.Response, error)) (*resty.Response, error) {
	resp, err := resilience.Call(c.breakerFor(rawURL), fn)
	if errors.Is(err, resilience.ErrCircuitOpen) || errors.Is(err, resilience.ErrTooManyRequests) {
		return nil, ErrUnavailable
	}
	return resp, err
}

// Fetch downloads an HTML page. Server errors count against the breaker;
// other non-2xx statuses and non-HTML bodies are returned as errors.
func (c *Client) Fetch(ctx context.Context, rawURL string) (*Page, error) {
	req, err := c.Request(ctx, rawURL)
	if err != nil {
		if errors.Is(err, resilience.ErrCircuitOpen) {
			return nil, ErrUnavailable
		}
		return nil, err
	}

	// the body is streamed so that oversized pages are cut off at maxBytes
	req.SetDoNotParseResponse(true)
	resp, err := c.ExecuteWithBreaker(rawURL, func() (*resty.Response, error) {
		resp, err := req.Get(rawURL)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode() >= http.StatusInternalServerError {
			closeBody(resp)
			return nil, &StatusError{URL: rawURL, Status: resp.StatusCode()}
		}
		return resp, nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer closeBody(resp)

	if !resp.IsSuccess() {
		return nil, &StatusError{URL: rawURL, Status: resp.StatusCode()}
	}

	if c.maxBytes > 0 && resp.RawResponse.ContentLength > c.maxBytes {
		return nil, fmt.Errorf("%w: %s declares %d bytes", ErrTooLarge, rawURL, resp.RawResponse.ContentLength)
	}
	body, err := c.readBody(resp)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rawURL, err)
	}
	if c.maxBytes > 0 && int64(len(body)) > c.maxBytes {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrTooLarge, rawURL, c.maxBytes)
	}
	if !IsHTML(body) {
		return nil, fmt.Errorf("%w: %s detected as %s", ErrNotHTML, rawURL, mimetype.Detect(body))
	}

	return &Page{
		URL:         rawURL,
		Body:        body,
		ContentType: resp.Header().Get("Content-Type"),
		Status:      resp.StatusCode(),
		Elapsed:     resp.Time(),
	}, nil
}

// readBody reads at most maxBytes+1 bytes, enough to tell an oversized
// page apart without buffering all of it
func (c *Client) readBody(resp *resty.Response) ([]byte, error) {
	var r io.Reader = resp.RawBody()
	if c.maxBytes > 0 {
		r = io.LimitReader(r, c.maxBytes+1)
	}
	return io.ReadAll(r)
}

func closeBody(resp *resty.Response) {
	if body := resp.RawBody(); body != nil {
		_ = body.Close()
	}
}

// IsHTML sniffs the body rather than trusting the Content-Type header
func IsHTML(body []byte) bool {
	for mt := mimetype.Detect(body); mt != nil; mt = mt.Parent() {
		if mt.Is("text/html") || mt.Is("application/xhtml+xml") {
			return true
		}
	}
	return false
}

func (c *Client) onBreakerChange(name string, from, to resilience.State) {
	c.logger.Warn("Circuit breaker state changed",
		zap.String("breaker", name),
		zap.Stringer("from", from),
		zap.Stringer("to", to),
	)
	c.metrics.SetBreakerState(name, int(to))
}

// BreakerState returns the worst breaker state across hosts
func (c *Client) BreakerState() resilience.State {
	return c.Breakers.State()
}

// BreakerCounts returns breaker statistics summed across hosts
func (c *Client) BreakerCounts() resilience.Counts {
	return c.Breakers.Counts()
}

// retryLogger adapts zap to retryablehttp.LeveledLogger
type retryLogger struct {
	s *zap.SugaredLogger
}

func (l retryLogger) Error(msg string, kv ...interface{}) { l.s.Errorw(msg, kv...) }
func (l retryLogger) Info(msg string, kv ...interface{})  { l.s.Debugw(msg, kv...) }
func (l retryLogger) Debug(msg string, kv ...interface{}) { l.s.Debugw(msg, kv...) }
func (l retryLogger) Warn(msg string, kv ...interface{})  { l.s.Warnw(msg, kv...) }

package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
	Fetch     FetchConfig
	Pipeline  PipelineConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8000"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
	// MaxBodyBytes caps POST /reconstruct and POST /jobs payloads
	MaxBodyBytes int64 `envconfig:"MAX_BODY_BYTES" default:"8388608"`
	// JobTimeout bounds a POST /jobs run
	JobTimeout time.Duration `envconfig:"JOB_TIMEOUT" default:"5m"`
	// ShutdownTimeout bounds graceful shutdown
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"15s"`
	// CORSOrigins is a comma-separated allow list; "*" allows any origin
	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"*"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds API rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// FetchConfig holds outbound page fetching configuration.
type FetchConfig struct {
	Timeout   time.Duration `envconfig:"FETCH_TIMEOUT" default:"30s"`
	Retries   int           `envconfig:"FETCH_RETRIES" default:"3"`
	MinWait   time.Duration `envconfig:"FETCH_RETRY_MIN_WAIT" default:"1s"`
	MaxWait   time.Duration `envconfig:"FETCH_RETRY_MAX_WAIT" default:"30s"`
	RPS       float64       `envconfig:"FETCH_RPS" default:"2"`
	UserAgent string        `envconfig:"FETCH_USER_AGENT" default:"statscrape/1.0"`
	MaxBytes  int64         `envconfig:"FETCH_MAX_BYTES" default:"10485760"`
	// AllowedHosts lists host patterns such as "*.example.edu"; empty allows any host
	AllowedHosts []string `envconfig:"FETCH_ALLOWED_HOSTS"`
	// BlockPrivate refuses connections to loopback, private and link-local addresses
	BlockPrivate bool `envconfig:"FETCH_BLOCK_PRIVATE" default:"true"`
}

// PipelineConfig holds job runner configuration.
type PipelineConfig struct {
	Concurrency int    `envconfig:"PIPELINE_CONCURRENCY" default:"4"`
	RowPolicy   string `envconfig:"PIPELINE_ROW_POLICY" default:"abort"`
	Sanitize    bool   `envconfig:"PIPELINE_SANITIZE" default:"false"`
	// PagesDir roots file pages named by jobs; empty disables file pages
	PagesDir string `envconfig:"PIPELINE_PAGES_DIR"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8000",
			Host:            "0.0.0.0",
			MaxBodyBytes:    8 << 20,
			JobTimeout:      5 * time.Minute,
			ShutdownTimeout: 15 * time.Second,
			CORSOrigins:     []string{"*"},
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
		Fetch: FetchConfig{
			Timeout:      30 * time.Second,
			Retries:      3,
			MinWait:      time.Second,
			MaxWait:      30 * time.Second,
			RPS:          2,
			UserAgent:    "statscrape/1.0",
			MaxBytes:     10 << 20,
			BlockPrivate: true,
		},
		Pipeline: PipelineConfig{
			Concurrency: 4,
			RowPolicy:   "abort",
		},
	}
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Server config
	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, int64(8<<20), cfg.Server.MaxBodyBytes)
	assert.Equal(t, 5*time.Minute, cfg.Server.JobTimeout)
	assert.Equal(t, 15*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)

	// Logging config
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)

	// Rate limit config
	assert.Equal(t, 100, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 200, cfg.RateLimit.Burst)
	assert.True(t, cfg.RateLimit.Enabled)

	// Fetch config
	assert.Equal(t, 30*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, 3, cfg.Fetch.Retries)
	assert.Equal(t, 2.0, cfg.Fetch.RPS)
	assert.Equal(t, "statscrape/1.0", cfg.Fetch.UserAgent)
	assert.True(t, cfg.Fetch.BlockPrivate)
	assert.Empty(t, cfg.Fetch.AllowedHosts)

	// Pipeline config
	assert.Equal(t, 4, cfg.Pipeline.Concurrency)
	assert.Equal(t, "abort", cfg.Pipeline.RowPolicy)
	assert.False(t, cfg.Pipeline.Sanitize)
	assert.Empty(t, cfg.Pipeline.PagesDir)
}

func TestLoadMatchesDefault(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg, "env defaults and Default() must agree")
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	envVars := map[string]string{
		"PORT":                 "9000",
		"HOST":                 "127.0.0.1",
		"JOB_TIMEOUT":          "30s",
		"LOG_LEVEL":            "debug",
		"LOG_DEV":              "true",
		"RATE_LIMIT_RPS":       "500",
		"RATE_LIMIT_BURST":     "1000",
		"RATE_LIMIT_ENABLED":   "false",
		"FETCH_TIMEOUT":        "5s",
		"FETCH_RETRIES":        "1",
		"FETCH_RPS":            "0.5",
		"FETCH_USER_AGENT":     "test-agent",
		"FETCH_ALLOWED_HOSTS":  "*.example.edu,stats.example.com",
		"FETCH_BLOCK_PRIVATE":  "false",
		"PIPELINE_CONCURRENCY": "8",
		"PIPELINE_ROW_POLICY":  "skip",
		"PIPELINE_SANITIZE":    "true",
		"PIPELINE_PAGES_DIR":   "/srv/pages",
		"CORS_ORIGINS":         "https://stats.example.edu,http://localhost:3000",
	}
	for key, value := range envVars {
		t.Setenv(key, value)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 30*time.Second, cfg.Server.JobTimeout)
	assert.Equal(t, []string{"https://stats.example.edu", "http://localhost:3000"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)
	assert.Equal(t, 500, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 1000, cfg.RateLimit.Burst)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 5*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, 1, cfg.Fetch.Retries)
	assert.Equal(t, 0.5, cfg.Fetch.RPS)
	assert.Equal(t, "test-agent", cfg.Fetch.UserAgent)
	assert.Equal(t, []string{"*.example.edu", "stats.example.com"}, cfg.Fetch.AllowedHosts)
	assert.False(t, cfg.Fetch.BlockPrivate)
	assert.Equal(t, 8, cfg.Pipeline.Concurrency)
	assert.Equal(t, "skip", cfg.Pipeline.RowPolicy)
	assert.True(t, cfg.Pipeline.Sanitize)
	assert.Equal(t, "/srv/pages", cfg.Pipeline.PagesDir)
}

func TestLoadWithPartialEnvironmentVariables(t *testing.T) {
	t.Setenv("PORT", "3000")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Verify overridden values
	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Logging.Level)

	// Verify default values still apply
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 4, cfg.Pipeline.Concurrency)
}

func TestLoadInvalidValueFallsBack(t *testing.T) {
	t.Setenv("FETCH_TIMEOUT", "soon")

	_, err := Load()
	assert.Error(t, err)

	cfg := LoadOrDefault()
	assert.Equal(t, 30*time.Second, cfg.Fetch.Timeout)
}

func TestPipelineConfig(t *testing.T) {
	tests := []struct {
		name            string
		concurrency     string
		policy          string
		wantConcurrency int
		wantPolicy      string
	}{
		{
			name:            "default values",
			wantConcurrency: 4,
			wantPolicy:      "abort",
		},
		{
			name:            "serial",
			concurrency:     "1",
			wantConcurrency: 1,
			wantPolicy:      "abort",
		},
		{
			name:            "skip rows",
			policy:          "skip",
			wantConcurrency: 4,
			wantPolicy:      "skip",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.concurrency != "" {
				t.Setenv("PIPELINE_CONCURRENCY", tt.concurrency)
			}
			if tt.policy != "" {
				t.Setenv("PIPELINE_ROW_POLICY", tt.policy)
			}

			cfg := LoadOrDefault()

			assert.Equal(t, tt.wantConcurrency, cfg.Pipeline.Concurrency)
			assert.Equal(t, tt.wantPolicy, cfg.Pipeline.RowPolicy)
		})
	}
}

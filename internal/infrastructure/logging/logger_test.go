package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/GriffinCanCode/statscrape/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestFromConfig(t *testing.T) {
	tests := []struct {
		name string
		in   config.LogConfig
		want Config
	}{
		{
			name: "defaults",
			in:   config.LogConfig{},
			want: Config{Level: "info", OutputPaths: []string{"stderr"}},
		},
		{
			name: "development debug",
			in:   config.LogConfig{Level: "debug", Development: true},
			want: Config{Level: "debug", Development: true, OutputPaths: []string{"stderr"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FromConfig(tt.in))
		})
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(Config{Level: "verbose"})
	assert.Error(t, err)
}

func TestNewLevels(t *testing.T) {
	tests := []struct {
		level string
		want  zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			log, err := New(Config{Level: tt.level})
			require.NoError(t, err)
			assert.True(t, log.Core().Enabled(tt.want))
			if tt.want > zapcore.DebugLevel {
				assert.False(t, log.Core().Enabled(tt.want-1))
			}
		})
	}
}

func TestJSONOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	log, err := New(Config{Level: "info", OutputPaths: []string{path}})
	require.NoError(t, err)

	log.Component("pipeline").Info("Run finished", zap.String("run_id", "run_01"))
	log.Close()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	line := strings.TrimSpace(string(data))
	assert.Contains(t, line, `"message":"Run finished"`)
	assert.Contains(t, line, `"logger":"pipeline"`)
	assert.Contains(t, line, `"run_id":"run_01"`)
}

func TestNopLoggers(t *testing.T) {
	assert.NotPanics(t, func() {
		NewNop().Info("discarded")
		NewDefault().Debug("below level")
	})
}

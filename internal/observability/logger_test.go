package observability

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"panic", zerolog.PanicLevel},
		{"INFO", zerolog.InfoLevel},
		{"unknown", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLevel(tt.input))
		})
	}
}

func TestNewLogger(t *testing.T) {
	logger := NewLogger(LoggingConfig{
		Level:  "debug",
		Format: "json",
		Output: "stdout",
	})
	assert.Equal(t, zerolog.DebugLevel, logger.GetLevel())
}

func TestDefaultLoggingConfig(t *testing.T) {
	cfg := DefaultLoggingConfig()
	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, "stdout", cfg.Output)
}

func TestTemporalLoggerKeyvals(t *testing.T) {
	m := keyvalToMap([]interface{}{"stage", "extraction", "attempt", 2})
	assert.Equal(t, "extraction", m["stage"])
	assert.Equal(t, 2, m["attempt"])

	// Odd trailing value is dropped.
	m = keyvalToMap([]interface{}{"stage"})
	assert.Empty(t, m)
}

package internal

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, LogLevelWarn)

	logger.Info("[Pipeline] hidden %d", 1)
	logger.Debug("hidden too")
	assert.Empty(t, buf.String())

	logger.Warn("[Pipeline] falling back to %s", "mean")
	assert.Contains(t, buf.String(), "falling back to mean")
	assert.Contains(t, buf.String(), "level=WARN")
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, LogLevelError, ParseLogLevel("error"))
	assert.Equal(t, LogLevelTrace, ParseLogLevel("TRACE"))
	assert.Equal(t, LogLevelInfo, ParseLogLevel(""))
	assert.Equal(t, LogLevelInfo, ParseLogLevel("verbose"))
}

func TestNilLoggerIsSafe(t *testing.T) {
	var logger *Logger
	assert.NotPanics(t, func() { logger.Error("nothing %s", "here") })
}

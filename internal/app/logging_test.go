package app

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedLogger(buf *bytes.Buffer, level LogLevel) *Logger {
	l := NewLogger(LoggerConfig{Level: level, Output: buf, Prefix: "test"})
	l.sink.now = func() time.Time {
		return time.Date(2026, 1, 2, 3, 4, 5, 6_000_000, time.UTC)
	}
	return l
}

func TestLogLevelString(t *testing.T) {
	assert.Equal(t, "DEBUG", LogLevelDebug.String())
	assert.Equal(t, "INFO", LogLevelInfo.String())
	assert.Equal(t, "WARN", LogLevelWarn.String())
	assert.Equal(t, "ERROR", LogLevelError.String())
	assert.Equal(t, "UNKNOWN", LogLevel(99).String())
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected LogLevel
	}{
		{"debug", LogLevelDebug},
		{"DEBUG", LogLevelDebug},
		{"info", LogLevelInfo},
		{"warn", LogLevelWarn},
		{"Warning", LogLevelWarn},
		{"error", LogLevelError},
		{"unknown", LogLevelInfo},
		{"", LogLevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, ParseLogLevel(tt.input), tt.input)
	}
}

func TestLoggerFormat(t *testing.T) {
	var buf bytes.Buffer
	l := fixedLogger(&buf, LogLevelDebug)

	l.Info("attached map %s", "main")
	assert.Equal(t, "2026-01-02T03:04:05.006 [INFO] test: attached map main\n", buf.String())
}

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := fixedLogger(&buf, LogLevelWarn)

	l.Debug("hidden")
	l.Info("hidden")
	l.Warn("shown")
	l.Error("shown too")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "[WARN]")
	assert.Contains(t, lines[1], "[ERROR]")
}

func TestLoggerFieldsSortedAndIsolated(t *testing.T) {
	var buf bytes.Buffer
	base := fixedLogger(&buf, LogLevelDebug)
	child := base.WithComponent("bridge").WithField("map", "main")

	child.Info("hello")
	assert.True(t, strings.HasSuffix(buf.String(), "hello {component=bridge, map=main}\n"), buf.String())

	buf.Reset()
	base.Info("plain")
	assert.NotContains(t, buf.String(), "{")
}

func TestDerivedLoggersShareLevel(t *testing.T) {
	var buf bytes.Buffer
	base := fixedLogger(&buf, LogLevelInfo)
	child := base.WithComponent("store")

	child.Debug("hidden")
	assert.Empty(t, buf.String())

	base.SetLevel(LogLevelDebug)
	assert.Equal(t, LogLevelDebug, child.Level())
	child.Debug("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestLoggerNoArgsKeepsPercent(t *testing.T) {
	var buf bytes.Buffer
	l := fixedLogger(&buf, LogLevelDebug)
	l.Info("100%")
	assert.Contains(t, buf.String(), "test: 100%\n")
}

func TestNullLogger(t *testing.T) {
	NullLogger.Error("nothing %d", 1)
	NullLogger.WithComponent("x").Info("nothing")
}

func TestSetOutput(t *testing.T) {
	var first, second bytes.Buffer
	l := fixedLogger(&first, LogLevelInfo)
	l.SetOutput(&second)
	l.Info("moved")
	assert.Empty(t, first.String())
	assert.Contains(t, second.String(), "moved")
}

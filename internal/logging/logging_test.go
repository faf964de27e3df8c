package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewLoggerWithWriter_Formats(t *testing.T) {
	var text bytes.Buffer
	NewLoggerWithWriter(slog.LevelInfo, "text", &text).Info("dispatch", "cpu", 3)
	assert.Contains(t, text.String(), "msg=dispatch")
	assert.Contains(t, text.String(), "cpu=3")

	var js bytes.Buffer
	NewLoggerWithWriter(slog.LevelInfo, "JSON", &js).Info("dispatch", "cpu", 3)
	assert.Contains(t, js.String(), `"msg":"dispatch"`)
	assert.Contains(t, js.String(), `"cpu":3`)
}

func TestNewLoggerWithWriter_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(slog.LevelWarn, "text", &buf)

	logger.Info("should not appear")
	logger.Warn("should appear")

	assert.NotContains(t, buf.String(), "should not appear")
	assert.Contains(t, buf.String(), "should appear")
}

func TestComponent(t *testing.T) {
	var buf bytes.Buffer
	Component(NewLoggerWithWriter(slog.LevelInfo, "text", &buf), "sim").Info("tick")
	assert.Contains(t, buf.String(), "component=sim")

	assert.NotPanics(t, func() { Component(nil, "store").Error("dropped") })
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

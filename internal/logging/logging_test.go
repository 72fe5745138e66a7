package logging

import (
	"bytes"
	"log"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name     string
		debug    string
		level    string
		expected LogLevel
	}{
		{"Debug via LOG_LEVEL", "", "debug", LevelDebug},
		{"Info via LOG_LEVEL", "", "info", LevelInfo},
		{"Warn via LOG_LEVEL", "", "warn", LevelWarn},
		{"Error via LOG_LEVEL", "", "error", LevelError},
		{"Case insensitive", "", "DEBUG", LevelDebug},
		{"Warning alias", "", "warning", LevelWarn},
		{"Unknown falls back to info", "", "verbose", LevelInfo},
		{"Empty falls back to info", "", "", LevelInfo},
		{"DEBUG=true wins", "true", "error", LevelDebug},
		{"DEBUG=1 wins", "1", "warn", LevelDebug},
		{"DEBUG=false ignored", "false", "warn", LevelWarn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseLevel(tt.debug, tt.level); got != tt.expected {
				t.Errorf("ParseLevel(%q, %q) = %v, want %v", tt.debug, tt.level, got, tt.expected)
			}
		})
	}
}

func TestLogLevelConstants(t *testing.T) {
	levels := []LogLevel{LevelDebug, LevelInfo, LevelWarn, LevelError}
	for i := 0; i < len(levels)-1; i++ {
		if levels[i] >= levels[i+1] {
			t.Errorf("Log levels should be in ascending order: %v >= %v", levels[i], levels[i+1])
		}
	}
}

func TestRequestLoggerPrefix(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Writer()
	log.SetOutput(&buf)
	defer log.SetOutput(prev)

	rl := ForRequest("abc-123")
	if rl.ID() != "abc-123" {
		t.Errorf("ID() = %q, want abc-123", rl.ID())
	}

	// Error is emitted at every level
	rl.Error("conversion %s", "failed")

	out := buf.String()
	if !strings.Contains(out, "[ERROR] [abc-123] conversion failed") {
		t.Errorf("expected request-tagged error line, got %q", out)
	}
}

func TestRequestLoggerWithoutID(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Writer()
	log.SetOutput(&buf)
	defer log.SetOutput(prev)

	ForRequest("").Error("plain")

	out := buf.String()
	if !strings.Contains(out, "[ERROR] plain") {
		t.Errorf("expected untagged error line, got %q", out)
	}
	if strings.Contains(out, "[]") {
		t.Errorf("empty request ID should not produce brackets, got %q", out)
	}
}

// TestLoggingFunctions tests that logging functions don't panic
func TestLoggingFunctions(t *testing.T) {
	tests := []struct {
		name string
		fn   func()
	}{
		{"Debug", func() { Debug("test message") }},
		{"Info", func() { Info("test %s %d", "message", 123) }},
		{"Warn", func() { Warn("test message") }},
		{"Error", func() { Error("test message") }},
		{"Request Debug", func() { ForRequest("x").Debug("test") }},
		{"Request Info", func() { ForRequest("x").Info("test") }},
		{"Request Warn", func() { ForRequest("x").Warn("test") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("Function panicked: %v", r)
				}
			}()
			tt.fn()
		})
	}
}

func TestLogLevelString(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{LevelDebug, "debug"},
		{LevelInfo, "info"},
		{LevelWarn, "warn"},
		{LevelError, "error"},
		{LogLevel(99), "unknown(99)"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			got := tt.level.String()
			if got != tt.expected {
				t.Errorf("LogLevel.String() = %q, want %q", got, tt.expected)
			}
		})
	}
}

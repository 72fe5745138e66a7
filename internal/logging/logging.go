package logging

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
)

// LogLevel represents the severity of a log message
type LogLevel int

const (
	// LevelDebug is the debug log level
	LevelDebug LogLevel = iota
	// LevelInfo is the info log level
	LevelInfo
	// LevelWarn is the warning log level
	LevelWarn
	// LevelError is the error log level
	LevelError
)

var (
	currentLevel LogLevel
	levelOnce    sync.Once
)

// initLevel initializes the log level from environment variables
func initLevel() {
	levelOnce.Do(func() {
		currentLevel = ParseLevel(os.Getenv("DEBUG"), os.Getenv("LOG_LEVEL"))
	})
}

// ParseLevel resolves the effective level from the DEBUG and LOG_LEVEL values.
// A truthy DEBUG wins over LOG_LEVEL; unknown values fall back to info.
func ParseLevel(debug, level string) LogLevel {
	switch strings.ToLower(debug) {
	case "1", "true", "yes", "on":
		return LevelDebug
	}

	switch strings.ToLower(level) {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// GetLevel returns the current log level
func GetLevel() LogLevel {
	initLevel()
	return currentLevel
}

// IsDebugEnabled returns true if debug logging is enabled
func IsDebugEnabled() bool {
	return GetLevel() <= LevelDebug
}

// Debug logs a debug message (only if DEBUG=true or LOG_LEVEL=debug)
func Debug(format string, args ...interface{}) {
	if GetLevel() <= LevelDebug {
		log.Printf("[DEBUG] "+format, args...)
	}
}

// Info logs an info message
func Info(format string, args ...interface{}) {
	if GetLevel() <= LevelInfo {
		log.Printf("[INFO] "+format, args...)
	}
}

// Warn logs a warning message
func Warn(format string, args ...interface{}) {
	if GetLevel() <= LevelWarn {
		log.Printf("[WARN] "+format, args...)
	}
}

// Error logs an error message
func Error(format string, args ...interface{}) {
	if GetLevel() <= LevelError {
		log.Printf("[ERROR] "+format, args...)
	}
}

// Fatal logs an error message and exits
func Fatal(format string, args ...interface{}) {
	log.Fatalf("[FATAL] "+format, args...)
}

// Request is a logger that tags every line with a conversion request ID,
// so the output of concurrent conversions can be told apart.
type Request struct {
	id string
}

// ForRequest returns a logger bound to the given request ID.
func ForRequest(id string) Request {
	return Request{id: id}
}

// ID returns the bound request ID.
func (r Request) ID() string {
	return r.id
}

func (r Request) prefix(format string) string {
	if r.id == "" {
		return format
	}
	return "[" + r.id + "] " + format
}

// Debug logs a debug message for the request.
func (r Request) Debug(format string, args ...interface{}) {
	Debug(r.prefix(format), args...)
}

// Info logs an info message for the request.
func (r Request) Info(format string, args ...interface{}) {
	Info(r.prefix(format), args...)
}

// Warn logs a warning message for the request.
func (r Request) Warn(format string, args ...interface{}) {
	Warn(r.prefix(format), args...)
}

// Error logs an error message for the request.
func (r Request) Error(format string, args ...interface{}) {
	Error(r.prefix(format), args...)
}

// String returns the string representation of a log level
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return fmt.Sprintf("unknown(%d)", l)
	}
}

// Package logger builds the structured loggers used across the netsummary
// service.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// LogFormat defines how log messages are formatted
type LogFormat string

// Log format constants
const (
	FormatText LogFormat = "text"
	FormatJSON LogFormat = "json"
)

// Config holds configuration options for the logger
type Config struct {
	Level       slog.Level
	Format      LogFormat
	Output      io.Writer
	DefaultTags map[string]interface{}
}

// DefaultConfig returns a default logger configuration
func DefaultConfig() *Config {
	return &Config{
		Level:       slog.LevelInfo,
		Format:      FormatText,
		Output:      os.Stderr,
		DefaultTags: map[string]interface{}{"service": "netsummary"},
	}
}

// New creates a new slog logger with the given configuration
func New(config *Config) *slog.Logger {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Output == nil {
		config.Output = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: config.Level}

	var handler slog.Handler
	if config.Format == FormatJSON {
		handler = slog.NewJSONHandler(config.Output, opts)
	} else {
		handler = slog.NewTextHandler(config.Output, opts)
	}

	log := slog.New(handler)
	for k, v := range config.DefaultTags {
		log = log.With(k, v)
	}
	return log
}

// FromSettings builds a logger from the level and format strings carried by
// the service configuration.
func FromSettings(level, format string, output io.Writer) *slog.Logger {
	cfg := DefaultConfig()
	cfg.Level = ParseLevel(level)
	cfg.Format = ParseFormat(format)
	if output != nil {
		cfg.Output = output
	}
	return New(cfg)
}

// ParseLevel converts a string level to a slog.Level. Unknown levels fall
// back to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error", "fatal":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ParseFormat converts a string format to a LogFormat. Unknown formats fall
// back to text.
func ParseFormat(format string) LogFormat {
	if strings.ToLower(format) == string(FormatJSON) {
		return FormatJSON
	}
	return FormatText
}

// SetDefault installs the logger as the process-wide slog default.
func SetDefault(log *slog.Logger) {
	slog.SetDefault(log)
}

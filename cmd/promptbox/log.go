package main

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// logFormat is the log output format.
type logFormat string

const (
	logFormatText logFormat = "text"
	logFormatJSON logFormat = "json"
)

// logConfig holds the logging configuration.
type logConfig struct {
	// Level sets the minimum log level (debug, info, warn, error).
	Level string
	// Format is text or json.
	Format logFormat
	// Output receives log lines. Default: os.Stderr.
	Output io.Writer
	// AddSource adds source file and line information.
	AddSource bool
}

// logConfigFromEnv builds a logConfig from the environment.
//
//   - PROMPTBOX_DEBUG: true/1 enables debug level and source locations
//   - PROMPTBOX_LOG_LEVEL, then LOG_LEVEL: debug, info, warn, error (default: warn)
//   - LOG_FORMAT: text, json (default: text)
func logConfigFromEnv() *logConfig {
	cfg := &logConfig{
		Level:  "warn",
		Format: logFormatText,
		Output: os.Stderr,
	}

	debug := os.Getenv("PROMPTBOX_DEBUG")
	if debug == "true" || debug == "1" {
		cfg.Level = "debug"
		cfg.AddSource = true
	} else if level := os.Getenv("PROMPTBOX_LOG_LEVEL"); level != "" {
		cfg.Level = strings.ToLower(level)
	} else if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.Level = strings.ToLower(level)
	}

	if format := os.Getenv("LOG_FORMAT"); format != "" {
		cfg.Format = logFormat(strings.ToLower(format))
	}
	return cfg
}

// newLogger creates a structured logger from cfg.
func newLogger(cfg *logConfig) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	opts := &slog.HandlerOptions{
		Level:     parseLevel(cfg.Level),
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler
	switch cfg.Format {
	case logFormatJSON:
		handler = slog.NewJSONHandler(out, opts)
	default:
		handler = slog.NewTextHandler(out, opts)
	}
	return slog.New(handler)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// Package logging configures the process-wide slog logger.
//
// Two output formats are supported: "text" uses tint for colored
// development output, "json" emits machine-readable records for
// production log shipping.
//
// Environment variables:
//
//	LOG_LEVEL:  debug, info, warn, error (default: info)
//	LOG_FORMAT: text, json (default: text)
package logging

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Setup configures logging from the LOG_LEVEL and LOG_FORMAT env vars.
func Setup() {
	SetupWith(levelFromEnv(), os.Getenv("LOG_FORMAT"))
}

// SetupWith configures logging at an explicit level and format.
func SetupWith(level slog.Level, format string) {
	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	} else {
		handler = tint.NewHandler(os.Stderr, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
			AddSource:  true,
		})
	}
	slog.SetDefault(slog.New(handler))
}

func levelFromEnv() slog.Level {
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Package obs contains observability utilities such as logging.
package obs

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger is the global structured logger used by the service.
//
// It starts as an info-level JSON logger on stdout so packages can log before
// InitLogger runs.
var Logger = newLogger(os.Stdout, slog.LevelInfo)

// InitLogger replaces the global Logger with a JSON handler at the given level
// (debug, info, warn or error; anything else means info).
func InitLogger(level string) {
	Logger = newLogger(os.Stdout, ParseLevel(level))
}

// InitLoggerTo is InitLogger writing to w.
func InitLoggerTo(w io.Writer, level string) {
	Logger = newLogger(w, ParseLevel(level))
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(lvl string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(lvl)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(h).With("service", "storefront")
}

package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Setup initializes the application's logging system from the configured
// log level. It creates a structured JSON logger writing to stdout, sets
// it as the process default, and returns it.
//
// An unrecognized level falls back to info with a warning rather than
// failing startup; a misconfigured log level should never keep the
// service down.
func Setup(logLevel string) *slog.Logger {
	return setup(logLevel, os.Stdout)
}

// setup is the testable core of Setup, parameterized on the output writer.
func setup(logLevel string, w io.Writer) *slog.Logger {
	level, ok := parseLevel(logLevel)
	if !ok {
		tmp := slog.New(slog.NewTextHandler(os.Stderr, nil))
		tmp.Warn("invalid log level configured, using default level",
			slog.String("configured_level", logLevel),
			slog.String("default_level", "info"))
		level = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	log := slog.New(handler)
	slog.SetDefault(log)
	return log
}

// parseLevel maps a case-insensitive level name to its slog.Level.
func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

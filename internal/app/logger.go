package app

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Log output formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// parseLogLevel maps a level name to a slog.Level. The empty string means info.
func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q: must be debug, info, warn or error", s)
}

func validateLogFormat(s string) error {
	switch strings.ToLower(s) {
	case "", LogFormatText, LogFormatJSON:
		return nil
	}
	return fmt.Errorf("unknown log format %q: must be %q or %q", s, LogFormatText, LogFormatJSON)
}

// newLogger builds an isolated logger writing to outW. The global default
// logger is left untouched. Settings are expected to have passed NewConfig;
// anything else falls back to info level and text output.
func newLogger(levelStr, formatStr string, outW io.Writer) *slog.Logger {
	level, _ := parseLogLevel(levelStr)
	opts := &slog.HandlerOptions{Level: level}

	if strings.EqualFold(formatStr, LogFormatJSON) {
		return slog.New(slog.NewJSONHandler(outW, opts))
	}
	return slog.New(slog.NewTextHandler(outW, opts))
}

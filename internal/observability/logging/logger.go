package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Stderr is for binaries whose stdout carries protocol traffic.
var Stderr io.Writer = os.Stderr

func NewJSONLogger(service, level string) *slog.Logger {
	return NewJSONLoggerTo(service, level, os.Stdout)
}

func NewJSONLoggerTo(service, level string, w io.Writer) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: parseLevel(level),
	})
	return slog.New(handler).With("service", service)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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

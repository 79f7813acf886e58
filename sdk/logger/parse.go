package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// parseOutput accepts STDOUT or STDERR. Anything else is stdout.
func parseOutput(o string) io.Writer {
	if strings.EqualFold(o, "STDERR") {
		return os.Stderr
	}
	return os.Stdout
}

// parseLevel takes slog level names (case-insensitive, WARNING allowed).
// Unknown names are info.
func parseLevel(s string) slog.Level {
	var level slog.Level
	if strings.EqualFold(s, "WARNING") {
		s = "WARN"
	}
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}

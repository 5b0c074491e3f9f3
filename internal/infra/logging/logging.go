package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

const (
	FormatJSON = "json"
	FormatText = "text"
)

// SetupJSON sets slog's default logger to use JSON output at the given level.
func SetupJSON(level slog.Level) {
	slog.SetDefault(New(os.Stdout, FormatJSON, level))
}

// Setup installs the default logger writing to stdout in the given format.
func Setup(format string, level slog.Level) error {
	if !validFormat(format) {
		return fmt.Errorf("unknown log format %q", format)
	}

	slog.SetDefault(New(os.Stdout, format, level))

	return nil
}

// New builds a logger. Unknown formats fall back to JSON.
func New(w io.Writer, format string, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}

	if strings.EqualFold(format, FormatText) {
		return slog.New(slog.NewTextHandler(w, opts))
	}

	return slog.New(slog.NewJSONHandler(w, opts))
}

func validFormat(f string) bool {
	return strings.EqualFold(f, FormatJSON) || strings.EqualFold(f, FormatText)
}

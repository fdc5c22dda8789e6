package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// New builds the JSON logger used by the server and the CLI.
func New(w io.Writer, level string) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)}))
}

// Setup installs the logger as the process default.
func Setup(level, environment string) *slog.Logger {
	logger := New(os.Stdout, level).With("service", "resultados", "env", environment)
	slog.SetDefault(logger)
	return logger
}

func ParseLevel(level string) slog.Level {
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

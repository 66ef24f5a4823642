package util

import (
	"log/slog"
	"os"
	"strings"
)

// InitLogger installs a JSON slog handler as the process default and returns
// it. Source locations are attached to every record.
func InitLogger(level string) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:     parseLevel(level),
		AddSource: true,
	}))
	slog.SetDefault(logger)
	return logger
}

// parseLevel maps a config level name to a slog level. Unknown or empty
// names fall back to info so a typo never silences the log.
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

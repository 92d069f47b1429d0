package logging

import (
	"log/slog"
	"os"
	"strings"
)

// NewLogger creates a slog.Logger based on LOG_LEVEL. Setting LOG_FORMAT=json
// switches the handler from human-readable text to JSON output.
func NewLogger(levelString string) *slog.Logger {
	var level slog.Level
	switch strings.ToUpper(levelString) {
	case "DEBUG":
		level = slog.LevelDebug
	case "INFO":
		level = slog.LevelInfo
	case "WARN":
		level = slog.LevelWarn
	case "ERROR":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	handlerOptions := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(strings.TrimSpace(os.Getenv("LOG_FORMAT")), "json") {
		return slog.New(slog.NewJSONHandler(os.Stdout, handlerOptions))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, handlerOptions))
}

package observability

import (
	"log/slog"
	"os"
	"strings"

	"github.com/couchcryptid/flood-status-service/internal/config"
)

// NewLogger builds the service logger from LOG_FORMAT and LOG_LEVEL. Logs go
// to stderr so one-shot CLI output on stdout stays machine-readable.
func NewLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.LogFormat == "text" {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}

	return slog.New(handler)
}

package app

import (
	"log/slog"
	"os"
)

// NewLogger builds the process-wide structured logger. JSON output is
// used in production so log collectors can parse entries.
func NewLogger(cfg *Config) *slog.Logger {
	level := slog.LevelDebug
	if cfg.IsProduction() {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.LogFormat == "json" || cfg.IsProduction() {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler).With(slog.String("app", "pedidoflow"))
	slog.SetDefault(logger)
	return logger
}

package utils

import (
	"log/slog"
	"os"
)

// NewLogger builds the service-wide JSON logger.
func NewLogger(level slog.Level, environment string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if environment == "development" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	logger := slog.New(handler).With("service", "qcm-service")
	slog.SetDefault(logger)

	return logger
}

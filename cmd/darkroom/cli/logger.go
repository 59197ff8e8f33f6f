// Copyright 2026 The Darkroom Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"log/slog"
	"os"

	"golang.org/x/term"

	"github.com/darkroom-project/darkroom/lib/config"
)

// NewCommandLogger creates a structured logger for CLI command operations.
// When stderr is a terminal, uses slog.TextHandler for human-readable output.
// When stderr is piped or redirected (CI, scripts, integration tests), uses
// slog.JSONHandler for machine-parseable output that matches the service's
// log format.
//
// The level comes from the loaded configuration; pass config.Default()
// when no file is in play. Setting DARKROOM_DEBUG=1 forces debug level
// regardless of configuration. Callers scope the logger with
// command-specific context via With():
//
//	logger := cli.NewCommandLogger(cfg).With("command", "sync")
func NewCommandLogger(cfg *config.Config) *slog.Logger {
	level := cfg.LogLevel()
	if os.Getenv("DARKROOM_DEBUG") == "1" {
		level = slog.LevelDebug
	}
	options := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch {
	case cfg.Logging.Format == "json":
		handler = slog.NewJSONHandler(os.Stderr, options)
	case term.IsTerminal(int(os.Stderr.Fd())):
		handler = slog.NewTextHandler(os.Stderr, options)
	default:
		handler = slog.NewJSONHandler(os.Stderr, options)
	}
	return slog.New(handler)
}

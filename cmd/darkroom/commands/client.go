// Copyright 2026 The Darkroom Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/darkroom-project/darkroom/cmd/darkroom/cli"
	"github.com/darkroom-project/darkroom/lib/config"
	"github.com/darkroom-project/darkroom/lib/exiftool"
	"github.com/darkroom-project/darkroom/lib/metadata"
)

// run carries the pieces every tool-driving command needs: a
// signal-aware context, the resolved configuration, a scoped logger,
// and a ready processor.
type run struct {
	ctx       context.Context
	cfg       *config.Config
	logger    *slog.Logger
	processor *metadata.Processor
}

// withProcessor resolves flags and configuration, builds the tool
// client, and hands fn a ready processor. The context is canceled on
// SIGINT or SIGTERM so batch runs stop at the next file boundary. The
// client is closed, ending any persistent session, when fn returns.
func withProcessor(name string, options *cli.ToolOptions, fn func(r run) error) error {
	cfg, err := options.Load()
	if err != nil {
		return err
	}
	logger := cli.NewCommandLogger(cfg).With("command", name)

	clientConfig, err := options.ClientConfig(cfg, logger)
	if err != nil {
		return err
	}
	client, err := exiftool.New(clientConfig)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return fn(run{
		ctx:       ctx,
		cfg:       cfg,
		logger:    logger,
		processor: metadata.NewProcessor(client, logger),
	})
}

// Copyright 2026 The Darkroom Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/pflag"

	"github.com/darkroom-project/darkroom/lib/config"
	"github.com/darkroom-project/darkroom/lib/exiftool"
)

// ToolOptions holds the shared flags for commands that drive the
// metadata tool: --tool overrides the binary path from configuration,
// and --config selects an explicit configuration file instead of the
// DARKROOM_CONFIG environment variable.
//
// Usage pattern:
//
//	type extractParams struct {
//	    cli.ToolOptions
//	    Format string `flag:"format,f" desc:"output format" default:"table"`
//	}
//
//	// In Run:
//	cfg, err := params.Load()
//	clientConfig, err := params.ClientConfig(cfg, logger)
type ToolOptions struct {
	ToolPath   string
	ConfigFile string
}

// AddFlags registers --tool and --config on the given flag set.
func (o *ToolOptions) AddFlags(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&o.ToolPath, "tool", "", "path to the exiftool binary (overrides config)")
	flagSet.StringVar(&o.ConfigFile, "config", "", "path to a darkroom config file (overrides DARKROOM_CONFIG)")
}

// Load resolves the effective configuration: the --config file if set,
// otherwise DARKROOM_CONFIG, otherwise built-in defaults. A --tool
// override is applied after loading so it wins over every file.
func (o *ToolOptions) Load() (*config.Config, error) {
	var cfg *config.Config
	var err error
	if o.ConfigFile != "" {
		cfg, err = config.LoadFile(o.ConfigFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if o.ToolPath != "" {
		cfg.Tool.Path = o.ToolPath
	}
	return cfg, nil
}

// ClientConfig builds the tool client configuration from the loaded
// config: resolved binary path plus command and shutdown timeouts.
// The binary is resolved eagerly so a missing tool fails here, with a
// path in the message, instead of on the first operation.
func (o *ToolOptions) ClientConfig(cfg *config.Config, logger *slog.Logger) (exiftool.Config, error) {
	binary, err := cfg.ToolPath()
	if err != nil {
		return exiftool.Config{}, err
	}

	commandTimeout, shutdownTimeout, err := cfg.ToolTimeouts()
	if err != nil {
		return exiftool.Config{}, fmt.Errorf("tool timeouts: %w", err)
	}

	return exiftool.Config{
		BinaryPath:      binary,
		CommandTimeout:  commandTimeout,
		ShutdownTimeout: shutdownTimeout,
		Logger:          logger,
	}, nil
}

// Copyright 2026 The Darkroom Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/darkroom-project/darkroom/cmd/darkroom/cli"
	"github.com/darkroom-project/darkroom/lib/service"
)

// serveParams holds the parameters for the serve command.
type serveParams struct {
	cli.ToolOptions
	Address string `flag:"address" desc:"listen address (default from config)"`
}

func serveCommand() *cli.Command {
	var params serveParams

	return &cli.Command{
		Name:    "serve",
		Summary: "Run the HTTP metadata service",
		Description: `Start an HTTP server exposing metadata extraction.

GET / reports service status. POST /process with a JSON body of
{"input": "<path>"} returns the file's metadata summary under
"result". One worker session is shared across requests, so repeated
extractions skip the tool's startup cost.

The server runs until interrupted and finishes in-flight requests
before exiting. The listen address defaults to service.address in
the config file.`,
		Usage: "darkroom serve [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("serve", &params)
		},
		Examples: []cli.Example{
			{
				Description: "Serve on the configured address",
				Command:     "darkroom serve",
			},
			{
				Description: "Serve on a specific port",
				Command:     "darkroom serve --address 127.0.0.1:8080",
			},
		},
		Run: func(args []string) error {
			if len(args) != 0 {
				return fmt.Errorf("usage: darkroom serve [flags]")
			}

			return withProcessor("serve", &params.ToolOptions, func(r run) error {
				address := params.Address
				if address == "" {
					address = r.cfg.Service.Address
				}

				stop := r.processor.EnsureSession()
				defer stop()

				httpServer := service.NewHTTPServer(service.HTTPServerConfig{
					Address: address,
					Handler: service.NewHandler(r.processor, r.logger),
					Logger:  r.logger,
				})

				httpDone := make(chan error, 1)
				go func() {
					httpDone <- httpServer.Serve(r.ctx)
				}()

				// Wait for the server to be ready before announcing.
				// A bind failure surfaces on httpDone instead.
				select {
				case <-httpServer.Ready():
					r.logger.Info("service ready", "address", httpServer.Addr().String())
				case err := <-httpDone:
					return err
				}

				return <-httpDone
			})
		},
	}
}

// Copyright 2026 The Darkroom Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the complete darkroom CLI command tree.
// Each subcommand lives in its own file; client.go holds the shared
// config-load/tool-connect plumbing they all run through.
package commands

import (
	"fmt"

	"github.com/darkroom-project/darkroom/cmd/darkroom/cli"
	"github.com/darkroom-project/darkroom/lib/version"
)

// Root builds and returns the complete darkroom CLI command tree.
func Root() *cli.Command {
	return &cli.Command{
		Name: "darkroom",
		Description: `Darkroom: image metadata from the command line.

Extract, strip, synchronize, and archive metadata by driving an
exiftool binary through a managed worker session.`,
		Subcommands: []*cli.Command{
			extractCommand(),
			xmpCommand(),
			scanCommand(),
			syncCommand(),
			removeCommand(),
			snapshotCommand(),
			serveCommand(),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(args []string) error {
					fmt.Printf("darkroom %s\n", version.Full())
					return nil
				},
			},
		},
		Examples: []cli.Example{
			{
				Description: "Show a file's metadata summary",
				Command:     "darkroom extract photo.jpg",
			},
			{
				Description: "Find files that carry no metadata",
				Command:     "darkroom scan photos/",
			},
			{
				Description: "Copy EXIF fields into XMP across a library",
				Command:     "darkroom sync photos/ --recursive",
			},
			{
				Description: "Archive a library's metadata before editing",
				Command:     "darkroom snapshot write photos/",
			},
			{
				Description: "Run the HTTP metadata service",
				Command:     "darkroom serve --address 127.0.0.1:5000",
			},
		},
	}
}

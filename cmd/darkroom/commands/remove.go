// Copyright 2026 The Darkroom Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/darkroom-project/darkroom/cmd/darkroom/cli"
)

// removeParams holds the parameters for the remove command.
type removeParams struct {
	cli.ToolOptions
	Tags []string `flag:"tags,t" desc:"specific tags to remove (repeatable)"`
	All  bool     `flag:"all" desc:"remove all metadata"`
}

func removeCommand() *cli.Command {
	var params removeParams

	return &cli.Command{
		Name:    "remove",
		Summary: "Remove metadata from a file",
		Description: `Delete metadata tags from a file in place. With --tags, only the
named tags are removed; with --all, every tag the tool can write is
cleared. Exactly one of the two must be given: deleting everything
should never be the accident of an empty tag list.

The tool keeps a backup copy of the original file next to it with an
_original suffix.`,
		Usage: "darkroom remove <file> (--tags TAG... | --all)",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("remove", &params)
		},
		Examples: []cli.Example{
			{
				Description: "Strip GPS tags",
				Command:     "darkroom remove photo.jpg --tags GPSLatitude --tags GPSLongitude",
			},
			{
				Description: "Strip everything",
				Command:     "darkroom remove photo.jpg --all",
			},
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: darkroom remove <file> (--tags TAG... | --all)")
			}
			if params.All == (len(params.Tags) > 0) {
				return fmt.Errorf("exactly one of --tags or --all is required")
			}

			return withProcessor("remove", &params.ToolOptions, func(r run) error {
				client := r.processor.Client()

				var err error
				if params.All {
					err = client.RemoveMetadata(r.ctx, args[0])
				} else {
					err = client.RemoveMetadata(r.ctx, args[0], params.Tags...)
				}
				if err != nil {
					return err
				}

				fmt.Fprintf(os.Stdout, "Metadata removed from %s\n", args[0])
				return nil
			})
		},
	}
}

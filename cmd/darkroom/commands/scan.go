// Copyright 2026 The Darkroom Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/darkroom-project/darkroom/cmd/darkroom/cli"
)

// scanParams holds the parameters for the scan command.
type scanParams struct {
	cli.ToolOptions
	cli.JSONOutput
	Extensions []string `flag:"extensions,e" desc:"file extensions to process (default from config)"`
}

func scanCommand() *cli.Command {
	var params scanParams

	return &cli.Command{
		Name:    "scan",
		Summary: "Scan a directory for files without metadata",
		Description: `Walk a directory tree and report image files that carry no real
metadata: nothing beyond the entries the tool synthesizes for any
file it reads (SourceFile, ExifTool version, file system stats).

Extensions default to the scan.extensions list in the config file.
Unreadable files are counted but do not stop the scan.`,
		Usage: "darkroom scan <directory> [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("scan", &params)
		},
		Examples: []cli.Example{
			{
				Description: "Find files missing metadata",
				Command:     "darkroom scan photos/",
			},
			{
				Description: "Only look at TIFFs",
				Command:     "darkroom scan photos/ --extensions .tif,.tiff",
			},
			{
				Description: "Structured report",
				Command:     "darkroom scan photos/ --json",
			},
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: darkroom scan <directory>")
			}

			return withProcessor("scan", &params.ToolOptions, func(r run) error {
				extensions := params.Extensions
				if len(extensions) == 0 {
					extensions = r.cfg.Scan.Extensions
				}

				report, err := r.processor.ScanWithoutMetadata(r.ctx, args[0], extensions)
				if err != nil {
					return err
				}

				if done, err := params.EmitJSON(report); done {
					return err
				}

				if len(report.Flagged) == 0 {
					fmt.Fprintln(os.Stdout, "No files without metadata found.")
				} else {
					fmt.Fprintf(os.Stdout, "Found %d files without metadata:\n", len(report.Flagged))
					for _, path := range report.Flagged {
						fmt.Fprintf(os.Stdout, "  %s\n", path)
					}
				}
				if report.Errors > 0 {
					fmt.Fprintf(os.Stdout, "%d files could not be read.\n", report.Errors)
				}
				return nil
			})
		},
	}
}

// Copyright 2026 The Darkroom Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/pflag"

	"github.com/darkroom-project/darkroom/cmd/darkroom/cli"
	"github.com/darkroom-project/darkroom/lib/metadata"
)

// extractParams holds the parameters for the extract command.
type extractParams struct {
	cli.ToolOptions
	Format string `flag:"format,f" desc:"output format: table or json" default:"table"`
}

func extractCommand() *cli.Command {
	var params extractParams

	return &cli.Command{
		Name:    "extract",
		Summary: "Extract metadata from a file",
		Description: `Read a file's metadata and print the condensed summary: file name
and size, dimensions, camera make and model, capture date, and GPS
coordinates. Fields the file does not carry are omitted.

Use --format json for the structured form, which carries the same
fields under stable keys.`,
		Usage: "darkroom extract <file> [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("extract", &params)
		},
		Examples: []cli.Example{
			{
				Description: "Show a file's metadata summary",
				Command:     "darkroom extract photo.jpg",
			},
			{
				Description: "Structured output for scripts",
				Command:     "darkroom extract photo.jpg --format json",
			},
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: darkroom extract <file>")
			}
			if params.Format != "table" && params.Format != "json" {
				return fmt.Errorf("invalid format %q (expected table or json)", params.Format)
			}

			return withProcessor("extract", &params.ToolOptions, func(r run) error {
				summary, err := r.processor.Summary(r.ctx, args[0])
				if err != nil {
					return err
				}

				if params.Format == "json" {
					return cli.WriteJSON(summary)
				}
				printSummary(summary)
				return nil
			})
		},
	}
}

// printSummary writes the populated summary fields as "label: value"
// lines, in a fixed order so repeated runs diff cleanly.
func printSummary(summary metadata.FileSummary) {
	for _, row := range summaryRows(summary) {
		fmt.Fprintf(os.Stdout, "%s: %s\n", row[0], row[1])
	}
}

// summaryRows flattens a summary into ordered label/value pairs,
// dropping fields the file does not carry.
func summaryRows(summary metadata.FileSummary) [][2]string {
	rows := [][2]string{
		{"file_name", summary.FileName},
		{"file_size", summary.FileSize},
	}
	if summary.Width > 0 {
		rows = append(rows, [2]string{"width", strconv.Itoa(summary.Width)})
	}
	if summary.Height > 0 {
		rows = append(rows, [2]string{"height", strconv.Itoa(summary.Height)})
	}
	optional := [][2]string{
		{"camera_make", summary.Make},
		{"camera_model", summary.Model},
		{"date_taken", summary.DateTaken},
		{"gps_latitude", summary.Latitude},
		{"gps_longitude", summary.Longitude},
	}
	for _, row := range optional {
		if row[1] != "" {
			rows = append(rows, row)
		}
	}
	return rows
}

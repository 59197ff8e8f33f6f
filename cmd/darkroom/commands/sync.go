// Copyright 2026 The Darkroom Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/darkroom-project/darkroom/cmd/darkroom/cli"
	"github.com/darkroom-project/darkroom/lib/metadata"
	"github.com/darkroom-project/darkroom/lib/preset"
)

// syncParams holds the parameters for the sync command.
type syncParams struct {
	cli.ToolOptions
	Rules      string   `flag:"rules" desc:"preset rule file (JSONC)"`
	ArgsFile   string   `flag:"args-file,a" desc:"raw tool args file (-@ format)"`
	Extensions []string `flag:"extensions,e" desc:"file extensions to process (args-file mode only)"`
	Recursive  bool     `flag:"recursive,r" desc:"process subdirectories recursively" default:"true"`
	Verbose    bool     `flag:"verbose,v" desc:"list per-file errors and warnings"`
	Format     string   `flag:"format,f" desc:"output format: summary or json" default:"summary"`
}

func syncCommand() *cli.Command {
	var params syncParams

	return &cli.Command{
		Name:    "sync",
		Summary: "Synchronize metadata between EXIF, IPTC, and XMP",
		Description: `Apply a rule set to every file under a directory, one persistent
tool session for the whole run. Rules come from a preset file
(--rules, JSONC with an extension filter and tag assignments) or a
raw tool args file (--args-file, the -@ format). With an args file,
--extensions limits which files are touched; presets carry their own
extension list.

Per-file failures are recorded and the run continues. The summary
counts are disjoint: total = processed + warnings + errors + skipped.`,
		Usage: "darkroom sync <path> (--rules FILE | --args-file FILE) [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("sync", &params)
		},
		Examples: []cli.Example{
			{
				Description: "Apply a preset to a photo tree",
				Command:     "darkroom sync photos/ --rules presets/archive.jsonc",
			},
			{
				Description: "Raw args file, JPEGs only, this directory only",
				Command:     "darkroom sync photos/ --args-file sync.args --extensions .jpg --recursive=false",
			},
			{
				Description: "Full per-file report as JSON",
				Command:     "darkroom sync photos/ --rules presets/archive.jsonc --format json",
			},
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: darkroom sync <path> (--rules FILE | --args-file FILE)")
			}
			if params.Format != "summary" && params.Format != "json" {
				return fmt.Errorf("invalid format %q (expected summary or json)", params.Format)
			}

			options := metadata.SyncOptions{
				ArgsFile:   params.ArgsFile,
				Extensions: params.Extensions,
				Recursive:  params.Recursive,
			}
			if params.Rules != "" {
				rules, err := preset.Load(params.Rules)
				if err != nil {
					return err
				}
				options.Preset = rules
			}

			return withProcessor("sync", &params.ToolOptions, func(r run) error {
				result, err := r.processor.Sync(r.ctx, args[0], options)
				if err != nil {
					return err
				}

				if params.Format == "json" {
					return cli.WriteJSON(result)
				}
				printSyncResult(result, params.Verbose)
				return nil
			})
		},
	}
}

// printSyncResult writes the run summary, and with verbose the
// per-file error and warning lists.
func printSyncResult(result *metadata.SyncResult, verbose bool) {
	fmt.Fprintln(os.Stdout, "Metadata synchronization completed:")
	fmt.Fprintf(os.Stdout, "  Total files: %d\n", result.Summary.TotalFiles)
	fmt.Fprintf(os.Stdout, "  Processed: %d\n", result.Summary.Processed)
	fmt.Fprintf(os.Stdout, "  Errors: %d\n", result.Summary.Errors)
	fmt.Fprintf(os.Stdout, "  Warnings: %d\n", result.Summary.Warnings)
	fmt.Fprintf(os.Stdout, "  Skipped: %d\n", result.Summary.Skipped)

	if result.Summary.Errors > 0 && !verbose {
		fmt.Fprintln(os.Stdout, "\nUse --verbose to see error details.")
	}
	if !verbose {
		return
	}

	if len(result.Errors) > 0 {
		fmt.Fprintln(os.Stdout, "\nErrors:")
		for _, line := range result.Errors {
			fmt.Fprintf(os.Stdout, "  %s\n", line)
		}
	}
	if len(result.Warnings) > 0 {
		fmt.Fprintln(os.Stdout, "\nWarnings:")
		for _, path := range result.Warnings {
			fmt.Fprintf(os.Stdout, "  %s\n", path)
		}
	}
}

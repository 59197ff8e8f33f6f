// Copyright 2026 The Darkroom Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"github.com/darkroom-project/darkroom/cmd/darkroom/cli"
	"github.com/darkroom-project/darkroom/lib/xmp"
)

// xmpParams holds the parameters for the xmp command.
type xmpParams struct {
	cli.ToolOptions
	Recursive bool   `flag:"recursive,r" desc:"process subdirectories recursively"`
	Save      string `flag:"save,s" desc:"write packets: a file for single-file input, a directory for directory input"`
	Format    string `flag:"format,f" desc:"output format: table, raw, or json" default:"table"`
	Verbose   bool   `flag:"verbose,v" desc:"list each saved file"`
}

func xmpCommand() *cli.Command {
	var params xmpParams

	return &cli.Command{
		Name:    "xmp",
		Summary: "Extract XMP metadata from images",
		Description: `Pull XMP out of an image file or every image under a directory.
Files with an embedded xpacket envelope are read directly; formats
without one fall back to the tool's RDF/XML export.

Output formats: table shows the common descriptive fields (title,
description, creator, keywords, rights), raw prints the XML document,
json carries both plus the file path.

With --save and a single file, the embedded packet is written to the
given path. With --save and a directory, one <name>.xmp file per
image that carries a packet is written into the given directory.`,
		Usage: "darkroom xmp <path> [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("xmp", &params)
		},
		Examples: []cli.Example{
			{
				Description: "Show a file's descriptive fields",
				Command:     "darkroom xmp photo.jpg",
			},
			{
				Description: "Dump the raw XMP document",
				Command:     "darkroom xmp photo.jpg --format raw",
			},
			{
				Description: "Extract a whole tree, one record per file",
				Command:     "darkroom xmp photos/ --recursive --format json",
			},
			{
				Description: "Write sidecar packets for a directory",
				Command:     "darkroom xmp photos/ --save sidecars/",
			},
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: darkroom xmp <path>")
			}
			switch params.Format {
			case "table", "raw", "json":
			default:
				return fmt.Errorf("invalid format %q (expected table, raw, or json)", params.Format)
			}

			info, err := os.Stat(args[0])
			if err != nil {
				return err
			}

			return withProcessor("xmp", &params.ToolOptions, func(r run) error {
				if info.IsDir() {
					return xmpDirectory(r, args[0], &params)
				}
				return xmpFile(r, args[0], &params)
			})
		},
	}
}

// xmpFile handles single-file input.
func xmpFile(r run, path string, params *xmpParams) error {
	if params.Save != "" {
		packet, err := xmp.ExtractPacket(path)
		if err != nil {
			return err
		}
		if packet == "" {
			fmt.Fprintf(os.Stdout, "No XMP metadata found in %s\n", path)
			return nil
		}
		if err := os.WriteFile(params.Save, []byte(packet), 0o644); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "XMP packet saved to %s\n", params.Save)
		return nil
	}

	document, err := xmp.ExtractXML(r.ctx, r.processor.Client(), path)
	if err != nil {
		return err
	}
	empty := strings.TrimSpace(document) == ""

	switch params.Format {
	case "raw":
		if empty {
			fmt.Fprintf(os.Stdout, "No XMP metadata found in %s\n", path)
			return nil
		}
		fmt.Fprintln(os.Stdout, document)
		return nil

	case "json":
		record := xmp.Record{File: path, XML: document}
		if !empty {
			if fields, err := xmp.ParseFields(document); err == nil {
				record.Fields = fields
			}
		}
		return cli.WriteJSON(record)

	default: // table
		if empty {
			fmt.Fprintf(os.Stdout, "No XMP metadata found in %s\n", path)
			return nil
		}
		fields, err := xmp.ParseFields(document)
		if err != nil {
			fields = xmp.Fields{}
		}
		printFieldTable(path, fields)
		return nil
	}
}

// xmpDirectory handles directory input.
func xmpDirectory(r run, root string, params *xmpParams) error {
	// One session for the whole walk; files with embedded packets
	// never touch it, the rest share it.
	stop := r.processor.EnsureSession()
	defer stop()

	if params.Save != "" {
		return xmpSaveDirectory(r, root, params)
	}

	records, summary, err := xmp.BatchExtract(r.ctx, r.processor.Client(), root, params.Recursive, r.cfg.Scan.Extensions)
	if err != nil {
		return err
	}

	switch params.Format {
	case "json":
		return cli.WriteJSON(struct {
			Processed []xmp.Record     `json:"processed"`
			Summary   xmp.BatchSummary `json:"summary"`
		}{Processed: records, Summary: summary})

	case "raw":
		for _, record := range records {
			fmt.Fprintf(os.Stdout, "\n--- %s ---\n", record.File)
			fmt.Fprintln(os.Stdout, record.XML)
		}
		return nil

	default: // table
		for _, record := range records {
			fmt.Fprintln(os.Stdout)
			printFieldTable(record.File, record.Fields)
		}
		fmt.Fprintln(os.Stdout, "\nSummary:")
		fmt.Fprintf(os.Stdout, "  Total files: %d\n", summary.TotalFiles)
		fmt.Fprintf(os.Stdout, "  Processed: %d\n", summary.Processed)
		fmt.Fprintf(os.Stdout, "  Skipped: %d (no XMP metadata)\n", summary.Skipped)
		fmt.Fprintf(os.Stdout, "  Errors: %d\n", summary.Errors)
		return nil
	}
}

// xmpSaveDirectory writes one .xmp sidecar per image that carries an
// embedded packet. Only verbatim packets are saved; a tool-exported
// RDF document is not the file's own packet.
func xmpSaveDirectory(r run, root string, params *xmpParams) error {
	if info, err := os.Stat(params.Save); err == nil && !info.IsDir() {
		return fmt.Errorf("%s is not a directory", params.Save)
	}
	if err := os.MkdirAll(params.Save, 0o755); err != nil {
		return err
	}

	records, summary, err := xmp.BatchExtract(r.ctx, r.processor.Client(), root, params.Recursive, r.cfg.Scan.Extensions)
	if err != nil {
		return err
	}

	saved := 0
	for _, record := range records {
		packet, err := xmp.ExtractPacket(record.File)
		if err != nil || packet == "" {
			continue
		}

		base := filepath.Base(record.File)
		stem := strings.TrimSuffix(base, filepath.Ext(base))
		target := filepath.Join(params.Save, stem+".xmp")
		if err := os.WriteFile(target, []byte(packet), 0o644); err != nil {
			r.logger.Warn("writing sidecar", "file", record.File, "err", err)
			continue
		}
		saved++
		if params.Verbose {
			fmt.Fprintf(os.Stdout, "Saved: %s\n", target)
		}
	}

	fmt.Fprintln(os.Stdout, "XMP extraction completed:")
	fmt.Fprintf(os.Stdout, "  Total files processed: %d\n", summary.TotalFiles)
	fmt.Fprintf(os.Stdout, "  XMP files saved: %d\n", saved)
	fmt.Fprintf(os.Stdout, "  Skipped (no XMP): %d\n", summary.Skipped)
	fmt.Fprintf(os.Stdout, "  Errors: %d\n", summary.Errors)
	fmt.Fprintf(os.Stdout, "  Output directory: %s\n", params.Save)
	return nil
}

// printFieldTable writes one file's descriptive fields as an aligned
// block with a heading underline.
func printFieldTable(path string, fields xmp.Fields) {
	fmt.Fprintf(os.Stdout, "File: %s\n", path)
	fmt.Fprintln(os.Stdout, strings.Repeat("=", len(path)+6))
	for _, row := range fieldRows(fields) {
		fmt.Fprintf(os.Stdout, "%-15s: %s\n", row[0], truncateValue(row[1]))
	}
}

// fieldRows flattens the populated fields into ordered label/value
// pairs.
func fieldRows(fields xmp.Fields) [][2]string {
	var rows [][2]string
	add := func(label, value string) {
		if value != "" {
			rows = append(rows, [2]string{label, value})
		}
	}
	add("Title", fields.Title)
	add("Description", fields.Description)
	add("Creator", fields.Creator)
	add("Keywords", strings.Join(fields.Keywords, ", "))
	add("Rights", fields.Rights)
	return rows
}

// truncateValue caps long values so table rows stay one line.
func truncateValue(value string) string {
	if len(value) > 60 {
		return value[:57] + "..."
	}
	return value
}

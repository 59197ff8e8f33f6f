// Copyright 2026 The Darkroom Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"

	"github.com/darkroom-project/darkroom/cmd/darkroom/cli"
	"github.com/darkroom-project/darkroom/lib/codec"
	"github.com/darkroom-project/darkroom/lib/metadata"
	"github.com/darkroom-project/darkroom/lib/snapshot"
)

func snapshotCommand() *cli.Command {
	return &cli.Command{
		Name:    "snapshot",
		Summary: "Archive and restore metadata for whole directories",
		Description: `Capture the complete metadata of every image under a directory
into a single archive, and restore it later.

An archive stores one RDF/XML document per file: the full metadata
as the tool reports it, compressed and protected by a keyed digest.
Archives are plain files and safe to copy, ship, and keep; restoring
writes each document back onto the matching file under a target
directory.

When --output is not given, write places the archive in the
snapshot.directory from the config file.`,
		Subcommands: []*cli.Command{
			snapshotWriteCommand(),
			snapshotInspectCommand(),
			snapshotVerifyCommand(),
			snapshotRestoreCommand(),
		},
	}
}

// snapshotWriteParams holds the parameters for "snapshot write".
type snapshotWriteParams struct {
	cli.ToolOptions
	cli.JSONOutput
	Output     string   `flag:"output,o" desc:"archive path (default: timestamped file in the configured snapshot directory)"`
	Extensions []string `flag:"extensions,e" desc:"file extensions to capture (default from config)"`
	Recursive  bool     `flag:"recursive,r" default:"true" desc:"descend into subdirectories"`
}

// snapshotWriteSummary is the write report, also emitted with --json.
type snapshotWriteSummary struct {
	Archive    string `json:"archive"`
	Files      int    `json:"files"`
	RawSize    uint64 `json:"raw_size"`
	StoredSize uint64 `json:"stored_size"`
}

func snapshotWriteCommand() *cli.Command {
	var params snapshotWriteParams

	return &cli.Command{
		Name:    "write",
		Summary: "Capture a directory's metadata into an archive",
		Usage:   "darkroom snapshot write <directory> [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("snapshot write", &params)
		},
		Examples: []cli.Example{
			{
				Description: "Snapshot a photo library into the default directory",
				Command:     "darkroom snapshot write photos/",
			},
			{
				Description: "Write the archive to an explicit path",
				Command:     "darkroom snapshot write photos/ --output photos.snap",
			},
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: darkroom snapshot write <directory>")
			}
			root := args[0]
			info, err := os.Stat(root)
			if err != nil {
				return err
			}
			if !info.IsDir() {
				return fmt.Errorf("%s is not a directory", root)
			}

			return withProcessor("snapshot write", &params.ToolOptions, func(r run) error {
				extensions := params.Extensions
				if len(extensions) == 0 {
					extensions = r.cfg.Scan.Extensions
				}
				files, err := metadata.ListFiles(root, params.Recursive, extensions)
				if err != nil {
					return err
				}
				if len(files) == 0 {
					return fmt.Errorf("no matching files under %s", root)
				}

				outputPath := params.Output
				if outputPath == "" {
					if err := r.cfg.EnsurePaths(); err != nil {
						return err
					}
					outputPath = filepath.Join(r.cfg.Snapshot.Directory, defaultArchiveName(root))
				}

				stop := r.processor.EnsureSession()
				defer stop()

				manifest, err := snapshot.Write(r.ctx, r.processor.Client(), root, files, outputPath)
				if err != nil {
					return err
				}

				summary := snapshotWriteSummary{Archive: outputPath, Files: len(manifest.Entries)}
				for _, entry := range manifest.Entries {
					summary.RawSize += entry.RawSize
					summary.StoredSize += entry.StoredSize
				}

				if done, err := params.EmitJSON(summary); done {
					return err
				}
				fmt.Fprintf(os.Stdout, "Snapshot written to %s\n", outputPath)
				fmt.Fprintf(os.Stdout, "  Files: %d\n", summary.Files)
				fmt.Fprintf(os.Stdout, "  Metadata: %s (%s stored)\n",
					formatBytes(summary.RawSize), formatBytes(summary.StoredSize))
				return nil
			})
		},
	}
}

// defaultArchiveName builds a timestamped file name from the snapshot
// root, so repeated runs never clobber an earlier archive.
func defaultArchiveName(root string) string {
	base := "snapshot"
	if abs, err := filepath.Abs(root); err == nil {
		base = filepath.Base(abs)
	}
	return fmt.Sprintf("%s-%s.snap", base, time.Now().Format("20060102-150405"))
}

// snapshotInspectParams holds the parameters for "snapshot inspect".
type snapshotInspectParams struct {
	cli.JSONOutput
	Diag bool `flag:"diag" desc:"print the raw manifest in CBOR diagnostic notation"`
}

// snapshotEntryView and snapshotManifestView present a manifest for
// display. The stored manifest carries CBOR tags only; these mirror
// it with JSON tags and string-rendered digests.
type snapshotEntryView struct {
	Path        string `json:"path"`
	Digest      string `json:"digest"`
	RawSize     uint64 `json:"raw_size"`
	StoredSize  uint64 `json:"stored_size"`
	Compression string `json:"compression"`
}

type snapshotManifestView struct {
	Archive    string              `json:"archive"`
	CreatedAt  time.Time           `json:"created_at"`
	RawSize    uint64              `json:"raw_size"`
	StoredSize uint64              `json:"stored_size"`
	Entries    []snapshotEntryView `json:"entries"`
}

func snapshotInspectCommand() *cli.Command {
	var params snapshotInspectParams

	return &cli.Command{
		Name:    "inspect",
		Summary: "List an archive's contents without touching any file",
		Description: `Read an archive's manifest and print what it holds. No metadata
is decompressed and no image is opened, so inspect works without
the metadata tool installed.

With --diag the manifest is printed in CBOR diagnostic notation
exactly as stored, which shows the encoding itself rather than an
interpretation of it.`,
		Usage: "darkroom snapshot inspect <archive> [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("snapshot inspect", &params)
		},
		Examples: []cli.Example{
			{
				Description: "List archived files and sizes",
				Command:     "darkroom snapshot inspect photos.snap",
			},
			{
				Description: "Show the manifest encoding",
				Command:     "darkroom snapshot inspect photos.snap --diag",
			},
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: darkroom snapshot inspect <archive>")
			}
			if params.Diag && params.OutputJSON {
				return fmt.Errorf("--diag and --json are mutually exclusive")
			}
			path := args[0]

			if params.Diag {
				raw, err := snapshot.ReadManifestBytes(path)
				if err != nil {
					return err
				}
				notation, err := codec.Diagnose(raw)
				if err != nil {
					return err
				}
				fmt.Fprintln(os.Stdout, notation)
				return nil
			}

			archive, err := snapshot.Read(path)
			if err != nil {
				return err
			}

			view := snapshotManifestView{
				Archive:   path,
				CreatedAt: archive.Manifest.CreatedAt,
				Entries:   make([]snapshotEntryView, 0, len(archive.Manifest.Entries)),
			}
			for _, entry := range archive.Manifest.Entries {
				view.RawSize += entry.RawSize
				view.StoredSize += entry.StoredSize
				view.Entries = append(view.Entries, snapshotEntryView{
					Path:        entry.Path,
					Digest:      entry.Digest.String(),
					RawSize:     entry.RawSize,
					StoredSize:  entry.StoredSize,
					Compression: entry.Compression.String(),
				})
			}

			if done, err := params.EmitJSON(view); done {
				return err
			}

			fmt.Fprintf(os.Stdout, "Created: %s\n", view.CreatedAt.Format(time.RFC3339))
			fmt.Fprintf(os.Stdout, "Entries: %d, %s raw, %s stored\n\n",
				len(view.Entries), formatBytes(view.RawSize), formatBytes(view.StoredSize))

			tw := tabwriter.NewWriter(os.Stdout, 2, 0, 3, ' ', 0)
			fmt.Fprintf(tw, "PATH\tRAW\tSTORED\tCODEC\tDIGEST\n")
			for _, entry := range view.Entries {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					entry.Path,
					formatBytes(entry.RawSize),
					formatBytes(entry.StoredSize),
					entry.Compression,
					entry.Digest[:16])
			}
			return tw.Flush()
		},
	}
}

// snapshotVerifyParams holds the parameters for "snapshot verify".
type snapshotVerifyParams struct {
	cli.JSONOutput
}

// snapshotVerifyReport is the verify result, also emitted with --json.
type snapshotVerifyReport struct {
	Archive  string   `json:"archive"`
	Entries  int      `json:"entries"`
	Problems []string `json:"problems"`
	Ok       bool     `json:"ok"`
}

func snapshotVerifyCommand() *cli.Command {
	var params snapshotVerifyParams

	return &cli.Command{
		Name:    "verify",
		Summary: "Check every archived document against its digest",
		Description: `Decompress each entry and compare it against the digest recorded
when the archive was written. Damaged entries are listed and the
command exits 1; an intact archive exits 0.`,
		Usage: "darkroom snapshot verify <archive> [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("snapshot verify", &params)
		},
		Examples: []cli.Example{
			{
				Description: "Verify an archive before relying on it",
				Command:     "darkroom snapshot verify photos.snap",
			},
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: darkroom snapshot verify <archive>")
			}
			path := args[0]

			archive, err := snapshot.Read(path)
			if err != nil {
				return err
			}

			report := snapshotVerifyReport{
				Archive:  path,
				Entries:  len(archive.Manifest.Entries),
				Problems: []string{},
			}
			for i := range archive.Manifest.Entries {
				if _, err := archive.Payload(i); err != nil {
					report.Problems = append(report.Problems, err.Error())
				}
			}
			report.Ok = len(report.Problems) == 0

			if done, err := params.EmitJSON(report); done {
				if err != nil {
					return err
				}
			} else if report.Ok {
				fmt.Fprintf(os.Stdout, "%s: %d entries, all intact\n", path, report.Entries)
			} else {
				fmt.Fprintf(os.Stdout, "%s: %d of %d entries damaged:\n",
					path, len(report.Problems), report.Entries)
				for _, problem := range report.Problems {
					fmt.Fprintf(os.Stdout, "  %s\n", problem)
				}
			}

			if !report.Ok {
				return &cli.ExitError{Code: 1}
			}
			return nil
		},
	}
}

// snapshotRestoreParams holds the parameters for "snapshot restore".
type snapshotRestoreParams struct {
	cli.ToolOptions
	cli.JSONOutput
}

func snapshotRestoreCommand() *cli.Command {
	var params snapshotRestoreParams

	return &cli.Command{
		Name:    "restore",
		Summary: "Write archived metadata back onto files",
		Description: `Re-apply every document in the archive to the file at the same
relative path under the target directory. Entries fail
independently; a missing target or damaged payload is reported and
the rest of the archive is still restored. The command exits 1 if
any entry could not be restored.`,
		Usage: "darkroom snapshot restore <archive> <directory> [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("snapshot restore", &params)
		},
		Examples: []cli.Example{
			{
				Description: "Restore a library's metadata from an archive",
				Command:     "darkroom snapshot restore photos.snap photos/",
			},
		},
		Run: func(args []string) error {
			if len(args) != 2 {
				return fmt.Errorf("usage: darkroom snapshot restore <archive> <directory>")
			}
			root := args[1]
			info, err := os.Stat(root)
			if err != nil {
				return err
			}
			if !info.IsDir() {
				return fmt.Errorf("%s is not a directory", root)
			}

			return withProcessor("snapshot restore", &params.ToolOptions, func(r run) error {
				archive, err := snapshot.Read(args[0])
				if err != nil {
					return err
				}

				stop := r.processor.EnsureSession()
				defer stop()

				report, err := snapshot.Restore(r.ctx, r.processor.Client(), archive, root)
				if err != nil {
					return err
				}

				if done, err := params.EmitJSON(report); done {
					if err != nil {
						return err
					}
				} else {
					fmt.Fprintf(os.Stdout, "Restored metadata for %d of %d files.\n",
						report.Restored, len(archive.Manifest.Entries))
					for _, line := range report.Errors {
						fmt.Fprintf(os.Stdout, "  %s\n", line)
					}
				}

				if len(report.Errors) > 0 {
					return &cli.ExitError{Code: 1}
				}
				return nil
			})
		},
	}
}

// formatBytes formats a byte count as a human-readable string.
func formatBytes(n uint64) string {
	switch {
	case n >= 1<<30:
		return fmt.Sprintf("%.1f GB", float64(n)/float64(1<<30))
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/float64(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/float64(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

// Copyright 2026 The Darkroom Authors
// SPDX-License-Identifier: Apache-2.0

package metadata

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/darkroom-project/darkroom/lib/exiftool"
)

// BatchOp names a bulk operation.
type BatchOp string

const (
	// OpExtract reads each file's full metadata.
	OpExtract BatchOp = "extract"

	// OpRemove deletes tags from each file (all metadata when the
	// tag list is empty).
	OpRemove BatchOp = "remove"
)

// FileResult is one file's outcome in a batch run.
type FileResult struct {
	File     string        `json:"file"`
	Success  bool          `json:"success"`
	Error    string        `json:"error,omitempty"`
	Metadata exiftool.Tags `json:"metadata,omitempty"`
}

// BatchProcess applies op to every path and returns one result per
// file, in input order. Per-file failures (missing files, tool
// errors) land in that file's result; the batch keeps going. An
// unknown op yields an error entry per file rather than an abort, so
// a caller iterating results sees the same shape either way.
func (p *Processor) BatchProcess(ctx context.Context, paths []string, op BatchOp, tags []string) ([]FileResult, error) {
	results := make([]FileResult, 0, len(paths))

	if op != OpExtract && op != OpRemove {
		for _, path := range paths {
			results = append(results, FileResult{
				File:  path,
				Error: fmt.Sprintf("unknown operation %q", op),
			})
		}
		return results, nil
	}

	stop := p.EnsureSession()
	defer stop()

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		result := FileResult{File: path}
		switch op {
		case OpExtract:
			metadata, err := p.client.Metadata(ctx, path)
			if err != nil {
				result.Error = err.Error()
			} else {
				result.Success = true
				result.Metadata = metadata
			}
		case OpRemove:
			if err := p.client.RemoveMetadata(ctx, path, tags...); err != nil {
				result.Error = err.Error()
			} else {
				result.Success = true
			}
		}
		results = append(results, result)
	}
	return results, nil
}

// DefaultScanExtensions are the image types a metadata audit covers
// when the configuration does not override them.
var DefaultScanExtensions = []string{".jpg", ".jpeg", ".png", ".tiff", ".raw"}

// scanTagThreshold is the tag count at or below which a file is
// considered to have no real metadata: the tool synthesizes a couple
// of entries (source path, file type) even for a bare file.
const scanTagThreshold = 2

// ScanReport is the outcome of a ScanWithoutMetadata audit.
type ScanReport struct {
	Scanned int      `json:"scanned"`
	Flagged []string `json:"files_without_metadata"`
	Errors  int      `json:"errors"`
}

// ScanWithoutMetadata walks root for image files and reports the ones
// carrying no metadata beyond tool-synthesized entries. A nil
// extension list scans DefaultScanExtensions. Unreadable files are
// counted, not fatal.
func (p *Processor) ScanWithoutMetadata(ctx context.Context, root string, extensions []string) (ScanReport, error) {
	if len(extensions) == 0 {
		extensions = DefaultScanExtensions
	}
	candidates, err := ListFiles(root, true, extensions)
	if err != nil {
		return ScanReport{}, err
	}

	stop := p.EnsureSession()
	defer stop()

	report := ScanReport{Scanned: len(candidates)}
	for _, path := range candidates {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		tags, err := p.client.Metadata(ctx, path)
		if err != nil {
			report.Errors++
			p.logger.Warn("scan skipping unreadable file", "file", path, "err", err)
			continue
		}
		if len(tags) <= scanTagThreshold {
			report.Flagged = append(report.Flagged, path)
		}
	}
	return report, nil
}

// ListFiles returns the regular files under root that pass the
// extension filter, sorted for deterministic run order. An empty
// filter admits every file.
func ListFiles(root string, recursive bool, extensions []string) ([]string, error) {
	normalized := make([]string, 0, len(extensions))
	for _, extension := range extensions {
		normalized = append(normalized, strings.ToLower(extension))
	}
	admit := func(path string) bool {
		if len(normalized) == 0 {
			return true
		}
		return slices.Contains(normalized, strings.ToLower(filepath.Ext(path)))
	}

	var files []string
	if recursive {
		err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if entry.Type().IsRegular() && admit(path) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	} else {
		entries, err := os.ReadDir(root)
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			if entry.Type().IsRegular() && admit(entry.Name()) {
				files = append(files, filepath.Join(root, entry.Name()))
			}
		}
	}

	sort.Strings(files)
	return files, nil
}

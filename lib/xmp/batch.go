// Copyright 2026 The Darkroom Authors
// SPDX-License-Identifier: Apache-2.0

package xmp

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
)

// Record is one file's extraction result.
type Record struct {
	File   string `json:"file"`
	XML    string `json:"xmp_xml"`
	Fields Fields `json:"fields"`
}

// BatchSummary counts the outcome of a directory extraction.
type BatchSummary struct {
	TotalFiles int `json:"total_files"`
	Processed  int `json:"processed"`
	Skipped    int `json:"skipped"`
	Errors     int `json:"errors"`
}

// BatchExtract pulls XMP out of every candidate file under root and
// returns one record per file that carried any. Files whose extension
// is not in extensions are not candidates; an empty extensions list
// admits every regular file. Files with no XMP count as skipped;
// extraction failures count as errors and do not stop the batch.
// Field parse failures degrade to a record with empty fields, since
// the raw XML is still worth returning.
func BatchExtract(ctx context.Context, client ToolClient, root string, recursive bool, extensions []string) ([]Record, BatchSummary, error) {
	candidates, err := listCandidates(root, recursive, extensions)
	if err != nil {
		return nil, BatchSummary{}, err
	}

	var records []Record
	summary := BatchSummary{TotalFiles: len(candidates)}
	for _, path := range candidates {
		if err := ctx.Err(); err != nil {
			return records, summary, err
		}

		document, err := ExtractXML(ctx, client, path)
		if err != nil {
			summary.Errors++
			continue
		}
		if strings.TrimSpace(document) == "" {
			summary.Skipped++
			continue
		}

		fields, err := ParseFields(document)
		if err != nil {
			fields = Fields{}
		}
		records = append(records, Record{File: path, XML: document, Fields: fields})
		summary.Processed++
	}
	return records, summary, nil
}

// listCandidates returns the regular files under root that pass the
// extension filter, sorted for deterministic batch order.
func listCandidates(root string, recursive bool, extensions []string) ([]string, error) {
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

	var candidates []string
	if recursive {
		err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if entry.Type().IsRegular() && admit(path) {
				candidates = append(candidates, path)
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
				candidates = append(candidates, filepath.Join(root, entry.Name()))
			}
		}
	}

	sort.Strings(candidates)
	return candidates, nil
}

// Copyright 2026 The Darkroom Authors
// SPDX-License-Identifier: Apache-2.0

package metadata

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/darkroom-project/darkroom/lib/preset"
)

// SyncOptions selects the rules and scope of a sync run. Exactly one
// of Preset or ArgsFile must be set.
type SyncOptions struct {
	// Preset is a parsed rule file; its extension list decides which
	// files the run touches.
	Preset *preset.Preset

	// ArgsFile is a raw tool args file (-@ format) applied to every
	// file admitted by Extensions.
	ArgsFile string

	// Extensions filters files when running from an args file, which
	// carries no extension list of its own. Empty admits every file.
	Extensions []string

	// Recursive descends into subdirectories.
	Recursive bool
}

// SyncSummary counts a sync run's outcome. Categories are disjoint:
// TotalFiles = Processed + Warnings + Errors + Skipped.
type SyncSummary struct {
	TotalFiles int `json:"total_files"`
	Processed  int `json:"processed"`
	Warnings   int `json:"warnings"`
	Errors     int `json:"errors"`
	Skipped    int `json:"skipped"`
}

// SyncResult lists each file by outcome: cleanly processed, processed
// with tool warnings, failed (as "path: message"), or skipped by the
// rule's extension filter.
type SyncResult struct {
	Processed []string    `json:"processed"`
	Warnings  []string    `json:"warnings"`
	Errors    []string    `json:"errors"`
	Skipped   []string    `json:"skipped"`
	Summary   SyncSummary `json:"summary"`
}

// Sync applies the rule set to every file under root, using one
// persistent session for the whole run. Per-file failures are
// recorded and the run continues; only rule or walk problems abort.
func (p *Processor) Sync(ctx context.Context, root string, options SyncOptions) (*SyncResult, error) {
	args, matches, err := resolveRules(options)
	if err != nil {
		return nil, err
	}

	files, err := ListFiles(root, options.Recursive, nil)
	if err != nil {
		return nil, err
	}

	stop := p.EnsureSession()
	defer stop()

	result := &SyncResult{}
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if !matches(path) {
			result.Skipped = append(result.Skipped, path)
			continue
		}

		commandResult, err := p.client.Execute(ctx, append(append([]string{}, args...), path)...)
		switch {
		case err != nil:
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", path, err))
		case strings.Contains(strings.ToLower(commandResult.Stderr), "warning"):
			result.Warnings = append(result.Warnings, path)
		default:
			result.Processed = append(result.Processed, path)
		}
	}

	result.Summary = SyncSummary{
		TotalFiles: len(files),
		Processed:  len(result.Processed),
		Warnings:   len(result.Warnings),
		Errors:     len(result.Errors),
		Skipped:    len(result.Skipped),
	}
	return result, nil
}

// resolveRules turns the options into an argument list and a file
// matcher.
func resolveRules(options SyncOptions) ([]string, func(string) bool, error) {
	switch {
	case options.Preset != nil && options.ArgsFile != "":
		return nil, nil, errors.New("sync takes a preset or an args file, not both")

	case options.Preset != nil:
		if err := options.Preset.Validate(); err != nil {
			return nil, nil, err
		}
		return options.Preset.Args(), options.Preset.Matches, nil

	case options.ArgsFile != "":
		args, err := preset.LoadArgsFile(options.ArgsFile)
		if err != nil {
			return nil, nil, err
		}
		if len(args) == 0 {
			return nil, nil, fmt.Errorf("args file %s contains no arguments", options.ArgsFile)
		}
		filter := &preset.Preset{Extensions: options.Extensions}
		return args, filter.Matches, nil

	default:
		return nil, nil, errors.New("sync needs a preset or an args file")
	}
}

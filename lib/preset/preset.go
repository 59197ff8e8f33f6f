// Copyright 2026 The Darkroom Authors
// SPDX-License-Identifier: Apache-2.0

// Package preset loads sync rule files: declarative descriptions of
// the tag assignments and removals a sync run applies to matching
// files. Rule files are JSON with comments (JSONC), so they can be
// annotated and checked into image archives next to the files they
// govern.
package preset

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tidwall/jsonc"
)

// Preset is one sync rule file.
type Preset struct {
	// Description is free-form operator documentation.
	Description string `json:"description,omitempty"`

	// Assign maps tag names (optionally group-prefixed) to the values
	// a sync run writes.
	Assign map[string]string `json:"assign,omitempty"`

	// Remove lists tags a sync run deletes before assigning.
	Remove []string `json:"remove,omitempty"`

	// Extensions restricts the preset to files with these extensions
	// (".jpg", case-insensitive). Empty means every file.
	Extensions []string `json:"extensions,omitempty"`
}

// Load reads and validates a preset file.
func Load(path string) (*Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading preset: %w", err)
	}
	preset, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("preset %s: %w", path, err)
	}
	return preset, nil
}

// Parse decodes and validates preset content. Unknown keys are
// rejected so a misspelled "assign" cannot silently turn a preset
// into a no-op.
func Parse(data []byte) (*Preset, error) {
	var preset Preset
	decoder := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&preset); err != nil {
		return nil, fmt.Errorf("parsing: %w", err)
	}
	if err := preset.Validate(); err != nil {
		return nil, err
	}
	return &preset, nil
}

// Validate reports every problem with the preset at once.
func (p *Preset) Validate() error {
	var errs []error
	if len(p.Assign) == 0 && len(p.Remove) == 0 {
		errs = append(errs, errors.New("preset assigns or removes nothing"))
	}
	for tag, value := range p.Assign {
		if strings.TrimSpace(tag) == "" {
			errs = append(errs, errors.New("assign contains an empty tag name"))
		}
		if strings.ContainsAny(tag, "=\n") {
			errs = append(errs, fmt.Errorf("assign tag %q contains reserved characters", tag))
		}
		if strings.ContainsRune(value, '\n') {
			errs = append(errs, fmt.Errorf("assign value for %q contains a newline, which cannot cross the tool protocol", tag))
		}
	}
	for _, tag := range p.Remove {
		if strings.TrimSpace(tag) == "" {
			errs = append(errs, errors.New("remove contains an empty tag name"))
		}
	}
	for _, extension := range p.Extensions {
		if !strings.HasPrefix(extension, ".") {
			errs = append(errs, fmt.Errorf("extension %q must start with a dot", extension))
		}
	}
	return errors.Join(errs...)
}

// Matches reports whether the preset applies to the file, by
// extension.
func (p *Preset) Matches(path string) bool {
	if len(p.Extensions) == 0 {
		return true
	}
	extension := strings.ToLower(filepath.Ext(path))
	for _, candidate := range p.Extensions {
		if strings.ToLower(candidate) == extension {
			return true
		}
	}
	return false
}

// Args renders the preset as a tool argument list: removals first,
// then assignments in sorted tag order, so a preset can clear a group
// and re-assign specific tags in one invocation.
func (p *Preset) Args() []string {
	args := make([]string, 0, len(p.Assign)+len(p.Remove))
	for _, tag := range p.Remove {
		args = append(args, "-"+tag+"=")
	}
	tags := make([]string, 0, len(p.Assign))
	for tag := range p.Assign {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	for _, tag := range tags {
		args = append(args, fmt.Sprintf("-%s=%s", tag, p.Assign[tag]))
	}
	return args
}

// LoadArgsFile reads a raw tool args file: one argument per line,
// blank lines and #-comment lines skipped. This is the tool's own -@
// format, so arg files written for direct tool use work unchanged in
// sync runs.
func LoadArgsFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading args file: %w", err)
	}
	var args []string
	for _, line := range strings.Split(string(data), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		args = append(args, trimmed)
	}
	return args, nil
}

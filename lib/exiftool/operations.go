// Copyright 2026 The Darkroom Authors
// SPDX-License-Identifier: Apache-2.0

package exiftool

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
)

// Tags holds one file's metadata as the tool reports it. Keys are
// group-prefixed tag names ("EXIF:Make", "IPTC:Keywords"); values are
// strings, numbers, or arrays exactly as encoded in the tool's JSON
// output.
type Tags map[string]any

// Text returns the first present key's value formatted as a string,
// or "" when none of the keys exist.
func (t Tags) Text(keys ...string) string {
	for _, key := range keys {
		value, ok := t[key]
		if !ok {
			continue
		}
		if text, isString := value.(string); isString {
			return text
		}
		return fmt.Sprintf("%v", value)
	}
	return ""
}

// Int returns the first present key's value as an integer. JSON
// numbers decode as float64; string values are parsed.
func (t Tags) Int(keys ...string) (int, bool) {
	for _, key := range keys {
		switch value := t[key].(type) {
		case float64:
			return int(value), true
		case string:
			parsed, err := strconv.Atoi(strings.TrimSpace(value))
			if err == nil {
				return parsed, true
			}
		}
	}
	return 0, false
}

// Metadata reads all of a file's metadata as group-prefixed tags.
func (c *Client) Metadata(ctx context.Context, path string) (Tags, error) {
	if err := requireFile(path); err != nil {
		return nil, err
	}
	result, err := c.Execute(ctx, "-j", "-G", path)
	if err != nil {
		return nil, err
	}
	return parseTags(result.Stdout, path)
}

// parseTags decodes the tool's JSON output, an array with one object
// per file. Empty output (a file with no readable metadata) yields an
// empty tag set rather than an error.
func parseTags(output, path string) (Tags, error) {
	trimmed := strings.TrimSpace(output)
	if trimmed == "" {
		return Tags{}, nil
	}
	var records []Tags
	if err := json.Unmarshal([]byte(trimmed), &records); err != nil {
		return nil, fmt.Errorf("metadata for %s is not valid JSON (%v): %w", path, err, ErrExecution)
	}
	if len(records) == 0 {
		return Tags{}, nil
	}
	return records[0], nil
}

// SetMetadata writes the given tag assignments to the file. Keys may
// carry group prefixes ("XMP:Title") or be bare tag names. A nil or
// empty map is a no-op.
func (c *Client) SetMetadata(ctx context.Context, path string, tags map[string]string) error {
	if err := requireFile(path); err != nil {
		return err
	}
	if len(tags) == 0 {
		return nil
	}

	keys := make([]string, 0, len(tags))
	for key := range tags {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	args := make([]string, 0, len(tags)+1)
	for _, key := range keys {
		args = append(args, fmt.Sprintf("-%s=%s", key, tags[key]))
	}
	args = append(args, path)
	_, err := c.Execute(ctx, args...)
	return err
}

// RemoveMetadata deletes the named tags from the file, or all
// metadata when no tags are given. Removing a tag the file does not
// carry succeeds: the tool treats absent tags as already removed, so
// the operation is idempotent.
func (c *Client) RemoveMetadata(ctx context.Context, path string, tags ...string) error {
	if err := requireFile(path); err != nil {
		return err
	}

	args := make([]string, 0, len(tags)+1)
	if len(tags) == 0 {
		args = append(args, "-all=")
	} else {
		for _, tag := range tags {
			args = append(args, "-"+tag+"=")
		}
	}
	args = append(args, path)
	_, err := c.Execute(ctx, args...)
	return err
}

// RawXML returns the file's metadata as an RDF/XML document, the
// tool's lossless export format.
func (c *Client) RawXML(ctx context.Context, path string) (string, error) {
	if err := requireFile(path); err != nil {
		return "", err
	}
	result, err := c.Execute(ctx, "-X", path)
	if err != nil {
		return "", err
	}
	return result.Stdout, nil
}

// CopyMetadata copies all tags from the source file onto the target
// file. Both files must already exist.
func (c *Client) CopyMetadata(ctx context.Context, source, target string) error {
	if err := requireFile(source); err != nil {
		return err
	}
	if err := requireFile(target); err != nil {
		return err
	}
	_, err := c.Execute(ctx, "-TagsFromFile", source, target)
	return err
}

// RestoreFromXML writes a previously exported RDF/XML document back
// onto the file, restoring every tag group the export captured. The
// document is staged in a temporary file because the tool reads
// restore sources from disk.
func (c *Client) RestoreFromXML(ctx context.Context, xmlDocument, path string) error {
	if err := requireFile(path); err != nil {
		return err
	}

	tempFile, err := os.CreateTemp("", "darkroom-restore-*.xml")
	if err != nil {
		return fmt.Errorf("staging restore document: %w", err)
	}
	tempPath := tempFile.Name()
	defer os.Remove(tempPath)

	if _, err := tempFile.WriteString(xmlDocument); err != nil {
		tempFile.Close()
		return fmt.Errorf("staging restore document: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("staging restore document: %w", err)
	}

	_, err = c.Execute(ctx, "-TagsFromFile", tempPath, "-all:all", path)
	return err
}

// requireFile verifies the operand exists before any command is
// spawned, so a missing file is always reported as such rather than
// surfacing as a tool error.
func requireFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%s: %w", path, ErrFileMissing)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory: %w", path, ErrFileMissing)
	}
	return nil
}

// Copyright 2026 The Darkroom Authors
// SPDX-License-Identifier: Apache-2.0

// Package metadata implements the workflow layer over the exiftool
// client: condensed per-file summaries, bulk extract/remove runs,
// audits for files missing descriptive metadata, and preset-driven
// sync. Multi-file operations enter a persistent session for their
// duration so the tool is spawned once per run, not once per file.
package metadata

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/darkroom-project/darkroom/lib/exiftool"
)

// Processor runs metadata workflows against one exiftool client.
type Processor struct {
	client *exiftool.Client
	logger *slog.Logger
}

// NewProcessor wraps a client. A nil logger falls back to
// slog.Default.
func NewProcessor(client *exiftool.Client, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{client: client, logger: logger}
}

// Client returns the underlying exiftool client.
func (p *Processor) Client() *exiftool.Client {
	return p.client
}

// FileSummary is the condensed, human-oriented view of a file's tags.
// Fields the file does not carry are omitted; FileSize always has a
// value so listings stay aligned.
type FileSummary struct {
	FileName  string `json:"file_name"`
	FileSize  string `json:"file_size"`
	Width     int    `json:"width,omitempty"`
	Height    int    `json:"height,omitempty"`
	Make      string `json:"camera_make,omitempty"`
	Model     string `json:"camera_model,omitempty"`
	DateTaken string `json:"date_taken,omitempty"`
	Latitude  string `json:"gps_latitude,omitempty"`
	Longitude string `json:"gps_longitude,omitempty"`
}

// Summary reads the file's metadata and condenses it. Dimension tags
// prefer the File group and fall back to EXIF, since not every format
// populates both.
func (p *Processor) Summary(ctx context.Context, path string) (FileSummary, error) {
	tags, err := p.client.Metadata(ctx, path)
	if err != nil {
		return FileSummary{}, err
	}
	return summarize(path, tags), nil
}

func summarize(path string, tags exiftool.Tags) FileSummary {
	summary := FileSummary{
		FileName:  filepath.Base(path),
		FileSize:  "Unknown",
		Make:      tags.Text("EXIF:Make"),
		Model:     tags.Text("EXIF:Model"),
		DateTaken: tags.Text("EXIF:DateTimeOriginal", "EXIF:DateTime"),
		Latitude:  tags.Text("EXIF:GPSLatitude", "Composite:GPSLatitude"),
		Longitude: tags.Text("EXIF:GPSLongitude", "Composite:GPSLongitude"),
	}
	if size := tags.Text("File:FileSize"); size != "" {
		summary.FileSize = size
	}
	if width, ok := tags.Int("File:ImageWidth", "EXIF:ImageWidth"); ok {
		summary.Width = width
	}
	if height, ok := tags.Int("File:ImageHeight", "EXIF:ImageHeight"); ok {
		summary.Height = height
	}
	return summary
}

// BackupXML exports the file's full metadata as RDF/XML, the format
// RestoreXML accepts.
func (p *Processor) BackupXML(ctx context.Context, path string) (string, error) {
	return p.client.RawXML(ctx, path)
}

// RestoreXML writes a previously exported document back onto the
// file.
func (p *Processor) RestoreXML(ctx context.Context, document, path string) error {
	return p.client.RestoreFromXML(ctx, document, path)
}

// EnsureSession enters persistent mode for the duration of a
// multi-file run when the client is not already in it, returning the
// matching cleanup. Failure to start a session is not fatal: the run
// falls back to direct commands, just slower.
func (p *Processor) EnsureSession() func() {
	if p.client.State() != exiftool.StateDirect {
		return func() {}
	}
	if err := p.client.StartSession(); err != nil {
		p.logger.Warn("falling back to direct commands", "err", err)
		return func() {}
	}
	return func() {
		if err := p.client.StopSession(); err != nil {
			p.logger.Warn("stopping run session", "err", err)
		}
	}
}

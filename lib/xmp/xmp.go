// Copyright 2026 The Darkroom Authors
// SPDX-License-Identifier: Apache-2.0

// Package xmp reads XMP metadata out of image files. The fast path
// scans the file bytes for an embedded xpacket envelope without
// spawning anything; formats that carry no embedded packet fall back
// to the tool's RDF/XML export.
package xmp

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/darkroom-project/darkroom/lib/exiftool"
)

const (
	packetBegin = "<?xpacket begin="
	packetEnd   = "<?xpacket end="
)

// ExtractPacket scans the file's bytes for an embedded XMP packet and
// returns it verbatim, header and trailer included. Returns "" when
// the file carries no packet. Pure file I/O; the tool is never
// invoked.
func ExtractPacket(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%s: %w", path, exiftool.ErrFileMissing)
		}
		return "", fmt.Errorf("reading %s: %w", path, err)
	}

	begin := bytes.Index(data, []byte(packetBegin))
	if begin < 0 {
		return "", nil
	}
	rest := data[begin:]
	endMarker := bytes.Index(rest, []byte(packetEnd))
	if endMarker < 0 {
		return "", nil
	}
	closing := bytes.Index(rest[endMarker:], []byte("?>"))
	if closing < 0 {
		return "", nil
	}
	return string(rest[:endMarker+closing+len("?>")]), nil
}

// ToolClient is the slice of the exiftool client this package needs
// for files without an embedded packet.
type ToolClient interface {
	RawXML(ctx context.Context, path string) (string, error)
}

// ExtractXML returns the file's XMP as an XML document: the embedded
// packet when one exists, otherwise the tool's RDF/XML export, which
// covers formats (and sidecar-less workflows) that store metadata
// outside an xpacket envelope.
func ExtractXML(ctx context.Context, client ToolClient, path string) (string, error) {
	packet, err := ExtractPacket(path)
	if err != nil {
		return "", err
	}
	if packet != "" {
		return packet, nil
	}
	return client.RawXML(ctx, path)
}

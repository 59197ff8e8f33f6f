// Copyright 2026 The Darkroom Authors
// SPDX-License-Identifier: Apache-2.0

// Package snapshot packs the metadata of many files into a single
// archive and restores it later.
//
// A snapshot holds one RDF/XML metadata document per file, captured
// through the tool's XML export, each payload independently
// compressed and digested. The archive layout is:
//
//	magic "DKSNAP1\n"
//	uint32 big-endian manifest length
//	CBOR manifest (Manifest)
//	payloads, concatenated in manifest order
//
// Digests are per payload, so a damaged archive reports exactly which
// entries are unreadable instead of failing wholesale.
package snapshot

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/darkroom-project/darkroom/lib/codec"
)

// magic identifies snapshot archives; the digit is the format
// version.
const magic = "DKSNAP1\n"

// maxManifestSize bounds the manifest allocation when reading, so a
// corrupt length prefix cannot demand gigabytes.
const maxManifestSize = 16 << 20

// Entry describes one archived metadata document.
type Entry struct {
	// Path is the file's path relative to the snapshot root, always
	// forward-slashed. Never absolute, never escaping the root.
	Path string `cbor:"path"`

	// Digest is the keyed BLAKE3 digest of the uncompressed document.
	Digest Digest `cbor:"digest"`

	// RawSize and StoredSize are the document's uncompressed and
	// as-stored byte counts.
	RawSize    uint64 `cbor:"raw_size"`
	StoredSize uint64 `cbor:"stored_size"`

	// Compression is the algorithm the payload is stored with.
	Compression CompressionTag `cbor:"compression"`
}

// Manifest is the archive's table of contents. Payloads follow the
// encoded manifest in entry order.
type Manifest struct {
	CreatedAt time.Time `cbor:"created_at"`
	Entries   []Entry   `cbor:"entries"`
}

// Exporter captures a file's complete metadata as an RDF/XML
// document. *exiftool.Client satisfies it.
type Exporter interface {
	RawXML(ctx context.Context, path string) (string, error)
}

// Write captures the metadata of every path and writes an archive to
// outputPath, returning the manifest it stored. Paths must lie under
// root; each is recorded under its root-relative name so the archive
// can be restored into a different directory.
//
// The first capture failure aborts the whole write: a snapshot is a
// restore point, and one with holes is not. The archive is assembled
// in a temporary file and renamed into place, so outputPath never
// holds a partial archive.
func Write(ctx context.Context, exporter Exporter, root string, paths []string, outputPath string) (*Manifest, error) {
	manifest := &Manifest{CreatedAt: time.Now().UTC()}
	var payloads bytes.Buffer

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		relative, err := relativePath(root, path)
		if err != nil {
			return nil, err
		}
		document, err := exporter.RawXML(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("capturing metadata for %s: %w", path, err)
		}

		raw := []byte(document)
		stored, tag, err := CompressAuto(raw)
		if err != nil {
			return nil, fmt.Errorf("compressing %s: %w", path, err)
		}

		manifest.Entries = append(manifest.Entries, Entry{
			Path:        relative,
			Digest:      DigestPayload(raw),
			RawSize:     uint64(len(raw)),
			StoredSize:  uint64(len(stored)),
			Compression: tag,
		})
		payloads.Write(stored)
	}

	encoded, err := codec.Marshal(manifest)
	if err != nil {
		return nil, fmt.Errorf("encoding manifest: %w", err)
	}

	var archive bytes.Buffer
	archive.Grow(len(magic) + 4 + len(encoded) + payloads.Len())
	archive.WriteString(magic)
	var length [4]byte
	binary.BigEndian.PutUint32(length[:], uint32(len(encoded)))
	archive.Write(length[:])
	archive.Write(encoded)
	archive.Write(payloads.Bytes())

	if err := writeFileAtomic(outputPath, archive.Bytes()); err != nil {
		return nil, err
	}
	return manifest, nil
}

// relativePath resolves path against root and rejects results that
// escape it. Stored paths use forward slashes regardless of the
// system the archive was written on.
func relativePath(root, path string) (string, error) {
	relative, err := filepath.Rel(root, path)
	if err != nil {
		return "", fmt.Errorf("resolving %s against snapshot root: %w", path, err)
	}
	if relative == ".." || strings.HasPrefix(relative, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s lies outside snapshot root %s", path, root)
	}
	return filepath.ToSlash(relative), nil
}

// writeFileAtomic writes data to path through a temporary file in the
// same directory: write, fsync, close, rename. Readers never see a
// partial file.
func writeFileAtomic(path string, data []byte) error {
	temporaryPath := path + ".tmp"

	file, err := os.OpenFile(temporaryPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("creating temporary archive: %w", err)
	}
	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("writing temporary archive: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("syncing temporary archive: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("closing temporary archive: %w", err)
	}
	if err := os.Rename(temporaryPath, path); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("renaming archive into place: %w", err)
	}

	// Sync the parent directory so the rename survives power loss.
	if parent, err := os.Open(filepath.Dir(path)); err == nil {
		parent.Sync()
		parent.Close()
	}
	return nil
}

// Copyright 2026 The Darkroom Authors
// SPDX-License-Identifier: Apache-2.0

package snapshot

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/darkroom-project/darkroom/lib/codec"
)

// Archive is a snapshot archive loaded into memory. Payloads stay in
// their stored (compressed) form until requested.
type Archive struct {
	Manifest Manifest

	payloads []byte
	offsets  []int
}

// Read loads and validates the framing of an archive: magic, manifest
// length, manifest decode, and the payload region summing to exactly
// the stored sizes the manifest declares. Payload contents are not
// verified here; that is per-entry work done by Payload and Verify.
func Read(path string) (*Archive, error) {
	manifestBytes, payloads, err := readSections(path)
	if err != nil {
		return nil, err
	}

	archive := &Archive{payloads: payloads}
	if err := codec.Unmarshal(manifestBytes, &archive.Manifest); err != nil {
		return nil, fmt.Errorf("%s: decoding manifest: %w", path, err)
	}

	var total uint64
	archive.offsets = make([]int, len(archive.Manifest.Entries))
	for i, entry := range archive.Manifest.Entries {
		archive.offsets[i] = int(total)
		total += entry.StoredSize
	}
	if total != uint64(len(archive.payloads)) {
		return nil, fmt.Errorf("%s: payload region is %d bytes, manifest declares %d", path, len(archive.payloads), total)
	}
	return archive, nil
}

// ReadManifestBytes returns the archive's manifest region exactly as
// stored, without decoding it. Callers that want a schema-free view of
// the manifest (diagnostic notation, hashing) use this; Read is the
// typed path.
func ReadManifestBytes(path string) ([]byte, error) {
	manifestBytes, _, err := readSections(path)
	return manifestBytes, err
}

// readSections loads an archive file and splits it into the raw
// manifest bytes and the payload region, validating the framing.
func readSections(path string) (manifest, payloads []byte, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading archive: %w", err)
	}

	if !bytes.HasPrefix(data, []byte(magic)) {
		return nil, nil, fmt.Errorf("%s is not a snapshot archive", path)
	}
	data = data[len(magic):]

	if len(data) < 4 {
		return nil, nil, fmt.Errorf("%s: archive truncated before manifest length", path)
	}
	manifestLength := int(binary.BigEndian.Uint32(data))
	data = data[4:]
	if manifestLength > maxManifestSize {
		return nil, nil, fmt.Errorf("%s: manifest length %d exceeds limit %d", path, manifestLength, maxManifestSize)
	}
	if manifestLength > len(data) {
		return nil, nil, fmt.Errorf("%s: archive truncated inside manifest", path)
	}
	return data[:manifestLength], data[manifestLength:], nil
}

// Payload decompresses and digest-checks entry i, returning the
// uncompressed RDF/XML document.
func (a *Archive) Payload(i int) ([]byte, error) {
	if i < 0 || i >= len(a.Manifest.Entries) {
		return nil, fmt.Errorf("no entry %d in archive of %d entries", i, len(a.Manifest.Entries))
	}
	entry := a.Manifest.Entries[i]

	stored := a.payloads[a.offsets[i] : a.offsets[i]+int(entry.StoredSize)]
	document, err := Decompress(stored, entry.Compression, int(entry.RawSize))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", entry.Path, err)
	}
	if DigestPayload(document) != entry.Digest {
		return nil, fmt.Errorf("%s: digest mismatch, stored document is corrupt", entry.Path)
	}
	return document, nil
}

// Verify decompresses and digest-checks every entry, returning all
// failures joined. A nil result means the whole archive is intact.
func (a *Archive) Verify() error {
	var problems []error
	for i := range a.Manifest.Entries {
		if _, err := a.Payload(i); err != nil {
			problems = append(problems, err)
		}
	}
	return errors.Join(problems...)
}

// Verify reads the archive at path and checks every entry.
func Verify(path string) error {
	archive, err := Read(path)
	if err != nil {
		return err
	}
	return archive.Verify()
}

// Restorer writes a metadata document back onto a file. It is
// implemented by *exiftool.Client.
type Restorer interface {
	RestoreFromXML(ctx context.Context, xmlDocument, path string) error
}

// RestoreReport summarizes a restore pass. Errors holds one message
// per entry that could not be restored.
type RestoreReport struct {
	Restored int      `json:"restored"`
	Errors   []string `json:"errors,omitempty"`
}

// Restore re-applies every archived document to the matching file
// under root. Entries fail independently: a corrupt payload or a
// missing target file is reported and the pass continues. Only
// context cancellation aborts the pass.
func Restore(ctx context.Context, restorer Restorer, archive *Archive, root string) (*RestoreReport, error) {
	report := &RestoreReport{}
	for i, entry := range archive.Manifest.Entries {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		target, err := targetPath(root, entry.Path)
		if err != nil {
			report.Errors = append(report.Errors, err.Error())
			continue
		}
		document, err := archive.Payload(i)
		if err != nil {
			report.Errors = append(report.Errors, err.Error())
			continue
		}
		if err := restorer.RestoreFromXML(ctx, string(document), target); err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", entry.Path, err))
			continue
		}
		report.Restored++
	}
	return report, nil
}

// targetPath joins an entry path to the restore root, rejecting
// entries that would write outside it. Archives are data from disk
// and get no trust: absolute paths and ".." segments are refused even
// though Write never produces them.
func targetPath(root, entryPath string) (string, error) {
	if entryPath == "" || strings.HasPrefix(entryPath, "/") {
		return "", fmt.Errorf("invalid entry path %q", entryPath)
	}
	for _, segment := range strings.Split(entryPath, "/") {
		if segment == ".." {
			return "", fmt.Errorf("entry path %q escapes the restore root", entryPath)
		}
	}
	return filepath.Join(root, filepath.FromSlash(entryPath)), nil
}

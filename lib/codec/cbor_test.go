// Copyright 2026 The Darkroom Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"strings"
	"testing"
)

// sampleEntry mirrors the shape of internal archive records: cbor
// struct tags (the convention for purely-internal types), strings,
// and unsigned sizes.
type sampleEntry struct {
	Path    string `cbor:"path"`
	Note    string `cbor:"note,omitempty"`
	RawSize uint64 `cbor:"raw_size"`
}

// sampleReport uses json struct tags (the convention for types that
// serve both JSON and CBOR, relying on fxamacker's fallback).
type sampleReport struct {
	Version  int    `json:"version"`
	Restored int    `json:"restored"`
	Name     string `json:"name"`
}

func TestMarshalUnmarshalRoundtrip(t *testing.T) {
	original := sampleEntry{
		Path:    "photos/harbor.jpg",
		Note:    "captured before sync",
		RawSize: 48213,
	}

	data, err := Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("Marshal produced empty output")
	}

	var decoded sampleEntry
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded != original {
		t.Errorf("roundtrip mismatch: got %+v, want %+v", decoded, original)
	}
}

func TestMarshalDeterministic(t *testing.T) {
	entry := sampleEntry{
		Path:    "photos/dune.jpg",
		Note:    "x",
		RawSize: 7,
	}

	first, err := Marshal(entry)
	if err != nil {
		t.Fatalf("first Marshal: %v", err)
	}
	second, err := Marshal(entry)
	if err != nil {
		t.Fatalf("second Marshal: %v", err)
	}

	if !bytes.Equal(first, second) {
		t.Errorf("deterministic encoding violated: %x != %x", first, second)
	}
}

func TestJSONTagFallback(t *testing.T) {
	// Types with json tags (no cbor tags) should encode/decode
	// correctly through our modes, using json tag names as CBOR
	// map keys.
	original := sampleReport{Version: 1, Restored: 12, Name: "nightly"}

	data, err := Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded sampleReport
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded != original {
		t.Errorf("json-tag roundtrip mismatch: got %+v, want %+v", decoded, original)
	}
}

func TestOmitemptyRespected(t *testing.T) {
	withNote := sampleEntry{Path: "a.jpg", Note: "x", RawSize: 1}
	withoutNote := sampleEntry{Path: "a.jpg", RawSize: 1}

	dataWith, err := Marshal(withNote)
	if err != nil {
		t.Fatal(err)
	}
	dataWithout, err := Marshal(withoutNote)
	if err != nil {
		t.Fatal(err)
	}

	// The encoding without the note should be shorter because the
	// omitted field is not present.
	if len(dataWithout) >= len(dataWith) {
		t.Errorf("omitempty not effective: without=%d bytes, with=%d bytes",
			len(dataWithout), len(dataWith))
	}
}

func TestUnmarshalInvalidCBOR(t *testing.T) {
	var entry sampleEntry
	if err := Unmarshal([]byte{0xFF, 0xFE, 0xFD}, &entry); err == nil {
		t.Error("Unmarshal should reject invalid CBOR")
	}
}

func TestDigestArrayRoundtrip(t *testing.T) {
	// [32]byte fields must encode as CBOR byte strings (major type
	// 2), not arrays of 32 small integers. Snapshot digests depend on
	// this for compact, verbatim storage.
	type record struct {
		Digest [32]byte `cbor:"digest"`
	}

	var original record
	for i := range original.Digest {
		original.Digest[i] = byte(i)
	}

	data, err := Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	// A byte string stores the 32 bytes verbatim; an integer array
	// would break values >= 24 into multi-byte encodings.
	if !bytes.Contains(data, original.Digest[:]) {
		t.Errorf("digest not stored as a verbatim byte string: %x", data)
	}

	var decoded record
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded.Digest != original.Digest {
		t.Errorf("digest roundtrip: got %x, want %x", decoded.Digest, original.Digest)
	}
}

func TestDiagnose(t *testing.T) {
	data, err := Marshal(map[string]any{"path": "a.jpg"})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	notation, err := Diagnose(data)
	if err != nil {
		t.Fatalf("Diagnose: %v", err)
	}

	if !strings.Contains(notation, `"path"`) {
		t.Errorf("notation %q does not contain \"path\"", notation)
	}
	if !strings.Contains(notation, `"a.jpg"`) {
		t.Errorf("notation %q does not contain \"a.jpg\"", notation)
	}
}

func BenchmarkMarshal(b *testing.B) {
	entry := sampleEntry{
		Path:    "photos/harbor.jpg",
		Note:    "captured before sync",
		RawSize: 48213,
	}

	b.ReportAllocs()
	for b.Loop() {
		Marshal(entry)
	}
}

func BenchmarkUnmarshal(b *testing.B) {
	entry := sampleEntry{
		Path:    "photos/harbor.jpg",
		Note:    "captured before sync",
		RawSize: 48213,
	}
	data, err := Marshal(entry)
	if err != nil {
		b.Fatal(err)
	}

	b.SetBytes(int64(len(data)))
	b.ReportAllocs()
	for b.Loop() {
		var decoded sampleEntry
		Unmarshal(data, &decoded)
	}
}

// Copyright 2026 The Darkroom Authors
// SPDX-License-Identifier: Apache-2.0

package snapshot

import (
	"bytes"
	"crypto/rand"
	"errors"
	"strings"
	"testing"
)

// sampleDocument returns a realistic, highly compressible RDF/XML
// document of roughly the requested size.
func sampleDocument(size int) []byte {
	block := `<rdf:Description rdf:about="photo.jpg">
  <dc:title><rdf:Alt><rdf:li xml:lang="x-default">Harbor at dawn</rdf:li></rdf:Alt></dc:title>
  <dc:subject><rdf:Bag><rdf:li>harbor</rdf:li><rdf:li>fog</rdf:li></rdf:Bag></dc:subject>
</rdf:Description>
`
	var out bytes.Buffer
	for out.Len() < size {
		out.WriteString(block)
	}
	return out.Bytes()
}

func TestCompressionTagString(t *testing.T) {
	tests := []struct {
		tag  CompressionTag
		want string
	}{
		{CompressionNone, "none"},
		{CompressionLZ4, "lz4"},
		{CompressionZstd, "zstd"},
		{CompressionTag(9), "unknown(9)"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.tag.String(); got != tt.want {
				t.Errorf("CompressionTag(%d).String() = %q, want %q", tt.tag, got, tt.want)
			}
		})
	}
}

func TestCompressDecompressNone(t *testing.T) {
	data := []byte("stored verbatim")

	compressed, err := Compress(data, CompressionNone)
	if err != nil {
		t.Fatalf("Compress(none) failed: %v", err)
	}
	// CompressionNone passes the slice through, not a copy.
	if &compressed[0] != &data[0] {
		t.Error("CompressionNone should return the input slice unchanged")
	}

	decompressed, err := Decompress(compressed, CompressionNone, len(data))
	if err != nil {
		t.Fatalf("Decompress(none) failed: %v", err)
	}
	if !bytes.Equal(decompressed, data) {
		t.Error("none roundtrip mismatch")
	}

	if _, err := Decompress(compressed, CompressionNone, len(data)+3); err == nil {
		t.Error("Decompress(none) should fail when the manifest size disagrees")
	}
}

func TestCompressDecompressLZ4(t *testing.T) {
	data := sampleDocument(64 * 1024)

	compressed, err := Compress(data, CompressionLZ4)
	if err != nil {
		t.Fatalf("Compress(lz4) failed: %v", err)
	}
	if len(compressed) >= len(data) {
		t.Errorf("LZ4 did not compress: %d bytes → %d bytes", len(data), len(compressed))
	}

	decompressed, err := Decompress(compressed, CompressionLZ4, len(data))
	if err != nil {
		t.Fatalf("Decompress(lz4) failed: %v", err)
	}
	if !bytes.Equal(decompressed, data) {
		t.Error("lz4 roundtrip mismatch")
	}

	if _, err := Decompress(compressed, CompressionLZ4, len(data)-1); err == nil {
		t.Error("Decompress(lz4) should fail when the manifest size disagrees")
	}
}

func TestCompressDecompressZstd(t *testing.T) {
	data := sampleDocument(64 * 1024)

	compressed, err := Compress(data, CompressionZstd)
	if err != nil {
		t.Fatalf("Compress(zstd) failed: %v", err)
	}
	ratio := float64(len(data)) / float64(len(compressed))
	if ratio < 2.0 {
		t.Errorf("zstd ratio %.2fx is unexpectedly low for repetitive XML", ratio)
	}

	decompressed, err := Decompress(compressed, CompressionZstd, len(data))
	if err != nil {
		t.Fatalf("Decompress(zstd) failed: %v", err)
	}
	if !bytes.Equal(decompressed, data) {
		t.Error("zstd roundtrip mismatch")
	}

	if _, err := Decompress(compressed, CompressionZstd, len(data)+1); err == nil {
		t.Error("Decompress(zstd) should fail when the manifest size disagrees")
	}
}

func TestCompressIncompressible(t *testing.T) {
	// Random bytes cannot shrink under either algorithm.
	data := make([]byte, 64*1024)
	rand.Read(data)

	for _, tag := range []CompressionTag{CompressionLZ4, CompressionZstd} {
		t.Run(tag.String(), func(t *testing.T) {
			_, err := Compress(data, tag)
			if !errors.Is(err, errIncompressible) {
				t.Errorf("Compress(%s) on random data: got %v, want incompressible", tag, err)
			}
		})
	}
}

func TestCompressUnknownTag(t *testing.T) {
	if _, err := Compress([]byte("x"), CompressionTag(7)); err == nil || !strings.Contains(err.Error(), "unsupported") {
		t.Errorf("Compress with unknown tag: got %v", err)
	}
	if _, err := Decompress([]byte("x"), CompressionTag(7), 1); err == nil || !strings.Contains(err.Error(), "unsupported") {
		t.Errorf("Decompress with unknown tag: got %v", err)
	}
}

func TestCompressAuto(t *testing.T) {
	t.Run("xml picks zstd", func(t *testing.T) {
		data := sampleDocument(8 * 1024)
		stored, tag, err := CompressAuto(data)
		if err != nil {
			t.Fatalf("CompressAuto failed: %v", err)
		}
		if tag != CompressionZstd {
			t.Errorf("tag = %s, want zstd", tag)
		}
		roundtrip, err := Decompress(stored, tag, len(data))
		if err != nil {
			t.Fatalf("Decompress failed: %v", err)
		}
		if !bytes.Equal(roundtrip, data) {
			t.Error("auto roundtrip mismatch")
		}
	})

	t.Run("random stays raw", func(t *testing.T) {
		data := make([]byte, 4096)
		rand.Read(data)
		stored, tag, err := CompressAuto(data)
		if err != nil {
			t.Fatalf("CompressAuto failed: %v", err)
		}
		if tag != CompressionNone {
			t.Errorf("tag = %s, want none", tag)
		}
		if !bytes.Equal(stored, data) {
			t.Error("raw fallback should store the input verbatim")
		}
	})

	t.Run("empty stays raw", func(t *testing.T) {
		stored, tag, err := CompressAuto(nil)
		if err != nil {
			t.Fatalf("CompressAuto failed: %v", err)
		}
		if tag != CompressionNone || len(stored) != 0 {
			t.Errorf("empty input: tag %s, %d bytes stored", tag, len(stored))
		}
	})
}

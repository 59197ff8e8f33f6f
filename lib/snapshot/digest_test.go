// Copyright 2026 The Darkroom Authors
// SPDX-License-Identifier: Apache-2.0

package snapshot

import (
	"strings"
	"testing"
)

func TestDigestPayload(t *testing.T) {
	a := DigestPayload([]byte("<rdf:RDF/>"))
	b := DigestPayload([]byte("<rdf:RDF/>"))
	c := DigestPayload([]byte("<rdf:RDF />"))

	if a != b {
		t.Error("same document should digest identically")
	}
	if a == c {
		t.Error("different documents should not collide")
	}
	if a == (Digest{}) {
		t.Error("digest of a non-empty document should not be zero")
	}
}

func TestDigestStringRoundtrip(t *testing.T) {
	digest := DigestPayload([]byte("roundtrip"))

	text := digest.String()
	if len(text) != 64 || strings.ToLower(text) != text {
		t.Errorf("String() = %q, want 64 lowercase hex characters", text)
	}

	parsed, err := ParseDigest(text)
	if err != nil {
		t.Fatalf("ParseDigest failed: %v", err)
	}
	if parsed != digest {
		t.Error("ParseDigest did not reproduce the original digest")
	}
}

func TestParseDigestRejectsMalformed(t *testing.T) {
	for _, text := range []string{"", "abcd", strings.Repeat("zz", 32)} {
		if _, err := ParseDigest(text); err == nil {
			t.Errorf("ParseDigest(%q) should fail", text)
		}
	}
}

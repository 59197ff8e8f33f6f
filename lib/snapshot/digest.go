// Copyright 2026 The Darkroom Authors
// SPDX-License-Identifier: Apache-2.0

package snapshot

import (
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"
)

// Digest is a 32-byte BLAKE3 keyed hash of an entry's uncompressed
// document. Digests are computed before compression, so verification
// is independent of the storage algorithm.
type Digest [32]byte

// payloadKey is the domain separation key for payload digests: the
// ASCII domain name zero-padded to 32 bytes, so the key is readable
// in hex dumps while remaining an opaque value to BLAKE3. Changing it
// invalidates every existing archive.
var payloadKey = [32]byte{
	'd', 'a', 'r', 'k', 'r', 'o', 'o', 'm', '.', 's', 'n', 'a', 'p', 's', 'h', 'o',
	't', '.', 'p', 'a', 'y', 'l', 'o', 'a', 'd', 0, 0, 0, 0, 0, 0, 0,
}

// DigestPayload computes the payload-domain digest of data.
func DigestPayload(data []byte) Digest {
	hasher, err := blake3.NewKeyed(payloadKey[:])
	if err != nil {
		panic("snapshot: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(data)
	var digest Digest
	copy(digest[:], hasher.Sum(nil))
	return digest
}

// String returns the canonical hex form used in reports and logs.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// ParseDigest parses the hex form back into a Digest.
func ParseDigest(text string) (Digest, error) {
	raw, err := hex.DecodeString(text)
	if err != nil {
		return Digest{}, fmt.Errorf("parsing digest: %w", err)
	}
	var digest Digest
	if len(raw) != len(digest) {
		return Digest{}, fmt.Errorf("digest is %d bytes, want %d", len(raw), len(digest))
	}
	copy(digest[:], raw)
	return digest, nil
}

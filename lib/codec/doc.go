// Copyright 2026 The Darkroom Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides Darkroom's standard CBOR encoding configuration.
//
// Darkroom uses two serialization formats with a clear boundary:
//
//   - JSON for external interfaces: the tool's -j output, preset
//     files, HTTP service requests and responses, CLI --json output.
//   - CBOR for internal artifacts: snapshot archive manifests.
//
// This package provides the shared CBOR encoding and decoding modes so
// that every archive encodes identically without duplicating
// configuration. The encoder uses Core Deterministic Encoding (RFC 8949
// §4.2): sorted map keys, smallest integer encoding, no
// indefinite-length items. Same logical data always produces identical
// bytes.
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// # Struct Tag Rules
//
// The struct tag on a type documents its serialization format:
//
//   - `cbor` tag: this type is ONLY ever serialized as CBOR. It will
//     never be marshaled to JSON or printed by CLI tooling. Examples:
//     snapshot manifest and entry records.
//   - `json` tag: this type may be serialized as BOTH JSON and CBOR.
//     fxamacker/cbor v2 reads `json` tags as fallback when `cbor`
//     tags are absent, so a single `json` tag controls field naming
//     and omitempty for both formats. Examples: types used in CLI
//     --json output and HTTP responses.
//
// Never use both `cbor` and `json` tags on the same field. The tag
// choice documents the contract, and doubling up obscures whether a
// type participates in JSON serialization.
package codec

// Copyright 2026 The Darkroom Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for darkroom packages.
//
// [WriteScript] writes an executable shell script into a test-scoped
// temporary directory. Tests use it to stand in for the external
// metadata tool, emulating whatever subset of its command-line and
// stay-open protocol a test needs, without requiring the real binary
// on the test machine.
//
// [RequireReceive], [RequireSend], and [RequireClosed] encapsulate the
// timeout safety valve pattern (select with time.After fallback) so
// that individual tests do not need direct time.After calls.
//
// [UniqueID] generates monotonically increasing identifiers for test
// disambiguation. Use it instead of time.Now() when tests need unique
// file names or tag values.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
//
// This package has no darkroom-internal dependencies.
package testutil

// Copyright 2026 The Darkroom Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteScript writes an executable shell script into a test-scoped
// temporary directory and returns its absolute path. Tests use this to
// stand in for the external metadata tool: the script speaks whatever
// subset of the tool's command-line and stay-open protocol the test
// needs.
//
// The body should start with a "#!/bin/sh" line. The file is removed
// when the test completes.
func WriteScript(t *testing.T, name, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o755); err != nil {
		t.Fatalf("writing test script %s: %v", name, err)
	}
	return path
}

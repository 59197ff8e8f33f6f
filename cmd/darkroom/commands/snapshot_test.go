// Copyright 2026 The Darkroom Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/darkroom-project/darkroom/cmd/darkroom/cli"
	"github.com/darkroom-project/darkroom/lib/snapshot"
)

// cannedExporter serves fixed documents, standing in for the tool
// client so archive commands can run without a binary.
type cannedExporter struct {
	documents map[string]string
}

func (c *cannedExporter) RawXML(_ context.Context, path string) (string, error) {
	document, ok := c.documents[path]
	if !ok {
		return "", errors.New("no document for " + path)
	}
	return document, nil
}

func writeTestArchive(t *testing.T) string {
	t.Helper()

	root := t.TempDir()
	pathA := filepath.Join(root, "a.jpg")
	pathB := filepath.Join(root, "b.jpg")
	exporter := &cannedExporter{documents: map[string]string{
		pathA: "<x:xmpmeta>alpha</x:xmpmeta>",
		pathB: "<x:xmpmeta>beta</x:xmpmeta>",
	}}

	archivePath := filepath.Join(t.TempDir(), "test.snap")
	if _, err := snapshot.Write(context.Background(), exporter, root, []string{pathA, pathB}, archivePath); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	return archivePath
}

func TestSnapshotVerifyCommand(t *testing.T) {
	archivePath := writeTestArchive(t)
	if err := snapshotVerifyCommand().Execute([]string{archivePath}); err != nil {
		t.Errorf("verify on an intact archive: %v", err)
	}
}

func TestSnapshotVerifyCommandDamaged(t *testing.T) {
	archivePath := writeTestArchive(t)
	data, err := os.ReadFile(archivePath)
	if err != nil {
		t.Fatal(err)
	}
	// Flip a byte in the payload region without changing its length.
	data[len(data)-1] ^= 0xFF
	if err := os.WriteFile(archivePath, data, 0o644); err != nil {
		t.Fatal(err)
	}

	err = snapshotVerifyCommand().Execute([]string{archivePath})
	var exitErr *cli.ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != 1 {
		t.Errorf("verify on a damaged archive = %v, want exit code 1", err)
	}
}

func TestSnapshotInspectCommand(t *testing.T) {
	archivePath := writeTestArchive(t)

	if err := snapshotInspectCommand().Execute([]string{archivePath}); err != nil {
		t.Errorf("inspect: %v", err)
	}
	if err := snapshotInspectCommand().Execute([]string{archivePath, "--diag"}); err != nil {
		t.Errorf("inspect --diag: %v", err)
	}

	err := snapshotInspectCommand().Execute([]string{archivePath, "--diag", "--json"})
	if err == nil || !strings.Contains(err.Error(), "mutually exclusive") {
		t.Errorf("inspect --diag --json = %v, want mutual exclusion error", err)
	}

	if err := snapshotInspectCommand().Execute([]string{filepath.Join(t.TempDir(), "missing.snap")}); err == nil {
		t.Error("inspect on a missing archive should fail")
	}
}

func TestSnapshotWriteRejectsNonDirectory(t *testing.T) {
	target := filepath.Join(t.TempDir(), "file.jpg")
	if err := os.WriteFile(target, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	err := snapshotWriteCommand().Execute([]string{target})
	if err == nil || !strings.Contains(err.Error(), "not a directory") {
		t.Errorf("write against a file = %v, want directory error", err)
	}
}

func TestSnapshotRestoreRejectsNonDirectory(t *testing.T) {
	archivePath := writeTestArchive(t)
	target := filepath.Join(t.TempDir(), "file.jpg")
	if err := os.WriteFile(target, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	err := snapshotRestoreCommand().Execute([]string{archivePath, target})
	if err == nil || !strings.Contains(err.Error(), "not a directory") {
		t.Errorf("restore into a file = %v, want directory error", err)
	}
}

func TestDefaultArchiveName(t *testing.T) {
	name := defaultArchiveName("photos")
	if !strings.HasPrefix(name, "photos-") || !strings.HasSuffix(name, ".snap") {
		t.Errorf("defaultArchiveName(photos) = %q", name)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    uint64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1 << 10, "1.0 KB"},
		{1536, "1.5 KB"},
		{3 << 20, "3.0 MB"},
		{2 << 30, "2.0 GB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.n); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

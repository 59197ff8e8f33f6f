// Copyright 2026 The Darkroom Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"reflect"
	"testing"

	"github.com/darkroom-project/darkroom/lib/metadata"
)

func TestSummaryRows(t *testing.T) {
	full := metadata.FileSummary{
		FileName:  "photo.jpg",
		FileSize:  "2.1 MB",
		Width:     4000,
		Height:    3000,
		Make:      "Canon",
		Model:     "EOS R5",
		DateTaken: "2026:01:15 10:30:00",
		Latitude:  "48.8566 N",
		Longitude: "2.3522 E",
	}
	want := [][2]string{
		{"file_name", "photo.jpg"},
		{"file_size", "2.1 MB"},
		{"width", "4000"},
		{"height", "3000"},
		{"camera_make", "Canon"},
		{"camera_model", "EOS R5"},
		{"date_taken", "2026:01:15 10:30:00"},
		{"gps_latitude", "48.8566 N"},
		{"gps_longitude", "2.3522 E"},
	}
	if got := summaryRows(full); !reflect.DeepEqual(got, want) {
		t.Errorf("summaryRows(full) = %v, want %v", got, want)
	}

	minimal := metadata.FileSummary{FileName: "empty.png", FileSize: "10 kB"}
	want = [][2]string{
		{"file_name", "empty.png"},
		{"file_size", "10 kB"},
	}
	if got := summaryRows(minimal); !reflect.DeepEqual(got, want) {
		t.Errorf("summaryRows(minimal) = %v, want %v", got, want)
	}
}

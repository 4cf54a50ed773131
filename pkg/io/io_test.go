package io

import (
	"bytes"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/matzehuels/gitlanes/pkg/history"
)

func TestReadSnapshot(t *testing.T) {
	input := `{
	  "commits": [
	    {"sha": "b2f1", "message": "Merge feature", "timestamp": 1700000120, "parents": ["a4c9", "9d1e"]},
	    {"sha": "a4c9", "message": "Fix login", "timestamp": 1700000060, "parents": []}
	  ],
	  "branches": [
	    {"name": "main", "is_current": true, "tip_sha": "b2f1"},
	    {"name": "feature/login", "tip_sha": "9d1e"}
	  ]
	}`

	snap, err := ReadSnapshot(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadSnapshot() error = %v", err)
	}

	if len(snap.Commits) != 2 {
		t.Fatalf("len(Commits) = %d, want 2", len(snap.Commits))
	}
	if snap.Commits[0].SHA != "b2f1" || snap.Commits[0].Message != "Merge feature" {
		t.Errorf("Commits[0] = %+v", snap.Commits[0])
	}
	if want := []string{"a4c9", "9d1e"}; !reflect.DeepEqual(snap.Commits[0].Parents, want) {
		t.Errorf("Parents = %v, want %v", snap.Commits[0].Parents, want)
	}
	if len(snap.Branches) != 2 || !snap.Branches[0].IsCurrent {
		t.Errorf("Branches = %+v", snap.Branches)
	}
}

func TestReadSnapshotErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"malformed json", `{"commits": [`},
		{"empty sha", `{"commits": [{"sha": ""}], "branches": []}`},
		{"duplicate sha", `{"commits": [{"sha": "aaaa"}, {"sha": "aaaa"}], "branches": []}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadSnapshot(strings.NewReader(tt.input)); err == nil {
				t.Error("ReadSnapshot() expected error")
			}
		})
	}
}

func TestReadSnapshotEmptyDocument(t *testing.T) {
	snap, err := ReadSnapshot(strings.NewReader(`{}`))
	if err != nil {
		t.Fatalf("ReadSnapshot() error = %v", err)
	}
	if snap.Commits == nil || snap.Branches == nil {
		t.Error("ReadSnapshot() left nil slices, want empty")
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	original := &history.Snapshot{
		Repo:       "/work/repo",
		CapturedAt: 1700000200,
		Commits: []history.Commit{
			{SHA: "b2f1", ShortSHA: "b2f1", Message: "Merge", Author: "Ada", Timestamp: 1700000120, Parents: []string{"a4c9"}},
			{SHA: "a4c9", Message: "Init", Timestamp: 1700000060, Parents: []string{}},
		},
		Branches: []history.Branch{
			{Name: "main", IsCurrent: true, TipSHA: "b2f1", Upstream: "origin/main", Ahead: 1},
		},
	}

	var buf bytes.Buffer
	if err := WriteSnapshot(original, &buf); err != nil {
		t.Fatalf("WriteSnapshot() error = %v", err)
	}

	decoded, err := ReadSnapshot(&buf)
	if err != nil {
		t.Fatalf("ReadSnapshot() error = %v", err)
	}
	if !reflect.DeepEqual(original, decoded) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", decoded, original)
	}
}

func TestImportExportSnapshotFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.json")
	snap := &history.Snapshot{
		Commits:  []history.Commit{{SHA: "aaaa", Message: "x", Parents: []string{}}},
		Branches: []history.Branch{},
	}

	if err := ExportSnapshot(snap, path); err != nil {
		t.Fatalf("ExportSnapshot() error = %v", err)
	}
	got, err := ImportSnapshot(path)
	if err != nil {
		t.Fatalf("ImportSnapshot() error = %v", err)
	}
	if !reflect.DeepEqual(snap, got) {
		t.Errorf("file round trip mismatch: got %+v", got)
	}
}

func TestImportSnapshotMissingFile(t *testing.T) {
	if _, err := ImportSnapshot(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("ImportSnapshot() expected error")
	}
}

package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/gitlanes/pkg/history"
)

// WriteSnapshot encodes a snapshot as indented JSON and writes it to w.
// The output can be re-imported with [ReadSnapshot] for round-trip
// processing.
func WriteSnapshot(snap *history.Snapshot, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportSnapshot writes a snapshot to a JSON file at path.
// This is a convenience wrapper around [WriteSnapshot] for file-based output.
func ExportSnapshot(snap *history.Snapshot, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteSnapshot(snap, f)
}

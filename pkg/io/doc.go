// Package io provides JSON import and export for repository snapshots.
//
// # Overview
//
// A snapshot is the serialized input of the layout engine: a window of
// commits plus the branches that point into it. This package reads and
// writes that format so graphs can be computed without touching a live
// repository. The format is designed for:
//
//   - Offline rendering: capture once, lay out and export many times
//   - Test fixtures and reproducible bug reports
//   - Integration with external tools that produce commit data
//   - Caching of expensive repository reads
//
// # JSON Format
//
// The format has two required top-level arrays:
//
//	{
//	  "commits": [
//	    {"sha": "b2f1", "message": "Merge feature", "timestamp": 1700000120, "parents": ["a4c9", "9d1e"]},
//	    {"sha": "a4c9", "message": "Fix login", "timestamp": 1700000060, "parents": ["831b"]}
//	  ],
//	  "branches": [
//	    {"name": "main", "is_current": true, "tip_sha": "b2f1"},
//	    {"name": "feature/login", "tip_sha": "9d1e"}
//	  ]
//	}
//
// Commits are ordered newest first. Each commit needs a unique sha; the
// other fields are optional display metadata. Parents reference shas that
// may fall outside the window, which is normal for a bounded capture.
//
// Branches carry name, tip_sha, and the flags is_current and is_remote,
// plus tracking metadata (upstream, ahead, behind) when known.
//
// # Import
//
// Use [ImportSnapshot] to read from a file path, or [ReadSnapshot] to read
// from any io.Reader:
//
//	snap, err := io.ImportSnapshot("capture.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Both functions validate the window after decoding: empty and duplicate
// commit hashes are rejected with an error naming the offending entry.
// Anything structurally valid is accepted, including windows whose parents
// point outside the capture.
//
// # Export
//
// Use [ExportSnapshot] to write to a file, or [WriteSnapshot] to write to
// any io.Writer:
//
//	err := io.ExportSnapshot(snap, "capture.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Output is indented and stable for a given snapshot, so captures diff
// cleanly under version control. Export and re-import round-trip exactly.
//
// # Concurrency
//
// All functions are safe to call concurrently with other readers of the
// same snapshot, but not with concurrent modifications. Imported snapshots
// are independent instances owned by the caller.
//
// # Graph Output
//
// This package handles the engine's input side only. Computed graphs are
// serialized by [layout.MarshalGraph] and the file helpers next to it.
//
// [layout.MarshalGraph]: github.com/matzehuels/gitlanes/pkg/layout.MarshalGraph
package io

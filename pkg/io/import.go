package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/gitlanes/pkg/history"
)

// ReadSnapshot decodes a JSON snapshot from r.
//
// The input must be a JSON object with "commits" and "branches" arrays as
// described in the package documentation. After decoding, the commit window
// is validated: every commit needs a non-empty, unique sha.
//
// Parents referencing commits outside the window are accepted; a bounded
// capture of a deep history always has them.
//
// The returned snapshot is independent of r and can be modified safely
// after ReadSnapshot returns. ReadSnapshot does not close r.
func ReadSnapshot(r io.Reader) (*history.Snapshot, error) {
	var snap history.Snapshot
	dec := json.NewDecoder(r)
	if err := dec.Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	if snap.Commits == nil {
		snap.Commits = []history.Commit{}
	}
	if snap.Branches == nil {
		snap.Branches = []history.Branch{}
	}
	return &snap, nil
}

// ImportSnapshot reads a JSON file at path and returns the decoded snapshot.
//
// ImportSnapshot opens the file, decodes it using [ReadSnapshot], and closes
// the file. Errors wrap the underlying cause with the file path for context.
func ImportSnapshot(path string) (*history.Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	snap, err := ReadSnapshot(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return snap, nil
}

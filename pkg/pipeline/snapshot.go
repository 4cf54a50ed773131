package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/gitlanes/pkg/history"
	snapio "github.com/matzehuels/gitlanes/pkg/io"
	"github.com/matzehuels/gitlanes/pkg/source"
	"github.com/matzehuels/gitlanes/pkg/source/backends"
)

// Snapshot captures the commit window and branch state for a run.
//
// With SnapshotFile set, the snapshot is read from disk and the repository
// is never touched, which keeps the rest of the pipeline usable offline.
// Otherwise the configured backend opens the repository and reads it.
func Snapshot(ctx context.Context, opts Options) (*history.Snapshot, error) {
	if err := opts.ValidateForSnapshot(); err != nil {
		return nil, err
	}

	if opts.SnapshotFile != "" {
		return snapio.ImportSnapshot(opts.SnapshotFile)
	}

	src, err := backends.Open(opts.Repo, opts.Backend)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	snap, err := src.Snapshot(ctx, source.Options{Limit: opts.Limit, Skip: opts.Skip})
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", opts.Repo, err)
	}
	return snap, nil
}

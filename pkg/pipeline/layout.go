package pipeline

import (
	"github.com/matzehuels/gitlanes/pkg/history"
	"github.com/matzehuels/gitlanes/pkg/layout"
)

// ComputeLayout assigns lanes, markers, and connector geometry to a
// snapshot's commit window.
//
// The engine itself never fails; the only error here is an invalid palette
// name. An empty snapshot produces an empty graph.
func ComputeLayout(snap *history.Snapshot, opts Options) (*layout.Graph, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return nil, err
	}
	return layout.Build(snap.Commits, snap.Branches, ResolvePalette(opts.Palette)), nil
}

package pipeline

import (
	"fmt"

	"github.com/matzehuels/gitlanes/pkg/export"
	"github.com/matzehuels/gitlanes/pkg/history"
	"github.com/matzehuels/gitlanes/pkg/layout"
)

// Export serializes a computed graph into each requested format.
//
// The JSON artifact is the canonical graph document; DOT is a Graphviz
// description built from the graph plus the snapshot's commit metadata.
func Export(snap *history.Snapshot, g *layout.Graph, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForExport(); err != nil {
		return nil, err
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		switch format {
		case FormatJSON:
			data, err := layout.MarshalGraph(*g)
			if err != nil {
				return nil, fmt.Errorf("marshal graph: %w", err)
			}
			artifacts[format] = data
		case FormatDOT:
			artifacts[format] = []byte(export.ToDOT(snap, g, export.Options{Detailed: opts.Detailed}))
		default:
			return nil, fmt.Errorf("invalid format: %q", format)
		}
	}
	return artifacts, nil
}

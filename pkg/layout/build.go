package layout

import (
	"slices"

	"github.com/matzehuels/gitlanes/pkg/history"
)

// Build computes the layout for one snapshot window. Commits must be in
// newest-first order; their index becomes their row. The palette is pure
// configuration: pass nil to use [DefaultPalette].
//
// Build never fails. An empty window yields an empty graph, branches
// whose tips are outside the window claim nothing, and edges to parents
// outside the window are omitted. Identical inputs always produce
// structurally identical output.
func Build(commits []history.Commit, branches []history.Branch, palette []string) *Graph {
	if len(palette) == 0 {
		palette = DefaultPalette
	}

	g := &Graph{
		Commits:  make([]Commit, 0, len(commits)),
		Branches: make([]Branch, 0),
	}
	if len(commits) == 0 {
		return g
	}

	prioritized := Prioritize(branches)
	own := ResolveOwnership(commits, prioritized)
	marks := computeMarkers(commits, prioritized)
	idx := history.Index(commits)

	// Lane assignment: branch priority index, with one shared overflow
	// lane for everything unclaimed.
	overflow := len(prioritized)
	branchColumn := make(map[string]int, len(prioritized))
	for i, b := range prioritized {
		branchColumn[b.Name] = i
	}

	columns := make([]int, len(commits))
	for i, c := range commits {
		col := overflow
		if name, ok := own.Owner[c.SHA]; ok {
			col = branchColumn[name]
		}
		columns[i] = col
	}

	conns := buildConnectors(commits, idx, columns, marks.children, palette)

	for i, c := range commits {
		g.Commits = append(g.Commits, Commit{
			SHA:           c.SHA,
			Row:           i,
			Column:        columns[i],
			Color:         colorFor(columns[i], palette),
			OwnerBranch:   own.Owner[c.SHA],
			IsMerge:       c.IsMerge(),
			IsBranchTip:   marks.isBranchTip(c.SHA),
			IsBranchPoint: marks.isBranchPoint(c.SHA),
			Parents:       slices.Clone(c.Parents),
			Connectors:    conns[i],
		})
	}

	for i, b := range prioritized {
		start, end := -1, -1
		for _, sha := range own.Claims[b.Name] {
			row := idx[sha]
			if start == -1 || row < start {
				start = row
			}
			if row > end {
				end = row
			}
		}
		g.Branches = append(g.Branches, Branch{
			Name:      b.Name,
			Color:     colorFor(i, palette),
			Column:    i,
			TipSHA:    b.TipSHA,
			IsCurrent: b.IsCurrent,
			StartRow:  start,
			EndRow:    end,
		})
	}

	if n := len(prioritized); n > 0 {
		g.MaxColumn = n - 1
	}

	return g
}

package layout

import (
	"slices"
)

// CountCrossings returns how many times parent edges cross each other
// when each edge is drawn as a straight line from its child's (column,
// row) to its parent's. It is a layout quality diagnostic: 0 means the
// window renders without any tangles, higher values mean busier graphs.
//
// Edges are cut at every row boundary they span and crossings are
// counted per boundary strip as order inversions of the interpolated
// lane positions, using a Fenwick tree per strip. Two edges that merely
// converge on the same lane do not count; only genuine transversals do.
// Edges to parents outside the window are ignored, like everywhere else.
func CountCrossings(g *Graph) int {
	rows := len(g.Commits)
	if rows < 2 {
		return 0
	}

	idx := make(map[string]int, rows)
	for i, c := range g.Commits {
		idx[c.SHA] = i
	}

	strips := make([][]stripSpan, rows-1)
	for _, c := range g.Commits {
		for _, parent := range c.Parents {
			pi, ok := idx[parent]
			if !ok || pi <= c.Row {
				continue
			}
			x0 := float64(c.Column)
			x1 := float64(g.Commits[pi].Column)
			span := float64(pi - c.Row)
			at := func(row int) float64 {
				return x0 + (x1-x0)*float64(row-c.Row)/span
			}
			for t := c.Row; t < pi; t++ {
				strips[t] = append(strips[t], stripSpan{topX: at(t), bottomX: at(t + 1)})
			}
		}
	}

	crossings := 0
	for _, strip := range strips {
		crossings += countStripCrossings(strip)
	}
	return crossings
}

// stripSpan is one edge's lane position at the top and bottom of a
// single boundary strip.
type stripSpan struct {
	topX, bottomX float64
}

// countStripCrossings counts order inversions between the top and bottom
// positions of the spans in one strip. Spans are sorted by top position
// (ties by bottom position), then inversions in the bottom sequence are
// counted with a Fenwick tree over rank-compressed positions, the same
// O(E log E) scheme used for layered-graph crossing numbers.
func countStripCrossings(spans []stripSpan) int {
	if len(spans) < 2 {
		return 0
	}

	slices.SortFunc(spans, func(a, b stripSpan) int {
		if a.topX != b.topX {
			if a.topX < b.topX {
				return -1
			}
			return 1
		}
		if a.bottomX != b.bottomX {
			if a.bottomX < b.bottomX {
				return -1
			}
			return 1
		}
		return 0
	})

	// Rank-compress bottom positions for the Fenwick tree.
	xs := make([]float64, len(spans))
	for i, s := range spans {
		xs[i] = s.bottomX
	}
	slices.Sort(xs)
	xs = slices.Compact(xs)

	fenwick := make([]int, len(xs)+1)
	crossings, processed := 0, 0
	for _, s := range spans {
		rank, _ := slices.BinarySearch(xs, s.bottomX)

		// Count spans seen so far that end at or left of this one; the
		// rest ended to the right and therefore cross it.
		lessOrEqual := 0
		for q := rank + 1; q > 0; q -= q & (-q) {
			lessOrEqual += fenwick[q]
		}
		crossings += processed - lessOrEqual

		processed++
		for i := rank + 1; i < len(fenwick); i += i & (-i) {
			fenwick[i]++
		}
	}
	return crossings
}

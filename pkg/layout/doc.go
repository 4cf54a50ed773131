// Package layout computes the commit-graph layout for a repository
// history view.
//
// # Overview
//
// Given a snapshot window of commits (newest first) and the branches
// pointing into it, [Build] produces a [Graph]: one positioned entry per
// commit (row, lane column, color, owning branch, merge and branch-point
// markers) plus per-row connector geometry toward parents and children.
// The result is a value a renderer can draw row by row without any
// further graph traversal.
//
// # Pipeline
//
// A build runs a fixed sequence of linear passes:
//
//  1. [Prioritize] orders local branches for lane assignment, trunk
//     (main/master) first, then the checked-out branch, then by name.
//  2. [ResolveOwnership] walks each branch's first-parent chain from its
//     tip with an explicit stack, claiming commits for the first branch
//     that reaches them.
//  3. Columns and colors: each prioritized branch gets its priority index
//     as a lane; all unclaimed commits share a single overflow lane; the
//     palette cycles by column.
//  4. Markers: merge, branch tip, and branch point flags from one reverse
//     adjacency scan.
//  5. Connector geometry: each row carries the bottom halves of edges to
//     its parents and the top halves of edges from its children, meeting
//     at row boundaries so adjacent rows compose into continuous lines.
//
// # Purity
//
// Build is synchronous and referentially transparent: identical inputs
// produce structurally identical output, and no state survives between
// calls. There is no error return; an empty window yields an empty
// graph, a branch tip outside the window claims nothing, and a parent
// outside the window simply has no connector.
//
// One known simplification: ownership walks follow first parents only,
// so a commit reachable solely through merge (second-parent) edges is
// never claimed and lands in the overflow lane even when it belongs to a
// feature's history. This mirrors the usual trade-off in graph
// visualizers that keep the branch spine on the first-parent chain.
package layout

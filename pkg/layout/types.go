package layout

import (
	"encoding/json"
	"fmt"
	"os"
)

// =============================================================================
// Graph - Layout Document
// =============================================================================

// Graph is the canonical serialization format for a computed layout.
// Used for API responses, artifact caching, and file export.
//
// Commits are ordered by row (0 = newest); Branches by lane column.
// The document is self-contained: every connector a renderer needs is
// attached to the row that draws it.
type Graph struct {
	Commits   []Commit `json:"commits" bson:"commits"`
	Branches  []Branch `json:"branches" bson:"branches"`
	MaxColumn int      `json:"max_column" bson:"max_column"`
}

// Commit is one positioned row of the graph.
type Commit struct {
	SHA           string `json:"sha" bson:"sha"`
	Row           int    `json:"row" bson:"row"`
	Column        int    `json:"column" bson:"column"`
	Color         string `json:"color" bson:"color"`
	OwnerBranch   string `json:"owner_branch,omitempty" bson:"owner_branch,omitempty"`
	IsMerge       bool   `json:"is_merge,omitempty" bson:"is_merge,omitempty"`
	IsBranchTip   bool   `json:"is_branch_tip,omitempty" bson:"is_branch_tip,omitempty"`
	IsBranchPoint bool   `json:"is_branch_point,omitempty" bson:"is_branch_point,omitempty"`

	// Parents preserves the input parent order; the first entry is the
	// first parent.
	Parents []string `json:"parents" bson:"parents"`

	// Connectors holds the edge halves drawn inside this row: outgoing
	// halves toward parents first (in parent order), then incoming halves
	// from children (in row order).
	Connectors []Connector `json:"connectors,omitempty" bson:"connectors,omitempty"`
}

// Branch is one lane of the graph.
//
// StartRow and EndRow bound the rows of the branch's claimed commits.
// A branch whose tip lies outside the fetched window claims nothing and
// reports -1 for both.
type Branch struct {
	Name      string `json:"name" bson:"name"`
	Color     string `json:"color" bson:"color"`
	Column    int    `json:"column" bson:"column"`
	TipSHA    string `json:"tip_sha" bson:"tip_sha"`
	IsCurrent bool   `json:"is_current,omitempty" bson:"is_current,omitempty"`
	StartRow  int    `json:"start_row" bson:"start_row"`
	EndRow    int    `json:"end_row" bson:"end_row"`
}

// HasRows reports whether the branch claimed at least one commit in the
// window.
func (b Branch) HasRows() bool { return b.StartRow >= 0 }

// =============================================================================
// Lookup Helpers
// =============================================================================

// Commit returns the positioned commit for a hash and true, or a zero
// value and false when the hash is not in the window.
func (g *Graph) Commit(sha string) (Commit, bool) {
	for _, c := range g.Commits {
		if c.SHA == sha {
			return c, true
		}
	}
	return Commit{}, false
}

// Branch returns the lane entry for a branch name and true, or a zero
// value and false when the branch is not part of the layout.
func (g *Graph) Branch(name string) (Branch, bool) {
	for _, b := range g.Branches {
		if b.Name == name {
			return b, true
		}
	}
	return Branch{}, false
}

// =============================================================================
// Serialization API
// =============================================================================

// MarshalGraph serializes a Graph to pretty-printed JSON bytes.
func MarshalGraph(g Graph) ([]byte, error) {
	return json.MarshalIndent(g, "", "  ")
}

// UnmarshalGraph deserializes JSON bytes into a Graph.
func UnmarshalGraph(data []byte) (Graph, error) {
	var g Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return Graph{}, fmt.Errorf("unmarshal graph: %w", err)
	}
	return g, nil
}

// WriteGraphFile writes a Graph to a JSON file.
func WriteGraphFile(g Graph, path string) error {
	data, err := MarshalGraph(g)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadGraphFile reads a Graph from a JSON file.
func ReadGraphFile(path string) (Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Graph{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalGraph(data)
}

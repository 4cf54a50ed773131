package layout

import (
	"fmt"
	"strings"

	"github.com/matzehuels/gitlanes/pkg/history"
)

// =============================================================================
// Constants
// =============================================================================

// Connector halves. One logical parent/child edge is drawn by two rows:
// the child's row draws the outgoing half (bottom), the parent's row the
// incoming half (top).
const (
	HalfOutgoing = "out"
	HalfIncoming = "in"
)

// Segment kinds.
const (
	SegmentLine  = "line"
	SegmentCurve = "curve"
)

// Vertical anchors within a row, in unit coordinates: a row spans y 0
// (top boundary) to 1 (bottom boundary) with the commit node at 0.5.
// Cross-lane connectors run straight down to bendY, then curve so they
// reach the parent's lane exactly at the bottom boundary.
const (
	nodeY = 0.5
	bendY = 0.75
)

// =============================================================================
// Geometry Types
// =============================================================================

// Point is a position in row-local unit coordinates: X in lane units
// (column index), Y in [0, 1] within the row. A renderer scales X by its
// lane width and Y by its row height.
type Point struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// Segment is one piece of a connector path: a straight line, or a cubic
// curve with two control points. Consecutive segments share endpoints.
type Segment struct {
	Kind  string `json:"kind" bson:"kind"`
	From  Point  `json:"from" bson:"from"`
	To    Point  `json:"to" bson:"to"`
	Ctrl1 *Point `json:"ctrl1,omitempty" bson:"ctrl1,omitempty"`
	Ctrl2 *Point `json:"ctrl2,omitempty" bson:"ctrl2,omitempty"`
}

// Path is a contiguous connector path within one row.
type Path []Segment

// SVG renders the path as an SVG path string in unit coordinates
// ("M 1,0.5 L 1,0.75 C 1,0.875 0,0.875 0,1"). This is a geometric
// description only; scaling and stroking are the renderer's concern.
func (p Path) SVG() string {
	if len(p) == 0 {
		return ""
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "M %s", coord(p[0].From))
	for _, s := range p {
		switch s.Kind {
		case SegmentCurve:
			fmt.Fprintf(&sb, " C %s %s %s", coord(*s.Ctrl1), coord(*s.Ctrl2), coord(s.To))
		default:
			fmt.Fprintf(&sb, " L %s", coord(s.To))
		}
	}
	return sb.String()
}

func coord(p Point) string {
	return fmt.Sprintf("%g,%g", p.X, p.Y)
}

// Connector is one half of a parent/child edge, drawn inside a single
// row. FromColumn is always the child's lane and ToColumn the parent's,
// on both halves, so a renderer can pair them up.
//
// The outgoing half starts at the child's node and reaches the parent's
// lane exactly at the bottom boundary; the incoming half is a straight
// drop from the top boundary, already in the parent's lane, down to the
// parent's node. For commits in adjacent rows the two halves therefore
// meet exactly at the shared boundary point, whatever the lane distance.
type Connector struct {
	ChildSHA   string `json:"child_sha" bson:"child_sha"`
	ParentSHA  string `json:"parent_sha" bson:"parent_sha"`
	Half       string `json:"half" bson:"half"`
	FromColumn int    `json:"from_column" bson:"from_column"`
	ToColumn   int    `json:"to_column" bson:"to_column"`
	Color      string `json:"color" bson:"color"`
	Path       Path   `json:"path" bson:"path"`
}

// =============================================================================
// Connector Construction
// =============================================================================

// buildConnectors assembles the per-row connector sets. For every row:
// outgoing halves toward each parent present in the window, in parent
// order, then incoming halves from each child, in row order. Edges whose
// parent hash falls outside the window are omitted.
func buildConnectors(commits []history.Commit, idx map[string]int, columns []int, children map[string][]string, palette []string) [][]Connector {
	conns := make([][]Connector, len(commits))

	for i, c := range commits {
		var row []Connector
		for _, parent := range c.Parents {
			pi, ok := idx[parent]
			if !ok {
				continue
			}
			row = append(row, outgoingHalf(c.SHA, parent, columns[i], columns[pi], palette))
		}
		for _, child := range children[c.SHA] {
			ci := idx[child]
			row = append(row, incomingHalf(child, c.SHA, columns[ci], columns[i], palette))
		}
		conns[i] = row
	}

	return conns
}

// outgoingHalf draws the bottom half of an edge inside the child's row:
// a straight vertical when the lanes match, otherwise a vertical drop to
// bendY followed by a curve that lands on the parent's lane at the
// bottom boundary.
func outgoingHalf(childSHA, parentSHA string, childCol, parentCol int, palette []string) Connector {
	var path Path
	if childCol == parentCol {
		path = Path{line(float64(childCol), nodeY, float64(childCol), 1)}
	} else {
		path = Path{
			line(float64(childCol), nodeY, float64(childCol), bendY),
			curve(float64(childCol), bendY, float64(parentCol), 1),
		}
	}
	return Connector{
		ChildSHA:   childSHA,
		ParentSHA:  parentSHA,
		Half:       HalfOutgoing,
		FromColumn: childCol,
		ToColumn:   parentCol,
		Color:      connectorColor(childCol, parentCol, palette),
		Path:       path,
	}
}

// incomingHalf draws the top half of an edge inside the parent's row.
// The outgoing half has already completed any lane change, so the
// incoming half is always a straight vertical in the parent's lane.
func incomingHalf(childSHA, parentSHA string, childCol, parentCol int, palette []string) Connector {
	return Connector{
		ChildSHA:   childSHA,
		ParentSHA:  parentSHA,
		Half:       HalfIncoming,
		FromColumn: childCol,
		ToColumn:   parentCol,
		Color:      connectorColor(childCol, parentCol, palette),
		Path:       Path{line(float64(parentCol), 0, float64(parentCol), nodeY)},
	}
}

// connectorColor colors an edge by the outer lane it touches, so a
// feature branching off or merging back keeps its own lane color along
// the whole line.
func connectorColor(childCol, parentCol int, palette []string) string {
	return colorFor(max(childCol, parentCol), palette)
}

func line(x0, y0, x1, y1 float64) Segment {
	return Segment{
		Kind: SegmentLine,
		From: Point{X: x0, Y: y0},
		To:   Point{X: x1, Y: y1},
	}
}

// curve builds a cubic with vertical tangents at both ends, so it joins
// the straight segments above and below without a kink.
func curve(x0, y0, x1, y1 float64) Segment {
	midY := (y0 + y1) / 2
	return Segment{
		Kind:  SegmentCurve,
		From:  Point{X: x0, Y: y0},
		To:    Point{X: x1, Y: y1},
		Ctrl1: &Point{X: x0, Y: midY},
		Ctrl2: &Point{X: x1, Y: midY},
	}
}

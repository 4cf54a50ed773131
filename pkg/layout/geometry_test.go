package layout

import (
	"testing"
)

func TestOutgoingHalfSameColumn(t *testing.T) {
	conn := outgoingHalf("child", "parent", 1, 1, DefaultPalette)

	if conn.Half != HalfOutgoing {
		t.Errorf("Half = %q, want %q", conn.Half, HalfOutgoing)
	}
	if len(conn.Path) != 1 {
		t.Fatalf("len(Path) = %d, want 1", len(conn.Path))
	}

	seg := conn.Path[0]
	if seg.Kind != SegmentLine {
		t.Errorf("Kind = %q, want %q", seg.Kind, SegmentLine)
	}
	if seg.From != (Point{X: 1, Y: 0.5}) {
		t.Errorf("From = %+v, want node anchor (1, 0.5)", seg.From)
	}
	if seg.To != (Point{X: 1, Y: 1}) {
		t.Errorf("To = %+v, want bottom boundary (1, 1)", seg.To)
	}
}

func TestOutgoingHalfCrossColumn(t *testing.T) {
	conn := outgoingHalf("child", "parent", 2, 0, DefaultPalette)

	if len(conn.Path) != 2 {
		t.Fatalf("len(Path) = %d, want line then curve", len(conn.Path))
	}

	drop, sweep := conn.Path[0], conn.Path[1]
	if drop.Kind != SegmentLine {
		t.Errorf("first segment Kind = %q, want %q", drop.Kind, SegmentLine)
	}
	if drop.From != (Point{X: 2, Y: 0.5}) || drop.To != (Point{X: 2, Y: 0.75}) {
		t.Errorf("drop = %+v → %+v, want (2,0.5) → (2,0.75)", drop.From, drop.To)
	}

	if sweep.Kind != SegmentCurve {
		t.Errorf("second segment Kind = %q, want %q", sweep.Kind, SegmentCurve)
	}
	if sweep.From != drop.To {
		t.Errorf("curve starts at %+v, want %+v", sweep.From, drop.To)
	}
	if sweep.To != (Point{X: 0, Y: 1}) {
		t.Errorf("curve ends at %+v, want parent lane at boundary (0, 1)", sweep.To)
	}

	// Vertical tangents at both ends keep the joins smooth.
	if sweep.Ctrl1 == nil || sweep.Ctrl1.X != sweep.From.X {
		t.Errorf("Ctrl1 = %+v, want vertical tangent at x=%g", sweep.Ctrl1, sweep.From.X)
	}
	if sweep.Ctrl2 == nil || sweep.Ctrl2.X != sweep.To.X {
		t.Errorf("Ctrl2 = %+v, want vertical tangent at x=%g", sweep.Ctrl2, sweep.To.X)
	}
}

func TestIncomingHalfIsStraightDrop(t *testing.T) {
	conn := incomingHalf("child", "parent", 3, 1, DefaultPalette)

	if conn.Half != HalfIncoming {
		t.Errorf("Half = %q, want %q", conn.Half, HalfIncoming)
	}
	if conn.FromColumn != 3 || conn.ToColumn != 1 {
		t.Errorf("columns = [%d, %d], want [3, 1]", conn.FromColumn, conn.ToColumn)
	}
	if len(conn.Path) != 1 {
		t.Fatalf("len(Path) = %d, want 1", len(conn.Path))
	}

	seg := conn.Path[0]
	if seg.From != (Point{X: 1, Y: 0}) || seg.To != (Point{X: 1, Y: 0.5}) {
		t.Errorf("path = %+v → %+v, want (1,0) → (1,0.5)", seg.From, seg.To)
	}
}

func TestConnectorHalvesMeetAtBoundary(t *testing.T) {
	commits, branches := branchedWindow()
	g := Build(commits, branches, nil)

	// f1 (row 1, lane 1) connects down to m1 (row 2, lane 0). The
	// outgoing half must end where the incoming half begins, at the
	// parent's lane on the shared boundary.
	f1, _ := g.Commit("f1")
	m1, _ := g.Commit("m1")

	var out, in *Connector
	for i := range f1.Connectors {
		if f1.Connectors[i].Half == HalfOutgoing && f1.Connectors[i].ParentSHA == "m1" {
			out = &f1.Connectors[i]
		}
	}
	for i := range m1.Connectors {
		if m1.Connectors[i].Half == HalfIncoming && m1.Connectors[i].ChildSHA == "f1" {
			in = &m1.Connectors[i]
		}
	}
	if out == nil || in == nil {
		t.Fatal("edge f1 → m1 is missing a half")
	}

	outEnd := out.Path[len(out.Path)-1].To
	inStart := in.Path[0].From
	if outEnd.X != inStart.X {
		t.Errorf("halves meet at x=%g and x=%g, want same lane", outEnd.X, inStart.X)
	}
	if outEnd.Y != 1 || inStart.Y != 0 {
		t.Errorf("halves end at y=%g and start at y=%g, want 1 and 0", outEnd.Y, inStart.Y)
	}
	if out.Color != in.Color {
		t.Errorf("half colors differ: %q vs %q", out.Color, in.Color)
	}
}

func TestConnectorColorUsesOuterLane(t *testing.T) {
	palette := []string{"trunk-color", "feature-color"}

	tests := []struct {
		name      string
		childCol  int
		parentCol int
		expected  string
	}{
		{name: "branch out", childCol: 1, parentCol: 0, expected: "feature-color"},
		{name: "merge in", childCol: 0, parentCol: 1, expected: "feature-color"},
		{name: "same lane", childCol: 0, parentCol: 0, expected: "trunk-color"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := connectorColor(tt.childCol, tt.parentCol, palette); got != tt.expected {
				t.Errorf("connectorColor() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestPathSVG(t *testing.T) {
	tests := []struct {
		name     string
		path     Path
		expected string
	}{
		{
			name:     "empty",
			path:     nil,
			expected: "",
		},
		{
			name:     "straight",
			path:     Path{line(1, 0.5, 1, 1)},
			expected: "M 1,0.5 L 1,1",
		},
		{
			name: "drop and sweep",
			path: Path{
				line(1, 0.5, 1, 0.75),
				curve(1, 0.75, 0, 1),
			},
			expected: "M 1,0.5 L 1,0.75 C 1,0.875 0,0.875 0,1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.path.SVG(); got != tt.expected {
				t.Errorf("SVG() = %q, want %q", got, tt.expected)
			}
		})
	}
}

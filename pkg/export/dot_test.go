package export

import (
	"strings"
	"testing"

	"github.com/matzehuels/gitlanes/pkg/history"
	"github.com/matzehuels/gitlanes/pkg/layout"
)

func testSnapshot() *history.Snapshot {
	return &history.Snapshot{
		Commits: []history.Commit{
			{SHA: "dddd", Message: "Merge feature into main", Author: "Ada", Timestamp: 400, Parents: []string{"bbbb", "cccc"}},
			{SHA: "cccc", Message: "Feature work", Author: "Grace", Timestamp: 300, Parents: []string{"bbbb"}},
			{SHA: "bbbb", Message: "Second", Author: "Ada", Timestamp: 200, Parents: []string{"aaaa"}},
			{SHA: "aaaa", Message: "First", Author: "Ada", Timestamp: 100, Parents: []string{"0000"}},
		},
		Branches: []history.Branch{
			{Name: "main", IsCurrent: true, TipSHA: "dddd"},
			{Name: "feature", TipSHA: "cccc"},
		},
	}
}

func TestToDOT(t *testing.T) {
	snap := testSnapshot()
	g := layout.Build(snap.Commits, snap.Branches, nil)

	dot := ToDOT(snap, g, Options{})

	if !strings.HasPrefix(dot, "digraph history {") {
		t.Errorf("missing digraph header:\n%s", dot)
	}
	if !strings.HasSuffix(dot, "}\n") {
		t.Error("missing closing brace")
	}

	for _, want := range []string{
		`"dddd" [`,
		"dddd\\nMerge feature into main",
		`"dddd" -> "bbbb"`,
		`"dddd" -> "cccc"`,
		`"cccc" -> "bbbb"`,
		"peripheries=2",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("output missing %q:\n%s", want, dot)
		}
	}

	// The parent of the oldest commit lies outside the window.
	if strings.Contains(dot, `-> "0000"`) {
		t.Errorf("edge to out-of-window parent present:\n%s", dot)
	}
}

func TestToDOTDetailed(t *testing.T) {
	snap := testSnapshot()
	g := layout.Build(snap.Commits, snap.Branches, nil)

	dot := ToDOT(snap, g, Options{Detailed: true})

	for _, want := range []string{"lane: 0", "branch: main", "author: Ada"} {
		if !strings.Contains(dot, want) {
			t.Errorf("detailed output missing %q", want)
		}
	}
}

func TestToDOTEmptyGraph(t *testing.T) {
	snap := &history.Snapshot{}
	g := layout.Build(nil, nil, nil)

	dot := ToDOT(snap, g, Options{})
	if !strings.HasPrefix(dot, "digraph history {") || !strings.HasSuffix(dot, "}\n") {
		t.Errorf("empty graph output malformed:\n%s", dot)
	}
}

func TestSubject(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    string
	}{
		{"single line", "Fix login", "Fix login"},
		{"multi line", "Fix login\n\nLonger body here", "Fix login"},
		{"trailing space", "Fix login  \nbody", "Fix login"},
		{"empty", "", ""},
		{"truncated", strings.Repeat("x", 80), strings.Repeat("x", 47) + "..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := subject(tt.message); got != tt.want {
				t.Errorf("subject(%q) = %q, want %q", tt.message, got, tt.want)
			}
		})
	}
}

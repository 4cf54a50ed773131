package layout

import (
	"reflect"
	"testing"

	"github.com/matzehuels/gitlanes/pkg/history"
)

func commit(sha string, parents ...string) history.Commit {
	return history.Commit{SHA: sha, Parents: parents}
}

func localBranch(name, tip string) history.Branch {
	return history.Branch{Name: name, TipSHA: tip}
}

// Linear history: c1 ← c2 ← c3, main at c3.
func linearWindow() ([]history.Commit, []history.Branch) {
	commits := []history.Commit{
		commit("c3", "c2"),
		commit("c2", "c1"),
		commit("c1"),
	}
	return commits, []history.Branch{localBranch("main", "c3")}
}

// Diverged history: m1 ← m2 (main), m1 ← f1 (feature).
func branchedWindow() ([]history.Commit, []history.Branch) {
	commits := []history.Commit{
		commit("m2", "m1"),
		commit("f1", "m1"),
		commit("m1"),
	}
	branches := []history.Branch{
		localBranch("feature", "f1"),
		localBranch("main", "m2"),
	}
	return commits, branches
}

// Merged history: feature f1 merged back into main as m3.
func mergedWindow() ([]history.Commit, []history.Branch) {
	commits := []history.Commit{
		commit("m3", "m2", "f1"),
		commit("m2", "m1"),
		commit("f1", "m1"),
		commit("m1"),
	}
	branches := []history.Branch{
		localBranch("main", "m3"),
		localBranch("feature", "f1"),
	}
	return commits, branches
}

func TestBuildLinearHistory(t *testing.T) {
	commits, branches := linearWindow()
	g := Build(commits, branches, nil)

	if len(g.Commits) != 3 {
		t.Fatalf("len(Commits) = %d, want 3", len(g.Commits))
	}

	for i, c := range g.Commits {
		if c.Row != i {
			t.Errorf("commit %s: Row = %d, want %d", c.SHA, c.Row, i)
		}
		if c.Column != 0 {
			t.Errorf("commit %s: Column = %d, want 0", c.SHA, c.Column)
		}
		if c.IsMerge {
			t.Errorf("commit %s: IsMerge = true, want false", c.SHA)
		}
		if c.IsBranchPoint {
			t.Errorf("commit %s: IsBranchPoint = true, want false", c.SHA)
		}
		if c.OwnerBranch != "main" {
			t.Errorf("commit %s: OwnerBranch = %q, want main", c.SHA, c.OwnerBranch)
		}
	}

	if !g.Commits[0].IsBranchTip {
		t.Error("c3: IsBranchTip = false, want true")
	}
	if g.MaxColumn != 0 {
		t.Errorf("MaxColumn = %d, want 0", g.MaxColumn)
	}
}

func TestBuildBranchedHistory(t *testing.T) {
	commits, branches := branchedWindow()
	g := Build(commits, branches, nil)

	m1, ok := g.Commit("m1")
	if !ok {
		t.Fatal("m1 missing from layout")
	}
	if !m1.IsBranchPoint {
		t.Error("m1: IsBranchPoint = false, want true")
	}

	main, ok := g.Branch("main")
	if !ok {
		t.Fatal("main missing from layout")
	}
	feature, ok := g.Branch("feature")
	if !ok {
		t.Fatal("feature missing from layout")
	}

	if main.Column != 0 {
		t.Errorf("main.Column = %d, want 0", main.Column)
	}
	if feature.Column != 1 {
		t.Errorf("feature.Column = %d, want 1", feature.Column)
	}

	// main walks first and takes the shared trunk history.
	wantOwners := map[string]string{"m2": "main", "m1": "main", "f1": "feature"}
	for sha, want := range wantOwners {
		c, _ := g.Commit(sha)
		if c.OwnerBranch != want {
			t.Errorf("%s: OwnerBranch = %q, want %q", sha, c.OwnerBranch, want)
		}
	}

	if main.StartRow != 0 || main.EndRow != 2 {
		t.Errorf("main rows = [%d, %d], want [0, 2]", main.StartRow, main.EndRow)
	}
	if feature.StartRow != 1 || feature.EndRow != 1 {
		t.Errorf("feature rows = [%d, %d], want [1, 1]", feature.StartRow, feature.EndRow)
	}
}

func TestBuildMergeCommit(t *testing.T) {
	commits, branches := mergedWindow()
	g := Build(commits, branches, nil)

	m3 := g.Commits[0]
	if !m3.IsMerge {
		t.Error("m3: IsMerge = false, want true")
	}

	var outgoing []Connector
	for _, conn := range m3.Connectors {
		if conn.Half == HalfOutgoing {
			outgoing = append(outgoing, conn)
		}
	}
	if len(outgoing) != 2 {
		t.Fatalf("m3 outgoing connectors = %d, want 2", len(outgoing))
	}

	// First parent m2 shares main's lane: one straight segment. Second
	// parent f1 sits in feature's lane: drop plus curve.
	toM2, toF1 := outgoing[0], outgoing[1]
	if toM2.ParentSHA != "m2" || toF1.ParentSHA != "f1" {
		t.Fatalf("outgoing order = [%s %s], want [m2 f1]", toM2.ParentSHA, toF1.ParentSHA)
	}
	if len(toM2.Path) != 1 || toM2.Path[0].Kind != SegmentLine {
		t.Errorf("edge to m2: path = %+v, want one straight segment", toM2.Path)
	}
	if len(toF1.Path) != 2 || toF1.Path[1].Kind != SegmentCurve {
		t.Errorf("edge to f1: path = %+v, want line then curve", toF1.Path)
	}
}

func TestBuildTruncatedWindow(t *testing.T) {
	// c2's parent c1 is beyond the fetched window.
	commits := []history.Commit{
		commit("c3", "c2"),
		commit("c2", "c1"),
	}
	branches := []history.Branch{localBranch("main", "c3")}

	g := Build(commits, branches, nil)

	if len(g.Commits) != 2 {
		t.Fatalf("len(Commits) = %d, want 2", len(g.Commits))
	}

	c2 := g.Commits[1]
	for _, conn := range c2.Connectors {
		if conn.Half == HalfOutgoing {
			t.Errorf("c2 has outgoing connector to %s, want none", conn.ParentSHA)
		}
	}

	// The walk still claims both commits before stopping at the window edge.
	for _, c := range g.Commits {
		if c.OwnerBranch != "main" {
			t.Errorf("%s: OwnerBranch = %q, want main", c.SHA, c.OwnerBranch)
		}
	}
}

func TestBuildEmptyWindow(t *testing.T) {
	g := Build(nil, []history.Branch{localBranch("main", "c1")}, nil)

	if g.Commits == nil || len(g.Commits) != 0 {
		t.Errorf("Commits = %v, want empty slice", g.Commits)
	}
	if g.Branches == nil || len(g.Branches) != 0 {
		t.Errorf("Branches = %v, want empty slice", g.Branches)
	}
	if g.MaxColumn != 0 {
		t.Errorf("MaxColumn = %d, want 0", g.MaxColumn)
	}
}

func TestBuildRowCountMatchesInput(t *testing.T) {
	linearCommits, linearBranches := linearWindow()
	mergedCommits, mergedBranches := mergedWindow()

	tests := []struct {
		name     string
		commits  []history.Commit
		branches []history.Branch
	}{
		{name: "empty", commits: nil, branches: nil},
		{name: "single", commits: []history.Commit{commit("c1")}, branches: nil},
		{name: "linear", commits: linearCommits, branches: linearBranches},
		{name: "merged", commits: mergedCommits, branches: mergedBranches},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := Build(tt.commits, tt.branches, nil)
			if len(g.Commits) != len(tt.commits) {
				t.Errorf("len(Commits) = %d, want %d", len(g.Commits), len(tt.commits))
			}
			for i, c := range g.Commits {
				if c.Row != i {
					t.Errorf("Commits[%d].Row = %d, want %d", i, c.Row, i)
				}
			}
		})
	}
}

func TestBuildExclusiveOwnership(t *testing.T) {
	commits, branches := mergedWindow()
	g := Build(commits, branches, nil)

	seen := make(map[string]string)
	for _, c := range g.Commits {
		if c.OwnerBranch == "" {
			continue
		}
		if prev, ok := seen[c.SHA]; ok && prev != c.OwnerBranch {
			t.Errorf("%s owned by both %s and %s", c.SHA, prev, c.OwnerBranch)
		}
		seen[c.SHA] = c.OwnerBranch
	}
}

func TestBuildDeterminism(t *testing.T) {
	commits, branches := mergedWindow()

	first := Build(commits, branches, nil)
	second := Build(commits, branches, nil)

	if !reflect.DeepEqual(first, second) {
		t.Error("two builds of identical input differ")
	}
}

func TestBuildTrunkPriority(t *testing.T) {
	commits := []history.Commit{
		commit("b2", "b1"),
		commit("c3", "c2"),
		commit("c2", "c1"),
		commit("b1", "c1"),
		commit("c1"),
	}
	// "aaa" sorts before "main" and is the checked-out branch; main must
	// still take column 0.
	branches := []history.Branch{
		{Name: "aaa", IsCurrent: true, TipSHA: "b2"},
		localBranch("main", "c3"),
	}

	g := Build(commits, branches, nil)

	main, ok := g.Branch("main")
	if !ok {
		t.Fatal("main missing from layout")
	}
	if main.Column != 0 {
		t.Errorf("main.Column = %d, want 0", main.Column)
	}
}

func TestBuildMergeAndTipFlags(t *testing.T) {
	commits, branches := mergedWindow()
	g := Build(commits, branches, nil)

	tips := map[string]bool{"m3": true, "f1": true}
	for _, c := range g.Commits {
		wantMerge := len(c.Parents) > 1
		if c.IsMerge != wantMerge {
			t.Errorf("%s: IsMerge = %v, want %v", c.SHA, c.IsMerge, wantMerge)
		}
		if c.IsBranchTip != tips[c.SHA] {
			t.Errorf("%s: IsBranchTip = %v, want %v", c.SHA, c.IsBranchTip, tips[c.SHA])
		}
	}
}

func TestBuildMaxColumnBound(t *testing.T) {
	tests := []struct {
		name     string
		branches []history.Branch
		expected int
	}{
		{name: "no branches", branches: nil, expected: 0},
		{name: "one branch", branches: []history.Branch{localBranch("main", "c3")}, expected: 0},
		{
			name: "three branches",
			branches: []history.Branch{
				localBranch("main", "c3"),
				localBranch("a", "c2"),
				localBranch("b", "c1"),
			},
			expected: 2,
		},
		{
			name: "remote branches do not count",
			branches: []history.Branch{
				localBranch("main", "c3"),
				{Name: "origin/main", IsRemote: true, TipSHA: "c3"},
			},
			expected: 0,
		},
	}

	commits, _ := linearWindow()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := Build(commits, tt.branches, nil)
			if g.MaxColumn != tt.expected {
				t.Errorf("MaxColumn = %d, want %d", g.MaxColumn, tt.expected)
			}
		})
	}
}

func TestBuildOverflowLane(t *testing.T) {
	// d1 is detached: no branch's first-parent walk reaches it.
	commits := []history.Commit{
		commit("c3", "c2"),
		commit("d1"),
		commit("c2", "c1"),
		commit("c1"),
	}
	branches := []history.Branch{localBranch("main", "c3")}

	g := Build(commits, branches, nil)

	d1, ok := g.Commit("d1")
	if !ok {
		t.Fatal("d1 missing from layout")
	}
	if d1.OwnerBranch != "" {
		t.Errorf("d1: OwnerBranch = %q, want unowned", d1.OwnerBranch)
	}
	if d1.Column != 1 {
		t.Errorf("d1: Column = %d, want overflow lane 1", d1.Column)
	}

	// The shared overflow lane sits one past MaxColumn.
	if g.MaxColumn != 0 {
		t.Errorf("MaxColumn = %d, want 0", g.MaxColumn)
	}
}

func TestBuildSecondParentStaysUnclaimed(t *testing.T) {
	// f1 was merged into m2 but its branch has been deleted: it is only
	// reachable through m2's second parent, so it lands in the overflow
	// lane rather than under main.
	commits := []history.Commit{
		commit("m3", "m2"),
		commit("m2", "m1", "f1"),
		commit("f1", "m1"),
		commit("m1"),
	}
	branches := []history.Branch{localBranch("main", "m3")}

	g := Build(commits, branches, nil)

	f1, ok := g.Commit("f1")
	if !ok {
		t.Fatal("f1 missing from layout")
	}
	if f1.OwnerBranch != "" {
		t.Errorf("f1: OwnerBranch = %q, want unowned", f1.OwnerBranch)
	}
	if f1.Column != 1 {
		t.Errorf("f1: Column = %d, want overflow lane 1", f1.Column)
	}
}

func TestBuildTipOutsideWindow(t *testing.T) {
	commits, _ := linearWindow()
	branches := []history.Branch{
		localBranch("main", "c3"),
		localBranch("stale", "gone"),
	}

	g := Build(commits, branches, nil)

	stale, ok := g.Branch("stale")
	if !ok {
		t.Fatal("stale branch missing from layout")
	}
	if stale.HasRows() {
		t.Errorf("stale rows = [%d, %d], want none", stale.StartRow, stale.EndRow)
	}
	if stale.StartRow != -1 || stale.EndRow != -1 {
		t.Errorf("stale rows = [%d, %d], want [-1, -1]", stale.StartRow, stale.EndRow)
	}

	// The lane is still reserved even though nothing was claimed.
	if stale.Column != 1 {
		t.Errorf("stale.Column = %d, want 1", stale.Column)
	}
	for _, c := range g.Commits {
		if c.OwnerBranch == "stale" {
			t.Errorf("%s claimed by stale, want none", c.SHA)
		}
	}
}

func TestBuildCustomPalette(t *testing.T) {
	commits, branches := branchedWindow()
	palette := []string{"#111111", "#222222"}

	g := Build(commits, branches, palette)

	main, _ := g.Branch("main")
	feature, _ := g.Branch("feature")
	if main.Color != "#111111" {
		t.Errorf("main.Color = %q, want #111111", main.Color)
	}
	if feature.Color != "#222222" {
		t.Errorf("feature.Color = %q, want #222222", feature.Color)
	}

	// Palette cycles once columns outrun it: the overflow lane (column 2)
	// wraps back to the first entry.
	commitsWithOrphan := append([]history.Commit{commit("d1")}, commits...)
	g = Build(commitsWithOrphan, branches, palette)
	d1, _ := g.Commit("d1")
	if d1.Color != "#111111" {
		t.Errorf("d1.Color = %q, want palette wrap to #111111", d1.Color)
	}
}

func TestBuildInputNotMutated(t *testing.T) {
	commits, branches := branchedWindow()
	original := make([]history.Commit, len(commits))
	copy(original, commits)

	g := Build(commits, branches, nil)
	g.Commits[0].Parents[0] = "mutated"

	if commits[0].Parents[0] != original[0].Parents[0] {
		t.Error("Build aliased input parent slice")
	}
}

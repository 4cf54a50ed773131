package layout

import (
	"github.com/matzehuels/gitlanes/pkg/history"
)

// markers bundles the lookups behind the per-commit flags: the reverse
// adjacency of the window and the set of prioritized branch tips. Both
// are built in a single pass each.
type markers struct {
	children map[string][]string
	tips     map[string]bool
}

func computeMarkers(commits []history.Commit, prioritized []history.Branch) markers {
	return markers{
		children: history.Children(commits),
		tips:     history.Tips(prioritized),
	}
}

// isBranchPoint reports whether more than one commit in the window lists
// sha as a parent, i.e. history diverges there.
func (m markers) isBranchPoint(sha string) bool { return len(m.children[sha]) > 1 }

// isBranchTip reports whether sha is the tip of a prioritized branch.
func (m markers) isBranchTip(sha string) bool { return m.tips[sha] }

package layout

import (
	"github.com/matzehuels/gitlanes/pkg/history"
)

// Ownership maps commits to the branches that claimed them.
//
// Owner is keyed by commit hash; Claims holds each branch's claimed
// hashes in walk order (tip first, then up the first-parent chain).
// Claims never overlap between branches.
type Ownership struct {
	Owner  map[string]string
	Claims map[string][]string
}

// ResolveOwnership assigns each commit to at most one branch by walking,
// for every branch in priority order, the first-parent chain from the
// branch tip. A commit already claimed by an earlier branch stops the
// walk on that path, so shared trunk history is attributed to whichever
// branch reached it first and never re-walked.
//
// Walks use an explicit stack rather than recursion; first-parent chains
// can be as deep as the window itself. Merge second parents are not
// followed: the owning line of a branch is its first-parent spine, and
// commits reachable only through second parents stay unclaimed.
//
// A tip or parent hash outside the window ends that path silently.
// Unclaimed commits are a normal outcome, not an error.
func ResolveOwnership(commits []history.Commit, prioritized []history.Branch) *Ownership {
	idx := history.Index(commits)
	own := &Ownership{
		Owner:  make(map[string]string, len(commits)),
		Claims: make(map[string][]string, len(prioritized)),
	}
	claimed := make(map[string]bool, len(commits))

	for _, branch := range prioritized {
		visited := make(map[string]bool)
		stack := []string{branch.TipSHA}

		for len(stack) > 0 {
			sha := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			if visited[sha] {
				continue
			}
			visited[sha] = true

			pos, ok := idx[sha]
			if !ok {
				continue
			}
			if claimed[sha] {
				continue
			}

			claimed[sha] = true
			own.Owner[sha] = branch.Name
			own.Claims[branch.Name] = append(own.Claims[branch.Name], sha)

			if parent := commits[pos].FirstParent(); parent != "" {
				stack = append(stack, parent)
			}
		}
	}

	return own
}

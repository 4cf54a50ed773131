package layout

import (
	"slices"

	"github.com/matzehuels/gitlanes/pkg/history"
)

// trunkNames are the branch names that always take the leftmost lanes.
var trunkNames = map[string]bool{
	"main":   true,
	"master": true,
}

// Prioritize filters branches down to local ones with a resolved tip and
// orders them for lane assignment: a branch literally named main or
// master sorts first, then the currently checked-out branch, then the
// rest lexicographically by name. The result's index order is the lane
// column order; the input is not modified.
func Prioritize(branches []history.Branch) []history.Branch {
	eligible := make([]history.Branch, 0, len(branches))
	for _, b := range branches {
		if b.IsLocal() && b.HasTip() {
			eligible = append(eligible, b)
		}
	}

	slices.SortStableFunc(eligible, func(a, b history.Branch) int {
		if aTrunk, bTrunk := trunkNames[a.Name], trunkNames[b.Name]; aTrunk != bTrunk {
			if aTrunk {
				return -1
			}
			return 1
		}
		if a.IsCurrent != b.IsCurrent {
			if a.IsCurrent {
				return -1
			}
			return 1
		}
		if a.Name < b.Name {
			return -1
		}
		if a.Name > b.Name {
			return 1
		}
		return 0
	})

	return eligible
}

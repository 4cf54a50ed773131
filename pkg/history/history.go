package history

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptySHA is returned by [Snapshot.Validate] when a commit has an
	// empty hash. Every commit must carry its full hex hash.
	ErrEmptySHA = errors.New("commit sha must not be empty")

	// ErrDuplicateSHA is returned by [Snapshot.Validate] when the same hash
	// appears more than once in a commit window.
	ErrDuplicateSHA = errors.New("duplicate commit sha")
)

// shortSHALen is the abbreviated hash length used when a source does not
// supply its own abbreviation.
const shortSHALen = 7

// Commit is one commit record inside a snapshot window.
//
// Parents lists parent hashes in git's order: the first entry is the
// first parent, which defines the branch's own line of development.
// Parent hashes may point outside the fetched window.
type Commit struct {
	SHA       string   `json:"sha" bson:"sha"`
	ShortSHA  string   `json:"short_sha,omitempty" bson:"short_sha,omitempty"`
	Message   string   `json:"message" bson:"message"`
	Author    string   `json:"author" bson:"author"`
	Email     string   `json:"email,omitempty" bson:"email,omitempty"`
	Timestamp int64    `json:"timestamp" bson:"timestamp"` // Unix seconds (committer time)
	Parents   []string `json:"parents" bson:"parents"`
}

// Short returns the abbreviated hash: ShortSHA when the source supplied
// one, otherwise the first seven characters of SHA.
func (c Commit) Short() string {
	if c.ShortSHA != "" {
		return c.ShortSHA
	}
	if len(c.SHA) > shortSHALen {
		return c.SHA[:shortSHALen]
	}
	return c.SHA
}

// IsMerge reports whether the commit has more than one parent.
func (c Commit) IsMerge() bool { return len(c.Parents) > 1 }

// FirstParent returns the first parent hash, or "" for a root commit.
func (c Commit) FirstParent() string {
	if len(c.Parents) == 0 {
		return ""
	}
	return c.Parents[0]
}

// Branch is one branch reference at snapshot time.
//
// TipSHA may be empty when the tip could not be resolved (e.g. a
// symbolic ref pointing at an unborn branch); such branches are carried
// in listings but never claim commits in a layout.
type Branch struct {
	Name      string `json:"name" bson:"name"`
	IsRemote  bool   `json:"is_remote,omitempty" bson:"is_remote,omitempty"`
	IsCurrent bool   `json:"is_current,omitempty" bson:"is_current,omitempty"`
	Upstream  string `json:"upstream,omitempty" bson:"upstream,omitempty"`
	Ahead     int    `json:"ahead,omitempty" bson:"ahead,omitempty"`
	Behind    int    `json:"behind,omitempty" bson:"behind,omitempty"`
	TipSHA    string `json:"tip_sha,omitempty" bson:"tip_sha,omitempty"`
}

// IsLocal reports whether the branch is a local (non-remote) reference.
func (b Branch) IsLocal() bool { return !b.IsRemote }

// HasTip reports whether the branch resolved to a tip commit.
func (b Branch) HasTip() bool { return b.TipSHA != "" }

// Snapshot is one immutable read of a repository: a commit window plus
// the branches that point into it. Repo and CapturedAt identify where
// and when the snapshot was taken; both are informational only.
type Snapshot struct {
	Repo       string   `json:"repo,omitempty" bson:"repo,omitempty"`
	CapturedAt int64    `json:"captured_at,omitempty" bson:"captured_at,omitempty"` // Unix seconds
	Commits    []Commit `json:"commits" bson:"commits"`
	Branches   []Branch `json:"branches" bson:"branches"`
}

// Validate checks structural integrity of the commit window and returns
// nil if valid. It verifies that every commit carries a non-empty hash
// and that no hash appears twice.
//
// Validation guards the import path only. The layout engine accepts any
// well-typed snapshot without validating, per its fail-soft contract.
func (s *Snapshot) Validate() error {
	seen := make(map[string]struct{}, len(s.Commits))
	for i, c := range s.Commits {
		if c.SHA == "" {
			return fmt.Errorf("commit %d: %w", i, ErrEmptySHA)
		}
		if _, ok := seen[c.SHA]; ok {
			return fmt.Errorf("commit %d (%s): %w", i, c.Short(), ErrDuplicateSHA)
		}
		seen[c.SHA] = struct{}{}
	}
	return nil
}

// Index builds a hash → window position lookup. Position equals the
// commit's index in the input order (0 = newest), which is also its row
// in a layout. Returns an empty map for an empty window.
func Index(commits []Commit) map[string]int {
	m := make(map[string]int, len(commits))
	for i, c := range commits {
		m[c.SHA] = i
	}
	return m
}

// Children builds the reverse adjacency of a commit window: each parent
// hash maps to the hashes of commits that list it as a parent, in window
// order. Keys may include hashes outside the window; callers that only
// care about in-window commits can ignore them.
func Children(commits []Commit) map[string][]string {
	m := make(map[string][]string)
	for _, c := range commits {
		for _, p := range c.Parents {
			m[p] = append(m[p], c.SHA)
		}
	}
	return m
}

// Tips builds the set of branch tip hashes. Branches without a resolved
// tip contribute nothing.
func Tips(branches []Branch) map[string]bool {
	m := make(map[string]bool, len(branches))
	for _, b := range branches {
		if b.TipSHA != "" {
			m[b.TipSHA] = true
		}
	}
	return m
}

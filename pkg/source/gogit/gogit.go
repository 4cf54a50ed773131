// Package gogit reads repositories with go-git, needing no external binary.
package gogit

import (
	"container/heap"
	"context"
	"sort"
	"strings"
	"time"

	gitlib "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/matzehuels/gitlanes/pkg/errors"
	"github.com/matzehuels/gitlanes/pkg/history"
	"github.com/matzehuels/gitlanes/pkg/source"
)

// Backend describes the go-git backend.
var Backend = &source.Backend{
	Name:    "gogit",
	Aliases: []string{"native", "go-git"},
	Open:    open,
}

// aheadBehindCap bounds the walk when counting divergence from an upstream.
// Counts saturate at the cap instead of walking unbounded history.
const aheadBehindCap = 1000

type repo struct {
	path string
	repo *gitlib.Repository
}

func open(path string) (source.Source, error) {
	r, err := gitlib.PlainOpenWithOptions(path, &gitlib.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if err == gitlib.ErrRepositoryNotExists {
			return nil, errors.New(errors.ErrCodeRepoNotFound, "not a git repository: %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeRepoNotFound, err, "opening %s", path)
	}

	root, err := source.DetectRoot(path)
	if err != nil {
		// Bare repositories have no .git entry; fall back to the given path.
		root = path
	}
	return &repo{path: root, repo: r}, nil
}

// Path returns the repository root.
func (s *repo) Path() string { return s.path }

// Close releases the handle. go-git holds no descriptors between calls.
func (s *repo) Close() error { return nil }

// Snapshot reads the commit window and branch state in one pass.
func (s *repo) Snapshot(ctx context.Context, opts source.Options) (*history.Snapshot, error) {
	opts = opts.WithDefaults()

	branches, err := s.branches()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSnapshotFailed, err, "listing branches of %s", s.path)
	}

	commits, err := s.window(ctx, branches, opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSnapshotFailed, err, "reading history of %s", s.path)
	}

	return &history.Snapshot{
		Repo:       s.path,
		CapturedAt: time.Now().Unix(),
		Commits:    commits,
		Branches:   branches,
	}, nil
}

// Probe returns a fingerprint over all branch tips and the HEAD target.
func (s *repo) Probe(ctx context.Context) (string, error) {
	lines, err := s.refLines()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeSnapshotFailed, err, "probing %s", s.path)
	}
	sort.Strings(lines)
	return source.Fingerprint(lines), nil
}

func (s *repo) refLines() ([]string, error) {
	var lines []string

	refs, err := s.repo.References()
	if err != nil {
		return nil, err
	}
	defer refs.Close()
	err = refs.ForEach(func(ref *plumbing.Reference) error {
		if ref.Type() != plumbing.HashReference {
			return nil
		}
		name := ref.Name()
		if !name.IsBranch() && !name.IsRemote() {
			return nil
		}
		lines = append(lines, name.String()+" "+ref.Hash().String())
		return nil
	})
	if err != nil {
		return nil, err
	}

	// The symbolic HEAD distinguishes two branches parked on the same commit.
	if head, err := s.repo.Reference(plumbing.HEAD, false); err == nil {
		if head.Type() == plumbing.SymbolicReference {
			lines = append(lines, "HEAD -> "+head.Target().String())
		} else {
			lines = append(lines, "HEAD "+head.Hash().String())
		}
	}
	return lines, nil
}

// window walks history newest-first by committer time, seeded from HEAD and
// every local branch tip, honoring skip and limit.
func (s *repo) window(ctx context.Context, branches []history.Branch, opts source.Options) ([]history.Commit, error) {
	seeds := s.seedHashes(branches)
	if len(seeds) == 0 {
		return []history.Commit{}, nil
	}

	walk := &commitHeap{}
	seen := make(map[plumbing.Hash]bool, opts.Limit)
	for _, h := range seeds {
		if seen[h] {
			continue
		}
		seen[h] = true
		c, err := s.repo.CommitObject(h)
		if err != nil {
			// A ref can point at a missing object in a corrupted or
			// partially cloned repository. Skip the seed.
			continue
		}
		heap.Push(walk, c)
	}

	out := make([]history.Commit, 0, opts.Limit)
	popped := 0
	for walk.Len() > 0 && popped < opts.Skip+opts.Limit {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		c := heap.Pop(walk).(*object.Commit)
		popped++
		if popped > opts.Skip {
			out = append(out, toCommit(c))
		}

		for _, p := range c.ParentHashes {
			if seen[p] {
				continue
			}
			seen[p] = true
			parent, err := s.repo.CommitObject(p)
			if err != nil {
				// Shallow clones truncate ancestry. The walk just ends there.
				continue
			}
			heap.Push(walk, parent)
		}
	}
	return out, nil
}

func (s *repo) seedHashes(branches []history.Branch) []plumbing.Hash {
	var seeds []plumbing.Hash
	if head, err := s.repo.Head(); err == nil {
		seeds = append(seeds, head.Hash())
	}
	for _, b := range branches {
		if b.IsLocal() && b.HasTip() {
			seeds = append(seeds, plumbing.NewHash(b.TipSHA))
		}
	}
	return seeds
}

func toCommit(c *object.Commit) history.Commit {
	parents := make([]string, 0, len(c.ParentHashes))
	for _, p := range c.ParentHashes {
		parents = append(parents, p.String())
	}

	author := c.Author.Name
	if author == "" {
		author = "Unknown"
	}

	return history.Commit{
		SHA:       c.Hash.String(),
		ShortSHA:  c.Hash.String()[:7],
		Message:   strings.TrimSpace(c.Message),
		Author:    author,
		Email:     c.Author.Email,
		Timestamp: c.Committer.When.Unix(),
		Parents:   parents,
	}
}

// branches lists local then remote branches, each group sorted by name.
func (s *repo) branches() ([]history.Branch, error) {
	currentName := ""
	if head, err := s.repo.Head(); err == nil && head.Name().IsBranch() {
		currentName = head.Name().Short()
	}

	var local, remote []history.Branch
	refs, err := s.repo.References()
	if err != nil {
		return nil, err
	}
	defer refs.Close()
	err = refs.ForEach(func(ref *plumbing.Reference) error {
		if ref.Type() != plumbing.HashReference {
			return nil
		}
		name := ref.Name()
		switch {
		case name.IsBranch():
			short := name.Short()
			b := history.Branch{
				Name:      short,
				IsCurrent: short == currentName,
				TipSHA:    ref.Hash().String(),
			}
			b.Upstream, b.Ahead, b.Behind = s.trackingInfo(short, ref.Hash())
			local = append(local, b)
		case name.IsRemote():
			short := name.Short()
			if strings.HasSuffix(short, "/HEAD") {
				return nil
			}
			remote = append(remote, history.Branch{
				Name:     short,
				IsRemote: true,
				TipSHA:   ref.Hash().String(),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(local, func(i, j int) bool { return local[i].Name < local[j].Name })
	sort.Slice(remote, func(i, j int) bool { return remote[i].Name < remote[j].Name })

	out := make([]history.Branch, 0, len(local)+len(remote))
	out = append(out, local...)
	return append(out, remote...), nil
}

// trackingInfo resolves a branch's configured upstream and its divergence.
// Any failure along the way degrades to whatever was resolved so far.
func (s *repo) trackingInfo(name string, tip plumbing.Hash) (string, int, int) {
	cfg, err := s.repo.Config()
	if err != nil {
		return "", 0, 0
	}
	bc, ok := cfg.Branches[name]
	if !ok || bc.Merge == "" {
		return "", 0, 0
	}

	upstream := bc.Merge.Short()
	var upstreamRef plumbing.ReferenceName
	if bc.Remote == "" || bc.Remote == "." {
		upstreamRef = bc.Merge
	} else {
		upstream = bc.Remote + "/" + upstream
		upstreamRef = plumbing.NewRemoteReferenceName(bc.Remote, bc.Merge.Short())
	}

	ref, err := s.repo.Reference(upstreamRef, true)
	if err != nil {
		// Upstream is configured but gone.
		return upstream, 0, 0
	}

	ahead, behind := s.aheadBehind(tip, ref.Hash())
	return upstream, ahead, behind
}

// aheadBehind counts commits reachable from one tip but not the other, the
// same numbers git status reports as ahead/behind. Both walks saturate at
// aheadBehindCap.
func (s *repo) aheadBehind(local, upstream plumbing.Hash) (int, int) {
	if local == upstream {
		return 0, 0
	}
	localSet := s.reachable(local)
	upstreamSet := s.reachable(upstream)

	ahead, behind := 0, 0
	for h := range localSet {
		if !upstreamSet[h] {
			ahead++
		}
	}
	for h := range upstreamSet {
		if !localSet[h] {
			behind++
		}
	}
	return ahead, behind
}

func (s *repo) reachable(from plumbing.Hash) map[plumbing.Hash]bool {
	seen := make(map[plumbing.Hash]bool)
	stack := []plumbing.Hash{from}
	for len(stack) > 0 && len(seen) < aheadBehindCap {
		h := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[h] {
			continue
		}
		seen[h] = true

		c, err := s.repo.CommitObject(h)
		if err != nil {
			continue
		}
		stack = append(stack, c.ParentHashes...)
	}
	return seen
}

// commitHeap orders commits newest-first by committer time, breaking ties by
// hash so the walk is deterministic.
type commitHeap []*object.Commit

func (h commitHeap) Len() int { return len(h) }

func (h commitHeap) Less(i, j int) bool {
	ti, tj := h[i].Committer.When, h[j].Committer.When
	if !ti.Equal(tj) {
		return ti.After(tj)
	}
	return h[i].Hash.String() < h[j].Hash.String()
}

func (h commitHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *commitHeap) Push(x any) { *h = append(*h, x.(*object.Commit)) }

func (h *commitHeap) Pop() any {
	old := *h
	n := len(old)
	c := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return c
}

// Ensure repo implements Source.
var _ source.Source = (*repo)(nil)

// Package source reads commit history and branch state out of local git
// repositories.
//
// Two backends implement the Source interface:
//   - gogit: Pure Go via go-git, no external binary required
//   - gitexec: Shells out to the git CLI, faster on very large repositories
//
// Backends are described by a Backend value and selected by name through
// Open. The composition root decides which backends are on the menu; this
// package never imports a backend.
package source

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/gitlanes/pkg/errors"
	"github.com/matzehuels/gitlanes/pkg/history"
)

// DefaultLimit caps how many commits a snapshot carries when the caller does
// not say otherwise.
const DefaultLimit = 200

// Options configures what a snapshot contains.
type Options struct {
	Limit int // Maximum commits to read (default: 200)
	Skip  int // Commits to skip from the newest end, for paging
}

// WithDefaults returns a copy of Options with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	opts := o
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}
	if opts.Skip < 0 {
		opts.Skip = 0
	}
	return opts
}

// Source is an open repository handle.
type Source interface {
	// Snapshot reads the commit window and branch state in one pass.
	// Commits are ordered newest first by committer time.
	Snapshot(ctx context.Context, opts Options) (*history.Snapshot, error)

	// Probe returns a fingerprint of the repository's ref state. The
	// fingerprint changes whenever any branch tip or HEAD moves, so it can
	// key snapshot caches without reading history.
	Probe(ctx context.Context) (string, error)

	// Path returns the repository root.
	Path() string

	// Close releases the handle.
	Close() error
}

// Backend describes a repository backend.
type Backend struct {
	Name    string
	Aliases []string

	// Available reports whether the backend can run in this environment,
	// such as the git binary being on PATH.
	Available func() bool

	// Open opens the repository at path.
	Open func(path string) (Source, error)
}

// Matches reports whether name selects this backend.
func (b *Backend) Matches(name string) bool {
	if name == b.Name {
		return true
	}
	for _, alias := range b.Aliases {
		if name == alias {
			return true
		}
	}
	return false
}

// Open opens the repository at path with the named backend.
// An empty name or "auto" picks the first available backend.
func Open(path, name string, backends []*Backend) (Source, error) {
	if err := errors.ValidateRepoPath(path); err != nil {
		return nil, err
	}
	if len(backends) == 0 {
		return nil, errors.New(errors.ErrCodeInternal, "no backends registered")
	}

	if name == "" || name == "auto" {
		for _, b := range backends {
			if b.Available == nil || b.Available() {
				return b.Open(path)
			}
		}
		return nil, errors.New(errors.ErrCodeInvalidBackend, "no backend available (tried: %s)", backendNames(backends))
	}

	if err := errors.ValidateBackendName(name); err != nil {
		return nil, err
	}
	for _, b := range backends {
		if b.Matches(name) {
			if b.Available != nil && !b.Available() {
				return nil, errors.New(errors.ErrCodeInvalidBackend, "backend %q is not available in this environment", name)
			}
			return b.Open(path)
		}
	}
	return nil, errors.New(errors.ErrCodeInvalidBackend, "unknown backend %q (available: %s)", name, backendNames(backends))
}

func backendNames(backends []*Backend) string {
	names := make([]string, len(backends))
	for i, b := range backends {
		names[i] = b.Name
	}
	return strings.Join(names, ", ")
}

// DetectRoot walks up from path looking for a .git entry and returns the
// repository root. A .git file (worktrees, submodules) counts as well as a
// .git directory.
func DetectRoot(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	dir := abs
	for {
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New(errors.ErrCodeRepoNotFound, "not a git repository (or any parent): %s", abs)
		}
		dir = parent
	}
}

// GitDir returns the .git directory for a repository root, following a
// .git file indirection when present.
func GitDir(root string) (string, error) {
	entry := filepath.Join(root, ".git")
	info, err := os.Stat(entry)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeRepoNotFound, err, "no .git in %s", root)
	}
	if info.IsDir() {
		return entry, nil
	}

	// Worktrees keep a "gitdir: <path>" pointer file instead of a directory.
	data, err := os.ReadFile(entry)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeRepoNotFound, err, "reading %s", entry)
	}
	line := strings.TrimSpace(string(data))
	const prefix = "gitdir:"
	if !strings.HasPrefix(line, prefix) {
		return "", errors.New(errors.ErrCodeRepoNotFound, "unrecognized .git file in %s", root)
	}
	target := strings.TrimSpace(strings.TrimPrefix(line, prefix))
	if !filepath.IsAbs(target) {
		target = filepath.Join(root, target)
	}
	return filepath.Clean(target), nil
}

// Fingerprint hashes ref lines into a stable repository fingerprint.
// Lines must already be sorted by the caller.
func Fingerprint(lines []string) string {
	sum := sha256.Sum256([]byte(strings.Join(lines, "\n")))
	return hex.EncodeToString(sum[:])
}

package session

import (
	"context"
	"path/filepath"
	"sort"
)

// =============================================================================
// Recent repositories convenience wrapper
// =============================================================================

// Recents tracks repository opens on top of a Store, keeping one session
// per repository path.
type Recents struct {
	store Store
}

// NewRecents wraps a store for recent-repository tracking.
func NewRecents(store Store) *Recents {
	return &Recents{store: store}
}

// RecordOpen notes that a repository was opened, creating or touching its
// session. Paths are normalized to absolute form so the same repository
// opened from different working directories maps to one session.
func (r *Recents) RecordOpen(ctx context.Context, repo string) (*Session, error) {
	repo = normalizePath(repo)

	sess, err := r.findByRepo(ctx, repo)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		sess, err = New(repo)
		if err != nil {
			return nil, err
		}
	} else {
		sess.Touch()
	}

	if err := r.store.Set(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Remember stores view options on a repository's session without counting
// an open. Missing sessions are created.
func (r *Recents) Remember(ctx context.Context, repo, backend, palette string, limit int) error {
	repo = normalizePath(repo)

	sess, err := r.findByRepo(ctx, repo)
	if err != nil {
		return err
	}
	if sess == nil {
		sess, err = New(repo)
		if err != nil {
			return err
		}
	}
	sess.Backend = backend
	sess.Palette = palette
	sess.Limit = limit
	return r.store.Set(ctx, sess)
}

// Recent returns up to n sessions ordered by most recently opened.
// n <= 0 returns all of them.
func (r *Recents) Recent(ctx context.Context, n int) ([]*Session, error) {
	sessions, err := r.store.List(ctx)
	if err != nil {
		return nil, err
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].LastOpened.After(sessions[j].LastOpened)
	})
	if n > 0 && len(sessions) > n {
		sessions = sessions[:n]
	}
	return sessions, nil
}

// Forget drops the session for a repository. Unknown paths are a no-op.
func (r *Recents) Forget(ctx context.Context, repo string) error {
	sess, err := r.findByRepo(ctx, normalizePath(repo))
	if err != nil || sess == nil {
		return err
	}
	return r.store.Delete(ctx, sess.ID)
}

func (r *Recents) findByRepo(ctx context.Context, repo string) (*Session, error) {
	sessions, err := r.store.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, sess := range sessions {
		if sess.Repo == repo {
			return sess, nil
		}
	}
	return nil, nil
}

func normalizePath(repo string) string {
	if abs, err := filepath.Abs(repo); err == nil {
		return abs
	}
	return repo
}

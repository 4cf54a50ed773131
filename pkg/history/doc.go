// Package history defines the commit and branch records a repository
// snapshot is made of.
//
// # Overview
//
// A [Snapshot] captures one read of a repository: a window of commits in
// newest-first order plus the branch references that point into it. The
// snapshot is the sole input to the layout engine; sources (go-git or the
// git CLI) produce it, the io package serializes it, and everything
// downstream treats it as an immutable value.
//
// # Ordering Contract
//
// Commits are ordered by non-increasing timestamp, newest first. Sources
// guarantee this ordering when building a snapshot; the layout engine
// relies on it and never re-sorts.
//
// # Adjacency Helpers
//
// [Index] and [Children] build lookup maps over a commit window. Both are
// O(n) single passes and tolerate parent hashes that fall outside the
// window, which happens whenever history is truncated by a fetch limit.
package history

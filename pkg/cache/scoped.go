package cache

// ScopedKeyer wraps a Keyer with a prefix for namespace isolation.
// The server uses this to keep entries from different repositories apart
// when they share one cache backend.
//
// Example usage:
//
//	// Per-repository keys
//	repoKeyer := NewScopedKeyer(NewDefaultKeyer(), "repo:a1b2c3:")
//
//	// Shared keys
//	globalKeyer := NewDefaultKeyer()
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// SnapshotKey generates a prefixed key for snapshot caching.
func (k *ScopedKeyer) SnapshotKey(fingerprint string, opts SnapshotKeyOpts) string {
	return k.prefix + k.inner.SnapshotKey(fingerprint, opts)
}

// LayoutKey generates a prefixed key for layout caching.
func (k *ScopedKeyer) LayoutKey(snapshotHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(snapshotHash, opts)
}

// ArtifactKey generates a prefixed key for artifact caching.
func (k *ScopedKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(layoutHash, opts)
}

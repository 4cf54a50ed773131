package cache

// Keyer generates cache keys for the three pipeline stages.
// Implementations must be deterministic: the same inputs always map to the
// same key, across processes and restarts.
type Keyer interface {
	// SnapshotKey generates a key for repository snapshot caching.
	// The fingerprint comes from source.Probe and changes whenever the
	// repository's refs move.
	SnapshotKey(fingerprint string, opts SnapshotKeyOpts) string

	// LayoutKey generates a key for graph layout caching.
	// The snapshot hash is the content hash of the serialized snapshot.
	LayoutKey(snapshotHash string, opts LayoutKeyOpts) string

	// ArtifactKey generates a key for exported artifact caching.
	// The layout hash is the content hash of the serialized graph.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// SnapshotKeyOpts are the options that affect what a snapshot contains.
type SnapshotKeyOpts struct {
	Backend string `json:"backend"`
	Limit   int    `json:"limit"`
	Skip    int    `json:"skip"`
}

// LayoutKeyOpts are the options that affect the computed layout.
type LayoutKeyOpts struct {
	Palette string `json:"palette"`
}

// ArtifactKeyOpts are the options that affect an exported artifact.
type ArtifactKeyOpts struct {
	Format   string `json:"format"`
	Detailed bool   `json:"detailed"`
}

// DefaultKeyer is the standard Keyer implementation.
// Keys are prefixed by stage and hashed over all inputs, so unrelated stages
// can never collide and option changes always produce fresh keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// SnapshotKey generates a key for repository snapshot caching.
func (k *DefaultKeyer) SnapshotKey(fingerprint string, opts SnapshotKeyOpts) string {
	return hashKey("snapshot", fingerprint, opts)
}

// LayoutKey generates a key for graph layout caching.
func (k *DefaultKeyer) LayoutKey(snapshotHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", snapshotHash, opts)
}

// ArtifactKey generates a key for exported artifact caching.
func (k *DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)

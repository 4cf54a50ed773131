// Package cache provides pluggable byte caches for pipeline results.
//
// Three backends are available:
//   - file: Directory-based cache for CLI usage
//   - redis: Redis-backed cache for the server in multi-instance deployments
//   - null: No-op cache that disables caching entirely
//
// Cache keys are produced by a Keyer so that every stage of the pipeline
// (snapshot, layout, artifact) gets a content-addressed key derived from its
// inputs. Entries carry a TTL; expired entries read as misses.
//
// # Usage
//
//	c, err := cache.NewFileCache(dir)
//	if err != nil {
//	    return err
//	}
//	defer c.Close()
//
//	keyer := cache.NewDefaultKeyer()
//	key := keyer.SnapshotKey(fingerprint, cache.SnapshotKeyOpts{Backend: "gogit", Limit: 200})
//	if data, hit, err := c.Get(ctx, key); err == nil && hit {
//	    // Use cached snapshot
//	}
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// Cache is the interface all cache backends implement.
// Get reports a miss with (nil, false, nil); errors are reserved for backend
// failures so callers can treat any error as a miss without losing data.
type Cache interface {
	// Get retrieves a value. The second return value reports whether the key
	// was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with a TTL. A zero TTL stores without expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// TTLs per pipeline stage.
//
// Snapshot keys include the repository fingerprint, so an entry only goes
// stale when the fingerprint scheme itself changes. Layout and artifact keys
// are content-addressed on their input hashes and never go stale; their TTLs
// just bound disk usage.
const (
	TTLSnapshot = 1 * time.Hour
	TTLLayout   = 24 * time.Hour
	TTLArtifact = 24 * time.Hour
)

// NullCache is a no-op cache that never stores anything.
// Useful for testing or when caching should be disabled.
type NullCache struct{}

// NewNullCache creates a null cache.
func NewNullCache() Cache {
	return &NullCache{}
}

// Get always returns a cache miss.
func (c *NullCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, nil
}

// Set does nothing.
func (c *NullCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return nil
}

// Delete does nothing.
func (c *NullCache) Delete(ctx context.Context, key string) error {
	return nil
}

// Close does nothing.
func (c *NullCache) Close() error {
	return nil
}

// Ensure NullCache implements Cache.
var _ Cache = (*NullCache)(nil)

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...interface{}) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	// Use full SHA-256 hash (64 hex chars / 256 bits) to prevent collisions
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

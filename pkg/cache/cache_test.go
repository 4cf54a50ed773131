package cache

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	// Get always returns miss
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	// Set does nothing (no error)
	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}

	// Still a miss after Set
	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("NullCache should not store data")
	}

	// Delete does nothing (no error)
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	defer c.Close()

	// Miss before Set
	_, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("Get before Set should miss")
	}

	// Set then Get round-trips
	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if !hit {
		t.Fatal("Get after Set should hit")
	}
	if string(data) != "value" {
		t.Errorf("Get = %q, want %q", data, "value")
	}

	// Delete removes the entry
	if err := c.Delete(ctx, "key"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("Get after Delete should miss")
	}

	// Deleting a missing key is not an error
	if err := c.Delete(ctx, "missing"); err != nil {
		t.Errorf("Delete(missing) error: %v", err)
	}
}

func TestFileCacheExpiration(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	defer c.Close()

	if err := c.Set(ctx, "short", []byte("x"), time.Nanosecond); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	_, hit, err := c.Get(ctx, "short")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("expired entry should read as miss")
	}
}

func TestFileCachePrune(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	defer c.Close()

	if err := c.Set(ctx, "live", []byte("x"), time.Hour); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if err := c.Set(ctx, "stale", []byte("y"), time.Nanosecond); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	removed, err := c.Prune(ctx)
	if err != nil {
		t.Fatalf("Prune error: %v", err)
	}
	if removed != 1 {
		t.Errorf("Prune removed = %d, want 1", removed)
	}

	_, hit, _ := c.Get(ctx, "live")
	if !hit {
		t.Error("Prune should keep unexpired entries")
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("x"), 0); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if err := c.Clear(ctx); err != nil {
		t.Fatalf("Clear error: %v", err)
	}

	_, hit, _ := c.Get(ctx, "key")
	if hit {
		t.Error("Get after Clear should miss")
	}

	// Cache stays usable after Clear
	if err := c.Set(ctx, "key", []byte("y"), 0); err != nil {
		t.Errorf("Set after Clear error: %v", err)
	}
}

func TestHash(t *testing.T) {
	// Test determinism
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}

	// Test different inputs produce different hashes
	h3 := Hash([]byte("world"))
	if h1 == h3 {
		t.Error("Different inputs should produce different hashes")
	}

	// Test hash length (SHA-256 produces 64 hex chars)
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	// Keys are stage-prefixed
	sk := k.SnapshotKey("fp1", SnapshotKeyOpts{Backend: "gogit", Limit: 200})
	if !strings.HasPrefix(sk, "snapshot:") {
		t.Errorf("SnapshotKey missing stage prefix: %s", sk)
	}

	// Same inputs produce the same key
	if sk != k.SnapshotKey("fp1", SnapshotKeyOpts{Backend: "gogit", Limit: 200}) {
		t.Error("SnapshotKey should be deterministic")
	}

	// SnapshotKey should include options in hash
	sk2 := k.SnapshotKey("fp1", SnapshotKeyOpts{Backend: "gogit", Limit: 500})
	if sk == sk2 {
		t.Error("Different SnapshotKeyOpts should produce different keys")
	}

	// LayoutKey
	lk1 := k.LayoutKey("hash123", LayoutKeyOpts{Palette: "dark"})
	lk2 := k.LayoutKey("hash123", LayoutKeyOpts{Palette: "light"})
	if lk1 == lk2 {
		t.Error("Different LayoutKeyOpts should produce different keys")
	}

	// ArtifactKey
	ak1 := k.ArtifactKey("hash123", ArtifactKeyOpts{Format: "json"})
	ak2 := k.ArtifactKey("hash123", ArtifactKeyOpts{Format: "dot"})
	if ak1 == ak2 {
		t.Error("Different ArtifactKeyOpts should produce different keys")
	}

	// Stages never collide even with identical inputs
	if k.LayoutKey("same", LayoutKeyOpts{}) == k.ArtifactKey("same", ArtifactKeyOpts{}) {
		t.Error("Different stages should produce different keys")
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "repo:123:")

	// All keys should be prefixed
	sk := scoped.SnapshotKey("fp1", SnapshotKeyOpts{Backend: "gogit"})
	if !strings.HasPrefix(sk, "repo:123:snapshot:") {
		t.Errorf("ScopedKeyer SnapshotKey should be prefixed: %s", sk)
	}

	lk := scoped.LayoutKey("hash123", LayoutKeyOpts{})
	if !strings.HasPrefix(lk, "repo:123:layout:") {
		t.Errorf("ScopedKeyer LayoutKey should be prefixed: %s", lk)
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	// Should use DefaultKeyer when inner is nil
	scoped := NewScopedKeyer(nil, "prefix:")
	key := scoped.ArtifactKey("hash", ArtifactKeyOpts{Format: "json"})
	if !strings.HasPrefix(key, "prefix:artifact:") {
		t.Errorf("Unexpected key with nil inner: %s", key)
	}
}

func TestRetryableError(t *testing.T) {
	// Retryable(nil) returns nil
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}

	// Non-nil error is wrapped
	err := Retryable(ErrUnavailable)
	if err == nil {
		t.Fatal("Retryable should return wrapped error")
	}
	if !IsRetryable(err) {
		t.Error("IsRetryable should return true for wrapped error")
	}

	// Error message is preserved
	if err.Error() != ErrUnavailable.Error() {
		t.Errorf("Error message should be preserved: %s", err.Error())
	}

	// Non-wrapped errors are not retryable
	if IsRetryable(ErrNotFound) {
		t.Error("IsRetryable should return false for unwrapped error")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	ctx := context.Background()

	// Success on first try
	calls := 0
	err := RetryWithBackoff(ctx, func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Errorf("Should succeed: %v", err)
	}
	if calls != 1 {
		t.Errorf("Should call once: %d", calls)
	}

	// Non-retryable error stops immediately
	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		return ErrNotFound
	})
	if err != ErrNotFound {
		t.Errorf("Should return non-retryable error: %v", err)
	}
	if calls != 1 {
		t.Errorf("Should not retry non-retryable error: %d", calls)
	}

	// Retryable error triggers retries
	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		if calls < 2 {
			return Retryable(ErrUnavailable)
		}
		return nil
	})
	if err != nil {
		t.Errorf("Should succeed after retry: %v", err)
	}
	if calls != 2 {
		t.Errorf("Should retry once: %d", calls)
	}
}

func TestRetryWithBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel immediately

	err := RetryWithBackoff(ctx, func() error {
		return Retryable(ErrUnavailable)
	})
	if err != context.Canceled {
		t.Errorf("Should return context error: %v", err)
	}
}

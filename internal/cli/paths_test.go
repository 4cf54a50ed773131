package cli

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/gitlanes/internal/config"
)

func TestDefaultCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")

	dir, err := defaultCacheDir()
	if err != nil {
		t.Fatalf("defaultCacheDir() error: %v", err)
	}

	if dir == "" {
		t.Error("defaultCacheDir() returned empty string")
	}

	home, _ := os.UserHomeDir()
	if !strings.HasPrefix(dir, home) {
		t.Errorf("defaultCacheDir() = %q, should be under home %q", dir, home)
	}

	expected := filepath.Join(home, ".cache", appName)
	if dir != expected {
		t.Errorf("defaultCacheDir() = %q, want %q", dir, expected)
	}
}

func TestDefaultCacheDirXDG(t *testing.T) {
	customCache := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", customCache)

	dir, err := defaultCacheDir()
	if err != nil {
		t.Fatalf("defaultCacheDir() error: %v", err)
	}

	expected := filepath.Join(customCache, appName)
	if dir != expected {
		t.Errorf("defaultCacheDir() with XDG_CACHE_HOME = %q, want %q", dir, expected)
	}
}

func TestCacheDirConfigOverride(t *testing.T) {
	cfg := config.Default()
	cfg.Cache.Dir = filepath.Join(t.TempDir(), "lanes")
	c := &CLI{Logger: newLogger(io.Discard, LogInfo), Config: cfg}

	dir, err := c.cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if dir != cfg.Cache.Dir {
		t.Errorf("cacheDir() = %q, want config override %q", dir, cfg.Cache.Dir)
	}
}

func TestStateDir(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", "")

	dir, err := stateDir()
	if err != nil {
		t.Fatalf("stateDir() error: %v", err)
	}

	home, _ := os.UserHomeDir()
	expected := filepath.Join(home, ".local", "state", appName)
	if dir != expected {
		t.Errorf("stateDir() = %q, want %q", dir, expected)
	}
}

func TestStateDirXDG(t *testing.T) {
	customState := t.TempDir()
	t.Setenv("XDG_STATE_HOME", customState)

	dir, err := stateDir()
	if err != nil {
		t.Fatalf("stateDir() error: %v", err)
	}

	expected := filepath.Join(customState, appName)
	if dir != expected {
		t.Errorf("stateDir() with XDG_STATE_HOME = %q, want %q", dir, expected)
	}
}

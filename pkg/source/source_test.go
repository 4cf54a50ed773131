package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/gitlanes/pkg/errors"
	"github.com/matzehuels/gitlanes/pkg/history"
)

type fakeSource struct {
	path string
}

func (f *fakeSource) Snapshot(ctx context.Context, opts Options) (*history.Snapshot, error) {
	return &history.Snapshot{Repo: f.path}, nil
}

func (f *fakeSource) Probe(ctx context.Context) (string, error) { return "fp", nil }
func (f *fakeSource) Path() string                              { return f.path }
func (f *fakeSource) Close() error                              { return nil }

func fakeBackend(name string, available bool, aliases ...string) *Backend {
	return &Backend{
		Name:      name,
		Aliases:   aliases,
		Available: func() bool { return available },
		Open:      func(path string) (Source, error) { return &fakeSource{path: path}, nil },
	}
}

func TestOptionsWithDefaults(t *testing.T) {
	tests := []struct {
		name      string
		opts      Options
		wantLimit int
		wantSkip  int
	}{
		{"zero value", Options{}, DefaultLimit, 0},
		{"explicit limit", Options{Limit: 50}, 50, 0},
		{"negative limit", Options{Limit: -1}, DefaultLimit, 0},
		{"negative skip", Options{Skip: -3}, DefaultLimit, 0},
		{"paging", Options{Limit: 100, Skip: 200}, 100, 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.opts.WithDefaults()
			if got.Limit != tt.wantLimit || got.Skip != tt.wantSkip {
				t.Errorf("WithDefaults() = {Limit: %d, Skip: %d}, want {Limit: %d, Skip: %d}",
					got.Limit, got.Skip, tt.wantLimit, tt.wantSkip)
			}
		})
	}
}

func TestBackendMatches(t *testing.T) {
	b := fakeBackend("gogit", true, "native", "go-git")

	tests := []struct {
		name string
		want bool
	}{
		{"gogit", true},
		{"native", true},
		{"go-git", true},
		{"gitexec", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := b.Matches(tt.name); got != tt.want {
			t.Errorf("Matches(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestOpenSelectsByName(t *testing.T) {
	backends := []*Backend{
		fakeBackend("first", true),
		fakeBackend("second", true, "alias2"),
	}

	src, err := Open("/tmp/repo", "alias2", backends)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer src.Close()
	if src.Path() != "/tmp/repo" {
		t.Errorf("Path() = %q, want %q", src.Path(), "/tmp/repo")
	}
}

func TestOpenAutoPicksFirstAvailable(t *testing.T) {
	opened := ""
	backends := []*Backend{
		{
			Name:      "unavailable",
			Available: func() bool { return false },
			Open: func(path string) (Source, error) {
				opened = "unavailable"
				return &fakeSource{path: path}, nil
			},
		},
		{
			Name: "fallback",
			Open: func(path string) (Source, error) {
				opened = "fallback"
				return &fakeSource{path: path}, nil
			},
		},
	}

	for _, name := range []string{"", "auto"} {
		opened = ""
		if _, err := Open("/tmp/repo", name, backends); err != nil {
			t.Fatalf("Open(%q) error = %v", name, err)
		}
		if opened != "fallback" {
			t.Errorf("Open(%q) picked %q, want %q", name, opened, "fallback")
		}
	}
}

func TestOpenErrors(t *testing.T) {
	backends := []*Backend{fakeBackend("gogit", true)}

	tests := []struct {
		name     string
		path     string
		backend  string
		backends []*Backend
		wantCode errors.Code
	}{
		{"empty path", "", "gogit", backends, errors.ErrCodeInvalidRepo},
		{"no backends", "/tmp/repo", "gogit", nil, errors.ErrCodeInternal},
		{"unknown backend", "/tmp/repo", "nope", backends, errors.ErrCodeInvalidBackend},
		{"invalid backend name", "/tmp/repo", "GoGit!", backends, errors.ErrCodeInvalidBackend},
		{"unavailable backend", "/tmp/repo", "gitexec", []*Backend{fakeBackend("gitexec", false)}, errors.ErrCodeInvalidBackend},
		{"none available on auto", "/tmp/repo", "auto", []*Backend{fakeBackend("gogit", false)}, errors.ErrCodeInvalidBackend},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Open(tt.path, tt.backend, tt.backends)
			if err == nil {
				t.Fatal("Open() expected error")
			}
			if !errors.Is(err, tt.wantCode) {
				t.Errorf("Open() code = %v, want %v", errors.GetCode(err), tt.wantCode)
			}
		})
	}
}

func TestDetectRoot(t *testing.T) {
	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := DetectRoot(nested)
	if err != nil {
		t.Fatalf("DetectRoot() error = %v", err)
	}
	if got != root {
		t.Errorf("DetectRoot() = %q, want %q", got, root)
	}
}

func TestDetectRootNotARepo(t *testing.T) {
	_, err := DetectRoot(t.TempDir())
	if err == nil {
		t.Fatal("DetectRoot() expected error")
	}
	if !errors.Is(err, errors.ErrCodeRepoNotFound) {
		t.Errorf("DetectRoot() code = %v, want %v", errors.GetCode(err), errors.ErrCodeRepoNotFound)
	}
}

func TestGitDir(t *testing.T) {
	t.Run("directory", func(t *testing.T) {
		root := t.TempDir()
		gitDir := filepath.Join(root, ".git")
		if err := os.Mkdir(gitDir, 0o755); err != nil {
			t.Fatal(err)
		}

		got, err := GitDir(root)
		if err != nil {
			t.Fatalf("GitDir() error = %v", err)
		}
		if got != gitDir {
			t.Errorf("GitDir() = %q, want %q", got, gitDir)
		}
	})

	t.Run("worktree pointer file", func(t *testing.T) {
		base := t.TempDir()
		real := filepath.Join(base, "main", ".git", "worktrees", "wt")
		if err := os.MkdirAll(real, 0o755); err != nil {
			t.Fatal(err)
		}
		root := filepath.Join(base, "wt")
		if err := os.Mkdir(root, 0o755); err != nil {
			t.Fatal(err)
		}
		pointer := "gitdir: " + real + "\n"
		if err := os.WriteFile(filepath.Join(root, ".git"), []byte(pointer), 0o644); err != nil {
			t.Fatal(err)
		}

		got, err := GitDir(root)
		if err != nil {
			t.Fatalf("GitDir() error = %v", err)
		}
		if got != real {
			t.Errorf("GitDir() = %q, want %q", got, real)
		}
	})

	t.Run("relative pointer", func(t *testing.T) {
		root := t.TempDir()
		if err := os.MkdirAll(filepath.Join(root, "sub", "gitdir"), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(root, ".git"), []byte("gitdir: sub/gitdir"), 0o644); err != nil {
			t.Fatal(err)
		}

		got, err := GitDir(root)
		if err != nil {
			t.Fatalf("GitDir() error = %v", err)
		}
		if want := filepath.Join(root, "sub", "gitdir"); got != want {
			t.Errorf("GitDir() = %q, want %q", got, want)
		}
	})

	t.Run("garbage pointer file", func(t *testing.T) {
		root := t.TempDir()
		if err := os.WriteFile(filepath.Join(root, ".git"), []byte("not a pointer"), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := GitDir(root); err == nil {
			t.Error("GitDir() expected error")
		}
	})
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint([]string{"refs/heads/main aaaa", "HEAD -> refs/heads/main"})
	b := Fingerprint([]string{"refs/heads/main aaaa", "HEAD -> refs/heads/main"})
	c := Fingerprint([]string{"refs/heads/main bbbb", "HEAD -> refs/heads/main"})

	if a != b {
		t.Error("Fingerprint() not deterministic")
	}
	if a == c {
		t.Error("Fingerprint() identical for different ref states")
	}
	if len(a) != 64 {
		t.Errorf("len(Fingerprint()) = %d, want 64", len(a))
	}
}

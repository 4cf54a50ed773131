package server

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/matzehuels/gitlanes/pkg/observability"
)

// watchDebounceDelay is the quiet period after the last filesystem event
// before a recompute starts. Git operations touch many files in a burst.
const watchDebounceDelay = 350 * time.Millisecond

type watchState struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	debounce *debouncer
	lastPath string
	enabled  bool
}

// enableWatch starts watching the repository's .git directory and
// schedules a recompute after each debounced change burst.
func (s *Server) enableWatch(ctx context.Context) error {
	s.watch.mu.Lock()
	defer s.watch.mu.Unlock()

	if s.watch.enabled {
		return nil
	}
	if s.repoRoot == "" {
		return fmt.Errorf("no repository to watch")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	path := watchPath(s.repoRoot)
	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", path, err)
	}
	s.logger.Debug("watching for changes", "path", path)

	if s.watch.debounce == nil {
		s.watch.debounce = newDebouncer(watchDebounceDelay, func() {
			s.onWatchFire(ctx)
		})
	}
	s.watch.watcher = watcher
	s.watch.enabled = true
	go s.watchLoop(ctx, watcher)
	return nil
}

// disableWatch stops the watcher and drops any pending recompute.
func (s *Server) disableWatch() {
	s.watch.mu.Lock()
	defer s.watch.mu.Unlock()

	if s.watch.debounce != nil {
		s.watch.debounce.Stop()
		s.watch.debounce = nil
	}
	if s.watch.watcher != nil {
		if err := s.watch.watcher.Close(); err != nil {
			s.logger.Error("watcher close", "error", err)
		}
		s.watch.watcher = nil
	}
	s.watch.enabled = false
}

func (s *Server) watchLoop(ctx context.Context, w *fsnotify.Watcher) {
	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if ignoreWatchPath(ev.Name) {
				continue
			}
			s.logger.Debug("fsnotify event", "op", ev.Op.String(), "path", ev.Name)
			s.scheduleRecompute(ev.Name)
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			s.logger.Error("fsnotify error", "error", err)
		case <-ctx.Done():
			return
		}
	}
}

func (s *Server) scheduleRecompute(path string) {
	s.watch.mu.Lock()
	defer s.watch.mu.Unlock()

	if !s.watch.enabled || s.watch.debounce == nil {
		return
	}
	s.watch.lastPath = path
	s.watch.debounce.Trigger()
}

// onWatchFire runs once per debounced change burst.
func (s *Server) onWatchFire(ctx context.Context) {
	s.watch.mu.Lock()
	path := s.watch.lastPath
	s.watch.mu.Unlock()

	observability.Server().OnWatchEvent(ctx, path)
	s.logger.Info("repository changed, recomputing", "path", path)
	s.refresh(ctx)
}

// watchPath picks the directory to watch: the .git directory when it
// exists, otherwise the root itself (bare repositories, worktrees).
func watchPath(root string) string {
	gitDir := filepath.Join(root, ".git")
	if info, err := os.Stat(gitDir); err == nil && info.IsDir() {
		return gitDir
	}
	return root
}

// ignoreWatchPath filters churn that does not change history: lock files
// taken during git operations and editor IPC sockets.
func ignoreWatchPath(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".lock" || ext == ".ipc"
}

// Package cli implements the gitlanes command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/gitlanes/internal/config"
	"github.com/matzehuels/gitlanes/pkg/buildinfo"
	"github.com/matzehuels/gitlanes/pkg/cache"
	"github.com/matzehuels/gitlanes/pkg/pipeline"
	"github.com/matzehuels/gitlanes/pkg/source"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "gitlanes"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config *config.Config
}

// New creates a new CLI instance with a default logger and the resolved
// user configuration. A broken config file degrades to defaults with a
// warning instead of refusing to start; the config log level applies only
// when it was set away from the default, so callers asking for debug
// keep it.
func New(w io.Writer, level log.Level) *CLI {
	logger := newLogger(w, level)

	cfg, err := config.Load()
	if err != nil {
		logger.Warn("ignoring configuration", "err", err)
		cfg = config.Default()
	}
	if cfg.Log.Level != "" && cfg.Log.Level != config.DefaultLogLevel {
		if lvl, perr := log.ParseLevel(cfg.Log.Level); perr == nil {
			logger.SetLevel(lvl)
		}
	}

	return &CLI{Logger: logger, Config: cfg}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "gitlanes",
		Short: "Gitlanes lays out commit history as colored branch lanes",
		Long: `Gitlanes turns a repository's recent history into a lane-based commit
graph: branches get stable colored lanes, commits get rows, and merges get
connector geometry. The result renders as JSON for UIs, DOT for graphviz,
or directly in the terminal, and a local server pushes fresh layouts over
a websocket while the repository changes.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.logCommand())
	root.AddCommand(c.branchesCommand())
	root.AddCommand(c.snapshotCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.reposCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	store, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(store, nil, c.Logger), nil
}

// newCache selects the cache backend from configuration. Unavailable
// backends degrade to weaker ones instead of failing the command: redis
// falls back to files, files fall back to no caching at all.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache || c.Config.Cache.Backend == config.CacheNone {
		return cache.NewNullCache(), nil
	}

	if c.Config.Cache.Backend == config.CacheRedis {
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     c.Config.Cache.Redis.Addr,
			Password: c.Config.Cache.Redis.Password,
			DB:       c.Config.Cache.Redis.DB,
		})
		if err == nil {
			return rc, nil
		}
		c.Logger.Warn("redis cache unavailable, using file cache",
			"addr", c.Config.Cache.Redis.Addr, "err", err)
	}

	dir, err := c.cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory, honoring the config override
// before the XDG convention.
func (c *CLI) cacheDir() (string, error) {
	if c.Config.Cache.Dir != "" {
		return c.Config.Cache.Dir, nil
	}
	return defaultCacheDir()
}

// defaultCacheDir returns the cache directory using XDG standard (~/.cache/gitlanes/).
func defaultCacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// stateDir returns the state directory (~/.local/state/gitlanes/) holding
// the recent-repository sessions.
func stateDir() (string, error) {
	if stateHome := os.Getenv("XDG_STATE_HOME"); stateHome != "" {
		return filepath.Join(stateHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "state", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// pipelineOptions seeds pipeline options from configuration defaults.
func (c *CLI) pipelineOptions() pipeline.Options {
	return pipeline.Options{
		Backend: c.Config.Backend,
		Limit:   c.Config.Limit,
		Palette: c.Config.Palette,
	}
}

// parseFormats parses a comma-separated format string into a slice,
// defaulting to JSON.
func parseFormats(s string) ([]string, error) {
	if s == "" {
		return []string{pipeline.FormatJSON}, nil
	}
	var formats []string
	for _, part := range strings.Split(s, ",") {
		f := strings.ToLower(strings.TrimSpace(part))
		if f == "" {
			continue
		}
		if err := pipeline.ValidateFormat(f); err != nil {
			return nil, err
		}
		formats = append(formats, f)
	}
	if len(formats) == 0 {
		return []string{pipeline.FormatJSON}, nil
	}
	return formats, nil
}

// repoArg resolves the optional positional repository argument, defaulting
// to the current directory.
func repoArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}

// resolveRepo expands a repository argument to its worktree root when one
// can be detected, leaving the raw path for the backend to reject otherwise.
func resolveRepo(path string) string {
	if root, err := source.DetectRoot(path); err == nil {
		return root
	}
	return path
}

// rememberRepo records a successful open in the recent-repository store.
// Session failures never fail the command; they are logged and dropped.
func (c *CLI) rememberRepo(ctx context.Context, repo string, opts pipeline.Options) {
	recents, closeStore, err := c.openRecents()
	if err != nil {
		c.Logger.Debug("session store unavailable", "err", err)
		return
	}
	defer closeStore()

	if _, err := recents.RecordOpen(ctx, repo); err != nil {
		c.Logger.Debug("record repository open", "err", err)
		return
	}
	if err := recents.Remember(ctx, repo, opts.Backend, opts.Palette, opts.Limit); err != nil {
		c.Logger.Debug("remember repository settings", "err", err)
	}
}

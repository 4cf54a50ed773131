package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/gitlanes/pkg/cache"
	"github.com/matzehuels/gitlanes/pkg/history"
	snapio "github.com/matzehuels/gitlanes/pkg/io"
	"github.com/matzehuels/gitlanes/pkg/layout"
	"github.com/matzehuels/gitlanes/pkg/observability"
	"github.com/matzehuels/gitlanes/pkg/source"
	"github.com/matzehuels/gitlanes/pkg/source/backends"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete snapshot → layout → export pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)
	hooks := observability.Pipeline()

	result := &Result{
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Snapshot
	snapStart := time.Now()
	hooks.OnSnapshotStart(ctx, opts.Repo, opts.Backend)
	snap, snapHit, err := r.SnapshotWithCacheInfo(ctx, opts)
	result.Stats.SnapshotTime = time.Since(snapStart)
	hooks.OnSnapshotComplete(ctx, opts.Repo, opts.Backend, commitCount(snap), result.Stats.SnapshotTime, err)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	result.Snapshot = snap
	result.Stats.CommitCount = len(snap.Commits)
	result.Stats.BranchCount = len(snap.Branches)
	result.CacheInfo.SnapshotHit = snapHit

	// Compute snapshot hash for cache keys and API responses
	if snapData, err := json.Marshal(snap); err == nil {
		result.SnapshotHash = cache.Hash(snapData)
	}

	r.Logger.Info("captured snapshot",
		"commits", len(snap.Commits),
		"branches", len(snap.Branches),
		"duration", result.Stats.SnapshotTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	hooks.OnLayoutStart(ctx, len(snap.Commits), len(snap.Branches))
	g, layoutHit, err := r.LayoutWithCacheInfo(ctx, snap, opts)
	result.Stats.LayoutTime = time.Since(layoutStart)
	hooks.OnLayoutComplete(ctx, result.Stats.LayoutTime, err)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Graph = g
	result.Stats.Crossings = layout.CountCrossings(g)
	result.CacheInfo.LayoutHit = layoutHit

	if graphData, err := layout.MarshalGraph(*g); err == nil {
		result.GraphHash = cache.Hash(graphData)
	}

	r.Logger.Info("computed layout",
		"max_column", g.MaxColumn,
		"crossings", result.Stats.Crossings,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Export
	exportStart := time.Now()
	hooks.OnExportStart(ctx, opts.Formats)
	artifacts, exportHit, err := r.ExportWithCacheInfo(ctx, snap, g, opts)
	result.Stats.ExportTime = time.Since(exportStart)
	hooks.OnExportComplete(ctx, opts.Formats, result.Stats.ExportTime, err)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	result.Artifacts = artifacts
	result.CacheInfo.ExportHit = exportHit

	r.Logger.Info("exported artifacts",
		"formats", opts.Formats,
		"duration", result.Stats.ExportTime)

	return result, nil
}

// SnapshotWithCacheInfo captures a snapshot with caching and returns cache
// hit info.
//
// Snapshots read from a file via SnapshotFile bypass the cache entirely:
// the read is already local and cheap.
func (r *Runner) SnapshotWithCacheInfo(ctx context.Context, opts Options) (*history.Snapshot, bool, error) {
	if err := opts.ValidateForSnapshot(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	if opts.SnapshotFile != "" {
		snap, err := snapio.ImportSnapshot(opts.SnapshotFile)
		return snap, false, err
	}

	src, err := backends.Open(opts.Repo, opts.Backend)
	if err != nil {
		return nil, false, err
	}
	defer src.Close()

	// The ref fingerprint keys the cache: any branch tip or HEAD move
	// invalidates cached snapshots without reading history.
	fingerprint, err := src.Probe(ctx)
	if err != nil {
		return nil, false, err
	}
	cacheKey := r.Keyer.SnapshotKey(fingerprint, opts.SnapshotKeyOpts())
	cacheHooks := observability.Cache()

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if snap, err := snapio.ReadSnapshot(bytes.NewReader(data)); err == nil {
				cacheHooks.OnCacheHit(ctx, "snapshot")
				return snap, true, nil // Cache hit
			}
		}
		cacheHooks.OnCacheMiss(ctx, "snapshot")
	}

	snap, err := src.Snapshot(ctx, source.Options{Limit: opts.Limit, Skip: opts.Skip})
	if err != nil {
		return nil, false, err
	}

	// Cache the result
	if !opts.Refresh {
		var buf bytes.Buffer
		if err := snapio.WriteSnapshot(snap, &buf); err == nil {
			_ = r.Cache.Set(ctx, cacheKey, buf.Bytes(), cache.TTLSnapshot)
			cacheHooks.OnCacheSet(ctx, "snapshot", buf.Len())
		}
	}

	return snap, false, nil // Cache miss
}

// Snapshot is a convenience wrapper that calls SnapshotWithCacheInfo and
// discards the cache hit info.
func (r *Runner) Snapshot(ctx context.Context, opts Options) (*history.Snapshot, error) {
	snap, _, err := r.SnapshotWithCacheInfo(ctx, opts)
	return snap, err
}

// LayoutWithCacheInfo computes a layout with caching and returns cache hit
// info.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, snap *history.Snapshot, opts Options) (*layout.Graph, bool, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	// Compute cache key
	snapData, _ := json.Marshal(snap)
	snapHash := cache.Hash(snapData)
	cacheKey := r.Keyer.LayoutKey(snapHash, opts.LayoutKeyOpts())
	cacheHooks := observability.Cache()

	// Try cache first
	if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
		if cached, err := layout.UnmarshalGraph(data); err == nil {
			cacheHooks.OnCacheHit(ctx, "layout")
			return &cached, true, nil // Cache hit
		}
		// If deserialization fails, fall through to recompute
	}
	cacheHooks.OnCacheMiss(ctx, "layout")

	g, err := ComputeLayout(snap, opts)
	if err != nil {
		return nil, false, err
	}

	// Cache the result
	if data, err := layout.MarshalGraph(*g); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout)
		cacheHooks.OnCacheSet(ctx, "layout", len(data))
	}

	return g, false, nil // Cache miss
}

// Layout is a convenience wrapper that calls LayoutWithCacheInfo and
// discards the cache hit info.
func (r *Runner) Layout(ctx context.Context, snap *history.Snapshot, opts Options) (*layout.Graph, error) {
	g, _, err := r.LayoutWithCacheInfo(ctx, snap, opts)
	return g, err
}

// ExportWithCacheInfo exports artifacts with caching and returns cache hit
// info.
func (r *Runner) ExportWithCacheInfo(ctx context.Context, snap *history.Snapshot, g *layout.Graph, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForExport(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	// Compute cache key from layout data
	layoutData, err := layout.MarshalGraph(*g)
	if err != nil {
		return nil, false, fmt.Errorf("serialize graph for cache key: %w", err)
	}
	layoutHash := cache.Hash(layoutData)
	cacheHooks := observability.Cache()

	// Try to get all formats from cache
	allCached := true
	artifacts := make(map[string][]byte)

	for _, format := range opts.Formats {
		cacheKey := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			artifacts[format] = data
		} else {
			allCached = false
			break
		}
	}

	if allCached && len(artifacts) == len(opts.Formats) {
		cacheHooks.OnCacheHit(ctx, "artifact")
		return artifacts, true, nil // All artifacts from cache
	}
	cacheHooks.OnCacheMiss(ctx, "artifact")

	// Export all formats
	exported, err := Export(snap, g, opts)
	if err != nil {
		return nil, false, err
	}

	// Cache each format
	for format, data := range exported {
		cacheKey := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact)
		cacheHooks.OnCacheSet(ctx, "artifact", len(data))
	}

	return exported, false, nil // Cache miss
}

// Export is a convenience wrapper that calls ExportWithCacheInfo and
// discards the cache hit info.
func (r *Runner) Export(ctx context.Context, snap *history.Snapshot, g *layout.Graph, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.ExportWithCacheInfo(ctx, snap, g, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func commitCount(snap *history.Snapshot) int {
	if snap == nil {
		return 0
	}
	return len(snap.Commits)
}

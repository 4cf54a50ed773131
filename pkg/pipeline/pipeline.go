// Package pipeline provides the core graph pipeline for Gitlanes.
//
// This package implements the complete snapshot → layout → export pipeline
// that can be used by CLI, API, and watcher components. By centralizing this
// logic, we ensure consistent behavior across all entry points and avoid
// code duplication.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Snapshot: Read the commit window and branch state out of a repository
//  2. Layout: Assign lanes, markers, and connector geometry to the window
//  3. Export: Serialize the computed graph in various formats (JSON, DOT)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Repo:    "/work/repo",
//	    Formats: []string{"json"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	doc := result.Artifacts["json"]
//
// Run individual stages:
//
//	// Snapshot only
//	snap, err := runner.Snapshot(ctx, opts)
//
//	// Layout with an existing snapshot
//	g, err := runner.Layout(ctx, snap, opts)
//
//	// Export with an existing layout
//	artifacts, err := runner.Export(ctx, snap, g, opts)
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/gitlanes/pkg/cache"
	"github.com/matzehuels/gitlanes/pkg/history"
	"github.com/matzehuels/gitlanes/pkg/layout"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI, API, and Watcher
// =============================================================================

const (
	// DefaultLimit is the default commit window size. It matches
	// source.DefaultLimit so direct source users and pipeline users see the
	// same window.
	DefaultLimit = 200

	// DefaultPalette is the default lane palette.
	DefaultPalette = PaletteDark
)

// Palette names for lane colors.
const (
	PaletteDark  = "dark"
	PaletteLight = "light"
)

// Format constants for output formats.
const (
	FormatJSON = "json"
	FormatDOT  = "dot"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatDOT:  true,
}

// ValidPalettes is the set of supported lane palettes.
var ValidPalettes = map[string]bool{
	PaletteDark:  true,
	PaletteLight: true,
}

// ResolvePalette maps a palette name to its lane colors. Unknown or empty
// names fall back to the default palette; use [ValidatePalette] to reject
// them instead.
func ResolvePalette(name string) []string {
	switch name {
	case PaletteLight:
		return layout.PaletteLight
	case PaletteDark:
		return layout.PaletteDark
	default:
		return layout.DefaultPalette
	}
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the graph pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Snapshot options
	Repo         string `json:"repo,omitempty"`
	Backend      string `json:"backend,omitempty"`
	Limit        int    `json:"limit,omitempty"`
	Skip         int    `json:"skip,omitempty"`
	SnapshotFile string `json:"snapshot_file,omitempty"` // Read a captured snapshot instead of a repository
	Refresh      bool   `json:"refresh,omitempty"`

	// Layout options
	Palette string `json:"palette,omitempty"`

	// Export options
	Formats  []string `json:"formats,omitempty"`
	Detailed bool     `json:"detailed,omitempty"` // Verbose DOT labels

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Snapshot is the captured commit window and branch state.
	Snapshot *history.Snapshot

	// SnapshotHash is the content hash of the snapshot.
	SnapshotHash string

	// Graph is the computed layout.
	Graph *layout.Graph

	// GraphHash is the content hash of the graph.
	GraphHash string

	// Artifacts contains exported outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	CommitCount  int
	BranchCount  int
	Crossings    int
	SnapshotTime time.Duration
	LayoutTime   time.Duration
	ExportTime   time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	SnapshotHit bool // Whether the snapshot came from cache
	LayoutHit   bool // Whether the layout came from cache
	ExportHit   bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: json, dot)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidatePalette checks that a palette name is valid.
func ValidatePalette(palette string) error {
	if !ValidPalettes[palette] {
		return fmt.Errorf("invalid palette: %q (must be one of: dark, light)", palette)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the
// full pipeline. This method is idempotent - calling it multiple times has
// the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForSnapshot(); err != nil {
		return err
	}
	o.SetLayoutDefaults()
	o.SetExportDefaults()
	o.validated = true
	return nil
}

// ValidateForSnapshot checks required fields for the snapshot stage.
func (o *Options) ValidateForSnapshot() error {
	if o.Repo == "" && o.SnapshotFile == "" {
		return fmt.Errorf("repo or snapshot_file is required")
	}

	// Snapshot defaults
	if o.Limit <= 0 {
		o.Limit = DefaultLimit
	}
	if o.Skip < 0 {
		o.Skip = 0
	}

	// Logger default
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	return nil
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.Palette == "" {
		o.Palette = DefaultPalette
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	return ValidatePalette(o.Palette)
}

// SetExportDefaults sets default values for the export stage.
func (o *Options) SetExportDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatJSON}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForExport validates and sets defaults for the export stage.
func (o *Options) ValidateForExport() error {
	o.SetLayoutDefaults()
	o.SetExportDefaults()
	if err := ValidatePalette(o.Palette); err != nil {
		return err
	}
	return ValidateFormats(o.Formats)
}

// SnapshotKeyOpts returns cache key options for the snapshot stage.
func (o *Options) SnapshotKeyOpts() cache.SnapshotKeyOpts {
	return cache.SnapshotKeyOpts{
		Backend: o.Backend,
		Limit:   o.Limit,
		Skip:    o.Skip,
	}
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Palette: o.Palette,
	}
}

// ArtifactKeyOpts returns cache key options for artifact export.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:   format,
		Detailed: o.Detailed,
	}
}

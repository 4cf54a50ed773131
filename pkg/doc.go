// Package pkg provides the core libraries for Gitlanes commit-graph layout.
//
// # Overview
//
// Gitlanes turns a repository's recent history into a positioned graph:
// every commit gets a row and a lane column, every branch gets a lane and
// a color, and merge edges get routed connectors. The pkg directory is
// organized into four main areas:
//
//  1. [history] / [layout] - Domain logic (commit windows, lane assignment)
//  2. [source] - Repository backends (go-git, git CLI, snapshot files)
//  3. [cache] / [session] - Infrastructure (content-addressed caching, recents)
//  4. [pipeline] - Orchestration (snapshot → layout → export)
//
// # Architecture
//
// The typical data flow through Gitlanes:
//
//	Git Repository / Snapshot File
//	         ↓
//	    [source] package (capture a commit window + branch refs)
//	         ↓
//	    [layout] package (lane assignment + connector routing)
//	         ↓
//	    [export] package (JSON / DOT artifacts)
//
// Each stage is keyed and cached independently, so a branch tip moving
// only recomputes from the snapshot stage down, while a palette change
// reuses the cached snapshot and layout.
//
// # Quick Start
//
// Capture a repository and lay out its history:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/gitlanes/pkg/cache"
//	    "github.com/matzehuels/gitlanes/pkg/pipeline"
//	)
//
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, nil)
//	defer runner.Close()
//
//	res, _ := runner.Execute(context.Background(), pipeline.Options{
//	    Repo:   ".",
//	    Limit:  200,
//	    Formats: []string{pipeline.FormatJSON},
//	})
//	_ = res.Artifacts["json"]
//
// # Main Packages
//
// [history] - Snapshot types: the immutable commit window plus branch
// refs that every later stage consumes. Includes window indexing and
// reverse-adjacency helpers.
//
// [layout] - The layout engine. Assigns branches to lane columns,
// claims commits via first-parent ownership walks, routes merge and
// fork connectors, and counts edge crossings. Pure and deterministic.
//
// [source] - Repository backends behind one interface: go-git for
// in-process reads, the git CLI for repositories go-git cannot handle,
// and registry-based auto selection.
//
// [export] - Artifact encoders for positioned graphs (JSON, Graphviz DOT).
//
// [io] - Snapshot files: export a capture to JSON and lay it out later
// on a machine without the repository.
//
// [cache] - Content-addressed cache with file, Redis, and null backends.
// Stage keys chain (refs fingerprint → snapshot hash → layout hash) so
// any upstream change invalidates exactly the stages below it.
//
// [session] - Recently-opened repository tracking backing "gitlanes repos".
//
// [pipeline] - Orchestrates snapshot → layout → export with per-stage
// caching. Used by the CLI and the live server so both share behavior.
//
// [observability] - Pluggable hooks for cache and server events.
//
// [buildinfo] - Version metadata injected at build time.
//
// [history]: https://pkg.go.dev/github.com/matzehuels/gitlanes/pkg/history
// [layout]: https://pkg.go.dev/github.com/matzehuels/gitlanes/pkg/layout
// [source]: https://pkg.go.dev/github.com/matzehuels/gitlanes/pkg/source
// [export]: https://pkg.go.dev/github.com/matzehuels/gitlanes/pkg/export
// [io]: https://pkg.go.dev/github.com/matzehuels/gitlanes/pkg/io
// [cache]: https://pkg.go.dev/github.com/matzehuels/gitlanes/pkg/cache
// [session]: https://pkg.go.dev/github.com/matzehuels/gitlanes/pkg/session
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/gitlanes/pkg/pipeline
// [observability]: https://pkg.go.dev/github.com/matzehuels/gitlanes/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/gitlanes/pkg/buildinfo
package pkg

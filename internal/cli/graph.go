package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gitlanes/pkg/history"
	"github.com/matzehuels/gitlanes/pkg/pipeline"
)

// graphCommand creates the graph command for computing commit graph layouts.
func (c *CLI) graphCommand() *cobra.Command {
	var (
		output       string
		formatStr    string
		branchFilter []string
		snapshotFile string
		noCache      bool
	)
	opts := c.pipelineOptions()

	cmd := &cobra.Command{
		Use:   "graph [path]",
		Short: "Compute the commit graph layout for a repository",
		Long: `Compute the commit graph layout for a repository.

The graph command reads the recent history of a repository, assigns each
branch a colored lane, positions every commit on a row, and writes the
resulting layout as JSON and/or DOT. Results are cached locally so
unchanged repositories lay out instantly on subsequent runs.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formats, err := parseFormats(formatStr)
			if err != nil {
				return err
			}
			opts.Formats = formats
			opts.SnapshotFile = snapshotFile
			opts.Repo = resolveRepo(repoArg(args))
			ctx := withLogger(cmd.Context(), c.Logger)
			return c.runGraph(ctx, opts, branchFilter, output, noCache)
		},
	}

	// Common flags
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <repo>.graph.<format>)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	// Snapshot flags
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", opts.Limit, "number of commits to fetch")
	cmd.Flags().IntVar(&opts.Skip, "skip", opts.Skip, "number of commits to skip before the window")
	cmd.Flags().StringVar(&opts.Backend, "backend", opts.Backend, "repository backend: auto (default), gogit, gitexec")
	cmd.Flags().StringVar(&snapshotFile, "snapshot", "", "lay out a captured snapshot file instead of a repository")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "bypass the cache for this run")

	// Layout and export flags
	cmd.Flags().StringSliceVar(&branchFilter, "branches", nil, "restrict lanes to the named branches")
	cmd.Flags().StringVar(&opts.Palette, "palette", opts.Palette, "lane palette: dark (default), light")
	cmd.Flags().StringVarP(&formatStr, "format", "f", "", "comma-separated output formats: json (default), dot")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "verbose DOT labels")

	return cmd
}

// runGraph computes the layout and writes one artifact per format.
func (c *CLI) runGraph(ctx context.Context, opts pipeline.Options, branchFilter []string, output string, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger

	spinner := newSpinnerWithContext(ctx, "Computing commit graph...")
	spinner.Start()

	var (
		res      *pipeline.Result
		cacheHit bool
		unknown  []string
	)
	if len(branchFilter) == 0 {
		res, err = runner.Execute(ctx, opts)
		if err == nil {
			cacheHit = res.CacheInfo.LayoutHit
		}
	} else {
		res, cacheHit, unknown, err = filteredGraph(ctx, runner, opts, branchFilter)
	}
	if err != nil {
		spinner.StopWithError("Layout failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	for _, name := range unknown {
		printWarning("branch %q not found", name)
	}

	paths, err := writeArtifacts(res.Artifacts, opts, output)
	if err != nil {
		return err
	}

	if opts.SnapshotFile == "" {
		c.rememberRepo(ctx, opts.Repo, opts)
	}

	printSuccess("Graph complete")
	for _, p := range paths {
		printFile(p)
	}
	printStats(res.Stats.CommitCount, res.Stats.BranchCount, cacheHit)
	printNewline()
	printNextStep("Serve live", appName+" serve "+opts.Repo)

	return nil
}

// filteredGraph runs the staged pipeline so the snapshot can be narrowed
// to the requested branches before lanes are assigned. Requested names
// missing from the repository come back in unknown.
func filteredGraph(ctx context.Context, runner *pipeline.Runner, opts pipeline.Options, names []string) (res *pipeline.Result, cacheHit bool, unknown []string, err error) {
	snap, err := runner.Snapshot(ctx, opts)
	if err != nil {
		return nil, false, nil, err
	}

	have := make(map[string]bool, len(snap.Branches))
	for _, b := range snap.Branches {
		have[b.Name] = true
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		if !have[n] {
			unknown = append(unknown, n)
			continue
		}
		want[n] = true
	}

	var kept []history.Branch
	for _, b := range snap.Branches {
		if want[b.Name] {
			kept = append(kept, b)
		}
	}

	filtered := *snap
	filtered.Branches = kept
	loggerFromContext(ctx).Debug("filtered branches", "kept", len(kept), "unknown", len(unknown))

	g, layoutHit, err := runner.LayoutWithCacheInfo(ctx, &filtered, opts)
	if err != nil {
		return nil, false, unknown, err
	}
	arts, _, err := runner.ExportWithCacheInfo(ctx, &filtered, g, opts)
	if err != nil {
		return nil, false, unknown, err
	}

	res = &pipeline.Result{
		Snapshot:  &filtered,
		Graph:     g,
		Artifacts: arts,
		Stats: pipeline.Stats{
			CommitCount: len(filtered.Commits),
			BranchCount: len(filtered.Branches),
		},
	}
	return res, layoutHit, unknown, nil
}

// writeArtifacts writes one file per exported format and returns the
// written paths in format order.
func writeArtifacts(artifacts map[string][]byte, opts pipeline.Options, output string) ([]string, error) {
	var paths []string
	for _, format := range opts.Formats {
		data, ok := artifacts[format]
		if !ok {
			continue
		}
		path := artifactPath(opts, output, format)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return nil, fmt.Errorf("write output %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// artifactPath derives the output file for a format. An explicit output
// names the file directly when a single format is requested and serves as
// the base name otherwise.
func artifactPath(opts pipeline.Options, output, format string) string {
	if output != "" {
		if len(opts.Formats) == 1 {
			return output
		}
		return strings.TrimSuffix(output, filepath.Ext(output)) + "." + format
	}

	name := "history"
	if opts.SnapshotFile != "" {
		name = strings.TrimSuffix(filepath.Base(opts.SnapshotFile), filepath.Ext(opts.SnapshotFile))
	} else if opts.Repo != "" {
		if abs, err := filepath.Abs(opts.Repo); err == nil {
			name = filepath.Base(abs)
		}
	}
	return name + ".graph." + format
}

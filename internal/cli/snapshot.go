package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	snapio "github.com/matzehuels/gitlanes/pkg/io"
	"github.com/matzehuels/gitlanes/pkg/pipeline"
)

// snapshotCommand creates the snapshot command for capturing repository state.
func (c *CLI) snapshotCommand() *cobra.Command {
	var (
		output  string
		noCache bool
	)
	opts := c.pipelineOptions()

	cmd := &cobra.Command{
		Use:   "snapshot [path]",
		Short: "Capture the commit window and branch state to a file",
		Long: `Capture the commit window and branch state to a file.

A snapshot freezes everything the layout stage needs: the commit window,
parent edges, and branch tips. Captured snapshots feed 'graph --snapshot'
so layouts can be recomputed offline or attached to bug reports.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Repo = resolveRepo(repoArg(args))
			return c.runSnapshot(cmd.Context(), opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <repo>.snapshot.json)")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", opts.Limit, "number of commits to capture")
	cmd.Flags().IntVar(&opts.Skip, "skip", opts.Skip, "number of commits to skip")
	cmd.Flags().StringVar(&opts.Backend, "backend", opts.Backend, "repository backend: auto (default), gogit, gitexec")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "bypass the cache for this run")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runSnapshot(ctx context.Context, opts pipeline.Options, output string, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()
	opts.Logger = c.Logger

	prog := newProgress(c.Logger)
	spinner := newSpinnerWithContext(ctx, "Capturing snapshot...")
	spinner.Start()

	snap, cacheHit, err := runner.SnapshotWithCacheInfo(ctx, opts)
	if err != nil {
		spinner.StopWithError("Snapshot failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}
	prog.done(fmt.Sprintf("Captured %d commits", len(snap.Commits)))

	if output == "" {
		name := "history"
		if abs, aerr := filepath.Abs(opts.Repo); aerr == nil {
			name = filepath.Base(abs)
		}
		output = name + ".snapshot.json"
	}
	if err := snapio.ExportSnapshot(snap, output); err != nil {
		return fmt.Errorf("write snapshot %s: %w", output, err)
	}

	c.rememberRepo(ctx, opts.Repo, opts)

	printSuccess("Snapshot captured")
	printFile(output)
	printStats(len(snap.Commits), len(snap.Branches), cacheHit)
	printNewline()
	printNextStep("Lay out offline", appName+" graph --snapshot "+output)

	return nil
}

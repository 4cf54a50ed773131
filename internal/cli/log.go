package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/gitlanes/pkg/history"
	"github.com/matzehuels/gitlanes/pkg/layout"
	"github.com/matzehuels/gitlanes/pkg/pipeline"
)

// logCommand creates the log command for a lane-colored history listing.
func (c *CLI) logCommand() *cobra.Command {
	var noCache bool
	opts := c.pipelineOptions()

	cmd := &cobra.Command{
		Use:   "log [path]",
		Short: "Show recent history with colored branch lanes",
		Long: `Show recent history with colored branch lanes.

Each commit renders on its own row, indented by its lane and marked with
a dot in the lane color. Branch tips are decorated with the branch name;
merges get a distinct marker.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Repo = resolveRepo(repoArg(args))
			return c.runLog(cmd.Context(), opts, noCache)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", opts.Limit, "number of commits to show")
	cmd.Flags().IntVar(&opts.Skip, "skip", opts.Skip, "number of commits to skip")
	cmd.Flags().StringVar(&opts.Backend, "backend", opts.Backend, "repository backend: auto (default), gogit, gitexec")
	cmd.Flags().StringVar(&opts.Palette, "palette", opts.Palette, "lane palette: dark (default), light")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "bypass the cache for this run")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runLog(ctx context.Context, opts pipeline.Options, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()
	opts.Logger = c.Logger

	snap, err := runner.Snapshot(ctx, opts)
	if err != nil {
		return err
	}
	g, err := runner.Layout(ctx, snap, opts)
	if err != nil {
		return err
	}

	for _, line := range logLines(snap, g, time.Now()) {
		fmt.Println(line)
	}

	c.rememberRepo(ctx, opts.Repo, opts)
	return nil
}

// logLines renders one line per positioned commit: a lane-indented marker
// in the lane color, the short hash, branch tip decorations, the subject,
// and a relative age.
func logLines(snap *history.Snapshot, g *layout.Graph, now time.Time) []string {
	info := make(map[string]history.Commit, len(snap.Commits))
	for _, commit := range snap.Commits {
		info[commit.SHA] = commit
	}
	tips := make(map[string][]layout.Branch)
	for _, b := range g.Branches {
		tips[b.TipSHA] = append(tips[b.TipSHA], b)
	}

	lines := make([]string, 0, len(g.Commits))
	for _, gc := range g.Commits {
		laneStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(gc.Color))

		marker := "●"
		if gc.IsMerge {
			marker = "◆"
		}

		var b strings.Builder
		b.WriteString(strings.Repeat("  ", gc.Column))
		b.WriteString(laneStyle.Render(marker))
		b.WriteString(" ")

		ic := info[gc.SHA]
		b.WriteString(StyleDim.Render(ic.Short()))

		for _, br := range tips[gc.SHA] {
			name := br.Name
			if br.IsCurrent {
				name = "*" + name
			}
			tipStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(br.Color)).Bold(true)
			b.WriteString(" ")
			b.WriteString(tipStyle.Render("[" + name + "]"))
		}

		subject := ic.Message
		if i := strings.IndexByte(subject, '\n'); i >= 0 {
			subject = subject[:i]
		}
		if subject != "" {
			b.WriteString(" ")
			b.WriteString(subject)
		}

		b.WriteString(" ")
		b.WriteString(StyleDim.Render("(" + history.RelativeTime(ic.Timestamp, now) + ")"))
		if ic.Author != "" {
			b.WriteString(" ")
			b.WriteString(StyleDim.Render(ic.Author))
		}

		lines = append(lines, b.String())
	}
	return lines
}

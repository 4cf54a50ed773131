package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/gitlanes/pkg/history"
	"github.com/matzehuels/gitlanes/pkg/layout"
	"github.com/matzehuels/gitlanes/pkg/pipeline"
)

// branchesCommand creates the branches command showing lane assignments.
func (c *CLI) branchesCommand() *cobra.Command {
	var noCache bool
	opts := c.pipelineOptions()

	cmd := &cobra.Command{
		Use:   "branches [path]",
		Short: "Show branches with their lanes and colors",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Repo = resolveRepo(repoArg(args))
			return c.runBranches(cmd.Context(), opts, noCache)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", opts.Limit, "number of commits in the window")
	cmd.Flags().StringVar(&opts.Backend, "backend", opts.Backend, "repository backend: auto (default), gogit, gitexec")
	cmd.Flags().StringVar(&opts.Palette, "palette", opts.Palette, "lane palette: dark (default), light")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runBranches(ctx context.Context, opts pipeline.Options, noCache bool) error {
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

	fmt.Println(branchTable(snap, g))

	c.rememberRepo(ctx, opts.Repo, opts)
	return nil
}

// branchTable renders the lane table for all branches in the layout,
// merging tracking state from the snapshot back in.
func branchTable(snap *history.Snapshot, g *layout.Graph) string {
	tracking := make(map[string]history.Branch, len(snap.Branches))
	for _, b := range snap.Branches {
		tracking[b.Name] = b
	}

	rows := make([][]string, 0, len(g.Branches))
	for _, b := range g.Branches {
		name := b.Name
		if b.IsCurrent {
			name = "* " + name
		}

		track := tracking[b.Name]
		upstream := track.Upstream
		if upstream == "" {
			upstream = "—"
		}

		sync := ""
		if track.Ahead > 0 {
			sync = fmt.Sprintf("↑%d", track.Ahead)
		}
		if track.Behind > 0 {
			if sync != "" {
				sync += " "
			}
			sync += fmt.Sprintf("↓%d", track.Behind)
		}

		tip := b.TipSHA
		if len(tip) > 7 {
			tip = tip[:7]
		}

		rows = append(rows, []string{strconv.Itoa(b.Column), name, tip, upstream, sync})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Lane", "Branch", "Tip", "Upstream", "Sync").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if row >= len(g.Branches) {
				return lipgloss.NewStyle()
			}

			b := g.Branches[row]
			switch col {
			case 0:
				return StyleNumber
			case 1:
				s := lipgloss.NewStyle().Foreground(lipgloss.Color(b.Color))
				if b.IsCurrent {
					s = s.Bold(true)
				}
				return s
			default:
				return StyleDim
			}
		})

	return t.Render()
}

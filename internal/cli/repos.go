package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/gitlanes/pkg/history"
	"github.com/matzehuels/gitlanes/pkg/session"
)

// reposCommand creates the repos command listing recently opened repositories.
func (c *CLI) reposCommand() *cobra.Command {
	var (
		pick  bool
		limit int
	)

	cmd := &cobra.Command{
		Use:   "repos",
		Short: "List recently opened repositories",
		Long: `List recently opened repositories.

Every graph, log, branches, or serve run records its repository here.
With --pick an interactive list opens and the chosen path prints to
stdout, so the command composes with cd:

  cd "$(gitlanes repos --pick)"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRepos(cmd.Context(), limit, pick)
		},
	}

	cmd.Flags().BoolVar(&pick, "pick", false, "interactively pick a repository and print its path")
	cmd.Flags().IntVarP(&limit, "limit", "n", 15, "number of entries to show")

	cmd.AddCommand(c.reposForgetCommand())

	return cmd
}

func (c *CLI) runRepos(ctx context.Context, limit int, pick bool) error {
	recents, closeStore, err := c.openRecents()
	if err != nil {
		return err
	}
	defer closeStore()

	sessions, err := recents.Recent(ctx, limit)
	if err != nil {
		return fmt.Errorf("load recent repositories: %w", err)
	}

	if len(sessions) == 0 {
		printInfo("No repositories opened yet")
		printNextStep("Open one", appName+" graph /path/to/repo")
		return nil
	}

	if pick {
		return c.pickRepo(sessions)
	}

	now := time.Now()
	for _, s := range sessions {
		fmt.Println(StyleHighlight.Render(shortenPath(s.Repo)))
		printDetail("%d opens · last %s", s.OpenCount, history.RelativeTime(s.LastOpened.Unix(), now))
	}
	return nil
}

// pickRepo runs the interactive picker and prints the selected path.
func (c *CLI) pickRepo(sessions []*session.Session) error {
	m := NewRepoListModel(sessions)
	p := tea.NewProgram(m)

	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("run picker: %w", err)
	}

	final, ok := finalModel.(RepoListModel)
	if !ok || final.Selected == nil {
		printDetail("No selection made")
		return nil
	}

	fmt.Println(final.Selected.Repo)
	return nil
}

// reposForgetCommand creates the "repos forget" subcommand.
func (c *CLI) reposForgetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "forget <path>",
		Short: "Drop a repository from the recent list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			recents, closeStore, err := c.openRecents()
			if err != nil {
				return err
			}
			defer closeStore()

			if err := recents.Forget(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("forget %s: %w", args[0], err)
			}
			printSuccess("Forgot %s", args[0])
			return nil
		},
	}
}

// openRecents opens the session store backing the recent-repository list.
// The returned func closes the store.
func (c *CLI) openRecents() (*session.Recents, func(), error) {
	dir, err := stateDir()
	if err != nil {
		return nil, nil, fmt.Errorf("resolve state dir: %w", err)
	}
	store, err := session.NewFileStore(filepath.Join(dir, "sessions"))
	if err != nil {
		return nil, nil, fmt.Errorf("open session store: %w", err)
	}
	return session.NewRecents(store), func() { _ = store.Close() }, nil
}

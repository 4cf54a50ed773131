package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gitlanes/internal/server"
	"github.com/matzehuels/gitlanes/pkg/pipeline"
)

// serveCommand creates the serve command running the local graph server.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		watch   bool
		noCache bool
	)
	opts := c.pipelineOptions()

	cmd := &cobra.Command{
		Use:   "serve [path]",
		Short: "Serve the commit graph over HTTP with live updates",
		Long: `Serve the commit graph over HTTP.

The server exposes the layout as JSON under /api and pushes fresh graphs
over a websocket at /ws whenever the repository changes. Point a history
view at it and leave it running; Ctrl-C shuts it down cleanly.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Repo = resolveRepo(repoArg(args))
			ctx := withLogger(cmd.Context(), c.Logger)
			return c.runServe(ctx, opts, addr, watch, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", c.Config.Server.Addr, "listen address")
	cmd.Flags().BoolVar(&watch, "watch", true, "recompute when the repository changes")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", opts.Limit, "number of commits in the window")
	cmd.Flags().StringVar(&opts.Backend, "backend", opts.Backend, "repository backend: auto (default), gogit, gitexec")
	cmd.Flags().StringVar(&opts.Palette, "palette", opts.Palette, "lane palette: dark (default), light")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts pipeline.Options, addr string, watch, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()
	opts.Logger = c.Logger

	srv := server.New(runner, server.Options{
		Pipeline: opts,
		Addr:     addr,
		Watch:    watch,
		Logger:   c.Logger,
	})

	printSuccess("Serving commit graph for %s", opts.Repo)
	printLink("http://" + addr + "/api/graph")
	printLink("ws://" + addr + "/ws")
	if watch {
		printDetail("Watching the repository for changes")
	}
	printNewline()

	c.rememberRepo(ctx, opts.Repo, opts)

	return srv.Start(ctx)
}

package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"
)

// publishTimeout bounds the token exchange plus bookmark creation.
const publishTimeout = 60 * time.Second

// publishOpts holds the command-line flags for the publish command.
type publishOpts struct {
	graphFlags
	name        string // bookmark name (defaults to the diagram name)
	description string // bookmark description
}

// publishCommand creates the publish command.
func (c *CLI) publishCommand() *cobra.Command {
	var opts publishOpts

	cmd := &cobra.Command{
		Use:   "publish <file.xmi>",
		Short: "Publish a diagram as a LeanIX visualizer bookmark",
		Long: `Convert a diagram to mxGraph XML and store it in the configured LeanIX
workspace as a free-draw visualizer bookmark.

Credentials come from LEANIX_INSTANCE and LEANIX_API_TOKEN (a .env file is
read first) or the [leanix] section of the config file.

Examples:
  xmigraph publish model.xmi -d Overview
  xmigraph publish model.xmi -d Overview --name "Shop landscape" --description "from EA"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPublish(cmd.Context(), args[0], &opts)
		},
	}

	opts.graphFlags.register(cmd)
	cmd.Flags().StringVarP(&opts.name, "name", "n", "", "bookmark name (default: diagram name)")
	cmd.Flags().StringVar(&opts.description, "description", "", "bookmark description")

	return cmd
}

func (c *CLI) runPublish(ctx context.Context, input string, opts *publishOpts) error {
	logger := loggerFromContext(ctx)

	doc, err := readDocument(input)
	if err != nil {
		return err
	}
	client, err := c.leanixClient(ctx, opts.noCache)
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	popts, err := c.options(&opts.graphFlags)
	if err != nil {
		return err
	}
	popts.BookmarkName = opts.name
	popts.Description = opts.description
	popts.GroupKey = c.cfg.LeanIX.GroupKey

	d, _, err := selectDiagram(ctx, runner, doc, &popts)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	spinner := newSpinnerWithContext(ctx, "Publishing "+d.Name+"...")
	spinner.Start()
	res, err := runner.Publish(ctx, client, d, popts)
	if err != nil {
		spinner.StopWithError("Publish failed")
		return err
	}
	spinner.Stop()
	logger.Debug("bookmark created", "id", res.Bookmark.ID)

	printSuccess("Published %s", StyleHighlight.Render(res.Bookmark.Name))
	printKeyValue("Bookmark", res.Bookmark.ID)
	printKeyValue("Workspace", c.cfg.LeanIX.Instance)
	printStats(res.Graph.Vertices, res.Graph.Edges, res.Graph.Dropped, res.Graph.CacheHit)
	return nil
}

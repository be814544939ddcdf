package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// graphOpts holds the command-line flags for the graph command.
type graphOpts struct {
	graphFlags
	output string // output file path (stdout if empty)
	indent bool   // indent the XML
}

// graphCommand creates the graph command.
func (c *CLI) graphCommand() *cobra.Command {
	var opts graphOpts

	cmd := &cobra.Command{
		Use:   "graph <file.xmi>",
		Short: "Convert a diagram to mxGraph XML",
		Long: `Convert one diagram of an XMI document into an <mxGraphModel> document.

Containers become parent cells and nested geometry is made relative to the
parent unless --absolute is given. Connectors whose endpoints were not
placed are dropped and reported.

Examples:
  xmigraph graph model.xmi -d Overview -o overview.xml
  xmigraph graph model.xmi -d Overview --styles archimate.toml --indent`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGraph(cmd.Context(), args[0], &opts)
		},
	}

	opts.graphFlags.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().BoolVar(&opts.indent, "indent", false, "indent the XML")

	return cmd
}

func (c *CLI) runGraph(ctx context.Context, input string, opts *graphOpts) error {
	logger := loggerFromContext(ctx)

	doc, err := readDocument(input)
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
	popts.Indent = opts.indent

	d, ex, err := selectDiagram(ctx, runner, doc, &popts)
	if err != nil {
		return err
	}

	prog := newProgress(logger)
	g, err := runner.BuildGraph(ctx, d, popts)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Built graph %s", d.Name))

	if err := writeOutput(opts.output, []byte(g.XML+"\n")); err != nil {
		return err
	}

	printSuccess("Diagram %s", StyleHighlight.Render(d.Name))
	printStats(g.Vertices, g.Edges, g.Dropped, g.CacheHit)
	printDiagnostics(append(ex.Diagnostics, g.Diagnostics...), verbose(logger))
	if opts.output != "" {
		printFile(opts.output)
	}
	return nil
}

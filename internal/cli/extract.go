package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/xmigraph/pkg/pipeline"
)

// extractOpts holds the command-line flags for the extract command.
type extractOpts struct {
	graphFlags
	output string // write diagrams as JSON to this file ("-" for stdout)
}

// extractCommand creates the extract command.
func (c *CLI) extractCommand() *cobra.Command {
	var opts extractOpts

	cmd := &cobra.Command{
		Use:   "extract <file.xmi>",
		Short: "List the diagrams of an XMI document",
		Long: `Parse an XMI document and list its diagrams with element and connector
counts. Non-fatal problems (unresolved subjects, malformed geometry) are
summarized; use --verbose to see each one.

Use "-" to read the document from stdin.

Examples:
  xmigraph extract model.xmi
  xmigraph extract model.xmi -o diagrams.json
  xmigraph extract - -o - < model.xmi | jq '.[].name'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExtract(cmd.Context(), args[0], &opts)
		},
	}

	opts.graphFlags.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", `write diagrams as JSON ("-" for stdout)`)

	return cmd
}

func (c *CLI) runExtract(ctx context.Context, input string, opts *extractOpts) error {
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

	prog := newProgress(logger)
	res, err := runner.Extract(ctx, doc, popts)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Extracted %d diagrams", len(res.Diagrams)))

	if opts.output != "" {
		return writeDiagrams(opts.output, res)
	}

	if len(res.Diagrams) == 0 {
		printWarning("Document has no diagrams")
		return nil
	}
	printDiagramTable(res.Diagrams)
	printDiagnostics(res.Diagnostics, verbose(logger))
	if res.CacheHit {
		printDetail("served from cache")
	}
	printNextStep("Convert one", fmt.Sprintf("xmigraph graph %s -d %q -o diagram.xml", input, res.Diagrams[0].Name))
	return nil
}

func writeDiagrams(path string, res *pipeline.ExtractResult) error {
	data, err := json.MarshalIndent(res.Diagrams, "", "  ")
	if err != nil {
		return err
	}
	if path == stdinPath {
		path = ""
	}
	if err := writeOutput(path, append(data, '\n')); err != nil {
		return err
	}
	if path != "" {
		printSuccess("Wrote %d diagrams", len(res.Diagrams))
		printFile(path)
	}
	return nil
}

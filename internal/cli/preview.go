package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/xmigraph/pkg/pipeline"
)

// previewOpts holds the command-line flags for the preview command.
type previewOpts struct {
	graphFlags
	output   string   // output file (single format) or base path (multiple)
	formats  []string // dot, svg, png, pdf, xml, json
	detailed bool     // show element types in node labels
}

// previewCommand creates the preview command.
func (c *CLI) previewCommand() *cobra.Command {
	var (
		opts       previewOpts
		formatsStr string
	)

	cmd := &cobra.Command{
		Use:   "preview <file.xmi>",
		Short: "Render a diagram with Graphviz",
		Long: `Render a diagram as a Graphviz drawing for a quick look without a diagram
editor. Containers are drawn as clusters.

PNG and PDF output require rsvg-convert on the PATH.

Examples:
  xmigraph preview model.xmi -d Overview
  xmigraph preview model.xmi -d Overview -f svg,png -o out/overview`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			return c.runPreview(cmd.Context(), args[0], &opts)
		},
	}

	opts.graphFlags.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), dot, png, pdf, xml, json (comma-separated)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show element types in labels")

	return cmd
}

func (c *CLI) runPreview(ctx context.Context, input string, opts *previewOpts) error {
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
	popts.Formats = opts.formats
	popts.Detailed = opts.detailed

	d, _, err := selectDiagram(ctx, runner, doc, &popts)
	if err != nil {
		return err
	}

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", d.Name))
	spinner.Start()
	out, err := runner.Preview(ctx, d, popts)
	if err != nil {
		spinner.StopWithError("Rendering failed")
		return err
	}
	spinner.Stop()
	logger.Debugf("Rendered %d formats", len(out))

	printSuccess("Rendered %s", StyleHighlight.Render(d.Name))
	base := basePath(opts.output, input, d.Name)
	for _, format := range opts.formats {
		path := base + "." + format
		if len(opts.formats) == 1 && opts.output != "" {
			path = opts.output
		}
		if err := writeOutput(path, out[format]); err != nil {
			return err
		}
		printFile(path)
	}
	return nil
}

// basePath derives the base output path. Without an output it is the
// input directory joined with the diagram name; a known format extension
// on output is stripped.
func basePath(output, input, diagram string) string {
	if output == "" {
		dir := "."
		if input != stdinPath {
			dir = filepath.Dir(input)
		}
		return filepath.Join(dir, fileSafe(diagram))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidateFormat(strings.TrimPrefix(ext, ".")) == nil {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// fileSafe replaces characters that are awkward in file names.
func fileSafe(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "diagram"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ':
			return '_'
		}
		return r
	}, name)
}

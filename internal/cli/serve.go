package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/xmigraph/internal/api"
	"github.com/matzehuels/xmigraph/pkg/observability"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		metrics bool
		noCache bool
		maxBody int64
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve extraction and graph building over HTTP.

  POST /v1/diagrams                  XMI body -> diagrams as JSON
  POST /v1/diagrams/{name}/graph     XMI body -> mxGraph XML
  POST /v1/diagrams/{name}/preview   XMI body -> dot, svg, png or pdf
  GET  /healthz
  GET  /metrics                      with --metrics

Style overrides from the [styles] config table apply to every request.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			if addr == "" {
				addr = c.cfg.Server.Addr
			}

			defaults, err := c.options(&graphFlags{})
			if err != nil {
				return err
			}
			opts := []api.Option{api.WithDefaults(defaults), api.WithMaxBodySize(maxBody)}
			if metrics {
				m := observability.NewMetrics()
				m.Install()
				opts = append(opts, api.WithMetrics(m))
			}

			printInfo("Listening on %s", StyleLink.Render(addr))
			return api.New(runner, c.Logger, opts...).ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&metrics, "metrics", true, "expose Prometheus metrics on /metrics")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().Int64Var(&maxBody, "max-body", api.DefaultMaxBodySize, "maximum request body size in bytes")

	return cmd
}

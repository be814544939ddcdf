package cli

import (
	"context"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/xmigraph/pkg/config"
)

// authCommand creates the auth command with subcommands.
func (c *CLI) authCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "LeanIX credential commands",
		Long: `Check the LeanIX credentials used by publish and bookmarks.

Credentials are read from LEANIX_INSTANCE and LEANIX_API_TOKEN (after
loading --env-file) or from the [leanix] section of the config file.`,
	}

	cmd.AddCommand(c.authCheckCommand())

	return cmd
}

// authCheckCommand creates the "auth check" subcommand.
func (c *CLI) authCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Exchange the API token for an access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			auth, err := c.authenticator()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			spinner := newSpinnerWithContext(ctx, "Verifying credentials...")
			spinner.Start()
			start := time.Now()
			err = auth.Do(ctx, func(context.Context, *http.Client) error { return nil })
			if err != nil {
				spinner.StopWithError("Credentials rejected")
				return err
			}
			spinner.Stop()

			printSuccess("LeanIX credentials")
			printKeyValue("Instance", auth.Instance())
			printKeyValue("Token", redact(c.cfg.LeanIX.APIToken))
			printKeyValue("Exchange", time.Since(start).Round(time.Millisecond).String())
			return nil
		},
	}
}

// redact keeps the last four characters of a secret.
func redact(secret string) string {
	if len(secret) <= 4 {
		return "****"
	}
	return "****" + secret[len(secret)-4:]
}

// credentialSource names where the token came from, for display.
func credentialSource(cfg *config.Config, getenv func(string) string) string {
	if getenv(config.EnvAPIToken) != "" {
		return "environment"
	}
	if cfg.LeanIX.APIToken != "" {
		return "config file"
	}
	return "not set"
}

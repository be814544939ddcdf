package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/xmigraph/pkg/buildinfo"
	"github.com/matzehuels/xmigraph/pkg/cache"
	"github.com/matzehuels/xmigraph/pkg/config"
	"github.com/matzehuels/xmigraph/pkg/errors"
	"github.com/matzehuels/xmigraph/pkg/integrations"
	"github.com/matzehuels/xmigraph/pkg/integrations/leanix"
	"github.com/matzehuels/xmigraph/pkg/pipeline"
	"github.com/matzehuels/xmigraph/pkg/style"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "xmigraph"

	// stdinPath reads the document from standard input.
	stdinPath = "-"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	envFile    string
	cfg        *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "xmigraph turns UML/XMI exports into mxGraph diagrams",
		Long: `xmigraph reads XMI documents exported by UML modeling tools, normalizes
every diagram into elements and connectors, and converts them into mxGraph
XML that can be opened in diagram editors or published as LeanIX
visualizer bookmarks.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/xmigraph/config.toml)")
	root.PersistentFlags().StringVar(&c.envFile, "env-file", ".env", "dotenv file with LEANIX_* credentials")

	// Register all subcommands
	root.AddCommand(c.extractCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.previewCommand())
	root.AddCommand(c.publishCommand())
	root.AddCommand(c.bookmarksCommand())
	root.AddCommand(c.authCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Configuration
// =============================================================================

// loadConfig loads the configuration once per process.
func (c *CLI) loadConfig() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	if err := config.LoadDotEnv(c.envFile); err != nil {
		return nil, err
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	c.cfg = cfg
	return cfg, nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	store, err := c.openCache(ctx, cfg, noCache)
	if err != nil {
		return nil, err
	}
	r := pipeline.NewRunner(store, nil, c.Logger)
	r.TTL = cfg.Cache.TTL.Duration
	return r, nil
}

func (c *CLI) openCache(ctx context.Context, cfg *config.Config, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		dir = ""
	}
	cc := cfg.CacheConfig(dir)
	if cc.Backend == "" || cc.Backend == cache.BackendFile {
		if cc.Dir == "" {
			c.Logger.Warn("no cache directory available, caching disabled")
			return cache.NewNullCache(), nil
		}
	}
	store, err := cache.Open(ctx, cc)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "open %s cache", cc.Backend)
	}
	return store, nil
}

// authenticator builds a LeanIX authenticator from the configured
// credentials.
func (c *CLI) authenticator() (*leanix.Authenticator, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.LeanIX.Configured() {
		return nil, errors.New(errors.ErrCodeInvalidConfig,
			"LeanIX credentials missing: set %s and %s or the [leanix] section of the config file",
			config.EnvInstance, config.EnvAPIToken)
	}
	auth := leanix.NewAuthenticator(cfg.LeanIX.Instance, cfg.LeanIX.APIToken)
	if err := auth.Validate(); err != nil {
		return nil, err
	}
	return auth, nil
}

// leanixClient builds a bookmark client from the configured credentials.
func (c *CLI) leanixClient(ctx context.Context, noCache bool) (*leanix.Client, error) {
	auth, err := c.authenticator()
	if err != nil {
		return nil, err
	}
	store, err := c.openCache(ctx, c.cfg, noCache)
	if err != nil {
		return nil, err
	}
	opts := []integrations.Option{integrations.WithLogger(loggerFromContext(ctx))}
	if rl, ok := c.cfg.LeanIX.RateLimitConfig(); ok {
		loggerFromContext(ctx).Debug("leanix rate limit", "rps", rl.RequestsPerSecond, "burst", rl.BurstSize)
		opts = append(opts, integrations.WithRateLimit(rl))
	}
	return leanix.NewClient(auth, store, opts...), nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/xmigraph/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Input / Output
// =============================================================================

// readDocument reads an XMI document from path, or stdin for "-".
func readDocument(path string) ([]byte, error) {
	if path == stdinPath {
		return io.ReadAll(os.Stdin)
	}
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeFileNotFound, "file not found: %s", path)
	}
	return data, err
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// openOutput returns stdout for an empty path, otherwise creates the file.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	return os.Create(path)
}

// writeOutput writes data to path (stdout if empty).
func writeOutput(path string, data []byte) error {
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	if _, err := out.Write(data); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// =============================================================================
// Options Helpers
// =============================================================================

// graphFlags are the flags shared by commands that build graphs.
type graphFlags struct {
	diagram            string
	styles             string
	includeUnconnected bool
	skipUnknown        bool
	absolute           bool
	refresh            bool
	noCache            bool
}

func (f *graphFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.diagram, "diagram", "d", "", "diagram name (prompted on a terminal when the document has several)")
	cmd.Flags().StringVar(&f.styles, "styles", "", "TOML file of style overrides")
	cmd.Flags().BoolVar(&f.includeUnconnected, "include-unconnected", false, "index elements that no connector references")
	cmd.Flags().BoolVar(&f.skipUnknown, "skip-unknown", false, "skip elements without a style entry")
	cmd.Flags().BoolVar(&f.absolute, "absolute", false, "keep absolute geometry for nested vertices")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "bypass cache")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")

	cmd.ValidArgsFunction = completeXMIFile
	_ = cmd.RegisterFlagCompletionFunc("diagram", completeDiagram)
	_ = cmd.MarkFlagFilename("styles", "toml")
}

// options builds pipeline options from the config file and flags. Style
// overrides from --styles win over the [styles] config table.
func (c *CLI) options(f *graphFlags) (pipeline.Options, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return pipeline.Options{}, err
	}
	styles := make(map[string]string, len(cfg.Styles))
	for k, v := range cfg.Styles {
		styles[k] = v
	}
	if f.styles != "" {
		overrides, err := style.LoadOverrides(f.styles)
		if err != nil {
			return pipeline.Options{}, err
		}
		for k, v := range overrides {
			styles[k] = v
		}
	}
	return pipeline.Options{
		Diagram:            f.diagram,
		IncludeUnconnected: f.includeUnconnected,
		SkipUnknown:        f.skipUnknown,
		AbsoluteGeometry:   f.absolute,
		Refresh:            f.refresh,
		Styles:             styles,
		Logger:             c.Logger,
	}, nil
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

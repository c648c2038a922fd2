// Package cli implements the regroup command-line interface.
package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/regroup/pkg/buildinfo"
	"github.com/matzehuels/regroup/pkg/cache"
	"github.com/matzehuels/regroup/pkg/observability"
	"github.com/matzehuels/regroup/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "regroup"

	// envCacheURL selects the cache backend when --cache-url is not given.
	envCacheURL = "REGROUP_CACHE_URL"

	// envCacheNamespace prefixes cache keys when --cache-namespace is not given.
	envCacheNamespace = "REGROUP_CACHE_NAMESPACE"
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
	cacheURL   string
	namespace  string
	noCache    bool
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
		Short: "Regroup splits notated durations along a metrical hierarchy",
		Long: `Regroup builds a metrical hierarchy from a time signature, a list of pulse
lengths or explicit offsets, and splits spans of time into fragments that
respect its beat boundaries.`,
		Version:      buildinfo.Current(),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c.registerHooks()
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "TOML style file with hierarchy and split settings")
	root.PersistentFlags().StringVar(&c.cacheURL, "cache-url", os.Getenv(envCacheURL), "cache backend: file:///dir, redis://, mongodb://, or none")
	root.PersistentFlags().StringVar(&c.namespace, "cache-namespace", os.Getenv(envCacheNamespace), "prefix for cache keys in a shared backend")
	root.PersistentFlags().BoolVar(&c.noCache, "no-cache", false, "disable the hierarchy cache")

	root.AddCommand(c.hierarchyCommand())
	root.AddCommand(c.splitCommand())
	root.AddCommand(c.batchCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())
	registerCompletions(root)

	return root
}

// registerCompletions attaches value completion to the shared flags of every
// subcommand that defines them.
func registerCompletions(root *cobra.Command) {
	for _, cmd := range root.Commands() {
		if cmd.Flags().Lookup("signature") != nil {
			_ = cmd.RegisterFlagCompletionFunc("signature", completeValues(commonSignatures...))
		}
		if cmd.Flags().Lookup("format") == nil {
			continue
		}
		formats := []string{pipeline.FormatText, pipeline.FormatJSON, pipeline.FormatDOT, pipeline.FormatSVG}
		if cmd.Name() == "batch" {
			formats = formats[:2]
		}
		_ = cmd.RegisterFlagCompletionFunc("format", completeValues(formats...))
	}
}

// registerHooks routes pipeline events to the CLI logger at debug level.
func (c *CLI) registerHooks() {
	h := &logHooks{logger: c.Logger}
	observability.SetBuildHooks(h)
	observability.SetSplitHooks(h)
	observability.SetCacheHooks(h)
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. An unreachable network
// cache is logged and replaced by no cache at all.
func (c *CLI) newRunner(ctx context.Context) (*pipeline.Runner, error) {
	ch, err := c.openCache(ctx)
	if err != nil {
		if !errors.Is(err, cache.ErrUnavailable) {
			return nil, err
		}
		c.Logger.Warn("cache unavailable, continuing without it", "error", err)
		ch = cache.NewNullCache()
	}
	c.Logger.Debug("using cache", "backend", cache.Describe(ch))
	return pipeline.NewRunner(ch, c.keyer(), c.Logger), nil
}

// keyer returns nil for the default keyer, or one scoped to --cache-namespace.
func (c *CLI) keyer() cache.Keyer {
	if c.namespace == "" {
		return nil
	}
	return cache.NewScopedKeyer(nil, c.namespace+":")
}

func (c *CLI) openCache(ctx context.Context) (cache.Cache, error) {
	if c.noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		dir = ""
	}
	return cache.Open(ctx, c.cacheURL, dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/regroup/).
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

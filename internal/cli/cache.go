package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/regroup/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the hierarchy cache",
	}

	cmd.AddCommand(c.cacheClearCommand(), c.cacheInfoCommand(), c.cachePathCommand())
	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached hierarchies",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ch, err := c.openCache(ctx)
			if err != nil {
				return err
			}
			defer ch.Close()

			w := cmd.OutOrStdout()
			clearer, ok := ch.(cache.Clearer)
			if !ok {
				printInfo(w, "Nothing to clear (%s)", cache.Describe(ch))
				return nil
			}
			count, err := clearer.Clear(ctx)
			if err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}

			printSuccess(w, "Cleared %d cached entries", count)
			printDetail(w, "Backend: %s", cache.Describe(ch))
			return nil
		},
	}
}

// cacheInfoCommand reports the backend and key namespace that hierarchy
// commands would use with the current flags.
func (c *CLI) cacheInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the active cache backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			ch, err := c.openCache(cmd.Context())
			if err != nil {
				return err
			}
			defer ch.Close()

			w := cmd.OutOrStdout()
			printKeyValue(w, "backend", cache.Describe(ch))
			namespace := "(none)"
			if c.namespace != "" {
				namespace = c.namespace
			}
			printKeyValue(w, "namespace", namespace)
			printKeyValue(w, "ttl", cache.TTLHierarchy.String())
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
}

package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/regroup/internal/server"
	"github.com/matzehuels/regroup/pkg/cache"
	"github.com/matzehuels/regroup/pkg/observability"
)

// serveCommand creates the serve command that runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var cfg server.Config

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the split API over HTTP",
		Long: `Serve the hierarchy and split operations as a JSON API.

Endpoints:
  GET  /healthz
  POST /v1/hierarchy
  POST /v1/split
  POST /v1/split/batch

The server shuts down gracefully on interrupt.`,
		Example: `  regroup serve --addr :9000
  regroup serve --cache-url redis://localhost:6379/0`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			runner, err := c.newRunner(ctx)
			if err != nil {
				return err
			}
			defer runner.Close()

			observability.SetHTTPHooks(&httpLogHooks{logger: c.Logger})

			c.Logger.Info("hierarchy cache", "backend", cache.Describe(runner.Cache))
			return server.New(runner, c.Logger, cfg).ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&cfg.Addr, "addr", server.DefaultAddr, "listen address")
	cmd.Flags().Int64Var(&cfg.MaxBodyBytes, "max-body", server.DefaultMaxBodyBytes, "maximum request body size in bytes")
	cmd.Flags().DurationVar(&cfg.Timeout, "timeout", server.DefaultTimeout, "per-request timeout")
	return cmd
}

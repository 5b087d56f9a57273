package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/davafons/dial/internal/api"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP export service",
		Long: `Run the HTTP export service. POST a project to /v1/notebooks to get the
notebook back; GET /v1/node-kinds and /v1/datasets describe what a project
may contain. The server stops on interrupt.`,
		Example: `  dial serve --addr :8420
  curl -H 'Content-Type: application/toml' --data-binary @mnist.toml localhost:8420/v1/notebooks`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if addr == "" {
				addr = c.config.Server.Addr
			}
			if addr == "" {
				addr = api.DefaultAddr
			}

			plugins, err := c.newPlugins()
			if err != nil {
				return err
			}
			runner := c.newRunner(ctx, plugins.Host(), noCache)
			defer runner.Close()

			printKeyValue("listening", "http://"+addr)
			printKeyValue("plugins", fmt.Sprint(len(plugins.Installed())))
			return api.New(runner, plugins.Host().Nodes, c.Logger).ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: [server] addr or "+api.DefaultAddr+")")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

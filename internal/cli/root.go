package cli

import (
	"github.com/spf13/cobra"

	"github.com/davafons/dial/pkg/buildinfo"
	"github.com/davafons/dial/pkg/observability"
)

// RootCommand creates the root cobra command with all subcommands
// registered. The config file is read before any subcommand runs.
func (c *CLI) RootCommand() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:   appName,
		Short: "dial turns node graphs into Jupyter notebooks",
		Long: `dial builds deep learning notebooks from projects: graphs of dataset,
layer, model and training nodes wired port to port. Projects are TOML or
JSON files, or scripts in the dial scene language (.zy).`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if verbose {
				c.SetLogLevel(LogDebug)
			}
			cfg, err := loadConfig(c.configPath)
			if err != nil {
				return err
			}
			c.config = cfg
			hooks := observability.NewLogHooks(c.Logger)
			observability.SetGeneratorHooks(hooks)
			observability.SetCacheHooks(hooks)
			observability.SetHTTPHooks(hooks)
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", c.configPath, "config file")

	root.AddCommand(c.exportCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.nodesCommand())
	root.AddCommand(c.datasetsCommand())
	root.AddCommand(c.pluginsCommand())
	root.AddCommand(c.storeCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

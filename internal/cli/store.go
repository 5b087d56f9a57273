package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	dialerrors "github.com/davafons/dial/pkg/errors"
	"github.com/davafons/dial/pkg/store"
)

// storeCommand creates the project store command.
func (c *CLI) storeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Share projects through a project store",
		Long: `Share projects through a project store: a local directory by default, or
a MongoDB collection when [store] backend = "mongo" is configured.`,
	}

	cmd.AddCommand(c.storeListCommand())
	cmd.AddCommand(c.storePushCommand())
	cmd.AddCommand(c.storePullCommand())
	cmd.AddCommand(c.storeDeleteCommand())

	return cmd
}

// withStore opens the store, runs fn and closes the store. Remote stores
// show a spinner while fn runs.
func (c *CLI) withStore(ctx context.Context, msg string, fn func(store.Store) error) error {
	plugins, err := c.newPlugins()
	if err != nil {
		return err
	}

	run := func(ctx context.Context) error {
		s, err := c.newStore(ctx, plugins.Host())
		if err != nil {
			return err
		}
		defer s.Close(ctx)
		return fn(s)
	}
	if c.config.Store.Backend == backendMongo {
		err = newSpinner(msg).Run(ctx, run)
	} else {
		err = run(ctx)
	}
	return dialerrors.Classify(err)
}

func (c *CLI) storeListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var entries []store.Entry
			err := c.withStore(cmd.Context(), "Listing projects...", func(s store.Store) error {
				var err error
				entries, err = s.List(cmd.Context())
				return err
			})
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				printInfo("No stored projects")
				printNextStep("Store one with", appName+" store push <project>")
				return nil
			}
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []string{e.Name, fmt.Sprint(e.Nodes), e.UpdatedAt.Local().Format("2006-01-02 15:04")})
			}
			printTable([]string{"Project", "Nodes", "Updated"}, rows)
			return nil
		},
	}
}

func (c *CLI) storePushCommand() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "push <project>",
		Short: "Store a project, replacing any with the same name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			plugins, err := c.newPlugins()
			if err != nil {
				return err
			}
			p, err := loadProject(ctx, args[0], plugins.Host().Nodes)
			if err != nil {
				return dialerrors.Classify(err)
			}
			if name != "" {
				p.SetName(name)
			}
			if err := dialerrors.ValidateProjectName(p.Name()); err != nil {
				return err
			}
			err = c.withStore(ctx, "Pushing "+p.Name()+"...", func(s store.Store) error {
				return s.Put(ctx, p)
			})
			if err != nil {
				return err
			}
			printSuccess("Pushed %s", StyleValue.Render(p.Name()))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "store under this name instead of the project name")
	return cmd
}

func (c *CLI) storePullCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "pull <name>",
		Short: "Fetch a stored project into a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			name := args[0]
			if output == "" {
				output = name + ".toml"
			}
			err := c.withStore(ctx, "Pulling "+name+"...", func(s store.Store) error {
				p, err := s.Get(ctx, name)
				if err != nil {
					return err
				}
				return p.Save(output)
			})
			if err != nil {
				return err
			}
			printSuccess("Pulled %s", StyleValue.Render(name))
			printFile(output)
			printNextStep("Generate the notebook with", appName+" export "+filepath.Base(output))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, .toml or .json (default: <name>.toml)")
	return cmd
}

func (c *CLI) storeDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a stored project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			err := c.withStore(ctx, "Deleting "+args[0]+"...", func(s store.Store) error {
				return s.Delete(ctx, args[0])
			})
			if err != nil {
				return err
			}
			printSuccess("Deleted %s", StyleValue.Render(args[0]))
			return nil
		},
	}
}

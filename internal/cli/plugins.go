package cli

import (
	"errors"
	"slices"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	dialerrors "github.com/davafons/dial/pkg/errors"
	"github.com/davafons/dial/pkg/plugin"
)

// pluginsCommand creates the plugin management command.
func (c *CLI) pluginsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plugins",
		Short: "Manage node plugins",
		Long: `Manage node plugins. A plugin adds node kinds and the code they generate.
Plugin state is kept in ~/.config/dial/plugins.toml.`,
	}

	cmd.AddCommand(c.pluginsListCommand())
	cmd.AddCommand(c.pluginsToggleCommand("enable", "Install if needed and load a plugin", true))
	cmd.AddCommand(c.pluginsToggleCommand("disable", "Unload a plugin", false))
	cmd.AddCommand(c.pluginsSelectCommand())

	return cmd
}

func (c *CLI) pluginsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List installed and available plugins",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := c.newPlugins()
			if err != nil {
				return err
			}
			installed := m.Installed()
			var rows [][]string
			for _, p := range installed {
				state := "disabled"
				if p.Active {
					state = "enabled"
				}
				rows = append(rows, []string{p.Name, p.Version, state, p.Summary})
			}
			for _, name := range m.Available() {
				if !slices.ContainsFunc(installed, func(p plugin.Plugin) bool { return p.Name == name }) {
					rows = append(rows, []string{name, "", "available", ""})
				}
			}
			printTable([]string{"Plugin", "Version", "State", "Summary"}, rows)
			return nil
		},
	}
}

func (c *CLI) pluginsToggleCommand(use, short string, active bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <plugin>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := c.newPlugins()
			if err != nil {
				return err
			}
			name := args[0]
			if active {
				// Enabling an available plugin installs it.
				if err := m.EnsureInstalled(name); err != nil {
					return dialerrors.Classify(err)
				}
			}
			if err := m.SetActive(name, active); err != nil {
				return dialerrors.Classify(err)
			}
			if err := m.SaveConfig(c.config.Plugins.File); err != nil {
				return err
			}
			if active {
				printSuccess("Enabled %s", StyleValue.Render(name))
			} else {
				printSuccess("Disabled %s", StyleValue.Render(name))
			}
			return nil
		},
	}
}

func (c *CLI) pluginsSelectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "select",
		Short: "Pick active plugins interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := c.newPlugins()
			if err != nil {
				return err
			}
			installed := m.Installed()
			if len(installed) == 0 {
				printInfo("No plugins installed")
				return nil
			}

			final, err := tea.NewProgram(NewPluginPickerModel(installed), tea.WithContext(cmd.Context())).Run()
			if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
				return err
			}
			picker, ok := final.(PluginPickerModel)
			if !ok || !picker.Confirmed {
				printInfo("No changes")
				return nil
			}
			return c.applyPluginChanges(m, picker.Changes())
		},
	}
}

// applyPluginChanges loads or unloads the changed plugins and saves the
// new state.
func (c *CLI) applyPluginChanges(m *plugin.Manager, changes map[string]bool) error {
	if len(changes) == 0 {
		printInfo("No changes")
		return nil
	}
	var errs []error
	for name, active := range changes {
		if err := m.SetActive(name, active); err != nil {
			errs = append(errs, err)
			continue
		}
		state := "Disabled"
		if active {
			state = "Enabled"
		}
		printSuccess("%s %s", state, StyleValue.Render(name))
	}
	if err := m.SaveConfig(c.config.Plugins.File); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

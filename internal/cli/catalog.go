package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/davafons/dial/pkg/datasets"
	dialerrors "github.com/davafons/dial/pkg/errors"
	"github.com/davafons/dial/pkg/nodeeditor"
)

// nodesCommand creates the nodes command.
func (c *CLI) nodesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "nodes [kind]",
		Short: "List node kinds, or show the ports of one kind",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plugins, err := c.newPlugins()
			if err != nil {
				return err
			}
			host := plugins.Host()

			if len(args) == 0 {
				var rows [][]string
				for _, s := range host.Nodes.Specs() {
					gen := "yes"
					if !host.Transformers.Has(s.Kind) {
						gen = "no"
					}
					rows = append(rows, []string{s.Kind, gen, s.Summary})
				}
				printTable([]string{"Kind", "Notebook", "Summary"}, rows)
				return nil
			}

			kind := args[0]
			if err := dialerrors.ValidateNodeKind(kind); err != nil {
				return err
			}
			n, err := host.Nodes.Build(kind, "preview", nil)
			if err != nil {
				return dialerrors.Classify(err)
			}
			spec, _ := host.Nodes.Spec(kind)
			fmt.Fprintln(out, StyleTitle.Render(kind))
			printDetail("%s", spec.Summary)
			printKeyValue("inputs", fmtPorts(n.Inputs()))
			printKeyValue("outputs", fmtPorts(n.Outputs()))
			return nil
		},
	}
}

func fmtPorts(ports []*nodeeditor.Port) string {
	if len(ports) == 0 {
		return "none"
	}
	parts := make([]string, len(ports))
	for i, p := range ports {
		parts[i] = fmt.Sprintf("%s (%s)", p.Name(), p.Type())
	}
	return strings.Join(parts, ", ")
}

// datasetsCommand creates the datasets command.
func (c *CLI) datasetsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "datasets",
		Short: "List the predefined datasets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var rows [][]string
			for _, d := range datasets.All() {
				shape := make([]string, len(d.Shape))
				for i, s := range d.Shape {
					shape[i] = fmt.Sprint(s)
				}
				rows = append(rows, []string{
					d.Name,
					"(" + strings.Join(shape, ", ") + ")",
					d.X.Name() + " → " + d.Y.Name(),
					d.Brief,
				})
			}
			printTable([]string{"Dataset", "Shape", "Types", "Description"}, rows)
			return nil
		},
	}
}

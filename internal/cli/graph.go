package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	dialerrors "github.com/davafons/dial/pkg/errors"
	"github.com/davafons/dial/pkg/pipeline"
)

// graphCommand creates the graph command.
func (c *CLI) graphCommand() *cobra.Command {
	var (
		format   string
		output   string
		detailed bool
		noCache  bool
	)

	cmd := &cobra.Command{
		Use:   "graph <project>",
		Short: "Draw a project's node graph",
		Long: `Draw a project's node graph with Graphviz. DOT source goes to stdout
unless -o is given; SVG and PNG default to <project>.<format>.
Nodes that will be skipped during export are drawn dashed.`,
		Example: `  dial graph mnist.toml
  dial graph mnist.toml -f dot --detailed | dot -Tpdf > mnist.pdf`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !pipeline.IsValidFormat(format) {
				return fmt.Errorf("invalid format %q: must be one of %s", format, strings.Join(pipeline.ValidFormats, ", "))
			}
			ctx := cmd.Context()

			plugins, err := c.newPlugins()
			if err != nil {
				return err
			}
			p, err := loadProject(ctx, args[0], plugins.Host().Nodes)
			if err != nil {
				return dialerrors.Classify(err)
			}
			runner := c.newRunner(ctx, plugins.Host(), noCache)
			defer runner.Close()

			data, cached, err := runner.Graph(ctx, p, pipeline.GraphOptions{Format: format, Detailed: detailed})
			if err != nil {
				return dialerrors.Classify(err)
			}

			if output == "" && format == pipeline.FormatDOT {
				_, err := out.Write(data)
				return err
			}
			if output == "" {
				output = strings.TrimSuffix(notebookPath(args[0]), ".ipynb") + "." + format
			}
			if err := os.WriteFile(output, data, 0644); err != nil {
				return err
			}
			status := iconFresh
			if cached {
				status = iconCached
			}
			printSuccess("Rendered %s %s", StyleValue.Render(p.Name()), StyleDim.Render("("+status+")"))
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", pipeline.FormatSVG, "output format: "+strings.Join(pipeline.ValidFormats, ", "))
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "show node kinds, parameters and port names")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	dialerrors "github.com/davafons/dial/pkg/errors"
	"github.com/davafons/dial/pkg/nodes"
	"github.com/davafons/dial/pkg/pipeline"
	"github.com/davafons/dial/pkg/project"
	"github.com/davafons/dial/pkg/script"
)

// loadProject reads a project file or evaluates a scene script, picking
// by extension.
func loadProject(ctx context.Context, path string, catalog *nodes.Catalog) (*project.Project, error) {
	if strings.EqualFold(filepath.Ext(path), script.Ext) {
		return script.LoadFile(ctx, path, catalog)
	}
	return project.Load(path, catalog)
}

// notebookPath returns the default output next to the project file.
func notebookPath(projectPath string) string {
	return strings.TrimSuffix(projectPath, filepath.Ext(projectPath)) + ".ipynb"
}

// exportCommand creates the export command.
func (c *CLI) exportCommand() *cobra.Command {
	var (
		output  string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "export <project>",
		Short: "Generate a Jupyter notebook from a project",
		Long: `Generate a Jupyter notebook from a project file (.toml, .json) or a scene
script (.zy). Nodes are emitted in dependency order, each producer before
its consumers. Nodes whose kind has no transformer are skipped.`,
		Example: `  dial export mnist.toml
  dial export mnist.zy -o notebooks/mnist.ipynb --no-cache`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				output = notebookPath(args[0])
			}
			return c.runExport(cmd.Context(), args[0], output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output notebook (default: <project>.ipynb)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runExport(ctx context.Context, input, output string, noCache bool) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	plugins, err := c.newPlugins()
	if err != nil {
		return err
	}
	p, err := loadProject(ctx, input, plugins.Host().Nodes)
	if err != nil {
		return dialerrors.Classify(err)
	}

	runner := c.newRunner(ctx, plugins.Host(), noCache)
	defer runner.Close()

	res, err := runner.Export(ctx, p, output, pipeline.Options{Refresh: noCache})
	if err != nil {
		return dialerrors.Classify(err)
	}
	prog.done(fmt.Sprintf("Generated %d cells", res.Cells))

	printSuccess("Exported %s", StyleValue.Render(p.Name()))
	printStats(res.Stats.Nodes, res.Stats.Edges, res.Cells, res.CacheHit)
	printFile(output)
	if len(res.Skipped) > 0 {
		printWarning("Skipped %d node(s) without a transformer: %s", len(res.Skipped), strings.Join(res.Skipped, ", "))
		printNextStep("Check the installed plugins", appName+" plugins list")
	}
	return nil
}

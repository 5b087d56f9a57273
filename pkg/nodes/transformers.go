package nodes

import (
	"fmt"
	"strings"

	"github.com/davafons/dial/pkg/datasets"
	"github.com/davafons/dial/pkg/nodeeditor"
	"github.com/davafons/dial/pkg/notebook"
)

const importKeras = "from tensorflow import keras"

// heading is the markdown cell opening every node's section.
func heading(n *nodeeditor.Node, detail string) notebook.Cell {
	text := "### " + n.Title()
	if detail != "" {
		text += "\n" + detail
	}
	return notebook.MarkdownCell(text)
}

type datasetLoader struct{ notebook.Base }

func newDatasetLoader(n *nodeeditor.Node) notebook.Transformer {
	return &datasetLoader{notebook.NewBase(n)}
}

func (t *datasetLoader) Cells() []notebook.Cell {
	name := t.Params().String("dataset", "MNIST")
	train, test := t.Output("train"), t.Output("test")

	ds, ok := datasets.Lookup(name)
	if !ok {
		return []notebook.Cell{
			heading(t.Node(), fmt.Sprintf("Unknown dataset %q.", name)),
			notebook.CodeLines(train+" = None", test+" = None"),
		}
	}

	lines := []string{importKeras, "", ds.LoadCode(train, test)}
	if cats := ds.Categories(); len(cats) > 0 {
		lines = append(lines, t.Var("categories")+" = "+pyValue(cats))
	}
	return []notebook.Cell{
		heading(t.Node(), ds.Brief+"."),
		notebook.CodeLines(lines...),
	}
}

type layersEditor struct{ notebook.Base }

func newLayersEditor(n *nodeeditor.Node) notebook.Transformer {
	return &layersEditor{notebook.NewBase(n)}
}

func (t *layersEditor) Cells() []notebook.Cell {
	layers := t.Params().Maps("layers")
	lines := []string{importKeras, "", t.Output("layers") + " = ["}
	for _, l := range layers {
		typ, _ := l["type"].(string)
		if typ == "" {
			typ = "Dense"
		}
		lines = append(lines, fmt.Sprintf("    keras.layers.%s(%s),", typ, pyKwargs(l, "type")))
	}
	lines = append(lines, "]")
	return []notebook.Cell{
		heading(t.Node(), fmt.Sprintf("%d layer(s).", len(layers))),
		notebook.CodeLines(lines...),
	}
}

type modelCompiler struct{ notebook.Base }

func newModelCompiler(n *nodeeditor.Node) notebook.Transformer {
	return &modelCompiler{notebook.NewBase(n)}
}

func (t *modelCompiler) Cells() []notebook.Cell {
	p := t.Params()
	model := t.Output("model")

	layers := "[]"
	if t.Connected("layers") {
		layers = t.Input("layers")
	}
	if t.Connected("dataset") {
		layers = fmt.Sprintf("[keras.Input(shape=%s[0].shape[1:])] + %s", t.Input("dataset"), layers)
	}

	metrics := p.Strings("metrics")
	if len(metrics) == 0 {
		metrics = []string{"accuracy"}
	}
	return []notebook.Cell{
		heading(t.Node(), ""),
		notebook.CodeLines(
			importKeras,
			"",
			fmt.Sprintf("%s = keras.Sequential(%s)", model, layers),
			fmt.Sprintf("%s.compile(optimizer=%s, loss=%s, metrics=%s)", model,
				pyValue(p.String("optimizer", "adam")),
				pyValue(p.String("loss", "sparse_categorical_crossentropy")),
				pyValue(metrics)),
			model+".summary()",
		),
	}
}

type trainer struct{ notebook.Base }

func newTrainer(n *nodeeditor.Node) notebook.Transformer {
	return &trainer{notebook.NewBase(n)}
}

func (t *trainer) Cells() []notebook.Cell {
	p := t.Params()
	out := t.Output("trained")
	ds := t.Input("dataset")

	args := []string{
		ds + "[0]",
		ds + "[1]",
		"epochs=" + pyValue(p.Int("epochs", 5)),
		"batch_size=" + pyValue(p.Int("batch_size", 32)),
	}
	if split := p.Float("validation_split", 0); split > 0 {
		args = append(args, "validation_split="+pyValue(split))
	}
	return []notebook.Cell{
		heading(t.Node(), ""),
		notebook.CodeLines(
			out+" = "+t.Input("model"),
			fmt.Sprintf("%s = %s.fit(%s)", t.Var("history"), out, strings.Join(args, ", ")),
		),
	}
}

type evaluator struct{ notebook.Base }

func newEvaluator(n *nodeeditor.Node) notebook.Transformer {
	return &evaluator{notebook.NewBase(n)}
}

func (t *evaluator) Cells() []notebook.Cell {
	ds := t.Input("dataset")
	metrics := t.Output("metrics")
	return []notebook.Cell{
		heading(t.Node(), ""),
		notebook.CodeLines(
			fmt.Sprintf("%s = %s.evaluate(%s[0], %s[1], return_dict=True)", metrics, t.Input("model"), ds, ds),
			"print("+metrics+")",
		),
	}
}

type note struct{ notebook.Base }

func newNote(n *nodeeditor.Node) notebook.Transformer {
	return &note{notebook.NewBase(n)}
}

func (t *note) Cells() []notebook.Cell {
	return []notebook.Cell{notebook.MarkdownCell(t.Params().String("text", t.Node().Title()))}
}

package nodes

import (
	"github.com/davafons/dial/pkg/nodeeditor"
)

// Port type tags used by the built-in nodes.
const (
	Dataset nodeeditor.PortType = "Dataset"
	Layers  nodeeditor.PortType = "Layers"
	Model   nodeeditor.PortType = "Model"
	Any     nodeeditor.PortType = "Any"
)

// Compatible accepts equal tags, and anything on either side of an Any port.
func Compatible(out, in nodeeditor.PortType) bool {
	return out == in || in == Any || out == Any
}

// Built-in node kinds.
const (
	KindDatasetLoader = "DatasetLoader"
	KindLayersEditor  = "LayersEditor"
	KindModelCompiler = "ModelCompiler"
	KindTrainer       = "Trainer"
	KindEvaluator     = "Evaluator"
	KindNote          = "Note"
)

type portDecl struct {
	name string
	typ  nodeeditor.PortType
}

// builder returns a BuildFunc declaring the given ports.
func builder(kind string, inputs, outputs []portDecl) BuildFunc {
	return func(id string, params nodeeditor.Params, opts ...nodeeditor.NodeOption) (*nodeeditor.Node, error) {
		all := append([]nodeeditor.NodeOption{nodeeditor.WithID(id), nodeeditor.WithParams(params)}, opts...)
		n := nodeeditor.NewNode(kind, all...)
		for _, p := range inputs {
			if _, err := n.AddInputPort(p.name, p.typ, nodeeditor.WithCompatibility(Compatible)); err != nil {
				return nil, err
			}
		}
		for _, p := range outputs {
			if _, err := n.AddOutputPort(p.name, p.typ, nodeeditor.WithCompatibility(Compatible)); err != nil {
				return nil, err
			}
		}
		return n, nil
	}
}

// Builtins returns the specs of the standard node library.
func Builtins() []Spec {
	return []Spec{
		{
			Kind:        KindDatasetLoader,
			Summary:     "Loads one of the predefined datasets (param: dataset)",
			Build:       builder(KindDatasetLoader, nil, []portDecl{{"train", Dataset}, {"test", Dataset}}),
			Transformer: newDatasetLoader,
		},
		{
			Kind:        KindLayersEditor,
			Summary:     "Declares a stack of Keras layers (param: layers)",
			Build:       builder(KindLayersEditor, nil, []portDecl{{"layers", Layers}}),
			Transformer: newLayersEditor,
		},
		{
			Kind:        KindModelCompiler,
			Summary:     "Builds and compiles a Sequential model (params: optimizer, loss, metrics)",
			Build:       builder(KindModelCompiler, []portDecl{{"layers", Layers}, {"dataset", Dataset}}, []portDecl{{"model", Model}}),
			Transformer: newModelCompiler,
		},
		{
			Kind:        KindTrainer,
			Summary:     "Fits a model on a dataset (params: epochs, batch_size, validation_split)",
			Build:       builder(KindTrainer, []portDecl{{"model", Model}, {"dataset", Dataset}}, []portDecl{{"trained", Model}}),
			Transformer: newTrainer,
		},
		{
			Kind:        KindEvaluator,
			Summary:     "Evaluates a model on a dataset",
			Build:       builder(KindEvaluator, []portDecl{{"model", Model}, {"dataset", Dataset}}, []portDecl{{"metrics", Any}}),
			Transformer: newEvaluator,
		},
		{
			Kind:        KindNote,
			Summary:     "Adds a markdown cell (param: text)",
			Build:       builder(KindNote, nil, nil),
			Transformer: newNote,
		},
	}
}

// NewCatalogWithBuiltins returns a catalog holding [Builtins].
func NewCatalogWithBuiltins() *Catalog {
	c := NewCatalog()
	Install(c, nil, Builtins()...)
	return c
}

// Package notebook compiles a node graph into a Jupyter notebook.
//
// # Overview
//
// A [Generator] takes a [Project] (a named [nodeeditor.Scene]), asks a
// [Registry] for one [Transformer] per node, orders the transformers so
// that every producer comes before its consumers and concatenates their
// cells into a [Notebook]:
//
//	reg := notebook.NewRegistry()
//	reg.Register("DatasetLoader", newLoaderTransformer)
//
//	gen := notebook.NewGenerator(reg, logger)
//	if err := gen.SetProject(p); err != nil {
//	    return err // *nodeeditor.CycleError
//	}
//	return gen.SaveNotebookAs("model.ipynb")
//
// # Missing transformers
//
// Nodes whose kind is not registered are skipped with a warning; the rest
// of the scene still compiles. [Generator.Skipped] lists them.
//
// # Output format
//
// Documents are written as nbformat 4.4 JSON with sorted keys and a
// one-space indent, so regenerating an unchanged scene produces identical
// bytes. Each generated cell carries a "dial" metadata entry naming its
// node and kind.
package notebook

// Package pkg provides the libraries behind dial, a compiler from node
// graphs to Jupyter notebooks.
//
// # Overview
//
// A dial project is a scene of nodes (dataset loaders, layer stacks, model
// compilers, trainers, notes) wired output port to input port. Exporting a
// project orders the nodes so every producer comes before its consumers and
// concatenates the cells each node's transformer emits.
//
// The typical data flow:
//
//	project file (.toml, .json) or scene script (.zy)
//	         ↓
//	    [project] / [script] (decode through the node catalog)
//	         ↓
//	    [nodeeditor] scene (ports, connections, topological sort)
//	         ↓
//	    [notebook] generator (transformers from the registry)
//	         ↓
//	    .ipynb (nbformat 4)
//
// # Quick Start
//
//	import (
//	    "github.com/davafons/dial/pkg/nodes"
//	    "github.com/davafons/dial/pkg/notebook"
//	    "github.com/davafons/dial/pkg/project"
//	)
//
//	catalog, registry := nodes.NewCatalog(), notebook.NewRegistry()
//	nodes.Install(catalog, registry, nodes.Builtins()...)
//
//	p, _ := project.Load("mnist.toml", catalog)
//	gen := notebook.NewGenerator(registry, nil)
//	if err := gen.SetProject(p); err != nil {
//	    // errors.Is(err, nodeeditor.ErrCyclicGraph)
//	}
//	gen.SaveNotebookAs("mnist.ipynb")
//
// # Main Packages
//
// Graph and generation:
//   - [nodeeditor]: ports, nodes, scenes and the reverse topological sort
//   - [notebook]: cells, transformers, the transformer registry and the generator
//   - [nodes]: the built-in node kinds and their transformers
//   - [datasets]: the predefined datasets and their data types
//
// Projects and plugins:
//   - [project]: project files in TOML and JSON
//   - [script]: the zygomys scene language
//   - [plugin]: plugins that add node kinds and transformers
//   - [store]: named projects in a directory or MongoDB
//
// Infrastructure:
//   - [pipeline]: cached export and graph rendering
//   - [cache]: file, Redis and null caches with key builders
//   - [render/dot]: scene diagrams through Graphviz
//   - [observability]: hooks for generation, cache and HTTP events
//   - [errors]: coded errors for the CLI and HTTP boundaries
//   - [buildinfo]: version information stamped at build time
package pkg

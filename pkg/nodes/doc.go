// Package nodes is the standard node library: the Keras building blocks a
// project scene is made of and the transformers that turn them into
// notebook cells.
//
// A [Catalog] maps each kind to a [Spec]. Projects rebuild their nodes
// through it, so the ports of a loaded node always match the current
// library. [Install] copies specs into a catalog and their transformers
// into a [notebook.Registry]:
//
//	c := nodes.NewCatalog()
//	r := notebook.NewRegistry()
//	nodes.Install(c, r, nodes.Builtins()...)
//
// Ports use the tags [Dataset], [Layers], [Model] and [Any], compared with
// [Compatible].
package nodes

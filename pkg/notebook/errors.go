package notebook

import "errors"

var (
	// ErrUnregisteredKind is returned by [Registry.CreateTransformerFrom]
	// when no constructor is registered for a node's kind. The generator
	// recovers from it by skipping the node.
	ErrUnregisteredKind = errors.New("no transformer registered for node kind")

	// ErrNoScene is returned by [Generator.SetProject] for a project
	// without a scene.
	ErrNoScene = errors.New("project has no scene")
)

// Package nodeeditor provides the graph model behind the visual editor:
// typed ports, nodes that own them, and the scene that holds the nodes.
//
// # Ports
//
// A [Port] is a typed connection endpoint. Input ports accept at most one
// connection, output ports any number. Two ports connect only when their
// directions are complementary and the input's [Compatibility] predicate
// accepts the output's [PortType]:
//
//	train, _ := loader.AddOutputPort("train", "Dataset")
//	in, _ := trainer.AddInputPort("dataset", "Dataset")
//	if err := train.ConnectTo(in); err != nil {
//	    // errors.Is(err, ErrIncompatibleType) or ErrConnectionLimit
//	}
//
// # Edges
//
// Edges are implicit: a node's downstream neighbours are the owners of the
// input ports its outputs are connected to ([Node.ConnectedOutputNodes]).
//
// # Ordering
//
// [ReverseTopological] orders a set of nodes so that every consumer comes
// before its producers. Reading the result backwards gives producers first.
// Cycles are reported as a [*CycleError].
//
// # Concurrency
//
// Nothing in this package is safe for concurrent mutation. Readers that need
// a stable view (such as notebook export) should work from [Scene.Nodes],
// which returns a copy of the node list.
package nodeeditor

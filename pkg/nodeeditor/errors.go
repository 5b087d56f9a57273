package nodeeditor

import (
	"errors"
	"fmt"
)

var (
	// ErrIncompatibleType is returned by [Port.ConnectTo] when the port types
	// are not compatible, or when both ports have the same direction.
	ErrIncompatibleType = errors.New("incompatible port type")

	// ErrConnectionLimit is returned by [Port.ConnectTo] when an input port
	// already holds its single connection.
	ErrConnectionLimit = errors.New("port connection limit reached")

	// ErrNotConnected is returned by [Port.Receive] on an input port with no
	// connection.
	ErrNotConnected = errors.New("port not connected")

	// ErrNoGenerator is returned when a value is pulled from an output port
	// that has no generator function.
	ErrNoGenerator = errors.New("output port has no generator")

	// ErrNoProcessor is returned by [Port.Send] for a receiving input that
	// has no processor.
	ErrNoProcessor = errors.New("input port has no processor")

	// ErrWrongDirection is returned when an input-only operation is called on
	// an output port, or the other way around.
	ErrWrongDirection = errors.New("operation not supported by port direction")

	// ErrDuplicatePort is returned by [Node.AddInputPort] and
	// [Node.AddOutputPort] when the node already has a port with that name.
	ErrDuplicatePort = errors.New("duplicate port name")

	// ErrInvalidPortName is returned when a port name is empty.
	ErrInvalidPortName = errors.New("port name must not be empty")

	// ErrNilNode is returned by [Scene.AddNode] for a nil node.
	ErrNilNode = errors.New("node must not be nil")

	// ErrDuplicateNodeID is returned by [Scene.AddNode] when a node with the
	// same identity is already in the scene.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownNode is returned by [Scene.Connect] and [Scene.RemoveNode]
	// when a node ID is not part of the scene.
	ErrUnknownNode = errors.New("unknown node")

	// ErrUnknownPort is returned by [Scene.Connect] when a node has no port
	// with the requested name.
	ErrUnknownPort = errors.New("unknown port")

	// ErrCyclicGraph is matched by every [*CycleError].
	ErrCyclicGraph = errors.New("graph contains a cycle")
)

// CycleError reports the node that was reached again while it was still
// being visited.
type CycleError struct {
	Node *Node
}

func (e *CycleError) Error() string {
	if e.Node == nil {
		return ErrCyclicGraph.Error()
	}
	return fmt.Sprintf("%s: node %s (%s) is part of a cycle", ErrCyclicGraph, e.Node.ID(), e.Node.Kind())
}

// Unwrap lets errors.Is match [ErrCyclicGraph].
func (e *CycleError) Unwrap() error { return ErrCyclicGraph }

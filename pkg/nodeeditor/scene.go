package nodeeditor

import (
	"fmt"
	"slices"
)

// Edge describes one connection between an output port and an input port.
type Edge struct {
	From     string // producer node ID
	FromPort string // output port name
	To       string // consumer node ID
	ToPort   string // input port name
}

// Scene is an insertion-ordered collection of nodes forming one graph.
//
// The zero value is not usable - use NewScene. A Scene is not safe for
// concurrent use; mutating it while a reader iterates [Scene.Nodes] is not
// supported, but the slice returned by Nodes is a copy and stays stable.
type Scene struct {
	nodes []*Node
	index map[string]int
}

// NewScene creates an empty scene.
func NewScene() *Scene {
	return &Scene{index: make(map[string]int)}
}

// AddNode appends n to the scene. It returns [ErrNilNode] for a nil node and
// an error wrapping [ErrDuplicateNodeID] if a node with the same ID exists.
func (s *Scene) AddNode(n *Node) error {
	if n == nil {
		return ErrNilNode
	}
	if _, exists := s.index[n.ID()]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateNodeID, n.ID())
	}
	s.index[n.ID()] = len(s.nodes)
	s.nodes = append(s.nodes, n)
	return nil
}

// RemoveNode disconnects the node and removes it from the scene.
func (s *Scene) RemoveNode(id string) error {
	i, ok := s.index[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, id)
	}
	s.nodes[i].DisconnectAll()
	s.nodes = slices.Delete(s.nodes, i, i+1)
	s.reindex()
	return nil
}

func (s *Scene) reindex() {
	s.index = make(map[string]int, len(s.nodes))
	for i, n := range s.nodes {
		s.index[n.ID()] = i
	}
}

// Node returns the node with the given ID.
func (s *Scene) Node(id string) (*Node, bool) {
	i, ok := s.index[id]
	if !ok {
		return nil, false
	}
	return s.nodes[i], true
}

// Nodes returns the nodes in insertion order. The slice is a copy, so it is
// a stable snapshot of the scene membership.
func (s *Scene) Nodes() []*Node { return slices.Clone(s.nodes) }

// Len returns the number of nodes.
func (s *Scene) Len() int { return len(s.nodes) }

// Contains reports whether n is a member of the scene.
func (s *Scene) Contains(n *Node) bool {
	if n == nil {
		return false
	}
	i, ok := s.index[n.ID()]
	return ok && s.nodes[i] == n
}

// Connect links the output port out of node from to the input port in of
// node to. Port rules apply as in [Port.ConnectTo].
func (s *Scene) Connect(from, out, to, in string) error {
	src, ok := s.Node(from)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, from)
	}
	dst, ok := s.Node(to)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, to)
	}
	op, ok := src.OutputPort(out)
	if !ok {
		return fmt.Errorf("%w: %s has no output %q", ErrUnknownPort, src, out)
	}
	ip, ok := dst.InputPort(in)
	if !ok {
		return fmt.Errorf("%w: %s has no input %q", ErrUnknownPort, dst, in)
	}
	return op.ConnectTo(ip)
}

// Edges lists every connection whose producer is in the scene, ordered by
// producer insertion order, then output port order, then connection order.
func (s *Scene) Edges() []Edge {
	var edges []Edge
	for _, n := range s.nodes {
		for _, op := range n.outputs {
			for _, ip := range op.connections {
				edges = append(edges, Edge{
					From:     n.ID(),
					FromPort: op.Name(),
					To:       ip.Node().ID(),
					ToPort:   ip.Name(),
				})
			}
		}
	}
	return edges
}

// EdgeCount returns the number of connections in the scene.
func (s *Scene) EdgeCount() int {
	count := 0
	for _, n := range s.nodes {
		for _, op := range n.outputs {
			count += len(op.connections)
		}
	}
	return count
}

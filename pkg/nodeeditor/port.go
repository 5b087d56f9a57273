package nodeeditor

import (
	"errors"
	"fmt"
	"slices"
)

// PortType is an opaque tag describing the shape of data a port carries.
// The editor only compares tags through a [Compatibility] predicate.
type PortType string

// Compatibility reports whether a value of type out may flow into a port of
// type in.
type Compatibility func(out, in PortType) bool

// SameType is the default [Compatibility]: tags must be equal.
func SameType(out, in PortType) bool { return out == in }

// Direction distinguishes input ports from output ports.
type Direction int

const (
	// Input ports accept a single connection.
	Input Direction = iota
	// Output ports accept any number of connections.
	Output
)

func (d Direction) String() string {
	if d == Input {
		return "input"
	}
	return "output"
}

// Generator produces the value an output port hands to connected inputs.
type Generator func() (any, error)

// Processor consumes a value pushed to an input port by [Port.Send].
type Processor func(value any) error

// Port is a typed connection endpoint owned by a [Node].
//
// The zero value is not usable; ports are created through
// [Node.AddInputPort] and [Node.AddOutputPort].
type Port struct {
	name       string
	typ        PortType
	dir        Direction
	node       *Node
	compatible Compatibility

	connections []*Port

	generate  Generator
	process   Processor
	receiving bool
}

// PortOption configures a port at construction time.
type PortOption func(*Port)

// WithCompatibility injects the type predicate used when this port is the
// input side of a connection.
func WithCompatibility(fn Compatibility) PortOption {
	return func(p *Port) {
		if fn != nil {
			p.compatible = fn
		}
	}
}

// WithGenerator sets the value generator of an output port.
func WithGenerator(fn Generator) PortOption {
	return func(p *Port) { p.generate = fn }
}

func newPort(node *Node, name string, typ PortType, dir Direction, opts ...PortOption) *Port {
	p := &Port{
		name:       name,
		typ:        typ,
		dir:        dir,
		node:       node,
		compatible: SameType,
		receiving:  true,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the port name, unique within its node.
func (p *Port) Name() string { return p.name }

// Type returns the declared type tag.
func (p *Port) Type() PortType { return p.typ }

// Direction reports whether this is an input or output port.
func (p *Port) Direction() Direction { return p.dir }

// Node returns the node owning the port.
func (p *Port) Node() *Node { return p.node }

// MaxConnections returns 1 for input ports and 0 (unbounded) for outputs.
func (p *Port) MaxConnections() int {
	if p.dir == Input {
		return 1
	}
	return 0
}

// Connections returns the connected ports in connection order.
// The returned slice is a copy.
func (p *Port) Connections() []*Port { return slices.Clone(p.connections) }

// IsConnected reports whether the port has at least one connection.
func (p *Port) IsConnected() bool { return len(p.connections) > 0 }

// IsConnectedTo reports whether p and other are linked.
func (p *Port) IsConnectedTo(other *Port) bool { return slices.Contains(p.connections, other) }

// ConnectedTo returns the single port an input is connected to, or nil.
func (p *Port) ConnectedTo() *Port {
	if len(p.connections) == 0 {
		return nil
	}
	return p.connections[0]
}

func (p *Port) String() string {
	if p.node == nil {
		return p.name
	}
	return fmt.Sprintf("%s.%s", p.node.ID(), p.name)
}

// ConnectTo links p and other in both directions.
//
// It returns an error wrapping [ErrIncompatibleType] if both ports share a
// direction or the input side rejects the output's type, and one wrapping
// [ErrConnectionLimit] if the input side already has its connection. On
// error neither port is modified. Connecting an already linked pair is a
// no-op.
func (p *Port) ConnectTo(other *Port) error {
	if other == nil {
		return fmt.Errorf("%w: nil port", ErrIncompatibleType)
	}
	if p.dir == other.dir {
		return fmt.Errorf("%w: %s and %s are both %s ports", ErrIncompatibleType, p, other, p.dir)
	}
	if p.IsConnectedTo(other) {
		return nil
	}

	out, in := p, other
	if p.dir == Input {
		out, in = other, p
	}
	if !in.compatible(out.typ, in.typ) {
		return fmt.Errorf("%w: cannot connect %s (%s) to %s (%s)", ErrIncompatibleType, out, out.typ, in, in.typ)
	}
	if in.atLimit() {
		return fmt.Errorf("%w: %s is already connected to %s", ErrConnectionLimit, in, in.connections[0])
	}

	out.connections = append(out.connections, in)
	in.connections = append(in.connections, out)
	return nil
}

func (p *Port) atLimit() bool {
	limit := p.MaxConnections()
	return limit > 0 && len(p.connections) >= limit
}

// Disconnect removes the link between p and other. Both sides are updated
// before Disconnect returns. It is a no-op if the ports are not linked.
func (p *Port) Disconnect(other *Port) {
	if other == nil || !p.IsConnectedTo(other) {
		return
	}
	p.connections = slices.DeleteFunc(p.connections, func(c *Port) bool { return c == other })
	other.connections = slices.DeleteFunc(other.connections, func(c *Port) bool { return c == p })
}

// DisconnectAll removes every connection of p.
func (p *Port) DisconnectAll() {
	for _, c := range slices.Clone(p.connections) {
		p.Disconnect(c)
	}
}

// SetGenerator replaces the value generator of an output port.
func (p *Port) SetGenerator(fn Generator) { p.generate = fn }

// GenerateOutput runs the generator of an output port.
func (p *Port) GenerateOutput() (any, error) {
	if p.dir != Output {
		return nil, fmt.Errorf("%w: generate on %s port %s", ErrWrongDirection, p.dir, p)
	}
	if p.generate == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoGenerator, p)
	}
	return p.generate()
}

// Receive pulls a value through the connection of an input port by running
// the connected output's generator.
func (p *Port) Receive() (any, error) {
	if p.dir != Input {
		return nil, fmt.Errorf("%w: receive on %s port %s", ErrWrongDirection, p.dir, p)
	}
	src := p.ConnectedTo()
	if src == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotConnected, p)
	}
	return src.GenerateOutput()
}

// SetProcessor sets the function that consumes values pushed to an input.
func (p *Port) SetProcessor(fn Processor) { p.process = fn }

// ToggleReceivesInput enables or disables processing of pushed values.
func (p *Port) ToggleReceivesInput(on bool) { p.receiving = on }

// PropagateTo makes the input port forward every pushed value by calling
// Send on out. Errors from out's receivers surface from the original Send.
func (p *Port) PropagateTo(out *Port) {
	p.process = func(any) error { return out.Send() }
}

// Send generates the value of an output port and pushes it to the processor
// of every connected input that is receiving. Every receiving input gets the
// value even when an earlier one fails; the failures are joined. A receiving
// input without a processor fails with [ErrNoProcessor].
func (p *Port) Send() error {
	value, err := p.GenerateOutput()
	if err != nil {
		return err
	}
	var errs []error
	for _, in := range slices.Clone(p.connections) {
		if !in.receiving {
			continue
		}
		if in.process == nil {
			errs = append(errs, fmt.Errorf("%w: %s", ErrNoProcessor, in))
			continue
		}
		if err := in.process(value); err != nil {
			errs = append(errs, fmt.Errorf("process %s: %w", in, err))
		}
	}
	return errors.Join(errs...)
}

package nodeeditor

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
)

// Params stores the user configuration of a node (dataset name, layer list,
// epochs...). Values decoded from TOML or JSON arrive as int64, float64,
// string, bool, []any or map[string]any; the typed getters normalise them.
type Params map[string]any

// String returns the value of key as a string, or def.
func (p Params) String(key, def string) string {
	if s, ok := p[key].(string); ok {
		return s
	}
	return def
}

// Int returns the value of key as an int, or def.
func (p Params) Int(key string, def int) int {
	switch v := p[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return def
}

// Float returns the value of key as a float64, or def.
func (p Params) Float(key string, def float64) float64 {
	switch v := p[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return def
}

// Bool returns the value of key as a bool, or def.
func (p Params) Bool(key string, def bool) bool {
	if b, ok := p[key].(bool); ok {
		return b
	}
	return def
}

// Strings returns the value of key as a string slice. Non-string elements
// are skipped.
func (p Params) Strings(key string) []string {
	switch v := p[key].(type) {
	case []string:
		return slices.Clone(v)
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Maps returns the value of key as a list of tables.
func (p Params) Maps(key string) []map[string]any {
	switch v := p[key].(type) {
	case []map[string]any:
		return v
	case []any:
		out := make([]map[string]any, 0, len(v))
		for _, e := range v {
			if m, ok := e.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	}
	return nil
}

// Node is a vertex of the editor graph. It owns ordered input and output
// ports; edges exist only through port connections.
type Node struct {
	id      string
	kind    string
	title   string
	inputs  []*Port
	outputs []*Port
	params  Params
}

// NodeOption configures a node at construction time.
type NodeOption func(*Node)

// WithID sets an explicit identity instead of a generated UUID. Empty IDs
// are ignored.
func WithID(id string) NodeOption {
	return func(n *Node) {
		if id != "" {
			n.id = id
		}
	}
}

// WithTitle sets the display title. It defaults to the kind.
func WithTitle(title string) NodeOption {
	return func(n *Node) {
		if title != "" {
			n.title = title
		}
	}
}

// WithParams sets the node parameters.
func WithParams(p Params) NodeOption {
	return func(n *Node) {
		if p != nil {
			n.params = p
		}
	}
}

// NewNode creates a node of the given kind with a random UUID identity.
func NewNode(kind string, opts ...NodeOption) *Node {
	n := &Node{
		id:     uuid.NewString(),
		kind:   kind,
		title:  kind,
		params: Params{},
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// ID returns the node identity.
func (n *Node) ID() string { return n.id }

// Kind returns the node-kind tag used for transformer lookup.
func (n *Node) Kind() string { return n.kind }

// Title returns the display title.
func (n *Node) Title() string { return n.title }

// SetTitle changes the display title.
func (n *Node) SetTitle(title string) { n.title = title }

// Params returns the node parameters. The map is live.
func (n *Node) Params() Params { return n.params }

// Inputs returns the input ports in declaration order.
func (n *Node) Inputs() []*Port { return slices.Clone(n.inputs) }

// Outputs returns the output ports in declaration order.
func (n *Node) Outputs() []*Port { return slices.Clone(n.outputs) }

// AddInputPort declares a new input port on the node.
func (n *Node) AddInputPort(name string, typ PortType, opts ...PortOption) (*Port, error) {
	if err := n.checkPortName(name); err != nil {
		return nil, err
	}
	p := newPort(n, name, typ, Input, opts...)
	n.inputs = append(n.inputs, p)
	return p, nil
}

// AddOutputPort declares a new output port on the node.
func (n *Node) AddOutputPort(name string, typ PortType, opts ...PortOption) (*Port, error) {
	if err := n.checkPortName(name); err != nil {
		return nil, err
	}
	p := newPort(n, name, typ, Output, opts...)
	n.outputs = append(n.outputs, p)
	return p, nil
}

func (n *Node) checkPortName(name string) error {
	if name == "" {
		return ErrInvalidPortName
	}
	if _, ok := n.InputPort(name); ok {
		return fmt.Errorf("%w: %s", ErrDuplicatePort, name)
	}
	if _, ok := n.OutputPort(name); ok {
		return fmt.Errorf("%w: %s", ErrDuplicatePort, name)
	}
	return nil
}

// InputPort returns the input port with the given name.
func (n *Node) InputPort(name string) (*Port, bool) {
	for _, p := range n.inputs {
		if p.name == name {
			return p, true
		}
	}
	return nil, false
}

// OutputPort returns the output port with the given name.
func (n *Node) OutputPort(name string) (*Port, bool) {
	for _, p := range n.outputs {
		if p.name == name {
			return p, true
		}
	}
	return nil, false
}

// ConnectedOutputNodes returns the downstream neighbours: the owners of the
// input ports connected to any output of n, in port then connection order,
// without duplicates.
func (n *Node) ConnectedOutputNodes() []*Node {
	return neighbours(n.outputs)
}

// ConnectedInputNodes returns the upstream neighbours of n.
func (n *Node) ConnectedInputNodes() []*Node {
	return neighbours(n.inputs)
}

func neighbours(ports []*Port) []*Node {
	var out []*Node
	for _, p := range ports {
		for _, c := range p.connections {
			if c.node != nil && !slices.Contains(out, c.node) {
				out = append(out, c.node)
			}
		}
	}
	return out
}

// DisconnectAll removes every connection of every port of n.
func (n *Node) DisconnectAll() {
	for _, p := range n.inputs {
		p.DisconnectAll()
	}
	for _, p := range n.outputs {
		p.DisconnectAll()
	}
}

func (n *Node) String() string {
	if n.title != "" && n.title != n.kind {
		return fmt.Sprintf("%s %q (%s)", n.kind, n.title, n.id)
	}
	return fmt.Sprintf("%s (%s)", n.kind, n.id)
}

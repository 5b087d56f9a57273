package notebook

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/davafons/dial/pkg/nodeeditor"
)

// Transformer converts one node into an ordered list of cells. Cells is
// called once per generation, after every producer of the node has been
// transformed.
type Transformer interface {
	Node() *nodeeditor.Node
	Cells() []Cell
}

// Constructor builds a transformer bound to a node.
type Constructor func(n *nodeeditor.Node) Transformer

// VarNamer binds ports, and node values that have no port, to generated
// Python identifiers.
type VarNamer interface {
	Name(p *nodeeditor.Port) string
	Var(n *nodeeditor.Node, suffix string) string
}

// maxIDRunes is the longest node identity kept whole in a variable name.
// Longer ones, such as generated UUIDs, are cut to shortIDRunes.
const (
	maxIDRunes   = 16
	shortIDRunes = 8
)

// varName is "<title>_<id>_<suffix>" in snake case.
func varName(n *nodeeditor.Node, suffix string) string {
	id := []rune(Identifier(n.ID()))
	if len(id) > maxIDRunes {
		id = id[:shortIDRunes]
	}
	return Identifier(n.Title() + "_" + string(id) + "_" + suffix)
}

// DefaultNamer names values "<title>_<id>_<port>" without looking at the
// rest of the scene. Identities that differ only in punctuation, or UUIDs
// sharing a prefix, can map to the same name; the generator binds a
// [SceneNamer] instead.
type DefaultNamer struct{}

// Name implements [VarNamer].
func (DefaultNamer) Name(p *nodeeditor.Port) string {
	if p.Node() == nil {
		return Identifier(p.Name())
	}
	return varName(p.Node(), p.Name())
}

// Var implements [VarNamer].
func (DefaultNamer) Var(n *nodeeditor.Node, suffix string) string { return varName(n, suffix) }

type varKey struct {
	node   *nodeeditor.Node
	suffix string
}

// SceneNamer gives every value of one generation a distinct identifier.
// A name is fixed on first use; a name already held by another value gets
// a numeric suffix ("_2", "_3"...).
type SceneNamer struct {
	names map[varKey]string
	taken map[string]bool
}

// NewSceneNamer returns an empty namer. Use one per generation.
func NewSceneNamer() *SceneNamer {
	return &SceneNamer{names: make(map[varKey]string), taken: make(map[string]bool)}
}

// Name implements [VarNamer].
func (s *SceneNamer) Name(p *nodeeditor.Port) string {
	if p.Node() == nil {
		return Identifier(p.Name())
	}
	return s.Var(p.Node(), p.Name())
}

// Var implements [VarNamer].
func (s *SceneNamer) Var(n *nodeeditor.Node, suffix string) string {
	k := varKey{n, suffix}
	if name, ok := s.names[k]; ok {
		return name
	}
	base := varName(n, suffix)
	name := base
	for i := 2; s.taken[name]; i++ {
		name = fmt.Sprintf("%s_%d", base, i)
	}
	s.names[k] = name
	s.taken[name] = true
	return name
}

// Base carries the node and naming strategy shared by most transformers.
// Embed it and implement Cells.
type Base struct {
	node  *nodeeditor.Node
	Names VarNamer
}

// NewBase binds a transformer base to n using [DefaultNamer].
func NewBase(n *nodeeditor.Node) Base {
	return Base{node: n, Names: DefaultNamer{}}
}

// SetNamer replaces the naming strategy. The generator calls it with the
// [SceneNamer] of the current run on transformers that embed *Base.
func (b *Base) SetNamer(v VarNamer) { b.Names = v }

// Node returns the wrapped node.
func (b Base) Node() *nodeeditor.Node { return b.node }

// Params returns the wrapped node's parameters.
func (b Base) Params() nodeeditor.Params { return b.node.Params() }

// Output returns the identifier of the named output port.
func (b Base) Output(name string) string {
	p, ok := b.node.OutputPort(name)
	if !ok {
		return Identifier(name)
	}
	return b.namer().Name(p)
}

// Var returns the identifier of a value the node defines without a port,
// such as a training history.
func (b Base) Var(suffix string) string { return b.namer().Var(b.node, suffix) }

// Input returns the identifier bound to the named input port: the name of
// the connected output when there is one, otherwise "None".
func (b Base) Input(name string) string {
	p, ok := b.node.InputPort(name)
	if !ok {
		return "None"
	}
	src := p.ConnectedTo()
	if src == nil {
		return "None"
	}
	return b.namer().Name(src)
}

// Connected reports whether the named input port has a producer.
func (b Base) Connected(name string) bool {
	p, ok := b.node.InputPort(name)
	return ok && p.IsConnected()
}

func (b Base) namer() VarNamer {
	if b.Names == nil {
		return DefaultNamer{}
	}
	return b.Names
}

// Identifier turns s into a snake_case Python identifier. CamelCase words
// are split, anything that is not a letter or digit becomes an underscore
// and a leading digit is prefixed with one.
func Identifier(s string) string {
	var sb strings.Builder
	runes := []rune(s)
	lastUnderscore := true
	for i, r := range runes {
		switch {
		case unicode.IsUpper(r):
			if i > 0 && !lastUnderscore && (unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1]) ||
				(i+1 < len(runes) && unicode.IsLower(runes[i+1]))) {
				sb.WriteByte('_')
			}
			sb.WriteRune(unicode.ToLower(r))
			lastUnderscore = false
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			sb.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				sb.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	out := strings.TrimRight(sb.String(), "_")
	if out == "" {
		return "_"
	}
	if unicode.IsDigit([]rune(out)[0]) {
		out = "_" + out
	}
	return out
}

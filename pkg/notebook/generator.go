package notebook

import (
	"errors"
	"io"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/davafons/dial/pkg/nodeeditor"
)

// Project is the unit a [Generator] compiles: a named scene.
type Project interface {
	Name() string
	Scene() *nodeeditor.Scene
}

// MetaKey is the cell metadata key under which the generator records the
// node a cell came from.
const MetaKey = "dial"

type namerSetter interface {
	SetNamer(VarNamer)
}

// Generator compiles a project's scene into a notebook.
//
// A Generator holds the last successfully generated document. It is not
// safe for concurrent use; create one per export.
type Generator struct {
	registry *Registry
	logger   *log.Logger

	project      Project
	transformers []Transformer
	skipped      []*nodeeditor.Node
	doc          *Notebook
}

// NewGenerator creates a generator resolving transformers through r.
// A nil logger discards output.
func NewGenerator(r *Registry, logger *log.Logger) *Generator {
	if r == nil {
		r = NewRegistry()
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Generator{registry: r, logger: logger, doc: New()}
}

// SetProject binds p and regenerates the document:
//
//  1. every scene node gets a transformer from the registry; nodes of
//     unregistered kinds are logged and skipped,
//  2. the nodes are sorted topologically,
//  3. each transformer's cells are appended in producer-before-consumer
//     order, keeping the transformer's own cell order.
//
// The new cell list replaces the previous one. If the scene has a cycle,
// SetProject returns the [*nodeeditor.CycleError] and the previous
// project, transformers and document are kept. A nil p clears the
// generator.
func (g *Generator) SetProject(p Project) error {
	if p == nil {
		g.Clear()
		return nil
	}
	scene := p.Scene()
	if scene == nil {
		return ErrNoScene
	}

	nodes := scene.Nodes()
	byNode := make(map[*nodeeditor.Node]Transformer, len(nodes))
	var skipped []*nodeeditor.Node
	for _, n := range nodes {
		t, err := g.registry.CreateTransformerFrom(n)
		if err != nil {
			if !errors.Is(err, ErrUnregisteredKind) {
				return err
			}
			g.logger.Warn("skipping node without transformer", "node", n.ID(), "kind", n.Kind(), "title", n.Title())
			skipped = append(skipped, n)
			continue
		}
		byNode[n] = t
	}

	// Skipped nodes still take part in the sort so that ordering through
	// them is preserved.
	rev, err := nodeeditor.ReverseTopological(nodes)
	if err != nil {
		g.logger.Error("cannot order scene", "project", p.Name(), "err", err)
		return err
	}

	ordered := make([]Transformer, 0, len(byNode))
	for _, n := range slices.Backward(rev) {
		if t, ok := byNode[n]; ok {
			ordered = append(ordered, t)
		}
	}

	// Outputs are named in emission order before any cell is built, so the
	// names do not depend on the order transformers ask for them.
	names := NewSceneNamer()
	for _, t := range ordered {
		if ns, ok := t.(namerSetter); ok {
			ns.SetNamer(names)
		}
		for _, out := range t.Node().Outputs() {
			names.Name(out)
		}
	}

	doc := New()
	doc.Metadata[MetaKey] = map[string]any{"project": p.Name()}
	for _, t := range ordered {
		n := t.Node()
		for _, c := range t.Cells() {
			doc.Cells = append(doc.Cells, c.WithMeta(MetaKey, map[string]any{
				"node": n.ID(),
				"kind": n.Kind(),
			}))
		}
	}

	g.project = p
	g.transformers = ordered
	g.skipped = skipped
	g.doc = doc
	g.logger.Debug("generated notebook", "project", p.Name(), "nodes", len(nodes),
		"cells", len(doc.Cells), "skipped", len(skipped))
	return nil
}

// Clear empties the document and drops the project and transformers.
// Calling it repeatedly is harmless.
func (g *Generator) Clear() {
	g.project = nil
	g.transformers = nil
	g.skipped = nil
	g.doc = New()
}

// SaveNotebookAs writes the current document to path. See [WriteFile] for
// the atomicity guarantee. The generator state is not modified.
func (g *Generator) SaveNotebookAs(path string) error {
	if err := WriteFile(path, g.doc); err != nil {
		g.logger.Error("cannot save notebook", "path", path, "err", err)
		return err
	}
	g.logger.Info("saved notebook", "path", path, "cells", len(g.doc.Cells))
	return nil
}

// WriteNotebook encodes the current document to w.
func (g *Generator) WriteNotebook(w io.Writer) error {
	_, err := g.doc.WriteTo(w)
	return err
}

// Notebook returns a copy of the current document.
func (g *Generator) Notebook() *Notebook { return g.doc.Clone() }

// Project returns the bound project, or nil.
func (g *Generator) Project() Project { return g.project }

// Transformers returns the transformers of the last generation in emission
// order.
func (g *Generator) Transformers() []Transformer { return slices.Clone(g.transformers) }

// Skipped returns the nodes left out of the last generation because their
// kind had no transformer.
func (g *Generator) Skipped() []*nodeeditor.Node { return slices.Clone(g.skipped) }

// Registry returns the registry the generator resolves transformers with.
func (g *Generator) Registry() *Registry { return g.registry }

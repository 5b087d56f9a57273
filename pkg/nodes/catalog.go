package nodes

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/davafons/dial/pkg/nodeeditor"
	"github.com/davafons/dial/pkg/notebook"
)

// ErrUnknownKind is returned by [Catalog.Build] for a kind with no spec.
var ErrUnknownKind = errors.New("unknown node kind")

// BuildFunc creates a node of one kind with its ports declared.
type BuildFunc func(id string, params nodeeditor.Params, opts ...nodeeditor.NodeOption) (*nodeeditor.Node, error)

// Spec describes a node kind: how to build it and how to turn it into
// notebook cells.
type Spec struct {
	Kind        string
	Summary     string
	Build       BuildFunc
	Transformer notebook.Constructor
}

// Catalog holds the node kinds a project may use. It is safe for
// concurrent use.
type Catalog struct {
	mu    sync.RWMutex
	specs map[string]Spec
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{specs: make(map[string]Spec)}
}

// Register adds or replaces the spec for s.Kind.
func (c *Catalog) Register(s Spec) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.specs[s.Kind] = s
}

// Unregister removes kind from the catalog.
func (c *Catalog) Unregister(kind string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.specs, kind)
}

// Spec returns the spec registered for kind.
func (c *Catalog) Spec(kind string) (Spec, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.specs[kind]
	return s, ok
}

// Kinds returns the registered kinds in sorted order.
func (c *Catalog) Kinds() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	kinds := make([]string, 0, len(c.specs))
	for k := range c.specs {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	return kinds
}

// Specs returns the registered specs sorted by kind.
func (c *Catalog) Specs() []Spec {
	kinds := c.Kinds()
	out := make([]Spec, 0, len(kinds))
	for _, k := range kinds {
		if s, ok := c.Spec(k); ok {
			out = append(out, s)
		}
	}
	return out
}

// Build creates a node of the given kind. An empty id gets a random one.
func (c *Catalog) Build(kind, id string, params nodeeditor.Params, opts ...nodeeditor.NodeOption) (*nodeeditor.Node, error) {
	s, ok := c.Spec(kind)
	if !ok || s.Build == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return s.Build(id, params, opts...)
}

// Install registers specs in the catalog and their transformers in r.
// Either side may be nil.
func Install(c *Catalog, r *notebook.Registry, specs ...Spec) {
	for _, s := range specs {
		if c != nil {
			c.Register(s)
		}
		if r != nil && s.Transformer != nil {
			r.Register(s.Kind, s.Transformer)
		}
	}
}

// Uninstall removes what [Install] added.
func Uninstall(c *Catalog, r *notebook.Registry, specs ...Spec) {
	for _, s := range specs {
		if c != nil {
			c.Unregister(s.Kind)
		}
		if r != nil {
			r.Unregister(s.Kind)
		}
	}
}

package notebook

import (
	"fmt"
	"slices"
	"strconv"
	"sync"

	"github.com/davafons/dial/pkg/nodeeditor"
)

// Registry maps node kinds to transformer constructors.
//
// A Registry is an explicit value handed to each [Generator]; there is no
// package-level instance. It is safe for concurrent use, but replacing a
// kind while a generation is running makes that generation see either the
// old or the new constructor.
type Registry struct {
	mu     sync.RWMutex
	ctors  map[string]binding
	revs   map[string]uint64
	origin string
}

type binding struct {
	ctor   Constructor
	origin string
	rev    uint64
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{ctors: make(map[string]binding), revs: make(map[string]uint64)}
}

// SetOrigin sets the origin recorded for later registrations, usually the
// plugin name and version doing the registering.
func (r *Registry) SetOrigin(origin string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.origin = origin
}

// Register binds kind to ctor. A later registration for the same kind
// replaces the earlier one.
func (r *Registry) Register(kind string, ctor Constructor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.revs[kind]++
	r.ctors[kind] = binding{ctor: ctor, origin: r.origin, rev: r.revs[kind]}
}

// Unregister removes the constructor for kind, if any.
func (r *Registry) Unregister(kind string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.ctors[kind]; ok {
		r.revs[kind]++
		delete(r.ctors, kind)
	}
}

// Has reports whether kind has a constructor.
func (r *Registry) Has(kind string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.ctors[kind]
	return ok
}

// Kinds returns the registered kinds in sorted order.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]string, 0, len(r.ctors))
	for k := range r.ctors {
		kinds = append(kinds, k)
	}
	slices.Sort(kinds)
	return kinds
}

// Bindings identifies the constructor behind each registered kind as
// "origin#revision". The revision counts every registration and removal of
// the kind, so replacing a constructor changes its binding even when the
// set of kinds stays the same.
func (r *Registry) Bindings() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]string, len(r.ctors))
	for k, b := range r.ctors {
		out[k] = b.origin + "#" + strconv.FormatUint(b.rev, 10)
	}
	return out
}

// CreateTransformerFrom builds the transformer for n. It returns an error
// wrapping [ErrUnregisteredKind] when n's kind has no constructor.
func (r *Registry) CreateTransformerFrom(n *nodeeditor.Node) (Transformer, error) {
	if n == nil {
		return nil, nodeeditor.ErrNilNode
	}
	r.mu.RLock()
	b, ok := r.ctors[n.Kind()]
	r.mu.RUnlock()
	if !ok || b.ctor == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnregisteredKind, n.Kind())
	}
	return b.ctor(n), nil
}

// Package cache stores generated notebooks and rendered graphs so that
// exporting an unchanged project is a lookup.
//
// Three backends implement [Cache]:
//   - [FileCache]: one JSON file per entry, for the CLI
//   - [RedisCache]: shared cache for the HTTP service
//   - [NullCache]: caching disabled
//
// Keys come from a [Keyer]. They hash everything that can change the
// output, so entries never need explicit invalidation; stale ones simply
// stop being asked for and expire.
package cache

import (
	"context"
	"time"
)

// Default lifetimes of cache entries.
const (
	TTLNotebook = 7 * 24 * time.Hour
	TTLGraph    = 7 * 24 * time.Hour
)

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the stored value and whether it was found. Expired
	// entries are misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend.
	Close() error
}

// NotebookKeyOpts holds what besides the project decides notebook content.
type NotebookKeyOpts struct {
	// Kinds are the node kinds with a registered transformer.
	Kinds []string `json:"kinds"`
	// Bindings identify the constructor behind each kind, so overriding a
	// kind's transformer changes the key.
	Bindings map[string]string `json:"bindings"`
	// Version is the generator build version.
	Version string `json:"version"`
}

// GraphKeyOpts holds the rendering options of a graph picture.
type GraphKeyOpts struct {
	Format   string `json:"format"`
	Detailed bool   `json:"detailed"`
}

// Keyer builds cache keys.
type Keyer interface {
	NotebookKey(projectHash string, opts NotebookKeyOpts) string
	GraphKey(projectHash string, opts GraphKeyOpts) string
}

// DefaultKeyer hashes the project hash together with the options.
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// NotebookKey returns "notebook:<sha256>".
func (DefaultKeyer) NotebookKey(projectHash string, opts NotebookKeyOpts) string {
	return hashKey("notebook", projectHash, opts)
}

// GraphKey returns "graph:<sha256>".
func (DefaultKeyer) GraphKey(projectHash string, opts GraphKeyOpts) string {
	return hashKey("graph", projectHash, opts)
}

var _ Keyer = DefaultKeyer{}

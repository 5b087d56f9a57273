package cache

// ScopedKeyer prefixes every key of an inner Keyer. The HTTP service uses
// it to keep several deployments apart in one Redis database:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "dial:staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer means
// [DefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// NotebookKey returns the prefixed notebook key.
func (k *ScopedKeyer) NotebookKey(projectHash string, opts NotebookKeyOpts) string {
	return k.prefix + k.inner.NotebookKey(projectHash, opts)
}

// GraphKey returns the prefixed graph key.
func (k *ScopedKeyer) GraphKey(projectHash string, opts GraphKeyOpts) string {
	return k.prefix + k.inner.GraphKey(projectHash, opts)
}

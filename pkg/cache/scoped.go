package cache

// ScopedKeyer wraps a Keyer with a prefix so that several tenants, such
// as LeanIX workspaces sharing one Redis, get separate namespaces.
//
//	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "acme.leanix.net:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// DocumentKey generates a prefixed document key.
func (k *ScopedKeyer) DocumentKey(docHash string, opts DocumentKeyOpts) string {
	return k.prefix + k.inner.DocumentKey(docHash, opts)
}

// GraphKey generates a prefixed graph key.
func (k *ScopedKeyer) GraphKey(diagramHash string, opts GraphKeyOpts) string {
	return k.prefix + k.inner.GraphKey(diagramHash, opts)
}

// HTTPKey generates a prefixed key for HTTP response caching.
func (k *ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.prefix + k.inner.HTTPKey(namespace, key)
}

package cache

// ScopedKeyer wraps a Keyer with a prefix for multi-tenant isolation.
// The server uses this to give each authenticated client a separate
// cache namespace while sharing one backend.
//
// Example usage:
//
//	// Per-tenant keys on a shared Redis
//	tenantKeyer := NewScopedKeyer(NewDefaultKeyer(), "tenant:abc123:")
//
//	// Shared keys for anonymous requests
//	sharedKeyer := NewDefaultKeyer()
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

// DiagramKey generates a prefixed key for a parsed diagram.
func (k *ScopedKeyer) DiagramKey(format, sourceHash string) string {
	return k.prefix + k.inner.DiagramKey(format, sourceHash)
}

// LayoutKey generates a prefixed key for a layout result.
func (k *ScopedKeyer) LayoutKey(diagramHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(diagramHash, opts)
}

// ArtifactKey generates a prefixed key for generated output.
func (k *ScopedKeyer) ArtifactKey(diagramHash, format string) string {
	return k.prefix + k.inner.ArtifactKey(diagramHash, format)
}

package cache

// ScopedKeyer wraps a Keyer with a prefix so several catalogs can share one
// cache backend without colliding.
//
// Example usage:
//
//	// Keys for a dealer-specific catalog
//	dealer := NewScopedKeyer(NewDefaultKeyer(), "catalog:acme:")
//
//	// Keys for the built-in catalog
//	global := NewDefaultKeyer()
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

// PlanKey generates a prefixed plan key.
func (k *ScopedKeyer) PlanKey(modelID string, opts PlanKeyOpts) string {
	return k.prefix + k.inner.PlanKey(modelID, opts)
}

// QuoteKey generates a prefixed quote key.
func (k *ScopedKeyer) QuoteKey(modelID string, opts QuoteKeyOpts) string {
	return k.prefix + k.inner.QuoteKey(modelID, opts)
}

// GraphKey generates a prefixed graph key.
func (k *ScopedKeyer) GraphKey(settingsHash string, opts GraphKeyOpts) string {
	return k.prefix + k.inner.GraphKey(settingsHash, opts)
}

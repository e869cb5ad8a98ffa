package cache

// ScopedKeyer wraps a Keyer with a prefix so several tenants can share one
// backend without seeing each other's blueprints.
//
//	staging := NewScopedKeyer(NewDefaultKeyer(), "staging:")
//	staging.BlueprintKey("abc") // "staging:blueprint:abc"
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

// BlueprintKey generates a prefixed blueprint key.
func (k *ScopedKeyer) BlueprintKey(id string) string {
	return k.prefix + k.inner.BlueprintKey(id)
}

// DigestKey generates a prefixed digest key.
func (k *ScopedKeyer) DigestKey(digest string) string {
	return k.prefix + k.inner.DigestKey(digest)
}

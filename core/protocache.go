package core

import (
	"strconv"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// protoKey is the xxhash-folded key for a (category, name, attribute)
// triple. Folding the three strings into one uint64 lets the cache use a
// flat map instead of a nested one while still behaving like the two-level
// mapping described in §4.11 (category+name forms the outer level,
// attribute the inner).
type protoKey uint64

func newProtoKey(category, name, attribute string) protoKey {
	d := xxhash.New()
	_, _ = d.WriteString(category)
	_, _ = d.WriteString("\x00")
	_, _ = d.WriteString(name)
	_, _ = d.WriteString("\x00")
	_, _ = d.WriteString(attribute)
	return protoKey(d.Sum64())
}

// PrototypeAttributeCache is a process-wide, lazily populated cache of
// world-attribute lookups (§4.11). It is cleared at engine
// (re)initialization; values reflect the world's configuration at the time
// they were first observed.
type PrototypeAttributeCache struct {
	mu     sync.RWMutex
	values map[protoKey]any
}

// NewPrototypeAttributeCache returns an empty cache.
func NewPrototypeAttributeCache() *PrototypeAttributeCache {
	return &PrototypeAttributeCache{values: make(map[protoKey]any)}
}

// Attribute returns the cached value for (category, name, attribute),
// querying adapter and caching the result on a miss.
func (c *PrototypeAttributeCache) Attribute(adapter WorldAdapter, category, name, attribute string) (any, bool) {
	key := newProtoKey(category, name, attribute)

	c.mu.RLock()
	v, ok := c.values[key]
	c.mu.RUnlock()
	if ok {
		return v, true
	}

	val, found := adapter.PrototypeAttribute(category, name, attribute)
	if !found {
		return nil, false
	}

	c.mu.Lock()
	c.values[key] = val
	c.mu.Unlock()
	return val, true
}

// Clear empties the cache, e.g. on engine (re)initialization.
func (c *PrototypeAttributeCache) Clear() {
	c.mu.Lock()
	c.values = make(map[protoKey]any)
	c.mu.Unlock()
}

// entityChecksum computes the xxhash-based staleness checksum stored on an
// EntityDetails record (see SPEC_FULL.md's resolution of "entity becomes
// invalid mid-plan"). It folds the stable identifier, entity name and
// position into one value so a later re-derivation can detect that the
// world handle at the same stable id no longer refers to the same entity.
func entityChecksum(stableID string, name string, x, y float64) uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(stableID)
	_, _ = d.WriteString("\x00")
	_, _ = d.WriteString(name)
	_, _ = d.WriteString("\x00")
	_, _ = d.WriteString(strconv.FormatFloat(x, 'f', 3, 64))
	_, _ = d.WriteString("\x00")
	_, _ = d.WriteString(strconv.FormatFloat(y, 'f', 3, 64))
	return d.Sum64()
}

package core

import "strconv"

// StableID is the value used to key an entity across time: the world's
// unit number when available, or a "destroyedId_N" fallback issued at
// first observation (GLOSSARY). The two halves belong to different
// namespaces — a tagged union, not a plain integer — so a destroyed-id 5
// never collides with unit number 5.
type StableID struct {
	destroyed bool
	value     uint64
}

// UnitNumberID wraps a world-assigned unit number.
func UnitNumberID(n uint64) StableID { return StableID{value: n} }

// DestroyedID wraps a fallback id issued by RegisterOnDestroyed.
func DestroyedID(n uint64) StableID { return StableID{destroyed: true, value: n} }

// String renders the identifier the way log lines and debug text do.
func (id StableID) String() string {
	if id.destroyed {
		return "destroyedId_" + strconv.FormatUint(id.value, 10)
	}
	return strconv.FormatUint(id.value, 10)
}

// stableIDFor derives entity's StableID the way GLOSSARY/§4.7/§9 specify:
// the world's own unit number when the adapter has one, otherwise a
// destroyedId_N fallback from RegisterOnDestroyed, tagged into the
// destroyed namespace so it never collides with a real unit number.
func stableIDFor(adapter WorldAdapter, entity EntityID) StableID {
	if n, ok := adapter.UnitNumber(entity); ok {
		return UnitNumberID(n)
	}
	return DestroyedID(adapter.RegisterOnDestroyed(entity))
}

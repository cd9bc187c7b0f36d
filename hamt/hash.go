package hamt

import (
	"github.com/coreholds/amtval/alloc"
	"github.com/coreholds/amtval/value"
)

// ValueHash adapts a Value-producing function into a HashFunc via
// value.Hash, the Murmur3-x64-128 digest every Value variant's hashing
// policy is defined over (spec.md §4.4/§4.5) — the same hash a Record's
// keys would be hashed with if stored as Values, so a HashTrieMap keyed by
// a primitive Go type and one keyed by value.Value agree on every shared
// key's digest.
func ValueHash[K any](toValue func(K) value.Value) HashFunc[K] {
	return func(k K) (uint64, uint64) { return value.Hash(toValue(k)) }
}

// UintHash hashes a uint64 key the same way value.FromU64 would.
func UintHash() HashFunc[uint64] { return ValueHash[uint64](value.FromU64) }

// IntHash hashes an int64 key the same way value.FromI64 would.
func IntHash() HashFunc[int64] { return ValueHash[int64](value.FromI64) }

// textHashScratch is a private scratch Hold used only to build the
// transient Text Value TextHash hashes through, so every string key is
// hashed via the exact same value.Hash path a Record key built from the
// same string would use. Strings of 7 bytes or fewer never allocate here
// (value.HoldText keeps them inline); longer ones allocate and free a
// short-lived lease.String per call.
var textHashScratch = alloc.NewGoHold(alloc.DefaultHeap())

// TextHash hashes a string key the same way a Text Value built from it
// would hash, via value.Hash.
func TextHash() HashFunc[string] {
	return func(s string) (uint64, uint64) {
		v, err := value.HoldText(textHashScratch, s)
		if err != nil {
			panic(err)
		}
		defer v.Free()
		return value.Hash(v)
	}
}

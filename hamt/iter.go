package hamt

// Iterator walks a HashTrieMap's entries in trie-traversal order, each
// exactly once. The zero value is not usable; obtain one from a
// HashTrieMap's Iter method. An Iterator is restartable from any clone
// produced by Clone, independent of further advancement on the original
// (spec.md §4.5: "restartable from any cloned iterator").
type Iterator[K comparable, V any] struct {
	pending []child
	coll    []entry[K, V]
	collIdx int
}

func newIterator[K comparable, V any](root child) *Iterator[K, V] {
	it := &Iterator[K, V]{}
	if root.tag != tagNil {
		it.pending = append(it.pending, root)
	}
	return it
}

// Next returns the next (key, value) pair, or ok=false once exhausted.
func (it *Iterator[K, V]) Next() (key K, val V, ok bool) {
	for {
		if it.collIdx < len(it.coll) {
			e := it.coll[it.collIdx]
			it.collIdx++
			return e.key, e.val, true
		}
		if len(it.pending) == 0 {
			return key, val, false
		}
		c := it.pending[len(it.pending)-1]
		it.pending = it.pending[:len(it.pending)-1]
		switch c.tag {
		case tagNil:
			continue
		case tagLeaf:
			e := entryAt[K, V](c.ptr)
			return e.key, e.val, true
		case tagCollision:
			it.coll = collisionBuf[K, V](c.ptr).Slice()
			it.collIdx = 0
			continue
		case tagBranch:
			n := popcount(branchBitmap(c.ptr))
			children := branchChildren(c.ptr, n)
			for i := n - 1; i >= 0; i-- {
				it.pending = append(it.pending, children[i])
			}
			continue
		default:
			panic("hamt: corrupt node tag")
		}
	}
}

// Clone returns an independent copy of it: advancing the clone does not
// affect it, or vice versa.
func (it *Iterator[K, V]) Clone() *Iterator[K, V] {
	nc := &Iterator[K, V]{collIdx: it.collIdx}
	nc.pending = append([]child(nil), it.pending...)
	nc.coll = append([]entry[K, V](nil), it.coll...)
	return nc
}

// Iter returns an Iterator over m's entries.
func (m *HashTrieMap[K, V]) Iter() *Iterator[K, V] { return newIterator[K, V](m.root) }

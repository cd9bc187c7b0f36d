package hamt

import (
	"github.com/coreholds/amtval/alloc"
)

// HashFunc computes a key's 128-bit MurmurHash3 digest, split as (h1, h2):
// h1 selects 5-bit index slices per trie level. h2 is stored with each
// entry but is not consulted: a collision list is searched linearly by key
// equality.
type HashFunc[K any] func(K) (uint64, uint64)

// HashTrieMap is a persistent 32-way HAMT keyed by K, with nodes allocated
// from hold. Branches unchanged by an insert/remove are structurally
// shared with the previous root; branches along the modified path are
// replaced and their superseded predecessors freed back to hold, since
// HashTrieMap does not expose a snapshot API that could still be
// referencing them (see DESIGN.md's Open Question log).
type HashTrieMap[K comparable, V any] struct {
	hold   alloc.Hold
	hashFn HashFunc[K]
	root   child
	length int
}

// NewHashTrieMap returns an empty HashTrieMap holding its nodes in hold.
func NewHashTrieMap[K comparable, V any](hold alloc.Hold, hashFn HashFunc[K]) *HashTrieMap[K, V] {
	return &HashTrieMap[K, V]{hold: hold, hashFn: hashFn}
}

// Len returns the number of entries.
func (m *HashTrieMap[K, V]) Len() int { return m.length }

// Get returns (value, true) if key is present.
func (m *HashTrieMap[K, V]) Get(key K) (V, bool) {
	h1, h2 := m.hashFn(key)
	return getNode[K, V](m.root, key, h1, h2, 0)
}

// ContainsKey reports whether key is present.
func (m *HashTrieMap[K, V]) ContainsKey(key K) bool {
	_, ok := m.Get(key)
	return ok
}

func getNode[K comparable, V any](c child, key K, h1, h2 uint64, depth int) (V, bool) {
	var zero V
	switch c.tag {
	case tagNil:
		return zero, false
	case tagLeaf:
		e := entryAt[K, V](c.ptr)
		if e.key == key {
			return e.val, true
		}
		return zero, false
	case tagCollision:
		for _, e := range collisionBuf[K, V](c.ptr).Slice() {
			if e.key == key {
				return e.val, true
			}
		}
		return zero, false
	case tagBranch:
		bitmap := branchBitmap(c.ptr)
		bit := bitFor(h1, depth)
		if bitmap&bit == 0 {
			return zero, false
		}
		idx := slotIndex(bitmap, bit)
		children := branchChildren(c.ptr, popcount(bitmap))
		return getNode[K, V](children[idx], key, h1, h2, depth+1)
	default:
		panic("hamt: corrupt node tag")
	}
}

// Insert adds or overwrites key, returning the previous value (if any).
// On error the map is left unchanged, per spec.md §4.5's failure
// semantics.
func (m *HashTrieMap[K, V]) Insert(key K, val V) (V, bool, error) {
	h1, h2 := m.hashFn(key)
	nc, prev, had, err := insertNode[K, V](m.hold, m.root, key, val, h1, h2, 0)
	if err != nil {
		var zero V
		return zero, false, err
	}
	m.root = nc
	if !had {
		m.length++
	}
	return prev, had, nil
}

func insertNode[K comparable, V any](hold alloc.Hold, c child, key K, val V, h1, h2 uint64, depth int) (child, V, bool, error) {
	var zero V
	switch c.tag {
	case tagNil:
		nc, err := allocLeaf(hold, h1, h2, key, val)
		return nc, zero, false, err

	case tagLeaf:
		e := entryAt[K, V](c.ptr)
		if e.key == key {
			nc, err := allocLeaf(hold, h1, h2, key, val)
			if err != nil {
				return child{}, zero, false, err
			}
			old := e.val
			freeLeaf[K, V](hold, c.ptr)
			return nc, old, true, nil
		}
		if depth >= maxDepth {
			nc, err := allocCollision[K, V](hold, []entry[K, V]{*e, {h1: h1, h2: h2, key: key, val: val}})
			if err != nil {
				return child{}, zero, false, err
			}
			freeLeaf[K, V](hold, c.ptr)
			return nc, zero, false, nil
		}
		nb, err := branchFromTwo[K, V](hold, *e, entry[K, V]{h1: h1, h2: h2, key: key, val: val}, depth)
		if err != nil {
			return child{}, zero, false, err
		}
		freeLeaf[K, V](hold, c.ptr)
		return nb, zero, false, nil

	case tagCollision:
		buf := collisionBuf[K, V](c.ptr)
		items := buf.Slice()
		for i, e := range items {
			if e.key == key {
				old := e.val
				buf.Set(uintptr(i), entry[K, V]{h1: h1, h2: h2, key: key, val: val})
				return child{ptr: buf.Ptr(), tag: tagCollision}, old, true, nil
			}
		}
		if err := buf.Push(entry[K, V]{h1: h1, h2: h2, key: key, val: val}); err != nil {
			return child{}, zero, false, err
		}
		return child{ptr: buf.Ptr(), tag: tagCollision}, zero, false, nil

	case tagBranch:
		bitmap := branchBitmap(c.ptr)
		bit := bitFor(h1, depth)
		n := popcount(bitmap)
		children := branchChildren(c.ptr, n)

		if bitmap&bit == 0 {
			leaf, err := allocLeaf(hold, h1, h2, key, val)
			if err != nil {
				return child{}, zero, false, err
			}
			idx := slotIndex(bitmap, bit)
			newChildren := make([]child, n+1)
			copy(newChildren[:idx], children[:idx])
			newChildren[idx] = leaf
			copy(newChildren[idx+1:], children[idx:])
			ptr, err := allocBranch(hold, bitmap|bit, newChildren)
			if err != nil {
				return child{}, zero, false, err
			}
			freeBranch(hold, c.ptr, n)
			return child{ptr: ptr, tag: tagBranch}, zero, false, nil
		}

		idx := slotIndex(bitmap, bit)
		newSub, old, had, err := insertNode[K, V](hold, children[idx], key, val, h1, h2, depth+1)
		if err != nil {
			return child{}, zero, false, err
		}
		newChildren := make([]child, n)
		copy(newChildren, children)
		newChildren[idx] = newSub
		ptr, err := allocBranch(hold, bitmap, newChildren)
		if err != nil {
			return child{}, zero, false, err
		}
		freeBranch(hold, c.ptr, n)
		return child{ptr: ptr, tag: tagBranch}, old, had, nil

	default:
		panic("hamt: corrupt node tag")
	}
}

// branchFromTwo builds a fresh branch (possibly a chain of single-child
// branches, if a and b's hashes share a prefix) holding exactly a and b,
// starting at level depth.
func branchFromTwo[K comparable, V any](hold alloc.Hold, a, b entry[K, V], depth int) (child, error) {
	if depth >= maxDepth {
		return allocCollision[K, V](hold, []entry[K, V]{a, b})
	}
	ba := bitFor(a.h1, depth)
	bb := bitFor(b.h1, depth)
	if ba == bb {
		sub, err := branchFromTwo[K, V](hold, a, b, depth+1)
		if err != nil {
			return child{}, err
		}
		ptr, err := allocBranch(hold, ba, []child{sub})
		if err != nil {
			return child{}, err
		}
		return child{ptr: ptr, tag: tagBranch}, nil
	}
	leafA, err := allocLeaf(hold, a.h1, a.h2, a.key, a.val)
	if err != nil {
		return child{}, err
	}
	leafB, err := allocLeaf(hold, b.h1, b.h2, b.key, b.val)
	if err != nil {
		return child{}, err
	}
	bitmap := ba | bb
	var children []child
	if slotIndex(bitmap, ba) == 0 {
		children = []child{leafA, leafB}
	} else {
		children = []child{leafB, leafA}
	}
	ptr, err := allocBranch(hold, bitmap, children)
	if err != nil {
		return child{}, err
	}
	return child{ptr: ptr, tag: tagBranch}, nil
}

// Remove deletes key if present, returning the removed value, and collapses
// any branch left with a single leaf child into that leaf (spec.md §4.5's
// structural-identity post-condition).
func (m *HashTrieMap[K, V]) Remove(key K) (V, bool, error) {
	h1, h2 := m.hashFn(key)
	nc, old, had, err := removeNode[K, V](m.hold, m.root, key, h1, h2, 0)
	if err != nil {
		var zero V
		return zero, false, err
	}
	if had {
		m.root = nc
		m.length--
	}
	return old, had, nil
}

func removeNode[K comparable, V any](hold alloc.Hold, c child, key K, h1, h2 uint64, depth int) (child, V, bool, error) {
	var zero V
	switch c.tag {
	case tagNil:
		return c, zero, false, nil

	case tagLeaf:
		e := entryAt[K, V](c.ptr)
		if e.key != key {
			return c, zero, false, nil
		}
		old := e.val
		freeLeaf[K, V](hold, c.ptr)
		return child{}, old, true, nil

	case tagCollision:
		buf := collisionBuf[K, V](c.ptr)
		items := buf.Slice()
		idx := -1
		for i, e := range items {
			if e.key == key {
				idx = i
				break
			}
		}
		if idx < 0 {
			return c, zero, false, nil
		}
		old := items[idx].val
		remaining := make([]entry[K, V], 0, len(items)-1)
		remaining = append(remaining, items[:idx]...)
		remaining = append(remaining, items[idx+1:]...)
		buf.Free()
		if len(remaining) == 1 {
			leaf, err := allocLeaf(hold, remaining[0].h1, remaining[0].h2, remaining[0].key, remaining[0].val)
			return leaf, old, true, err
		}
		nc, err := allocCollision[K, V](hold, remaining)
		return nc, old, true, err

	case tagBranch:
		bitmap := branchBitmap(c.ptr)
		bit := bitFor(h1, depth)
		if bitmap&bit == 0 {
			return c, zero, false, nil
		}
		n := popcount(bitmap)
		children := branchChildren(c.ptr, n)
		idx := slotIndex(bitmap, bit)

		newSub, old, had, err := removeNode[K, V](hold, children[idx], key, h1, h2, depth+1)
		if err != nil {
			return child{}, zero, false, err
		}
		if !had {
			return c, zero, false, nil
		}

		if newSub.tag == tagNil {
			newBitmap := bitmap &^ bit
			if newBitmap == 0 {
				freeBranch(hold, c.ptr, n)
				return child{}, old, true, nil
			}
			newChildren := make([]child, n-1)
			copy(newChildren[:idx], children[:idx])
			copy(newChildren[idx:], children[idx+1:])
			if len(newChildren) == 1 && newChildren[0].tag == tagLeaf {
				freeBranch(hold, c.ptr, n)
				return newChildren[0], old, true, nil
			}
			ptr, err := allocBranch(hold, newBitmap, newChildren)
			if err != nil {
				return child{}, zero, false, err
			}
			freeBranch(hold, c.ptr, n)
			return child{ptr: ptr, tag: tagBranch}, old, true, nil
		}

		if n == 1 && newSub.tag == tagLeaf {
			freeBranch(hold, c.ptr, n)
			return newSub, old, true, nil
		}
		newChildren := make([]child, n)
		copy(newChildren, children)
		newChildren[idx] = newSub
		ptr, err := allocBranch(hold, bitmap, newChildren)
		if err != nil {
			return child{}, zero, false, err
		}
		freeBranch(hold, c.ptr, n)
		return child{ptr: ptr, tag: tagBranch}, old, true, nil

	default:
		panic("hamt: corrupt node tag")
	}
}

// Package hamt implements HashTrieMap and HashTrieSet: the persistent,
// 32-way hash array mapped trie of spec.md §3/§4.5, keyed by a 128-bit
// MurmurHash3 digest. It generalizes the teacher package's (wdamron/amt)
// mutable 16-way link{ptr,pmap,tmap} cell to a 32-way, explicitly-tagged
// child cell, and replaces its Go-GC-backed node arrays with nodes
// allocated from a caller-supplied alloc.Hold, so a HashTrieMap can live
// entirely inside a Pool/Slab arena exactly as spec.md requires.
package hamt

import (
	"math/bits"
	"unsafe"

	"github.com/coreholds/amtval/alloc"
	"github.com/coreholds/amtval/lease"
)

// nodeTag identifies what a child cell's ptr refers to.
type nodeTag uint8

const (
	tagNil nodeTag = iota
	tagLeaf
	tagCollision
	tagBranch
)

// child is one trie cell: a tagged pointer into Hold-owned memory, the
// 32-way generalization of the teacher's link{ptr,pmap,tmap} (which packed
// the type bit into a second bitmap rather than per-slot, since its nodes
// were always homogeneous arrays of 16 same-kind links; a 32-way branch's
// slots are heterogeneous often enough that a per-slot tag is simpler).
type child struct {
	ptr unsafe.Pointer
	tag nodeTag
}

// entry is a leaf's or collision list's live payload: the key, its value,
// and the 128-bit digest that placed it, cached so a node can be rebuilt
// (branchFromTwo, collision collapse) without rehashing. Lookups within a
// collision list compare keys only; h2 is not used to order or search it.
type entry[K comparable, V any] struct {
	h1, h2 uint64
	key    K
	val    V
}

func allocLeaf[K comparable, V any](hold alloc.Hold, h1, h2 uint64, key K, val V) (child, error) {
	layout := alloc.ForType[entry[K, V]]()
	blk, err := hold.Alloc(layout)
	if err != nil {
		return child{}, err
	}
	*(*entry[K, V])(blk.Ptr) = entry[K, V]{h1: h1, h2: h2, key: key, val: val}
	return child{ptr: blk.Ptr, tag: tagLeaf}, nil
}

func entryAt[K comparable, V any](p unsafe.Pointer) *entry[K, V] { return (*entry[K, V])(p) }

func freeLeaf[K comparable, V any](hold alloc.Hold, p unsafe.Pointer) {
	layout := alloc.ForType[entry[K, V]]()
	hold.Dealloc(alloc.Block{Ptr: p, Size: layout.Size})
}

func allocCollision[K comparable, V any](hold alloc.Hold, entries []entry[K, V]) (child, error) {
	buf, err := lease.NewBufFromSlice(hold, entries)
	if err != nil {
		return child{}, err
	}
	return child{ptr: buf.Ptr(), tag: tagCollision}, nil
}

func collisionBuf[K comparable, V any](p unsafe.Pointer) *lease.Buf[entry[K, V]] {
	return lease.FromPointer[entry[K, V]](p)
}

// branchHeader precedes a branch node's dense child array: the occupancy
// bitmap, the only metadata a branch needs beyond the array itself (its
// length is always popcount(bitmap)).
type branchHeader struct {
	bitmap uint32
	_      uint32 // pad to 8 bytes so the child array that follows stays pointer-aligned
}

const branchHeaderSize = unsafe.Sizeof(branchHeader{})

func branchLayout(n int) (alloc.Layout, error) {
	el := alloc.ForType[child]()
	arr, err := alloc.ForArray[child](uintptr(n))
	if err != nil {
		return alloc.Layout{}, err
	}
	hdr := alloc.Layout{Size: branchHeaderSize, Align: el.Align}
	if hdr.Align < 8 {
		hdr.Align = 8
	}
	combined, _, err := hdr.Extended(arr)
	return combined, err
}

func branchHeaderAt(p unsafe.Pointer) *branchHeader { return (*branchHeader)(p) }

func branchChildrenPtr(p unsafe.Pointer) unsafe.Pointer {
	return unsafe.Add(p, int(branchHeaderSize))
}

func branchBitmap(p unsafe.Pointer) uint32 { return branchHeaderAt(p).bitmap }

func branchChildren(p unsafe.Pointer, n int) []child {
	if n == 0 {
		return nil
	}
	return unsafe.Slice((*child)(branchChildrenPtr(p)), n)
}

func allocBranch(hold alloc.Hold, bitmap uint32, children []child) (unsafe.Pointer, error) {
	layout, err := branchLayout(len(children))
	if err != nil {
		return nil, err
	}
	blk, err := hold.Alloc(layout)
	if err != nil {
		return nil, err
	}
	*branchHeaderAt(blk.Ptr) = branchHeader{bitmap: bitmap}
	copy(unsafe.Slice((*child)(branchChildrenPtr(blk.Ptr)), len(children)), children)
	return blk.Ptr, nil
}

func freeBranch(hold alloc.Hold, p unsafe.Pointer, n int) {
	layout, err := branchLayout(n)
	if err != nil {
		panic(err)
	}
	hold.Dealloc(alloc.Block{Ptr: p, Size: layout.Size})
}

func popcount(bitmap uint32) int { return bits.OnesCount32(bitmap) }

// slotIndex returns the dense array index of the occupied slot named by
// bit within bitmap.
func slotIndex(bitmap, bit uint32) int { return popcount(bitmap & (bit - 1)) }

// maxDepth is the deepest branch level before a collision list is forced
// even for keys whose full hash differs (spec.md §4.5): 13 levels of 5 bits
// each exhaust all 64 bits of h1 (13*5 = 65 > 64), so by depth 13 every bit
// of h1 has already determined the path and no further branching is
// possible.
const maxDepth = 13

// levelShift returns the bit offset and width of the 5-bit (or, at the
// final level, narrower) slice of h1 that level depth consumes.
func levelShift(depth int) (shift, width uint) {
	shift = uint(5 * depth)
	if shift >= 64 {
		return 64, 0
	}
	width = 5
	if shift+5 > 64 {
		width = 64 - shift
	}
	return shift, width
}

func levelSlice(h1 uint64, depth int) uint32 {
	shift, width := levelShift(depth)
	if width == 0 {
		return 0
	}
	mask := uint64(1)<<width - 1
	return uint32((h1 >> shift) & mask)
}

func bitFor(h1 uint64, depth int) uint32 { return uint32(1) << levelSlice(h1, depth) }

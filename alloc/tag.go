package alloc

import "unsafe"

// AllocTag is the one-word header placed immediately before every
// non-empty block returned by a Hold. Given any pointer p returned by
// Hold.Alloc, FromPtr(p) recovers the tag, and Holder() recovers
// the owning Hold in O(1) — the invariant every Lease relies on to support
// Stow (move into a different Hold) without threading an allocator
// parameter through every API.
type AllocTag struct {
	holder uint32
	_      uint32 // pad to one machine word on 64-bit hosts
}

// TagSize is the size in bytes of an AllocTag, i.e. the number of bytes a
// non-empty Hold allocation reserves ahead of the caller's payload.
const TagSize = unsafe.Sizeof(AllocTag{})

// newTag returns an AllocTag naming owner.
func newTag(owner Hold) AllocTag {
	return AllocTag{holder: owner.holderID()}
}

// Holder returns the Hold that owns the block tagged by t, or false if the
// tag's holder id is outside the registry (never the case for a tag produced
// by this package). A zero-valued AllocTag carries id 0, which names the
// first Hold registered in the process.
func (t *AllocTag) Holder() (Hold, bool) {
	return holderAt(t.holder)
}

// FromPtr recovers the AllocTag immediately preceding the block starting at
// p. p must be a non-empty block pointer previously returned by some Hold's
// Alloc, Resize, or Realloc.
func FromPtr(p unsafe.Pointer) *AllocTag {
	return (*AllocTag)(unsafe.Add(p, -int(TagSize)))
}

// basePtr returns the base address of the tagged allocation starting at
// block pointer p (i.e. the address of its AllocTag).
func basePtr(p unsafe.Pointer) unsafe.Pointer {
	return unsafe.Add(p, -int(TagSize))
}

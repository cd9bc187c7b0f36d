package lease

import (
	"unsafe"

	"github.com/coreholds/amtval/alloc"
)

// rcHeader precedes the payload of every Hard/Soft-managed residency: two
// plain counters, not atomic ones, since spec.md's concurrency model scopes
// a single Hold (and every lease rooted in it) to one thread at a time; a
// multi-threaded variant would substitute atomic counters here without
// changing the Hard/Soft API (spec.md §9, "weak/strong counts without
// cycles").
type rcHeader struct {
	strong, weak uintptr
}

const rcHeaderSize = unsafe.Sizeof(rcHeader{})

var rcHeaderLayout = alloc.Layout{Size: rcHeaderSize, Align: unsafe.Alignof(rcHeader{})}

func valueOffset[T any]() (uintptr, error) {
	_, offset, err := rcHeaderLayout.Extended(alloc.ForType[T]())
	return offset, err
}

func rcAlloc[T any](hold alloc.Hold, value T) (alloc.Block, error) {
	offset, err := valueOffset[T]()
	if err != nil {
		return alloc.Block{}, err
	}
	combined, _, err := rcHeaderLayout.Extended(alloc.ForType[T]())
	if err != nil {
		return alloc.Block{}, err
	}
	blk, err := hold.Alloc(combined)
	if err != nil {
		return alloc.Block{}, err
	}
	*(*rcHeader)(blk.Ptr) = rcHeader{strong: 1, weak: 0}
	*(*T)(unsafe.Add(blk.Ptr, int(offset))) = value
	return blk, nil
}

func rcHdr(blk alloc.Block) *rcHeader { return (*rcHeader)(blk.Ptr) }

func rcValuePtr[T any](blk alloc.Block) *T {
	offset, _ := valueOffset[T]()
	return (*T)(unsafe.Add(blk.Ptr, int(offset)))
}

// Hard is a strong, reference-counted owner of a T value — the lease
// variant spec.md calls Hard<T>. Cloning a Hard increments the strong
// count; dropping the last Hard runs the value's destructor (a no-op for
// Go's GC'd T) and, once the weak count also reaches zero, frees the
// block.
type Hard[T any] struct {
	blk alloc.Block
}

// NewHard allocates a fresh Hard owning value, with strong count 1 and weak
// count 0.
func NewHard[T any](hold alloc.Hold, value T) (Hard[T], error) {
	blk, err := rcAlloc(hold, value)
	if err != nil {
		return Hard[T]{}, err
	}
	return Hard[T]{blk: blk}, nil
}

// Deref returns a pointer to the shared value.
func (h Hard[T]) Deref() *T { return rcValuePtr[T](h.blk) }

// StrongCount returns the number of live Hard handles sharing h's storage.
func (h Hard[T]) StrongCount() uintptr { return rcHdr(h.blk).strong }

// WeakCount returns the number of live Soft handles sharing h's storage.
func (h Hard[T]) WeakCount() uintptr { return rcHdr(h.blk).weak }

// Clone returns a new Hard sharing h's storage, incrementing the strong
// count.
func (h Hard[T]) Clone() Hard[T] {
	rcHdr(h.blk).strong++
	return Hard[T]{blk: h.blk}
}

// Downgrade returns a Soft observing h's storage, incrementing the weak
// count.
func (h Hard[T]) Downgrade() Soft[T] {
	rcHdr(h.blk).weak++
	return Soft[T]{blk: h.blk}
}

// Drop decrements h's strong count, freeing the storage once both the
// strong and weak counts reach zero.
func (h Hard[T]) Drop() {
	hdr := rcHdr(h.blk)
	hdr.strong--
	if hdr.strong == 0 && hdr.weak == 0 {
		holderOf(h.blk.Ptr).Dealloc(h.blk)
	}
}

// Soft is a weak reference to a Hard's storage — spec.md's Soft<T>. It does
// not keep the value alive; Upgrade succeeds only while at least one Hard
// still does.
type Soft[T any] struct {
	blk alloc.Block
}

// Upgrade returns a new Hard sharing the same storage, incrementing the
// strong count, or false if the last Hard has already dropped.
func (s Soft[T]) Upgrade() (Hard[T], bool) {
	hdr := rcHdr(s.blk)
	if hdr.strong == 0 {
		return Hard[T]{}, false
	}
	hdr.strong++
	return Hard[T]{blk: s.blk}, true
}

// UpgradeRef returns a new Ref sharing the same storage, incrementing the
// strong count — the literal "upgradable to Ref" path spec.md describes for
// Soft<T>, alongside the Hard-returning Upgrade above.
func (s Soft[T]) UpgradeRef() (Ref[T], bool) {
	hdr := rcHdr(s.blk)
	if hdr.strong == 0 {
		return Ref[T]{}, false
	}
	hdr.strong++
	return Ref[T]{blk: s.blk}, true
}

// Drop decrements s's weak count, freeing the storage once both the strong
// and weak counts reach zero.
func (s Soft[T]) Drop() {
	hdr := rcHdr(s.blk)
	hdr.weak--
	if hdr.strong == 0 && hdr.weak == 0 {
		holderOf(s.blk.Ptr).Dealloc(s.blk)
	}
}

// Package lease implements typed handles over alloc.Block — the Resident
// layer of spec.md §3/§4.3. Every lease in this package recovers its owning
// Hold from the AllocTag stamped ahead of its block (alloc.FromPtr), so a
// lease never carries an explicit allocator field: Stow (move into a
// different Hold) works from nothing but the block pointer itself, exactly
// as the reference implementation's Reified-backed leases do. The package
// has no operation that clones a lease into a different Hold while keeping
// the original.
package lease

import (
	"errors"
	"unsafe"

	"github.com/coreholds/amtval/alloc"
)

// ErrWrongHold reports that two leases belong to different Holds. No
// operation in this package currently returns it.
var ErrWrongHold = errors.New("lease: leases belong to different Holds")

// holderOf recovers the Hold that owns the block starting at ptr.
func holderOf(ptr unsafe.Pointer) alloc.Hold {
	tag := alloc.FromPtr(ptr)
	h, ok := tag.Holder()
	if !ok {
		panic("lease: AllocTag names an unregistered Hold")
	}
	return h
}

// Box is a Raw lease: the exclusive owner of a single T value, with no
// reference count and no separate meta header — the lease variant spec.md
// calls Raw<T>/Box<T>.
type Box[T any] struct {
	blk alloc.Block
}

// NewBox allocates a Box holding value, owned by hold.
func NewBox[T any](hold alloc.Hold, value T) (*Box[T], error) {
	layout := alloc.ForType[T]()
	blk, err := hold.Alloc(layout)
	if err != nil {
		return nil, err
	}
	*(*T)(blk.Ptr) = value
	return &Box[T]{blk: blk}, nil
}

// Deref returns a pointer to the boxed value.
func (b *Box[T]) Deref() *T { return (*T)(b.blk.Ptr) }

// Hold returns the Hold that owns b.
func (b *Box[T]) Hold() alloc.Hold { return holderOf(b.blk.Ptr) }

// Free releases b's storage back to its owning Hold. b must not be used
// afterward.
func (b *Box[T]) Free() {
	holderOf(b.blk.Ptr).Dealloc(b.blk)
}

// Stow moves b's value into dst, freeing b's old storage, and returns the
// new Box. Used when a caller wants a value to outlive its current Hold
// (e.g. promoting a node from a scratch Pool into a longer-lived one).
func (b *Box[T]) Stow(dst alloc.Hold) (*Box[T], error) {
	nb, err := NewBox(dst, *b.Deref())
	if err != nil {
		return nil, err
	}
	b.Free()
	return nb, nil
}

// bufHeader precedes every Buf[T]'s element array: BufHeader<M> in spec.md's
// terms, specialized to the (len, cap) metadata every Buf needs regardless
// of element type.
type bufHeader struct {
	len, cap uintptr
}

const bufHeaderSize = unsafe.Sizeof(bufHeader{})

// Buf is a dynamic, Hold-backed array: the Resident behind Text, Data, and
// Record's out-of-line representations. Its layout is a bufHeader
// immediately followed by cap contiguous T elements, mirroring
// BufHeader<M> followed by T[cap] in spec.md §3.
type Buf[T any] struct {
	blk alloc.Block // blk.Ptr points at the bufHeader
}

func bufLayout[T any](cap uintptr) (alloc.Layout, uintptr, error) {
	el := alloc.ForType[T]()
	arr, err := alloc.ForArray[T](cap)
	if err != nil {
		return alloc.Layout{}, 0, err
	}
	hdrLayout := alloc.Layout{Size: bufHeaderSize, Align: el.Align}
	if hdrLayout.Align < 8 {
		hdrLayout.Align = 8
	}
	combined, offset, err := hdrLayout.Extended(arr)
	return combined, offset, err
}

func (b *Buf[T]) header() *bufHeader { return (*bufHeader)(b.blk.Ptr) }

// NewBufWithCapacity allocates an empty Buf with room for cap elements
// without reallocating, owned by hold.
func NewBufWithCapacity[T any](hold alloc.Hold, cap uintptr) (*Buf[T], error) {
	layout, _, err := bufLayout[T](cap)
	if err != nil {
		return nil, err
	}
	blk, err := hold.Alloc(layout)
	if err != nil {
		return nil, err
	}
	*(*bufHeader)(blk.Ptr) = bufHeader{len: 0, cap: cap}
	return &Buf[T]{blk: blk}, nil
}

// NewBufFromSlice allocates a Buf holding a copy of elems, owned by hold.
func NewBufFromSlice[T any](hold alloc.Hold, elems []T) (*Buf[T], error) {
	buf, err := NewBufWithCapacity[T](hold, uintptr(len(elems)))
	if err != nil {
		return nil, err
	}
	copy(buf.rawSlice(uintptr(len(elems))), elems)
	buf.header().len = uintptr(len(elems))
	return buf, nil
}

func (b *Buf[T]) dataPtr() unsafe.Pointer {
	return unsafe.Add(b.blk.Ptr, int(bufHeaderSize))
}

func (b *Buf[T]) rawSlice(n uintptr) []T {
	if n == 0 {
		return nil
	}
	return unsafe.Slice((*T)(b.dataPtr()), n)
}

// Len returns the number of live elements.
func (b *Buf[T]) Len() uintptr { return b.header().len }

// Cap returns the element capacity without reallocating.
func (b *Buf[T]) Cap() uintptr { return b.header().cap }

// Slice returns a view over the live elements. The view is invalidated by
// any subsequent growing operation on b.
func (b *Buf[T]) Slice() []T { return b.rawSlice(b.Len()) }

// Get returns the element at i.
func (b *Buf[T]) Get(i uintptr) T { return b.Slice()[i] }

// Set overwrites the element at i.
func (b *Buf[T]) Set(i uintptr, v T) { b.Slice()[i] = v }

// Hold returns the Hold that owns b.
func (b *Buf[T]) Hold() alloc.Hold { return holderOf(b.blk.Ptr) }

// Free releases b's storage back to its owning Hold.
func (b *Buf[T]) Free() {
	holderOf(b.blk.Ptr).Dealloc(b.blk)
}

// TryReserveExact grows b's capacity to exactly Len()+extra (no geometric
// overallocation) when it is currently smaller. It grows through the owning
// Hold's Realloc, which may move the block; no in-place resize is
// attempted first.
func (b *Buf[T]) TryReserveExact(extra uintptr) error {
	hdr := b.header()
	need := hdr.len + extra
	if need <= hdr.cap {
		return nil
	}
	return b.grow(need)
}

// TryReserve grows b's capacity geometrically to hold at least Len()+extra
// more elements, amortizing repeated pushes.
func (b *Buf[T]) TryReserve(extra uintptr) error {
	hdr := b.header()
	need := hdr.len + extra
	if need <= hdr.cap {
		return nil
	}
	newCap := hdr.cap * 2
	if newCap < need {
		newCap = need
	}
	return b.grow(newCap)
}

func (b *Buf[T]) grow(newCap uintptr) error {
	hold := b.Hold()
	layout, _, err := bufLayout[T](newCap)
	if err != nil {
		return err
	}
	old := b.blk
	oldLen := b.header().len
	nb, err := hold.Realloc(old, layout)
	if err != nil {
		return err
	}
	b.blk = nb
	hdr := b.header()
	hdr.cap = newCap
	hdr.len = oldLen
	return nil
}

// Push appends v, growing b if necessary.
func (b *Buf[T]) Push(v T) error {
	if err := b.TryReserve(1); err != nil {
		return err
	}
	hdr := b.header()
	b.rawSlice(hdr.cap)[hdr.len] = v
	hdr.len++
	return nil
}

// Truncate shortens b to n elements without reallocating. n must be <=
// Len().
func (b *Buf[T]) Truncate(n uintptr) { b.header().len = n }

// Stow moves b's live elements into a fresh Buf owned by dst, freeing b's
// old storage.
func (b *Buf[T]) Stow(dst alloc.Hold) (*Buf[T], error) {
	nb, err := NewBufFromSlice(dst, b.Slice())
	if err != nil {
		return nil, err
	}
	b.Free()
	return nb, nil
}

// Ptr returns the raw block pointer backing b (the address of its
// bufHeader), suitable for storing as an out-of-line Value's payload word
// and later reconstructing with FromPointer.
func (b *Buf[T]) Ptr() unsafe.Pointer { return b.blk.Ptr }

// FromPointer reconstructs a Buf view over a block previously produced by
// Ptr, recomputing its size from the live bufHeader's capacity so Free and
// TryReserve account for the correct number of bytes.
func FromPointer[T any](p unsafe.Pointer) *Buf[T] {
	hdr := (*bufHeader)(p)
	combined, _, err := bufLayout[T](hdr.cap)
	if err != nil {
		panic(err)
	}
	return &Buf[T]{blk: alloc.Block{Ptr: p, Size: combined.Size}}
}

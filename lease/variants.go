package lease

import "github.com/coreholds/amtval/alloc"

// Raw is the lease variant spec.md calls Raw<T>: exclusive owner, no
// reference count, no back-pointer to a meta header — box-like semantics.
// Its Resident is exactly Box<T>, so at the Lease level Raw is Box by
// another name (the same "lease struct doubles as its own Resident"
// collapsing this package already does for Hard/Soft).
type Raw[T any] = Box[T]

// NewRaw allocates a fresh Raw owning value, owned by hold.
func NewRaw[T any](hold alloc.Hold, value T) (*Raw[T], error) { return NewBox(hold, value) }

// Ptr is the lease variant spec.md calls Ptr<T>: an exclusive owner that
// carries the same explicit header shape Hard/Soft use, but with its ref
// counts off — never incremented, never consulted. This lets a caller mix
// Ptr-owned and Hard/Soft-owned nodes behind one uniform header layout
// (useful for intrusive structures that only sometimes need sharing) while
// Ptr itself stays single-owner: Free always releases the block outright.
type Ptr[T any] struct {
	blk alloc.Block
}

// NewPtr allocates a fresh Ptr owning value. The header's counts are seeded
// for layout-compatibility with Hard/Soft only; Ptr never reads or updates
// them.
func NewPtr[T any](hold alloc.Hold, value T) (Ptr[T], error) {
	blk, err := rcAlloc(hold, value)
	if err != nil {
		return Ptr[T]{}, err
	}
	return Ptr[T]{blk: blk}, nil
}

// Deref returns a pointer to the owned value.
func (p Ptr[T]) Deref() *T { return rcValuePtr[T](p.blk) }

// Hold returns the Hold that owns p.
func (p Ptr[T]) Hold() alloc.Hold { return holderOf(p.blk.Ptr) }

// Free releases p's storage back to its owning Hold.
func (p Ptr[T]) Free() { holderOf(p.blk.Ptr).Dealloc(p.blk) }

// Stow moves p's value into dst, freeing p's old storage, and returns the
// new Ptr.
func (p Ptr[T]) Stow(dst alloc.Hold) (Ptr[T], error) {
	np, err := NewPtr(dst, *p.Deref())
	if err != nil {
		return Ptr[T]{}, err
	}
	p.Free()
	return np, nil
}

// Mut is the lease variant spec.md calls Mut<T>: a shared mutable slot for
// intrusive patterns — several handles may alias the same storage, each
// free to read and write through it, with exactly one of them expected to
// call Free once the structure is done with the slot (e.g. a back-pointer
// from a child node to its parent, where neither side "owns" the other in
// the refcounted sense Hard/Soft model).
type Mut[T any] struct {
	blk alloc.Block
}

// NewMut allocates a fresh Mut holding value, owned by hold.
func NewMut[T any](hold alloc.Hold, value T) (Mut[T], error) {
	layout := alloc.ForType[T]()
	blk, err := hold.Alloc(layout)
	if err != nil {
		return Mut[T]{}, err
	}
	*(*T)(blk.Ptr) = value
	return Mut[T]{blk: blk}, nil
}

// Deref returns a pointer to the shared value.
func (m Mut[T]) Deref() *T { return (*T)(m.blk.Ptr) }

// Hold returns the Hold that owns m.
func (m Mut[T]) Hold() alloc.Hold { return holderOf(m.blk.Ptr) }

// Clone returns a new Mut aliasing the same storage. Unlike Hard.Clone,
// this does not touch any counter — it is a plain shared alias, and the
// caller is responsible for calling Free exactly once across every alias.
func (m Mut[T]) Clone() Mut[T] { return m }

// Free releases m's storage back to its owning Hold.
func (m Mut[T]) Free() { holderOf(m.blk.Ptr).Dealloc(m.blk) }

// Ref is the lease variant spec.md calls Ref<T>: a reference-counted
// shared-read handle. It shares Hard's rcHeader layout and strong-count
// bookkeeping — a Ref and a Hard over the same block are storage-compatible,
// and Soft.UpgradeRef produces one directly — but Ref's capability is
// documented read-only, matching spec.md's "Soft<T> ... upgradable to Ref".
type Ref[T any] struct {
	blk alloc.Block
}

// NewRef allocates a fresh Ref owning value, with strong count 1.
func NewRef[T any](hold alloc.Hold, value T) (Ref[T], error) {
	blk, err := rcAlloc(hold, value)
	if err != nil {
		return Ref[T]{}, err
	}
	return Ref[T]{blk: blk}, nil
}

// Deref returns a pointer to the shared value.
func (r Ref[T]) Deref() *T { return rcValuePtr[T](r.blk) }

// Hold returns the Hold that owns r.
func (r Ref[T]) Hold() alloc.Hold { return holderOf(r.blk.Ptr) }

// StrongCount returns the number of live Ref/Hard handles sharing r's
// storage.
func (r Ref[T]) StrongCount() uintptr { return rcHdr(r.blk).strong }

// Clone returns a new Ref sharing r's storage, incrementing the strong
// count.
func (r Ref[T]) Clone() Ref[T] {
	rcHdr(r.blk).strong++
	return Ref[T]{blk: r.blk}
}

// Drop decrements r's strong count, freeing the storage once both the
// strong and weak counts reach zero.
func (r Ref[T]) Drop() {
	hdr := rcHdr(r.blk)
	hdr.strong--
	if hdr.strong == 0 && hdr.weak == 0 {
		holderOf(r.blk.Ptr).Dealloc(r.blk)
	}
}

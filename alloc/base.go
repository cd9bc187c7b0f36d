package alloc

import "unsafe"

// base is embedded by every concrete Hold implementation. It owns the
// registry identity (see registry.go) and the shared zero-tag every empty
// allocation from this Hold points at, replacing the reference
// implementation's Reified<Hold> vtable header with a plain registry index
// (spec.md §9's suggested substitution for languages without a stable
// vtable-pointer representation).
type base struct {
	id   uint32
	zero AllocTag
}

// init registers self (the concrete Hold embedding this base) and stamps
// the shared zero tag with self's identity. Must be called exactly once,
// after self is otherwise fully constructed, before any Alloc call.
func (b *base) init(self Hold) {
	b.id = register(self)
	b.zero = AllocTag{holder: b.id}
}

func (b *base) holderID() uint32 { return b.id }

// emptyBlock returns the canonical empty Block for this Hold: the address
// immediately following the shared zero tag, with size 0.
func (b *base) emptyBlock() Block {
	return Block{Ptr: unsafe.Add(unsafe.Pointer(&b.zero), int(TagSize)), Size: 0}
}

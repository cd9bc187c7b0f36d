package alloc

import (
	"unsafe"
)

// GoHold is a Hold that tags every non-empty allocation from a backing Heap
// with an AllocTag, the Go-native analogue of the reference implementation's
// MallocHold (which tags allocations from libc malloc). Most programs will
// use GoHold directly over DefaultHeap(); Pool exists for callers who want
// many small allocations batched into fewer Heap requests.
type GoHold struct {
	base
	heap Heap
	live uintptr
	used uintptr
}

// NewGoHold returns a new GoHold backed by heap.
func NewGoHold(heap Heap) *GoHold {
	h := &GoHold{heap: heap}
	h.base.init(h)
	return h
}

// DefaultHold returns the process-wide default Hold, backed by
// DefaultHeap(). The Go-native equivalent of the reference implementation's
// weakly-linked _swim_global_hold hook.
func DefaultHold() Hold { return defaultHold }

var defaultHold = NewGoHold(DefaultHeap())

// Live returns the number of blocks currently outstanding from h.
func (h *GoHold) Live() uintptr { return h.live }

// Used returns the number of bytes currently allocated (excluding AllocTag
// overhead) from h.
func (h *GoHold) Used() uintptr { return h.used }

func tagLayout() Layout { return Layout{Size: TagSize, Align: TagSize} }

func (h *GoHold) Alloc(layout Layout) (Block, error) {
	if layout.Size == 0 {
		h.live++
		return h.base.emptyBlock(), nil
	}
	combined, offset, err := tagLayout().Extended(layout)
	if err != nil {
		return Block{}, Unsupported(err.Error())
	}
	blk, err := h.heap.Alloc(combined)
	if err != nil {
		return Block{}, FromHeapError(err.(*HeapError))
	}
	tagPtr := (*AllocTag)(blk.Ptr)
	*tagPtr = newTag(h)
	h.live++
	h.used += layout.Size
	return Block{Ptr: unsafe.Add(blk.Ptr, int(offset)), Size: layout.Size}, nil
}

func (h *GoHold) Dealloc(b Block) uintptr {
	if b.Size == 0 {
		h.live--
		return 0
	}
	base := basePtr(b.Ptr)
	h.heap.Dealloc(Block{Ptr: base, Size: b.Size + TagSize})
	h.live--
	h.used -= b.Size
	return b.Size
}

func (h *GoHold) Resize(b Block, layout Layout) (Block, error) {
	return Block{}, Unsupported("GoHold cannot resize a block in place")
}

func (h *GoHold) Realloc(b Block, layout Layout) (Block, error) {
	if layout.Size == b.Size {
		return b, nil
	}
	nb, err := h.Alloc(layout)
	if err != nil {
		return Block{}, err
	}
	n := b.Size
	if layout.Size < n {
		n = layout.Size
	}
	if n > 0 {
		src := unsafe.Slice((*byte)(b.Ptr), n)
		dst := unsafe.Slice((*byte)(nb.Ptr), n)
		copy(dst, src)
	}
	h.Dealloc(b)
	return nb, nil
}

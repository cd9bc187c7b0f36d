package alloc

import "unsafe"

// Heap is the untyped block source beneath a Hold or Slab: it hands out raw
// memory and takes it back, with no notion of owner identity. Concrete
// implementations include GoHeap (backed by the Go runtime allocator) and
// MmapSlab (backed by an anonymous mmap region, see mmapslab.go).
type Heap interface {
	Alloc(layout Layout) (Block, error)
	Dealloc(b Block) uintptr
}

// GoHeap is a Heap backed directly by the Go runtime allocator (make([]byte,
// n)). It is the Go-native analogue of the reference implementation's
// MallocHeap, which wraps libc malloc: both exist so that a Hold (MallocHold
// / GoHold) can draw its backing storage from "whatever the host already
// provides" rather than reimplementing page management from raw OS memory.
type GoHeap struct {
	unit uintptr
	live uintptr
}

// NewGoHeap returns a GoHeap that rounds every non-zero allocation up to at
// least unit bytes (matching MallocHeap's block_size parameter); pass 0 for
// no minimum.
func NewGoHeap(unit uintptr) *GoHeap {
	return &GoHeap{unit: unit}
}

func (h *GoHeap) Alloc(layout Layout) (Block, error) {
	if layout.Size == 0 {
		h.live++
		return Block{Ptr: ZSP, Size: 0}, nil
	}
	size := layout.Size
	if h.unit > size {
		size = h.unit
	}
	align := layout.Align
	if align < 1 {
		align = 1
	}
	buf := make([]byte, size+align-1)
	// base is used only as an integer to compute the alignment padding —
	// never converted back to a Pointer itself. The returned Block's Ptr is
	// instead formed with unsafe.Add directly off &buf[0], a genuine live
	// pointer at the call site, so buf stays reachable through the return
	// (the forbidden pattern is a bare uintptr round-trip split across
	// statements, which could let a GC cycle reclaim buf's backing array
	// in the gap before the pointer is reconstituted).
	base := uintptr(unsafe.Pointer(&buf[0]))
	padding := ((base + align - 1) &^ (align - 1)) - base
	ptr := unsafe.Add(unsafe.Pointer(&buf[0]), padding)
	h.live++
	return Block{Ptr: ptr, Size: layout.Size}, nil
}

func (h *GoHeap) Dealloc(b Block) uintptr {
	h.live--
	return b.Size
}

// Live returns the number of blocks currently outstanding from h.
func (h *GoHeap) Live() uintptr { return h.live }

var defaultHeap = NewGoHeap(0)

// DefaultHeap returns the process-wide default Heap, the Go-native
// equivalent of the reference implementation's weakly-linked
// _swim_global_heap hook.
func DefaultHeap() Heap { return defaultHeap }

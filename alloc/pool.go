package alloc

import (
	"unsafe"

	"github.com/cznic/mathutil"
)

// Pool is a Hold that batches many small, tagged allocations into fewer,
// larger requests against a backing Heap — the same page/size-class
// strategy as cznic/memory's Allocator (other_examples' cznic-memory
// reference), adapted to (a) tag every sub-allocation with an AllocTag so
// Pool satisfies the Hold contract, and (b) draw its pages from a caller's
// Heap rather than directly from the OS via mmap.
//
// Each page is a single backing-Heap block of unit bytes, aligned to
// unit so that the page header for any live pointer can be recovered by
// masking off the low bits (ptr &^ (unit-1)), exactly as cznic/memory
// recovers its own page headers. Allocations whose tagged size does not fit
// in half a page get their own dedicated page instead of sharing a size
// class.
type Pool struct {
	base
	heap Heap
	unit uintptr

	headerSize uintptr
	avail      uintptr
	maxSlot    uintptr

	capacity [64]int
	lists    [64]unsafe.Pointer // free list head per size class (log2)
	pages    [64]unsafe.Pointer // actively bumping page per size class, or nil

	live uintptr
	used uintptr
}

type poolPageHeader struct {
	log      uint32
	dedicated uint32 // 1 if this page was a one-off oversized allocation
	brk      uint32
	cap      uint32
	used     uint32
	unitSize uint32 // backing Heap block size, only meaningful when dedicated
}

const poolHeaderAlign = 16

var poolHeaderSize = roundUp(unsafe.Sizeof(poolPageHeader{}), poolHeaderAlign)

type poolNode struct {
	prev, next unsafe.Pointer
}

// DefaultPoolUnit is the default page size requested from the backing Heap,
// matching the 4 KiB default named in spec.md §4.2.
const DefaultPoolUnit = 4096

// NewPool returns a Pool backed by heap, requesting pages of unit bytes
// (rounded up to a power of two; 0 selects DefaultPoolUnit, and no other
// minimum is applied).
func NewPool(heap Heap, unit uintptr) *Pool {
	if unit == 0 {
		unit = DefaultPoolUnit
	}
	unit = nextPow2(unit)
	p := &Pool{
		heap:       heap,
		unit:       unit,
		headerSize: poolHeaderSize,
		avail:      unit - poolHeaderSize,
	}
	p.maxSlot = p.avail >> 1
	p.base.init(p)
	return p
}

func nextPow2(n uintptr) uintptr {
	if n <= 1 {
		return 1
	}
	log := uint(mathutil.BitLen(int(n - 1)))
	return uintptr(1) << log
}

// logFor mirrors cznic/memory's size-classing: round the request up to a
// 16-byte granule, then take its bit length to pick the smallest power of
// two slot size that holds it.
func logFor(n uintptr) uint {
	g := roundUp(n, 16)
	if g <= 1 {
		return 0
	}
	return uint(mathutil.BitLen(int(g - 1)))
}

// Live returns the number of blocks currently outstanding from p.
func (p *Pool) Live() uintptr { return p.live }

// Used returns the number of bytes currently allocated (excluding AllocTag
// and page-header overhead) from p.
func (p *Pool) Used() uintptr { return p.used }

func (p *Pool) pageHeader(ptr unsafe.Pointer) *poolPageHeader {
	base := uintptr(ptr) &^ (p.unit - 1)
	return (*poolPageHeader)(unsafe.Pointer(base))
}

func (p *Pool) newSharedPage(log uint) error {
	if p.capacity[log] == 0 {
		p.capacity[log] = int(p.avail) / (1 << log)
	}
	blk, err := p.heap.Alloc(Layout{Size: p.unit, Align: p.unit})
	if err != nil {
		return FromHeapError(err.(*HeapError))
	}
	hdr := (*poolPageHeader)(blk.Ptr)
	*hdr = poolPageHeader{log: uint32(log), cap: uint32(p.capacity[log])}
	p.pages[log] = blk.Ptr
	return nil
}

func (p *Pool) Alloc(layout Layout) (Block, error) {
	if layout.Size == 0 {
		p.live++
		return p.base.emptyBlock(), nil
	}
	combined, offset, err := tagLayout().Extended(layout)
	if err != nil {
		return Block{}, Unsupported(err.Error())
	}
	need := combined.Size

	if need > p.maxSlot {
		blk, err := p.heap.Alloc(Layout{Size: p.headerSize + need, Align: p.unit})
		if err != nil {
			return Block{}, FromHeapError(err.(*HeapError))
		}
		hdr := (*poolPageHeader)(blk.Ptr)
		*hdr = poolPageHeader{dedicated: 1, unitSize: uint32(blk.Size)}
		slot := unsafe.Add(blk.Ptr, int(p.headerSize))
		*(*AllocTag)(slot) = newTag(p)
		p.live++
		p.used += layout.Size
		return Block{Ptr: unsafe.Add(slot, int(offset)), Size: layout.Size}, nil
	}

	log := logFor(need)
	if p.lists[log] == nil && p.pages[log] == nil {
		if err := p.newSharedPage(log); err != nil {
			return Block{}, err
		}
	}

	var slot unsafe.Pointer
	if pagePtr := p.pages[log]; pagePtr != nil {
		hdr := (*poolPageHeader)(pagePtr)
		slot = unsafe.Add(pagePtr, int(p.headerSize)+int(hdr.brk)<<log)
		hdr.brk++
		hdr.used++
		if hdr.brk == hdr.cap {
			p.pages[log] = nil
		}
	} else {
		n := (*poolNode)(p.lists[log])
		p.lists[log] = n.next
		if n.next != nil {
			(*poolNode)(n.next).prev = nil
		}
		slot = unsafe.Pointer(n)
		p.pageHeader(slot).used++
	}
	*(*AllocTag)(slot) = newTag(p)
	p.live++
	p.used += layout.Size
	return Block{Ptr: unsafe.Add(slot, int(offset)), Size: layout.Size}, nil
}

func (p *Pool) Dealloc(b Block) uintptr {
	if b.Size == 0 {
		p.live--
		return 0
	}
	p.live--
	p.used -= b.Size
	slot := basePtr(b.Ptr)
	pageBase := uintptr(slot) &^ (p.unit - 1)
	hdr := (*poolPageHeader)(unsafe.Pointer(pageBase))
	if hdr.dedicated == 1 {
		p.heap.Dealloc(Block{Ptr: unsafe.Pointer(pageBase), Size: uintptr(hdr.unitSize)})
		return b.Size
	}

	log := uintptr(hdr.log)
	n := (*poolNode)(slot)
	n.prev = nil
	n.next = p.lists[log]
	if n.next != nil {
		(*poolNode)(n.next).prev = slot
	}
	p.lists[log] = slot
	hdr.used--
	if hdr.used != 0 {
		return b.Size
	}

	// Page is now fully free: unlink every one of its slots from the
	// shared free list, then return the page itself to the backing Heap.
	for i := uint32(0); i < hdr.brk; i++ {
		s := unsafe.Add(unsafe.Pointer(pageBase), int(p.headerSize)+int(i)<<log)
		nd := (*poolNode)(s)
		switch {
		case nd.prev == nil:
			p.lists[log] = nd.next
			if nd.next != nil {
				(*poolNode)(nd.next).prev = nil
			}
		case nd.next == nil:
			(*poolNode)(nd.prev).next = nil
		default:
			(*poolNode)(nd.prev).next = nd.next
			(*poolNode)(nd.next).prev = nd.prev
		}
	}
	if p.pages[log] == unsafe.Pointer(pageBase) {
		p.pages[log] = nil
	}
	p.heap.Dealloc(Block{Ptr: unsafe.Pointer(pageBase), Size: p.unit})
	return b.Size
}

func (p *Pool) Resize(b Block, layout Layout) (Block, error) {
	return Block{}, Unsupported("Pool cannot resize a block in place")
}

func (p *Pool) Realloc(b Block, layout Layout) (Block, error) {
	if layout.Size == b.Size {
		return b, nil
	}
	nb, err := p.Alloc(layout)
	if err != nil {
		return Block{}, err
	}
	n := b.Size
	if layout.Size < n {
		n = layout.Size
	}
	if n > 0 {
		copy(unsafe.Slice((*byte)(nb.Ptr), n), unsafe.Slice((*byte)(b.Ptr), n))
	}
	p.Dealloc(b)
	return nb, nil
}

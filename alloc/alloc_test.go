package alloc

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

func unsafeBytes(b Block) []byte {
	return unsafe.Slice((*byte)(b.Ptr), b.Size)
}

func TestGoHeapRoundTrip(t *testing.T) {
	h := NewGoHeap(0)
	b, err := h.Alloc(Layout{Size: 32, Align: 8})
	require.NoError(t, err)
	require.EqualValues(t, 32, b.Size)
	require.EqualValues(t, 0, uintptr(b.Ptr)%8)
	require.EqualValues(t, 1, h.Live())
	h.Dealloc(b)
	require.EqualValues(t, 0, h.Live())
}

func TestGoHeapEmptyBlock(t *testing.T) {
	h := NewGoHeap(0)
	b, err := h.Alloc(Layout{Size: 0, Align: 1})
	require.NoError(t, err)
	require.True(t, b.IsEmpty())
	h.Dealloc(b)
}

func TestSlabFreeListReuse(t *testing.T) {
	s := NewSlab(4096, 32)
	b1, err := s.Alloc(Layout{Size: 32, Align: 8})
	require.NoError(t, err)
	s.Dealloc(b1)
	b2, err := s.Alloc(Layout{Size: 32, Align: 8})
	require.NoError(t, err)
	require.Equal(t, b1.Ptr, b2.Ptr)
}

func TestSlabOutOfMemory(t *testing.T) {
	s := NewSlab(64, 16)
	_, err := s.Alloc(Layout{Size: 64, Align: 1})
	require.NoError(t, err)
	_, err = s.Alloc(Layout{Size: 16, Align: 1})
	require.Error(t, err)
}

func TestGoHoldTagIdentity(t *testing.T) {
	h := NewGoHold(NewGoHeap(0))
	b, err := h.Alloc(Layout{Size: 16, Align: 8})
	require.NoError(t, err)

	tag := FromPtr(b.Ptr)
	owner, ok := tag.Holder()
	require.True(t, ok)
	require.Same(t, h, owner)

	require.EqualValues(t, 1, h.Live())
	require.EqualValues(t, 16, h.Used())
	h.Dealloc(b)
	require.EqualValues(t, 0, h.Live())
	require.EqualValues(t, 0, h.Used())
}

func TestGoHoldRealloc(t *testing.T) {
	h := NewGoHold(NewGoHeap(0))
	b, err := h.Alloc(Layout{Size: 8, Align: 8})
	require.NoError(t, err)
	dst := unsafeBytes(b)
	copy(dst, []byte{1, 2, 3, 4, 5, 6, 7, 8})

	grown, err := h.Realloc(b, Layout{Size: 16, Align: 8})
	require.NoError(t, err)
	require.EqualValues(t, 16, grown.Size)
	require.Equal(t, byte(1), unsafeBytes(grown)[0])
}

func TestGoHoldResizeUnsupported(t *testing.T) {
	h := NewGoHold(NewGoHeap(0))
	b, _ := h.Alloc(Layout{Size: 8, Align: 8})
	_, err := h.Resize(b, Layout{Size: 16, Align: 8})
	require.ErrorIs(t, err, ErrHoldUnsupported)
}

func TestPoolSharesPagesAcrossSmallAllocations(t *testing.T) {
	p := NewPool(NewGoHeap(0), 256)
	blocks := make([]Block, 0, 8)
	for i := 0; i < 8; i++ {
		b, err := p.Alloc(Layout{Size: 8, Align: 8})
		require.NoError(t, err)
		blocks = append(blocks, b)
	}
	require.EqualValues(t, 8, p.Live())
	for _, b := range blocks {
		tag := FromPtr(b.Ptr)
		owner, ok := tag.Holder()
		require.True(t, ok)
		require.Same(t, p, owner)
	}
	for _, b := range blocks {
		p.Dealloc(b)
	}
	require.EqualValues(t, 0, p.Live())
	require.EqualValues(t, 0, p.Used())
}

func TestPoolDedicatedPageForOversizedAlloc(t *testing.T) {
	p := NewPool(NewGoHeap(0), 256)
	b, err := p.Alloc(Layout{Size: 1024, Align: 8})
	require.NoError(t, err)
	require.EqualValues(t, 1024, b.Size)
	p.Dealloc(b)
	require.EqualValues(t, 0, p.Live())
}

func TestPoolFreeListRecycledWithinSizeClass(t *testing.T) {
	// A 128-byte page holds three 32-byte tagged slots. Filling it leaves no
	// bump room, so the next allocation must come from the free list, and the
	// two live neighbours keep the page from being returned to the Heap.
	p := NewPool(NewGoHeap(0), 128)
	keep1, err := p.Alloc(Layout{Size: 24, Align: 8})
	require.NoError(t, err)
	a, err := p.Alloc(Layout{Size: 24, Align: 8})
	require.NoError(t, err)
	keep2, err := p.Alloc(Layout{Size: 24, Align: 8})
	require.NoError(t, err)
	p.Dealloc(a)
	b, err := p.Alloc(Layout{Size: 24, Align: 8})
	require.NoError(t, err)
	require.Equal(t, a.Ptr, b.Ptr)
	p.Dealloc(b)
	p.Dealloc(keep1)
	p.Dealloc(keep2)
}

func TestPoolReallocCopiesPrefix(t *testing.T) {
	p := NewPool(NewGoHeap(0), 4096)
	b, err := p.Alloc(Layout{Size: 8, Align: 8})
	require.NoError(t, err)
	copy(unsafeBytes(b), []byte{9, 9, 9, 9, 9, 9, 9, 9})
	grown, err := p.Realloc(b, Layout{Size: 64, Align: 8})
	require.NoError(t, err)
	require.Equal(t, byte(9), unsafeBytes(grown)[0])
	p.Dealloc(grown)
}

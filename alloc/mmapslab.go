//go:build linux || darwin

package alloc

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// MmapSlab is a Slab whose backing region is a single anonymous mmap rather
// than Go-heap memory, for callers who want allocations to live outside the
// Go GC's scanned heap (e.g. a Pool backing large, long-lived HAMT arenas).
// It implements the same bump + unit free-list policy as Slab; only the
// backing region's provenance differs.
type MmapSlab struct {
	Slab
	closed bool
}

// NewMmapSlab mmaps a fresh anonymous region of size bytes and carves a Slab
// with the given unit size out of it.
func NewMmapSlab(size, unit int) (*MmapSlab, error) {
	region, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, &HeapError{Kind: KindOutOfMemory}
	}
	if unit < int(unsafe.Sizeof(slabNode{})) {
		unit = int(unsafe.Sizeof(slabNode{}))
	}
	return &MmapSlab{Slab: Slab{region: region, unit: uintptr(unit)}}, nil
}

// Close unmaps the backing region. Any outstanding Blocks become invalid.
func (m *MmapSlab) Close() error {
	if m.closed {
		return nil
	}
	m.closed = true
	return unix.Munmap(m.Slab.region)
}

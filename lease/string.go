package lease

import (
	"bytes"
	"errors"
	"unicode/utf8"
	"unsafe"

	"github.com/coreholds/amtval/alloc"
)

// ErrInteriorNul is returned by NewCString when the source bytes contain a
// nul byte anywhere, including at the very end.
var ErrInteriorNul = errors.New("lease: interior nul byte in CString source")

// String is a UTF-8 buffer over Buf[byte] — the Resident spec.md calls
// String. Validity of the UTF-8 encoding is the caller's responsibility at
// construction; subsequent mutation through Buf's byte-level API can
// invalidate it, mirroring the reference implementation's unchecked
// byte-buffer core.
type String struct {
	buf *Buf[byte]
}

// NewString allocates a String holding a copy of s, owned by hold.
func NewString(hold alloc.Hold, s string) (String, error) {
	buf, err := NewBufFromSlice(hold, []byte(s))
	if err != nil {
		return String{}, err
	}
	return String{buf: buf}, nil
}

// String returns s's contents as a Go string (a copy).
func (s String) String() string { return string(s.buf.Slice()) }

// Len returns the number of bytes.
func (s String) Len() uintptr { return s.buf.Len() }

// Valid reports whether s's bytes are well-formed UTF-8.
func (s String) Valid() bool { return utf8.Valid(s.buf.Slice()) }

// Free releases s's storage back to its owning Hold.
func (s String) Free() { s.buf.Free() }

// Hold returns the Hold that owns s.
func (s String) Hold() alloc.Hold { return s.buf.Hold() }

// Stow moves s's contents into a fresh String owned by dst.
func (s String) Stow(dst alloc.Hold) (String, error) {
	nb, err := s.buf.Stow(dst)
	if err != nil {
		return String{}, err
	}
	return String{buf: nb}, nil
}

// Ptr returns the raw block pointer backing s, for storing as an
// out-of-line Value's payload word.
func (s String) Ptr() unsafe.Pointer { return s.buf.Ptr() }

// StringFromPointer reconstructs a String view over a block previously
// produced by Ptr.
func StringFromPointer(p unsafe.Pointer) String {
	return String{buf: FromPointer[byte](p)}
}

// CString is a nul-terminated byte buffer. NewCString rejects any source
// containing an interior nul byte, appending exactly one trailing nul of
// its own.
type CString struct {
	buf *Buf[byte]
}

// NewCString allocates a CString holding a copy of b plus a trailing nul,
// owned by hold. Returns ErrInteriorNul if b already contains a nul byte.
func NewCString(hold alloc.Hold, b []byte) (CString, error) {
	if bytes.IndexByte(b, 0) >= 0 {
		return CString{}, ErrInteriorNul
	}
	withNul := make([]byte, len(b)+1)
	copy(withNul, b)
	buf, err := NewBufFromSlice(hold, withNul)
	if err != nil {
		return CString{}, err
	}
	return CString{buf: buf}, nil
}

// Bytes returns the content without the trailing nul.
func (c CString) Bytes() []byte {
	s := c.buf.Slice()
	if len(s) == 0 {
		return nil
	}
	return s[:len(s)-1]
}

// Free releases c's storage back to its owning Hold.
func (c CString) Free() { c.buf.Free() }

// Hold returns the Hold that owns c.
func (c CString) Hold() alloc.Hold { return c.buf.Hold() }

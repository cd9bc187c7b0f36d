package value

import (
	"unsafe"

	"github.com/coreholds/amtval/alloc"
	"github.com/coreholds/amtval/lease"
)

func bufFromPtr(p unsafe.Pointer) *lease.Buf[byte] { return lease.FromPointer[byte](p) }

// HoldData constructs a Data Value from b, owned by hold. Byte strings of 7
// bytes or fewer are stored inline, but — like HoldText — still carry a
// placeholder allocation in their payload word so even an inline Data
// Value has a recoverable AllocTag/Hold identity. Longer ones promote to an
// out-of-line lease.Buf[byte].
func HoldData(hold alloc.Hold, b []byte) (Value, error) {
	if len(b) <= 7 {
		blk, err := placeholderBlock(hold)
		if err != nil {
			return Value{}, err
		}
		v := mkInline(TagData0 + Tag(len(b)))
		copy(v.head[1:], b)
		v.word = uint64(uintptr(blk.Ptr))
		return v, nil
	}
	buf, err := lease.NewBufFromSlice(hold, b)
	if err != nil {
		return Value{}, err
	}
	return withPtr(TagData, buf.Ptr()), nil
}

// IsDataInline reports whether v's Data payload is stored inline.
func (v Value) IsDataInline() bool { return v.TypeTag().IsData0to7() }

// AsData returns v's byte contents (a copy), panicking unless v IsData.
func (v Value) AsData() []byte {
	b, ok := v.CastAsData()
	if !ok {
		panic("value: AsData on non-Data Value")
	}
	return b
}

// CastAsData returns (contents, true) iff v IsData.
func (v Value) CastAsData() ([]byte, bool) {
	switch {
	case v.TypeTag().IsData0to7():
		n := v.TypeTag().InlineDataLen()
		out := make([]byte, n)
		copy(out, v.head[1:1+n])
		return out, true
	case v.TypeTag() == TagData:
		buf := bufFromPtr(v.leasePtr())
		out := make([]byte, buf.Len())
		copy(out, buf.Slice())
		return out, true
	default:
		return nil, false
	}
}

// DataLen returns the byte length of v's Data payload, panicking unless v
// IsData.
func (v Value) DataLen() int {
	switch {
	case v.TypeTag().IsData0to7():
		return v.TypeTag().InlineDataLen()
	case v.TypeTag() == TagData:
		return int(bufFromPtr(v.leasePtr()).Len())
	default:
		panic("value: DataLen on non-Data Value")
	}
}

// TryPromoteData grows a Data Value to hold additional appended bytes,
// promoting from an inline representation to an out-of-line lease.Buf[byte]
// if the new length would not fit in 7 bytes. It returns the (possibly
// promoted) Value. The receiver's storage is consumed (the placeholder is
// freed, or the lease is grown and may move), so the receiver must not be
// used or freed afterward. The owning Hold is recovered from v's own payload word — TryPromoteText's
// Data counterpart.
func (v Value) TryPromoteData(appended []byte) (Value, error) {
	cur, ok := v.CastAsData()
	if !ok {
		panic("value: TryPromoteData on non-Data Value")
	}
	if v.TypeTag() == TagData {
		buf := bufFromPtr(v.leasePtr())
		if err := buf.TryReserve(uintptr(len(appended))); err != nil {
			return Value{}, err
		}
		for _, b := range appended {
			if err := buf.Push(b); err != nil {
				return Value{}, err
			}
		}
		return withPtr(TagData, buf.Ptr()), nil
	}
	hold := holderOfValue(v)
	freePlaceholder(v.leasePtr())
	combined := make([]byte, 0, len(cur)+len(appended))
	combined = append(combined, cur...)
	combined = append(combined, appended...)
	return HoldData(hold, combined)
}

package value

import (
	"math"
	"unsafe"

	"github.com/coreholds/amtval/alloc"
	"github.com/coreholds/amtval/internal/f16"
)

// Value is the 16-byte tagged union of spec.md §3. head's byte 0 is the
// tag (AttrFlag included when this Value is acting as an Item key); bytes
// 1..7 hold up to 7 inline UTF-8/data bytes for Text0..7/Data0..7. word is
// either raw numeric bits, a lease pointer (Text/Data/Record), or unused
// (Absent/Extant/Bool). Declaring head as [8]byte rather than uint64 avoids
// host-endianness bit-shifting in every accessor while still placing word
// at the same 8-byte-aligned offset the wire ABI requires.
type Value struct {
	head [8]byte
	word uint64
}

// Tag returns v's full tag byte, including AttrFlag if set.
func (v Value) Tag() Tag { return Tag(v.head[0]) }

// TypeTag returns the low 7 bits of v's tag (AttrFlag stripped).
func (v Value) TypeTag() Tag { return v.Tag().Type() }

func mkInline(tag Tag) Value {
	var v Value
	v.head[0] = byte(tag)
	return v
}

// Absent returns the Absent value.
func Absent() Value { return mkInline(TagAbsent) }

// Extant returns the Extant value.
func Extant() Value { return mkInline(TagExtant) }

// FromBool returns a Bool Value; true and false use distinct tags so that
// no payload word is needed.
func FromBool(b bool) Value {
	if b {
		return mkInline(TagBoolTrue)
	}
	return mkInline(TagBoolFalse)
}

func mkNum(tag Tag, bits uint64) Value {
	v := mkInline(tag)
	v.word = bits
	return v
}

func FromU8(x uint8) Value   { return mkNum(TagU8, uint64(x)) }
func FromU16(x uint16) Value { return mkNum(TagU16, uint64(x)) }
func FromU32(x uint32) Value { return mkNum(TagU32, uint64(x)) }
func FromU64(x uint64) Value { return mkNum(TagU64, x) }
func FromI8(x int8) Value    { return mkNum(TagI8, uint64(uint8(x))) }
func FromI16(x int16) Value  { return mkNum(TagI16, uint64(uint16(x))) }
func FromI32(x int32) Value  { return mkNum(TagI32, uint64(uint32(x))) }
func FromI64(x int64) Value  { return mkNum(TagI64, uint64(x)) }
func FromF16(x f16.F16) Value { return mkNum(TagF16, uint64(x)) }
func FromF32(x float32) Value { return mkNum(TagF32, uint64(math.Float32bits(x))) }
func FromF64(x float64) Value { return mkNum(TagF64, math.Float64bits(x)) }

// IsAbsent, IsExtant, IsBool, IsNum, IsText, IsData, IsRecord test v's
// TypeTag against the variant's tag range.
func (v Value) IsAbsent() bool { return v.TypeTag() == TagAbsent }
func (v Value) IsExtant() bool { return v.TypeTag() == TagExtant }
func (v Value) IsBool() bool {
	t := v.TypeTag()
	return t == TagBoolTrue || t == TagBoolFalse
}
func (v Value) IsNum() bool { return v.TypeTag().IsNumeric() }
func (v Value) IsText() bool {
	t := v.TypeTag()
	return t.IsText0to7() || t == TagText
}
func (v Value) IsData() bool {
	t := v.TypeTag()
	return t.IsData0to7() || t == TagData
}
func (v Value) IsRecord() bool {
	t := v.TypeTag()
	return t == TagRecord0 || t == TagRecord
}

// AsBool panics unless v IsBool.
func (v Value) AsBool() bool {
	if !v.IsBool() {
		panic("value: AsBool on non-Bool Value")
	}
	return v.TypeTag() == TagBoolTrue
}

// CastAsBool returns (value, true) iff v IsBool.
func (v Value) CastAsBool() (bool, bool) {
	if !v.IsBool() {
		return false, false
	}
	return v.TypeTag() == TagBoolTrue, true
}

// rawBits returns v's raw payload word, panicking unless v IsNum.
func (v Value) rawBits() uint64 {
	if !v.IsNum() {
		panic("value: numeric accessor on non-numeric Value")
	}
	return v.word
}

// leasePtr returns v's payload word as a pointer, for Text/Data/Record
// out-of-line variants.
func (v Value) leasePtr() unsafe.Pointer { return unsafe.Pointer(uintptr(v.word)) }

func withPtr(tag Tag, p unsafe.Pointer) Value {
	v := mkInline(tag)
	v.word = uint64(uintptr(p))
	return v
}

// placeholderBlock returns an empty Block from hold, used so that even a
// zero-length Text/Data/Record carries an AllocTag → Hold identity (spec.md
// §3, "placeholder allocations exist purely so that even empty ... values
// have an AllocTag -> Hold identity"). Per the reference implementation's
// try_hold_str/try_hold_data, every inline Text0..7/Data0..7 Value carries
// one of these too, in its otherwise-unused payload word.
func placeholderBlock(hold alloc.Hold) (alloc.Block, error) {
	return hold.Alloc(alloc.Layout{})
}

// holderOfValue recovers the Hold that owns v's payload word — the
// placeholder block's AllocTag for an inline Text/Data/Record0 Value, or
// the out-of-line lease's AllocTag otherwise. Panics unless v carries a
// valid payload word (Absent/Extant/Bool/Num never do).
func holderOfValue(v Value) alloc.Hold {
	tag := alloc.FromPtr(v.leasePtr())
	h, ok := tag.Holder()
	if !ok {
		panic("value: AllocTag names an unregistered Hold")
	}
	return h
}

// freePlaceholder releases the zero-size placeholder block at p back to its
// owning Hold, recovered from its own AllocTag.
func freePlaceholder(p unsafe.Pointer) {
	tag := alloc.FromPtr(p)
	if h, ok := tag.Holder(); ok {
		h.Dealloc(alloc.Block{Ptr: p, Size: 0})
	}
}

// Free releases whatever storage v owns (a lease, or a placeholder
// allocation) back to its Hold. Absent/Extant/Bool/Num are no-ops (no
// payload word). Calling Free twice on the same Value, or on a copy of a
// freed Value, is a use-after-free — Value has no borrow checker to
// prevent it, matching the reference implementation's manually-dropped
// Value.
func (v Value) Free() {
	switch {
	case v.TypeTag() == TagText:
		stringFromPtr(v.leasePtr()).Free()
	case v.TypeTag() == TagData:
		bufFromPtr(v.leasePtr()).Free()
	case v.TypeTag() == TagRecord:
		itemBufFromPtr(v.leasePtr()).Free()
	case v.TypeTag() == TagRecord0,
		v.TypeTag().IsText0to7(),
		v.TypeTag().IsData0to7():
		freePlaceholder(v.leasePtr())
	}
}

// Package value implements the 16-byte tagged Value union of spec.md §3/§6:
// an 8-byte tag+inline word followed by an 8-byte payload/pointer word.
// Every operation here is grounded directly in spec.md's ABI table, since
// no example repo in the retrieval pack implements a tagged-union value
// type of this shape; the layout, coercion policy, and ordering rules below
// are the spec's own authoritative description, translated into idiomatic
// Go (generics for the numeric coercion matrix, explicit error returns
// instead of panics where spec.md calls for a "try_" / cast_* variant).
package value

// Tag identifies a Value's variant and, for short Text/Data, its exact
// inline length. The table below is part of the wire ABI (spec.md §6): any
// serializer or debugger walking raw Values depends on these exact byte
// values.
type Tag byte

const (
	TagAbsent Tag = 0x01
	TagExtant Tag = 0x02

	TagBoolFalse Tag = 0x03
	TagBoolTrue  Tag = 0x04

	TagU8  Tag = 0x05
	TagU16 Tag = 0x06
	TagU32 Tag = 0x07
	TagU64 Tag = 0x08
	TagI8  Tag = 0x09
	TagI16 Tag = 0x0A
	TagI32 Tag = 0x0B
	TagI64 Tag = 0x0C
	TagF16 Tag = 0x0D
	TagF32 Tag = 0x0E
	TagF64 Tag = 0x0F

	// TagBigInt and TagBigDec are reserved by spec.md §3/§9: the reference
	// implementation leaves their representation `unimplemented!()`, and
	// spec.md explicitly permits an implementer to omit them. This package
	// reserves the tag values (so a future arbitrary-precision lease type
	// could claim them without an ABI break) but constructs nothing on
	// them; see DESIGN.md's Open Question log.
	TagBigInt Tag = 0x10
	TagBigDec Tag = 0x11

	TagText0 Tag = 0x12 // TagText0+n is the inline-length-n tag, n in [0,7]
	TagText7 Tag = 0x19
	TagText  Tag = 0x1A // out-of-line, payload word is a lease.String pointer

	TagData0 Tag = 0x1B // TagData0+n is the inline-length-n tag, n in [0,7]
	TagData7 Tag = 0x22
	TagData  Tag = 0x23 // out-of-line, payload word is a lease.Buf[byte] pointer

	TagRecord0 Tag = 0x24 // empty placeholder, no live buffer
	TagRecord  Tag = 0x25 // payload word is a lease.Buf[Item] pointer
)

const (
	// AttrFlag is reused only when a Value appears as an Item's key, to
	// distinguish an Attr (textual keyword key) from a Slot (arbitrary
	// key). It is never set on a Value used as a plain value.
	AttrFlag Tag = 0x80
	// TypeMask strips AttrFlag to recover the underlying variant tag.
	TypeMask Tag = 0x7F
)

// Type returns t with AttrFlag cleared.
func (t Tag) Type() Tag { return t & TypeMask }

// HasAttrFlag reports whether AttrFlag is set on t.
func (t Tag) HasAttrFlag() bool { return t&AttrFlag != 0 }

// IsText0to7 reports whether t is one of the eight inline-Text tags.
func (t Tag) IsText0to7() bool { tt := t.Type(); return tt >= TagText0 && tt <= TagText7 }

// IsData0to7 reports whether t is one of the eight inline-Data tags.
func (t Tag) IsData0to7() bool { tt := t.Type(); return tt >= TagData0 && tt <= TagData7 }

// IsNumeric reports whether t names one of the eleven numeric variants.
func (t Tag) IsNumeric() bool { tt := t.Type(); return tt >= TagU8 && tt <= TagF64 }

// InlineTextLen returns t's inline length, valid only when IsText0to7.
func (t Tag) InlineTextLen() int { return int(t.Type() - TagText0) }

// InlineDataLen returns t's inline length, valid only when IsData0to7.
func (t Tag) InlineDataLen() int { return int(t.Type() - TagData0) }

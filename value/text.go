package value

import (
	"unsafe"

	"github.com/coreholds/amtval/alloc"
	"github.com/coreholds/amtval/lease"
)

func stringFromPtr(p unsafe.Pointer) lease.String { return lease.StringFromPointer(p) }

// HoldText constructs a Text Value from s, owned by hold. Strings of 7
// bytes or fewer are stored inline, but — matching the reference
// implementation's try_hold_str, which allocates a zero-size placeholder
// Block for every inline length so the payload word still names an
// AllocTag/Hold identity — an inline Text Value still carries a placeholder
// allocation in its word, recoverable via alloc.FromPtr exactly like the
// Record0 placeholder. Longer strings promote directly to an out-of-line
// lease.String.
func HoldText(hold alloc.Hold, s string) (Value, error) {
	if len(s) <= 7 {
		blk, err := placeholderBlock(hold)
		if err != nil {
			return Value{}, err
		}
		v := mkInline(TagText0 + Tag(len(s)))
		copy(v.head[1:], s)
		v.word = uint64(uintptr(blk.Ptr))
		return v, nil
	}
	str, err := lease.NewString(hold, s)
	if err != nil {
		return Value{}, err
	}
	return withPtr(TagText, str.Ptr()), nil
}

// IsTextInline reports whether v's Text payload is stored inline (tag
// Text0..Text7).
func (v Value) IsTextInline() bool { return v.TypeTag().IsText0to7() }

// AsText returns v's string contents, panicking unless v IsText.
func (v Value) AsText() string {
	s, ok := v.CastAsText()
	if !ok {
		panic("value: AsText on non-Text Value")
	}
	return s
}

// CastAsText returns (contents, true) iff v IsText.
func (v Value) CastAsText() (string, bool) {
	switch {
	case v.TypeTag().IsText0to7():
		n := v.TypeTag().InlineTextLen()
		return string(v.head[1 : 1+n]), true
	case v.TypeTag() == TagText:
		return stringFromPtr(v.leasePtr()).String(), true
	default:
		return "", false
	}
}

// TextLen returns the byte length of v's Text payload, panicking unless v
// IsText. Free for inline variants (encoded in the tag); O(1) for the
// out-of-line variant (stored in the lease header).
func (v Value) TextLen() int {
	switch {
	case v.TypeTag().IsText0to7():
		return v.TypeTag().InlineTextLen()
	case v.TypeTag() == TagText:
		return int(stringFromPtr(v.leasePtr()).Len())
	default:
		panic("value: TextLen on non-Text Value")
	}
}

// TryPromoteText grows a Text Value to hold an additional extra bytes,
// promoting from an inline representation to an out-of-line lease.String if
// the new length would not fit in 7 bytes. It returns the (possibly
// promoted) Value. The receiver's own 16 bytes are not changed, but its
// storage is consumed (the placeholder is freed, or the lease is grown and
// may move), so the receiver must not be used or freed afterward. The owning Hold is
// recovered from v's own payload word (the placeholder block's AllocTag
// when v is inline, the lease.String's AllocTag otherwise) rather than
// taken as a parameter — the same allocate-copy-retag-free procedure
// HoldRecord's TryPush uses for the Record0 placeholder.
func (v Value) TryPromoteText(appended string) (Value, error) {
	cur, ok := v.CastAsText()
	if !ok {
		panic("value: TryPromoteText on non-Text Value")
	}
	combined := cur + appended
	if v.TypeTag() == TagText {
		// Already out-of-line: grow the existing lease through its owning
		// Hold's Realloc (which may move it) and append the new bytes.
		s := stringFromPtr(v.leasePtr())
		buf := lease.FromPointer[byte](s.Ptr())
		if err := buf.TryReserve(uintptr(len(appended))); err != nil {
			return Value{}, err
		}
		for i := 0; i < len(appended); i++ {
			if err := buf.Push(appended[i]); err != nil {
				return Value{}, err
			}
		}
		return withPtr(TagText, buf.Ptr()), nil
	}
	hold := holderOfValue(v)
	freePlaceholder(v.leasePtr())
	return HoldText(hold, combined)
}

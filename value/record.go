package value

import (
	"unsafe"

	"github.com/coreholds/amtval/alloc"
	"github.com/coreholds/amtval/lease"
)

func itemBufFromPtr(p unsafe.Pointer) *lease.Buf[Item] { return lease.FromPointer[Item](p) }

// Item is a (value, optional key) pair. An Item with an Absent key is a
// plain positional entry; an Item with any other key is a Field, further
// split into Attr (textual key with AttrFlag set) and Slot (any other key,
// AttrFlag clear) per spec.md's Item/Field/Attr/Slot family.
type Item struct {
	Val Value
	Key Value // Absent() iff this Item is not a Field
}

// NewItem returns a keyless Item wrapping v.
func NewItem(v Value) Item { return Item{Val: v, Key: Absent()} }

func withAttrFlag(v Value, set bool) Value {
	if set {
		v.head[0] |= byte(AttrFlag)
	} else {
		v.head[0] &^= byte(AttrFlag)
	}
	return v
}

// NewAttr returns a Field whose key is a Text Value built from key (in
// hold) with AttrFlag set (spec.md: "Attr (key is Text with attr flag
// set)").
func NewAttr(hold alloc.Hold, key string, v Value) (Item, error) {
	k, err := HoldText(hold, key)
	if err != nil {
		return Item{}, err
	}
	return Item{Val: v, Key: withAttrFlag(k, true)}, nil
}

// NewSlot returns a Field whose key is any Value with AttrFlag forced
// clear.
func NewSlot(key, v Value) Item {
	return Item{Val: v, Key: withAttrFlag(key, false)}
}

// IsField reports whether it carries a key.
func (it Item) IsField() bool { return !it.Key.IsAbsent() }

// IsAttr reports whether it is a Field whose key is a textual attribute
// name.
func (it Item) IsAttr() bool { return it.IsField() && it.Key.Tag().HasAttrFlag() }

// IsSlot reports whether it is a Field whose key is not an Attr.
func (it Item) IsSlot() bool { return it.IsField() && !it.Key.Tag().HasAttrFlag() }

// HoldRecord constructs a Record Value from items, owned by hold. An empty
// items slice produces the Record0 placeholder form (an empty allocation
// carrying only an AllocTag, no live buffer) rather than a zero-capacity
// lease.Buf, matching spec.md's Record0/Record split.
func HoldRecord(hold alloc.Hold, items []Item) (Value, error) {
	if len(items) == 0 {
		blk, err := placeholderBlock(hold)
		if err != nil {
			return Value{}, err
		}
		return withPtr(TagRecord0, blk.Ptr), nil
	}
	buf, err := lease.NewBufFromSlice(hold, items)
	if err != nil {
		return Value{}, err
	}
	return withPtr(TagRecord, buf.Ptr()), nil
}

// RecordLen returns the number of Items in v, panicking unless v IsRecord.
func (v Value) RecordLen() int {
	switch v.TypeTag() {
	case TagRecord0:
		return 0
	case TagRecord:
		return int(itemBufFromPtr(v.leasePtr()).Len())
	default:
		panic("value: RecordLen on non-Record Value")
	}
}

// RecordItems returns a view of v's Items, panicking unless v IsRecord. The
// view is invalidated by any subsequent TryPush on v.
func (v Value) RecordItems() []Item {
	switch v.TypeTag() {
	case TagRecord0:
		return nil
	case TagRecord:
		return itemBufFromPtr(v.leasePtr()).Slice()
	default:
		panic("value: RecordItems on non-Record Value")
	}
}

// TryPush appends item to v, promoting from the Record0 placeholder to a
// live buffer as needed, and returns the (possibly promoted) Value.
func (v Value) TryPush(hold alloc.Hold, item Item) (Value, error) {
	switch v.TypeTag() {
	case TagRecord0:
		freePlaceholder(v.leasePtr())
		return HoldRecord(hold, []Item{item})
	case TagRecord:
		buf := itemBufFromPtr(v.leasePtr())
		if err := buf.Push(item); err != nil {
			return Value{}, err
		}
		return withPtr(TagRecord, buf.Ptr()), nil
	default:
		panic("value: TryPush on non-Record Value")
	}
}

package value

import (
	"fmt"
	"strconv"
	"strings"
)

// checkReserved panics with the documented message if v carries a
// BigInt/BigDec tag: those tags are reserved in the wire ABI but
// deliberately unconstructible (see tag.go), so any accessor that would
// otherwise decode one must fail loudly rather than silently misreading
// the payload word.
func (v Value) checkReserved() {
	switch v.TypeTag() {
	case TagBigInt, TagBigDec:
		panic("value: BigInt/BigDec is reserved and unimplemented")
	}
}

// String implements fmt.Stringer. It is a debug rendering, not the wire
// format: numeric variants print their Go value, Text/Data print their
// contents, and Record prints its Items space-joined in brackets.
func (v Value) String() string {
	v.checkReserved()
	switch {
	case v.IsAbsent():
		return "absent"
	case v.IsExtant():
		return "extant"
	case v.IsBool():
		return strconv.FormatBool(v.AsBool())
	case v.IsNum():
		return v.numString()
	case v.IsText():
		return strconv.Quote(v.AsText())
	case v.IsData():
		return fmt.Sprintf("%x", v.AsData())
	case v.IsRecord():
		items := v.RecordItems()
		parts := make([]string, len(items))
		for i, it := range items {
			parts[i] = it.String()
		}
		return "[" + strings.Join(parts, " ") + "]"
	default:
		return fmt.Sprintf("value(tag=0x%02x)", byte(v.TypeTag()))
	}
}

func (v Value) numString() string {
	isFloat, signed, u, i, f := v.numView()
	switch {
	case isFloat:
		return strconv.FormatFloat(f, 'g', -1, 64)
	case signed:
		return strconv.FormatInt(i, 10)
	default:
		return strconv.FormatUint(u, 10)
	}
}

// String renders it as "key: val" when it is a Field, or just val's
// rendering otherwise.
func (it Item) String() string {
	if !it.IsField() {
		return it.Val.String()
	}
	return it.Key.String() + ": " + it.Val.String()
}

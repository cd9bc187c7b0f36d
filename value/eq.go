package value

import "math"

// numKind classifies a numeric Value for the purposes of Equal/Compare:
// mixed-width numeric Values compare as real numbers rather than as raw
// bits, per spec.md §4.5.
type numKind int

const (
	numSigned numKind = iota
	numUnsigned
	numFloat
)

func (v Value) numClassify() (numKind, uint64, int64, float64) {
	isFloat, signed, u, i, f := v.numView()
	switch {
	case isFloat:
		return numFloat, u, i, f
	case signed:
		return numSigned, u, i, f
	default:
		return numUnsigned, u, i, f
	}
}

// numEqual compares two numeric Values as real numbers: same-kind compares
// exactly, mixed signed/unsigned widens through a non-negativity check, and
// anything touching a float widens both sides to float64 (with NaN == NaN,
// unlike IEEE-754 float equality).
func numEqual(a, b Value) bool {
	ak, au, ai, af := a.numClassify()
	bk, bu, bi, bf := b.numClassify()

	if ak == numFloat || bk == numFloat {
		if ak != numFloat {
			af = realToFloat64(ak, au, ai)
		}
		if bk != numFloat {
			bf = realToFloat64(bk, bu, bi)
		}
		if math.IsNaN(af) && math.IsNaN(bf) {
			return true
		}
		return af == bf
	}
	if ak == bk {
		if ak == numSigned {
			return ai == bi
		}
		return au == bu
	}
	// One signed, one unsigned: equal iff the signed side is non-negative
	// and its magnitude matches the unsigned side exactly.
	if ak == numSigned {
		return ai >= 0 && uint64(ai) == bu
	}
	return bi >= 0 && uint64(bi) == au
}

func realToFloat64(k numKind, u uint64, i int64) float64 {
	if k == numSigned {
		return float64(i)
	}
	return float64(u)
}

// numCompare totally orders two numeric Values: NaN sorts greater than every
// non-NaN value (and equal to any other NaN), and mixed signed/unsigned
// pairs order a negative signed value below every unsigned value, otherwise
// comparing both sides exactly as uint64.
func numCompare(a, b Value) int {
	ak, au, ai, af := a.numClassify()
	bk, bu, bi, bf := b.numClassify()

	if ak == numFloat || bk == numFloat {
		if ak != numFloat {
			af = realToFloat64(ak, au, ai)
		}
		if bk != numFloat {
			bf = realToFloat64(bk, bu, bi)
		}
		aNaN, bNaN := math.IsNaN(af), math.IsNaN(bf)
		switch {
		case aNaN && bNaN:
			return 0
		case aNaN:
			return 1
		case bNaN:
			return -1
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}
	if ak == bk {
		if ak == numSigned {
			switch {
			case ai < bi:
				return -1
			case ai > bi:
				return 1
			default:
				return 0
			}
		}
		switch {
		case au < bu:
			return -1
		case au > bu:
			return 1
		default:
			return 0
		}
	}
	if ak == numSigned {
		if ai < 0 {
			return -1
		}
		return compareUint64(uint64(ai), bu)
	}
	if bi < 0 {
		return 1
	}
	return compareUint64(au, uint64(bi))
}

func compareUint64(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Equal reports whether a and b are structurally equal per spec.md §4.5:
// Bool compares the boolean it denotes (not the specific tag byte), numeric
// Values compare as real numbers regardless of width/signedness, and
// Text/Data/Record compare their contents recursively.
func Equal(a, b Value) bool {
	switch {
	case a.IsAbsent() && b.IsAbsent():
		return true
	case a.IsExtant() && b.IsExtant():
		return true
	case a.IsBool() && b.IsBool():
		return a.AsBool() == b.AsBool()
	case a.IsNum() && b.IsNum():
		return numEqual(a, b)
	case a.IsText() && b.IsText():
		return a.AsText() == b.AsText()
	case a.IsData() && b.IsData():
		ab, bb := a.AsData(), b.AsData()
		if len(ab) != len(bb) {
			return false
		}
		for i := range ab {
			if ab[i] != bb[i] {
				return false
			}
		}
		return true
	case a.IsRecord() && b.IsRecord():
		return recordsEqual(a, b)
	default:
		return false
	}
}

func recordsEqual(a, b Value) bool {
	ai, bi := a.RecordItems(), b.RecordItems()
	if len(ai) != len(bi) {
		return false
	}
	for i := range ai {
		if !Equal(ai[i].Key, bi[i].Key) || !Equal(ai[i].Val, bi[i].Val) {
			return false
		}
	}
	return true
}

// kindRank totally orders Value's variants for Compare, matching the tag
// table's declaration order: Absent < Extant < Bool < Num < Text < Data <
// Record.
func (v Value) kindRank() int {
	switch {
	case v.IsAbsent():
		return 0
	case v.IsExtant():
		return 1
	case v.IsBool():
		return 2
	case v.IsNum():
		return 3
	case v.IsText():
		return 4
	case v.IsData():
		return 5
	case v.IsRecord():
		return 6
	default:
		panic("value: kindRank on unrecognized Value")
	}
}

// Compare totally orders a and b: first by kind, then within a kind by
// spec.md §4.5's rules (numeric ordering described on numCompare; Text/Data
// lexicographic; Record lexicographic over (key, val) pairs).
func Compare(a, b Value) int {
	ar, br := a.kindRank(), b.kindRank()
	if ar != br {
		if ar < br {
			return -1
		}
		return 1
	}
	switch ar {
	case 0, 1:
		return 0
	case 2:
		av, bv := a.AsBool(), b.AsBool()
		switch {
		case av == bv:
			return 0
		case !av:
			return -1
		default:
			return 1
		}
	case 3:
		return numCompare(a, b)
	case 4:
		return compareStrings(a.AsText(), b.AsText())
	case 5:
		return compareBytes(a.AsData(), b.AsData())
	case 6:
		return compareRecords(a, b)
	default:
		panic("value: Compare on unrecognized Value")
	}
}

func compareStrings(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareBytes(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}

func compareRecords(a, b Value) int {
	ai, bi := a.RecordItems(), b.RecordItems()
	n := len(ai)
	if len(bi) < n {
		n = len(bi)
	}
	for i := 0; i < n; i++ {
		if c := Compare(ai[i].Key, bi[i].Key); c != 0 {
			return c
		}
		if c := Compare(ai[i].Val, bi[i].Val); c != 0 {
			return c
		}
	}
	switch {
	case len(ai) < len(bi):
		return -1
	case len(ai) > len(bi):
		return 1
	default:
		return 0
	}
}

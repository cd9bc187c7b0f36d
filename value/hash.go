package value

import (
	"math"

	"github.com/coreholds/amtval/murmur3"
)

// two64 is 2^64 as a float64, the float-side bound past which no uint64
// magnitude can exactly represent an integral float.
const two64 = 18446744073709551616.0

// hashNumBytes canonicalizes v's numeric payload so that every exact
// representation of the same real number — 1u8, 1i64, 1.0f64 — produces the
// identical byte sequence, per spec.md §6: "Nums hash as the smallest
// integer type that exactly represents the value." A non-integral float (or
// NaN, or an integral float too large for a uint64/int64 magnitude) instead
// hashes as its own canonical float64 bit pattern, with all NaNs collapsed
// to one fixed pattern so that NaN == NaN (per Equal) implies equal hashes.
func hashNumBytes(v Value) [9]byte {
	kind, u, i, f := v.numClassify()
	switch kind {
	case numSigned:
		if i < 0 {
			return canonicalIntBytes(true, uint64(-(i+1))+1)
		}
		return canonicalIntBytes(false, uint64(i))
	case numUnsigned:
		return canonicalIntBytes(false, u)
	default: // numFloat
		if math.IsNaN(f) {
			return canonicalFloatBytes(math.NaN())
		}
		if !math.IsInf(f, 0) && f == math.Trunc(f) {
			if f >= 0 && f < two64 {
				mag := uint64(f)
				if float64(mag) == f {
					return canonicalIntBytes(false, mag)
				}
			} else if f < 0 && f >= -two64 {
				mag := uint64(-f)
				if -float64(mag) == f {
					return canonicalIntBytes(true, mag)
				}
			}
		}
		return canonicalFloatBytes(f)
	}
}

func canonicalIntBytes(negative bool, mag uint64) [9]byte {
	var out [9]byte
	if negative && mag != 0 {
		out[0] = 1
	}
	putUint64LE(out[1:], mag)
	return out
}

func canonicalFloatBytes(f float64) [9]byte {
	var out [9]byte
	out[0] = 2
	putUint64LE(out[1:], math.Float64bits(f))
	return out
}

func putUint64LE(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
}

// appendHashBytes appends v's canonical hash encoding to buf: a one-byte
// variant discriminant followed by the variant's content bytes, recursing
// into Record items' (key, val) pairs.
func appendHashBytes(buf []byte, v Value) []byte {
	switch {
	case v.IsAbsent():
		return append(buf, 0)
	case v.IsExtant():
		return append(buf, 1)
	case v.IsBool():
		var b byte
		if v.AsBool() {
			b = 1
		}
		return append(buf, 2, b)
	case v.IsNum():
		nb := hashNumBytes(v)
		buf = append(buf, 3)
		return append(buf, nb[:]...)
	case v.IsText():
		buf = append(buf, 4)
		return append(buf, v.AsText()...)
	case v.IsData():
		buf = append(buf, 5)
		return append(buf, v.AsData()...)
	case v.IsRecord():
		buf = append(buf, 6)
		for _, it := range v.RecordItems() {
			buf = appendHashBytes(buf, it.Key)
			buf = appendHashBytes(buf, it.Val)
		}
		return buf
	default:
		panic("value: Hash on unrecognized Value")
	}
}

// Hash returns v's 128-bit MurmurHash3 digest (seed 0), the hash hamt's
// HashTrieMap/HashTrieSet index every key by.
func Hash(v Value) (h1, h2 uint64) {
	return murmur3.Hash128(0, appendHashBytes(nil, v))
}

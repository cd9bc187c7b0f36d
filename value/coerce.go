package value

import (
	"math"

	"github.com/coreholds/amtval/internal/f16"
)

// Number is the set of destination types the generic coercion matrix
// (IsValidAs, As, To) can target: every numeric Value variant except F16,
// which is not a native Go numeric kind and is coerced through the
// dedicated IsValidAsF16/AsF16/ToF16 functions below instead.
type Number interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64 | ~int8 | ~int16 | ~int32 | ~int64 | ~float32 | ~float64
}

// numView decomposes v's numeric payload into a signed/unsigned integer
// form plus a widened float64 form, so the coercion matrix below can
// dispatch on the destination type without re-deriving the source's kind
// each time. Panics unless v IsNum.
func (v Value) numView() (isFloat, signed bool, u uint64, i int64, f float64) {
	bits := v.rawBits()
	switch v.TypeTag() {
	case TagU8:
		u = bits & 0xFF
		f = float64(u)
	case TagU16:
		u = bits & 0xFFFF
		f = float64(u)
	case TagU32:
		u = bits & 0xFFFFFFFF
		f = float64(u)
	case TagU64:
		u = bits
		f = float64(u)
	case TagI8:
		i = int64(int8(bits))
		signed = true
		f = float64(i)
	case TagI16:
		i = int64(int16(bits))
		signed = true
		f = float64(i)
	case TagI32:
		i = int64(int32(bits))
		signed = true
		f = float64(i)
	case TagI64:
		i = int64(bits)
		signed = true
		f = float64(i)
	case TagF16:
		isFloat = true
		f = f16.ToFloat64(f16.F16(bits))
	case TagF32:
		isFloat = true
		f = float64(math.Float32frombits(uint32(bits)))
	case TagF64:
		isFloat = true
		f = math.Float64frombits(bits)
	default:
		panic("value: numView on non-numeric Value")
	}
	return
}

func destIsFloatKind[T Number]() (isF32, isF64 bool) {
	switch any(*new(T)).(type) {
	case float32:
		return true, false
	case float64:
		return false, true
	default:
		return false, false
	}
}

func rangeOK[T Number](signed bool, u uint64, i int64) bool {
	switch any(*new(T)).(type) {
	case uint8:
		if signed {
			return i >= 0 && uint64(i) <= math.MaxUint8
		}
		return u <= math.MaxUint8
	case uint16:
		if signed {
			return i >= 0 && uint64(i) <= math.MaxUint16
		}
		return u <= math.MaxUint16
	case uint32:
		if signed {
			return i >= 0 && uint64(i) <= math.MaxUint32
		}
		return u <= math.MaxUint32
	case uint64:
		if signed {
			return i >= 0
		}
		return true
	case int8:
		if signed {
			return i >= math.MinInt8 && i <= math.MaxInt8
		}
		return u <= math.MaxInt8
	case int16:
		if signed {
			return i >= math.MinInt16 && i <= math.MaxInt16
		}
		return u <= math.MaxInt16
	case int32:
		if signed {
			return i >= math.MinInt32 && i <= math.MaxInt32
		}
		return u <= math.MaxInt32
	case int64:
		if signed {
			return true
		}
		return u <= math.MaxInt64
	default:
		return false
	}
}

func floatFitsIntType[T Number](f float64) bool {
	switch any(*new(T)).(type) {
	case uint8:
		return f >= 0 && f <= math.MaxUint8
	case uint16:
		return f >= 0 && f <= math.MaxUint16
	case uint32:
		return f >= 0 && f <= math.MaxUint32
	case uint64:
		return f >= 0 && f < math.MaxUint64
	case int8:
		return f >= math.MinInt8 && f <= math.MaxInt8
	case int16:
		return f >= math.MinInt16 && f <= math.MaxInt16
	case int32:
		return f >= math.MinInt32 && f <= math.MaxInt32
	case int64:
		return f >= math.MinInt64 && f < math.MaxInt64
	default:
		return true
	}
}

func convertInt[T Number](signed bool, u uint64, i int64) T {
	if signed {
		return T(i)
	}
	return T(u)
}

// IsValidAs reports whether v's numeric value is exactly representable as
// T, per spec.md §4.4's per-pair coercion policy: integer destinations use
// range tests, float-from-integer destinations require the float's back
// conversion to equal the original integer, and integer-from-float (and
// float-from-float) destinations require an exact round trip through T.
func IsValidAs[T Number](v Value) bool {
	isFloat, signed, u, i, f := v.numView()
	isF32, isF64 := destIsFloatKind[T]()

	switch {
	case isF32 && isFloat:
		if math.IsNaN(f) {
			return true
		}
		t := float32(f)
		return float64(t) == f
	case isF32:
		if signed {
			return int64(float32(i)) == i
		}
		return uint64(float32(u)) == u
	case isF64 && isFloat:
		return true // widening f16/f32->f64, or f64->f64, is always exact (NaN included)
	case isF64:
		if signed {
			return int64(float64(i)) == i
		}
		return uint64(float64(u)) == u
	case isFloat:
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
		if !floatFitsIntType[T](f) {
			return false
		}
		t := T(f)
		return float64(t) == f
	default:
		return rangeOK[T](signed, u, i)
	}
}

// As performs a best-effort, truncating coercion of v's numeric value to T,
// making no validity guarantee. Panics unless v IsNum.
func As[T Number](v Value) T {
	isFloat, signed, u, i, f := v.numView()
	isF32, isF64 := destIsFloatKind[T]()
	switch {
	case isF32:
		if isFloat {
			return T(float32(f))
		}
		if signed {
			return T(float32(i))
		}
		return T(float32(u))
	case isF64:
		if isFloat {
			return T(f)
		}
		if signed {
			return T(float64(i))
		}
		return T(float64(u))
	case isFloat:
		return T(f)
	default:
		return convertInt[T](signed, u, i)
	}
}

// To performs a lossless coercion of v's numeric value to T, returning
// (zero, false) if IsValidAs[T](v) would be false.
func To[T Number](v Value) (T, bool) {
	if !IsValidAs[T](v) {
		var zero T
		return zero, false
	}
	return As[T](v), true
}

// IsValidAsF16 reports whether v's numeric value round-trips exactly
// through f16.F16.
func IsValidAsF16(v Value) bool {
	_, signed, u, i, f := v.numView()
	isFloat := v.TypeTag() == TagF16 || v.TypeTag() == TagF32 || v.TypeTag() == TagF64
	var src float64
	if isFloat {
		src = f
	} else if signed {
		src = float64(i)
	} else {
		src = float64(u)
	}
	if math.IsNaN(src) {
		return true
	}
	h := f16.FromFloat64(src)
	return f16.ToFloat64(h) == src
}

// AsF16 truncates v's numeric value to f16.F16, with no validity guarantee.
func AsF16(v Value) f16.F16 {
	isFloat, signed, u, i, f := v.numView()
	if isFloat {
		return f16.FromFloat64(f)
	}
	if signed {
		return f16.FromFloat64(float64(i))
	}
	return f16.FromFloat64(float64(u))
}

// ToF16 losslessly coerces v to f16.F16, or (0, false) if not exact.
func ToF16(v Value) (f16.F16, bool) {
	if !IsValidAsF16(v) {
		return 0, false
	}
	return AsF16(v), true
}

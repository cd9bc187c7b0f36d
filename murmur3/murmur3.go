// Package murmur3 implements MurmurHash3 x64-128, the hash every key into
// hamt.HashTrieMap and hamt.HashTrieSet is run through (spec.md §6). The
// streaming Hasher below is a bit-for-bit port of the reference
// implementation's Murmur3Hasher (lib/core/src/murmur3.rs): same k1/k2/size/
// have state machine, same constants, same finalization mixing, so that a
// digest computed incrementally (across any split of the same bytes into
// multiple Write calls) always matches the one-shot Hash128 of the whole
// buffer.
package murmur3

import "math/bits"

const (
	c1 = 0x87c37b91114253d5
	c2 = 0x4cf5ad432745937f
)

// Hasher accumulates bytes into a 128-bit MurmurHash3 x64 digest. The zero
// value is a Hasher with seed 0, identical to New(0).
type Hasher struct {
	h1, h2 uint64
	k1, k2 uint64
	size   uint64
	have   int
}

// New returns a Hasher seeded with seed, matching Murmur3Hasher::new.
func New(seed uint32) *Hasher {
	return &Hasher{h1: uint64(seed), h2: uint64(seed)}
}

func fmix64(k uint64) uint64 {
	k ^= k >> 33
	k *= 0xff51afd7ed558ccd
	k ^= k >> 33
	k *= 0xc4ceb9fe1a85ec53
	k ^= k >> 33
	return k
}

func loadLE64(b []byte) uint64 {
	var v uint64
	for i := 0; i < 8; i++ {
		v |= uint64(b[i]) << (8 * i)
	}
	return v
}

// u8to64LE packs the first n (< 8) bytes of b, little-endian, into the low
// bytes of a uint64 — the Go equivalent of the reference's u8to64_le helper.
func u8to64LE(b []byte, n int) uint64 {
	var out uint64
	for i := 0; i < n; i++ {
		out |= uint64(b[i]) << (8 * i)
	}
	return out
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Write absorbs bytes into the running digest. Write never returns an error;
// it satisfies io.Writer's signature for convenience but n always equals
// len(p).
func (m *Hasher) Write(p []byte) (n int, err error) {
	n = len(p)
	offset := 0
	remain := len(p)

	if m.have < 8 {
		if m.have == 0 && remain >= 8 {
			m.k1 = loadLE64(p[offset:])
			m.have += 8
			offset += 8
			remain -= 8
		} else {
			need := 8 - m.have
			take := min(need, remain)
			m.k1 |= u8to64LE(p[offset:offset+take], take) << uint(8*m.have)
			m.have += take
			offset += take
			remain -= take
		}
	}
	if m.have >= 8 && m.have < 16 {
		if m.have == 8 && remain >= 8 {
			m.k2 = loadLE64(p[offset:])
			m.have += 8
			offset += 8
			remain -= 8
		} else {
			need := 16 - m.have
			take := min(need, remain)
			m.k2 |= u8to64LE(p[offset:offset+take], take) << uint(8*(m.have-8))
			m.have += take
			offset += take
			remain -= take
		}
	}
	if m.have == 16 {
		for {
			m.k1 *= c1
			m.k1 = bits.RotateLeft64(m.k1, 31)
			m.k1 *= c2
			m.h1 ^= m.k1

			m.h1 = bits.RotateLeft64(m.h1, 27)
			m.h1 += m.h2
			m.h1 = m.h1*5 + 0x52dce729

			m.k2 *= c2
			m.k2 = bits.RotateLeft64(m.k2, 33)
			m.k2 *= c1
			m.h2 ^= m.k2

			m.h2 = bits.RotateLeft64(m.h2, 31)
			m.h2 += m.h1
			m.h2 = m.h2*5 + 0x38495ab5

			m.size += 16
			if remain >= 16 {
				m.k1 = loadLE64(p[offset:])
				offset += 8
				m.k2 = loadLE64(p[offset:])
				offset += 8
				remain -= 16
			} else {
				break
			}
		}

		switch {
		case remain >= 8:
			m.k1 = loadLE64(p[offset:])
			if remain > 8 {
				m.k2 = u8to64LE(p[offset+8:], remain-8)
			} else {
				m.k2 = 0
			}
		case remain > 0:
			m.k1 = u8to64LE(p[offset:], remain)
			m.k2 = 0
		default:
			m.k1 = 0
			m.k2 = 0
		}
		m.have = remain
	}
	return n, nil
}

// Sum128 finalizes the digest accumulated so far without mutating the
// Hasher's state, so further Write calls (or repeated Sum128 calls) remain
// valid.
func (m *Hasher) Sum128() (h1, h2 uint64) {
	h1, h2 = m.h1, m.h2
	if m.have != 0 {
		if m.have > 8 {
			k2 := m.k2
			k2 *= c2
			k2 = bits.RotateLeft64(k2, 33)
			k2 *= c1
			h2 ^= k2
		}
		k1 := m.k1
		k1 *= c1
		k1 = bits.RotateLeft64(k1, 31)
		k1 *= c2
		h1 ^= k1
	}

	size := m.size + uint64(m.have)
	h1 ^= size
	h2 ^= size

	h1 += h2
	h2 += h1

	h1 = fmix64(h1)
	h2 = fmix64(h2)

	h1 += h2
	h2 += h1

	return h1, h2
}

// Sum64 returns the first 64 bits (h1) of the digest Sum128 would return,
// likewise without mutating the Hasher's state.
func (m *Hasher) Sum64() uint64 {
	h1, _ := m.Sum128()
	return h1
}

// Hash128 is the one-shot convenience form of New(seed).Write(data).Sum128().
func Hash128(seed uint32, data []byte) (h1, h2 uint64) {
	h := New(seed)
	h.Write(data)
	return h.Sum128()
}

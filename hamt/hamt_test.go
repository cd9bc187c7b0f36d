package hamt

import (
	"testing"

	"github.com/coreholds/amtval/alloc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newArenaHold(t *testing.T) alloc.Hold {
	t.Helper()
	slab := alloc.NewSlab(8<<20, 64)
	return alloc.NewPool(slab, alloc.DefaultPoolUnit)
}

func TestInsertGetLenOverRange(t *testing.T) {
	hold := newArenaHold(t)
	m := NewHashTrieMap[uint64, uint64](hold, UintHash())

	const n = 1 << 15
	for i := uint64(0); i < n; i++ {
		_, had, err := m.Insert(i, i)
		require.NoError(t, err)
		assert.False(t, had)
	}
	assert.Equal(t, n, m.Len())

	for i := uint64(0); i < n; i++ {
		v, ok := m.Get(i)
		require.True(t, ok, "missing key %d", i)
		assert.Equal(t, i, v)
	}
	_, ok := m.Get(n)
	assert.False(t, ok)
}

func TestReinsertReturnsPreviousValueAndLenUnchanged(t *testing.T) {
	hold := newArenaHold(t)
	m := NewHashTrieMap[uint64, int64](hold, UintHash())

	const n = 1 << 12
	for i := uint64(0); i < n; i++ {
		_, had, err := m.Insert(i, int64(i))
		require.NoError(t, err)
		require.False(t, had)
	}
	require.Equal(t, n, m.Len())

	for i := uint64(0); i < n; i++ {
		prev, had, err := m.Insert(i, -int64(i))
		require.NoError(t, err)
		require.True(t, had)
		assert.Equal(t, int64(i), prev)
	}
	assert.Equal(t, n, m.Len())

	for i := uint64(0); i < n; i++ {
		v, ok := m.Get(i)
		require.True(t, ok)
		assert.Equal(t, -int64(i), v)
	}
}

func TestRemoveCollapsesAndUpdatesLen(t *testing.T) {
	hold := newArenaHold(t)
	m := NewHashTrieMap[uint64, uint64](hold, UintHash())

	const n = 2000
	for i := uint64(0); i < n; i++ {
		_, _, err := m.Insert(i, i*2)
		require.NoError(t, err)
	}

	for i := uint64(0); i < n; i += 2 {
		v, had, err := m.Remove(i)
		require.NoError(t, err)
		require.True(t, had)
		assert.Equal(t, i*2, v)
	}
	assert.Equal(t, n/2, m.Len())

	for i := uint64(0); i < n; i++ {
		v, ok := m.Get(i)
		if i%2 == 0 {
			assert.False(t, ok)
		} else {
			require.True(t, ok)
			assert.Equal(t, i*2, v)
		}
	}

	_, had, err := m.Remove(n + 1000)
	require.NoError(t, err)
	assert.False(t, had)
}

// collidingKey always hashes its top bits the same regardless of its
// value (i>>2), forcing every key through the same handful of branch
// levels and into collision-list paths, while still comparing equal only
// when the underlying ints match — spec.md §8's collision stress scenario.
type collidingKey struct{ i uint64 }

func collidingHash() HashFunc[collidingKey] {
	return func(k collidingKey) (uint64, uint64) {
		return k.i >> 2, k.i
	}
}

func TestHashCollisionForcesCollisionListPaths(t *testing.T) {
	hold := newArenaHold(t)
	m := NewHashTrieMap[collidingKey, uint64](hold, collidingHash())

	const n = 500
	for i := uint64(0); i < n; i++ {
		_, had, err := m.Insert(collidingKey{i}, i)
		require.NoError(t, err)
		assert.False(t, had)
	}
	assert.Equal(t, n, m.Len())

	for i := uint64(0); i < n; i++ {
		v, ok := m.Get(collidingKey{i})
		require.True(t, ok)
		assert.Equal(t, i, v)
	}

	_, had, err := m.Remove(collidingKey{250})
	require.NoError(t, err)
	require.True(t, had)
	assert.Equal(t, n-1, m.Len())
	_, ok := m.Get(collidingKey{250})
	assert.False(t, ok)
}

func TestIteratorVisitsEveryKeyOnceAndCloneIsIndependent(t *testing.T) {
	hold := newArenaHold(t)
	m := NewHashTrieMap[uint64, uint64](hold, UintHash())

	const n = 300
	want := make(map[uint64]uint64, n)
	for i := uint64(0); i < n; i++ {
		_, _, err := m.Insert(i, i*10)
		require.NoError(t, err)
		want[i] = i * 10
	}

	it := m.Iter()
	got := make(map[uint64]uint64, n)
	for {
		k, v, ok := it.Next()
		if !ok {
			break
		}
		got[k] = v
	}
	assert.Equal(t, want, got)

	it2 := m.Iter()
	k0, _, ok := it2.Next()
	require.True(t, ok)
	clone := it2.Clone()

	restFromOriginal := map[uint64]uint64{k0: want[k0]}
	for {
		k, v, ok := it2.Next()
		if !ok {
			break
		}
		restFromOriginal[k] = v
	}
	assert.Equal(t, want, restFromOriginal)

	restFromClone := map[uint64]uint64{k0: want[k0]}
	for {
		k, v, ok := clone.Next()
		if !ok {
			break
		}
		restFromClone[k] = v
	}
	assert.Equal(t, want, restFromClone)
}

func TestHashTrieSet(t *testing.T) {
	hold := newArenaHold(t)
	s := NewHashTrieSet[uint64](hold, UintHash())

	inserted, err := s.Insert(7)
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = s.Insert(7)
	require.NoError(t, err)
	assert.False(t, inserted)
	assert.Equal(t, 1, s.Len())
	assert.True(t, s.Contains(7))
	assert.False(t, s.Contains(8))

	removed, err := s.Remove(7)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, 0, s.Len())
}

func TestTextHashKeyedMap(t *testing.T) {
	hold := newArenaHold(t)
	m := NewHashTrieMap[string, int](hold, TextHash())

	for i, s := range []string{"a", "bb", "ccc", "a much longer key that promotes out of line"} {
		_, had, err := m.Insert(s, i)
		require.NoError(t, err)
		assert.False(t, had)
	}
	v, ok := m.Get("ccc")
	require.True(t, ok)
	assert.Equal(t, 2, v)
}

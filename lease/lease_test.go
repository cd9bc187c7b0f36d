package lease

import (
	"testing"

	"github.com/coreholds/amtval/alloc"
	"github.com/stretchr/testify/require"
)

func TestBoxRoundTrip(t *testing.T) {
	hold := alloc.NewGoHold(alloc.NewGoHeap(0))
	b, err := NewBox(hold, 42)
	require.NoError(t, err)
	require.Equal(t, 42, *b.Deref())
	*b.Deref() = 7
	require.Equal(t, 7, *b.Deref())
	require.Same(t, hold, b.Hold())
	b.Free()
}

func TestBufPushGrows(t *testing.T) {
	hold := alloc.NewGoHold(alloc.NewGoHeap(0))
	buf, err := NewBufWithCapacity[int](hold, 1)
	require.NoError(t, err)
	for i := 0; i < 32; i++ {
		require.NoError(t, buf.Push(i))
	}
	require.EqualValues(t, 32, buf.Len())
	require.GreaterOrEqual(t, buf.Cap(), buf.Len())
	for i := 0; i < 32; i++ {
		require.Equal(t, i, buf.Get(uintptr(i)))
	}
	buf.Free()
}

func TestBufFromSliceAndStow(t *testing.T) {
	src := alloc.NewGoHold(alloc.NewGoHeap(0))
	dst := alloc.NewGoHold(alloc.NewGoHeap(0))
	buf, err := NewBufFromSlice(src, []int{1, 2, 3})
	require.NoError(t, err)

	moved, err := buf.Stow(dst)
	require.NoError(t, err)
	require.Equal(t, []int{1, 2, 3}, moved.Slice())
	require.Same(t, dst, moved.Hold())
	moved.Free()
}

func TestStringRoundTrip(t *testing.T) {
	hold := alloc.NewGoHold(alloc.NewGoHeap(0))
	s, err := NewString(hold, "hello, world")
	require.NoError(t, err)
	require.Equal(t, "hello, world", s.String())
	require.True(t, s.Valid())
	s.Free()
}

func TestCStringRejectsInteriorNul(t *testing.T) {
	hold := alloc.NewGoHold(alloc.NewGoHeap(0))
	_, err := NewCString(hold, []byte("a\x00b"))
	require.ErrorIs(t, err, ErrInteriorNul)

	c, err := NewCString(hold, []byte("abc"))
	require.NoError(t, err)
	require.Equal(t, []byte("abc"), c.Bytes())
	c.Free()
}

func TestHardSoftUpgrade(t *testing.T) {
	hold := alloc.NewGoHold(alloc.NewGoHeap(0))
	h, err := NewHard(hold, "shared")
	require.NoError(t, err)
	require.EqualValues(t, 1, h.StrongCount())

	weak := h.Downgrade()
	require.EqualValues(t, 1, h.WeakCount())

	clone := h.Clone()
	require.EqualValues(t, 2, h.StrongCount())

	upgraded, ok := weak.Upgrade()
	require.True(t, ok)
	require.Equal(t, "shared", *upgraded.Deref())
	require.EqualValues(t, 3, h.StrongCount())

	h.Drop()
	clone.Drop()
	upgraded.Drop()
	weak.Drop()
}

func TestSoftUpgradeFailsAfterLastHardDrops(t *testing.T) {
	hold := alloc.NewGoHold(alloc.NewGoHeap(0))
	h, err := NewHard(hold, 99)
	require.NoError(t, err)
	weak := h.Downgrade()
	h.Drop()

	_, ok := weak.Upgrade()
	require.False(t, ok)
	weak.Drop()
}

func TestRawRoundTrip(t *testing.T) {
	hold := alloc.NewGoHold(alloc.NewGoHeap(0))
	r, err := NewRaw(hold, "raw")
	require.NoError(t, err)
	require.Equal(t, "raw", *r.Deref())
	r.Free()
}

func TestPtrRoundTrip(t *testing.T) {
	hold := alloc.NewGoHold(alloc.NewGoHeap(0))
	p, err := NewPtr(hold, 5)
	require.NoError(t, err)
	require.Equal(t, 5, *p.Deref())
	*p.Deref() = 6
	require.Equal(t, 6, *p.Deref())
	require.Same(t, hold, p.Hold())

	dst := alloc.NewGoHold(alloc.NewGoHeap(0))
	moved, err := p.Stow(dst)
	require.NoError(t, err)
	require.Equal(t, 6, *moved.Deref())
	require.Same(t, dst, moved.Hold())
	moved.Free()
}

func TestMutClonesAlias(t *testing.T) {
	hold := alloc.NewGoHold(alloc.NewGoHeap(0))
	m, err := NewMut(hold, 1)
	require.NoError(t, err)
	alias := m.Clone()
	*alias.Deref() = 2
	require.Equal(t, 2, *m.Deref())
	m.Free()
}

func TestRefSharesStrongCountAndUpgradeRef(t *testing.T) {
	hold := alloc.NewGoHold(alloc.NewGoHeap(0))
	h, err := NewHard(hold, "shared")
	require.NoError(t, err)
	weak := h.Downgrade()

	ref, ok := weak.UpgradeRef()
	require.True(t, ok)
	require.Equal(t, "shared", *ref.Deref())
	require.EqualValues(t, 2, h.StrongCount())

	clone := ref.Clone()
	require.EqualValues(t, 3, h.StrongCount())

	h.Drop()
	ref.Drop()
	clone.Drop()
	weak.Drop()
}

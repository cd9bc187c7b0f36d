package murmur3

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// assertHashes checks that every possible split point of data into two
// Write calls produces the same digest, mirroring murmur3.rs's test helper:
// the algorithm's incremental state machine must be insensitive to how the
// input is chunked.
func assertHashes(t *testing.T, data []byte, seed uint32, wantH1, wantH2 uint64) {
	t.Helper()
	n := len(data)
	for i := 0; i <= n; i++ {
		h := New(seed)
		h.Write(data[:i])
		h.Write(data[i:])
		h1, h2 := h.Sum128()
		require.Equalf(t, wantH1, h1, "split at %d: h1", i)
		require.Equalf(t, wantH2, h2, "split at %d: h2", i)
	}
}

func TestOfficialVectors(t *testing.T) {
	assertHashes(t, []byte(""), 0, 0, 0)
	assertHashes(t, []byte("a"), 0, 0x85555565f6597889, 0xe6b53a48510e895a)
	assertHashes(t, []byte("ab"), 0, 0x938b11ea16ed1b2e, 0xe65ea7019b52d4ad)
	assertHashes(t, []byte("abc"), 0, 0xb4963f3f3fad7867, 0x3ba2744126ca2d52)
	assertHashes(t, []byte("abcd"), 0, 0xb87bb7d64656cd4f, 0xf2003e886073e875)
	assertHashes(t, []byte("abcde"), 0, 0x2036d091f496bbb8, 0xc5c7eea04bcfec8c)
	assertHashes(t, []byte("abcdef"), 0, 0xe47d86bfaca3bf55, 0xb07109993321845c)
	assertHashes(t, []byte("abcdefg"), 0, 0xa6cd2f9fc09ee499, 0x1c3aa23ab155bbb6)
	assertHashes(t, []byte("abcdefgh"), 0, 0xcc8a0ab037ef8c02, 0x48890d60eb6940a1)
	assertHashes(t, []byte("abcdefghi"), 0, 0x0547c0cff13c7964, 0x79b53df5b741e033)
	assertHashes(t, []byte("abcdefghij"), 0, 0xb6c15b0d772f8c99, 0xa24d85dc8c651ac9)
	assertHashes(t, []byte("abcdefghijk"), 0, 0xa895d0b8df789d02, 0xbb7c31e2455ae771)
	assertHashes(t, []byte("abcdefghijkl"), 0, 0x8ef39bb1e67ae194, 0x1f9e303272ff621c)
	assertHashes(t, []byte("abcdefghijklm"), 0, 0x1648288da7c0fa73, 0x2e657bff0de7cc7f)
	assertHashes(t, []byte("abcdefghijklmn"), 0, 0x91d094a7f5c375e0, 0xee096027d26a3324)
	assertHashes(t, []byte("abcdefghijklmno"), 0, 0x8abe2451890c2ffb, 0x6a548c2d9c962a61)
	assertHashes(t, []byte("abcdefghijklmnop"), 0, 0xc4ca3ca3224cb723, 0x4333d695b331eb1a)
	assertHashes(t, []byte("abcdefghijklmnopqrstuvwxyz"), 0, 0x749c9d7e516f4aa9, 0xe9ad9c89b6a7d529)
	assertHashes(t, []byte("ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"), 0, 0x7a5bcce072ef9a8a, 0xcca67f5136a9c57f)
	assertHashes(t, []byte("ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"), 0, 0x49991f325fd73e3b, 0xcbadd23ca9ceb9bc)
	assertHashes(t, []byte("ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"), 0, 0x1a88e52f0752fee5, 0x76e327368cf3ee7c)

	assertHashes(t, []byte("The quick brown fox jumps over the lazy dog"), 0x9747b28c, 0x738a7f3bd2633121, 0xf94573727ec016e5)
	assertHashes(t, []byte("The quick brown fox jumps over the lazy cog"), 0x9747b28c, 0xb8cd57b070826194, 0x556f455b5873f83c)
	assertHashes(t, []byte("THE QUICK BROWN FOX JUMPS OVER THE LAZY DOG"), 0x9747b28c, 0x788990e327d08a6c, 0xcfa49c7867cbd28a)
	assertHashes(t, []byte("THE QUICK BROWN FOX JUMPS OVER THE LAZY COG"), 0x9747b28c, 0x5efbd2529a4d90dd, 0xa0be246654d0ea71)
	assertHashes(t, []byte("the quick brown fox jumps over the lazy dog"), 0x9747b28c, 0xcd212cbd5168faa8, 0xd0748b96c8803ef3)
	assertHashes(t, []byte("the quick brown fox jumps over the lazy cog"), 0x9747b28c, 0x27aa16dd5a9a4c71, 0xe02bfd8321a7901f)

	assertHashes(t, []byte("The quick brown fox jumps over the lazy dog"), 0, 0xe34bbc7bbc071b6c, 0x7a433ca9c49a9347)
	assertHashes(t, []byte("The quick brown fox jumps over the lazy cog"), 0, 0x658ca970ff85269a, 0x43fee3eaa68e5c3e)
	assertHashes(t, []byte("THE QUICK BROWN FOX JUMPS OVER THE LAZY DOG"), 0, 0xa6201801320afbc9, 0x82396cb0607a3c4b)
	assertHashes(t, []byte("THE QUICK BROWN FOX JUMPS OVER THE LAZY COG"), 0, 0x6a766cc894e6b024, 0x0b01bb9244d48f6c)
	assertHashes(t, []byte("the quick brown fox jumps over the lazy dog"), 0, 0xbce4e9fee2ad86b3, 0x0ae2e374406e4b7f)
	assertHashes(t, []byte("the quick brown fox jumps over the lazy cog"), 0, 0x2f09fe5672502232, 0x86758d1ebb24d124)

	assertHashes(t, []byte("The quick brown fox jumps over the lazy dog"), 0xc58f1a7b, 0xac1f40eed20c9dff, 0x38935c52deeff526)
	assertHashes(t, []byte("The quick brown fox jumps over the lazy cog"), 0xc58f1a7b, 0xf93938845b5c938c, 0xcdbc8bd57a4fb264)
	assertHashes(t, []byte("THE QUICK BROWN FOX JUMPS OVER THE LAZY DOG"), 0xc58f1a7b, 0xf249f1d9f383e469, 0x34fe27053ace80f4)
	assertHashes(t, []byte("THE QUICK BROWN FOX JUMPS OVER THE LAZY COG"), 0xc58f1a7b, 0x081f1cba1cb41bd8, 0x6ff1e44e62a8813e)
	assertHashes(t, []byte("the quick brown fox jumps over the lazy dog"), 0xc58f1a7b, 0x88ec96021b8af702, 0x640843c82e69c55c)
	assertHashes(t, []byte("the quick brown fox jumps over the lazy cog"), 0xc58f1a7b, 0x9219b4b672765148, 0x81736d9f9f008440)
}

func TestHash128MatchesStreaming(t *testing.T) {
	data := []byte("abcdefghijklmnopqrstuvwxyz")
	h1, h2 := Hash128(0, data)
	want1, want2 := New(0).sumAfterWriting(data)
	require.Equal(t, want1, h1)
	require.Equal(t, want2, h2)
}

func (m *Hasher) sumAfterWriting(p []byte) (uint64, uint64) {
	m.Write(p)
	return m.Sum128()
}

package hamt

import "github.com/coreholds/amtval/alloc"

// HashTrieSet is a HashTrieMap[K, struct{}] specialized to the set API,
// matching spec.md's HashTrieSet alongside HashTrieMap.
type HashTrieSet[K comparable] struct {
	m *HashTrieMap[K, struct{}]
}

// NewHashTrieSet returns an empty HashTrieSet holding its nodes in hold.
func NewHashTrieSet[K comparable](hold alloc.Hold, hashFn HashFunc[K]) *HashTrieSet[K] {
	return &HashTrieSet[K]{m: NewHashTrieMap[K, struct{}](hold, hashFn)}
}

// Len returns the number of elements.
func (s *HashTrieSet[K]) Len() int { return s.m.Len() }

// Contains reports whether key is a member.
func (s *HashTrieSet[K]) Contains(key K) bool { return s.m.ContainsKey(key) }

// Insert adds key, returning true iff it was not already present.
func (s *HashTrieSet[K]) Insert(key K) (bool, error) {
	_, had, err := s.m.Insert(key, struct{}{})
	if err != nil {
		return false, err
	}
	return !had, nil
}

// Remove deletes key, returning true iff it was present.
func (s *HashTrieSet[K]) Remove(key K) (bool, error) {
	_, had, err := s.m.Remove(key)
	return had, err
}

// SetIterator walks a HashTrieSet's elements in trie-traversal order.
type SetIterator[K comparable] struct {
	inner *Iterator[K, struct{}]
}

// Next returns the next element, or ok=false once exhausted.
func (it *SetIterator[K]) Next() (key K, ok bool) {
	key, _, ok = it.inner.Next()
	return key, ok
}

// Clone returns an independent copy of it.
func (it *SetIterator[K]) Clone() *SetIterator[K] {
	return &SetIterator[K]{inner: it.inner.Clone()}
}

// Iter returns a SetIterator over s's elements.
func (s *HashTrieSet[K]) Iter() *SetIterator[K] {
	return &SetIterator[K]{inner: s.m.Iter()}
}

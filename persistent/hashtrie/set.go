package hashtrie

import (
	"github.com/npillmayer/collections/persistent"
)

// Set is a persistent hash set of values of type T.
// Sets are values: Added and Removed return new sets and leave the receiver unchanged.
// Sets have to be created by one of the constructors, as they need a Hasher.
type Set[T any] struct {
	root   *snode[T]
	size   int
	hasher Hasher[T]
}

// NewSet creates an empty set for values hashed by h.
func NewSet[T any](h Hasher[T]) Set[T] {
	assertThat(h != nil, "set needs a hasher")
	return Set[T]{hasher: h}
}

// EmptySet creates an empty set of comparable values, using the built-in hasher.
func EmptySet[T comparable]() Set[T] {
	return NewSet[T](NewHasher[T]())
}

// SetOf creates a set of comparable values.
func SetOf[T comparable](values ...T) Set[T] {
	return SetFrom(NewHasher[T](), persistent.SliceCursor(values))
}

// SetFrom creates a set from all values remaining in a cursor.
func SetFrom[T any](h Hasher[T], source persistent.Cursor[T]) Set[T] {
	s := NewSet[T](h)
	for source.HasNext() {
		v, _ := source.Next()
		s = s.Added(v)
	}
	return s
}

// Size returns the number of elements of s.
func (s Set[T]) Size() int {
	return s.size
}

// IsEmpty is true for sets without elements.
func (s Set[T]) IsEmpty() bool {
	return s.size == 0
}

// Contains is true if value is an element of s.
func (s Set[T]) Contains(value T) bool {
	if s.root == nil {
		return false
	}
	return s.root.contains(value, s.hasher.Hash(value), 0, s.hasher)
}

// Head returns the first element of s in iteration order.
func (s Set[T]) Head() (T, bool) {
	if s.root == nil {
		var none T
		return none, false
	}
	return s.root.first(), true
}

// Next returns the element following value in iteration order. value need not be an
// element of s.
func (s Set[T]) Next(value T) (T, bool) {
	if s.root == nil {
		var none T
		return none, false
	}
	return s.root.next(value, s.hasher.Hash(value), 0, s.hasher)
}

// Added returns a copy of s with value added. If value is already an element, s is
// returned unchanged.
func (s Set[T]) Added(value T) Set[T] {
	hash := s.hasher.Hash(value)
	if s.root == nil {
		root := (&snode[T]{}).withBranch(branch(hash, 0), sleaf[T]{item: value})
		return Set[T]{root: root, size: 1, hasher: s.hasher}
	}
	root, ok := s.root.added(value, hash, 0, s.hasher)
	if !ok {
		return s
	}
	return Set[T]{root: root, size: s.size + 1, hasher: s.hasher}
}

// Removed returns a copy of s without value. If value is not an element, s is returned
// unchanged.
func (s Set[T]) Removed(value T) Set[T] {
	if s.root == nil {
		return s
	}
	root, ok := s.root.removed(value, s.hasher.Hash(value), 0, s.hasher)
	if !ok {
		return s
	}
	if root.isEmpty() {
		root = nil
	}
	return Set[T]{root: root, size: s.size - 1, hasher: s.hasher}
}

// Add is an in-place mutation, which persistent sets do not support.
// It always returns an error wrapping persistent.ErrUnsupportedMutation; use Added instead.
func (s Set[T]) Add(value T) error {
	return persistent.Unsupported("hashtrie.Set.Add")
}

// Remove is an in-place mutation, which persistent sets do not support.
// It always returns an error wrapping persistent.ErrUnsupportedMutation; use Removed instead.
func (s Set[T]) Remove(value T) error {
	return persistent.Unsupported("hashtrie.Set.Remove")
}

// Clear is an in-place mutation, which persistent sets do not support.
// It always returns an error wrapping persistent.ErrUnsupportedMutation.
func (s Set[T]) Clear() error {
	return persistent.Unsupported("hashtrie.Set.Clear")
}

// Cursor returns a cursor over the elements of s in iteration order.
func (s Set[T]) Cursor() persistent.Cursor[T] {
	return newSetCursor(s)
}

// Values returns all elements of s in iteration order.
func (s Set[T]) Values() []T {
	return persistent.Collect(s.Cursor())
}

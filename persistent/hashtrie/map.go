package hashtrie

import (
	"github.com/npillmayer/collections/persistent"
)

// Map is a persistent hash map from keys K to values V.
// Maps are values: Updated and Removed return new maps and leave the receiver
// unchanged. The zero Map is not usable, maps have to be created by one of the
// constructors, as they need a Hasher.
type Map[K, V any] struct {
	root   *mnode[K, V]
	size   int
	hasher Hasher[K]
}

// NewMap creates an empty map for keys hashed by h.
func NewMap[K, V any](h Hasher[K]) Map[K, V] {
	assertThat(h != nil, "map needs a hasher")
	return Map[K, V]{hasher: h}
}

// EmptyMap creates an empty map for comparable keys, using the built-in hasher.
func EmptyMap[K comparable, V any]() Map[K, V] {
	return NewMap[K, V](NewHasher[K]())
}

// MapOf creates a map for comparable keys from a list of entries. Later entries win over
// earlier ones with the same key.
func MapOf[K comparable, V any](entries ...persistent.Entry[K, V]) Map[K, V] {
	return MapFrom(NewHasher[K](), persistent.SliceCursor(entries))
}

// MapFrom creates a map from all entries remaining in a cursor.
func MapFrom[K, V any](h Hasher[K], source persistent.Cursor[persistent.Entry[K, V]]) Map[K, V] {
	m := NewMap[K, V](h)
	for source.HasNext() {
		e, _ := source.Next()
		m = m.Updated(e.Key, e.Value)
	}
	return m
}

// MapFromGo creates a map from a Go map.
func MapFromGo[K comparable, V any](gomap map[K]V) Map[K, V] {
	m := EmptyMap[K, V]()
	for k, v := range gomap {
		m = m.Updated(k, v)
	}
	return m
}

// Size returns the number of entries in m.
func (m Map[K, V]) Size() int {
	return m.size
}

// IsEmpty is true for maps without entries.
func (m Map[K, V]) IsEmpty() bool {
	return m.size == 0
}

// Get returns the value associated with key. If key is not found, the zero value for
// type V will be returned, together with found=false.
func (m Map[K, V]) Get(key K) (V, bool) {
	if m.root == nil {
		var none V
		return none, false
	}
	return m.root.get(key, m.hasher.Hash(key), 0, m.hasher)
}

// ContainsKey is true if key is present in m.
func (m Map[K, V]) ContainsKey(key K) bool {
	_, found := m.Get(key)
	return found
}

// Head returns the first entry of m in iteration order.
func (m Map[K, V]) Head() (persistent.Entry[K, V], bool) {
	if m.root == nil {
		return persistent.Entry[K, V]{}, false
	}
	return m.root.first(), true
}

// Next returns the entry following key in iteration order. key need not be present in
// m, which lets clients resume an iteration after the map has changed.
// Head and Next together visit every entry of an unchanged map exactly once, in the
// order of Cursor.
func (m Map[K, V]) Next(key K) (persistent.Entry[K, V], bool) {
	if m.root == nil {
		return persistent.Entry[K, V]{}, false
	}
	return m.root.next(key, m.hasher.Hash(key), 0, m.hasher)
}

// Updated returns a copy of m with key associated with value.
// If key already maps to an identical value, m is returned unchanged.
func (m Map[K, V]) Updated(key K, value V) Map[K, V] {
	hash := m.hasher.Hash(key)
	if m.root == nil {
		root := (&mnode[K, V]{}).withBranch(branch(hash, 0), mleaf[K, V]{
			entry: persistent.Entry[K, V]{Key: key, Value: value},
		})
		return Map[K, V]{root: root, size: 1, hasher: m.hasher}
	}
	root, ch := m.root.updated(key, hash, value, 0, m.hasher)
	switch ch {
	case unchanged:
		return m
	case added:
		return Map[K, V]{root: root, size: m.size + 1, hasher: m.hasher}
	}
	return Map[K, V]{root: root, size: m.size, hasher: m.hasher}
}

// Removed returns a copy of m without key. If key is not present, m is returned
// unchanged.
func (m Map[K, V]) Removed(key K) Map[K, V] {
	if m.root == nil {
		return m
	}
	root, ok := m.root.removed(key, m.hasher.Hash(key), 0, m.hasher)
	if !ok {
		return m
	}
	if root.isEmpty() {
		root = nil
	}
	return Map[K, V]{root: root, size: m.size - 1, hasher: m.hasher}
}

// Put is an in-place mutation, which persistent maps do not support.
// It always returns an error wrapping persistent.ErrUnsupportedMutation; use Updated instead.
func (m Map[K, V]) Put(key K, value V) error {
	return persistent.Unsupported("hashtrie.Map.Put")
}

// Remove is an in-place mutation, which persistent maps do not support.
// It always returns an error wrapping persistent.ErrUnsupportedMutation; use Removed instead.
func (m Map[K, V]) Remove(key K) error {
	return persistent.Unsupported("hashtrie.Map.Remove")
}

// Clear is an in-place mutation, which persistent maps do not support.
// It always returns an error wrapping persistent.ErrUnsupportedMutation.
func (m Map[K, V]) Clear() error {
	return persistent.Unsupported("hashtrie.Map.Clear")
}

// Cursor returns a cursor over the entries of m in iteration order.
func (m Map[K, V]) Cursor() persistent.Cursor[persistent.Entry[K, V]] {
	return newMapCursor(m)
}

// KeyCursor returns a cursor over the keys of m in iteration order.
func (m Map[K, V]) KeyCursor() persistent.Cursor[K] {
	return persistent.KeyCursor(m.Cursor())
}

// ValueCursor returns a cursor over the values of m in iteration order.
func (m Map[K, V]) ValueCursor() persistent.Cursor[V] {
	return persistent.ValueCursor(m.Cursor())
}

// Entries returns all entries of m in iteration order.
func (m Map[K, V]) Entries() []persistent.Entry[K, V] {
	return persistent.Collect(m.Cursor())
}

package hashtrie

import (
	"fmt"
	"strings"

	"github.com/npillmayer/collections/persistent"
	"github.com/npillmayer/collections/persistent/internal/cow"
)

// ArrayMap is a small persistent map, held in a flat array of entries in insertion order.
// Lookups are linear scans. Tries use array maps as knots for keys with identical hashes,
// but they may as well be used on their own for maps of a handful of entries.
type ArrayMap[K, V any] struct {
	hasher  Hasher[K]
	entries []persistent.Entry[K, V]
}

// NewArrayMap creates an empty array map, comparing keys with h.
func NewArrayMap[K, V any](h Hasher[K]) ArrayMap[K, V] {
	assertThat(h != nil, "array map needs a hasher")
	return ArrayMap[K, V]{hasher: h}
}

// ArrayMapOf creates an array map for comparable keys from a list of entries.
func ArrayMapOf[K comparable, V any](entries ...persistent.Entry[K, V]) ArrayMap[K, V] {
	a := NewArrayMap[K, V](NewHasher[K]())
	for _, e := range entries {
		a = a.Updated(e.Key, e.Value)
	}
	return a
}

// Size returns the number of entries.
func (a ArrayMap[K, V]) Size() int {
	return len(a.entries)
}

// IsEmpty is true for maps without entries.
func (a ArrayMap[K, V]) IsEmpty() bool {
	return len(a.entries) == 0
}

// Get returns the value for key, if present.
func (a ArrayMap[K, V]) Get(key K) (V, bool) {
	if i := a.indexOf(key); i >= 0 {
		return a.entries[i].Value, true
	}
	var none V
	return none, false
}

// ContainsKey is true if key is present.
func (a ArrayMap[K, V]) ContainsKey(key K) bool {
	return a.indexOf(key) >= 0
}

// Head returns the first entry.
func (a ArrayMap[K, V]) Head() (persistent.Entry[K, V], bool) {
	if len(a.entries) == 0 {
		return persistent.Entry[K, V]{}, false
	}
	return a.entries[0], true
}

// Next returns the entry following key. If key is not present, Next returns the first entry.
func (a ArrayMap[K, V]) Next(key K) (persistent.Entry[K, V], bool) {
	i := a.indexOf(key) + 1
	if i >= len(a.entries) {
		return persistent.Entry[K, V]{}, false
	}
	return a.entries[i], true
}

// Updated returns a copy of a with key associated with value. If key already
// maps to an identical value, a is returned unchanged.
func (a ArrayMap[K, V]) Updated(key K, value V) ArrayMap[K, V] {
	cow, _ := a.updated(key, value)
	return cow
}

// Removed returns a copy of a without key.
func (a ArrayMap[K, V]) Removed(key K) ArrayMap[K, V] {
	cow, _ := a.removed(key)
	return cow
}

// Cursor returns a cursor over the entries in insertion order.
func (a ArrayMap[K, V]) Cursor() persistent.Cursor[persistent.Entry[K, V]] {
	return persistent.SliceCursor(a.entries)
}

// Entries returns a copy of the entries in insertion order.
func (a ArrayMap[K, V]) Entries() []persistent.Entry[K, V] {
	return cow.Sub(a.entries, 0, len(a.entries))
}

func (a ArrayMap[K, V]) String() string {
	var sb strings.Builder
	sb.WriteRune('{')
	for i, e := range a.entries {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(fmt.Sprintf("%v:%v", e.Key, e.Value))
	}
	sb.WriteRune('}')
	return sb.String()
}

func (a ArrayMap[K, V]) indexOf(key K) int {
	for i, e := range a.entries {
		if a.hasher.Equal(e.Key, key) {
			return i
		}
	}
	return -1
}

func (a ArrayMap[K, V]) updated(key K, value V) (ArrayMap[K, V], change) {
	e := persistent.Entry[K, V]{Key: key, Value: value}
	if i := a.indexOf(key); i >= 0 {
		if persistent.Identical(a.entries[i].Value, value) {
			return a, unchanged
		}
		return ArrayMap[K, V]{hasher: a.hasher, entries: cow.Replaced(a.entries, i, e)}, replaced
	}
	return ArrayMap[K, V]{hasher: a.hasher, entries: cow.Inserted(a.entries, len(a.entries), e)}, added
}

func (a ArrayMap[K, V]) removed(key K) (ArrayMap[K, V], bool) {
	i := a.indexOf(key)
	if i < 0 {
		return a, false
	}
	return ArrayMap[K, V]{hasher: a.hasher, entries: cow.Deleted(a.entries, i, i+1)}, true
}

package hashtrie

import (
	"fmt"
	"strings"

	"github.com/npillmayer/collections/persistent"
	"github.com/npillmayer/collections/persistent/internal/cow"
)

// ArraySet is a small persistent set, held in a flat array of values in insertion order.
// Lookups are linear scans. Tries use array sets as knots for values with identical
// hashes.
type ArraySet[T any] struct {
	hasher Hasher[T]
	items  []T
}

// NewArraySet creates an empty array set, comparing values with h.
func NewArraySet[T any](h Hasher[T]) ArraySet[T] {
	assertThat(h != nil, "array set needs a hasher")
	return ArraySet[T]{hasher: h}
}

// ArraySetOf creates an array set of comparable values.
func ArraySetOf[T comparable](values ...T) ArraySet[T] {
	a := NewArraySet[T](NewHasher[T]())
	for _, v := range values {
		a = a.Added(v)
	}
	return a
}

// Size returns the number of values.
func (a ArraySet[T]) Size() int {
	return len(a.items)
}

// IsEmpty is true for sets without values.
func (a ArraySet[T]) IsEmpty() bool {
	return len(a.items) == 0
}

// Contains is true if value is an element of a.
func (a ArraySet[T]) Contains(value T) bool {
	return a.indexOf(value) >= 0
}

// Head returns the first value.
func (a ArraySet[T]) Head() (T, bool) {
	if len(a.items) == 0 {
		var none T
		return none, false
	}
	return a.items[0], true
}

// Next returns the value following value. If value is not an element, Next returns the
// first value.
func (a ArraySet[T]) Next(value T) (T, bool) {
	i := a.indexOf(value) + 1
	if i >= len(a.items) {
		var none T
		return none, false
	}
	return a.items[i], true
}

// Added returns a copy of a with value added. If value is already an element,
// a is returned unchanged.
func (a ArraySet[T]) Added(value T) ArraySet[T] {
	cow, _ := a.added(value)
	return cow
}

// Removed returns a copy of a without value.
func (a ArraySet[T]) Removed(value T) ArraySet[T] {
	cow, _ := a.removed(value)
	return cow
}

// Cursor returns a cursor over the values in insertion order.
func (a ArraySet[T]) Cursor() persistent.Cursor[T] {
	return persistent.SliceCursor(a.items)
}

// Values returns a copy of the values in insertion order.
func (a ArraySet[T]) Values() []T {
	return cow.Sub(a.items, 0, len(a.items))
}

func (a ArraySet[T]) String() string {
	var sb strings.Builder
	sb.WriteRune('{')
	for i, v := range a.items {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(fmt.Sprintf("%v", v))
	}
	sb.WriteRune('}')
	return sb.String()
}

func (a ArraySet[T]) indexOf(value T) int {
	for i, v := range a.items {
		if a.hasher.Equal(v, value) {
			return i
		}
	}
	return -1
}

func (a ArraySet[T]) added(value T) (ArraySet[T], bool) {
	if a.indexOf(value) >= 0 {
		return a, false
	}
	return ArraySet[T]{hasher: a.hasher, items: cow.Inserted(a.items, len(a.items), value)}, true
}

func (a ArraySet[T]) removed(value T) (ArraySet[T], bool) {
	i := a.indexOf(value)
	if i < 0 {
		return a, false
	}
	return ArraySet[T]{hasher: a.hasher, items: cow.Deleted(a.items, i, i+1)}, true
}

package persistent

import (
	"reflect"

	"golang.org/x/exp/constraints"
)

// Entry is a key/value pair, as held by maps and yielded by their cursors.
type Entry[K, V any] struct {
	Key   K
	Value V
}

// E is a shortcut to create an entry.
func E[K, V any](key K, value V) Entry[K, V] {
	return Entry[K, V]{Key: key, Value: value}
}

// Compare is a 3-way comparison for ordered types. It returns -1 if a < b, +1 if a > b
// and 0 otherwise.
func Compare[K constraints.Ordered](a, b K) int {
	if a < b {
		return -1
	} else if a > b {
		return 1
	}
	return 0
}

// Identical reports if a and b are the same comparable value. Values of non-comparable
// types are never identical. Collections use this to detect updates which would not
// change anything.
func Identical[V any](a, b V) bool {
	x, y := any(a), any(b)
	if x == nil || y == nil {
		return x == nil && y == nil
	}
	vx, vy := reflect.ValueOf(x), reflect.ValueOf(y)
	if vx.Type() != vy.Type() || !vx.Comparable() || !vy.Comparable() {
		return false
	}
	return x == y
}

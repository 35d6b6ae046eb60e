package btree

import (
	"fmt"
	"strconv"
	"strings"
)

// --- Slot ------------------------------------------------------------------

// slot holds a step of a path: a page plus the index of a child (inner pages) or of an
// entry (leafs).
type slot[K, V any] struct {
	node  *xnode[K, V]
	index int
}

func (s slot[K, V]) String() string {
	return strconv.Itoa(s.index) + "@" + s.node.String()
}

// --- Path ------------------------------------------------------------------

// slotPath is a list of slots from the root down to a leaf.
type slotPath[K, V any] []slot[K, V]

func (path slotPath[K, V]) String() string {
	var sb = strings.Builder{}
	sb.WriteRune('[')
	for _, s := range path {
		sb.WriteString(fmt.Sprintf("⟨%s⟩", s))
	}
	sb.WriteRune(']')
	return sb.String()
}

func (path slotPath[K, V]) last() slot[K, V] {
	if len(path) == 0 {
		return slot[K, V]{}
	}
	return path[len(path)-1]
}

func (path slotPath[K, V]) dropLast() slotPath[K, V] {
	if len(path) == 0 {
		return path
	}
	return path[:len(path)-1]
}

// foldR applies function f on pairs (parent,child) of slots of path.
// Application starts from the right ('R'), which corresponds to the bottom-most page of
// the path. zero is the slot to apply as `child` in the rightmost call of f(parent,child).
// If path is empty, zero will be returned, otherwise the value returned from the final
// call to f.
func (path slotPath[K, V]) foldR(f func(slot[K, V], slot[K, V]) slot[K, V], zero slot[K, V]) slot[K, V] {
	r := zero
	for i := len(path) - 1; i >= 0; i-- {
		r = f(path[i], r)
	}
	return r
}

package stree

import (
	"fmt"
	"strings"
)

// slot is a step of a path: a page plus the index of a child (inner pages) or of an
// entry (leafs).
type slot[T any] struct {
	node  *xnode[T]
	index int
}

type slotPath[T any] []slot[T]

func (path slotPath[T]) String() string {
	var sb = strings.Builder{}
	sb.WriteRune('[')
	for _, s := range path {
		sb.WriteString(fmt.Sprintf("⟨%d@%s⟩", s.index, s.node))
	}
	sb.WriteRune(']')
	return sb.String()
}

func (path slotPath[T]) last() slot[T] {
	if len(path) == 0 {
		return slot[T]{}
	}
	return path[len(path)-1]
}

func (path slotPath[T]) dropLast() slotPath[T] {
	if len(path) == 0 {
		return path
	}
	return path[:len(path)-1]
}

// foldR applies f on pairs (parent,child) of slots of path, starting with the
// bottom-most page and zero as the first child.
func (path slotPath[T]) foldR(f func(slot[T], slot[T]) slot[T], zero slot[T]) slot[T] {
	r := zero
	for i := len(path) - 1; i >= 0; i-- {
		r = f(path[i], r)
	}
	return r
}

// locate descends from root to the leaf holding position index. index may be equal to
// the size of the tree, addressing the position after the last element.
func locate[T any](root *xnode[T], index int) slotPath[T] {
	var path slotPath[T]
	node := root
	for !node.IsLeaf() {
		var i int
		i, index = node.childIndex(index)
		path = append(path, slot[T]{node: node, index: i})
		node = node.children[i]
	}
	path = append(path, slot[T]{node: node, index: index})
	tracer().Debugf("locate: slot path = %s", path)
	return path
}

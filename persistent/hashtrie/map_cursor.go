package hashtrie

import (
	"fmt"

	"github.com/npillmayer/collections/persistent"
)

// mapCursor iterates over a map with an explicit stack of trie positions.
// If the cursor is not at the end, the top of the stack addresses the entry Next would
// return; at the end, depth is -1.
type mapCursor[K, V any] struct {
	m     Map[K, V]
	stack [maxDepth + 1]mframe[K, V] // trie nodes plus a knot
	depth int
	index int // number of entries before the cursor
}

// mframe is a position within a node, or within a knot if node is nil.
type mframe[K, V any] struct {
	node    *mnode[K, V]
	entries []persistent.Entry[K, V]
	index   int
}

func (f *mframe[K, V]) arity() int {
	if f.node == nil {
		return len(f.entries)
	}
	return f.node.arity()
}

func (f *mframe[K, V]) current() persistent.Entry[K, V] {
	if f.node == nil {
		return f.entries[f.index]
	}
	return f.node.entry(nthBranch(f.node.branches(), f.index))
}

var _ persistent.Cursor[persistent.Entry[int, int]] = &mapCursor[int, int]{}

func newMapCursor[K, V any](m Map[K, V]) *mapCursor[K, V] {
	c := &mapCursor[K, V]{m: m, depth: -1}
	if m.root != nil {
		c.depth = 0
		c.stack[0] = mframe[K, V]{node: m.root}
		c.descend(false)
	}
	return c
}

func (c *mapCursor[K, V]) IsEmpty() bool {
	return c.depth < 0
}

func (c *mapCursor[K, V]) Head() (persistent.Entry[K, V], bool) {
	if c.depth < 0 {
		return persistent.Entry[K, V]{}, false
	}
	return c.stack[c.depth].current(), true
}

func (c *mapCursor[K, V]) Step() {
	if c.depth >= 0 {
		c.advance()
	}
}

// Skip moves the cursor entry by entry, which makes it linear in count.
func (c *mapCursor[K, V]) Skip(count int) {
	for ; count > 0 && c.HasNext(); count-- {
		c.Step()
	}
	for ; count < 0 && c.HasPrevious(); count++ {
		c.Previous()
	}
}

func (c *mapCursor[K, V]) HasNext() bool {
	return c.depth >= 0
}

func (c *mapCursor[K, V]) NextIndex() int {
	return c.index
}

func (c *mapCursor[K, V]) Next() (persistent.Entry[K, V], bool) {
	e, ok := c.Head()
	if ok {
		c.advance()
	}
	return e, ok
}

func (c *mapCursor[K, V]) HasPrevious() bool {
	return c.index > 0
}

func (c *mapCursor[K, V]) PreviousIndex() int {
	return c.index - 1
}

func (c *mapCursor[K, V]) Previous() (persistent.Entry[K, V], bool) {
	if c.index == 0 {
		return persistent.Entry[K, V]{}, false
	}
	c.retreat()
	return c.stack[c.depth].current(), true
}

func (c *mapCursor[K, V]) String() string {
	return fmt.Sprintf("cursor(%d/%d, depth=%d)", c.index, c.m.size, c.depth)
}

// descend follows the branch the top frame points to, until it arrives at an entry.
// Frames pushed are positioned at their first or last branch.
func (c *mapCursor[K, V]) descend(last bool) {
	for {
		f := &c.stack[c.depth]
		if f.node == nil {
			return
		}
		b := nthBranch(f.node.branches(), f.index)
		var next mframe[K, V]
		switch f.node.kind(b) {
		case single:
			return
		case subtree:
			next = mframe[K, V]{node: f.node.child(b)}
		case knot:
			next = mframe[K, V]{entries: f.node.knot(b).entries}
		}
		if last {
			next.index = next.arity() - 1
		}
		c.depth++
		c.stack[c.depth] = next
	}
}

func (c *mapCursor[K, V]) advance() {
	c.index++
	for ; c.depth >= 0; c.depth-- {
		f := &c.stack[c.depth]
		if f.index+1 < f.arity() {
			f.index++
			c.descend(false)
			return
		}
	}
}

func (c *mapCursor[K, V]) retreat() {
	c.index--
	if c.depth < 0 { // at the end
		c.depth = 0
		c.stack[0] = mframe[K, V]{node: c.m.root, index: c.m.root.arity() - 1}
		c.descend(true)
		return
	}
	for ; c.depth >= 0; c.depth-- {
		f := &c.stack[c.depth]
		if f.index > 0 {
			f.index--
			c.descend(true)
			return
		}
	}
	panic(fmt.Sprintf("hashtrie: cursor lost track of position %d", c.index))
}

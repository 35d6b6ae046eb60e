package hashtrie

import (
	"fmt"

	"github.com/npillmayer/collections/persistent"
)

// setCursor iterates over a set the way mapCursor iterates over maps.
type setCursor[T any] struct {
	s     Set[T]
	stack [maxDepth + 1]sframe[T]
	depth int
	index int
}

type sframe[T any] struct {
	node  *snode[T]
	items []T // knot, if node is nil
	index int
}

func (f *sframe[T]) arity() int {
	if f.node == nil {
		return len(f.items)
	}
	return f.node.arity()
}

func (f *sframe[T]) current() T {
	if f.node == nil {
		return f.items[f.index]
	}
	return f.node.item(nthBranch(f.node.branches(), f.index))
}

var _ persistent.Cursor[int] = &setCursor[int]{}

func newSetCursor[T any](s Set[T]) *setCursor[T] {
	c := &setCursor[T]{s: s, depth: -1}
	if s.root != nil {
		c.depth = 0
		c.stack[0] = sframe[T]{node: s.root}
		c.descend(false)
	}
	return c
}

func (c *setCursor[T]) IsEmpty() bool {
	return c.depth < 0
}

func (c *setCursor[T]) Head() (T, bool) {
	if c.depth < 0 {
		var none T
		return none, false
	}
	return c.stack[c.depth].current(), true
}

func (c *setCursor[T]) Step() {
	if c.depth >= 0 {
		c.advance()
	}
}

// Skip is linear in count.
func (c *setCursor[T]) Skip(count int) {
	for ; count > 0 && c.HasNext(); count-- {
		c.Step()
	}
	for ; count < 0 && c.HasPrevious(); count++ {
		c.Previous()
	}
}

func (c *setCursor[T]) HasNext() bool {
	return c.depth >= 0
}

func (c *setCursor[T]) NextIndex() int {
	return c.index
}

func (c *setCursor[T]) Next() (T, bool) {
	v, ok := c.Head()
	if ok {
		c.advance()
	}
	return v, ok
}

func (c *setCursor[T]) HasPrevious() bool {
	return c.index > 0
}

func (c *setCursor[T]) PreviousIndex() int {
	return c.index - 1
}

func (c *setCursor[T]) Previous() (T, bool) {
	if c.index == 0 {
		var none T
		return none, false
	}
	c.retreat()
	return c.stack[c.depth].current(), true
}

func (c *setCursor[T]) String() string {
	return fmt.Sprintf("cursor(%d/%d, depth=%d)", c.index, c.s.size, c.depth)
}

func (c *setCursor[T]) descend(last bool) {
	for {
		f := &c.stack[c.depth]
		if f.node == nil {
			return
		}
		b := nthBranch(f.node.branches(), f.index)
		var next sframe[T]
		switch f.node.kind(b) {
		case single:
			return
		case subtree:
			next = sframe[T]{node: f.node.child(b)}
		case knot:
			next = sframe[T]{items: f.node.knot(b).items}
		}
		if last {
			next.index = next.arity() - 1
		}
		c.depth++
		c.stack[c.depth] = next
	}
}

func (c *setCursor[T]) advance() {
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

func (c *setCursor[T]) retreat() {
	c.index--
	if c.depth < 0 {
		c.depth = 0
		c.stack[0] = sframe[T]{node: c.s.root, index: c.s.root.arity() - 1}
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

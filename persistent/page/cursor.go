package page

import (
	"fmt"

	"github.com/npillmayer/collections/persistent"
)

// Node is a page which gives access to its children and entries. Both page-tree
// collections implement it for their page types, which lets them share Cursor.
type Node[E any] interface {
	Page
	Child(i int) Node[E] // i-th child of an inner page
	Item(i int) E        // i-th entry of a leaf
}

// Cursor is a positional cursor over the entries of a page tree. It implements
// persistent.Cursor.
//
// The cursor tracks the path from the root to the current leaf with an explicit stack.
// Stepping is amortized constant time, Skip descends the tree by page sizes and is
// logarithmic.
type Cursor[E any] struct {
	root  Node[E]
	size  int
	index int        // index of next entry
	stack []frame[E] // root first; top frame always is a leaf
}

type frame[E any] struct {
	node  Node[E]
	index int
}

var _ persistent.Cursor[int] = (*Cursor[int])(nil)

// NewCursor creates a cursor over the tree rooted at root, positioned before the entry
// at index. root may be nil, denoting an empty tree. index is clamped to [0…size].
func NewCursor[E any](root Node[E], index int) *Cursor[E] {
	c := &Cursor[E]{root: root}
	if root != nil {
		c.size = root.Size()
	}
	c.seek(index)
	return c
}

// IsEmpty is part of interface persistent.Cursor.
func (c *Cursor[E]) IsEmpty() bool {
	return c.index >= c.size
}

// Head is part of interface persistent.Cursor.
func (c *Cursor[E]) Head() (E, bool) {
	if c.index >= c.size {
		var none E
		return none, false
	}
	return c.top().node.Item(c.top().index), true
}

// Step is part of interface persistent.Cursor.
func (c *Cursor[E]) Step() {
	if c.index < c.size {
		c.advance()
	}
}

// Skip is part of interface persistent.Cursor.
func (c *Cursor[E]) Skip(count int) {
	if count == 1 {
		c.Step()
		return
	}
	if count != 0 {
		c.seek(c.index + count)
	}
}

// HasNext is part of interface persistent.Cursor.
func (c *Cursor[E]) HasNext() bool {
	return c.index < c.size
}

// NextIndex is part of interface persistent.Cursor.
func (c *Cursor[E]) NextIndex() int {
	return c.index
}

// Next is part of interface persistent.Cursor.
func (c *Cursor[E]) Next() (E, bool) {
	e, ok := c.Head()
	if ok {
		c.advance()
	}
	return e, ok
}

// HasPrevious is part of interface persistent.Cursor.
func (c *Cursor[E]) HasPrevious() bool {
	return c.index > 0
}

// PreviousIndex is part of interface persistent.Cursor.
func (c *Cursor[E]) PreviousIndex() int {
	return c.index - 1
}

// Previous is part of interface persistent.Cursor.
func (c *Cursor[E]) Previous() (E, bool) {
	if c.index == 0 {
		var none E
		return none, false
	}
	c.retreat()
	return c.top().node.Item(c.top().index), true
}

// Seek positions the cursor before the entry at index, clamped to [0…size].
func (c *Cursor[E]) Seek(index int) {
	c.seek(index)
}

func (c *Cursor[E]) String() string {
	return fmt.Sprintf("cursor(%d/%d, depth=%d)", c.index, c.size, len(c.stack))
}

// --- Internals -------------------------------------------------------------

func (c *Cursor[E]) top() *frame[E] {
	return &c.stack[len(c.stack)-1]
}

// seek rebuilds the stack from the root. If index == size, the cursor rests after the
// last entry of the rightmost leaf.
func (c *Cursor[E]) seek(index int) {
	c.index = min(max(0, index), c.size)
	c.stack = c.stack[:0]
	if c.size == 0 {
		return
	}
	i := c.index
	node := c.root
	for !node.IsLeaf() {
		j, arity := 0, node.Arity()
		for ; j < arity-1; j++ {
			s := node.Child(j).Size()
			if i < s {
				break
			}
			i -= s
		}
		c.stack = append(c.stack, frame[E]{node: node, index: j})
		node = node.Child(j)
	}
	c.stack = append(c.stack, frame[E]{node: node, index: i})
	tracer().Debugf("cursor positioned at %d of %d, depth=%d", c.index, c.size, len(c.stack))
}

func (c *Cursor[E]) advance() {
	c.index++
	leaf := c.top()
	leaf.index++
	if leaf.index < leaf.node.Arity() || c.index == c.size {
		return
	}
	c.stack = c.stack[:len(c.stack)-1]
	for len(c.stack) > 0 {
		f := c.top()
		if f.index+1 < f.node.Arity() {
			f.index++
			c.descendFirst(f.node.Child(f.index))
			return
		}
		c.stack = c.stack[:len(c.stack)-1]
	}
	panic(fmt.Sprintf("page.Cursor: lost track of position %d in tree of size %d", c.index, c.size))
}

func (c *Cursor[E]) retreat() {
	c.index--
	leaf := c.top()
	if leaf.index > 0 {
		leaf.index--
		return
	}
	c.stack = c.stack[:len(c.stack)-1]
	for len(c.stack) > 0 {
		f := c.top()
		if f.index > 0 {
			f.index--
			c.descendLast(f.node.Child(f.index))
			return
		}
		c.stack = c.stack[:len(c.stack)-1]
	}
	panic(fmt.Sprintf("page.Cursor: lost track of position %d in tree of size %d", c.index, c.size))
}

func (c *Cursor[E]) descendFirst(node Node[E]) {
	for !node.IsLeaf() {
		c.stack = append(c.stack, frame[E]{node: node, index: 0})
		node = node.Child(0)
	}
	c.stack = append(c.stack, frame[E]{node: node, index: 0})
}

func (c *Cursor[E]) descendLast(node Node[E]) {
	for !node.IsLeaf() {
		last := node.Arity() - 1
		c.stack = append(c.stack, frame[E]{node: node, index: last})
		node = node.Child(last)
	}
	c.stack = append(c.stack, frame[E]{node: node, index: node.Arity() - 1})
}

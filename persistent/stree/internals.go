package stree

/*
Remarks:
--------

- Positions are the only keys for navigating the tree. For an inner page, knots[i] is the
  number of elements in children[0…i]; children[i] covers positions knots[i-1]…knots[i]-1
  (with knots[-1] = 0).

- Pages are never modified after having been linked into a tree; 'cow' marks fresh
  copies. Identity keys are never consulted for navigation.

*/

import (
	"fmt"
	"sort"
	"strings"

	"github.com/npillmayer/collections/persistent/internal/cow"
	"github.com/npillmayer/collections/persistent/page"
)

// Entry is an element of a sequence together with its identity key.
type Entry[T any] struct {
	Key   []byte
	Value T
}

type xnode[T any] struct {
	entries  []Entry[T]  // elements of a leaf, in sequence order
	knots    []int       // cumulative counts of an inner page, len(children)-1
	children []*xnode[T] // nil for leafs
	size     int         // number of elements in this sub-tree
}

func newLeaf[T any](entries []Entry[T]) *xnode[T] {
	return &xnode[T]{entries: entries, size: len(entries)}
}

// newInner creates an inner page and computes its knots.
func newInner[T any](children []*xnode[T]) *xnode[T] {
	assertThat(len(children) > 0, "inner page needs children")
	n := &xnode[T]{children: children, knots: make([]int, len(children)-1)}
	for i, ch := range children {
		n.size += ch.size
		if i < len(n.knots) {
			n.knots[i] = n.size
		}
	}
	return n
}

func (node *xnode[T]) IsLeaf() bool {
	return node.children == nil
}

func (node *xnode[T]) Arity() int {
	if node.IsLeaf() {
		return len(node.entries)
	}
	return len(node.children)
}

func (node *xnode[T]) Size() int {
	return node.size
}

func (node *xnode[T]) Child(i int) page.Node[Entry[T]] {
	return node.children[i]
}

func (node *xnode[T]) Item(i int) Entry[T] {
	return node.entries[i]
}

var _ page.Node[Entry[int]] = &xnode[int]{}

func (node *xnode[T]) String() string {
	if node == nil {
		return "⟨⟩"
	}
	var sb strings.Builder
	if node.IsLeaf() {
		sb.WriteRune('[')
		for i, e := range node.entries {
			if i > 0 {
				sb.WriteRune(' ')
			}
			sb.WriteString(fmt.Sprintf("%v", e.Value))
		}
		sb.WriteRune(']')
		return sb.String()
	}
	sb.WriteRune('⟨')
	for i, k := range node.knots {
		if i > 0 {
			sb.WriteRune('|')
		}
		sb.WriteString(fmt.Sprint(k))
	}
	sb.WriteString(fmt.Sprintf("⟩#%d", node.size))
	return sb.String()
}

// --- Positions -------------------------------------------------------------

// childIndex returns the index of the child covering position index, together with
// the position of index within the child. For index == size the last child is returned.
func (node *xnode[T]) childIndex(index int) (int, int) {
	i := sort.Search(len(node.knots), func(j int) bool {
		return node.knots[j] > index
	})
	return i, index - node.offset(i)
}

// offset is the position of the first element of child i.
func (node *xnode[T]) offset(i int) int {
	if i == 0 {
		return 0
	}
	return node.knots[i-1]
}

func (node *xnode[T]) entryAt(index int) Entry[T] {
	for !node.IsLeaf() {
		var i int
		i, index = node.childIndex(index)
		node = node.children[i]
	}
	return node.entries[index]
}

// --- Copy-on-write modifications -------------------------------------------

func (node *xnode[T]) withReplacedEntry(at int, e Entry[T]) *xnode[T] {
	assertThat(at < len(node.entries), "entry index out of range: %d ≥ %d", at, len(node.entries))
	return newLeaf(cow.Replaced(node.entries, at, e))
}

func (node *xnode[T]) withInsertedEntry(at int, e Entry[T]) *xnode[T] {
	assertThat(at <= len(node.entries), "entry index out of range: %d > %d", at, len(node.entries))
	return newLeaf(cow.Inserted(node.entries, at, e))
}

func (node *xnode[T]) withDeletedEntry(at int) *xnode[T] {
	assertThat(at < len(node.entries), "entry index out of range: %d ≥ %d", at, len(node.entries))
	return newLeaf(cow.Deleted(node.entries, at, at+1))
}

func (node *xnode[T]) withChild(i int, child *xnode[T]) *xnode[T] {
	return newInner(cow.Replaced(node.children, i, child))
}

func (node *xnode[T]) withSplitChild(i int, left, right *xnode[T]) *xnode[T] {
	return newInner(cow.Inserted(cow.Replaced(node.children, i, left), i+1, right))
}

func (node *xnode[T]) withoutChild(i int) *xnode[T] {
	return newInner(cow.Deleted(node.children, i, i+1))
}

// split cuts a page into two halves. Knots are re-computed for both halves.
func (node *xnode[T]) split() (*xnode[T], *xnode[T]) {
	assertThat(page.CanSplit(node), "page of arity %d cannot be split", node.Arity())
	at := page.SplitPoint(node.Arity())
	if node.IsLeaf() {
		return newLeaf(cow.Sub(node.entries, 0, at)), newLeaf(cow.Sub(node.entries, at, len(node.entries)))
	}
	return newInner(cow.Sub(node.children, 0, at)), newInner(cow.Sub(node.children, at, len(node.children)))
}

func (node *xnode[T]) splitRoot() *xnode[T] {
	left, right := node.split()
	tracer().Debugf("split root %s", node)
	return newInner([]*xnode[T]{left, right})
}

func concat[T any](left, right *xnode[T]) *xnode[T] {
	if left.IsLeaf() {
		return newLeaf(cow.Concat(left.entries, right.entries))
	}
	return newInner(cow.Concat(left.children, right.children))
}

// withMergedChild merges child i with its left sibling (right sibling for the leftmost
// child), splitting the result again if it is too wide.
func (node *xnode[T]) withMergedChild(i int, child *xnode[T], policy page.Policy) *xnode[T] {
	lo := max(0, i-1)
	left, right := node.children[lo], node.children[lo+1]
	if lo == i {
		left = child
	} else {
		right = child
	}
	if left.IsLeaf() != right.IsLeaf() {
		return node.withChild(i, child)
	}
	merged := concat(left, right)
	tracer().Debugf("merged pages %d and %d into %s", lo, lo+1, merged)
	if policy.PageShouldSplit(merged) && page.CanSplit(merged) {
		l, r := merged.split()
		return newInner(cow.Replaced(cow.Replaced(node.children, lo, l), lo+1, r))
	}
	return newInner(cow.Inserted(cow.Deleted(node.children, lo, lo+2), lo, merged))
}

func (node *xnode[T]) collapsed() *xnode[T] {
	for node != nil && !node.IsLeaf() && len(node.children) == 1 {
		node = node.children[0]
	}
	if node != nil && node.size == 0 {
		return nil
	}
	return node
}

// drop removes the first k elements, 0 < k < node.size.
func (node *xnode[T]) drop(k int) *xnode[T] {
	if node.IsLeaf() {
		return newLeaf(cow.Sub(node.entries, k, len(node.entries)))
	}
	i, k := node.childIndex(k)
	children := cow.Sub(node.children, i, len(node.children))
	if k > 0 {
		children[0] = children[0].drop(k)
	}
	if len(children) == 1 {
		return children[0]
	}
	return newInner(children)
}

// take keeps the first k elements, 0 < k < node.size.
func (node *xnode[T]) take(k int) *xnode[T] {
	if node.IsLeaf() {
		return newLeaf(cow.Sub(node.entries, 0, k))
	}
	i, k := node.childIndex(k - 1)
	children := cow.Sub(node.children, 0, i+1)
	if k+1 < children[i].size {
		children[i] = children[i].take(k + 1)
	}
	if len(children) == 1 {
		return children[0]
	}
	return newInner(children)
}

// lookup searches for an entry with identity key, starting at position start and
// wrapping around at the end of the sequence.
func (node *xnode[T]) lookup(start int, key []byte, compare func(a, b []byte) int) (int, bool) {
	if node == nil {
		return -1, false
	}
	start = min(max(start, 0), node.size)
	c := page.NewCursor[Entry[T]](node, start)
	for c.HasNext() {
		index := c.NextIndex()
		if e, _ := c.Next(); compare(e.Key, key) == 0 {
			return index, true
		}
	}
	c.Seek(0)
	for c.NextIndex() < start {
		index := c.NextIndex()
		if e, _ := c.Next(); compare(e.Key, key) == 0 {
			return index, true
		}
	}
	return -1, false
}

// --- Re-balancing on the way up --------------------------------------------

func cloneSeam[T any](parent, child slot[T]) slot[T] {
	return slot[T]{node: parent.node.withChild(parent.index, child.node), index: parent.index}
}

func splitAndClone[T any](policy page.Policy) func(slot[T], slot[T]) slot[T] {
	return func(parent, child slot[T]) slot[T] {
		if policy.PageShouldSplit(child.node) && page.CanSplit(child.node) {
			left, right := child.node.split()
			tracer().Debugf("split child %d of %s", parent.index, parent.node)
			return slot[T]{node: parent.node.withSplitChild(parent.index, left, right), index: parent.index}
		}
		return cloneSeam(parent, child)
	}
}

func balance[T any](policy page.Policy) func(slot[T], slot[T]) slot[T] {
	return func(parent, child slot[T]) slot[T] {
		p, i := parent.node, parent.index
		switch {
		case child.node.size == 0 && p.Arity() == 1:
			return slot[T]{node: newLeaf[T](nil), index: i}
		case child.node.size == 0 && p.Arity() == 2:
			tracer().Debugf("promote sibling of empty child %d of %s", i, p)
			return slot[T]{node: p.children[1-i], index: i}
		case child.node.size == 0:
			return slot[T]{node: p.withoutChild(i), index: i}
		case p.Arity() > 1 && policy.PageShouldMerge(child.node):
			cow := p.withMergedChild(i, child.node, policy)
			if cow.Arity() == 1 {
				return slot[T]{node: cow.children[0], index: i}
			}
			return slot[T]{node: cow, index: i}
		}
		return cloneSeam(parent, child)
	}
}

// --- Whole trees -----------------------------------------------------------

// These functions compute new roots from a root, which may be nil for an empty tree.
// Indices have been checked by the caller.

func updatedAt[T any](root *xnode[T], index int, e Entry[T]) *xnode[T] {
	path := locate(root, index)
	hit := path.last()
	cow := hit.node.withReplacedEntry(hit.index, e)
	return path.dropLast().foldR(cloneSeam[T], slot[T]{node: cow, index: hit.index}).node
}

func insertedAt[T any](root *xnode[T], index int, e Entry[T], policy page.Policy) *xnode[T] {
	if root == nil {
		return newLeaf([]Entry[T]{e})
	}
	path := locate(root, index)
	hit := path.last()
	cow := hit.node.withInsertedEntry(hit.index, e)
	r := path.dropLast().foldR(splitAndClone[T](policy), slot[T]{node: cow, index: hit.index}).node
	if policy.PageShouldSplit(r) && page.CanSplit(r) {
		r = r.splitRoot()
	}
	return r
}

func removedAt[T any](root *xnode[T], index int, policy page.Policy) *xnode[T] {
	path := locate(root, index)
	hit := path.last()
	cow := hit.node.withDeletedEntry(hit.index)
	return path.dropLast().foldR(balance[T](policy), slot[T]{node: cow, index: hit.index}).node.collapsed()
}

func dropped[T any](root *xnode[T], n int) *xnode[T] {
	switch {
	case root == nil || n <= 0:
		return root
	case n >= root.size:
		return nil
	}
	return root.drop(n).collapsed()
}

func taken[T any](root *xnode[T], n int) *xnode[T] {
	switch {
	case root == nil || n >= root.size:
		return root
	case n <= 0:
		return nil
	}
	return root.take(n).collapsed()
}

func sizeOf[T any](root *xnode[T]) int {
	if root == nil {
		return 0
	}
	return root.size
}

func assertThat(that bool, msg string, msgargs ...interface{}) {
	if !that {
		msg = fmt.Sprintf("stree: "+msg, msgargs...)
		panic(msg)
	}
}

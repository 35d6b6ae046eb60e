package btree

/*
Remarks:
--------

- 'cow' stands for copy-on-write and is used throughout the code for variables holding
  clones of pages.

- A page is never modified after it has been linked into a tree. Every function below
  returning a page returns a fresh one.

- Re-balancing happens as the path from the root to a leaf is folded back up, level by
  level (see foldR). Pages need not all be at the same depth: when an inner page loses
  one of its two children, the remaining child is promoted to replace it.

*/

import (
	"fmt"
	"sort"
	"strings"

	"github.com/npillmayer/collections/persistent"
	"github.com/npillmayer/collections/persistent/internal/cow"
	"github.com/npillmayer/collections/persistent/page"
	"golang.org/x/exp/slices"
)

// xnode is a page of a tree. Leafs hold entries, inner pages hold knots and children.
type xnode[K, V any] struct {
	entries  []persistent.Entry[K, V] // sorted entries of a leaf
	knots    []K                      // separator keys of an inner page, len(children)-1
	children []*xnode[K, V]           // nil for leafs
	size     int                      // number of entries in this sub-tree
}

func newLeaf[K, V any](entries []persistent.Entry[K, V]) *xnode[K, V] {
	return &xnode[K, V]{entries: entries, size: len(entries)}
}

func newInner[K, V any](knots []K, children []*xnode[K, V]) *xnode[K, V] {
	assertThat(len(knots) == len(children)-1, "inner page with %d children needs %d knots, has %d",
		len(children), len(children)-1, len(knots))
	n := &xnode[K, V]{knots: knots, children: children}
	for _, ch := range children {
		n.size += ch.size
	}
	return n
}

// --- page.Node -------------------------------------------------------------

func (node *xnode[K, V]) IsLeaf() bool {
	return node.children == nil
}

func (node *xnode[K, V]) Arity() int {
	if node.IsLeaf() {
		return len(node.entries)
	}
	return len(node.children)
}

func (node *xnode[K, V]) Size() int {
	return node.size
}

func (node *xnode[K, V]) Child(i int) page.Node[persistent.Entry[K, V]] {
	return node.children[i]
}

func (node *xnode[K, V]) Item(i int) persistent.Entry[K, V] {
	return node.entries[i]
}

var _ page.Node[persistent.Entry[int, int]] = &xnode[int, int]{}

func (node *xnode[K, V]) String() string {
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
			sb.WriteString(fmt.Sprintf("%v", e.Key))
		}
		sb.WriteRune(']')
		return sb.String()
	}
	sb.WriteRune('⟨')
	for i, k := range node.knots {
		if i > 0 {
			sb.WriteRune('|')
		}
		sb.WriteString(fmt.Sprintf("%v", k))
	}
	sb.WriteString(fmt.Sprintf("⟩#%d", node.size))
	return sb.String()
}

// --- Searching -------------------------------------------------------------

// findSlot searches the entries of a leaf. It returns the index of the key, if present,
// or the index to insert the key at.
func (node *xnode[K, V]) findSlot(key K, cmp func(K, K) int) (int, bool) {
	return slices.BinarySearchFunc(node.entries, key, func(e persistent.Entry[K, V], k K) int {
		return cmp(e.Key, k)
	})
}

// childIndex returns the index of the child covering key, i.e. the number of
// knots ≤ key.
func (node *xnode[K, V]) childIndex(key K, cmp func(K, K) int) int {
	return sort.Search(len(node.knots), func(i int) bool {
		return cmp(node.knots[i], key) > 0
	})
}

func (node *xnode[K, V]) minKey() K {
	for !node.IsLeaf() {
		node = node.children[0]
	}
	return node.entries[0].Key
}

func (node *xnode[K, V]) first() persistent.Entry[K, V] {
	for !node.IsLeaf() {
		node = node.children[0]
	}
	return node.entries[0]
}

func (node *xnode[K, V]) last() persistent.Entry[K, V] {
	for !node.IsLeaf() {
		node = node.children[len(node.children)-1]
	}
	return node.entries[len(node.entries)-1]
}

// childAt returns the child covering position index, together with the position of
// index within the child. Knots are keys, not counts, so children are scanned by size,
// which is linear in the arity of the page. The arity is bounded by the split policy,
// hence positional descents cost O(depth · arity).
func (node *xnode[K, V]) childAt(index int) (int, int) {
	i := 0
	for i < len(node.children)-1 && index >= node.children[i].size {
		index -= node.children[i].size
		i++
	}
	return i, index
}

// entryAt locates an entry by position; 0 ≤ index < node.size.
func (node *xnode[K, V]) entryAt(index int) persistent.Entry[K, V] {
	for !node.IsLeaf() {
		var i int
		i, index = node.childAt(index)
		node = node.children[i]
	}
	return node.entries[index]
}

// next finds the entry with the smallest key > key.
func (node *xnode[K, V]) next(key K, cmp func(K, K) int) (persistent.Entry[K, V], bool) {
	if node.IsLeaf() {
		i := sort.Search(len(node.entries), func(i int) bool {
			return cmp(node.entries[i].Key, key) > 0
		})
		if i < len(node.entries) {
			return node.entries[i], true
		}
		return persistent.Entry[K, V]{}, false
	}
	i := node.childIndex(key, cmp)
	if e, ok := node.children[i].next(key, cmp); ok {
		return e, true
	}
	if i+1 < len(node.children) {
		return node.children[i+1].first(), true
	}
	return persistent.Entry[K, V]{}, false
}

// previous finds the entry with the largest key < key.
func (node *xnode[K, V]) previous(key K, cmp func(K, K) int) (persistent.Entry[K, V], bool) {
	if node.IsLeaf() {
		i, _ := node.findSlot(key, cmp)
		if i > 0 {
			return node.entries[i-1], true
		}
		return persistent.Entry[K, V]{}, false
	}
	i := node.childIndex(key, cmp)
	if e, ok := node.children[i].previous(key, cmp); ok {
		return e, true
	}
	if i > 0 {
		return node.children[i-1].last(), true
	}
	return persistent.Entry[K, V]{}, false
}

// --- Copy-on-write modifications -------------------------------------------

func (node *xnode[K, V]) withReplacedValue(at int, value V) *xnode[K, V] {
	assertThat(at < len(node.entries), "entry index out of range: %d ≥ %d", at, len(node.entries))
	e := node.entries[at]
	e.Value = value
	return newLeaf(cow.Replaced(node.entries, at, e))
}

func (node *xnode[K, V]) withInsertedEntry(at int, e persistent.Entry[K, V]) *xnode[K, V] {
	assertThat(at <= len(node.entries), "entry index out of range: %d > %d", at, len(node.entries))
	return newLeaf(cow.Inserted(node.entries, at, e))
}

func (node *xnode[K, V]) withDeletedEntry(at int) *xnode[K, V] {
	assertThat(at < len(node.entries), "entry index out of range: %d ≥ %d", at, len(node.entries))
	return newLeaf(cow.Deleted(node.entries, at, at+1))
}

// withChild returns a copy of an inner page with child i replaced.
func (node *xnode[K, V]) withChild(i int, child *xnode[K, V]) *xnode[K, V] {
	return newInner(node.knots, cow.Replaced(node.children, i, child))
}

// withSplitChild returns a copy of an inner page where child i is replaced by the
// halves left and right, separated by knot.
func (node *xnode[K, V]) withSplitChild(i int, left *xnode[K, V], knot K, right *xnode[K, V]) *xnode[K, V] {
	children := cow.Inserted(cow.Replaced(node.children, i, left), i+1, right)
	return newInner(cow.Inserted(node.knots, i, knot), children)
}

// withoutChild returns a copy of an inner page with child i removed, together with
// the knot separating it from a neighbour.
func (node *xnode[K, V]) withoutChild(i int) *xnode[K, V] {
	k := max(0, i-1)
	return newInner(cow.Deleted(node.knots, k, k+1), cow.Deleted(node.children, i, i+1))
}

// split cuts a page into two halves. For inner pages the knot between the halves is
// promoted; for leafs the smallest key of the right half becomes the separator.
// It is not checked if the page should indeed be split.
func (node *xnode[K, V]) split() (*xnode[K, V], K, *xnode[K, V]) {
	assertThat(page.CanSplit(node), "page of arity %d cannot be split", node.Arity())
	at := page.SplitPoint(node.Arity())
	if node.IsLeaf() {
		left := newLeaf(cow.Sub(node.entries, 0, at))
		right := newLeaf(cow.Sub(node.entries, at, len(node.entries)))
		return left, right.entries[0].Key, right
	}
	left := newInner(cow.Sub(node.knots, 0, at-1), cow.Sub(node.children, 0, at))
	right := newInner(cow.Sub(node.knots, at, len(node.knots)), cow.Sub(node.children, at, len(node.children)))
	return left, node.knots[at-1], right
}

// splitRoot lets a tree grow by one level.
func (node *xnode[K, V]) splitRoot() *xnode[K, V] {
	left, knot, right := node.split()
	tracer().Debugf("split root %s at %v", node, knot)
	return newInner([]K{knot}, []*xnode[K, V]{left, right})
}

// concat joins two adjacent pages of the same kind; sep separates them.
func concat[K, V any](left *xnode[K, V], sep K, right *xnode[K, V]) *xnode[K, V] {
	if left.IsLeaf() {
		return newLeaf(cow.Concat(left.entries, right.entries))
	}
	knots := cow.Concat(left.knots, []K{sep}, right.knots)
	return newInner(knots, cow.Concat(left.children, right.children))
}

// withMergedChild merges child i, which has become too small, with its left sibling
// (or right sibling for the leftmost child). If the merged page is too wide, it is split
// again, which re-distributes entries evenly between the two siblings.
func (node *xnode[K, V]) withMergedChild(i int, child *xnode[K, V], policy page.Policy) *xnode[K, V] {
	lo := i - 1
	if i == 0 {
		lo = 0
	}
	left, right := node.children[lo], node.children[lo+1]
	if lo == i {
		left = child
	} else {
		right = child
	}
	if left.IsLeaf() != right.IsLeaf() { // promoted sibling; cannot be merged
		return node.withChild(i, child)
	}
	merged := concat(left, node.knots[lo], right)
	tracer().Debugf("merged pages %d and %d into %s", lo, lo+1, merged)
	if policy.PageShouldSplit(merged) && page.CanSplit(merged) {
		l, knot, r := merged.split()
		children := cow.Replaced(cow.Replaced(node.children, lo, l), lo+1, r)
		return newInner(cow.Replaced(node.knots, lo, knot), children)
	}
	children := cow.Inserted(cow.Deleted(node.children, lo, lo+2), lo, merged)
	return newInner(cow.Deleted(node.knots, lo, lo+1), children)
}

// collapsed strips inner pages with a single child from the top of a tree.
// An empty tree is represented by nil.
func (node *xnode[K, V]) collapsed() *xnode[K, V] {
	for node != nil && !node.IsLeaf() && len(node.children) == 1 {
		node = node.children[0]
	}
	if node != nil && node.size == 0 {
		return nil
	}
	return node
}

// drop removes the first k entries, 0 < k < node.size.
// Only the child straddling the boundary is copied; children before it are discarded,
// children after it are shared. The boundary child is found with childAt.
func (node *xnode[K, V]) drop(k int) *xnode[K, V] {
	if node.IsLeaf() {
		return newLeaf(cow.Sub(node.entries, k, len(node.entries)))
	}
	i, k := node.childAt(k)
	children := cow.Sub(node.children, i, len(node.children))
	if k > 0 {
		children[0] = children[0].drop(k)
	}
	if len(children) == 1 {
		return children[0]
	}
	return newInner(cow.Sub(node.knots, i, len(node.knots)), children)
}

// take keeps the first k entries, 0 < k < node.size.
func (node *xnode[K, V]) take(k int) *xnode[K, V] {
	if node.IsLeaf() {
		return newLeaf(cow.Sub(node.entries, 0, k))
	}
	i, k := node.childAt(k - 1)
	k++ // entries to keep in child i
	children := cow.Sub(node.children, 0, i+1)
	if k < children[i].size {
		children[i] = children[i].take(k)
	}
	if len(children) == 1 {
		return children[0]
	}
	return newInner(cow.Sub(node.knots, 0, i), children)
}

// --- Re-balancing on the way up --------------------------------------------

// cloneSeam links a modified child into a copy of its parent.
func cloneSeam[K, V any](parent, child slot[K, V]) slot[K, V] {
	cowParent := parent.node.withChild(parent.index, child.node)
	return slot[K, V]{node: cowParent, index: parent.index}
}

// splitAndClone links a modified child into a copy of its parent, splitting the child
// first if the policy tells so.
func splitAndClone[K, V any](policy page.Policy) func(slot[K, V], slot[K, V]) slot[K, V] {
	return func(parent, child slot[K, V]) slot[K, V] {
		if policy.PageShouldSplit(child.node) && page.CanSplit(child.node) {
			left, knot, right := child.node.split()
			tracer().Debugf("split child %d of %s at %v", parent.index, parent.node, knot)
			cowParent := parent.node.withSplitChild(parent.index, left, knot, right)
			return slot[K, V]{node: cowParent, index: parent.index}
		}
		return cloneSeam(parent, child)
	}
}

// balance links a child, which lost an entry, into a copy of its parent. Empty children
// are removed; if only one child would remain, it replaces the parent. Children which
// are too small are merged with a sibling, again replacing a parent left with a single
// child.
func balance[K, V any](policy page.Policy) func(slot[K, V], slot[K, V]) slot[K, V] {
	return func(parent, child slot[K, V]) slot[K, V] {
		p, i := parent.node, parent.index
		switch {
		case child.node.size == 0 && p.Arity() == 1:
			return slot[K, V]{node: newLeaf[K, V](nil), index: i}
		case child.node.size == 0 && p.Arity() == 2:
			tracer().Debugf("promote sibling of empty child %d of %s", i, p)
			return slot[K, V]{node: p.children[1-i], index: i}
		case child.node.size == 0:
			return slot[K, V]{node: p.withoutChild(i), index: i}
		case p.Arity() > 1 && policy.PageShouldMerge(child.node):
			cow := p.withMergedChild(i, child.node, policy)
			if cow.Arity() == 1 { // parent is left with a single child
				return slot[K, V]{node: cow.children[0], index: i}
			}
			return slot[K, V]{node: cow, index: i}
		}
		return cloneSeam(parent, child)
	}
}

// --- Helpers ---------------------------------------------------------------

func assertThat(that bool, msg string, msgargs ...interface{}) {
	if !that {
		msg = fmt.Sprintf("btree: "+msg, msgargs...)
		panic(msg)
	}
}

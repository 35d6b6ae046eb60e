package btree

import (
	"github.com/npillmayer/collections/persistent"
	"github.com/npillmayer/collections/persistent/page"
	"golang.org/x/exp/constraints"
)

// Tree is a persistent ordered map from keys K to values V.
// Trees are values: every modifying operation returns a new tree and leaves the
// receiver unchanged. Trees are safe for concurrent use by multiple goroutines.
//
// Trees have to be created by one of the constructors, as they need a Context.
type Tree[K, V any] struct {
	root *xnode[K, V]
	ctx  Context[K]
}

// New creates an empty tree for a given context.
func New[K, V any](ctx Context[K]) Tree[K, V] {
	assertThat(ctx != nil, "tree needs a context")
	return Tree[K, V]{ctx: ctx}
}

// Immutable constructs an empty tree for ordered keys, with options, if you need any.
// Use it like this:
//
//	tree := btree.Immutable[int, string](btree.Degree(16))
//	tree = tree.Updated(42, "Galaxy")
//	value, found := tree.Get(42)   // returns "Galaxy"
func Immutable[K constraints.Ordered, V any](opts ...Option) Tree[K, V] {
	return New[K, V](OrderedContext[K](opts...))
}

// Empty returns an empty tree for ordered keys with default page thresholds.
func Empty[K constraints.Ordered, V any]() Tree[K, V] {
	return Immutable[K, V]()
}

// Of creates a tree for ordered keys from a list of entries. Later entries win
// over earlier ones with the same key.
func Of[K constraints.Ordered, V any](entries ...persistent.Entry[K, V]) Tree[K, V] {
	return From(OrderedContext[K](), persistent.SliceCursor(entries))
}

// From creates a tree from all entries remaining in a cursor.
func From[K, V any](ctx Context[K], source persistent.Cursor[persistent.Entry[K, V]]) Tree[K, V] {
	tree := New[K, V](ctx)
	for source.HasNext() {
		e, _ := source.Next()
		tree = tree.Updated(e.Key, e.Value)
	}
	return tree
}

// FromMap creates a tree from a Go map.
func FromMap[K constraints.Ordered, V any](m map[K]V) Tree[K, V] {
	tree := Empty[K, V]()
	for k, v := range m {
		tree = tree.Updated(k, v)
	}
	return tree
}

// --- Queries ---------------------------------------------------------------

// Size returns the number of entries in the tree.
func (tree Tree[K, V]) Size() int {
	if tree.root == nil {
		return 0
	}
	return tree.root.size
}

// IsEmpty is true for trees without entries.
func (tree Tree[K, V]) IsEmpty() bool {
	return tree.root == nil
}

// Depth returns the number of pages on the longest path from the root to a leaf.
func (tree Tree[K, V]) Depth() int {
	var depth func(*xnode[K, V]) int
	depth = func(node *xnode[K, V]) int {
		if node == nil {
			return 0
		}
		d := 0
		for _, ch := range node.children {
			d = max(d, depth(ch))
		}
		return d + 1
	}
	return depth(tree.root)
}

// Get locates a key in a tree, if present, and returns the value associated with the key.
// If key is not found, the zero value for type V will be returned, together with found=false.
func (tree Tree[K, V]) Get(key K) (V, bool) {
	node := tree.root
	if node == nil {
		var none V
		return none, false
	}
	for !node.IsLeaf() {
		node = node.children[node.childIndex(key, tree.ctx.Compare)]
	}
	if i, found := node.findSlot(key, tree.ctx.Compare); found {
		return node.entries[i].Value, true
	}
	var none V
	return none, false
}

// ContainsKey is true if key is present in the tree.
func (tree Tree[K, V]) ContainsKey(key K) bool {
	_, found := tree.Get(key)
	return found
}

// IndexOf returns the position of key within the ordered sequence of keys, and true.
// If key is not present, it returns the position key would be inserted at, and false.
func (tree Tree[K, V]) IndexOf(key K) (int, bool) {
	node := tree.root
	if node == nil {
		return 0, false
	}
	index := 0
	for !node.IsLeaf() {
		i := node.childIndex(key, tree.ctx.Compare)
		for j := 0; j < i; j++ {
			index += node.children[j].size
		}
		node = node.children[i]
	}
	i, found := node.findSlot(key, tree.ctx.Compare)
	return index + i, found
}

// EntryAt returns the entry at a position of the ordered sequence of entries.
// It returns an error wrapping persistent.ErrIndexOutOfRange if index is not in
// 0…Size()-1.
func (tree Tree[K, V]) EntryAt(index int) (persistent.Entry[K, V], error) {
	if index < 0 || index >= tree.Size() {
		return persistent.Entry[K, V]{}, persistent.IndexOutOfRange(index, tree.Size())
	}
	return tree.root.entryAt(index), nil
}

// FirstEntry returns the entry with the smallest key.
func (tree Tree[K, V]) FirstEntry() (persistent.Entry[K, V], bool) {
	if tree.root == nil {
		return persistent.Entry[K, V]{}, false
	}
	return tree.root.first(), true
}

// LastEntry returns the entry with the largest key.
func (tree Tree[K, V]) LastEntry() (persistent.Entry[K, V], bool) {
	if tree.root == nil {
		return persistent.Entry[K, V]{}, false
	}
	return tree.root.last(), true
}

// NextEntry returns the entry with the smallest key greater than key.
// key need not be present in the tree.
func (tree Tree[K, V]) NextEntry(key K) (persistent.Entry[K, V], bool) {
	if tree.root == nil {
		return persistent.Entry[K, V]{}, false
	}
	return tree.root.next(key, tree.ctx.Compare)
}

// PreviousEntry returns the entry with the largest key less than key.
// key need not be present in the tree.
func (tree Tree[K, V]) PreviousEntry(key K) (persistent.Entry[K, V], bool) {
	if tree.root == nil {
		return persistent.Entry[K, V]{}, false
	}
	return tree.root.previous(key, tree.ctx.Compare)
}

// --- Modifications ---------------------------------------------------------

// Updated returns a copy of a tree with key associated with value.
// If an entry for key is already present in tree, the associated value will be replaced
// (in a new incarnation of the tree, nevertheless). If the entry is present and holds
// an identical value, tree is returned unchanged.
//
// Pages which become too wide are split as the modification travels up from the leaf,
// one level at a time, each split inserting a separator knot into the parent. The root
// is checked once more at the end; splitting it adds a level to the tree.
func (tree Tree[K, V]) Updated(key K, value V) Tree[K, V] {
	e := persistent.Entry[K, V]{Key: key, Value: value}
	if tree.root == nil { // virgin tree => insert first leaf and return
		return tree.withRoot(newLeaf([]persistent.Entry[K, V]{e}))
	}
	path, found := tree.findKeyAndPath(key, nil)
	hit := path.last()
	if found {
		if persistent.Identical(hit.node.entries[hit.index].Value, value) {
			return tree // no need for modification
		}
		cow := hit.node.withReplacedValue(hit.index, value)
		newRoot := path.dropLast().foldR(cloneSeam[K, V], slot[K, V]{node: cow, index: hit.index})
		return tree.withRoot(newRoot.node)
	}
	tracer().Debugf("insert: slot path = %s", path)
	cow := hit.node.withInsertedEntry(hit.index, e)
	newRoot := path.dropLast().foldR(splitAndClone[K, V](tree.ctx),
		slot[K, V]{node: cow, index: hit.index},
	)
	root := newRoot.node
	if tree.ctx.PageShouldSplit(root) && page.CanSplit(root) {
		root = root.splitRoot()
	}
	return tree.withRoot(root)
}

// Removed returns a copy of a tree with key deleted, together with its associated value.
// If key is not found, tree is returned unchanged.
func (tree Tree[K, V]) Removed(key K) Tree[K, V] {
	if tree.root == nil {
		return tree
	}
	path, found := tree.findKeyAndPath(key, nil)
	if !found {
		return tree // no need for modification
	}
	tracer().Debugf("deletion: slot path = %s", path)
	hit := path.last()
	cow := hit.node.withDeletedEntry(hit.index)
	newRoot := path.dropLast().foldR(balance[K, V](tree.ctx),
		slot[K, V]{node: cow, index: hit.index},
	)
	return tree.withRoot(newRoot.node.collapsed())
}

// Drop returns a copy of a tree without its n entries with the smallest keys.
// For n ≤ 0 tree is returned unchanged, for n ≥ Size() an empty tree is returned.
//
// Only pages straddling the boundary are copied; whole branches before the boundary
// are discarded, branches after it are shared.
func (tree Tree[K, V]) Drop(n int) Tree[K, V] {
	if n <= 0 || tree.root == nil {
		return tree
	}
	if n >= tree.Size() {
		return tree.withRoot(nil)
	}
	return tree.withRoot(tree.root.drop(n).collapsed())
}

// Take returns a copy of a tree holding only its n entries with the smallest keys.
// For n ≥ Size() tree is returned unchanged, for n ≤ 0 an empty tree is returned.
func (tree Tree[K, V]) Take(n int) Tree[K, V] {
	if n >= tree.Size() {
		return tree
	}
	if n <= 0 {
		return tree.withRoot(nil)
	}
	return tree.withRoot(tree.root.take(n).collapsed())
}

// Put is an in-place mutation, which persistent trees do not support.
// It always returns an error wrapping persistent.ErrUnsupportedMutation; use Updated instead.
func (tree Tree[K, V]) Put(key K, value V) error {
	return persistent.Unsupported("btree.Put")
}

// Remove is an in-place mutation, which persistent trees do not support.
// It always returns an error wrapping persistent.ErrUnsupportedMutation; use Removed instead.
func (tree Tree[K, V]) Remove(key K) error {
	return persistent.Unsupported("btree.Remove")
}

// Clear is an in-place mutation, which persistent trees do not support.
// It always returns an error wrapping persistent.ErrUnsupportedMutation; use Take(0) instead.
func (tree Tree[K, V]) Clear() error {
	return persistent.Unsupported("btree.Clear")
}

// --- Cursors ---------------------------------------------------------------

// Cursor returns a cursor over the entries of tree in ascending key order, positioned
// before the first entry.
func (tree Tree[K, V]) Cursor() persistent.Cursor[persistent.Entry[K, V]] {
	return page.NewCursor(tree.pageRoot(), 0)
}

// CursorAt returns a cursor positioned before the first entry with a key ≥ key.
func (tree Tree[K, V]) CursorAt(key K) persistent.Cursor[persistent.Entry[K, V]] {
	index, _ := tree.IndexOf(key)
	return page.NewCursor(tree.pageRoot(), index)
}

// ReverseCursor returns a cursor over the entries of tree in descending key order.
func (tree Tree[K, V]) ReverseCursor() persistent.Cursor[persistent.Entry[K, V]] {
	c := page.NewCursor(tree.pageRoot(), tree.Size())
	return persistent.Reverse[persistent.Entry[K, V]](c, tree.Size())
}

// KeyCursor returns a cursor over the keys of tree in ascending order.
func (tree Tree[K, V]) KeyCursor() persistent.Cursor[K] {
	return persistent.KeyCursor(tree.Cursor())
}

// ValueCursor returns a cursor over the values of tree in ascending key order.
func (tree Tree[K, V]) ValueCursor() persistent.Cursor[V] {
	return persistent.ValueCursor(tree.Cursor())
}

// Entries returns all entries of a tree in ascending key order.
func (tree Tree[K, V]) Entries() []persistent.Entry[K, V] {
	return persistent.Collect(tree.Cursor())
}

// --- Internals -------------------------------------------------------------

func (tree Tree[K, V]) withRoot(root *xnode[K, V]) Tree[K, V] {
	return Tree[K, V]{root: root, ctx: tree.ctx}
}

// pageRoot returns the root as a page.Node, with an empty tree being a nil interface.
func (tree Tree[K, V]) pageRoot() page.Node[persistent.Entry[K, V]] {
	if tree.root == nil {
		return nil
	}
	return tree.root
}

// findKeyAndPath descends from the root to the leaf covering key, tracking the path.
// The final slot of the path holds the leaf and the index of key within it, or the
// index to insert key at.
func (tree Tree[K, V]) findKeyAndPath(key K, pathBuf slotPath[K, V]) (slotPath[K, V], bool) {
	path := pathBuf[:0] // we track the path to the key's slot
	node := tree.root   // walking pages, start search at the top
	if node == nil {
		return path, false
	}
	for !node.IsLeaf() {
		index := node.childIndex(key, tree.ctx.Compare)
		path = append(path, slot[K, V]{node: node, index: index})
		node = node.children[index]
	}
	index, found := node.findSlot(key, tree.ctx.Compare)
	path = append(path, slot[K, V]{node: node, index: index})
	return path, found
}

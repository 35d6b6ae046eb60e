package stree

import (
	"github.com/npillmayer/collections/persistent"
	"github.com/npillmayer/collections/persistent/page"
)

// Tree is an immutable snapshot of a List. Snapshots are values and may be shared
// freely between goroutines.
type Tree[T any] struct {
	root *xnode[T]
	ctx  Context[T]
}

// Size returns the number of elements of the snapshot.
func (tree Tree[T]) Size() int {
	return sizeOf(tree.root)
}

// IsEmpty is true for a snapshot without elements.
func (tree Tree[T]) IsEmpty() bool {
	return tree.root == nil
}

// Depth returns the number of page levels from the root to the deepest leaf.
func (tree Tree[T]) Depth() int {
	var depth func(*xnode[T]) int
	depth = func(node *xnode[T]) int {
		if node.IsLeaf() {
			return 1
		}
		d := 0
		for _, ch := range node.children {
			d = max(d, depth(ch))
		}
		return d + 1
	}
	if tree.root == nil {
		return 0
	}
	return depth(tree.root)
}

// Get returns the element at index.
func (tree Tree[T]) Get(index int) (T, error) {
	e, err := tree.GetEntry(index)
	return e.Value, err
}

// GetEntry returns the element at index together with its identity key.
func (tree Tree[T]) GetEntry(index int) (Entry[T], error) {
	if err := checkIndex(tree.root, index); err != nil {
		return Entry[T]{}, err
	}
	return tree.root.entryAt(index), nil
}

// Lookup searches for the element with identity key. The search starts at position
// start, where the element is expected, and wraps around at the end of the sequence.
// Lookup returns the position of the element and true, or -1 and false.
//
// Identity keys are not indexed: a lookup is linear in the distance between start
// and the actual position of the element.
func (tree Tree[T]) Lookup(start int, key []byte) (int, bool) {
	return tree.root.lookup(start, key, tree.ctx.CompareKey)
}

// Set is unsupported for snapshots.
func (tree Tree[T]) Set(int, T) error {
	return persistent.Unsupported("stree.Tree.Set")
}

// Insert is unsupported for snapshots.
func (tree Tree[T]) Insert(int, T) error {
	return persistent.Unsupported("stree.Tree.Insert")
}

// Remove is unsupported for snapshots.
func (tree Tree[T]) Remove(int) error {
	return persistent.Unsupported("stree.Tree.Remove")
}

// Clear is unsupported for snapshots.
func (tree Tree[T]) Clear() error {
	return persistent.Unsupported("stree.Tree.Clear")
}

// EntryCursor returns a cursor over the entries of the snapshot.
func (tree Tree[T]) EntryCursor() persistent.Cursor[Entry[T]] {
	return page.NewCursor[Entry[T]](tree.pageRoot(), 0)
}

// Cursor returns a cursor over the elements of the snapshot.
func (tree Tree[T]) Cursor() persistent.Cursor[T] {
	return persistent.MapCursor(tree.EntryCursor(), entryValue[T])
}

// ReverseCursor returns a cursor over the elements of the snapshot, from last to first.
func (tree Tree[T]) ReverseCursor() persistent.Cursor[T] {
	c := page.NewCursor[Entry[T]](tree.pageRoot(), tree.Size())
	return persistent.MapCursor(persistent.Reverse[Entry[T]](c, tree.Size()), entryValue[T])
}

// KeyCursor returns a cursor over the identity keys of the snapshot.
func (tree Tree[T]) KeyCursor() persistent.Cursor[[]byte] {
	return persistent.MapCursor(tree.EntryCursor(), func(e Entry[T]) []byte {
		return e.Key
	})
}

// Values returns the elements of the snapshot as a slice.
func (tree Tree[T]) Values() []T {
	return persistent.Collect(tree.Cursor())
}

func (tree Tree[T]) pageRoot() page.Node[Entry[T]] {
	if tree.root == nil {
		return nil
	}
	return tree.root
}

func entryValue[T any](e Entry[T]) T {
	return e.Value
}

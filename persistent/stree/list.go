package stree

import (
	"sync/atomic"

	"github.com/npillmayer/collections/persistent"
	"github.com/npillmayer/collections/persistent/page"
)

// List is a sequence of elements of type T, safe for concurrent use by multiple
// goroutines.
//
// Every modification reads the current root, computes a new root without touching
// shared state, and installs it with a compare-and-swap. If the root has changed in the
// meantime, the modification is re-applied to the new root, until it succeeds. There is
// no back-off. Under extreme contention a goroutine may retry many times.
//
// Index checks are part of a modification, i.e. they are re-done for each attempt, on
// the root the modification is applied to.
type List[T any] struct {
	root atomic.Pointer[xnode[T]]
	ctx  Context[T]
}

// New creates an empty list for a context.
func New[T any](ctx Context[T]) *List[T] {
	assertThat(ctx != nil, "list needs a context")
	return &List[T]{ctx: ctx}
}

// Empty creates an empty list with a default context.
func Empty[T any]() *List[T] {
	return New[T](NewContext[T]())
}

// Of creates a list of values with a default context.
func Of[T any](values ...T) *List[T] {
	return From(NewContext[T](), persistent.SliceCursor(values))
}

// From creates a list from all values remaining in a cursor.
func From[T any](ctx Context[T], source persistent.Cursor[T]) *List[T] {
	l := New[T](ctx)
	var root *xnode[T]
	for source.HasNext() {
		v, _ := source.Next()
		root = insertedAt(root, sizeOf(root), Entry[T]{Key: ctx.Identify(v), Value: v}, ctx)
	}
	l.root.Store(root)
	return l
}

// Size returns the current number of elements of l.
func (l *List[T]) Size() int {
	return sizeOf(l.root.Load())
}

// IsEmpty is true if l currently has no elements.
func (l *List[T]) IsEmpty() bool {
	return l.root.Load() == nil
}

// Get returns the element at index. It returns an error wrapping
// persistent.ErrIndexOutOfRange if index is not in 0…Size()-1.
func (l *List[T]) Get(index int) (T, error) {
	return l.Snapshot().Get(index)
}

// GetEntry returns the element at index together with its identity key.
func (l *List[T]) GetEntry(index int) (Entry[T], error) {
	return l.Snapshot().GetEntry(index)
}

// Lookup returns the current position of the element with identity key, see Tree.Lookup.
func (l *List[T]) Lookup(start int, key []byte) (int, bool) {
	return l.Snapshot().Lookup(start, key)
}

// Set replaces the element at index, keeping its identity key, and returns the element
// replaced.
func (l *List[T]) Set(index int, value T) (T, error) {
	var old T
	err := l.update(func(root *xnode[T]) (*xnode[T], error) {
		if err := checkIndex(root, index); err != nil {
			return nil, err
		}
		e := root.entryAt(index)
		old = e.Value
		return updatedAt(root, index, Entry[T]{Key: e.Key, Value: value}), nil
	})
	return old, err
}

// SetWithKey replaces the element with identity key, searching for it from position
// index on, and returns the element replaced. If no element carries key, an error
// wrapping persistent.ErrKeyNotFound is returned.
func (l *List[T]) SetWithKey(index int, key []byte, value T) (T, error) {
	var old T
	err := l.update(func(root *xnode[T]) (*xnode[T], error) {
		at, found := root.lookup(index, key, l.ctx.CompareKey)
		if !found {
			return nil, persistent.KeyNotFound(key)
		}
		old = root.entryAt(at).Value
		return updatedAt(root, at, Entry[T]{Key: key, Value: value}), nil
	})
	return old, err
}

// Add appends value to the end of l, with a fresh identity key.
func (l *List[T]) Add(value T) {
	key := l.ctx.Identify(value)
	_ = l.update(func(root *xnode[T]) (*xnode[T], error) {
		return insertedAt(root, sizeOf(root), Entry[T]{Key: key, Value: value}, l.ctx), nil
	})
}

// Insert inserts value at position index, with a fresh identity key. index may be
// equal to Size(), appending value.
func (l *List[T]) Insert(index int, value T) error {
	return l.InsertWithKey(index, l.ctx.Identify(value), value)
}

// InsertWithKey inserts value with identity key at position index.
func (l *List[T]) InsertWithKey(index int, key []byte, value T) error {
	return l.update(func(root *xnode[T]) (*xnode[T], error) {
		if index < 0 || index > sizeOf(root) {
			return nil, persistent.IndexOutOfRange(index, sizeOf(root))
		}
		return insertedAt(root, index, Entry[T]{Key: key, Value: value}, l.ctx), nil
	})
}

// Remove removes the element at index and returns it.
func (l *List[T]) Remove(index int) (T, error) {
	var old T
	err := l.update(func(root *xnode[T]) (*xnode[T], error) {
		if err := checkIndex(root, index); err != nil {
			return nil, err
		}
		old = root.entryAt(index).Value
		return removedAt(root, index, l.ctx), nil
	})
	return old, err
}

// RemoveWithKey removes the element with identity key, searching for it from position
// index on, and returns it.
func (l *List[T]) RemoveWithKey(index int, key []byte) (T, error) {
	var old T
	err := l.update(func(root *xnode[T]) (*xnode[T], error) {
		at, found := root.lookup(index, key, l.ctx.CompareKey)
		if !found {
			return nil, persistent.KeyNotFound(key)
		}
		old = root.entryAt(at).Value
		return removedAt(root, at, l.ctx), nil
	})
	return old, err
}

// RemoveFunc removes the first element for which pred is true. It returns false if
// there is no such element.
func (l *List[T]) RemoveFunc(pred func(T) bool) bool {
	removed := false
	_ = l.update(func(root *xnode[T]) (*xnode[T], error) {
		removed = false
		index := indexWhere(root, pred)
		if index < 0 {
			return root, nil
		}
		removed = true
		return removedAt(root, index, l.ctx), nil
	})
	return removed
}

// RemoveValue removes the first element of l equal to value. It returns false if
// value is not an element of l.
func RemoveValue[T comparable](l *List[T], value T) bool {
	return l.RemoveFunc(func(v T) bool { return v == value })
}

// IndexOf returns the position of the first element of l equal to value, or -1.
func IndexOf[T comparable](l *List[T], value T) int {
	return indexWhere(l.root.Load(), func(v T) bool { return v == value })
}

// Move moves the element at position from to position to. Positions refer to the list
// before and after the move, respectively, and both have to be in 0…Size()-1.
// A move costs as much as a removal plus an insertion; the element keeps its identity key.
func (l *List[T]) Move(from, to int) error {
	return l.update(func(root *xnode[T]) (*xnode[T], error) {
		if err := checkIndex(root, from); err != nil {
			return nil, err
		}
		if err := checkIndex(root, to); err != nil {
			return nil, err
		}
		return moved(root, from, to, l.ctx), nil
	})
}

// MoveWithKey moves the element with identity key, searching for it from position
// from on, to position to.
func (l *List[T]) MoveWithKey(from, to int, key []byte) error {
	return l.update(func(root *xnode[T]) (*xnode[T], error) {
		at, found := root.lookup(from, key, l.ctx.CompareKey)
		if !found {
			return nil, persistent.KeyNotFound(key)
		}
		if err := checkIndex(root, to); err != nil {
			return nil, err
		}
		return moved(root, at, to, l.ctx), nil
	})
}

// Drop removes the first n elements of l. For n ≥ Size() l will be empty afterwards.
func (l *List[T]) Drop(n int) {
	_ = l.update(func(root *xnode[T]) (*xnode[T], error) {
		return dropped(root, n), nil
	})
}

// Take removes all but the first n elements of l.
func (l *List[T]) Take(n int) {
	_ = l.update(func(root *xnode[T]) (*xnode[T], error) {
		return taken(root, n), nil
	})
}

// Clear removes all elements of l.
func (l *List[T]) Clear() {
	l.root.Store(nil)
}

// Snapshot returns a read-only view of the current sequence. The snapshot will never
// change, regardless of later modifications of l.
func (l *List[T]) Snapshot() Tree[T] {
	return Tree[T]{root: l.root.Load(), ctx: l.ctx}
}

// Cursor returns a cursor over a snapshot of l.
func (l *List[T]) Cursor() persistent.Cursor[T] {
	return l.Snapshot().Cursor()
}

// ReverseCursor returns a cursor over a snapshot of l, from last to first element.
func (l *List[T]) ReverseCursor() persistent.Cursor[T] {
	return l.Snapshot().ReverseCursor()
}

// KeyCursor returns a cursor over the identity keys of a snapshot of l.
func (l *List[T]) KeyCursor() persistent.Cursor[[]byte] {
	return l.Snapshot().KeyCursor()
}

// ValueCursor is a synonym for Cursor.
func (l *List[T]) ValueCursor() persistent.Cursor[T] {
	return l.Cursor()
}

// --- Internals -------------------------------------------------------------

// update installs the root computed by f from the current root. On concurrent
// modification f is called again with the new current root. If f returns an error,
// l is left unchanged.
func (l *List[T]) update(f func(root *xnode[T]) (*xnode[T], error)) error {
	for {
		root := l.root.Load()
		cow, err := f(root)
		if err != nil {
			return err
		}
		if cow == root || l.root.CompareAndSwap(root, cow) {
			return nil
		}
		tracer().Debugf("root changed concurrently, retrying")
	}
}

func checkIndex[T any](root *xnode[T], index int) error {
	if index < 0 || index >= sizeOf(root) {
		return persistent.IndexOutOfRange(index, sizeOf(root))
	}
	return nil
}

// moved removes the entry at from and re-inserts it at to.
func moved[T any](root *xnode[T], from, to int, policy page.Policy) *xnode[T] {
	if from == to {
		return root
	}
	e := root.entryAt(from)
	return insertedAt(removedAt(root, from, policy), to, e, policy)
}

func indexWhere[T any](root *xnode[T], pred func(T) bool) int {
	if root == nil {
		return -1
	}
	c := page.NewCursor[Entry[T]](root, 0)
	for c.HasNext() {
		index := c.NextIndex()
		if e, _ := c.Next(); pred(e.Value) {
			return index
		}
	}
	return -1
}

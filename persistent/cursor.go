package persistent

// Cursor is a bidirectional, resumable iteration over the elements of a collection.
//
// A cursor is always positioned between two elements (or before the first resp. after
// the last one). Next returns the element after the position and moves forward,
// Previous returns the element before the position and moves backward.
// Cursors over persistent collections iterate over one incarnation of a collection and
// are unaffected by later modifications.
//
// Cursors are not safe for concurrent use.
type Cursor[T any] interface {
	IsEmpty() bool       // no element after the current position
	Head() (T, bool)     // element after the current position, without moving
	Step()               // move forward by one element
	Skip(count int)      // move by count elements; stops at either end
	HasNext() bool       // is there an element after the current position?
	NextIndex() int      // index of the element after the current position
	Next() (T, bool)     // return the element after the current position and move forward
	HasPrevious() bool   // is there an element before the current position?
	PreviousIndex() int  // index of the element before the current position
	Previous() (T, bool) // return the element before the current position and move backward
}

// --- Empty -----------------------------------------------------------------

type emptyCursor[T any] struct{}

// EmptyCursor returns a cursor without elements.
func EmptyCursor[T any]() Cursor[T] {
	return emptyCursor[T]{}
}

func (emptyCursor[T]) IsEmpty() bool { return true }
func (emptyCursor[T]) Head() (T, bool) {
	var none T
	return none, false
}
func (emptyCursor[T]) Step()              {}
func (emptyCursor[T]) Skip(int)           {}
func (emptyCursor[T]) HasNext() bool      { return false }
func (emptyCursor[T]) NextIndex() int     { return 0 }
func (c emptyCursor[T]) Next() (T, bool)  { return c.Head() }
func (emptyCursor[T]) HasPrevious() bool  { return false }
func (emptyCursor[T]) PreviousIndex() int { return -1 }
func (c emptyCursor[T]) Previous() (T, bool) {
	return c.Head()
}

// --- Slices ----------------------------------------------------------------

type sliceCursor[T any] struct {
	items []T
	index int
}

// SliceCursor returns a cursor over a slice, positioned before the first item.
// The slice must not be modified while the cursor is in use.
func SliceCursor[T any](items []T) Cursor[T] {
	return &sliceCursor[T]{items: items}
}

func (c *sliceCursor[T]) IsEmpty() bool { return c.index >= len(c.items) }

func (c *sliceCursor[T]) Head() (T, bool) {
	if c.index >= len(c.items) {
		var none T
		return none, false
	}
	return c.items[c.index], true
}

func (c *sliceCursor[T]) Step() { c.Skip(1) }

func (c *sliceCursor[T]) Skip(count int) {
	c.index = clamp(c.index+count, 0, len(c.items))
}

func (c *sliceCursor[T]) HasNext() bool      { return c.index < len(c.items) }
func (c *sliceCursor[T]) NextIndex() int     { return c.index }
func (c *sliceCursor[T]) HasPrevious() bool  { return c.index > 0 }
func (c *sliceCursor[T]) PreviousIndex() int { return c.index - 1 }

func (c *sliceCursor[T]) Next() (T, bool) {
	item, ok := c.Head()
	if ok {
		c.index++
	}
	return item, ok
}

func (c *sliceCursor[T]) Previous() (T, bool) {
	if c.index == 0 {
		var none T
		return none, false
	}
	c.index--
	return c.items[c.index], true
}

// --- Reverse ---------------------------------------------------------------

type reverseCursor[T any] struct {
	c    Cursor[T]
	size int
}

// Reverse flips the direction of a cursor over a collection with size elements.
// Next of the returned cursor calls Previous of c and vice versa. Usually c will be
// positioned after its last element when handed to Reverse.
func Reverse[T any](c Cursor[T], size int) Cursor[T] {
	return reverseCursor[T]{c: c, size: size}
}

func (r reverseCursor[T]) IsEmpty() bool       { return !r.c.HasPrevious() }
func (r reverseCursor[T]) Step()               { r.c.Skip(-1) }
func (r reverseCursor[T]) Skip(count int)      { r.c.Skip(-count) }
func (r reverseCursor[T]) HasNext() bool       { return r.c.HasPrevious() }
func (r reverseCursor[T]) NextIndex() int      { return r.size - r.c.NextIndex() }
func (r reverseCursor[T]) Next() (T, bool)     { return r.c.Previous() }
func (r reverseCursor[T]) HasPrevious() bool   { return r.c.HasNext() }
func (r reverseCursor[T]) PreviousIndex() int  { return r.NextIndex() - 1 }
func (r reverseCursor[T]) Previous() (T, bool) { return r.c.Next() }

func (r reverseCursor[T]) Head() (T, bool) {
	item, ok := r.c.Previous()
	if ok {
		r.c.Step()
	}
	return item, ok
}

// --- Mapping ---------------------------------------------------------------

type mapCursor[S, T any] struct {
	c Cursor[S]
	f func(S) T
}

// MapCursor returns a cursor which yields f(x) for every element x of c.
// Moving the returned cursor moves c.
func MapCursor[S, T any](c Cursor[S], f func(S) T) Cursor[T] {
	return mapCursor[S, T]{c: c, f: f}
}

func (m mapCursor[S, T]) IsEmpty() bool      { return m.c.IsEmpty() }
func (m mapCursor[S, T]) Head() (T, bool)    { return m.apply(m.c.Head()) }
func (m mapCursor[S, T]) Step()              { m.c.Step() }
func (m mapCursor[S, T]) Skip(count int)     { m.c.Skip(count) }
func (m mapCursor[S, T]) HasNext() bool      { return m.c.HasNext() }
func (m mapCursor[S, T]) NextIndex() int     { return m.c.NextIndex() }
func (m mapCursor[S, T]) Next() (T, bool)    { return m.apply(m.c.Next()) }
func (m mapCursor[S, T]) HasPrevious() bool  { return m.c.HasPrevious() }
func (m mapCursor[S, T]) PreviousIndex() int { return m.c.PreviousIndex() }
func (m mapCursor[S, T]) Previous() (T, bool) {
	return m.apply(m.c.Previous())
}

func (m mapCursor[S, T]) apply(x S, ok bool) (T, bool) {
	if !ok {
		var none T
		return none, false
	}
	return m.f(x), true
}

// KeyCursor projects a cursor over entries to their keys.
func KeyCursor[K, V any](c Cursor[Entry[K, V]]) Cursor[K] {
	return MapCursor(c, func(e Entry[K, V]) K { return e.Key })
}

// ValueCursor projects a cursor over entries to their values.
func ValueCursor[K, V any](c Cursor[Entry[K, V]]) Cursor[V] {
	return MapCursor(c, func(e Entry[K, V]) V { return e.Value })
}

// Collect drains a cursor into a slice, starting at the cursor's current position.
func Collect[T any](c Cursor[T]) []T {
	var items []T
	for c.HasNext() {
		item, _ := c.Next()
		items = append(items, item)
	}
	return items
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

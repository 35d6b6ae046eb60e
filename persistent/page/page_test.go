package page

import (
	"testing"

	"github.com/npillmayer/collections/persistent"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/require"
)

// mock is a minimal page type for testing cursors.
type mock struct {
	items    []int
	children []*mock
}

func (m *mock) IsLeaf() bool { return m.children == nil }

func (m *mock) Arity() int {
	if m.IsLeaf() {
		return len(m.items)
	}
	return len(m.children)
}

func (m *mock) Size() int {
	if m.IsLeaf() {
		return len(m.items)
	}
	n := 0
	for _, ch := range m.children {
		n += ch.Size()
	}
	return n
}

func (m *mock) Child(i int) Node[int] { return m.children[i] }
func (m *mock) Item(i int) int        { return m.items[i] }

func leaf(items ...int) *mock        { return &mock{items: items} }
func inner(children ...*mock) *mock { return &mock{children: children} }

// createTreeForTest creates a tree of depth 3 holding 0…9.
func createTreeForTest() *mock {
	return inner(
		inner(leaf(0, 1), leaf(2, 3, 4)),
		inner(leaf(5), leaf(6, 7), leaf(8, 9)),
	)
}

func TestThresholds(t *testing.T) {
	th := Degree(3)
	require.Equal(t, Thresholds{SplitArity: 6, MergeArity: 3}, th)
	require.True(t, th.PageShouldSplit(leaf(1, 2, 3, 4, 5, 6, 7)))
	require.False(t, th.PageShouldSplit(leaf(1, 2, 3, 4, 5, 6)))
	require.True(t, th.PageShouldMerge(leaf(1, 2)))
	require.False(t, th.PageShouldMerge(leaf(1, 2, 3)))
	require.Equal(t, Thresholds{SplitArity: 4, MergeArity: 2}, Degree(0))
	require.Equal(t, 2, SplitPoint(5))
	require.True(t, CanSplit(leaf(1, 2)))
	require.False(t, CanSplit(leaf(1)))
	require.False(t, CanSplit(inner(leaf(1), leaf(2), leaf(3))))
	require.True(t, CanSplit(inner(leaf(1), leaf(2), leaf(3), leaf(4))))
	require.False(t, CanSplit(leaf(1)))
}

func TestCursorForward(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "pcoll.page")
	tracer().SetTraceLevel(tracing.LevelError)
	defer teardown()
	//
	c := NewCursor[int](createTreeForTest(), 0)
	require.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, persistent.Collect[int](c))
	require.False(t, c.HasNext())
	require.Equal(t, 10, c.NextIndex())
}

func TestCursorBackward(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "pcoll.page")
	tracer().SetTraceLevel(tracing.LevelError)
	defer teardown()
	//
	c := NewCursor[int](createTreeForTest(), 10)
	var back []int
	for c.HasPrevious() {
		x, ok := c.Previous()
		require.True(t, ok)
		back = append(back, x)
	}
	require.Equal(t, []int{9, 8, 7, 6, 5, 4, 3, 2, 1, 0}, back)
	require.Equal(t, -1, c.PreviousIndex())
}

func TestCursorSeekAndSkip(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "pcoll.page")
	tracer().SetTraceLevel(tracing.LevelError)
	defer teardown()
	//
	tree := createTreeForTest()
	for i := 0; i < 10; i++ {
		c := NewCursor[int](tree, i)
		x, ok := c.Head()
		require.True(t, ok)
		require.Equal(t, i, x, "seek to %d", i)
	}
	c := NewCursor[int](tree, 0)
	c.Skip(4)
	x, _ := c.Next()
	require.Equal(t, 4, x)
	c.Skip(-3)
	x, _ = c.Next()
	require.Equal(t, 2, x)
	c.Step()
	x, _ = c.Previous()
	require.Equal(t, 3, x)
	c.Skip(100)
	require.True(t, c.IsEmpty())
	x, _ = c.Previous()
	require.Equal(t, 9, x)
}

func TestCursorZigZag(t *testing.T) {
	c := NewCursor[int](createTreeForTest(), 0)
	for i := 0; i < 10; i++ {
		x, _ := c.Next()
		require.Equal(t, i, x)
		y, _ := c.Previous()
		require.Equal(t, i, y)
		c.Step()
	}
}

func TestCursorOnEmptyTree(t *testing.T) {
	c := NewCursor[int](nil, 3)
	require.True(t, c.IsEmpty())
	require.False(t, c.HasPrevious())
	_, ok := c.Next()
	require.False(t, ok)
	c = NewCursor[int](leaf(), 0)
	require.True(t, c.IsEmpty())
}

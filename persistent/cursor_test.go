package persistent

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSliceCursorForward(t *testing.T) {
	c := SliceCursor([]int{1, 2, 3})
	require.True(t, c.HasNext())
	require.False(t, c.HasPrevious())
	require.Equal(t, 0, c.NextIndex())
	head, ok := c.Head()
	require.True(t, ok)
	require.Equal(t, 1, head)
	require.Equal(t, []int{1, 2, 3}, Collect(c))
	require.True(t, c.IsEmpty())
	require.Equal(t, 3, c.NextIndex())
	_, ok = c.Next()
	require.False(t, ok)
}

func TestSliceCursorBackward(t *testing.T) {
	c := SliceCursor([]string{"a", "b", "c"})
	c.Skip(10)
	require.Equal(t, 3, c.NextIndex(), "skip must stop at the end")
	var back []string
	for c.HasPrevious() {
		s, _ := c.Previous()
		back = append(back, s)
	}
	require.Equal(t, []string{"c", "b", "a"}, back)
	require.Equal(t, -1, c.PreviousIndex())
	c.Skip(-5)
	require.Equal(t, 0, c.NextIndex())
}

func TestReverseCursor(t *testing.T) {
	items := []int{1, 2, 3, 4}
	c := SliceCursor(items)
	c.Skip(len(items))
	r := Reverse(c, len(items))
	require.Equal(t, 0, r.NextIndex())
	head, ok := r.Head()
	require.True(t, ok)
	require.Equal(t, 4, head)
	require.Equal(t, 0, r.NextIndex(), "head must not move the cursor")
	r.Step()
	require.Equal(t, 1, r.NextIndex())
	require.Equal(t, []int{3, 2, 1}, Collect(r))
	x, ok := r.Previous()
	require.True(t, ok)
	require.Equal(t, 1, x)
}

func TestMapCursors(t *testing.T) {
	entries := []Entry[string, int]{E("a", 1), E("b", 2)}
	require.Equal(t, []string{"a", "b"}, Collect(KeyCursor(SliceCursor(entries))))
	require.Equal(t, []int{1, 2}, Collect(ValueCursor(SliceCursor(entries))))
	double := MapCursor(SliceCursor([]int{1, 2, 3}), func(x int) int { return 2 * x })
	double.Step()
	require.Equal(t, []int{4, 6}, Collect(double))
}

func TestEmptyCursor(t *testing.T) {
	c := EmptyCursor[int]()
	require.True(t, c.IsEmpty())
	_, ok := c.Next()
	require.False(t, ok)
	_, ok = c.Previous()
	require.False(t, ok)
	require.Nil(t, Collect(c))
}

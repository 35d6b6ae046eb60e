package cow

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInsertedLeavesSharedArrayAlone(t *testing.T) {
	backing := make([]int, 3, 10)
	copy(backing, []int{1, 2, 3})
	a := Inserted(backing, 1, 9)
	b := Inserted(backing, 3, 7)
	require.Equal(t, []int{1, 9, 2, 3}, a)
	require.Equal(t, []int{1, 2, 3, 7}, b)
	require.Equal(t, []int{1, 2, 3}, backing)
	require.Equal(t, 0, backing[:4][3], "spare capacity must not be written")
}

func TestDeletedAndReplaced(t *testing.T) {
	s := []string{"a", "b", "c", "d"}
	require.Equal(t, []string{"a", "d"}, Deleted(s, 1, 3))
	require.Equal(t, []string{"a", "x", "c", "d"}, Replaced(s, 1, "x"))
	require.Equal(t, []string{"a", "b", "c", "d"}, s)
	d := Deleted(s, 0, 1)
	d = append(d, "z")
	require.Equal(t, []string{"b", "c", "d", "z"}, d)
	require.Equal(t, []string{"a", "b", "c", "d"}, s)
}

func TestConcatAndSub(t *testing.T) {
	require.Equal(t, []int{1, 2, 3, 4}, Concat([]int{1}, []int{2, 3}, nil, []int{4}))
	s := []int{1, 2, 3, 4}
	sub := Sub(s, 1, 3)
	sub[0] = 99
	require.Equal(t, []int{1, 2, 3, 4}, s)
	require.Equal(t, []int{99, 3}, sub)
}

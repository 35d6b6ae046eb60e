package btree

import (
	"strconv"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/npillmayer/collections/persistent"
	"github.com/npillmayer/collections/persistent/page"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func TestTreeCreateEmptyTree(t *testing.T) {
	tree := Immutable[int, string](Degree(2))
	require.True(t, tree.IsEmpty())
	require.Equal(t, 0, tree.Size())
	require.Equal(t, 0, tree.Depth())
	_, found := tree.Get(7)
	require.False(t, found)
	require.False(t, tree.Cursor().HasNext())
	require.NoError(t, tree.Check())
}

func TestTreeScenarioInsertOutOfOrder(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "pcoll.btree")
	defer teardown()
	//
	tree := Empty[string, int]()
	tree = tree.Updated("b", 2).Updated("a", 1).Updated("c", 3)
	require.Equal(t, []persistent.Entry[string, int]{
		{Key: "a", Value: 1}, {Key: "b", Value: 2}, {Key: "c", Value: 3},
	}, tree.Entries())
}

func TestTreeInsertWithSplit(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "pcoll.btree")
	tracer().SetTraceLevel(tracing.LevelError)
	defer teardown()
	//
	tree := Immutable[int, string](Degree(2))
	for i := 0; i < 5; i++ {
		tree = tree.Updated(i, strconv.Itoa(i))
	}
	if tree.Depth() != 2 {
		t.Logf("tree = %s", tree.Dump())
		t.Fatalf("expected tree of 5 entries and degree 2 to have depth 2, has %d", tree.Depth())
	}
	require.NoError(t, tree.Check())
	for i := 5; i < 100; i++ {
		tree = tree.Updated(i, strconv.Itoa(i))
		require.NoError(t, tree.Check(), tree.Dump())
	}
	require.Equal(t, 100, tree.Size())
	for i := 0; i < 100; i++ {
		v, found := tree.Get(i)
		require.True(t, found, "key %d", i)
		require.Equal(t, strconv.Itoa(i), v)
	}
	t.Logf("tree = %s", tree.Dump())
}

func TestTreeUpdatedLeavesOriginalAlone(t *testing.T) {
	tree := Immutable[int, string](Degree(2))
	for i := 0; i < 20; i++ {
		tree = tree.Updated(i, "x")
	}
	other := tree.Updated(7, "y").Removed(3).Updated(100, "z")
	require.Equal(t, 20, tree.Size())
	v, _ := tree.Get(7)
	require.Equal(t, "x", v)
	require.True(t, tree.ContainsKey(3))
	require.False(t, tree.ContainsKey(100))
	v, _ = other.Get(7)
	require.Equal(t, "y", v)
	require.False(t, other.ContainsKey(3))
	require.NoError(t, tree.Check())
	require.NoError(t, other.Check())
}

func TestTreeUpdateIsIdempotent(t *testing.T) {
	tree := Immutable[int, int](Degree(2))
	for i := 0; i < 30; i++ {
		tree = tree.Updated(i, i*i)
	}
	once := tree.Updated(12, 1)
	twice := once.Updated(12, 1)
	require.Same(t, once.root, twice.root)
	require.Same(t, tree.root, tree.Updated(5, 25).root)
}

func TestTreeUpdatedThenRemovedRestoresContent(t *testing.T) {
	tree := Immutable[int, int](Degree(2))
	for i := 0; i < 50; i += 2 {
		tree = tree.Updated(i, i)
	}
	for k := -1; k < 52; k += 2 {
		other := tree.Updated(k, 0).Removed(k)
		require.Equal(t, tree.Entries(), other.Entries(), "key %d", k)
		require.NoError(t, other.Check())
	}
	require.Same(t, tree.root, tree.Removed(1).root)
}

func TestTreeDeleteAndMerge(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "pcoll.btree")
	tracer().SetTraceLevel(tracing.LevelError)
	defer teardown()
	//
	tree := Immutable[int, int](Degree(2))
	for i := 0; i < 64; i++ {
		tree = tree.Updated(i, i)
	}
	for i := 0; i < 64; i++ {
		tree = tree.Removed((i * 37) % 64)
		if err := tree.Check(); err != nil {
			t.Logf("tree = %s", tree.Dump())
			t.Fatalf("after removing %d: %v", (i*37)%64, err)
		}
		require.Equal(t, 63-i, tree.Size())
	}
	require.True(t, tree.IsEmpty())
	require.Nil(t, tree.root)
}

func TestTreeIndexOfAndEntryAt(t *testing.T) {
	tree := Immutable[int, int](Degree(2))
	for i := 0; i < 40; i++ {
		tree = tree.Updated(i*10, i)
	}
	for i := 0; i < 40; i++ {
		index, found := tree.IndexOf(i * 10)
		require.True(t, found)
		require.Equal(t, i, index)
		index, found = tree.IndexOf(i*10 + 5)
		require.False(t, found)
		require.Equal(t, i+1, index)
		e, err := tree.EntryAt(i)
		require.NoError(t, err)
		require.Equal(t, i*10, e.Key)
	}
	_, err := tree.EntryAt(40)
	require.True(t, errors.Is(err, persistent.ErrIndexOutOfRange))
	_, err = tree.EntryAt(-1)
	require.True(t, errors.Is(err, persistent.ErrIndexOutOfRange))
}

func TestTreeNeighbours(t *testing.T) {
	tree := Immutable[int, int](Degree(2))
	for i := 1; i <= 30; i++ {
		tree = tree.Updated(i*2, i)
	}
	first, ok := tree.FirstEntry()
	require.True(t, ok)
	require.Equal(t, 2, first.Key)
	last, ok := tree.LastEntry()
	require.True(t, ok)
	require.Equal(t, 60, last.Key)
	for k := 1; k < 60; k++ {
		next, ok := tree.NextEntry(k)
		require.True(t, ok, "next of %d", k)
		require.Equal(t, k+2-k%2, next.Key, "next of %d", k)
	}
	_, ok = tree.NextEntry(60)
	require.False(t, ok)
	for k := 3; k <= 61; k++ {
		prev, ok := tree.PreviousEntry(k)
		require.True(t, ok, "previous of %d", k)
		require.Equal(t, k-1-(k-1)%2, prev.Key, "previous of %d", k)
	}
	_, ok = tree.PreviousEntry(2)
	require.False(t, ok)
}

func TestTreeDropTake(t *testing.T) {
	rng := rand.New(rand.NewSource(1000))
	tree := Empty[int, int]()
	for _, k := range rng.Perm(1000) {
		tree = tree.Updated(k+1, k+1)
	}
	window := tree.Drop(500).Take(100)
	require.NoError(t, window.Check())
	require.Equal(t, 100, window.Size())
	keys := persistent.Collect(window.KeyCursor())
	for i, k := range keys {
		require.Equal(t, 501+i, k)
	}
	require.Same(t, tree.root, tree.Drop(0).root)
	require.Same(t, tree.root, tree.Take(1000).root)
	require.True(t, tree.Drop(1000).IsEmpty())
	require.True(t, tree.Take(-3).IsEmpty())
}

func TestTreeCursors(t *testing.T) {
	tree := Immutable[int, int](Degree(2))
	for i := 99; i >= 0; i-- {
		tree = tree.Updated(i, -i)
	}
	forward := persistent.Collect(tree.KeyCursor())
	require.Len(t, forward, 100)
	for i := 1; i < len(forward); i++ {
		require.Less(t, forward[i-1], forward[i])
	}
	reverse := persistent.Collect(persistent.KeyCursor(tree.ReverseCursor()))
	require.Len(t, reverse, 100)
	for i := range reverse {
		require.Equal(t, forward[len(forward)-1-i], reverse[i])
	}
	values := persistent.Collect(tree.ValueCursor())
	require.Equal(t, -99, values[99])
	c := tree.CursorAt(42)
	e, ok := c.Next()
	require.True(t, ok)
	require.Equal(t, 42, e.Key)
	e, ok = c.Previous()
	require.True(t, ok)
	require.Equal(t, 42, e.Key)
	e, ok = c.Previous()
	require.True(t, ok)
	require.Equal(t, 41, e.Key)
	c.Skip(50)
	require.Equal(t, 91, c.NextIndex())
}

func TestTreeLegacyMutationsFail(t *testing.T) {
	tree := Of(persistent.E(1, "one"))
	require.True(t, errors.Is(tree.Put(2, "two"), persistent.ErrUnsupportedMutation))
	require.True(t, errors.Is(tree.Remove(1), persistent.ErrUnsupportedMutation))
	require.True(t, errors.Is(tree.Clear(), persistent.ErrUnsupportedMutation))
	require.Equal(t, 1, tree.Size())
}

func TestTreeConstructors(t *testing.T) {
	tree := Of(persistent.E("x", 1), persistent.E("y", 2), persistent.E("x", 3))
	require.Equal(t, 2, tree.Size())
	v, _ := tree.Get("x")
	require.Equal(t, 3, v)
	fromMap := FromMap(map[string]int{"x": 3, "y": 2})
	require.Equal(t, tree.Entries(), fromMap.Entries())
	reversed := From(NewContext(func(a, b string) int { return persistent.Compare(b, a) }),
		tree.Cursor())
	require.Equal(t, []string{"y", "x"}, persistent.Collect(reversed.KeyCursor()))
}

func TestTreeWithNarrowPolicy(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "pcoll.btree")
	tracer().SetTraceLevel(tracing.LevelError)
	defer teardown()
	//
	tree := Immutable[int, int](WithPolicy(page.Thresholds{SplitArity: 1, MergeArity: 1}))
	for i := 0; i < 50; i++ {
		tree = tree.Updated(i, i)
		require.NoError(t, tree.Check(), tree.Dump())
	}
	for i := 0; i < 50; i += 2 {
		tree = tree.Removed(i)
		require.NoError(t, tree.Check(), tree.Dump())
	}
	require.Equal(t, 25, tree.Size())
}

package stree

import (
	"fmt"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/kr/pretty"
	"github.com/npillmayer/collections/persistent"
	"github.com/npillmayer/collections/persistent/page"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
	"golang.org/x/exp/slices"
	"golang.org/x/sync/errgroup"
)

func TestListEmpty(t *testing.T) {
	l := Empty[string]()
	require.True(t, l.IsEmpty())
	require.Equal(t, 0, l.Size())
	_, err := l.Get(0)
	require.True(t, errors.Is(err, persistent.ErrIndexOutOfRange))
	_, found := l.Lookup(0, []byte("x"))
	require.False(t, found)
	require.False(t, l.Cursor().HasNext())
	require.NoError(t, l.Check())
}

func TestListInsertAndMove(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "pcoll.stree")
	defer teardown()
	//
	l := Empty[string]()
	require.NoError(t, l.Insert(0, "x"))
	require.NoError(t, l.Insert(1, "y"))
	require.NoError(t, l.Move(0, 1))
	require.Equal(t, []string{"y", "x"}, l.Snapshot().Values())
}

func TestListIndexErrors(t *testing.T) {
	l := Of("a", "b", "c")
	require.True(t, errors.Is(l.Insert(4, "d"), persistent.ErrIndexOutOfRange))
	require.True(t, errors.Is(l.Insert(-1, "d"), persistent.ErrIndexOutOfRange))
	_, err := l.Set(3, "d")
	require.True(t, errors.Is(err, persistent.ErrIndexOutOfRange))
	_, err = l.Remove(-1)
	require.True(t, errors.Is(err, persistent.ErrIndexOutOfRange))
	require.True(t, errors.Is(l.Move(0, 3), persistent.ErrIndexOutOfRange))
	require.True(t, errors.Is(l.Move(3, 0), persistent.ErrIndexOutOfRange))
	require.Equal(t, []string{"a", "b", "c"}, l.Snapshot().Values())
	require.NoError(t, l.Insert(3, "d"))
	require.Equal(t, 4, l.Size())
}

func TestListSetAndRemove(t *testing.T) {
	l := Of("a", "b", "c")
	old, err := l.Set(1, "B")
	require.NoError(t, err)
	require.Equal(t, "b", old)
	old, err = l.Remove(0)
	require.NoError(t, err)
	require.Equal(t, "a", old)
	require.Equal(t, []string{"B", "c"}, l.Snapshot().Values())
	l.Add("d")
	require.True(t, RemoveValue(l, "c"))
	require.False(t, RemoveValue(l, "c"))
	require.Equal(t, 1, IndexOf(l, "d"))
	require.Equal(t, -1, IndexOf(l, "a"))
	require.True(t, l.RemoveFunc(func(s string) bool { return s == "B" }))
	require.Equal(t, []string{"d"}, l.Snapshot().Values())
	l.Clear()
	require.True(t, l.IsEmpty())
}

func TestListIdentityKeys(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "pcoll.stree")
	tracer().SetTraceLevel(tracing.LevelError)
	defer teardown()
	//
	l := New(NewContext[int](Degree(2)))
	for i := 0; i < 50; i++ {
		l.Add(i)
	}
	e, err := l.GetEntry(30)
	require.NoError(t, err)
	require.Equal(t, 30, e.Value)
	_, err = l.Remove(10) // element 30 is now at position 29
	require.NoError(t, err)
	at, found := l.Lookup(30, e.Key)
	require.True(t, found)
	require.Equal(t, 29, at)
	at, found = l.Lookup(45, e.Key) // wraps around
	require.True(t, found)
	require.Equal(t, 29, at)
	old, err := l.SetWithKey(0, e.Key, 300)
	require.NoError(t, err)
	require.Equal(t, 30, old)
	v, _ := l.Get(29)
	require.Equal(t, 300, v)
	require.NoError(t, l.MoveWithKey(29, 0, e.Key))
	v, _ = l.Get(0)
	require.Equal(t, 300, v)
	moved, _ := l.GetEntry(0)
	require.Equal(t, e.Key, moved.Key)
	old, err = l.RemoveWithKey(0, e.Key)
	require.NoError(t, err)
	require.Equal(t, 300, old)
	_, err = l.RemoveWithKey(0, e.Key)
	require.True(t, errors.Is(err, persistent.ErrKeyNotFound))
	_, err = l.SetWithKey(0, e.Key, 1)
	require.True(t, errors.Is(err, persistent.ErrKeyNotFound))
	require.True(t, errors.Is(l.MoveWithKey(0, 1, e.Key), persistent.ErrKeyNotFound))
	require.Equal(t, 48, l.Size())
	require.NoError(t, l.Check(), l.Dump())
}

func TestListCustomIdentity(t *testing.T) {
	ctx := NewContext[string](WithIdentify(func(s string) []byte {
		return []byte(s)
	}))
	l := New(ctx)
	l.Add("a")
	l.Add("b")
	require.NoError(t, l.Insert(1, "c"))
	at, found := l.Lookup(0, []byte("b"))
	require.True(t, found)
	require.Equal(t, 2, at)
	keys := persistent.Collect(l.KeyCursor())
	require.Equal(t, [][]byte{[]byte("a"), []byte("c"), []byte("b")}, keys)
}

func TestListSnapshotIsStable(t *testing.T) {
	l := New(NewContext[int](Degree(2)))
	for i := 0; i < 20; i++ {
		l.Add(i)
	}
	snap := l.Snapshot()
	l.Drop(5)
	_, _ = l.Set(0, -1)
	l.Add(100)
	require.Equal(t, 20, snap.Size())
	v, err := snap.Get(5)
	require.NoError(t, err)
	require.Equal(t, 5, v)
	require.NoError(t, snap.Check())
	require.True(t, errors.Is(snap.Insert(0, 1), persistent.ErrUnsupportedMutation))
	require.True(t, errors.Is(snap.Clear(), persistent.ErrUnsupportedMutation))
	require.Equal(t, 16, l.Size())
}

func TestListDropTake(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "pcoll.stree")
	tracer().SetTraceLevel(tracing.LevelError)
	defer teardown()
	//
	values := make([]int, 1000)
	for i := range values {
		values[i] = i
	}
	l := From(NewContext[int](Degree(3)), persistent.SliceCursor(values))
	require.NoError(t, l.Check())
	l.Drop(0)
	l.Take(2000)
	require.Equal(t, 1000, l.Size())
	l.Drop(500)
	l.Take(100)
	require.NoError(t, l.Check(), l.Dump())
	require.Equal(t, values[500:600], l.Snapshot().Values())
	l.Take(-1)
	require.True(t, l.IsEmpty())
	l = Of(1, 2, 3)
	l.Drop(3)
	require.True(t, l.IsEmpty())
}

func TestListCursors(t *testing.T) {
	l := New(NewContext[int](Degree(2)))
	for i := 0; i < 30; i++ {
		l.Add(i)
	}
	c := l.Cursor()
	c.Skip(10)
	v, ok := c.Next()
	require.True(t, ok)
	require.Equal(t, 10, v)
	back := persistent.Collect(l.ReverseCursor())
	require.Len(t, back, 30)
	require.Equal(t, 29, back[0])
	require.Equal(t, 0, back[29])
}

func TestListWithNarrowPolicy(t *testing.T) {
	l := New(NewContext[int](WithPolicy(page.Thresholds{SplitArity: 1, MergeArity: 1})))
	for i := 0; i < 50; i++ {
		require.NoError(t, l.Insert(i/2, i))
		require.NoError(t, l.Check(), l.Dump())
	}
	for i := 0; i < 25; i++ {
		_, err := l.Remove(i)
		require.NoError(t, err)
		require.NoError(t, l.Check(), l.Dump())
	}
	require.Equal(t, 25, l.Size())
}

// --- Random operations -----------------------------------------------------

func TestListRandomOperations(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "pcoll.stree")
	tracer().SetTraceLevel(tracing.LevelError)
	defer teardown()
	//
	insert := func(model []int, at, v int) []int {
		return append(model[:at], append([]int{v}, model[at:]...)...)
	}
	remove := func(model []int, at int) []int {
		return append(model[:at], model[at+1:]...)
	}
	for _, degree := range []int{2, 3, 8} {
		t.Run(fmt.Sprintf("degree=%d", degree), func(t *testing.T) {
			rnd := rand.New(rand.NewSource(uint64(degree)))
			l := New(NewContext[int](Degree(degree)))
			var model []int
			for step := 0; step < 3000; step++ {
				var op string
				switch r := rnd.Intn(20); {
				case r < 9 || len(model) == 0:
					op = "insert"
					at := rnd.Intn(len(model) + 1)
					require.NoError(t, l.Insert(at, step))
					model = insert(model, at, step)
				case r < 12:
					op = "remove"
					at := rnd.Intn(len(model))
					v, err := l.Remove(at)
					require.NoError(t, err)
					require.Equal(t, model[at], v)
					model = remove(model, at)
				case r < 13:
					op = "move"
					from, to := rnd.Intn(len(model)), rnd.Intn(len(model))
					require.NoError(t, l.Move(from, to))
					v := model[from]
					model = insert(remove(model, from), to, v)
				case r < 14:
					op = "set"
					at := rnd.Intn(len(model))
					_, err := l.Set(at, -step)
					require.NoError(t, err)
					model[at] = -step
				case r < 17:
					at, hint := rnd.Intn(len(model)), rnd.Intn(len(model))
					e, err := l.GetEntry(at)
					require.NoError(t, err)
					switch rnd.Intn(3) {
					case 0:
						op = "move with key"
						to := rnd.Intn(len(model))
						require.NoError(t, l.MoveWithKey(hint, to, e.Key))
						model = insert(remove(model, at), to, e.Value)
					case 1:
						op = "set with key"
						old, err := l.SetWithKey(hint, e.Key, -step)
						require.NoError(t, err)
						require.Equal(t, model[at], old)
						model[at] = -step
					default:
						op = "remove with key"
						old, err := l.RemoveWithKey(hint, e.Key)
						require.NoError(t, err)
						require.Equal(t, model[at], old)
						model = remove(model, at)
					}
				case r < 18 && rnd.Intn(10) == 0:
					op = "drop"
					n := rnd.Intn(len(model) + 1)
					l.Drop(n)
					model = model[n:]
				case r < 19 && rnd.Intn(10) == 0:
					op = "take"
					n := rnd.Intn(len(model) + 1)
					l.Take(n)
					model = model[:n]
				default:
					op = "none"
				}
				require.NoError(t, l.Check(), "step %d (%s)\n%s", step, op, l.Dump())
				require.Equal(t, len(model), l.Size(), "step %d (%s)", step, op)
				values := l.Snapshot().Values()
				if !slices.Equal(values, model) {
					t.Fatalf("step %d (%s): sequence differs from model: %v", step, op,
						pretty.Diff(values, model))
				}
				back := persistent.Collect(l.ReverseCursor())
				require.Len(t, back, len(model))
				for i, v := range back {
					require.Equal(t, model[len(model)-1-i], v, "step %d (%s): reverse cursor", step, op)
				}
			}
		})
	}
}

// --- Concurrency -----------------------------------------------------------

func TestListConcurrentWriters(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "pcoll.stree")
	tracer().SetTraceLevel(tracing.LevelError)
	defer teardown()
	//
	const writers, count = 8, 200
	l := New(NewContext[int](Degree(4)))
	var g errgroup.Group
	for w := 0; w < writers; w++ {
		w := w
		g.Go(func() error {
			for i := 0; i < count; i++ {
				if err := l.Insert(0, w*count+i); err != nil {
					return err
				}
				if i%4 == 3 {
					if _, err := l.Remove(0); err != nil {
						return err
					}
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	require.Equal(t, writers*(count-count/4), l.Size())
	require.NoError(t, l.Check())
	seen := make(map[int]bool)
	for _, v := range l.Snapshot().Values() {
		require.False(t, seen[v], "duplicate element %d", v)
		seen[v] = true
	}
}

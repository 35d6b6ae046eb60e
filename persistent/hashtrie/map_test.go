package hashtrie

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/npillmayer/collections/persistent"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

// pairHasher lets keys 2i and 2i+1 share their complete hash.
var pairHasher = HasherFunc(func(k int) uint32 { return uint32(k / 2) })

func TestMapEmpty(t *testing.T) {
	m := EmptyMap[string, int]()
	require.True(t, m.IsEmpty())
	_, found := m.Get("x")
	require.False(t, found)
	_, ok := m.Head()
	require.False(t, ok)
	_, ok = m.Next("x")
	require.False(t, ok)
	require.False(t, m.Cursor().HasNext())
	require.True(t, m.Removed("x").IsEmpty())
	require.NoError(t, m.Check())
}

func TestMapUpdatedAndRemoved(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "pcoll.hashtrie")
	tracer().SetTraceLevel(tracing.LevelError)
	defer teardown()
	//
	m := EmptyMap[int, int]()
	for i := 0; i < 2000; i++ {
		m = m.Updated(i, i*i)
	}
	require.Equal(t, 2000, m.Size())
	require.NoError(t, m.Check())
	for i := 0; i < 2000; i++ {
		v, found := m.Get(i)
		require.True(t, found, "key %d", i)
		require.Equal(t, i*i, v)
	}
	_, found := m.Get(2000)
	require.False(t, found)
	for i := 0; i < 2000; i += 2 {
		m = m.Removed(i)
	}
	require.Equal(t, 1000, m.Size())
	require.NoError(t, m.Check())
	for i := 0; i < 2000; i++ {
		require.Equal(t, i%2 == 1, m.ContainsKey(i), "key %d", i)
	}
	for i := 1; i < 2000; i += 2 {
		m = m.Removed(i)
		if err := m.Check(); err != nil {
			t.Logf("map = %s", m.Dump())
			t.Fatalf("after removing %d: %v", i, err)
		}
	}
	require.True(t, m.IsEmpty())
	require.Nil(t, m.root)
}

func TestMapUpdateIsIdempotent(t *testing.T) {
	m := MapOf(persistent.E("a", 1), persistent.E("b", 2))
	once := m.Updated("c", 3)
	twice := once.Updated("c", 3)
	require.Same(t, once.root, twice.root)
	require.Equal(t, 3, twice.Size())
	replaced := once.Updated("c", 4)
	require.Equal(t, 3, replaced.Size())
	v, _ := replaced.Get("c")
	require.Equal(t, 4, v)
	v, _ = once.Get("c")
	require.Equal(t, 3, v)
}

func TestMapUpdatedThenRemovedRestoresContent(t *testing.T) {
	m := EmptyMap[int, string]()
	for i := 0; i < 300; i += 3 {
		m = m.Updated(i, "x")
	}
	for k := 1; k < 300; k += 3 {
		other := m.Updated(k, "y").Removed(k)
		require.Equal(t, m.Size(), other.Size())
		require.Equal(t, m.Entries(), other.Entries())
		require.NoError(t, other.Check())
	}
}

func TestMapFullHashCollision(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "pcoll.hashtrie")
	tracer().SetTraceLevel(tracing.LevelError)
	defer teardown()
	//
	constant := HasherFunc(func(string) uint32 { return 0xdeadbeef })
	m := NewMap[string, int](constant).Updated("a", 1).Updated("b", 2).Updated("c", 3)
	require.Equal(t, 3, m.Size())
	require.NoError(t, m.Check())
	require.Equal(t, knot, m.root.kind(m.root.branches()))
	for k, v := range map[string]int{"a": 1, "b": 2, "c": 3} {
		value, found := m.Get(k)
		require.True(t, found)
		require.Equal(t, v, value)
	}
	m = m.Removed("b")
	require.Equal(t, knot, m.root.kind(m.root.branches()))
	m = m.Removed("a")
	require.Equal(t, single, m.root.kind(m.root.branches()))
	require.NoError(t, m.Check())
	require.Equal(t, []persistent.Entry[string, int]{{Key: "c", Value: 3}}, m.Entries())
}

func TestMapKnotIsPushedDown(t *testing.T) {
	// keys 0 and 1 share hash 0, key 64 has hash 32: equal at shift 0, different at shift 5
	m := NewMap[int, int](pairHasher).Updated(0, 0).Updated(1, 1)
	b := branch(0, 0)
	require.Equal(t, knot, m.root.kind(b))
	m = m.Updated(64, 64)
	require.Equal(t, subtree, m.root.kind(b))
	require.NoError(t, m.Check())
	for _, k := range []int{0, 1, 64} {
		v, found := m.Get(k)
		require.True(t, found)
		require.Equal(t, k, v)
	}
	m = m.Removed(64)
	require.Equal(t, knot, m.root.kind(b), "lone knot should have been hoisted")
	require.NoError(t, m.Check())
}

func TestMapWithCollisionsRandom(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "pcoll.hashtrie")
	tracer().SetTraceLevel(tracing.LevelError)
	defer teardown()
	//
	rng := rand.New(rand.NewSource(77))
	for _, h := range []Hasher[int]{pairHasher, NewHasher[int]()} {
		m := NewMap[int, int](h)
		ref := map[int]int{}
		for step := 0; step < 4000; step++ {
			k := rng.Intn(600)
			if rng.Intn(3) == 0 {
				m = m.Removed(k)
				delete(ref, k)
			} else {
				m = m.Updated(k, step)
				ref[k] = step
			}
			if err := m.Check(); err != nil {
				t.Logf("map = %s", m.Dump())
				t.Fatalf("step %d: %v", step, err)
			}
			require.Equal(t, len(ref), m.Size())
		}
		for k, v := range ref {
			value, found := m.Get(k)
			require.True(t, found)
			require.Equal(t, v, value)
		}
		require.Len(t, m.Entries(), len(ref))
	}
}

func TestMapIteration(t *testing.T) {
	for _, h := range []Hasher[int]{pairHasher, NewHasher[int]()} {
		m := NewMap[int, int](h)
		for i := 0; i < 500; i++ {
			m = m.Updated(i, -i)
		}
		entries := m.Entries()
		require.Len(t, entries, 500)
		seen := map[int]bool{}
		for _, e := range entries {
			require.False(t, seen[e.Key])
			require.Equal(t, -e.Key, e.Value)
			seen[e.Key] = true
		}
		// Head and Next walk the same sequence
		e, ok := m.Head()
		for i := 0; i < len(entries); i++ {
			require.True(t, ok)
			require.Equal(t, entries[i], e)
			e, ok = m.Next(e.Key)
		}
		require.False(t, ok)
		// backwards from the end
		c := m.Cursor()
		c.Skip(500)
		require.False(t, c.HasNext())
		for i := len(entries) - 1; i >= 0; i-- {
			e, ok := c.Previous()
			require.True(t, ok)
			require.Equal(t, entries[i], e)
		}
		_, ok = c.Previous()
		require.False(t, ok)
	}
}

func TestMapIterationIsDeterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	a, b := EmptyMap[int, bool](), EmptyMap[int, bool]()
	for i := 0; i < 300; i++ {
		a = a.Updated(i, true)
	}
	for _, k := range rng.Perm(300) {
		b = b.Updated(k, true)
	}
	require.Equal(t, a.Entries(), b.Entries())
}

func TestMapNextOfAbsentKey(t *testing.T) {
	m := EmptyMap[int, int]()
	for i := 0; i < 400; i += 2 {
		m = m.Updated(i, i)
	}
	for k := 1; k < 400; k += 2 {
		// the successor of an absent key is its successor once the key is present
		expected, eok := m.Updated(k, k).Next(k)
		e, ok := m.Next(k)
		require.Equal(t, eok, ok, "key %d", k)
		require.Equal(t, expected, e, "key %d", k)
	}
}

func TestMapNilValues(t *testing.T) {
	m := EmptyMap[string, error]().Updated("ok", nil).Updated("fail", errors.New("fail"))
	v, found := m.Get("ok")
	require.True(t, found)
	require.NoError(t, v)
	require.NoError(t, m.Check())
	require.Same(t, m.root, m.Updated("ok", nil).root)
}

func TestMapLegacyMutationsFail(t *testing.T) {
	m := MapOf(persistent.E(1, "one"))
	require.True(t, errors.Is(m.Put(2, "two"), persistent.ErrUnsupportedMutation))
	require.True(t, errors.Is(m.Remove(1), persistent.ErrUnsupportedMutation))
	require.True(t, errors.Is(m.Clear(), persistent.ErrUnsupportedMutation))
	require.Equal(t, 1, m.Size())
}

func TestMapConstructors(t *testing.T) {
	gomap := map[string]int{"x": 1, "y": 2, "z": 3}
	m := MapFromGo(gomap)
	require.Equal(t, 3, m.Size())
	other := MapFrom(NewHasher[string](), m.Cursor())
	require.Equal(t, m.Entries(), other.Entries())
	keys := persistent.Collect(m.KeyCursor())
	require.ElementsMatch(t, []string{"x", "y", "z"}, keys)
	values := persistent.Collect(m.ValueCursor())
	require.ElementsMatch(t, []int{1, 2, 3}, values)
}

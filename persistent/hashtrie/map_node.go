package hashtrie

import (
	"fmt"
	"math/bits"
	"strings"

	"github.com/npillmayer/collections/persistent"
)

/*
Remarks:
--------

- Slots of a map node are laid out as

	[ k₀ … kₙ₋₁ | v₀ … vₘ₋₁ ]

  with n = popcount(treeMap|leafMap) and m = popcount(leafMap &^ treeMap). Slot kᵢ holds a
  key of type K for single entries, a *mnode for nested nodes and an ArrayMap for knots.
  Values of single entries are found in the second region, in the same order as their keys.

- Nodes below the root hold at least two entries. A nested node shrinking to a single
  entry, or to a single knot, is replaced by that entry or knot in its parent.

- 'cow' is used for variables holding fresh copies of nodes.

*/

type mnode[K, V any] struct {
	treeMap uint32
	leafMap uint32
	slots   []any
}

func (node *mnode[K, V]) branches() uint32 {
	return node.treeMap | node.leafMap
}

func (node *mnode[K, V]) kind(b uint32) kind {
	return classify(node.treeMap, node.leafMap, b)
}

func (node *mnode[K, V]) arity() int {
	return bits.OnesCount32(node.branches())
}

func (node *mnode[K, V]) keyIndex(b uint32) int {
	return below(node.branches(), b)
}

func (node *mnode[K, V]) valueIndex(b uint32) int {
	return node.arity() + below(node.leafMap&^node.treeMap, b)
}

func (node *mnode[K, V]) isEmpty() bool {
	return node.branches() == 0
}

func (node *mnode[K, V]) key(b uint32) K {
	return slotAs[K](node.slots[node.keyIndex(b)])
}

func (node *mnode[K, V]) value(b uint32) V {
	return slotAs[V](node.slots[node.valueIndex(b)])
}

func (node *mnode[K, V]) child(b uint32) *mnode[K, V] {
	return node.slots[node.keyIndex(b)].(*mnode[K, V])
}

func (node *mnode[K, V]) knot(b uint32) ArrayMap[K, V] {
	return node.slots[node.keyIndex(b)].(ArrayMap[K, V])
}

func (node *mnode[K, V]) entry(b uint32) persistent.Entry[K, V] {
	return persistent.Entry[K, V]{Key: node.key(b), Value: node.value(b)}
}

// remap returns a copy of node with new branch maps. Slots of branches which keep their
// kind are carried over, all other slots are left empty for the caller to fill in.
func (node *mnode[K, V]) remap(treeMap, leafMap uint32) *mnode[K, V] {
	cow := &mnode[K, V]{treeMap: treeMap, leafMap: leafMap}
	cow.slots = make([]any, cow.arity()+bits.OnesCount32(leafMap&^treeMap))
	for all := cow.branches(); all != 0; all &= all - 1 {
		b := lowest(all)
		k := cow.kind(b)
		if k != node.kind(b) {
			continue
		}
		cow.slots[cow.keyIndex(b)] = node.slots[node.keyIndex(b)]
		if k == single {
			cow.slots[cow.valueIndex(b)] = node.slots[node.valueIndex(b)]
		}
	}
	return cow
}

// place sets the slots for branch b, which has to be mapped already.
func (node *mnode[K, V]) place(b uint32, l mleaf[K, V]) {
	switch node.kind(b) {
	case single:
		node.slots[node.keyIndex(b)] = l.entry.Key
		node.slots[node.valueIndex(b)] = l.entry.Value
	case subtree:
		node.slots[node.keyIndex(b)] = l.child
	case knot:
		node.slots[node.keyIndex(b)] = l.knot
	default:
		panic(fmt.Sprintf("hashtrie: cannot place %v at absent branch", l))
	}
}

// withBranch returns a copy of node with branch b set to l.
func (node *mnode[K, V]) withBranch(b uint32, l mleaf[K, V]) *mnode[K, V] {
	treeMap, leafMap := node.treeMap&^b, node.leafMap&^b
	switch l.kind() {
	case single:
		leafMap |= b
	case subtree:
		treeMap |= b
	case knot:
		treeMap, leafMap = treeMap|b, leafMap|b
	}
	cow := node.remap(treeMap, leafMap)
	cow.place(b, l)
	return cow
}

// withoutBranch returns a copy of node with branch b cleared.
func (node *mnode[K, V]) withoutBranch(b uint32) *mnode[K, V] {
	return node.remap(node.treeMap&^b, node.leafMap&^b)
}

// mleaf is the content of a branch taken out of its node: an entry, a knot or a
// nested node.
type mleaf[K, V any] struct {
	entry persistent.Entry[K, V]
	knot  ArrayMap[K, V]
	child *mnode[K, V]
}

func (l mleaf[K, V]) kind() kind {
	switch {
	case l.child != nil:
		return subtree
	case l.knot.Size() > 0:
		return knot
	}
	return single
}

func (l mleaf[K, V]) String() string {
	switch l.kind() {
	case subtree:
		return l.child.String()
	case knot:
		return l.knot.String()
	}
	return fmt.Sprintf("%v:%v", l.entry.Key, l.entry.Value)
}

// asKnot turns an entry or a knot into a knot.
func (l mleaf[K, V]) asKnot(h Hasher[K]) ArrayMap[K, V] {
	if l.kind() == knot {
		return l.knot
	}
	return NewArrayMap[K, V](h).Updated(l.entry.Key, l.entry.Value)
}

// --- Lookup ----------------------------------------------------------------

func (node *mnode[K, V]) get(key K, hash uint32, shift uint, h Hasher[K]) (V, bool) {
	for {
		b := branch(hash, shift)
		switch node.kind(b) {
		case single:
			if h.Equal(node.key(b), key) {
				return node.value(b), true
			}
		case subtree:
			node = node.child(b)
			shift += fragment
			continue
		case knot:
			return node.knot(b).Get(key)
		}
		var none V
		return none, false
	}
}

// first returns the first entry of a non-empty sub-trie in iteration order.
func (node *mnode[K, V]) first() persistent.Entry[K, V] {
	for {
		b := lowest(node.branches())
		switch node.kind(b) {
		case subtree:
			node = node.child(b)
			continue
		case knot:
			e, _ := node.knot(b).Head()
			return e
		}
		return node.entry(b)
	}
}

// firstAfter returns the first entry of the branches following b.
func (node *mnode[K, V]) firstAfter(b uint32) (persistent.Entry[K, V], bool) {
	rest := above(node.branches(), b)
	if rest == 0 {
		return persistent.Entry[K, V]{}, false
	}
	b = lowest(rest)
	switch node.kind(b) {
	case subtree:
		return node.child(b).first(), true
	case knot:
		return node.knot(b).Head()
	}
	return node.entry(b), true
}

// next returns the entry following key in iteration order. key need not be present;
// then the first entry with a hash position after the hash of key is returned, where
// entries with a hash identical to the hash of key follow key.
func (node *mnode[K, V]) next(key K, hash uint32, shift uint, h Hasher[K]) (persistent.Entry[K, V], bool) {
	b := branch(hash, shift)
	switch node.kind(b) {
	case single:
		if k := node.key(b); !h.Equal(k, key) {
			if kh := h.Hash(k); kh == hash || precedes(hash, kh, shift+fragment) {
				return node.entry(b), true
			}
		}
	case subtree:
		if e, ok := node.child(b).next(key, hash, shift+fragment, h); ok {
			return e, true
		}
	case knot:
		kn := node.knot(b)
		if i := kn.indexOf(key); i >= 0 {
			if i+1 < kn.Size() {
				return kn.entries[i+1], true
			}
		} else if kh := h.Hash(kn.entries[0].Key); kh == hash || precedes(hash, kh, shift+fragment) {
			return kn.entries[0], true
		}
	}
	return node.firstAfter(b)
}

// --- Modification ----------------------------------------------------------

// updated returns a copy of node with key associated with value. If nothing changes,
// node itself is returned.
func (node *mnode[K, V]) updated(key K, hash uint32, value V, shift uint, h Hasher[K]) (*mnode[K, V], change) {
	b := branch(hash, shift)
	e := persistent.Entry[K, V]{Key: key, Value: value}
	switch node.kind(b) {
	case absent:
		return node.withBranch(b, mleaf[K, V]{entry: e}), added
	case single:
		old := node.entry(b)
		if h.Equal(old.Key, key) {
			if persistent.Identical(old.Value, value) {
				return node, unchanged
			}
			cow := node.remap(node.treeMap, node.leafMap)
			cow.place(b, mleaf[K, V]{entry: e})
			return cow, replaced
		}
		merged := merge(mleaf[K, V]{entry: old}, h.Hash(old.Key), mleaf[K, V]{entry: e}, hash,
			shift+fragment, h)
		return node.withBranch(b, merged), added
	case subtree:
		child := node.child(b)
		cowChild, ch := child.updated(key, hash, value, shift+fragment, h)
		if ch == unchanged {
			return node, unchanged
		}
		cow := node.remap(node.treeMap, node.leafMap)
		cow.place(b, mleaf[K, V]{child: cowChild})
		return cow, ch
	}
	kn := node.knot(b) // case knot
	if kh := h.Hash(kn.entries[0].Key); kh != hash {
		merged := merge(mleaf[K, V]{knot: kn}, kh, mleaf[K, V]{entry: e}, hash, shift+fragment, h)
		return node.withBranch(b, merged), added
	}
	cowKnot, ch := kn.updated(key, value)
	if ch == unchanged {
		return node, unchanged
	}
	cow := node.remap(node.treeMap, node.leafMap)
	cow.place(b, mleaf[K, V]{knot: cowKnot})
	return cow, ch
}

// merge combines two branch contents with hashes h1 and h2, which collided above shift.
// If the hashes are identical or hash bits are exhausted, the result is a knot, otherwise
// a new node, nested as deep as needed to separate the two.
func merge[K, V any](l1 mleaf[K, V], h1 uint32, l2 mleaf[K, V], h2 uint32, shift uint, h Hasher[K]) mleaf[K, V] {
	if h1 == h2 || shift >= hashBits {
		kn := l1.asKnot(h)
		for c := l2.asKnot(h).Cursor(); c.HasNext(); {
			e, _ := c.Next()
			kn = kn.Updated(e.Key, e.Value)
		}
		tracer().Debugf("knot of %d entries for hash %#08x at shift %d", kn.Size(), h1, shift)
		return mleaf[K, V]{knot: kn}
	}
	b1, b2 := branch(h1, shift), branch(h2, shift)
	if b1 == b2 {
		inner := merge(l1, h1, l2, h2, shift+fragment, h)
		return mleaf[K, V]{child: (&mnode[K, V]{}).withBranch(b1, inner)}
	}
	return mleaf[K, V]{child: (&mnode[K, V]{}).withBranch(b1, l1).withBranch(b2, l2)}
}

// removed returns a copy of node without key. If key is not present, node itself is
// returned, together with false.
func (node *mnode[K, V]) removed(key K, hash uint32, shift uint, h Hasher[K]) (*mnode[K, V], bool) {
	b := branch(hash, shift)
	switch node.kind(b) {
	case single:
		if !h.Equal(node.key(b), key) {
			return node, false
		}
		return node.withoutBranch(b), true
	case subtree:
		cowChild, ok := node.child(b).removed(key, hash, shift+fragment, h)
		if !ok {
			return node, false
		}
		return node.withBranch(b, cowChild.unwrapped()), true
	case knot:
		cowKnot, ok := node.knot(b).removed(key)
		if !ok {
			return node, false
		}
		if cowKnot.Size() == 1 {
			tracer().Debugf("unwrap knot at shift %d", shift)
			return node.withBranch(b, mleaf[K, V]{entry: cowKnot.entries[0]}), true
		}
		return node.withBranch(b, mleaf[K, V]{knot: cowKnot}), true
	}
	return node, false
}

// unwrapped returns the content of a nested node for its parent. Nodes holding a single
// entry or a single knot are replaced by it.
func (node *mnode[K, V]) unwrapped() mleaf[K, V] {
	assertThat(!node.isEmpty(), "nested node has become empty")
	if node.arity() == 1 {
		b := node.branches()
		switch node.kind(b) {
		case single:
			return mleaf[K, V]{entry: node.entry(b)}
		case knot:
			return mleaf[K, V]{knot: node.knot(b)}
		}
	}
	return mleaf[K, V]{child: node}
}

// --- Diagnostics -----------------------------------------------------------

func (node *mnode[K, V]) String() string {
	var sb strings.Builder
	sb.WriteRune('⟨')
	for all, i := node.branches(), 0; all != 0; all, i = all&(all-1), i+1 {
		b := lowest(all)
		if i > 0 {
			sb.WriteRune(' ')
		}
		branchNo := bits.TrailingZeros32(b)
		switch node.kind(b) {
		case single:
			sb.WriteString(fmt.Sprintf("%d:%v", branchNo, node.key(b)))
		case subtree:
			sb.WriteString(fmt.Sprintf("%d:▪︎", branchNo))
		case knot:
			sb.WriteString(fmt.Sprintf("%d:%s", branchNo, node.knot(b)))
		}
	}
	sb.WriteRune('⟩')
	return sb.String()
}

package hashtrie

import (
	"fmt"
	"math/bits"
	"strings"
)

// snode is the node type of sets. Its slots hold, ordered by branch, a value of type T
// for single elements, a *snode for nested nodes and an ArraySet for knots.
// Nodes below the root hold at least two elements, as for maps.
type snode[T any] struct {
	treeMap uint32
	leafMap uint32
	slots   []any
}

func (node *snode[T]) branches() uint32 {
	return node.treeMap | node.leafMap
}

func (node *snode[T]) kind(b uint32) kind {
	return classify(node.treeMap, node.leafMap, b)
}

func (node *snode[T]) arity() int {
	return bits.OnesCount32(node.branches())
}

func (node *snode[T]) slotIndex(b uint32) int {
	return below(node.branches(), b)
}

func (node *snode[T]) isEmpty() bool {
	return node.branches() == 0
}

func (node *snode[T]) item(b uint32) T {
	return slotAs[T](node.slots[node.slotIndex(b)])
}

func (node *snode[T]) child(b uint32) *snode[T] {
	return node.slots[node.slotIndex(b)].(*snode[T])
}

func (node *snode[T]) knot(b uint32) ArraySet[T] {
	return node.slots[node.slotIndex(b)].(ArraySet[T])
}

// remap returns a copy of node with new branch maps. Slots of branches which keep their
// kind are carried over, all other slots are left empty for the caller to fill in.
func (node *snode[T]) remap(treeMap, leafMap uint32) *snode[T] {
	cow := &snode[T]{treeMap: treeMap, leafMap: leafMap}
	cow.slots = make([]any, cow.arity())
	for all := cow.branches(); all != 0; all &= all - 1 {
		b := lowest(all)
		if cow.kind(b) == node.kind(b) {
			cow.slots[cow.slotIndex(b)] = node.slots[node.slotIndex(b)]
		}
	}
	return cow
}

// sleaf is the content of a branch of a set node.
type sleaf[T any] struct {
	item  T
	knot  ArraySet[T]
	child *snode[T]
}

func (l sleaf[T]) kind() kind {
	switch {
	case l.child != nil:
		return subtree
	case l.knot.Size() > 0:
		return knot
	}
	return single
}

func (l sleaf[T]) slot() any {
	switch l.kind() {
	case subtree:
		return l.child
	case knot:
		return l.knot
	}
	return l.item
}

func (l sleaf[T]) asKnot(h Hasher[T]) ArraySet[T] {
	if l.kind() == knot {
		return l.knot
	}
	return NewArraySet[T](h).Added(l.item)
}

// withBranch returns a copy of node with branch b set to l.
func (node *snode[T]) withBranch(b uint32, l sleaf[T]) *snode[T] {
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
	cow.slots[cow.slotIndex(b)] = l.slot()
	return cow
}

func (node *snode[T]) withoutBranch(b uint32) *snode[T] {
	return node.remap(node.treeMap&^b, node.leafMap&^b)
}

// --- Lookup ----------------------------------------------------------------

func (node *snode[T]) contains(value T, hash uint32, shift uint, h Hasher[T]) bool {
	for {
		b := branch(hash, shift)
		switch node.kind(b) {
		case single:
			return h.Equal(node.item(b), value)
		case subtree:
			node = node.child(b)
			shift += fragment
			continue
		case knot:
			return node.knot(b).Contains(value)
		}
		return false
	}
}

func (node *snode[T]) first() T {
	for {
		b := lowest(node.branches())
		switch node.kind(b) {
		case subtree:
			node = node.child(b)
			continue
		case knot:
			v, _ := node.knot(b).Head()
			return v
		}
		return node.item(b)
	}
}

func (node *snode[T]) firstAfter(b uint32) (T, bool) {
	rest := above(node.branches(), b)
	if rest == 0 {
		var none T
		return none, false
	}
	b = lowest(rest)
	switch node.kind(b) {
	case subtree:
		return node.child(b).first(), true
	case knot:
		return node.knot(b).Head()
	}
	return node.item(b), true
}

// next returns the element following value in iteration order, as for maps.
func (node *snode[T]) next(value T, hash uint32, shift uint, h Hasher[T]) (T, bool) {
	b := branch(hash, shift)
	switch node.kind(b) {
	case single:
		if v := node.item(b); !h.Equal(v, value) {
			if vh := h.Hash(v); vh == hash || precedes(hash, vh, shift+fragment) {
				return v, true
			}
		}
	case subtree:
		if v, ok := node.child(b).next(value, hash, shift+fragment, h); ok {
			return v, true
		}
	case knot:
		kn := node.knot(b)
		if i := kn.indexOf(value); i >= 0 {
			if i+1 < kn.Size() {
				return kn.items[i+1], true
			}
		} else if vh := h.Hash(kn.items[0]); vh == hash || precedes(hash, vh, shift+fragment) {
			return kn.items[0], true
		}
	}
	return node.firstAfter(b)
}

// --- Modification ----------------------------------------------------------

// added returns a copy of node with value added, or node itself and false if value is
// already an element.
func (node *snode[T]) added(value T, hash uint32, shift uint, h Hasher[T]) (*snode[T], bool) {
	b := branch(hash, shift)
	switch node.kind(b) {
	case absent:
		return node.withBranch(b, sleaf[T]{item: value}), true
	case single:
		old := node.item(b)
		if h.Equal(old, value) {
			return node, false
		}
		merged := mergeItems(sleaf[T]{item: old}, h.Hash(old), sleaf[T]{item: value}, hash,
			shift+fragment, h)
		return node.withBranch(b, merged), true
	case subtree:
		cowChild, ok := node.child(b).added(value, hash, shift+fragment, h)
		if !ok {
			return node, false
		}
		return node.withBranch(b, sleaf[T]{child: cowChild}), true
	}
	kn := node.knot(b) // case knot
	if kh := h.Hash(kn.items[0]); kh != hash {
		merged := mergeItems(sleaf[T]{knot: kn}, kh, sleaf[T]{item: value}, hash, shift+fragment, h)
		return node.withBranch(b, merged), true
	}
	cowKnot, ok := kn.added(value)
	if !ok {
		return node, false
	}
	return node.withBranch(b, sleaf[T]{knot: cowKnot}), true
}

// mergeItems combines two branch contents with hashes h1 and h2, which collided above
// shift, into a knot or a new node.
func mergeItems[T any](l1 sleaf[T], h1 uint32, l2 sleaf[T], h2 uint32, shift uint, h Hasher[T]) sleaf[T] {
	if h1 == h2 || shift >= hashBits {
		kn := l1.asKnot(h)
		for _, v := range l2.asKnot(h).items {
			kn = kn.Added(v)
		}
		tracer().Debugf("knot of %d elements for hash %#08x at shift %d", kn.Size(), h1, shift)
		return sleaf[T]{knot: kn}
	}
	b1, b2 := branch(h1, shift), branch(h2, shift)
	if b1 == b2 {
		inner := mergeItems(l1, h1, l2, h2, shift+fragment, h)
		return sleaf[T]{child: (&snode[T]{}).withBranch(b1, inner)}
	}
	return sleaf[T]{child: (&snode[T]{}).withBranch(b1, l1).withBranch(b2, l2)}
}

func (node *snode[T]) removed(value T, hash uint32, shift uint, h Hasher[T]) (*snode[T], bool) {
	b := branch(hash, shift)
	switch node.kind(b) {
	case single:
		if !h.Equal(node.item(b), value) {
			return node, false
		}
		return node.withoutBranch(b), true
	case subtree:
		cowChild, ok := node.child(b).removed(value, hash, shift+fragment, h)
		if !ok {
			return node, false
		}
		return node.withBranch(b, cowChild.unwrapped()), true
	case knot:
		cowKnot, ok := node.knot(b).removed(value)
		if !ok {
			return node, false
		}
		if cowKnot.Size() == 1 {
			tracer().Debugf("unwrap knot at shift %d", shift)
			return node.withBranch(b, sleaf[T]{item: cowKnot.items[0]}), true
		}
		return node.withBranch(b, sleaf[T]{knot: cowKnot}), true
	}
	return node, false
}

func (node *snode[T]) unwrapped() sleaf[T] {
	assertThat(!node.isEmpty(), "nested node has become empty")
	if node.arity() == 1 {
		b := node.branches()
		switch node.kind(b) {
		case single:
			return sleaf[T]{item: node.item(b)}
		case knot:
			return sleaf[T]{knot: node.knot(b)}
		}
	}
	return sleaf[T]{child: node}
}

func (node *snode[T]) String() string {
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
			sb.WriteString(fmt.Sprintf("%d:%v", branchNo, node.item(b)))
		case subtree:
			sb.WriteString(fmt.Sprintf("%d:▪︎", branchNo))
		case knot:
			sb.WriteString(fmt.Sprintf("%d:%s", branchNo, node.knot(b)))
		}
	}
	sb.WriteRune('⟩')
	return sb.String()
}

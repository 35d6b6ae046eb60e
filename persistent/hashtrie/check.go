package hashtrie

import (
	"fmt"
	"math/bits"

	"github.com/cockroachdb/errors"
	tp "github.com/xlab/treeprint"
)

// Check walks the complete trie and verifies its structural invariants: slot arrays
// match the branch maps, every key sits on the path given by its hash, knots hold two or
// more keys of identical hash, nested nodes hold more than a single entry or knot, and
// the cached size is correct. It returns nil for a valid map.
func (m Map[K, V]) Check() error {
	if m.root == nil {
		if m.size != 0 {
			return errors.AssertionFailedf("empty map with size %d", m.size)
		}
		return nil
	}
	count, err := m.check(m.root, 0, 0)
	if err != nil {
		return err
	}
	if count != m.size {
		return errors.AssertionFailedf("map has size %d, counted %d entries", m.size, count)
	}
	return nil
}

// check verifies a node at shift, reached by following the hash bits in prefix.
func (m Map[K, V]) check(node *mnode[K, V], shift uint, prefix uint32) (int, error) {
	if n := node.arity() + bits.OnesCount32(node.leafMap&^node.treeMap); len(node.slots) != n {
		return 0, errors.AssertionFailedf("node %s at shift %d: %d slots, expected %d", node, shift, len(node.slots), n)
	}
	onPath := func(hash, b uint32) bool {
		return hash&(1<<shift-1) == prefix && branch(hash, shift) == b
	}
	count := 0
	for all := node.branches(); all != 0; all &= all - 1 {
		b := lowest(all)
		switch node.kind(b) {
		case single:
			if !fits[K](node.slots[node.keyIndex(b)]) {
				return 0, errors.AssertionFailedf("node %s at shift %d: slot of single entry holds %T", node, shift,
					node.slots[node.keyIndex(b)])
			}
			if !fits[V](node.slots[node.valueIndex(b)]) {
				return 0, errors.AssertionFailedf("node %s at shift %d: value slot holds %T", node, shift,
					node.slots[node.valueIndex(b)])
			}
			if !onPath(m.hasher.Hash(node.key(b)), b) {
				return 0, errors.AssertionFailedf("node %s at shift %d: key %v off its hash path", node, shift, node.key(b))
			}
			count++
		case subtree:
			child, ok := node.slots[node.keyIndex(b)].(*mnode[K, V])
			if !ok || child == nil {
				return 0, errors.AssertionFailedf("node %s at shift %d: slot of nested node holds %T", node, shift,
					node.slots[node.keyIndex(b)])
			}
			if shift+fragment >= hashBits {
				return 0, errors.AssertionFailedf("node %s at shift %d: nested below hash bits", node, shift)
			}
			if child.arity() == 1 && child.kind(child.branches()) != subtree {
				return 0, errors.AssertionFailedf("node %s at shift %d: degenerate nested node %s", node, shift, child)
			}
			n, err := m.check(child, shift+fragment, prefix|(uint32(bits.TrailingZeros32(b))<<shift))
			if err != nil {
				return 0, err
			}
			count += n
		case knot:
			kn, ok := node.slots[node.keyIndex(b)].(ArrayMap[K, V])
			if !ok || kn.Size() < 2 {
				return 0, errors.AssertionFailedf("node %s at shift %d: invalid knot", node, shift)
			}
			hash := m.hasher.Hash(kn.entries[0].Key)
			for _, e := range kn.entries {
				if m.hasher.Hash(e.Key) != hash {
					return 0, errors.AssertionFailedf("knot %s at shift %d: hashes differ", kn, shift)
				}
			}
			if !onPath(hash, b) {
				return 0, errors.AssertionFailedf("knot %s at shift %d: off its hash path", kn, shift)
			}
			count += kn.Size()
		}
	}
	return count, nil
}

// fits is true if slot holds a T. A nil slot fits interface types only.
func fits[T any](slot any) bool {
	if _, ok := slot.(T); ok {
		return true
	}
	var zero T
	return slot == nil && any(zero) == nil
}

// Dump returns a printable representation of the trie structure of m.
func (m Map[K, V]) Dump() string {
	header := fmt.Sprintf("\nMap(size=%d)\n", m.size)
	p := tp.New()
	if m.root != nil {
		pmn(p, m.root)
	}
	return header + p.String() + "\n"
}

func pmn[K, V any](p tp.Tree, node *mnode[K, V]) {
	branch := p.AddBranch(node.String())
	for all := node.treeMap &^ node.leafMap; all != 0; all &= all - 1 {
		pmn(branch, node.child(lowest(all)))
	}
}

// Check verifies the structural invariants of a set, as Map.Check does for maps.
func (s Set[T]) Check() error {
	if s.root == nil {
		if s.size != 0 {
			return errors.AssertionFailedf("empty set with size %d", s.size)
		}
		return nil
	}
	count, err := s.check(s.root, 0, 0)
	if err != nil {
		return err
	}
	if count != s.size {
		return errors.AssertionFailedf("set has size %d, counted %d elements", s.size, count)
	}
	return nil
}

func (s Set[T]) check(node *snode[T], shift uint, prefix uint32) (int, error) {
	if len(node.slots) != node.arity() {
		return 0, errors.AssertionFailedf("node %s at shift %d: %d slots, expected %d", node, shift, len(node.slots), node.arity())
	}
	onPath := func(hash, b uint32) bool {
		return hash&(1<<shift-1) == prefix && branch(hash, shift) == b
	}
	count := 0
	for all := node.branches(); all != 0; all &= all - 1 {
		b := lowest(all)
		switch node.kind(b) {
		case single:
			if !fits[T](node.slots[node.slotIndex(b)]) {
				return 0, errors.AssertionFailedf("node %s at shift %d: slot of single element holds %T", node, shift,
					node.slots[node.slotIndex(b)])
			}
			if !onPath(s.hasher.Hash(node.item(b)), b) {
				return 0, errors.AssertionFailedf("node %s at shift %d: value %v off its hash path", node, shift, node.item(b))
			}
			count++
		case subtree:
			child, ok := node.slots[node.slotIndex(b)].(*snode[T])
			if !ok || child == nil {
				return 0, errors.AssertionFailedf("node %s at shift %d: slot of nested node holds %T", node, shift,
					node.slots[node.slotIndex(b)])
			}
			if child.arity() == 1 && child.kind(child.branches()) != subtree {
				return 0, errors.AssertionFailedf("node %s at shift %d: degenerate nested node %s", node, shift, child)
			}
			n, err := s.check(child, shift+fragment, prefix|(uint32(bits.TrailingZeros32(b))<<shift))
			if err != nil {
				return 0, err
			}
			count += n
		case knot:
			kn, ok := node.slots[node.slotIndex(b)].(ArraySet[T])
			if !ok || kn.Size() < 2 {
				return 0, errors.AssertionFailedf("node %s at shift %d: invalid knot", node, shift)
			}
			hash := s.hasher.Hash(kn.items[0])
			for _, v := range kn.items {
				if s.hasher.Hash(v) != hash {
					return 0, errors.AssertionFailedf("knot %s at shift %d: hashes differ", kn, shift)
				}
			}
			if !onPath(hash, b) {
				return 0, errors.AssertionFailedf("knot %s at shift %d: off its hash path", kn, shift)
			}
			count += kn.Size()
		}
	}
	return count, nil
}

// Dump returns a printable representation of the trie structure of s.
func (s Set[T]) Dump() string {
	header := fmt.Sprintf("\nSet(size=%d)\n", s.size)
	p := tp.New()
	if s.root != nil {
		psn(p, s.root)
	}
	return header + p.String() + "\n"
}

func psn[T any](p tp.Tree, node *snode[T]) {
	branch := p.AddBranch(node.String())
	for all := node.treeMap &^ node.leafMap; all != 0; all &= all - 1 {
		psn(branch, node.child(lowest(all)))
	}
}

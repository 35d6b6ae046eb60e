package btree

import (
	"fmt"

	"github.com/cockroachdb/errors"
	tp "github.com/xlab/treeprint"
)

// Check walks the complete tree and verifies its structural invariants:
// leaf entries are strictly ascending, inner pages hold len(children)-1 knots, every
// key of child i is less than knot i and every key of child i+1 is greater than or equal
// to it, inner pages hold at least two children, and cached sizes equal the number of
// entries below. It returns nil for a valid tree.
//
// Check is intended for tests and debugging; it is linear in the size of the tree.
func (tree Tree[K, V]) Check() error {
	if tree.root == nil {
		return nil
	}
	if tree.root.size == 0 {
		return errors.AssertionFailedf("empty root page")
	}
	_, err := tree.check(tree.root, nil, nil, 0)
	return err
}

// check verifies a sub-tree with all keys in [lo, hi), where nil means unbounded.
// It returns the number of entries counted.
func (tree Tree[K, V]) check(node *xnode[K, V], lo, hi *K, depth int) (int, error) {
	inRange := func(key K) bool {
		return (lo == nil || tree.ctx.Compare(*lo, key) <= 0) &&
			(hi == nil || tree.ctx.Compare(key, *hi) < 0)
	}
	if node.IsLeaf() {
		for i, e := range node.entries {
			if i > 0 && tree.ctx.Compare(node.entries[i-1].Key, e.Key) >= 0 {
				return 0, errors.AssertionFailedf("leaf %s at depth %d: keys not ascending at %d", node, depth, i)
			}
			if !inRange(e.Key) {
				return 0, errors.AssertionFailedf("leaf %s at depth %d: key %v out of knot bounds", node, depth, e.Key)
			}
		}
		if node.size != len(node.entries) {
			return 0, errors.AssertionFailedf("leaf %s at depth %d: size %d, has %d entries",
				node, depth, node.size, len(node.entries))
		}
		return node.size, nil
	}
	if len(node.knots) != len(node.children)-1 {
		return 0, errors.AssertionFailedf("page %s at depth %d: %d knots for %d children",
			node, depth, len(node.knots), len(node.children))
	}
	if len(node.children) < 2 {
		return 0, errors.AssertionFailedf("page %s at depth %d: single child", node, depth)
	}
	count := 0
	for i, child := range node.children {
		if child == nil || child.size == 0 {
			return 0, errors.AssertionFailedf("page %s at depth %d: empty child %d", node, depth, i)
		}
		clo, chi := lo, hi
		if i > 0 {
			clo = &node.knots[i-1]
		}
		if i < len(node.knots) {
			chi = &node.knots[i]
		}
		if clo != nil && chi != nil && tree.ctx.Compare(*clo, *chi) >= 0 {
			return 0, errors.AssertionFailedf("page %s at depth %d: knots not ascending at %d", node, depth, i)
		}
		n, err := tree.check(child, clo, chi, depth+1)
		if err != nil {
			return 0, err
		}
		count += n
	}
	if count != node.size {
		return 0, errors.AssertionFailedf("page %s at depth %d: cached size %d, counted %d",
			node, depth, node.size, count)
	}
	return count, nil
}

// Dump returns a printable representation of the page structure of a tree.
func (tree Tree[K, V]) Dump() string {
	header := fmt.Sprintf("\nTree(size=%d depth=%d)\n", tree.Size(), tree.Depth())
	p := tp.New()
	ppt(p, tree.root)
	return header + p.String() + "\n"
}

func ppt[K, V any](p tp.Tree, node *xnode[K, V]) {
	if node == nil {
		return
	}
	if node.IsLeaf() {
		p.AddNode(node.String())
		return
	}
	branch := p.AddBranch(node.String())
	for _, ch := range node.children {
		ppt(branch, ch)
	}
}

package stree

import (
	"fmt"

	"github.com/cockroachdb/errors"
	tp "github.com/xlab/treeprint"
)

// Check walks the complete snapshot and verifies its structural invariants:
// inner pages hold len(children)-1 ascending knots, every knot is the number of
// elements in the children up to it, inner pages hold at least two non-empty children,
// and cached sizes equal the number of elements below.
func (tree Tree[T]) Check() error {
	if tree.root == nil {
		return nil
	}
	if tree.root.size == 0 {
		return errors.AssertionFailedf("empty root page")
	}
	_, err := check(tree.root, 0)
	return err
}

func check[T any](node *xnode[T], depth int) (int, error) {
	if node.IsLeaf() {
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
		n, err := check(child, depth+1)
		if err != nil {
			return 0, err
		}
		count += n
		if i < len(node.knots) && node.knots[i] != count {
			return 0, errors.AssertionFailedf("page %s at depth %d: knot %d is %d, counted %d",
				node, depth, i, node.knots[i], count)
		}
	}
	if count != node.size {
		return 0, errors.AssertionFailedf("page %s at depth %d: cached size %d, counted %d",
			node, depth, node.size, count)
	}
	return count, nil
}

// Check verifies the current root of l, see Tree.Check.
func (l *List[T]) Check() error {
	return l.Snapshot().Check()
}

// Dump returns a printable representation of the page structure of a snapshot.
func (tree Tree[T]) Dump() string {
	header := fmt.Sprintf("\nSequence(size=%d depth=%d)\n", tree.Size(), tree.Depth())
	p := tp.New()
	ppt(p, tree.root)
	return header + p.String() + "\n"
}

// Dump returns a printable representation of the current page structure of l.
func (l *List[T]) Dump() string {
	return l.Snapshot().Dump()
}

func ppt[T any](p tp.Tree, node *xnode[T]) {
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

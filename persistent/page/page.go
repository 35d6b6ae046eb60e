package page

// Page is the view of a tree node a Policy operates on.
type Page interface {
	Arity() int   // number of entries for leafs, number of children for inner pages
	Size() int    // number of entries in the sub-tree rooted at this page
	IsLeaf() bool // leaf pages have no children
}

// Policy decides on re-balancing of pages. Collections ask a policy after every
// structural change of a page.
type Policy interface {
	PageShouldSplit(p Page) bool
	PageShouldMerge(p Page) bool
}

// Thresholds is a Policy based on page arity.
// Pages split if their arity exceeds SplitArity, and merge with a sibling if their arity
// drops below MergeArity.
type Thresholds struct {
	SplitArity int
	MergeArity int
}

// DefaultThresholds lets pages grow to an arity of 32 and merges pages with fewer than 16
// entries or children.
var DefaultThresholds = Thresholds{SplitArity: 32, MergeArity: 16}

// Degree creates thresholds for pages holding between n and 2n entries or children.
// The lower bound for n is 2.
func Degree(n int) Thresholds {
	n = max(2, n)
	return Thresholds{SplitArity: 2 * n, MergeArity: n}
}

// PageShouldSplit is part of interface Policy.
func (t Thresholds) PageShouldSplit(p Page) bool {
	return p.Arity() > t.SplitArity
}

// PageShouldMerge is part of interface Policy.
func (t Thresholds) PageShouldMerge(p Page) bool {
	return p.Arity() < t.MergeArity
}

// SplitPoint returns the number of entries or children which stay in the left half
// of a page of a given arity, when splitting it.
func SplitPoint(arity int) int {
	return arity / 2
}

// CanSplit is true if a page is wide enough to produce two valid halves: leafs need at
// least two entries, inner pages at least four children, as every inner page has to
// keep two children or more. Policies asking for narrower inner pages are not honored.
func CanSplit(p Page) bool {
	if p.IsLeaf() {
		return p.Arity() >= 2
	}
	return p.Arity() >= 4
}

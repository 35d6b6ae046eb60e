package btree

import (
	"github.com/npillmayer/collections/persistent"
	"github.com/npillmayer/collections/persistent/page"
	"golang.org/x/exp/constraints"
)

// Context is the extension point of a tree. It supplies a 3-way key comparison and the
// page split/merge policy.
type Context[K any] interface {
	Compare(a, b K) int // < 0 for a < b, 0 for a = b, > 0 for a > b
	page.Policy
}

type props[K any] struct {
	compare func(a, b K) int
	page.Policy
}

func (p props[K]) Compare(a, b K) int {
	return p.compare(a, b)
}

type options struct {
	policy page.Policy
}

// Option is a type to help initializing tree contexts at creation time.
type Option func(options) options

// Degree is an option to set the minimum number of entries or children a page holds.
// Pages will hold between n and 2n entries or children. The lower bound for the degree is 2.
//
// Use it like this:
//
//	tree := btree.Immutable[int, string](btree.Degree(16))
func Degree(n int) Option {
	return func(o options) options {
		o.policy = page.Degree(n)
		return o
	}
}

// WithPolicy is an option to set a custom split/merge policy.
func WithPolicy(policy page.Policy) Option {
	return func(o options) options {
		o.policy = policy
		return o
	}
}

// NewContext creates a context from a comparison function and options.
// Without options, pages use page.DefaultThresholds.
func NewContext[K any](compare func(a, b K) int, opts ...Option) Context[K] {
	assertThat(compare != nil, "tree context needs a comparison function")
	conf := options{policy: page.DefaultThresholds}
	for _, option := range opts {
		conf = option(conf)
	}
	return props[K]{compare: compare, Policy: conf.policy}
}

// OrderedContext creates a context for keys with a natural order.
func OrderedContext[K constraints.Ordered](opts ...Option) Context[K] {
	return NewContext(persistent.Compare[K], opts...)
}

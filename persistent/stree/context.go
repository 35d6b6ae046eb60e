package stree

import (
	"bytes"

	"github.com/google/uuid"
	"github.com/npillmayer/collections/persistent/page"
)

// Context is the extension point of sequences. It supplies the page split/merge policy,
// a comparison for identity keys and a function creating identity keys for values.
type Context[T any] interface {
	page.Policy
	CompareKey(a, b []byte) int // 3-way comparison, 0 for identical keys
	Identify(value T) []byte    // creates a fresh identity key for value
}

type props[T any] struct {
	page.Policy
	compareKey func(a, b []byte) int
	identify   func(T) []byte
}

func (p props[T]) CompareKey(a, b []byte) int {
	return p.compareKey(a, b)
}

func (p props[T]) Identify(value T) []byte {
	return p.identify(value)
}

type options struct {
	policy     page.Policy
	compareKey func(a, b []byte) int
	identify   any // func(T) []byte
}

// Option is a type to help initializing contexts at creation time.
type Option func(options) options

// Degree is an option to set the minimum number of elements or children a page holds.
// Pages will hold between n and 2n elements or children. The lower bound for the degree
// is 2.
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

// WithKeyComparison is an option to set the comparison of identity keys.
// The default is bytes.Compare.
func WithKeyComparison(compare func(a, b []byte) int) Option {
	return func(o options) options {
		o.compareKey = compare
		return o
	}
}

// WithIdentify is an option to set the function creating identity keys. Its type
// parameter has to match the type of elements of the context it is used for.
//
//	ctx := stree.NewContext[string](stree.WithIdentify(func(s string) []byte {
//	    return []byte(s)
//	}))
func WithIdentify[T any](identify func(T) []byte) Option {
	return func(o options) options {
		o.identify = identify
		return o
	}
}

// NewContext creates a context for sequences of elements of type T.
// Without options, pages use page.DefaultThresholds, keys are random UUIDs and are
// compared with bytes.Compare.
func NewContext[T any](opts ...Option) Context[T] {
	conf := options{
		policy:     page.DefaultThresholds,
		compareKey: bytes.Compare,
	}
	for _, option := range opts {
		conf = option(conf)
	}
	p := props[T]{Policy: conf.policy, compareKey: conf.compareKey, identify: randomKey[T]}
	if conf.identify != nil {
		identify, ok := conf.identify.(func(T) []byte)
		assertThat(ok, "identify function %T does not match element type", conf.identify)
		p.identify = identify
	}
	assertThat(p.compareKey != nil, "context needs a key comparison")
	return p
}

func randomKey[T any](T) []byte {
	id := uuid.New()
	return id[:]
}

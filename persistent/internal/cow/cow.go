// Package cow holds copy-on-write primitives for the arrays of immutable tree nodes.
//
// Every function returns a fresh array and never writes to the backing array of its
// input, which may be shared between incarnations of a tree.
package cow

import (
	"golang.org/x/exp/slices"
)

// Inserted returns a copy of s with v inserted at position at.
func Inserted[S ~[]E, E any](s S, at int, v ...E) S {
	return slices.Insert(slices.Clip(s), at, v...)
}

// Deleted returns a copy of s with s[from:to] removed.
func Deleted[S ~[]E, E any](s S, from, to int) S {
	return slices.Clip(slices.Delete(slices.Clone(s), from, to))
}

// Replaced returns a copy of s with s[at] set to v.
func Replaced[S ~[]E, E any](s S, at int, v E) S {
	c := slices.Clone(s)
	c[at] = v
	return c
}

// Concat returns a fresh array holding the elements of all parts.
func Concat[S ~[]E, E any](parts ...S) S {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	c := make(S, 0, n)
	for _, p := range parts {
		c = append(c, p...)
	}
	return c
}

// Sub returns a copy of s[from:to].
func Sub[S ~[]E, E any](s S, from, to int) S {
	return slices.Clone(s[from:to])
}

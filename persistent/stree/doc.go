/*
Package stree implements a concurrent sequence of values, addressed by position, where
each element carries a stable identity key.

Elements live in leaf pages of a tree, in sequence order. Inner pages hold child pages
plus cumulative element counts ("knots"): knot i is the number of elements in children
0…i. Positional access descends by binary search over these counts.

A List wraps a single atomic reference to the current root page. Every modification
computes a new root from the current one, copying only the pages on the path to the
modified position, and installs it with a compare-and-swap. If another goroutine
installed a different root in the meantime, the modification is re-computed on top of
it. Readers always see either the complete old or the complete new sequence.

Snapshot returns a Tree, a read-only view of the root at the time of the call. As pages
are never modified, snapshots remain valid and unchanged forever.

Identity keys are opaque byte strings. Unless supplied by the caller on insertion, keys
are created by the Identify function of the list's Context, which by default produces
random UUIDs. Keys let clients re-locate an element whose position may have changed
due to concurrent modifications, see Lookup.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package stree

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'pcoll.stree'.
func tracer() tracing.Trace {
	return tracing.Select("pcoll.stree")
}

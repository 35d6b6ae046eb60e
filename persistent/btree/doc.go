/*
Package btree implements a persistent (immutable) in-memory ordered map, built from pages
which split and merge.

Entries live in leaf pages, sorted by key. Inner pages hold child pages plus separator
keys ("knots"): for an inner page with children p₀…pₙ and knots k₀…kₙ₋₁, every key in pᵢ
is less than kᵢ, and kᵢ is less than or equal to every key in pᵢ₊₁. Inner pages cache
the number of entries below them, which makes positional access (IndexOf, EntryAt,
Drop, Take, cursor skips) logarithmic.

Every modification returns a new tree. Pages on the path from the root to the modified
leaf are copied, all other pages are shared with the original tree.

Key comparison and re-balancing are pluggable through a Context. Trees for ordered key
types may be created with Immutable, Empty, Of or FromMap, which use the natural order
of keys.

A good introduction to B-trees and their algorithms may be found at
https://algorithmtutor.com/Data-Structures/Tree/B-Trees/.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package btree

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'pcoll.btree'.
func tracer() tracing.Trace {
	return tracing.Select("pcoll.btree")
}

/*
Package hashtrie implements persistent hash maps and hash sets as 32-way bitmap-indexed
tries.

Keys are hashed to 32 bits. Each level of the trie consumes 5 bits of the hash, least
significant bits first, selecting one of 32 branches of a node. A node holds two bitmaps,
treeMap and leafMap, over its branches, plus a packed array of slots. For a branch b:

	treeMap  leafMap
	   0        0      branch is absent
	   0        1      a single entry
	   1        0      a nested node
	   1        1      a knot: a flat bucket of entries sharing their complete hash

Slots are ordered by ascending branch bit. Maps keep the values of single entries in a
second region of the slots array, following the region of keys, sub-nodes and knots.

Iteration order is a deterministic function of key hashes: branches are visited in
ascending order of their 5-bit hash fragment, level by level, and entries of a knot in
bucket order.

Maps and sets are values. Every modification returns a new map or set, sharing all
untouched nodes with the original. They are safe for concurrent use.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package hashtrie

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'pcoll.hashtrie'.
func tracer() tracing.Trace {
	return tracing.Select("pcoll.hashtrie")
}

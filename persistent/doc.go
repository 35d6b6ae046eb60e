/*
Package persistent is the root of a family of immutable, structurally shared collection types.
Each "modification" of a collection creates a new incarnation, leaving the original unchanged.
Untouched parts of the underlying trees are shared between incarnations, which makes copies
cheap in terms of space- and time-complexity.

Sub-packages offer

	btree      an ordered map built from splitting and merging multiway pages
	hashtrie   a 32-ary bitmap-indexed hash trie map and set
	stree      a lock-free, position-addressed sequence with stable element identity

This package holds what they share: cursors, entries, key comparison and errors.

Immutable data structures are inherently concurrency-safe. The single exception is
stree.List, which holds one mutable root reference, updated with compare-and-swap.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package persistent

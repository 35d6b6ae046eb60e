/*
Package page holds the page abstraction shared by the page-tree collections btree and stree.

A page is an immutable tree node. It either is a leaf, holding a flat array of entries,
or an inner page, holding an array of child pages plus an array of knots. Knots separate
children: for ordered trees they are separator keys, for positional trees they are
cumulative element counts. Splitting and merging of pages is governed by a Policy,
which is part of a collection's context.

Pages never change after creation. A page is created by exactly one operation
(update, insert, remove, split or merge) and may be shared between any number of
incarnations of a tree.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package page

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'pcoll.page'.
func tracer() tracing.Trace {
	return tracing.Select("pcoll.page")
}

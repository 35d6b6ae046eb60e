package hashtrie

import (
	"fmt"
	"math/bits"
)

const (
	fragment uint   = 5 // will produce nodes with degree  2 ^ 5 = 32
	degree   uint32 = 1 << fragment
	mask     uint32 = degree - 1
	hashBits uint   = 32
	maxDepth        = int((hashBits + fragment - 1) / fragment) // levels of trie nodes
)

// kind is the meaning of a branch of a node, as encoded by treeMap and leafMap.
type kind uint8

const (
	absent kind = iota
	single
	subtree
	knot
)

func (k kind) String() string {
	switch k {
	case single:
		return "single"
	case subtree:
		return "subtree"
	case knot:
		return "knot"
	}
	return "absent"
}

// change tells callers what a modification did.
type change uint8

const (
	unchanged change = iota
	replaced
	added
)

// branch returns the bit of the branch for hash at a given depth.
func branch(hash uint32, shift uint) uint32 {
	return 1 << ((hash >> shift) & mask)
}

func classify(treeMap, leafMap, b uint32) kind {
	switch t, l := treeMap&b != 0, leafMap&b != 0; {
	case t && l:
		return knot
	case t:
		return subtree
	case l:
		return single
	}
	return absent
}

// below returns the population count of a bitmap below branch b.
func below(bitmap, b uint32) int {
	return bits.OnesCount32(bitmap & (b - 1))
}

func lowest(bitmap uint32) uint32 {
	return bitmap & -bitmap
}

// above masks out branch b and all branches below it.
func above(bitmap, b uint32) uint32 {
	return bitmap &^ (b | (b - 1))
}

// nthBranch returns the i-th lowest branch set in bitmap.
func nthBranch(bitmap uint32, i int) uint32 {
	for ; i > 0; i-- {
		bitmap &= bitmap - 1
	}
	return lowest(bitmap)
}

// precedes is true if hash h1 comes before h2 in iteration order, looking at hash
// fragments at shift and deeper. Hashes equal in all these fragments do not precede
// each other.
func precedes(h1, h2 uint32, shift uint) bool {
	for ; shift < hashBits; shift += fragment {
		f1, f2 := (h1>>shift)&mask, (h2>>shift)&mask
		if f1 != f2 {
			return f1 < f2
		}
	}
	return false
}

// slotAs converts the content of a slot. Slots holding nil convert to the zero value,
// which keeps nil keys and values of interface types intact.
func slotAs[T any](slot any) T {
	t, _ := slot.(T)
	return t
}

func assertThat(that bool, msg string, msgargs ...interface{}) {
	if !that {
		msg = fmt.Sprintf("hashtrie: "+msg, msgargs...)
		panic(msg)
	}
}

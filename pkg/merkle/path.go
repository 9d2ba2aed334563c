package merkle

import (
	"github.com/suffix-labs/zcash-sprout/pkg/crypto"
	"github.com/suffix-labs/zcash-sprout/pkg/sprout"
)

// emptyRoots[d] is the root of an empty subtree of depth d.
var emptyRoots = func() [MaxDepth + 1]sprout.Uint256 {
	var roots [MaxDepth + 1]sprout.Uint256
	for d := 1; d <= MaxDepth; d++ {
		roots[d] = crypto.Combine(roots[d-1], roots[d-1])
	}
	return roots
}()

// EmptyRoot is the root of a depth-d subtree with no leaves:
// EmptyRoot(0) = 0^32, EmptyRoot(d) = combine(EmptyRoot(d-1), EmptyRoot(d-1)).
func EmptyRoot(depth int) sprout.Uint256 {
	return emptyRoots[depth]
}

// Path is a Merkle authentication path, ordered from the root's children
// down to the leaf's sibling. Index[i] is true when the node on the path at
// that level is a right child (its sibling is on the left).
type Path struct {
	AuthenticationPath []sprout.Uint256 `json:"authentication_path"`
	Index              []bool           `json:"index"`
}

// Root recomputes the root from leaf.
func (p Path) Root(leaf sprout.Uint256) sprout.Uint256 {
	node := leaf
	for i := len(p.AuthenticationPath) - 1; i >= 0; i-- {
		if p.Index[i] {
			node = crypto.Combine(p.AuthenticationPath[i], node)
		} else {
			node = crypto.Combine(node, p.AuthenticationPath[i])
		}
	}
	return node
}

// Position is the leaf index encoded in Index.
func (p Path) Position() uint64 {
	var pos uint64
	for _, bit := range p.Index {
		pos <<= 1
		if bit {
			pos |= 1
		}
	}
	return pos
}

// filler hands out the hashes a witness has already learned, then empty
// subtree roots.
type filler struct {
	queue []sprout.Uint256
}

func newFiller(partial []sprout.Uint256) *filler {
	return &filler{queue: partial}
}

func (f *filler) next(depth int) sprout.Uint256 {
	if len(f.queue) > 0 {
		h := f.queue[0]
		f.queue = f.queue[1:]
		return h
	}
	return EmptyRoot(depth)
}

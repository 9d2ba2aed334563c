// Package merkle implements the Sprout note commitment tree: an append-only
// incremental Merkle accumulator of fixed depth, per-note witnesses that
// follow later appends, and authentication paths.
//
// The tree never stores all leaves. It keeps the two most recent leaves at
// the bottom level and, for each level above, at most one completed left
// subtree root ("parents"). Unfilled positions hash as empty subtree roots.
//
// This corresponds to:
//   - zcash/src/zcash/IncrementalMerkleTree.cpp
//
// References:
//   - https://zips.z.cash/protocol/protocol.pdf section 4.8 Note Commitment Trees
package merkle

import (
	"fmt"

	"github.com/suffix-labs/zcash-sprout/pkg/crypto"
	"github.com/suffix-labs/zcash-sprout/pkg/sprout"
)

// Depth is the Sprout note commitment tree depth.
const Depth = 29

// MaxDepth bounds the depth a Tree may be created with.
const MaxDepth = 64

// slot is a tree position that is either Filled(hash) or Empty.
type slot struct {
	hash   sprout.Uint256
	filled bool
}

func filledSlot(h sprout.Uint256) slot { return slot{hash: h, filled: true} }

func (s slot) ptr() *sprout.Uint256 {
	if !s.filled {
		return nil
	}
	h := s.hash
	return &h
}

func slotFrom(h *sprout.Uint256) slot {
	if h == nil {
		return slot{}
	}
	return filledSlot(*h)
}

// Tree is an incremental Merkle tree. The zero value is not usable; create
// trees with NewTree or NewTreeWithDepth.
type Tree struct {
	depth      int
	left       slot
	right      slot
	parents    [MaxDepth - 1]slot
	numParents int
}

// NewTree returns an empty tree of depth 29.
func NewTree() *Tree {
	return &Tree{depth: Depth}
}

// NewTreeWithDepth returns an empty tree of the given depth (1..64).
func NewTreeWithDepth(depth int) (*Tree, error) {
	if depth < 1 || depth > MaxDepth {
		return nil, &sprout.ValidationError{
			Code:    sprout.ErrInvalidLength,
			Message: fmt.Sprintf("tree depth %d out of range", depth),
		}
	}
	return &Tree{depth: depth}, nil
}

// Depth is the tree's depth.
func (t *Tree) Depth() int { return t.depth }

// Clone returns a deep copy.
func (t *Tree) Clone() *Tree {
	c := *t
	return &c
}

// Append adds a leaf. It fails with "tree is full" once 2^depth leaves
// have been appended.
func (t *Tree) Append(obj sprout.Uint256) error {
	if t.IsComplete(t.depth) {
		return &sprout.ExhaustedError{
			Code:    sprout.ErrTreeFull,
			Message: "tree is full",
		}
	}

	switch {
	case !t.left.filled:
		t.left = filledSlot(obj)
	case !t.right.filled:
		t.right = filledSlot(obj)
	default:
		// Both leaves are set: fold them into a carry and ripple it up.
		combined := crypto.Combine(t.left.hash, t.right.hash)
		t.left = filledSlot(obj)
		t.right = slot{}

		for i := 0; i < t.depth-1; i++ {
			if i < t.numParents {
				if t.parents[i].filled {
					combined = crypto.Combine(t.parents[i].hash, combined)
					t.parents[i] = slot{}
				} else {
					t.parents[i] = filledSlot(combined)
					break
				}
			} else {
				t.parents[t.numParents] = filledSlot(combined)
				t.numParents++
				break
			}
		}
	}
	return nil
}

// IsComplete reports whether the tree holds exactly 2^depth leaves.
func (t *Tree) IsComplete(depth int) bool {
	if !t.left.filled || !t.right.filled {
		return false
	}
	if t.numParents != depth-1 {
		return false
	}
	for _, p := range t.parents[:t.numParents] {
		if !p.filled {
			return false
		}
	}
	return true
}

// Size is the number of leaves appended so far.
func (t *Tree) Size() uint64 {
	var n uint64
	if t.left.filled {
		n++
	}
	if t.right.filled {
		n++
	}
	for i, p := range t.parents[:t.numParents] {
		if p.filled {
			n += uint64(1) << (i + 1)
		}
	}
	return n
}

// Last is the most recently appended leaf.
func (t *Tree) Last() (sprout.Uint256, error) {
	switch {
	case t.right.filled:
		return t.right.hash, nil
	case t.left.filled:
		return t.left.hash, nil
	default:
		return sprout.Uint256{}, &sprout.ValidationError{
			Code:    sprout.ErrEmptyTree,
			Message: "tree has no cursor",
		}
	}
}

// Root is the root of the full-depth tree, padding with empty subtrees.
func (t *Tree) Root() sprout.Uint256 {
	return t.root(t.depth, nil)
}

// root computes the root at depth, taking filler hashes from partial before
// falling back to empty subtree roots.
func (t *Tree) root(depth int, partial []sprout.Uint256) sprout.Uint256 {
	f := newFiller(partial)

	left, right := t.left.hash, t.right.hash
	if !t.left.filled {
		left = f.next(0)
	}
	if !t.right.filled {
		right = f.next(0)
	}

	root := crypto.Combine(left, right)

	d := 1
	for _, p := range t.parents[:t.numParents] {
		if p.filled {
			root = crypto.Combine(p.hash, root)
		} else {
			root = crypto.Combine(root, f.next(d))
		}
		d++
	}

	for d < depth {
		root = crypto.Combine(root, f.next(d))
		d++
	}
	return root
}

// nextDepth is the depth of the next subtree a witness must fill, after
// skipping the first skip empty positions.
func (t *Tree) nextDepth(skip int) int {
	if !t.left.filled {
		if skip > 0 {
			skip--
		} else {
			return 0
		}
	}
	if !t.right.filled {
		if skip > 0 {
			skip--
		} else {
			return 0
		}
	}

	d := 1
	for _, p := range t.parents[:t.numParents] {
		if !p.filled {
			if skip > 0 {
				skip--
			} else {
				return d
			}
		}
		d++
	}
	return d + skip
}

// Path returns the authentication path of the last leaf.
func (t *Tree) Path() (Path, error) {
	return t.path(nil)
}

func (t *Tree) path(partial []sprout.Uint256) (Path, error) {
	if !t.left.filled {
		return Path{}, &sprout.ValidationError{
			Code:    sprout.ErrEmptyTree,
			Message: "can't create an authentication path for the beginning of the tree",
		}
	}

	f := newFiller(partial)
	var (
		hashes []sprout.Uint256
		index  []bool
	)

	if t.right.filled {
		index = append(index, true)
		hashes = append(hashes, t.left.hash)
	} else {
		index = append(index, false)
		hashes = append(hashes, f.next(0))
	}

	d := 1
	for _, p := range t.parents[:t.numParents] {
		if p.filled {
			index = append(index, true)
			hashes = append(hashes, p.hash)
		} else {
			index = append(index, false)
			hashes = append(hashes, f.next(d))
		}
		d++
	}

	for d < t.depth {
		index = append(index, false)
		hashes = append(hashes, f.next(d))
		d++
	}

	reverse(hashes)
	reverse(index)
	return Path{AuthenticationPath: hashes, Index: index}, nil
}

func reverse[T any](s []T) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

// Witness starts a witness for the most recently appended leaf.
func (t *Tree) Witness() *Witness {
	return &Witness{tree: t.Clone()}
}

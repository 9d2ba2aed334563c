package merkle

import (
	"github.com/suffix-labs/zcash-sprout/pkg/sprout"
)

// Witness tracks the authentication path of one leaf while later leaves are
// appended. It stores a snapshot of the tree at the time the leaf was
// added, the roots of subtrees completed since ("filled"), and a cursor
// tree for the subtree currently being filled.
type Witness struct {
	tree        *Tree
	filled      []sprout.Uint256
	cursor      *Tree
	cursorDepth int // zero unless cursor is set
}

// Clone returns a deep copy.
func (w *Witness) Clone() *Witness {
	c := &Witness{
		tree:        w.tree.Clone(),
		filled:      append([]sprout.Uint256(nil), w.filled...),
		cursorDepth: w.cursorDepth,
	}
	if w.cursor != nil {
		c.cursor = w.cursor.Clone()
	}
	return c
}

// Append feeds a leaf appended to the tree after the witnessed one.
func (w *Witness) Append(obj sprout.Uint256) error {
	if w.cursor != nil {
		if err := w.cursor.Append(obj); err != nil {
			return err
		}
		if w.cursor.IsComplete(w.cursorDepth) {
			w.filled = append(w.filled, w.cursor.root(w.cursorDepth, nil))
			w.cursor = nil
			w.cursorDepth = 0
		}
		return nil
	}

	depth := w.tree.nextDepth(len(w.filled))
	if depth >= w.tree.depth {
		return &sprout.ExhaustedError{
			Code:    sprout.ErrTreeFull,
			Message: "tree is full",
		}
	}

	if depth == 0 {
		w.filled = append(w.filled, obj)
		return nil
	}

	w.cursorDepth = depth
	w.cursor = &Tree{depth: w.tree.depth}
	return w.cursor.Append(obj)
}

func (w *Witness) partialPath() []sprout.Uint256 {
	p := append([]sprout.Uint256(nil), w.filled...)
	if w.cursor != nil {
		p = append(p, w.cursor.root(w.cursorDepth, nil))
	}
	return p
}

// Root is the root of the tree including every leaf fed through Append.
func (w *Witness) Root() sprout.Uint256 {
	return w.tree.root(w.tree.depth, w.partialPath())
}

// Element is the witnessed leaf.
func (w *Witness) Element() (sprout.Uint256, error) {
	return w.tree.Last()
}

// Position is the witnessed leaf's index.
func (w *Witness) Position() uint64 {
	return w.tree.Size() - 1
}

// Path is the current authentication path of the witnessed leaf.
func (w *Witness) Path() (Path, error) {
	return w.tree.path(w.partialPath())
}

// Depth is the depth of the underlying tree.
func (w *Witness) Depth() int {
	return w.tree.depth
}

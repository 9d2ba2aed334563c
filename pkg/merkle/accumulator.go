package merkle

import (
	"sync"

	"github.com/dolthub/swiss"
	"github.com/rs/zerolog"
	"github.com/suffix-labs/zcash-sprout/pkg/sprout"
)

// Accumulator is a note commitment tree shared between goroutines, together
// with the witnesses of the commitments a wallet cares about.
//
// Appends are serialized and update the tree and every tracked witness
// before the lock is released. Readers get deep copies.
type Accumulator struct {
	mu        sync.RWMutex
	tree      *Tree
	witnesses *swiss.Map[sprout.Uint256, *Witness]
	log       zerolog.Logger
}

// AccumulatorOption configures an Accumulator.
type AccumulatorOption func(*Accumulator)

// WithLogger sets the accumulator's logger.
func WithLogger(log zerolog.Logger) AccumulatorOption {
	return func(a *Accumulator) { a.log = log }
}

// NewAccumulator takes ownership of tree (a fresh depth-29 tree when nil).
func NewAccumulator(tree *Tree, opts ...AccumulatorOption) *Accumulator {
	if tree == nil {
		tree = NewTree()
	}
	a := &Accumulator{
		tree:      tree,
		witnesses: swiss.NewMap[sprout.Uint256, *Witness](16),
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Append adds commitments in order. Either all of them land or, on error,
// none do.
func (a *Accumulator) Append(cms ...sprout.Uint256) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, err := a.appendLocked(cms, false)
	return err
}

// AppendTracked appends cm and starts tracking its witness.
func (a *Accumulator) AppendTracked(cm sprout.Uint256) (*Witness, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	w, err := a.appendLocked([]sprout.Uint256{cm}, true)
	if err != nil {
		return nil, err
	}
	return w.Clone(), nil
}

// appendLocked works on copies and swaps them in only when every append
// succeeded. With track set, the last commitment gets a new witness.
func (a *Accumulator) appendLocked(cms []sprout.Uint256, track bool) (*Witness, error) {
	tree := a.tree.Clone()
	updated := make(map[sprout.Uint256]*Witness, a.witnesses.Count())
	a.witnesses.Iter(func(cm sprout.Uint256, w *Witness) (stop bool) {
		updated[cm] = w.Clone()
		return false
	})

	for _, cm := range cms {
		if err := tree.Append(cm); err != nil {
			return nil, err
		}
		for _, w := range updated {
			if err := w.Append(cm); err != nil {
				return nil, err
			}
		}
	}

	a.tree = tree
	for cm, w := range updated {
		a.witnesses.Put(cm, w)
	}
	var tracked *Witness
	if track && len(cms) > 0 {
		tracked = tree.Witness()
		a.witnesses.Put(cms[len(cms)-1], tracked)
	}

	a.log.Debug().
		Int("appended", len(cms)).
		Uint64("size", tree.Size()).
		Int("tracked", a.witnesses.Count()).
		Msg("note commitments appended")
	return tracked, nil
}

// Witness returns a copy of the tracked witness for cm.
func (a *Accumulator) Witness(cm sprout.Uint256) (*Witness, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	w, ok := a.witnesses.Get(cm)
	if !ok {
		return nil, false
	}
	return w.Clone(), true
}

// Forget stops tracking cm.
func (a *Accumulator) Forget(cm sprout.Uint256) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.witnesses.Delete(cm)
}

// Tracked lists the commitments with live witnesses.
func (a *Accumulator) Tracked() []sprout.Uint256 {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make([]sprout.Uint256, 0, a.witnesses.Count())
	a.witnesses.Iter(func(cm sprout.Uint256, _ *Witness) (stop bool) {
		out = append(out, cm)
		return false
	})
	return out
}

// Root is the current tree root.
func (a *Accumulator) Root() sprout.Uint256 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.tree.Root()
}

// Size is the number of commitments in the tree.
func (a *Accumulator) Size() uint64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.tree.Size()
}

// Tree returns a copy of the tree.
func (a *Accumulator) Tree() *Tree {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.tree.Clone()
}

package merkle

import (
	"fmt"

	"github.com/suffix-labs/zcash-sprout/pkg/sprout"
)

// Tree encoding:
//
//	optional(left) || optional(right) || count || optional(parent)*
//
// Witness encoding:
//
//	tree || count || filled(32)* || optional(cursor tree)

func (t *Tree) ByteLength() int {
	n := sprout.OptionalSize(t.left.ptr()) + sprout.OptionalSize(t.right.ptr())
	n += sprout.VarIntSize(uint64(t.numParents))
	for _, p := range t.parents[:t.numParents] {
		n += sprout.OptionalSize(p.ptr())
	}
	return n
}

func (t *Tree) Write(w *sprout.Writer) {
	w.WriteOptional(t.left.ptr())
	w.WriteOptional(t.right.ptr())
	w.WriteVarInt(uint64(t.numParents))
	for _, p := range t.parents[:t.numParents] {
		w.WriteOptional(p.ptr())
	}
}

func (t *Tree) Bytes() []byte {
	w := sprout.NewWriter(t.ByteLength())
	t.Write(w)
	return w.Bytes()
}

// ReadTree decodes a nested depth-29 tree.
func ReadTree(r *sprout.Reader) (*Tree, error) {
	return readTree(r, Depth)
}

func readTree(r *sprout.Reader, depth int) (*Tree, error) {
	t := &Tree{depth: depth}
	left, err := r.ReadOptional()
	if err != nil {
		return nil, fmt.Errorf("tree left: %w", err)
	}
	right, err := r.ReadOptional()
	if err != nil {
		return nil, fmt.Errorf("tree right: %w", err)
	}
	t.left, t.right = slotFrom(left), slotFrom(right)

	n, err := r.ReadCount(1)
	if err != nil {
		return nil, fmt.Errorf("tree parents: %w", err)
	}
	if n > depth-1 {
		return nil, &sprout.ValidationError{
			Code:    sprout.ErrInvalidEncoding,
			Message: fmt.Sprintf("tree has %d parents, depth %d allows %d", n, depth, depth-1),
		}
	}
	for i := 0; i < n; i++ {
		p, err := r.ReadOptional()
		if err != nil {
			return nil, fmt.Errorf("tree parent %d: %w", i, err)
		}
		t.parents[i] = slotFrom(p)
	}
	t.numParents = n
	return t, nil
}

// TreeFromBytes strictly decodes a depth-29 tree.
func TreeFromBytes(b []byte) (*Tree, error) {
	r := sprout.NewReader(b)
	t, err := ReadTree(r)
	if err != nil {
		return nil, err
	}
	if err := r.Finish("ZCIncrementalMerkleTree"); err != nil {
		return nil, err
	}
	return t, nil
}

func (w *Witness) ByteLength() int {
	n := w.tree.ByteLength()
	n += sprout.VarIntSize(uint64(len(w.filled))) + len(w.filled)*sprout.HashSize
	if w.cursor != nil {
		n += 1 + w.cursor.ByteLength()
	} else {
		n++
	}
	return n
}

func (w *Witness) Write(wr *sprout.Writer) {
	w.tree.Write(wr)
	wr.WriteVarInt(uint64(len(w.filled)))
	for _, h := range w.filled {
		wr.WriteUint256(h)
	}
	if w.cursor != nil {
		wr.WriteUint8(0x01)
		w.cursor.Write(wr)
	} else {
		wr.WriteUint8(0x00)
	}
}

func (w *Witness) Bytes() []byte {
	wr := sprout.NewWriter(w.ByteLength())
	w.Write(wr)
	return wr.Bytes()
}

// ReadWitness decodes a nested depth-29 witness. The cursor depth is not
// serialized; it is recomputed from the tree and the filled count.
func ReadWitness(r *sprout.Reader) (*Witness, error) {
	tree, err := ReadTree(r)
	if err != nil {
		return nil, fmt.Errorf("witness tree: %w", err)
	}
	w := &Witness{tree: tree}

	n, err := r.ReadCount(sprout.HashSize)
	if err != nil {
		return nil, fmt.Errorf("witness filled: %w", err)
	}
	if n > 0 {
		w.filled = make([]sprout.Uint256, n)
	}
	for i := range w.filled {
		if w.filled[i], err = r.ReadUint256(); err != nil {
			return nil, err
		}
	}

	tag, err := r.ReadUint8()
	if err != nil {
		return nil, fmt.Errorf("witness cursor: %w", err)
	}
	switch tag {
	case 0x00:
	case 0x01:
		if w.cursor, err = ReadTree(r); err != nil {
			return nil, fmt.Errorf("witness cursor: %w", err)
		}
	default:
		return nil, &sprout.ValidationError{
			Code:    sprout.ErrInvalidEncoding,
			Message: fmt.Sprintf("Invalid optional tag 0x%02x", tag),
		}
	}

	if w.cursor != nil {
		w.cursorDepth = tree.nextDepth(len(w.filled))
	}
	return w, nil
}

// WitnessFromBytes strictly decodes a depth-29 witness.
func WitnessFromBytes(b []byte) (*Witness, error) {
	r := sprout.NewReader(b)
	w, err := ReadWitness(r)
	if err != nil {
		return nil, err
	}
	if err := r.Finish("ZCIncrementalWitness"); err != nil {
		return nil, err
	}
	return w, nil
}

package joinsplit

import (
	"fmt"
	"io"

	"github.com/suffix-labs/zcash-sprout/pkg/crypto"
	"github.com/suffix-labs/zcash-sprout/pkg/keys"
	"github.com/suffix-labs/zcash-sprout/pkg/merkle"
	"github.com/suffix-labs/zcash-sprout/pkg/note"
	"github.com/suffix-labs/zcash-sprout/pkg/sprout"
)

// JSInput is a note being spent, the witness of its commitment and the key
// that owns it.
type JSInput struct {
	Witness *merkle.Witness
	Note    note.Note
	Key     keys.SpendingKey
}

// DummyInput is a zero-value input under a fresh random key, witnessed in a
// one-leaf tree. Zero-value inputs are not checked against the anchor.
func DummyInput(rng io.Reader) (JSInput, error) {
	key, err := keys.RandomSpendingKey(rng)
	if err != nil {
		return JSInput{}, err
	}
	n, err := note.Dummy(key.APk(), rng)
	if err != nil {
		return JSInput{}, err
	}

	tree := merkle.NewTree()
	if err := tree.Append(n.Commitment()); err != nil {
		return JSInput{}, err
	}
	return JSInput{Witness: tree.Witness(), Note: n, Key: key}, nil
}

// Nullifier is the note's nullifier under the input key.
func (in JSInput) Nullifier() sprout.Uint256 {
	return in.Note.Nullifier(in.Key)
}

func (in JSInput) ByteLength() int {
	return in.Witness.ByteLength() + sprout.NoteSize + keys.SpendingKeySize
}

// Write encodes witness || note || spending key.
func (in JSInput) Write(w *sprout.Writer) {
	in.Witness.Write(w)
	in.Note.Write(w)
	w.WriteSlice(in.Key.Bytes())
}

func (in JSInput) Bytes() []byte {
	w := sprout.NewWriter(in.ByteLength())
	in.Write(w)
	return w.Bytes()
}

// ReadInput decodes a nested JSInput.
func ReadInput(r *sprout.Reader) (JSInput, error) {
	var in JSInput
	var err error
	if in.Witness, err = merkle.ReadWitness(r); err != nil {
		return in, fmt.Errorf("input witness: %w", err)
	}
	if in.Note, err = note.Read(r); err != nil {
		return in, fmt.Errorf("input note: %w", err)
	}
	if in.Key, err = keys.ReadSpendingKey(r); err != nil {
		return in, fmt.Errorf("input key: %w", err)
	}
	return in, nil
}

// InputFromBytes strictly decodes a JSInput.
func InputFromBytes(b []byte) (JSInput, error) {
	r := sprout.NewReader(b)
	in, err := ReadInput(r)
	if err != nil {
		return in, err
	}
	if err := r.Finish("JSInput"); err != nil {
		return JSInput{}, err
	}
	return in, nil
}

// JSOutput is a payment of Value to Addr with a memo.
type JSOutput struct {
	Addr  keys.PaymentAddress
	Value uint64
	Memo  note.Memo
}

// NewOutput pads memo to 512 bytes; a nil memo becomes the empty memo.
func NewOutput(addr keys.PaymentAddress, value uint64, memo []byte) (JSOutput, error) {
	if err := sprout.CheckValue("output value", value); err != nil {
		return JSOutput{}, err
	}
	m, err := note.NewMemo(memo)
	if err != nil {
		return JSOutput{}, err
	}
	return JSOutput{Addr: addr, Value: value, Memo: m}, nil
}

// DummyOutput pays zero to a fresh random address.
func DummyOutput(rng io.Reader) (JSOutput, error) {
	key, err := keys.RandomSpendingKey(rng)
	if err != nil {
		return JSOutput{}, err
	}
	addr, err := key.Address()
	if err != nil {
		return JSOutput{}, err
	}
	return JSOutput{Addr: addr, Memo: note.DefaultMemo()}, nil
}

// note builds output i's note: rho = PRF_rho(phi, i, hSig).
func (out JSOutput) note(phi sprout.Uint252, r sprout.Uint256, i int, hSig sprout.Uint256) (note.Note, error) {
	rho, err := crypto.PRFRho(phi, i, hSig)
	if err != nil {
		return note.Note{}, err
	}
	return note.New(out.Addr.APk, out.Value, rho, r)
}

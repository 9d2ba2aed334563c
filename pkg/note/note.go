// Package note implements Sprout notes and their encrypted plaintexts.
//
// A note is a_pk(32) || value(u64 LE) || rho(32) || r(32). Its commitment is
// SHA-256(0xb0 || note) and its nullifier is PRF_nf(a_sk, rho).
package note

import (
	"crypto/sha256"
	"fmt"
	"io"

	"github.com/suffix-labs/zcash-sprout/pkg/crypto"
	"github.com/suffix-labs/zcash-sprout/pkg/keys"
	"github.com/suffix-labs/zcash-sprout/pkg/sprout"
)

// commitmentPrefix is the leading byte of the commitment preimage.
const commitmentPrefix = 0xb0

// Note is a Sprout value-bearing note.
type Note struct {
	APk   sprout.Uint256 `json:"a_pk"`
	Value uint64         `json:"value"`
	Rho   sprout.Uint256 `json:"rho"`
	R     sprout.Uint256 `json:"r"`
}

// New validates value and builds a note.
func New(aPk sprout.Uint256, value uint64, rho, r sprout.Uint256) (Note, error) {
	if err := sprout.CheckValue("note value", value); err != nil {
		return Note{}, err
	}
	return Note{APk: aPk, Value: value, Rho: rho, R: r}, nil
}

// Dummy is a zero-value note to aPk with random rho and r.
func Dummy(aPk sprout.Uint256, rng io.Reader) (Note, error) {
	rho, err := sprout.RandomUint256(rng)
	if err != nil {
		return Note{}, err
	}
	r, err := sprout.RandomUint256(rng)
	if err != nil {
		return Note{}, err
	}
	return Note{APk: aPk, Rho: rho, R: r}, nil
}

func (n Note) ByteLength() int { return sprout.NoteSize }

func (n Note) Write(w *sprout.Writer) {
	w.WriteUint256(n.APk)
	w.WriteUint64(n.Value)
	w.WriteUint256(n.Rho)
	w.WriteUint256(n.R)
}

func (n Note) Bytes() []byte {
	w := sprout.NewWriter(sprout.NoteSize)
	n.Write(w)
	return w.Bytes()
}

// Read decodes a nested note.
func Read(r *sprout.Reader) (Note, error) {
	var n Note
	var err error
	if n.APk, err = r.ReadUint256(); err != nil {
		return n, fmt.Errorf("note a_pk: %w", err)
	}
	if n.Value, err = r.ReadUint64(); err != nil {
		return n, fmt.Errorf("note value: %w", err)
	}
	if err = sprout.CheckValue("note value", n.Value); err != nil {
		return n, err
	}
	if n.Rho, err = r.ReadUint256(); err != nil {
		return n, fmt.Errorf("note rho: %w", err)
	}
	if n.R, err = r.ReadUint256(); err != nil {
		return n, fmt.Errorf("note r: %w", err)
	}
	return n, nil
}

// FromBytes strictly decodes a 104-byte note.
func FromBytes(b []byte) (Note, error) {
	r := sprout.NewReader(b)
	n, err := Read(r)
	if err != nil {
		return n, err
	}
	if err := r.Finish("Note"); err != nil {
		return Note{}, err
	}
	return n, nil
}

// Commitment is cm = SHA-256(0xb0 || a_pk || value || rho || r).
func (n Note) Commitment() sprout.Uint256 {
	h := sha256.New()
	h.Write([]byte{commitmentPrefix})
	h.Write(n.Bytes())

	var cm sprout.Uint256
	copy(cm[:], h.Sum(nil))
	return cm
}

// Nullifier is PRF_nf(a_sk, rho).
func (n Note) Nullifier(key keys.SpendingKey) sprout.Uint256 {
	return crypto.PRFNf(key.ASk, n.Rho)
}

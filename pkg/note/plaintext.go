package note

import (
	"fmt"

	"github.com/suffix-labs/zcash-sprout/pkg/crypto"
	"github.com/suffix-labs/zcash-sprout/pkg/sprout"
)

// plaintextLeadByte is the first byte of every Sprout note plaintext.
const plaintextLeadByte = 0x00

// noMemo marks an empty memo field.
const noMemo = 0xf6

// Memo is the fixed-size memo carried in a note plaintext.
type Memo [sprout.MemoSize]byte

// DefaultMemo is 0xF6 followed by zeros.
func DefaultMemo() Memo {
	var m Memo
	m[0] = noMemo
	return m
}

// NewMemo zero-pads b. Longer than 512 bytes is an error; nil yields the
// default memo.
func NewMemo(b []byte) (Memo, error) {
	if b == nil {
		return DefaultMemo(), nil
	}
	var m Memo
	if len(b) > sprout.MemoSize {
		return m, &sprout.ValidationError{
			Code:    sprout.ErrInvalidLength,
			Message: fmt.Sprintf("memo is %d bytes, maximum is %d", len(b), sprout.MemoSize),
		}
	}
	copy(m[:], b)
	return m, nil
}

// IsEmpty reports whether the memo is the "no memo" marker.
func (m Memo) IsEmpty() bool {
	return m == DefaultMemo()
}

// Text returns the memo with trailing zero padding removed.
func (m Memo) Text() []byte {
	end := len(m)
	for end > 0 && m[end-1] == 0 {
		end--
	}
	return m[:end]
}

// Plaintext is what a JoinSplit encrypts to an output recipient:
// 0x00 || value || rho || r || memo.
type Plaintext struct {
	Value uint64
	Rho   sprout.Uint256
	R     sprout.Uint256
	Memo  Memo
}

// NewPlaintext takes value, rho and r from n.
func NewPlaintext(n Note, memo Memo) Plaintext {
	return Plaintext{Value: n.Value, Rho: n.Rho, R: n.R, Memo: memo}
}

// Note rebuilds the note for the recipient's paying key.
func (p Plaintext) Note(aPk sprout.Uint256) Note {
	return Note{APk: aPk, Value: p.Value, Rho: p.Rho, R: p.R}
}

func (p Plaintext) Bytes() []byte {
	w := sprout.NewWriter(sprout.NotePlaintextSize)
	w.WriteUint8(plaintextLeadByte)
	w.WriteUint64(p.Value)
	w.WriteUint256(p.Rho)
	w.WriteUint256(p.R)
	w.WriteSlice(p.Memo[:])
	return w.Bytes()
}

// PlaintextFromBytes strictly decodes a 585-byte plaintext.
func PlaintextFromBytes(b []byte) (Plaintext, error) {
	var p Plaintext
	r := sprout.NewReader(b)

	lead, err := r.ReadUint8()
	if err != nil {
		return p, err
	}
	if lead != plaintextLeadByte {
		return p, &sprout.ValidationError{
			Code:    sprout.ErrInvalidEncoding,
			Message: fmt.Sprintf("unexpected note plaintext lead byte 0x%02x", lead),
		}
	}
	if p.Value, err = r.ReadUint64(); err != nil {
		return p, err
	}
	if err = sprout.CheckValue("note value", p.Value); err != nil {
		return p, err
	}
	if p.Rho, err = r.ReadUint256(); err != nil {
		return p, err
	}
	if p.R, err = r.ReadUint256(); err != nil {
		return p, err
	}
	memo, err := r.ReadSlice(sprout.MemoSize)
	if err != nil {
		return p, err
	}
	copy(p.Memo[:], memo)

	if err := r.Finish("NotePlaintext"); err != nil {
		return Plaintext{}, err
	}
	return p, nil
}

// Encrypt seals the plaintext to pkEnc with the next nonce of enc.
func (p Plaintext) Encrypt(enc *crypto.NoteEncryption, pkEnc sprout.Uint256) ([]byte, error) {
	return enc.Encrypt(pkEnc, p.Bytes())
}

// DecryptPlaintext opens a ciphertext and parses the plaintext.
func DecryptPlaintext(dec *crypto.NoteDecryption, ciphertext []byte, epk, hSig sprout.Uint256, nonce uint8) (Plaintext, error) {
	raw, err := dec.Decrypt(ciphertext, epk, hSig, nonce)
	if err != nil {
		return Plaintext{}, err
	}
	return PlaintextFromBytes(raw)
}

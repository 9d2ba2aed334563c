// Package sprout holds the fixed-width value types, constants, errors and
// binary codec helpers shared by every Sprout shielded component.
//
// All hash and key fields are 32-byte big buffers with no padding. All
// multi-byte integers are little-endian. Variable-length counts use the
// Bitcoin compact-size varint (1/3/5/9 byte forms).
//
// References:
//   - https://zips.z.cash/protocol/protocol.pdf (Sprout, sections 4.1, 5.4, 7.2)
//   - zcash/src/zcash/JoinSplit.hpp, Note.hpp, IncrementalMerkleTree.hpp
package sprout

import (
	"errors"

	fasthex "github.com/tmthrgd/go-hex"
)

// JoinSplit circuit arity and wire sizes.
const (
	NumJSInputs  = 2 // ZC_NUM_JS_INPUTS
	NumJSOutputs = 2 // ZC_NUM_JS_OUTPUTS

	MemoSize = 512 // ZC_MEMO_SIZE

	// NoteSize is a_pk || value || rho || r.
	NoteSize = 104

	// NotePlaintextSize is leading byte || value || rho || r || memo.
	NotePlaintextSize  = 1 + 8 + 32 + 32 + MemoSize
	AEADTagSize        = 16
	NoteCiphertextSize = NotePlaintextSize + AEADTagSize

	JoinSplitSignatureSize = 64
)

// MaxValue is the largest amount a note or public value may carry (2^53 - 1).
const MaxValue = uint64(1)<<53 - 1

// HashSize is the width of every hash and key field.
const HashSize = 32

// Uint256 is a 256-bit big-endian buffer (hashes, public keys, rho, r).
type Uint256 [HashSize]byte

var ZeroUint256 Uint256

func (u Uint256) String() string {
	return fasthex.EncodeToString(u[:])
}

func (u Uint256) Slice() []byte {
	return u[:]
}

func (u Uint256) IsZero() bool {
	return u == ZeroUint256
}

func (u Uint256) MarshalJSON() ([]byte, error) {
	var buf [HashSize*2 + 2]byte
	buf[0] = '"'
	buf[HashSize*2+1] = '"'
	fasthex.Encode(buf[1:], u[:])
	return buf[:], nil
}

func (u *Uint256) UnmarshalJSON(b []byte) error {
	if len(b) != HashSize*2+2 || b[0] != '"' || b[len(b)-1] != '"' {
		return errors.New("invalid uint256 json")
	}
	_, err := fasthex.Decode(u[:], b[1:len(b)-1])
	return err
}

// Uint256FromString decodes 64 hex characters.
func Uint256FromString(s string) (Uint256, error) {
	var u Uint256
	buf, err := fasthex.DecodeString(s)
	if err != nil {
		return u, err
	}
	if len(buf) != HashSize {
		return u, &ValidationError{Code: ErrInvalidLength, Message: "expected 256-bit value"}
	}
	copy(u[:], buf)
	return u, nil
}

// MustUint256FromString is Uint256FromString for constants and tests.
func MustUint256FromString(s string) Uint256 {
	u, err := Uint256FromString(s)
	if err != nil {
		panic(err)
	}
	return u
}

// Uint256FromBytes copies a 32-byte slice.
func Uint256FromBytes(buf []byte) (Uint256, error) {
	var u Uint256
	if len(buf) != HashSize {
		return u, &ValidationError{
			Code:    ErrInvalidLength,
			Message: "expected 256-bit value",
		}
	}
	copy(u[:], buf)
	return u, nil
}

// Uint252 is a 256-bit buffer whose top nibble is zero (a_sk, phi).
//
// The array is unexported so a value with stray top-nibble bits cannot be
// constructed outside NewUint252 / MaskUint252.
type Uint252 struct {
	b Uint256
}

// NewUint252 rejects values whose first byte exceeds 0x0F.
func NewUint252(u Uint256) (Uint252, error) {
	if u[0]&0x0F != u[0] {
		return Uint252{}, &ValidationError{
			Code:    ErrInvalidLength,
			Message: "expected 252-bit value, top nibble is set",
		}
	}
	return Uint252{b: u}, nil
}

// MustUint252 is NewUint252 for constants and tests.
func MustUint252(u Uint256) Uint252 {
	v, err := NewUint252(u)
	if err != nil {
		panic(err)
	}
	return v
}

// MaskUint252 clears the top nibble.
func MaskUint252(u Uint256) Uint252 {
	u[0] &= 0x0F
	return Uint252{b: u}
}

func (u Uint252) Uint256() Uint256 {
	return u.b
}

func (u Uint252) String() string {
	return u.b.String()
}

func (u Uint252) MarshalJSON() ([]byte, error) {
	return u.b.MarshalJSON()
}

// CheckValue fails for amounts above MaxValue.
func CheckValue(field string, v uint64) error {
	if v > MaxValue {
		return &ValidationError{
			Code:    ErrValueOutOfRange,
			Message: field + " exceeds 2^53-1",
		}
	}
	return nil
}

// AddValues sums a and b, failing if the result leaves the 53-bit domain.
func AddValues(field string, a, b uint64) (uint64, error) {
	if err := CheckValue(field, a); err != nil {
		return 0, err
	}
	if err := CheckValue(field, b); err != nil {
		return 0, err
	}
	sum := a + b
	if err := CheckValue(field, sum); err != nil {
		return 0, err
	}
	return sum, nil
}

package keys

import (
	"fmt"
	"io"

	"github.com/suffix-labs/zcash-sprout/pkg/crypto"
	"github.com/suffix-labs/zcash-sprout/pkg/sprout"
)

// SpendingKeySize is the encoded size of a spending key.
const SpendingKeySize = 32

// SpendingKey is the Sprout secret a_sk. It authorizes spends and yields the
// payment address and the note decryption key.
type SpendingKey struct {
	ASk sprout.Uint252
}

// RandomSpendingKey draws a_sk from rng (crypto/rand when nil).
func RandomSpendingKey(rng io.Reader) (SpendingKey, error) {
	aSk, err := sprout.RandomUint252(rng)
	if err != nil {
		return SpendingKey{}, err
	}
	return SpendingKey{ASk: aSk}, nil
}

// APk is the paying key PRF_addr(a_sk, 0).
func (k SpendingKey) APk() sprout.Uint256 {
	return crypto.PRFAddrAPk(k.ASk)
}

// SkEnc is the clamped transmission private key.
func (k SpendingKey) SkEnc() sprout.Uint256 {
	return crypto.GeneratePrivKey(k.ASk)
}

// Address derives (a_pk, pk_enc).
func (k SpendingKey) Address() (PaymentAddress, error) {
	pkEnc, err := crypto.GeneratePubKey(k.SkEnc())
	if err != nil {
		return PaymentAddress{}, err
	}
	return PaymentAddress{APk: k.APk(), PkEnc: pkEnc}, nil
}

// Decryptor returns a note decryption context for this key's ciphertexts.
func (k SpendingKey) Decryptor() (*crypto.NoteDecryption, error) {
	return crypto.NewNoteDecryption(k.SkEnc())
}

func (k SpendingKey) ByteLength() int { return SpendingKeySize }

func (k SpendingKey) Bytes() []byte {
	u := k.ASk.Uint256()
	return u[:]
}

// ReadSpendingKey decodes a nested spending key.
func ReadSpendingKey(r *sprout.Reader) (SpendingKey, error) {
	aSk, err := r.ReadUint252()
	if err != nil {
		return SpendingKey{}, fmt.Errorf("spending key: %w", err)
	}
	return SpendingKey{ASk: aSk}, nil
}

// SpendingKeyFromBytes strictly decodes 32 bytes.
func SpendingKeyFromBytes(b []byte) (SpendingKey, error) {
	r := sprout.NewReader(b)
	k, err := ReadSpendingKey(r)
	if err != nil {
		return SpendingKey{}, err
	}
	if err := r.Finish("SpendingKey"); err != nil {
		return SpendingKey{}, err
	}
	return k, nil
}

// Encode returns the Base58Check string for net.
func (k SpendingKey) Encode(net *Network) string {
	return encodeCheck(net.ZcSpendingKey, k.Bytes())
}

// DecodeSpendingKey parses a Base58Check spending key for net.
func DecodeSpendingKey(s string, net *Network) (SpendingKey, error) {
	version, payload, err := decodeCheck(s, SpendingKeySize)
	if err != nil {
		return SpendingKey{}, err
	}
	if version != net.ZcSpendingKey {
		return SpendingKey{}, &sprout.ValidationError{
			Code:    sprout.ErrInvalidAddress,
			Message: s + " has no matching SpendingKey",
		}
	}
	return SpendingKeyFromBytes(payload)
}

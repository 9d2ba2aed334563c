package crypto

import (
	"hash"

	blake2b "github.com/minio/blake2b-simd"
	"github.com/suffix-labs/zcash-sprout/pkg/sprout"
)

// Personalization strings for BLAKE2b-256.
const (
	KDFPersonalization  = "ZcashKDF"
	HSigPersonalization = "ZcashComputehSig"
)

// blake2bNew256 creates a new BLAKE2b-256 hash with the given personalization.
// The personalization is a parameter block field, not a key.
func blake2bNew256(personalization []byte) (hash.Hash, error) {
	config := &blake2b.Config{
		Size:   32,
		Person: personalization,
	}
	return blake2b.New(config)
}

// Blake2b256 hashes the concatenation of parts under personalization
// (at most 16 bytes).
func Blake2b256(personalization []byte, parts ...[]byte) (sprout.Uint256, error) {
	var out sprout.Uint256
	h, err := blake2bNew256(personalization)
	if err != nil {
		return out, &sprout.ValidationError{
			Code:    sprout.ErrInvalidLength,
			Message: "invalid BLAKE2b personalization",
			Cause:   err,
		}
	}
	for _, p := range parts {
		h.Write(p)
	}
	copy(out[:], h.Sum(nil))
	return out, nil
}

// KDF derives the symmetric key for one note ciphertext.
//
//	K = BLAKE2b-256("ZcashKDF" || nonce || 0^7, hSig || dhsecret || epk || pk_enc)
//
// Nonce 255 is reserved and fails with ExhaustedError.
func KDF(dhsecret, epk, pkEnc, hSig sprout.Uint256, nonce uint8) (sprout.Uint256, error) {
	if nonce == 0xff {
		return sprout.Uint256{}, &sprout.ExhaustedError{
			Code:    sprout.ErrNonceExhausted,
			Message: "no additional nonce space for KDF",
		}
	}

	var person [16]byte
	copy(person[:], KDFPersonalization)
	person[8] = nonce

	return Blake2b256(person[:], hSig[:], dhsecret[:], epk[:], pkEnc[:])
}

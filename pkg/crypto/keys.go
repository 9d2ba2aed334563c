package crypto

import (
	"github.com/suffix-labs/zcash-sprout/pkg/sprout"
	"golang.org/x/crypto/curve25519"
)

// GeneratePrivKey derives the Curve25519 transmission key sk_enc from a_sk,
// clamped per RFC 7748.
func GeneratePrivKey(aSk sprout.Uint252) sprout.Uint256 {
	sk := PRFAddrSkEnc(aSk)
	sk[0] &= 248
	sk[31] &= 127
	sk[31] |= 64
	return sk
}

// GeneratePubKey multiplies the Curve25519 base point by sk.
func GeneratePubKey(sk sprout.Uint256) (sprout.Uint256, error) {
	return scalarMult(sk, basePoint())
}

func basePoint() sprout.Uint256 {
	var b sprout.Uint256
	copy(b[:], curve25519.Basepoint)
	return b
}

// scalarMult fails when the shared point is the identity (low-order input).
func scalarMult(scalar, point sprout.Uint256) (sprout.Uint256, error) {
	var out sprout.Uint256
	res, err := curve25519.X25519(scalar[:], point[:])
	if err != nil {
		return out, &sprout.CryptoError{
			Code:    sprout.ErrKeyAgreement,
			Message: "curve25519 scalar multiplication failed",
			Cause:   err,
		}
	}
	copy(out[:], res)
	return out, nil
}

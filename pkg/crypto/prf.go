package crypto

import (
	"github.com/suffix-labs/zcash-sprout/pkg/sprout"
)

// prf hashes x || y with the four tag bits a,b,c,d in the top nibble of the
// first byte. x is 252 bits so the nibble is free.
func prf(a, b, c, d bool, x sprout.Uint252, y sprout.Uint256) sprout.Uint256 {
	var blob [64]byte
	xb := x.Uint256()
	copy(blob[:32], xb[:])
	copy(blob[32:], y[:])

	blob[0] &= 0x0F
	blob[0] |= tagBit(a, 7) | tagBit(b, 6) | tagBit(c, 5) | tagBit(d, 4)

	return SHA256Compress(&blob)
}

func tagBit(set bool, shift uint) byte {
	if set {
		return 1 << shift
	}
	return 0
}

func prfAddr(aSk sprout.Uint252, t byte) sprout.Uint256 {
	var y sprout.Uint256
	y[0] = t
	return prf(true, true, false, false, aSk, y)
}

// PRFAddrAPk derives the paying key a_pk from a_sk.
func PRFAddrAPk(aSk sprout.Uint252) sprout.Uint256 {
	return prfAddr(aSk, 0)
}

// PRFAddrSkEnc derives the unclamped transmission private key from a_sk.
func PRFAddrSkEnc(aSk sprout.Uint252) sprout.Uint256 {
	return prfAddr(aSk, 1)
}

// PRFNf is the nullifier PRF.
func PRFNf(aSk sprout.Uint252, rho sprout.Uint256) sprout.Uint256 {
	return prf(true, true, true, false, aSk, rho)
}

// PRFPk binds input i's spending key to hSig. i must be 0 or 1.
func PRFPk(aSk sprout.Uint252, i int, hSig sprout.Uint256) (sprout.Uint256, error) {
	if i != 0 && i != 1 {
		return sprout.Uint256{}, &sprout.ValidationError{
			Code:    sprout.ErrIndexOutOfRange,
			Message: "PRF_pk invoked with index out of bounds",
		}
	}
	return prf(false, i == 1, false, false, aSk, hSig), nil
}

// PRFRho derives output i's rho from phi and hSig. i must be 0 or 1.
func PRFRho(phi sprout.Uint252, i int, hSig sprout.Uint256) (sprout.Uint256, error) {
	if i != 0 && i != 1 {
		return sprout.Uint256{}, &sprout.ValidationError{
			Code:    sprout.ErrIndexOutOfRange,
			Message: "PRF_rho invoked with index out of bounds",
		}
	}
	return prf(false, i == 1, true, false, phi, hSig), nil
}

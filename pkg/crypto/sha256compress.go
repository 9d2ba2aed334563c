// Package crypto implements the Sprout hash, PRF, KDF and note encryption
// primitives, plus secp256k1 keys for transparent inputs.
//
// Sprout builds its PRFs and its Merkle tree combiner on the bare SHA-256
// compression function applied to a single 512-bit block, with the standard
// IV and no length padding.
//
// This corresponds to:
//   - zcash/src/crypto/sha256.cpp (FinalizeNoPadding)
//   - zcash/src/zcash/prf.cpp, NoteEncryption.cpp
//
// References:
//   - https://zips.z.cash/protocol/protocol.pdf section 5.4.1.1 SHA-256 and SHA256Compress
package crypto

import (
	"bytes"
	"crypto/sha256"
	"encoding"

	"github.com/suffix-labs/zcash-sprout/pkg/sprout"
)

// sha256StateMagic prefixes the exported SHA-256 digest state.
const sha256StateMagic = "sha\x03"

// SHA256Compress returns the SHA-256 chaining value after absorbing exactly
// one 64-byte block from the initial state.
func SHA256Compress(block *[64]byte) sprout.Uint256 {
	d := sha256.New()
	d.Write(block[:])

	// After one full block the exported state is
	// magic(4) || h0..h7 (big-endian) || pending block || length.
	state, err := d.(encoding.BinaryMarshaler).MarshalBinary()
	if err != nil || !bytes.HasPrefix(state, []byte(sha256StateMagic)) || len(state) < 36 {
		panic("crypto: unexpected sha256 state layout")
	}

	var out sprout.Uint256
	copy(out[:], state[4:36])
	return out
}

// Combine is the Merkle tree node hash: SHA256Compress(left || right).
func Combine(left, right sprout.Uint256) sprout.Uint256 {
	var block [64]byte
	copy(block[:32], left[:])
	copy(block[32:], right[:])
	return SHA256Compress(&block)
}

// Package joinsplit builds Sprout JoinSplit descriptions: the 2-in/2-out
// shielded transfer records carried by version >= 2 transactions, together
// with the private witness the external prover needs to produce their proof.
//
// This corresponds to:
//   - zcash/src/primitives/transaction.cpp (JSDescription)
//   - zcash/src/zcash/JoinSplit.cpp (prove, h_sig)
//
// References:
//   - https://zips.z.cash/protocol/protocol.pdf section 4.3 JoinSplit Descriptions
//   - https://zips.z.cash/protocol/protocol.pdf section 7.2 Encoding of JoinSplit Descriptions
package joinsplit

import (
	"github.com/suffix-labs/zcash-sprout/pkg/crypto"
	"github.com/suffix-labs/zcash-sprout/pkg/sprout"
)

// HSig binds the random seed, the input nullifiers and the JoinSplit public
// key hash:
//
//	hSig = BLAKE2b-256("ZcashComputehSig", randomSeed || nf_1 || nf_2 || joinSplitPubKey)
func HSig(randomSeed sprout.Uint256, nullifiers [sprout.NumJSInputs]sprout.Uint256, pubKeyHash sprout.Uint256) sprout.Uint256 {
	parts := make([][]byte, 0, sprout.NumJSInputs+2)
	parts = append(parts, randomSeed[:])
	for i := range nullifiers {
		parts = append(parts, nullifiers[i][:])
	}
	parts = append(parts, pubKeyHash[:])

	h, err := crypto.Blake2b256([]byte(crypto.HSigPersonalization), parts...)
	if err != nil {
		// The personalization is a 16-byte constant.
		panic(err)
	}
	return h
}

package transaction

import (
	"bytes"
	"crypto/ed25519"
	"fmt"

	"github.com/btcsuite/btcd/txscript"

	"github.com/suffix-labs/zcash-sprout/pkg/crypto"
	"github.com/suffix-labs/zcash-sprout/pkg/keys"
	"github.com/suffix-labs/zcash-sprout/pkg/sprout"
)

// SignInput signs a P2PKH input and installs the scriptSig
// <DER signature || hashType> <compressed pubkey>.
func (t *Transaction) SignInput(index int, key *crypto.PrivateKey, prevOutScript []byte, hashType uint32) error {
	if index < 0 || index >= len(t.Ins) {
		return &sprout.ValidationError{
			Code:    sprout.ErrIndexOutOfRange,
			Message: fmt.Sprintf("input index %d out of bounds (have %d inputs)", index, len(t.Ins)),
		}
	}

	pub := key.PublicKey()
	expected, err := keys.PayToPubKeyHash(pub.Hash160())
	if err != nil {
		return err
	}
	if !bytes.Equal(expected, prevOutScript) {
		return &sprout.ValidationError{
			Code:    sprout.ErrInvalidAddress,
			Message: fmt.Sprintf("input %d: previous output does not pay to the signing key", index),
		}
	}

	sighash, err := t.HashForSignature(uint32(index), prevOutScript, hashType)
	if err != nil {
		return fmt.Errorf("failed to compute sighash: %w", err)
	}
	sig := append(key.Sign(sighash), byte(hashType))

	scriptSig, err := txscript.NewScriptBuilder().
		AddData(sig).
		AddData(pub.Bytes()).
		Script()
	if err != nil {
		return err
	}
	t.Ins[index].Script = scriptSig
	return nil
}

// SignJoinSplits signs the transaction with the JoinSplit key created by
// GetProofs. Transparent signatures do not cover joinSplitSig, so the order
// of SignInput and SignJoinSplits does not matter.
func (t *Transaction) SignJoinSplits() error {
	if !t.hasJoinSplits() {
		return nil
	}
	if t.jsPriv == nil {
		return &sprout.ValidationError{
			Code:    sprout.ErrMissingKey,
			Message: "no JoinSplit signing key; call GetProofs() first",
		}
	}
	hash, err := t.HashForSignature(NotAnInput, nil, SigHashAll)
	if err != nil {
		return err
	}
	copy(t.JoinSplitSig[:], ed25519.Sign(t.jsPriv, hash[:]))
	return nil
}

// VerifyJoinSplitSig checks joinSplitSig against joinSplitPubKey.
func (t *Transaction) VerifyJoinSplitSig() (bool, error) {
	if !t.hasJoinSplits() {
		return true, nil
	}
	hash, err := t.HashForSignature(NotAnInput, nil, SigHashAll)
	if err != nil {
		return false, err
	}
	return ed25519.Verify(t.JoinSplitPubKey[:], hash[:], t.JoinSplitSig[:]), nil
}

package api

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suffix-labs/zcash-sprout/pkg/crypto"
	"github.com/suffix-labs/zcash-sprout/pkg/joinsplit"
	"github.com/suffix-labs/zcash-sprout/pkg/keys"
	"github.com/suffix-labs/zcash-sprout/pkg/merkle"
	"github.com/suffix-labs/zcash-sprout/pkg/prover"
	"github.com/suffix-labs/zcash-sprout/pkg/sprout"
	"github.com/suffix-labs/zcash-sprout/pkg/transaction"
)

var fakeProver = prover.ProviderFunc(func(_ context.Context, ws []*joinsplit.ProofWitness) ([]*joinsplit.Proof, error) {
	proofs := make([]*joinsplit.Proof, len(ws))
	for i := range ws {
		proofs[i] = &joinsplit.Proof{}
	}
	return proofs, nil
})

type wallet struct {
	sk    keys.SpendingKey
	zaddr string
	input TransparentInput
	taddr string
}

func newWallet(t *testing.T, value uint64) wallet {
	t.Helper()
	sk, err := keys.RandomSpendingKey(nil)
	require.NoError(t, err)
	addr, err := sk.Address()
	require.NoError(t, err)

	priv, err := crypto.GeneratePrivateKey()
	require.NoError(t, err)
	hash := priv.PublicKey().Hash160()
	script, err := keys.PayToPubKeyHash(hash)
	require.NoError(t, err)

	return wallet{
		sk:    sk,
		zaddr: addr.Encode(keys.TestNet),
		taddr: keys.EncodeTransparent(hash, keys.TestNet.PubKeyHash),
		input: TransparentInput{
			TxID:         strings.Repeat("ab", 32),
			OutputIndex:  1,
			Value:        value,
			ScriptPubKey: script,
			WIF:          priv.WIF(crypto.WIFTestNet),
		},
	}
}

func TestShield(t *testing.T) {
	w := newWallet(t, 5_0000_0000)
	proposal := &ShieldingProposal{
		TransparentInputs:  []TransparentInput{w.input},
		TransparentOutputs: []TransparentOutput{{Address: w.taddr, Value: 1_0000_0000}},
		ShieldedOutputs:    []ShieldedOutput{{Address: w.zaddr, Value: 2_0000_0000, Memo: []byte("first")}},
		PaymentRequest:     "zcash:" + w.zaddr + "?amount=1.5&memo=c2Vjb25k",
	}

	raw, err := Shield(context.Background(), proposal, keys.TestNet, fakeProver)
	require.NoError(t, err)

	tx, err := ParseTransaction(raw)
	require.NoError(t, err)
	assert.Equal(t, uint32(transaction.JoinSplitVersion), tx.Version)
	require.Len(t, tx.Ins, 1)
	require.Len(t, tx.Outs, 1)
	require.Len(t, tx.JoinSplits, 1)
	assert.Equal(t, uint64(3_5000_0000), tx.JoinSplits[0].VpubOld)
	assert.Equal(t, merkle.NewTree().Root(), tx.JoinSplits[0].Anchor)

	ok, err := tx.VerifyJoinSplitSig()
	require.NoError(t, err)
	assert.True(t, ok)

	notes, err := ScanTransaction(raw, w.sk.Encode(keys.TestNet), keys.TestNet)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	var total uint64
	for _, n := range notes {
		total += n.Note.Value
	}
	assert.Equal(t, uint64(3_5000_0000), total)

	other := newWallet(t, 0)
	notes, err = ScanTransaction(raw, other.sk.Encode(keys.TestNet), keys.TestNet)
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestProposeShieldingBalance(t *testing.T) {
	w := newWallet(t, 1_0000_0000)
	_, err := ProposeShielding(&ShieldingProposal{
		TransparentInputs: []TransparentInput{w.input},
		ShieldedOutputs:   []ShieldedOutput{{Address: w.zaddr, Value: 1_0000_0001}},
	}, keys.TestNet)
	assert.True(t, sprout.HasCode(err, sprout.ErrBalance))

	_, err = ProposeShielding(&ShieldingProposal{
		TransparentInputs: []TransparentInput{w.input},
		PaymentRequest:    "zcash:" + w.zaddr + "?amount=2",
	}, keys.TestNet)
	assert.True(t, sprout.HasCode(err, sprout.ErrBalance))

	_, err = ProposeShielding(&ShieldingProposal{}, keys.TestNet)
	assert.ErrorContains(t, err, "no transparent inputs")

	bad := w.input
	bad.TxID = "zz"
	_, err = ProposeShielding(&ShieldingProposal{TransparentInputs: []TransparentInput{bad}}, keys.TestNet)
	assert.ErrorContains(t, err, "invalid txid")

	// Main net addresses do not decode on test net.
	_, err = ProposeShielding(&ShieldingProposal{
		TransparentInputs: []TransparentInput{w.input},
		ShieldedOutputs:   []ShieldedOutput{{Address: w.zaddr, Value: 1}},
	}, keys.MainNet)
	assert.Error(t, err)
}

func TestSignAndFinalize(t *testing.T) {
	w := newWallet(t, 1_0000_0000)
	proposal := &ShieldingProposal{
		TransparentInputs: []TransparentInput{w.input},
		ShieldedOutputs:   []ShieldedOutput{{Address: w.zaddr, Value: 9000_0000}},
	}
	tx, err := ProposeShielding(proposal, keys.TestNet)
	require.NoError(t, err)

	_, err = FinalizeAndExtract(tx)
	assert.ErrorContains(t, err, "input 0 is not signed")

	// Signing before proving leaves the shielded outputs pending.
	require.NoError(t, SignShielding(tx, proposal.TransparentInputs))
	_, err = FinalizeAndExtract(tx)
	assert.ErrorContains(t, err, "shielded outputs were never proven")

	tx, err = ProposeShielding(proposal, keys.TestNet)
	require.NoError(t, err)
	require.NoError(t, ProveShielding(context.Background(), tx, fakeProver))

	sighash, err := GetSighash(tx, 0, w.input.ScriptPubKey)
	require.NoError(t, err)
	_, err = GetSighash(tx, 1, w.input.ScriptPubKey)
	assert.Error(t, err)

	wrongKey := w.input
	wrongKey.WIF = newWallet(t, 0).input.WIF
	err = SignShielding(tx, []TransparentInput{wrongKey})
	assert.True(t, sprout.HasCode(err, sprout.ErrInvalidAddress))
	assert.ErrorContains(t, SignShielding(tx, nil), "have 0 keys for 1 inputs")

	require.NoError(t, SignShielding(tx, proposal.TransparentInputs))
	after, err := GetSighash(tx, 0, w.input.ScriptPubKey)
	require.NoError(t, err)
	assert.Equal(t, sighash, after)

	tx.JoinSplitSig[0] ^= 1
	_, err = FinalizeAndExtract(tx)
	assert.True(t, sprout.HasCode(err, sprout.ErrBadSignature))
	assert.False(t, sprout.HasCode(err, sprout.ErrUnauthorized))
}

func TestProveShieldingPropagatesProverErrors(t *testing.T) {
	w := newWallet(t, 1_0000_0000)
	tx, err := ProposeShielding(&ShieldingProposal{
		TransparentInputs: []TransparentInput{w.input},
		ShieldedOutputs:   []ShieldedOutput{{Address: w.zaddr, Value: 1}},
	}, keys.TestNet)
	require.NoError(t, err)

	boom := errors.New("prover offline")
	err = ProveShielding(context.Background(), tx, prover.ProviderFunc(
		func(context.Context, []*joinsplit.ProofWitness) ([]*joinsplit.Proof, error) {
			return nil, boom
		}))
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, tx.JoinSplits)
}

func TestScanTransactionErrors(t *testing.T) {
	w := newWallet(t, 1)
	_, err := ScanTransaction([]byte{0x02}, w.sk.Encode(keys.TestNet), keys.TestNet)
	assert.ErrorContains(t, err, "invalid transaction")
	_, err = ScanTransaction(nil, "not-a-key", keys.TestNet)
	assert.ErrorContains(t, err, "invalid spending key")
}

func TestParsePaymentRequest(t *testing.T) {
	w := newWallet(t, 1)
	req, err := ParsePaymentRequest("zcash:" + w.zaddr + "?amount=0.25")
	require.NoError(t, err)
	require.Len(t, req.Payments, 1)
	assert.Equal(t, uint64(2500_0000), *req.Payments[0].Amount)
}

// Package api provides the high-level public API for Sprout shielding.
//
// It is the main entry point for applications using the zcash-sprout
// library. A shielding transaction moves value from transparent P2PKH
// coins into JoinSplit outputs:
//
//  1. ProposeShielding - Creates a transaction with inputs and outputs queued
//  2. ProveShielding - Builds JoinSplit descriptions and fetches their proofs
//  3. GetSighash - Computes the signature hash of a transparent input
//  4. SignShielding - Signs transparent inputs and the JoinSplits
//  5. FinalizeAndExtract - Checks signatures and serializes the transaction
//  6. ScanTransaction - Recovers notes sent to a spending key
//  7. ParseTransaction / ParsePaymentRequest - Decoding helpers
package api

import (
	"context"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/suffix-labs/zcash-sprout/pkg/crypto"
	"github.com/suffix-labs/zcash-sprout/pkg/keys"
	"github.com/suffix-labs/zcash-sprout/pkg/merkle"
	"github.com/suffix-labs/zcash-sprout/pkg/prover"
	"github.com/suffix-labs/zcash-sprout/pkg/sprout"
	"github.com/suffix-labs/zcash-sprout/pkg/transaction"
	"github.com/suffix-labs/zcash-sprout/pkg/zip321"
)

// TransparentInput represents a transparent P2PKH coin to spend.
type TransparentInput struct {
	TxID         string  `json:"txid"` // Display (byte-reversed) hex
	OutputIndex  uint32  `json:"vout"`
	Value        uint64  `json:"value"`         // Zatoshi
	ScriptPubKey []byte  `json:"script_pubkey"` // Locking script of the coin
	WIF          string  `json:"wif"`           // Key that owns the coin
	Sequence     *uint32 `json:"sequence,omitempty"`
}

// ShieldedOutput is a payment to a Sprout payment address.
type ShieldedOutput struct {
	Address string `json:"address"`
	Value   uint64 `json:"value"`
	Memo    []byte `json:"memo,omitempty"` // At most 512 bytes
}

// TransparentOutput is a payment to a t-address, usually change.
type TransparentOutput struct {
	Address string `json:"address"`
	Value   uint64 `json:"value"`
}

// ShieldingProposal contains everything needed to build a shielding
// transaction. The difference between the input and output totals is the
// fee.
type ShieldingProposal struct {
	TransparentInputs  []TransparentInput  `json:"inputs"`
	TransparentOutputs []TransparentOutput `json:"outputs,omitempty"`
	ShieldedOutputs    []ShieldedOutput    `json:"shielded_outputs,omitempty"`

	// PaymentRequest is an optional ZIP 321 URI whose payments are added
	// after the explicit outputs.
	PaymentRequest string `json:"payment_request,omitempty"`

	// Anchor defaults to the root of the empty note commitment tree, which
	// is always a valid anchor for JoinSplits without real inputs.
	Anchor *sprout.Uint256 `json:"anchor,omitempty"`

	Version  uint32 `json:"version"` // 0 selects transaction.JoinSplitVersion
	LockTime uint32 `json:"lock_time"`
}

// ============================================================================
// API Function 1: ProposeShielding
// ============================================================================

// ProposeShielding creates a transaction from a proposal.
//
// Transparent inputs and outputs are added directly; shielded outputs are
// queued for ProveShielding. The proposal must not spend more than its
// inputs provide.
func ProposeShielding(proposal *ShieldingProposal, net *keys.Network, opts ...transaction.Option) (*transaction.Transaction, error) {
	if len(proposal.TransparentInputs) == 0 {
		return nil, fmt.Errorf("no transparent inputs")
	}

	version := proposal.Version
	if version == 0 {
		version = transaction.JoinSplitVersion
	}
	tx := transaction.New(version, opts...)
	tx.LockTime = proposal.LockTime

	var inTotal uint64
	for i, in := range proposal.TransparentInputs {
		hash, err := chainhash.NewHashFromStr(in.TxID)
		if err != nil {
			return nil, fmt.Errorf("input %d: invalid txid: %w", i, err)
		}
		if len(in.ScriptPubKey) == 0 {
			return nil, fmt.Errorf("input %d missing scriptPubKey", i)
		}
		seq := uint32(transaction.DefaultSequence)
		if in.Sequence != nil {
			seq = *in.Sequence
		}
		tx.AddInput(*hash, in.OutputIndex, seq, nil)
		if inTotal, err = sprout.AddValues("input total", inTotal, in.Value); err != nil {
			return nil, err
		}
	}

	for i, out := range proposal.TransparentOutputs {
		script, err := keys.OutputScript(out.Address, net)
		if err != nil {
			return nil, fmt.Errorf("output %d: %w", i, err)
		}
		if _, err := tx.AddOutput(script, out.Value); err != nil {
			return nil, fmt.Errorf("output %d: %w", i, err)
		}
	}

	var values []uint64
	for i, out := range proposal.ShieldedOutputs {
		addr, err := keys.DecodePaymentAddress(out.Address, net)
		if err != nil {
			return nil, fmt.Errorf("shielded output %d: %w", i, err)
		}
		if _, err := tx.AddShieldedOutput(addr, out.Value, out.Memo); err != nil {
			return nil, fmt.Errorf("shielded output %d: %w", i, err)
		}
		values = append(values, out.Value)
	}

	if proposal.PaymentRequest != "" {
		req, err := zip321.Parse(proposal.PaymentRequest)
		if err != nil {
			return nil, fmt.Errorf("invalid payment request: %w", err)
		}
		if err := req.AddTo(tx, net); err != nil {
			return nil, err
		}
		for _, p := range req.Payments {
			if _, err := keys.DecodePaymentAddress(p.Address, net); err == nil {
				values = append(values, *p.Amount)
			}
		}
	}

	for _, out := range tx.Outs {
		values = append(values, out.Value)
	}
	var outTotal uint64
	for _, v := range values {
		var err error
		if outTotal, err = sprout.AddValues("output total", outTotal, v); err != nil {
			return nil, err
		}
	}
	if outTotal > inTotal {
		return nil, &sprout.ValidationError{
			Code:    sprout.ErrBalance,
			Message: fmt.Sprintf("outputs spend %d zatoshi but inputs provide %d", outTotal, inTotal),
		}
	}

	anchor := merkle.NewTree().Root()
	if proposal.Anchor != nil {
		anchor = *proposal.Anchor
	}
	tx.SetAnchor(anchor)

	return tx, nil
}

// ============================================================================
// API Function 2: ProveShielding
// ============================================================================

// ProveShielding builds the JoinSplit descriptions of tx and attaches the
// proofs returned by p. It blocks until the prover answers or ctx ends.
func ProveShielding(ctx context.Context, tx *transaction.Transaction, p prover.Provider) error {
	if err := tx.GetProofs(ctx, p); err != nil {
		return fmt.Errorf("proving failed: %w", err)
	}
	return nil
}

// ============================================================================
// API Function 3: GetSighash
// ============================================================================

// GetSighash computes the SIGHASH_ALL signature hash of a transparent
// input. Hardware signers use it to sign outside this library.
func GetSighash(tx *transaction.Transaction, inputIndex int, scriptPubKey []byte) (chainhash.Hash, error) {
	if inputIndex < 0 || inputIndex >= len(tx.Ins) {
		return chainhash.Hash{}, fmt.Errorf("input index %d out of bounds", inputIndex)
	}
	return tx.HashForSignature(uint32(inputIndex), scriptPubKey, transaction.SigHashAll)
}

// ============================================================================
// API Function 4: SignShielding
// ============================================================================

// SignShielding signs every transparent input with its WIF key and then
// signs the JoinSplits with the one-time key generated by ProveShielding.
func SignShielding(tx *transaction.Transaction, inputs []TransparentInput) error {
	if len(inputs) != len(tx.Ins) {
		return fmt.Errorf("have %d keys for %d inputs", len(inputs), len(tx.Ins))
	}
	for i, in := range inputs {
		key, _, err := crypto.ParsePrivateKeyWIF(in.WIF)
		if err != nil {
			return fmt.Errorf("input %d: %w", i, err)
		}
		if err := tx.SignInput(i, key, in.ScriptPubKey, transaction.SigHashAll); err != nil {
			return fmt.Errorf("input %d: %w", i, err)
		}
	}
	if err := tx.SignJoinSplits(); err != nil {
		return fmt.Errorf("failed to sign joinsplits: %w", err)
	}
	return nil
}

// ============================================================================
// API Function 5: FinalizeAndExtract
// ============================================================================

// FinalizeAndExtract checks that the transaction is complete and returns
// its raw bytes, ready for broadcast.
func FinalizeAndExtract(tx *transaction.Transaction) ([]byte, error) {
	for i, in := range tx.Ins {
		if len(in.Script) == 0 {
			return nil, fmt.Errorf("input %d is not signed", i)
		}
	}
	if n, _ := tx.PendingShielded(); n > 0 {
		return nil, fmt.Errorf("%d shielded inputs were never proven", n)
	}
	if _, n := tx.PendingShielded(); n > 0 {
		return nil, fmt.Errorf("%d shielded outputs were never proven", n)
	}
	ok, err := tx.VerifyJoinSplitSig()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &sprout.CryptoError{
			Code:    sprout.ErrBadSignature,
			Message: "invalid joinSplitSig",
		}
	}
	return tx.Bytes()
}

// Shield runs the whole flow: propose, prove, sign and extract.
func Shield(ctx context.Context, proposal *ShieldingProposal, net *keys.Network, p prover.Provider, opts ...transaction.Option) ([]byte, error) {
	tx, err := ProposeShielding(proposal, net, opts...)
	if err != nil {
		return nil, err
	}
	if err := ProveShielding(ctx, tx, p); err != nil {
		return nil, err
	}
	if err := SignShielding(tx, proposal.TransparentInputs); err != nil {
		return nil, err
	}
	return FinalizeAndExtract(tx)
}

// ============================================================================
// API Function 6: ScanTransaction
// ============================================================================

// ScanTransaction decodes a raw transaction and returns the notes it pays
// to the encoded spending key.
func ScanTransaction(txBytes []byte, spendingKey string, net *keys.Network) ([]transaction.ReceivedNote, error) {
	key, err := keys.DecodeSpendingKey(spendingKey, net)
	if err != nil {
		return nil, fmt.Errorf("invalid spending key: %w", err)
	}
	tx, err := transaction.FromBytes(txBytes)
	if err != nil {
		return nil, fmt.Errorf("invalid transaction: %w", err)
	}
	return tx.Scan(key)
}

// ============================================================================
// API Functions 7a & 7b: ParseTransaction / ParsePaymentRequest
// ============================================================================

// ParseTransaction deserializes a raw transaction.
func ParseTransaction(txBytes []byte) (*transaction.Transaction, error) {
	return transaction.FromBytes(txBytes)
}

// ParsePaymentRequest parses a ZIP 321 payment request URI.
func ParsePaymentRequest(uri string) (*zip321.PaymentRequest, error) {
	return zip321.Parse(uri)
}

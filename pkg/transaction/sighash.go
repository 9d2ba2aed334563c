package transaction

import (
	"math"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"

	"github.com/suffix-labs/zcash-sprout/pkg/sprout"
)

// Signature hash types.
const (
	SigHashAll          = 0x01
	SigHashNone         = 0x02
	SigHashSingle       = 0x03
	SigHashAnyoneCanPay = 0x80

	sigHashMask = 0x1f
)

// NotAnInput selects the JoinSplit signature hash: no input receives the
// script code.
const NotAnInput = math.MaxUint32

// sigHashOne is uint256(1), returned for out-of-range input or SINGLE
// output indices.
var sigHashOne = chainhash.Hash{0x01}

// removeCodeSeparators drops every OP_CODESEPARATOR from script.
func removeCodeSeparators(script []byte) ([]byte, error) {
	out := make([]byte, 0, len(script))
	tok := txscript.MakeScriptTokenizer(0, script)
	prev := int32(0)
	for tok.Next() {
		end := tok.ByteIndex()
		if tok.Opcode() != txscript.OP_CODESEPARATOR {
			out = append(out, script[prev:end]...)
		}
		prev = end
	}
	if err := tok.Err(); err != nil {
		return nil, &sprout.ValidationError{
			Code:    sprout.ErrInvalidEncoding,
			Message: "malformed previous output script",
			Cause:   err,
		}
	}
	return out, nil
}

// HashForSignature is the legacy (pre-Overwinter) signature hash of input
// inIndex spending prevOutScript. With inIndex NotAnInput it is the hash the
// JoinSplit signature commits to. The JoinSplit signature itself is always
// zeroed.
func (t *Transaction) HashForSignature(inIndex uint32, prevOutScript []byte, hashType uint32) (chainhash.Hash, error) {
	if inIndex != NotAnInput && int(inIndex) >= len(t.Ins) {
		return sigHashOne, nil
	}

	tmp := t.Clone()
	for _, in := range tmp.Ins {
		in.Script = nil
	}
	if inIndex != NotAnInput {
		script, err := removeCodeSeparators(prevOutScript)
		if err != nil {
			return chainhash.Hash{}, err
		}
		tmp.Ins[inIndex].Script = script
	}

	switch hashType & sigHashMask {
	case SigHashNone:
		tmp.Outs = nil
		tmp.zeroOtherSequences(inIndex)
	case SigHashSingle:
		n := int(inIndex)
		if inIndex == NotAnInput || n >= len(t.Outs) {
			return sigHashOne, nil
		}
		tmp.Outs = tmp.Outs[:n+1]
		for i := 0; i < n; i++ {
			tmp.Outs[i] = &TxOut{Value: math.MaxUint64}
		}
		tmp.zeroOtherSequences(inIndex)
	}

	if hashType&SigHashAnyoneCanPay != 0 && inIndex != NotAnInput {
		tmp.Ins = tmp.Ins[inIndex : inIndex+1]
	}

	tmp.JoinSplitSig = [sprout.JoinSplitSignatureSize]byte{}

	w := sprout.NewWriter(tmp.ByteLength() + 4)
	if err := tmp.Write(w); err != nil {
		return chainhash.Hash{}, err
	}
	w.WriteUint32(hashType)
	return chainhash.DoubleHashH(w.Bytes()), nil
}

func (t *Transaction) zeroOtherSequences(inIndex uint32) {
	for i, in := range t.Ins {
		if uint32(i) != inIndex {
			in.Sequence = 0
		}
	}
}

package keys

import (
	"github.com/btcsuite/btcd/txscript"
	"github.com/suffix-labs/zcash-sprout/pkg/sprout"
)

// EncodeTransparent returns the t-address for a 20-byte hash.
func EncodeTransparent(hash160 []byte, version uint16) string {
	return encodeCheck(version, hash160)
}

// PayToPubKeyHash is OP_DUP OP_HASH160 <hash160> OP_EQUALVERIFY OP_CHECKSIG.
func PayToPubKeyHash(hash160 []byte) ([]byte, error) {
	return txscript.NewScriptBuilder().
		AddOp(txscript.OP_DUP).
		AddOp(txscript.OP_HASH160).
		AddData(hash160).
		AddOp(txscript.OP_EQUALVERIFY).
		AddOp(txscript.OP_CHECKSIG).
		Script()
}

// OutputScript converts a t-address into its P2PKH or P2SH scriptPubKey.
func OutputScript(address string, net *Network) ([]byte, error) {
	version, hash, err := decodeCheck(address, 20)
	if err != nil {
		return nil, err
	}

	switch version {
	case net.PubKeyHash:
		return PayToPubKeyHash(hash)
	case net.ScriptHash:
		return txscript.NewScriptBuilder().
			AddOp(txscript.OP_HASH160).
			AddData(hash).
			AddOp(txscript.OP_EQUAL).
			Script()
	default:
		return nil, &sprout.ValidationError{
			Code:    sprout.ErrInvalidAddress,
			Message: address + " has no matching Script",
		}
	}
}

// AddressFromScript is the inverse of OutputScript.
func AddressFromScript(script []byte, net *Network) (string, error) {
	switch txscript.GetScriptClass(script) {
	case txscript.PubKeyHashTy:
		return EncodeTransparent(script[3:23], net.PubKeyHash), nil
	case txscript.ScriptHashTy:
		return EncodeTransparent(script[2:22], net.ScriptHash), nil
	default:
		return "", &sprout.ValidationError{
			Code:    sprout.ErrInvalidAddress,
			Message: "script has no matching Address",
		}
	}
}

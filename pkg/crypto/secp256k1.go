// secp256k1 keys for the transparent inputs of a Sprout transaction.
//
// Transparent inputs use Bitcoin-style ECDSA over secp256k1. Signatures in
// scriptSig are DER-encoded with the sighash type byte appended.
//
// Key formats:
//   - Private keys: WIF (version byte 0x80 main / 0xef test, optional 0x01 compression flag)
//   - Public keys: compressed 33-byte form
package crypto

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcutil/base58"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/suffix-labs/zcash-sprout/pkg/sprout"
)

// WIF version bytes.
const (
	WIFMainNet = byte(0x80)
	WIFTestNet = byte(0xef)
)

// PrivateKey wraps a secp256k1 private key.
type PrivateKey struct {
	key *secp256k1.PrivateKey
}

// PublicKey wraps a secp256k1 public key.
type PublicKey struct {
	key *secp256k1.PublicKey
}

// GeneratePrivateKey creates a new random transparent key.
func GeneratePrivateKey() (*PrivateKey, error) {
	key, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, err
	}
	return &PrivateKey{key: key}, nil
}

// PrivateKeyFromBytes creates a private key from 32 raw bytes.
func PrivateKeyFromBytes(keyBytes []byte) (*PrivateKey, error) {
	if len(keyBytes) != 32 {
		return nil, fmt.Errorf("private key must be 32 bytes, got %d", len(keyBytes))
	}
	return &PrivateKey{key: secp256k1.PrivKeyFromBytes(keyBytes)}, nil
}

// ParsePrivateKeyWIF decodes a WIF private key and reports its version byte.
func ParsePrivateKeyWIF(wif string) (*PrivateKey, byte, error) {
	payload, version, err := base58.CheckDecode(wif)
	if err != nil {
		return nil, 0, &sprout.ValidationError{
			Code:    sprout.ErrInvalidEncoding,
			Message: "invalid WIF",
			Cause:   err,
		}
	}
	if version != WIFMainNet && version != WIFTestNet {
		return nil, 0, &sprout.ValidationError{
			Code:    sprout.ErrInvalidEncoding,
			Message: fmt.Sprintf("invalid WIF version byte: 0x%02x", version),
		}
	}
	switch {
	case len(payload) == 33 && payload[32] == 0x01:
	case len(payload) == 32:
	default:
		return nil, 0, &sprout.ValidationError{
			Code:    sprout.ErrInvalidLength,
			Message: "invalid WIF length",
		}
	}
	key, err := PrivateKeyFromBytes(payload[:32])
	return key, version, err
}

// WIF encodes the key in compressed WIF form.
func (pk *PrivateKey) WIF(version byte) string {
	payload := append(pk.key.Serialize(), 0x01)
	return base58.CheckEncode(payload, version)
}

// Sign returns the DER signature of hash.
func (pk *PrivateKey) Sign(hash [32]byte) []byte {
	return ecdsa.Sign(pk.key, hash[:]).Serialize()
}

// PublicKey derives the public key.
func (pk *PrivateKey) PublicKey() *PublicKey {
	return &PublicKey{key: pk.key.PubKey()}
}

// Bytes returns the raw 32-byte private key.
func (pk *PrivateKey) Bytes() []byte {
	return pk.key.Serialize()
}

// Bytes returns the compressed public key.
func (pub *PublicKey) Bytes() []byte {
	return pub.key.SerializeCompressed()
}

// Hash160 is RIPEMD160(SHA256(compressed key)), the P2PKH key hash.
func (pub *PublicKey) Hash160() []byte {
	return btcutil.Hash160(pub.key.SerializeCompressed())
}

// ParsePublicKey parses a compressed or uncompressed public key.
func ParsePublicKey(pubKeyBytes []byte) (*PublicKey, error) {
	pubKey, err := secp256k1.ParsePubKey(pubKeyBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key: %w", err)
	}
	return &PublicKey{key: pubKey}, nil
}

// VerifySignature checks a DER signature over hash.
func VerifySignature(pubkey *PublicKey, hash [32]byte, signature []byte) bool {
	sig, err := ecdsa.ParseDERSignature(signature)
	if err != nil {
		return false
	}
	return sig.Verify(hash[:], pubkey.key)
}

package crypto

import (
	"io"

	"github.com/suffix-labs/zcash-sprout/pkg/sprout"
	"golang.org/x/crypto/chacha20poly1305"
)

// NoteEncryption encrypts the output notes of one JoinSplit to their
// recipients. All ciphertexts share one ephemeral key pair; the KDF nonce
// separates them.
//
// A NoteEncryption is owned by a single goroutine.
type NoteEncryption struct {
	hSig  sprout.Uint256
	nonce uint8
	esk   sprout.Uint256
	epk   sprout.Uint256
}

// NewNoteEncryption draws a fresh ephemeral key from rng (crypto/rand when nil).
func NewNoteEncryption(hSig sprout.Uint256, rng io.Reader) (*NoteEncryption, error) {
	esk, err := sprout.RandomUint256(rng)
	if err != nil {
		return nil, err
	}
	epk, err := GeneratePubKey(esk)
	if err != nil {
		return nil, err
	}
	return &NoteEncryption{hSig: hSig, esk: esk, epk: epk}, nil
}

// EPK is the ephemeral public key published in the JoinSplit description.
func (e *NoteEncryption) EPK() sprout.Uint256 { return e.epk }

// HSig is the value the context was created for.
func (e *NoteEncryption) HSig() sprout.Uint256 { return e.hSig }

// Nonce is the KDF nonce the next Encrypt call will use.
func (e *NoteEncryption) Nonce() uint8 { return e.nonce }

// Encrypt seals plaintext to pkEnc and advances the nonce. After 255
// successful calls the context is exhausted.
func (e *NoteEncryption) Encrypt(pkEnc sprout.Uint256, plaintext []byte) ([]byte, error) {
	dhsecret, err := scalarMult(e.esk, pkEnc)
	if err != nil {
		return nil, err
	}

	key, err := KDF(dhsecret, e.epk, pkEnc, e.hSig, e.nonce)
	if err != nil {
		return nil, err
	}
	e.nonce++

	aead, err := chacha20poly1305.New(key[:])
	if err != nil {
		return nil, err
	}

	// Every key is used once, so the cipher nonce is fixed at zero.
	var cipherNonce [chacha20poly1305.NonceSize]byte
	return aead.Seal(nil, cipherNonce[:], plaintext, nil), nil
}

// NoteDecryption opens ciphertexts addressed to one transmission key.
type NoteDecryption struct {
	skEnc sprout.Uint256
	pkEnc sprout.Uint256
}

func NewNoteDecryption(skEnc sprout.Uint256) (*NoteDecryption, error) {
	pkEnc, err := GeneratePubKey(skEnc)
	if err != nil {
		return nil, err
	}
	return &NoteDecryption{skEnc: skEnc, pkEnc: pkEnc}, nil
}

// PkEnc is the transmission public key matching the decryption key.
func (d *NoteDecryption) PkEnc() sprout.Uint256 { return d.pkEnc }

// Decrypt opens ciphertext produced by the nonce'th Encrypt of a context
// with the given epk and hSig. Every failure is a CryptoError.
func (d *NoteDecryption) Decrypt(ciphertext []byte, epk, hSig sprout.Uint256, nonce uint8) ([]byte, error) {
	dhsecret, err := scalarMult(d.skEnc, epk)
	if err != nil {
		return nil, err
	}

	key, err := KDF(dhsecret, epk, d.pkEnc, hSig, nonce)
	if err != nil {
		return nil, &sprout.CryptoError{
			Code:    sprout.ErrDecryption,
			Message: "could not derive note key",
			Cause:   err,
		}
	}

	aead, err := chacha20poly1305.New(key[:])
	if err != nil {
		return nil, &sprout.CryptoError{Code: sprout.ErrDecryption, Message: "cipher setup failed", Cause: err}
	}

	var cipherNonce [chacha20poly1305.NonceSize]byte
	plaintext, err := aead.Open(nil, cipherNonce[:], ciphertext, nil)
	if err != nil {
		return nil, &sprout.CryptoError{
			Code:    sprout.ErrDecryption,
			Message: "could not decrypt message",
			Cause:   err,
		}
	}
	return plaintext, nil
}

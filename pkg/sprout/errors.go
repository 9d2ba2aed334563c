// Package sprout error types.
//
// Failures fall into four families. Each carries a Code so callers and tests
// can tell which check failed without matching on message text.
package sprout

import (
	"errors"
	"fmt"
)

// ValidationError is returned for caller misuse: wrong arity, malformed
// field lengths, out-of-range PRF indices, short or trailing buffers.
type ValidationError struct {
	Code    string // Error code (e.g., ErrTrailingData)
	Message string // Human-readable error message
	Cause   error  // Underlying error (if any)
}

func (e *ValidationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("validation error [%s]: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("validation error [%s]: %s", e.Code, e.Message)
}

func (e *ValidationError) Unwrap() error { return e.Cause }

// IntegrityError aborts JoinSplit construction: anchor mismatch, wrong
// witnessed element, unauthorized key, unbalanced values.
type IntegrityError struct {
	Code       string // Error code (e.g., ErrBalance)
	Message    string // Human-readable error message
	InputIndex int    // Offending input, -1 when not tied to one
}

func (e *IntegrityError) Error() string {
	if e.InputIndex >= 0 {
		return fmt.Sprintf("integrity error [%s] at input %d: %s", e.Code, e.InputIndex, e.Message)
	}
	return fmt.Sprintf("integrity error [%s]: %s", e.Code, e.Message)
}

// CryptoError is returned when authenticated decryption or a key agreement
// fails. No partial plaintext accompanies it.
type CryptoError struct {
	Code    string
	Message string
	Cause   error
}

func (e *CryptoError) Error() string {
	return fmt.Sprintf("crypto error [%s]: %s", e.Code, e.Message)
}

func (e *CryptoError) Unwrap() error { return e.Cause }

// ExhaustedError is terminal for the operation in progress: the encryption
// context ran out of nonces or the tree is full.
type ExhaustedError struct {
	Code    string
	Message string
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("resource exhausted [%s]: %s", e.Code, e.Message)
}

// Error codes.
const (
	ErrInvalidLength    = "INVALID_LENGTH"     // Fixed-width field has the wrong size
	ErrInvalidArity     = "INVALID_ARITY"      // Wrong number of JoinSplit inputs or outputs
	ErrIndexOutOfRange  = "INDEX_OUT_OF_RANGE" // PRF index outside {0,1}
	ErrValueOutOfRange  = "VALUE_OUT_OF_RANGE" // Amount above 2^53-1
	ErrShortBuffer      = "SHORT_BUFFER"       // Decoder ran out of input
	ErrTrailingData     = "TRAILING_DATA"      // Strict decoder found leftover bytes
	ErrInvalidEncoding  = "INVALID_ENCODING"   // Bad optional tag, point prefix, version byte
	ErrMissingProof     = "MISSING_PROOF"      // Description has no proof attached yet
	ErrMissingAnchor    = "MISSING_ANCHOR"     // Proofs requested before SetAnchor
	ErrMissingKey       = "MISSING_KEY"        // JoinSplit signing key not available
	ErrInvalidAddress   = "INVALID_ADDRESS"    // Base58Check payload or version mismatch
	ErrAnchorMismatch   = "ANCHOR_MISMATCH"    // Witness root differs from rt
	ErrWrongElement     = "WRONG_ELEMENT"      // Witness tracks another commitment
	ErrUnauthorized     = "UNAUTHORIZED"       // Spending key does not own the note
	ErrBalance          = "BALANCE"            // lhs_value != rhs_value
	ErrBadSignature     = "BAD_SIGNATURE"      // joinSplitSig does not verify
	ErrDecryption       = "DECRYPTION_FAILED"  // AEAD authentication failure
	ErrKeyAgreement     = "KEY_AGREEMENT"      // X25519 produced a low-order result
	ErrNonceExhausted   = "NONCE_EXHAUSTED"    // 255 encryptions already performed
	ErrTreeFull         = "TREE_FULL"          // Accumulator complete at its depth
	ErrEmptyTree        = "EMPTY_TREE"         // No leaf to witness or path to build
	ErrProverResponse   = "PROVER_RESPONSE"    // Proving service returned mismatched data
	ErrUnsupportedTxVer = "UNSUPPORTED_TX_VERSION"
)

// HasCode reports whether any error in err's chain carries code.
func HasCode(err error, code string) bool {
	var v *ValidationError
	if errors.As(err, &v) && v.Code == code {
		return true
	}
	var i *IntegrityError
	if errors.As(err, &i) && i.Code == code {
		return true
	}
	var c *CryptoError
	if errors.As(err, &c) && c.Code == code {
		return true
	}
	var x *ExhaustedError
	if errors.As(err, &x) && x.Code == code {
		return true
	}
	return false
}

// UnexpectedData is the strict-decoding failure for typeName.
func UnexpectedData(typeName string) error {
	return &ValidationError{
		Code:    ErrTrailingData,
		Message: typeName + " has unexpected data",
	}
}

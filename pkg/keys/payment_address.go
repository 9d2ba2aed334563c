package keys

import (
	"fmt"

	"github.com/suffix-labs/zcash-sprout/pkg/sprout"
)

// PaymentAddressSize is the encoded size of a payment address.
const PaymentAddressSize = 64

// PaymentAddress is a Sprout shielded address: the paying key a_pk and the
// Curve25519 transmission key pk_enc.
type PaymentAddress struct {
	APk   sprout.Uint256 `json:"a_pk"`
	PkEnc sprout.Uint256 `json:"pk_enc"`
}

func (a PaymentAddress) ByteLength() int { return PaymentAddressSize }

func (a PaymentAddress) Write(w *sprout.Writer) {
	w.WriteUint256(a.APk)
	w.WriteUint256(a.PkEnc)
}

func (a PaymentAddress) Bytes() []byte {
	w := sprout.NewWriter(PaymentAddressSize)
	a.Write(w)
	return w.Bytes()
}

// ReadPaymentAddress decodes a nested payment address.
func ReadPaymentAddress(r *sprout.Reader) (PaymentAddress, error) {
	var a PaymentAddress
	var err error
	if a.APk, err = r.ReadUint256(); err != nil {
		return a, fmt.Errorf("payment address a_pk: %w", err)
	}
	if a.PkEnc, err = r.ReadUint256(); err != nil {
		return a, fmt.Errorf("payment address pk_enc: %w", err)
	}
	return a, nil
}

// PaymentAddressFromBytes strictly decodes 64 bytes.
func PaymentAddressFromBytes(b []byte) (PaymentAddress, error) {
	r := sprout.NewReader(b)
	a, err := ReadPaymentAddress(r)
	if err != nil {
		return a, err
	}
	if err := r.Finish("PaymentAddress"); err != nil {
		return PaymentAddress{}, err
	}
	return a, nil
}

// Encode returns the Base58Check string (zc... on main, zt... on test).
func (a PaymentAddress) Encode(net *Network) string {
	return encodeCheck(net.ZcPaymentAddress, a.Bytes())
}

// DecodePaymentAddress parses a Base58Check payment address for net.
func DecodePaymentAddress(s string, net *Network) (PaymentAddress, error) {
	version, payload, err := decodeCheck(s, PaymentAddressSize)
	if err != nil {
		return PaymentAddress{}, err
	}
	if version != net.ZcPaymentAddress {
		return PaymentAddress{}, &sprout.ValidationError{
			Code:    sprout.ErrInvalidAddress,
			Message: s + " has no matching PaymentAddress",
		}
	}
	return PaymentAddressFromBytes(payload)
}

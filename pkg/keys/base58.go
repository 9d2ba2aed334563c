package keys

import (
	"encoding/binary"

	"github.com/btcsuite/btcutil/base58"
	"github.com/suffix-labs/zcash-sprout/pkg/sprout"
)

// encodeCheck produces Base58Check(version(2, big-endian) || payload).
// base58.CheckEncode takes a single version byte, so the second one rides
// at the front of the payload.
func encodeCheck(version uint16, payload []byte) string {
	var v [2]byte
	binary.BigEndian.PutUint16(v[:], version)
	return base58.CheckEncode(append([]byte{v[1]}, payload...), v[0])
}

// decodeCheck returns the 2-byte version and the payload, which must be
// exactly payloadLen bytes.
func decodeCheck(s string, payloadLen int) (uint16, []byte, error) {
	data, v0, err := base58.CheckDecode(s)
	if err != nil {
		return 0, nil, &sprout.ValidationError{
			Code:    sprout.ErrInvalidAddress,
			Message: s + " is not valid Base58Check",
			Cause:   err,
		}
	}

	// data excludes the first version byte.
	switch {
	case len(data) < payloadLen+1:
		return 0, nil, &sprout.ValidationError{Code: sprout.ErrInvalidAddress, Message: s + " is too short"}
	case len(data) > payloadLen+1:
		return 0, nil, &sprout.ValidationError{Code: sprout.ErrInvalidAddress, Message: s + " is too long"}
	}

	version := uint16(v0)<<8 | uint16(data[0])
	return version, data[1:], nil
}

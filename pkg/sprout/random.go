package sprout

import (
	"crypto/rand"
	"fmt"
	"io"
)

// RandomUint256 draws 32 bytes from rng, or crypto/rand when rng is nil.
func RandomUint256(rng io.Reader) (Uint256, error) {
	if rng == nil {
		rng = rand.Reader
	}
	var u Uint256
	if _, err := io.ReadFull(rng, u[:]); err != nil {
		return u, fmt.Errorf("read randomness: %w", err)
	}
	return u, nil
}

// RandomUint252 draws 32 bytes and clears the top nibble.
func RandomUint252(rng io.Reader) (Uint252, error) {
	u, err := RandomUint256(rng)
	if err != nil {
		return Uint252{}, err
	}
	return MaskUint252(u), nil
}

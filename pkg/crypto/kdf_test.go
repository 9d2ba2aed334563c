package crypto

import (
	"testing"

	blake2b "github.com/minio/blake2b-simd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suffix-labs/zcash-sprout/pkg/sprout"
)

func TestKDFLayout(t *testing.T) {
	dh := sprout.MustUint256FromString("0101010101010101010101010101010101010101010101010101010101010101")
	epk := sprout.MustUint256FromString("0202020202020202020202020202020202020202020202020202020202020202")
	pk := sprout.MustUint256FromString("0303030303030303030303030303030303030303030303030303030303030303")
	hSig := sprout.MustUint256FromString("0404040404040404040404040404040404040404040404040404040404040404")

	got, err := KDF(dh, epk, pk, hSig, 7)
	require.NoError(t, err)

	person := []byte("ZcashKDF\x07\x00\x00\x00\x00\x00\x00\x00")
	h, err := blake2b.New(&blake2b.Config{Size: 32, Person: person})
	require.NoError(t, err)
	h.Write(hSig[:])
	h.Write(dh[:])
	h.Write(epk[:])
	h.Write(pk[:])
	assert.Equal(t, h.Sum(nil), got[:])

	other, err := KDF(dh, epk, pk, hSig, 8)
	require.NoError(t, err)
	assert.NotEqual(t, got, other)

	plain := blake2b.Sum256(append(append(append(hSig[:], dh[:]...), epk[:]...), pk[:]...))
	assert.NotEqual(t, plain[:], got[:])
}

func TestKDFNonceExhausted(t *testing.T) {
	_, err := KDF(sprout.Uint256{}, sprout.Uint256{}, sprout.Uint256{}, sprout.Uint256{}, 0xff)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no additional nonce space for KDF")
	assert.True(t, sprout.HasCode(err, sprout.ErrNonceExhausted))

	_, err = KDF(sprout.Uint256{}, sprout.Uint256{}, sprout.Uint256{}, sprout.Uint256{}, 0xfe)
	require.NoError(t, err)
}

func TestBlake2b256BadPersonalization(t *testing.T) {
	_, err := Blake2b256(make([]byte, 17), []byte("x"))
	require.Error(t, err)
}

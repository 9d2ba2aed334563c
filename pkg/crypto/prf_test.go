package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suffix-labs/zcash-sprout/pkg/sprout"
)

var (
	testASk = sprout.MustUint252(sprout.MustUint256FromString("0b1c2d3e4f5061728394a5b6c7d8e9fa0b1c2d3e4f5061728394a5b6c7d8e9fa"))
	testY   = sprout.MustUint256FromString("f0e1d2c3b4a5968778695a4b3c2d1e0ff0e1d2c3b4a5968778695a4b3c2d1e0f")
)

// expectedPRF rebuilds the tagged block by hand.
func expectedPRF(tag byte, x sprout.Uint252, y sprout.Uint256) sprout.Uint256 {
	var block [64]byte
	xb := x.Uint256()
	copy(block[:32], xb[:])
	copy(block[32:], y[:])
	block[0] = (block[0] & 0x0f) | tag
	return SHA256Compress(&block)
}

func TestPRFTags(t *testing.T) {
	var zero sprout.Uint256
	var one sprout.Uint256
	one[0] = 1

	assert.Equal(t, expectedPRF(0xc0, testASk, zero), PRFAddrAPk(testASk))
	assert.Equal(t, expectedPRF(0xc0, testASk, one), PRFAddrSkEnc(testASk))
	assert.Equal(t, expectedPRF(0xe0, testASk, testY), PRFNf(testASk, testY))

	pk0, err := PRFPk(testASk, 0, testY)
	require.NoError(t, err)
	assert.Equal(t, expectedPRF(0x00, testASk, testY), pk0)

	pk1, err := PRFPk(testASk, 1, testY)
	require.NoError(t, err)
	assert.Equal(t, expectedPRF(0x40, testASk, testY), pk1)

	rho0, err := PRFRho(testASk, 0, testY)
	require.NoError(t, err)
	assert.Equal(t, expectedPRF(0x20, testASk, testY), rho0)

	rho1, err := PRFRho(testASk, 1, testY)
	require.NoError(t, err)
	assert.Equal(t, expectedPRF(0x60, testASk, testY), rho1)
}

// Computed with an independent SHA256Compress that reproduces the FIPS
// 180-2 "abc" digest.
func TestPRFAddrVectors(t *testing.T) {
	tests := []struct {
		aSk   string
		aPk   string
		skEnc string
	}{
		{
			aSk:   "0000000000000000000000000000000000000000000000000000000000000000",
			aPk:   "d402118d6839437d00dded68d27c39093e825d4dc2757558e490973bbff262df",
			skEnc: "60d3e028d7d02b8e30f9c2894cadf7712d4034b47ee8903b85607c0cc3755690",
		},
		{
			aSk: "0b1c2d3e4f5061728394a5b6c7d8e9fa0b1c2d3e4f5061728394a5b6c7d8e9fa",
			aPk: "edbcf599d9b3524a4a33d82d37b6aebdc86743c3dd5003533037944ba7503455",
		},
	}
	for _, tt := range tests {
		aSk := sprout.MustUint252(sprout.MustUint256FromString(tt.aSk))
		assert.Equal(t, tt.aPk, PRFAddrAPk(aSk).String())
		if tt.skEnc != "" {
			assert.Equal(t, tt.skEnc, PRFAddrSkEnc(aSk).String())
		}
	}
}

func TestPRFDomainSeparation(t *testing.T) {
	outs := map[sprout.Uint256]string{}
	add := func(name string, v sprout.Uint256) {
		if prev, ok := outs[v]; ok {
			t.Fatalf("%s collides with %s", name, prev)
		}
		outs[v] = name
	}

	add("a_pk", PRFAddrAPk(testASk))
	add("sk_enc", PRFAddrSkEnc(testASk))
	add("nf", PRFNf(testASk, testY))
	for i := 0; i < 2; i++ {
		pk, err := PRFPk(testASk, i, testY)
		require.NoError(t, err)
		add("pk", pk)
		rho, err := PRFRho(testASk, i, testY)
		require.NoError(t, err)
		add("rho", rho)
	}
}

func TestPRFDeterministic(t *testing.T) {
	assert.Equal(t, PRFNf(testASk, testY), PRFNf(testASk, testY))
	assert.Equal(t, PRFAddrAPk(testASk), PRFAddrAPk(testASk))
}

func TestPRFIndexOutOfBounds(t *testing.T) {
	for _, i := range []int{-1, 2, 255} {
		_, err := PRFPk(testASk, i, testY)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "PRF_pk invoked with index out of bounds")
		assert.True(t, sprout.HasCode(err, sprout.ErrIndexOutOfRange))

		_, err = PRFRho(testASk, i, testY)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "PRF_rho invoked with index out of bounds")
	}
}

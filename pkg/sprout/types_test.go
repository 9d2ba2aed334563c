package sprout

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUint252(t *testing.T) {
	var u Uint256
	u[0] = 0x0f
	_, err := NewUint252(u)
	require.NoError(t, err)

	u[0] = 0x1f
	_, err = NewUint252(u)
	require.Error(t, err)

	m := MaskUint252(u)
	assert.Equal(t, byte(0x0f), m.Uint256()[0])
}

func TestUint256JSON(t *testing.T) {
	u := MustUint256FromString("ff00000000000000000000000000000000000000000000000000000000000001")
	b, err := json.Marshal(u)
	require.NoError(t, err)
	assert.Equal(t, `"ff00000000000000000000000000000000000000000000000000000000000001"`, string(b))

	var back Uint256
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, u, back)

	_, err = Uint256FromString("abcd")
	assert.True(t, HasCode(err, ErrInvalidLength))
}

func TestValueBounds(t *testing.T) {
	require.NoError(t, CheckValue("v", MaxValue))
	assert.True(t, HasCode(CheckValue("v", MaxValue+1), ErrValueOutOfRange))

	sum, err := AddValues("v", MaxValue-1, 1)
	require.NoError(t, err)
	assert.Equal(t, MaxValue, sum)

	_, err = AddValues("v", MaxValue, 1)
	assert.True(t, HasCode(err, ErrValueOutOfRange))
}

func TestRandomUint252(t *testing.T) {
	rng := bytes.NewReader(bytes.Repeat([]byte{0xff}, 32))
	u, err := RandomUint252(rng)
	require.NoError(t, err)
	assert.Equal(t, byte(0x0f), u.Uint256()[0])
	assert.Equal(t, byte(0xff), u.Uint256()[31])

	_, err = RandomUint256(bytes.NewReader(nil))
	require.Error(t, err)
}

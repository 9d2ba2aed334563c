package sprout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterReaderRoundTrip(t *testing.T) {
	u := MustUint256FromString("0102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f20")
	w := NewWriter(0)
	w.WriteUint8(7)
	w.WriteUint32(0xdeadbeef)
	w.WriteUint64(1 << 40)
	w.WriteUint256(u)
	w.WriteVarInt(0xfd)
	w.WriteVarSlice([]byte("abc"))
	w.WriteOptional(nil)
	w.WriteOptional(&u)

	r := NewReader(w.Bytes())
	b, err := r.ReadUint8()
	require.NoError(t, err)
	assert.Equal(t, uint8(7), b)

	v32, err := r.ReadUint32()
	require.NoError(t, err)
	assert.Equal(t, uint32(0xdeadbeef), v32)

	v64, err := r.ReadUint64()
	require.NoError(t, err)
	assert.Equal(t, uint64(1<<40), v64)

	got, err := r.ReadUint256()
	require.NoError(t, err)
	assert.Equal(t, u, got)

	n, err := r.ReadVarInt()
	require.NoError(t, err)
	assert.Equal(t, uint64(0xfd), n)

	s, err := r.ReadVarSlice()
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), s)

	none, err := r.ReadOptional()
	require.NoError(t, err)
	assert.Nil(t, none)

	some, err := r.ReadOptional()
	require.NoError(t, err)
	require.NotNil(t, some)
	assert.Equal(t, u, *some)

	require.NoError(t, r.Finish("Test"))
}

func TestVarIntSizes(t *testing.T) {
	tests := []struct {
		n    uint64
		size int
	}{
		{0, 1},
		{0xfc, 1},
		{0xfd, 3},
		{0xffff, 3},
		{0x10000, 5},
		{0xffffffff, 5},
		{0x100000000, 9},
	}
	for _, tt := range tests {
		w := NewWriter(0)
		w.WriteVarInt(tt.n)
		assert.Equal(t, tt.size, w.Len(), "n=%d", tt.n)
		assert.Equal(t, tt.size, VarIntSize(tt.n), "n=%d", tt.n)
	}
}

func TestReaderErrors(t *testing.T) {
	t.Run("short uint256", func(t *testing.T) {
		_, err := NewReader(make([]byte, 31)).ReadUint256()
		require.Error(t, err)
		assert.True(t, HasCode(err, ErrShortBuffer))
	})

	t.Run("short uint64", func(t *testing.T) {
		_, err := NewReader(make([]byte, 7)).ReadUint64()
		assert.True(t, HasCode(err, ErrShortBuffer))
	})

	t.Run("bad optional tag", func(t *testing.T) {
		_, err := NewReader([]byte{0x02}).ReadOptional()
		require.Error(t, err)
		assert.True(t, HasCode(err, ErrInvalidEncoding))
		assert.Contains(t, err.Error(), "Invalid optional")
	})

	t.Run("count larger than buffer", func(t *testing.T) {
		_, err := NewReader([]byte{0x05, 0x00}).ReadCount(32)
		assert.True(t, HasCode(err, ErrShortBuffer))
	})

	t.Run("trailing data", func(t *testing.T) {
		r := NewReader([]byte{0x01, 0x02})
		_, err := r.ReadUint8()
		require.NoError(t, err)
		err = r.Finish("Widget")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Widget has unexpected data")
		assert.True(t, HasCode(err, ErrTrailingData))
	})

	t.Run("uint252 top nibble", func(t *testing.T) {
		buf := make([]byte, 32)
		buf[0] = 0x10
		_, err := NewReader(buf).ReadUint252()
		require.Error(t, err)
	})
}

package zip321

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suffix-labs/zcash-sprout/pkg/keys"
	"github.com/suffix-labs/zcash-sprout/pkg/sprout"
	"github.com/suffix-labs/zcash-sprout/pkg/transaction"
)

func zaddr(t *testing.T) string {
	t.Helper()
	k, err := keys.RandomSpendingKey(nil)
	require.NoError(t, err)
	addr, err := k.Address()
	require.NoError(t, err)
	return addr.Encode(keys.TestNet)
}

func taddr() string {
	return keys.EncodeTransparent(make([]byte, 20), keys.TestNet.PubKeyHash)
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    uint64
		wantErr bool
	}{
		{"1", 100000000, false},
		{"1.5", 150000000, false},
		{"0.00000001", 1, false},
		{"0.1", 10000000, false},
		{"21000000", 2100000000000000, false},
		{"90071992.54740991", sprout.MaxValue, false},
		{"90071992.54740992", 0, true},
		{"0.000000001", 0, true},
		{"-1", 0, true},
		{"1e3", 0, true},
		{".5", 0, true},
		{"1.", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAmount(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Equal(t, "1.5", FormatAmount(150000000))
	assert.Equal(t, "0.00000001", FormatAmount(1))
	assert.Equal(t, "3", FormatAmount(300000000))
	assert.Equal(t, "0", FormatAmount(0))
}

func TestParseSingle(t *testing.T) {
	addr := zaddr(t)
	req, err := Parse("zcash:" + addr + "?amount=1.25&memo=dGhhbmtz&message=coffee%20beans")
	require.NoError(t, err)
	require.Len(t, req.Payments, 1)

	p := req.Payments[0]
	assert.Equal(t, addr, p.Address)
	require.NotNil(t, p.Amount)
	assert.Equal(t, uint64(125000000), *p.Amount)
	assert.Equal(t, []byte("thanks"), p.Memo)
	require.NotNil(t, p.Message)
	assert.Equal(t, "coffee beans", *p.Message)
	assert.Nil(t, p.Label)

	_, err = Parse(addr + "?amount=1")
	assert.Error(t, err)
	_, err = Parse("zcash:?amount=1")
	assert.ErrorContains(t, err, "missing address")
	_, err = Parse("zcash:" + addr + "?memo=***")
	assert.ErrorContains(t, err, "invalid memo")
}

func TestParseMultiple(t *testing.T) {
	z := zaddr(t)
	tAddr := taddr()
	uri := "zcash:?address=" + z + "&amount=1&memo=aGk&address.1=" + tAddr + "&amount.1=0.5&label.1=change"

	req, err := Parse(uri)
	require.NoError(t, err)
	require.Len(t, req.Payments, 2)
	assert.Equal(t, z, req.Payments[0].Address)
	assert.Equal(t, []byte("hi"), req.Payments[0].Memo)
	assert.Equal(t, tAddr, req.Payments[1].Address)
	assert.Equal(t, uint64(50000000), *req.Payments[1].Amount)
	assert.Equal(t, "change", *req.Payments[1].Label)

	total, err := req.Total()
	require.NoError(t, err)
	assert.Equal(t, uint64(150000000), total)

	back, err := Parse(req.Encode())
	require.NoError(t, err)
	assert.Equal(t, req, back)

	_, err = Parse("zcash:?address.1=" + z + "&amount.01=1")
	assert.ErrorContains(t, err, "invalid parameter name")
	_, err = Parse("zcash:?amount.1=1")
	assert.ErrorContains(t, err, "payment 1 missing address")
}

func TestAddTo(t *testing.T) {
	z := zaddr(t)
	tAddr := taddr()
	req, err := Parse("zcash:?address=" + z + "&amount=2&memo=aGk&address.1=" + tAddr + "&amount.1=0.5")
	require.NoError(t, err)

	tx := transaction.New(2)
	require.NoError(t, req.AddTo(tx, keys.TestNet))

	_, outs := tx.PendingShielded()
	assert.Equal(t, 1, outs)
	require.Len(t, tx.Outs, 1)
	assert.Equal(t, uint64(50000000), tx.Outs[0].Value)
	got, err := keys.AddressFromScript(tx.Outs[0].Script, keys.TestNet)
	require.NoError(t, err)
	assert.Equal(t, tAddr, got)

	// Memos cannot go to t-addresses.
	bad, err := Parse("zcash:" + tAddr + "?amount=1&memo=aGk")
	require.NoError(t, err)
	assert.ErrorContains(t, bad.AddTo(transaction.New(2), keys.TestNet), "memos cannot be sent")

	// Every payment needs an amount.
	noAmount, err := Parse("zcash:" + z)
	require.NoError(t, err)
	assert.ErrorContains(t, noAmount.AddTo(transaction.New(2), keys.TestNet), "has no amount")
}

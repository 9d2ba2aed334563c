package joinsplit

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suffix-labs/zcash-sprout/pkg/crypto"
	"github.com/suffix-labs/zcash-sprout/pkg/keys"
	"github.com/suffix-labs/zcash-sprout/pkg/merkle"
	"github.com/suffix-labs/zcash-sprout/pkg/note"
	"github.com/suffix-labs/zcash-sprout/pkg/sprout"
)

// uint256S parses hex in the reversed display order used by zcashd fixtures.
func uint256S(s string) sprout.Uint256 {
	u := sprout.MustUint256FromString(s)
	for i, j := 0, len(u)-1; i < j; i, j = i+1, j-1 {
		u[i], u[j] = u[j], u[i]
	}
	return u
}

func TestHSigVectors(t *testing.T) {
	tests := []struct {
		name       string
		randomSeed string
		nf1, nf2   string
		pubKeyHash string
		want       string
	}{
		{
			name:       "distinct bytes",
			randomSeed: "6161616161616161616161616161616161616161616161616161616161616161",
			nf1:        "6262626262626262626262626262626262626262626262626262626262626262",
			nf2:        "6363636363636363636363636363636363636363636363636363636363636363",
			pubKeyHash: "6464646464646464646464646464646464646464646464646464646464646464",
			want:       "a8cba69f1fa329c055756b4af900f8a00b61e44f4cb8a1824ceb58b90a5b8113",
		},
		{
			name:       "zeros",
			randomSeed: "0000000000000000000000000000000000000000000000000000000000000000",
			nf1:        "0000000000000000000000000000000000000000000000000000000000000000",
			nf2:        "0000000000000000000000000000000000000000000000000000000000000000",
			pubKeyHash: "0000000000000000000000000000000000000000000000000000000000000000",
			want:       "697322276b5dd93b12fb1fcbd2144b2960f24c73aac6c6a0811447be1e7f1e19",
		},
		{
			name:       "counting",
			randomSeed: "1f1e1d1c1b1a191817161514131211100f0e0d0c0b0a09080706050403020100",
			nf1:        "1f1e1d1c1b1a191817161514131211100f0e0d0c0b0a09080706050403020100",
			nf2:        "1f1e1d1c1b1a191817161514131211100f0e0d0c0b0a09080706050403020100",
			pubKeyHash: "1f1e1d1c1b1a191817161514131211100f0e0d0c0b0a09080706050403020100",
			want:       "b61110ec162693bc3d9ca7fb0eec3afd2e278e2f41394b3ff11d7cb761ad4b27",
		},
		{
			name:       "ones",
			randomSeed: "ffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff",
			nf1:        "ffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff",
			nf2:        "ffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff",
			pubKeyHash: "ffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff",
			want:       "4961048919f0ca79d49c9378c36a91a8767060001f4212fe6f7d426f3ccf9f32",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nfs := [sprout.NumJSInputs]sprout.Uint256{uint256S(tt.nf1), uint256S(tt.nf2)}
			got := HSig(uint256S(tt.randomSeed), nfs, uint256S(tt.pubKeyHash))
			assert.Equal(t, uint256S(tt.want), got)

			d := &Description{RandomSeed: uint256S(tt.randomSeed), Nullifiers: nfs}
			assert.Equal(t, got, d.HSig(uint256S(tt.pubKeyHash)))
		})
	}
}

func randomProof(t *testing.T) *Proof {
	t.Helper()
	p := &Proof{}
	for _, g := range []*CompressedG1{&p.GA, &p.GAPrime, &p.GBPrime, &p.GC, &p.GCPrime, &p.GK, &p.GH} {
		_, err := rand.Read(g.X[:])
		require.NoError(t, err)
	}
	_, err := rand.Read(p.GB.X[:])
	require.NoError(t, err)
	p.GA.YLsb = true
	p.GB.YGt = true
	p.GH.YLsb = true
	return p
}

func TestProofCodec(t *testing.T) {
	p := randomProof(t)
	b := p.Bytes()
	require.Len(t, b, ProofSize)
	assert.Equal(t, 296, ProofSize)
	assert.Equal(t, byte(0x03), b[0])
	assert.Equal(t, byte(0x02), b[33])
	assert.Equal(t, byte(0x0b), b[66])

	back, err := ProofFromBytes(b)
	require.NoError(t, err)
	assert.Equal(t, p, back)

	_, err = ProofFromBytes(append(b, 0))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ZCProof has unexpected data")

	bad := append([]byte(nil), b...)
	bad[66] = 0x02
	_, err = ProofFromBytes(bad)
	require.Error(t, err)
	assert.True(t, sprout.HasCode(err, sprout.ErrInvalidEncoding))

	bad = append([]byte(nil), b...)
	bad[0] = 0x0a
	_, err = ProofFromBytes(bad)
	assert.True(t, sprout.HasCode(err, sprout.ErrInvalidEncoding))

	_, err = ProofFromBytes(b[:100])
	assert.True(t, sprout.HasCode(err, sprout.ErrShortBuffer))
}

// fixture holds two spendable notes under one key, witnessed in a shared tree.
type fixture struct {
	key    keys.SpendingKey
	notes  [2]note.Note
	inputs []JSInput
	rt     sprout.Uint256
}

func newFixture(t *testing.T, v1, v2 uint64) *fixture {
	t.Helper()
	key, err := keys.RandomSpendingKey(nil)
	require.NoError(t, err)

	f := &fixture{key: key}
	tree := merkle.NewTree()
	var ws []*merkle.Witness
	for i, v := range []uint64{v1, v2} {
		rho, err := sprout.RandomUint256(nil)
		require.NoError(t, err)
		r, err := sprout.RandomUint256(nil)
		require.NoError(t, err)
		f.notes[i], err = note.New(key.APk(), v, rho, r)
		require.NoError(t, err)

		cm := f.notes[i].Commitment()
		require.NoError(t, tree.Append(cm))
		for _, w := range ws {
			require.NoError(t, w.Append(cm))
		}
		ws = append(ws, tree.Witness())
	}
	f.rt = tree.Root()
	f.inputs = []JSInput{
		{Witness: ws[0], Note: f.notes[0], Key: key},
		{Witness: ws[1], Note: f.notes[1], Key: key},
	}
	return f
}

func testOutputs(t *testing.T, v1, v2 uint64) ([]JSOutput, []keys.SpendingKey) {
	t.Helper()
	var outs []JSOutput
	var ks []keys.SpendingKey
	for i, v := range []uint64{v1, v2} {
		k, err := keys.RandomSpendingKey(nil)
		require.NoError(t, err)
		addr, err := k.Address()
		require.NoError(t, err)
		memo := []byte(nil)
		if i == 0 {
			memo = []byte("thanks for the coffee")
		}
		out, err := NewOutput(addr, v, memo)
		require.NoError(t, err)
		outs = append(outs, out)
		ks = append(ks, k)
	}
	return outs, ks
}

func TestWithWitness(t *testing.T) {
	f := newFixture(t, 5, 4)
	outputs, recipients := testOutputs(t, 6, 1)
	pubKeyHash := sprout.MustUint256FromString("6464646464646464646464646464646464646464646464646464646464646464")

	d, pw, err := WithWitness(f.inputs, outputs, pubKeyHash, 0, 2, f.rt)
	require.NoError(t, err)

	assert.Equal(t, uint64(0), d.VpubOld)
	assert.Equal(t, uint64(2), d.VpubNew)
	assert.Equal(t, f.rt, d.Anchor)
	assert.Nil(t, d.Proof)

	hSig := d.HSig(pubKeyHash)
	assert.Equal(t, hSig, pw.HSig)
	assert.Equal(t, f.rt, pw.Rt)

	for i := range f.notes {
		assert.Equal(t, f.notes[i].Nullifier(f.key), d.Nullifiers[i])
		mac, err := crypto.PRFPk(f.key.ASk, i, hSig)
		require.NoError(t, err)
		assert.Equal(t, mac, d.Macs[i])
	}

	for i, out := range outputs {
		rho, err := crypto.PRFRho(pw.Phi, i, hSig)
		require.NoError(t, err)
		assert.Equal(t, rho, pw.Notes[i].Rho)
		assert.Equal(t, out.Addr.APk, pw.Notes[i].APk)
		assert.Equal(t, pw.Notes[i].Commitment(), d.Commitments[i])

		dec, err := recipients[i].Decryptor()
		require.NoError(t, err)
		pt, err := note.DecryptPlaintext(dec, d.Ciphertexts[i][:], d.EphemeralKey, hSig, uint8(i))
		require.NoError(t, err)
		assert.Equal(t, out.Memo, pt.Memo)
		assert.Equal(t, d.Commitments[i], pt.Note(recipients[i].APk()).Commitment())
	}
	assert.Equal(t, "thanks for the coffee", string(outputs[0].Memo.Text()))
	assert.True(t, outputs[1].Memo.IsEmpty())
}

func TestWithWitnessFailures(t *testing.T) {
	pubKeyHash := sprout.Uint256{}

	t.Run("arity", func(t *testing.T) {
		f := newFixture(t, 1, 1)
		outputs, _ := testOutputs(t, 1, 1)
		_, _, err := WithWitness(f.inputs[:1], outputs, pubKeyHash, 0, 0, f.rt)
		require.Error(t, err)
		assert.True(t, sprout.HasCode(err, sprout.ErrInvalidArity))
		assert.Contains(t, err.Error(), "invalid number of inputs (found 1, expected 2)")

		_, _, err = WithWitness(f.inputs, append(outputs, outputs[0]), pubKeyHash, 0, 0, f.rt)
		assert.True(t, sprout.HasCode(err, sprout.ErrInvalidArity))
	})

	t.Run("balance off by one", func(t *testing.T) {
		f := newFixture(t, 5, 4)
		outputs, _ := testOutputs(t, 6, 1)
		_, _, err := WithWitness(f.inputs, outputs, pubKeyHash, 0, 3, f.rt)
		require.Error(t, err)
		assert.True(t, sprout.HasCode(err, sprout.ErrBalance))
		assert.Contains(t, err.Error(), "invalid joinsplit balance")

		_, _, err = WithWitness(f.inputs, outputs, pubKeyHash, 0, 1, f.rt)
		assert.True(t, sprout.HasCode(err, sprout.ErrBalance))
	})

	t.Run("anchor", func(t *testing.T) {
		f := newFixture(t, 5, 4)
		outputs, _ := testOutputs(t, 9, 0)
		other := f.rt
		other[0] ^= 1
		_, _, err := WithWitness(f.inputs, outputs, pubKeyHash, 0, 0, other)
		require.Error(t, err)
		assert.True(t, sprout.HasCode(err, sprout.ErrAnchorMismatch))
		assert.Contains(t, err.Error(), "joinsplit not anchored to the correct root")

		var ie *sprout.IntegrityError
		require.ErrorAs(t, err, &ie)
		assert.Equal(t, 0, ie.InputIndex)
	})

	t.Run("wrong element", func(t *testing.T) {
		f := newFixture(t, 5, 4)
		outputs, _ := testOutputs(t, 9, 0)
		inputs := []JSInput{f.inputs[0], f.inputs[1]}
		inputs[1].Witness = f.inputs[0].Witness
		_, _, err := WithWitness(inputs, outputs, pubKeyHash, 0, 0, f.rt)
		require.Error(t, err)
		assert.True(t, sprout.HasCode(err, sprout.ErrWrongElement))
		assert.Contains(t, err.Error(), "witness of wrong element for joinsplit input")
	})

	t.Run("unauthorized", func(t *testing.T) {
		f := newFixture(t, 5, 4)
		outputs, _ := testOutputs(t, 9, 0)
		other, err := keys.RandomSpendingKey(nil)
		require.NoError(t, err)
		inputs := []JSInput{f.inputs[0], f.inputs[1]}
		inputs[1].Key = other
		_, _, err = WithWitness(inputs, outputs, pubKeyHash, 0, 0, f.rt)
		require.Error(t, err)
		assert.True(t, sprout.HasCode(err, sprout.ErrUnauthorized))
		assert.Contains(t, err.Error(), "input note not authorized to spend with given key")
	})

	t.Run("zero-value input without witness", func(t *testing.T) {
		outputs, _ := testOutputs(t, 0, 0)
		var inputs []JSInput
		for i := 0; i < 2; i++ {
			in, err := DummyInput(nil)
			require.NoError(t, err)
			inputs = append(inputs, in)
		}
		inputs[0].Witness = nil
		d, pw, err := WithWitness(inputs, outputs, pubKeyHash, 0, 0, sprout.Uint256{})
		require.Error(t, err)
		assert.Nil(t, d)
		assert.Nil(t, pw)
		assert.True(t, sprout.HasCode(err, sprout.ErrEmptyTree))
		assert.Contains(t, err.Error(), "input 0 has no witness")
	})

	t.Run("value range", func(t *testing.T) {
		f := newFixture(t, 5, 4)
		outputs, _ := testOutputs(t, 0, 0)
		_, _, err := WithWitness(f.inputs, outputs, pubKeyHash, sprout.MaxValue+1, 0, f.rt)
		assert.True(t, sprout.HasCode(err, sprout.ErrValueOutOfRange))

		_, _, err = WithWitness(f.inputs, outputs, pubKeyHash, sprout.MaxValue, 0, f.rt)
		assert.True(t, sprout.HasCode(err, sprout.ErrValueOutOfRange))
	})
}

func TestWithWitnessDummies(t *testing.T) {
	var inputs []JSInput
	var outputs []JSOutput
	for i := 0; i < 2; i++ {
		in, err := DummyInput(nil)
		require.NoError(t, err)
		assert.Equal(t, uint64(0), in.Note.Value)
		el, err := in.Witness.Element()
		require.NoError(t, err)
		assert.Equal(t, in.Note.Commitment(), el)
		inputs = append(inputs, in)

		out, err := DummyOutput(nil)
		require.NoError(t, err)
		outputs = append(outputs, out)
	}

	// Zero-value inputs are not bound to the anchor.
	anchor := sprout.MustUint256FromString("0101010101010101010101010101010101010101010101010101010101010101")
	d, pw, err := WithWitness(inputs, outputs, sprout.Uint256{}, 7, 7, anchor)
	require.NoError(t, err)
	assert.Equal(t, anchor, d.Anchor)
	assert.Equal(t, uint64(7), pw.VpubOld)
}

func TestDescriptionCodec(t *testing.T) {
	f := newFixture(t, 3, 0)
	outputs, _ := testOutputs(t, 1, 1)
	d, pw, err := WithWitness(f.inputs, outputs, sprout.Uint256{}, 0, 1, f.rt)
	require.NoError(t, err)

	_, err = d.Bytes()
	require.Error(t, err)
	assert.True(t, sprout.HasCode(err, sprout.ErrMissingProof))

	d.Proof = randomProof(t)
	b, err := d.Bytes()
	require.NoError(t, err)
	require.Len(t, b, 1802)
	assert.Equal(t, d.ByteLength(), len(b))

	back, err := DescriptionFromBytes(b)
	require.NoError(t, err)
	assert.Equal(t, d, back)

	_, err = DescriptionFromBytes(append(b, 0x00))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JSDescription has unexpected data")
	assert.True(t, sprout.HasCode(err, sprout.ErrTrailingData))

	_, err = DescriptionFromBytes(b[:len(b)-1])
	assert.True(t, sprout.HasCode(err, sprout.ErrShortBuffer))

	// Nested decoding leaves the rest of the buffer alone.
	r := sprout.NewReader(append(b, 0xaa, 0xbb))
	nested, err := ReadDescription(r)
	require.NoError(t, err)
	assert.Equal(t, d, nested)
	assert.Equal(t, 2, r.Remaining())

	t.Run("proof witness", func(t *testing.T) {
		pb := pw.Bytes()
		assert.Equal(t, pw.ByteLength(), len(pb))

		got, err := ProofWitnessFromBytes(pb)
		require.NoError(t, err)
		assert.Equal(t, pw.Bytes(), got.Bytes())
		assert.Equal(t, pw.Phi, got.Phi)
		assert.Equal(t, pw.Notes, got.Notes)
		assert.Equal(t, pw.Inputs[1].Key, got.Inputs[1].Key)
		assert.Equal(t, pw.Inputs[0].Witness.Root(), got.Inputs[0].Witness.Root())

		_, err = ProofWitnessFromBytes(append(pb, 1))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "JSProofWitness has unexpected data")
	})

	t.Run("public values out of range", func(t *testing.T) {
		big := d.Clone()
		big.VpubOld = 1 << 60
		bb, err := big.Bytes()
		require.NoError(t, err)
		_, err = DescriptionFromBytes(bb)
		require.Error(t, err)
		assert.True(t, sprout.HasCode(err, sprout.ErrValueOutOfRange))

		big = d.Clone()
		big.VpubNew = sprout.MaxValue + 1
		bb, err = big.Bytes()
		require.NoError(t, err)
		_, err = DescriptionFromBytes(bb)
		assert.True(t, sprout.HasCode(err, sprout.ErrValueOutOfRange))

		bigWitness := *pw
		bigWitness.VpubNew = 1 << 60
		_, err = ProofWitnessFromBytes(bigWitness.Bytes())
		require.Error(t, err)
		assert.True(t, sprout.HasCode(err, sprout.ErrValueOutOfRange))
	})

	t.Run("clone", func(t *testing.T) {
		c := d.Clone()
		assert.Equal(t, d, c)
		c.Proof.GA.X[0] ^= 0xff
		c.Ciphertexts[0][0] ^= 0xff
		assert.NotEqual(t, d.Proof.GA.X[0], c.Proof.GA.X[0])
		assert.NotEqual(t, d.Ciphertexts[0][0], c.Ciphertexts[0][0])
	})
}

func TestInputCodec(t *testing.T) {
	in, err := DummyInput(nil)
	require.NoError(t, err)

	b := in.Bytes()
	assert.Equal(t, in.ByteLength(), len(b))

	back, err := InputFromBytes(b)
	require.NoError(t, err)
	assert.Equal(t, b, back.Bytes())
	assert.Equal(t, in.Nullifier(), back.Nullifier())

	_, err = InputFromBytes(append(b, 0))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JSInput has unexpected data")
}

func TestNewOutput(t *testing.T) {
	out, err := DummyOutput(nil)
	require.NoError(t, err)

	_, err = NewOutput(out.Addr, sprout.MaxValue+1, nil)
	assert.True(t, sprout.HasCode(err, sprout.ErrValueOutOfRange))

	_, err = NewOutput(out.Addr, 1, make([]byte, sprout.MemoSize+1))
	assert.True(t, sprout.HasCode(err, sprout.ErrInvalidLength))
}

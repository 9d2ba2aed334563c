// Package transaction implements the Sprout-era Zcash transaction: the
// Bitcoin-style transparent part plus, from version 2 on, a list of
// JoinSplit descriptions bound together by an Ed25519 signature.
//
//	version(u32) || vin || vout || lock_time(u32)
//	[ version >= 2: varint(n) || JSDescription... || joinSplitPubKey(32) || joinSplitSig(64) ]
//
// The JoinSplit public key and signature are only present when n > 0.
package transaction

import (
	"crypto/ed25519"
	"fmt"
	"io"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/rs/zerolog"
	fasthex "github.com/tmthrgd/go-hex"

	"github.com/suffix-labs/zcash-sprout/pkg/joinsplit"
	"github.com/suffix-labs/zcash-sprout/pkg/sprout"
)

const (
	// DefaultSequence is the sequence number of a final input.
	DefaultSequence = 0xffffffff

	// JoinSplitVersion is the first version carrying JoinSplits.
	JoinSplitVersion = 2

	// overwinterFlag marks the post-Sprout transaction formats.
	overwinterFlag = 1 << 31

	JoinSplitPubKeySize = 32
)

// TxIn spends a transparent output.
type TxIn struct {
	PrevHash chainhash.Hash `json:"prev_hash"`
	Index    uint32         `json:"index"`
	Script   []byte         `json:"script"`
	Sequence uint32         `json:"sequence"`
}

// TxOut pays Value zatoshi to Script.
type TxOut struct {
	Value  uint64 `json:"value"`
	Script []byte `json:"script"`
}

// Transaction is a version 1 or 2 Zcash transaction. Besides the wire
// fields it keeps the shielded inputs and outputs queued for GetProofs and,
// once GetProofs has run, the JoinSplit signing key.
type Transaction struct {
	Version    uint32
	Ins        []*TxIn
	Outs       []*TxOut
	LockTime   uint32
	JoinSplits []*joinsplit.Description

	JoinSplitPubKey [JoinSplitPubKeySize]byte
	JoinSplitSig    [sprout.JoinSplitSignatureSize]byte

	jsIns   []joinsplit.JSInput
	jsOuts  []joinsplit.JSOutput
	anchor  *sprout.Uint256
	jsPriv  ed25519.PrivateKey
	rng     io.Reader
	log     zerolog.Logger
	workers int
}

// Option configures a Transaction's builder state.
type Option func(*Transaction)

// WithRand sets the randomness source for JoinSplit construction and the
// JoinSplit key. It must be safe for concurrent use unless WithWorkers(1)
// is also given.
func WithRand(rng io.Reader) Option {
	return func(t *Transaction) { t.rng = rng }
}

func WithLogger(log zerolog.Logger) Option {
	return func(t *Transaction) { t.log = log }
}

// WithWorkers bounds how many descriptions GetProofs builds at once.
func WithWorkers(n int) Option {
	return func(t *Transaction) { t.workers = n }
}

// New returns an empty transaction of the given version.
func New(version uint32, opts ...Option) *Transaction {
	t := &Transaction{Version: version, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// AddInput appends a transparent input and returns its index.
func (t *Transaction) AddInput(hash chainhash.Hash, index, sequence uint32, scriptSig []byte) int {
	t.Ins = append(t.Ins, &TxIn{PrevHash: hash, Index: index, Script: scriptSig, Sequence: sequence})
	return len(t.Ins) - 1
}

// AddOutput appends a transparent output and returns its index.
func (t *Transaction) AddOutput(script []byte, value uint64) (int, error) {
	if err := sprout.CheckValue("output value", value); err != nil {
		return 0, err
	}
	t.Outs = append(t.Outs, &TxOut{Value: value, Script: script})
	return len(t.Outs) - 1, nil
}

// SetInputScript replaces the scriptSig of input index.
func (t *Transaction) SetInputScript(index int, scriptSig []byte) error {
	if index < 0 || index >= len(t.Ins) {
		return &sprout.ValidationError{
			Code:    sprout.ErrIndexOutOfRange,
			Message: fmt.Sprintf("input index %d out of bounds (have %d inputs)", index, len(t.Ins)),
		}
	}
	t.Ins[index].Script = scriptSig
	return nil
}

// IsCoinbaseHash reports whether hash is the all-zero coinbase prevout.
func IsCoinbaseHash(hash chainhash.Hash) bool {
	return hash == chainhash.Hash{}
}

// Clone copies the wire fields. Queued shielded inputs and outputs, the
// anchor and the JoinSplit signing key are not carried over.
func (t *Transaction) Clone() *Transaction {
	c := &Transaction{
		Version:  t.Version,
		LockTime: t.LockTime,
		Ins:      make([]*TxIn, len(t.Ins)),
		Outs:     make([]*TxOut, len(t.Outs)),
		log:      t.log,
	}
	for i, in := range t.Ins {
		cp := *in
		c.Ins[i] = &cp
	}
	for i, out := range t.Outs {
		cp := *out
		c.Outs[i] = &cp
	}
	if t.Version >= JoinSplitVersion && len(t.JoinSplits) > 0 {
		c.JoinSplits = make([]*joinsplit.Description, len(t.JoinSplits))
		for i, d := range t.JoinSplits {
			c.JoinSplits[i] = d.Clone()
		}
		c.JoinSplitPubKey = t.JoinSplitPubKey
		c.JoinSplitSig = t.JoinSplitSig
	}
	return c
}

func (t *Transaction) hasJoinSplits() bool {
	return t.Version >= JoinSplitVersion && len(t.JoinSplits) > 0
}

func (t *Transaction) ByteLength() int {
	n := 4 + sprout.VarIntSize(uint64(len(t.Ins))) + sprout.VarIntSize(uint64(len(t.Outs))) + 4
	for _, in := range t.Ins {
		n += chainhash.HashSize + 4 + sprout.VarSliceSize(len(in.Script)) + 4
	}
	for _, out := range t.Outs {
		n += 8 + sprout.VarSliceSize(len(out.Script))
	}
	if t.Version >= JoinSplitVersion {
		n += sprout.VarIntSize(uint64(len(t.JoinSplits)))
		n += len(t.JoinSplits) * joinsplit.DescriptionSize
		if len(t.JoinSplits) > 0 {
			n += JoinSplitPubKeySize + sprout.JoinSplitSignatureSize
		}
	}
	return n
}

// Write encodes the transaction. Descriptions still waiting for their
// proof make it fail with ErrMissingProof.
func (t *Transaction) Write(w *sprout.Writer) error {
	w.WriteUint32(t.Version)
	w.WriteVarInt(uint64(len(t.Ins)))
	for _, in := range t.Ins {
		w.WriteSlice(in.PrevHash[:])
		w.WriteUint32(in.Index)
		w.WriteVarSlice(in.Script)
		w.WriteUint32(in.Sequence)
	}
	w.WriteVarInt(uint64(len(t.Outs)))
	for _, out := range t.Outs {
		w.WriteUint64(out.Value)
		w.WriteVarSlice(out.Script)
	}
	w.WriteUint32(t.LockTime)

	if t.Version >= JoinSplitVersion {
		w.WriteVarInt(uint64(len(t.JoinSplits)))
		for i, d := range t.JoinSplits {
			if err := d.Write(w); err != nil {
				return fmt.Errorf("joinsplit %d: %w", i, err)
			}
		}
		if len(t.JoinSplits) > 0 {
			w.WriteSlice(t.JoinSplitPubKey[:])
			w.WriteSlice(t.JoinSplitSig[:])
		}
	}
	return nil
}

func (t *Transaction) Bytes() ([]byte, error) {
	w := sprout.NewWriter(t.ByteLength())
	if err := t.Write(w); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

func (t *Transaction) Hex() (string, error) {
	b, err := t.Bytes()
	if err != nil {
		return "", err
	}
	return fasthex.EncodeToString(b), nil
}

// Hash is the double SHA-256 of the encoding.
func (t *Transaction) Hash() (chainhash.Hash, error) {
	b, err := t.Bytes()
	if err != nil {
		return chainhash.Hash{}, err
	}
	return chainhash.DoubleHashH(b), nil
}

// TxID is Hash in the reversed display order.
func (t *Transaction) TxID() (string, error) {
	h, err := t.Hash()
	if err != nil {
		return "", err
	}
	return h.String(), nil
}

// Read decodes a transaction nested in a larger buffer.
func Read(r *sprout.Reader) (*Transaction, error) {
	t := New(0)
	var err error
	if t.Version, err = r.ReadUint32(); err != nil {
		return nil, fmt.Errorf("version: %w", err)
	}
	if t.Version&overwinterFlag != 0 {
		return nil, &sprout.ValidationError{
			Code:    sprout.ErrUnsupportedTxVer,
			Message: fmt.Sprintf("transaction version 0x%08x is not a Sprout format", t.Version),
		}
	}

	nIn, err := r.ReadCount(chainhash.HashSize + 4 + 1 + 4)
	if err != nil {
		return nil, fmt.Errorf("vin count: %w", err)
	}
	if nIn > 0 {
		t.Ins = make([]*TxIn, nIn)
	}
	for i := range t.Ins {
		in := &TxIn{}
		hash, err := r.ReadSlice(chainhash.HashSize)
		if err != nil {
			return nil, fmt.Errorf("vin %d: %w", i, err)
		}
		copy(in.PrevHash[:], hash)
		if in.Index, err = r.ReadUint32(); err != nil {
			return nil, fmt.Errorf("vin %d: %w", i, err)
		}
		if in.Script, err = r.ReadVarSlice(); err != nil {
			return nil, fmt.Errorf("vin %d script: %w", i, err)
		}
		if in.Sequence, err = r.ReadUint32(); err != nil {
			return nil, fmt.Errorf("vin %d: %w", i, err)
		}
		t.Ins[i] = in
	}

	nOut, err := r.ReadCount(8 + 1)
	if err != nil {
		return nil, fmt.Errorf("vout count: %w", err)
	}
	if nOut > 0 {
		t.Outs = make([]*TxOut, nOut)
	}
	for i := range t.Outs {
		out := &TxOut{}
		if out.Value, err = r.ReadUint64(); err != nil {
			return nil, fmt.Errorf("vout %d: %w", i, err)
		}
		if out.Script, err = r.ReadVarSlice(); err != nil {
			return nil, fmt.Errorf("vout %d script: %w", i, err)
		}
		t.Outs[i] = out
	}

	if t.LockTime, err = r.ReadUint32(); err != nil {
		return nil, fmt.Errorf("lock_time: %w", err)
	}

	if t.Version < JoinSplitVersion {
		return t, nil
	}

	nJS, err := r.ReadCount(joinsplit.DescriptionSize)
	if err != nil {
		return nil, fmt.Errorf("joinsplit count: %w", err)
	}
	if nJS == 0 {
		return t, nil
	}
	t.JoinSplits = make([]*joinsplit.Description, nJS)
	for i := range t.JoinSplits {
		if t.JoinSplits[i], err = joinsplit.ReadDescription(r); err != nil {
			return nil, fmt.Errorf("joinsplit %d: %w", i, err)
		}
	}
	pub, err := r.ReadSlice(JoinSplitPubKeySize)
	if err != nil {
		return nil, fmt.Errorf("joinSplitPubKey: %w", err)
	}
	copy(t.JoinSplitPubKey[:], pub)
	sig, err := r.ReadSlice(sprout.JoinSplitSignatureSize)
	if err != nil {
		return nil, fmt.Errorf("joinSplitSig: %w", err)
	}
	copy(t.JoinSplitSig[:], sig)
	return t, nil
}

// FromBytes strictly decodes a transaction.
func FromBytes(b []byte) (*Transaction, error) {
	r := sprout.NewReader(b)
	t, err := Read(r)
	if err != nil {
		return nil, err
	}
	if err := r.Finish("Transaction"); err != nil {
		return nil, err
	}
	return t, nil
}

func FromHex(s string) (*Transaction, error) {
	b, err := fasthex.DecodeString(s)
	if err != nil {
		return nil, &sprout.ValidationError{
			Code:    sprout.ErrInvalidEncoding,
			Message: "transaction is not hex",
			Cause:   err,
		}
	}
	return FromBytes(b)
}

package joinsplit

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/suffix-labs/zcash-sprout/pkg/crypto"
	"github.com/suffix-labs/zcash-sprout/pkg/note"
	"github.com/suffix-labs/zcash-sprout/pkg/sprout"
)

// Builder constructs JoinSplit descriptions. The zero value is not usable;
// call NewBuilder.
type Builder struct {
	rng io.Reader
	log zerolog.Logger
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithRand sets the randomness source (crypto/rand by default).
func WithRand(rng io.Reader) BuilderOption {
	return func(b *Builder) { b.rng = rng }
}

// WithLogger sets the logger. Secret material is never logged.
func WithLogger(log zerolog.Logger) BuilderOption {
	return func(b *Builder) { b.log = log }
}

func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{log: zerolog.Nop()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// WithWitness builds a description spending inputs into outputs, anchored
// at rt. It returns the description without a proof and the witness the
// prover needs to produce one. No partial description is returned on
// failure.
func WithWitness(inputs []JSInput, outputs []JSOutput, pubKeyHash sprout.Uint256, vpubOld, vpubNew uint64, rt sprout.Uint256) (*Description, *ProofWitness, error) {
	return NewBuilder().WithWitness(inputs, outputs, pubKeyHash, vpubOld, vpubNew, rt)
}

func (b *Builder) WithWitness(inputs []JSInput, outputs []JSOutput, pubKeyHash sprout.Uint256, vpubOld, vpubNew uint64, rt sprout.Uint256) (*Description, *ProofWitness, error) {
	if len(inputs) != sprout.NumJSInputs {
		return nil, nil, &sprout.ValidationError{
			Code:    sprout.ErrInvalidArity,
			Message: fmt.Sprintf("invalid number of inputs (found %d, expected %d)", len(inputs), sprout.NumJSInputs),
		}
	}
	if len(outputs) != sprout.NumJSOutputs {
		return nil, nil, &sprout.ValidationError{
			Code:    sprout.ErrInvalidArity,
			Message: fmt.Sprintf("invalid number of outputs (found %d, expected %d)", len(outputs), sprout.NumJSOutputs),
		}
	}
	if err := sprout.CheckValue("vpub_old", vpubOld); err != nil {
		return nil, nil, err
	}
	if err := sprout.CheckValue("vpub_new", vpubNew); err != nil {
		return nil, nil, err
	}

	d := &Description{VpubOld: vpubOld, VpubNew: vpubNew, Anchor: rt}
	pw := &ProofWitness{Rt: rt, VpubOld: vpubOld, VpubNew: vpubNew}

	lhs := vpubOld
	for i, in := range inputs {
		if err := checkInput(i, in, rt); err != nil {
			return nil, nil, err
		}
		var err error
		if lhs, err = sprout.AddValues("input value", lhs, in.Note.Value); err != nil {
			return nil, nil, err
		}
		d.Nullifiers[i] = in.Nullifier()
		pw.Inputs[i] = in
	}

	var err error
	if d.RandomSeed, err = sprout.RandomUint256(b.rng); err != nil {
		return nil, nil, err
	}
	hSig := d.HSig(pubKeyHash)

	phi, err := sprout.RandomUint252(b.rng)
	if err != nil {
		return nil, nil, err
	}

	rhs := vpubNew
	for i, out := range outputs {
		if rhs, err = sprout.AddValues("output value", rhs, out.Value); err != nil {
			return nil, nil, err
		}
		r, err := sprout.RandomUint256(b.rng)
		if err != nil {
			return nil, nil, err
		}
		if pw.Notes[i], err = out.note(phi, r, i, hSig); err != nil {
			return nil, nil, err
		}
		d.Commitments[i] = pw.Notes[i].Commitment()
	}

	if lhs != rhs {
		return nil, nil, &sprout.IntegrityError{
			Code:       sprout.ErrBalance,
			Message:    "invalid joinsplit balance",
			InputIndex: -1,
		}
	}

	enc, err := crypto.NewNoteEncryption(hSig, b.rng)
	if err != nil {
		return nil, nil, err
	}
	for i, out := range outputs {
		ct, err := note.NewPlaintext(pw.Notes[i], out.Memo).Encrypt(enc, out.Addr.PkEnc)
		if err != nil {
			return nil, nil, err
		}
		copy(d.Ciphertexts[i][:], ct)
	}
	d.EphemeralKey = enc.EPK()

	for i, in := range inputs {
		if d.Macs[i], err = crypto.PRFPk(in.Key.ASk, i, hSig); err != nil {
			return nil, nil, err
		}
	}

	pw.Phi = phi
	pw.HSig = hSig

	b.log.Debug().
		Str("anchor", rt.String()).
		Uint64("vpub_old", vpubOld).
		Uint64("vpub_new", vpubNew).
		Str("nf_1", d.Nullifiers[0].String()).
		Str("nf_2", d.Nullifiers[1].String()).
		Msg("joinsplit description built")

	return d, pw, nil
}

func checkInput(i int, in JSInput, rt sprout.Uint256) error {
	// Every input carries a witness, dummies included; the proof witness
	// encodes it.
	if in.Witness == nil {
		return &sprout.ValidationError{
			Code:    sprout.ErrEmptyTree,
			Message: fmt.Sprintf("input %d has no witness", i),
		}
	}
	if in.Note.Value != 0 {
		if in.Witness.Root() != rt {
			return &sprout.IntegrityError{
				Code:       sprout.ErrAnchorMismatch,
				Message:    "joinsplit not anchored to the correct root",
				InputIndex: i,
			}
		}
		elem, err := in.Witness.Element()
		if err != nil || elem != in.Note.Commitment() {
			return &sprout.IntegrityError{
				Code:       sprout.ErrWrongElement,
				Message:    "witness of wrong element for joinsplit input",
				InputIndex: i,
			}
		}
	}

	if in.Key.APk() != in.Note.APk {
		return &sprout.IntegrityError{
			Code:       sprout.ErrUnauthorized,
			Message:    "input note not authorized to spend with given key",
			InputIndex: i,
		}
	}
	return nil
}

package transaction

import (
	"context"
	"crypto/ed25519"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/suffix-labs/zcash-sprout/pkg/joinsplit"
	"github.com/suffix-labs/zcash-sprout/pkg/keys"
	"github.com/suffix-labs/zcash-sprout/pkg/prover"
	"github.com/suffix-labs/zcash-sprout/pkg/sprout"
)

// AddShieldedOutput queues a payment to a shielded address and returns its
// index among the queued outputs. Memo may be nil.
func (t *Transaction) AddShieldedOutput(addr keys.PaymentAddress, value uint64, memo []byte) (int, error) {
	out, err := joinsplit.NewOutput(addr, value, memo)
	if err != nil {
		return 0, err
	}
	t.jsOuts = append(t.jsOuts, out)
	return len(t.jsOuts) - 1, nil
}

// AddShieldedInput queues a note to spend. Its witness must be anchored at
// the root later passed to SetAnchor.
func (t *Transaction) AddShieldedInput(in joinsplit.JSInput) (int, error) {
	if in.Witness == nil {
		return 0, &sprout.ValidationError{
			Code:    sprout.ErrEmptyTree,
			Message: "shielded input has no witness",
		}
	}
	if err := sprout.CheckValue("input value", in.Note.Value); err != nil {
		return 0, err
	}
	t.jsIns = append(t.jsIns, in)
	return len(t.jsIns) - 1, nil
}

// SetAnchor fixes the note commitment tree root the JoinSplits prove
// against.
func (t *Transaction) SetAnchor(anchor sprout.Uint256) {
	t.anchor = &anchor
}

// Anchor returns the anchor set by SetAnchor, if any.
func (t *Transaction) Anchor() (sprout.Uint256, bool) {
	if t.anchor == nil {
		return sprout.Uint256{}, false
	}
	return *t.anchor, true
}

// PendingShielded reports how many shielded inputs and outputs are queued.
func (t *Transaction) PendingShielded() (inputs, outputs int) {
	return len(t.jsIns), len(t.jsOuts)
}

type pairing struct {
	inputs  []joinsplit.JSInput
	outputs []joinsplit.JSOutput
}

// pairs groups the queued inputs and outputs two by two. Missing slots
// become dummies when the description is built.
func (t *Transaction) pairs() []pairing {
	n := max((len(t.jsIns)+1)/2, (len(t.jsOuts)+1)/2)
	ps := make([]pairing, n)
	for i := range ps {
		lo, hi := 2*i, 2*i+2
		if lo < len(t.jsIns) {
			ps[i].inputs = t.jsIns[lo:min(hi, len(t.jsIns))]
		}
		if lo < len(t.jsOuts) {
			ps[i].outputs = t.jsOuts[lo:min(hi, len(t.jsOuts))]
		}
	}
	return ps
}

// fill pads a pairing with dummy inputs and outputs and computes the public
// values: a surplus of output value enters through vpub_old, a surplus of
// input value leaves through vpub_new.
func (t *Transaction) fill(p pairing) ([]joinsplit.JSInput, []joinsplit.JSOutput, uint64, uint64, error) {
	inputs := append([]joinsplit.JSInput(nil), p.inputs...)
	outputs := append([]joinsplit.JSOutput(nil), p.outputs...)
	for len(inputs) < sprout.NumJSInputs {
		in, err := joinsplit.DummyInput(t.rng)
		if err != nil {
			return nil, nil, 0, 0, err
		}
		inputs = append(inputs, in)
	}
	for len(outputs) < sprout.NumJSOutputs {
		out, err := joinsplit.DummyOutput(t.rng)
		if err != nil {
			return nil, nil, 0, 0, err
		}
		outputs = append(outputs, out)
	}

	var in, out uint64
	var err error
	for _, i := range inputs {
		if in, err = sprout.AddValues("input value", in, i.Note.Value); err != nil {
			return nil, nil, 0, 0, err
		}
	}
	for _, o := range outputs {
		if out, err = sprout.AddValues("output value", out, o.Value); err != nil {
			return nil, nil, 0, 0, err
		}
	}
	if out >= in {
		return inputs, outputs, out - in, 0, nil
	}
	return inputs, outputs, 0, in - out, nil
}

// GetProofs turns the queued shielded inputs and outputs into JoinSplit
// descriptions, obtains their proofs from p in one request and appends them
// to the transaction. A fresh JoinSplit key pair is generated; its public
// key is the pubKeyHash every description is bound to. Nothing is appended
// if any step fails.
func (t *Transaction) GetProofs(ctx context.Context, p prover.Provider) error {
	if t.anchor == nil {
		return &sprout.ValidationError{
			Code:    sprout.ErrMissingAnchor,
			Message: "must call SetAnchor() before GetProofs()",
		}
	}
	if t.Version < JoinSplitVersion {
		return &sprout.ValidationError{
			Code:    sprout.ErrUnsupportedTxVer,
			Message: fmt.Sprintf("transaction version %d cannot carry JoinSplits", t.Version),
		}
	}
	if len(t.JoinSplits) > 0 {
		return &sprout.ValidationError{
			Code:    sprout.ErrUnsupportedTxVer,
			Message: "transaction already carries JoinSplits under another key",
		}
	}

	ps := t.pairs()
	if len(ps) == 0 {
		return nil
	}

	pub, priv, err := ed25519.GenerateKey(t.rng)
	if err != nil {
		return fmt.Errorf("failed to generate JoinSplit key: %w", err)
	}
	var pubKeyHash sprout.Uint256
	copy(pubKeyHash[:], pub)

	builder := joinsplit.NewBuilder(joinsplit.WithRand(t.rng), joinsplit.WithLogger(t.log))
	descs := make([]*joinsplit.Description, len(ps))
	witnesses := make([]*joinsplit.ProofWitness, len(ps))

	g, gctx := errgroup.WithContext(ctx)
	if t.workers > 0 {
		g.SetLimit(t.workers)
	}
	for i, pr := range ps {
		i, pr := i, pr
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			inputs, outputs, vpubOld, vpubNew, err := t.fill(pr)
			if err != nil {
				return err
			}
			d, pw, err := builder.WithWitness(inputs, outputs, pubKeyHash, vpubOld, vpubNew, *t.anchor)
			if err != nil {
				return fmt.Errorf("joinsplit %d: %w", i, err)
			}
			descs[i], witnesses[i] = d, pw
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	proofs, err := p.Prove(ctx, witnesses)
	if err != nil {
		return fmt.Errorf("failed to get proofs: %w", err)
	}
	if len(proofs) != len(descs) {
		return &sprout.ValidationError{
			Code:    sprout.ErrProverResponse,
			Message: fmt.Sprintf("prover returned %d proofs for %d witnesses", len(proofs), len(descs)),
		}
	}
	for i, d := range descs {
		if proofs[i] == nil {
			return &sprout.ValidationError{
				Code:    sprout.ErrProverResponse,
				Message: fmt.Sprintf("prover returned no proof for witness %d", i),
			}
		}
		d.Proof = proofs[i]
	}

	t.JoinSplits = descs
	copy(t.JoinSplitPubKey[:], pub)
	t.jsPriv = priv
	t.jsIns, t.jsOuts = nil, nil

	t.log.Info().
		Int("joinsplits", len(descs)).
		Str("anchor", t.anchor.String()).
		Msg("joinsplit proofs attached")
	return nil
}

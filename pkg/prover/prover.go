// Package prover connects JoinSplit construction to an external proving
// service. The service receives a batch of proof witnesses and answers with
// one proof per witness, in request order:
//
//	request  = varint(count) || ProofWitness...
//	response = varint(count) || Proof...
package prover

import (
	"context"
	"fmt"

	"github.com/suffix-labs/zcash-sprout/pkg/joinsplit"
	"github.com/suffix-labs/zcash-sprout/pkg/sprout"
)

// Provider produces one proof per witness, order-matched.
type Provider interface {
	Prove(ctx context.Context, witnesses []*joinsplit.ProofWitness) ([]*joinsplit.Proof, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context, witnesses []*joinsplit.ProofWitness) ([]*joinsplit.Proof, error)

func (f ProviderFunc) Prove(ctx context.Context, witnesses []*joinsplit.ProofWitness) ([]*joinsplit.Proof, error) {
	return f(ctx, witnesses)
}

// EncodeRequest serializes a witness batch.
func EncodeRequest(witnesses []*joinsplit.ProofWitness) []byte {
	size := sprout.VarIntSize(uint64(len(witnesses)))
	for _, pw := range witnesses {
		size += pw.ByteLength()
	}
	w := sprout.NewWriter(size)
	w.WriteVarInt(uint64(len(witnesses)))
	for _, pw := range witnesses {
		pw.Write(w)
	}
	return w.Bytes()
}

// DecodeRequest parses a witness batch.
func DecodeRequest(b []byte) ([]*joinsplit.ProofWitness, error) {
	r := sprout.NewReader(b)
	n, err := r.ReadCount(1)
	if err != nil {
		return nil, err
	}
	witnesses := make([]*joinsplit.ProofWitness, 0, n)
	for i := 0; i < n; i++ {
		pw, err := joinsplit.ReadProofWitness(r)
		if err != nil {
			return nil, fmt.Errorf("request witness %d: %w", i, err)
		}
		witnesses = append(witnesses, pw)
	}
	if err := r.Finish("proof request"); err != nil {
		return nil, err
	}
	return witnesses, nil
}

// EncodeResponse serializes a proof batch.
func EncodeResponse(proofs []*joinsplit.Proof) []byte {
	w := sprout.NewWriter(sprout.VarIntSize(uint64(len(proofs))) + len(proofs)*joinsplit.ProofSize)
	w.WriteVarInt(uint64(len(proofs)))
	for _, p := range proofs {
		p.Write(w)
	}
	return w.Bytes()
}

// DecodeResponse parses a proof batch and checks it answers want witnesses.
func DecodeResponse(b []byte, want int) ([]*joinsplit.Proof, error) {
	r := sprout.NewReader(b)
	n, err := r.ReadVarInt()
	if err != nil {
		return nil, err
	}
	if n != uint64(want) {
		return nil, &sprout.ValidationError{
			Code:    sprout.ErrProverResponse,
			Message: fmt.Sprintf("prover returned %d proofs for %d witnesses", n, want),
		}
	}
	proofs := make([]*joinsplit.Proof, 0, want)
	for i := 0; i < want; i++ {
		p, err := joinsplit.ReadProof(r)
		if err != nil {
			return nil, &sprout.ValidationError{
				Code:    sprout.ErrProverResponse,
				Message: fmt.Sprintf("proof %d", i),
				Cause:   err,
			}
		}
		proofs = append(proofs, p)
	}
	if err := r.Finish("proof response"); err != nil {
		return nil, err
	}
	return proofs, nil
}

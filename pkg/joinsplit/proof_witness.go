package joinsplit

import (
	"fmt"

	"github.com/suffix-labs/zcash-sprout/pkg/note"
	"github.com/suffix-labs/zcash-sprout/pkg/sprout"
)

// ProofWitness is the private input of the JoinSplit circuit. It is sent
// once to the prover and then discarded.
//
//	phi || rt || hSig || input_1 || input_2 || note_1 || note_2 || vpub_old || vpub_new
type ProofWitness struct {
	Phi     sprout.Uint252
	Rt      sprout.Uint256
	HSig    sprout.Uint256
	Inputs  [sprout.NumJSInputs]JSInput
	Notes   [sprout.NumJSOutputs]note.Note
	VpubOld uint64
	VpubNew uint64
}

func (pw *ProofWitness) ByteLength() int {
	n := 3*sprout.HashSize + 16
	for _, in := range pw.Inputs {
		n += in.ByteLength()
	}
	for _, nt := range pw.Notes {
		n += nt.ByteLength()
	}
	return n
}

func (pw *ProofWitness) Write(w *sprout.Writer) {
	w.WriteUint252(pw.Phi)
	w.WriteUint256(pw.Rt)
	w.WriteUint256(pw.HSig)
	for _, in := range pw.Inputs {
		in.Write(w)
	}
	for _, nt := range pw.Notes {
		nt.Write(w)
	}
	w.WriteUint64(pw.VpubOld)
	w.WriteUint64(pw.VpubNew)
}

func (pw *ProofWitness) Bytes() []byte {
	w := sprout.NewWriter(pw.ByteLength())
	pw.Write(w)
	return w.Bytes()
}

// ReadProofWitness decodes a nested proof witness.
func ReadProofWitness(r *sprout.Reader) (*ProofWitness, error) {
	pw := &ProofWitness{}
	var err error
	if pw.Phi, err = r.ReadUint252(); err != nil {
		return nil, fmt.Errorf("proof witness phi: %w", err)
	}
	if pw.Rt, err = r.ReadUint256(); err != nil {
		return nil, fmt.Errorf("proof witness rt: %w", err)
	}
	if pw.HSig, err = r.ReadUint256(); err != nil {
		return nil, fmt.Errorf("proof witness hSig: %w", err)
	}
	for i := range pw.Inputs {
		if pw.Inputs[i], err = ReadInput(r); err != nil {
			return nil, fmt.Errorf("proof witness input %d: %w", i, err)
		}
	}
	for i := range pw.Notes {
		if pw.Notes[i], err = note.Read(r); err != nil {
			return nil, fmt.Errorf("proof witness note %d: %w", i, err)
		}
	}
	if pw.VpubOld, err = r.ReadUint64(); err != nil {
		return nil, err
	}
	if pw.VpubNew, err = r.ReadUint64(); err != nil {
		return nil, err
	}
	if err := checkPublicValues(pw.VpubOld, pw.VpubNew); err != nil {
		return nil, err
	}
	return pw, nil
}

// ProofWitnessFromBytes strictly decodes a proof witness.
func ProofWitnessFromBytes(b []byte) (*ProofWitness, error) {
	r := sprout.NewReader(b)
	pw, err := ReadProofWitness(r)
	if err != nil {
		return nil, err
	}
	if err := r.Finish("JSProofWitness"); err != nil {
		return nil, err
	}
	return pw, nil
}

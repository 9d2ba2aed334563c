package joinsplit

import (
	"fmt"

	"github.com/suffix-labs/zcash-sprout/pkg/sprout"
)

// PHGR13 proof layout: seven compressed G1 points and one compressed G2
// point over BN254.
//
//	G1: (0x02 | y_lsb) || x(32)
//	G2: (0x0a | y_gt)  || x(64)
const (
	g1Prefix = 0x02
	g2Prefix = 0x0a

	CompressedG1Size = 33
	CompressedG2Size = 65
	ProofSize        = 7*CompressedG1Size + CompressedG2Size // 296
)

// CompressedG1 is an x coordinate plus the parity of y.
type CompressedG1 struct {
	YLsb bool
	X    [32]byte
}

// CompressedG2 is an Fq2 x coordinate plus a sign bit for y.
type CompressedG2 struct {
	YGt bool
	X   [64]byte
}

// Proof is a PHGR13 zk-SNARK proof as returned by the prover.
type Proof struct {
	GA      CompressedG1
	GAPrime CompressedG1
	GB      CompressedG2
	GBPrime CompressedG1
	GC      CompressedG1
	GCPrime CompressedG1
	GK      CompressedG1
	GH      CompressedG1
}

func (p *Proof) ByteLength() int { return ProofSize }

func writeG1(w *sprout.Writer, g CompressedG1) {
	lead := byte(g1Prefix)
	if g.YLsb {
		lead |= 1
	}
	w.WriteUint8(lead)
	w.WriteSlice(g.X[:])
}

func writeG2(w *sprout.Writer, g CompressedG2) {
	lead := byte(g2Prefix)
	if g.YGt {
		lead |= 1
	}
	w.WriteUint8(lead)
	w.WriteSlice(g.X[:])
}

func (p *Proof) Write(w *sprout.Writer) {
	writeG1(w, p.GA)
	writeG1(w, p.GAPrime)
	writeG2(w, p.GB)
	writeG1(w, p.GBPrime)
	writeG1(w, p.GC)
	writeG1(w, p.GCPrime)
	writeG1(w, p.GK)
	writeG1(w, p.GH)
}

func (p *Proof) Bytes() []byte {
	w := sprout.NewWriter(ProofSize)
	p.Write(w)
	return w.Bytes()
}

func readG1(r *sprout.Reader) (CompressedG1, error) {
	var g CompressedG1
	lead, err := r.ReadUint8()
	if err != nil {
		return g, err
	}
	if lead&^1 != g1Prefix {
		return g, &sprout.ValidationError{
			Code:    sprout.ErrInvalidEncoding,
			Message: fmt.Sprintf("lead byte of G1 point not recognized: 0x%02x", lead),
		}
	}
	g.YLsb = lead&1 == 1
	x, err := r.ReadSlice(32)
	if err != nil {
		return g, err
	}
	copy(g.X[:], x)
	return g, nil
}

func readG2(r *sprout.Reader) (CompressedG2, error) {
	var g CompressedG2
	lead, err := r.ReadUint8()
	if err != nil {
		return g, err
	}
	if lead&^1 != g2Prefix {
		return g, &sprout.ValidationError{
			Code:    sprout.ErrInvalidEncoding,
			Message: fmt.Sprintf("lead byte of G2 point not recognized: 0x%02x", lead),
		}
	}
	g.YGt = lead&1 == 1
	x, err := r.ReadSlice(64)
	if err != nil {
		return g, err
	}
	copy(g.X[:], x)
	return g, nil
}

// ReadProof decodes a nested proof.
func ReadProof(r *sprout.Reader) (*Proof, error) {
	p := &Proof{}
	g1s := []*CompressedG1{&p.GA, &p.GAPrime}
	for _, g := range g1s {
		v, err := readG1(r)
		if err != nil {
			return nil, fmt.Errorf("proof: %w", err)
		}
		*g = v
	}

	gb, err := readG2(r)
	if err != nil {
		return nil, fmt.Errorf("proof: %w", err)
	}
	p.GB = gb

	for _, g := range []*CompressedG1{&p.GBPrime, &p.GC, &p.GCPrime, &p.GK, &p.GH} {
		v, err := readG1(r)
		if err != nil {
			return nil, fmt.Errorf("proof: %w", err)
		}
		*g = v
	}
	return p, nil
}

// ProofFromBytes strictly decodes a 296-byte proof.
func ProofFromBytes(b []byte) (*Proof, error) {
	r := sprout.NewReader(b)
	p, err := ReadProof(r)
	if err != nil {
		return nil, err
	}
	if err := r.Finish("ZCProof"); err != nil {
		return nil, err
	}
	return p, nil
}

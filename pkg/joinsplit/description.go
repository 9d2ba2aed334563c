package joinsplit

import (
	"fmt"

	"github.com/suffix-labs/zcash-sprout/pkg/sprout"
)

// Ciphertext is one encrypted note plaintext plus its AEAD tag.
type Ciphertext [sprout.NoteCiphertextSize]byte

// DescriptionSize is the encoded size of a JoinSplit description.
const DescriptionSize = 8 + 8 + // vpub_old, vpub_new
	sprout.HashSize + // anchor
	sprout.NumJSInputs*sprout.HashSize + // nullifiers
	sprout.NumJSOutputs*sprout.HashSize + // commitments
	sprout.HashSize + sprout.HashSize + // ephemeralKey, randomSeed
	sprout.NumJSInputs*sprout.HashSize + // macs
	ProofSize +
	sprout.NumJSOutputs*sprout.NoteCiphertextSize

// Description is the public part of a JoinSplit as carried in a
// transaction. Proof stays nil until the prover has run.
type Description struct {
	VpubOld      uint64
	VpubNew      uint64
	Anchor       sprout.Uint256
	Nullifiers   [sprout.NumJSInputs]sprout.Uint256
	Commitments  [sprout.NumJSOutputs]sprout.Uint256
	EphemeralKey sprout.Uint256
	RandomSeed   sprout.Uint256
	Macs         [sprout.NumJSInputs]sprout.Uint256
	Proof        *Proof
	Ciphertexts  [sprout.NumJSOutputs]Ciphertext
}

// HSig recomputes h_sig for this description under pubKeyHash.
func (d *Description) HSig(pubKeyHash sprout.Uint256) sprout.Uint256 {
	return HSig(d.RandomSeed, d.Nullifiers, pubKeyHash)
}

// Clone returns a deep copy.
func (d *Description) Clone() *Description {
	c := *d
	if d.Proof != nil {
		p := *d.Proof
		c.Proof = &p
	}
	return &c
}

func (d *Description) ByteLength() int { return DescriptionSize }

// Write encodes the description. It fails with ErrMissingProof before the
// proof has been attached.
func (d *Description) Write(w *sprout.Writer) error {
	if d.Proof == nil {
		return &sprout.ValidationError{
			Code:    sprout.ErrMissingProof,
			Message: "JSDescription has no proof",
		}
	}
	w.WriteUint64(d.VpubOld)
	w.WriteUint64(d.VpubNew)
	w.WriteUint256(d.Anchor)
	for _, nf := range d.Nullifiers {
		w.WriteUint256(nf)
	}
	for _, cm := range d.Commitments {
		w.WriteUint256(cm)
	}
	w.WriteUint256(d.EphemeralKey)
	w.WriteUint256(d.RandomSeed)
	for _, mac := range d.Macs {
		w.WriteUint256(mac)
	}
	d.Proof.Write(w)
	for i := range d.Ciphertexts {
		w.WriteSlice(d.Ciphertexts[i][:])
	}
	return nil
}

func (d *Description) Bytes() ([]byte, error) {
	w := sprout.NewWriter(DescriptionSize)
	if err := d.Write(w); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

func checkPublicValues(vpubOld, vpubNew uint64) error {
	if err := sprout.CheckValue("vpub_old", vpubOld); err != nil {
		return err
	}
	return sprout.CheckValue("vpub_new", vpubNew)
}

func readHashes(r *sprout.Reader, dst []sprout.Uint256, field string) error {
	for i := range dst {
		v, err := r.ReadUint256()
		if err != nil {
			return fmt.Errorf("%s %d: %w", field, i, err)
		}
		dst[i] = v
	}
	return nil
}

// ReadDescription decodes a nested description.
func ReadDescription(r *sprout.Reader) (*Description, error) {
	d := &Description{}
	var err error
	if d.VpubOld, err = r.ReadUint64(); err != nil {
		return nil, fmt.Errorf("vpub_old: %w", err)
	}
	if d.VpubNew, err = r.ReadUint64(); err != nil {
		return nil, fmt.Errorf("vpub_new: %w", err)
	}
	if err := checkPublicValues(d.VpubOld, d.VpubNew); err != nil {
		return nil, err
	}
	if d.Anchor, err = r.ReadUint256(); err != nil {
		return nil, fmt.Errorf("anchor: %w", err)
	}
	if err := readHashes(r, d.Nullifiers[:], "nullifier"); err != nil {
		return nil, err
	}
	if err := readHashes(r, d.Commitments[:], "commitment"); err != nil {
		return nil, err
	}
	if d.EphemeralKey, err = r.ReadUint256(); err != nil {
		return nil, fmt.Errorf("ephemeralKey: %w", err)
	}
	if d.RandomSeed, err = r.ReadUint256(); err != nil {
		return nil, fmt.Errorf("randomSeed: %w", err)
	}
	if err := readHashes(r, d.Macs[:], "mac"); err != nil {
		return nil, err
	}
	if d.Proof, err = ReadProof(r); err != nil {
		return nil, err
	}
	for i := range d.Ciphertexts {
		ct, err := r.ReadSlice(sprout.NoteCiphertextSize)
		if err != nil {
			return nil, fmt.Errorf("ciphertext %d: %w", i, err)
		}
		copy(d.Ciphertexts[i][:], ct)
	}
	return d, nil
}

// DescriptionFromBytes strictly decodes one description.
func DescriptionFromBytes(b []byte) (*Description, error) {
	r := sprout.NewReader(b)
	d, err := ReadDescription(r)
	if err != nil {
		return nil, err
	}
	if err := r.Finish("JSDescription"); err != nil {
		return nil, err
	}
	return d, nil
}

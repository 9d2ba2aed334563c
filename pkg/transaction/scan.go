package transaction

import (
	"github.com/suffix-labs/zcash-sprout/pkg/keys"
	"github.com/suffix-labs/zcash-sprout/pkg/note"
	"github.com/suffix-labs/zcash-sprout/pkg/sprout"
)

// ReceivedNote is a JoinSplit output decrypted with a spending key.
type ReceivedNote struct {
	JoinSplit  int            `json:"joinsplit"`
	Output     int            `json:"output"`
	Note       note.Note      `json:"note"`
	Memo       note.Memo      `json:"-"`
	Commitment sprout.Uint256 `json:"commitment"`
	Nullifier  sprout.Uint256 `json:"nullifier"`
}

// Scan trial-decrypts every JoinSplit ciphertext with key and returns the
// notes whose commitment matches the description. Ciphertexts addressed to
// other keys are skipped.
func (t *Transaction) Scan(key keys.SpendingKey) ([]ReceivedNote, error) {
	if !t.hasJoinSplits() {
		return nil, nil
	}
	dec, err := key.Decryptor()
	if err != nil {
		return nil, err
	}
	aPk := key.APk()
	pubKeyHash := sprout.Uint256(t.JoinSplitPubKey)

	var found []ReceivedNote
	for j, d := range t.JoinSplits {
		hSig := d.HSig(pubKeyHash)
		for i := range d.Ciphertexts {
			pt, err := note.DecryptPlaintext(dec, d.Ciphertexts[i][:], d.EphemeralKey, hSig, uint8(i))
			if err != nil {
				if sprout.HasCode(err, sprout.ErrDecryption) ||
					sprout.HasCode(err, sprout.ErrKeyAgreement) ||
					sprout.HasCode(err, sprout.ErrInvalidEncoding) ||
					sprout.HasCode(err, sprout.ErrValueOutOfRange) {
					continue
				}
				return nil, err
			}
			n := pt.Note(aPk)
			cm := n.Commitment()
			if cm != d.Commitments[i] {
				continue
			}
			found = append(found, ReceivedNote{
				JoinSplit:  j,
				Output:     i,
				Note:       n,
				Memo:       pt.Memo,
				Commitment: cm,
				Nullifier:  n.Nullifier(key),
			})
		}
	}
	return found, nil
}

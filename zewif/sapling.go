package zewif

import (
	"zewif.dev/zewif/envelope"
)

// Sapling shielded pool records. Spend and output descriptions mirror the
// per-transaction data a wallet keeps for notes it can see; sent outputs
// are the sender-side note details needed to later prove or rediscover a
// payment. All three carry attachments.

// SaplingSpendDescription records one Sapling spend within a transaction.
type SaplingSpendDescription struct {
	spendIndex   uint32
	value        *Amount
	anchorHeight *BlockHeight
	nullifier    []byte
	zkproof      []byte
	attachments  Attachments
}

func NewSaplingSpendDescription(spendIndex uint32, nullifier, zkproof []byte) (*SaplingSpendDescription, error) {
	if len(nullifier) != 32 {
		return nil, newError(KindInvalidValue, "ZEWIF-MODEL-060", "nullifier must be 32 bytes")
	}
	return &SaplingSpendDescription{
		spendIndex: spendIndex,
		nullifier:  append([]byte(nil), nullifier...),
		zkproof:    append([]byte(nil), zkproof...),
	}, nil
}

func (s *SaplingSpendDescription) SpendIndex() uint32 { return s.spendIndex }

func (s *SaplingSpendDescription) Nullifier() []byte { return append([]byte(nil), s.nullifier...) }

func (s *SaplingSpendDescription) ZKProof() []byte { return append([]byte(nil), s.zkproof...) }

// Value is the note value when the source wallet knew it.
func (s *SaplingSpendDescription) Value() (Amount, bool) {
	if s.value == nil {
		return 0, false
	}
	return *s.value, true
}

func (s *SaplingSpendDescription) SetValue(v Amount) { s.value = &v }

func (s *SaplingSpendDescription) AnchorHeight() (BlockHeight, bool) {
	if s.anchorHeight == nil {
		return 0, false
	}
	return *s.anchorHeight, true
}

func (s *SaplingSpendDescription) SetAnchorHeight(h BlockHeight) { s.anchorHeight = &h }

func (s *SaplingSpendDescription) Attachments() *Attachments { return &s.attachments }

func (s *SaplingSpendDescription) envelope() *envelope.Envelope {
	e := envelope.NewUint(uint64(s.spendIndex)).
		WithType("SaplingSpendDescription").
		WithAssertion(pred("nullifier"), bytesLeaf(s.nullifier)).
		WithAssertion(pred("zkproof"), bytesLeaf(s.zkproof))
	if s.value != nil {
		e = e.WithAssertion(pred("value"), amountLeaf(*s.value))
	}
	if s.anchorHeight != nil {
		e = e.WithAssertion(pred("anchor_height"), envelope.NewUint(uint64(*s.anchorHeight)))
	}
	return s.attachments.addToEnvelope(e)
}

func saplingSpendFromEnvelope(e *envelope.Envelope) (*SaplingSpendDescription, error) {
	if err := checkType(e, "SaplingSpendDescription"); err != nil {
		return nil, err
	}
	idx, err := subjectUint32(e)
	if err != nil {
		return nil, err
	}
	nullifier, err := requiredBytes(e, "nullifier")
	if err != nil {
		return nil, err
	}
	zkproof, err := requiredBytes(e, "zkproof")
	if err != nil {
		return nil, err
	}
	s, err := NewSaplingSpendDescription(idx, nullifier, zkproof)
	if err != nil {
		return nil, err
	}
	if obj, err := optionalObject(e, "value"); err != nil {
		return nil, err
	} else if obj != nil {
		v, err := amountFromEnvelope(obj, "value")
		if err != nil {
			return nil, err
		}
		s.SetValue(v)
	}
	if h, err := optionalUint(e, "anchor_height"); err != nil {
		return nil, err
	} else if h != nil {
		v, err := toUint32(*h, "anchor_height")
		if err != nil {
			return nil, err
		}
		s.SetAnchorHeight(BlockHeight(v))
	}
	if s.attachments, err = attachmentsFromEnvelope(e); err != nil {
		return nil, err
	}
	return s, nil
}

// SaplingOutputDescription records one Sapling output within a
// transaction, including the witness data a receiving wallet needs to
// spend the note later.
type SaplingOutputDescription struct {
	outputIndex    uint32
	commitment     []byte
	ephemeralKey   []byte
	encCiphertext  []byte
	memo           []byte
	treePosition   uint64
	witness        *IncrementalWitness
	attachments    Attachments
	hasTreePosition bool
}

func NewSaplingOutputDescription(outputIndex uint32, commitment, ephemeralKey, encCiphertext []byte) (*SaplingOutputDescription, error) {
	if len(commitment) != 32 {
		return nil, newError(KindInvalidValue, "ZEWIF-MODEL-061", "note commitment must be 32 bytes")
	}
	if len(ephemeralKey) != 32 {
		return nil, newError(KindInvalidValue, "ZEWIF-MODEL-062", "ephemeral key must be 32 bytes")
	}
	return &SaplingOutputDescription{
		outputIndex:   outputIndex,
		commitment:    append([]byte(nil), commitment...),
		ephemeralKey:  append([]byte(nil), ephemeralKey...),
		encCiphertext: append([]byte(nil), encCiphertext...),
	}, nil
}

func (o *SaplingOutputDescription) OutputIndex() uint32 { return o.outputIndex }

func (o *SaplingOutputDescription) Commitment() []byte { return append([]byte(nil), o.commitment...) }

func (o *SaplingOutputDescription) EphemeralKey() []byte {
	return append([]byte(nil), o.ephemeralKey...)
}

func (o *SaplingOutputDescription) EncCiphertext() []byte {
	return append([]byte(nil), o.encCiphertext...)
}

func (o *SaplingOutputDescription) Memo() ([]byte, bool) {
	if o.memo == nil {
		return nil, false
	}
	return append([]byte(nil), o.memo...), true
}

func (o *SaplingOutputDescription) SetMemo(memo []byte) {
	o.memo = append([]byte(nil), memo...)
}

func (o *SaplingOutputDescription) TreePosition() (uint64, bool) {
	return o.treePosition, o.hasTreePosition
}

func (o *SaplingOutputDescription) SetTreePosition(pos uint64) {
	o.treePosition = pos
	o.hasTreePosition = true
}

func (o *SaplingOutputDescription) Witness() (*IncrementalWitness, bool) {
	return o.witness, o.witness != nil
}

func (o *SaplingOutputDescription) SetWitness(w IncrementalWitness) { o.witness = &w }

func (o *SaplingOutputDescription) Attachments() *Attachments { return &o.attachments }

func (o *SaplingOutputDescription) envelope() *envelope.Envelope {
	e := envelope.NewUint(uint64(o.outputIndex)).
		WithType("SaplingOutputDescription").
		WithAssertion(pred("commitment"), bytesLeaf(o.commitment)).
		WithAssertion(pred("ephemeral_key"), bytesLeaf(o.ephemeralKey)).
		WithAssertion(pred("enc_ciphertext"), bytesLeaf(o.encCiphertext))
	if o.memo != nil {
		e = e.WithAssertion(pred("memo"), bytesLeaf(o.memo))
	}
	if o.hasTreePosition {
		e = e.WithAssertion(pred("note_commitment_tree_position"), envelope.NewUint(o.treePosition))
	}
	if o.witness != nil {
		e = e.WithAssertion(pred("witness"), o.witness.envelope("SaplingWitness"))
	}
	return o.attachments.addToEnvelope(e)
}

func saplingOutputFromEnvelope(e *envelope.Envelope) (*SaplingOutputDescription, error) {
	if err := checkType(e, "SaplingOutputDescription"); err != nil {
		return nil, err
	}
	idx, err := subjectUint32(e)
	if err != nil {
		return nil, err
	}
	commitment, err := requiredBytes(e, "commitment")
	if err != nil {
		return nil, err
	}
	ephemeralKey, err := requiredBytes(e, "ephemeral_key")
	if err != nil {
		return nil, err
	}
	ciphertext, err := requiredBytes(e, "enc_ciphertext")
	if err != nil {
		return nil, err
	}
	o, err := NewSaplingOutputDescription(idx, commitment, ephemeralKey, ciphertext)
	if err != nil {
		return nil, err
	}
	memo, err := optionalBytes(e, "memo")
	if err != nil {
		return nil, err
	}
	if memo != nil {
		o.SetMemo(memo)
	}
	if pos, err := optionalUint(e, "note_commitment_tree_position"); err != nil {
		return nil, err
	} else if pos != nil {
		o.SetTreePosition(*pos)
	}
	if obj, err := optionalObject(e, "witness"); err != nil {
		return nil, err
	} else if obj != nil {
		w, err := witnessFromEnvelope(obj, "SaplingWitness")
		if err != nil {
			return nil, err
		}
		o.SetWitness(w)
	}
	if o.attachments, err = attachmentsFromEnvelope(e); err != nil {
		return nil, err
	}
	return o, nil
}

// SaplingSentOutput is the sender-side record of a Sapling note: enough
// detail to reconstruct the note commitment and prove the payment.
type SaplingSentOutput struct {
	recipientAddress   string
	diversifier        []byte
	recipientPublicKey []byte
	value              Amount
	rcm                []byte
	memo               []byte
	attachments        Attachments
}

func NewSaplingSentOutput(recipientAddress string, diversifier, recipientPublicKey []byte, value Amount, rcm []byte) (*SaplingSentOutput, error) {
	if len(diversifier) != 11 {
		return nil, newError(KindInvalidValue, "ZEWIF-MODEL-063", "diversifier must be 11 bytes")
	}
	if len(recipientPublicKey) != 32 {
		return nil, newError(KindInvalidValue, "ZEWIF-MODEL-064", "recipient public key must be 32 bytes")
	}
	if len(rcm) != 32 {
		return nil, newError(KindInvalidValue, "ZEWIF-MODEL-065", "rcm must be 32 bytes")
	}
	return &SaplingSentOutput{
		recipientAddress:   recipientAddress,
		diversifier:        append([]byte(nil), diversifier...),
		recipientPublicKey: append([]byte(nil), recipientPublicKey...),
		value:              value,
		rcm:                append([]byte(nil), rcm...),
	}, nil
}

func (s *SaplingSentOutput) RecipientAddress() string { return s.recipientAddress }

func (s *SaplingSentOutput) Diversifier() []byte { return append([]byte(nil), s.diversifier...) }

func (s *SaplingSentOutput) RecipientPublicKey() []byte {
	return append([]byte(nil), s.recipientPublicKey...)
}

func (s *SaplingSentOutput) Value() Amount { return s.value }

func (s *SaplingSentOutput) Rcm() []byte { return append([]byte(nil), s.rcm...) }

func (s *SaplingSentOutput) Memo() ([]byte, bool) {
	if s.memo == nil {
		return nil, false
	}
	return append([]byte(nil), s.memo...), true
}

func (s *SaplingSentOutput) SetMemo(memo []byte) { s.memo = append([]byte(nil), memo...) }

func (s *SaplingSentOutput) Attachments() *Attachments { return &s.attachments }

func (s *SaplingSentOutput) envelope() *envelope.Envelope {
	e := envelope.NewText(s.recipientAddress).
		WithType("SaplingSentOutput").
		WithAssertion(pred("diversifier"), bytesLeaf(s.diversifier)).
		WithAssertion(pred("recipient_public_key"), bytesLeaf(s.recipientPublicKey)).
		WithAssertion(pred("value"), amountLeaf(s.value)).
		WithAssertion(pred("rcm"), bytesLeaf(s.rcm))
	if s.memo != nil {
		e = e.WithAssertion(pred("memo"), bytesLeaf(s.memo))
	}
	return s.attachments.addToEnvelope(e)
}

func saplingSentOutputFromEnvelope(e *envelope.Envelope) (*SaplingSentOutput, error) {
	if err := checkType(e, "SaplingSentOutput"); err != nil {
		return nil, err
	}
	recipient, err := envelope.ExtractText(e.Subject())
	if err != nil {
		return nil, wrapError(KindInvalidValue, "ZEWIF-MODEL-066", "sent output subject", err)
	}
	diversifier, err := requiredBytes(e, "diversifier")
	if err != nil {
		return nil, err
	}
	pk, err := requiredBytes(e, "recipient_public_key")
	if err != nil {
		return nil, err
	}
	valueObj, err := requiredObject(e, "value")
	if err != nil {
		return nil, err
	}
	value, err := amountFromEnvelope(valueObj, "value")
	if err != nil {
		return nil, err
	}
	rcm, err := requiredBytes(e, "rcm")
	if err != nil {
		return nil, err
	}
	s, err := NewSaplingSentOutput(recipient, diversifier, pk, value, rcm)
	if err != nil {
		return nil, err
	}
	memo, err := optionalBytes(e, "memo")
	if err != nil {
		return nil, err
	}
	if memo != nil {
		s.SetMemo(memo)
	}
	if s.attachments, err = attachmentsFromEnvelope(e); err != nil {
		return nil, err
	}
	return s, nil
}

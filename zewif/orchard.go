package zewif

import (
	"zewif.dev/zewif/envelope"
)

// Orchard shielded pool records. An Orchard action is both a spend and an
// output, so a single action description carries the nullifier of the
// spent note alongside the commitment and ciphertext of the created one.

// OrchardActionDescription records one Orchard action within a
// transaction.
type OrchardActionDescription struct {
	actionIndex     uint32
	anchor          []byte
	nullifier       []byte
	zkproof         []byte
	commitment      []byte
	ephemeralKey    []byte
	encCiphertext   []byte
	memo            []byte
	treePosition    uint64
	hasTreePosition bool
	witness         *IncrementalWitness
	attachments     Attachments
}

func NewOrchardActionDescription(actionIndex uint32, anchor, nullifier, commitment, ephemeralKey, encCiphertext []byte) (*OrchardActionDescription, error) {
	for _, f := range []struct {
		name string
		b    []byte
	}{
		{"anchor", anchor},
		{"nullifier", nullifier},
		{"commitment", commitment},
		{"ephemeral key", ephemeralKey},
	} {
		if len(f.b) != 32 {
			return nil, newError(KindInvalidValue, "ZEWIF-MODEL-070", f.name+" must be 32 bytes")
		}
	}
	return &OrchardActionDescription{
		actionIndex:   actionIndex,
		anchor:        append([]byte(nil), anchor...),
		nullifier:     append([]byte(nil), nullifier...),
		commitment:    append([]byte(nil), commitment...),
		ephemeralKey:  append([]byte(nil), ephemeralKey...),
		encCiphertext: append([]byte(nil), encCiphertext...),
	}, nil
}

func (a *OrchardActionDescription) ActionIndex() uint32 { return a.actionIndex }

func (a *OrchardActionDescription) Anchor() []byte { return append([]byte(nil), a.anchor...) }

func (a *OrchardActionDescription) Nullifier() []byte { return append([]byte(nil), a.nullifier...) }

func (a *OrchardActionDescription) Commitment() []byte { return append([]byte(nil), a.commitment...) }

func (a *OrchardActionDescription) EphemeralKey() []byte {
	return append([]byte(nil), a.ephemeralKey...)
}

func (a *OrchardActionDescription) EncCiphertext() []byte {
	return append([]byte(nil), a.encCiphertext...)
}

func (a *OrchardActionDescription) ZKProof() ([]byte, bool) {
	if a.zkproof == nil {
		return nil, false
	}
	return append([]byte(nil), a.zkproof...), true
}

func (a *OrchardActionDescription) SetZKProof(zkproof []byte) {
	a.zkproof = append([]byte(nil), zkproof...)
}

func (a *OrchardActionDescription) Memo() ([]byte, bool) {
	if a.memo == nil {
		return nil, false
	}
	return append([]byte(nil), a.memo...), true
}

func (a *OrchardActionDescription) SetMemo(memo []byte) { a.memo = append([]byte(nil), memo...) }

func (a *OrchardActionDescription) TreePosition() (uint64, bool) {
	return a.treePosition, a.hasTreePosition
}

func (a *OrchardActionDescription) SetTreePosition(pos uint64) {
	a.treePosition = pos
	a.hasTreePosition = true
}

func (a *OrchardActionDescription) Witness() (*IncrementalWitness, bool) {
	return a.witness, a.witness != nil
}

func (a *OrchardActionDescription) SetWitness(w IncrementalWitness) { a.witness = &w }

func (a *OrchardActionDescription) Attachments() *Attachments { return &a.attachments }

func (a *OrchardActionDescription) envelope() *envelope.Envelope {
	e := envelope.NewUint(uint64(a.actionIndex)).
		WithType("OrchardActionDescription").
		WithAssertion(pred("anchor"), bytesLeaf(a.anchor)).
		WithAssertion(pred("nullifier"), bytesLeaf(a.nullifier)).
		WithAssertion(pred("commitment"), bytesLeaf(a.commitment)).
		WithAssertion(pred("ephemeral_key"), bytesLeaf(a.ephemeralKey)).
		WithAssertion(pred("enc_ciphertext"), bytesLeaf(a.encCiphertext))
	if a.zkproof != nil {
		e = e.WithAssertion(pred("zkproof"), bytesLeaf(a.zkproof))
	}
	if a.memo != nil {
		e = e.WithAssertion(pred("memo"), bytesLeaf(a.memo))
	}
	if a.hasTreePosition {
		e = e.WithAssertion(pred("note_commitment_tree_position"), envelope.NewUint(a.treePosition))
	}
	if a.witness != nil {
		e = e.WithAssertion(pred("witness"), a.witness.envelope("OrchardWitness"))
	}
	return a.attachments.addToEnvelope(e)
}

func orchardActionFromEnvelope(e *envelope.Envelope) (*OrchardActionDescription, error) {
	if err := checkType(e, "OrchardActionDescription"); err != nil {
		return nil, err
	}
	idx, err := subjectUint32(e)
	if err != nil {
		return nil, err
	}
	anchor, err := requiredBytes(e, "anchor")
	if err != nil {
		return nil, err
	}
	nullifier, err := requiredBytes(e, "nullifier")
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
	a, err := NewOrchardActionDescription(idx, anchor, nullifier, commitment, ephemeralKey, ciphertext)
	if err != nil {
		return nil, err
	}
	zkproof, err := optionalBytes(e, "zkproof")
	if err != nil {
		return nil, err
	}
	if zkproof != nil {
		a.SetZKProof(zkproof)
	}
	memo, err := optionalBytes(e, "memo")
	if err != nil {
		return nil, err
	}
	if memo != nil {
		a.SetMemo(memo)
	}
	if pos, err := optionalUint(e, "note_commitment_tree_position"); err != nil {
		return nil, err
	} else if pos != nil {
		a.SetTreePosition(*pos)
	}
	if obj, err := optionalObject(e, "witness"); err != nil {
		return nil, err
	} else if obj != nil {
		w, err := witnessFromEnvelope(obj, "OrchardWitness")
		if err != nil {
			return nil, err
		}
		a.SetWitness(w)
	}
	if a.attachments, err = attachmentsFromEnvelope(e); err != nil {
		return nil, err
	}
	return a, nil
}

// OrchardSentOutput is the sender-side record of an Orchard note. Orchard
// note commitments need rho and psi in addition to the rcm randomness.
type OrchardSentOutput struct {
	recipientAddress   string
	diversifier        []byte
	recipientPublicKey []byte
	value              Amount
	rho                []byte
	psi                []byte
	rcm                []byte
	memo               []byte
	attachments        Attachments
}

func NewOrchardSentOutput(recipientAddress string, diversifier, recipientPublicKey []byte, value Amount, rho, psi, rcm []byte) (*OrchardSentOutput, error) {
	if len(diversifier) != 11 {
		return nil, newError(KindInvalidValue, "ZEWIF-MODEL-071", "diversifier must be 11 bytes")
	}
	for _, f := range []struct {
		name string
		b    []byte
	}{
		{"recipient public key", recipientPublicKey},
		{"rho", rho},
		{"psi", psi},
		{"rcm", rcm},
	} {
		if len(f.b) != 32 {
			return nil, newError(KindInvalidValue, "ZEWIF-MODEL-072", f.name+" must be 32 bytes")
		}
	}
	return &OrchardSentOutput{
		recipientAddress:   recipientAddress,
		diversifier:        append([]byte(nil), diversifier...),
		recipientPublicKey: append([]byte(nil), recipientPublicKey...),
		value:              value,
		rho:                append([]byte(nil), rho...),
		psi:                append([]byte(nil), psi...),
		rcm:                append([]byte(nil), rcm...),
	}, nil
}

func (s *OrchardSentOutput) RecipientAddress() string { return s.recipientAddress }

func (s *OrchardSentOutput) Diversifier() []byte { return append([]byte(nil), s.diversifier...) }

func (s *OrchardSentOutput) RecipientPublicKey() []byte {
	return append([]byte(nil), s.recipientPublicKey...)
}

func (s *OrchardSentOutput) Value() Amount { return s.value }

func (s *OrchardSentOutput) Rho() []byte { return append([]byte(nil), s.rho...) }

func (s *OrchardSentOutput) Psi() []byte { return append([]byte(nil), s.psi...) }

func (s *OrchardSentOutput) Rcm() []byte { return append([]byte(nil), s.rcm...) }

func (s *OrchardSentOutput) Memo() ([]byte, bool) {
	if s.memo == nil {
		return nil, false
	}
	return append([]byte(nil), s.memo...), true
}

func (s *OrchardSentOutput) SetMemo(memo []byte) { s.memo = append([]byte(nil), memo...) }

func (s *OrchardSentOutput) Attachments() *Attachments { return &s.attachments }

func (s *OrchardSentOutput) envelope() *envelope.Envelope {
	e := envelope.NewText(s.recipientAddress).
		WithType("OrchardSentOutput").
		WithAssertion(pred("diversifier"), bytesLeaf(s.diversifier)).
		WithAssertion(pred("recipient_public_key"), bytesLeaf(s.recipientPublicKey)).
		WithAssertion(pred("value"), amountLeaf(s.value)).
		WithAssertion(pred("rho"), bytesLeaf(s.rho)).
		WithAssertion(pred("psi"), bytesLeaf(s.psi)).
		WithAssertion(pred("rcm"), bytesLeaf(s.rcm))
	if s.memo != nil {
		e = e.WithAssertion(pred("memo"), bytesLeaf(s.memo))
	}
	return s.attachments.addToEnvelope(e)
}

func orchardSentOutputFromEnvelope(e *envelope.Envelope) (*OrchardSentOutput, error) {
	if err := checkType(e, "OrchardSentOutput"); err != nil {
		return nil, err
	}
	recipient, err := envelope.ExtractText(e.Subject())
	if err != nil {
		return nil, wrapError(KindInvalidValue, "ZEWIF-MODEL-073", "sent output subject", err)
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
	rho, err := requiredBytes(e, "rho")
	if err != nil {
		return nil, err
	}
	psi, err := requiredBytes(e, "psi")
	if err != nil {
		return nil, err
	}
	rcm, err := requiredBytes(e, "rcm")
	if err != nil {
		return nil, err
	}
	s, err := NewOrchardSentOutput(recipient, diversifier, pk, value, rho, psi, rcm)
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

package zewif

import (
	"zewif.dev/zewif/envelope"
)

// JoinSplitDescription records one legacy Sprout joinsplit: two input
// nullifiers, two output commitments, and the proof binding them to an
// anchor. Sprout data is carried for completeness; new wallets never
// create it but migrated history may still reference it.
type JoinSplitDescription struct {
	index       uint32
	anchor      []byte
	nullifiers  [2][]byte
	commitments [2][]byte
	zkproof     []byte
	attachments Attachments
}

func NewJoinSplitDescription(index uint32, anchor []byte, nullifiers, commitments [2][]byte, zkproof []byte) (*JoinSplitDescription, error) {
	if len(anchor) != 32 {
		return nil, newError(KindInvalidValue, "ZEWIF-MODEL-080", "anchor must be 32 bytes")
	}
	for i := 0; i < 2; i++ {
		if len(nullifiers[i]) != 32 || len(commitments[i]) != 32 {
			return nil, newError(KindInvalidValue, "ZEWIF-MODEL-081", "nullifiers and commitments must be 32 bytes")
		}
	}
	d := &JoinSplitDescription{
		index:   index,
		anchor:  append([]byte(nil), anchor...),
		zkproof: append([]byte(nil), zkproof...),
	}
	for i := 0; i < 2; i++ {
		d.nullifiers[i] = append([]byte(nil), nullifiers[i]...)
		d.commitments[i] = append([]byte(nil), commitments[i]...)
	}
	return d, nil
}

func (d *JoinSplitDescription) Index() uint32 { return d.index }

func (d *JoinSplitDescription) Anchor() []byte { return append([]byte(nil), d.anchor...) }

func (d *JoinSplitDescription) Nullifiers() [2][]byte {
	return [2][]byte{
		append([]byte(nil), d.nullifiers[0]...),
		append([]byte(nil), d.nullifiers[1]...),
	}
}

func (d *JoinSplitDescription) Commitments() [2][]byte {
	return [2][]byte{
		append([]byte(nil), d.commitments[0]...),
		append([]byte(nil), d.commitments[1]...),
	}
}

func (d *JoinSplitDescription) ZKProof() []byte { return append([]byte(nil), d.zkproof...) }

func (d *JoinSplitDescription) Attachments() *Attachments { return &d.attachments }

func (d *JoinSplitDescription) envelope() *envelope.Envelope {
	e := envelope.NewUint(uint64(d.index)).
		WithType("JoinSplitDescription").
		WithAssertion(pred("anchor"), bytesLeaf(d.anchor)).
		WithAssertion(pred("nullifiers"), hashListEnvelope(d.nullifiers[:])).
		WithAssertion(pred("commitments"), hashListEnvelope(d.commitments[:])).
		WithAssertion(pred("zkproof"), bytesLeaf(d.zkproof))
	return d.attachments.addToEnvelope(e)
}

func joinSplitFromEnvelope(e *envelope.Envelope) (*JoinSplitDescription, error) {
	if err := checkType(e, "JoinSplitDescription"); err != nil {
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
	pair := func(name string) ([2][]byte, error) {
		obj, err := requiredObject(e, name)
		if err != nil {
			return [2][]byte{}, err
		}
		list, err := hashListFromEnvelope(obj)
		if err != nil {
			return [2][]byte{}, err
		}
		if len(list) != 2 {
			return [2][]byte{}, newError(KindInvalidValue, "ZEWIF-MODEL-082", name+": expected exactly two entries")
		}
		return [2][]byte{list[0], list[1]}, nil
	}
	nullifiers, err := pair("nullifiers")
	if err != nil {
		return nil, err
	}
	commitments, err := pair("commitments")
	if err != nil {
		return nil, err
	}
	zkproof, err := requiredBytes(e, "zkproof")
	if err != nil {
		return nil, err
	}
	d, err := NewJoinSplitDescription(idx, anchor, nullifiers, commitments, zkproof)
	if err != nil {
		return nil, err
	}
	if d.attachments, err = attachmentsFromEnvelope(e); err != nil {
		return nil, err
	}
	return d, nil
}

package zewif

import (
	"zewif.dev/zewif/envelope"
)

// Transaction is the wallet's view of one transaction: identity, optional
// raw bytes and chain position, and per-pool component lists. Component
// lists are nil when the source wallet recorded nothing for that pool;
// they keep their source order through a round trip via index subjects.
type Transaction struct {
	txid             TxId
	raw              []byte
	minedHeight      *BlockHeight
	timestamp        *SecondsSinceEpoch
	status           *TransactionStatus
	blockHash        *BlockHash
	inputs           []*TxIn
	outputs          []*TxOut
	saplingSpends    []*SaplingSpendDescription
	saplingOutputs   []*SaplingOutputDescription
	orchardActions   []*OrchardActionDescription
	sproutJoinSplits []*JoinSplitDescription
	attachments      Attachments
}

func NewTransaction(txid TxId) *Transaction {
	return &Transaction{txid: txid}
}

func (t *Transaction) TxId() TxId { return t.txid }

func (t *Transaction) Raw() ([]byte, bool) {
	if t.raw == nil {
		return nil, false
	}
	return append([]byte(nil), t.raw...), true
}

func (t *Transaction) SetRaw(raw []byte) { t.raw = append([]byte(nil), raw...) }

func (t *Transaction) MinedHeight() (BlockHeight, bool) {
	if t.minedHeight == nil {
		return 0, false
	}
	return *t.minedHeight, true
}

func (t *Transaction) SetMinedHeight(h BlockHeight) { t.minedHeight = &h }

func (t *Transaction) Timestamp() (SecondsSinceEpoch, bool) {
	if t.timestamp == nil {
		return 0, false
	}
	return *t.timestamp, true
}

func (t *Transaction) SetTimestamp(ts SecondsSinceEpoch) { t.timestamp = &ts }

func (t *Transaction) Status() (TransactionStatus, bool) {
	if t.status == nil {
		return "", false
	}
	return *t.status, true
}

func (t *Transaction) SetStatus(s TransactionStatus) { t.status = &s }

func (t *Transaction) BlockHash() (BlockHash, bool) {
	if t.blockHash == nil {
		return BlockHash{}, false
	}
	return *t.blockHash, true
}

func (t *Transaction) SetBlockHash(h BlockHash) { t.blockHash = &h }

func (t *Transaction) Inputs() []*TxIn { return append([]*TxIn(nil), t.inputs...) }

func (t *Transaction) AddInput(in *TxIn) { t.inputs = append(t.inputs, in) }

func (t *Transaction) Outputs() []*TxOut { return append([]*TxOut(nil), t.outputs...) }

func (t *Transaction) AddOutput(out *TxOut) { t.outputs = append(t.outputs, out) }

func (t *Transaction) SaplingSpends() []*SaplingSpendDescription {
	return append([]*SaplingSpendDescription(nil), t.saplingSpends...)
}

func (t *Transaction) AddSaplingSpend(s *SaplingSpendDescription) {
	t.saplingSpends = append(t.saplingSpends, s)
}

func (t *Transaction) SaplingOutputs() []*SaplingOutputDescription {
	return append([]*SaplingOutputDescription(nil), t.saplingOutputs...)
}

func (t *Transaction) AddSaplingOutput(o *SaplingOutputDescription) {
	t.saplingOutputs = append(t.saplingOutputs, o)
}

func (t *Transaction) OrchardActions() []*OrchardActionDescription {
	return append([]*OrchardActionDescription(nil), t.orchardActions...)
}

func (t *Transaction) AddOrchardAction(a *OrchardActionDescription) {
	t.orchardActions = append(t.orchardActions, a)
}

func (t *Transaction) SproutJoinSplits() []*JoinSplitDescription {
	return append([]*JoinSplitDescription(nil), t.sproutJoinSplits...)
}

func (t *Transaction) AddSproutJoinSplit(d *JoinSplitDescription) {
	t.sproutJoinSplits = append(t.sproutJoinSplits, d)
}

func (t *Transaction) Attachments() *Attachments { return &t.attachments }

// Envelope renders the transaction as a typed envelope whose subject is
// the txid.
func (t *Transaction) Envelope() *envelope.Envelope {
	e := bytesLeaf(t.txid.Bytes()).WithType("Transaction")
	if t.raw != nil {
		e = e.WithAssertion(pred("raw"), bytesLeaf(t.raw))
	}
	if t.minedHeight != nil {
		e = e.WithAssertion(pred("mined_height"), envelope.NewUint(uint64(*t.minedHeight)))
	}
	if t.timestamp != nil {
		e = e.WithAssertion(pred("timestamp"), envelope.NewUint(uint64(*t.timestamp)))
	}
	if t.status != nil {
		e = e.WithAssertion(pred("status"), envelope.NewText(string(*t.status)))
	}
	if t.blockHash != nil {
		e = e.WithAssertion(pred("block_hash"), bytesLeaf(t.blockHash[:]))
	}
	for _, in := range t.inputs {
		e = e.WithAssertion(pred("input"), in.envelope())
	}
	for _, out := range t.outputs {
		e = e.WithAssertion(pred("output"), out.envelope())
	}
	for _, s := range t.saplingSpends {
		e = e.WithAssertion(pred("sapling_spend"), s.envelope())
	}
	for _, o := range t.saplingOutputs {
		e = e.WithAssertion(pred("sapling_output"), o.envelope())
	}
	for _, a := range t.orchardActions {
		e = e.WithAssertion(pred("orchard_action"), a.envelope())
	}
	for _, d := range t.sproutJoinSplits {
		e = e.WithAssertion(pred("sprout_joinsplit"), d.envelope())
	}
	return t.attachments.addToEnvelope(e)
}

// TransactionFromEnvelope decodes a typed transaction envelope.
func TransactionFromEnvelope(e *envelope.Envelope) (*Transaction, error) {
	if err := checkType(e, "Transaction"); err != nil {
		return nil, err
	}
	b, err := subjectBytes(e)
	if err != nil {
		return nil, err
	}
	txid, err := TxIdFromBytes(b)
	if err != nil {
		return nil, err
	}
	t := NewTransaction(txid)
	raw, err := optionalBytes(e, "raw")
	if err != nil {
		return nil, err
	}
	if raw != nil {
		t.SetRaw(raw)
	}
	if h, err := optionalUint(e, "mined_height"); err != nil {
		return nil, err
	} else if h != nil {
		v, err := toUint32(*h, "mined_height")
		if err != nil {
			return nil, err
		}
		t.SetMinedHeight(BlockHeight(v))
	}
	if ts, err := optionalUint(e, "timestamp"); err != nil {
		return nil, err
	} else if ts != nil {
		t.SetTimestamp(SecondsSinceEpoch(*ts))
	}
	if s, err := optionalText(e, "status"); err != nil {
		return nil, err
	} else if s != nil {
		status, err := ParseTransactionStatus(*s)
		if err != nil {
			return nil, err
		}
		t.SetStatus(status)
	}
	hashBytes, err := optionalBytes(e, "block_hash")
	if err != nil {
		return nil, err
	}
	if hashBytes != nil {
		hash, err := BlockHashFromBytes(hashBytes)
		if err != nil {
			return nil, err
		}
		t.SetBlockHash(hash)
	}
	inputs, err := indexedObjects(e, "input")
	if err != nil {
		return nil, err
	}
	for _, obj := range inputs {
		in, err := txInFromEnvelope(obj)
		if err != nil {
			return nil, err
		}
		t.AddInput(in)
	}
	outputs, err := indexedObjects(e, "output")
	if err != nil {
		return nil, err
	}
	for _, obj := range outputs {
		out, err := txOutFromEnvelope(obj)
		if err != nil {
			return nil, err
		}
		t.AddOutput(out)
	}
	spends, err := indexedObjects(e, "sapling_spend")
	if err != nil {
		return nil, err
	}
	for _, obj := range spends {
		s, err := saplingSpendFromEnvelope(obj)
		if err != nil {
			return nil, err
		}
		t.AddSaplingSpend(s)
	}
	souts, err := indexedObjects(e, "sapling_output")
	if err != nil {
		return nil, err
	}
	for _, obj := range souts {
		o, err := saplingOutputFromEnvelope(obj)
		if err != nil {
			return nil, err
		}
		t.AddSaplingOutput(o)
	}
	actions, err := indexedObjects(e, "orchard_action")
	if err != nil {
		return nil, err
	}
	for _, obj := range actions {
		a, err := orchardActionFromEnvelope(obj)
		if err != nil {
			return nil, err
		}
		t.AddOrchardAction(a)
	}
	joinsplits, err := indexedObjects(e, "sprout_joinsplit")
	if err != nil {
		return nil, err
	}
	for _, obj := range joinsplits {
		d, err := joinSplitFromEnvelope(obj)
		if err != nil {
			return nil, err
		}
		t.AddSproutJoinSplit(d)
	}
	if t.attachments, err = attachmentsFromEnvelope(e); err != nil {
		return nil, err
	}
	return t, nil
}

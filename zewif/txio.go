package zewif

import (
	"fmt"

	"zewif.dev/zewif/envelope"
)

// Transparent transaction plumbing: outpoints, inputs, and outputs.

// TxOutPoint references an output of a previous transaction.
type TxOutPoint struct {
	txid  TxId
	index uint32
}

func NewTxOutPoint(txid TxId, index uint32) TxOutPoint {
	return TxOutPoint{txid: txid, index: index}
}

func (p TxOutPoint) TxId() TxId { return p.txid }

func (p TxOutPoint) Index() uint32 { return p.index }

func (p TxOutPoint) String() string { return fmt.Sprintf("%s:%d", p.txid, p.index) }

func (p TxOutPoint) envelope() *envelope.Envelope {
	return bytesLeaf(p.txid.Bytes()).
		WithType("TxOutPoint").
		WithAssertion(pred("index"), envelope.NewUint(uint64(p.index)))
}

func txOutPointFromEnvelope(e *envelope.Envelope) (TxOutPoint, error) {
	if err := checkType(e, "TxOutPoint"); err != nil {
		return TxOutPoint{}, err
	}
	b, err := subjectBytes(e)
	if err != nil {
		return TxOutPoint{}, err
	}
	txid, err := TxIdFromBytes(b)
	if err != nil {
		return TxOutPoint{}, err
	}
	idx, err := requiredUint(e, "index")
	if err != nil {
		return TxOutPoint{}, err
	}
	idx32, err := toUint32(idx, "index")
	if err != nil {
		return TxOutPoint{}, err
	}
	return NewTxOutPoint(txid, idx32), nil
}

// TxIn is one transparent input of a transaction.
type TxIn struct {
	inputIndex     uint32
	previousOutput TxOutPoint
	scriptSig      []byte
	sequence       uint32
	attachments    Attachments
}

func NewTxIn(inputIndex uint32, previousOutput TxOutPoint, scriptSig []byte, sequence uint32) *TxIn {
	return &TxIn{
		inputIndex:     inputIndex,
		previousOutput: previousOutput,
		scriptSig:      append([]byte(nil), scriptSig...),
		sequence:       sequence,
	}
}

func (in *TxIn) InputIndex() uint32 { return in.inputIndex }

func (in *TxIn) PreviousOutput() TxOutPoint { return in.previousOutput }

func (in *TxIn) ScriptSig() []byte { return append([]byte(nil), in.scriptSig...) }

func (in *TxIn) Sequence() uint32 { return in.sequence }

func (in *TxIn) Attachments() *Attachments { return &in.attachments }

func (in *TxIn) envelope() *envelope.Envelope {
	e := envelope.NewUint(uint64(in.inputIndex)).
		WithType("TxIn").
		WithAssertion(pred("previous_output"), in.previousOutput.envelope()).
		WithAssertion(pred("script_sig"), bytesLeaf(in.scriptSig)).
		WithAssertion(pred("sequence"), envelope.NewUint(uint64(in.sequence)))
	return in.attachments.addToEnvelope(e)
}

func txInFromEnvelope(e *envelope.Envelope) (*TxIn, error) {
	if err := checkType(e, "TxIn"); err != nil {
		return nil, err
	}
	idx, err := subjectUint32(e)
	if err != nil {
		return nil, err
	}
	prevObj, err := requiredObject(e, "previous_output")
	if err != nil {
		return nil, err
	}
	prev, err := txOutPointFromEnvelope(prevObj)
	if err != nil {
		return nil, err
	}
	scriptSig, err := requiredBytes(e, "script_sig")
	if err != nil {
		return nil, err
	}
	sequence, err := requiredUint(e, "sequence")
	if err != nil {
		return nil, err
	}
	seq32, err := toUint32(sequence, "sequence")
	if err != nil {
		return nil, err
	}
	in := NewTxIn(idx, prev, scriptSig, seq32)
	if in.attachments, err = attachmentsFromEnvelope(e); err != nil {
		return nil, err
	}
	return in, nil
}

// TxOut is one transparent output of a transaction.
type TxOut struct {
	outputIndex  uint32
	value        Amount
	scriptPubKey []byte
	attachments  Attachments
}

func NewTxOut(outputIndex uint32, value Amount, scriptPubKey []byte) *TxOut {
	return &TxOut{
		outputIndex:  outputIndex,
		value:        value,
		scriptPubKey: append([]byte(nil), scriptPubKey...),
	}
}

func (out *TxOut) OutputIndex() uint32 { return out.outputIndex }

func (out *TxOut) Value() Amount { return out.value }

func (out *TxOut) ScriptPubKey() []byte { return append([]byte(nil), out.scriptPubKey...) }

func (out *TxOut) Attachments() *Attachments { return &out.attachments }

func (out *TxOut) envelope() *envelope.Envelope {
	e := envelope.NewUint(uint64(out.outputIndex)).
		WithType("TxOut").
		WithAssertion(pred("value"), amountLeaf(out.value)).
		WithAssertion(pred("script_pubkey"), bytesLeaf(out.scriptPubKey))
	return out.attachments.addToEnvelope(e)
}

func txOutFromEnvelope(e *envelope.Envelope) (*TxOut, error) {
	if err := checkType(e, "TxOut"); err != nil {
		return nil, err
	}
	idx, err := subjectUint32(e)
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
	scriptPubKey, err := requiredBytes(e, "script_pubkey")
	if err != nil {
		return nil, err
	}
	out := NewTxOut(idx, value, scriptPubKey)
	if out.attachments, err = attachmentsFromEnvelope(e); err != nil {
		return nil, err
	}
	return out, nil
}

// Package zewif is the canonical wallet interchange data model: an
// interchange root owning wallets, accounts, addresses, and a shared
// transaction map, all rendered to and from typed envelopes. The model is
// built once per export from a complete front-end traversal, encoded
// wholesale, and decoded wholesale on import.
package zewif

import (
	"bytes"
	"sort"

	"zewif.dev/zewif/envelope"
)

// Zewif is the interchange root of one wallet-migration export.
type Zewif struct {
	id           ID
	wallets      []*Wallet
	transactions map[TxId]*Transaction
	exportHeight BlockHeight
	attachments  Attachments
}

// NewZewif builds an empty interchange root with a fresh identifier.
// exportHeight is the chain height at the time of export.
func NewZewif(exportHeight BlockHeight) *Zewif {
	return &Zewif{
		id:           NewID(),
		transactions: make(map[TxId]*Transaction),
		exportHeight: exportHeight,
	}
}

func (z *Zewif) ID() ID { return z.id }

func (z *Zewif) ExportHeight() BlockHeight { return z.exportHeight }

// Wallets returns the wallets in containment order.
func (z *Zewif) Wallets() []*Wallet { return append([]*Wallet(nil), z.wallets...) }

func (z *Zewif) AddWallet(w *Wallet) { z.wallets = append(z.wallets, w) }

// Transaction looks up a transaction by id in the shared map.
func (z *Zewif) Transaction(txid TxId) (*Transaction, bool) {
	t, ok := z.transactions[txid]
	return t, ok
}

// AddTransaction inserts a transaction into the shared map. Txids are
// unique; inserting a second transaction with the same id fails.
func (z *Zewif) AddTransaction(t *Transaction) error {
	if _, ok := z.transactions[t.TxId()]; ok {
		return newError(KindInvalidValue, "ZEWIF-MODEL-110", "duplicate transaction "+t.TxId().String())
	}
	z.transactions[t.TxId()] = t
	return nil
}

// Transactions returns the shared map's transactions sorted by txid byte
// order. The map has no inherent order; sorting keeps encoding and
// iteration deterministic.
func (z *Zewif) Transactions() []*Transaction {
	out := make([]*Transaction, 0, len(z.transactions))
	for _, t := range z.transactions {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].TxId(), out[j].TxId()
		return bytes.Compare(a[:], b[:]) < 0
	})
	return out
}

func (z *Zewif) Attachments() *Attachments { return &z.attachments }

// Envelope renders the complete interchange root as a typed envelope whose
// subject is the root identifier.
func (z *Zewif) Envelope() *envelope.Envelope {
	e := bytesLeaf(z.id[:]).
		WithType("Zewif").
		WithAssertion(pred("export_height"), envelope.NewUint(uint64(z.exportHeight)))
	for _, w := range z.wallets {
		e = e.WithAssertion(pred("wallet"), w.envelope())
	}
	for _, t := range z.Transactions() {
		e = e.WithAssertion(pred("transaction"), t.Envelope())
	}
	return z.attachments.addToEnvelope(e)
}

// Encode renders the root envelope to canonical bytes.
func (z *Zewif) Encode() []byte {
	return z.Envelope().Encode()
}

// ZewifFromEnvelope decodes a typed interchange root envelope.
func ZewifFromEnvelope(e *envelope.Envelope) (*Zewif, error) {
	if err := checkType(e, "Zewif"); err != nil {
		return nil, err
	}
	idBytes, err := subjectBytes(e)
	if err != nil {
		return nil, err
	}
	if len(idBytes) != 32 {
		return nil, newError(KindInvalidValue, "ZEWIF-MODEL-111", "root id must be 32 bytes")
	}
	height, err := requiredUint(e, "export_height")
	if err != nil {
		return nil, err
	}
	height32, err := toUint32(height, "export_height")
	if err != nil {
		return nil, err
	}
	z := NewZewif(BlockHeight(height32))
	copy(z.id[:], idBytes)
	wallets, err := indexedObjects(e, "wallet")
	if err != nil {
		return nil, err
	}
	for _, obj := range wallets {
		w, err := walletFromEnvelope(obj)
		if err != nil {
			return nil, err
		}
		z.AddWallet(w)
	}
	for _, obj := range e.ObjectsForPredicate(pred("transaction")) {
		t, err := TransactionFromEnvelope(obj)
		if err != nil {
			return nil, err
		}
		if err := z.AddTransaction(t); err != nil {
			return nil, err
		}
	}
	if z.attachments, err = attachmentsFromEnvelope(e); err != nil {
		return nil, err
	}
	return z, nil
}

// Decode parses canonical bytes into an interchange root.
func Decode(data []byte) (*Zewif, error) {
	e, err := envelope.Decode(data)
	if err != nil {
		return nil, err
	}
	return ZewifFromEnvelope(e)
}

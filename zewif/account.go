package zewif

import (
	"bytes"
	"sort"

	"zewif.dev/zewif/codec"
	"zewif.dev/zewif/envelope"
)

// Account groups the addresses and transaction history of one logical
// account within a wallet. The relevant-transaction set holds txids only;
// the transactions themselves live in the interchange root's shared map so
// that several accounts can reference one transaction without duplication.
type Account struct {
	index              uint32
	name               string
	birthdayHeight     *BlockHeight
	birthdayBlock      *BlockHash
	zip32AccountId     *uint32
	addresses          []*Address
	relevantTxIds      map[TxId]struct{}
	saplingSentOutputs []*SaplingSentOutput
	orchardSentOutputs []*OrchardSentOutput
	attachments        Attachments
}

func NewAccount(index uint32, name string) *Account {
	return &Account{
		index:         index,
		name:          name,
		relevantTxIds: make(map[TxId]struct{}),
	}
}

func (a *Account) Index() uint32 { return a.index }

func (a *Account) Name() string { return a.name }

func (a *Account) SetName(name string) { a.name = name }

func (a *Account) BirthdayHeight() (BlockHeight, bool) {
	if a.birthdayHeight == nil {
		return 0, false
	}
	return *a.birthdayHeight, true
}

func (a *Account) SetBirthdayHeight(h BlockHeight) { a.birthdayHeight = &h }

func (a *Account) BirthdayBlock() (BlockHash, bool) {
	if a.birthdayBlock == nil {
		return BlockHash{}, false
	}
	return *a.birthdayBlock, true
}

func (a *Account) SetBirthdayBlock(h BlockHash) { a.birthdayBlock = &h }

func (a *Account) Zip32AccountId() (uint32, bool) {
	if a.zip32AccountId == nil {
		return 0, false
	}
	return *a.zip32AccountId, true
}

func (a *Account) SetZip32AccountId(id uint32) { a.zip32AccountId = &id }

// Addresses returns the account's addresses in containment order.
func (a *Account) Addresses() []*Address { return append([]*Address(nil), a.addresses...) }

func (a *Account) AddAddress(addr *Address) { a.addresses = append(a.addresses, addr) }

// RelevantTxIds returns the referenced txids sorted by byte order. The set
// has no inherent order; sorting keeps the result deterministic.
func (a *Account) RelevantTxIds() []TxId {
	out := make([]TxId, 0, len(a.relevantTxIds))
	for txid := range a.relevantTxIds {
		out = append(out, txid)
	}
	sort.Slice(out, func(i, j int) bool { return bytes.Compare(out[i][:], out[j][:]) < 0 })
	return out
}

func (a *Account) AddRelevantTxId(txid TxId) { a.relevantTxIds[txid] = struct{}{} }

func (a *Account) IsRelevant(txid TxId) bool {
	_, ok := a.relevantTxIds[txid]
	return ok
}

func (a *Account) SaplingSentOutputs() []*SaplingSentOutput {
	return append([]*SaplingSentOutput(nil), a.saplingSentOutputs...)
}

func (a *Account) AddSaplingSentOutput(o *SaplingSentOutput) {
	a.saplingSentOutputs = append(a.saplingSentOutputs, o)
}

func (a *Account) OrchardSentOutputs() []*OrchardSentOutput {
	return append([]*OrchardSentOutput(nil), a.orchardSentOutputs...)
}

func (a *Account) AddOrchardSentOutput(o *OrchardSentOutput) {
	a.orchardSentOutputs = append(a.orchardSentOutputs, o)
}

func (a *Account) Attachments() *Attachments { return &a.attachments }

func (a *Account) envelope() *envelope.Envelope {
	e := envelope.NewUint(uint64(a.index)).
		WithType("Account").
		WithAssertion(pred("name"), envelope.NewText(a.name))
	if a.birthdayHeight != nil {
		e = e.WithAssertion(pred("birthday_height"), envelope.NewUint(uint64(*a.birthdayHeight)))
	}
	if a.birthdayBlock != nil {
		e = e.WithAssertion(pred("birthday_block"), bytesLeaf(a.birthdayBlock[:]))
	}
	if a.zip32AccountId != nil {
		e = e.WithAssertion(pred("zip32_account_id"), envelope.NewUint(uint64(*a.zip32AccountId)))
	}
	for _, addr := range a.addresses {
		e = e.WithAssertion(pred("address"), addr.envelope())
	}
	if len(a.relevantTxIds) > 0 {
		items := make([]codec.Value, 0, len(a.relevantTxIds))
		for _, txid := range a.RelevantTxIds() {
			items = append(items, codec.Bytes(txid.Bytes()))
		}
		e = e.WithAssertion(pred("relevant_transactions"), envelope.NewLeaf(codec.Array(items...)))
	}
	for i, o := range a.saplingSentOutputs {
		e = e.WithAssertion(pred("sapling_sent_output"), indexedEntity(uint64(i), o.envelope()))
	}
	for i, o := range a.orchardSentOutputs {
		e = e.WithAssertion(pred("orchard_sent_output"), indexedEntity(uint64(i), o.envelope()))
	}
	return a.attachments.addToEnvelope(e)
}

// indexedEntity wraps an entity whose subject is not an index so it can
// still participate in ordered containment: the wrapper's subject is the
// position and the entity rides in a "value" assertion.
func indexedEntity(idx uint64, entity *envelope.Envelope) *envelope.Envelope {
	return envelope.NewUint(idx).WithAssertion(pred("value"), entity)
}

func indexedEntityValue(obj *envelope.Envelope) (*envelope.Envelope, error) {
	return requiredObject(obj, "value")
}

func accountFromEnvelope(e *envelope.Envelope) (*Account, error) {
	if err := checkType(e, "Account"); err != nil {
		return nil, err
	}
	idx, err := subjectUint32(e)
	if err != nil {
		return nil, err
	}
	name, err := requiredText(e, "name")
	if err != nil {
		return nil, err
	}
	a := NewAccount(idx, name)
	if h, err := optionalUint(e, "birthday_height"); err != nil {
		return nil, err
	} else if h != nil {
		v, err := toUint32(*h, "birthday_height")
		if err != nil {
			return nil, err
		}
		a.SetBirthdayHeight(BlockHeight(v))
	}
	blockBytes, err := optionalBytes(e, "birthday_block")
	if err != nil {
		return nil, err
	}
	if blockBytes != nil {
		hash, err := BlockHashFromBytes(blockBytes)
		if err != nil {
			return nil, err
		}
		a.SetBirthdayBlock(hash)
	}
	if id, err := optionalUint(e, "zip32_account_id"); err != nil {
		return nil, err
	} else if id != nil {
		v, err := toUint32(*id, "zip32_account_id")
		if err != nil {
			return nil, err
		}
		a.SetZip32AccountId(v)
	}
	addrs, err := indexedObjects(e, "address")
	if err != nil {
		return nil, err
	}
	for _, obj := range addrs {
		addr, err := addressFromEnvelope(obj)
		if err != nil {
			return nil, err
		}
		a.AddAddress(addr)
	}
	if obj, err := optionalObject(e, "relevant_transactions"); err != nil {
		return nil, err
	} else if obj != nil {
		list, err := hashListFromEnvelope(obj)
		if err != nil {
			return nil, err
		}
		for _, b := range list {
			txid, err := TxIdFromBytes(b)
			if err != nil {
				return nil, err
			}
			a.AddRelevantTxId(txid)
		}
	}
	sents, err := indexedObjects(e, "sapling_sent_output")
	if err != nil {
		return nil, err
	}
	for _, obj := range sents {
		inner, err := indexedEntityValue(obj)
		if err != nil {
			return nil, err
		}
		o, err := saplingSentOutputFromEnvelope(inner)
		if err != nil {
			return nil, err
		}
		a.AddSaplingSentOutput(o)
	}
	osents, err := indexedObjects(e, "orchard_sent_output")
	if err != nil {
		return nil, err
	}
	for _, obj := range osents {
		inner, err := indexedEntityValue(obj)
		if err != nil {
			return nil, err
		}
		o, err := orchardSentOutputFromEnvelope(inner)
		if err != nil {
			return nil, err
		}
		a.AddOrchardSentOutput(o)
	}
	if a.attachments, err = attachmentsFromEnvelope(e); err != nil {
		return nil, err
	}
	return a, nil
}

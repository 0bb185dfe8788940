package zewif

import (
	"zewif.dev/zewif/envelope"
)

// Wallet is one source wallet's worth of data: the network it lives on,
// optional seed material, and its accounts in containment order.
type Wallet struct {
	index        uint32
	id           ID
	network      Network
	seedMaterial *SeedMaterial
	accounts     []*Account
	attachments  Attachments
}

func NewWallet(index uint32, network Network) *Wallet {
	return &Wallet{index: index, id: NewID(), network: network}
}

func (w *Wallet) Index() uint32 { return w.index }

func (w *Wallet) ID() ID { return w.id }

func (w *Wallet) Network() Network { return w.network }

func (w *Wallet) SeedMaterial() (SeedMaterial, bool) {
	if w.seedMaterial == nil {
		return SeedMaterial{}, false
	}
	return *w.seedMaterial, true
}

func (w *Wallet) SetSeedMaterial(m SeedMaterial) { w.seedMaterial = &m }

// Accounts returns the wallet's accounts in containment order.
func (w *Wallet) Accounts() []*Account { return append([]*Account(nil), w.accounts...) }

func (w *Wallet) AddAccount(a *Account) { w.accounts = append(w.accounts, a) }

func (w *Wallet) Attachments() *Attachments { return &w.attachments }

func (w *Wallet) envelope() *envelope.Envelope {
	e := envelope.NewUint(uint64(w.index)).
		WithType("Wallet").
		WithAssertion(pred("id"), bytesLeaf(w.id[:])).
		WithAssertion(pred("network"), envelope.NewText(string(w.network)))
	if w.seedMaterial != nil {
		e = e.WithAssertion(pred("seed_material"), w.seedMaterial.envelope())
	}
	for _, a := range w.accounts {
		e = e.WithAssertion(pred("account"), a.envelope())
	}
	return w.attachments.addToEnvelope(e)
}

func walletFromEnvelope(e *envelope.Envelope) (*Wallet, error) {
	if err := checkType(e, "Wallet"); err != nil {
		return nil, err
	}
	idx, err := subjectUint32(e)
	if err != nil {
		return nil, err
	}
	idBytes, err := requiredBytes(e, "id")
	if err != nil {
		return nil, err
	}
	if len(idBytes) != 32 {
		return nil, newError(KindInvalidValue, "ZEWIF-MODEL-100", "wallet id must be 32 bytes")
	}
	networkText, err := requiredText(e, "network")
	if err != nil {
		return nil, err
	}
	network, err := ParseNetwork(networkText)
	if err != nil {
		return nil, err
	}
	w := &Wallet{index: idx, network: network}
	copy(w.id[:], idBytes)
	if obj, err := optionalObject(e, "seed_material"); err != nil {
		return nil, err
	} else if obj != nil {
		m, err := seedMaterialFromEnvelope(obj)
		if err != nil {
			return nil, err
		}
		w.SetSeedMaterial(m)
	}
	accounts, err := indexedObjects(e, "account")
	if err != nil {
		return nil, err
	}
	for _, obj := range accounts {
		a, err := accountFromEnvelope(obj)
		if err != nil {
			return nil, err
		}
		w.AddAccount(a)
	}
	if w.attachments, err = attachmentsFromEnvelope(e); err != nil {
		return nil, err
	}
	return w, nil
}

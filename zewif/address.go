package zewif

import (
	"sort"

	"zewif.dev/zewif/codec"
	"zewif.dev/zewif/envelope"
)

// Addresses. A wallet address is a protocol-specific payment target plus
// the wallet's local metadata about it. The three protocol variants share
// one containment slot in Address and are told apart by type identity.

// ReceiverType names one receiver of a unified address.
type ReceiverType string

const (
	ReceiverP2PKH   ReceiverType = "p2pkh"
	ReceiverP2SH    ReceiverType = "p2sh"
	ReceiverSapling ReceiverType = "sapling"
	ReceiverOrchard ReceiverType = "orchard"
)

func ParseReceiverType(s string) (ReceiverType, error) {
	switch ReceiverType(s) {
	case ReceiverP2PKH, ReceiverP2SH, ReceiverSapling, ReceiverOrchard:
		return ReceiverType(s), nil
	default:
		return "", newError(KindInvalidValue, "ZEWIF-MODEL-090", "unknown receiver type "+s)
	}
}

// ProtocolAddress is one of TransparentAddress, ShieldedAddress, or
// UnifiedAddress.
type ProtocolAddress interface {
	// Value is the canonical string encoding of the address.
	Value() string
	protocolEnvelope() *envelope.Envelope
}

// TransparentAddress is a t-address plus what the wallet knows about
// spending from it.
type TransparentAddress struct {
	address        string
	spendAuthority *TransparentSpendAuthority
	derivationInfo *DerivationInfo
}

func NewTransparentAddress(address string) *TransparentAddress {
	return &TransparentAddress{address: address}
}

func (a *TransparentAddress) Value() string { return a.address }

func (a *TransparentAddress) SpendAuthority() (TransparentSpendAuthority, bool) {
	if a.spendAuthority == nil {
		return TransparentSpendAuthority{}, false
	}
	return *a.spendAuthority, true
}

func (a *TransparentAddress) SetSpendAuthority(auth TransparentSpendAuthority) {
	a.spendAuthority = &auth
}

func (a *TransparentAddress) DerivationInfo() (DerivationInfo, bool) {
	if a.derivationInfo == nil {
		return DerivationInfo{}, false
	}
	return *a.derivationInfo, true
}

func (a *TransparentAddress) SetDerivationInfo(info DerivationInfo) {
	a.derivationInfo = &info
}

func (a *TransparentAddress) protocolEnvelope() *envelope.Envelope {
	e := envelope.NewText(a.address).WithType("TransparentAddress")
	if a.spendAuthority != nil {
		e = e.WithAssertion(pred("spend_authority"), a.spendAuthority.envelope())
	}
	if a.derivationInfo != nil {
		e = e.WithAssertion(pred("derivation_info"), a.derivationInfo.envelope())
	}
	return e
}

func transparentAddressFromEnvelope(e *envelope.Envelope) (*TransparentAddress, error) {
	if err := checkType(e, "TransparentAddress"); err != nil {
		return nil, err
	}
	value, err := envelope.ExtractText(e.Subject())
	if err != nil {
		return nil, wrapError(KindInvalidValue, "ZEWIF-MODEL-091", "address subject", err)
	}
	a := NewTransparentAddress(value)
	if obj, err := optionalObject(e, "spend_authority"); err != nil {
		return nil, err
	} else if obj != nil {
		auth, err := spendAuthorityFromEnvelope(obj)
		if err != nil {
			return nil, err
		}
		a.SetSpendAuthority(auth)
	}
	if obj, err := optionalObject(e, "derivation_info"); err != nil {
		return nil, err
	} else if obj != nil {
		info, err := derivationInfoFromEnvelope(obj)
		if err != nil {
			return nil, err
		}
		a.SetDerivationInfo(info)
	}
	return a, nil
}

// ShieldedAddress is a Sapling z-address plus the viewing and spending
// key material the wallet holds for it.
type ShieldedAddress struct {
	address            string
	incomingViewingKey []byte
	spendingKey        *SpendingKey
	diversifier        []byte
	hdDerivationPath   string
}

func NewShieldedAddress(address string) *ShieldedAddress {
	return &ShieldedAddress{address: address}
}

func (a *ShieldedAddress) Value() string { return a.address }

func (a *ShieldedAddress) IncomingViewingKey() ([]byte, bool) {
	if a.incomingViewingKey == nil {
		return nil, false
	}
	return append([]byte(nil), a.incomingViewingKey...), true
}

func (a *ShieldedAddress) SetIncomingViewingKey(ivk []byte) {
	a.incomingViewingKey = append([]byte(nil), ivk...)
}

func (a *ShieldedAddress) SpendingKey() (SpendingKey, bool) {
	if a.spendingKey == nil {
		return SpendingKey{}, false
	}
	return *a.spendingKey, true
}

func (a *ShieldedAddress) SetSpendingKey(key SpendingKey) { a.spendingKey = &key }

func (a *ShieldedAddress) Diversifier() ([]byte, bool) {
	if a.diversifier == nil {
		return nil, false
	}
	return append([]byte(nil), a.diversifier...), true
}

func (a *ShieldedAddress) SetDiversifier(d []byte) {
	a.diversifier = append([]byte(nil), d...)
}

func (a *ShieldedAddress) HDDerivationPath() (string, bool) {
	return a.hdDerivationPath, a.hdDerivationPath != ""
}

func (a *ShieldedAddress) SetHDDerivationPath(path string) { a.hdDerivationPath = path }

func (a *ShieldedAddress) protocolEnvelope() *envelope.Envelope {
	e := envelope.NewText(a.address).WithType("ShieldedAddress")
	if a.incomingViewingKey != nil {
		e = e.WithAssertion(pred("incoming_viewing_key"), bytesLeaf(a.incomingViewingKey))
	}
	if a.spendingKey != nil {
		e = e.WithAssertion(pred("spending_key"), a.spendingKey.envelope())
	}
	if a.diversifier != nil {
		e = e.WithAssertion(pred("diversifier"), bytesLeaf(a.diversifier))
	}
	if a.hdDerivationPath != "" {
		e = e.WithAssertion(pred("hd_derivation_path"), envelope.NewText(a.hdDerivationPath))
	}
	return e
}

func shieldedAddressFromEnvelope(e *envelope.Envelope) (*ShieldedAddress, error) {
	if err := checkType(e, "ShieldedAddress"); err != nil {
		return nil, err
	}
	value, err := envelope.ExtractText(e.Subject())
	if err != nil {
		return nil, wrapError(KindInvalidValue, "ZEWIF-MODEL-091", "address subject", err)
	}
	a := NewShieldedAddress(value)
	ivk, err := optionalBytes(e, "incoming_viewing_key")
	if err != nil {
		return nil, err
	}
	if ivk != nil {
		a.SetIncomingViewingKey(ivk)
	}
	if obj, err := optionalObject(e, "spending_key"); err != nil {
		return nil, err
	} else if obj != nil {
		key, err := spendingKeyFromEnvelope(obj)
		if err != nil {
			return nil, err
		}
		a.SetSpendingKey(key)
	}
	diversifier, err := optionalBytes(e, "diversifier")
	if err != nil {
		return nil, err
	}
	if diversifier != nil {
		a.SetDiversifier(diversifier)
	}
	path, err := optionalText(e, "hd_derivation_path")
	if err != nil {
		return nil, err
	}
	if path != nil {
		a.SetHDDerivationPath(*path)
	}
	return a, nil
}

// UnifiedAddress bundles several receivers behind one encoding. Component
// addresses are kept both as strings and, where the wallet had richer
// records, as full protocol components.
type UnifiedAddress struct {
	address              string
	diversifierIndex     []byte
	receiverTypes        []ReceiverType
	componentAddresses   map[ReceiverType]string
	transparentComponent *TransparentAddress
	saplingComponent     *ShieldedAddress
	orchardComponentData []byte
	hdDerivationPath     string
}

func NewUnifiedAddress(address string) *UnifiedAddress {
	return &UnifiedAddress{
		address:            address,
		componentAddresses: make(map[ReceiverType]string),
	}
}

func (a *UnifiedAddress) Value() string { return a.address }

func (a *UnifiedAddress) DiversifierIndex() ([]byte, bool) {
	if a.diversifierIndex == nil {
		return nil, false
	}
	return append([]byte(nil), a.diversifierIndex...), true
}

func (a *UnifiedAddress) SetDiversifierIndex(idx []byte) error {
	if len(idx) != 11 {
		return newError(KindInvalidValue, "ZEWIF-MODEL-092", "diversifier index must be 11 bytes")
	}
	a.diversifierIndex = append([]byte(nil), idx...)
	return nil
}

// ReceiverTypes returns the receivers in a stable sorted order.
func (a *UnifiedAddress) ReceiverTypes() []ReceiverType {
	out := append([]ReceiverType(nil), a.receiverTypes...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (a *UnifiedAddress) AddReceiverType(t ReceiverType) {
	for _, existing := range a.receiverTypes {
		if existing == t {
			return
		}
	}
	a.receiverTypes = append(a.receiverTypes, t)
}

func (a *UnifiedAddress) ComponentAddress(t ReceiverType) (string, bool) {
	s, ok := a.componentAddresses[t]
	return s, ok
}

func (a *UnifiedAddress) AddComponentAddress(t ReceiverType, address string) {
	a.componentAddresses[t] = address
}

func (a *UnifiedAddress) TransparentComponent() (*TransparentAddress, bool) {
	return a.transparentComponent, a.transparentComponent != nil
}

func (a *UnifiedAddress) SetTransparentComponent(c *TransparentAddress) {
	a.transparentComponent = c
}

func (a *UnifiedAddress) SaplingComponent() (*ShieldedAddress, bool) {
	return a.saplingComponent, a.saplingComponent != nil
}

func (a *UnifiedAddress) SetSaplingComponent(c *ShieldedAddress) { a.saplingComponent = c }

func (a *UnifiedAddress) OrchardComponentData() ([]byte, bool) {
	if a.orchardComponentData == nil {
		return nil, false
	}
	return append([]byte(nil), a.orchardComponentData...), true
}

func (a *UnifiedAddress) SetOrchardComponentData(data []byte) {
	a.orchardComponentData = append([]byte(nil), data...)
}

func (a *UnifiedAddress) HDDerivationPath() (string, bool) {
	return a.hdDerivationPath, a.hdDerivationPath != ""
}

func (a *UnifiedAddress) SetHDDerivationPath(path string) { a.hdDerivationPath = path }

func (a *UnifiedAddress) protocolEnvelope() *envelope.Envelope {
	e := envelope.NewText(a.address).WithType("UnifiedAddress")
	if a.diversifierIndex != nil {
		e = e.WithAssertion(pred("diversifier_index"), bytesLeaf(a.diversifierIndex))
	}
	if len(a.receiverTypes) > 0 {
		types := a.ReceiverTypes()
		items := make([]codec.Value, 0, len(types))
		for _, t := range types {
			items = append(items, codec.Text(string(t)))
		}
		e = e.WithAssertion(pred("receiver_types"), envelope.NewLeaf(codec.Array(items...)))
	}
	if len(a.componentAddresses) > 0 {
		entries := make([]codec.MapEntry, 0, len(a.componentAddresses))
		for t, addr := range a.componentAddresses {
			entries = append(entries, codec.MapEntry{Key: codec.Text(string(t)), Val: codec.Text(addr)})
		}
		e = e.WithAssertion(pred("component_addresses"), envelope.NewLeaf(codec.MustMap(entries)))
	}
	if a.transparentComponent != nil {
		e = e.WithAssertion(pred("transparent_component"), a.transparentComponent.protocolEnvelope())
	}
	if a.saplingComponent != nil {
		e = e.WithAssertion(pred("sapling_component"), a.saplingComponent.protocolEnvelope())
	}
	if a.orchardComponentData != nil {
		e = e.WithAssertion(pred("orchard_component_data"), bytesLeaf(a.orchardComponentData))
	}
	if a.hdDerivationPath != "" {
		e = e.WithAssertion(pred("hd_derivation_path"), envelope.NewText(a.hdDerivationPath))
	}
	return e
}

func unifiedAddressFromEnvelope(e *envelope.Envelope) (*UnifiedAddress, error) {
	if err := checkType(e, "UnifiedAddress"); err != nil {
		return nil, err
	}
	value, err := envelope.ExtractText(e.Subject())
	if err != nil {
		return nil, wrapError(KindInvalidValue, "ZEWIF-MODEL-091", "address subject", err)
	}
	a := NewUnifiedAddress(value)
	idx, err := optionalBytes(e, "diversifier_index")
	if err != nil {
		return nil, err
	}
	if idx != nil {
		if err := a.SetDiversifierIndex(idx); err != nil {
			return nil, err
		}
	}
	if obj, err := optionalObject(e, "receiver_types"); err != nil {
		return nil, err
	} else if obj != nil {
		v, ok := obj.Leaf()
		if !ok {
			return nil, newError(KindInvalidValue, "ZEWIF-MODEL-093", "receiver_types is not a leaf")
		}
		arr, ok := v.ArrayValue()
		if !ok {
			return nil, newError(KindInvalidValue, "ZEWIF-MODEL-093", "receiver_types is not an array")
		}
		for _, item := range arr {
			s, ok := item.TextValue()
			if !ok {
				return nil, newError(KindInvalidValue, "ZEWIF-MODEL-093", "receiver type is not text")
			}
			t, err := ParseReceiverType(s)
			if err != nil {
				return nil, err
			}
			a.AddReceiverType(t)
		}
	}
	if obj, err := optionalObject(e, "component_addresses"); err != nil {
		return nil, err
	} else if obj != nil {
		v, ok := obj.Leaf()
		if !ok {
			return nil, newError(KindInvalidValue, "ZEWIF-MODEL-094", "component_addresses is not a leaf")
		}
		entries, ok := v.MapEntries()
		if !ok {
			return nil, newError(KindInvalidValue, "ZEWIF-MODEL-094", "component_addresses is not a map")
		}
		for _, entry := range entries {
			key, ok := entry.Key.TextValue()
			if !ok {
				return nil, newError(KindInvalidValue, "ZEWIF-MODEL-094", "component address key is not text")
			}
			addr, ok := entry.Val.TextValue()
			if !ok {
				return nil, newError(KindInvalidValue, "ZEWIF-MODEL-094", "component address value is not text")
			}
			t, err := ParseReceiverType(key)
			if err != nil {
				return nil, err
			}
			a.AddComponentAddress(t, addr)
		}
	}
	if obj, err := optionalObject(e, "transparent_component"); err != nil {
		return nil, err
	} else if obj != nil {
		c, err := transparentAddressFromEnvelope(obj)
		if err != nil {
			return nil, err
		}
		a.SetTransparentComponent(c)
	}
	if obj, err := optionalObject(e, "sapling_component"); err != nil {
		return nil, err
	} else if obj != nil {
		c, err := shieldedAddressFromEnvelope(obj)
		if err != nil {
			return nil, err
		}
		a.SetSaplingComponent(c)
	}
	data, err := optionalBytes(e, "orchard_component_data")
	if err != nil {
		return nil, err
	}
	if data != nil {
		a.SetOrchardComponentData(data)
	}
	path, err := optionalText(e, "hd_derivation_path")
	if err != nil {
		return nil, err
	}
	if path != nil {
		a.SetHDDerivationPath(*path)
	}
	return a, nil
}

func protocolAddressFromEnvelope(e *envelope.Envelope) (ProtocolAddress, error) {
	switch {
	case e.HasType("TransparentAddress"):
		return transparentAddressFromEnvelope(e)
	case e.HasType("ShieldedAddress"):
		return shieldedAddressFromEnvelope(e)
	case e.HasType("UnifiedAddress"):
		return unifiedAddressFromEnvelope(e)
	default:
		return nil, newError(KindTypeMismatch, "ZEWIF-MODEL-095", "envelope is not a protocol address")
	}
}

// Address is a wallet's record of one of its own addresses.
type Address struct {
	index       uint32
	address     ProtocolAddress
	name        string
	purpose     *string
	attachments Attachments
}

func NewAddress(index uint32, address ProtocolAddress) (*Address, error) {
	if address == nil {
		return nil, newError(KindInvalidValue, "ZEWIF-MODEL-096", "nil protocol address")
	}
	return &Address{index: index, address: address}, nil
}

func (a *Address) Index() uint32 { return a.index }

func (a *Address) ProtocolAddress() ProtocolAddress { return a.address }

func (a *Address) Name() string { return a.name }

func (a *Address) SetName(name string) { a.name = name }

func (a *Address) Purpose() (string, bool) {
	if a.purpose == nil {
		return "", false
	}
	return *a.purpose, true
}

func (a *Address) SetPurpose(purpose string) { a.purpose = &purpose }

func (a *Address) AsTransparent() (*TransparentAddress, bool) {
	t, ok := a.address.(*TransparentAddress)
	return t, ok
}

func (a *Address) AsShielded() (*ShieldedAddress, bool) {
	s, ok := a.address.(*ShieldedAddress)
	return s, ok
}

func (a *Address) AsUnified() (*UnifiedAddress, bool) {
	u, ok := a.address.(*UnifiedAddress)
	return u, ok
}

func (a *Address) Attachments() *Attachments { return &a.attachments }

func (a *Address) envelope() *envelope.Envelope {
	e := envelope.NewUint(uint64(a.index)).
		WithType("Address").
		WithAssertion(pred("address"), a.address.protocolEnvelope())
	if a.name != "" {
		e = e.WithAssertion(pred("name"), envelope.NewText(a.name))
	}
	if a.purpose != nil {
		e = e.WithAssertion(pred("purpose"), envelope.NewText(*a.purpose))
	}
	return a.attachments.addToEnvelope(e)
}

func addressFromEnvelope(e *envelope.Envelope) (*Address, error) {
	if err := checkType(e, "Address"); err != nil {
		return nil, err
	}
	idx, err := subjectUint32(e)
	if err != nil {
		return nil, err
	}
	protoObj, err := requiredObject(e, "address")
	if err != nil {
		return nil, err
	}
	proto, err := protocolAddressFromEnvelope(protoObj)
	if err != nil {
		return nil, err
	}
	a, err := NewAddress(idx, proto)
	if err != nil {
		return nil, err
	}
	name, err := optionalText(e, "name")
	if err != nil {
		return nil, err
	}
	if name != nil {
		a.SetName(*name)
	}
	purpose, err := optionalText(e, "purpose")
	if err != nil {
		return nil, err
	}
	if purpose != nil {
		a.SetPurpose(*purpose)
	}
	if a.attachments, err = attachmentsFromEnvelope(e); err != nil {
		return nil, err
	}
	return a, nil
}

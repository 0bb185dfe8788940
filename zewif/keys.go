package zewif

import (
	"encoding/binary"
	"encoding/hex"

	"golang.org/x/crypto/blake2b"

	"zewif.dev/zewif/envelope"
)

// Key material. Everything in this file is security-critical: conversion
// front-ends must hand these values over already decrypted, and anything
// that would cause them to be dropped during conversion must surface as an
// asset-risk issue, never as ordinary data loss.

// SeedFingerprint identifies an HD seed without revealing it, in the style
// of the ZIP 32 seed fingerprint.
type SeedFingerprint [32]byte

func (f SeedFingerprint) String() string { return hex.EncodeToString(f[:]) }

const seedFingerprintDomain = "ZcashSeedFprint"

// FingerprintSeed derives the fingerprint of raw seed bytes: a BLAKE2b-256
// hash over a domain prefix, the seed length, and the seed itself.
func FingerprintSeed(seed []byte) SeedFingerprint {
	h, err := blake2b.New256(nil)
	if err != nil {
		panic("zewif: building blake2b: " + err.Error())
	}
	h.Write([]byte(seedFingerprintDomain))
	var n [8]byte
	binary.LittleEndian.PutUint64(n[:], uint64(len(seed)))
	h.Write(n[:])
	h.Write(seed)
	var f SeedFingerprint
	copy(f[:], h.Sum(nil))
	return f
}

// SeedMaterial is the root secret a wallet's keys derive from: either a
// BIP 39 mnemonic phrase or a raw pre-BIP 39 seed.
type SeedMaterial struct {
	mnemonic string // exactly one of mnemonic/seed is set
	language string // optional, only with mnemonic
	seed     []byte
}

// NewMnemonicSeedMaterial wraps a BIP 39 mnemonic phrase. language is the
// mnemonic wordlist language and may be empty.
func NewMnemonicSeedMaterial(mnemonic, language string) (SeedMaterial, error) {
	if mnemonic == "" {
		return SeedMaterial{}, newError(KindInvalidValue, "ZEWIF-MODEL-030", "empty mnemonic")
	}
	return SeedMaterial{mnemonic: mnemonic, language: language}, nil
}

// NewSeedSeedMaterial wraps raw seed bytes.
func NewSeedSeedMaterial(seed []byte) (SeedMaterial, error) {
	if len(seed) == 0 {
		return SeedMaterial{}, newError(KindInvalidValue, "ZEWIF-MODEL-031", "empty seed")
	}
	return SeedMaterial{seed: append([]byte(nil), seed...)}, nil
}

func (m SeedMaterial) Mnemonic() (phrase, language string, ok bool) {
	return m.mnemonic, m.language, m.mnemonic != ""
}

func (m SeedMaterial) Seed() ([]byte, bool) {
	if m.seed == nil {
		return nil, false
	}
	return append([]byte(nil), m.seed...), true
}

// Fingerprint returns the seed fingerprint for raw-seed material.
func (m SeedMaterial) Fingerprint() (SeedFingerprint, bool) {
	if m.seed == nil {
		return SeedFingerprint{}, false
	}
	return FingerprintSeed(m.seed), true
}

func (m SeedMaterial) envelope() *envelope.Envelope {
	if m.mnemonic != "" {
		e := envelope.NewText(m.mnemonic).WithType("BIP39Mnemonic")
		if m.language != "" {
			e = e.WithAssertion(pred("language"), envelope.NewText(m.language))
		}
		return e
	}
	fp, _ := m.Fingerprint()
	return envelope.NewBytes(m.seed).
		WithType("Seed").
		WithAssertion(pred("fingerprint"), envelope.NewBytes(fp[:]))
}

func seedMaterialFromEnvelope(e *envelope.Envelope) (SeedMaterial, error) {
	switch {
	case e.HasType("BIP39Mnemonic"):
		phrase, err := envelope.ExtractText(e.Subject())
		if err != nil {
			return SeedMaterial{}, wrapError(KindInvalidValue, "ZEWIF-MODEL-032", "mnemonic subject", err)
		}
		lang, err := optionalText(e, "language")
		if err != nil {
			return SeedMaterial{}, err
		}
		m := SeedMaterial{mnemonic: phrase}
		if lang != nil {
			m.language = *lang
		}
		return m, nil
	case e.HasType("Seed"):
		seed, err := envelope.ExtractBytes(e.Subject())
		if err != nil {
			return SeedMaterial{}, wrapError(KindInvalidValue, "ZEWIF-MODEL-033", "seed subject", err)
		}
		return NewSeedSeedMaterial(seed)
	default:
		return SeedMaterial{}, newError(KindTypeMismatch, "ZEWIF-MODEL-034", "envelope is not seed material")
	}
}

// SaplingExtendedSpendingKey is an opaque extended spending key blob.
type SaplingExtendedSpendingKey []byte

// SpendingKey is the authority to spend funds. Sapling extended keys are
// the only protocol variant the schema currently models; other key shapes
// travel as attachments.
type SpendingKey struct {
	sapling SaplingExtendedSpendingKey
}

func NewSaplingSpendingKey(key []byte) (SpendingKey, error) {
	if len(key) == 0 {
		return SpendingKey{}, newError(KindInvalidValue, "ZEWIF-MODEL-035", "empty spending key")
	}
	return SpendingKey{sapling: append(SaplingExtendedSpendingKey(nil), key...)}, nil
}

func (k SpendingKey) Sapling() (SaplingExtendedSpendingKey, bool) {
	if k.sapling == nil {
		return nil, false
	}
	return append(SaplingExtendedSpendingKey(nil), k.sapling...), true
}

func (k SpendingKey) envelope() *envelope.Envelope {
	return envelope.NewBytes(k.sapling).
		WithType("SaplingExtendedSpendingKey").
		WithType("SpendingKey")
}

func spendingKeyFromEnvelope(e *envelope.Envelope) (SpendingKey, error) {
	if err := checkType(e, "SpendingKey"); err != nil {
		return SpendingKey{}, err
	}
	if !e.HasType("SaplingExtendedSpendingKey") {
		return SpendingKey{}, newError(KindTypeMismatch, "ZEWIF-MODEL-036", "unsupported spending key protocol")
	}
	b, err := envelope.ExtractBytes(e.Subject())
	if err != nil {
		return SpendingKey{}, wrapError(KindInvalidValue, "ZEWIF-MODEL-037", "spending key subject", err)
	}
	return NewSaplingSpendingKey(b)
}

// TransparentSpendAuthority records how a transparent address can be
// spent: with an explicit key, or by derivation from the wallet seed.
type TransparentSpendAuthority struct {
	key *SpendingKey // nil means derived
}

func DerivedSpendAuthority() TransparentSpendAuthority {
	return TransparentSpendAuthority{}
}

func SpendAuthorityFromKey(key SpendingKey) TransparentSpendAuthority {
	return TransparentSpendAuthority{key: &key}
}

func (a TransparentSpendAuthority) IsDerived() bool { return a.key == nil }

func (a TransparentSpendAuthority) Key() (SpendingKey, bool) {
	if a.key == nil {
		return SpendingKey{}, false
	}
	return *a.key, true
}

func (a TransparentSpendAuthority) envelope() *envelope.Envelope {
	if a.key == nil {
		return envelope.NewText("derived").WithType("TransparentSpendAuthority")
	}
	return envelope.NewText("key").
		WithType("TransparentSpendAuthority").
		WithAssertion(pred("spending_key"), a.key.envelope())
}

func spendAuthorityFromEnvelope(e *envelope.Envelope) (TransparentSpendAuthority, error) {
	if err := checkType(e, "TransparentSpendAuthority"); err != nil {
		return TransparentSpendAuthority{}, err
	}
	mode, err := envelope.ExtractText(e.Subject())
	if err != nil {
		return TransparentSpendAuthority{}, wrapError(KindInvalidValue, "ZEWIF-MODEL-038", "spend authority subject", err)
	}
	switch mode {
	case "derived":
		return DerivedSpendAuthority(), nil
	case "key":
		obj, err := requiredObject(e, "spending_key")
		if err != nil {
			return TransparentSpendAuthority{}, err
		}
		key, err := spendingKeyFromEnvelope(obj)
		if err != nil {
			return TransparentSpendAuthority{}, err
		}
		return SpendAuthorityFromKey(key), nil
	default:
		return TransparentSpendAuthority{}, newError(KindInvalidValue, "ZEWIF-MODEL-039", "unknown spend authority mode "+mode)
	}
}

// DerivationInfo locates an address within a BIP 44-style derivation:
// the change level and the address index, both non-hardened.
type DerivationInfo struct {
	change       uint32
	addressIndex uint32
}

const hardenedThreshold = 1 << 31

func NewDerivationInfo(change, addressIndex uint32) (DerivationInfo, error) {
	if change >= hardenedThreshold || addressIndex >= hardenedThreshold {
		return DerivationInfo{}, newError(KindInvalidValue, "ZEWIF-MODEL-040", "derivation indexes must be non-hardened")
	}
	return DerivationInfo{change: change, addressIndex: addressIndex}, nil
}

func (d DerivationInfo) Change() uint32 { return d.change }

func (d DerivationInfo) AddressIndex() uint32 { return d.addressIndex }

func (d DerivationInfo) envelope() *envelope.Envelope {
	return envelope.NewText("derivation").
		WithType("DerivationInfo").
		WithAssertion(pred("change"), envelope.NewUint(uint64(d.change))).
		WithAssertion(pred("address_index"), envelope.NewUint(uint64(d.addressIndex)))
}

func derivationInfoFromEnvelope(e *envelope.Envelope) (DerivationInfo, error) {
	if err := checkType(e, "DerivationInfo"); err != nil {
		return DerivationInfo{}, err
	}
	change, err := requiredUint(e, "change")
	if err != nil {
		return DerivationInfo{}, err
	}
	idx, err := requiredUint(e, "address_index")
	if err != nil {
		return DerivationInfo{}, err
	}
	if change >= hardenedThreshold || idx >= hardenedThreshold {
		return DerivationInfo{}, newError(KindInvalidValue, "ZEWIF-MODEL-040", "derivation indexes must be non-hardened")
	}
	return DerivationInfo{change: uint32(change), addressIndex: uint32(idx)}, nil
}

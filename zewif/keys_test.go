package zewif

import (
	"testing"
)

func TestFingerprintSeed(t *testing.T) {
	a := FingerprintSeed(rb(32, 0x01))
	b := FingerprintSeed(rb(32, 0x01))
	if a != b {
		t.Fatalf("fingerprint is not deterministic")
	}
	if a == FingerprintSeed(rb(32, 0x02)) {
		t.Fatalf("different seeds share a fingerprint")
	}
	// The length prefix separates a seed from its zero-padded extension.
	if FingerprintSeed(rb(31, 0x00)) == FingerprintSeed(rb(32, 0x00)) {
		t.Fatalf("fingerprint ignores seed length")
	}
}

func TestSeedMaterialConstructors(t *testing.T) {
	if _, err := NewMnemonicSeedMaterial("", ""); err == nil {
		t.Fatalf("empty mnemonic accepted")
	}
	if _, err := NewSeedSeedMaterial(nil); err == nil {
		t.Fatalf("empty seed accepted")
	}

	m, err := NewMnemonicSeedMaterial("abandon ability able", "en")
	if err != nil {
		t.Fatalf("NewMnemonicSeedMaterial: %v", err)
	}
	phrase, lang, ok := m.Mnemonic()
	if !ok || phrase != "abandon ability able" || lang != "en" {
		t.Fatalf("mnemonic accessors: %q %q %v", phrase, lang, ok)
	}
	if _, ok := m.Seed(); ok {
		t.Fatalf("mnemonic material reports a raw seed")
	}
	if _, ok := m.Fingerprint(); ok {
		t.Fatalf("mnemonic material reports a seed fingerprint")
	}
}

func TestSpendAuthorityModes(t *testing.T) {
	derived := DerivedSpendAuthority()
	if !derived.IsDerived() {
		t.Fatalf("derived authority reports a key")
	}
	if _, ok := derived.Key(); ok {
		t.Fatalf("derived authority returned a key")
	}

	key, err := NewSaplingSpendingKey(rb(169, 0x01))
	if err != nil {
		t.Fatalf("NewSaplingSpendingKey: %v", err)
	}
	auth := SpendAuthorityFromKey(key)
	if auth.IsDerived() {
		t.Fatalf("keyed authority reports derived")
	}
	if _, ok := auth.Key(); !ok {
		t.Fatalf("keyed authority lost its key")
	}

	if _, err := NewSaplingSpendingKey(nil); err == nil {
		t.Fatalf("empty spending key accepted")
	}
}

func TestNewDerivationInfoRejectsHardened(t *testing.T) {
	if _, err := NewDerivationInfo(1<<31, 0); err == nil {
		t.Fatalf("hardened change index accepted")
	}
	if _, err := NewDerivationInfo(0, 1<<31); err == nil {
		t.Fatalf("hardened address index accepted")
	}
	info, err := NewDerivationInfo(1, (1<<31)-1)
	if err != nil {
		t.Fatalf("NewDerivationInfo: %v", err)
	}
	if info.Change() != 1 || info.AddressIndex() != (1<<31)-1 {
		t.Fatalf("derivation info corrupted: %+v", info)
	}
}

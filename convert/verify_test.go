package convert

import (
	"strings"
	"testing"

	"zewif.dev/zewif/zewif"
)

func mustTxId(t *testing.T, fill byte) zewif.TxId {
	t.Helper()
	b := make([]byte, 32)
	for i := range b {
		b[i] = fill
	}
	txid, err := zewif.TxIdFromBytes(b)
	if err != nil {
		t.Fatalf("TxIdFromBytes: %v", err)
	}
	return txid
}

func TestVerifyRootCleanRoot(t *testing.T) {
	root := zewif.NewZewif(100)
	w := zewif.NewWallet(0, zewif.NetworkMain)
	acct := zewif.NewAccount(0, "default")
	txid := mustTxId(t, 0x01)
	acct.AddRelevantTxId(txid)
	w.AddAccount(acct)
	root.AddWallet(w)
	if err := root.AddTransaction(zewif.NewTransaction(txid)); err != nil {
		t.Fatalf("AddTransaction: %v", err)
	}

	issues, err := VerifyRoot(root, Strict, nil)
	if err != nil {
		t.Fatalf("VerifyRoot: %v", err)
	}
	if len(issues) != 0 {
		t.Fatalf("unexpected issues:\n%s", issues)
	}
}

func TestVerifyRootDanglingTxReference(t *testing.T) {
	root := zewif.NewZewif(100)
	w := zewif.NewWallet(0, zewif.NetworkMain)
	acct := zewif.NewAccount(0, "default")
	acct.AddRelevantTxId(mustTxId(t, 0x02))
	w.AddAccount(acct)
	root.AddWallet(w)

	issues, err := VerifyRoot(root, Permissive, nil)
	if err != nil {
		t.Fatalf("VerifyRoot permissive: %v", err)
	}
	if len(issues) != 1 || issues[0].Severity != SeverityDataLoss {
		t.Fatalf("expected one data-loss issue, got:\n%s", issues)
	}

	if _, err := VerifyRoot(root, Strict, nil); err == nil {
		t.Fatalf("strict verification passed a dangling reference")
	} else if !strings.Contains(err.Error(), "strict verification failed") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestVerifyRootDerivedAuthorityNeedsSeed(t *testing.T) {
	root := zewif.NewZewif(100)
	w := zewif.NewWallet(0, zewif.NetworkMain)
	acct := zewif.NewAccount(0, "default")

	ta := zewif.NewTransparentAddress("t1VJL2dPUyXK74pFFYYfBiY5dYHpzzVFXUW")
	ta.SetSpendAuthority(zewif.DerivedSpendAuthority())
	addr, err := zewif.NewAddress(0, ta)
	if err != nil {
		t.Fatalf("NewAddress: %v", err)
	}
	acct.AddAddress(addr)
	w.AddAccount(acct)
	root.AddWallet(w)

	issues, err := VerifyRoot(root, Permissive, nil)
	if err != nil {
		t.Fatalf("VerifyRoot: %v", err)
	}
	if !issues.HasAssetRisk() {
		t.Fatalf("derived authority without seed did not surface as asset risk:\n%s", issues)
	}

	seed, err := zewif.NewSeedSeedMaterial(make([]byte, 32))
	if err != nil {
		t.Fatalf("NewSeedSeedMaterial: %v", err)
	}
	w.SetSeedMaterial(seed)
	issues, err = VerifyRoot(root, Strict, nil)
	if err != nil {
		t.Fatalf("VerifyRoot with seed: %v", err)
	}
	if len(issues) != 0 {
		t.Fatalf("unexpected issues:\n%s", issues)
	}
}

func TestVerifyRootDuplicateIndexes(t *testing.T) {
	root := zewif.NewZewif(100)
	w := zewif.NewWallet(0, zewif.NetworkMain)
	w.AddAccount(zewif.NewAccount(3, "a"))
	w.AddAccount(zewif.NewAccount(3, "b"))
	root.AddWallet(w)

	// Duplicate indexes would not survive an encode/decode cycle, so they
	// fail even in permissive mode.
	if _, err := VerifyRoot(root, Permissive, nil); err == nil {
		t.Fatalf("duplicate account indexes accepted")
	}
}

func TestVerifyRootDuplicateWalletIndexes(t *testing.T) {
	root := zewif.NewZewif(100)
	root.AddWallet(zewif.NewWallet(0, zewif.NetworkMain))
	root.AddWallet(zewif.NewWallet(0, zewif.NetworkMain))

	_, err := VerifyRoot(root, Permissive, nil)
	if err == nil {
		t.Fatalf("duplicate wallet indexes accepted")
	}
	if !strings.Contains(err.Error(), "duplicate wallet index") {
		t.Fatalf("error does not name the duplicate wallet index: %v", err)
	}
}

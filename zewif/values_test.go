package zewif

import (
	"testing"
)

func TestTxIdFromBytes(t *testing.T) {
	if _, err := TxIdFromBytes(rb(31, 0)); err == nil {
		t.Fatalf("short txid accepted")
	}
	if _, err := TxIdFromBytes(rb(33, 0)); err == nil {
		t.Fatalf("long txid accepted")
	}
	txid, err := TxIdFromBytes(rb(32, 0x7f))
	if err != nil {
		t.Fatalf("TxIdFromBytes: %v", err)
	}
	if len(txid.Bytes()) != 32 {
		t.Fatalf("Bytes length: %d", len(txid.Bytes()))
	}
}

func TestNewAmountRange(t *testing.T) {
	if _, err := NewAmount(MaxMoney + 1); err == nil {
		t.Fatalf("amount above MaxMoney accepted")
	}
	if _, err := NewAmount(-MaxMoney - 1); err == nil {
		t.Fatalf("amount below -MaxMoney accepted")
	}
	a, err := NewAmount(-MaxMoney)
	if err != nil {
		t.Fatalf("NewAmount(-MaxMoney): %v", err)
	}
	if a.Zatoshis() != -MaxMoney {
		t.Fatalf("Zatoshis: %d", a.Zatoshis())
	}
}

func TestParseNetwork(t *testing.T) {
	for _, s := range []string{"main", "test", "regtest"} {
		if _, err := ParseNetwork(s); err != nil {
			t.Fatalf("ParseNetwork(%q): %v", s, err)
		}
	}
	if _, err := ParseNetwork("mainnet"); err == nil {
		t.Fatalf("unknown network accepted")
	}
}

func TestParseTransactionStatus(t *testing.T) {
	for _, s := range []string{"pending", "confirmed", "failed", "abandoned"} {
		if _, err := ParseTransactionStatus(s); err != nil {
			t.Fatalf("ParseTransactionStatus(%q): %v", s, err)
		}
	}
	if _, err := ParseTransactionStatus("mined"); err == nil {
		t.Fatalf("unknown status accepted")
	}
}

func TestParseReceiverType(t *testing.T) {
	for _, s := range []string{"p2pkh", "p2sh", "sapling", "orchard"} {
		if _, err := ParseReceiverType(s); err != nil {
			t.Fatalf("ParseReceiverType(%q): %v", s, err)
		}
	}
	if _, err := ParseReceiverType("sprout"); err == nil {
		t.Fatalf("unknown receiver type accepted")
	}
}

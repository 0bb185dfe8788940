package redact

import (
	"bytes"
	"strings"
	"testing"

	"zewif.dev/zewif/envelope"
)

const validPolicy = `-----BEGIN ZEWIF REDACTION POLICY-----
META
Version: 1
Description: share with a view-only auditor

PREDICATES
Elide: spending_key
Elide: seed_material

VENDORS
Strip: com.example.wallet
-----END ZEWIF REDACTION POLICY-----`

func TestParseValidPolicy(t *testing.T) {
	policy, err := Parse([]byte(validPolicy))
	if err != nil {
		t.Fatalf("expected valid policy, got error: %v", err)
	}
	if len(policy.Elide) != 2 || policy.Elide[0] != "spending_key" || policy.Elide[1] != "seed_material" {
		t.Errorf("expected two elide entries, got %+v", policy.Elide)
	}
	if len(policy.Vendors) != 1 || policy.Vendors[0] != "com.example.wallet" {
		t.Errorf("expected one vendor entry, got %+v", policy.Vendors)
	}
	if policy.Meta["Version"] != "1" {
		t.Errorf("expected Version meta, got %+v", policy.Meta)
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	cases := []struct {
		name string
		text string
	}{
		{"missing preamble", "PREDICATES\nElide: spending_key\n-----END ZEWIF REDACTION POLICY-----"},
		{"missing postamble", "-----BEGIN ZEWIF REDACTION POLICY-----\nPREDICATES\nElide: spending_key"},
		{"BOM", "\xEF\xBB\xBF" + validPolicy},
		{"CR line endings", strings.ReplaceAll(validPolicy, "\n", "\r\n")},
		{"trailing whitespace", strings.Replace(validPolicy, "Elide: spending_key", "Elide: spending_key ", 1)},
		{"predicate with space", strings.Replace(validPolicy, "Elide: spending_key", "Elide: spending key", 1)},
		{"empty policy", "-----BEGIN ZEWIF REDACTION POLICY-----\nMETA\nVersion: 1\n-----END ZEWIF REDACTION POLICY-----"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Parse([]byte(tc.text)); err == nil {
				t.Fatalf("expected parse error")
			}
		})
	}
}

func sampleTree(t *testing.T) *envelope.Envelope {
	t.Helper()
	att, err := envelope.NewAttachment(envelope.NewBytes([]byte("vendor blob")), "com.example.wallet", "com.example.wallet.v1")
	if err != nil {
		t.Fatalf("NewAttachment: %v", err)
	}
	keep, err := envelope.NewAttachment(envelope.NewBytes([]byte("keep me")), "org.other", "org.other.v1")
	if err != nil {
		t.Fatalf("NewAttachment: %v", err)
	}
	address := envelope.NewText("zs1example").
		WithAssertion(envelope.NewText("spending_key"), envelope.NewBytes([]byte("secret key bytes"))).
		WithAssertion(envelope.NewText("name"), envelope.NewText("cold")).
		WithAttachment(att).
		WithAttachment(keep)
	return envelope.NewText("wallet").
		WithAssertion(envelope.NewText("seed_material"), envelope.NewBytes([]byte("seed bytes"))).
		WithAssertion(envelope.NewText("address"), address)
}

func TestApplyElidesAndStrips(t *testing.T) {
	policy, err := Parse([]byte(validPolicy))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	tree := sampleTree(t)

	redacted, err := policy.Apply(tree)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if redacted.Digest() != tree.Digest() {
		t.Fatalf("redaction changed the tree digest")
	}

	enc := redacted.Encode()
	for _, secret := range [][]byte{
		[]byte("secret key bytes"),
		[]byte("seed bytes"),
		[]byte("vendor blob"),
	} {
		if bytes.Contains(enc, secret) {
			t.Fatalf("redacted tree still carries %q", secret)
		}
	}
	if !bytes.Contains(enc, []byte("keep me")) {
		t.Fatalf("unrelated vendor attachment was stripped")
	}
	if !bytes.Contains(enc, []byte("cold")) {
		t.Fatalf("ordinary field was stripped")
	}

	// The redacted tree round-trips and keeps the digest.
	dec, err := envelope.Decode(enc)
	if err != nil {
		t.Fatalf("Decode redacted: %v", err)
	}
	if dec.Digest() != tree.Digest() {
		t.Fatalf("redacted round trip changed the digest")
	}
}

package envelope

import (
	"bytes"
	"testing"

	"zewif.dev/zewif/codec"
)

func TestDigestDeterministicUnderInsertionOrder(t *testing.T) {
	a := NewText("account").
		WithAssertion(NewText("name"), NewText("savings")).
		WithAssertion(NewText("index"), NewUint(3)).
		WithAssertion(NewText("network"), NewText("main"))
	b := NewText("account").
		WithAssertion(NewText("network"), NewText("main")).
		WithAssertion(NewText("index"), NewUint(3)).
		WithAssertion(NewText("name"), NewText("savings"))
	if a.Digest() != b.Digest() {
		t.Fatalf("digest depends on assertion insertion order")
	}
	if !bytes.Equal(a.Encode(), b.Encode()) {
		t.Fatalf("encoding depends on assertion insertion order")
	}
}

func TestDuplicateAssertionIsSetSemantic(t *testing.T) {
	base := NewText("s").WithAssertion(NewText("p"), NewText("o"))
	again := base.WithAssertion(NewText("p"), NewText("o"))
	if base.Digest() != again.Digest() {
		t.Fatalf("re-adding an identical assertion changed the digest")
	}
	if len(again.Assertions()) != 1 {
		t.Fatalf("duplicate assertion was not deduplicated: %d assertions", len(again.Assertions()))
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	e := NewBytes([]byte{0xde, 0xad}).
		WithType("Transaction").
		WithAssertion(NewText("mined_height"), NewUint(1_500_000)).
		WithAssertion(NewText("status"), NewText("confirmed")).
		WithAssertion(NewText("raw"), NewBytes([]byte{1, 2, 3, 4}).Wrap())

	dec, err := Decode(e.Encode())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if dec.Digest() != e.Digest() {
		t.Fatalf("digest changed across round trip: %s != %s", dec.Digest().Short(), e.Digest().Short())
	}
	if !dec.HasType("Transaction") {
		t.Fatalf("type assertion lost")
	}
	obj, err := dec.ObjectForPredicate(NewText("status"))
	if err != nil {
		t.Fatalf("ObjectForPredicate: %v", err)
	}
	s, err := ExtractText(obj)
	if err != nil || s != "confirmed" {
		t.Fatalf("status: %q, %v", s, err)
	}
}

func TestWrapUnwrap(t *testing.T) {
	inner := NewText("payload").WithAssertion(NewText("k"), NewUint(1))
	w := inner.Wrap()
	if !w.IsWrapped() {
		t.Fatalf("Wrap did not produce a wrapped envelope")
	}
	if w.Digest() == inner.Digest() {
		t.Fatalf("wrapping must change the digest")
	}
	got, err := w.Unwrap()
	if err != nil {
		t.Fatalf("Unwrap: %v", err)
	}
	if got.Digest() != inner.Digest() {
		t.Fatalf("unwrapped envelope differs from the original")
	}
	if _, err := inner.Unwrap(); err == nil {
		t.Fatalf("Unwrap succeeded on a non-wrapped envelope")
	} else if !IsKind(err, KindInvalidOperation) {
		t.Fatalf("wrong error kind: %v", err)
	}
}

func TestElideRemovingPreservesDigest(t *testing.T) {
	secret := NewBytes([]byte("spending key material"))
	e := NewText("address").
		WithAssertion(NewText("spending_key"), secret).
		WithAssertion(NewText("name"), NewText("cold"))

	elided := e.ElideRemoving(secret.Digest())
	if elided.Digest() != e.Digest() {
		t.Fatalf("elision changed the root digest")
	}
	obj, err := elided.ObjectForPredicate(NewText("spending_key"))
	if err != nil {
		t.Fatalf("ObjectForPredicate: %v", err)
	}
	if !obj.IsElided() {
		t.Fatalf("target object was not elided")
	}
	// The untouched assertion is still readable.
	name, err := elided.ObjectForPredicate(NewText("name"))
	if err != nil {
		t.Fatalf("name lookup after elision: %v", err)
	}
	if s, _ := ExtractText(name); s != "cold" {
		t.Fatalf("name corrupted by elision: %q", s)
	}

	// Round trip keeps the elided form and the digest.
	dec, err := Decode(elided.Encode())
	if err != nil {
		t.Fatalf("Decode elided: %v", err)
	}
	if dec.Digest() != e.Digest() {
		t.Fatalf("elided round trip changed the digest")
	}
}

func TestElideRemovingPredicates(t *testing.T) {
	e := NewText("address").
		WithAssertion(NewText("spending_key"), NewBytes([]byte{1})).
		WithAssertion(NewText("incoming_viewing_key"), NewBytes([]byte{2})).
		WithAssertion(NewText("name"), NewText("hot"))

	elided := e.ElideRemovingPredicates(NewText("spending_key"))
	if elided.Digest() != e.Digest() {
		t.Fatalf("predicate elision changed the root digest")
	}
	for _, a := range elided.Assertions() {
		if a.IsElided() {
			continue
		}
		p, _ := ExtractText(a.Predicate())
		if p == "spending_key" {
			t.Fatalf("spending_key assertion survived predicate elision")
		}
	}
	if len(elided.Assertions()) != 3 {
		t.Fatalf("elision dropped assertions: %d", len(elided.Assertions()))
	}
}

func TestCompressRoundTripAndDigest(t *testing.T) {
	payload := bytes.Repeat([]byte("highly compressible interchange payload "), 64)
	e := NewBytes(payload).WithAssertion(NewText("kind"), NewText("raw"))

	c, err := e.Compress()
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	if !c.IsCompressed() {
		t.Fatalf("Compress did not produce a compressed envelope")
	}
	if c.Digest() != e.Digest() {
		t.Fatalf("compression changed the digest")
	}
	if len(c.Encode()) >= len(e.Encode()) {
		t.Fatalf("compressed encoding is not smaller: %d >= %d", len(c.Encode()), len(e.Encode()))
	}

	dec, err := Decode(c.Encode())
	if err != nil {
		t.Fatalf("Decode compressed: %v", err)
	}
	u, err := dec.Uncompress()
	if err != nil {
		t.Fatalf("Uncompress: %v", err)
	}
	if !u.Equal(e) {
		t.Fatalf("uncompressed envelope differs from the original")
	}
}

func TestUncompressRejectsCorruptPayload(t *testing.T) {
	e := NewBytes(bytes.Repeat([]byte("abcd"), 256))
	c, err := e.Compress()
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}
	enc := c.Encode()
	// Flip a byte near the end, inside the compressed payload.
	enc[len(enc)-3] ^= 0xff
	dec, err := Decode(enc)
	if err != nil {
		// Corruption may already break the outer structure.
		return
	}
	if _, err := dec.Uncompress(); err == nil {
		t.Fatalf("Uncompress accepted a corrupted payload")
	}
}

func TestAttachmentRequiresVendor(t *testing.T) {
	if _, err := NewAttachment(NewText("payload"), "", "com.example.format.v1"); err == nil {
		t.Fatalf("NewAttachment accepted an empty vendor")
	} else if !IsKind(err, KindMissingVendor) {
		t.Fatalf("wrong error kind: %v", err)
	}
}

func TestAttachmentRoundTrip(t *testing.T) {
	att, err := NewAttachment(NewBytes([]byte("vendor blob")), "com.example", "com.example.blob.v2")
	if err != nil {
		t.Fatalf("NewAttachment: %v", err)
	}
	e := NewText("wallet").WithAttachment(att)

	dec, err := Decode(e.Encode())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	atts, err := dec.Attachments()
	if err != nil {
		t.Fatalf("Attachments: %v", err)
	}
	if len(atts) != 1 {
		t.Fatalf("got %d attachments, want 1", len(atts))
	}
	vendor, err := atts[0].Vendor()
	if err != nil || vendor != "com.example" {
		t.Fatalf("vendor: %q, %v", vendor, err)
	}
	ct, ok, err := atts[0].ConformsTo()
	if err != nil || !ok || ct != "com.example.blob.v2" {
		t.Fatalf("conformsTo: %q %v %v", ct, ok, err)
	}
	payload, err := atts[0].Payload()
	if err != nil {
		t.Fatalf("Payload: %v", err)
	}
	b, err := ExtractBytes(payload)
	if err != nil || !bytes.Equal(b, []byte("vendor blob")) {
		t.Fatalf("payload: %x, %v", b, err)
	}
}

func TestDecodeRejectsMalformedStructures(t *testing.T) {
	cases := []struct {
		name string
		data []byte
	}{
		{"not an envelope shape", codec.MustEncode(codec.Text("bare"))},
		{"unknown case tag", codec.MustEncode(codec.Array(codec.Uint(99), codec.Text("x")))},
		{"missing wrapped inner", codec.MustEncode(codec.Array(codec.Uint(2)))},
		{"assertion at top level", codec.MustEncode(codec.Array(
			codec.Uint(5),
			codec.Array(codec.Uint(0), codec.Text("p")),
			codec.Array(codec.Uint(0), codec.Text("o")),
		))},
		{"empty assertion list", codec.MustEncode(codec.Array(
			codec.Uint(1),
			codec.Array(codec.Uint(0), codec.Text("s")),
			codec.Array(),
		))},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Decode(tc.data); err == nil {
				t.Fatalf("Decode accepted malformed input")
			} else if !IsKind(err, KindMalformedEncoding) {
				t.Fatalf("wrong error kind: %v", err)
			}
		})
	}
}

func TestTypesAndHasType(t *testing.T) {
	e := NewText("s").WithType("Account").WithType("Versioned")
	if !e.HasType("Account") || !e.HasType("Versioned") {
		t.Fatalf("HasType missed a declared type: %v", e.Types())
	}
	if e.HasType("Wallet") {
		t.Fatalf("HasType reported an undeclared type")
	}
	if got := len(e.Types()); got != 2 {
		t.Fatalf("Types returned %d entries, want 2", got)
	}
}

func TestReplaceObjectForPredicate(t *testing.T) {
	e := NewText("container").
		WithAssertion(NewKnown(KnownContent), NewText("old")).
		WithAssertion(NewText("other"), NewUint(1))
	replaced, err := e.ReplaceObjectForPredicate(NewKnown(KnownContent), NewText("new"))
	if err != nil {
		t.Fatalf("ReplaceObjectForPredicate: %v", err)
	}
	obj, err := replaced.ObjectForPredicate(NewKnown(KnownContent))
	if err != nil {
		t.Fatalf("ObjectForPredicate: %v", err)
	}
	if s, _ := ExtractText(obj); s != "new" {
		t.Fatalf("object not replaced: %q", s)
	}
	if _, err := replaced.ObjectForPredicate(NewText("other")); err != nil {
		t.Fatalf("unrelated assertion lost: %v", err)
	}

	if _, err := e.ReplaceObjectForPredicate(NewText("absent"), NewText("x")); err == nil {
		t.Fatalf("ReplaceObjectForPredicate succeeded with no matching predicate")
	}
}

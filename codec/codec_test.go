package codec

import (
	"bytes"
	"testing"
)

func TestRoundTripKinds(t *testing.T) {
	values := []Value{
		Uint(0),
		Uint(23),
		Uint(24),
		Uint(1 << 40),
		Int(-1),
		Int(-1 << 40),
		Bytes(nil),
		Bytes([]byte{0x01, 0x02, 0x03}),
		Text(""),
		Text("transparent"),
		Bool(true),
		Bool(false),
		Known(1),
		Known(50),
		Array(),
		Array(Uint(1), Text("two"), Bytes([]byte{3})),
		MustMap([]MapEntry{
			{Key: Text("b"), Val: Uint(2)},
			{Key: Text("a"), Val: Uint(1)},
		}),
	}
	for _, want := range values {
		enc := MustEncode(want)
		got, err := Decode(enc)
		if err != nil {
			t.Fatalf("Decode(%s): %v", want, err)
		}
		if !got.Equal(want) {
			t.Fatalf("round trip mismatch: got %s want %s", got, want)
		}
	}
}

func TestEncodeDeterministic(t *testing.T) {
	a := MustMap([]MapEntry{
		{Key: Text("zebra"), Val: Uint(1)},
		{Key: Text("apple"), Val: Uint(2)},
		{Key: Uint(7), Val: Bool(true)},
	})
	b := MustMap([]MapEntry{
		{Key: Uint(7), Val: Bool(true)},
		{Key: Text("apple"), Val: Uint(2)},
		{Key: Text("zebra"), Val: Uint(1)},
	})
	if !bytes.Equal(MustEncode(a), MustEncode(b)) {
		t.Fatalf("map encoding depends on insertion order")
	}
}

func TestIntNormalization(t *testing.T) {
	if !Int(5).Equal(Uint(5)) {
		t.Fatalf("Int(5) and Uint(5) should be identical")
	}
	if Int(5).Kind() != KindUint {
		t.Fatalf("non-negative Int should normalize to KindUint, got %v", Int(5).Kind())
	}
	if Int(-5).Kind() != KindInt {
		t.Fatalf("negative Int should stay KindInt, got %v", Int(-5).Kind())
	}
}

func TestDecodeRejectsNonCanonical(t *testing.T) {
	cases := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		// 10 encoded with a redundant one-byte argument; canonical is 0x0a.
		{"redundant width uint", []byte{0x18, 0x0a}},
		// indefinite-length array [1]
		{"indefinite array", []byte{0x9f, 0x01, 0xff}},
		// indefinite-length text "a"
		{"indefinite text", []byte{0x7f, 0x61, 0x61, 0xff}},
		// canonical 10 followed by a trailing byte
		{"trailing bytes", []byte{0x0a, 0x00}},
		// {1:0, 1:0} duplicate keys
		{"duplicate map keys", []byte{0xa2, 0x01, 0x00, 0x01, 0x00}},
		// {2:0, 1:0} keys out of canonical order
		{"unsorted map keys", []byte{0xa2, 0x02, 0x00, 0x01, 0x00}},
		// float 1.5 is outside the leaf set
		{"float", []byte{0xf9, 0x3e, 0x00}},
		// null is outside the leaf set
		{"null", []byte{0xf6}},
		// unknown tag 999
		{"unknown tag", []byte{0xd9, 0x03, 0xe7, 0x01}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Decode(tc.data); err == nil {
				t.Fatalf("Decode accepted %x", tc.data)
			} else if !IsKind(err, KindMalformedLeaf) && !IsKind(err, KindInvalidValue) {
				t.Fatalf("wrong error kind for %x: %v", tc.data, err)
			}
		})
	}
}

func TestKnownValueTagRoundTrip(t *testing.T) {
	enc := MustEncode(Known(1))
	v, err := Decode(enc)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	u, ok := v.KnownValue()
	if !ok || u != 1 {
		t.Fatalf("got %s, want known(1)", v)
	}
	// A known value and a bare uint with the same number are distinct.
	if v.Equal(Uint(1)) {
		t.Fatalf("known(1) should not equal uint 1")
	}
}

func TestMapRejectsDuplicateKeys(t *testing.T) {
	_, err := MapFromEntries([]MapEntry{
		{Key: Text("k"), Val: Uint(1)},
		{Key: Text("k"), Val: Uint(2)},
	})
	if err == nil {
		t.Fatalf("MapFromEntries accepted duplicate keys")
	}
	if !IsKind(err, KindInvalidValue) {
		t.Fatalf("wrong error kind: %v", err)
	}
}

func TestBytesValueCopies(t *testing.T) {
	src := []byte{1, 2, 3}
	v := Bytes(src)
	src[0] = 9
	b, _ := v.BytesValue()
	if b[0] != 1 {
		t.Fatalf("Bytes did not copy its input")
	}
	b[1] = 9
	b2, _ := v.BytesValue()
	if b2[1] != 2 {
		t.Fatalf("BytesValue did not copy its output")
	}
}

func TestAccessorKindChecks(t *testing.T) {
	if _, ok := Text("x").UintValue(); ok {
		t.Fatalf("UintValue succeeded on a text value")
	}
	if _, ok := Uint(1).TextValue(); ok {
		t.Fatalf("TextValue succeeded on a uint value")
	}
	// Uint fits the signed accessor when in range.
	if i, ok := Uint(7).IntValue(); !ok || i != 7 {
		t.Fatalf("IntValue on small uint: got %d, %v", i, ok)
	}
}

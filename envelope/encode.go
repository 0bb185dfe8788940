package envelope

import (
	"zewif.dev/zewif/codec"
)

// Wire case tags. An envelope encodes as a CBOR array whose first element
// names the case; the whole tree is one canonical leaf-codec value, so the
// leaf codec's determinism guarantees carry over to tree encodings.
const (
	wireLeaf       = 0
	wireNode       = 1
	wireWrapped    = 2
	wireElided     = 3
	wireCompressed = 4
	wireAssertion  = 5
)

// Encode returns the canonical byte sequence for the envelope. Encode is
// total and deterministic: structurally identical envelopes always yield
// identical bytes, and therefore identical digests.
func (e *Envelope) Encode() []byte {
	return codec.MustEncode(e.toValue())
}

func (e *Envelope) toValue() codec.Value {
	switch e.kind {
	case caseLeaf:
		return codec.Array(codec.Uint(wireLeaf), e.leaf)
	case caseNode:
		items := make([]codec.Value, 0, len(e.assertions))
		for _, a := range e.assertions {
			items = append(items, a.toValue())
		}
		return codec.Array(codec.Uint(wireNode), e.subject.toValue(), codec.Array(items...))
	case caseWrapped:
		return codec.Array(codec.Uint(wireWrapped), e.inner.toValue())
	case caseElided:
		return codec.Array(codec.Uint(wireElided), codec.Bytes(e.digest[:]))
	case caseCompressed:
		return codec.Array(codec.Uint(wireCompressed), codec.Bytes(e.digest[:]), codec.Bytes(e.compressed))
	default:
		panic("envelope: encoding envelope with unknown case")
	}
}

func (a Assertion) toValue() codec.Value {
	if a.IsElided() {
		return codec.Array(codec.Uint(wireElided), codec.Bytes(a.digest[:]))
	}
	return codec.Array(codec.Uint(wireAssertion), a.pred.toValue(), a.obj.toValue())
}

package envelope

import (
	"bytes"
	"crypto/sha256"

	"zewif.dev/zewif/codec"
)

// Decode parses a canonical envelope encoding.
//
// Truncated, structurally invalid, or non-canonical input fails: leaf-level
// violations surface as codec errors (MalformedLeaf), tree-level violations
// as KindMalformedEncoding. Decode never repairs or normalizes; the only
// accepted encoding of an envelope is the one Encode produces.
func Decode(data []byte) (*Envelope, error) {
	v, err := codec.Decode(data)
	if err != nil {
		return nil, err
	}
	return fromValue(v)
}

func fromValue(v codec.Value) (*Envelope, error) {
	elems, ok := v.ArrayValue()
	if !ok {
		return nil, newError(KindMalformedEncoding, "ZEWIF-ENC-001", "envelope must be a case-tagged array")
	}
	if len(elems) < 2 {
		return nil, newError(KindMalformedEncoding, "ZEWIF-ENC-002", "envelope array too short")
	}
	tag, ok := elems[0].UintValue()
	if !ok {
		return nil, newError(KindMalformedEncoding, "ZEWIF-ENC-003", "envelope case tag must be an unsigned integer")
	}

	switch tag {
	case wireLeaf:
		if len(elems) != 2 {
			return nil, newError(KindMalformedEncoding, "ZEWIF-ENC-004", "leaf case takes exactly one element")
		}
		return NewLeaf(elems[1]), nil

	case wireNode:
		if len(elems) != 3 {
			return nil, newError(KindMalformedEncoding, "ZEWIF-ENC-005", "node case takes subject and assertions")
		}
		subject, err := fromValue(elems[1])
		if err != nil {
			return nil, err
		}
		if subject.kind == caseNode {
			// A node's assertions live in one flat set; nesting a node as a
			// subject without wrapping it is a non-canonical re-encoding.
			return nil, newError(KindMalformedEncoding, "ZEWIF-ENC-006", "node subject must be wrapped")
		}
		items, ok := elems[2].ArrayValue()
		if !ok {
			return nil, newError(KindMalformedEncoding, "ZEWIF-ENC-007", "node assertions must be an array")
		}
		if len(items) == 0 {
			return nil, newError(KindMalformedEncoding, "ZEWIF-ENC-008", "node without assertions is encoded as its subject")
		}
		assertions := make([]Assertion, 0, len(items))
		for _, item := range items {
			a, err := assertionFromValue(item)
			if err != nil {
				return nil, err
			}
			assertions = append(assertions, a)
		}
		for i := 1; i < len(assertions); i++ {
			c := bytes.Compare(assertions[i-1].digest[:], assertions[i].digest[:])
			if c > 0 {
				return nil, newError(KindMalformedEncoding, "ZEWIF-ENC-009", "assertions out of canonical order")
			}
			if c == 0 {
				return nil, newError(KindMalformedEncoding, "ZEWIF-ENC-010", "duplicate assertion")
			}
		}
		n := &Envelope{kind: caseNode, subject: subject, assertions: assertions}
		n.digest = nodeDigest(subject.digest, assertions)
		return n, nil

	case wireWrapped:
		if len(elems) != 2 {
			return nil, newError(KindMalformedEncoding, "ZEWIF-ENC-011", "wrapped case takes exactly one element")
		}
		inner, err := fromValue(elems[1])
		if err != nil {
			return nil, err
		}
		return inner.Wrap(), nil

	case wireElided:
		if len(elems) != 2 {
			return nil, newError(KindMalformedEncoding, "ZEWIF-ENC-012", "elided case takes exactly one element")
		}
		d, err := digestFromValue(elems[1])
		if err != nil {
			return nil, err
		}
		return newElided(d), nil

	case wireCompressed:
		if len(elems) != 3 {
			return nil, newError(KindMalformedEncoding, "ZEWIF-ENC-013", "compressed case takes digest and payload")
		}
		d, err := digestFromValue(elems[1])
		if err != nil {
			return nil, err
		}
		payload, ok := elems[2].BytesValue()
		if !ok {
			return nil, newError(KindMalformedEncoding, "ZEWIF-ENC-014", "compressed payload must be a byte string")
		}
		return &Envelope{kind: caseCompressed, compressed: payload, digest: d}, nil

	case wireAssertion:
		// Assertions are only valid inside a node's assertion list.
		return nil, newError(KindMalformedEncoding, "ZEWIF-ENC-015", "assertion case outside an assertion list")

	default:
		return nil, newError(KindMalformedEncoding, "ZEWIF-ENC-016", "unknown envelope case tag")
	}
}

func assertionFromValue(v codec.Value) (Assertion, error) {
	elems, ok := v.ArrayValue()
	if !ok || len(elems) < 2 {
		return Assertion{}, newError(KindMalformedEncoding, "ZEWIF-ENC-017", "assertion must be a case-tagged array")
	}
	tag, ok := elems[0].UintValue()
	if !ok {
		return Assertion{}, newError(KindMalformedEncoding, "ZEWIF-ENC-017", "assertion must be a case-tagged array")
	}
	switch tag {
	case wireAssertion:
		if len(elems) != 3 {
			return Assertion{}, newError(KindMalformedEncoding, "ZEWIF-ENC-018", "assertion takes predicate and object")
		}
		pred, err := fromValue(elems[1])
		if err != nil {
			return Assertion{}, err
		}
		obj, err := fromValue(elems[2])
		if err != nil {
			return Assertion{}, err
		}
		return NewAssertion(pred, obj), nil
	case wireElided:
		if len(elems) != 2 {
			return Assertion{}, newError(KindMalformedEncoding, "ZEWIF-ENC-012", "elided case takes exactly one element")
		}
		d, err := digestFromValue(elems[1])
		if err != nil {
			return Assertion{}, err
		}
		return Assertion{digest: d}, nil
	default:
		return Assertion{}, newError(KindMalformedEncoding, "ZEWIF-ENC-019", "assertion list entries must be assertions or elisions")
	}
}

func digestFromValue(v codec.Value) (Digest, error) {
	b, ok := v.BytesValue()
	if !ok || len(b) != sha256.Size {
		return Digest{}, newError(KindMalformedEncoding, "ZEWIF-ENC-023", "digest must be a 32-byte string")
	}
	var d Digest
	copy(d[:], b)
	return d, nil
}

func newElided(d Digest) *Envelope {
	return &Envelope{kind: caseElided, digest: d}
}

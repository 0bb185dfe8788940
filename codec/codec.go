// Package codec implements the canonical leaf encoding used throughout the
// interchange format.
//
// Every leaf value has exactly one valid byte sequence: encoding uses CBOR
// Core Deterministic Encoding (RFC 8949 §4.2): smallest-width integers,
// definite lengths only, map keys sorted by their encoded bytes. Decode
// rejects any input that is not the canonical encoding of its value, so
// digests computed over encoded leaves are stable.
package codec

import (
	"bytes"

	"github.com/fxamacker/cbor/v2"
)

// KnownValueTag is the CBOR tag number carried by reserved registry
// markers (known values). The tag content is an unsigned integer.
const KnownValueTag = 40000

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	encOpts := cbor.CoreDetEncOptions()
	encOpts.IndefLength = cbor.IndefLengthForbidden
	em, err := encOpts.EncMode()
	if err != nil {
		panic("codec: building deterministic encode mode: " + err.Error())
	}
	encMode = em

	dm, err := cbor.DecOptions{
		DupMapKey:        cbor.DupMapKeyEnforcedAPF,
		IndefLength:      cbor.IndefLengthForbidden,
		IntDec:           cbor.IntDecConvertNone,
		MapKeyByteString: cbor.MapKeyByteStringAllowed,
	}.DecMode()
	if err != nil {
		panic("codec: building decode mode: " + err.Error())
	}
	decMode = dm
}

// Encode returns the canonical byte sequence for v.
//
// Encode is total over valid Values: construction already rejected anything
// outside the closed leaf set, so the only errors here are internal.
func Encode(v Value) ([]byte, error) {
	return v.encode()
}

// MustEncode is Encode for values known valid by construction.
func MustEncode(v Value) []byte {
	b, err := Encode(v)
	if err != nil {
		panic("codec: MustEncode: " + err.Error())
	}
	return b
}

// Decode parses a single canonical leaf value from data.
//
// Trailing bytes, duplicate map keys, indefinite-length items, unsupported
// kinds, and any re-encoding that differs from the input are all rejected
// with a KindMalformedLeaf error.
func Decode(data []byte) (Value, error) {
	if len(data) == 0 {
		return Value{}, newError(KindMalformedLeaf, "ZEWIF-LEAF-001", "empty leaf encoding")
	}

	var raw any
	if err := decMode.Unmarshal(data, &raw); err != nil {
		return Value{}, wrapError(KindMalformedLeaf, "ZEWIF-LEAF-002", "undecodable leaf", err)
	}

	v, err := fromDecoded(raw)
	if err != nil {
		return Value{}, err
	}

	// Canonical-identity enforcement: the only accepted encoding of a value
	// is the one this package produces.
	canonical, err := v.encode()
	if err != nil {
		return Value{}, err
	}
	if !bytes.Equal(data, canonical) {
		return Value{}, newError(KindMalformedLeaf, "ZEWIF-LEAF-003", "non-canonical leaf encoding")
	}
	return v, nil
}

// fromDecoded maps fxamacker's generic decode output onto the closed set of
// leaf kinds. Anything outside the set (floats, nulls, unknown tags) fails.
func fromDecoded(raw any) (Value, error) {
	switch x := raw.(type) {
	case uint64:
		return Uint(x), nil
	case int64:
		return Int(x), nil
	case []byte:
		return Bytes(x), nil
	case string:
		return Text(x), nil
	case bool:
		return Bool(x), nil
	case []any:
		elems := make([]Value, 0, len(x))
		for _, e := range x {
			v, err := fromDecoded(e)
			if err != nil {
				return Value{}, err
			}
			elems = append(elems, v)
		}
		return Array(elems...), nil
	case map[any]any:
		entries := make([]MapEntry, 0, len(x))
		for k, val := range x {
			kv, err := fromDecodedKey(k)
			if err != nil {
				return Value{}, err
			}
			vv, err := fromDecoded(val)
			if err != nil {
				return Value{}, err
			}
			entries = append(entries, MapEntry{Key: kv, Val: vv})
		}
		return MapFromEntries(entries)
	case cbor.Tag:
		if x.Number != KnownValueTag {
			return Value{}, newError(KindMalformedLeaf, "ZEWIF-LEAF-004", "unsupported leaf tag")
		}
		u, ok := x.Content.(uint64)
		if !ok {
			return Value{}, newError(KindMalformedLeaf, "ZEWIF-LEAF-005", "known value content must be an unsigned integer")
		}
		return Known(u), nil
	default:
		return Value{}, newError(KindMalformedLeaf, "ZEWIF-LEAF-006", "leaf kind outside the supported set")
	}
}

func fromDecodedKey(raw any) (Value, error) {
	// Map keys arrive with byte-string keys boxed in cbor.ByteString.
	if bs, ok := raw.(cbor.ByteString); ok {
		return Bytes([]byte(bs)), nil
	}
	v, err := fromDecoded(raw)
	if err != nil {
		return Value{}, err
	}
	switch v.Kind() {
	case KindUint, KindInt, KindBytes, KindText, KindBool:
		return v, nil
	default:
		return Value{}, newError(KindMalformedLeaf, "ZEWIF-LEAF-007", "map keys must be scalar")
	}
}

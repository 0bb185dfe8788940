package codec

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/fxamacker/cbor/v2"
)

// ValueKind identifies one of the closed set of leaf kinds.
type ValueKind uint8

const (
	KindInvalid ValueKind = iota
	KindUint
	KindInt
	KindBytes
	KindText
	KindBool
	KindArray
	KindMap
	KindKnown
)

func (k ValueKind) String() string {
	switch k {
	case KindUint:
		return "uint"
	case KindInt:
		return "int"
	case KindBytes:
		return "bytes"
	case KindText:
		return "text"
	case KindBool:
		return "bool"
	case KindArray:
		return "array"
	case KindMap:
		return "map"
	case KindKnown:
		return "known"
	default:
		return "invalid"
	}
}

// Value is an immutable leaf value.
//
// Logically equal values are identical: signed integers that fit the
// unsigned range normalize to KindUint at construction, and map entries are
// kept sorted by the canonical encoding of their keys. The zero Value is
// invalid and fails to encode.
type Value struct {
	kind ValueKind
	u    uint64
	i    int64
	b    bool
	bs   []byte
	s    string
	arr  []Value
	ent  []MapEntry
}

// MapEntry is a single key/value pair of a map leaf.
type MapEntry struct {
	Key Value
	Val Value
}

// Uint returns an unsigned integer leaf.
func Uint(u uint64) Value { return Value{kind: KindUint, u: u} }

// Int returns a signed integer leaf. Non-negative inputs normalize to the
// unsigned kind so each logical integer has a single representation.
func Int(i int64) Value {
	if i >= 0 {
		return Uint(uint64(i))
	}
	return Value{kind: KindInt, i: i}
}

// Bytes returns a byte-string leaf. The input is copied.
func Bytes(b []byte) Value {
	cp := make([]byte, len(b))
	copy(cp, b)
	return Value{kind: KindBytes, bs: cp}
}

// Text returns a UTF-8 text leaf.
func Text(s string) Value { return Value{kind: KindText, s: s} }

// Bool returns a boolean leaf.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Known returns a reserved registry marker leaf.
func Known(u uint64) Value { return Value{kind: KindKnown, u: u} }

// Array returns an ordered sequence leaf. Element order is significant and
// preserved.
func Array(elems ...Value) Value {
	cp := make([]Value, len(elems))
	copy(cp, elems)
	return Value{kind: KindArray, arr: cp}
}

// MapFromEntries returns a key-unique map leaf. Entries are reordered into
// canonical key order; duplicate keys fail with KindInvalidValue.
func MapFromEntries(entries []MapEntry) (Value, error) {
	cp := make([]MapEntry, len(entries))
	copy(cp, entries)

	keys := make([][]byte, len(cp))
	for i, e := range cp {
		switch e.Key.Kind() {
		case KindUint, KindInt, KindBytes, KindText, KindBool:
		default:
			return Value{}, newError(KindInvalidValue, "ZEWIF-LEAF-010", "map keys must be scalar")
		}
		kb, err := e.Key.encode()
		if err != nil {
			return Value{}, err
		}
		keys[i] = kb
	}
	sort.SliceStable(cp, func(i, j int) bool { return bytes.Compare(keys[i], keys[j]) < 0 })
	sort.SliceStable(keys, func(i, j int) bool { return bytes.Compare(keys[i], keys[j]) < 0 })
	for i := 1; i < len(keys); i++ {
		if bytes.Equal(keys[i-1], keys[i]) {
			return Value{}, newError(KindInvalidValue, "ZEWIF-LEAF-011", "duplicate map key")
		}
	}
	return Value{kind: KindMap, ent: cp}, nil
}

// MustMap is MapFromEntries for entries known unique by construction.
func MustMap(entries []MapEntry) Value {
	v, err := MapFromEntries(entries)
	if err != nil {
		panic("codec: MustMap: " + err.Error())
	}
	return v
}

// Kind reports the value's leaf kind.
func (v Value) Kind() ValueKind { return v.kind }

// IsValid reports whether the value was produced by a constructor.
func (v Value) IsValid() bool { return v.kind != KindInvalid }

func (v Value) UintValue() (uint64, bool) { return v.u, v.kind == KindUint }

// IntValue reports the integer payload of an unsigned or signed leaf.
// Unsigned leaves above the int64 range report false.
func (v Value) IntValue() (int64, bool) {
	switch v.kind {
	case KindInt:
		return v.i, true
	case KindUint:
		if v.u <= 1<<63-1 {
			return int64(v.u), true
		}
		return 0, false
	default:
		return 0, false
	}
}

func (v Value) BytesValue() ([]byte, bool) {
	if v.kind != KindBytes {
		return nil, false
	}
	cp := make([]byte, len(v.bs))
	copy(cp, v.bs)
	return cp, true
}

func (v Value) TextValue() (string, bool) { return v.s, v.kind == KindText }

func (v Value) BoolValue() (bool, bool) { return v.b, v.kind == KindBool }

func (v Value) KnownValue() (uint64, bool) { return v.u, v.kind == KindKnown }

func (v Value) ArrayValue() ([]Value, bool) {
	if v.kind != KindArray {
		return nil, false
	}
	cp := make([]Value, len(v.arr))
	copy(cp, v.arr)
	return cp, true
}

func (v Value) MapEntries() ([]MapEntry, bool) {
	if v.kind != KindMap {
		return nil, false
	}
	cp := make([]MapEntry, len(v.ent))
	copy(cp, v.ent)
	return cp, true
}

// Equal reports whether two values have identical canonical encodings.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	vb, err := v.encode()
	if err != nil {
		return false
	}
	ob, err := o.encode()
	if err != nil {
		return false
	}
	return bytes.Equal(vb, ob)
}

func (v Value) encode() ([]byte, error) {
	switch v.kind {
	case KindUint:
		return marshal(v.u)
	case KindInt:
		return marshal(v.i)
	case KindBytes:
		return marshal(v.bs)
	case KindText:
		return marshal(v.s)
	case KindBool:
		return marshal(v.b)
	case KindKnown:
		return marshal(cbor.Tag{Number: KnownValueTag, Content: v.u})
	case KindArray:
		items := make([]cbor.RawMessage, 0, len(v.arr))
		for _, e := range v.arr {
			b, err := e.encode()
			if err != nil {
				return nil, err
			}
			items = append(items, cbor.RawMessage(b))
		}
		return marshal(items)
	case KindMap:
		// Entries are already in canonical key order; assemble the map item
		// directly since ordered map encoding is not expressible through the
		// encode mode.
		var buf bytes.Buffer
		appendHead(&buf, 5, uint64(len(v.ent)))
		for _, e := range v.ent {
			kb, err := e.Key.encode()
			if err != nil {
				return nil, err
			}
			vb, err := e.Val.encode()
			if err != nil {
				return nil, err
			}
			buf.Write(kb)
			buf.Write(vb)
		}
		return buf.Bytes(), nil
	default:
		return nil, newError(KindInvalidValue, "ZEWIF-LEAF-012", "cannot encode invalid value")
	}
}

func marshal(x any) ([]byte, error) {
	b, err := encMode.Marshal(x)
	if err != nil {
		return nil, wrapError(KindInternal, "ZEWIF-LEAF-013", "leaf encode", err)
	}
	return b, nil
}

// appendHead writes a definite-length CBOR item head with the shortest form,
// as required by Core Deterministic Encoding.
func appendHead(buf *bytes.Buffer, major byte, n uint64) {
	mt := major << 5
	switch {
	case n < 24:
		buf.WriteByte(mt | byte(n))
	case n <= 0xff:
		buf.WriteByte(mt | 24)
		buf.WriteByte(byte(n))
	case n <= 0xffff:
		buf.WriteByte(mt | 25)
		buf.WriteByte(byte(n >> 8))
		buf.WriteByte(byte(n))
	case n <= 0xffffffff:
		buf.WriteByte(mt | 26)
		buf.WriteByte(byte(n >> 24))
		buf.WriteByte(byte(n >> 16))
		buf.WriteByte(byte(n >> 8))
		buf.WriteByte(byte(n))
	default:
		buf.WriteByte(mt | 27)
		for shift := 56; shift >= 0; shift -= 8 {
			buf.WriteByte(byte(n >> uint(shift)))
		}
	}
}

// String renders a compact diagnostic form. It is for debugging only and is
// not part of the canonical encoding.
func (v Value) String() string {
	switch v.kind {
	case KindUint:
		return fmt.Sprintf("%d", v.u)
	case KindInt:
		return fmt.Sprintf("%d", v.i)
	case KindBytes:
		return "h'" + hex.EncodeToString(v.bs) + "'"
	case KindText:
		return fmt.Sprintf("%q", v.s)
	case KindBool:
		return fmt.Sprintf("%t", v.b)
	case KindKnown:
		return fmt.Sprintf("known(%d)", v.u)
	case KindArray:
		parts := make([]string, len(v.arr))
		for i, e := range v.arr {
			parts[i] = e.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindMap:
		parts := make([]string, len(v.ent))
		for i, e := range v.ent {
			parts[i] = e.Key.String() + ": " + e.Val.String()
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return "<invalid>"
	}
}

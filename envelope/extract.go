package envelope

import "zewif.dev/zewif/codec"

// Typed extraction helpers. Each reads the envelope's subject leaf and
// fails with KindInvalidOperation when the leaf has the wrong kind; schema
// layers map these failures onto their own error taxonomy.

func ExtractText(e *Envelope) (string, error) {
	v, ok := e.Leaf()
	if !ok {
		return "", notLeaf("text")
	}
	s, ok := v.TextValue()
	if !ok {
		return "", wrongKind("text", v)
	}
	return s, nil
}

func ExtractUint(e *Envelope) (uint64, error) {
	v, ok := e.Leaf()
	if !ok {
		return 0, notLeaf("uint")
	}
	u, ok := v.UintValue()
	if !ok {
		return 0, wrongKind("uint", v)
	}
	return u, nil
}

func ExtractInt(e *Envelope) (int64, error) {
	v, ok := e.Leaf()
	if !ok {
		return 0, notLeaf("int")
	}
	i, ok := v.IntValue()
	if !ok {
		return 0, wrongKind("int", v)
	}
	return i, nil
}

func ExtractBytes(e *Envelope) ([]byte, error) {
	v, ok := e.Leaf()
	if !ok {
		return nil, notLeaf("bytes")
	}
	b, ok := v.BytesValue()
	if !ok {
		return nil, wrongKind("bytes", v)
	}
	return b, nil
}

func ExtractBool(e *Envelope) (bool, error) {
	v, ok := e.Leaf()
	if !ok {
		return false, notLeaf("bool")
	}
	b, ok := v.BoolValue()
	if !ok {
		return false, wrongKind("bool", v)
	}
	return b, nil
}

// HasType reports whether the envelope carries a type-identity assertion
// with the given name. Entities may carry more than one type.
func (e *Envelope) HasType(name string) bool {
	for _, t := range e.Types() {
		if t == name {
			return true
		}
	}
	return false
}

// Types returns every type-identity name on the envelope in canonical
// assertion order.
func (e *Envelope) Types() []string {
	var out []string
	for _, obj := range e.ObjectsForPredicate(NewKnown(KnownIsA)) {
		if s, err := ExtractText(obj); err == nil {
			out = append(out, s)
		}
	}
	return out
}

func notLeaf(want string) error {
	return newError(KindInvalidOperation, "ZEWIF-ENC-040", "expected a "+want+" leaf, envelope has none")
}

func wrongKind(want string, v codec.Value) error {
	return newError(KindInvalidOperation, "ZEWIF-ENC-041", "expected a "+want+" leaf, found "+v.Kind().String())
}

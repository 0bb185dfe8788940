// Package envelope implements the hierarchical encoding substrate of the
// interchange format: an immutable, content-addressed subject/assertion
// tree with typed leaves, wrapping, elision, and compression.
//
// Every envelope has a stable digest computed from its structure, so
// structurally identical envelopes are interchangeable. Elision replaces a
// subtree with a digest-only placeholder without changing any ancestor
// digest; compression obscures content while carrying the original digest.
// All transforms are pure: they return new envelopes and never mutate.
package envelope

import (
	"bytes"
	"sort"

	"zewif.dev/zewif/codec"
)

type caseKind uint8

const (
	caseLeaf caseKind = iota
	caseNode
	caseWrapped
	caseElided
	caseCompressed
)

// Envelope is a node of the interchange tree. Envelopes are immutable
// after construction; concurrent readers never race.
type Envelope struct {
	kind caseKind

	leaf       codec.Value // caseLeaf
	subject    *Envelope   // caseNode
	assertions []Assertion // caseNode, sorted by assertion digest, unique
	inner      *Envelope   // caseWrapped
	compressed []byte      // caseCompressed

	digest Digest
}

// Assertion is a (predicate, object) pair about an envelope's subject, or
// the digest-only placeholder left by eliding one.
type Assertion struct {
	pred   *Envelope // nil when elided
	obj    *Envelope // nil when elided
	digest Digest
}

// NewAssertion builds an assertion from a predicate and an object.
func NewAssertion(pred, obj *Envelope) Assertion {
	return Assertion{pred: pred, obj: obj, digest: assertionDigest(pred.digest, obj.digest)}
}

// IsElided reports whether the assertion is a digest-only placeholder.
func (a Assertion) IsElided() bool { return a.pred == nil }

// Predicate returns the assertion's predicate envelope, or nil when elided.
func (a Assertion) Predicate() *Envelope { return a.pred }

// Object returns the assertion's object envelope, or nil when elided.
func (a Assertion) Object() *Envelope { return a.obj }

// Digest returns the assertion's content digest, preserved under elision.
func (a Assertion) Digest() Digest { return a.digest }

// NewLeaf returns a leaf envelope holding a canonical leaf value.
func NewLeaf(v codec.Value) *Envelope {
	e := &Envelope{kind: caseLeaf, leaf: v}
	e.digest = leafDigest(v)
	return e
}

// NewText is shorthand for a UTF-8 text leaf.
func NewText(s string) *Envelope { return NewLeaf(codec.Text(s)) }

// NewUint is shorthand for an unsigned integer leaf.
func NewUint(u uint64) *Envelope { return NewLeaf(codec.Uint(u)) }

// NewBytes is shorthand for a byte-string leaf.
func NewBytes(b []byte) *Envelope { return NewLeaf(codec.Bytes(b)) }

// NewBool is shorthand for a boolean leaf.
func NewBool(b bool) *Envelope { return NewLeaf(codec.Bool(b)) }

// NewKnown returns a leaf envelope holding a reserved registry marker.
func NewKnown(k KnownValue) *Envelope { return NewLeaf(codec.Known(uint64(k))) }

// Wrap promotes the entire envelope, including its own assertions, into the
// subject of a new envelope, so further assertions refer to the whole prior
// thing.
func (e *Envelope) Wrap() *Envelope {
	w := &Envelope{kind: caseWrapped, inner: e}
	w.digest = wrappedDigest(e.digest)
	return w
}

// Unwrap returns the envelope a wrapped envelope was built from.
func (e *Envelope) Unwrap() (*Envelope, error) {
	if e.kind != caseWrapped {
		return nil, newError(KindInvalidOperation, "ZEWIF-ENC-020", "cannot unwrap a non-wrapped envelope")
	}
	return e.inner, nil
}

// IsLeaf reports whether the envelope is a bare leaf with no assertions.
func (e *Envelope) IsLeaf() bool { return e.kind == caseLeaf }

// IsWrapped reports whether the envelope's subject is a whole prior envelope.
func (e *Envelope) IsWrapped() bool { return e.kind == caseWrapped }

// IsElided reports whether the envelope is a digest-only placeholder.
func (e *Envelope) IsElided() bool { return e.kind == caseElided }

// IsCompressed reports whether the envelope holds compressed content.
func (e *Envelope) IsCompressed() bool { return e.kind == caseCompressed }

// HasAssertions reports whether the envelope carries assertions.
func (e *Envelope) HasAssertions() bool { return e.kind == caseNode }

// Leaf returns the envelope's leaf value. The second result is false for
// non-leaf envelopes; for an envelope with assertions it reports the
// subject's leaf value when the subject is a leaf.
func (e *Envelope) Leaf() (codec.Value, bool) {
	switch e.kind {
	case caseLeaf:
		return e.leaf, true
	case caseNode:
		return e.subject.Leaf()
	default:
		return codec.Value{}, false
	}
}

// Subject returns the envelope the assertions are about. For an envelope
// without assertions, the subject is the envelope itself.
func (e *Envelope) Subject() *Envelope {
	if e.kind == caseNode {
		return e.subject
	}
	return e
}

// Assertions returns the envelope's assertions in canonical digest order.
func (e *Envelope) Assertions() []Assertion {
	if e.kind != caseNode {
		return nil
	}
	out := make([]Assertion, len(e.assertions))
	copy(out, e.assertions)
	return out
}

// Digest returns the envelope's stable content digest.
func (e *Envelope) Digest() Digest { return e.digest }

// Equal reports structural identity: equal digests mean equal content.
func (e *Envelope) Equal(o *Envelope) bool {
	if e == nil || o == nil {
		return e == o
	}
	return e.digest == o.digest
}

// WithAssertion returns a new envelope carrying the given assertion in
// addition to any existing ones. Assertions form an ordered-irrelevant set:
// adding an assertion that is already present returns an envelope equal to
// the receiver.
func (e *Envelope) WithAssertion(pred, obj *Envelope) *Envelope {
	return e.withAssertions(NewAssertion(pred, obj))
}

// WithOptionalAssertion is WithAssertion when obj is non-nil and a no-op
// otherwise; it keeps optional-field encoding at call sites flat.
func (e *Envelope) WithOptionalAssertion(pred, obj *Envelope) *Envelope {
	if obj == nil {
		return e
	}
	return e.WithAssertion(pred, obj)
}

// WithType tags the envelope with a type-identity assertion.
func (e *Envelope) WithType(name string) *Envelope {
	return e.WithAssertion(NewKnown(KnownIsA), NewText(name))
}

func (e *Envelope) withAssertions(added ...Assertion) *Envelope {
	if len(added) == 0 {
		return e
	}

	var subject *Envelope
	var merged []Assertion
	if e.kind == caseNode {
		subject = e.subject
		merged = append(merged, e.assertions...)
	} else {
		subject = e
	}
	merged = append(merged, added...)

	sort.SliceStable(merged, func(i, j int) bool {
		return bytes.Compare(merged[i].digest[:], merged[j].digest[:]) < 0
	})
	deduped := merged[:0]
	for i, a := range merged {
		if i > 0 && a.digest == merged[i-1].digest {
			continue
		}
		deduped = append(deduped, a)
	}

	n := &Envelope{kind: caseNode, subject: subject, assertions: deduped}
	n.digest = nodeDigest(subject.digest, deduped)
	return n
}

// ObjectsForPredicate returns the objects of every non-elided assertion
// whose predicate equals pred, in canonical assertion order.
func (e *Envelope) ObjectsForPredicate(pred *Envelope) []*Envelope {
	var out []*Envelope
	for _, a := range e.Assertions() {
		if a.IsElided() {
			continue
		}
		if a.pred.Equal(pred) {
			out = append(out, a.obj)
		}
	}
	return out
}

// ObjectForPredicate returns the object of the single assertion with the
// given predicate. Zero or multiple matches fail.
func (e *Envelope) ObjectForPredicate(pred *Envelope) (*Envelope, error) {
	objs := e.ObjectsForPredicate(pred)
	switch len(objs) {
	case 0:
		return nil, newError(KindInvalidOperation, "ZEWIF-ENC-021", "no assertion with predicate "+pred.diagShort())
	case 1:
		return objs[0], nil
	default:
		return nil, newError(KindInvalidOperation, "ZEWIF-ENC-022", "multiple assertions with predicate "+pred.diagShort())
	}
}

// ReplaceObjectForPredicate returns a new envelope where the object of the
// single assertion with the given predicate is obj. When obj carries the
// same digest as the object it replaces (as with compression), the
// envelope's digest is unchanged.
func (e *Envelope) ReplaceObjectForPredicate(pred, obj *Envelope) (*Envelope, error) {
	if _, err := e.ObjectForPredicate(pred); err != nil {
		return nil, err
	}
	subject := e.Subject()
	replaced := make([]Assertion, 0, len(e.assertions))
	for _, a := range e.Assertions() {
		if !a.IsElided() && a.pred.Equal(pred) {
			a = NewAssertion(a.pred, obj)
		}
		replaced = append(replaced, a)
	}
	return subject.withAssertions(replaced...), nil
}

// OptionalObjectForPredicate is ObjectForPredicate with absence permitted.
func (e *Envelope) OptionalObjectForPredicate(pred *Envelope) (*Envelope, error) {
	objs := e.ObjectsForPredicate(pred)
	switch len(objs) {
	case 0:
		return nil, nil
	case 1:
		return objs[0], nil
	default:
		return nil, newError(KindInvalidOperation, "ZEWIF-ENC-022", "multiple assertions with predicate "+pred.diagShort())
	}
}

func (e *Envelope) diagShort() string {
	if v, ok := e.Leaf(); ok {
		if u, isKnown := v.KnownValue(); isKnown {
			return KnownValue(u).Name()
		}
		return v.String()
	}
	return e.digest.String()
}

package zewif

import (
	"math"
	"sort"

	"zewif.dev/zewif/envelope"
)

// Shared decode discipline. Every typed entity decodes the same way:
// verify the type-identity assertion, extract required fields (absence is
// fatal), extract optional fields permissively, and pass attachments and
// unknown assertions through untouched.

func pred(name string) *envelope.Envelope { return envelope.NewText(name) }

func checkType(e *envelope.Envelope, name string) error {
	if !e.HasType(name) {
		return newError(KindTypeMismatch, "ZEWIF-MODEL-001", "envelope is not a "+name)
	}
	return nil
}

func requiredObject(e *envelope.Envelope, name string) (*envelope.Envelope, error) {
	obj, err := e.OptionalObjectForPredicate(pred(name))
	if err != nil {
		return nil, wrapError(KindInvalidValue, "ZEWIF-MODEL-002", name+": ambiguous field", err)
	}
	if obj == nil {
		return nil, newError(KindMissingField, "ZEWIF-MODEL-003", name+": required field absent")
	}
	return obj, nil
}

func optionalObject(e *envelope.Envelope, name string) (*envelope.Envelope, error) {
	obj, err := e.OptionalObjectForPredicate(pred(name))
	if err != nil {
		return nil, wrapError(KindInvalidValue, "ZEWIF-MODEL-002", name+": ambiguous field", err)
	}
	return obj, nil
}

func requiredText(e *envelope.Envelope, name string) (string, error) {
	obj, err := requiredObject(e, name)
	if err != nil {
		return "", err
	}
	s, err := envelope.ExtractText(obj)
	if err != nil {
		return "", wrapError(KindInvalidValue, "ZEWIF-MODEL-004", name+": not a text leaf", err)
	}
	return s, nil
}

func optionalText(e *envelope.Envelope, name string) (*string, error) {
	obj, err := optionalObject(e, name)
	if err != nil || obj == nil {
		return nil, err
	}
	s, err := envelope.ExtractText(obj)
	if err != nil {
		return nil, wrapError(KindInvalidValue, "ZEWIF-MODEL-004", name+": not a text leaf", err)
	}
	return &s, nil
}

func requiredUint(e *envelope.Envelope, name string) (uint64, error) {
	obj, err := requiredObject(e, name)
	if err != nil {
		return 0, err
	}
	u, err := envelope.ExtractUint(obj)
	if err != nil {
		return 0, wrapError(KindInvalidValue, "ZEWIF-MODEL-005", name+": not an unsigned integer leaf", err)
	}
	return u, nil
}

func optionalUint(e *envelope.Envelope, name string) (*uint64, error) {
	obj, err := optionalObject(e, name)
	if err != nil || obj == nil {
		return nil, err
	}
	u, err := envelope.ExtractUint(obj)
	if err != nil {
		return nil, wrapError(KindInvalidValue, "ZEWIF-MODEL-005", name+": not an unsigned integer leaf", err)
	}
	return &u, nil
}

func requiredBytes(e *envelope.Envelope, name string) ([]byte, error) {
	obj, err := requiredObject(e, name)
	if err != nil {
		return nil, err
	}
	b, err := envelope.ExtractBytes(obj)
	if err != nil {
		return nil, wrapError(KindInvalidValue, "ZEWIF-MODEL-006", name+": not a byte-string leaf", err)
	}
	return b, nil
}

func optionalBytes(e *envelope.Envelope, name string) ([]byte, error) {
	obj, err := optionalObject(e, name)
	if err != nil || obj == nil {
		return nil, err
	}
	b, err := envelope.ExtractBytes(obj)
	if err != nil {
		return nil, wrapError(KindInvalidValue, "ZEWIF-MODEL-006", name+": not a byte-string leaf", err)
	}
	return b, nil
}

// subjectUint reads an entity's ordering index from its subject leaf.
func subjectUint(e *envelope.Envelope) (uint64, error) {
	u, err := envelope.ExtractUint(e.Subject())
	if err != nil {
		return 0, wrapError(KindInvalidValue, "ZEWIF-MODEL-007", "entity subject is not an index", err)
	}
	return u, nil
}

// subjectUint32 reads an entity's ordering index into its native width.
// Truncating an oversized index would silently renumber the entity, so
// values beyond 32 bits fail the decode instead.
func subjectUint32(e *envelope.Envelope) (uint32, error) {
	u, err := subjectUint(e)
	if err != nil {
		return 0, err
	}
	return toUint32(u, "entity index")
}

func toUint32(u uint64, name string) (uint32, error) {
	if u > math.MaxUint32 {
		return 0, newError(KindInvalidValue, "ZEWIF-MODEL-011", name+": exceeds 32 bits")
	}
	return uint32(u), nil
}

func subjectBytes(e *envelope.Envelope) ([]byte, error) {
	b, err := envelope.ExtractBytes(e.Subject())
	if err != nil {
		return nil, wrapError(KindInvalidValue, "ZEWIF-MODEL-008", "entity subject is not a byte string", err)
	}
	return b, nil
}

// indexedObjects collects the objects of every assertion with the given
// predicate and restores containment order from their index subjects.
// Canonical assertion order scrambles insertion order on the wire; the
// index carried in each object's subject is what makes order survive a
// round trip. Duplicate indexes are rejected.
func indexedObjects(e *envelope.Envelope, name string) ([]*envelope.Envelope, error) {
	objs := e.ObjectsForPredicate(pred(name))
	type indexed struct {
		idx uint64
		obj *envelope.Envelope
	}
	items := make([]indexed, 0, len(objs))
	for _, obj := range objs {
		idx, err := subjectUint(obj)
		if err != nil {
			return nil, err
		}
		items = append(items, indexed{idx: idx, obj: obj})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].idx < items[j].idx })
	for i := 1; i < len(items); i++ {
		if items[i].idx == items[i-1].idx {
			return nil, newError(KindInvalidValue, "ZEWIF-MODEL-009", name+": duplicate index")
		}
	}
	out := make([]*envelope.Envelope, len(items))
	for i, it := range items {
		out[i] = it.obj
	}
	return out, nil
}

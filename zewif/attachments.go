package zewif

import (
	"zewif.dev/zewif/envelope"
)

// Attachments is the extension point every entity exposes for data the
// canonical schema does not model. Attachments are owned by their entity,
// listed in insertion order, and never deduplicated: two attachments with
// identical vendor and conformsTo are both kept.
type Attachments struct {
	list []envelope.Attachment
}

// Add constructs an attachment from payload and provenance and appends it.
// An empty vendor fails with the envelope package's MissingVendor kind at
// construction time. conformsTo may be empty; callers that enforce the
// conversion contract surface its absence as an advisory.
func (a *Attachments) Add(payload *envelope.Envelope, vendor, conformsTo string) (envelope.Attachment, error) {
	att, err := envelope.NewAttachment(payload, vendor, conformsTo)
	if err != nil {
		return envelope.Attachment{}, err
	}
	a.list = append(a.list, att)
	return att, nil
}

// List returns the attachments in insertion order. The sequence is finite
// and restartable: each call returns a fresh slice. After an encode/decode
// cycle insertion order is whatever the wire carried, which is canonical
// digest order, and byte-identical attachments collapse into one because
// the wire is an assertion set.
func (a *Attachments) List() []envelope.Attachment {
	out := make([]envelope.Attachment, len(a.list))
	copy(out, a.list)
	return out
}

func (a *Attachments) Len() int { return len(a.list) }

func (a *Attachments) IsEmpty() bool { return len(a.list) == 0 }

// addToEnvelope appends every attachment assertion to e.
func (a *Attachments) addToEnvelope(e *envelope.Envelope) *envelope.Envelope {
	for _, att := range a.list {
		e = e.WithAttachment(att)
	}
	return e
}

// attachmentsFromEnvelope collects an entity's attachments on decode. The
// wire carries assertions in canonical digest order, so that becomes the
// new insertion order.
func attachmentsFromEnvelope(e *envelope.Envelope) (Attachments, error) {
	atts, err := e.Attachments()
	if err != nil {
		return Attachments{}, wrapError(KindInvalidValue, "ZEWIF-MODEL-010", "malformed attachment", err)
	}
	return Attachments{list: atts}, nil
}

// Attachable is implemented by every entity that owns an attachment
// collection.
type Attachable interface {
	Attachments() *Attachments
}

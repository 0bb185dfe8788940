package envelope

// Attachment is the reserved assertion shape for vendor-specific data: the
// predicate is KnownAttachment and the object is the wrapped payload
// carrying provenance metadata. Attachments are the sole extension point
// for data the canonical schema does not model.
type Attachment struct {
	assertion Assertion
}

// NewAttachment builds an attachment from a payload and its provenance.
//
// vendor identifies the producer of the data and must be non-empty; an
// empty vendor fails with KindMissingVendor here, at construction, so a
// non-compliant attachment can never be produced. conformsTo should be a
// versioned locator for a format description; it may be empty, and callers
// that care are expected to surface its absence as an advisory.
func NewAttachment(payload *Envelope, vendor, conformsTo string) (Attachment, error) {
	if vendor == "" {
		return Attachment{}, newError(KindMissingVendor, "ZEWIF-ATT-001", "attachment requires a non-empty vendor")
	}
	obj := payload.Wrap().
		WithAssertion(NewKnown(KnownVendor), NewText(vendor))
	if conformsTo != "" {
		obj = obj.WithAssertion(NewKnown(KnownConformsTo), NewText(conformsTo))
	}
	return Attachment{assertion: NewAssertion(NewKnown(KnownAttachment), obj)}, nil
}

// attachmentFromAssertion validates the reserved shape of an existing
// assertion. Used when reading attachments back out of a decoded envelope.
func attachmentFromAssertion(a Assertion) (Attachment, error) {
	if a.IsElided() {
		return Attachment{}, newError(KindMalformedEncoding, "ZEWIF-ATT-002", "attachment assertion is elided")
	}
	att := Attachment{assertion: a}
	if _, err := att.Vendor(); err != nil {
		return Attachment{}, err
	}
	if _, err := att.Payload(); err != nil {
		return Attachment{}, err
	}
	return att, nil
}

// Assertion returns the attachment in assertion form.
func (t Attachment) Assertion() Assertion { return t.assertion }

// Digest returns the attachment's stable content digest.
func (t Attachment) Digest() Digest { return t.assertion.digest }

// Payload returns the attached data, unwrapped.
func (t Attachment) Payload() (*Envelope, error) {
	inner, err := t.assertion.obj.Subject().Unwrap()
	if err != nil {
		return nil, wrapError(KindMalformedEncoding, "ZEWIF-ATT-003", "attachment payload is not wrapped", err)
	}
	return inner, nil
}

// Vendor returns the producer identifier carried by the attachment.
func (t Attachment) Vendor() (string, error) {
	obj, err := t.assertion.obj.ObjectForPredicate(NewKnown(KnownVendor))
	if err != nil {
		return "", wrapError(KindMalformedEncoding, "ZEWIF-ATT-004", "attachment has no vendor", err)
	}
	return ExtractText(obj)
}

// ConformsTo returns the format locator, with ok=false when absent.
func (t Attachment) ConformsTo() (string, bool, error) {
	obj, err := t.assertion.obj.OptionalObjectForPredicate(NewKnown(KnownConformsTo))
	if err != nil {
		return "", false, err
	}
	if obj == nil {
		return "", false, nil
	}
	s, err := ExtractText(obj)
	if err != nil {
		return "", false, err
	}
	return s, true, nil
}

// WithAttachment returns a new envelope carrying the attachment.
func (e *Envelope) WithAttachment(t Attachment) *Envelope {
	return e.withAssertions(t.assertion)
}

// Attachments returns every attachment assertion on the envelope, in
// canonical assertion order. Assertions that use the reserved predicate but
// do not have the reserved shape fail.
func (e *Envelope) Attachments() ([]Attachment, error) {
	pred := NewKnown(KnownAttachment)
	var out []Attachment
	for _, a := range e.Assertions() {
		if a.IsElided() || !a.pred.Equal(pred) {
			continue
		}
		att, err := attachmentFromAssertion(a)
		if err != nil {
			return nil, err
		}
		out = append(out, att)
	}
	return out, nil
}

package zewif

import (
	"zewif.dev/zewif/envelope"
)

// Container is the persisted interchange file: the root envelope wrapped
// under a content assertion so the file can later grow sidecar metadata
// without disturbing the root. Compression happens inside the wrap, so the
// container's digest is stable across a compress/uncompress cycle.
// At-rest encryption is applied by external tooling to the container's
// canonical bytes and is not modeled here.
type Container struct {
	envelope *envelope.Envelope
}

// NewContainer wraps an interchange root.
func NewContainer(root *Zewif) *Container {
	content := root.Envelope().Wrap()
	e := envelope.NewText("zewif").
		WithAssertion(envelope.NewKnown(envelope.KnownContent), content)
	return &Container{envelope: e}
}

// ContainerFromEnvelope validates a decoded container envelope.
func ContainerFromEnvelope(e *envelope.Envelope) (*Container, error) {
	if _, err := containerContent(e); err != nil {
		return nil, err
	}
	return &Container{envelope: e}, nil
}

// DecodeContainer parses canonical container bytes.
func DecodeContainer(data []byte) (*Container, error) {
	e, err := envelope.Decode(data)
	if err != nil {
		return nil, err
	}
	return ContainerFromEnvelope(e)
}

func containerContent(e *envelope.Envelope) (*envelope.Envelope, error) {
	obj, err := e.OptionalObjectForPredicate(envelope.NewKnown(envelope.KnownContent))
	if err != nil {
		return nil, wrapError(KindInvalidValue, "ZEWIF-MODEL-120", "ambiguous container content", err)
	}
	if obj == nil {
		return nil, newError(KindMissingField, "ZEWIF-MODEL-121", "container has no content")
	}
	return obj, nil
}

// Encode renders the container to canonical bytes.
func (c *Container) Encode() []byte { return c.envelope.Encode() }

// Digest is the container's root digest. It is unchanged by Compress and
// Uncompress.
func (c *Container) Digest() envelope.Digest { return c.envelope.Digest() }

// Compress compresses the wrapped root in place inside the content
// assertion, leaving the container digest unchanged.
func (c *Container) Compress() error {
	return c.transformContent((*envelope.Envelope).Compress)
}

// Uncompress restores the wrapped root.
func (c *Container) Uncompress() error {
	return c.transformContent((*envelope.Envelope).Uncompress)
}

func (c *Container) transformContent(f func(*envelope.Envelope) (*envelope.Envelope, error)) error {
	content, err := containerContent(c.envelope)
	if err != nil {
		return err
	}
	transformed, err := f(content)
	if err != nil {
		return err
	}
	replaced, err := c.envelope.ReplaceObjectForPredicate(envelope.NewKnown(envelope.KnownContent), transformed)
	if err != nil {
		return wrapError(KindInvalidValue, "ZEWIF-MODEL-122", "replacing container content", err)
	}
	c.envelope = replaced
	return nil
}

// Root decodes the wrapped interchange root, uncompressing first if
// needed.
func (c *Container) Root() (*Zewif, error) {
	content, err := containerContent(c.envelope)
	if err != nil {
		return nil, err
	}
	if content.IsCompressed() {
		if content, err = content.Uncompress(); err != nil {
			return nil, err
		}
	}
	inner, err := content.Unwrap()
	if err != nil {
		return nil, wrapError(KindInvalidValue, "ZEWIF-MODEL-123", "container content is not wrapped", err)
	}
	return ZewifFromEnvelope(inner)
}

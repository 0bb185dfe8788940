package envelope

import (
	"github.com/klauspost/compress/zstd"
)

var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("envelope: building zstd encoder: " + err.Error())
	}
	zstdEncoder = enc

	dec, err := zstd.NewReader(nil)
	if err != nil {
		panic("envelope: building zstd decoder: " + err.Error())
	}
	zstdDecoder = dec
}

// Compress returns an envelope whose content is replaced by a compressed
// payload carrying the original digest, so ancestors keep their digests.
// Compressing an already-compressed envelope returns it unchanged; an
// elided envelope has no content to compress.
func (e *Envelope) Compress() (*Envelope, error) {
	switch e.kind {
	case caseCompressed:
		return e, nil
	case caseElided:
		return nil, newError(KindInvalidOperation, "ZEWIF-ENC-030", "cannot compress an elided envelope")
	}
	payload := zstdEncoder.EncodeAll(e.Encode(), nil)
	return &Envelope{kind: caseCompressed, compressed: payload, digest: e.digest}, nil
}

// Uncompress restores the envelope a compressed envelope was built from.
// The restored content's digest must match the digest the compressed
// envelope carried; a mismatch means the payload was corrupted or swapped.
func (e *Envelope) Uncompress() (*Envelope, error) {
	if e.kind != caseCompressed {
		return nil, newError(KindInvalidOperation, "ZEWIF-ENC-031", "cannot uncompress a non-compressed envelope")
	}
	raw, err := zstdDecoder.DecodeAll(e.compressed, nil)
	if err != nil {
		return nil, wrapError(KindMalformedEncoding, "ZEWIF-ENC-032", "undecodable compressed payload", err)
	}
	restored, err := Decode(raw)
	if err != nil {
		return nil, err
	}
	if restored.digest != e.digest {
		return nil, newError(KindMalformedEncoding, "ZEWIF-ENC-033", "compressed payload does not match carried digest")
	}
	return restored, nil
}

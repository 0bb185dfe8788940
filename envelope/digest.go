package envelope

import (
	"crypto/sha256"
	"encoding/hex"

	"zewif.dev/zewif/codec"
)

// Digest is the stable content identifier of an envelope: a sha2-256 hash
// over a domain-separated Merkle construction, so the digest of a tree
// depends only on structure and survives elision and compression of any
// part of it.
type Digest [sha256.Size]byte

// String returns the full hex form of the digest.
func (d Digest) String() string { return hex.EncodeToString(d[:]) }

// Short returns an abbreviated hex form for diagnostics.
func (d Digest) Short() string { return hex.EncodeToString(d[:4]) }

// Domain-separation prefixes. Each envelope case hashes under its own
// prefix so a leaf can never collide with, say, a wrapped envelope whose
// inner bytes happen to match.
const (
	domainLeaf      = 0x00
	domainAssertion = 0x01
	domainNode      = 0x02
	domainWrapped   = 0x03
)

func leafDigest(v codec.Value) Digest {
	h := sha256.New()
	h.Write([]byte{domainLeaf})
	h.Write(codec.MustEncode(v))
	return sumToDigest(h.Sum(nil))
}

func assertionDigest(pred, obj Digest) Digest {
	h := sha256.New()
	h.Write([]byte{domainAssertion})
	h.Write(pred[:])
	h.Write(obj[:])
	return sumToDigest(h.Sum(nil))
}

// nodeDigest hashes the subject digest followed by the assertion digests in
// canonical (sorted) order. Assertions must already be sorted.
func nodeDigest(subject Digest, assertions []Assertion) Digest {
	h := sha256.New()
	h.Write([]byte{domainNode})
	h.Write(subject[:])
	for _, a := range assertions {
		h.Write(a.digest[:])
	}
	return sumToDigest(h.Sum(nil))
}

func wrappedDigest(inner Digest) Digest {
	h := sha256.New()
	h.Write([]byte{domainWrapped})
	h.Write(inner[:])
	return sumToDigest(h.Sum(nil))
}

func sumToDigest(sum []byte) Digest {
	var d Digest
	copy(d[:], sum)
	return d
}

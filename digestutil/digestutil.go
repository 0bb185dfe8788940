// Package digestutil derives content identifiers for canonical interchange
// bytes. Identifiers are IPFS-compatible CIDv1 (raw + sha2-256), so any
// content-addressed tooling can verify stored interchange files without
// knowing the tree structure inside them.
package digestutil

import (
	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// CIDv1RawSHA256 returns a CIDv1 string using the "raw" multicodec and a
// sha2-256 multihash.
func CIDv1RawSHA256(data []byte) string {
	sum, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		// multihash.Sum only errors for invalid parameters; with SHA2_256 and
		// -1 length this is unreachable.
		return ""
	}
	return cid.NewCidV1(cid.Raw, sum).String()
}

// CIDv1RawSHA256CID returns a CIDv1 (raw + sha2-256) derived from data.
func CIDv1RawSHA256CID(data []byte) (cid.Cid, error) {
	sum, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return cid.Undef, err
	}
	return cid.NewCidV1(cid.Raw, sum), nil
}

// Sum256 returns the raw sha2-256 digest of data via the multihash registry.
func Sum256(data []byte) ([]byte, error) {
	sum, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return nil, err
	}
	decoded, err := multihash.Decode(sum)
	if err != nil {
		return nil, err
	}
	return decoded.Digest, nil
}

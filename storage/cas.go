// Package storage provides content-addressed storage for encoded
// interchange files. A migration run produces canonical bytes; storing
// them under a CID derived from those bytes makes snapshots immutable,
// deduplicated, and verifiable on read.
package storage

import (
	"github.com/ipfs/go-cid"

	"zewif.dev/zewif/digestutil"
	"zewif.dev/zewif/zewif"
)

// CAS is a minimal content-addressable store.
//
// Contract:
// - Put MUST be idempotent.
// - Stored objects MUST be immutable.
// - CIDs MUST be derived from the bytes written (callers supply canonical bytes).
// - Get MUST return ErrNotFound when the CID is absent.
type CAS interface {
	Put(bytes []byte) (cid.Cid, error)
	Get(id cid.Cid) ([]byte, error)
	Has(id cid.Cid) bool
}

// Snapshots stores and retrieves interchange roots and containers by CID.
// It is a thin domain layer over any CAS: encoding is canonical, so a root
// always maps to the same CID.
type Snapshots struct {
	CAS CAS
}

// StoreRoot encodes the interchange root and stores its canonical bytes.
func (s Snapshots) StoreRoot(root *zewif.Zewif) (cid.Cid, error) {
	return s.CAS.Put(root.Encode())
}

// LoadRoot retrieves and decodes an interchange root.
func (s Snapshots) LoadRoot(id cid.Cid) (*zewif.Zewif, error) {
	b, err := s.CAS.Get(id)
	if err != nil {
		return nil, err
	}
	return zewif.Decode(b)
}

// StoreContainer stores a persisted interchange container.
func (s Snapshots) StoreContainer(c *zewif.Container) (cid.Cid, error) {
	return s.CAS.Put(c.Encode())
}

// LoadContainer retrieves and decodes a persisted interchange container.
func (s Snapshots) LoadContainer(id cid.Cid) (*zewif.Container, error) {
	b, err := s.CAS.Get(id)
	if err != nil {
		return nil, err
	}
	return zewif.DecodeContainer(b)
}

// CIDFor computes the CID canonical bytes would be stored under, without
// storing them.
func CIDFor(bytes []byte) (cid.Cid, error) {
	return digestutil.CIDv1RawSHA256CID(bytes)
}

package storage

import (
	"fmt"

	"github.com/ipfs/go-cid"

	"zewif.dev/zewif/digestutil"
)

// NamedCAS pairs a store with a stable name for per-backend reporting.
type NamedCAS struct {
	Name string
	CAS  CAS
}

// ReplicatingCAS fans writes out to every backend, for setups that keep a
// migration snapshot in more than one place. Every backend must return the
// canonical CID computed from the bytes; a disagreeing backend fails the
// write with ErrCIDMismatch. Reads fall back in backend order.
type ReplicatingCAS struct {
	Backends []NamedCAS
}

var _ CAS = (*ReplicatingCAS)(nil)

// PutAll writes the same bytes to all backends and returns the canonical
// CID together with the per-backend CID map.
func (r ReplicatingCAS) PutAll(bytes []byte) (cid.Cid, map[string]cid.Cid, error) {
	want, err := digestutil.CIDv1RawSHA256CID(bytes)
	if err != nil {
		return cid.Undef, nil, err
	}
	if !want.Defined() {
		return cid.Undef, nil, ErrInvalidCID
	}
	if len(r.Backends) == 0 {
		return cid.Undef, nil, fmt.Errorf("storage: ReplicatingCAS has no backends")
	}

	out := make(map[string]cid.Cid, len(r.Backends))
	for _, b := range r.Backends {
		if b.CAS == nil {
			return cid.Undef, nil, fmt.Errorf("storage: nil CAS for backend %q", b.Name)
		}
		got, err := b.CAS.Put(bytes)
		if err != nil {
			return cid.Undef, nil, err
		}
		out[b.Name] = got
		if got != want {
			return cid.Undef, out, ErrCIDMismatch
		}
	}
	return want, out, nil
}

func (r ReplicatingCAS) Put(bytes []byte) (cid.Cid, error) {
	id, _, err := r.PutAll(bytes)
	return id, err
}

func (r ReplicatingCAS) Get(id cid.Cid) ([]byte, error) {
	for _, b := range r.Backends {
		if b.CAS == nil {
			continue
		}
		out, err := b.CAS.Get(id)
		if err == nil {
			return out, nil
		}
		if IsNotFound(err) {
			continue
		}
		return nil, err
	}
	return nil, ErrNotFound
}

func (r ReplicatingCAS) Has(id cid.Cid) bool {
	for _, b := range r.Backends {
		if b.CAS != nil && b.CAS.Has(id) {
			return true
		}
	}
	return false
}

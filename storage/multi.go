package storage

import (
	"errors"

	"github.com/ipfs/go-cid"
)

// TieredCAS reads through an ordered list of stores: typical layouts put a
// local snapshot directory first and a remote archive behind it. Lookup
// order is the slice order, fixed by the caller, so retrieval is
// deterministic and never depends on map iteration.
//
// Put writes only to the first store; replication across stores is
// ReplicatingCAS's job.
type TieredCAS struct {
	Stores []CAS
}

func (m TieredCAS) Put(bytes []byte) (cid.Cid, error) {
	if len(m.Stores) == 0 {
		return cid.Undef, errors.New("storage: TieredCAS has no stores")
	}
	return m.Stores[0].Put(bytes)
}

func (m TieredCAS) Get(id cid.Cid) ([]byte, error) {
	for _, cas := range m.Stores {
		b, err := cas.Get(id)
		if err == nil {
			return b, nil
		}
		if IsNotFound(err) {
			continue
		}
		return nil, err
	}
	return nil, ErrNotFound
}

func (m TieredCAS) Has(id cid.Cid) bool {
	for _, cas := range m.Stores {
		if cas.Has(id) {
			return true
		}
	}
	return false
}

package zewif

import (
	"zewif.dev/zewif/codec"
	"zewif.dev/zewif/envelope"
)

// IncrementalWitness carries everything needed to re-establish a note's
// membership in a shielded commitment tree: the commitment itself, its
// position, the authentication path, and the anchor the path was taken
// against. Losing a witness for an unspent note risks funds, so decode
// failures here are always surfaced loudly by conversion front-ends.
type IncrementalWitness struct {
	noteCommitment []byte
	position       uint64
	merklePath     [][]byte
	anchor         []byte
	anchorTreeSize uint64
	anchorFrontier [][]byte
}

func NewIncrementalWitness(noteCommitment []byte, position uint64, merklePath [][]byte, anchor []byte) (IncrementalWitness, error) {
	if len(noteCommitment) == 0 {
		return IncrementalWitness{}, newError(KindInvalidValue, "ZEWIF-MODEL-050", "empty note commitment")
	}
	if len(anchor) == 0 {
		return IncrementalWitness{}, newError(KindInvalidValue, "ZEWIF-MODEL-051", "empty anchor")
	}
	return IncrementalWitness{
		noteCommitment: append([]byte(nil), noteCommitment...),
		position:       position,
		merklePath:     copyHashes(merklePath),
		anchor:         append([]byte(nil), anchor...),
	}, nil
}

// SetAnchorFrontier records the size and frontier of the tree at the
// anchor, when the source wallet tracked them.
func (w *IncrementalWitness) SetAnchorFrontier(treeSize uint64, frontier [][]byte) {
	w.anchorTreeSize = treeSize
	w.anchorFrontier = copyHashes(frontier)
}

func (w IncrementalWitness) NoteCommitment() []byte { return append([]byte(nil), w.noteCommitment...) }

func (w IncrementalWitness) Position() uint64 { return w.position }

func (w IncrementalWitness) MerklePath() [][]byte { return copyHashes(w.merklePath) }

func (w IncrementalWitness) Anchor() []byte { return append([]byte(nil), w.anchor...) }

func (w IncrementalWitness) AnchorTreeSize() uint64 { return w.anchorTreeSize }

func (w IncrementalWitness) AnchorFrontier() [][]byte { return copyHashes(w.anchorFrontier) }

func copyHashes(in [][]byte) [][]byte {
	if in == nil {
		return nil
	}
	out := make([][]byte, len(in))
	for i, h := range in {
		out[i] = append([]byte(nil), h...)
	}
	return out
}

// typeName is the protocol-specific envelope type, e.g. "SaplingWitness".
func (w IncrementalWitness) envelope(typeName string) *envelope.Envelope {
	e := envelope.NewBytes(w.noteCommitment).
		WithType(typeName).
		WithType("IncrementalWitness").
		WithAssertion(pred("position"), envelope.NewUint(w.position)).
		WithAssertion(pred("merkle_path"), hashListEnvelope(w.merklePath)).
		WithAssertion(pred("anchor"), envelope.NewBytes(w.anchor))
	if w.anchorFrontier != nil {
		e = e.WithAssertion(pred("anchor_tree_size"), envelope.NewUint(w.anchorTreeSize)).
			WithAssertion(pred("anchor_frontier"), hashListEnvelope(w.anchorFrontier))
	}
	return e
}

func witnessFromEnvelope(e *envelope.Envelope, typeName string) (IncrementalWitness, error) {
	if err := checkType(e, typeName); err != nil {
		return IncrementalWitness{}, err
	}
	if err := checkType(e, "IncrementalWitness"); err != nil {
		return IncrementalWitness{}, err
	}
	commitment, err := envelope.ExtractBytes(e.Subject())
	if err != nil {
		return IncrementalWitness{}, wrapError(KindInvalidValue, "ZEWIF-MODEL-052", "note commitment subject", err)
	}
	position, err := requiredUint(e, "position")
	if err != nil {
		return IncrementalWitness{}, err
	}
	pathObj, err := requiredObject(e, "merkle_path")
	if err != nil {
		return IncrementalWitness{}, err
	}
	path, err := hashListFromEnvelope(pathObj)
	if err != nil {
		return IncrementalWitness{}, err
	}
	anchorObj, err := requiredObject(e, "anchor")
	if err != nil {
		return IncrementalWitness{}, err
	}
	anchor, err := envelope.ExtractBytes(anchorObj)
	if err != nil {
		return IncrementalWitness{}, wrapError(KindInvalidValue, "ZEWIF-MODEL-053", "anchor object", err)
	}
	w, err := NewIncrementalWitness(commitment, position, path, anchor)
	if err != nil {
		return IncrementalWitness{}, err
	}
	frontierObj, err := optionalObject(e, "anchor_frontier")
	if err != nil {
		return IncrementalWitness{}, err
	}
	if frontierObj != nil {
		frontier, err := hashListFromEnvelope(frontierObj)
		if err != nil {
			return IncrementalWitness{}, err
		}
		treeSize, err := requiredUint(e, "anchor_tree_size")
		if err != nil {
			return IncrementalWitness{}, err
		}
		w.SetAnchorFrontier(treeSize, frontier)
	}
	return w, nil
}

// hashListEnvelope encodes a list of opaque hashes as a single array leaf.
// The list order is positional, so it must survive as-is rather than being
// spread over sorted assertions.
func hashListEnvelope(hashes [][]byte) *envelope.Envelope {
	items := make([]codec.Value, 0, len(hashes))
	for _, h := range hashes {
		items = append(items, codec.Bytes(h))
	}
	return envelope.NewLeaf(codec.Array(items...))
}

func hashListFromEnvelope(e *envelope.Envelope) ([][]byte, error) {
	v, ok := e.Leaf()
	if !ok {
		return nil, newError(KindInvalidValue, "ZEWIF-MODEL-054", "hash list is not a leaf")
	}
	arr, ok := v.ArrayValue()
	if !ok {
		return nil, newError(KindInvalidValue, "ZEWIF-MODEL-054", "hash list leaf is not an array")
	}
	out := make([][]byte, 0, len(arr))
	for _, item := range arr {
		b, ok := item.BytesValue()
		if !ok {
			return nil, newError(KindInvalidValue, "ZEWIF-MODEL-055", "hash list item is not bytes")
		}
		out = append(out, b)
	}
	return out, nil
}

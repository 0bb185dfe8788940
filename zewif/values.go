package zewif

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"zewif.dev/zewif/codec"
	"zewif.dev/zewif/envelope"
)

// Simple scalar and composite values. These are leaves of the interchange
// tree: they carry no type-identity machinery and decode permissively into
// their owning entity's fields.

// ID is the random unique identifier of an interchange root.
type ID [32]byte

// NewID returns a fresh random identifier.
func NewID() ID {
	var id ID
	if _, err := rand.Read(id[:]); err != nil {
		panic("zewif: reading randomness: " + err.Error())
	}
	return id
}

func (id ID) String() string { return hex.EncodeToString(id[:]) }

// TxId is a transaction identifier. Display order is byte-reversed hex,
// following the convention wallets and explorers use.
type TxId [32]byte

func TxIdFromBytes(b []byte) (TxId, error) {
	var t TxId
	if len(b) != len(t) {
		return TxId{}, newError(KindInvalidValue, "ZEWIF-MODEL-020", "txid must be 32 bytes")
	}
	copy(t[:], b)
	return t, nil
}

func (t TxId) Bytes() []byte { return append([]byte(nil), t[:]...) }

func (t TxId) String() string {
	var rev [32]byte
	for i, b := range t {
		rev[len(t)-1-i] = b
	}
	return hex.EncodeToString(rev[:])
}

// BlockHeight is a chain height.
type BlockHeight uint32

// BlockHash is a block identifier.
type BlockHash [32]byte

func BlockHashFromBytes(b []byte) (BlockHash, error) {
	var h BlockHash
	if len(b) != len(h) {
		return BlockHash{}, newError(KindInvalidValue, "ZEWIF-MODEL-021", "block hash must be 32 bytes")
	}
	copy(h[:], b)
	return h, nil
}

func (h BlockHash) String() string { return hex.EncodeToString(h[:]) }

// MaxMoney is the total monetary supply in zatoshis.
const MaxMoney int64 = 21_000_000 * 100_000_000

// Amount is a monetary value in zatoshis. Valid amounts lie in
// [-MaxMoney, MaxMoney]; negative amounts represent net outflows.
type Amount int64

func NewAmount(zat int64) (Amount, error) {
	if zat < -MaxMoney || zat > MaxMoney {
		return 0, newError(KindInvalidValue, "ZEWIF-MODEL-022", fmt.Sprintf("amount %d outside monetary range", zat))
	}
	return Amount(zat), nil
}

func (a Amount) Zatoshis() int64 { return int64(a) }

// Network identifies which chain the wallet data belongs to.
type Network string

const (
	NetworkMain    Network = "main"
	NetworkTest    Network = "test"
	NetworkRegtest Network = "regtest"
)

func ParseNetwork(s string) (Network, error) {
	switch Network(s) {
	case NetworkMain, NetworkTest, NetworkRegtest:
		return Network(s), nil
	default:
		return "", newError(KindInvalidValue, "ZEWIF-MODEL-023", "unknown network "+s)
	}
}

// SecondsSinceEpoch is a wall-clock timestamp.
type SecondsSinceEpoch uint64

// TransactionStatus is the wallet's view of a transaction's fate.
type TransactionStatus string

const (
	StatusPending   TransactionStatus = "pending"
	StatusConfirmed TransactionStatus = "confirmed"
	StatusFailed    TransactionStatus = "failed"
	StatusAbandoned TransactionStatus = "abandoned"
)

func ParseTransactionStatus(s string) (TransactionStatus, error) {
	switch TransactionStatus(s) {
	case StatusPending, StatusConfirmed, StatusFailed, StatusAbandoned:
		return TransactionStatus(s), nil
	default:
		return "", newError(KindInvalidValue, "ZEWIF-MODEL-024", "unknown transaction status "+s)
	}
}

// Leaf conversions shared by entity encoders.

func bytesLeaf(b []byte) *envelope.Envelope { return envelope.NewBytes(b) }

func amountLeaf(a Amount) *envelope.Envelope { return envelope.NewLeaf(codec.Int(int64(a))) }

func amountFromEnvelope(e *envelope.Envelope, name string) (Amount, error) {
	i, err := envelope.ExtractInt(e)
	if err != nil {
		return 0, wrapError(KindInvalidValue, "ZEWIF-MODEL-025", name+": not an integer leaf", err)
	}
	return NewAmount(i)
}

func txIdFromObject(obj *envelope.Envelope, name string) (TxId, error) {
	b, err := envelope.ExtractBytes(obj)
	if err != nil {
		return TxId{}, wrapError(KindInvalidValue, "ZEWIF-MODEL-026", name+": not a byte-string leaf", err)
	}
	return TxIdFromBytes(b)
}

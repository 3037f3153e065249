// Package rpcclient defines the capability set both UTXO backends (a
// full-node JSON-RPC client and an Electrum client) implement identically,
// and the types shared between them. This is a closed, two-variant
// capability abstraction, not an open-ended plugin surface: implementers
// are github.com/kgcdream2019/utxoswap/internal/rpcclient/noderpc and
// .../electrum, and nothing else is expected to satisfy Client.
package rpcclient

import "context"

// Unspent is a reference to a spendable output, as returned by
// ListUnspentOrdered: previous transaction hash, output index, and value in
// smallest units.
type Unspent struct {
	TxHash [32]byte
	Vout   uint32
	Value  int64
}

// FeeMethod selects which node RPC to use when estimating a fee rate.
type FeeMethod int

const (
	// FeeMethodStandard uses the deprecated estimatefee RPC.
	FeeMethodStandard FeeMethod = iota
	// FeeMethodSmart uses estimatesmartfee.
	FeeMethodSmart
)

// VerboseTx is the structured view of a transaction a backend returns.
// The Node-RPC backend fills in Bytes, Confirmations and BlockHash; the
// Electrum backend fills in Bytes only. Neither backend sets BlockHeight.
type VerboseTx struct {
	Bytes         []byte
	Confirmations int64
	BlockHeight   int64
	BlockHash     [32]byte
}

// Client is the common capability set both UTXO RPC backends expose.
// Implementations MUST be safe for concurrent use by multiple goroutines.
type Client interface {
	// ListUnspentOrdered returns every spendable output for addrHash,
	// sorted ascending by value (smallest first).
	ListUnspentOrdered(ctx context.Context, addrHash []byte) ([]Unspent, error)

	// SendRawTransaction broadcasts raw and returns the node- or server-
	// reported transaction hash. Callers rely on their own locally
	// computed hash as the source of truth; see design notes on this.
	SendRawTransaction(ctx context.Context, raw []byte) ([32]byte, error)

	// GetTransactionBytes returns the raw serialized transaction for txid.
	GetTransactionBytes(ctx context.Context, txid [32]byte) ([]byte, error)

	// GetVerboseTransaction returns the structured view of txid.
	GetVerboseTransaction(ctx context.Context, txid [32]byte) (*VerboseTx, error)

	// GetBlockCount returns the current tip height.
	GetBlockCount(ctx context.Context) (int64, error)

	// DisplayBalance returns the sum of confirmed and unconfirmed value
	// for addrHash, scaled by decimals.
	DisplayBalance(ctx context.Context, addrHash []byte, decimals uint8) (float64, error)

	// EstimateFeeSat returns a per-KB fee estimate in smallest units. If
	// the backend reports a rate at or below 0.00001 base units, it
	// returns the floor of 1000 smallest units instead.
	EstimateFeeSat(ctx context.Context, decimals uint8, method FeeMethod) (int64, error)

	// FindOutputSpend returns the transaction that spends (txid, vout), or
	// nil if no such spend is visible yet. fromBlock is a hint: Node-RPC
	// backends use it as the starting height to scan from.
	FindOutputSpend(ctx context.Context, txid [32]byte, vout uint32, fromBlock int64) (*VerboseTx, error)
}

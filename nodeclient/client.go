// Package nodeclient defines the NodeClient capability the indexer core
// consumes to read chain data (spec.md §6). The core never talks to a real
// Bitcoin-family node directly; it is handed an implementation of Client.
package nodeclient

import "context"

// TxInput is one spent outpoint, with an optional resolved address for the
// output it consumes. Address resolution for inputs is done upstream by the
// NodeClient implementation (e.g. by looking up the previous output); the
// core only ever reads TxInput.Address, it never walks the UTXO set itself.
type TxInput struct {
	PrevTxid string
	PrevVout uint32
	Address  string // empty if unresolvable
	Witness  []byte // optional, opaque
}

// TxOutput is one transaction output.
type TxOutput struct {
	Value   uint64
	Script  []byte // raw output script, needed to find OP_RETURN pushes
	Address string // empty if unresolvable or OP_RETURN
}

// TxInfo is the shape of a transaction as handed to the core.
type TxInfo struct {
	Txid    string
	Inputs  []TxInput
	Outputs []TxOutput
}

// Block is a fetched block and its ordered transactions.
type Block struct {
	Height       uint64
	Hash         string
	PrevHash     string
	Timestamp    int64
	Transactions []TxInfo
}

// Client is the capability supplied to the core by the outer shell. All
// methods are expected to be idempotent and safe to retry.
type Client interface {
	// ChainTip returns the node's current best height and hash.
	ChainTip(ctx context.Context) (height uint64, hash string, err error)
	// BlockHashAt returns the hash of the block at height, or ok=false if
	// the node has no block at that height (height beyond tip).
	BlockHashAt(ctx context.Context, height uint64) (hash string, ok bool, err error)
	// Block fetches the full block identified by hash.
	Block(ctx context.Context, hash string) (Block, error)
}

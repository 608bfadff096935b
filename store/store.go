// Package store defines the abstract, transactional persistence capability
// the core depends on (spec.md §6). The core never chooses a storage
// engine; it is handed a Store. Two implementations are provided: Memory
// (tests, local dev) and Bolt (durable, grounded in the teacher's
// go.etcd.io/bbolt-backed node/store package).
package store

import (
	"context"
	"errors"

	"github.com/brc20x/indexer/model"
)

// ErrNotFound is returned by read methods when a key does not exist.
var ErrNotFound = errors.New("store: not found")

// ErrConflict signals a write-time invariant violation (negative balance,
// duplicate deploy primary key, supply invariant breach); it maps to
// chainerr.StoreConflict at the call site.
var ErrConflict = errors.New("store: conflict")

// BalanceKey identifies one (address, ticker) balance row.
type BalanceKey struct {
	Address string
	Ticker  model.Ticker
}

// Reader is the read-only subset of Store, used by package state to build
// the overlay view processors see.
type Reader interface {
	GetBalance(ctx context.Context, key BalanceKey) (uint64, error) // ErrNotFound -> 0, nil at call sites that want zero-default
	GetDeploy(ctx context.Context, ticker model.Ticker) (model.Deploy, error)
	GetSupply(ctx context.Context, ticker model.Ticker) (model.SupplyState, error)
	TipHeight(ctx context.Context) (height uint64, hasTip bool, err error)
	ProcessedBlock(ctx context.Context, height uint64) (model.ProcessedBlock, error)
}

// Writer is the mutation surface used by packages commit and reorg, inside
// a Tx.
type Writer interface {
	PutBalance(ctx context.Context, key BalanceKey, amount uint64) error
	PutDeploy(ctx context.Context, d model.Deploy) error
	PutSupply(ctx context.Context, s model.SupplyState) error
	AppendLog(ctx context.Context, entries []model.OperationLogEntry) error
	PutProcessedBlock(ctx context.Context, pb model.ProcessedBlock) error
	DeleteDeploy(ctx context.Context, ticker model.Ticker) error
	TruncateLogAbove(ctx context.Context, height uint64) error
	DeleteProcessedBlock(ctx context.Context, height uint64) error
	NextLogID(ctx context.Context) (uint64, error)
}

// Tx is a single transactional unit: every Writer call made through it
// either all land or none do (spec.md §4.9's "all six steps succeed or the
// transaction is rolled back").
type Tx interface {
	Reader
	Writer
}

// Store is the full capability: begin a transaction, and read outside one
// for callers (e.g. the reorg handler's ancestor walk) that only need a
// consistent snapshot rather than a write lock.
type Store interface {
	Reader
	// BeginTx starts a transactional unit. fn must not retain tx beyond its
	// own return. If fn returns an error, the transaction rolls back and
	// BeginTx returns that error; otherwise the transaction commits.
	BeginTx(ctx context.Context, fn func(tx Tx) error) error
	Close() error
}

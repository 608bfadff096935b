// Package state holds the per-block working set processors mutate while a
// block is being processed (spec.md §4.6). It never touches the Store
// directly; package commit is the only component that turns an Intermediate
// into a durable write.
package state

import "github.com/brc20x/indexer/model"

// SupplyDelta is the signed per-field adjustment a processor wants applied
// to a ticker's supply state. Fields are summed independently so a mint and
// a burn credit landing in the same block compose correctly.
type SupplyDelta struct {
	UniversalDelta int64
	LegacyDelta    int64
	BurnedDelta    int64
}

// BalanceKey mirrors store.BalanceKey without importing package store, to
// keep state free of any storage-engine dependency.
type BalanceKey struct {
	Address string
	Ticker  model.Ticker
}

// Intermediate accumulates every change proposed by processors while one
// block is being processed. It holds only deltas, never absolute values, so
// a rejected operation's proposed effects are discarded simply by never
// applying them (package blockproc applies a processor's Updates only on
// a Success outcome).
type Intermediate struct {
	BalanceDelta map[BalanceKey]int64
	NewDeploys   map[model.Ticker]model.Deploy
	SupplyDelta  map[model.Ticker]SupplyDelta
	LogEntries   []model.OperationLogEntry
}

// NewIntermediate returns an empty accumulator for one block.
func NewIntermediate() *Intermediate {
	return &Intermediate{
		BalanceDelta: make(map[BalanceKey]int64),
		NewDeploys:   make(map[model.Ticker]model.Deploy),
		SupplyDelta:  make(map[model.Ticker]SupplyDelta),
	}
}

// AddBalance records a signed change to a (address, ticker) balance.
func (im *Intermediate) AddBalance(key BalanceKey, delta int64) {
	im.BalanceDelta[key] += delta
}

// SetDeploy records a new deploy created during this block. Deploys are
// create-once: a second SetDeploy for the same ticker in the same block
// cannot happen because the validator rejects the second deploy attempt
// before this is ever called.
func (im *Intermediate) SetDeploy(d model.Deploy) {
	im.NewDeploys[d.Ticker] = d
}

// AddSupply records a signed change to one field of a ticker's supply.
func (im *Intermediate) AddSupply(ticker model.Ticker, field model.SupplyField, delta int64) {
	sd := im.SupplyDelta[ticker]
	switch field {
	case model.SupplyUniversal:
		sd.UniversalDelta += delta
	case model.SupplyLegacy:
		sd.LegacyDelta += delta
	case model.SupplyBurned:
		sd.BurnedDelta += delta
	}
	im.SupplyDelta[ticker] = sd
}

// AppendLog records one operation-log row produced during this block. IDs
// are not assigned here; package commit assigns them at write time via
// store.Writer.NextLogID so they stay monotonic across the whole store.
func (im *Intermediate) AppendLog(entry model.OperationLogEntry) {
	im.LogEntries = append(im.LogEntries, entry)
}

// Package commit turns a block's sealed state.Intermediate into a
// deterministic Plan and applies it to a store.Store in one
// transaction (C9, spec.md §4.9). It is also the unit package reorg
// inverts to roll a block back.
package commit

import (
	"sort"

	"github.com/brc20x/indexer/model"
	"github.com/brc20x/indexer/state"
)

// BalanceDelta is one (address, ticker) adjustment in a plan.
type BalanceDelta struct {
	Address string
	Ticker  model.Ticker
	Delta   int64
}

// SupplyDeltaEntry is one (ticker, field) adjustment in a plan.
type SupplyDeltaEntry struct {
	Ticker model.Ticker
	Field  model.SupplyField
	Delta  int64
}

// Plan is the sealed, serializable description of everything one block
// changes (spec.md §4.8 step 5): "balance deltas, new deploys, supply
// deltas, log entries, {height, hash, prev_hash}".
type Plan struct {
	Height   uint64
	Hash     string
	PrevHash string

	BalanceDeltas []BalanceDelta
	NewDeploys    []model.Deploy
	SupplyDeltas  []SupplyDeltaEntry
	LogEntries    []model.OperationLogEntry
}

// BuildPlan seals im's accumulated deltas into a deterministically ordered
// Plan. Map iteration order is never relied upon past this point; every
// slice below is sorted by its natural key.
func BuildPlan(im *state.Intermediate, height uint64, hash, prevHash string) Plan {
	plan := Plan{Height: height, Hash: hash, PrevHash: prevHash}

	for key, delta := range im.BalanceDelta {
		if delta == 0 {
			continue
		}
		plan.BalanceDeltas = append(plan.BalanceDeltas, BalanceDelta{
			Address: key.Address, Ticker: key.Ticker, Delta: delta,
		})
	}
	sort.Slice(plan.BalanceDeltas, func(i, j int) bool {
		a, b := plan.BalanceDeltas[i], plan.BalanceDeltas[j]
		if a.Address != b.Address {
			return a.Address < b.Address
		}
		return a.Ticker < b.Ticker
	})

	for _, d := range im.NewDeploys {
		plan.NewDeploys = append(plan.NewDeploys, d)
	}
	sort.Slice(plan.NewDeploys, func(i, j int) bool {
		return plan.NewDeploys[i].Ticker < plan.NewDeploys[j].Ticker
	})

	for ticker, sd := range im.SupplyDelta {
		if sd.UniversalDelta != 0 {
			plan.SupplyDeltas = append(plan.SupplyDeltas, SupplyDeltaEntry{ticker, model.SupplyUniversal, sd.UniversalDelta})
		}
		if sd.LegacyDelta != 0 {
			plan.SupplyDeltas = append(plan.SupplyDeltas, SupplyDeltaEntry{ticker, model.SupplyLegacy, sd.LegacyDelta})
		}
		if sd.BurnedDelta != 0 {
			plan.SupplyDeltas = append(plan.SupplyDeltas, SupplyDeltaEntry{ticker, model.SupplyBurned, sd.BurnedDelta})
		}
	}
	sort.Slice(plan.SupplyDeltas, func(i, j int) bool {
		a, b := plan.SupplyDeltas[i], plan.SupplyDeltas[j]
		if a.Ticker != b.Ticker {
			return a.Ticker < b.Ticker
		}
		return a.Field < b.Field
	})

	plan.LogEntries = append(plan.LogEntries, im.LogEntries...)
	sort.SliceStable(plan.LogEntries, func(i, j int) bool {
		a, b := plan.LogEntries[i], plan.LogEntries[j]
		if a.TxIndex != b.TxIndex {
			return a.TxIndex < b.TxIndex
		}
		return a.SubIndex < b.SubIndex
	})

	return plan
}

// Inverse produces the Plan that exactly undoes this one: negated balance
// and supply deltas, the same deploys (so the reorg handler can delete
// them), and no log entries of its own (the reorg handler deletes the
// original entries directly; see package reorg).
func (p Plan) Inverse() Plan {
	inv := Plan{Height: p.Height, Hash: p.Hash, PrevHash: p.PrevHash}
	for _, bd := range p.BalanceDeltas {
		inv.BalanceDeltas = append(inv.BalanceDeltas, BalanceDelta{bd.Address, bd.Ticker, -bd.Delta})
	}
	inv.NewDeploys = append(inv.NewDeploys, p.NewDeploys...)
	for _, sd := range p.SupplyDeltas {
		inv.SupplyDeltas = append(inv.SupplyDeltas, SupplyDeltaEntry{sd.Ticker, sd.Field, -sd.Delta})
	}
	return inv
}

// Package reorg implements the common-ancestor search and inverse-apply
// rollback of C10 (spec.md §4.10). It never talks to processors or the
// validator; it only replays commit.Plan inverses recorded at commit time.
package reorg

import (
	"context"
	"encoding/json"

	"github.com/brc20x/indexer/chainerr"
	"github.com/brc20x/indexer/commit"
	"github.com/brc20x/indexer/indexlog"
	"github.com/brc20x/indexer/model"
	"github.com/brc20x/indexer/nodeclient"
	"github.com/brc20x/indexer/store"
)

// Deps bundles the collaborators a rollback needs.
type Deps struct {
	Node     nodeclient.Client
	Store    store.Store
	MaxDepth uint64 // reorg_depth_limit; 0 means unbounded
}

// FindCommonAncestor walks backward from the indexed tip, comparing the
// locally recorded block hash at each height against the node's current
// hash at that height, until it finds a match (spec.md §4.10 step 1). It
// fails fatally if no match is found within MaxDepth blocks.
func FindCommonAncestor(ctx context.Context, deps Deps) (uint64, *chainerr.Error) {
	tipHeight, hasTip, err := deps.Store.TipHeight(ctx)
	if err != nil {
		return 0, chainerr.New(chainerr.StoreConflict, "%v", err)
	}
	if !hasTip {
		return 0, nil
	}

	height := tipHeight
	depth := uint64(0)
	for {
		pb, err := deps.Store.ProcessedBlock(ctx, height)
		if err != nil {
			return 0, chainerr.New(chainerr.ReorgIrrecoverable, "missing processed_block row at height %d during ancestor search: %v", height, err)
		}
		nodeHash, ok, err := deps.Node.BlockHashAt(ctx, height)
		if err != nil {
			return 0, chainerr.New(chainerr.NodeUnavailable, "%v", err)
		}
		if ok && nodeHash == pb.Hash {
			return height, nil
		}
		if height == 0 {
			return 0, chainerr.New(chainerr.ReorgIrrecoverable, "no common ancestor found down to genesis")
		}
		depth++
		if deps.MaxDepth != 0 && depth > deps.MaxDepth {
			return 0, chainerr.New(chainerr.ReorgIrrecoverable, "reorg depth exceeds configured limit %d", deps.MaxDepth)
		}
		height--
	}
}

// Rollback walks from the current indexed tip down to (but not including)
// ancestorHeight, inverting and applying each block's stored commit plan in
// strict descending order (spec.md §4.10 step 2), then leaves the store's
// tip at ancestorHeight.
func Rollback(ctx context.Context, deps Deps, ancestorHeight uint64) *chainerr.Error {
	tipHeight, hasTip, err := deps.Store.TipHeight(ctx)
	if err != nil {
		return chainerr.New(chainerr.StoreConflict, "%v", err)
	}
	if !hasTip || tipHeight <= ancestorHeight {
		return nil
	}

	for height := tipHeight; height > ancestorHeight; height-- {
		h := height
		txErr := deps.Store.BeginTx(ctx, func(tx store.Tx) error {
			pb, err := tx.ProcessedBlock(ctx, h)
			if err != nil {
				return err
			}
			var plan commit.Plan
			if err := json.Unmarshal(pb.CommitPlanBlob, &plan); err != nil {
				return err
			}
			actual, err := commit.Checksum(plan)
			if err != nil {
				return err
			}
			if actual != pb.CommitChecksum {
				return errChecksumMismatch
			}

			inv := plan.Inverse()
			for _, bd := range inv.BalanceDeltas {
				key := store.BalanceKey{Address: bd.Address, Ticker: bd.Ticker}
				cur, err := tx.GetBalance(ctx, key)
				if err != nil {
					return err
				}
				next := int64(cur) + bd.Delta
				if next < 0 {
					return errInverseUnderflow
				}
				if err := tx.PutBalance(ctx, key, uint64(next)); err != nil {
					return err
				}
			}
			for _, d := range plan.NewDeploys {
				if err := tx.DeleteDeploy(ctx, d.Ticker); err != nil {
					return err
				}
			}
			for _, sd := range inv.SupplyDeltas {
				cur, err := tx.GetSupply(ctx, sd.Ticker)
				if err != nil {
					return err
				}
				switch sd.Field {
				case model.SupplyUniversal:
					cur.UniversalMinted = addClamped(cur.UniversalMinted, sd.Delta)
				case model.SupplyLegacy:
					cur.LegacyMinted = addClamped(cur.LegacyMinted, sd.Delta)
				case model.SupplyBurned:
					cur.Burned = addClamped(cur.Burned, sd.Delta)
				}
				if err := tx.PutSupply(ctx, cur); err != nil {
					return err
				}
			}
			if err := tx.TruncateLogAbove(ctx, h-1); err != nil {
				return err
			}
			return tx.DeleteProcessedBlock(ctx, h)
		})
		if txErr != nil {
			return chainerr.New(chainerr.ReorgIrrecoverable, "rollback of block at height %d failed: %v", h, txErr)
		}
	}
	return nil
}

// Handle runs the full reorg procedure (spec.md §4.10 steps 1-3) and
// returns the height forward indexing should resume from (ancestor+1).
func Handle(ctx context.Context, deps Deps) (uint64, *chainerr.Error) {
	ancestor, err := FindCommonAncestor(ctx, deps)
	if err != nil {
		indexlog.Reorg.Error().Err(err).Msg("failed to find common ancestor")
		return 0, err
	}
	indexlog.Reorg.Warn().Uint64("ancestor_height", ancestor).Msg("reorg detected, rolling back to common ancestor")
	if err := Rollback(ctx, deps, ancestor); err != nil {
		indexlog.Reorg.Error().Err(err).Msg("rollback failed")
		return 0, err
	}
	indexlog.Reorg.Info().Uint64("resume_height", ancestor+1).Msg("rollback complete, resuming indexing")
	return ancestor + 1, nil
}

func addClamped(base uint64, delta int64) uint64 {
	result := int64(base) + delta
	if result < 0 {
		return 0
	}
	return uint64(result)
}

var errChecksumMismatch = chainerr.New(chainerr.CommitChecksumMismatch, "stored commit plan fails checksum verification")
var errInverseUnderflow = chainerr.New(chainerr.ReorgIrrecoverable, "inverse balance application underflowed")

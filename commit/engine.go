package commit

import (
	"context"
	"encoding/json"

	"github.com/brc20x/indexer/indexlog"
	"github.com/brc20x/indexer/model"
	"github.com/brc20x/indexer/store"
)

// Apply runs the six-step commit procedure of spec.md §4.9 against st in a
// single transactional unit. Any failure rolls the whole block back; the
// caller (package blockproc) schedules a retry rather than advancing.
func Apply(ctx context.Context, st store.Store, plan Plan, committedAt int64) error {
	checksum, err := Checksum(plan)
	if err != nil {
		return err
	}
	blob, err := json.Marshal(plan)
	if err != nil {
		return err
	}

	err = st.BeginTx(ctx, func(tx store.Tx) error {
		// Step 1: balance deltas, abort on negative result.
		for _, bd := range plan.BalanceDeltas {
			key := store.BalanceKey{Address: bd.Address, Ticker: bd.Ticker}
			cur, err := tx.GetBalance(ctx, key)
			if err != nil {
				return err
			}
			next, ok := addSigned(cur, bd.Delta)
			if !ok {
				return store.ErrConflict
			}
			if err := tx.PutBalance(ctx, key, next); err != nil {
				return err
			}
		}

		// Step 2: new deploys, abort on primary-key conflict.
		for _, d := range plan.NewDeploys {
			_, err := tx.GetDeploy(ctx, d.Ticker)
			if err == nil {
				return store.ErrConflict
			}
			if err != store.ErrNotFound {
				return err
			}
			if err := tx.PutDeploy(ctx, d); err != nil {
				return err
			}
		}

		// Step 3: supply deltas, grouped per ticker so the invariant check
		// sees the net effect of every field touched by this plan at once.
		touched := make(map[model.Ticker]model.SupplyState)
		order := make([]model.Ticker, 0, len(plan.SupplyDeltas))
		for _, sd := range plan.SupplyDeltas {
			cur, seen := touched[sd.Ticker]
			if !seen {
				var err error
				cur, err = tx.GetSupply(ctx, sd.Ticker)
				if err != nil {
					return err
				}
				order = append(order, sd.Ticker)
			}
			var ok bool
			switch sd.Field {
			case model.SupplyUniversal:
				cur.UniversalMinted, ok = addSigned(cur.UniversalMinted, sd.Delta)
			case model.SupplyLegacy:
				cur.LegacyMinted, ok = addSigned(cur.LegacyMinted, sd.Delta)
			case model.SupplyBurned:
				cur.Burned, ok = addSigned(cur.Burned, sd.Delta)
			}
			if !ok {
				return store.ErrConflict
			}
			touched[sd.Ticker] = cur
		}
		for _, ticker := range order {
			s := touched[ticker]
			deploy, err := tx.GetDeploy(ctx, ticker)
			switch {
			case err == nil:
				if s.UniversalMinted+s.LegacyMinted+s.Burned > deploy.MaxSupply {
					return store.ErrConflict
				}
			case err == store.ErrNotFound:
				// A legacy/inscription ticker burned via no-return (§4.3)
				// carries no universal deploy row in this store, so there is
				// no max-supply invariant to check against.
			default:
				return err
			}
			if err := tx.PutSupply(ctx, s); err != nil {
				return err
			}
		}

		// Step 4: append log entries, assigning monotonic IDs at write time.
		entries := make([]model.OperationLogEntry, len(plan.LogEntries))
		for i, e := range plan.LogEntries {
			id, err := tx.NextLogID(ctx)
			if err != nil {
				return err
			}
			e.ID = id
			entries[i] = e
		}
		if err := tx.AppendLog(ctx, entries); err != nil {
			return err
		}

		// Step 5 + 6: persist the processed-block row (which also advances
		// the indexed tip, see store.Writer.PutProcessedBlock).
		return tx.PutProcessedBlock(ctx, model.ProcessedBlock{
			Height:         plan.Height,
			Hash:           plan.Hash,
			PrevHash:       plan.PrevHash,
			CommitPlanBlob: blob,
			CommitChecksum: checksum,
			CommittedAt:    committedAt,
		})
	})
	if err != nil {
		indexlog.Commit.Warn().Uint64("height", plan.Height).Str("hash", plan.Hash).Err(err).Msg("commit rolled back")
		return err
	}
	indexlog.Commit.Info().Uint64("height", plan.Height).Str("hash", plan.Hash).Int("log_entries", len(plan.LogEntries)).Msg("block committed")
	return nil
}

func addSigned(base uint64, delta int64) (uint64, bool) {
	result := int64(base) + delta
	if result < 0 {
		return 0, false
	}
	return uint64(result), true
}

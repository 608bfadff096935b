// Package blockproc orchestrates C2 (decode) through C6/C7 (route +
// process) into C5 (intermediate state), producing the commit.Plan the
// commit engine applies (C8, spec.md §4.8). It also runs the top-level
// fetch/process/commit loop (type Engine) tying in the prefetch queue
// and reorg handler.
package blockproc

import (
	"context"
	"time"

	"github.com/brc20x/indexer/chainerr"
	"github.com/brc20x/indexer/commit"
	"github.com/brc20x/indexer/indexlog"
	"github.com/brc20x/indexer/legacybridge"
	"github.com/brc20x/indexer/legacyoracle"
	"github.com/brc20x/indexer/model"
	"github.com/brc20x/indexer/nodeclient"
	"github.com/brc20x/indexer/opi"
	"github.com/brc20x/indexer/payload"
	"github.com/brc20x/indexer/state"
	"github.com/brc20x/indexer/store"
)

// Deps bundles every collaborator block processing needs.
type Deps struct {
	Oracle   legacyoracle.Oracle
	Store    store.Store
	Router   *opi.Router
	Policy   legacybridge.Policy
	Limits   payload.Limits
	Now      func() time.Time
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// ProcessBlock runs spec.md §4.8 steps 3-5 against an already tip-verified
// block: build an intermediate, decode and execute every transaction's
// operations in strict (tx_index, sub_index) order, and seal the result
// into a commit.Plan. It returns a transient *chainerr.Error (Kind ==
// KindTransient) when a processor reports Error, signaling the caller to
// abort and retry the whole block without committing anything.
func ProcessBlock(ctx context.Context, deps Deps, block nodeclient.Block) (commit.Plan, *chainerr.Error) {
	indexlog.BlockProc.Debug().Uint64("height", block.Height).Str("hash", block.Hash).Int("tx_count", len(block.Transactions)).Msg("processing block")
	im := state.NewIntermediate()
	view := state.NewView(deps.Store, im)

	for txIndex, tx := range block.Transactions {
		decoded := payload.Decode(tx, deps.Limits)

		for i := 0; i < len(decoded); {
			d := decoded[i]
			if d.StructurallyInvalid {
				im.AppendLog(structuralInvalidEntry(tx, block, txIndex, d))
				i++
				continue
			}

			group := []payload.DecodedOp{d}
			if d.OpTag == string(model.OpTransfer) {
				for j := i + 1; j < len(decoded); j++ {
					next := decoded[j]
					if next.StructurallyInvalid || next.OpTag != string(model.OpTransfer) || next.SourceOutputIndex != d.SourceOutputIndex {
						break
					}
					group = append(group, next)
				}
			}

			op := opi.Operation{
				Decoded:        d,
				Group:          group,
				Tx:             tx,
				BlockHeight:    block.Height,
				BlockHash:      block.Hash,
				BlockTimestamp: block.Timestamp,
				TxIndex:        txIndex,
			}

			processor, routeErr := deps.Router.Route(d.OpTag)
			if routeErr != nil {
				im.AppendLog(routedInvalidEntry(op, routeErr))
				i += len(group)
				continue
			}

			pc := opi.ProcessContext{View: view, Oracle: deps.Oracle, Policy: deps.Policy}
			outcome, updates, logEntries, procErr := processor.Process(ctx, pc, op)
			switch outcome {
			case opi.Success:
				for _, u := range updates {
					u.ApplyTo(im)
				}
				for _, e := range logEntries {
					im.AppendLog(e)
				}
			case opi.Invalid:
				for _, e := range logEntries {
					im.AppendLog(e)
				}
			case opi.Error:
				return commit.Plan{}, procErr
			}
			i += len(group)
		}
	}

	return commit.BuildPlan(im, block.Height, block.Hash, block.PrevHash), nil
}

func structuralInvalidEntry(tx nodeclient.TxInfo, block nodeclient.Block, txIndex int, d payload.DecodedOp) model.OperationLogEntry {
	code := ""
	if d.Reason != nil {
		code = string(d.Reason.Code)
	}
	return model.OperationLogEntry{
		Txid:        tx.Txid,
		Op:          model.Op(d.OpTag),
		Ticker:      model.Ticker(d.Ticker),
		BlockHeight: block.Height,
		BlockHash:   block.Hash,
		TxIndex:     txIndex,
		SubIndex:    d.SubIndex,
		Valid:       false,
		ErrorCode:   code,
		Timestamp:   block.Timestamp,
		RawPayload:  d.RawPayload,
	}
}

func routedInvalidEntry(op opi.Operation, reason *chainerr.Error) model.OperationLogEntry {
	return model.OperationLogEntry{
		Txid:        op.Tx.Txid,
		Op:          model.Op(op.Decoded.OpTag),
		Ticker:      model.Ticker(op.Decoded.Ticker),
		BlockHeight: op.BlockHeight,
		BlockHash:   op.BlockHash,
		TxIndex:     op.TxIndex,
		SubIndex:    op.Decoded.SubIndex,
		Valid:       false,
		ErrorCode:   string(reason.Code),
		Timestamp:   op.BlockTimestamp,
		RawPayload:  op.Decoded.RawPayload,
	}
}

package processors

import (
	"github.com/brc20x/indexer/addr"
	"github.com/brc20x/indexer/chainerr"
	"github.com/brc20x/indexer/model"
	"github.com/brc20x/indexer/nodeclient"
	"github.com/brc20x/indexer/opi"
	"github.com/brc20x/indexer/payload"
)

func receiverFromOutputs(tx nodeclient.TxInfo) (string, bool) {
	return addr.MintReceiver(tx)
}

// invalidLog builds a single-entry invalid log for op's own decoded
// candidate. Processors that dispatch on op.Group (multi-receiver
// transfers) use invalidLogGroup instead, so every grouped candidate gets
// its own sub_index row.
func invalidLog(op opi.Operation, ticker model.Ticker, reason *chainerr.Error) []model.OperationLogEntry {
	return []model.OperationLogEntry{invalidLogEntry(op, op.Decoded, ticker, reason)}
}

// invalidLogGroup rejects every candidate in group with the same reason,
// preserving one log row per sub_index (spec.md §4.5 atomic all-or-none:
// a failed multi-receiver transfer still logs each attempted element).
func invalidLogGroup(op opi.Operation, group []payload.DecodedOp, ticker model.Ticker, reason *chainerr.Error) []model.OperationLogEntry {
	entries := make([]model.OperationLogEntry, len(group))
	for i, d := range group {
		entries[i] = invalidLogEntry(op, d, ticker, reason)
	}
	return entries
}

func invalidLogEntry(op opi.Operation, d payload.DecodedOp, ticker model.Ticker, reason *chainerr.Error) model.OperationLogEntry {
	return model.OperationLogEntry{
		Txid:        op.Tx.Txid,
		Op:          model.Op(d.OpTag),
		Ticker:      ticker,
		BlockHeight: op.BlockHeight,
		BlockHash:   op.BlockHash,
		TxIndex:     op.TxIndex,
		SubIndex:    d.SubIndex,
		Valid:       false,
		ErrorCode:   string(reason.Code),
		Timestamp:   op.BlockTimestamp,
		RawPayload:  d.RawPayload,
	}
}

func validLog(op opi.Operation, ticker model.Ticker, tag model.Op, from, to string, hasAmount bool, amount uint64) model.OperationLogEntry {
	return validLogFor(op, op.Decoded, ticker, tag, from, to, hasAmount, amount)
}

// validLogFor is validLog against an explicit decoded candidate, used when
// a processor emits one log entry per element of op.Group rather than for
// op.Decoded alone.
func validLogFor(op opi.Operation, d payload.DecodedOp, ticker model.Ticker, tag model.Op, from, to string, hasAmount bool, amount uint64) model.OperationLogEntry {
	return model.OperationLogEntry{
		Txid:        op.Tx.Txid,
		Op:          tag,
		Ticker:      ticker,
		HasAmount:   hasAmount,
		Amount:      amount,
		BlockHeight: op.BlockHeight,
		BlockHash:   op.BlockHash,
		TxIndex:     op.TxIndex,
		SubIndex:    d.SubIndex,
		FromAddress: from,
		ToAddress:   to,
		Valid:       true,
		Timestamp:   op.BlockTimestamp,
		RawPayload:  d.RawPayload,
	}
}

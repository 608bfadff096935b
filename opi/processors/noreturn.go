package processors

import (
	"context"

	"github.com/brc20x/indexer/addr"
	"github.com/brc20x/indexer/chainerr"
	"github.com/brc20x/indexer/legacybridge"
	"github.com/brc20x/indexer/model"
	"github.com/brc20x/indexer/opi"
	"github.com/brc20x/indexer/validator"
)

// NoReturn implements the "no-return" op-tag (spec.md §4.3, §4.5): a
// burn-in-extension marker for an inscription-based transfer that
// terminated without a receiver. On an exact (ticker, amount, sender)
// match against the oracle's transfer events, it credits the burn bucket.
type NoReturn struct{}

func (NoReturn) Process(ctx context.Context, pc opi.ProcessContext, op opi.Operation) (opi.Outcome, []opi.Update, []model.OperationLogEntry, *chainerr.Error) {
	ticker, tErr := validator.NormalizeTicker(op.Decoded.Ticker)
	if tErr != nil {
		return opi.Invalid, nil, invalidLog(op, "", tErr), nil
	}

	amtStr, hasAmt := op.Decoded.StringField("amt")
	if !hasAmt {
		return opi.Invalid, nil, invalidLog(op, ticker, chainerr.New(chainerr.MissingField, "no-return payload missing amt")), nil
	}
	amount, aErr := validator.ParseAmount(amtStr, 18)
	if aErr != nil {
		return opi.Invalid, nil, invalidLog(op, ticker, aErr), nil
	}

	sender, ok := addr.TransferSender(op.Tx)
	if !ok {
		return opi.Invalid, nil, invalidLog(op, ticker, chainerr.New(chainerr.UnresolvableSender, "no-return has no resolvable sender input")), nil
	}

	match, mErr := legacybridge.MatchNoReturn(ctx, pc.Oracle, op.Tx.Txid, ticker, amount, sender)
	if mErr != nil {
		if mErr.Code == chainerr.OracleUnavailable {
			return opi.Error, nil, nil, mErr
		}
		return opi.Invalid, nil, invalidLog(op, ticker, mErr), nil
	}

	updates := []opi.Update{
		opi.SupplyAdd{Ticker: ticker, Field: model.SupplyBurned, Delta: int64(match.Amount)},
	}
	entry := validLog(op, ticker, model.OpNoReturn, sender, "", true, match.Amount)
	return opi.Success, updates, []model.OperationLogEntry{entry}, nil
}

package processors

import (
	"context"

	"github.com/brc20x/indexer/chainerr"
	"github.com/brc20x/indexer/model"
	"github.com/brc20x/indexer/opi"
	"github.com/brc20x/indexer/validator"
)

// Mint implements the "mint" op-tag (spec.md §4.5).
type Mint struct{}

func (Mint) Process(ctx context.Context, pc opi.ProcessContext, op opi.Operation) (opi.Outcome, []opi.Update, []model.OperationLogEntry, *chainerr.Error) {
	ticker, tErr := validator.NormalizeTicker(op.Decoded.Ticker)
	if tErr != nil {
		return opi.Invalid, nil, invalidLog(op, "", tErr), nil
	}

	deploy, dErr := validator.RequireDeployed(ctx, pc.View, ticker)
	if dErr != nil {
		return opi.Invalid, nil, invalidLog(op, ticker, dErr), nil
	}

	amtStr, hasAmt := op.Decoded.StringField("amt")
	if !hasAmt {
		return opi.Invalid, nil, invalidLog(op, ticker, chainerr.New(chainerr.MissingField, "mint payload missing amt")), nil
	}
	amount, aErr := validator.ParseAmount(amtStr, deploy.Decimals)
	if aErr != nil {
		return opi.Invalid, nil, invalidLog(op, ticker, aErr), nil
	}

	receiver, ok := receiverFromOutputs(op.Tx)
	if !ok {
		return opi.Invalid, nil, invalidLog(op, ticker, chainerr.New(chainerr.UnresolvableSender, "mint has no resolvable receiver output")), nil
	}

	if vErr := validator.ValidateMint(ctx, pc.View, deploy, amount); vErr != nil {
		return opi.Invalid, nil, invalidLog(op, ticker, vErr), nil
	}

	updates := []opi.Update{
		opi.BalanceAdd{Address: receiver, Ticker: ticker, Delta: int64(amount)},
		opi.SupplyAdd{Ticker: ticker, Field: model.SupplyUniversal, Delta: int64(amount)},
	}
	entry := validLog(op, ticker, model.OpMint, "", receiver, true, amount)
	return opi.Success, updates, []model.OperationLogEntry{entry}, nil
}

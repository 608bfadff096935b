package processors

import (
	"context"

	"github.com/brc20x/indexer/addr"
	"github.com/brc20x/indexer/chainerr"
	"github.com/brc20x/indexer/model"
	"github.com/brc20x/indexer/opi"
	"github.com/brc20x/indexer/payload"
	"github.com/brc20x/indexer/validator"
)

// Transfer implements the "transfer" op-tag (spec.md §4.5). A multi-receiver
// transfer arrives as several single-receiver candidates sharing one
// OP_RETURN array push; blockproc.ProcessBlock collects the whole run into
// op.Group before dispatch, so the sender's balance is checked once against
// the combined total of every element: either every receiver is credited or
// none is (spec.md §8 scenario 6, "all or none").
type Transfer struct{}

func (Transfer) Process(ctx context.Context, pc opi.ProcessContext, op opi.Operation) (opi.Outcome, []opi.Update, []model.OperationLogEntry, *chainerr.Error) {
	group := op.Group
	if len(group) == 0 {
		group = []payload.DecodedOp{op.Decoded}
	}

	ticker, tErr := validator.NormalizeTicker(op.Decoded.Ticker)
	if tErr != nil {
		return opi.Invalid, nil, invalidLogGroup(op, group, "", tErr), nil
	}

	deploy, dErr := validator.RequireDeployed(ctx, pc.View, ticker)
	if dErr != nil {
		return opi.Invalid, nil, invalidLogGroup(op, group, ticker, dErr), nil
	}

	amounts := make([]uint64, len(group))
	var total uint64
	for i, el := range group {
		amtStr, hasAmt := el.StringField("amt")
		if !hasAmt {
			return opi.Invalid, nil, invalidLogGroup(op, group, ticker, chainerr.New(chainerr.MissingField, "transfer payload missing amt")), nil
		}
		amount, aErr := validator.ParseAmount(amtStr, deploy.Decimals)
		if aErr != nil {
			return opi.Invalid, nil, invalidLogGroup(op, group, ticker, aErr), nil
		}
		amounts[i] = amount
		total += amount
	}

	sender, ok := addr.TransferSender(op.Tx)
	if !ok {
		return opi.Invalid, nil, invalidLogGroup(op, group, ticker, chainerr.New(chainerr.UnresolvableSender, "no input of this transaction has a resolvable address")), nil
	}

	receivers, ok := addr.TransferReceivers(op.Tx, len(group))
	if !ok {
		return opi.Invalid, nil, invalidLogGroup(op, group, ticker, chainerr.New(chainerr.UnresolvableSender, "fewer than %d resolvable standard outputs", len(group))), nil
	}

	// Validate the combined total once: a 3-way {5,5,5} split against a
	// balance of 12 must fail wholesale, not credit the first two receivers
	// before running out at the third.
	if vErr := validator.ValidateTransfer(ctx, pc.View, sender, ticker, total); vErr != nil {
		return opi.Invalid, nil, invalidLogGroup(op, group, ticker, vErr), nil
	}

	updates := make([]opi.Update, 0, len(group)+1)
	updates = append(updates, opi.BalanceSub{Address: sender, Ticker: ticker, Delta: int64(total)})
	entries := make([]model.OperationLogEntry, len(group))
	for i, el := range group {
		updates = append(updates, opi.BalanceAdd{Address: receivers[i], Ticker: ticker, Delta: int64(amounts[i])})
		entries[i] = validLogFor(op, el, ticker, model.OpTransfer, sender, receivers[i], true, amounts[i])
	}
	return opi.Success, updates, entries, nil
}

// Package processors implements the built-in OPI processors: Deploy, Mint,
// Transfer, NoReturn (spec.md §4.5).
package processors

import (
	"context"

	"github.com/brc20x/indexer/chainerr"
	"github.com/brc20x/indexer/legacybridge"
	"github.com/brc20x/indexer/model"
	"github.com/brc20x/indexer/opi"
	"github.com/brc20x/indexer/validator"
)

// Deploy implements the "deploy" op-tag (spec.md §4.5): validates the
// request, cross-checks the legacy namespace, and proposes a DeployCreate
// plus the ticker's initial (zero) supply row. Deploy.Timestamp is always
// the containing block's timestamp, not wall-clock time, so replaying the
// same chain from genesis reproduces byte-identical deploy records and
// op_log checksums (spec.md §8).
type Deploy struct{}

func (d Deploy) Process(ctx context.Context, pc opi.ProcessContext, op opi.Operation) (opi.Outcome, []opi.Update, []model.OperationLogEntry, *chainerr.Error) {
	ticker, tErr := validator.NormalizeTicker(op.Decoded.Ticker)
	if tErr != nil {
		return opi.Invalid, nil, invalidLog(op, "", tErr), nil
	}

	maxStr, _ := op.Decoded.StringField("max")
	limStr, hasLim := op.Decoded.StringField("lim")
	decStr, hasDec := op.Decoded.StringField("dec")
	selfMintStr, _ := op.Decoded.StringField("self_mint")

	decimals := uint8(18)
	if hasDec {
		parsedDecimals, dErr := validator.ParseAmount(decStr, 0)
		if dErr != nil || parsedDecimals > 18 {
			return opi.Invalid, nil, invalidLog(op, ticker, chainerr.New(chainerr.InvalidAmount, "invalid dec field %q", decStr)), nil
		}
		decimals = uint8(parsedDecimals)
	}

	maxSupply, mErr := validator.ParseAmount(maxStr, decimals)
	if mErr != nil {
		return opi.Invalid, nil, invalidLog(op, ticker, mErr), nil
	}

	var limitPerMint uint64
	if hasLim {
		limitPerMint, mErr = validator.ParseAmount(limStr, decimals)
		if mErr != nil {
			return opi.Invalid, nil, invalidLog(op, ticker, mErr), nil
		}
	}

	req := validator.DeployRequest{
		Ticker:          ticker,
		MaxSupply:       maxSupply,
		LimitPerMint:    limitPerMint,
		HasLimitPerMint: hasLim,
		Decimals:        decimals,
		SelfMintEnabled: selfMintStr == "true",
	}
	if vErr := validator.ValidateDeploy(ctx, pc.View, req); vErr != nil {
		return opi.Invalid, nil, invalidLog(op, ticker, vErr), nil
	}

	check := legacybridge.CheckDeploy(ctx, pc.Oracle, pc.Policy, ticker)
	if check.Rejected != nil {
		return opi.Invalid, nil, invalidLog(op, ticker, check.Rejected), nil
	}
	if check.Deferred != nil {
		return opi.Error, nil, nil, check.Deferred
	}

	deployRecord := model.Deploy{
		Ticker:            ticker,
		MaxSupply:         maxSupply,
		LimitPerMint:      limitPerMint,
		HasLimitPerMint:   hasLim,
		Decimals:          decimals,
		SelfMintEnabled:   req.SelfMintEnabled,
		DeployerAddress:   deployerAddress(op),
		DeployTxID:        op.Tx.Txid,
		DeployBlockHeight: op.BlockHeight,
		DeployTxIndex:     op.TxIndex,
		Timestamp:         op.BlockTimestamp,
		LegacyValidated:   check.LegacyValidated,
	}

	updates := []opi.Update{
		opi.DeployCreate{Deploy: deployRecord},
		opi.SupplyAdd{Ticker: ticker, Field: model.SupplyUniversal, Delta: 0},
	}
	entry := validLog(op, ticker, model.OpDeploy, "", "", false, 0)
	return opi.Success, updates, []model.OperationLogEntry{entry}, nil
}

func deployerAddress(op opi.Operation) string {
	receiver, ok := receiverFromOutputs(op.Tx)
	if !ok {
		return ""
	}
	return receiver
}

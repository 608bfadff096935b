package validator

import (
	"context"

	"github.com/brc20x/indexer/chainerr"
	"github.com/brc20x/indexer/model"
	"github.com/brc20x/indexer/state"
)

const maxDecimals = 18

// DeployRequest is the parsed, not-yet-validated input to ValidateDeploy.
type DeployRequest struct {
	Ticker          model.Ticker
	MaxSupply       uint64
	LimitPerMint    uint64
	HasLimitPerMint bool
	Decimals        uint8
	SelfMintEnabled bool
}

// ValidateDeploy checks the create-once and numeric-range rules of a deploy
// (spec.md §4.2). It does not consult the legacy bridge; that cross-check
// happens in package legacybridge before the deploy is committed.
func ValidateDeploy(ctx context.Context, v *state.View, req DeployRequest) *chainerr.Error {
	if req.MaxSupply == 0 {
		return chainerr.New(chainerr.InvalidAmount, "max_supply must be > 0")
	}
	if req.HasLimitPerMint && req.LimitPerMint > req.MaxSupply {
		return chainerr.New(chainerr.InvalidAmount, "limit_per_mint %d exceeds max_supply %d", req.LimitPerMint, req.MaxSupply)
	}
	if req.Decimals > maxDecimals {
		return chainerr.New(chainerr.InvalidAmount, "decimals %d exceeds maximum %d", req.Decimals, maxDecimals)
	}
	_, exists, err := v.Deploy(ctx, req.Ticker)
	if err != nil {
		return chainerr.New(chainerr.StoreConflict, "%v", err)
	}
	if exists {
		return chainerr.New(chainerr.TickerAlreadyDeployed, "ticker %s already deployed", req.Ticker)
	}
	return nil
}

// ValidateMint checks that a mint of amount base units against deploy is
// currently permitted (spec.md §4.2). The caller has already resolved the
// receiver address (addr.MintReceiver); this function only checks supply
// and limit bounds.
func ValidateMint(ctx context.Context, v *state.View, deploy model.Deploy, amount uint64) *chainerr.Error {
	if amount == 0 {
		return chainerr.New(chainerr.InvalidAmount, "mint amount must be > 0")
	}
	if deploy.HasLimitPerMint && amount > deploy.LimitPerMint {
		return chainerr.New(chainerr.MintExceedsLimit, "mint amount %d exceeds limit_per_mint %d", amount, deploy.LimitPerMint)
	}
	supply, err := v.Supply(ctx, deploy.Ticker)
	if err != nil {
		return chainerr.New(chainerr.StoreConflict, "%v", err)
	}
	if supply.Total()+amount > deploy.MaxSupply {
		return chainerr.New(chainerr.MintExceedsSupply, "mint would bring total minted to %d, exceeding max_supply %d", supply.Total()+amount, deploy.MaxSupply)
	}
	return nil
}

// ValidateTransfer checks that sender has at least amount of ticker
// available (spec.md §4.2). Sender resolution (addr.TransferSender) happens
// before this call; a sender that cannot be resolved never reaches here.
func ValidateTransfer(ctx context.Context, v *state.View, sender string, ticker model.Ticker, amount uint64) *chainerr.Error {
	if amount == 0 {
		return chainerr.New(chainerr.InvalidAmount, "transfer amount must be > 0")
	}
	balance, err := v.Balance(ctx, sender, ticker)
	if err != nil {
		return chainerr.New(chainerr.StoreConflict, "%v", err)
	}
	if balance < amount {
		return chainerr.New(chainerr.InsufficientBalance, "sender %s has %d of %s, needs %d", sender, balance, ticker, amount)
	}
	return nil
}

// RequireDeployed looks up a ticker's deploy record, translating a missing
// deploy into the protocol-level TickerNotDeployed error mint/transfer
// validation both need as their first check.
func RequireDeployed(ctx context.Context, v *state.View, ticker model.Ticker) (model.Deploy, *chainerr.Error) {
	d, ok, err := v.Deploy(ctx, ticker)
	if err != nil {
		return model.Deploy{}, chainerr.New(chainerr.StoreConflict, "%v", err)
	}
	if !ok {
		return model.Deploy{}, chainerr.New(chainerr.TickerNotDeployed, "ticker %s not deployed", ticker)
	}
	return d, nil
}

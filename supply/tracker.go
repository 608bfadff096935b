// Package supply provides read-only rollup helpers over a ticker's supply
// state (C11, spec.md §4.11). It holds no state of its own; every read
// consults the store directly, refreshed as part of each block's commit.
package supply

import (
	"context"

	"github.com/brc20x/indexer/model"
	"github.com/brc20x/indexer/store"
)

// Summary is a convenience view combining a deploy record with its current
// supply rollup, for operator tooling and the `verify` CLI subcommand.
type Summary struct {
	Deploy    model.Deploy
	State     model.SupplyState
	Total     uint64
	Remaining int64
}

// Get loads the current supply summary for ticker.
func Get(ctx context.Context, reader store.Reader, ticker model.Ticker) (Summary, error) {
	deploy, err := reader.GetDeploy(ctx, ticker)
	if err != nil {
		return Summary{}, err
	}
	state, err := reader.GetSupply(ctx, ticker)
	if err != nil {
		return Summary{}, err
	}
	return Summary{
		Deploy:    deploy,
		State:     state,
		Total:     state.Total(),
		Remaining: state.Remaining(deploy.MaxSupply),
	}, nil
}

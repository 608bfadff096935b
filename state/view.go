package state

import (
	"context"

	"github.com/brc20x/indexer/model"
	"github.com/brc20x/indexer/store"
)

// View is the read surface the validator and processors see: committed
// store state overlaid with whatever this block's Intermediate has
// accumulated so far. This is what makes intra-block ordering work — a
// mint earlier in the same block is visible to a transfer later in it,
// without either ever touching the Store.
type View struct {
	base  store.Reader
	delta *Intermediate
}

// NewView builds an overlay over base using im's current deltas. Callers
// construct one View per block and keep reading through it as im
// accumulates more changes during that block's processing.
func NewView(base store.Reader, im *Intermediate) *View {
	return &View{base: base, delta: im}
}

// Balance returns the effective balance for (address, ticker): the
// committed amount plus any delta accumulated so far this block.
func (v *View) Balance(ctx context.Context, address string, ticker model.Ticker) (uint64, error) {
	base, err := v.base.GetBalance(ctx, store.BalanceKey{Address: address, Ticker: ticker})
	if err != nil {
		return 0, err
	}
	d := v.delta.BalanceDelta[BalanceKey{Address: address, Ticker: ticker}]
	return addSignedClamped(base, d), nil
}

// Deploy returns the effective deploy record for ticker, preferring a
// same-block deploy over whatever the store already has (there can only be
// one or the other, never both, since the validator enforces create-once).
func (v *View) Deploy(ctx context.Context, ticker model.Ticker) (model.Deploy, bool, error) {
	if d, ok := v.delta.NewDeploys[ticker]; ok {
		return d, true, nil
	}
	d, err := v.base.GetDeploy(ctx, ticker)
	if err == store.ErrNotFound {
		return model.Deploy{}, false, nil
	}
	if err != nil {
		return model.Deploy{}, false, err
	}
	return d, true, nil
}

// Supply returns the effective supply state for ticker.
func (v *View) Supply(ctx context.Context, ticker model.Ticker) (model.SupplyState, error) {
	base, err := v.base.GetSupply(ctx, ticker)
	if err != nil {
		return model.SupplyState{}, err
	}
	d := v.delta.SupplyDelta[ticker]
	base.UniversalMinted = addSignedClamped(base.UniversalMinted, d.UniversalDelta)
	base.LegacyMinted = addSignedClamped(base.LegacyMinted, d.LegacyDelta)
	base.Burned = addSignedClamped(base.Burned, d.BurnedDelta)
	return base, nil
}

// Intermediate returns the underlying accumulator, for processors that need
// to record new changes through the same View they just read from.
func (v *View) Intermediate() *Intermediate { return v.delta }

func addSignedClamped(base uint64, delta int64) uint64 {
	result := int64(base) + delta
	if result < 0 {
		// A validated processor must never produce a negative balance or
		// supply field; reaching this means validation let something
		// through it should not have.
		return 0
	}
	return uint64(result)
}

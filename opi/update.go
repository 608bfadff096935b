package opi

import (
	"github.com/brc20x/indexer/model"
	"github.com/brc20x/indexer/state"
)

// Update is a proposed, commutative-by-key change a processor wants
// applied to the block's Intermediate once its Outcome is Success (spec.md
// §4.5). Updates never touch the Store directly.
type Update interface {
	ApplyTo(im *state.Intermediate)
}

// BalanceAdd increases (addr, ticker) by Delta (which may itself be
// negative; see BalanceSub for the symmetric helper matching spec.md's
// naming exactly).
type BalanceAdd struct {
	Address string
	Ticker  model.Ticker
	Delta   int64
}

func (u BalanceAdd) ApplyTo(im *state.Intermediate) {
	im.AddBalance(state.BalanceKey{Address: u.Address, Ticker: u.Ticker}, u.Delta)
}

// BalanceSub decreases (addr, ticker) by Delta (a positive magnitude).
type BalanceSub struct {
	Address string
	Ticker  model.Ticker
	Delta   int64
}

func (u BalanceSub) ApplyTo(im *state.Intermediate) {
	im.AddBalance(state.BalanceKey{Address: u.Address, Ticker: u.Ticker}, -u.Delta)
}

// DeployCreate records a new deploy. The commit engine fails the whole
// block if the ticker was already deployed by the time this lands (it
// should never be, since the processor already checked via the view).
type DeployCreate struct {
	Deploy model.Deploy
}

func (u DeployCreate) ApplyTo(im *state.Intermediate) {
	im.SetDeploy(u.Deploy)
}

// SupplyAdd adjusts one field of a ticker's supply state.
type SupplyAdd struct {
	Ticker model.Ticker
	Field  model.SupplyField
	Delta  int64
}

func (u SupplyAdd) ApplyTo(im *state.Intermediate) {
	im.AddSupply(u.Ticker, u.Field, u.Delta)
}

// Package legacyoracle defines the LegacyOracle capability (spec.md §6):
// an external service the indexer queries to bridge against the legacy,
// inscription-based token namespace it does not itself maintain.
package legacyoracle

import (
	"context"

	"github.com/brc20x/indexer/model"
)

// Oracle is the capability supplied to package legacybridge. Both methods
// must be idempotent: for a given (ticker|txid, as-of-height), repeated
// calls must return the same answer.
type Oracle interface {
	// LookupTicker returns the legacy deploy record for ticker, if one
	// exists in the inscription-based namespace. ok=false means no legacy
	// deploy exists for this ticker.
	LookupTicker(ctx context.Context, ticker model.Ticker) (rec model.LegacyTokenRecord, ok bool, err error)
	// TransferEventsForTx returns inscription-based transfer events that
	// were credited within the given transaction.
	TransferEventsForTx(ctx context.Context, txid string) ([]model.LegacyTransferEvent, error)
}

// Fake is an in-memory Oracle used by tests. A nil Fake.Err makes every
// call succeed; set it to simulate the oracle being unreachable.
type Fake struct {
	Tickers   map[model.Ticker]model.LegacyTokenRecord
	Transfers map[string][]model.LegacyTransferEvent
	Err       error
}

// NewFake returns an empty fake oracle.
func NewFake() *Fake {
	return &Fake{
		Tickers:   make(map[model.Ticker]model.LegacyTokenRecord),
		Transfers: make(map[string][]model.LegacyTransferEvent),
	}
}

func (f *Fake) LookupTicker(_ context.Context, ticker model.Ticker) (model.LegacyTokenRecord, bool, error) {
	if f.Err != nil {
		return model.LegacyTokenRecord{}, false, f.Err
	}
	rec, ok := f.Tickers[ticker]
	return rec, ok, nil
}

func (f *Fake) TransferEventsForTx(_ context.Context, txid string) ([]model.LegacyTransferEvent, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Transfers[txid], nil
}

var _ Oracle = (*Fake)(nil)

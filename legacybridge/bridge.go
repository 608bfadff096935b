// Package legacybridge implements the cross-namespace checks between the
// universal (this indexer's) token namespace and the legacy
// inscription-based namespace a LegacyOracle exposes (C4, spec.md §4.3).
package legacybridge

import (
	"context"

	"github.com/brc20x/indexer/chainerr"
	"github.com/brc20x/indexer/indexlog"
	"github.com/brc20x/indexer/legacyoracle"
	"github.com/brc20x/indexer/model"
)

// Policy configures the deterministic behavior of the bridge for a given
// indexer instance (spec.md §4.3: "must be deterministic for a given
// configuration+height pair").
type Policy struct {
	// RequireLegacy, when true, defers (rather than marks unvalidated) a
	// deploy whose legacy cross-check could not be performed because the
	// oracle is unreachable.
	RequireLegacy bool
}

// DeployCheckResult is the outcome of cross-checking a candidate deploy
// against the legacy namespace.
type DeployCheckResult struct {
	// Rejected is set if the deploy must fail outright (ticker already
	// exists in the legacy namespace).
	Rejected *chainerr.Error
	// Deferred is set if the oracle was unreachable and policy requires
	// the deploy to wait for a retry rather than proceed unvalidated.
	Deferred *chainerr.Error
	// LegacyValidated reports the value to stamp onto the committed
	// deploy record when neither Rejected nor Deferred is set.
	LegacyValidated bool
}

// CheckDeploy performs the deploy-time cross-check (spec.md §4.3).
func CheckDeploy(ctx context.Context, oracle legacyoracle.Oracle, policy Policy, ticker model.Ticker) DeployCheckResult {
	record, found, err := oracle.LookupTicker(ctx, ticker)
	if err != nil {
		if policy.RequireLegacy {
			indexlog.Legacy.Warn().Str("ticker", string(ticker)).Err(err).Msg("deploy deferred, legacy oracle unreachable")
			return DeployCheckResult{Deferred: chainerr.New(chainerr.OracleUnavailable, "legacy oracle unreachable for ticker %s: %v", ticker, err)}
		}
		indexlog.Legacy.Warn().Str("ticker", string(ticker)).Err(err).Msg("legacy oracle unreachable, proceeding unvalidated")
		return DeployCheckResult{LegacyValidated: false}
	}
	if found {
		indexlog.Legacy.Info().Str("ticker", string(ticker)).Str("inscription", record.DeployInscriptionID).Msg("deploy rejected, ticker exists in legacy namespace")
		return DeployCheckResult{Rejected: chainerr.New(chainerr.LegacyTokenExists, "ticker %s already deployed in legacy namespace (inscription %s)", ticker, record.DeployInscriptionID)}
	}
	return DeployCheckResult{LegacyValidated: true}
}

// NoReturnMatch is a burn credit produced by matching a no-return payload
// against the legacy transfer events recorded for its transaction.
type NoReturnMatch struct {
	Ticker model.Ticker
	Amount uint64
}

// MatchNoReturn consults the oracle's transfer events for txid and returns
// the legacy transfer event matching (ticker, amount, senderAddress), if
// any (spec.md §4.3, "matches by (ticker, amount, sender_address)"). The
// first event matching all three exactly is used; amounts are never summed
// across events. It returns OracleUnavailable when the oracle cannot be
// reached and LegacyLookupRequiredButUnavailable when no event matches.
func MatchNoReturn(ctx context.Context, oracle legacyoracle.Oracle, txid string, ticker model.Ticker, amount uint64, senderAddress string) (NoReturnMatch, *chainerr.Error) {
	events, err := oracle.TransferEventsForTx(ctx, txid)
	if err != nil {
		indexlog.Legacy.Warn().Str("txid", txid).Err(err).Msg("no-return match failed, legacy oracle unreachable")
		return NoReturnMatch{}, chainerr.New(chainerr.OracleUnavailable, "legacy oracle unreachable for tx %s: %v", txid, err)
	}
	for _, ev := range events {
		if ev.Ticker == ticker && ev.Amount == amount && ev.SenderAddress == senderAddress {
			return NoReturnMatch{Ticker: ticker, Amount: amount}, nil
		}
	}
	indexlog.Legacy.Debug().Str("txid", txid).Str("ticker", string(ticker)).Uint64("amount", amount).Msg("no matching legacy transfer event for no-return burn")
	return NoReturnMatch{}, chainerr.New(chainerr.LegacyLookupRequiredButUnavailable, "no matching legacy transfer event for tx %s ticker %s amount %d sender %s", txid, ticker, amount, senderAddress)
}

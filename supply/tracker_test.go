package supply

import (
	"context"
	"testing"

	"github.com/brc20x/indexer/model"
	"github.com/brc20x/indexer/store"
)

func TestGetComputesTotalAndRemaining(t *testing.T) {
	st := store.NewMemory()
	ctx := context.Background()
	st.BeginTx(ctx, func(tx store.Tx) error {
		if err := tx.PutDeploy(ctx, model.Deploy{Ticker: "ORDI", MaxSupply: 1000}); err != nil {
			return err
		}
		return tx.PutSupply(ctx, model.SupplyState{Ticker: "ORDI", UniversalMinted: 300, LegacyMinted: 100, Burned: 50})
	})

	summary, err := Get(ctx, st, "ORDI")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Total != 400 {
		t.Fatalf("got total %d, want 400", summary.Total)
	}
	if summary.Remaining != 550 {
		t.Fatalf("got remaining %d, want 550", summary.Remaining)
	}
}

func TestGetUndeployedTickerErrors(t *testing.T) {
	st := store.NewMemory()
	_, err := Get(context.Background(), st, "NOPE")
	if err != store.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

package state

import (
	"context"
	"testing"

	"github.com/brc20x/indexer/model"
	"github.com/brc20x/indexer/store"
)

func TestViewBalanceOverlaysDelta(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	st.BeginTx(ctx, func(tx store.Tx) error {
		return tx.PutBalance(ctx, store.BalanceKey{Address: "alice", Ticker: "ORDI"}, 100)
	})

	im := NewIntermediate()
	im.AddBalance(BalanceKey{Address: "alice", Ticker: "ORDI"}, 50)
	v := NewView(st, im)

	bal, err := v.Balance(ctx, "alice", "ORDI")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bal != 150 {
		t.Fatalf("got %d, want 150", bal)
	}
}

func TestViewDeploySeesSameBlockDeployBeforeCommit(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	im := NewIntermediate()
	v := NewView(st, im)

	_, ok, err := v.Deploy(ctx, "ORDI")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatalf("expected no deploy visible yet")
	}

	im.SetDeploy(model.Deploy{Ticker: "ORDI", MaxSupply: 1000})
	d, ok, err := v.Deploy(ctx, "ORDI")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok || d.MaxSupply != 1000 {
		t.Fatalf("expected same-block deploy visible, got ok=%v d=%+v", ok, d)
	}
}

func TestViewDeployFallsBackToStore(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	st.BeginTx(ctx, func(tx store.Tx) error {
		return tx.PutDeploy(ctx, model.Deploy{Ticker: "ORDI", MaxSupply: 1000})
	})

	im := NewIntermediate()
	v := NewView(st, im)
	d, ok, err := v.Deploy(ctx, "ORDI")
	if err != nil || !ok || d.MaxSupply != 1000 {
		t.Fatalf("expected store deploy visible, got ok=%v d=%+v err=%v", ok, d, err)
	}
}

func TestViewSupplyAccumulatesAllThreeFields(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	st.BeginTx(ctx, func(tx store.Tx) error {
		return tx.PutSupply(ctx, model.SupplyState{Ticker: "ORDI", UniversalMinted: 10, LegacyMinted: 5, Burned: 1})
	})

	im := NewIntermediate()
	im.AddSupply("ORDI", model.SupplyUniversal, 20)
	im.AddSupply("ORDI", model.SupplyLegacy, 3)
	im.AddSupply("ORDI", model.SupplyBurned, 1)
	v := NewView(st, im)

	s, err := v.Supply(ctx, "ORDI")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.UniversalMinted != 30 || s.LegacyMinted != 8 || s.Burned != 2 {
		t.Fatalf("got %+v", s)
	}
}

func TestViewBalanceClampsNegativeToZero(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	im := NewIntermediate()
	im.AddBalance(BalanceKey{Address: "alice", Ticker: "ORDI"}, -50)
	v := NewView(st, im)

	bal, err := v.Balance(ctx, "alice", "ORDI")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bal != 0 {
		t.Fatalf("expected clamp to 0, got %d", bal)
	}
}

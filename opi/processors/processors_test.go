package processors

import (
	"context"
	"testing"

	"github.com/brc20x/indexer/legacybridge"
	"github.com/brc20x/indexer/legacyoracle"
	"github.com/brc20x/indexer/model"
	"github.com/brc20x/indexer/nodeclient"
	"github.com/brc20x/indexer/opi"
	"github.com/brc20x/indexer/payload"
	"github.com/brc20x/indexer/state"
	"github.com/brc20x/indexer/store"
)

func newProcessContext() (opi.ProcessContext, *legacyoracle.Fake) {
	oracle := legacyoracle.NewFake()
	v := state.NewView(store.NewMemory(), state.NewIntermediate())
	return opi.ProcessContext{View: v, Oracle: oracle, Policy: legacybridge.Policy{}}, oracle
}

func deployOp(tick, max, lim string) opi.Operation {
	fields := map[string]any{"p": "brc-20", "op": "deploy", "tick": tick, "max": max}
	if lim != "" {
		fields["lim"] = lim
	}
	return opi.Operation{
		Decoded: payload.DecodedOp{OpTag: "deploy", Ticker: tick, Fields: fields},
		Tx: nodeclient.TxInfo{
			Txid:    "deploy-tx",
			Outputs: []nodeclient.TxOutput{{Address: "deployer1"}},
		},
	}
}

func TestDeployProcessSuccess(t *testing.T) {
	pc, _ := newProcessContext()
	outcome, updates, entries, err := Deploy{}.Process(context.Background(), pc, deployOp("ordi", "1000", "100"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != opi.Success {
		t.Fatalf("expected Success, got %v; entries=%+v", outcome, entries)
	}
	if len(updates) != 2 {
		t.Fatalf("expected DeployCreate + SupplyAdd updates, got %d", len(updates))
	}
}

func TestDeployProcessRejectsDuplicateTicker(t *testing.T) {
	pc, _ := newProcessContext()
	im := pc.View.Intermediate()
	im.SetDeploy(model.Deploy{Ticker: "ORDI", MaxSupply: 1000})

	outcome, _, entries, err := Deploy{}.Process(context.Background(), pc, deployOp("ordi", "1000", ""))
	if err != nil {
		t.Fatalf("unexpected transient error: %v", err)
	}
	if outcome != opi.Invalid {
		t.Fatalf("expected Invalid, got %v", outcome)
	}
	if len(entries) != 1 || entries[0].ErrorCode != "TICKER_ALREADY_DEPLOYED" {
		t.Fatalf("got entries %+v", entries)
	}
}

func TestDeployProcessRejectsLegacyCollision(t *testing.T) {
	pc, oracle := newProcessContext()
	oracle.Tickers["ORDI"] = model.LegacyTokenRecord{Ticker: "ORDI"}

	outcome, _, entries, err := Deploy{}.Process(context.Background(), pc, deployOp("ordi", "1000", ""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != opi.Invalid || entries[0].ErrorCode != "LEGACY_TOKEN_EXISTS" {
		t.Fatalf("outcome=%v entries=%+v", outcome, entries)
	}
}

func mintOp(tick, amt string) opi.Operation {
	return opi.Operation{
		Decoded: payload.DecodedOp{OpTag: "mint", Ticker: tick, Fields: map[string]any{"p": "brc-20", "op": "mint", "tick": tick, "amt": amt}},
		Tx: nodeclient.TxInfo{
			Txid:    "mint-tx",
			Outputs: []nodeclient.TxOutput{{Address: "receiver1"}},
		},
	}
}

func TestMintProcessSuccess(t *testing.T) {
	pc, _ := newProcessContext()
	pc.View.Intermediate().SetDeploy(model.Deploy{Ticker: "ORDI", MaxSupply: 1000, Decimals: 0})

	outcome, updates, entries, err := Mint{}.Process(context.Background(), pc, mintOp("ordi", "100"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != opi.Success {
		t.Fatalf("expected Success, got %v (%+v)", outcome, entries)
	}
	if len(updates) != 2 {
		t.Fatalf("expected BalanceAdd + SupplyAdd, got %d", len(updates))
	}
}

func TestMintProcessNotDeployed(t *testing.T) {
	pc, _ := newProcessContext()
	outcome, _, entries, err := Mint{}.Process(context.Background(), pc, mintOp("ordi", "100"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != opi.Invalid || entries[0].ErrorCode != "TICKER_NOT_DEPLOYED" {
		t.Fatalf("outcome=%v entries=%+v", outcome, entries)
	}
}

func transferOp(tick, amt string) opi.Operation {
	decoded := payload.DecodedOp{OpTag: "transfer", Ticker: tick, Fields: map[string]any{"p": "brc-20", "op": "transfer", "tick": tick, "amt": amt}}
	return opi.Operation{
		Decoded: decoded,
		Group:   []payload.DecodedOp{decoded},
		Tx: nodeclient.TxInfo{
			Txid:    "transfer-tx",
			Inputs:  []nodeclient.TxInput{{Address: "sender1"}},
			Outputs: []nodeclient.TxOutput{{Address: "receiver1"}, {Address: "receiver2"}},
		},
	}
}

// multiTransferOp builds a multi-receiver transfer: several single-receiver
// candidates sharing one OP_RETURN push, exactly as blockproc.ProcessBlock
// groups them before dispatch.
func multiTransferOp(tick string, amts []string, outputs []nodeclient.TxOutput) opi.Operation {
	group := make([]payload.DecodedOp, len(amts))
	for i, amt := range amts {
		group[i] = payload.DecodedOp{
			SubIndex: i,
			OpTag:    "transfer",
			Ticker:   tick,
			Fields:   map[string]any{"p": "brc-20", "op": "transfer", "tick": tick, "amt": amt},
		}
	}
	return opi.Operation{
		Decoded: group[0],
		Group:   group,
		Tx: nodeclient.TxInfo{
			Txid:    "multi-transfer-tx",
			Inputs:  []nodeclient.TxInput{{Address: "sender1"}},
			Outputs: outputs,
		},
	}
}

func TestTransferProcessSuccess(t *testing.T) {
	pc, _ := newProcessContext()
	pc.View.Intermediate().SetDeploy(model.Deploy{Ticker: "ORDI", MaxSupply: 1000, Decimals: 0})
	pc.View.Intermediate().AddBalance(state.BalanceKey{Address: "sender1", Ticker: "ORDI"}, 100)

	outcome, updates, entries, err := Transfer{}.Process(context.Background(), pc, transferOp("ordi", "100"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != opi.Success {
		t.Fatalf("expected Success, got %v (%+v)", outcome, entries)
	}
	if len(updates) != 2 {
		t.Fatalf("expected BalanceSub + BalanceAdd, got %d", len(updates))
	}
}

func TestTransferProcessInsufficientBalance(t *testing.T) {
	pc, _ := newProcessContext()
	pc.View.Intermediate().SetDeploy(model.Deploy{Ticker: "ORDI", MaxSupply: 1000, Decimals: 0})
	pc.View.Intermediate().AddBalance(state.BalanceKey{Address: "sender1", Ticker: "ORDI"}, 10)

	outcome, _, entries, err := Transfer{}.Process(context.Background(), pc, transferOp("ordi", "11"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != opi.Invalid || entries[0].ErrorCode != "INSUFFICIENT_BALANCE" {
		t.Fatalf("outcome=%v entries=%+v", outcome, entries)
	}
}

func TestTransferProcessMultiReceiverCreditsEachOutputInOrder(t *testing.T) {
	pc, _ := newProcessContext()
	pc.View.Intermediate().SetDeploy(model.Deploy{Ticker: "ORDI", MaxSupply: 1000, Decimals: 0})
	pc.View.Intermediate().AddBalance(state.BalanceKey{Address: "sender1", Ticker: "ORDI"}, 100)

	op := multiTransferOp("ordi", []string{"10", "20"}, []nodeclient.TxOutput{{Address: "receiver1"}, {Address: "receiver2"}})
	outcome, updates, entries, err := Transfer{}.Process(context.Background(), pc, op)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != opi.Success {
		t.Fatalf("expected Success, got %v (%+v)", outcome, entries)
	}
	if len(updates) != 3 {
		t.Fatalf("expected BalanceSub + 2 BalanceAdd, got %d", len(updates))
	}
	sub, ok := updates[0].(opi.BalanceSub)
	if !ok || sub.Delta != 30 {
		t.Fatalf("expected sender debited the combined total 30, got %+v", updates[0])
	}
	first, ok := updates[1].(opi.BalanceAdd)
	if !ok || first.Address != "receiver1" || first.Delta != 10 {
		t.Fatalf("expected receiver1 credited 10, got %+v", updates[1])
	}
	second, ok := updates[2].(opi.BalanceAdd)
	if !ok || second.Address != "receiver2" || second.Delta != 20 {
		t.Fatalf("expected receiver2 credited 20, got %+v", updates[2])
	}
	if len(entries) != 2 {
		t.Fatalf("expected one log entry per receiver, got %d", len(entries))
	}
}

// TestTransferProcessMultiReceiverAllOrNoneOnInsufficientBalance mirrors the
// {5,5,5}-from-12 scenario: the combined total exceeds the sender's balance,
// so the whole operation must fail with no partial credit to any receiver.
func TestTransferProcessMultiReceiverAllOrNoneOnInsufficientBalance(t *testing.T) {
	pc, _ := newProcessContext()
	pc.View.Intermediate().SetDeploy(model.Deploy{Ticker: "ALFA", MaxSupply: 1000, Decimals: 0})
	pc.View.Intermediate().AddBalance(state.BalanceKey{Address: "sender1", Ticker: "ALFA"}, 12)

	outputs := []nodeclient.TxOutput{{Address: "receiver1"}, {Address: "receiver2"}, {Address: "receiver3"}}
	op := multiTransferOp("alfa", []string{"5", "5", "5"}, outputs)
	outcome, updates, entries, err := Transfer{}.Process(context.Background(), pc, op)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != opi.Invalid {
		t.Fatalf("expected Invalid, got %v", outcome)
	}
	if updates != nil {
		t.Fatalf("expected no updates on all-or-none failure, got %+v", updates)
	}
	if len(entries) != 3 {
		t.Fatalf("expected one invalid log entry per receiver attempt, got %d", len(entries))
	}
	for _, e := range entries {
		if e.Valid || e.ErrorCode != "INSUFFICIENT_BALANCE" {
			t.Fatalf("expected INSUFFICIENT_BALANCE invalid entry, got %+v", e)
		}
	}

	bal, err := pc.View.Balance(context.Background(), "sender1", "ALFA")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bal != 12 {
		t.Fatalf("expected sender balance untouched at 12, got %d", bal)
	}
}

func TestNoReturnProcessMatch(t *testing.T) {
	pc, oracle := newProcessContext()
	oracle.Transfers["noret-tx"] = []model.LegacyTransferEvent{
		{Ticker: "ORDI", Amount: 100_000_000_000_000_000_000, SenderAddress: "sender1"},
	}
	op := opi.Operation{
		Decoded: payload.DecodedOp{OpTag: "no-return", Ticker: "ordi", Fields: map[string]any{"p": "brc-20", "op": "no-return", "tick": "ordi", "amt": "100"}},
		Tx:      nodeclient.TxInfo{Txid: "noret-tx", Inputs: []nodeclient.TxInput{{Address: "sender1"}}},
	}
	outcome, updates, _, err := NoReturn{}.Process(context.Background(), pc, op)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != opi.Success {
		t.Fatalf("expected Success, got %v", outcome)
	}
	add, ok := updates[0].(opi.SupplyAdd)
	if !ok || add.Field != model.SupplyBurned {
		t.Fatalf("expected SupplyAdd(burned), got %+v", updates[0])
	}
}

func TestNoReturnProcessOracleUnavailableIsTransient(t *testing.T) {
	pc, oracle := newProcessContext()
	oracle.Err = context.DeadlineExceeded
	op := opi.Operation{
		Decoded: payload.DecodedOp{OpTag: "no-return", Ticker: "ordi", Fields: map[string]any{"p": "brc-20", "op": "no-return", "tick": "ordi", "amt": "1"}},
		Tx:      nodeclient.TxInfo{Txid: "noret-tx", Inputs: []nodeclient.TxInput{{Address: "sender1"}}},
	}
	outcome, _, _, err := NoReturn{}.Process(context.Background(), pc, op)
	if outcome != opi.Error || err == nil {
		t.Fatalf("expected transient Error outcome, got %v, %v", outcome, err)
	}
}

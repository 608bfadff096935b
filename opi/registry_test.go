package opi

import (
	"context"
	"testing"

	"github.com/brc20x/indexer/chainerr"
	"github.com/brc20x/indexer/model"
)

type stubProcessor struct{}

func (stubProcessor) Process(context.Context, ProcessContext, Operation) (Outcome, []Update, []model.OperationLogEntry, *chainerr.Error) {
	return Success, nil, nil, nil
}

func TestRegistryRejectsDuplicateTag(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register("deploy", stubProcessor{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := reg.Register("DEPLOY", stubProcessor{})
	if err == nil {
		t.Fatalf("expected duplicate registration error for case-folded tag")
	}
	ce, ok := chainerr.As(err)
	if !ok || ce.Code != chainerr.DuplicateProcessorRegistration {
		t.Fatalf("got %v", err)
	}
}

func TestRegistryLookupCaseInsensitive(t *testing.T) {
	reg := NewRegistry()
	p := stubProcessor{}
	if err := reg.Register("Mint", p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := reg.Lookup("mint"); !ok {
		t.Fatalf("expected case-insensitive lookup to succeed")
	}
	if _, ok := reg.Lookup("MINT"); !ok {
		t.Fatalf("expected case-insensitive lookup to succeed")
	}
}

func TestRegistryTagsSorted(t *testing.T) {
	reg := NewRegistry()
	reg.Register("transfer", stubProcessor{})
	reg.Register("deploy", stubProcessor{})
	reg.Register("mint", stubProcessor{})
	tags := reg.Tags()
	want := []string{"deploy", "mint", "transfer"}
	if len(tags) != len(want) {
		t.Fatalf("got %v", tags)
	}
	for i := range want {
		if tags[i] != want[i] {
			t.Fatalf("got %v, want %v", tags, want)
		}
	}
}

func TestRouterUnknownOp(t *testing.T) {
	router := NewRouter(NewRegistry())
	_, err := router.Route("nonexistent")
	if err == nil || err.Code != chainerr.UnknownOp {
		t.Fatalf("expected UnknownOp, got %v", err)
	}
}

func TestRouterRoutesRegisteredTag(t *testing.T) {
	reg := NewRegistry()
	reg.Register("deploy", stubProcessor{})
	router := NewRouter(reg)
	p, err := router.Route("deploy")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p == nil {
		t.Fatalf("expected non-nil processor")
	}
}

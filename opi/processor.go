package opi

import (
	"context"

	"github.com/brc20x/indexer/chainerr"
	"github.com/brc20x/indexer/legacybridge"
	"github.com/brc20x/indexer/legacyoracle"
	"github.com/brc20x/indexer/model"
	"github.com/brc20x/indexer/state"
)

// Outcome classifies a processor's result (spec.md §4.5).
type Outcome int

const (
	// Success applies Updates and logs the operation as valid.
	Success Outcome = iota
	// Invalid logs the operation with valid=false and applies no Updates.
	Invalid
	// Error aborts the whole block for retry; no log entry is written.
	Error
)

// ProcessContext is the read-only collaborator surface a processor needs
// beyond the state.View: the legacy oracle and the bridge policy.
type ProcessContext struct {
	View   *state.View
	Oracle legacyoracle.Oracle
	Policy legacybridge.Policy
}

// Processor is the contract every built-in and future OPI extension
// implements: process(operation, context, intermediate) → (outcome,
// updates, log_entries) from spec.md §4.5, with "intermediate" folded into
// state.View (reads) and the Update list (writes).
type Processor interface {
	Process(ctx context.Context, pc ProcessContext, op Operation) (Outcome, []Update, []model.OperationLogEntry, *chainerr.Error)
}

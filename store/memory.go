package store

import (
	"context"
	"sync"

	"github.com/brc20x/indexer/model"
)

// Memory is an in-memory Store, used by tests and local development. It
// serializes all access behind a single mutex; BeginTx holds the lock for
// the whole callback and snapshots every table first so it can restore
// them if the callback fails, giving the same external behavior as a
// single-writer transactional store without real multi-version
// concurrency control.
type Memory struct {
	mu sync.Mutex

	balances  map[BalanceKey]uint64
	deploys   map[model.Ticker]model.Deploy
	supplies  map[model.Ticker]model.SupplyState
	log       []model.OperationLogEntry
	processed map[uint64]model.ProcessedBlock
	nextLogID uint64
	hasTip    bool
	tipHeight uint64
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		balances:  make(map[BalanceKey]uint64),
		deploys:   make(map[model.Ticker]model.Deploy),
		supplies:  make(map[model.Ticker]model.SupplyState),
		processed: make(map[uint64]model.ProcessedBlock),
		nextLogID: 1,
	}
}

func (m *Memory) GetBalance(_ context.Context, key BalanceKey) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balances[key], nil
}

func (m *Memory) GetDeploy(_ context.Context, ticker model.Ticker) (model.Deploy, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.deploys[ticker]
	if !ok {
		return model.Deploy{}, ErrNotFound
	}
	return d, nil
}

func (m *Memory) GetSupply(_ context.Context, ticker model.Ticker) (model.SupplyState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.supplies[ticker]
	if !ok {
		return model.SupplyState{Ticker: ticker}, nil
	}
	return s, nil
}

func (m *Memory) TipHeight(_ context.Context) (uint64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tipHeight, m.hasTip, nil
}

func (m *Memory) ProcessedBlock(_ context.Context, height uint64) (model.ProcessedBlock, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pb, ok := m.processed[height]
	if !ok {
		return model.ProcessedBlock{}, ErrNotFound
	}
	return pb, nil
}

// memTx implements Tx by operating directly on the locked Memory store;
// BeginTx holds the lock for the whole callback so the transaction is
// atomic with respect to other callers.
type memTx struct{ m *Memory }

func (t memTx) GetBalance(ctx context.Context, key BalanceKey) (uint64, error) {
	return t.m.balances[key], nil
}
func (t memTx) GetDeploy(ctx context.Context, ticker model.Ticker) (model.Deploy, error) {
	d, ok := t.m.deploys[ticker]
	if !ok {
		return model.Deploy{}, ErrNotFound
	}
	return d, nil
}
func (t memTx) GetSupply(ctx context.Context, ticker model.Ticker) (model.SupplyState, error) {
	s, ok := t.m.supplies[ticker]
	if !ok {
		return model.SupplyState{Ticker: ticker}, nil
	}
	return s, nil
}
func (t memTx) TipHeight(ctx context.Context) (uint64, bool, error) {
	return t.m.tipHeight, t.m.hasTip, nil
}
func (t memTx) ProcessedBlock(ctx context.Context, height uint64) (model.ProcessedBlock, error) {
	pb, ok := t.m.processed[height]
	if !ok {
		return model.ProcessedBlock{}, ErrNotFound
	}
	return pb, nil
}
func (t memTx) PutBalance(ctx context.Context, key BalanceKey, amount uint64) error {
	t.m.balances[key] = amount
	return nil
}
func (t memTx) PutDeploy(ctx context.Context, d model.Deploy) error {
	t.m.deploys[d.Ticker] = d
	return nil
}
func (t memTx) PutSupply(ctx context.Context, s model.SupplyState) error {
	t.m.supplies[s.Ticker] = s
	return nil
}
func (t memTx) AppendLog(ctx context.Context, entries []model.OperationLogEntry) error {
	t.m.log = append(t.m.log, entries...)
	return nil
}
func (t memTx) PutProcessedBlock(ctx context.Context, pb model.ProcessedBlock) error {
	t.m.processed[pb.Height] = pb
	if !t.m.hasTip || pb.Height > t.m.tipHeight {
		t.m.hasTip = true
		t.m.tipHeight = pb.Height
	}
	return nil
}
func (t memTx) DeleteDeploy(ctx context.Context, ticker model.Ticker) error {
	delete(t.m.deploys, ticker)
	return nil
}
func (t memTx) TruncateLogAbove(ctx context.Context, height uint64) error {
	kept := t.m.log[:0]
	for _, e := range t.m.log {
		if e.BlockHeight <= height {
			kept = append(kept, e)
		}
	}
	t.m.log = kept
	return nil
}
func (t memTx) DeleteProcessedBlock(ctx context.Context, height uint64) error {
	delete(t.m.processed, height)
	if t.m.hasTip && t.m.tipHeight == height {
		t.m.hasTip = false
		for h, pb := range t.m.processed {
			if !t.m.hasTip || h > t.m.tipHeight {
				t.m.tipHeight = h
				t.m.hasTip = true
				_ = pb
			}
		}
	}
	return nil
}
func (t memTx) NextLogID(ctx context.Context) (uint64, error) {
	id := t.m.nextLogID
	t.m.nextLogID++
	return id, nil
}

// BeginTx runs fn with exclusive access to the store, restoring a snapshot
// of every table if fn returns an error, so a step that fails partway
// through (e.g. the supply invariant check in package commit's step 3,
// after step 1's balance writes already landed) leaves Memory exactly as
// it found it — matching Bolt's real transaction rollback.
func (m *Memory) BeginTx(ctx context.Context, fn func(tx Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.snapshot()
	if err := fn(memTx{m: m}); err != nil {
		m.restore(snapshot)
		return err
	}
	return nil
}

type memSnapshot struct {
	balances  map[BalanceKey]uint64
	deploys   map[model.Ticker]model.Deploy
	supplies  map[model.Ticker]model.SupplyState
	log       []model.OperationLogEntry
	processed map[uint64]model.ProcessedBlock
	nextLogID uint64
	hasTip    bool
	tipHeight uint64
}

func (m *Memory) snapshot() memSnapshot {
	s := memSnapshot{
		balances:  make(map[BalanceKey]uint64, len(m.balances)),
		deploys:   make(map[model.Ticker]model.Deploy, len(m.deploys)),
		supplies:  make(map[model.Ticker]model.SupplyState, len(m.supplies)),
		log:       make([]model.OperationLogEntry, len(m.log)),
		processed: make(map[uint64]model.ProcessedBlock, len(m.processed)),
		nextLogID: m.nextLogID,
		hasTip:    m.hasTip,
		tipHeight: m.tipHeight,
	}
	for k, v := range m.balances {
		s.balances[k] = v
	}
	for k, v := range m.deploys {
		s.deploys[k] = v
	}
	for k, v := range m.supplies {
		s.supplies[k] = v
	}
	copy(s.log, m.log)
	for k, v := range m.processed {
		s.processed[k] = v
	}
	return s
}

func (m *Memory) restore(s memSnapshot) {
	m.balances = s.balances
	m.deploys = s.deploys
	m.supplies = s.supplies
	m.log = s.log
	m.processed = s.processed
	m.nextLogID = s.nextLogID
	m.hasTip = s.hasTip
	m.tipHeight = s.tipHeight
}

func (m *Memory) Close() error { return nil }

// Log returns a snapshot copy of the full operation log, for tests.
func (m *Memory) Log() []model.OperationLogEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.OperationLogEntry, len(m.log))
	copy(out, m.log)
	return out
}

var (
	_ Store = (*Memory)(nil)
	_ Tx    = memTx{}
)

package blockproc

import (
	"context"
	"time"

	"github.com/brc20x/indexer/chainerr"
	"github.com/brc20x/indexer/commit"
	"github.com/brc20x/indexer/nodeclient"
	"github.com/brc20x/indexer/reorg"
	"github.com/brc20x/indexer/store"
)

// RetryPolicy bounds how the Engine backs off after a transient failure
// (spec.md §5, "Timeouts and retries"). MaxAttempts caps how many times a
// single block is retried before the engine escalates to fatal (spec.md
// §7, "exceed their retry budget ... escalate to fatal"); zero means
// unbounded.
type RetryPolicy struct {
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	MaxAttempts    int
}

func (p RetryPolicy) backoffFor(attempt int) time.Duration {
	d := p.InitialBackoff
	for i := 0; i < attempt && d < p.MaxBackoff; i++ {
		d *= 2
	}
	if d > p.MaxBackoff {
		d = p.MaxBackoff
	}
	if d <= 0 {
		d = time.Second
	}
	return d
}

// Engine runs the single-block-at-a-time fetch/process/commit loop (spec.md
// §5, §4.8): pull from a prefetch queue, verify the chain link against the
// indexed tip, hand off to the reorg handler on mismatch, else process and
// commit. It retries a block with exponential backoff on a transient
// processor Error and stops entirely on a fatal error.
type Engine struct {
	Node     nodeclient.Client
	Store    store.Store
	Deps     Deps
	Retry    RetryPolicy
	ReorgMax uint64 // reorg_depth_limit
	Sleep    func(time.Duration) // overridable for tests
}

func (e Engine) sleep(d time.Duration) {
	if e.Sleep != nil {
		e.Sleep(d)
		return
	}
	time.Sleep(d)
}

// Run drives the loop until the node has no further block to hand out or
// ctx is cancelled (both return nil), or until processing stops with an
// error, which it returns.
// prefetchDepth is how many blocks the underlying NodeClient fetch queue
// keeps buffered ahead of the consumer (spec.md §5, "Fetching").
func (e Engine) Run(ctx context.Context, prefetchDepth int) *chainerr.Error {
	startHeight, hasTip, err := e.Store.TipHeight(ctx)
	if err != nil {
		return chainerr.New(chainerr.StoreConflict, "%v", err)
	}
	nextHeight := uint64(0)
	if hasTip {
		nextHeight = startHeight + 1
	}

	queue := nodeclient.NewPrefetchQueue(ctx, e.Node, nextHeight, prefetchDepth)
	defer queue.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		block, fetchErr := queue.Next(ctx)
		if fetchErr != nil {
			if nodeclient.ErrNoMoreBlocks(fetchErr) {
				return nil
			}
			if ctx.Err() != nil {
				return nil
			}
			return chainerr.New(chainerr.NodeUnavailable, "%v", fetchErr)
		}

		tipHeight, hasTip, err := e.Store.TipHeight(ctx)
		if err != nil {
			return chainerr.New(chainerr.StoreConflict, "%v", err)
		}
		needsReorg := false
		if hasTip {
			tip, err := e.Store.ProcessedBlock(ctx, tipHeight)
			if err != nil {
				return chainerr.New(chainerr.StoreConflict, "%v", err)
			}
			if block.PrevHash != tip.Hash {
				needsReorg = true
			}
		}

		if needsReorg {
			queue.Close()
			resumeHeight, rErr := reorg.Handle(ctx, reorg.Deps{Node: e.Node, Store: e.Store, MaxDepth: e.ReorgMax})
			if rErr != nil {
				return rErr
			}
			queue = nodeclient.NewPrefetchQueue(ctx, e.Node, resumeHeight, prefetchDepth)
			continue
		}

		if err := e.processAndCommitWithRetry(ctx, block); err != nil {
			return err
		}
	}
}

func (e Engine) processAndCommitWithRetry(ctx context.Context, block nodeclient.Block) *chainerr.Error {
	attempt := 0
	for {
		plan, procErr := ProcessBlock(ctx, e.Deps, block)
		if procErr != nil {
			if procErr.Kind() != chainerr.KindTransient {
				return procErr
			}
			if e.retryBudgetExhausted(attempt) {
				return chainerr.New(chainerr.RetryBudgetExceeded, "block %d: %v", block.Height, procErr)
			}
			e.sleep(e.Retry.backoffFor(attempt))
			attempt++
			continue
		}

		if err := commit.Apply(ctx, e.Store, plan, e.Deps.now().Unix()); err != nil {
			if err == store.ErrConflict {
				if e.retryBudgetExhausted(attempt) {
					return chainerr.New(chainerr.RetryBudgetExceeded, "block %d: %v", block.Height, err)
				}
				e.sleep(e.Retry.backoffFor(attempt))
				attempt++
				continue
			}
			return chainerr.New(chainerr.StoreConflict, "%v", err)
		}
		return nil
	}
}

func (e Engine) retryBudgetExhausted(attempt int) bool {
	return e.Retry.MaxAttempts > 0 && attempt >= e.Retry.MaxAttempts
}

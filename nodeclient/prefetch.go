package nodeclient

import (
	"context"
	"fmt"
)

// PrefetchQueue fetches up to Depth blocks ahead of the last height consumed
// by Next, mirroring the teacher's single-writer SyncEngine but moving the
// blocking Client calls onto a background goroutine so the block processor
// never stalls waiting on the network between blocks it already has in
// hand (spec.md §5, "Fetching").
//
// If a fetched block's PrevHash does not match the previous block handed
// out, Next returns a fork error instead of the block; the queue itself
// neither discards its buffer nor restarts fetching. blockproc.Engine
// separately compares each block's PrevHash with the indexed tip and, on a
// mismatch, runs the Reorg Handler and opens a new queue from the resume
// height. PrefetchQueue only protects itself from serving a stale
// prefetched chain.
type PrefetchQueue struct {
	client Client
	depth  int

	nextHeight uint64
	lastHash   string
	hasLast    bool

	out    chan fetchResult
	cancel context.CancelFunc
}

type fetchResult struct {
	block Block
	err   error
}

// NewPrefetchQueue starts background fetching of blocks beginning at
// startHeight. depth is clamped to at least 1.
func NewPrefetchQueue(ctx context.Context, client Client, startHeight uint64, depth int) *PrefetchQueue {
	if depth < 1 {
		depth = 1
	}
	runCtx, cancel := context.WithCancel(ctx)
	q := &PrefetchQueue{
		client:     client,
		depth:      depth,
		nextHeight: startHeight,
		out:        make(chan fetchResult, depth),
		cancel:     cancel,
	}
	go q.run(runCtx)
	return q
}

func (q *PrefetchQueue) run(ctx context.Context) {
	defer close(q.out)
	height := q.nextHeight
	for {
		hash, ok, err := q.client.BlockHashAt(ctx, height)
		if err != nil {
			select {
			case q.out <- fetchResult{err: err}:
			case <-ctx.Done():
			}
			return
		}
		if !ok {
			return // caught up to tip; caller calls ChainTip/BlockHashAt again later
		}
		block, err := q.client.Block(ctx, hash)
		if err != nil {
			select {
			case q.out <- fetchResult{err: err}:
			case <-ctx.Done():
			}
			return
		}
		select {
		case q.out <- fetchResult{block: block}:
		case <-ctx.Done():
			return
		}
		height++
	}
}

// Next blocks until the next prefetched block is available, or returns a
// terminal error. When the prefetched block's PrevHash does not chain from
// the last block this queue handed out, Next returns a fork error; the
// caller should stop consuming this queue and construct a fresh one after
// resolving the reorg.
func (q *PrefetchQueue) Next(ctx context.Context) (Block, error) {
	select {
	case r, ok := <-q.out:
		if !ok {
			return Block{}, errNoMoreBlocks
		}
		if r.err != nil {
			return Block{}, r.err
		}
		if q.hasLast && r.block.PrevHash != q.lastHash {
			return Block{}, fmt.Errorf("prefetch queue: fork detected at height %d: prev_hash mismatch", r.block.Height)
		}
		q.lastHash = r.block.Hash
		q.hasLast = true
		return r.block, nil
	case <-ctx.Done():
		return Block{}, ctx.Err()
	}
}

// Close stops the background fetch goroutine.
func (q *PrefetchQueue) Close() {
	q.cancel()
}

var errNoMoreBlocks = fmt.Errorf("prefetch queue: no more blocks at this time")

// ErrNoMoreBlocks reports whether err is the queue's caught-up-to-tip sentinel.
func ErrNoMoreBlocks(err error) bool {
	return err == errNoMoreBlocks
}

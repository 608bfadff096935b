package nodeclient

import (
	"context"
	"fmt"
)

// Fake is an in-memory Client used by tests and local development. Blocks
// are added with AddBlock in height order; Reorg lets tests drive
// chain-reorganization scenarios deterministically.
type Fake struct {
	byHeight map[uint64]Block
	byHash   map[string]Block
	tipHeight uint64
	tipHash   string
	hasTip    bool
}

// NewFake returns an empty fake node client.
func NewFake() *Fake {
	return &Fake{
		byHeight: make(map[uint64]Block),
		byHash:   make(map[string]Block),
	}
}

// AddBlock registers a block and advances the fake's tip to it.
func (f *Fake) AddBlock(b Block) {
	f.byHeight[b.Height] = b
	f.byHash[b.Hash] = b
	f.tipHeight = b.Height
	f.tipHash = b.Hash
	f.hasTip = true
}

// Reorg replaces the block at height (and implicitly everything a test adds
// above it afterward) with a new block, simulating a node-side chain switch.
func (f *Fake) Reorg(height uint64, replacement Block) {
	// Drop any now-stale descendants so BlockHashAt stops serving them.
	for h := range f.byHeight {
		if h > height {
			delete(f.byHash, f.byHeight[h].Hash)
			delete(f.byHeight, h)
		}
	}
	f.AddBlock(replacement)
}

func (f *Fake) ChainTip(_ context.Context) (uint64, string, error) {
	if !f.hasTip {
		return 0, "", fmt.Errorf("fake node client: no blocks yet")
	}
	return f.tipHeight, f.tipHash, nil
}

func (f *Fake) BlockHashAt(_ context.Context, height uint64) (string, bool, error) {
	b, ok := f.byHeight[height]
	if !ok {
		return "", false, nil
	}
	return b.Hash, true, nil
}

func (f *Fake) Block(_ context.Context, hash string) (Block, error) {
	b, ok := f.byHash[hash]
	if !ok {
		return Block{}, fmt.Errorf("fake node client: unknown block hash %q", hash)
	}
	return b, nil
}

var _ Client = (*Fake)(nil)

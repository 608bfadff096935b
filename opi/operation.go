// Package opi implements the operation-tag registry, router, and processor
// contract (C6/C7, spec.md §4.4-§4.5). Processors never write to the store;
// they validate against a state.View and propose a list of Updates that the
// block processor applies to the block's Intermediate only after a
// Success outcome.
package opi

import (
	"github.com/brc20x/indexer/nodeclient"
	"github.com/brc20x/indexer/payload"
)

// Operation is the parsed payload plus the transaction context a processor
// needs to resolve addresses and build log entries (spec.md §4.5).
type Operation struct {
	Decoded        payload.DecodedOp
	Tx             nodeclient.TxInfo
	BlockHeight    uint64
	BlockHash      string
	BlockTimestamp int64
	TxIndex        int

	// Group carries every decoded candidate that shares this operation's
	// dispatch when a single OP_RETURN array push represents one logical
	// multi-part operation (spec.md §4.5, §4.7: a multi-receiver transfer
	// is "an array payload of single-receiver operations" sharing one
	// push, not independent array elements). len(Group) == 1 for the
	// ordinary single-element case; a processor that ignores grouping can
	// use Decoded directly instead.
	Group []payload.DecodedOp
}

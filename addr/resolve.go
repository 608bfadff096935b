// Package addr implements the canonical, consensus-relevant receiver/sender
// resolution rules (spec.md §4.7). These are pure functions over the
// already-decoded TxInfo the NodeClient supplies; the core never
// reconstructs addresses from scripts itself.
package addr

import "github.com/brc20x/indexer/nodeclient"

// isOpReturn reports whether script encodes an OP_RETURN output.
func isOpReturn(script []byte) bool {
	return len(script) > 0 && script[0] == 0x6a
}

// MintReceiver returns the owner of the first standard (non-OP_RETURN)
// output of the transaction, skipping OP_RETURN outputs.
func MintReceiver(tx nodeclient.TxInfo) (address string, ok bool) {
	for _, out := range tx.Outputs {
		if isOpReturn(out.Script) {
			continue
		}
		if out.Address == "" {
			continue
		}
		return out.Address, true
	}
	return "", false
}

// TransferSender returns the owner of the first input of the transaction
// whose previous output's address can be resolved.
func TransferSender(tx nodeclient.TxInfo) (address string, ok bool) {
	for _, in := range tx.Inputs {
		if in.Address == "" {
			continue
		}
		return in.Address, true
	}
	return "", false
}

// TransferReceivers returns the first n standard (non-OP_RETURN) output
// addresses, in output order, for a (possibly multi-receiver) transfer.
// If fewer than n resolvable standard outputs exist, ok=false.
func TransferReceivers(tx nodeclient.TxInfo, n int) (addresses []string, ok bool) {
	out := make([]string, 0, n)
	for _, o := range tx.Outputs {
		if len(out) == n {
			break
		}
		if isOpReturn(o.Script) {
			continue
		}
		if o.Address == "" {
			continue
		}
		out = append(out, o.Address)
	}
	if len(out) != n {
		return nil, false
	}
	return out, true
}

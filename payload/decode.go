// Package payload implements the OP_RETURN protocol-payload decoder (C2,
// spec.md §4.1). It locates OP_RETURN outputs, extracts UTF-8 JSON
// payloads for the known protocol family, and produces an ordered list of
// candidate operations with sequential sub_index assignment. It never
// touches accumulated protocol state — that is package validator's job.
package payload

import (
	"bytes"
	"unicode/utf8"

	"github.com/brc20x/indexer/chainerr"
	"github.com/brc20x/indexer/nodeclient"
)

// ProtocolFamily is the only "p" value this decoder recognizes.
const ProtocolFamily = "brc-20"

// Limits bounds decoding, sourced from config (spec.md §6).
type Limits struct {
	MaxPayloadBytes int
	MaxOpsPerTx     int
}

// DefaultLimits mirrors the relay-policy defaults spec.md §6 documents.
func DefaultLimits() Limits {
	return Limits{MaxPayloadBytes: 520, MaxOpsPerTx: 64}
}

// DecodedOp is one candidate operation extracted from a transaction's
// OP_RETURN outputs, in (tx-local) canonical order.
type DecodedOp struct {
	SourceOutputIndex   int
	SubIndex            int
	RawPayload          []byte
	StructurallyInvalid bool
	Reason              *chainerr.Error // set iff StructurallyInvalid

	P      string
	OpTag  string
	Ticker string
	Fields map[string]any // full decoded object, including p/op/tick
}

// StringField reads a string-valued field, reporting ok=false if absent or
// not a string.
func (d DecodedOp) StringField(name string) (string, bool) {
	v, has := d.Fields[name]
	if !has {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Decode scans tx's outputs in order for OP_RETURN payloads belonging to
// ProtocolFamily and returns the ordered, sub_index-assigned candidate
// operation list. A transaction with multiple OP_RETURNs concatenates
// their operation lists in output order (spec.md §4.1).
//
// Payloads with no leading '{'/'[' (after trimming whitespace), and JSON
// objects whose "p" is not ProtocolFamily, are silently skipped: they are
// not operations against this protocol and are not logged, to avoid
// treating arbitrary third-party OP_RETURN usage as noise in our operation
// log. A payload that does start with '{'/'[' but is not valid UTF-8,
// exceeds limits.MaxPayloadBytes, or is not strict JSON is returned as a
// candidate with StructurallyInvalid=true before its "p" is known, and so
// is a candidate that declares our p but breaks another structural rule,
// so the caller can log its rejection deterministically (spec.md §4.1).
// Past limits.MaxOpsPerTx candidates, one PAYLOAD_TOO_LARGE candidate is
// appended and the rest are dropped.
func Decode(tx nodeclient.TxInfo, limits Limits) []DecodedOp {
	var ops []DecodedOp
	subIndex := 0

	capped := false
	emit := func(outIdx int, raw []byte, invalid bool, reason *chainerr.Error, p, op, tick string, fields map[string]any) {
		if len(ops) >= limits.MaxOpsPerTx {
			if !capped {
				capped = true
				ops = append(ops, DecodedOp{
					SourceOutputIndex:   outIdx,
					SubIndex:            subIndex,
					RawPayload:          raw,
					StructurallyInvalid: true,
					Reason:              chainerr.New(chainerr.PayloadTooLarge, "transaction exceeds %d ops per tx", limits.MaxOpsPerTx),
				})
				subIndex++
			}
			return
		}
		ops = append(ops, DecodedOp{
			SourceOutputIndex:   outIdx,
			SubIndex:            subIndex,
			RawPayload:          raw,
			StructurallyInvalid: invalid,
			Reason:              reason,
			P:                   p,
			OpTag:               op,
			Ticker:              tick,
			Fields:              fields,
		})
		subIndex++
	}

	for outIdx, out := range tx.Outputs {
		data, ok := opReturnPush(out.Script)
		if !ok {
			continue
		}
		trimmed := bytes.TrimSpace(data)
		if len(trimmed) == 0 || (trimmed[0] != '{' && trimmed[0] != '[') {
			continue // not addressed to any JSON-based protocol we know
		}
		if !utf8.Valid(data) {
			emit(outIdx, data, true, chainerr.New(chainerr.UnsupportedEncoding, "OP_RETURN payload is not valid UTF-8"), "", "", "", nil)
			continue
		}
		if len(data) > limits.MaxPayloadBytes {
			emit(outIdx, data, true, chainerr.New(chainerr.PayloadTooLarge, "payload %d bytes exceeds limit %d", len(data), limits.MaxPayloadBytes), "", "", "", nil)
			continue
		}

		val, err := decodeStrictJSON(trimmed)
		if err != nil {
			emit(outIdx, data, true, chainerr.New(chainerr.MalformedJSON, "%v", err), "", "", "", nil)
			continue
		}

		var elements []any
		switch v := val.(type) {
		case map[string]any:
			elements = []any{v}
		case []any:
			elements = v
		default:
			emit(outIdx, data, true, chainerr.New(chainerr.MalformedJSON, "top-level JSON value must be an object or array"), "", "", "", nil)
			continue
		}

		for _, el := range elements {
			obj, ok := el.(map[string]any)
			if !ok {
				emit(outIdx, data, true, chainerr.New(chainerr.MalformedJSON, "array element is not a JSON object"), "", "", "", nil)
				continue
			}
			p, _ := obj["p"].(string)
			if p != ProtocolFamily {
				continue // not a candidate for this protocol
			}
			opTag, hasOp := obj["op"].(string)
			tick, hasTick := obj["tick"].(string)
			if !hasOp || !hasTick {
				emit(outIdx, data, true, chainerr.New(chainerr.MissingField, "candidate payload missing required field op/tick"), p, opTag, tick, obj)
				continue
			}
			emit(outIdx, data, false, nil, p, opTag, tick, obj)
		}
	}
	return ops
}

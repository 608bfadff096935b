package payload

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/brc20x/indexer/nodeclient"
)

// opReturnScript builds a minimal-push OP_RETURN script carrying data,
// choosing the push opcode the same way a real wallet would: direct push
// for <=75 bytes, OP_PUSHDATA1 up to 255, OP_PUSHDATA2 beyond that.
func opReturnScript(data []byte) []byte {
	var buf bytes.Buffer
	buf.WriteByte(0x6a)
	switch {
	case len(data) <= 75:
		buf.WriteByte(byte(len(data)))
	case len(data) <= 255:
		buf.WriteByte(0x4c)
		buf.WriteByte(byte(len(data)))
	default:
		buf.WriteByte(0x4d)
		buf.WriteByte(byte(len(data)))
		buf.WriteByte(byte(len(data) >> 8))
	}
	buf.Write(data)
	return buf.Bytes()
}

func txWithOpReturn(data []byte) nodeclient.TxInfo {
	return nodeclient.TxInfo{
		Txid: "tx1",
		Outputs: []nodeclient.TxOutput{
			{Script: opReturnScript(data)},
		},
	}
}

func mintPayload(tick, amt string) []byte {
	b, _ := json.Marshal(map[string]string{"p": ProtocolFamily, "op": "mint", "tick": tick, "amt": amt})
	return b
}

func TestDecodeValidMint(t *testing.T) {
	ops := Decode(txWithOpReturn(mintPayload("ordi", "100")), DefaultLimits())
	if len(ops) != 1 {
		t.Fatalf("expected 1 op, got %d", len(ops))
	}
	if ops[0].StructurallyInvalid {
		t.Fatalf("expected valid op, got invalid: %v", ops[0].Reason)
	}
	if ops[0].OpTag != "mint" || ops[0].Ticker != "ordi" {
		t.Fatalf("unexpected decode: %+v", ops[0])
	}
}

func TestDecodePayloadMaxBytesBoundary(t *testing.T) {
	limits := Limits{MaxPayloadBytes: 520, MaxOpsPerTx: 64}

	exact := padToExactly(t, 520)
	ops := Decode(txWithOpReturn(exact), limits)
	if len(ops) != 1 || ops[0].StructurallyInvalid {
		t.Fatalf("payload at exactly max_bytes should be accepted, got %+v", ops)
	}

	oneOver := padToExactly(t, 521)
	ops = Decode(txWithOpReturn(oneOver), limits)
	if len(ops) != 1 || !ops[0].StructurallyInvalid {
		t.Fatalf("payload one byte over max_bytes should be rejected, got %+v", ops)
	}
}

// padToExactly builds a structurally-valid brc-20 JSON payload padded with
// an extra string field to land at exactly n bytes.
func padToExactly(t *testing.T, n int) []byte {
	t.Helper()
	const fixed = `{"p":"brc-20","op":"mint","tick":"ordi","amt":"1","pad":""}`
	if n < len(fixed) {
		t.Fatalf("target size %d smaller than fixed overhead %d", n, len(fixed))
	}
	padding := strings.Repeat("x", n-len(fixed))
	out := []byte(`{"p":"brc-20","op":"mint","tick":"ordi","amt":"1","pad":"` + padding + `"}`)
	if len(out) != n {
		t.Fatalf("padding arithmetic off: got %d want %d", len(out), n)
	}
	return out
}

func TestDecodeRejectsDuplicateKeys(t *testing.T) {
	raw := []byte(`{"p":"brc-20","op":"mint","tick":"ordi","tick":"sats","amt":"1"}`)
	ops := Decode(txWithOpReturn(raw), DefaultLimits())
	if len(ops) != 1 || !ops[0].StructurallyInvalid {
		t.Fatalf("duplicate key payload should be structurally invalid, got %+v", ops)
	}
}

func TestDecodeIgnoresForeignProtocol(t *testing.T) {
	raw := []byte(`{"p":"other-protocol","op":"mint","tick":"ordi","amt":"1"}`)
	ops := Decode(txWithOpReturn(raw), DefaultLimits())
	if len(ops) != 0 {
		t.Fatalf("foreign protocol payload should be silently skipped, got %+v", ops)
	}
}

func TestDecodeMultiOpArray(t *testing.T) {
	raw := []byte(`[{"p":"brc-20","op":"transfer","tick":"ordi","amt":"1"},{"p":"brc-20","op":"transfer","tick":"ordi","amt":"2"}]`)
	ops := Decode(txWithOpReturn(raw), DefaultLimits())
	if len(ops) != 2 {
		t.Fatalf("expected 2 ops from array payload, got %d", len(ops))
	}
	if ops[0].SubIndex != 0 || ops[1].SubIndex != 1 {
		t.Fatalf("expected sequential sub_index assignment, got %d,%d", ops[0].SubIndex, ops[1].SubIndex)
	}
}

func TestDecodeMissingRequiredFieldIsStructurallyInvalid(t *testing.T) {
	raw := []byte(`{"p":"brc-20","op":"mint"}`)
	ops := Decode(txWithOpReturn(raw), DefaultLimits())
	if len(ops) != 1 || !ops[0].StructurallyInvalid {
		t.Fatalf("missing tick should be structurally invalid, got %+v", ops)
	}
}

func TestDecodeMaxOpsPerTxCap(t *testing.T) {
	raw := []byte(`[`)
	for i := 0; i < 10; i++ {
		if i > 0 {
			raw = append(raw, ',')
		}
		raw = append(raw, []byte(`{"p":"brc-20","op":"transfer","tick":"ordi","amt":"1"}`)...)
	}
	raw = append(raw, ']')
	ops := Decode(txWithOpReturn(raw), Limits{MaxPayloadBytes: 10_000, MaxOpsPerTx: 3})
	// Three ops fit under the cap; the first op over it becomes one
	// PAYLOAD_TOO_LARGE marker and the rest are dropped.
	if len(ops) != 4 {
		t.Fatalf("expected 3 ops plus one overflow marker, got %d", len(ops))
	}
	if !ops[3].StructurallyInvalid || ops[3].Reason == nil || string(ops[3].Reason.Code) != "PAYLOAD_TOO_LARGE" {
		t.Fatalf("expected PAYLOAD_TOO_LARGE overflow marker, got %+v", ops[3])
	}
}

package payload

// opReturnPush extracts the raw bytes of a minimal-push-encoded data push
// following an OP_RETURN opcode (0x6a) in a standard output script. Only
// the push encodings actually used by on-chain OP_RETURN payloads are
// supported: direct push (opcode 1..75), OP_PUSHDATA1 (0x4c) and
// OP_PUSHDATA2 (0x4d). OP_PUSHDATA4 payloads exceed any sane relay policy
// and are treated as "not an OP_RETURN data push" rather than parsed.
//
// Returns ok=false if script does not begin with OP_RETURN followed by a
// single recognized data push.
func opReturnPush(script []byte) (data []byte, ok bool) {
	const opReturn = 0x6a
	const opPushData1 = 0x4c
	const opPushData2 = 0x4d

	if len(script) < 2 || script[0] != opReturn {
		return nil, false
	}
	rest := script[1:]
	op := rest[0]

	switch {
	case op >= 1 && op <= 75:
		n := int(op)
		if len(rest) < 1+n {
			return nil, false
		}
		return rest[1 : 1+n], true
	case op == opPushData1:
		if len(rest) < 2 {
			return nil, false
		}
		n := int(rest[1])
		if len(rest) < 2+n {
			return nil, false
		}
		return rest[2 : 2+n], true
	case op == opPushData2:
		if len(rest) < 3 {
			return nil, false
		}
		n := int(rest[1]) | int(rest[2])<<8
		if len(rest) < 3+n {
			return nil, false
		}
		return rest[3 : 3+n], true
	case op == 0x00:
		// OP_RETURN with no data push (bare). Nothing to decode.
		return nil, false
	default:
		return nil, false
	}
}

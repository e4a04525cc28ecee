package rpc

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"kratos/primitives"
)

// decodeFlexibleBytes implements the hex-encoding contract: an
// AccountId or Signature arriving over RPC may be JSON-encoded as a
// "0x…" hex string (with or without the prefix), a raw JSON string
// (treated as already-hex without a prefix), or an array of integers
// (a loose client's byte array). tendermint/libs/bytes.HexBytes only
// accepts the hex-string form, not the array-of-integers form the
// contract also requires, so that case is decoded by hand.
func decodeFlexibleBytes(raw json.RawMessage) ([]byte, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil, fmt.Errorf("rpc: empty value")
	}

	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("rpc: decoding hex string: %w", err)
		}
		s = strings.TrimPrefix(s, "0x")
		s = strings.TrimPrefix(s, "0X")
		b, err := hex.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("rpc: invalid hex %q: %w", s, err)
		}
		return b, nil
	}

	if trimmed[0] == '[' {
		var ints []int
		if err := json.Unmarshal(raw, &ints); err != nil {
			return nil, fmt.Errorf("rpc: decoding byte array: %w", err)
		}
		out := make([]byte, len(ints))
		for i, v := range ints {
			if v < 0 || v > 255 {
				return nil, fmt.Errorf("rpc: byte array element %d out of range", v)
			}
			out[i] = byte(v)
		}
		return out, nil
	}

	return nil, fmt.Errorf("rpc: unsupported encoding for value %q", trimmed)
}

// DecodeAccountId parses one of the three accepted encodings into an
// AccountId, erroring if the decoded length doesn't match.
func DecodeAccountId(raw json.RawMessage) (primitives.AccountId, error) {
	b, err := decodeFlexibleBytes(raw)
	if err != nil {
		return primitives.AccountId{}, err
	}
	var id primitives.AccountId
	if len(b) != len(id) {
		return primitives.AccountId{}, fmt.Errorf("rpc: account id must be %d bytes, got %d", len(id), len(b))
	}
	copy(id[:], b)
	return id, nil
}

// DecodeSignature parses one of the three accepted encodings into a
// Signature.
func DecodeSignature(raw json.RawMessage) (primitives.Signature, error) {
	b, err := decodeFlexibleBytes(raw)
	if err != nil {
		return primitives.Signature{}, err
	}
	var sig primitives.Signature
	if len(b) != len(sig) {
		return primitives.Signature{}, fmt.Errorf("rpc: signature must be %d bytes, got %d", len(sig), len(b))
	}
	copy(sig[:], b)
	return sig, nil
}

// HexBytesString renders b as a "0x"-prefixed lowercase hex string, the
// canonical outbound form every result struct below uses.
func HexBytesString(b []byte) string { return "0x" + hex.EncodeToString(b) }

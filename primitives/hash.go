// Package primitives implements the hashing, signing and canonical
// encoding rules shared by every layer of the chain: the 32-byte hash,
// the ed25519 identity/signature types, and the domain-separated
// signing helper described by the core spec.
package primitives

import (
	"encoding/hex"
	"errors"

	"github.com/tendermint/tendermint/crypto/tmhash"
)

// HashSize is the width in bytes of every hash produced by the chain.
const HashSize = 32

// Hash is an opaque 32-byte digest with a total lexicographic order.
type Hash [HashSize]byte

// ZeroHash is the all-zero hash, used as epoch(0)'s randomness seed.
var ZeroHash Hash

// SumHash hashes an arbitrary byte slice with the chain's hash function.
func SumHash(b []byte) Hash {
	var h Hash
	copy(h[:], tmhash.Sum(b))
	return h
}

// Concat hashes the concatenation of every argument in order, without
// any length framing — callers that need injectivity across variable
// length inputs must length-prefix before calling this.
func Concat(parts ...[]byte) Hash {
	total := 0
	for _, p := range parts {
		total += len(p)
	}
	buf := make([]byte, 0, total)
	for _, p := range parts {
		buf = append(buf, p...)
	}
	return SumHash(buf)
}

// Bytes returns the hash's underlying bytes.
func (h Hash) Bytes() []byte { return h[:] }

// String renders the hash as lowercase hex.
func (h Hash) String() string { return hex.EncodeToString(h[:]) }

// IsZero reports whether h is the zero hash.
func (h Hash) IsZero() bool { return h == ZeroHash }

// Compare gives h a total order: -1, 0, or 1 relative to other.
func (h Hash) Compare(other Hash) int {
	for i := range h {
		if h[i] != other[i] {
			if h[i] < other[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// HashFromBytes copies raw bytes into a Hash, failing on wrong length.
func HashFromBytes(b []byte) (Hash, error) {
	var h Hash
	if len(b) != HashSize {
		return h, errors.New("primitives: wrong hash length")
	}
	copy(h[:], b)
	return h, nil
}

// HashFromHex decodes a hex string (with or without 0x prefix) into a Hash.
func HashFromHex(s string) (Hash, error) {
	return HashFromBytes(mustUnhex(s))
}

func mustUnhex(s string) []byte {
	s = trimHexPrefix(s)
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil
	}
	return b
}

func trimHexPrefix(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}


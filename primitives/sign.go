package primitives

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"errors"
)

// AccountIdSize is the width of an ed25519 public key, used directly
// as the chain's account/validator identity (no address hashing).
const AccountIdSize = ed25519.PublicKeySize // 32

// SignatureSize is the width of an ed25519 signature.
const SignatureSize = ed25519.SignatureSize // 64

// Domain tags. Prepended verbatim to the canonical message bytes
// before signing/verifying so a signature valid in one context can
// never be replayed in another.
const (
	DomainTx        = "KRATOS_TX_"
	DomainBlock     = "KRATOS_BLOCK_"
	DomainFinality  = "KRATOS_FINALITY_V1:"
	DomainHeartbeat = "KRATOS_HEARTBEAT_V1"
)

// AccountId is a 32-byte ed25519 public key acting as identity across
// wallet, validator and proposer roles.
type AccountId [AccountIdSize]byte

// Signature is a 64-byte ed25519 signature.
type Signature [SignatureSize]byte

// ZeroAccountId is used for optional/absent identity fields.
var ZeroAccountId AccountId

func (a AccountId) Bytes() []byte  { return a[:] }
func (a AccountId) String() string { return "0x" + hex.EncodeToString(a[:]) }
func (a AccountId) IsZero() bool   { return a == ZeroAccountId }

func (a AccountId) Compare(other AccountId) int {
	for i := range a {
		if a[i] != other[i] {
			if a[i] < other[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

func (s Signature) Bytes() []byte  { return s[:] }
func (s Signature) String() string { return "0x" + hex.EncodeToString(s[:]) }
func (s Signature) IsZero() bool   { var z Signature; return s == z }

// AccountIdFromBytes copies a 32-byte slice into an AccountId.
func AccountIdFromBytes(b []byte) (AccountId, error) {
	var a AccountId
	if len(b) != AccountIdSize {
		return a, errors.New("primitives: wrong account id length")
	}
	copy(a[:], b)
	return a, nil
}

// AccountIdFromHex decodes hex (with or without 0x prefix).
func AccountIdFromHex(s string) (AccountId, error) {
	return AccountIdFromBytes(mustUnhex(s))
}

// SignatureFromBytes copies a 64-byte slice into a Signature.
func SignatureFromBytes(b []byte) (Signature, error) {
	var s Signature
	if len(b) != SignatureSize {
		return s, errors.New("primitives: wrong signature length")
	}
	copy(s[:], b)
	return s, nil
}

// KeyPair holds an ed25519 keypair; PrivateKey is never serialized
// outside of the privval package.
type KeyPair struct {
	PublicKey  AccountId
	PrivateKey ed25519.PrivateKey
}

// GenerateKeyPair creates a fresh ed25519 keypair using the OS CSPRNG.
func GenerateKeyPair() (KeyPair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return KeyPair{}, err
	}
	var id AccountId
	copy(id[:], pub)
	return KeyPair{PublicKey: id, PrivateKey: priv}, nil
}

// KeyPairFromSeed derives a keypair deterministically from a 32-byte
// seed, used by genesis tooling and tests that need reproducible keys.
func KeyPairFromSeed(seed []byte) (KeyPair, error) {
	if len(seed) != ed25519.SeedSize {
		return KeyPair{}, errors.New("primitives: wrong seed length")
	}
	priv := ed25519.NewKeyFromSeed(seed)
	pub := priv.Public().(ed25519.PublicKey)
	var id AccountId
	copy(id[:], pub)
	return KeyPair{PublicKey: id, PrivateKey: priv}, nil
}

// Sign signs message under the given domain tag: sign(sk, domain, bytes).
func Sign(priv ed25519.PrivateKey, domain string, message []byte) Signature {
	signed := ed25519.Sign(priv, domainMessage(domain, message))
	var s Signature
	copy(s[:], signed)
	return s
}

// Verify checks a signature under the given domain tag:
// verify(pk, d, b, sign(sk, d', b)) is true iff pk derives from sk AND
// d == d'. Cross-domain reuse fails because the signed byte string
// differs.
func Verify(pub AccountId, domain string, message []byte, sig Signature) bool {
	return ed25519.Verify(pub[:], domainMessage(domain, message), sig[:])
}

func domainMessage(domain string, message []byte) []byte {
	buf := make([]byte, 0, len(domain)+len(message))
	buf = append(buf, domain...)
	buf = append(buf, message...)
	return buf
}

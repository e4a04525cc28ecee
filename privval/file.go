// Package privval implements the durable peer/validator identity: a
// 32-byte ed25519 seed persisted to disk with permission 0600. FilePV
// and LoadOrGenFilePV follow an atomic-write-then-0600-permission
// save, over a plain ed25519 AccountId.
package privval

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
	"os"

	"kratos/primitives"

	tmos "github.com/tendermint/tendermint/libs/os"
	"github.com/tendermint/tendermint/libs/tempfile"
)

// SeedSize is the width of the persisted identity file's contents.
const SeedSize = ed25519.SeedSize // 32

// FilePV is a file-backed ed25519 identity: the node's (or validator
// candidate's) long-lived signing key.
type FilePV struct {
	KeyPair  primitives.KeyPair
	filePath string
}

// GenFilePV generates a fresh identity from the OS CSPRNG, without
// persisting it; callers that want it on disk call Save.
func GenFilePV(keyFilePath string) (*FilePV, error) {
	seed := make([]byte, SeedSize)
	if _, err := rand.Read(seed); err != nil {
		return nil, fmt.Errorf("privval: generating seed: %w", err)
	}
	kp, err := primitives.KeyPairFromSeed(seed)
	if err != nil {
		return nil, err
	}
	return &FilePV{KeyPair: kp, filePath: keyFilePath}, nil
}

// LoadFilePV reads a 32-byte seed from keyFilePath and derives the
// keypair from it.
func LoadFilePV(keyFilePath string) (*FilePV, error) {
	seed, err := os.ReadFile(keyFilePath)
	if err != nil {
		return nil, fmt.Errorf("privval: reading %s: %w", keyFilePath, err)
	}
	if len(seed) != SeedSize {
		return nil, fmt.Errorf("privval: %s does not contain a %d-byte seed", keyFilePath, SeedSize)
	}
	kp, err := primitives.KeyPairFromSeed(seed)
	if err != nil {
		return nil, err
	}
	return &FilePV{KeyPair: kp, filePath: keyFilePath}, nil
}

// LoadOrGenFilePV loads the identity at keyFilePath, generating and
// persisting a fresh one if the file does not yet exist.
func LoadOrGenFilePV(keyFilePath string) (*FilePV, error) {
	if tmos.FileExists(keyFilePath) {
		return LoadFilePV(keyFilePath)
	}
	pv, err := GenFilePV(keyFilePath)
	if err != nil {
		return nil, err
	}
	if err := pv.Save(); err != nil {
		return nil, err
	}
	return pv, nil
}

// Save atomically writes the identity's raw seed to disk at mode 0600,
// the permission required for the durable peer identity.
func (pv *FilePV) Save() error {
	if pv.filePath == "" {
		return fmt.Errorf("privval: cannot save identity: no file path set")
	}
	seed := pv.KeyPair.PrivateKey.Seed()
	return tempfile.WriteFileAtomic(pv.filePath, seed, 0600)
}

// PublicKey returns the identity's public AccountId.
func (pv *FilePV) PublicKey() primitives.AccountId { return pv.KeyPair.PublicKey }

func (pv *FilePV) String() string {
	return fmt.Sprintf("FilePV{%s}", pv.KeyPair.PublicKey)
}

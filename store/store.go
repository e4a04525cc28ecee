// Package store implements the persisted state layout: blocks by
// number, blocks by hash, the finalized marker, account state, VC
// records, a validator-set snapshot, and the pending unbond schedule,
// each in its own key namespace of a single tm-db-backed table
// (github.com/tendermint/tm-db + github.com/syndtr/goleveldb,
// namespaced keys via a genKey-style prefix, batched writes). Values
// are serialized with encoding/gob over this repo's domain types. gob
// is used only for the on-disk value blobs, never for the canonical
// wire/hash/sign format primitives.Encode already owns — nothing here
// is ever hashed or signed, so there is no canonical-encoding
// invariant to preserve, and no general-purpose struct codec is
// needed beyond gob.
package store

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"kratos/primitives"
	"kratos/state"
	"kratos/types"

	"github.com/tendermint/tendermint/libs/log"
	tmdb "github.com/tendermint/tm-db"
	leveldb "github.com/tendermint/tm-db/goleveldb"
)

const (
	prefixBlockByNumber = "b#n#"
	prefixBlockByHash   = "b#h#"
	prefixAccount       = "acc#"
	prefixVC            = "vc#"
	prefixPendingUnbond = "unb#"
	keyFinalized        = "finalized"
	keyValidatorSet     = "validators"
)

// prefixEndBytes returns the exclusive upper bound of the key range
// covering everything with the given prefix (not present as an
// exported helper in this pinned tm-db version).
func prefixEndBytes(prefix []byte) []byte {
	if len(prefix) == 0 {
		return nil
	}
	end := make([]byte, len(prefix))
	copy(end, prefix)
	for len(end) > 0 {
		if end[len(end)-1] != byte(0xFF) {
			end[len(end)-1]++
			return end
		}
		end = end[:len(end)-1]
	}
	return nil
}

// Store is the persisted-layout handle. Not goroutine-safe beyond
// whatever tm-db's underlying DB guarantees; callers serialize writes
// the same way they serialize the in-memory chain.Engine writer.
type Store struct {
	db     tmdb.DB
	logger log.Logger
}

// Open opens (creating if absent) a goleveldb-backed Store at dir.
func Open(name, dir string, logger log.Logger) (*Store, error) {
	db, err := leveldb.NewDB(name, dir)
	if err != nil {
		return nil, fmt.Errorf("store: open %s/%s: %w", dir, name, err)
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Store{db: db, logger: logger}, nil
}

// OpenWithDB wraps an already-open tm-db instance, used by tests to
// substitute tmdb.memdb.NewMemDB instead of touching disk.
func OpenWithDB(db tmdb.DB, logger log.Logger) *Store {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Store{db: db, logger: logger}
}

func (s *Store) Close() error { return s.db.Close() }

func encodeGob(v interface{}) []byte {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		// Every persisted type here is a plain struct of fixed-size
		// arrays, ints and slices thereof; gob only fails on types it
		// cannot introspect, which would be a programmer error, not a
		// runtime condition callers can recover from.
		panic("store: gob encode: " + err.Error())
	}
	return buf.Bytes()
}

func decodeGob(b []byte, v interface{}) error {
	return gob.NewDecoder(bytes.NewReader(b)).Decode(v)
}

func blockNumberKey(n types.BlockNumber) []byte {
	return []byte(fmt.Sprintf("%s%020d", prefixBlockByNumber, uint64(n)))
}

func blockHashKey(h primitives.Hash) []byte {
	return append([]byte(prefixBlockByHash), h.Bytes()...)
}

func accountKey(id primitives.AccountId) []byte {
	return append([]byte(prefixAccount), id.Bytes()...)
}

func vcKey(id primitives.AccountId) []byte {
	return append([]byte(prefixVC), id.Bytes()...)
}

func pendingUnbondKey(epoch types.EpochNumber, id primitives.AccountId) []byte {
	return append([]byte(fmt.Sprintf("%s%020d#", prefixPendingUnbond, uint64(epoch))), id.Bytes()...)
}

// PutBlock persists a block under both its number and hash namespaces
// in one batch, so a crash between the two writes never happens.
func (s *Store) PutBlock(block *types.Block) error {
	batch := s.db.NewBatch()
	defer batch.Close()

	payload := encodeGob(*block)
	if err := batch.Set(blockNumberKey(block.Header.Number), payload); err != nil {
		return err
	}
	if err := batch.Set(blockHashKey(block.Hash()), payload); err != nil {
		return err
	}
	return batch.Write()
}

func (s *Store) getBlock(key []byte) (*types.Block, bool, error) {
	raw, err := s.db.Get(key)
	if err != nil {
		return nil, false, err
	}
	if raw == nil {
		return nil, false, nil
	}
	var b types.Block
	if err := decodeGob(raw, &b); err != nil {
		return nil, false, err
	}
	return &b, true, nil
}

func (s *Store) GetBlockByNumber(n types.BlockNumber) (*types.Block, bool, error) {
	return s.getBlock(blockNumberKey(n))
}

func (s *Store) GetBlockByHash(h primitives.Hash) (*types.Block, bool, error) {
	return s.getBlock(blockHashKey(h))
}

// finalizedRecord is the persisted "finalized marker": the highest
// block number and hash covered by a FinalityJustification.
type finalizedRecord struct {
	Number types.BlockNumber
	Hash   primitives.Hash
}

func (s *Store) SetFinalized(number types.BlockNumber, hash primitives.Hash) error {
	return s.db.Set([]byte(keyFinalized), encodeGob(finalizedRecord{Number: number, Hash: hash}))
}

func (s *Store) GetFinalized() (number types.BlockNumber, hash primitives.Hash, ok bool, err error) {
	raw, err := s.db.Get([]byte(keyFinalized))
	if err != nil || raw == nil {
		return 0, primitives.Hash{}, false, err
	}
	var rec finalizedRecord
	if err := decodeGob(raw, &rec); err != nil {
		return 0, primitives.Hash{}, false, err
	}
	return rec.Number, rec.Hash, true, nil
}

func (s *Store) PutAccount(id primitives.AccountId, acc types.Account) error {
	return s.db.Set(accountKey(id), encodeGob(acc))
}

func (s *Store) GetAccount(id primitives.AccountId) (types.Account, bool, error) {
	raw, err := s.db.Get(accountKey(id))
	if err != nil || raw == nil {
		return types.Account{}, false, err
	}
	var acc types.Account
	if err := decodeGob(raw, &acc); err != nil {
		return types.Account{}, false, err
	}
	return acc, true, nil
}

func (s *Store) PutVC(id primitives.AccountId, vc types.ValidatorCredits) error {
	return s.db.Set(vcKey(id), encodeGob(vc))
}

func (s *Store) GetVC(id primitives.AccountId) (types.ValidatorCredits, bool, error) {
	raw, err := s.db.Get(vcKey(id))
	if err != nil || raw == nil {
		return types.ValidatorCredits{}, false, err
	}
	var vc types.ValidatorCredits
	if err := decodeGob(raw, &vc); err != nil {
		return types.ValidatorCredits{}, false, err
	}
	return vc, true, nil
}

// PutValidatorSnapshot persists the full validator roster as it stood
// after the most recently committed block, so a restarting node can
// rebuild validators.Set without replaying the whole chain.
func (s *Store) PutValidatorSnapshot(validators []types.Validator) error {
	return s.db.Set([]byte(keyValidatorSet), encodeGob(validators))
}

func (s *Store) GetValidatorSnapshot() ([]types.Validator, bool, error) {
	raw, err := s.db.Get([]byte(keyValidatorSet))
	if err != nil || raw == nil {
		return nil, false, err
	}
	var validators []types.Validator
	if err := decodeGob(raw, &validators); err != nil {
		return nil, false, err
	}
	return validators, true, nil
}

// PutPendingUnbond persists one account's unbond entry queued for a
// given maturity epoch, mirroring state.PendingUnbond.
func (s *Store) PutPendingUnbond(epoch types.EpochNumber, entry state.PendingUnbond) error {
	return s.db.Set(pendingUnbondKey(epoch, entry.Account), encodeGob(entry))
}

// IteratePendingUnbonds walks every pending unbond entry recorded for
// epoch in ascending account-id order.
func (s *Store) IteratePendingUnbonds(epoch types.EpochNumber) ([]state.PendingUnbond, error) {
	prefix := []byte(fmt.Sprintf("%s%020d#", prefixPendingUnbond, uint64(epoch)))
	it, err := s.db.Iterator(prefix, prefixEndBytes(prefix))
	if err != nil {
		return nil, err
	}
	defer it.Close()

	var out []state.PendingUnbond
	for ; it.Valid(); it.Next() {
		var entry state.PendingUnbond
		if err := decodeGob(it.Value(), &entry); err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, it.Error()
}

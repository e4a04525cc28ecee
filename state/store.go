// Package state implements the StateStore: the in-memory
// map[AccountId]Account plus per-validator VC records (pending unbonds
// are read from each account's Unbonding entries), and the transaction
// executor that mutates
// it. StateStore is the exclusive owner of account and VC records;
// ValidatorSet (package validators) exclusively owns validator
// stake/status records.
package state

import (
	"sort"
	"sync"

	"kratos/chainerrors"
	"kratos/primitives"
	"kratos/types"

	"golang.org/x/exp/maps"
)

// VCRecord is the authoritative Validator Credits record StateStore
// owns; ValidatorSet mirrors a read-only copy for VRF weight math.
type VCRecord = types.ValidatorCredits

// PendingUnbond is one account's unbond entry maturing at a given
// epoch, as reported by PendingUnbondsMaturingAt, which scans every
// account on each call.
type PendingUnbond struct {
	Account primitives.AccountId
	Amount  types.Balance
}

// Store is the state store's public surface.
type Store interface {
	GetAccount(id primitives.AccountId) (types.Account, bool)
	GetVC(id primitives.AccountId) (VCRecord, bool)

	// Mutate applies f under the exclusive writer lock, atomically
	// committing or discarding its effects depending on the returned
	// error.
	Mutate(f func(tx *Txn) error) error

	// ComputeStateRoot walks accounts, VC records and (from the
	// validators argument) validator entries in canonical order and
	// hashes them into a single Merkle root, mixing in blockNumber and
	// chainId to prevent cross-chain/cross-height reuse.
	ComputeStateRoot(blockNumber types.BlockNumber, chainId string, validators []types.Validator) primitives.Hash

	// InitializeBootstrapVC sets vc.uptime = 100 for a validator
	// coming into existence during bootstrap, so its VRF weight is
	// non-zero. It MUST be called with the caller's already-held write
	// scope (see Txn) at every genesis/approval site; a second,
	// separately-acquired write lock would deadlock (non-reentrant
	// locking).
	InitializeBootstrapVC(tx *Txn, id primitives.AccountId)

	PendingUnbondsMaturingAt(epoch types.EpochNumber) []PendingUnbond

	SetLogger(logger Logger)

	// Snapshot and Restore give the block importer a way to execute a
	// remote block tentatively and discard the result if its declared
	// state_root turns out not to match: Mutate's
	// own all-or-nothing rollback only covers a single closure, but
	// import spans two separate Mutate calls (phase 1 execution, phase
	// 2 deferred effects) with the root check in between.
	Snapshot() Snapshot
	Restore(snap Snapshot)
}

// Snapshot is an opaque, independent copy of every account and VC
// record at the moment it was taken.
type Snapshot struct {
	accounts map[primitives.AccountId]types.Account
	vc       map[primitives.AccountId]VCRecord
}

// Logger is the minimal logging surface the store needs, satisfied by
// tendermint/libs/log.Logger.
type Logger interface {
	Debug(msg string, keyvals ...interface{})
	Info(msg string, keyvals ...interface{})
	Error(msg string, keyvals ...interface{})
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

// store is the concrete, in-memory implementation.
type store struct {
	mtx sync.RWMutex

	accounts map[primitives.AccountId]types.Account
	vc       map[primitives.AccountId]VCRecord

	logger Logger
}

// NewStore returns an empty in-memory StateStore.
func NewStore() Store {
	return &store{
		accounts: make(map[primitives.AccountId]types.Account),
		vc:       make(map[primitives.AccountId]VCRecord),
		logger:   nopLogger{},
	}
}

func (s *store) SetLogger(logger Logger) { s.logger = logger }

func (s *store) GetAccount(id primitives.AccountId) (types.Account, bool) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	acc, ok := s.accounts[id]
	return acc, ok
}

func (s *store) GetVC(id primitives.AccountId) (VCRecord, bool) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	vc, ok := s.vc[id]
	return vc, ok
}

func (s *store) PendingUnbondsMaturingAt(epoch types.EpochNumber) []PendingUnbond {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	var out []PendingUnbond
	ids := maps.Keys(s.accounts)
	sort.Slice(ids, func(i, j int) bool { return ids[i].Compare(ids[j]) < 0 })
	for _, id := range ids {
		acc := s.accounts[id]
		for _, u := range acc.Unbonding {
			if u.MatureEpoch == epoch {
				out = append(out, PendingUnbond{Account: id, Amount: u.Amount})
			}
		}
	}
	return out
}

// Txn is the mutation handle passed to closures under Mutate. All
// writes go through it so store.Mutate can discard the whole batch on
// error (all-or-nothing block application).
type Txn struct {
	s       *store
	scratch map[primitives.AccountId]types.Account
	vcDirty map[primitives.AccountId]VCRecord
}

func newTxn(s *store) *Txn {
	return &Txn{
		s:       s,
		scratch: make(map[primitives.AccountId]types.Account),
		vcDirty: make(map[primitives.AccountId]VCRecord),
	}
}

// GetAccount reads through scratch first, falling back to the
// committed map — Mutate's closure runs against a private copy-on-
// write overlay so a mid-block error never leaves partial writes
// visible.
func (t *Txn) GetAccount(id primitives.AccountId) types.Account {
	if acc, ok := t.scratch[id]; ok {
		return acc
	}
	if acc, ok := t.s.accounts[id]; ok {
		return acc
	}
	return types.NewAccount()
}

func (t *Txn) SetAccount(id primitives.AccountId, acc types.Account) {
	t.scratch[id] = acc
}

func (t *Txn) GetVC(id primitives.AccountId) VCRecord {
	if vc, ok := t.vcDirty[id]; ok {
		return vc
	}
	if vc, ok := t.s.vc[id]; ok {
		return vc
	}
	return VCRecord{}
}

func (t *Txn) SetVC(id primitives.AccountId, vc VCRecord) {
	t.vcDirty[id] = vc
}

// Snapshot deep-copies the committed account and VC maps under the
// read lock.
func (s *store) Snapshot() Snapshot {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	snap := Snapshot{
		accounts: make(map[primitives.AccountId]types.Account, len(s.accounts)),
		vc:       make(map[primitives.AccountId]VCRecord, len(s.vc)),
	}
	for id, acc := range s.accounts {
		snap.accounts[id] = acc
	}
	for id, vc := range s.vc {
		snap.vc[id] = vc
	}
	return snap
}

// Restore replaces the committed maps wholesale with a prior snapshot,
// discarding any writes made since it was taken.
func (s *store) Restore(snap Snapshot) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.accounts = snap.accounts
	s.vc = snap.vc
}

func (s *store) InitializeBootstrapVC(tx *Txn, id primitives.AccountId) {
	vc := tx.GetVC(id)
	vc.Uptime = 100
	tx.SetVC(id, vc)
}

// Mutate acquires the exclusive writer lock, runs f against a fresh
// Txn, and commits the overlay only if f returns nil. Writes never
// fail silently: any error propagates to the caller and no scratch
// data is merged into the committed maps.
func (s *store) Mutate(f func(tx *Txn) error) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	tx := newTxn(s)
	if err := f(tx); err != nil {
		return chainerrors.Wrap(err, "state: mutation aborted")
	}

	for id, acc := range tx.scratch {
		if acc.IsEmpty() {
			delete(s.accounts, id)
			continue
		}
		s.accounts[id] = acc
	}
	for id, vc := range tx.vcDirty {
		s.vc[id] = vc
	}
	return nil
}

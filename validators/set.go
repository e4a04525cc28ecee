// Package validators implements ValidatorSet: the active validator
// roster, the unified role registry, the bootstrap early-validator
// candidate pool, VRF-weighted slot-leader selection, Validator
// Credits accumulation, and bootstrap voting. ValidatorSet is the
// exclusive owner of validator records; StateStore (package state)
// exclusively owns account and VC records.
package validators

import (
	"sort"
	"sync"

	"kratos/primitives"
	"kratos/types"

	"golang.org/x/exp/maps"
)

// PendingCandidate is a bootstrap early-validator proposal awaiting
// votes.
type PendingCandidate struct {
	Candidate primitives.AccountId
	Proposer  primitives.AccountId
	Voters    map[primitives.AccountId]struct{}
	CreatedAt types.BlockNumber
}

// VotersDistinctCount reports how many distinct voters have backed the
// candidate so far.
func (p PendingCandidate) VotersDistinctCount() int { return len(p.Voters) }

// requiredVotersToApprove is the fixed threshold for bootstrap
// early-validator admission.
const requiredVotersToApprove = 3

// Set is the validator roster plus the role registry and bootstrap
// candidate pool. Not goroutine-safe by itself; callers serialize
// writes through the chain engine's exclusive-writer discipline.
// The internal mutex exists only to make read-only RPC access safe
// concurrently with the single writer, matching the reader/writer
// split the concurrency model requires.
type Set struct {
	mtx sync.RWMutex

	validators map[primitives.AccountId]types.Validator
	roles      map[primitives.AccountId]types.Role

	pending map[primitives.AccountId]*PendingCandidate

	totalStake types.Balance
}

// NewSet returns an empty validator set.
func NewSet() *Set {
	return &Set{
		validators: make(map[primitives.AccountId]types.Validator),
		roles:      make(map[primitives.AccountId]types.Role),
		pending:    make(map[primitives.AccountId]*PendingCandidate),
		totalStake: types.ZeroBalance,
	}
}

// Get returns a copy of the validator record, if present.
func (s *Set) Get(id primitives.AccountId) (types.Validator, bool) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	v, ok := s.validators[id]
	return v, ok
}

// Add inserts a new validator and gives it the Validator role.
// Invariant maintained: every validators entry has a role entry.
func (s *Set) Add(v types.Validator) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.validators[v.Id] = v
	s.roles[v.Id] = types.RoleValidator
	s.totalStake = s.totalStake.MustAdd(v.Stake)
}

// Update replaces a validator record in place, adjusting total stake
// by the delta between the old and new stake.
func (s *Set) Update(v types.Validator) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	old, existed := s.validators[v.Id]
	s.validators[v.Id] = v
	if existed {
		if diff, err := v.Stake.Sub(old.Stake); err == nil {
			s.totalStake = s.totalStake.MustAdd(diff)
		} else if diff, err := old.Stake.Sub(v.Stake); err == nil {
			s.totalStake, _ = s.totalStake.Sub(diff)
		}
	} else {
		s.totalStake = s.totalStake.MustAdd(v.Stake)
		s.roles[v.Id] = types.RoleValidator
	}
}

// SetCredits mirrors a VC record StateStore just wrote into the
// matching validator entry's Validator.VC, the copy VRF weight math
// (package validators' own Weight) reads. A no-op if id is not a
// known validator.
func (s *Set) SetCredits(id primitives.AccountId, vc types.ValidatorCredits) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if v, ok := s.validators[id]; ok {
		v.VC = vc
		s.validators[id] = v
	}
}

// Jail marks a validator Jailed in place, leaving stake/VC/reputation
// untouched (callers that also adjust those fields do so separately,
// e.g. via slashing before calling Jail).
func (s *Set) Jail(id primitives.AccountId) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if v, ok := s.validators[id]; ok {
		v.Status = types.StatusJailed
		s.validators[id] = v
	}
}

// Remove deletes a validator (post-unbond-maturity removal) and its
// role entry.
func (s *Set) Remove(id primitives.AccountId) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if v, ok := s.validators[id]; ok {
		s.totalStake, _ = s.totalStake.Sub(v.Stake)
		delete(s.validators, id)
		delete(s.roles, id)
	}
}

// TotalStake returns the sum of every validator's stake.
func (s *Set) TotalStake() types.Balance {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return s.totalStake
}

// Active returns every Active validator, in canonical (ascending id)
// order so callers get deterministic iteration for hashing/selection.
func (s *Set) Active() []types.Validator {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	ids := maps.Keys(s.validators)
	sort.Slice(ids, func(i, j int) bool { return ids[i].Compare(ids[j]) < 0 })

	out := make([]types.Validator, 0, len(ids))
	for _, id := range ids {
		v := s.validators[id]
		if v.Status == types.StatusActive {
			out = append(out, v)
		}
	}
	return out
}

// All returns every validator regardless of status, canonically ordered.
func (s *Set) All() []types.Validator {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	ids := maps.Keys(s.validators)
	sort.Slice(ids, func(i, j int) bool { return ids[i].Compare(ids[j]) < 0 })

	out := make([]types.Validator, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.validators[id])
	}
	return out
}

// ActiveCount is the |active_validators| the security-state machine
// and finality gadget both key off.
func (s *Set) ActiveCount() int {
	return len(s.Active())
}

// RoleOf reports the role registered for id, if any.
func (s *Set) RoleOf(id primitives.AccountId) (types.Role, bool) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	r, ok := s.roles[id]
	return r, ok
}

// SetRole registers a non-validator role (juror, contributor) for an
// account that is not itself a validator.
func (s *Set) SetRole(id primitives.AccountId, role types.Role) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.roles[id] = role
}

// Snapshot is an opaque, independent copy of a Set's validator roster,
// role registry and bootstrap candidate pool at the moment it was
// taken, letting the block importer discard a tentatively-applied
// remote block's validator-set effects if its state_root check fails.
type Snapshot struct {
	validators map[primitives.AccountId]types.Validator
	roles      map[primitives.AccountId]types.Role
	pending    map[primitives.AccountId]*PendingCandidate
	totalStake types.Balance
}

// Snapshot deep-copies the set's state.
func (s *Set) Snapshot() Snapshot {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	snap := Snapshot{
		validators: make(map[primitives.AccountId]types.Validator, len(s.validators)),
		roles:      make(map[primitives.AccountId]types.Role, len(s.roles)),
		pending:    make(map[primitives.AccountId]*PendingCandidate, len(s.pending)),
		totalStake: s.totalStake,
	}
	for id, v := range s.validators {
		snap.validators[id] = v
	}
	for id, r := range s.roles {
		snap.roles[id] = r
	}
	for id, p := range s.pending {
		voters := make(map[primitives.AccountId]struct{}, len(p.Voters))
		for v := range p.Voters {
			voters[v] = struct{}{}
		}
		cp := *p
		cp.Voters = voters
		snap.pending[id] = &cp
	}
	return snap
}

// Restore replaces the set's state wholesale with a prior snapshot.
func (s *Set) Restore(snap Snapshot) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.validators = snap.validators
	s.roles = snap.roles
	s.pending = snap.pending
	s.totalStake = snap.totalStake
}

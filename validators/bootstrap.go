package validators

import (
	"kratos/primitives"
	"kratos/types"
)

// ProposeEarlyValidator creates a pending candidate with proposer as its
// first voter. Returns false if proposer is not an Active
// validator, or a candidate proposal already exists.
func (s *Set) ProposeEarlyValidator(proposer, candidate primitives.AccountId, at types.BlockNumber) bool {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if v, ok := s.validators[proposer]; !ok || v.Status != types.StatusActive {
		return false
	}
	if _, exists := s.pending[candidate]; exists {
		return false
	}
	s.pending[candidate] = &PendingCandidate{
		Candidate: candidate,
		Proposer:  proposer,
		Voters:    map[primitives.AccountId]struct{}{proposer: {}},
		CreatedAt: at,
	}
	return true
}

// VoteEarlyValidator appends a distinct voter to a pending candidate's
// vote set. Returns (admitted, ok): ok is false on an unknown candidate,
// a non-Active or duplicate voter; admitted is true the moment the
// third distinct voter arrives, signalling the caller to admit the
// candidate as an Active, zero-stake validator and call
// InitializeBootstrapVC in the same write scope.
func (s *Set) VoteEarlyValidator(voter, candidate primitives.AccountId) (admitted bool, ok bool) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if v, exists := s.validators[voter]; !exists || v.Status != types.StatusActive {
		return false, false
	}
	pc, exists := s.pending[candidate]
	if !exists {
		return false, false
	}
	if _, already := pc.Voters[voter]; already {
		return false, false
	}
	pc.Voters[voter] = struct{}{}
	if pc.VotersDistinctCount() >= requiredVotersToApprove {
		delete(s.pending, candidate)
		return true, true
	}
	return false, true
}

// AdmitEarlyValidator inserts the newly-approved candidate as an Active
// validator with zero stake, joined at joinedEpoch. Callers must also
// call state.Store.InitializeBootstrapVC(tx, candidate) in the same
// write scope so the validator's VRF weight is non-zero.
func (s *Set) AdmitEarlyValidator(candidate primitives.AccountId, joinedEpoch types.EpochNumber) {
	v := types.NewValidator(candidate, types.ZeroBalance, joinedEpoch, true)
	s.Add(v)
}

// DiscardPendingCandidates drops every still-pending early-validator
// proposal, called once when bootstrap ends.
func (s *Set) DiscardPendingCandidates() {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.pending = make(map[primitives.AccountId]*PendingCandidate)
}

// PendingCandidates returns a snapshot of every candidate still awaiting
// votes, for RPC introspection.
func (s *Set) PendingCandidates() []PendingCandidate {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	out := make([]PendingCandidate, 0, len(s.pending))
	for _, pc := range s.pending {
		voters := make(map[primitives.AccountId]struct{}, len(pc.Voters))
		for v := range pc.Voters {
			voters[v] = struct{}{}
		}
		out = append(out, PendingCandidate{
			Candidate: pc.Candidate,
			Proposer:  pc.Proposer,
			Voters:    voters,
			CreatedAt: pc.CreatedAt,
		})
	}
	return out
}

// CandidateVotes reports the current voter set for a pending candidate.
func (s *Set) CandidateVotes(candidate primitives.AccountId) ([]primitives.AccountId, bool) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	pc, ok := s.pending[candidate]
	if !ok {
		return nil, false
	}
	voters := make([]primitives.AccountId, 0, len(pc.Voters))
	for v := range pc.Voters {
		voters = append(voters, v)
	}
	return voters, true
}

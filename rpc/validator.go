package rpc

import (
	"encoding/json"

	"kratos/types"

	rpctypes "github.com/tendermint/tendermint/rpc/jsonrpc/types"
)

// ValidatorGetEarlyVotingStatus implements
// validator_getEarlyVotingStatus (bootstrap early-validator admission
// by 3-vote approval).
func ValidatorGetEarlyVotingStatus(ctx *rpctypes.Context) (*ResultEarlyVotingStatus, error) {
	tip := env.Engine.TipHeight()
	epoch := types.EpochOfSlot(types.SlotNumber(tip))
	if b, ok := env.Engine.BlockByNumber(tip); ok {
		epoch = b.Header.Epoch
	}
	return &ResultEarlyVotingStatus{
		BootstrapActive:   types.IsBootstrapEpoch(epoch),
		PendingCandidates: len(env.Engine.Vals.PendingCandidates()),
	}, nil
}

// ValidatorGetPendingCandidates implements validator_getPendingCandidates.
func ValidatorGetPendingCandidates(ctx *rpctypes.Context) ([]ResultPendingCandidate, error) {
	pending := env.Engine.Vals.PendingCandidates()
	out := make([]ResultPendingCandidate, len(pending))
	for i, pc := range pending {
		voters := make([]string, 0, len(pc.Voters))
		for v := range pc.Voters {
			voters = append(voters, idHex(v))
		}
		out[i] = ResultPendingCandidate{
			Candidate: idHex(pc.Candidate),
			Proposer:  idHex(pc.Proposer),
			Voters:    voters,
			CreatedAt: uint64(pc.CreatedAt),
		}
	}
	return out, nil
}

// ValidatorGetCandidateVotes implements validator_getCandidateVotes(A).
func ValidatorGetCandidateVotes(ctx *rpctypes.Context, account json.RawMessage) (*ResultCandidateVotes, error) {
	id, err := DecodeAccountId(account)
	if err != nil {
		return nil, err
	}
	voters, ok := env.Engine.Vals.CandidateVotes(id)
	out := make([]string, len(voters))
	for i, v := range voters {
		out[i] = idHex(v)
	}
	return &ResultCandidateVotes{Candidate: idHex(id), Voters: out, Found: ok}, nil
}

// ValidatorCanVote implements validator_canVote(A): an account can cast
// an early-validator vote exactly when it is an Active validator.
func ValidatorCanVote(ctx *rpctypes.Context, account json.RawMessage) (*ResultCanVote, error) {
	id, err := DecodeAccountId(account)
	if err != nil {
		return nil, err
	}
	v, ok := env.Engine.Vals.Get(id)
	return &ResultCanVote{CanVote: ok && v.Status == types.StatusActive}, nil
}

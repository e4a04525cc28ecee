package consensus

import (
	"errors"

	"kratos/primitives"
	"kratos/types"
)

var errInvalidVoteSignature = errors.New("consensus: invalid vote signature")

// voteKey indexes a vote by the identity/round/kind triple used for
// equivocation detection: the collector indexes votes by
// (voter, round, kind).
type voteKey struct {
	Voter primitives.AccountId
	Round uint32
	Kind  types.VoteKind
}

// targetKey indexes votes by the (round, kind, number, hash) tuple used
// to count support toward the 2/3 threshold.
type targetKey struct {
	Round  uint32
	Kind   types.VoteKind
	Number types.BlockNumber
	Hash   primitives.Hash
}

// VoteCollector aggregates finality votes across rounds and detects
// equivocation: a second vote from the same voter in the same
// (round, kind) for a different target.
type VoteCollector struct {
	firstVote map[voteKey]types.FinalityVote
	byTarget  map[targetKey][]types.FinalityVote
}

// NewVoteCollector returns an empty collector.
func NewVoteCollector() *VoteCollector {
	return &VoteCollector{
		firstVote: make(map[voteKey]types.FinalityVote),
		byTarget:  make(map[targetKey][]types.FinalityVote),
	}
}

// Add records vote, returning an EquivocationProof if it conflicts with
// an earlier vote from the same voter in the same (round, kind).
// A repeat of the identical vote is idempotent, not an equivocation.
func (c *VoteCollector) Add(vote types.FinalityVote) (*types.EquivocationProof, error) {
	key := voteKey{Voter: vote.Voter, Round: vote.Round, Kind: vote.Kind}
	if prior, exists := c.firstVote[key]; exists {
		if prior.TargetNumber == vote.TargetNumber && prior.TargetHash == vote.TargetHash {
			return nil, nil
		}
		return &types.EquivocationProof{
			Voter: vote.Voter,
			Round: vote.Round,
			Kind:  vote.Kind,
			VoteA: prior,
			VoteB: vote,
		}, nil
	}
	c.firstVote[key] = vote

	tk := targetKey{Round: vote.Round, Kind: vote.Kind, Number: vote.TargetNumber, Hash: vote.TargetHash}
	c.byTarget[tk] = append(c.byTarget[tk], vote)
	return nil, nil
}

// CountFor returns the number of distinct voters recorded for a given
// (kind, round, target).
func (c *VoteCollector) CountFor(kind types.VoteKind, round uint32, number types.BlockNumber, hash primitives.Hash) int {
	tk := targetKey{Round: round, Kind: kind, Number: number, Hash: hash}
	return len(c.byTarget[tk])
}

// SignaturesFor collects every voter/signature pair recorded for a
// given (kind, round, target), used to assemble a FinalityJustification.
func (c *VoteCollector) SignaturesFor(kind types.VoteKind, round uint32, number types.BlockNumber, hash primitives.Hash) []types.VoterSignature {
	tk := targetKey{Round: round, Kind: kind, Number: number, Hash: hash}
	votes := c.byTarget[tk]
	out := make([]types.VoterSignature, len(votes))
	for i, v := range votes {
		out[i] = types.VoterSignature{Voter: v.Voter, Signature: v.Signature}
	}
	return out
}

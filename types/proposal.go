package types

import "kratos/primitives"

// ProposalStatus is the governance lifecycle state.
type ProposalStatus uint8

const (
	ProposalActive ProposalStatus = iota
	ProposalPassed
	ProposalRejected
	ProposalReadyToExecute
	ProposalExecuted
	ProposalCancelled
	ProposalExpired
)

func (s ProposalStatus) String() string {
	switch s {
	case ProposalActive:
		return "Active"
	case ProposalPassed:
		return "Passed"
	case ProposalRejected:
		return "Rejected"
	case ProposalReadyToExecute:
		return "ReadyToExecute"
	case ProposalExecuted:
		return "Executed"
	case ProposalCancelled:
		return "Cancelled"
	case ProposalExpired:
		return "Expired"
	default:
		return "Unknown"
	}
}

// ProposalType distinguishes standard proposals from exit proposals,
// which use the supermajority threshold and a longer timelock.
type ProposalType uint8

const (
	ProposalStandard ProposalType = iota
	ProposalExit
)

// VoteChoice is a validator's stance on a proposal.
type VoteChoice uint8

const (
	VoteYes VoteChoice = iota
	VoteNo
	VoteAbstain
)

// VoteRecord is one validator's cast vote, weighted at cast time by
// the proposal's stake snapshot.
type VoteRecord struct {
	Voter  primitives.AccountId
	Choice VoteChoice
	Weight Balance
}

// StakeSnapshot freezes each validator's stake (and the total) at
// proposal creation time so later stake changes cannot affect the
// outcome.
type StakeSnapshot struct {
	PerValidator map[primitives.AccountId]Balance
	Total        Balance
}

// Proposal is a governance proposal.
type Proposal struct {
	Id            uint64
	ChainId       string
	Proposer      primitives.AccountId
	Type          ProposalType
	Status        ProposalStatus
	CreatedAt     int64 // unix seconds
	VotingEndsAt  int64
	TimelockEndsAt int64

	Yes     Balance
	No      Balance
	Abstain Balance
	Deposit Balance

	Snapshot StakeSnapshot
	Votes    []VoteRecord

	// Payload is opaque to the core: the concrete action a passed
	// proposal executes is outside the consensus core's scope.
	Payload []byte
}

// HasVoted reports whether voter already cast a vote on this proposal.
func (p Proposal) HasVoted(voter primitives.AccountId) bool {
	for _, v := range p.Votes {
		if v.Voter == voter {
			return true
		}
	}
	return false
}

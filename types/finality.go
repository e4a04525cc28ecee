package types

import "kratos/primitives"

// VoteKind distinguishes the two phases of the finality gadget.
type VoteKind uint8

const (
	VotePrevote VoteKind = iota
	VotePrecommit
)

func (k VoteKind) String() string {
	if k == VotePrevote {
		return "Prevote"
	}
	return "Precommit"
}

// FinalityVote is signed under DomainFinality.
type FinalityVote struct {
	Kind         VoteKind
	TargetNumber BlockNumber
	TargetHash   primitives.Hash
	Round        uint32
	Epoch        EpochNumber
	Voter        primitives.AccountId
	Signature    primitives.Signature
}

func (v FinalityVote) signBytes() []byte {
	enc := primitives.NewEncoder()
	enc.WriteU8(uint8(v.Kind))
	enc.WriteU64(uint64(v.TargetNumber))
	enc.WriteFixed(v.TargetHash.Bytes())
	enc.WriteU64(uint64(v.Round))
	enc.WriteU64(uint64(v.Epoch))
	enc.WriteFixed(v.Voter.Bytes())
	return enc.Bytes()
}

// VerifySignature checks the vote's signature under DomainFinality.
func (v FinalityVote) VerifySignature() bool {
	return primitives.Verify(v.Voter, primitives.DomainFinality, v.signBytes(), v.Signature)
}

// SignBytes exposes the message a privval signs, for callers holding a
// raw ed25519 key rather than a Signer interface.
func (v FinalityVote) SignBytes() []byte { return v.signBytes() }

// VoterSignature pairs a voter with the signature it contributed to a
// justification.
type VoterSignature struct {
	Voter     primitives.AccountId
	Signature primitives.Signature
}

// FinalityJustification bundles >= 2/3 precommits for one (number, hash).
type FinalityJustification struct {
	BlockNumber BlockNumber
	BlockHash   primitives.Hash
	Epoch       EpochNumber
	Signatures  []VoterSignature
}

// Voters returns the identities that contributed to the justification,
// used to divide the finality-voter fee share.
func (j FinalityJustification) Voters() []primitives.AccountId {
	voters := make([]primitives.AccountId, len(j.Signatures))
	for i, s := range j.Signatures {
		voters[i] = s.Voter
	}
	return voters
}

// EquivocationProof is the persisted proof of a double vote: two
// distinct votes from the same voter in the same (round, kind) for
// different targets.
type EquivocationProof struct {
	Voter primitives.AccountId
	Round uint32
	Kind  VoteKind
	VoteA FinalityVote
	VoteB FinalityVote
}

package types

import "kratos/primitives"

// CallKind tags the variant carried by a Call.
type CallKind uint8

const (
	CallTransfer CallKind = iota
	CallStake
	CallUnstake
	CallWithdrawUnbonded
	CallRegisterValidator
	CallUnregisterValidator
	CallProposeEarlyValidator
	CallVoteEarlyValidator
	// CallGovernance and CallSidechain carry an opaque payload: the
	// core validates only that the sender can afford the fee and
	// leaves interpretation to the governance/sidechain modules.
	CallGovernance
	CallSidechain
)

func (k CallKind) String() string {
	switch k {
	case CallTransfer:
		return "Transfer"
	case CallStake:
		return "Stake"
	case CallUnstake:
		return "Unstake"
	case CallWithdrawUnbonded:
		return "WithdrawUnbonded"
	case CallRegisterValidator:
		return "RegisterValidator"
	case CallUnregisterValidator:
		return "UnregisterValidator"
	case CallProposeEarlyValidator:
		return "ProposeEarlyValidator"
	case CallVoteEarlyValidator:
		return "VoteEarlyValidator"
	case CallGovernance:
		return "Governance"
	case CallSidechain:
		return "Sidechain"
	default:
		return "Unknown"
	}
}

// Call is a tagged union of every transaction effect the core knows
// about. Only the fields relevant to Kind are populated; the rest are
// zero. OpaquePayload carries opaque bytes for the two variant
// families the core treats as pass-through.
type Call struct {
	Kind CallKind

	To     primitives.AccountId // Transfer
	Amount Balance               // Transfer, Stake, Unstake, RegisterValidator

	Candidate primitives.AccountId // ProposeEarlyValidator, VoteEarlyValidator

	OpaquePayload []byte // Governance, Sidechain
}

// Encode writes the canonical encoding of a call.
func (c Call) Encode() []byte {
	enc := primitives.NewEncoder()
	enc.WriteU8(uint8(c.Kind))
	switch c.Kind {
	case CallTransfer:
		enc.WriteFixed(c.To.Bytes())
		enc.WriteFixed(c.Amount.Bytes())
	case CallStake, CallUnstake, CallRegisterValidator:
		enc.WriteFixed(c.Amount.Bytes())
	case CallWithdrawUnbonded, CallUnregisterValidator:
		// no payload
	case CallProposeEarlyValidator, CallVoteEarlyValidator:
		enc.WriteFixed(c.Candidate.Bytes())
	case CallGovernance, CallSidechain:
		enc.WriteBytes(c.OpaquePayload)
	}
	return enc.Bytes()
}

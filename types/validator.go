package types

import "kratos/primitives"

// ValidatorStatus is the lifecycle state of a validator record.
type ValidatorStatus uint8

const (
	StatusActive ValidatorStatus = iota
	StatusJailed
	StatusUnbonding
	StatusRetired
)

func (s ValidatorStatus) String() string {
	switch s {
	case StatusActive:
		return "Active"
	case StatusJailed:
		return "Jailed"
	case StatusUnbonding:
		return "Unbonding"
	case StatusRetired:
		return "Retired"
	default:
		return "Unknown"
	}
}

// VCWindow tracks the per-kind reset marker (the epoch a rolling
// window last reset at) alongside the count accumulated since.
type VCWindow struct {
	Count      uint32
	WindowFrom EpochNumber
}

// ValidatorCredits is the merit score: four independently windowed
// sub-counters plus the running lifetime totals used for VRF weight
// and stake-reduction computations.
type ValidatorCredits struct {
	Vote        uint64
	Uptime      uint64
	Arbitration uint64
	Seniority   uint64

	// Rolling anti-spam windows, keyed by kind.
	VoteEpochWindow  VCWindow // 3 per epoch
	Vote4EpochWindow VCWindow // 50 per 4 epochs
	UptimeWindow     VCWindow // 1 per epoch
	ArbitrationWindow VCWindow // 5 per 52 epochs
	SeniorityWindow   VCWindow // 1 per 4 epochs

	CriticalSlashCount   uint32
	LastCriticalAtEpoch  EpochNumber
	HasCriticalHistory   bool
}

// Total returns the lifetime VC sum used by VRF weight and the
// stake-reduction formula.
func (vc ValidatorCredits) Total() uint64 {
	return vc.Vote + vc.Uptime + vc.Arbitration + vc.Seniority
}

// Validator is ValidatorSet's owned record for one identity.
type Validator struct {
	Id          primitives.AccountId
	Stake       Balance
	VC          ValidatorCredits
	Reputation  uint8 // 0..100
	Status      ValidatorStatus
	JoinedEpoch EpochNumber
	IsBootstrap bool

	// PriorityModifier is the clock-health VRF-weight multiplier
	// (1.0 Healthy, 0.5 Degraded, 0.0 Excluded/Recovering), stored as
	// basis points of 1.0 (10000 == 1.0) to keep everything integer.
	PriorityModifierBps uint32

	ClockHealth ClockHealthState

	// CooldownUntilEpoch is set by a slashing event with a non-zero
	// cooldown; while set the validator cannot be selected as leader.
	CooldownUntilEpoch EpochNumber
}

// NewValidator returns a fresh validator with default health state.
func NewValidator(id primitives.AccountId, stake Balance, joinedEpoch EpochNumber, bootstrap bool) Validator {
	return Validator{
		Id:                   id,
		Stake:                stake,
		Reputation:           100,
		Status:               StatusActive,
		JoinedEpoch:          joinedEpoch,
		IsBootstrap:          bootstrap,
		PriorityModifierBps:  10000,
		ClockHealth:          ClockHealthy,
	}
}

// Encode writes the canonical encoding of a validator record.
func (v Validator) Encode() []byte {
	enc := primitives.NewEncoder()
	enc.WriteFixed(v.Id.Bytes())
	enc.WriteFixed(v.Stake.Bytes())
	enc.WriteU64(v.VC.Vote)
	enc.WriteU64(v.VC.Uptime)
	enc.WriteU64(v.VC.Arbitration)
	enc.WriteU64(v.VC.Seniority)
	enc.WriteU8(v.Reputation)
	enc.WriteU8(uint8(v.Status))
	enc.WriteU64(uint64(v.JoinedEpoch))
	enc.WriteBool(v.IsBootstrap)
	return enc.Bytes()
}

// Package slashing implements the four-severity penalty schedule:
// proportional stake/unbonding debits computed with integer
// basis-point math, cooldowns, and the critical-event counter's decay.
package slashing

import (
	"kratos/types"
)

// Severity is one of the four graded slashing tiers.
type Severity uint8

const (
	SeverityCritical Severity = iota
	SeverityHigh
	SeverityMedium
	SeverityLow
)

func (s Severity) String() string {
	switch s {
	case SeverityCritical:
		return "Critical"
	case SeverityHigh:
		return "High"
	case SeverityMedium:
		return "Medium"
	case SeverityLow:
		return "Low"
	default:
		return "Unknown"
	}
}

// Event names the misbehavior category that maps to a severity.
type Event uint8

const (
	EventDoubleSign Event = iota
	EventFinalityEquivocation
	EventInvalidGovernanceExecution
	EventArbitrationMisconduct
	EventExtendedDowntime
	EventLowParticipation
	EventShortDowntime
)

// SeverityOf maps a misbehavior event to its fixed severity tier.
func SeverityOf(e Event) Severity {
	switch e {
	case EventDoubleSign, EventFinalityEquivocation:
		return SeverityCritical
	case EventInvalidGovernanceExecution, EventArbitrationMisconduct:
		return SeverityHigh
	case EventExtendedDowntime, EventLowParticipation:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// vcSlashBps and cooldownEpoch are indexed by Severity.
var (
	vcSlashBps    = map[Severity]uint64{SeverityCritical: 5000, SeverityHigh: 2500, SeverityMedium: 1000, SeverityLow: 500}
	cooldownEpoch = map[Severity]types.EpochNumber{SeverityCritical: 52, SeverityHigh: 12, SeverityMedium: 0, SeverityLow: 0}
)

// stakeSlashBps returns the stake-slash basis points for a severity.
// Critical and High have ranges (5-20%, 1-5%); this implementation
// picks the range's midpoint deterministically, since there is no
// selection rule between the bounds. Medium and Low are point values
// (≤1%, 0%).
func stakeSlashBps(s Severity) uint64 {
	switch s {
	case SeverityCritical:
		return 1250 // midpoint of 5-20%
	case SeverityHigh:
		return 300 // midpoint of 1-5%
	case SeverityMedium:
		return 50 // midpoint of 0-1%
	default:
		return 0
	}
}

// CriticalCounterDecayEpochs is how often an unblemished validator's
// critical-event counter decrements by one.
const CriticalCounterDecayEpochs = 26

const (
	reputationSlashPenalty  = 20
	reputationBlockReward   = 1
	reputationMissedPenalty = 1
	reputationMax           = 100
	reputationMin           = 0
)

// Outcome is the computed effect of applying a slashing event.
type Outcome struct {
	Severity     Severity
	VC           types.ValidatorCredits
	Stake        types.Balance
	Unbonding    []types.UnbondEntry
	CooldownUntil types.EpochNumber
	Reputation   uint8
}

// Apply computes the post-slash VC, stake, unbonding schedule,
// cooldown deadline, and reputation for one misbehavior event,
// without mutating its inputs. Callers commit the result under the
// combined StateStore/ValidatorSet write scope.
func Apply(event Event, currentEpoch types.EpochNumber, vc types.ValidatorCredits, stake types.Balance, unbonding []types.UnbondEntry, reputation uint8) Outcome {
	sev := SeverityOf(event)

	newVC := vc
	vcCut := newVC.Total() * vcSlashBps[sev] / 10000
	debitLifetimeVC(&newVC, vcCut)

	// Debit stake and every pending unbond entry proportionally, so
	// an in-flight unbond cannot dodge the cut.
	bps := stakeSlashBps(sev)
	newStake := stake.MulBasisPoints(10000 - bps)

	newUnbonding := make([]types.UnbondEntry, len(unbonding))
	for i, u := range unbonding {
		newUnbonding[i] = types.UnbondEntry{
			Amount:      u.Amount.MulBasisPoints(10000 - bps),
			MatureEpoch: u.MatureEpoch,
		}
	}

	newRep := int(reputation) - reputationSlashPenalty
	if newRep < reputationMin {
		newRep = reputationMin
	}

	var cooldownUntil types.EpochNumber
	if c := cooldownEpoch[sev]; c > 0 {
		cooldownUntil = currentEpoch + c
	}

	return Outcome{
		Severity:      sev,
		VC:            newVC,
		Stake:         newStake,
		Unbonding:     newUnbonding,
		CooldownUntil: cooldownUntil,
		Reputation:    uint8(newRep),
	}
}

// debitLifetimeVC removes cut points from the four sub-counters
// proportionally to their current share of the total, so a single
// dominant counter does not absorb the whole cut.
func debitLifetimeVC(vc *types.ValidatorCredits, cut uint64) {
	total := vc.Total()
	if total == 0 || cut == 0 {
		return
	}
	if cut > total {
		cut = total
	}
	vc.Vote -= cut * vc.Vote / total
	vc.Uptime -= cut * vc.Uptime / total
	vc.Arbitration -= cut * vc.Arbitration / total
	vc.Seniority -= cut * vc.Seniority / total
}

// DecayCriticalCounter decrements the counter by one if at least
// CriticalCounterDecayEpochs epochs have elapsed since it last moved,
// per the decay rule.
func DecayCriticalCounter(vc types.ValidatorCredits, currentEpoch types.EpochNumber) types.ValidatorCredits {
	if vc.CriticalSlashCount == 0 {
		return vc
	}
	if currentEpoch >= vc.LastCriticalAtEpoch+CriticalCounterDecayEpochs {
		vc.CriticalSlashCount--
		vc.LastCriticalAtEpoch = currentEpoch
	}
	return vc
}

// RecordCritical bumps the critical-event counter and its decay clock;
// called alongside Apply whenever event's severity is Critical.
func RecordCritical(vc types.ValidatorCredits, currentEpoch types.EpochNumber) types.ValidatorCredits {
	vc.CriticalSlashCount++
	vc.LastCriticalAtEpoch = currentEpoch
	vc.HasCriticalHistory = true
	return vc
}

// ReputationOnBlockProduced applies the +1 (capped at 100) adjustment.
func ReputationOnBlockProduced(rep uint8) uint8 {
	if int(rep)+reputationBlockReward > reputationMax {
		return reputationMax
	}
	return rep + reputationBlockReward
}

// ReputationOnBlockMissed applies the -1 (floored at 0) adjustment.
func ReputationOnBlockMissed(rep uint8) uint8 {
	if int(rep)-reputationMissedPenalty < reputationMin {
		return reputationMin
	}
	return rep - reputationMissedPenalty
}

// Package consensus implements the finality gadget (round state
// machine, vote collection, equivocation detection, justification
// assembly) and the timestamp/clock-health validation.
package consensus

import (
	"time"

	"kratos/primitives"
	"kratos/types"
)

// Step is one of the finality round's four states.
type Step uint8

const (
	StepPrevoting Step = iota
	StepPrecommitting
	StepCompleted
	StepFailed
)

func (s Step) String() string {
	switch s {
	case StepPrevoting:
		return "Prevoting"
	case StepPrecommitting:
		return "Precommitting"
	case StepCompleted:
		return "Completed"
	case StepFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// RoundTimeout is one slot time.
const RoundTimeout = time.Duration(6) * time.Second

// MinValidatorsForFinality is the floor below which the gadget stays
// dormant and the chain relies on longest-valid-chain fork choice.
const MinValidatorsForFinality = 3

// SupermajorityNumerator renders "≥ 2/3" as a floor-based integer
// check: count*100 >= total*66.
const SupermajorityNumerator = 66

// HasSupermajority reports whether count out of total clears the
// floor-based 2/3 threshold used by the finality gadget (distinct from
// governance's strict 51%/67% thresholds).
func HasSupermajority(count, total int) bool {
	if total == 0 {
		return false
	}
	return int64(count)*100 >= int64(total)*SupermajorityNumerator
}

// Round is one finality round's live state for a candidate target.
type Round struct {
	Number       uint32
	TargetNumber types.BlockNumber
	TargetHash   primitives.Hash
	Epoch        types.EpochNumber

	Step      Step
	StartedAt time.Time

	collector *VoteCollector
}

// NewRound opens a fresh Prevoting round for (targetNumber, targetHash).
func NewRound(number uint32, targetNumber types.BlockNumber, targetHash primitives.Hash, epoch types.EpochNumber, startedAt time.Time) *Round {
	return &Round{
		Number:       number,
		TargetNumber: targetNumber,
		TargetHash:   targetHash,
		Epoch:        epoch,
		Step:         StepPrevoting,
		StartedAt:    startedAt,
		collector:    NewVoteCollector(),
	}
}

// AddVote feeds a signed vote into the round's collector, advancing the
// state machine when a threshold is crossed. activeValidatorCount is
// the current |active_validators|, which HasSupermajority's denominator
// uses. Returns the equivocation proof if this vote conflicts with an
// earlier one from the same voter, and the justification once the
// round completes.
func (r *Round) AddVote(vote types.FinalityVote, activeValidatorCount int) (*types.EquivocationProof, *types.FinalityJustification, error) {
	if !vote.VerifySignature() {
		return nil, nil, errInvalidVoteSignature
	}

	equiv, err := r.collector.Add(vote)
	if err != nil {
		return nil, nil, err
	}
	if equiv != nil {
		return equiv, nil, nil
	}

	switch r.Step {
	case StepPrevoting:
		if vote.Kind != types.VotePrevote {
			return nil, nil, nil
		}
		count := r.collector.CountFor(types.VotePrevote, r.Number, vote.TargetNumber, vote.TargetHash)
		if HasSupermajority(count, activeValidatorCount) {
			r.Step = StepPrecommitting
		}
	case StepPrecommitting:
		if vote.Kind != types.VotePrecommit {
			return nil, nil, nil
		}
		count := r.collector.CountFor(types.VotePrecommit, r.Number, vote.TargetNumber, vote.TargetHash)
		if HasSupermajority(count, activeValidatorCount) {
			r.Step = StepCompleted
			justification := &types.FinalityJustification{
				BlockNumber: vote.TargetNumber,
				BlockHash:   vote.TargetHash,
				Epoch:       r.Epoch,
				Signatures:  r.collector.SignaturesFor(types.VotePrecommit, r.Number, vote.TargetNumber, vote.TargetHash),
			}
			observeRoundEnd(r.StartedAt, time.Now(), true)
			return nil, justification, nil
		}
	}
	return nil, nil, nil
}

// CheckTimeout marks the round Failed if RoundTimeout has elapsed since
// it started without reaching Completed.
func (r *Round) CheckTimeout(now time.Time) bool {
	if r.Step == StepCompleted || r.Step == StepFailed {
		return false
	}
	if now.Sub(r.StartedAt) >= RoundTimeout {
		r.Step = StepFailed
		observeRoundEnd(r.StartedAt, now, false)
		return true
	}
	return false
}

// Package security implements the security-state machine, keyed off
// the active validator count and the bootstrap/epoch clock.
package security

import "kratos/types"

// State is one of the six security postures the chain can be in.
type State uint8

const (
	StateBootstrap State = iota
	StateNormal
	StateDegraded
	StateRestricted
	StateEmergency
	StateBootstrapRecovery
)

func (s State) String() string {
	switch s {
	case StateBootstrap:
		return "Bootstrap"
	case StateNormal:
		return "Normal"
	case StateDegraded:
		return "Degraded"
	case StateRestricted:
		return "Restricted"
	case StateEmergency:
		return "Emergency"
	case StateBootstrapRecovery:
		return "BootstrapRecovery"
	default:
		return "Unknown"
	}
}

const (
	normalThreshold     = 75
	degradedLowerBound  = 50
	restrictedLowerBound = 25
	recoveryConsecutiveEpochs = 10
	upwardStabilityEpochs     = 100
)

// Tracker holds the rolling counters the state machine needs beyond
// the instantaneous validator count: how long V has sustained ≥75 (for
// the Degraded→Normal stability rule) and how long V has stayed below
// 50 (for the BootstrapRecovery trigger).
type Tracker struct {
	Current State

	ConsecutiveEpochsAtOrAboveNormal types.EpochNumber
	ConsecutiveEpochsBelowDegraded   types.EpochNumber
}

// NewTracker starts in Bootstrap, the state every chain begins life in.
func NewTracker() *Tracker {
	return &Tracker{Current: StateBootstrap}
}

// Advance recomputes the security state for one epoch boundary, given
// the active validator count and whether the chain is still within its
// bootstrap window (epoch < BootstrapEpochs).
//
// Downward transitions (dropping below a threshold) are immediate.
// Upward transitions require sustained stability: Degraded→Normal needs
// V ≥ 75 for 100 consecutive epochs. BootstrapRecovery triggers after
// V stays below 50 for 10 consecutive epochs, and is exited the same
// way any other state reaches Normal/Degraded from V's instantaneous
// value once recovery conditions lift.
func (t *Tracker) Advance(activeCount int, bootstrap bool) State {
	if activeCount >= normalThreshold {
		t.ConsecutiveEpochsAtOrAboveNormal++
	} else {
		t.ConsecutiveEpochsAtOrAboveNormal = 0
	}
	if activeCount < degradedLowerBound {
		t.ConsecutiveEpochsBelowDegraded++
	} else {
		t.ConsecutiveEpochsBelowDegraded = 0
	}

	if bootstrap {
		t.Current = StateBootstrap
		return t.Current
	}

	if t.ConsecutiveEpochsBelowDegraded >= recoveryConsecutiveEpochs {
		t.Current = StateBootstrapRecovery
		return t.Current
	}

	switch {
	case activeCount < restrictedLowerBound:
		t.Current = StateEmergency
	case activeCount < degradedLowerBound:
		t.Current = StateRestricted
	case activeCount < normalThreshold:
		t.Current = StateDegraded
	default:
		// activeCount >= normalThreshold: only promote out of Degraded
		// once the stability window is satisfied; otherwise hold.
		if t.Current == StateDegraded {
			if t.ConsecutiveEpochsAtOrAboveNormal >= upwardStabilityEpochs {
				t.Current = StateNormal
			}
		} else {
			t.Current = StateNormal
		}
	}
	return t.Current
}

// BootstrapExitReady reports whether all of the exit conditions
// hold: epoch ≥ BootstrapEpochs, V ≥ 50, and average participation over
// the last 100 epochs ≥ 90%.
func BootstrapExitReady(epoch types.EpochNumber, activeCount int, avgParticipationBps uint32) bool {
	return epoch >= types.BootstrapEpochs &&
		activeCount >= degradedLowerBound &&
		avgParticipationBps >= 9000
}

// GovernanceTimelockMultiplier is 2 in Degraded, 1 otherwise.
func GovernanceTimelockMultiplier(s State) int64 {
	if s == StateDegraded {
		return 2
	}
	return 1
}

// NewProposalsBlocked reports whether new governance proposal creation
// and execution are blocked in this state (Restricted/Emergency).
func NewProposalsBlocked(s State) bool {
	return s == StateRestricted || s == StateEmergency
}

// InflationAdjustmentBps is the extra inflation added in Degraded
// (+1%, i.e. 100 bps); zero in every other state.
func InflationAdjustmentBps(s State) uint64 {
	if s == StateDegraded {
		return 100
	}
	return 0
}

// SlashingEscalationDisabled reports whether Critical-severity
// escalation (cooldown stacking, counter growth) is suspended, true
// only in Emergency.
func SlashingEscalationDisabled(s State) bool {
	return s == StateEmergency
}

// ForkPermitted reports whether the fork-choice rule is allowed to
// accept a competing chain outside normal longest-finalized-chain
// rules; true only in Emergency.
func ForkPermitted(s State) bool {
	return s == StateEmergency
}

// ExitAlwaysAllowed reports whether exit-proposal execution bypasses
// the normal Restricted/Emergency proposal freeze; true only in
// Emergency, where exit is always allowed.
func ExitAlwaysAllowed(s State) bool {
	return s == StateEmergency
}

package consensus

import (
	"kratos/chainerrors"
	"kratos/types"
)

// MaxFutureDriftSeconds bounds how far into the future (relative to the
// validating node's wall clock) a block's timestamp may claim to be.
const MaxFutureDriftSeconds = 15

// MinIntervalSeconds and MaxDriftSeconds bound the incremental-drift
// model.
const (
	MinIntervalSeconds = 5
	MaxDriftSeconds    = 6
)

// RestartGraceDriftSeconds is the one-time exemption for a single large
// interval right after a validator restarts.
const RestartGraceDriftSeconds = 3600

// ValidateTimestamp checks block b's timestamp against parent p per the
// incremental-drift model. now is the validating node's current unix
// time. Returns a BlockInvalid error (not banning: timing disagreement
// is not itself cryptographic/structural) on any violation.
func ValidateTimestamp(childTimestamp, parentTimestamp uint64, childSlot, parentSlot types.SlotNumber, now int64) error {
	if childTimestamp <= parentTimestamp {
		return chainerrors.BlockInvalid("timestamp: block.timestamp <= parent.timestamp", false, nil)
	}
	if int64(childTimestamp) > now+MaxFutureDriftSeconds {
		return chainerrors.BlockInvalid("timestamp: block.timestamp too far in the future", false, nil)
	}

	slotsElapsed := uint64(childSlot) - uint64(parentSlot)
	expectedInterval := int64(slotsElapsed) * types.SlotDurationSeconds
	actualInterval := int64(childTimestamp) - int64(parentTimestamp)
	if actualInterval < MinIntervalSeconds {
		return chainerrors.BlockInvalid("timestamp: interval below minimum", false, nil)
	}
	drift := actualInterval - expectedInterval
	if drift < 0 {
		drift = -drift
	}
	if drift > MaxDriftSeconds {
		return chainerrors.BlockInvalid("timestamp: drift exceeds bound", false, nil)
	}
	return nil
}

// ClockHealthTracker rolls a validator's timestamp-drift history into
// the Healthy/Degraded/Excluded/Recovering state machine.
type ClockHealthTracker struct {
	State                types.ClockHealthState
	ConsecutiveGoodSince int // consecutive good (non-Excluded-triggering) blocks
	GraceUsed            bool
}

// NewClockHealthTracker starts a validator Healthy.
func NewClockHealthTracker() *ClockHealthTracker {
	return &ClockHealthTracker{State: types.ClockHealthy}
}

// Observe folds one block's drift outcome (driftSeconds is this block's
// drift; a negative value or one above MaxDriftSeconds counts as bad,
// isRestart reports whether this is the validator's first observed
// block since process start)
// into the tracker, applying the one-time restart grace and the
// 3-good/5-good recovery windows.
func (t *ClockHealthTracker) Observe(driftSeconds int64, isRestart bool) {
	bad := driftSeconds < 0 || driftSeconds > MaxDriftSeconds
	if bad && isRestart && !t.GraceUsed && driftSeconds <= RestartGraceDriftSeconds {
		t.GraceUsed = true
		bad = false
	}

	if bad {
		switch t.State {
		case types.ClockHealthy:
			t.State = types.ClockDegraded
		case types.ClockDegraded:
			t.State = types.ClockExcluded
		case types.ClockExcluded, types.ClockRecovering:
			t.State = types.ClockExcluded
		}
		t.ConsecutiveGoodSince = 0
		return
	}

	t.ConsecutiveGoodSince++
	switch t.State {
	case types.ClockDegraded:
		if t.ConsecutiveGoodSince >= 3 {
			t.State = types.ClockHealthy
			t.ConsecutiveGoodSince = 0
		}
	case types.ClockExcluded:
		t.State = types.ClockRecovering
		t.ConsecutiveGoodSince = 0
	case types.ClockRecovering:
		if t.ConsecutiveGoodSince >= 5 {
			t.State = types.ClockHealthy
			t.ConsecutiveGoodSince = 0
		}
	}
}
